package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/zulandar/retromgr/internal/config"
	"gopkg.in/yaml.v3"
)

const masked = "********"

func newConfigCmd(opts *globalOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration commands",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as YAML",
		Long:  "Prints the configuration after defaults, the config file and the profile overlay are applied. Secrets are masked.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			out, err := yaml.Marshal(redact(*cfg))
			if err != nil {
				return fmt.Errorf("render config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "# site url: %s\n%s", cfg.Site.PublicURL(), out)
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "profiles",
		Short: "List the available settings profiles",
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range config.ProfileNames() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
		},
	})
	return cmd
}

// redact hides credentials before printing.
func redact(c config.Config) config.Config {
	mask := func(s *string) {
		if *s != "" {
			*s = masked
		}
	}
	mask(&c.Database.Password)
	mask(&c.Notify.SlackWebhookURL)
	mask(&c.Notify.DiscordWebhookToken)
	return c
}
