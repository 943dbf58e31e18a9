package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/zulandar/retromgr/internal/update"
)

// Version info set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// globalOpts are the flags shared by every command.
type globalOpts struct {
	configPath string
	profile    string
}

func newRootCmd() *cobra.Command {
	opts := &globalOpts{}
	cmd := &cobra.Command{
		Use:   "retromgr",
		Short: "Retromgr - web manager for Recalbox and RetroPie appliances",
		Long:  "Retromgr serves a small web interface to manage ROMs, BIOS files, settings and logs of a retro gaming appliance.",
	}
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", os.Getenv("RETROMGR_CONFIG"), "path to retromgr config file (defaults apply when empty)")
	cmd.PersistentFlags().StringVar(&opts.profile, "profile", "", "settings profile to apply (production)")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newLogsCmd(opts))
	cmd.AddCommand(newDBCmd(opts))
	cmd.AddCommand(newConfigCmd(opts))
	cmd.AddCommand(newMonitorCmd(opts))
	return cmd
}

func newVersionCmd() *cobra.Command {
	var (
		check bool
		repo  string
	)

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "retromgr %s (commit: %s, built: %s)\n", Version, Commit, Date)
			if !check {
				return nil
			}
			return runUpdateCheck(cmd, repo)
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "check GitHub for a newer release (uses GITHUB_TOKEN when set)")
	cmd.Flags().StringVar(&repo, "repo", update.DefaultRepository, "GitHub repository publishing releases")
	return cmd
}

func runUpdateCheck(cmd *cobra.Command, repo string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
	defer cancel()

	checker, err := update.NewChecker(ctx, repo, os.Getenv("GITHUB_TOKEN"))
	if err != nil {
		return err
	}
	res, err := checker.Check(ctx, Version)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if res.Newer {
		fmt.Fprintf(out, "A newer release is available: %s\n%s\n", res.Latest.Tag, res.Latest.URL)
		return nil
	}
	fmt.Fprintf(out, "Up to date (latest release %s)\n", res.Latest.Tag)
	return nil
}

func execute(cmd *cobra.Command) int {
	if err := cmd.Execute(); err != nil {
		return 1
	}
	return 0
}

func main() {
	os.Exit(execute(newRootCmd()))
}
