package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/zulandar/retromgr/internal/monitor"
	"github.com/zulandar/retromgr/internal/notify"
	"github.com/zulandar/retromgr/internal/web"
)

func newServeCmd(opts *globalOpts) *cobra.Command {
	var (
		port      string
		noMonitor bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web manager",
		Long:  "Serves the web interface and records monitoring samples on the configured schedule.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts, port, noMonitor)
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "port to listen on (overrides site.port)")
	cmd.Flags().BoolVar(&noMonitor, "no-monitor", false, "do not record monitoring samples")
	return cmd
}

func runServe(cmd *cobra.Command, opts *globalOpts, port string, noMonitor bool) error {
	cfg, gormDB, err := connectFromConfig(opts)
	if err != nil {
		return err
	}
	if port != "" {
		cfg.Site.Port = port
	}

	notifier, err := notify.FromConfig(cfg.Notify)
	if err != nil {
		return err
	}
	reader := monitor.NewReader(cfg.Monitoring.ProcRoot, cfg.Paths.Share)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		fmt.Fprintf(cmd.OutOrStdout(), "\nReceived %s, shutting down...\n", sig)
		cancel()
	}()

	if !noMonitor {
		rec, err := monitor.NewRecorder(monitor.RecorderOpts{
			DB:         gormDB,
			Sampler:    reader,
			Notifier:   notifier,
			Schedule:   cfg.Monitoring.Schedule,
			Retention:  cfg.Monitoring.Retention,
			TempAlertC: cfg.Monitoring.TempAlertC,
			SiteName:   cfg.Site.Name,
		})
		if err != nil {
			return err
		}
		if err := rec.Start(ctx); err != nil {
			return err
		}
		defer rec.Stop()
	}

	return web.Start(ctx, web.Options{
		Config:   cfg,
		DB:       gormDB,
		Sampler:  reader,
		Notifier: notifier,
		Out:      cmd.OutOrStdout(),
	})
}
