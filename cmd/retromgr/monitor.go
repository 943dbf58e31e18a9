package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/zulandar/retromgr/internal/monitor"
	"github.com/zulandar/retromgr/internal/notify"
)

func newMonitorCmd(opts *globalOpts) *cobra.Command {
	var record bool

	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Print the current temperature, load, memory and disk usage",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMonitor(cmd, opts, record)
		},
	}
	cmd.Flags().BoolVar(&record, "record", false, "also store the sample in the database")
	return cmd
}

func runMonitor(cmd *cobra.Command, opts *globalOpts, record bool) error {
	s, err := takeSample(context.Background(), opts, record)
	if err != nil {
		return err
	}
	printSample(cmd.OutOrStdout(), s)
	return nil
}

// takeSample reads the appliance once, storing the sample when record is set.
func takeSample(ctx context.Context, opts *globalOpts, record bool) (monitor.Sample, error) {
	if !record {
		cfg, err := loadConfig(opts)
		if err != nil {
			return monitor.Sample{}, err
		}
		return monitor.NewReader(cfg.Monitoring.ProcRoot, cfg.Paths.Share).Sample(ctx)
	}

	cfg, gormDB, err := connectFromConfig(opts)
	if err != nil {
		return monitor.Sample{}, err
	}
	notifier, err := notify.FromConfig(cfg.Notify)
	if err != nil {
		return monitor.Sample{}, err
	}
	rec, err := monitor.NewRecorder(monitor.RecorderOpts{
		DB:         gormDB,
		Sampler:    monitor.NewReader(cfg.Monitoring.ProcRoot, cfg.Paths.Share),
		Notifier:   notifier,
		Schedule:   cfg.Monitoring.Schedule,
		Retention:  cfg.Monitoring.Retention,
		TempAlertC: cfg.Monitoring.TempAlertC,
		SiteName:   cfg.Site.Name,
	})
	if err != nil {
		return monitor.Sample{}, err
	}
	return rec.RecordOnce(ctx)
}

func printSample(out io.Writer, s monitor.Sample) {
	fmt.Fprintf(out, "Taken:       %s\n", s.TakenAt.Format(time.RFC3339))
	fmt.Fprintf(out, "CPU temp:    %.1f°C\n", s.CPUTempC)
	fmt.Fprintf(out, "Load:        %.2f %.2f %.2f\n", s.Load1, s.Load5, s.Load15)
	fmt.Fprintf(out, "Memory used: %.0f%% of %d MiB\n", s.MemUsedPercent(), s.MemTotalKB/1024)
	fmt.Fprintf(out, "Share used:  %.0f%% (%d MiB free)\n", s.DiskUsedPercent(), s.DiskFreeBytes/(1<<20))
	fmt.Fprintf(out, "Uptime:      %s\n", s.Uptime.Truncate(time.Second))
}
