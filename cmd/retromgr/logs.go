package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/zulandar/retromgr/internal/logtail"
	"golang.org/x/term"
)

func newLogsCmd(opts *globalOpts) *cobra.Command {
	var (
		lines  int
		follow bool
		full   bool
	)

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the EmulationStation log",
		Long:  "Prints the last lines of the configured log file. With --follow, keeps printing lines as they are appended.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogs(cmd, opts, logsOpts{lines: lines, follow: follow, full: full})
		},
	}

	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "number of recent lines to show")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "keep printing appended lines")
	cmd.Flags().BoolVar(&full, "full", false, "do not cut long lines to the terminal width")
	return cmd
}

type logsOpts struct {
	lines  int
	follow bool
	full   bool
}

func runLogs(cmd *cobra.Command, gopts *globalOpts, opts logsOpts) error {
	cfg, err := loadConfig(gopts)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	width := 0
	if !opts.full {
		width = terminalWidth(out)
	}

	lines, err := logtail.Tail(cfg.LogFilePath, opts.lines)
	switch {
	case errors.Is(err, os.ErrNotExist) && opts.follow:
		fmt.Fprintf(out, "Waiting for %s to be created...\n", cfg.LogFilePath)
	case err != nil:
		return err
	case len(lines) == 0 && !opts.follow:
		fmt.Fprintln(out, "Log file is empty.")
		return nil
	}
	for _, l := range lines {
		fmt.Fprintln(out, clip(l, width))
	}

	if !opts.follow {
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return logtail.Follow(ctx, cfg.LogFilePath, func(l string) {
		fmt.Fprintln(out, clip(l, width))
	})
}

// terminalWidth returns the column count when out is a terminal, else 0.
func terminalWidth(out io.Writer) int {
	f, ok := out.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return 0
	}
	w, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0
	}
	return w
}

// clip cuts s to width runes, marking the cut. A width of 0 disables it.
func clip(s string, width int) string {
	r := []rune(s)
	if width <= 0 || len(r) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	return string(r[:width-1]) + "…"
}
