package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"tether/internal/logs"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var (
		backend bool
		lines   int
		follow  bool
	)
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Print host or backend logs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path := filepath.Join(cfg.Paths.LogDir, "tether.log")
			if backend {
				path = cfg.BackendLogPath()
			}

			out := cmd.OutOrStdout()
			opts := logs.TailOptions{Offset: -1, Limit: lines}
			for {
				result, err := logs.Tail(cmd.Context(), path, opts)
				if err != nil {
					if errors.Is(err, cmd.Context().Err()) {
						return nil
					}
					return err
				}
				for _, line := range result.Lines {
					fmt.Fprintln(out, line)
				}
				if !follow {
					return nil
				}
				opts = logs.TailOptions{Offset: result.Offset, Wait: time.Minute}
			}
		},
	}
	cmd.Flags().BoolVar(&backend, "backend", false, "Show captured backend output instead of the host log")
	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of trailing lines to print")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing new lines")
	return cmd
}
