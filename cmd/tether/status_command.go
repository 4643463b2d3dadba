package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"syscall"

	"github.com/spf13/cobra"

	"tether/internal/ipc"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show host, ready event, and backend status",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			client, err := ipc.Dial(ctx.socketPath())
			if err != nil {
				if errors.Is(err, syscall.ENOENT) || errors.Is(err, os.ErrNotExist) || errors.Is(err, syscall.ECONNREFUSED) {
					if asJSON {
						fmt.Fprintln(out, `{"running":false}`)
						return nil
					}
					fmt.Fprintln(out, renderStatusLine("Host", statusError, "not running", colorize))
					return nil
				}
				return wrapDialError(err, ctx.socketPath())
			}
			defer client.Close()

			resp, err := client.Status()
			if err != nil {
				return fmt.Errorf("query status: %w", err)
			}
			if asJSON {
				encoder := json.NewEncoder(out)
				encoder.SetIndent("", "  ")
				return encoder.Encode(resp.Status)
			}
			for _, line := range hostLines(resp.Status, colorize) {
				fmt.Fprintln(out, line)
			}
			if len(resp.Status.Dependencies) > 0 {
				fmt.Fprintln(out)
				fmt.Fprintln(out, preflightTable(resp.Status.Dependencies, colorize))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the raw status document as JSON")
	return cmd
}
