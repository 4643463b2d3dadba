package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"tether/internal/ipc"
)

func newBackendCommands(ctx *commandContext) []*cobra.Command {
	startCmd := &cobra.Command{
		Use:   "start",
		Short: "Start the backend process if it is not running",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.BackendStart()
				if err != nil {
					return fmt.Errorf("start backend: %w", err)
				}
				return printCommandResult(cmd, resp)
			})
		},
	}

	stopCmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop the backend process if it is running",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.BackendStop()
				if err != nil {
					return fmt.Errorf("stop backend: %w", err)
				}
				return printCommandResult(cmd, resp)
			})
		},
	}

	var timeout time.Duration
	waitCmd := &cobra.Command{
		Use:   "wait-ready",
		Short: "Block until the host emits its ready event",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.WaitReady(timeout)
				if err != nil {
					return fmt.Errorf("wait for ready: %w", err)
				}
				if !resp.Fired {
					return fmt.Errorf("ready event not observed within %s", timeout)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Ready event %q fired at %s\n", resp.Event.Name, resp.Event.At)
				return nil
			})
		},
	}
	waitCmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "Maximum time to wait (0 waits indefinitely)")

	return []*cobra.Command{startCmd, stopCmd, waitCmd}
}

func printCommandResult(cmd *cobra.Command, resp *ipc.CommandResponse) error {
	if resp == nil {
		return errors.New("empty response from host")
	}
	if !resp.Result.OK() {
		return errors.New(resp.Result.Error)
	}
	fmt.Fprintln(cmd.OutOrStdout(), resp.Result.Message)
	return nil
}
