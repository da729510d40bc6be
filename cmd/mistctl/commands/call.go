package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/mist/internal/bridge"
)

func init() {
	rootCmd.AddCommand(callCmd)
	rootCmd.AddCommand(opsCmd)
	rootCmd.AddCommand(pollCmd)
}

var callCmd = &cobra.Command{
	Use:   "call <operation> [args...]",
	Short: "Start the helper, make one call and print the reply",
	Long: `Start the helper, make one call, print the reply followed by any
callbacks the call produced, then stop the helper.

Run "mistctl ops" to list operations and their arguments.`,
	Example: `  mistctl call utils.get_appid
  mistctl call friends.set_rich_presence status "In lobby"
  mistctl call remote_storage.file_read save.dat --json`,
	Args: cobra.MinimumNArgs(1),
	ValidArgsFunction: func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
		if len(args) > 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		return operationNames(), cobra.ShellCompDirectiveNoFileComp
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return withBridge(cmd, func(ctx context.Context, b *bridge.Bridge, p *printer) error {
			value, err := runOperation(ctx, b, args[0], args[1:])
			if err != nil {
				return err
			}
			p.reply(args[0], value)

			events, err := b.Poll(ctx)
			if len(events) > 0 {
				p.events(events)
			}
			return err
		})
	},
}

var opsCmd = &cobra.Command{
	Use:   "ops",
	Short: "List the operations accepted by call and shell",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		for _, name := range operationNames() {
			fmt.Fprintf(cmd.OutOrStdout(), "%-45s %s\n", name, operations[name].usage)
		}
		return nil
	},
}

var pollCmd = &cobra.Command{
	Use:   "poll",
	Short: "Start the helper and print the callbacks it queued during startup",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withBridge(cmd, func(ctx context.Context, b *bridge.Bridge, p *printer) error {
			events, err := b.Poll(ctx)
			p.events(events)
			return err
		})
	},
}
