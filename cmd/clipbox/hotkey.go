package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/clipbox/internal/control"
)

func newHotkeyCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "hotkey [shortcut]",
		Short: "Show or change the global hotkey",
		Long: `Without an argument, prints the current hotkey binding.

With a shortcut such as "Ctrl+Shift+V" or "Cmd+Alt+C", asks the daemon to
rebind. The old key is released first; if the new key cannot be registered
the daemon is left with no hotkey and the error is reported. A successful
rebind is remembered across restarts.`,
		Args:    cobra.MaximumNArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE: func(_ *cobra.Command, args []string) error {
			return withDaemon(v, func(ctx context.Context, c *control.Client) error {
				if len(args) == 0 {
					resp, err := c.Status(ctx, &control.StatusRequest{})
					if err != nil {
						return fmt.Errorf("status: %w", err)
					}
					printBinding(resp.Binding.Key, resp.Binding.Registered)
					return nil
				}

				resp, err := c.Rebind(ctx, &control.RebindRequest{Key: args[0]})
				if err != nil {
					return fmt.Errorf("rebind: %w", err)
				}
				printBinding(resp.Binding.Key, resp.Binding.Registered)
				return nil
			})
		},
	}
	addClientFlags(cmd)

	return cmd
}

func printBinding(key string, registered bool) {
	if !registered {
		fmt.Println("Hotkey: unbound")
		return
	}
	fmt.Printf("Hotkey: %s\n", key)
}
