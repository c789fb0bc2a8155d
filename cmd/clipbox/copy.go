package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/clipbox/internal/control"
)

func newCopyCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "copy <id>",
		Short: "Put a history entry back on the clipboard",
		Long: `Writes the entry's content to the system clipboard and moves the entry to
the front of the history. With --dismiss the clipbox window is toggled
afterwards, the way picking an entry from the window does.`,
		Args:    cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE: func(_ *cobra.Command, args []string) error {
			return withDaemon(v, func(ctx context.Context, c *control.Client) error {
				if _, err := c.Copy(ctx, &control.CopyRequest{ID: args[0], Dismiss: v.GetBool("dismiss")}); err != nil {
					return fmt.Errorf("copy: %w", err)
				}
				fmt.Printf("Copied %s to the clipboard.\n", args[0])
				return nil
			})
		},
	}

	cmd.Flags().Bool("dismiss", false, "toggle the window after copying")
	addClientFlags(cmd)

	return cmd
}
