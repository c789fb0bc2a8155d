package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/clipbox/internal/control"
)

func newToggleCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:     "toggle",
		Short:   "Show or hide the clipbox window",
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE: func(_ *cobra.Command, _ []string) error {
			return withDaemon(v, func(ctx context.Context, c *control.Client) error {
				resp, err := c.Toggle(ctx, &control.ToggleRequest{})
				if err != nil {
					return fmt.Errorf("toggle: %w", err)
				}
				if resp.Visible {
					fmt.Println("Window shown.")
				} else {
					fmt.Println("Window hidden.")
				}
				return nil
			})
		},
	}
	addClientFlags(cmd)

	return cmd
}
