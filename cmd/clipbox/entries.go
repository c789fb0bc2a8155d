package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/clipbox/internal/control"
)

// newIDCmd builds a sub-command that sends one entry id to the daemon.
func newIDCmd(use, short string, call func(ctx context.Context, c *control.Client, id string) (string, error)) *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:     use + " <id>",
		Short:   short,
		Args:    cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE: func(_ *cobra.Command, args []string) error {
			return withDaemon(v, func(ctx context.Context, c *control.Client) error {
				msg, err := call(ctx, c, args[0])
				if err != nil {
					return fmt.Errorf("%s: %w", use, err)
				}
				fmt.Println(msg)
				return nil
			})
		},
	}
	addClientFlags(cmd)
	return cmd
}

func newRmCmd() *cobra.Command {
	cmd := newIDCmd("rm", "Delete a history entry", func(ctx context.Context, c *control.Client, id string) (string, error) {
		if _, err := c.Delete(ctx, &control.IDRequest{ID: id}); err != nil {
			return "", err
		}
		return fmt.Sprintf("Deleted %s.", id), nil
	})
	cmd.Aliases = []string{"delete"}
	return cmd
}

func newFavCmd() *cobra.Command {
	return newIDCmd("fav", "Toggle the favorite flag of a history entry", func(ctx context.Context, c *control.Client, id string) (string, error) {
		resp, err := c.Favorite(ctx, &control.IDRequest{ID: id})
		if err != nil {
			return "", err
		}
		if resp.Favorite {
			return fmt.Sprintf("%s is now a favorite.", id), nil
		}
		return fmt.Sprintf("%s is no longer a favorite.", id), nil
	})
}

func newPromoteCmd() *cobra.Command {
	return newIDCmd("promote", "Move a history entry to the front", func(ctx context.Context, c *control.Client, id string) (string, error) {
		resp, err := c.Promote(ctx, &control.IDRequest{ID: id})
		if err != nil {
			return "", err
		}
		if !resp.Moved {
			return fmt.Sprintf("%s is already first.", id), nil
		}
		return fmt.Sprintf("Moved %s to the front.", id), nil
	})
}

var errNotConfirmed = errors.New("clear cancelled")

func newClearCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every history entry, favorites included",
		Long: `Removes the whole history, favorites included. This cannot be undone.
Asks for confirmation unless --yes is given.`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !v.GetBool("yes") && !confirm(cmd, "Clear the entire clipboard history?") {
				return errNotConfirmed
			}
			return withDaemon(v, func(ctx context.Context, c *control.Client) error {
				resp, err := c.Clear(ctx, &control.ClearRequest{Confirm: true})
				if err != nil {
					return fmt.Errorf("clear: %w", err)
				}
				fmt.Printf("Removed %d entries.\n", resp.Removed)
				return nil
			})
		},
	}

	cmd.Flags().BoolP("yes", "y", false, "skip the confirmation prompt")
	addClientFlags(cmd)

	return cmd
}

func confirm(cmd *cobra.Command, question string) bool {
	fmt.Fprintf(cmd.ErrOrStderr(), "%s [y/N] ", question)
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}
