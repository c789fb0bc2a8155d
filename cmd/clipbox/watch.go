package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"go.klb.dev/clipbox/internal/control"
	"go.klb.dev/clipbox/internal/hub"
)

func newWatchCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream history changes as they happen",
		Long: `Prints one line per history change (new capture, delete, favorite,
promote, clear) and per window visibility change until interrupted.`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(_ *cobra.Command, _ []string) error { return runWatch(v) },
	}

	cmd.Flags().Bool("json", false, "output one JSON object per event")
	addClientFlags(cmd)

	return cmd
}

func runWatch(v *viper.Viper) error {
	c, closeFn, _, err := dialDaemon(v)
	if err != nil {
		return err
	}
	defer closeFn()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stream, err := c.Watch(ctx, &control.WatchRequest{})
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}

	jsonOut := v.GetBool("json")
	for {
		ev, err := stream.Recv()
		if err != nil {
			if ctx.Err() != nil || status.Code(err) == codes.Canceled || errors.Is(err, context.Canceled) {
				return nil
			}
			return fmt.Errorf("watch: %w", err)
		}
		if jsonOut {
			b, _ := json.Marshal(ev)
			fmt.Println(string(b))
			continue
		}
		fmt.Println(formatEvent(ev))
	}
}

func formatEvent(ev *hub.Event) string {
	ts := ev.At.Local().Format(time.TimeOnly)
	switch ev.Op {
	case hub.OpVisibility:
		return fmt.Sprintf("%s  window %s", ts, visibility(ev.Visible))
	case hub.OpFavorite:
		return fmt.Sprintf("%s  %-9s %s favorite=%t", ts, ev.Op, ev.ID, ev.Favorite)
	case hub.OpCleared, hub.OpRestored:
		return fmt.Sprintf("%s  %-9s size=%d", ts, ev.Op, ev.Size)
	default:
		return fmt.Sprintf("%s  %-9s %s size=%d", ts, ev.Op, ev.ID, ev.Size)
	}
}
