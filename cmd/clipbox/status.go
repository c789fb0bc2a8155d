package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/clipbox/internal/control"
)

func newStatusCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon status",
		Long: `Displays the running daemon's history size, hotkey binding, save counters
and capture activity.

The request is sent over the local IPC socket unless --server is given.`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(_ *cobra.Command, _ []string) error { return runStatus(v) },
	}

	cmd.Flags().Bool("json", false, "output raw JSON")
	addClientFlags(cmd)

	return cmd
}

func runStatus(v *viper.Viper) error {
	c, closeFn, transport, err := dialDaemon(v)
	if err != nil {
		return err
	}
	defer closeFn()

	ctx, cancel := context.WithTimeout(context.Background(), rpcTimeout)
	defer cancel()

	resp, err := c.Status(ctx, &control.StatusRequest{})
	if err != nil {
		return fmt.Errorf("status: %w", err)
	}

	if v.GetBool("json") {
		enc, _ := json.MarshalIndent(resp, "", "  ")
		fmt.Println(string(enc))
		return nil
	}

	printStatus(resp, transport)
	return nil
}

func printStatus(resp *control.StatusResponse, transport string) {
	w := tabwriter.NewWriter(os.Stdout, 1, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Version:\t%s\n", resp.Version)
	fmt.Fprintf(w, "Transport:\t%s\n", transport)
	fmt.Fprintf(w, "Uptime:\t%s (since %s)\n", fmtAge(resp.StartedAt), resp.StartedAt.Local().Format(time.RFC3339))
	fmt.Fprintf(w, "Store:\t%s\n", resp.Store)
	fmt.Fprintf(w, "Entries:\t%d / %d (%d favorites)\n", resp.Entries, resp.MaxSize, resp.Favorites)
	fmt.Fprintf(w, "Hotkey:\t%s\n", resp.Binding)
	fmt.Fprintf(w, "Window:\t%s\n", visibility(resp.Visible))
	fmt.Fprintf(w, "Saves:\t%s (%s failed)\n", humanize.Comma(int64(resp.Saves)), humanize.Comma(int64(resp.SaveFailures)))
	if resp.LastCapture.IsZero() {
		fmt.Fprintf(w, "Captured:\t%d\n", resp.Captured)
	} else {
		fmt.Fprintf(w, "Captured:\t%d (last %s)\n", resp.Captured, humanize.Time(resp.LastCapture))
	}
	fmt.Fprintf(w, "Watchers:\t%d\n", resp.Watchers)
	_ = w.Flush()
}

func fmtAge(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return time.Since(t).Truncate(time.Second).String()
}

func visibility(visible bool) string {
	if visible {
		return "visible"
	}
	return "hidden"
}
