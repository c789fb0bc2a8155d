package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/clipbox/internal/control"
	"go.klb.dev/clipbox/internal/history"
)

const previewWidth = 60

func newListCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List history entries, most recent first",
		Long: `Lists the clipboard history held by the running daemon.

--tab favorites limits the list to favorited entries. --query filters by a
fuzzy, case-insensitive match on text entries; images never match a query.`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(_ *cobra.Command, _ []string) error { return runList(v) },
	}

	f := cmd.Flags()
	f.String("tab", "all", "history projection: all|favorites")
	f.StringP("query", "q", "", "fuzzy search text entries")
	f.Int("limit", 0, "show at most this many entries (0 = all)")
	f.Bool("json", false, "output raw JSON")
	addClientFlags(cmd)

	return cmd
}

func runList(v *viper.Viper) error {
	return withDaemon(v, func(ctx context.Context, c *control.Client) error {
		resp, err := c.List(ctx, &control.ListRequest{
			Tab:   v.GetString("tab"),
			Query: v.GetString("query"),
			Limit: v.GetInt("limit"),
		})
		if err != nil {
			return fmt.Errorf("list: %w", err)
		}

		if v.GetBool("json") {
			enc, _ := json.MarshalIndent(resp, "", "  ")
			fmt.Println(string(enc))
			return nil
		}
		printEntries(resp)
		return nil
	})
}

func printEntries(resp *control.ListResponse) {
	if len(resp.Entries) == 0 {
		fmt.Println("No entries.")
		return
	}

	tw := tabwriter.NewWriter(os.Stdout, 1, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(tw, "\tID\tAGE\tKIND\tCONTENT\n")
	_, _ = fmt.Fprintf(tw, "\t--\t---\t----\t-------\n")
	for _, e := range resp.Entries {
		marker := ""
		if e.Favorite {
			marker = "*"
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			marker, e.ID, humanize.Time(e.CreatedAt), e.Kind, describe(e))
	}
	_ = tw.Flush()
	fmt.Printf("\n%d of %d entries (max %d)\n", len(resp.Entries), resp.Total, resp.MaxSize)
}

func describe(e history.Entry) string {
	p := e.Payload()
	if p.IsImage() {
		return fmt.Sprintf("[image %s, %s]", p.MIME(), humanize.Bytes(uint64(len(e.Content))))
	}
	return preview(e.Content, previewWidth)
}
