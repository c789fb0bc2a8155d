// clipbox: clipboard history daemon and CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.design/x/hotkey/mainthread"

	"go.klb.dev/clipbox/internal/logging"
)

// Version is set at build time via -ldflags "-X main.Version=x.y.z".
var Version = "dev"

func main() {
	root := &cobra.Command{
		Use:   "clipbox",
		Short: "Clipboard history with a global hotkey",
		Long: `clipbox keeps a bounded, deduplicated history of everything copied to the
system clipboard (text and images), with favorites and a global hotkey that
toggles the clipbox window.

Run "clipbox daemon" once per desktop session. The other sub-commands talk to
the running daemon over a local socket, or over TCP with --server.

Config file search order (first found wins):
  /etc/clipbox/clipbox.toml
  $HOME/.config/clipbox/clipbox.toml
  path supplied via --config

All flags can be set via CLIPBOX_<FLAG> env vars or config-file keys.
See "clipbox daemon --help" for the full flag reference.`,
		SilenceUsage: true,
	}

	root.AddCommand(
		newDaemonCmd(),
		newListCmd(),
		newCopyCmd(),
		newRmCmd(),
		newFavCmd(),
		newPromoteCmd(),
		newClearCmd(),
		newToggleCmd(),
		newHotkeyCmd(),
		newStatusCmd(),
		newWatchCmd(),
		newVersionCmd(),
	)

	// Global hotkeys need the process main thread on macOS.
	mainthread.Init(func() {
		if err := root.Execute(); err != nil {
			os.Exit(1)
		}
	})
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("clipbox %s\n", Version)
		},
	}
}

// resolveLogging sets up the global slog logger after flags are parsed.
func resolveLogging(interactive bool, formatStr, levelStr string) {
	format := logging.ParseFormat(formatStr)
	level := logging.ParseLevel(levelStr)
	if levelStr == "" {
		if interactive {
			level = logging.ParseLevel("debug")
		} else {
			level = logging.ParseLevel("info")
		}
	}
	logging.Setup(format, level)
}
