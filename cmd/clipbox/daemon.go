package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/clipbox/internal/app"
	"go.klb.dev/clipbox/internal/capture"
	"go.klb.dev/clipbox/internal/clip"
	"go.klb.dev/clipbox/internal/control"
	"go.klb.dev/clipbox/internal/crypto"
	"go.klb.dev/clipbox/internal/globalkey"
	"go.klb.dev/clipbox/internal/history"
	"go.klb.dev/clipbox/internal/hotkey"
	"go.klb.dev/clipbox/internal/hub"
	"go.klb.dev/clipbox/internal/ipc"
	"go.klb.dev/clipbox/internal/persist"
	"go.klb.dev/clipbox/internal/settings"
	"go.klb.dev/clipbox/internal/tlsconf"
	"go.klb.dev/clipbox/internal/window"
)

const flushTimeout = 5 * time.Second

func newDaemonCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Watch the clipboard and serve the history",
		Long: `Starts the clipbox daemon. It records every new clipboard payload into the
history, saves the history after each change, binds the global hotkey and
serves the history to CLI tools over the local IPC socket.

Config file search order:
  /etc/clipbox/clipbox.toml
  $HOME/.config/clipbox/clipbox.toml
  path supplied via --config

Precedence (lowest → highest): defaults → config file → CLIPBOX_* env vars → flags`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(_ *cobra.Command, _ []string) error { return runDaemon(v) },
	}

	f := cmd.Flags()
	f.Int("max-history", history.DefaultMaxSize, "number of entries kept")
	f.String("store", "file", "persistence backend: file|sqlite")
	f.String("data-dir", defaultDataDir(), "directory for history and settings")
	f.String("passphrase", "", "encrypt the history file with this passphrase (file store only)")
	f.String("listen", "", "optional TCP address for gRPC + HTTP control (e.g. 127.0.0.1:8753)")
	f.String("token", "", "bearer token required on the TCP listener")
	f.Bool("tls", false, "serve the TCP listener over TLS keyed by --token")
	f.Bool("no-hotkey", false, "do not bind the global hotkey")
	f.Duration("hotkey-settle", hotkey.DefaultSettle, "wait between unregistering and registering a hotkey")
	f.Duration("hotkey-cooldown", hotkey.DefaultCooldown, "ignore repeated hotkey presses for this long")
	f.Duration("poll-interval", clip.DefaultPollInterval, "clipboard sampling interval")
	addLoggingFlags(cmd)
	addConfigFlag(cmd)

	return cmd
}

func openGateway(v *viper.Viper, dataDir string) (persist.Gateway, string, error) {
	kind := v.GetString("store")
	switch kind {
	case "sqlite":
		if v.GetString("passphrase") != "" {
			slog.Warn("passphrase is ignored by the sqlite store")
		}
		gw, err := persist.NewSQLiteGateway(filepath.Join(dataDir, "history.db"))
		return gw, kind, err
	case "file", "":
		var key *crypto.Key
		if p := v.GetString("passphrase"); p != "" {
			var err error
			if key, err = crypto.DeriveKey(p); err != nil {
				return nil, "", fmt.Errorf("key derivation: %w", err)
			}
		}
		gw, err := persist.NewFileGateway(filepath.Join(dataDir, "history.json"), key)
		return gw, "file", err
	default:
		return nil, "", fmt.Errorf("unknown store %q (want file or sqlite)", kind)
	}
}

func runDaemon(v *viper.Viper) error {
	setupLogging(v)

	dataDir := v.GetString("data-dir")
	gw, storeKind, err := openGateway(v, dataDir)
	if err != nil {
		return err
	}
	defer gw.Close()

	slog.Info("clipbox daemon starting",
		"version", Version,
		"store", storeKind,
		"data_dir", dataDir,
		"max_history", v.GetInt("max-history"),
		"encrypted", v.GetString("passphrase") != "" && storeKind == "file",
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	h := hub.New()
	saver := persist.NewSaver(gw)
	store := history.New(history.Options{
		MaxSize:   v.GetInt("max-history"),
		Persister: saver,
		Hub:       h,
	})
	store.Restore(persist.LoadOrEmpty(ctx, gw))

	backend := clip.New(v.GetDuration("poll-interval"))
	defer backend.Close()

	win := window.NewHeadless(h)
	actions := app.New(store, backend, win)

	var rebinder control.Rebinder
	if !v.GetBool("no-hotkey") {
		slot := settings.OpenOrEmpty(filepath.Join(dataDir, "settings.toml"))
		keys := hotkey.NewManager(globalkey.New(), slot, actions.HotkeyAction(), hotkey.Options{
			Settle:   v.GetDuration("hotkey-settle"),
			Cooldown: v.GetDuration("hotkey-cooldown"),
		})
		if err := keys.Init(runtime.GOOS); err != nil {
			slog.Warn("global hotkey unavailable", "err", err)
		} else {
			slog.Info("global hotkey bound", "key", keys.Binding().Key)
		}
		defer func() {
			if err := keys.Close(); err != nil {
				slog.Warn("hotkey release failed", "err", err)
			}
		}()
		rebinder = keys
	}

	monitor := capture.New(store, backend)
	go monitor.Run(ctx)

	svc := control.NewService(control.Deps{
		Store:     store,
		Actions:   actions,
		Hotkeys:   rebinder,
		Version:   Version,
		StoreKind: storeKind,
		Saver:     saver,
		Monitor:   monitor,
		Window:    win,
	})
	srv := control.NewServer(svc, v.GetString("token"))

	ipcLn, err := ipc.Listen()
	if err != nil {
		slog.Warn("IPC socket unavailable", "err", err)
	} else {
		go func() {
			if err := srv.ServeIPC(ipcLn); err != nil {
				slog.Error("IPC server stopped", "err", err)
			}
		}()
	}

	if addr := v.GetString("listen"); addr != "" {
		ln, err := net.Listen("tcp", addr)
		if err != nil {
			return fmt.Errorf("listen %s: %w", addr, err)
		}
		if v.GetBool("tls") {
			pair, err := tlsconf.Derive(v.GetString("token"))
			if err != nil {
				_ = ln.Close()
				return err
			}
			ln = tls.NewListener(ln, pair.ServerConfig())
		}
		go func() {
			if err := srv.ServeTCP(ln); err != nil {
				slog.Error("control listener stopped", "err", err)
			}
		}()
	}

	<-ctx.Done()
	slog.Info("shutting down")
	srv.Stop()
	if ipcLn != nil {
		_ = os.Remove(ipc.SocketPath())
	}

	flushCtx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()
	if err := saver.Flush(flushCtx); err != nil {
		slog.Error("history flush timed out", "err", err)
	}
	return nil
}
