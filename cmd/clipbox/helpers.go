package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"

	"go.klb.dev/clipbox/internal/control"
	"go.klb.dev/clipbox/internal/ipc"
	"go.klb.dev/clipbox/internal/tlsconf"
)

const rpcTimeout = 10 * time.Second

// dialDaemon connects to the daemon: --server over TCP when given, the local
// IPC socket otherwise. The returned string describes the transport.
func dialDaemon(v *viper.Viper) (*control.Client, func(), string, error) {
	var (
		conn      *grpc.ClientConn
		transport string
		err       error
	)
	if addr := v.GetString("server"); addr != "" {
		var creds credentials.TransportCredentials
		transport = fmt.Sprintf("tcp (%s)", addr)
		if v.GetBool("tls") {
			pair, err := tlsconf.Derive(v.GetString("token"))
			if err != nil {
				return nil, nil, "", err
			}
			creds = pair.Credentials()
			transport = fmt.Sprintf("tls (%s)", addr)
		}
		conn, err = control.DialTCP(addr, v.GetString("token"), creds)
	} else {
		if !ipc.IsRunning() {
			return nil, nil, "", errors.New("no clipbox daemon running (start one with \"clipbox daemon\")")
		}
		conn, err = control.DialIPC()
		transport = fmt.Sprintf("ipc (%s)", ipc.SocketPath())
	}
	if err != nil {
		return nil, nil, "", fmt.Errorf("dial: %w", err)
	}
	return control.NewClient(conn), func() { _ = conn.Close() }, transport, nil
}

// withDaemon runs fn against the daemon with a bounded deadline.
func withDaemon(v *viper.Viper, fn func(ctx context.Context, c *control.Client) error) error {
	c, closeFn, _, err := dialDaemon(v)
	if err != nil {
		return err
	}
	defer closeFn()

	ctx, cancel := context.WithTimeout(context.Background(), rpcTimeout)
	defer cancel()
	return fn(ctx, c)
}

// preview flattens content to one line of at most n runes.
func preview(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
