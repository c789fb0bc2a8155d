// Package ipc provides helpers for the local socket used by CLI tools
// (list/copy/status...) to talk to a running clipbox daemon.
//
// The IPC channel is plain gRPC served over a Unix domain socket, using the
// same History service as the optional TCP listener. CLI sub-commands probe
// for the socket and fall back to TCP when --server is given.
package ipc

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
)

// SocketPath returns the path of the IPC socket.
//
//   - $CLIPBOX_SOCKET when set
//   - $XDG_RUNTIME_DIR/clipbox.sock on Linux desktops
//   - $TMPDIR/clipbox.sock otherwise (macOS, Windows 10+ AF_UNIX)
func SocketPath() string {
	if s := os.Getenv("CLIPBOX_SOCKET"); s != "" {
		return s
	}
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, "clipbox.sock")
	}
	return filepath.Join(os.TempDir(), "clipbox.sock")
}

// IsRunning reports whether a clipbox daemon appears to be listening on the
// IPC socket. It does a cheap dial-and-close; no data is exchanged.
func IsRunning() bool {
	c, err := net.Dial("unix", SocketPath())
	if err != nil {
		return false
	}
	_ = c.Close()
	return true
}

// Listen creates a listener on the IPC socket path, removing any stale
// socket file first. The socket is restricted to the current user.
func Listen() (net.Listener, error) {
	path := SocketPath()
	// Remove stale socket from a previous (crashed) run.
	_ = os.Remove(path)
	ln, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", path, err)
	}
	if err := os.Chmod(path, 0o600); err != nil {
		ln.Close()
		return nil, fmt.Errorf("chmod %s: %w", path, err)
	}
	return ln, nil
}
