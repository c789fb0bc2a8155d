package control

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"

	"go.klb.dev/clipbox/internal/hub"
	"go.klb.dev/clipbox/internal/ipc"
)

// Client calls the History service over any gRPC connection.
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient wraps cc.
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) invoke(ctx context.Context, method string, in, out any) error {
	return c.cc.Invoke(ctx, fullMethod(method), in, out,
		grpc.CallContentSubtype(codecName),
		grpc.MaxCallRecvMsgSize(maxMessageSize),
	)
}

func (c *Client) List(ctx context.Context, in *ListRequest) (*ListResponse, error) {
	out := new(ListResponse)
	if err := c.invoke(ctx, "List", in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Copy(ctx context.Context, in *CopyRequest) (*CopyResponse, error) {
	out := new(CopyResponse)
	if err := c.invoke(ctx, "Copy", in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Delete(ctx context.Context, in *IDRequest) (*DeleteResponse, error) {
	out := new(DeleteResponse)
	if err := c.invoke(ctx, "Delete", in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Favorite(ctx context.Context, in *IDRequest) (*FavoriteResponse, error) {
	out := new(FavoriteResponse)
	if err := c.invoke(ctx, "Favorite", in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Promote(ctx context.Context, in *IDRequest) (*PromoteResponse, error) {
	out := new(PromoteResponse)
	if err := c.invoke(ctx, "Promote", in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Clear(ctx context.Context, in *ClearRequest) (*ClearResponse, error) {
	out := new(ClearResponse)
	if err := c.invoke(ctx, "Clear", in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Toggle(ctx context.Context, in *ToggleRequest) (*ToggleResponse, error) {
	out := new(ToggleResponse)
	if err := c.invoke(ctx, "Toggle", in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Rebind(ctx context.Context, in *RebindRequest) (*RebindResponse, error) {
	out := new(RebindResponse)
	if err := c.invoke(ctx, "Rebind", in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Status(ctx context.Context, in *StatusRequest) (*StatusResponse, error) {
	out := new(StatusResponse)
	if err := c.invoke(ctx, "Status", in, out); err != nil {
		return nil, err
	}
	return out, nil
}

// WatchStream receives change events from a Watch call.
type WatchStream struct {
	stream grpc.ClientStream
}

// Recv blocks for the next event.
func (w *WatchStream) Recv() (*hub.Event, error) {
	ev := new(hub.Event)
	if err := w.stream.RecvMsg(ev); err != nil {
		return nil, err
	}
	return ev, nil
}

// Watch opens the change feed. Cancel ctx to stop it.
func (c *Client) Watch(ctx context.Context, in *WatchRequest) (*WatchStream, error) {
	stream, err := c.cc.NewStream(ctx, &serviceDesc.Streams[0], fullMethod("Watch"), grpc.CallContentSubtype(codecName))
	if err != nil {
		return nil, err
	}
	if err := stream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := stream.CloseSend(); err != nil {
		return nil, err
	}
	return &WatchStream{stream: stream}, nil
}

// DialIPC connects to the daemon's local socket. No auth is needed; the
// socket is owner-restricted by the OS.
func DialIPC() (*grpc.ClientConn, error) {
	return grpc.NewClient(
		"unix://"+ipc.SocketPath(),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
}

// DialTCP connects to a daemon's TCP control listener. A nil creds dials in
// plaintext.
func DialTCP(addr, token string, creds credentials.TransportCredentials) (*grpc.ClientConn, error) {
	if creds == nil {
		creds = insecure.NewCredentials()
	}
	opts := []grpc.DialOption{grpc.WithTransportCredentials(creds)}
	if token != "" {
		opts = append(opts, grpc.WithPerRPCCredentials(bearer(token)))
	}
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	return conn, nil
}

type bearer string

func (b bearer) GetRequestMetadata(context.Context, ...string) (map[string]string, error) {
	return map[string]string{"authorization": "Bearer " + string(b)}, nil
}

func (b bearer) RequireTransportSecurity() bool { return false }
