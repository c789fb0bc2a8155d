package control

import (
	"context"
	"crypto/subtle"
	"math"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"go.klb.dev/clipbox/internal/hub"
)

const serviceName = "clipbox.v1.History"

// List carries every entry's full content, screenshots included, so message
// limits scale with the history bound instead of gRPC's 4 MB default.
const (
	perEntryBudget = 16 << 20
	minMessageSize = 64 << 20
	// maxMessageSize is the largest limit gRPC accepts.
	maxMessageSize = math.MaxInt32
)

// messageLimit returns the send limit for a history of maxEntries.
func messageLimit(maxEntries int) int {
	if maxEntries <= 0 || maxEntries > maxMessageSize/perEntryBudget {
		return maxMessageSize
	}
	return max(maxEntries*perEntryBudget, minMessageSize)
}

func fullMethod(name string) string { return "/" + serviceName + "/" + name }

// historyServer is the handler type checked by grpc.Server.RegisterService.
type historyServer interface {
	List(context.Context, *ListRequest) (*ListResponse, error)
	Copy(context.Context, *CopyRequest) (*CopyResponse, error)
	Delete(context.Context, *IDRequest) (*DeleteResponse, error)
	Favorite(context.Context, *IDRequest) (*FavoriteResponse, error)
	Promote(context.Context, *IDRequest) (*PromoteResponse, error)
	Clear(context.Context, *ClearRequest) (*ClearResponse, error)
	Toggle(context.Context, *ToggleRequest) (*ToggleResponse, error)
	Rebind(context.Context, *RebindRequest) (*RebindResponse, error)
	Status(context.Context, *StatusRequest) (*StatusResponse, error)
	Watch(context.Context, *WatchRequest, func(*hub.Event) error) error
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*historyServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("List", historyServer.List),
		unary("Copy", historyServer.Copy),
		unary("Delete", historyServer.Delete),
		unary("Favorite", historyServer.Favorite),
		unary("Promote", historyServer.Promote),
		unary("Clear", historyServer.Clear),
		unary("Toggle", historyServer.Toggle),
		unary("Rebind", historyServer.Rebind),
		unary("Status", historyServer.Status),
	},
	Streams: []grpc.StreamDesc{{
		StreamName:    "Watch",
		Handler:       watchHandler,
		ServerStreams: true,
	}},
	Metadata: "clipbox/v1/history",
}

// Register adds the History service to gs.
func Register(gs *grpc.Server, svc *Service) {
	gs.RegisterService(&serviceDesc, svc)
}

func unary[Req, Resp any](name string, call func(historyServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			s := srv.(historyServer)
			if interceptor == nil {
				return call(s, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(name)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(s, ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

func watchHandler(srv any, stream grpc.ServerStream) error {
	in := new(WatchRequest)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(historyServer).Watch(stream.Context(), in, func(ev *hub.Event) error {
		return stream.SendMsg(ev)
	})
}

// tokenAuth validates bearer tokens on incoming calls. An empty token
// disables the check.
type tokenAuth struct {
	token string
}

func (a tokenAuth) check(ctx context.Context) error {
	if a.token == "" {
		return nil
	}
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return status.Error(codes.Unauthenticated, "missing metadata")
	}
	vals := md.Get("authorization")
	if len(vals) == 0 {
		return status.Error(codes.Unauthenticated, "missing authorization header")
	}
	if !a.valid(vals[0]) {
		return status.Error(codes.Unauthenticated, "invalid token")
	}
	return nil
}

func (a tokenAuth) valid(header string) bool {
	tok := strings.TrimPrefix(header, "Bearer ")
	return subtle.ConstantTimeCompare([]byte(tok), []byte(a.token)) == 1
}

func (a tokenAuth) unary(ctx context.Context, req any, _ *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if err := a.check(ctx); err != nil {
		return nil, err
	}
	return handler(ctx, req)
}

func (a tokenAuth) stream(srv any, ss grpc.ServerStream, _ *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
	if err := a.check(ss.Context()); err != nil {
		return err
	}
	return handler(srv, ss)
}

// NewGRPCServer returns a gRPC server with the History service registered
// and token auth installed when token is set.
func NewGRPCServer(svc *Service, token string) *grpc.Server {
	auth := tokenAuth{token: token}
	gs := grpc.NewServer(
		grpc.MaxSendMsgSize(messageLimit(svc.d.Store.MaxSize())),
		grpc.ChainUnaryInterceptor(auth.unary),
		grpc.ChainStreamInterceptor(auth.stream),
	)
	Register(gs, svc)
	return gs
}
