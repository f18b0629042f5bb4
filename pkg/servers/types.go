package servers

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/qmdx00/lifecycle"
)

var (
	_ Server = (*baseServer)(nil)
	_ Server = (*httpServer)(nil)
	_ Server = (*tcpServer)(nil)
)

type Server interface {
	lifecycle.Server
}

// ConnHandler serves one accepted connection and is responsible for closing it.
type ConnHandler interface {
	ServeConn(ctx context.Context, conn net.Conn)
}

type ConnHandlerFunc func(ctx context.Context, conn net.Conn)

func (fn ConnHandlerFunc) ServeConn(ctx context.Context, conn net.Conn) {
	fn(ctx, conn)
}

type StopFn func(ctx context.Context, timeout time.Duration)

//

var (
	_ BuildHttpServerFn = BuildHttpServer
	_ BuildTcpServerFn  = BuildTcpServer
)

type BuildHttpServerFn func(name string, server *http.Server) (string, Server)

type BuildTcpServerFn func(name string, address string, handler ConnHandler) (string, Server)
