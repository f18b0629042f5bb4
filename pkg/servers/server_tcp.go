package servers

import (
	"context"
	"errors"
	"net"
	"sync"

	"github.com/qmdx00/lifecycle"
	"github.com/rs/zerolog/log"

	"calendar-server/pkg/resources"
)

// tcpServer accepts connections and hands each one to its handler on its own
// goroutine. Stop closes the listener and waits for in-flight connections.
type tcpServer struct {
	name     string
	address  string
	handler  ConnHandler
	metrics  *resources.ConnMetrics
	mu       sync.Mutex
	stopped  bool
	listener net.Listener
	ready    chan struct{}
	conns    sync.WaitGroup
}

func BuildTcpServer(name string, address string, handler ConnHandler) (string, Server) {
	return name, NewTcpServer(name, address, handler)
}

func NewTcpServer(name string, address string, handler ConnHandler) lifecycle.Server {
	return &tcpServer{
		name:    name,
		address: address,
		handler: handler,
		metrics: resources.NewConnMetrics(name),
		ready:   make(chan struct{}),
	}
}

// Addr is the bound address once Run is listening, nil before.
func (server *tcpServer) Addr() net.Addr {
	server.mu.Lock()
	defer server.mu.Unlock()

	if server.listener == nil {
		return nil
	}

	return server.listener.Addr()
}

func (server *tcpServer) Run(ctx context.Context) error {
	log.Ctx(ctx).Info().Str("stage", "startup").Str("component", server.name).
		Str("address", server.address).Msg("starting up")

	listener, err := net.Listen("tcp", server.address)
	if err != nil {
		log.Ctx(ctx).Error().Str("stage", "startup").Str("component", server.name).Err(err).Msg("failed to listen")
		return ErrServerFailedToStart(server.name, err)
	}

	server.mu.Lock()
	if server.stopped {
		server.mu.Unlock()
		_ = listener.Close()

		return nil
	}

	server.listener = listener
	server.mu.Unlock()
	close(server.ready)

	for {
		conn, err := listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}

			log.Ctx(ctx).Error().Str("stage", "runtime").Str("component", server.name).Err(err).Msg("failed to accept")

			return ErrServerFailedToAccept(server.name, err)
		}

		if !server.track() {
			_ = conn.Close()
			return nil
		}

		go func() {
			defer server.conns.Done()
			defer server.metrics.Track(ctx)()

			server.handler.ServeConn(ctx, conn)
		}()
	}
}

// track registers an accepted connection unless Stop has begun. Stop sets
// stopped under the same lock before it waits, so no Add races the Wait.
func (server *tcpServer) track() bool {
	server.mu.Lock()
	defer server.mu.Unlock()

	if server.stopped {
		return false
	}

	server.conns.Add(1)

	return true
}

func (server *tcpServer) Stop(ctx context.Context) error {
	log.Ctx(ctx).Info().Str("stage", "shut down").Str("component", server.name).Msg("stopping")
	defer log.Ctx(ctx).Info().Str("stage", "shut down").Str("component", server.name).Msg("stopped")

	server.mu.Lock()
	server.stopped = true
	listener := server.listener
	server.mu.Unlock()

	if listener != nil {
		err := listener.Close()
		if err != nil && !errors.Is(err, net.ErrClosed) {
			log.Ctx(ctx).Error().Str("stage", "shut down").Str("component", server.name).Err(err).Msg("failed to stop")
			return ErrServerFailedToStop(server.name, err)
		}
	}

	done := make(chan struct{})

	go func() {
		server.conns.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ErrServerFailedToStop(server.name, ctx.Err())
	}
}
