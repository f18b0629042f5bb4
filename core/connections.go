package core

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	DefaultMessageMaxBytes = 1024
	connectionTimeout      = 30 * time.Second
)

// ConnectionHandler serves one command per connection: it reads a single line,
// executes it and writes the response before the connection is closed.
type ConnectionHandler struct {
	dispatcher *Dispatcher
	maxBytes   int64
	timeout    time.Duration
}

func NewConnectionHandler(dispatcher *Dispatcher, maxBytes int) *ConnectionHandler {
	if maxBytes <= 0 {
		maxBytes = DefaultMessageMaxBytes
	}

	return &ConnectionHandler{dispatcher: dispatcher, maxBytes: int64(maxBytes), timeout: connectionTimeout}
}

func (h *ConnectionHandler) ServeConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	logger := log.Ctx(ctx).With().
		Str("component", "command-handler").
		Str("conn_id", uuid.NewString()).
		Str("remote", conn.RemoteAddr().String()).
		Logger()
	ctx = logger.WithContext(ctx)

	_ = conn.SetDeadline(time.Now().Add(h.timeout))

	message, err := bufio.NewReader(io.LimitReader(conn, h.maxBytes)).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		logger.Error().Err(err).Msg("failed to read message")
		return
	}

	if !strings.HasSuffix(message, "\n") && int64(len(message)) >= h.maxBytes {
		logger.Warn().Int64("limit", h.maxBytes).Msg("message reached the size limit and was truncated")
	}

	message = strings.TrimSpace(message)
	logger.Info().Str("message", message).Msg("received")

	response, err := h.dispatcher.Execute(ctx, message)
	if err != nil {
		logger.Error().Err(err).Msg("command failed")
		response = "ERROR " + NewError("command failed", err).Error()
	}

	if response == "" {
		logger.Info().Msg("executed")
		return
	}

	_, err = io.WriteString(conn, response+"\n")
	if err != nil {
		logger.Error().Err(err).Msg("failed to write response")
		return
	}

	logger.Info().Int("bytes", len(response)+1).Msg("sent")
}
