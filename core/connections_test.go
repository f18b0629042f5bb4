package core

import (
	"bytes"
	"context"
	"io"
	"net"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exchange(t *testing.T, ctx context.Context, handler *ConnectionHandler, message string) string {
	t.Helper()

	client, server := net.Pipe()

	done := make(chan struct{})

	go func() {
		defer close(done)
		handler.ServeConn(ctx, server)
	}()

	// the handler may stop reading at the size limit and close
	go func() {
		_, _ = io.WriteString(client, message)
	}()

	response, err := io.ReadAll(client)
	require.NoError(t, err)

	<-done
	_ = client.Close()

	return string(response)
}

func TestConnectionHandler_ServeConn(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	handler := NewConnectionHandler(NewDispatcher(newTestOperations(NewCalendar())), 0)

	assert.Empty(t, exchange(t, ctx, handler, "add alice,1.6.2024,,Standup,daily\n"))
	assert.Equal(t, "(01.06.2024) alice Standup\ndaily\n", exchange(t, ctx, handler, "search Standup\n"))
	assert.Equal(t, "no events found\n", exchange(t, ctx, handler, "search Retro\n"))

	response := exchange(t, ctx, handler, "frobnicate\n")
	assert.Contains(t, response, "ERROR ")
	assert.Contains(t, response, "unknown operation")

	response = exchange(t, ctx, handler, "remove\n")
	assert.Contains(t, response, "malformed message")
}

func TestConnectionHandler_MessageLimit(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer

	ctx := zerolog.New(&logs).WithContext(context.Background())
	handler := NewConnectionHandler(NewDispatcher(newTestOperations(NewCalendar())), 32)

	// only the first 32 bytes arrive: "add alice,1.6.2024,,Standup,abcd"
	assert.Empty(t, exchange(t, ctx, handler, "add alice,1.6.2024,,Standup,abcdefghijklmnopqrstuvwxyz\n"))
	assert.Contains(t, logs.String(), "truncated")
	assert.Contains(t, logs.String(), `"limit":32`)

	logs.Reset()

	assert.Equal(t, "(01.06.2024) alice Standup\nabcd\n", exchange(t, ctx, handler, "search Standup\n"))
	assert.NotContains(t, logs.String(), "truncated")
}
