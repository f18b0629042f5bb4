package servers

import (
	"bufio"
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echoHandler() ConnHandler {
	return ConnHandlerFunc(func(_ context.Context, conn net.Conn) {
		defer conn.Close()

		line, err := bufio.NewReader(conn).ReadString('\n')
		if err != nil {
			return
		}

		_, _ = conn.Write([]byte(line))
	})
}

func TestTcpServer_RunAndStop(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	server := NewTcpServer("tcp-test", "127.0.0.1:0", echoHandler()).(*tcpServer)

	assert.Nil(t, server.Addr())

	errChan := make(chan error, 1)

	go func() {
		errChan <- server.Run(ctx)
	}()

	select {
	case <-server.ready:
	case err := <-errChan:
		require.FailNow(t, "server did not start", err)
	case <-time.After(5 * time.Second):
		require.FailNow(t, "server did not start in time")
	}

	conn, err := net.Dial("tcp", server.Addr().String())
	require.NoError(t, err)

	_, err = conn.Write([]byte("hello\n"))
	require.NoError(t, err)

	reply, err := bufio.NewReader(conn).ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "hello\n", reply)
	require.NoError(t, conn.Close())

	stopCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	require.NoError(t, server.Stop(stopCtx))
	require.NoError(t, <-errChan)
}

func TestTcpServer_RunFailsOnBadAddress(t *testing.T) {
	t.Parallel()

	_, server := BuildTcpServer("tcp-test", "256.0.0.1:bad", echoHandler())

	err := server.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tcp-test failed to start")
}

func TestTcpServer_StopBeforeRun(t *testing.T) {
	t.Parallel()

	server := NewTcpServer("tcp-test", "127.0.0.1:0", echoHandler()).(*tcpServer)

	require.NoError(t, server.Stop(context.Background()))
	require.NoError(t, server.Run(context.Background()))
	assert.Nil(t, server.Addr())
}

func TestTcpServer_ConnectionsAfterStopAreNotTracked(t *testing.T) {
	t.Parallel()

	server := NewTcpServer("tcp-test", "127.0.0.1:0", echoHandler()).(*tcpServer)

	require.True(t, server.track())
	server.conns.Done()

	require.NoError(t, server.Stop(context.Background()))
	assert.False(t, server.track())
}

func TestTcpServer_StopWaitsForInFlightConnections(t *testing.T) {
	t.Parallel()

	entered := make(chan struct{})
	release := make(chan struct{})
	served := make(chan struct{})

	handler := ConnHandlerFunc(func(_ context.Context, conn net.Conn) {
		defer conn.Close()
		defer close(served)

		close(entered)
		<-release
	})

	server := NewTcpServer("tcp-test", "127.0.0.1:0", handler).(*tcpServer)

	errChan := make(chan error, 1)

	go func() {
		errChan <- server.Run(context.Background())
	}()

	<-server.ready

	conn, err := net.Dial("tcp", server.Addr().String())
	require.NoError(t, err)

	defer conn.Close()

	<-entered

	stopCtx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	require.Error(t, server.Stop(stopCtx))

	close(release)
	<-served

	require.NoError(t, server.Stop(context.Background()))
	require.NoError(t, <-errChan)
}
