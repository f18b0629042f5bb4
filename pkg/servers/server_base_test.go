package servers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"calendar-server/pkg/resources"
)

func TestBaseServer_StopClosesClosables(t *testing.T) {
	t.Parallel()

	var closed []string

	name, server := BuildBaseServer(
		resources.CloseFn(func() { closed = append(closed, "first") }),
		resources.CloseFn(func() { closed = append(closed, "second") }),
	)
	assert.Equal(t, "base-server", name)

	done := make(chan error, 1)

	go func() {
		done <- server.Run(context.Background())
	}()

	require.NoError(t, server.Stop(context.Background()))
	require.NoError(t, server.Stop(context.Background()))

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		require.FailNow(t, "base server did not return after stop")
	}

	assert.Equal(t, []string{"first", "second"}, closed)
}

func TestStart(t *testing.T) {
	t.Parallel()

	var closed bool

	_, server := BuildBaseServer(resources.CloseFn(func() { closed = true }))

	errChan := make(chan error, 1)
	stop := Start(context.Background(), "base-server", server, errChan)

	stop(context.Background(), time.Second)

	assert.True(t, closed)
	assert.Empty(t, errChan)
}
