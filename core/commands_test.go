package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		message        string
		wantCommand    string
		wantParameters string
		wantErr        error
	}{
		{name: "command with parameters", message: "add alice,1.6.2024", wantCommand: "add", wantParameters: "alice,1.6.2024"},
		{name: "parameters keep spaces", message: "search Standup review", wantCommand: "search", wantParameters: "Standup review"},
		{name: "command is case insensitive", message: "SEARCH x", wantCommand: "search", wantParameters: "x"},
		{name: "command only", message: "list\r\n", wantCommand: "list", wantParameters: ""},
		{name: "empty", message: "  ", wantErr: ErrMalformedMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			command, parameters, err := ParseMessage(tt.message)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantCommand, command)
			assert.Equal(t, tt.wantParameters, parameters)
		})
	}
}

func TestSplitParameters(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"alice", "1.6.2024", "", "", ""}, SplitParameters("alice,1.6.2024", 5))
	assert.Equal(t, []string{"a", "b", "c", "d", "e,f"}, SplitParameters("a,b,c,d,e,f", 5))
	assert.Equal(t, []string{"", ""}, SplitParameters("", 2))
}

func TestDispatcher_Execute(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dispatcher := NewDispatcher(newTestOperations(NewCalendar()))

	response, err := dispatcher.Execute(ctx, "add alice,1.6.2024,,Standup,daily")
	require.NoError(t, err)
	assert.Empty(t, response)

	response, err = dispatcher.Execute(ctx, "add bob,1.6.2024,9-10,Standup prep")
	require.NoError(t, err)
	assert.Empty(t, response)

	response, err = dispatcher.Execute(ctx, "search Standup")
	require.NoError(t, err)
	assert.Equal(t, "(01.06.2024) alice Standup\ndaily", response)

	response, err = dispatcher.Execute(ctx, "list")
	require.NoError(t, err)
	assert.Equal(t, "(01.06.2024) alice Standup\ndaily\n(01.06.2024 09:00-10:00) bob Standup prep", response)

	response, err = dispatcher.Execute(ctx, "remove 1.6.2024")
	require.NoError(t, err)
	assert.Equal(t, "(01.06.2024) alice Standup\ndaily\n(01.06.2024 09:00-10:00) bob Standup prep", response)

	response, err = dispatcher.Execute(ctx, "modify Standup prep,,,10-11,,")
	require.NoError(t, err)
	assert.Empty(t, response)

	response, err = dispatcher.Execute(ctx, "search bob")
	require.NoError(t, err)
	assert.Equal(t, "(01.06.2024 10:00-11:00) bob Standup prep", response)

	response, err = dispatcher.Execute(ctx, "export bob")
	require.NoError(t, err)
	assert.Contains(t, response, "BEGIN:VCALENDAR")
	assert.Contains(t, response, "SUMMARY:Standup prep")

	response, err = dispatcher.Execute(ctx, "remove bob")
	require.NoError(t, err)
	assert.Empty(t, response)

	response, err = dispatcher.Execute(ctx, "search bob")
	require.NoError(t, err)
	assert.Equal(t, "no events found", response)

	response, err = dispatcher.Execute(ctx, "export zzzz")
	require.NoError(t, err)
	assert.Equal(t, "no events found", response)
}

func TestDispatcher_Errors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dispatcher := NewDispatcher(newTestOperations(NewCalendar()))

	_, err := dispatcher.Execute(ctx, "frobnicate x")
	require.ErrorIs(t, err, ErrUnknownOperation)

	_, err = dispatcher.Execute(ctx, "")
	require.ErrorIs(t, err, ErrMalformedMessage)

	_, err = dispatcher.Execute(ctx, "add alice")
	require.ErrorIs(t, err, ErrInvalidEvent)
}

func TestDispatcher_MutationsNeedATerm(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := NewCalendar()
	dispatcher := NewDispatcher(newTestOperations(c))

	_, err := dispatcher.Execute(ctx, "add alice,1.6.2024,,Standup,daily")
	require.NoError(t, err)

	for _, message := range []string{"remove", "remove   ", "modify", "modify ,bob,,,,", "modify  ,,,,Retro,"} {
		_, err = dispatcher.Execute(ctx, message)
		require.ErrorIs(t, err, ErrMalformedMessage, message)
	}

	require.Len(t, c.All(), 1)
	assert.Equal(t, "alice", c.All()[0].Author)
	assert.Equal(t, "Standup", c.All()[0].Title)
}
