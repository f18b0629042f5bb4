package core

import (
	"testing"
	"time"

	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
)

func TestEvent_String(t *testing.T) {
	t.Parallel()

	at := func(day int, hour int, minute int) time.Time {
		return time.Date(2024, time.June, day, hour, minute, 0, 0, time.UTC)
	}

	tests := []struct {
		name  string
		event Event
		want  string
	}{
		{
			name:  "all day",
			event: Event{Author: "alice", Title: "Standup", Start: at(1, 0, 0), End: at(1, 23, 59)},
			want:  "(01.06.2024) alice Standup",
		},
		{
			name:  "several days",
			event: Event{Author: "alice", Title: "Offsite", Start: at(1, 0, 0), End: at(3, 23, 59)},
			want:  "(01.06.2024-03.06.2024) alice Offsite",
		},
		{
			name:  "timed on one day",
			event: Event{Author: "bob", Title: "Planning", Start: at(1, 9, 30), End: at(1, 17, 15), ShowTime: true},
			want:  "(01.06.2024 09:30-17:15) bob Planning",
		},
		{
			name:  "timed over several days",
			event: Event{Author: "bob", Title: "Hackathon", Start: at(1, 9, 30), End: at(3, 17, 15), ShowTime: true},
			want:  "(01.06.2024 09:30-03.06.2024 17:15) bob Hackathon",
		},
		{
			name:  "with note",
			event: Event{Author: "alice", Title: "Standup", Start: at(1, 0, 0), End: at(1, 23, 59), Info: "daily"},
			want:  "(01.06.2024) alice Standup\ndaily",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, tt.event.String())
		})
	}
}

func TestEvent_SameDay(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)

	assert.True(t, Event{Start: start, End: start.Add(23 * time.Hour)}.SameDay())
	assert.False(t, Event{Start: start, End: start.Add(25 * time.Hour)}.SameDay())
}

func TestEvent_Apply(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	event := Event{Id: 7, Author: "alice", Title: "Standup", Start: start, End: start, Info: "daily"}

	event.Apply(EventPatch{
		Title: mo.Some("Daily standup"),
		Info:  mo.Some(""),
	})

	assert.Equal(t, uint64(7), event.Id)
	assert.Equal(t, "alice", event.Author)
	assert.Equal(t, "Daily standup", event.Title)
	assert.Empty(t, event.Info)
	assert.Equal(t, start, event.Start)
}

func TestMatches_String(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(23*time.Hour + 59*time.Minute)

	assert.Equal(t, "no events found", Matches{}.String())

	matches := Matches{
		{Index: 0, Event: Event{Author: "alice", Title: "Standup", Start: start, End: end}},
		{Index: 2, Event: Event{Author: "bob", Title: "Retro", Start: start, End: end}},
	}
	assert.Equal(t, "(01.06.2024) alice Standup\n(01.06.2024) bob Retro", matches.String())
	assert.Len(t, matches.Events(), 2)
}
