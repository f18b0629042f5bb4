package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSearcher_Search(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		term string
		want []string
	}{
		{
			name: "single date matches the start day",
			term: "1.6.2024",
			want: []string{"Standup"},
		},
		{
			name: "date range covers whole days",
			term: "1.6.2024-10.6.2024",
			want: []string{"Standup", "Planning", "Standup review"},
		},
		// A later-first range is read as the same span, not as an empty one.
		{
			name: "reversed date range",
			term: "10.6.2024-1.6.2024",
			want: []string{"Standup", "Planning", "Standup review"},
		},
		{
			name: "shorthand date range",
			term: "2.-10.6.24",
			want: []string{"Planning", "Standup review"},
		},
		{
			name: "exact title wins over substring",
			term: "Standup",
			want: []string{"Standup"},
		},
		{
			name: "author substring",
			term: "alice",
			want: []string{"Standup", "Standup review"},
		},
		{
			name: "fuzzy and substring fallback",
			term: "Standup rev",
			want: []string{"Standup", "Standup review"},
		},
		{
			name: "typo falls back to fuzzy",
			term: "Retor",
			want: []string{"Retro"},
		},
		{
			name: "nothing matches",
			term: "zzzz",
			want: []string{},
		},
		{
			name: "end date alone is a text search",
			term: "abc-1.6.2024",
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			searcher := NewSearcher(seedCalendar(), newTestParser(), DefaultFuzzyDelta)
			assert.Equal(t, tt.want, titles(searcher.Search(tt.term)))
		})
	}
}

func TestSearcher_ExactTitleEqualsEveryStrategy(t *testing.T) {
	t.Parallel()

	c := seedCalendar()

	for _, matches := range []Matches{
		c.ByTitle("Retro"),
		c.ByTitleSubstring("Retro"),
		c.ByTitleFuzzy("Retro", DefaultFuzzyDelta),
	} {
		assert.Equal(t, []string{"Retro"}, titles(matches))
	}
}

func TestUnion(t *testing.T) {
	t.Parallel()

	a := Matches{{Index: 2, Event: Event{Id: 3}}, {Index: 0, Event: Event{Id: 1}}}
	b := Matches{{Index: 0, Event: Event{Id: 1}}, {Index: 1, Event: Event{Id: 2}}}

	got := union(a, b)

	assert.Len(t, got, 3)
	assert.Equal(t, []int{0, 1, 2}, []int{got[0].Index, got[1].Index, got[2].Index})
}
