package core

import (
	"slices"
	"strings"
	"time"

	"github.com/pmezard/go-difflib/difflib"
)

const DefaultFuzzyDelta = 0.5

type Repository interface {
	AddEvent(event Event) Event
	RemoveEvent(id uint64) error
	UpdateEvent(id uint64, patch EventPatch) (Event, error)
	All() Matches
	ByRange(from time.Time, to time.Time) Matches
	ByDate(date Date) Matches
	ByMonth(year int, month time.Month) Matches
	ByYear(year int) Matches
	ByTitle(title string) Matches
	ByTitleSubstring(text string) Matches
	ByTitleFuzzy(text string, delta float64) Matches
	ByAuthor(text string) Matches
}

// Calendar is an ordered in-memory event store. Every event gets a monotonic
// id on insertion so that a removal never shifts which event an id refers to.
// It is not safe for concurrent use; callers serialize access.
type Calendar struct {
	events []Event
	nextId uint64
}

func NewCalendar() *Calendar {
	return &Calendar{nextId: 1}
}

func (c *Calendar) AddEvent(event Event) Event {
	event.Id = c.nextId
	c.nextId++
	c.events = append(c.events, event)

	return event
}

func (c *Calendar) RemoveEvent(id uint64) error {
	index, ok := c.indexOf(id)
	if !ok {
		return ErrEventNotFound
	}

	c.events = slices.Delete(c.events, index, index+1)

	return nil
}

func (c *Calendar) UpdateEvent(id uint64, patch EventPatch) (Event, error) {
	index, ok := c.indexOf(id)
	if !ok {
		return Event{}, ErrEventNotFound
	}

	c.events[index].Apply(patch)

	return c.events[index], nil
}

func (c *Calendar) All() Matches {
	return c.filter(func(Event) bool { return true })
}

// ByRange returns events starting within the inclusive range. The bounds may
// be given in either order.
func (c *Calendar) ByRange(from time.Time, to time.Time) Matches {
	if to.Before(from) {
		from, to = to, from
	}

	return c.filter(func(e Event) bool {
		return !e.Start.Before(from) && !e.Start.After(to)
	})
}

func (c *Calendar) ByDate(date Date) Matches {
	return c.filter(func(e Event) bool { return DateOf(e.Start) == date })
}

func (c *Calendar) ByMonth(year int, month time.Month) Matches {
	return c.filter(func(e Event) bool { return e.Start.Year() == year && e.Start.Month() == month })
}

func (c *Calendar) ByYear(year int) Matches {
	return c.filter(func(e Event) bool { return e.Start.Year() == year })
}

func (c *Calendar) ByTitle(title string) Matches {
	return c.filter(func(e Event) bool { return e.Title == title })
}

func (c *Calendar) ByTitleSubstring(text string) Matches {
	return c.filter(func(e Event) bool { return strings.Contains(e.Title, text) })
}

// ByTitleFuzzy keeps events whose title similarity ratio is strictly above delta.
func (c *Calendar) ByTitleFuzzy(text string, delta float64) Matches {
	return c.filter(func(e Event) bool { return Similarity(text, e.Title) > delta })
}

func (c *Calendar) ByAuthor(text string) Matches {
	return c.filter(func(e Event) bool { return strings.Contains(e.Author, text) })
}

func (c *Calendar) indexOf(id uint64) (int, bool) {
	index := slices.IndexFunc(c.events, func(e Event) bool { return e.Id == id })
	return index, index >= 0
}

func (c *Calendar) filter(keep func(Event) bool) Matches {
	matches := Matches{}

	for i, event := range c.events {
		if keep(event) {
			matches = append(matches, Match{Index: i, Event: event})
		}
	}

	return matches
}

// Similarity is the edit-similarity ratio 2*M/T of two strings compared rune
// by rune, where M is the number of matched runes and T the total length.
func Similarity(a string, b string) float64 {
	return difflib.NewMatcher(runes(a), runes(b)).Ratio()
}

func runes(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}

	return out
}
