package core

import (
	"strings"
	"time"

	"github.com/samber/mo"
)

const (
	dateLayout     = "02.01.2006"
	dateTimeLayout = "02.01.2006 15:04"
	clockLayout    = "15:04"
)

type Event struct {
	Id       uint64    `json:"id"`
	Author   string    `json:"author"`
	Title    string    `json:"title"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	Info     string    `json:"info,omitempty"`
	ShowTime bool      `json:"show_time"`
}

func (e Event) SameDay() bool {
	return DateOf(e.Start) == DateOf(e.End)
}

// String renders "(when) author title" followed by the note on its own line.
func (e Event) String() string {
	var when string

	switch {
	case e.ShowTime && e.SameDay():
		when = e.Start.Format(dateTimeLayout) + "-" + e.End.Format(clockLayout)
	case e.ShowTime:
		when = e.Start.Format(dateTimeLayout) + "-" + e.End.Format(dateTimeLayout)
	case e.SameDay():
		when = e.Start.Format(dateLayout)
	default:
		when = e.Start.Format(dateLayout) + "-" + e.End.Format(dateLayout)
	}

	var sb strings.Builder
	sb.WriteString("(" + when + ") " + e.Author + " " + e.Title)

	if e.Info != "" {
		sb.WriteString("\n" + e.Info)
	}

	return sb.String()
}

// Apply overwrites every field present in the patch.
func (e *Event) Apply(patch EventPatch) {
	e.Author = patch.Author.OrElse(e.Author)
	e.Title = patch.Title.OrElse(e.Title)
	e.Info = patch.Info.OrElse(e.Info)
	e.Start = patch.Start.OrElse(e.Start)
	e.End = patch.End.OrElse(e.End)
	e.ShowTime = patch.ShowTime.OrElse(e.ShowTime)
}

type EventPatch struct {
	Author   mo.Option[string]
	Title    mo.Option[string]
	Info     mo.Option[string]
	Start    mo.Option[time.Time]
	End      mo.Option[time.Time]
	ShowTime mo.Option[bool]
}

// Match is an event together with its position in the calendar at query time.
type Match struct {
	Index int `json:"index"`
	Event
}

type Matches []Match

func (m Matches) Events() []Event {
	events := make([]Event, 0, len(m))
	for _, match := range m {
		events = append(events, match.Event)
	}

	return events
}

func (m Matches) String() string {
	if len(m) == 0 {
		return "no events found"
	}

	blocks := make([]string, 0, len(m))
	for _, match := range m {
		blocks = append(blocks, match.Event.String())
	}

	return strings.Join(blocks, "\n")
}

// Result is what a gated mutation reports: either it was applied, or the
// candidates the search term resolved to.
type Result struct {
	Applied    bool    `json:"applied"`
	Candidates Matches `json:"candidates"`
}
