package core

import (
	"fmt"
	"io"
	"time"

	"github.com/emersion/go-ical"
)

const (
	icsProductId  = "-//calendar-server//NONSGML v1.0//EN"
	icsAuthorProp = "X-CALENDAR-AUTHOR"
)

// EncodeICS writes the events as one VCALENDAR. Events without a time of day
// are exported as all-day dates.
func EncodeICS(w io.Writer, events []Event, stamp time.Time) error {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropProductID, icsProductId)
	cal.Props.SetText(ical.PropVersion, "2.0")

	for _, e := range events {
		event := ical.NewEvent()
		event.Props.SetText(ical.PropUID, fmt.Sprintf("event-%d@calendar-server", e.Id))
		event.Props.SetText(ical.PropSummary, e.Title)
		event.Props.SetText(icsAuthorProp, e.Author)
		event.Props.SetDateTime(ical.PropDateTimeStamp, stamp.UTC())

		if e.ShowTime {
			event.Props.SetDateTime(ical.PropDateTimeStart, e.Start)
			event.Props.SetDateTime(ical.PropDateTimeEnd, e.End)
		} else {
			event.Props.SetDate(ical.PropDateTimeStart, e.Start)
			// DTEND of an all-day event is exclusive
			event.Props.SetDate(ical.PropDateTimeEnd, DateOf(e.End).At(StartOfDay).AddDate(0, 0, 1))
		}

		if e.Info != "" {
			event.Props.SetText(ical.PropDescription, e.Info)
		}

		cal.Children = append(cal.Children, event.Component)
	}

	err := ical.NewEncoder(w).Encode(cal)
	if err != nil {
		return fmt.Errorf("failed to encode calendar: %w", err)
	}

	return nil
}
