package core

import (
	"fmt"
	"time"

	"github.com/samber/mo"
)

var (
	StartOfDay = Clock{Hour: 0, Minute: 0}
	EndOfDay   = Clock{Hour: 23, Minute: 59}
)

// Span is the pair of instants an event occupies.
type Span struct {
	Start    time.Time
	End      time.Time
	ShowTime bool
}

type daySource int

const (
	fromStartDate daySource = iota
	fromEndDate
)

type clockSource int

const (
	fromStartTime clockSource = iota
	fromEndTime
	atStartOfDay
	atEndOfDay
)

type presence struct {
	dateEnd   bool
	timeStart bool
	timeEnd   bool
}

type defaultingRule struct {
	startDay   daySource
	startClock clockSource
	endDay     daySource
	endClock   clockSource
}

// defaultingPolicy covers every combination of optional end date, start time
// and end time. The start date is always present.
var defaultingPolicy = map[presence]defaultingRule{
	{dateEnd: false, timeStart: false, timeEnd: false}: {fromStartDate, atStartOfDay, fromStartDate, atEndOfDay},
	{dateEnd: true, timeStart: false, timeEnd: false}:  {fromStartDate, atStartOfDay, fromEndDate, atEndOfDay},
	{dateEnd: false, timeStart: true, timeEnd: false}:  {fromStartDate, fromStartTime, fromStartDate, atEndOfDay},
	{dateEnd: false, timeStart: false, timeEnd: true}:  {fromStartDate, atStartOfDay, fromStartDate, fromEndTime},
	{dateEnd: true, timeStart: true, timeEnd: false}:   {fromStartDate, fromStartTime, fromEndDate, atEndOfDay},
	{dateEnd: true, timeStart: false, timeEnd: true}:   {fromStartDate, atStartOfDay, fromEndDate, fromEndTime},
	{dateEnd: false, timeStart: true, timeEnd: true}:   {fromStartDate, fromStartTime, fromStartDate, fromEndTime},
	{dateEnd: true, timeStart: true, timeEnd: true}:    {fromStartDate, fromStartTime, fromEndDate, fromEndTime},
}

// ResolveSpan combines a start date with the optional end date and times into
// concrete instants. ShowTime is set when either time was supplied.
func ResolveSpan(dateStart Date, dateEnd mo.Option[Date], timeStart mo.Option[Clock], timeEnd mo.Option[Clock]) Span {
	key := presence{dateEnd: dateEnd.IsPresent(), timeStart: timeStart.IsPresent(), timeEnd: timeEnd.IsPresent()}

	rule, ok := defaultingPolicy[key]
	if !ok {
		panic(fmt.Errorf("%w: %+v", ErrDefaultingPolicy, key))
	}

	days := map[daySource]Date{
		fromStartDate: dateStart,
		fromEndDate:   dateEnd.OrElse(dateStart),
	}
	clocks := map[clockSource]Clock{
		fromStartTime: timeStart.OrElse(StartOfDay),
		fromEndTime:   timeEnd.OrElse(EndOfDay),
		atStartOfDay:  StartOfDay,
		atEndOfDay:    EndOfDay,
	}

	return Span{
		Start:    days[rule.startDay].At(clocks[rule.startClock]),
		End:      days[rule.endDay].At(clocks[rule.endClock]),
		ShowTime: timeStart.IsPresent() || timeEnd.IsPresent(),
	}
}
