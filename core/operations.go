package core

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/samber/mo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const DefaultInfoMaxLength = 1312

type AddParams struct {
	Author string `json:"author"`
	Dates  string `json:"dates"`
	Times  string `json:"times"`
	Title  string `json:"title"`
	Info   string `json:"info"`
}

type ModifyParams struct {
	Author mo.Option[string]
	Dates  mo.Option[string]
	Times  mo.Option[string]
	Title  mo.Option[string]
	Info   mo.Option[string]
}

type Operations interface {
	Add(ctx context.Context, params AddParams) (Event, error)
	Remove(ctx context.Context, term string) (Result, error)
	Modify(ctx context.Context, term string, params ModifyParams) (Result, error)
	Search(ctx context.Context, term string) Matches
	List(ctx context.Context) Matches
	ByMonth(ctx context.Context, year int, month time.Month) Matches
	ByYear(ctx context.Context, year int) Matches
}

type OperationsOption func(*operations)

func WithParser(parser *Parser) OperationsOption {
	return func(o *operations) {
		o.parser = parser
	}
}

func WithFuzzyDelta(delta float64) OperationsOption {
	return func(o *operations) {
		o.delta = delta
	}
}

func WithInfoMaxLength(limit int) OperationsOption {
	return func(o *operations) {
		o.infoMax = limit
	}
}

// operations serializes every call on one mutex; the calendar itself has no
// locking.
type operations struct {
	mu         sync.Mutex
	tracer     trace.Tracer
	metrics    *OperationMetrics
	repository Repository
	parser     *Parser
	delta      float64
	infoMax    int
}

func NewOperations(repository Repository, options ...OperationsOption) Operations {
	o := &operations{
		tracer:     otel.GetTracerProvider().Tracer("calendar-server/core"),
		metrics:    NewOperationMetrics(),
		repository: repository,
		parser:     NewParser(),
		delta:      DefaultFuzzyDelta,
		infoMax:    DefaultInfoMaxLength,
	}

	for _, option := range options {
		option(o)
	}

	return o
}

func (o *operations) Add(ctx context.Context, params AddParams) (Event, error) {
	start := time.Now()

	var err error

	defer func() { o.metrics.Observe(ctx, "add", start, err) }()

	ctx, span := o.tracer.Start(ctx, "operations.Add")
	defer span.End()

	o.mu.Lock()
	defer o.mu.Unlock()

	dateStart, dateEnd := o.parser.ParseDateRange(params.Dates)
	timeStart, timeEnd := o.parser.ParseTimeRange(params.Times)

	first, ok := dateStart.Get()
	if !ok {
		err = fmt.Errorf("%w: a start date is required, got %q", ErrInvalidEvent, params.Dates)
		return Event{}, err
	}

	resolved := ResolveSpan(first, dateEnd, timeStart, timeEnd)
	event := Event{
		Author:   params.Author,
		Title:    params.Title,
		Start:    resolved.Start,
		End:      resolved.End,
		Info:     truncate(params.Info, o.infoMax),
		ShowTime: resolved.ShowTime,
	}

	err = ValidateEvent(event)
	if err != nil {
		return Event{}, err
	}

	event = o.repository.AddEvent(event)
	log.Ctx(ctx).Debug().Uint64("event_id", event.Id).Str("title", event.Title).Msg("event added")

	return event, nil
}

func (o *operations) Remove(ctx context.Context, term string) (Result, error) {
	start := time.Now()

	var err error

	defer func() { o.metrics.Observe(ctx, "remove", start, err) }()

	ctx, span := o.tracer.Start(ctx, "operations.Remove")
	defer span.End()

	o.mu.Lock()
	defer o.mu.Unlock()

	matches := o.search(term)
	if len(matches) != 1 {
		return Result{Candidates: matches}, nil
	}

	err = o.repository.RemoveEvent(matches[0].Id)
	if err != nil {
		return Result{}, fmt.Errorf("failed to remove event %d: %w", matches[0].Id, err)
	}

	log.Ctx(ctx).Debug().Uint64("event_id", matches[0].Id).Msg("event removed")

	return Result{Applied: true}, nil
}

func (o *operations) Modify(ctx context.Context, term string, params ModifyParams) (Result, error) {
	start := time.Now()

	var err error

	defer func() { o.metrics.Observe(ctx, "modify", start, err) }()

	ctx, span := o.tracer.Start(ctx, "operations.Modify")
	defer span.End()

	o.mu.Lock()
	defer o.mu.Unlock()

	matches := o.search(term)
	if len(matches) != 1 {
		return Result{Candidates: matches}, nil
	}

	target := matches[0].Event

	patch, err := o.patch(target, params)
	if err != nil {
		return Result{}, err
	}

	preview := target
	preview.Apply(patch)

	err = ValidateEvent(preview)
	if err != nil {
		return Result{}, err
	}

	_, err = o.repository.UpdateEvent(target.Id, patch)
	if err != nil {
		return Result{}, fmt.Errorf("failed to update event %d: %w", target.Id, err)
	}

	log.Ctx(ctx).Debug().Uint64("event_id", target.Id).Msg("event modified")

	return Result{Applied: true}, nil
}

func (o *operations) Search(ctx context.Context, term string) Matches {
	start := time.Now()
	defer func() { o.metrics.Observe(ctx, "search", start, nil) }()

	_, span := o.tracer.Start(ctx, "operations.Search")
	defer span.End()

	o.mu.Lock()
	defer o.mu.Unlock()

	return o.search(term)
}

func (o *operations) List(ctx context.Context) Matches {
	start := time.Now()
	defer func() { o.metrics.Observe(ctx, "list", start, nil) }()

	o.mu.Lock()
	defer o.mu.Unlock()

	return o.repository.All()
}

func (o *operations) ByMonth(ctx context.Context, year int, month time.Month) Matches {
	start := time.Now()
	defer func() { o.metrics.Observe(ctx, "by_month", start, nil) }()

	o.mu.Lock()
	defer o.mu.Unlock()

	return o.repository.ByMonth(year, month)
}

func (o *operations) ByYear(ctx context.Context, year int) Matches {
	start := time.Now()
	defer func() { o.metrics.Observe(ctx, "by_year", start, nil) }()

	o.mu.Lock()
	defer o.mu.Unlock()

	return o.repository.ByYear(year)
}

func (o *operations) search(term string) Matches {
	return NewSearcher(o.repository, o.parser, o.delta).Search(term)
}

// patch turns modify parameters into an EventPatch. New dates or times are
// resolved through the defaulting policy; whichever of the two is not given is
// taken from the event being modified.
func (o *operations) patch(target Event, params ModifyParams) (EventPatch, error) {
	patch := EventPatch{
		Author: params.Author,
		Title:  params.Title,
		Info:   mo.None[string](),
	}

	if info, ok := params.Info.Get(); ok {
		patch.Info = mo.Some(truncate(info, o.infoMax))
	}

	if params.Dates.IsAbsent() && params.Times.IsAbsent() {
		return patch, nil
	}

	dateStart, dateEnd := mo.Some(DateOf(target.Start)), mo.None[Date]()
	if !target.SameDay() {
		dateEnd = mo.Some(DateOf(target.End))
	}

	if dates, ok := params.Dates.Get(); ok {
		dateStart, dateEnd = o.parser.ParseDateRange(dates)
	}

	first, ok := dateStart.Get()
	if !ok {
		return EventPatch{}, fmt.Errorf("%w: a start date is required, got %q", ErrInvalidEvent, params.Dates.OrEmpty())
	}

	timeStart, timeEnd := mo.None[Clock](), mo.None[Clock]()
	if target.ShowTime {
		timeStart, timeEnd = mo.Some(ClockOf(target.Start)), mo.Some(ClockOf(target.End))
	}

	if times, ok := params.Times.Get(); ok {
		timeStart, timeEnd = o.parser.ParseTimeRange(times)
	}

	span := ResolveSpan(first, dateEnd, timeStart, timeEnd)
	patch.Start = mo.Some(span.Start)
	patch.End = mo.Some(span.End)
	patch.ShowTime = mo.Some(span.ShowTime)

	return patch, nil
}

/*

 */

type OperationMetrics struct {
	total   metric.Int64Counter
	errors  metric.Int64Counter
	latency metric.Float64Histogram
}

func NewOperationMetrics() *OperationMetrics {
	meter := otel.Meter("calendar-server/operations")

	total, _ := meter.Int64Counter("calendar.operation.total")
	errs, _ := meter.Int64Counter("calendar.operation.errors.total")
	latency, _ := meter.Float64Histogram("calendar.operation.duration.ms")

	return &OperationMetrics{total: total, errors: errs, latency: latency}
}

func (m *OperationMetrics) Observe(ctx context.Context, op string, start time.Time, err error) {
	attrs := []attribute.KeyValue{
		attribute.String("calendar.operation", op),
	}

	m.total.Add(ctx, 1, metric.WithAttributes(attrs...))

	ms := float64(time.Since(start).Milliseconds())
	m.latency.Record(ctx, ms, metric.WithAttributes(attrs...))

	if err != nil {
		m.errors.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}
