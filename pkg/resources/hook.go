package resources

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"reflect"
	"slices"
	"time"

	"github.com/rs/zerolog"
	otelog "go.opentelemetry.io/otel/log"
)

type severity struct {
	number otelog.Severity
	text   string
}

var severities = map[zerolog.Level]severity{
	zerolog.TraceLevel: {otelog.SeverityTrace, "TRACE"},
	zerolog.DebugLevel: {otelog.SeverityDebug, "DEBUG"},
	zerolog.InfoLevel:  {otelog.SeverityInfo, "INFO"},
	zerolog.WarnLevel:  {otelog.SeverityWarn, "WARN"},
	zerolog.ErrorLevel: {otelog.SeverityError, "ERROR"},
	zerolog.FatalLevel: {otelog.SeverityFatal, "FATAL"},
	zerolog.PanicLevel: {otelog.SeverityFatal4, "PANIC"},
}

// ZerologHook mirrors zerolog events at or above minLevel into an
// OpenTelemetry logger. Event fields such as conn_id or component become
// record attributes and the event context carries the active span.
type ZerologHook struct {
	logger   otelog.Logger
	minLevel zerolog.Level
	service  []otelog.KeyValue
}

func NewZerologHook(provider otelog.LoggerProvider, serviceName string, serviceVersion string, minLevel zerolog.Level) *ZerologHook {
	return &ZerologHook{
		logger:   provider.Logger(serviceName),
		minLevel: minLevel,
		service: []otelog.KeyValue{
			otelog.String("service.name", serviceName),
			otelog.String("service.version", serviceVersion),
		},
	}
}

func (h *ZerologHook) Run(e *zerolog.Event, level zerolog.Level, msg string) {
	sev, ok := severities[level]
	if !ok || level < h.minLevel {
		return
	}

	fields := eventFields(e)

	var rec otelog.Record
	rec.SetTimestamp(eventTime(fields))
	rec.SetObservedTimestamp(time.Now())
	rec.SetSeverity(sev.number)
	rec.SetSeverityText(sev.text)
	rec.SetBody(otelog.StringValue(msg))
	rec.AddAttributes(h.service...)

	for _, key := range slices.Sorted(maps.Keys(fields)) {
		switch key {
		case zerolog.LevelFieldName, zerolog.MessageFieldName, zerolog.TimestampFieldName:
			continue
		}

		rec.AddAttributes(otelog.KeyValue{Key: key, Value: attributeValue(fields[key])})
	}

	ctx := e.GetCtx()
	if ctx == nil {
		ctx = context.Background()
	}

	h.logger.Emit(ctx, rec)
}

// eventFields decodes what has been written to the event so far. zerolog keeps
// it in an unexported buffer holding a JSON object without its closing brace.
func eventFields(e *zerolog.Event) map[string]any {
	if e == nil {
		return nil
	}

	buf := reflect.ValueOf(e).Elem().FieldByName("buf")
	if !buf.IsValid() || buf.Kind() != reflect.Slice || buf.Type().Elem().Kind() != reflect.Uint8 {
		return nil
	}

	data := append([]byte(nil), buf.Bytes()...)
	if len(data) == 0 {
		return nil
	}

	if data[len(data)-1] != '}' {
		data = append(data, '}')
	}

	var fields map[string]any
	if json.Unmarshal(data, &fields) != nil {
		return nil
	}

	return fields
}

func eventTime(fields map[string]any) time.Time {
	if raw, ok := fields[zerolog.TimestampFieldName].(string); ok {
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
			if ts, err := time.Parse(layout, raw); err == nil {
				return ts
			}
		}
	}

	return time.Now()
}

func attributeValue(value any) otelog.Value {
	switch v := value.(type) {
	case string:
		return otelog.StringValue(v)
	case bool:
		return otelog.BoolValue(v)
	case float64:
		if v == float64(int64(v)) {
			return otelog.Int64Value(int64(v))
		}

		return otelog.Float64Value(v)
	default:
		return otelog.StringValue(fmt.Sprint(v))
	}
}
