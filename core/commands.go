package core

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/samber/mo"
)

const (
	CommandAdd    = "add"
	CommandRemove = "remove"
	CommandModify = "modify"
	CommandSearch = "search"
	CommandList   = "list"
	CommandExport = "export"

	ParameterDelimiter = ","
	addFieldCount      = 5
)

// ParseMessage splits "COMMAND params" on the first space.
func ParseMessage(message string) (string, string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", "", fmt.Errorf("%w: empty message", ErrMalformedMessage)
	}

	command, parameters, _ := strings.Cut(message, " ")

	return strings.ToLower(command), strings.TrimSpace(parameters), nil
}

// SplitParameters splits on the first count-1 delimiters and pads the result
// with empty fields up to count.
func SplitParameters(parameters string, count int) []string {
	fields := strings.SplitN(parameters, ParameterDelimiter, count)
	for len(fields) < count {
		fields = append(fields, "")
	}

	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}

	return fields
}

type Dispatcher struct {
	operations Operations
	now        func() time.Time
}

func NewDispatcher(operations Operations) *Dispatcher {
	return &Dispatcher{operations: operations, now: time.Now}
}

// Execute runs one command line and returns the text to send back. An empty
// response means the command succeeded without a payload.
func (d *Dispatcher) Execute(ctx context.Context, message string) (string, error) {
	command, parameters, err := ParseMessage(message)
	if err != nil {
		return "", err
	}

	switch command {
	case CommandAdd:
		fields := SplitParameters(parameters, addFieldCount)

		_, err = d.operations.Add(ctx, AddParams{
			Author: fields[0],
			Dates:  fields[1],
			Times:  fields[2],
			Title:  fields[3],
			Info:   fields[4],
		})
		if err != nil {
			return "", err
		}

		return "", nil

	case CommandRemove:
		if parameters == "" {
			return "", fmt.Errorf("%w: %s needs a search term", ErrMalformedMessage, command)
		}

		result, err := d.operations.Remove(ctx, parameters)
		if err != nil {
			return "", err
		}

		return renderResult(result), nil

	case CommandModify:
		fields := SplitParameters(parameters, addFieldCount+1)
		if fields[0] == "" {
			return "", fmt.Errorf("%w: %s needs a search term", ErrMalformedMessage, command)
		}

		result, err := d.operations.Modify(ctx, fields[0], ModifyParams{
			Author: provided(fields[1]),
			Dates:  provided(fields[2]),
			Times:  provided(fields[3]),
			Title:  provided(fields[4]),
			Info:   provided(fields[5]),
		})
		if err != nil {
			return "", err
		}

		return renderResult(result), nil

	case CommandSearch:
		return d.operations.Search(ctx, parameters).String(), nil

	case CommandList:
		return d.operations.List(ctx).String(), nil

	case CommandExport:
		matches := d.operations.List(ctx)
		if parameters != "" {
			matches = d.operations.Search(ctx, parameters)
		}

		if len(matches) == 0 {
			return matches.String(), nil
		}

		var buf bytes.Buffer

		err = EncodeICS(&buf, matches.Events(), d.now())
		if err != nil {
			return "", err
		}

		return buf.String(), nil

	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownOperation, command)
	}
}

func renderResult(result Result) string {
	if result.Applied {
		return ""
	}

	return result.Candidates.String()
}

// provided maps the empty field of the text protocol to an absent value.
func provided(field string) mo.Option[string] {
	if field == "" {
		return mo.None[string]()
	}

	return mo.Some(field)
}
