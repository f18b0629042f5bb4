package core

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrEventNotFound    = errors.New("event not found")
	ErrInvalidEvent     = errors.New("invalid event")
	ErrUnknownOperation = errors.New("unknown operation")
	ErrMalformedMessage = errors.New("malformed message")
	ErrDefaultingPolicy = errors.New("date/time combination outside the defaulting policy")
)

type Error struct {
	Message string   `json:"message,omitempty"`
	Err     []string `json:"err,omitempty"`

	causes []error
}

func NewError(message string, errs ...error) *Error {
	e := &Error{Message: message}

	for _, err := range errs {
		if err != nil {
			e.Err = append(e.Err, err.Error())
			e.causes = append(e.causes, err)
		}
	}

	return e
}

func (e *Error) Error() string {
	//nolint:errchkjson
	data, _ := json.Marshal(e)
	return string(data)
}

// Unwrap keeps the original causes when the error was built in-process, so
// errors.Is still sees sentinels. A decoded Error only has the messages.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}

	if len(e.causes) > 0 {
		return errors.Join(e.causes...)
	}

	if len(e.Err) == 0 {
		return nil
	}

	errs := make([]error, len(e.Err))
	for i, err := range e.Err {
		errs[i] = fmt.Errorf("%s", err)
	}

	return errors.Join(errs...)
}

func (e *Error) Messages() []string {
	if e == nil {
		return nil
	}

	return e.Err
}
