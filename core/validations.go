package core

import (
	"fmt"
	"strings"
)

func ValidateEvent(event Event) error {
	if len(strings.TrimSpace(event.Author)) == 0 {
		return fmt.Errorf("%w: author is required", ErrInvalidEvent)
	}

	if len(strings.TrimSpace(event.Title)) == 0 {
		return fmt.Errorf("%w: title is required", ErrInvalidEvent)
	}

	if event.End.Before(event.Start) {
		return fmt.Errorf("%w: end must not be before start", ErrInvalidEvent)
	}

	return nil
}

// truncate cuts text to at most limit runes.
func truncate(text string, limit int) string {
	if limit <= 0 {
		return text
	}

	chars := []rune(text)
	if len(chars) <= limit {
		return text
	}

	return string(chars[:limit])
}
