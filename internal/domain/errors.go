package domain

import (
	"errors"
	"strings"
)

var (
	// ErrModelOverloaded is returned once every discovery attempt hit a transient overload.
	ErrModelOverloaded = errors.New("model is still overloaded")
	// ErrEmptyOutput marks a model answer without any text.
	ErrEmptyOutput = errors.New("model returned an empty response")
	// ErrNoLeads marks a discovery answer that produced no usable lead.
	ErrNoLeads = errors.New("model returned no usable leads")
)

// TransientError marks a model failure that is worth retrying later.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	if e == nil || e.Err == nil {
		return "transient error"
	}
	return e.Err.Error()
}

func (e *TransientError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// IsOverloadSignal reports whether upstream error text looks like a temporary
// unavailability: an HTTP 503 marker or the word "overloaded".
func IsOverloadSignal(text string) bool {
	return strings.Contains(text, "503") || strings.Contains(strings.ToLower(text), "overloaded")
}
