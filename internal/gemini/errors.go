package gemini

import (
	"errors"
	"fmt"

	"github.com/af-corp/shetkari-gateway/internal/types"
)

// ErrNotConfigured is returned by every operation when no API key is set.
var ErrNotConfigured = errors.New("GEMINI_API_KEY environment variable is missing")

// ServiceError reports that the AI service failed or returned no usable payload.
type ServiceError struct {
	Kind types.RequestKind
	Msg  string
	Err  error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *ServiceError) Unwrap() error { return e.Err }

// MalformedResponseError reports a JSON payload that parsed but did not match
// the expected shape.
type MalformedResponseError struct {
	Kind  types.RequestKind
	Field string
	Err   error
}

func (e *MalformedResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: malformed response field %q: %v", e.Kind, e.Field, e.Err)
	}
	return fmt.Sprintf("%s: malformed response: missing field %q", e.Kind, e.Field)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }
