package upstream

import (
	"errors"
	"fmt"
)

var (
	ErrCircuitOpen  = errors.New("upstream circuit breaker is open")
	ErrUnsuccessful = errors.New("upstream reported success=false")
)

// Error describes a failed call against the upstream catalog: transport
// failure, non-2xx status or an undecodable payload.
type Error struct {
	Op         string
	URL        string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("upstream %s %s: status %d: %v", e.Op, e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("upstream %s %s: %v", e.Op, e.URL, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsUpstreamError reports whether err came from the upstream collaborator.
func IsUpstreamError(err error) bool {
	var ue *Error
	return errors.As(err, &ue) || errors.Is(err, ErrCircuitOpen)
}
