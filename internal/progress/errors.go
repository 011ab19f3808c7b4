package progress

import (
	"errors"
	"fmt"

	"github.com/shershah1024/luna-student-v-5-sub005/internal/database"
)

// ErrNotFound covers missing canonical content, missing items and ownership
// mismatches. A lookup miss and a wrong owner are deliberately
// indistinguishable to the caller.
var ErrNotFound = database.ErrNotFound

// ErrInvalidInput marks malformed input: a status outside 0..5, a score out
// of range, a zero max score or an unknown source. Not retryable without
// correcting the request.
var ErrInvalidInput = errors.New("invalid input")

// Any error returned by the engine that matches neither sentinel is a
// persistence failure; callers should retry it with backoff.

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
