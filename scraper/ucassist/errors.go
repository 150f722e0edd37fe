package ucassist

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for classifying fetch failures. Check them with errors.Is.
var (
	// ErrSession means the browser session itself is unusable. Not retryable.
	ErrSession = errors.New("browser session failed")

	// ErrFetchTimeout means a page did not reach its ready state in time.
	ErrFetchTimeout = errors.New("page readiness timed out")

	// ErrNavigationFailed covers navigation and HTTP-level failures that are
	// worth retrying.
	ErrNavigationFailed = errors.New("navigation failed")
)

// ExtractionError reports a detail page that rendered but did not contain
// the required fields. Match it with errors.As.
type ExtractionError struct {
	URL     string
	Missing []string
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction incomplete for %s: missing %s", e.URL, strings.Join(e.Missing, ", "))
}
