package hypothesis

import (
	"fmt"

	"github.com/mschrader15/hypothesis-sync/internal/core/domain"
)

// APIError represents a Hypothes.is API error response.
type APIError struct {
	StatusCode int
	Message    string
	URL        string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("hypothesis: API error %d: %s (URL: %s)", e.StatusCode, e.Message, e.URL)
}

// Unwrap maps the status class onto the domain taxonomy so callers can use
// errors.Is. 401/403 are auth failures; 429 and 5xx are transient.
func (e *APIError) Unwrap() error {
	switch {
	case e.StatusCode == 401 || e.StatusCode == 403:
		return domain.ErrAuthFailed
	case e.StatusCode == 429 || e.StatusCode >= 500:
		return domain.ErrTransient
	default:
		return nil
	}
}
