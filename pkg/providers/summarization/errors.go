package summarization

import (
	"fmt"
	"net/http"

	"github.com/recapd/recapd/pkg/providers"
)

// checkStatus maps a provider HTTP status to the shared error taxonomy:
// 429 is retryable rate limiting, any other non-2xx is terminal.
func checkStatus(status int, body []byte) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusTooManyRequests:
		return fmt.Errorf("summarization provider returned %d: %w", status, providers.ErrRateLimited)
	default:
		return fmt.Errorf("summarization provider returned %d: %s", status, truncate(body))
	}
}

func truncate(body []byte) string {
	const limit = 256

	if len(body) > limit {
		return string(body[:limit]) + "..."
	}

	return string(body)
}
