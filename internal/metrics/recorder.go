// Package metrics records HTTP request metrics and sets up distributed tracing.
package metrics

import (
	"context"
	"time"
)

// HTTPRecorder records the outcome of served HTTP requests.
type HTTPRecorder interface {
	// RecordRequest records one finished request. route is the matched route pattern,
	// or "unmatched" when no route handled the request.
	RecordRequest(ctx context.Context, method, route string, status int, duration time.Duration)
}

// UnmatchedRoute labels requests that did not match any registered route.
const UnmatchedRoute = "unmatched"
