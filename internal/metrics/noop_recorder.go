package metrics

import (
	"context"
	"time"
)

// NoOpRecorder is an HTTPRecorder that does nothing. It is used when metrics are disabled and in tests.
type NoOpRecorder struct{}

// NewNoOpRecorder creates a new instance of NoOpRecorder.
func NewNoOpRecorder() *NoOpRecorder {
	return &NoOpRecorder{}
}

// RecordRequest does nothing.
func (r *NoOpRecorder) RecordRequest(context.Context, string, string, int, time.Duration) {}

var _ HTTPRecorder = (*NoOpRecorder)(nil)
