package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidWindow reports a misconfigured query window (reversed range,
	// span too wide, day-offset axis outside [0,30]).
	ErrInvalidWindow = errors.New("invalid window")

	// ErrNoiseConfiguration is fatal: aggregation refuses to run without a
	// valid noise budget.
	ErrNoiseConfiguration = errors.New("invalid noise configuration")

	// ErrUpstreamUnavailable is retryable: the event store failed or did not
	// answer in time.
	ErrUpstreamUnavailable = errors.New("event store unavailable")
)

// ErrRefreshThrottled rejects a cache refresh requested before the previous
// one aged past the refresh interval.
var ErrRefreshThrottled = errors.New("refresh throttled")

// RefreshThrottledError carries how long the caller has to wait.
type RefreshThrottledError struct {
	RetryAfter time.Duration
}

func (e *RefreshThrottledError) Error() string {
	return fmt.Sprintf("%v: retry after %s", ErrRefreshThrottled, e.RetryAfter.Round(time.Second))
}

func (e *RefreshThrottledError) Unwrap() error { return ErrRefreshThrottled }
