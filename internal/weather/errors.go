package weather

import "errors"

var (
	// ErrTimeUnavailable means local time could not be established. The whole
	// cycle is skipped: no fetch, no merge, no persisted-state change.
	ErrTimeUnavailable = errors.New("local time unavailable")

	// ErrFetchFailed marks a per-category fetch failure. The category stays
	// stale and is retried on the next wake.
	ErrFetchFailed = errors.New("weather fetch failed")

	// ErrDecodeFailed marks a malformed API payload. Treated exactly like a
	// fetch failure by callers.
	ErrDecodeFailed = errors.New("weather payload decode failed")
)
