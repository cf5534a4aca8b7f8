package pipeline

import "errors"

// No-data failures, one per stage that can come up empty. Each aborts the
// run before a report artifact is written; callers distinguish them with
// errors.Is.
var (
	// ErrNoInput means the uploaded CSV parsed to zero records.
	ErrNoInput = errors.New("no vehicles in input")
	// ErrNoActive means the authoritative source returned zero records.
	ErrNoActive = errors.New("no active vehicles from server")
	// ErrNoSurvivors means filtering left zero reportable records.
	ErrNoSurvivors = errors.New("no vehicles left after filtering")
)
