package recommend

import "errors"

// Failure kinds surfaced by the engine. Handlers branch on these with
// errors.Is to pick a response status; message text is never inspected.
// A user with no analyses is reported as analytics.ErrNoAnalyses.
var (
	// ErrUserNotFound means the requested username is not registered.
	ErrUserNotFound = errors.New("user not found")

	// ErrNoHistory means the user exists but has no analysis history to
	// summarise.
	ErrNoHistory = errors.New("no analysis history found for user")

	// ErrGenerationUnavailable means the generation call failed or timed
	// out. Nothing has been persisted when this is returned.
	ErrGenerationUnavailable = errors.New("recommendation generation unavailable")
)
