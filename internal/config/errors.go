package config

import "errors"

// Configuration validation errors.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages.
var (
	// ErrNoIdentifier is returned when no email or phone target is specified.
	ErrNoIdentifier = errors.New("no identifier specified: provide an email address or phone number")

	// ErrInvalidDeadline is returned when a deadline is not positive.
	ErrInvalidDeadline = errors.New("invalid deadline: must be positive")

	// ErrInvalidRetries is returned when the retry ceiling is negative.
	ErrInvalidRetries = errors.New("invalid retry ceiling: must be non-negative")

	// ErrInvalidBackoff is returned when the backoff base is not positive
	// or the cap is below the base.
	ErrInvalidBackoff = errors.New("invalid backoff: base must be positive and not exceed the cap")

	// ErrInvalidInterval is returned when a monitoring interval is not positive.
	ErrInvalidInterval = errors.New("invalid interval: must be positive")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrEmptyInventory is returned when the source inventory contains no
	// sources; an engine with nothing to dispatch cannot answer queries.
	ErrEmptyInventory = errors.New("source inventory is empty")

	// ErrInvalidSource is returned when an inventory entry is malformed
	// (missing platform, unknown category, or reliability outside [0,1]).
	ErrInvalidSource = errors.New("invalid source entry")

	// ErrConfigNotFound is returned when the configuration file does not exist.
	ErrConfigNotFound = errors.New("configuration file not found")
)
