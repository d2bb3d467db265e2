package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// These are tunable defaults, not behavioral contracts.
const (
	// DefaultQueryDeadline bounds one whole lookup across all six pipeline
	// phases. Exceeding it yields a partial result, never a hard failure.
	// 5 minutes leaves room for the slowest strategy tier (30s per call)
	// across several category tiers with retries.
	DefaultQueryDeadline = 5 * time.Minute

	// DefaultPhaseDeadline bounds a single pipeline phase. Collection is
	// the only phase that routinely approaches it; the analytical phases
	// finish in milliseconds.
	DefaultPhaseDeadline = 2 * time.Minute

	// DefaultMaxRetries is the retry ceiling for a failed source call.
	// Retries use exponential backoff and never block sibling calls.
	DefaultMaxRetries = 3

	// DefaultRetryBaseDelay is the base for exponential backoff
	// (delay = base * 2^attempt, capped at DefaultRetryMaxDelay).
	DefaultRetryBaseDelay = 500 * time.Millisecond

	// DefaultRetryMaxDelay caps the backoff delay.
	DefaultRetryMaxDelay = 10 * time.Second

	// DefaultMonitorInterval is how often the health monitor re-judges
	// sources and replaces failing ones.
	DefaultMonitorInterval = 30 * time.Second

	// DefaultResourceInterval is how often the resource controller
	// re-samples the host and recomputes the strategy tier.
	DefaultResourceInterval = 60 * time.Second

	// AppName is the application name used for XDG directory paths.
	AppName = "mailzilla"
)

// Config holds all runtime options for the engine.
// It is populated from CLI flags plus the YAML inventory file and passed
// through the application by explicit reference, never as global state.
//
// Design decision: We use a single flat struct instead of nested structs
// for the runtime options. The two genuinely structured parts, the source
// inventory and the scoring weights, live in their own types populated
// from the YAML file.
type Config struct {
	// Identifier is the email address or phone number to look up.
	Identifier string

	// QueryDeadline bounds one whole lookup.
	QueryDeadline time.Duration

	// PhaseDeadline bounds each pipeline phase.
	PhaseDeadline time.Duration

	// MaxRetries is the per-source-call retry ceiling.
	MaxRetries int

	// RetryBaseDelay is the exponential backoff base.
	RetryBaseDelay time.Duration

	// RetryMaxDelay caps the backoff delay.
	RetryMaxDelay time.Duration

	// MonitorInterval is the health monitoring cycle period.
	MonitorInterval time.Duration

	// ResourceInterval is the resource re-evaluation period.
	ResourceInterval time.Duration

	// Verbose enables debug-level log output.
	Verbose bool

	// ConfigFilePath is the path to the YAML inventory file. If empty, the
	// tool searches for .mailzilla.yml in the current directory, then the
	// XDG config directory.
	ConfigFilePath string

	// Inventory is the source inventory loaded from the YAML file, or the
	// built-in defaults when no file exists.
	Inventory *File

	// JSONReport selects JSON report output. Mutually exclusive with
	// MarkdownReport.
	JSONReport bool

	// MarkdownReport selects Markdown report output. Mutually exclusive
	// with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the report. When empty the
	// report goes to stdout.
	ReportFile string

	// DBDir is the directory for the SQLite lookup history. When empty,
	// results are not persisted.
	DBDir string

	// SaveToDB indicates whether to save lookup results. Set automatically
	// when DBDir is configured.
	SaveToDB bool
}

// NewConfig creates a Config with default values.
// All fields are set to safe, sensible defaults; callers override specific
// values after creation.
func NewConfig() *Config {
	return &Config{
		QueryDeadline:    DefaultQueryDeadline,
		PhaseDeadline:    DefaultPhaseDeadline,
		MaxRetries:       DefaultMaxRetries,
		RetryBaseDelay:   DefaultRetryBaseDelay,
		RetryMaxDelay:    DefaultRetryMaxDelay,
		MonitorInterval:  DefaultMonitorInterval,
		ResourceInterval: DefaultResourceInterval,
		Inventory:        DefaultInventory(),
	}
}

// XDGDataDir returns the XDG data directory for mailzilla.
// On Linux: ~/.local/share/mailzilla
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for mailzilla.
// On Linux: ~/.config/mailzilla
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks that the configuration is consistent.
// It returns the first problem found; fixing one error often makes the
// rest irrelevant.
func (c *Config) Validate() error {
	if c.Identifier == "" {
		return ErrNoIdentifier
	}
	if c.QueryDeadline <= 0 {
		return ErrInvalidDeadline
	}
	if c.PhaseDeadline <= 0 {
		return ErrInvalidDeadline
	}
	if c.MaxRetries < 0 {
		return ErrInvalidRetries
	}
	if c.RetryBaseDelay <= 0 || c.RetryMaxDelay < c.RetryBaseDelay {
		return ErrInvalidBackoff
	}
	if c.MonitorInterval <= 0 {
		return ErrInvalidInterval
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	if c.Inventory == nil || len(c.Inventory.Sources) == 0 {
		return ErrEmptyInventory
	}
	return c.Inventory.Validate()
}
