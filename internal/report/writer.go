package report

import (
	"io"

	"github.com/FJ-cyberzilla/mailzilla/internal/health"
	"github.com/FJ-cyberzilla/mailzilla/internal/model"
)

// Result bundles everything one lookup produced.
type Result struct {
	// Identity is the merged, confidence-scored identity.
	Identity model.CorrelatedIdentity `json:"identity"`

	// Risk is the deception assessment for the identity.
	Risk model.RiskAssessment `json:"risk"`

	// Version is the engine version that produced the result.
	Version string `json:"version,omitempty"`
}

// Writer defines the interface for report output.
// Implementations render lookup results and fleet health summaries in
// various formats.
//
// Design decision: We use an interface to allow different output formats
// and destinations. This enables writing to files, stdout, or network
// connections with the same API.
type Writer interface {
	// Write outputs a lookup result to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(result *Result) (int, error)

	// WriteHealth outputs a source-fleet health summary.
	WriteHealth(report health.Report) (int, error)
}

// MultiWriter writes to multiple Writers simultaneously.
// This is useful for outputting to both terminal and file.
//
// Design decision: We implement this as a separate type rather than
// using io.MultiWriter because our Writer interface is different
// from io.Writer - we write reports, not raw bytes.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the result to all configured Writers.
// Returns the total bytes written across all writers.
// Stops on first error encountered.
func (m *MultiWriter) Write(result *Result) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(result)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteHealth outputs the health summary to all configured Writers.
func (m *MultiWriter) WriteHealth(report health.Report) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteHealth(report)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
