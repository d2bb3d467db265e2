package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/FJ-cyberzilla/mailzilla/internal/health"
	"github.com/FJ-cyberzilla/mailzilla/internal/model"
)

// SimpleWriter outputs human-readable text reports.
// This format is designed for terminal display with clear section
// formatting.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter

	// verbose enables per-observation evidence detail in the output.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the lookup result in human-readable format.
func (w *SimpleWriter) Write(result *Result) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, result)
	w.writeIdentity(&sb, result)
	w.writeEvidence(&sb, result)
	w.writeRisk(&sb, result)
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the report header with query information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, result *Result) {
	identity := result.Identity

	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                         MAILZILLA REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Query:          %s (%s)\n", identity.Query.Value, identity.Query.Kind))
	sb.WriteString(fmt.Sprintf("Processed:      %s\n", identity.ProcessedAt.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("Sources:        %d matched / %d attempted\n", len(identity.Sources), len(identity.Attempted)))

	if identity.Partial {
		sb.WriteString("Status:         PARTIAL (deadline cut the search short)\n")
	} else {
		sb.WriteString("Status:         Complete\n")
	}
	sb.WriteString("\n")
}

// writeIdentity writes the merged identity section.
func (w *SimpleWriter) writeIdentity(sb *strings.Builder, result *Result) {
	identity := result.Identity

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("CORRELATED IDENTITY\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("  Confidence: %.2f\n", identity.Confidence))
	writeField(sb, "Full Name", identity.FullName)
	writeField(sb, "Location", identity.Location)
	writeField(sb, "Company", identity.Company)
	writeField(sb, "Job Title", identity.JobTitle)
	sb.WriteString("\n")
}

func writeField(sb *strings.Builder, label, value string) {
	if value == "" {
		return
	}
	sb.WriteString(fmt.Sprintf("  %-10s %s\n", label+":", value))
}

// writeEvidence writes the per-observation evidence section.
func (w *SimpleWriter) writeEvidence(sb *strings.Builder, result *Result) {
	evidence := result.Identity.Evidence
	if len(evidence) == 0 {
		sb.WriteString("  No profiles found.\n\n")
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("EVIDENCE (%d profiles)\n", len(evidence)))
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	for _, obs := range evidence {
		sb.WriteString(fmt.Sprintf("  [+] %s", obs.Platform))
		if obs.Verified {
			sb.WriteString(" (verified)")
		}
		sb.WriteString("\n")
		if obs.ProfileURL != "" {
			sb.WriteString(fmt.Sprintf("      URL: %s\n", obs.ProfileURL))
		}
		if obs.Username != "" {
			sb.WriteString(fmt.Sprintf("      Username: %s\n", obs.Username))
		}
		if w.verbose && obs.Bio != "" {
			sb.WriteString(fmt.Sprintf("      Bio: %s\n", truncateString(obs.Bio, 120)))
		}
	}
	sb.WriteString("\n")
}

// writeRisk writes the deception assessment section.
func (w *SimpleWriter) writeRisk(sb *strings.Builder, result *Result) {
	risk := result.Risk

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("DECEPTION RISK\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("  Overall Risk: %.2f (%d anomalies)\n\n", risk.OverallRisk, risk.AnomalyCount))

	for _, indicator := range risk.Indicators {
		sb.WriteString(fmt.Sprintf("  [%s] %s (confidence %.2f)\n",
			severityIndicator(indicator.Severity), indicator.Type, indicator.Confidence))
		for _, evidence := range indicator.Evidence {
			sb.WriteString(fmt.Sprintf("      - %s\n", evidence))
		}
	}
	if len(risk.Indicators) > 0 {
		sb.WriteString("\n")
	}

	for _, rec := range risk.Recommendations {
		sb.WriteString(fmt.Sprintf("  => %s\n", rec))
	}
	if len(risk.Recommendations) > 0 {
		sb.WriteString("\n")
	}
}

// severityIndicator returns a visual indicator for the severity level.
func severityIndicator(severity model.Severity) string {
	switch severity {
	case model.SeverityCritical:
		return "!!!"
	case model.SeverityHigh:
		return "!!"
	case model.SeverityMedium:
		return "!"
	case model.SeverityLow:
		return "-"
	default:
		return "?"
	}
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by mailzilla\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}

// WriteHealth outputs the fleet health summary in human-readable format.
func (w *SimpleWriter) WriteHealth(report health.Report) (int, error) {
	var sb strings.Builder

	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                      SOURCE FLEET HEALTH\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("  Generated:        %s\n", report.GeneratedAt.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("  Sources:          %d total\n", report.Total()))
	sb.WriteString(fmt.Sprintf("  Healthy:          %d\n", report.Healthy))
	sb.WriteString(fmt.Sprintf("  Degraded:         %d\n", report.Degraded))
	sb.WriteString(fmt.Sprintf("  Failing:          %d\n", report.Failing))
	sb.WriteString(fmt.Sprintf("  Offline:          %d\n", report.Offline))
	sb.WriteString(fmt.Sprintf("  Avg Success Rate: %.2f\n\n", report.AvgSuccessRate))

	for _, status := range report.Sources {
		sb.WriteString(fmt.Sprintf("  [%s] %s gen=%d success=%.2f latency=%s requests=%d\n",
			status.Health, status.ID, status.Generation,
			status.SuccessRate, status.AvgLatency, status.Requests))
	}
	sb.WriteString("\n")

	for _, rec := range report.Recommendations {
		sb.WriteString(fmt.Sprintf("  => %s\n", rec))
	}
	if len(report.Recommendations) > 0 {
		sb.WriteString("\n")
	}

	return w.output.Write([]byte(sb.String()))
}
