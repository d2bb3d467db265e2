package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/FJ-cyberzilla/mailzilla/internal/health"
	"github.com/FJ-cyberzilla/mailzilla/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the lookup result in Markdown format.
func (w *MarkdownWriter) Write(result *Result) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, result)
	w.writeIdentity(md, result)
	w.writeRiskSummary(md, result)
	w.writeIndicators(md, result)
	w.writeEvidence(md, result)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with query information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, result *Result) {
	identity := result.Identity

	md.H1("Mailzilla Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Query", "`" + identity.Query.Value + "`"},
			{"Kind", identity.Query.Kind.String()},
			{"Processed", identity.ProcessedAt.Format("2006-01-02 15:04:05 MST")},
			{"Sources", fmt.Sprintf("%d matched / %d attempted", len(identity.Sources), len(identity.Attempted))},
			{"Status", statusText(identity)},
		},
	})
	md.PlainText("")
}

// statusText returns the status cell based on result state.
func statusText(identity model.CorrelatedIdentity) string {
	if identity.Partial {
		return "⚠️ Partial (deadline reached)"
	}
	return "✅ Complete"
}

// writeIdentity writes the merged identity section.
func (w *MarkdownWriter) writeIdentity(md *markdown.Markdown, result *Result) {
	identity := result.Identity

	md.H2("Correlated Identity")
	md.PlainText("")

	rows := [][]string{
		{"Confidence", fmt.Sprintf("%.2f", identity.Confidence)},
	}
	for _, field := range []struct{ label, value string }{
		{"Full Name", identity.FullName},
		{"Location", identity.Location},
		{"Company", identity.Company},
		{"Job Title", identity.JobTitle},
	} {
		if field.value != "" {
			rows = append(rows, []string{field.label, field.value})
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Field", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeRiskSummary writes the severity summary with a distribution chart.
func (w *MarkdownWriter) writeRiskSummary(md *markdown.Markdown, result *Result) {
	risk := result.Risk

	md.H2("Deception Risk")
	md.PlainText("")

	counts := severityCounts(risk.Indicators)
	md.Table(markdown.TableSet{
		Header: []string{"Severity", "Count"},
		Rows: [][]string{
			{"🔴 Critical", strconv.Itoa(counts[model.SeverityCritical])},
			{"🟠 High", strconv.Itoa(counts[model.SeverityHigh])},
			{"🟡 Medium", strconv.Itoa(counts[model.SeverityMedium])},
			{"🔵 Low", strconv.Itoa(counts[model.SeverityLow])},
			{"**Overall Risk**", fmt.Sprintf("**%.2f**", risk.OverallRisk)},
		},
	})
	md.PlainText("")

	if len(risk.Indicators) > 0 {
		w.writePieChart(md, counts)
	}
	w.writeAlert(md, risk, counts)
}

// severityCounts tallies indicators per severity tier.
func severityCounts(indicators []model.RiskIndicator) map[model.Severity]int {
	counts := make(map[model.Severity]int)
	for _, indicator := range indicators {
		counts[indicator.Severity]++
	}
	return counts
}

// writePieChart writes a mermaid pie chart for severity distribution.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, counts map[model.Severity]int) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Indicator Severity Distribution"),
		piechart.WithShowData(true),
	)

	for _, severity := range []model.Severity{
		model.SeverityCritical,
		model.SeverityHigh,
		model.SeverityMedium,
		model.SeverityLow,
	} {
		if counts[severity] > 0 {
			chart.LabelAndIntValue(severity.String(), uint64(counts[severity]))
		}
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert writes an appropriate alert based on severity counts.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, risk model.RiskAssessment, counts map[model.Severity]int) {
	switch {
	case counts[model.SeverityCritical] > 0:
		md.Cautionf(
			"Near-certain manipulation detected! %d critical indicator(s) require immediate review.",
			counts[model.SeverityCritical],
		)
	case counts[model.SeverityHigh] > 0:
		md.Warningf(
			"Strong deception signals detected. %d high severity indicator(s) should be reviewed.",
			counts[model.SeverityHigh],
		)
	case counts[model.SeverityMedium] > 0:
		md.Importantf(
			"Moderate deception signals found. %d indicator(s) warrant attention.",
			counts[model.SeverityMedium],
		)
	case len(risk.Indicators) > 0:
		md.Note("Only weak deception signals detected.")
	default:
		md.Tip("No deception signals detected.")
	}
	md.PlainText("")
}

// writeIndicators writes all indicators grouped by severity.
func (w *MarkdownWriter) writeIndicators(md *markdown.Markdown, result *Result) {
	risk := result.Risk

	md.H2("Indicators")
	md.PlainText("")

	if len(risk.Indicators) == 0 {
		md.PlainText("No deception indicators emitted.")
		md.PlainText("")
		return
	}

	severities := []struct {
		level  model.Severity
		header string
	}{
		{model.SeverityCritical, "### 🔴 Critical"},
		{model.SeverityHigh, "### 🟠 High"},
		{model.SeverityMedium, "### 🟡 Medium"},
		{model.SeverityLow, "### 🔵 Low"},
	}

	for _, sev := range severities {
		var indicators []model.RiskIndicator
		for _, indicator := range risk.Indicators {
			if indicator.Severity == sev.level {
				indicators = append(indicators, indicator)
			}
		}
		if len(indicators) == 0 {
			continue
		}

		md.PlainText(sev.header)
		md.PlainText("")
		w.writeIndicatorTable(md, indicators)
	}

	if len(risk.Recommendations) > 0 {
		md.PlainText("### Recommendations")
		md.PlainText("")
		md.BulletList(risk.Recommendations...)
		md.PlainText("")
	}
}

// writeIndicatorTable writes a table of indicators with their evidence.
func (w *MarkdownWriter) writeIndicatorTable(md *markdown.Markdown, indicators []model.RiskIndicator) {
	rows := make([][]string, len(indicators))
	for i, indicator := range indicators {
		rows[i] = []string{
			string(indicator.Type),
			fmt.Sprintf("%.2f", indicator.Confidence),
			fmt.Sprintf("%.2f", indicator.Impact),
			truncateString(strings.Join(indicator.Evidence, "; "), 80),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Type", "Confidence", "Impact", "Evidence"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeEvidence writes the per-observation evidence section.
func (w *MarkdownWriter) writeEvidence(md *markdown.Markdown, result *Result) {
	evidence := result.Identity.Evidence

	md.H2("Evidence")
	md.PlainText("")

	if len(evidence) == 0 {
		md.PlainText("No profiles found.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(evidence))
	for i, obs := range evidence {
		verified := "-"
		if obs.Verified {
			verified = "✅"
		}
		rows[i] = []string{
			obs.Platform,
			truncateString(obs.Username, 40),
			truncateString(obs.ProfileURL, 60),
			verified,
			fmt.Sprintf("%.2f", obs.Confidence),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Platform", "Username", "Profile", "Verified", "Confidence"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [mailzilla](https://github.com/FJ-cyberzilla/mailzilla)*")
}

// WriteHealth outputs the fleet health summary in Markdown format.
func (w *MarkdownWriter) WriteHealth(report health.Report) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Source Fleet Health")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Generated", report.GeneratedAt.Format("2006-01-02 15:04:05 MST")},
			{"Sources", strconv.Itoa(report.Total())},
			{"Healthy", strconv.Itoa(report.Healthy)},
			{"Degraded", strconv.Itoa(report.Degraded)},
			{"Failing", strconv.Itoa(report.Failing)},
			{"Offline", strconv.Itoa(report.Offline)},
			{"Avg Success Rate", fmt.Sprintf("%.2f", report.AvgSuccessRate)},
		},
	})
	md.PlainText("")

	if len(report.Sources) > 0 {
		rows := make([][]string, len(report.Sources))
		for i, status := range report.Sources {
			rows[i] = []string{
				status.ID,
				status.Category.String(),
				status.Health.String(),
				strconv.Itoa(status.Generation),
				fmt.Sprintf("%.2f", status.SuccessRate),
				status.AvgLatency.String(),
				strconv.FormatInt(status.Requests, 10),
			}
		}
		md.H2("Sources")
		md.PlainText("")
		md.Table(markdown.TableSet{
			Header: []string{"ID", "Category", "Health", "Generation", "Success Rate", "Avg Latency", "Requests"},
			Rows:   rows,
		})
		md.PlainText("")
	}

	if len(report.Recommendations) > 0 {
		md.H2("Recommendations")
		md.PlainText("")
		md.BulletList(report.Recommendations...)
		md.PlainText("")
	}

	w.writeFooter(md)
	return len(md.String()), md.Build()
}
