// Package report provides report generation and output functionality.
//
// This package contains writers for different output formats:
//   - SimpleWriter: Human-readable text output for terminal display
//   - JSONWriter: Structured JSON output for tool integration
//   - MarkdownWriter: Markdown output for documentation and sharing
//
// All writers render both lookup results (identity plus risk assessment)
// and source-fleet health summaries through the same Writer interface, so
// the CLI can fan one result out to several destinations at once.
package report
