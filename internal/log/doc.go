// Package log provides a PII-masking slog handler.
//
// The engine's log stream routinely touches the most sensitive values in
// the system: the email addresses and phone numbers being looked up.
// Every logger in the application is built through this package so that
// identifiers are masked before they reach any output, regardless of which
// component logged them.
package log
