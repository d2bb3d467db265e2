package log

import (
	"context"
	"io"
	"log/slog"
	"regexp"
	"strings"
)

// redactedKeys contains attribute keys whose values are always fully masked.
var redactedKeys = map[string]bool{
	"password":      true,
	"secret":        true,
	"token":         true,
	"api_key":       true,
	"apikey":        true,
	"api-key":       true,
	"access_token":  true,
	"refresh_token": true,
	"authorization": true,
	"cookie":        true,
	"proxy":         true,
	"credential":    true,
	"credentials":   true,
}

// identifier value patterns. Values matching these are masked partially so
// logs stay correlatable (same masked form for the same identifier) without
// exposing the identifier itself.
var (
	emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	phonePattern = regexp.MustCompile(`\+[0-9]{7,15}`)
)

// FullMask replaces fully redacted values.
const FullMask = "***REDACTED***"

// MaskIdentifier masks emails and phone numbers inside a string, keeping
// just enough structure to tell entries apart: the first character of an
// email local part plus its domain, and the country code plus last two
// digits of a phone number.
func MaskIdentifier(s string) string {
	s = emailPattern.ReplaceAllStringFunc(s, func(m string) string {
		local, domain, _ := strings.Cut(m, "@")
		return local[:1] + "***@" + domain
	})
	return phonePattern.ReplaceAllStringFunc(s, func(m string) string {
		if len(m) < 6 {
			return FullMask
		}
		return m[:3] + "****" + m[len(m)-2:]
	})
}

// PIIHandler wraps an slog.Handler and masks personal identifiers and
// credentials in every record before handing it on.
//
// Design decision: We use a handler wrapper rather than a custom logger
// because it integrates with standard slog APIs and works with any
// underlying handler (text, JSON, etc.).
type PIIHandler struct {
	handler slog.Handler
}

// NewPIIHandler creates a PIIHandler wrapping the given handler.
// If handler is nil, slog.Default().Handler() is used.
func NewPIIHandler(handler slog.Handler) *PIIHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	return &PIIHandler{handler: handler}
}

// Enabled reports whether the handler handles records at the given level.
func (h *PIIHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle masks the record's message and attributes and passes it on.
func (h *PIIHandler) Handle(ctx context.Context, r slog.Record) error {
	masked := slog.NewRecord(r.Time, r.Level, MaskIdentifier(r.Message), r.PC)
	r.Attrs(func(a slog.Attr) bool {
		masked.AddAttrs(h.maskAttr(a))
		return true
	})
	return h.handler.Handle(ctx, masked)
}

// WithAttrs returns a new handler with the given attributes added, masked.
func (h *PIIHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	maskedAttrs := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		maskedAttrs[i] = h.maskAttr(a)
	}
	return &PIIHandler{handler: h.handler.WithAttrs(maskedAttrs)}
}

// WithGroup returns a new handler with the given group name.
func (h *PIIHandler) WithGroup(name string) slog.Handler {
	return &PIIHandler{handler: h.handler.WithGroup(name)}
}

// maskAttr masks a single attribute, recursively handling groups.
func (h *PIIHandler) maskAttr(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		maskedAttrs := make([]slog.Attr, len(attrs))
		for i, groupAttr := range attrs {
			maskedAttrs[i] = h.maskAttr(groupAttr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(maskedAttrs...)}
	}

	keyLower := strings.ToLower(a.Key)
	if redactedKeys[keyLower] || containsRedactedKeyword(keyLower) {
		return slog.String(a.Key, FullMask)
	}

	if a.Value.Kind() == slog.KindString {
		return slog.String(a.Key, MaskIdentifier(a.Value.String()))
	}
	return a
}

// containsRedactedKeyword checks if the key contains credential keywords.
// The bare "key" keyword is intentionally excluded because it causes false
// positives ("primary_key", "keyboard").
func containsRedactedKeyword(key string) bool {
	for _, keyword := range []string{"password", "secret", "token", "credential"} {
		if strings.Contains(key, keyword) {
			return true
		}
	}
	return false
}

// NewLogger creates a *slog.Logger with PII masking over a text handler.
//
// Parameters:
//   - w: destination writer (typically os.Stderr)
//   - verbose: if true, log level is Debug; otherwise Info
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	textHandler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(NewPIIHandler(textHandler))
}

// NewJSONLogger creates a *slog.Logger with PII masking over a JSON
// handler, for structured log aggregation.
func NewJSONLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	jsonHandler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(NewPIIHandler(jsonHandler))
}
