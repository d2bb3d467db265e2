package connector

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/FJ-cyberzilla/mailzilla/internal/source"
)

// defaultClientTimeout is a hard ceiling on one HTTP exchange. The
// engine passes a per-call context that is usually tighter.
const defaultClientTimeout = 30 * time.Second

// RegisterDefaults installs every built-in connector on the factory.
// All connectors share one HTTP client so connection pooling works
// across sources.
func RegisterDefaults(f *source.Factory) {
	client := &http.Client{Timeout: defaultClientTimeout}

	f.Register("gravatar", func(cfg source.BuilderConfig) (source.Source, error) {
		return newGravatar(cfg, client), nil
	})
	f.Register("github", func(cfg source.BuilderConfig) (source.Source, error) {
		return newGitHub(cfg, client), nil
	})
}

// classifyStatus maps an HTTP response status to a typed source error.
// Returns nil for 2xx.
func classifyStatus(status int) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusNotFound:
		return source.ErrNotFound
	case status == http.StatusTooManyRequests:
		return source.ErrRateLimited
	case status == http.StatusUnauthorized:
		return source.ErrAuthFailure
	case status >= 500:
		return fmt.Errorf("status %d: %w", status, source.ErrUnavailable)
	default:
		return fmt.Errorf("status %d: %w", status, source.ErrUnavailable)
	}
}

// wrapTransportErr converts a transport-level failure into a typed
// source error. Context expiry classifies as a timeout; everything else
// means the platform could not be reached.
func wrapTransportErr(ctx context.Context, err error) error {
	if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%v: %w", err, source.ErrTimeout)
	}
	return fmt.Errorf("%v: %w", err, source.ErrUnavailable)
}
