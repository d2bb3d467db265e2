package source

import (
	"context"
	"errors"
	"time"

	"github.com/FJ-cyberzilla/mailzilla/internal/model"
)

// Source is one external provider of identity observations for a single
// platform. Implementations must be safe to retry (no required side
// effects across calls) and must honor cancellation at their network
// boundary: when the context expires, return promptly with an error that
// classifies as ErrTimeout.
type Source interface {
	// ID returns the unique id of this source instance. Replacement
	// instances get fresh ids.
	ID() string

	// Platform returns the platform id this source covers.
	Platform() string

	// Query searches the platform for the given identifier. The budget is
	// the per-call timeout from the current resource strategy; the context
	// passed in is already bounded by it. Returns zero or more
	// observations, or an error classifying as one of the kinds below.
	Query(ctx context.Context, q model.Query, budget time.Duration) ([]model.Observation, error)

	// Close releases any resources the source holds. Called best-effort
	// when the supervisor discards a replaced instance.
	Close() error
}

// Typed source failures. Every error a Source returns must wrap one of
// these so the engine can branch on kind without inspecting transport
// details. All four are recovered locally: recorded in metrics, excluded
// from the observation set, never aborting the query.
var (
	// ErrTimeout means the call exceeded its budget and was cancelled.
	// Timeouts are treated as missing results, not failures of the query.
	ErrTimeout = errors.New("source timeout")

	// ErrRateLimited means the platform throttled the source.
	ErrRateLimited = errors.New("source rate limited")

	// ErrAuthFailure means the platform rejected the source's credentials.
	ErrAuthFailure = errors.New("source auth failure")

	// ErrNotFound means the platform answered but has no matching profile.
	// Not a failure: the source worked and found nothing.
	ErrNotFound = errors.New("profile not found")

	// ErrUnavailable means the platform or its connector could not be
	// reached at all.
	ErrUnavailable = errors.New("source unavailable")
)

// Kind classifies a source error for metrics and retry decisions.
type Kind int

const (
	// KindNone means no error.
	KindNone Kind = iota
	// KindTimeout classifies ErrTimeout and context deadline errors.
	KindTimeout
	// KindRateLimited classifies ErrRateLimited.
	KindRateLimited
	// KindAuthFailure classifies ErrAuthFailure.
	KindAuthFailure
	// KindNotFound classifies ErrNotFound.
	KindNotFound
	// KindUnavailable classifies ErrUnavailable and anything unrecognized.
	KindUnavailable
)

// String returns a human-readable representation of the error kind.
func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindTimeout:
		return "timeout"
	case KindRateLimited:
		return "rate_limited"
	case KindAuthFailure:
		return "auth_failure"
	case KindNotFound:
		return "not_found"
	case KindUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// Classify maps an error returned by a Source call to its kind.
// Context cancellation and deadline expiry count as timeouts because the
// engine cancels calls exactly at the budget boundary.
func Classify(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrTimeout),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return KindTimeout
	case errors.Is(err, ErrRateLimited):
		return KindRateLimited
	case errors.Is(err, ErrAuthFailure):
		return KindAuthFailure
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	default:
		return KindUnavailable
	}
}

// Retryable reports whether a call failing with this kind should be
// retried within the same query. Auth failures won't heal on retry and
// not-found is a definitive answer.
func (k Kind) Retryable() bool {
	switch k {
	case KindTimeout, KindRateLimited, KindUnavailable:
		return true
	default:
		return false
	}
}
