// Package correlate merges per-source observations into a single
// confidence-scored identity. Observations that describe the same
// profile are deduplicated on their normalized profile URL, falling back
// to the normalized full name; each surviving observation is scored on
// source reliability, field completeness, and recency, and the identity
// confidence is the mean of those scores. Merging is deterministic and
// idempotent: feeding a merged identity's evidence back in yields the
// same identity.
package correlate
