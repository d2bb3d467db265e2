// Package risk scores deception likelihood over a correlated identity.
// Seven independent detectors each accumulate evidence against their own
// emit threshold and produce at most one indicator; the scorer runs them
// concurrently, isolates individual failures, and combines the emitted
// indicators into a single bounded risk score with follow-up
// recommendations.
package risk
