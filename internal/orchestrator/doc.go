// Package orchestrator drives a query through the six-phase lookup
// pipeline: Collection fans out to eligible sources per category under
// the current resource strategy, Analysis derives signals from the
// collected observations, Validation cross-checks them for conflicts,
// Correlation merges them into a scored identity, Decision settles
// disagreements between analyzers by weighted consensus, and Oversight
// applies bounded reviewer corrections.
//
// Failure philosophy: a single source, analyzer, or reviewer failure is
// recorded and never aborts the query. Only invalid caller input fails a
// lookup outright; deadline exhaustion returns a partial result.
package orchestrator
