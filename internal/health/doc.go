// Package health watches per-source performance metrics and degrades,
// fails, and replaces sources that stop performing. Detection is
// threshold-based on the rolling metrics the registry accumulates;
// replacement swaps in a fresh connector instance with optimistically
// reset metrics so a recovered platform gets a clean slate instead of
// dragging its failure history forever.
package health
