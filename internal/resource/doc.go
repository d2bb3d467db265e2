// Package resource derives the engine's execution strategy from host
// resource state. It samples memory, CPU, network throughput, and battery
// level, combines them into a weighted score, and maps the score onto one
// of five discrete strategy tiers fixing the concurrency limit, per-call
// timeout, and data-quality level the orchestrator runs under.
//
// Sampling happens on a periodic cycle, not per query; the network probe
// is the expensive part and its result is cached for several minutes.
package resource
