// Package model defines the core data types for identity correlation:
// queries, per-source observations, merged identities, risk indicators,
// and the enums (platform category, health state, severity) shared by
// every other package.
//
// Types in this package are plain data. Behavior that spans components
// (scoring, deduplication, health judgment) lives in the packages that
// own it; model only carries the invariants each type must keep, such as
// confidence values staying inside [0,1].
package model
