// Package source defines the contract the engine consumes identity data
// through: the Source interface, its typed error kinds, per-source
// descriptors with rolling performance metrics, the registry that groups
// descriptors by platform category, and the static factory that builds
// Source instances from plain configuration.
//
// The engine never looks inside a Source. Per-platform transport and
// scraping live behind the interface, registered with the factory the way
// database/sql drivers register themselves.
package source
