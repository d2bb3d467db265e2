// Package database provides SQLite-based storage for lookup results.
//
// This package implements the LookupDB, which stores:
//   - Completed lookups (identity plus risk assessment) as JSON rows
//   - Individual observations for cross-query relationship questions
//   - Lightweight metadata for history listings
//
// Design decision: We use SQLite (via modernc.org/sqlite) instead of other
// databases because:
// 1. No external dependencies - the database is a single file
// 2. CGO-free implementation allows easy cross-compilation
// 3. Sufficient performance for our use case
// 4. WAL mode provides good concurrent read performance
package database
