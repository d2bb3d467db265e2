// Package connector provides platform connectors that implement the
// source.Source contract over HTTP.
//
// Connectors register themselves with a source.Factory the way
// database/sql drivers register with the sql package: the engine only
// sees the Source interface and the typed error kinds. Platforms without
// a connector in this package still work through the factory's
// unavailable fallback.
//
// Only platforms with a public, unauthenticated lookup surface ship
// here (Gravatar profiles, GitHub user search). Connectors for platforms
// that require scraping or private APIs are expected to be maintained
// out of tree and registered by the embedding application.
package connector
