package source

import (
	"testing"

	"github.com/FJ-cyberzilla/mailzilla/internal/config"
)

// testEntry is a compact inventory entry for registry tests.
type testEntry struct {
	platform    string
	category    string
	reliability float64
	email       bool
	phone       bool
}

// newTestRegistry builds a registry from compact entries, failing the test
// on construction errors.
func newTestRegistry(t *testing.T, entries []testEntry, f *Factory) *Registry {
	t.Helper()

	cfg := make([]config.SourceEntry, 0, len(entries))
	for _, e := range entries {
		cfg = append(cfg, config.SourceEntry{
			Platform:    e.platform,
			Category:    e.category,
			Reliability: e.reliability,
			EmailSearch: e.email,
			PhoneSearch: e.phone,
		})
	}

	r, err := NewRegistry(cfg, f)
	if err != nil {
		t.Fatalf("building registry: %v", err)
	}
	return r
}
