package correlate

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// caser folds case across scripts, not just ASCII. Shared because
// building one is not free.
var caser = cases.Fold()

// NormalizeName canonicalizes a display name for comparison: Unicode
// NFKC, case folding, and whitespace collapse. "José  GARCÍA" and
// "josé garcía" normalize identically.
func NormalizeName(name string) string {
	folded := caser.String(norm.NFKC.String(name))
	return strings.Join(strings.Fields(folded), " ")
}

// NormalizeProfileURL canonicalizes a profile URL for comparison:
// lowercase, scheme and "www." stripped, trailing slash dropped.
// "https://GitHub.com/jsmith/" and "http://www.github.com/jsmith" point
// at the same profile.
func NormalizeProfileURL(raw string) string {
	u := strings.ToLower(strings.TrimSpace(raw))
	u = strings.TrimPrefix(u, "https://")
	u = strings.TrimPrefix(u, "http://")
	u = strings.TrimPrefix(u, "www.")
	return strings.TrimSuffix(u, "/")
}
