package risk

import "math"

// ShannonEntropy returns the character-level Shannon entropy of s in
// bits. A generic office handle like "info" sits well below the entropy
// of a personal handle; the shared-account detector compares the average
// against its threshold.
func ShannonEntropy(s string) float64 {
	if s == "" {
		return 0
	}

	counts := make(map[rune]int)
	total := 0
	for _, r := range s {
		counts[r]++
		total++
	}

	entropy := 0.0
	for _, count := range counts {
		p := float64(count) / float64(total)
		entropy -= p * math.Log2(p)
	}
	return entropy
}
