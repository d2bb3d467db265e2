package risk

import (
	"context"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/crypto/sha3"

	"github.com/FJ-cyberzilla/mailzilla/internal/config"
	"github.com/FJ-cyberzilla/mailzilla/internal/model"
)

// FingerprintDigest returns the SHA3-256 digest of one fingerprint
// sample. Raw fingerprint payloads can be large and sensitive; only
// digests are compared and logged.
func FingerprintDigest(sample string) string {
	sum := sha3.Sum256([]byte(sample))
	return hex.EncodeToString(sum[:])
}

// hardwareSpoofingDetector flags contradictory device fingerprints: the
// same component (canvas, user agent, audio stack) producing different
// digests across samples taken during one session.
type hardwareSpoofingDetector struct {
	thresholds config.Thresholds
}

func (d *hardwareSpoofingDetector) Name() string { return "hardware_spoofing" }

func (d *hardwareSpoofingDetector) Detect(_ context.Context, identity *model.CorrelatedIdentity) (*model.RiskIndicator, error) {
	// Group samples by component: fingerprint.<component>.<sample>.
	digests := make(map[string]map[string]bool)
	for key, sample := range identity.Query.Context {
		if !strings.HasPrefix(key, FingerprintKeyPrefix) {
			continue
		}
		component := strings.TrimPrefix(key, FingerprintKeyPrefix)
		if i := strings.LastIndex(component, "."); i > 0 {
			component = component[:i]
		}
		if digests[component] == nil {
			digests[component] = make(map[string]bool)
		}
		digests[component][FingerprintDigest(sample)] = true
	}
	if len(digests) == 0 {
		return nil, nil
	}

	var conflicting []string
	for component, set := range digests {
		if len(set) >= 2 {
			conflicting = append(conflicting, component)
		}
	}
	if len(conflicting) == 0 {
		return nil, nil
	}
	sort.Strings(conflicting)

	evidence := make([]string, 0, len(conflicting))
	for _, component := range conflicting {
		evidence = append(evidence, fmt.Sprintf("%s fingerprint changed between samples (%d distinct digests)",
			component, len(digests[component])))
	}

	confidence := capConfidence(0.4 + 0.2*float64(len(conflicting)))
	if confidence <= d.thresholds.Default {
		return nil, nil
	}
	return &model.RiskIndicator{
		Type:       model.RiskHardwareSpoofing,
		Confidence: confidence,
		Evidence:   evidence,
		Severity:   model.SeverityForConfidence(confidence),
		Impact:     0.8,
	}, nil
}
