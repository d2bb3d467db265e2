package risk

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/FJ-cyberzilla/mailzilla/internal/config"
	"github.com/FJ-cyberzilla/mailzilla/internal/correlate"
	"github.com/FJ-cyberzilla/mailzilla/internal/model"
)

// Query context keys the detectors consume. The caller collects these
// signals (system profile, geolocation, browser fingerprints) out of
// band and attaches them to the query; the engine never gathers them
// itself.
const (
	ContextTimezoneSystem  = "timezone.system"
	ContextTimezoneNetwork = "timezone.network"
	ContextTimezoneBrowser = "timezone.browser"

	// FingerprintKeyPrefix prefixes device fingerprint samples:
	// fingerprint.<component>.<sample>, e.g. fingerprint.canvas.1.
	FingerprintKeyPrefix = "fingerprint."
)

// maxConfidence caps every emitted indicator; heuristics never claim
// certainty.
const maxConfidence = 0.95

func capConfidence(c float64) float64 {
	if c > maxConfidence {
		return maxConfidence
	}
	return c
}

// genericHandlePatterns match office-style shared handles.
var genericHandlePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i).*team$`),
	regexp.MustCompile(`(?i).*group$`),
	regexp.MustCompile(`(?i).*office$`),
	regexp.MustCompile(`(?i).*company$`),
	regexp.MustCompile(`(?i)^(info|admin|contact|hello|support|sales)\b`),
	regexp.MustCompile(`(?i)^(weare|our|the)\.`),
	regexp.MustCompile(`.*[0-9]{4,}`),
}

func isGenericHandle(username string) bool {
	for _, p := range genericHandlePatterns {
		if p.MatchString(username) {
			return true
		}
	}
	return false
}

// sharedAccountDetector flags accounts operated by multiple people:
// office-style handles, low handle entropy, several distinct activity
// clusters, and varying writing style across bios.
type sharedAccountDetector struct {
	thresholds config.Thresholds
}

func (d *sharedAccountDetector) Name() string { return "shared_account" }

func (d *sharedAccountDetector) Detect(_ context.Context, identity *model.CorrelatedIdentity) (*model.RiskIndicator, error) {
	var usernames []string
	for _, obs := range identity.Evidence {
		if obs.Username != "" {
			usernames = append(usernames, obs.Username)
		}
	}
	if len(usernames) < 2 {
		return nil, nil
	}

	var evidence []string
	confidence := 0.0

	var generic []string
	for _, u := range usernames {
		if isGenericHandle(u) {
			generic = append(generic, u)
		}
	}
	if len(generic) > 0 {
		evidence = append(evidence, fmt.Sprintf("generic handle pattern: %s", strings.Join(generic, ", ")))
		confidence += 0.3
	}
	if len(generic)*2 >= len(usernames) {
		evidence = append(evidence, "majority of handles follow office-style naming")
		confidence += 0.25
	}

	var entropySum float64
	for _, u := range usernames {
		entropySum += ShannonEntropy(u)
	}
	if avg := entropySum / float64(len(usernames)); avg < d.thresholds.UsernameEntropy {
		evidence = append(evidence, fmt.Sprintf("low average handle entropy: %.2f bits", avg))
		confidence += 0.3
	}

	if clusters := activityHourClusters(identity.Evidence); clusters >= 2 {
		evidence = append(evidence, fmt.Sprintf("%d distinct activity-time clusters", clusters))
		confidence += 0.4
	}

	if variations := bioStyleVariations(identity.Evidence); variations >= 2 {
		evidence = append(evidence, fmt.Sprintf("%d distinct writing styles across bios", variations))
		confidence += 0.3
	}

	if len(evidence) == 0 || confidence <= d.thresholds.SharedAccount {
		return nil, nil
	}
	confidence = capConfidence(confidence)
	return &model.RiskIndicator{
		Type:       model.RiskSharedAccount,
		Confidence: confidence,
		Evidence:   evidence,
		Severity:   model.SeverityForConfidence(confidence),
		Impact:     0.8,
	}, nil
}

// activityHourClusters buckets last-activity hours into coarse day parts
// and counts the occupied ones. A single operator concentrates in one or
// two; a shared account lights up more.
func activityHourClusters(evidence []model.Observation) int {
	occupied := make(map[int]bool)
	samples := 0
	for _, obs := range evidence {
		if obs.LastActivity.IsZero() {
			continue
		}
		samples++
		occupied[obs.LastActivity.UTC().Hour()/6] = true
	}
	if samples < 3 {
		return 0
	}
	return len(occupied)
}

// bioStyleVariations counts coarse formality buckets across bios. The
// proxy is crude (punctuation density and average word length) but
// separates "Hey! Love dogs 🐕" from corporate boilerplate.
func bioStyleVariations(evidence []model.Observation) int {
	buckets := make(map[int]bool)
	bios := 0
	for _, obs := range evidence {
		if len(obs.Bio) <= 10 {
			continue
		}
		bios++
		buckets[formalityBucket(obs.Bio)] = true
	}
	if bios < 2 {
		return 0
	}
	return len(buckets)
}

func formalityBucket(bio string) int {
	words := strings.Fields(bio)
	if len(words) == 0 {
		return 0
	}
	var letters int
	for _, w := range words {
		letters += len(w)
	}
	avgWordLen := float64(letters) / float64(len(words))
	exclamations := strings.Count(bio, "!")

	switch {
	case exclamations > 0 || avgWordLen < 4:
		return 0 // casual
	case avgWordLen < 6:
		return 1 // neutral
	default:
		return 2 // formal
	}
}

// timezoneDetector flags mismatches between the declared, network, and
// browser timezones, and activity concentrated in night hours for the
// declared timezone.
type timezoneDetector struct {
	thresholds config.Thresholds
}

func (d *timezoneDetector) Name() string { return "timezone_manipulation" }

func (d *timezoneDetector) Detect(_ context.Context, identity *model.CorrelatedIdentity) (*model.RiskIndicator, error) {
	qctx := identity.Query.Context
	systemTZ := qctx[ContextTimezoneSystem]
	networkTZ := qctx[ContextTimezoneNetwork]
	browserTZ := qctx[ContextTimezoneBrowser]

	var evidence []string
	confidence := 0.0

	if systemTZ != "" && networkTZ != "" && systemTZ != networkTZ {
		evidence = append(evidence, fmt.Sprintf("timezone mismatch: system=%s network=%s", systemTZ, networkTZ))
		confidence += 0.6
	}

	distinct := make(map[string]bool)
	for _, tz := range []string{systemTZ, networkTZ, browserTZ} {
		if tz != "" {
			distinct[tz] = true
		}
	}
	if len(distinct) > 1 {
		evidence = append(evidence, fmt.Sprintf("%d conflicting timezone indicators", len(distinct)))
		confidence += 0.3
	}

	if ratio, samples := nocturnalRatio(identity.Evidence, systemTZ); samples >= 3 && ratio > d.thresholds.NocturnalRatio {
		evidence = append(evidence, fmt.Sprintf("%.0f%% of activity falls in night hours for declared timezone", ratio*100))
		confidence += 0.4
	}

	if len(evidence) == 0 || confidence <= d.thresholds.Timezone {
		return nil, nil
	}
	confidence = capConfidence(confidence)
	return &model.RiskIndicator{
		Type:       model.RiskTimezoneManipulation,
		Confidence: confidence,
		Evidence:   evidence,
		Severity:   model.SeverityForConfidence(confidence),
		Impact:     0.6,
	}, nil
}

// nocturnalRatio returns the share of activity between 22:00 and 06:00 in
// the declared timezone and the number of timestamped observations. An
// unparseable or missing timezone reads as UTC.
func nocturnalRatio(evidence []model.Observation, declaredTZ string) (float64, int) {
	loc := time.UTC
	if declaredTZ != "" {
		if parsed, err := time.LoadLocation(declaredTZ); err == nil {
			loc = parsed
		}
	}

	samples, night := 0, 0
	for _, obs := range evidence {
		if obs.LastActivity.IsZero() {
			continue
		}
		samples++
		hour := obs.LastActivity.In(loc).Hour()
		if hour < 6 || hour >= 22 {
			night++
		}
	}
	if samples == 0 {
		return 0, 0
	}
	return float64(night) / float64(samples), samples
}

// fragmentationDetector flags deliberately compartmentalized personas:
// many name variants, strategically incomplete profiles, and distinct
// personas per platform category.
type fragmentationDetector struct {
	thresholds config.Thresholds
}

func (d *fragmentationDetector) Name() string { return "identity_fragmentation" }

func (d *fragmentationDetector) Detect(_ context.Context, identity *model.CorrelatedIdentity) (*model.RiskIndicator, error) {
	var evidence []string
	confidence := 0.0

	names := make(map[string]bool)
	for _, obs := range identity.Evidence {
		if n := correlate.NormalizeName(obs.FullName); n != "" {
			names[n] = true
		}
	}
	if len(names) > d.thresholds.NameVariants {
		evidence = append(evidence, fmt.Sprintf("%d distinct full-name variants", len(names)))
		confidence += 0.4
	}

	if len(identity.Evidence) > 2 {
		var sum float64
		for _, obs := range identity.Evidence {
			sum += obs.Completeness()
		}
		if avg := sum / float64(len(identity.Evidence)); avg < 0.3 {
			evidence = append(evidence, fmt.Sprintf("strategically incomplete profiles (average completeness %.2f)", avg))
			confidence += 0.3
		}
	}

	if categories := identity.CoveredPlatforms(); len(categories) >= 3 && len(names) >= 2 {
		evidence = append(evidence, fmt.Sprintf("distinct personas across %d platform categories", len(categories)))
		confidence += 0.3
	}

	if len(evidence) == 0 || confidence <= d.thresholds.Fragmentation {
		return nil, nil
	}
	confidence = capConfidence(confidence)
	return &model.RiskIndicator{
		Type:       model.RiskIdentityFragmentation,
		Confidence: confidence,
		Evidence:   evidence,
		Severity:   model.SeverityForConfidence(confidence),
		Impact:     0.7,
	}, nil
}

// spoofingDetector flags profiles imitating another identity: verbatim
// bio copies across platforms and duplicate names where only one profile
// is platform-verified.
type spoofingDetector struct {
	thresholds config.Thresholds
}

func (d *spoofingDetector) Name() string { return "profile_spoofing" }

func (d *spoofingDetector) Detect(_ context.Context, identity *model.CorrelatedIdentity) (*model.RiskIndicator, error) {
	var evidence []string
	confidence := 0.0

	bios := make(map[string][]string) // bio text -> platforms
	for _, obs := range identity.Evidence {
		if len(obs.Bio) > 20 {
			bios[obs.Bio] = append(bios[obs.Bio], obs.Platform)
		}
	}
	for _, platforms := range bios {
		if len(platforms) >= 2 {
			sort.Strings(platforms)
			evidence = append(evidence, fmt.Sprintf("identical bio text copied across %s", strings.Join(platforms, ", ")))
			confidence += 0.3
			break
		}
	}

	byName := make(map[string][]model.Observation)
	for _, obs := range identity.Evidence {
		if n := correlate.NormalizeName(obs.FullName); n != "" {
			byName[n] = append(byName[n], obs)
		}
	}
	for name, group := range byName {
		if len(group) < 2 {
			continue
		}
		verified, unverified := 0, 0
		for _, obs := range group {
			if obs.Verified {
				verified++
			} else {
				unverified++
			}
		}
		if verified >= 1 && unverified >= 1 {
			evidence = append(evidence, fmt.Sprintf("unverified profiles shadow a verified profile for %q", name))
			confidence += 0.35
		}
		if conflictingPictures(group) {
			evidence = append(evidence, fmt.Sprintf("conflicting profile pictures for %q", name))
			confidence += 0.3
		}
	}

	if len(evidence) == 0 || confidence <= d.thresholds.Default {
		return nil, nil
	}
	confidence = capConfidence(confidence)
	return &model.RiskIndicator{
		Type:       model.RiskProfileSpoofing,
		Confidence: confidence,
		Evidence:   evidence,
		Severity:   model.SeverityForConfidence(confidence),
		Impact:     0.7,
	}, nil
}

func conflictingPictures(group []model.Observation) bool {
	pictures := make(map[string]bool)
	for _, obs := range group {
		if obs.PictureURL != "" {
			pictures[obs.PictureURL] = true
		}
	}
	return len(pictures) >= 2
}

// activityAnomalyDetector flags activity patterns inconsistent with a
// single human operator: synchronized last-activity across platforms and
// activity stamped at exact minute boundaries.
type activityAnomalyDetector struct {
	thresholds config.Thresholds
}

func (d *activityAnomalyDetector) Name() string { return "activity_anomaly" }

func (d *activityAnomalyDetector) Detect(_ context.Context, identity *model.CorrelatedIdentity) (*model.RiskIndicator, error) {
	var stamps []time.Time
	for _, obs := range identity.Evidence {
		if !obs.LastActivity.IsZero() {
			stamps = append(stamps, obs.LastActivity)
		}
	}
	if len(stamps) < 3 {
		return nil, nil
	}

	var evidence []string
	confidence := 0.0

	sort.Slice(stamps, func(i, j int) bool { return stamps[i].Before(stamps[j]) })
	if spread := stamps[len(stamps)-1].Sub(stamps[0]); spread < time.Hour {
		evidence = append(evidence, fmt.Sprintf("last activity on %d platforms within %s of each other", len(stamps), spread.Round(time.Minute)))
		confidence += 0.35
		if len(stamps) >= 5 {
			confidence += 0.2
		}
	}

	exact := 0
	for _, s := range stamps {
		if s.Second() == 0 && s.Nanosecond() == 0 && s.Minute()%15 == 0 {
			exact++
		}
	}
	if exact == len(stamps) {
		evidence = append(evidence, "every activity timestamp falls on a quarter-hour boundary")
		confidence += 0.25
	}

	if len(evidence) == 0 || confidence <= d.thresholds.Default {
		return nil, nil
	}
	confidence = capConfidence(confidence)
	return &model.RiskIndicator{
		Type:       model.RiskActivityAnomaly,
		Confidence: confidence,
		Evidence:   evidence,
		Severity:   model.SeverityForConfidence(confidence),
		Impact:     0.5,
	}, nil
}

// behavioralDetector flags self-descriptions that contradict each other
// across platforms: different employers, job titles, or locations on
// profiles that otherwise correlate to the same person.
type behavioralDetector struct {
	thresholds config.Thresholds
}

func (d *behavioralDetector) Name() string { return "behavioral_inconsistency" }

func (d *behavioralDetector) Detect(_ context.Context, identity *model.CorrelatedIdentity) (*model.RiskIndicator, error) {
	var evidence []string
	confidence := 0.0

	if n := distinctValues(identity.Evidence, func(o model.Observation) string { return o.Company }); n >= 2 {
		evidence = append(evidence, fmt.Sprintf("%d different employers declared across platforms", n))
		confidence += 0.3
	}
	if n := distinctValues(identity.Evidence, func(o model.Observation) string { return o.Location }); n >= 3 {
		evidence = append(evidence, fmt.Sprintf("%d different locations declared across platforms", n))
		confidence += 0.3
	}
	if n := distinctValues(identity.Evidence, func(o model.Observation) string { return o.JobTitle }); n >= 3 {
		evidence = append(evidence, fmt.Sprintf("%d different job titles declared across platforms", n))
		confidence += 0.2
	}

	if len(evidence) == 0 || confidence <= d.thresholds.Default {
		return nil, nil
	}
	confidence = capConfidence(confidence)
	return &model.RiskIndicator{
		Type:       model.RiskBehavioralInconsistency,
		Confidence: confidence,
		Evidence:   evidence,
		Severity:   model.SeverityForConfidence(confidence),
		Impact:     0.6,
	}, nil
}

func distinctValues(evidence []model.Observation, field func(model.Observation) string) int {
	values := make(map[string]bool)
	for _, obs := range evidence {
		if v := correlate.NormalizeName(field(obs)); v != "" {
			values[v] = true
		}
	}
	return len(values)
}
