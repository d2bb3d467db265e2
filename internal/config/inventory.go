package config

import (
	"fmt"

	"github.com/FJ-cyberzilla/mailzilla/internal/model"
)

// SourceEntry describes one platform source in the inventory file.
// The factory in internal/source turns entries into live Source instances;
// this struct is plain configuration, never synthesized at runtime.
type SourceEntry struct {
	// Platform is the platform id (e.g. "linkedin", "github").
	Platform string `yaml:"platform"`

	// Category is the platform category name; see model.ParseCategory.
	Category string `yaml:"category"`

	// Reliability is the static reliability prior in [0,1]. Professional
	// networks carry the highest priors.
	Reliability float64 `yaml:"reliability"`

	// EmailSearch reports whether the source can search by email.
	EmailSearch bool `yaml:"email_search"`

	// PhoneSearch reports whether the source can search by phone number.
	PhoneSearch bool `yaml:"phone_search"`

	// Options carries source-specific settings the engine passes through
	// opaquely (endpoints, credentials references, politeness delays).
	Options map[string]string `yaml:"options,omitempty"`
}

// ParsedCategory returns the model category for the entry.
func (e SourceEntry) ParsedCategory() (model.Category, bool) {
	return model.ParseCategory(e.Category)
}

// Weights are the tunable constants of the confidence and risk formulas.
// The structural algorithm (weighted combination bounded to [0,1]) is
// fixed; these numbers are not.
type Weights struct {
	// Reliability weights the static source prior in observation confidence.
	Reliability float64 `yaml:"reliability"`

	// Completeness weights the filled-field ratio.
	Completeness float64 `yaml:"completeness"`

	// Recency weights the activity decay factor.
	Recency float64 `yaml:"recency"`

	// VerificationBonus is added when the platform marks the profile verified.
	VerificationBonus float64 `yaml:"verification_bonus"`

	// RiskPenaltyThreshold is the overall risk above which identity
	// confidence is down-weighted.
	RiskPenaltyThreshold float64 `yaml:"risk_penalty_threshold"`

	// RiskPenaltyFactor multiplies identity confidence when the threshold
	// is crossed.
	RiskPenaltyFactor float64 `yaml:"risk_penalty_factor"`
}

// DefaultWeights returns the default scoring constants.
func DefaultWeights() Weights {
	return Weights{
		Reliability:          0.4,
		Completeness:         0.3,
		Recency:              0.2,
		VerificationBonus:    0.1,
		RiskPenaltyThreshold: 0.7,
		RiskPenaltyFactor:    0.8,
	}
}

// Thresholds are the tunable emit thresholds of the risk detectors.
type Thresholds struct {
	// SharedAccount is the combined-confidence threshold for the shared
	// account detector.
	SharedAccount float64 `yaml:"shared_account"`

	// Timezone is the threshold for the timezone manipulation detector.
	Timezone float64 `yaml:"timezone"`

	// Fragmentation is the threshold for the identity fragmentation detector.
	Fragmentation float64 `yaml:"fragmentation"`

	// Default applies to the remaining detectors.
	Default float64 `yaml:"default"`

	// UsernameEntropy is the Shannon entropy (bits) below which a handle
	// counts as suspiciously generic.
	UsernameEntropy float64 `yaml:"username_entropy"`

	// NocturnalRatio is the share of night-hour activity above which the
	// timezone detector flags an anomaly.
	NocturnalRatio float64 `yaml:"nocturnal_ratio"`

	// NameVariants is the count of distinct full names above which the
	// fragmentation detector flags excessive variation.
	NameVariants int `yaml:"name_variants"`
}

// DefaultThresholds returns the default detector thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		SharedAccount:   0.5,
		Timezone:        0.5,
		Fragmentation:   0.4,
		Default:         0.5,
		UsernameEntropy: 2.5,
		NocturnalRatio:  0.7,
		NameVariants:    3,
	}
}

// File is the YAML inventory file: the platform sources the engine may
// dispatch plus the tunable scoring constants.
type File struct {
	// Sources lists every configured platform source.
	Sources []SourceEntry `yaml:"sources"`

	// Weights overrides the confidence scoring constants.
	Weights Weights `yaml:"weights"`

	// Thresholds overrides the risk detector thresholds.
	Thresholds Thresholds `yaml:"thresholds"`
}

// Validate checks every inventory entry.
func (f *File) Validate() error {
	for i, entry := range f.Sources {
		if entry.Platform == "" {
			return fmt.Errorf("%w: entry %d has no platform", ErrInvalidSource, i)
		}
		if _, ok := entry.ParsedCategory(); !ok {
			return fmt.Errorf("%w: %s has unknown category %q", ErrInvalidSource, entry.Platform, entry.Category)
		}
		if entry.Reliability < 0 || entry.Reliability > 1 {
			return fmt.Errorf("%w: %s reliability %f outside [0,1]", ErrInvalidSource, entry.Platform, entry.Reliability)
		}
		if !entry.EmailSearch && !entry.PhoneSearch {
			return fmt.Errorf("%w: %s supports neither email nor phone search", ErrInvalidSource, entry.Platform)
		}
	}
	return nil
}

// DefaultInventory returns the built-in source inventory, used when no
// configuration file exists. Entries can be trimmed or extended via the
// YAML file.
func DefaultInventory() *File {
	return &File{
		Sources: []SourceEntry{
			// Professional networks: strongest identity signal.
			{Platform: "linkedin", Category: "professional", Reliability: 0.9, EmailSearch: true},
			{Platform: "angellist", Category: "professional", Reliability: 0.75, EmailSearch: true},

			// Code platforms.
			{Platform: "github", Category: "code", Reliability: 0.8, EmailSearch: true},
			{Platform: "gitlab", Category: "code", Reliability: 0.7, EmailSearch: true},

			// Social media.
			{Platform: "twitter", Category: "social_media", Reliability: 0.7, EmailSearch: true, PhoneSearch: true},
			{Platform: "facebook", Category: "social_media", Reliability: 0.65, EmailSearch: true, PhoneSearch: true},
			{Platform: "instagram", Category: "social_media", Reliability: 0.6, EmailSearch: true},
			{Platform: "reddit", Category: "social_media", Reliability: 0.5, EmailSearch: true},

			// Messaging platforms: phone-first.
			{Platform: "telegram", Category: "messaging", Reliability: 0.6, PhoneSearch: true},
			{Platform: "whatsapp", Category: "messaging", Reliability: 0.6, PhoneSearch: true},
			{Platform: "signal", Category: "messaging", Reliability: 0.55, PhoneSearch: true},
			{Platform: "skype", Category: "messaging", Reliability: 0.5, EmailSearch: true, PhoneSearch: true},

			// Emerging platforms.
			{Platform: "bluesky", Category: "emerging", Reliability: 0.5, EmailSearch: true},
			{Platform: "threads", Category: "emerging", Reliability: 0.45, EmailSearch: true},
			{Platform: "mastodon", Category: "emerging", Reliability: 0.45, EmailSearch: true},

			// Specialized platforms.
			{Platform: "gravatar", Category: "specialized", Reliability: 0.45, EmailSearch: true},
			{Platform: "twitch", Category: "specialized", Reliability: 0.4, EmailSearch: true},
			{Platform: "flickr", Category: "specialized", Reliability: 0.35, EmailSearch: true},
			{Platform: "vk", Category: "specialized", Reliability: 0.4, EmailSearch: true, PhoneSearch: true},
		},
		Weights:    DefaultWeights(),
		Thresholds: DefaultThresholds(),
	}
}
