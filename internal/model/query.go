package model

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// QueryKind identifies the type of identifier a query carries.
type QueryKind int

const (
	// QueryEmail means the query identifier is an email address.
	QueryEmail QueryKind = iota

	// QueryPhone means the query identifier is a phone number in
	// international format (+1234567890).
	QueryPhone
)

// String returns a human-readable representation of the query kind.
func (k QueryKind) String() string {
	switch k {
	case QueryEmail:
		return "email"
	case QueryPhone:
		return "phone"
	default:
		return "unknown"
	}
}

// Query validation errors.
// These belong to the ValidationError class of the error taxonomy: they are
// surfaced to the caller immediately and never retried.
var (
	// ErrEmptyIdentifier is returned when the query identifier is empty.
	ErrEmptyIdentifier = errors.New("query identifier must not be empty")

	// ErrInvalidEmail is returned when an email identifier is malformed or
	// its domain has no registrable suffix.
	ErrInvalidEmail = errors.New("invalid email address")

	// ErrInvalidPhone is returned when a phone identifier is not in
	// international format.
	ErrInvalidPhone = errors.New("invalid phone number: must be in international format (+1234567890)")
)

// phonePattern matches E.164-style international phone numbers.
var phonePattern = regexp.MustCompile(`^\+[1-9][0-9]{6,14}$`)

// Query is a single identity lookup request. A query is immutable once
// submitted: the engine reads it but never modifies it.
type Query struct {
	// Kind tags the identifier as an email address or phone number.
	Kind QueryKind `json:"kind"`

	// Value is the identifier itself, normalized to lower case for emails.
	Value string `json:"value"`

	// Context carries optional caller-supplied metadata, such as browser or
	// system fingerprints collected out of band. The engine treats these as
	// opaque key-value data and only specific risk detectors consume them.
	Context map[string]string `json:"context,omitempty"`
}

// NewEmailQuery creates a Query for an email address.
// The address is lower-cased; validation happens in Validate.
func NewEmailQuery(email string) Query {
	return Query{
		Kind:  QueryEmail,
		Value: strings.ToLower(strings.TrimSpace(email)),
	}
}

// NewPhoneQuery creates a Query for a phone number.
// Spaces and dashes are stripped; validation happens in Validate.
func NewPhoneQuery(phone string) Query {
	cleaned := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(phone)
	return Query{
		Kind:  QueryPhone,
		Value: strings.TrimSpace(cleaned),
	}
}

// Validate checks that the query identifier is well formed.
// For emails the domain must carry a registrable public suffix; this catches
// typos like "user@mail" before any source is dispatched.
func (q Query) Validate() error {
	if q.Value == "" {
		return ErrEmptyIdentifier
	}

	switch q.Kind {
	case QueryEmail:
		local, domain, ok := strings.Cut(q.Value, "@")
		if !ok || local == "" || domain == "" || strings.Contains(domain, "@") {
			return fmt.Errorf("%w: %q", ErrInvalidEmail, q.Value)
		}
		if _, err := publicsuffix.EffectiveTLDPlusOne(domain); err != nil {
			return fmt.Errorf("%w: %q has no registrable domain", ErrInvalidEmail, q.Value)
		}
	case QueryPhone:
		if !phonePattern.MatchString(q.Value) {
			return fmt.Errorf("%w: %q", ErrInvalidPhone, q.Value)
		}
	default:
		return fmt.Errorf("unknown query kind: %d", q.Kind)
	}

	return nil
}

// Domain returns the email domain for email queries, or an empty string
// for phone queries.
func (q Query) Domain() string {
	if q.Kind != QueryEmail {
		return ""
	}
	_, domain, _ := strings.Cut(q.Value, "@")
	return domain
}
