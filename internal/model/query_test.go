package model

import (
	"errors"
	"testing"
)

// TestNewEmailQuery tests email query construction.
func TestNewEmailQuery(t *testing.T) {
	t.Parallel()

	t.Run("lowercases and trims the address", func(t *testing.T) {
		t.Parallel()

		q := NewEmailQuery("  User@Mail.COM ")

		if q.Kind != QueryEmail {
			t.Errorf("expected QueryEmail, got %v", q.Kind)
		}
		if q.Value != "user@mail.com" {
			t.Errorf("expected user@mail.com, got %q", q.Value)
		}
	})

	t.Run("extracts the domain", func(t *testing.T) {
		t.Parallel()

		q := NewEmailQuery("user@example.org")
		if q.Domain() != "example.org" {
			t.Errorf("expected example.org, got %q", q.Domain())
		}
	})
}

// TestNewPhoneQuery tests phone query construction.
func TestNewPhoneQuery(t *testing.T) {
	t.Parallel()

	q := NewPhoneQuery("+1 (415) 555-0100")

	if q.Kind != QueryPhone {
		t.Errorf("expected QueryPhone, got %v", q.Kind)
	}
	if q.Value != "+14155550100" {
		t.Errorf("expected +14155550100, got %q", q.Value)
	}
	if q.Domain() != "" {
		t.Errorf("expected empty domain for phone query, got %q", q.Domain())
	}
}

// TestQueryValidate tests query validation rules.
func TestQueryValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		query   Query
		wantErr error
	}{
		{
			name:    "valid email",
			query:   NewEmailQuery("user@example.com"),
			wantErr: nil,
		},
		{
			name:    "valid phone",
			query:   NewPhoneQuery("+14155550100"),
			wantErr: nil,
		},
		{
			name:    "empty identifier",
			query:   Query{Kind: QueryEmail},
			wantErr: ErrEmptyIdentifier,
		},
		{
			name:    "email without at sign",
			query:   NewEmailQuery("userexample.com"),
			wantErr: ErrInvalidEmail,
		},
		{
			name:    "email without registrable domain",
			query:   NewEmailQuery("user@localhost"),
			wantErr: ErrInvalidEmail,
		},
		{
			name:    "email with empty local part",
			query:   NewEmailQuery("@example.com"),
			wantErr: ErrInvalidEmail,
		},
		{
			name:    "phone without plus prefix",
			query:   Query{Kind: QueryPhone, Value: "14155550100"},
			wantErr: ErrInvalidPhone,
		},
		{
			name:    "phone too short",
			query:   Query{Kind: QueryPhone, Value: "+1234"},
			wantErr: ErrInvalidPhone,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.query.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}
