package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

// TestMaskIdentifier tests email and phone masking.
func TestMaskIdentifier(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		in    string
		want  string
		avoid string
	}{
		{
			name:  "email is partially masked",
			in:    "looking up jane.doe@example.com now",
			want:  "j***@example.com",
			avoid: "jane.doe@example.com",
		},
		{
			name:  "phone is partially masked",
			in:    "dispatching +14155550100",
			want:  "+14****00",
			avoid: "+14155550100",
		},
		{
			name: "plain text passes through",
			in:   "collection phase complete",
			want: "collection phase complete",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := MaskIdentifier(tt.in)
			if !strings.Contains(got, tt.want) {
				t.Errorf("expected %q in %q", tt.want, got)
			}
			if tt.avoid != "" && strings.Contains(got, tt.avoid) {
				t.Errorf("unmasked identifier %q leaked into %q", tt.avoid, got)
			}
		})
	}
}

// TestPIIHandler tests masking through the slog pipeline.
func TestPIIHandler(t *testing.T) {
	t.Parallel()

	t.Run("masks identifier attributes", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := NewLogger(&buf, true)

		logger.Info("lookup started", "target", "jane.doe@example.com")

		out := buf.String()
		if strings.Contains(out, "jane.doe@example.com") {
			t.Errorf("email leaked into log output: %s", out)
		}
		if !strings.Contains(out, "j***@example.com") {
			t.Errorf("expected masked email in output: %s", out)
		}
	})

	t.Run("fully redacts credential keys", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := NewLogger(&buf, true)

		logger.Info("source configured", "api_key", "hunter2hunter2")

		out := buf.String()
		if strings.Contains(out, "hunter2") {
			t.Errorf("credential leaked into log output: %s", out)
		}
		if !strings.Contains(out, FullMask) {
			t.Errorf("expected %q in output: %s", FullMask, out)
		}
	})

	t.Run("masks message text", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := NewLogger(&buf, true)

		logger.Warn("no results for +14155550100")

		if strings.Contains(buf.String(), "+14155550100") {
			t.Errorf("phone leaked into message: %s", buf.String())
		}
	})

	t.Run("respects verbosity", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := NewLogger(&buf, false)

		logger.Debug("should be suppressed")

		if buf.Len() != 0 {
			t.Errorf("expected empty output at info level, got %s", buf.String())
		}
	})

	t.Run("masks group attributes", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := NewLogger(&buf, true)

		logger.Info("grouped", slog.Group("query", "value", "a@example.com"))

		if strings.Contains(buf.String(), "a@example.com") {
			t.Errorf("grouped email leaked: %s", buf.String())
		}
	})
}
