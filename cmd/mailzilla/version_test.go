package main

import (
	"bytes"
	"strings"
	"testing"
)

// TestVersionCmd tests the version command output.
func TestVersionCmd(t *testing.T) {
	t.Parallel()

	cmd := NewVersionCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)

	if err := cmd.Execute(); err != nil {
		t.Fatalf("version failed: %v", err)
	}

	output := out.String()
	for _, want := range []string{"mailzilla version", "commit:", "built:"} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

// TestGetVersion tests the ldflags priority.
func TestGetVersion(t *testing.T) {
	orig := version
	defer func() { version = orig }()

	version = "v1.2.3"
	if got := getVersion(); got != "v1.2.3" {
		t.Errorf("expected ldflags version, got %q", got)
	}

	version = ""
	if got := getVersion(); got == "" {
		t.Error("version must never be empty")
	}
}
