package cli

import (
	"testing"

	"tenantgate/internal/config"
)

func TestSetConfigField_RoundTripsEveryKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		key   string
		value string
	}{
		{"listen", "0.0.0.0:9100"},
		{"backend", "10.0.0.5:3000"},
		{"hostSuffix", "svc.internal"},
		{"policyFile", "/etc/tenantgate/policy.yaml"},
		{"adminEnabled", "false"},
		{"adminListen", "127.0.0.1:9101"},
		{"dialTimeoutSeconds", "30"},
		{"drainTimeoutSeconds", "15"},
		{"logFormat", "json"},
		{"logLevel", "debug"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Parallel()
			cfg := config.Default()
			if err := setConfigField(&cfg, tt.key, tt.value); err != nil {
				t.Fatalf("setConfigField(%q, %q): %v", tt.key, tt.value, err)
			}
			got, err := getConfigField(cfg, tt.key)
			if err != nil {
				t.Fatalf("getConfigField(%q): %v", tt.key, err)
			}
			if got != tt.value {
				t.Errorf("getConfigField(%q) = %q, want %q", tt.key, got, tt.value)
			}
		})
	}
}

func TestSetConfigField_RejectsUnknownKey(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	if err := setConfigField(&cfg, "bogus", "x"); err == nil {
		t.Fatal("expected error for unknown key, got nil")
	}
	if _, err := getConfigField(cfg, "bogus"); err == nil {
		t.Fatal("expected error for unknown key, got nil")
	}
}

func TestSetConfigField_RejectsNonNumericTimeout(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	if err := setConfigField(&cfg, "dialTimeoutSeconds", "soon"); err == nil {
		t.Fatal("expected error for non-numeric timeout, got nil")
	}
	if err := setConfigField(&cfg, "adminEnabled", "maybe"); err == nil {
		t.Fatal("expected error for non-boolean value, got nil")
	}
}
