package config

import (
	"os"
	"testing"
	"time"
)

func TestLoadOrCreate_CreatesDefaultConfigWhenFileDoesNotExist(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	cfg, err := LoadOrCreate(tmpDir)
	if err != nil {
		t.Fatalf("LoadOrCreate: %v", err)
	}

	if _, err := os.Stat(Path(tmpDir)); os.IsNotExist(err) {
		t.Fatal("expected config file to be created")
	}
	if cfg.Listen != "0.0.0.0:8100" {
		t.Fatalf("expected default listen address, got %q", cfg.Listen)
	}
	if cfg.Backend != "localhost:80" {
		t.Fatalf("expected default backend, got %q", cfg.Backend)
	}
	if cfg.HostSuffix != "localhost" {
		t.Fatalf("expected default host suffix, got %q", cfg.HostSuffix)
	}
	if !cfg.Admin.Enabled || cfg.Admin.Listen != "127.0.0.1:8101" {
		t.Fatalf("expected default admin settings, got %+v", cfg.Admin)
	}
}

func TestLoadOrCreate_LoadsExistingConfig(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	existing := Default()
	existing.Listen = "127.0.0.1:9100"
	existing.HostSuffix = "internal.test"
	if err := Save(tmpDir, existing); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadOrCreate(tmpDir)
	if err != nil {
		t.Fatalf("LoadOrCreate: %v", err)
	}
	if cfg.Listen != "127.0.0.1:9100" {
		t.Fatalf("expected listen '127.0.0.1:9100', got %q", cfg.Listen)
	}
	if cfg.HostSuffix != "internal.test" {
		t.Fatalf("expected host suffix 'internal.test', got %q", cfg.HostSuffix)
	}
}

func TestLoadOrCreate_FillsMissingFieldsWithDefaults(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	partial := []byte(`{"listen": "127.0.0.1:9000"}`)
	if err := os.WriteFile(Path(tmpDir), partial, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadOrCreate(tmpDir)
	if err != nil {
		t.Fatalf("LoadOrCreate: %v", err)
	}
	if cfg.Listen != "127.0.0.1:9000" {
		t.Fatalf("expected the file value to win, got %q", cfg.Listen)
	}
	if cfg.Backend != "localhost:80" {
		t.Fatalf("expected the default backend to fill in, got %q", cfg.Backend)
	}
	if cfg.DialTimeoutSeconds != 10 {
		t.Fatalf("expected the default dial timeout to fill in, got %d", cfg.DialTimeoutSeconds)
	}
}

func TestLoadOrCreate_HandlesInvalidJSON(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	if err := os.WriteFile(Path(tmpDir), []byte("{invalid json"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadOrCreate(tmpDir); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestApplyEnv_OverridesFields(t *testing.T) {
	t.Setenv("TENANTGATE_BACKEND", "10.0.0.9:8080")
	t.Setenv("TENANTGATE_HOST_SUFFIX", "cluster.local")
	t.Setenv("TENANTGATE_ADMIN_DISABLED", "1")

	cfg := Default()
	cfg.ApplyEnv()

	if cfg.Backend != "10.0.0.9:8080" {
		t.Fatalf("expected env backend, got %q", cfg.Backend)
	}
	if cfg.HostSuffix != "cluster.local" {
		t.Fatalf("expected env host suffix, got %q", cfg.HostSuffix)
	}
	if cfg.Admin.Enabled {
		t.Fatal("expected the admin server to be disabled")
	}
	if cfg.Listen != "0.0.0.0:8100" {
		t.Fatalf("expected unset fields untouched, got %q", cfg.Listen)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	mutate := func(f func(*Config)) Config {
		cfg := Default()
		f(&cfg)
		return cfg
	}
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "defaults are valid", cfg: Default()},
		{name: "missing listen port", cfg: mutate(func(c *Config) { c.Listen = "0.0.0.0" }), wantErr: true},
		{name: "missing backend port", cfg: mutate(func(c *Config) { c.Backend = "localhost" }), wantErr: true},
		{name: "empty host suffix", cfg: mutate(func(c *Config) { c.HostSuffix = "  " }), wantErr: true},
		{name: "bad admin address", cfg: mutate(func(c *Config) { c.Admin.Listen = "nope" }), wantErr: true},
		{name: "bad admin address ignored when disabled", cfg: mutate(func(c *Config) {
			c.Admin.Enabled = false
			c.Admin.Listen = "nope"
		})},
		{name: "unknown log format", cfg: mutate(func(c *Config) { c.LogFormat = "xml" }), wantErr: true},
		{name: "unknown log level", cfg: mutate(func(c *Config) { c.LogLevel = "loud" }), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr && err == nil {
				t.Fatal("expected an error")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		})
	}
}

func TestTimeoutHelpers(t *testing.T) {
	t.Parallel()

	cfg := Default()
	if got := cfg.DialTimeout(); got != 10*time.Second {
		t.Fatalf("expected 10s dial timeout, got %v", got)
	}
	if got := cfg.DrainTimeout(); got != 5*time.Second {
		t.Fatalf("expected 5s drain timeout, got %v", got)
	}
}
