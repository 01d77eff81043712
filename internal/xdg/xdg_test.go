package xdg

import (
	"path/filepath"
	"testing"
)

func TestConfigDir_HonorsXDGConfigHome(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", filepath.Join("/custom", "config"))

	dir, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir: %v", err)
	}
	want := filepath.Join("/custom", "config", "tenantgate")
	if dir != want {
		t.Fatalf("expected %q, got %q", want, dir)
	}
}

func TestConfigDir_FallsBackToHome(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("HOME", filepath.Join("/home", "someone"))

	dir, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir: %v", err)
	}
	want := filepath.Join("/home", "someone", ".config", "tenantgate")
	if dir != want {
		t.Fatalf("expected %q, got %q", want, dir)
	}
}
