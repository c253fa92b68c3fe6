package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFromMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatal(err)
	}

	if cfg.API.BaseURL != "http://localhost:5000/api" {
		t.Errorf("base url = %q", cfg.API.BaseURL)
	}
	if cfg.API.TimeoutSeconds != 30 {
		t.Errorf("timeout = %d", cfg.API.TimeoutSeconds)
	}
	if cfg.Defaults.PreviewRows != 10 {
		t.Errorf("preview rows = %d", cfg.Defaults.PreviewRows)
	}
}

func TestSaveToAndLoadFrom(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.API.BaseURL = "https://api.example.com/api"
	cfg.Defaults.Channel = "myntra"

	if err := SaveTo(cfg, path); err != nil {
		t.Fatal(err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.API.BaseURL != "https://api.example.com/api" {
		t.Errorf("base url = %q", loaded.API.BaseURL)
	}
	if loaded.Defaults.Channel != "myntra" {
		t.Errorf("channel = %q", loaded.Defaults.Channel)
	}
}

func TestLoadFromFillsMissingValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	partial := "api:\n  base_url: https://api.example.com/api\n"
	if err := os.WriteFile(path, []byte(partial), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.API.BaseURL != "https://api.example.com/api" {
		t.Errorf("base url = %q", cfg.API.BaseURL)
	}
	if cfg.API.TimeoutSeconds != 30 {
		t.Errorf("timeout not defaulted: %d", cfg.API.TimeoutSeconds)
	}
	if cfg.Output.Dir != "./output" {
		t.Errorf("output dir not defaulted: %q", cfg.Output.Dir)
	}
}

func TestEnvOverridesBaseURL(t *testing.T) {
	t.Setenv(EnvAPIBaseURL, "https://staging.example.com/api")

	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.API.BaseURL != "https://staging.example.com/api" {
		t.Errorf("env override not applied: %q", cfg.API.BaseURL)
	}
}
