package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type sample struct {
	Name  string `yaml:"name"`
	Port  int    `yaml:"port"`
	Limit int    `yaml:"limit"`
}

func (s *sample) Validate() error {
	if s.Port <= 0 {
		return errors.New("port must be positive")
	}
	return nil
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoadExpandsEnv(t *testing.T) {
	t.Setenv("SAMPLE_NAME", "quire")
	p := writeFile(t, "name: ${SAMPLE_NAME}\nport: 9000\n")

	cfg := sample{Limit: 5}
	if err := Load(p, &cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Name != "quire" || cfg.Port != 9000 {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Limit != 5 {
		t.Errorf("default overwritten: limit = %d", cfg.Limit)
	}
}

func TestLoadValidates(t *testing.T) {
	p := writeFile(t, "port: 0\n")
	var cfg sample
	err := Load(p, &cfg)
	if err == nil || !strings.Contains(err.Error(), "validation failed") {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	var cfg sample
	if err := Load(filepath.Join(t.TempDir(), "nope.yaml"), &cfg); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestReloadReturnsFreshSnapshot(t *testing.T) {
	p := writeFile(t, "port: 8080\n")
	defaults := func() *sample { return &sample{Name: "default", Port: 1} }

	first, err := Reload(p, defaults)
	if err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if first.Name != "default" || first.Port != 8080 {
		t.Errorf("first = %+v", first)
	}

	if err := os.WriteFile(p, []byte("port: -1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Reload(p, defaults); err == nil {
		t.Fatal("expected validation error on reload")
	}
	if first.Port != 8080 {
		t.Errorf("previous snapshot mutated: %+v", first)
	}
}
