package internal

import (
	"strings"
	"testing"
	"time"
)

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{Mode: "", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
}

func TestAuthConfig_TokenModeValid(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: "mysecret"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("token mode with token should pass: %v", err)
	}
	if !cfg.AuthEnabled() {
		t.Error("token mode should be enabled")
	}
}

func TestAuthConfig_TokenModeEmptyToken(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: ""}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("token mode with empty token should fail")
	}
	if !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAuthConfig_InvalidMode(t *testing.T) {
	cfg := AuthConfig{Mode: "magic", Token: "x"}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}

func TestFullConfig_AuthValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Auth.Mode = "token"
	cfg.Auth.Token = ""
	err := cfg.Validate()
	if err == nil {
		t.Fatal("full config validate should catch auth error")
	}
}

func TestDefaultConfigValid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if !cfg.Elements.SuppressFuture {
		t.Error("suppress_future should default to true")
	}
	if cfg.History.MergeWindow != 15*time.Minute {
		t.Errorf("merge window = %v", cfg.History.MergeWindow)
	}
}

func TestNotesConfig_HistoryDirMustBeHidden(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Notes.HistoryDir = "history"
	if err := cfg.Validate(); err == nil {
		t.Fatal("visible history dir should fail validation")
	}
	cfg.Notes.HistoryDir = ".versions"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("hidden history dir should pass: %v", err)
	}
}

func TestNotesConfig_Extensions(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Notes.Extensions = []string{".md", "txt"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("extension without dot should fail validation")
	}
}

func TestHistoryConfig_NegativeWindow(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.History.MergeWindow = -time.Second
	if err := cfg.Validate(); err == nil {
		t.Fatal("negative merge window should fail validation")
	}
}
