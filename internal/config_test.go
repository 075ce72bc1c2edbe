package internal

import (
	"strings"
	"testing"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestHTTPConfig_PortBounds(t *testing.T) {
	for _, port := range []int{0, -1, 70000} {
		cfg := NewDefaultConfig()
		cfg.App.HTTP.Port = port
		if err := cfg.Validate(); err == nil {
			t.Errorf("port %d should fail validation", port)
		}
	}
}

func TestHTTPConfig_Address(t *testing.T) {
	cfg := HTTPConfig{Port: 9000}
	if got := cfg.Address(); got != ":9000" {
		t.Errorf("Address() = %q, want :9000", got)
	}
}

func TestStoreConfig_RequiresPath(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Store.Path = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("empty store path should fail validation")
	}
}

func TestStoreConfig_DefaultProjectCharset(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Store.DefaultProject = "has spaces!"
	if err := cfg.Validate(); err == nil {
		t.Fatal("default_project with forbidden characters should fail")
	}

	cfg.Store.DefaultProject = "scratch_pad-2"
	if err := cfg.Validate(); err != nil {
		t.Errorf("valid default_project rejected: %v", err)
	}
}

func TestClassifyThresholdsValidated(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Classify.ContentLenForLevel4 = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("zero classifier threshold should fail validation")
	}
}

func TestSearchConfig_TokenizerBounds(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Search.Weights.MinTokenLen = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("zero min_token_len should fail validation")
	}

	cfg = NewDefaultConfig()
	cfg.Search.Weights.MaxEditDistance = 9
	if err := cfg.Validate(); err == nil {
		t.Fatal("oversized max_edit_distance should fail validation")
	}
}

func TestStoreOptionsMapping(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Store.DefaultProject = "inbox"
	cfg.Classify.TagsForLevel2 = 7
	cfg.Search.Weights.Phrase = 9.5

	opts := cfg.StoreOptions()
	if opts.DefaultProject != "inbox" {
		t.Errorf("DefaultProject = %q, want inbox", opts.DefaultProject)
	}
	if opts.Rules.TagsForLevel2 != 7 {
		t.Errorf("TagsForLevel2 = %d, want 7", opts.Rules.TagsForLevel2)
	}
	if opts.Weights.Phrase != 9.5 {
		t.Errorf("Phrase = %v, want 9.5", opts.Weights.Phrase)
	}
}

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
