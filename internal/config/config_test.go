package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"WEB_PORT", "WEB_HOST", "RENDER_PRINT_DPI", "RENDER_JPEG_QUALITY", "REMOVE_BG_URL", "REMOVE_BG_API_KEYS"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.Web.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Web.Port)
	}
	if cfg.Web.Host != "0.0.0.0" {
		t.Errorf("expected default host 0.0.0.0, got %s", cfg.Web.Host)
	}
	if cfg.Render.PrintDPI != 300 {
		t.Errorf("expected print DPI 300, got %f", cfg.Render.PrintDPI)
	}
	if cfg.Render.PreviewDPI != 150 {
		t.Errorf("expected preview DPI 150, got %f", cfg.Render.PreviewDPI)
	}
	if cfg.Render.JPEGQuality != 92 {
		t.Errorf("expected JPEG quality 92, got %d", cfg.Render.JPEGQuality)
	}
	if cfg.RemoveBG.URL != defaultRemoveBGURL {
		t.Errorf("expected default remove.bg URL, got %s", cfg.RemoveBG.URL)
	}
	if len(cfg.RemoveBG.APIKeys) != 0 {
		t.Errorf("expected no API keys, got %v", cfg.RemoveBG.APIKeys)
	}
}

func TestLoad_InvalidPortFallsBack(t *testing.T) {
	for _, v := range []string{"invalid", "-1", "0"} {
		t.Setenv("WEB_PORT", v)

		cfg := Load()

		if cfg.Web.Port != 8080 {
			t.Errorf("WEB_PORT=%q: expected default 8080, got %d", v, cfg.Web.Port)
		}
	}
}

func TestLoad_APIKeyList(t *testing.T) {
	t.Setenv("REMOVE_BG_API_KEYS", " key-a, ,key-b,key-c ")

	cfg := Load()

	want := []string{"key-a", "key-b", "key-c"}
	if len(cfg.RemoveBG.APIKeys) != len(want) {
		t.Fatalf("expected %d keys, got %v", len(want), cfg.RemoveBG.APIKeys)
	}
	for i, k := range want {
		if cfg.RemoveBG.APIKeys[i] != k {
			t.Errorf("key %d: expected %s, got %s", i, k, cfg.RemoveBG.APIKeys[i])
		}
	}
}

func TestLoad_CustomDPI(t *testing.T) {
	t.Setenv("RENDER_PRINT_DPI", "600")
	t.Setenv("RENDER_PREVIEW_DPI", "abc")

	cfg := Load()

	if cfg.Render.PrintDPI != 600 {
		t.Errorf("expected print DPI 600, got %f", cfg.Render.PrintDPI)
	}
	if cfg.Render.PreviewDPI != 150 {
		t.Errorf("expected preview DPI fallback 150, got %f", cfg.Render.PreviewDPI)
	}
}

func TestLoad_Sizes(t *testing.T) {
	cfg := Load()

	if len(cfg.Sizes.Sizes) == 0 {
		t.Fatal("expected embedded size catalogue")
	}

	size, ok := cfg.FindSize("passport-eu")
	if !ok {
		t.Fatal("expected passport-eu size")
	}
	if size.Width != 35 || size.Height != 45 {
		t.Errorf("expected 35x45, got %gx%g", size.Width, size.Height)
	}

	if _, ok := cfg.FindSize("does-not-exist"); ok {
		t.Error("expected unknown size to be missing")
	}
}

func TestLoad_SizesWithinLayoutBounds(t *testing.T) {
	cfg := Load()

	for _, s := range cfg.Sizes.Sizes {
		if s.Width < 10 || s.Width > 100 || s.Height < 10 || s.Height > 150 {
			t.Errorf("size %s (%gx%g) is outside the supported range", s.ID, s.Width, s.Height)
		}
	}
}

func TestGoogleConfig_Enabled(t *testing.T) {
	tests := []struct {
		name string
		cfg  GoogleConfig
		want bool
	}{
		{"empty", GoogleConfig{}, false},
		{"id only", GoogleConfig{ClientID: "id"}, false},
		{"both", GoogleConfig{ClientID: "id", ClientSecret: "secret"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.Enabled(); got != tt.want {
				t.Errorf("Enabled() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGoogleRedirectURL(t *testing.T) {
	cfg := &Config{Web: WebConfig{BaseURL: "https://sheet.example.com/"}}

	if got := cfg.GoogleRedirectURL(); got != "https://sheet.example.com/api/v1/auth/google/callback" {
		t.Errorf("unexpected derived redirect URL: %s", got)
	}

	cfg.Google.RedirectURL = "https://other.example.com/cb"
	if got := cfg.GoogleRedirectURL(); got != "https://other.example.com/cb" {
		t.Errorf("expected explicit redirect URL, got %s", got)
	}
}

func TestLoadFile_OverridesEnvironment(t *testing.T) {
	t.Setenv("WEB_PORT", "9000")
	t.Setenv("DATABASE_URL", "postgres://env")

	path := filepath.Join(t.TempDir(), "photo-sheet.toml")
	content := `
[web]
port = 9100

[remove_bg]
api_keys = ["file-a", "file-b"]

[render]
cut_guides = true
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	if cfg.Web.Port != 9100 {
		t.Errorf("expected file port 9100, got %d", cfg.Web.Port)
	}
	if cfg.Database.URL != "postgres://env" {
		t.Errorf("expected env database URL to survive, got %s", cfg.Database.URL)
	}
	if len(cfg.RemoveBG.APIKeys) != 2 || cfg.RemoveBG.APIKeys[0] != "file-a" {
		t.Errorf("expected file API keys, got %v", cfg.RemoveBG.APIKeys)
	}
	if !cfg.Render.CutGuides {
		t.Error("expected cut guides enabled from file")
	}
	if len(cfg.Sizes.Sizes) == 0 {
		t.Error("expected size catalogue to survive file load")
	}
}

func TestLoadFile_EmptyPath(t *testing.T) {
	cfg, err := LoadFile("")
	if err != nil {
		t.Fatalf("LoadFile(\"\") error = %v", err)
	}
	if cfg == nil {
		t.Fatal("expected config")
	}
}

func TestLoadFile_Errors(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("[web\nport = "), 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Error("expected error for malformed file")
	}
}
