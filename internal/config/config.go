package config

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

//go:embed sizes.yaml
var sizesYAML []byte

type Config struct {
	Web      WebConfig      `toml:"web"`
	Database DatabaseConfig `toml:"database"`
	Redis    RedisConfig    `toml:"redis"`
	Google   GoogleConfig   `toml:"google"`
	RemoveBG RemoveBGConfig `toml:"remove_bg"`
	Render   RenderConfig   `toml:"render"`
	Mail     MailConfig     `toml:"mail"`
	Log      LogConfig      `toml:"log"`
	Sizes    SizesConfig    `toml:"-"`
}

type WebConfig struct {
	Host           string   `toml:"host"`
	Port           int      `toml:"port"`
	SessionSecret  string   `toml:"session_secret"`
	BaseURL        string   `toml:"base_url"` // public URL used for OAuth redirects (e.g., https://sheet.example.com)
	AllowedOrigins []string `toml:"allowed_origins"`
	SecureCookies  bool     `toml:"secure_cookies"`
}

type DatabaseConfig struct {
	URL          string `toml:"url"`            // PostgreSQL connection URL, in-memory storage when empty
	MaxOpenConns int    `toml:"max_open_conns"` // Maximum open connections (default 25)
	MaxIdleConns int    `toml:"max_idle_conns"` // Maximum idle connections (default 5)
}

type RedisConfig struct {
	URL string `toml:"url"` // redis://host:6379/0, in-memory codes when empty
}

type GoogleConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	RedirectURL  string `toml:"redirect_url"` // defaults to {BaseURL}/api/v1/auth/google/callback
}

// Enabled reports whether Google sign-in is configured.
func (c *GoogleConfig) Enabled() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

type RemoveBGConfig struct {
	URL            string   `toml:"url"`
	APIKeys        []string `toml:"api_keys"`        // tried in order, rotated on quota/auth failures
	TimeoutSeconds int      `toml:"timeout_seconds"` // defaults to 60
}

type RenderConfig struct {
	PrintDPI    float64 `toml:"print_dpi"`    // defaults to 300
	PreviewDPI  float64 `toml:"preview_dpi"`  // defaults to 150
	JPEGQuality int     `toml:"jpeg_quality"` // defaults to 92
	CutGuides   bool    `toml:"cut_guides"`
}

type MailConfig struct {
	From string `toml:"from"`
}

type LogConfig struct {
	Level string `toml:"level"` // debug, info, warn, error
}

type SizesConfig struct {
	Sizes []PhotoSize `yaml:"sizes"`
}

// PhotoSize is one entry of the standard size catalogue.
type PhotoSize struct {
	ID     string  `yaml:"id" json:"id"`
	Name   string  `yaml:"name" json:"name"`
	Width  float64 `yaml:"width" json:"width"`
	Height float64 `yaml:"height" json:"height"`
}

const defaultRemoveBGURL = "https://api.remove.bg/v1.0/removebg"

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envFloat is envInt for positive floats.
func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 {
		return f
	}
	return defaultVal
}

func envBool(key string) bool {
	b, _ := strconv.ParseBool(os.Getenv(key))
	return b
}

func envString(key, defaultVal string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return defaultVal
}

// envList splits a comma-separated variable, dropping empty items.
func envList(key string) []string {
	var out []string
	for item := range strings.SplitSeq(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func Load() *Config {
	var sizes SizesConfig
	if err := yaml.Unmarshal(sizesYAML, &sizes); err != nil {
		// This is an embedded file so this error should never happen in practice
		panic("failed to unmarshal embedded sizes.yaml: " + err.Error())
	}

	return &Config{
		Web: WebConfig{
			Host:           envString("WEB_HOST", "0.0.0.0"),
			Port:           envInt("WEB_PORT", 8080),
			SessionSecret:  os.Getenv("WEB_SESSION_SECRET"),
			BaseURL:        envString("WEB_BASE_URL", "http://localhost:8080"),
			AllowedOrigins: envList("WEB_ALLOWED_ORIGINS"),
			SecureCookies:  envBool("WEB_SECURE_COOKIES"),
		},
		Database: DatabaseConfig{
			URL:          os.Getenv("DATABASE_URL"),
			MaxOpenConns: envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns: envInt("DATABASE_MAX_IDLE_CONNS", 5),
		},
		Redis: RedisConfig{
			URL: os.Getenv("REDIS_URL"),
		},
		Google: GoogleConfig{
			ClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
			ClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
			RedirectURL:  os.Getenv("GOOGLE_REDIRECT_URL"),
		},
		RemoveBG: RemoveBGConfig{
			URL:            envString("REMOVE_BG_URL", defaultRemoveBGURL),
			APIKeys:        envList("REMOVE_BG_API_KEYS"),
			TimeoutSeconds: envInt("REMOVE_BG_TIMEOUT_SECONDS", 60),
		},
		Render: RenderConfig{
			PrintDPI:    envFloat("RENDER_PRINT_DPI", 300),
			PreviewDPI:  envFloat("RENDER_PREVIEW_DPI", 150),
			JPEGQuality: envInt("RENDER_JPEG_QUALITY", 92),
			CutGuides:   envBool("RENDER_CUT_GUIDES"),
		},
		Mail: MailConfig{
			From: envString("MAIL_FROM", "no-reply@photo-sheet.local"),
		},
		Log: LogConfig{
			Level: envString("LOG_LEVEL", "info"),
		},
		Sizes: sizes,
	}
}

// LoadFile loads the environment configuration and then applies the TOML file
// at path on top of it. Keys missing from the file keep their environment
// value. An empty path is the same as Load.
func LoadFile(path string) (*Config, error) {
	cfg := Load()
	if path == "" {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}
	return cfg, nil
}

// GoogleRedirectURL returns the OAuth callback URL, derived from the base URL
// when not set explicitly.
func (c *Config) GoogleRedirectURL() string {
	if c.Google.RedirectURL != "" {
		return c.Google.RedirectURL
	}
	return strings.TrimRight(c.Web.BaseURL, "/") + "/api/v1/auth/google/callback"
}

// FindSize returns the catalogue entry with the given id.
func (c *Config) FindSize(id string) (PhotoSize, bool) {
	for _, s := range c.Sizes.Sizes {
		if s.ID == id {
			return s, true
		}
	}
	return PhotoSize{}, false
}
