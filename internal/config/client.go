package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	StrategyHandshake = "handshake"
	StrategyPoll      = "poll"
	StrategyPollJSONP = "poll-jsonp"
	StrategyBridge    = "bridge"

	DefaultMaxFileSize     int64 = 500 * 1024 * 1024
	DefaultHandshakeListen       = "127.0.0.1:8765"
)

var DefaultAllowedOrigins = []string{
	"https://script.google.com",
	"https://script.googleusercontent.com",
}

// ClientConfig is the order form's profile. It is what the hosting page
// used to supply: API and bridge endpoints plus upload limits.
type ClientConfig struct {
	APIURL          string   `yaml:"api_url"`
	AppsScriptURL   string   `yaml:"apps_script_url"`
	UploadStrategy  string   `yaml:"upload_strategy"`
	MaxFileSize     int64    `yaml:"max_file_size"`
	AllowedOrigins  []string `yaml:"allowed_origins"`
	HandshakeListen string   `yaml:"handshake_listen"`
}

// LoadClient reads the optional YAML profile at path, then applies the
// environment on top. A missing file is not an error.
func LoadClient(path string) (*ClientConfig, error) {
	cfg := &ClientConfig{}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read client profile: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse client profile %s: %w", path, err)
			}
		}
	}

	cfg.APIURL = getEnv("DELYPLOTT_API_URL", cfg.APIURL)
	cfg.AppsScriptURL = getEnv("APPS_SCRIPT_URL", cfg.AppsScriptURL)
	cfg.UploadStrategy = getEnv("UPLOAD_STRATEGY", cfg.UploadStrategy)
	cfg.HandshakeListen = getEnv("HANDSHAKE_LISTEN", cfg.HandshakeListen)
	if raw := getEnv("MAX_FILE_SIZE", ""); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid configuration: MAX_FILE_SIZE must be an integer: %w", err)
		}
		cfg.MaxFileSize = n
	}
	if raw := getEnv("ALLOWED_ORIGINS", ""); raw != "" {
		cfg.AllowedOrigins = splitList(raw)
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *ClientConfig) applyDefaults() {
	if c.APIURL == "" {
		c.APIURL = "http://localhost:8080"
	}
	if c.UploadStrategy == "" {
		c.UploadStrategy = StrategyPollJSONP
	}
	if c.MaxFileSize <= 0 {
		c.MaxFileSize = DefaultMaxFileSize
	}
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = append([]string(nil), DefaultAllowedOrigins...)
	}
	if c.HandshakeListen == "" {
		c.HandshakeListen = DefaultHandshakeListen
	}
}

// Validate does not look at AppsScriptURL; the bridge endpoint is checked
// when it is parsed, before any network activity.
func (c *ClientConfig) Validate() error {
	switch c.UploadStrategy {
	case StrategyHandshake, StrategyPoll, StrategyPollJSONP, StrategyBridge:
	default:
		return fmt.Errorf("unknown upload strategy %q", c.UploadStrategy)
	}
	if c.APIURL == "" {
		return fmt.Errorf("api url is required")
	}
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
