// Package config loads and serves the backend's process-wide configuration:
// config.json next to the executable, merged with .env and CLI flags, with
// a single-writer lock guarding live updates from PUT /api/config.
package config

import (
	"encoding/json"
	"flag"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/joho/godotenv"
)

// LLMConfig is the subset of Config the LLM Client and chat-suggest path
// depend on.
type LLMConfig struct {
	APIKey      string  `json:"api_key"`
	BaseURL     string  `json:"base_url"`
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
}

// Summary is the GET /api/config response shape: api_key is replaced by
// api_key_set.
type Summary struct {
	APIKeySet   bool    `json:"api_key_set"`
	BaseURL     string  `json:"base_url"`
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
}

// Store holds the process-wide configuration and serializes updates behind
// a single writer, per the spec's concurrency model (§5).
type Store struct {
	mu   sync.RWMutex
	path string
	cfg  LLMConfig
}

func defaultConfig() LLMConfig {
	return LLMConfig{
		BaseURL:     "https://api.openai.com",
		Model:       "gpt-4o-mini",
		Temperature: 0.7,
		MaxTokens:   4096,
	}
}

// NewStore builds a Store directly from an in-memory configuration, bypassing
// file/flag/env loading. Used by tests and by callers that already have a
// resolved configuration.
func NewStore(path string, cfg LLMConfig) *Store {
	return &Store{path: path, cfg: cfg}
}

// Load reads config.json from path over the built-in defaults (a missing or
// unreadable file leaves the defaults in place; Load does not create it),
// merges .env via godotenv, and applies CLI flag / environment overrides for
// the HTTP listen port. It returns the Store plus the resolved listen port.
func Load(path string) (*Store, string, error) {
	_ = godotenv.Load()

	port := flag.String("port", ":8080", "server port")
	if !flag.Parsed() {
		flag.Parse()
	}
	if envPort := strings.TrimSpace(os.Getenv("PORT")); envPort != "" {
		if strings.HasPrefix(envPort, ":") {
			*port = envPort
		} else {
			*port = ":" + envPort
		}
	}

	cfg := defaultConfig()
	if b, err := os.ReadFile(path); err == nil {
		_ = json.Unmarshal(b, &cfg)
	}
	if key := strings.TrimSpace(os.Getenv("LLM_API_KEY")); key != "" {
		cfg.APIKey = key
	}
	if model := strings.TrimSpace(os.Getenv("LLM_MODEL")); model != "" {
		cfg.Model = model
	}
	if base := strings.TrimSpace(os.Getenv("LLM_BASE_URL")); base != "" {
		cfg.BaseURL = base
	}

	s := &Store{path: path, cfg: cfg}
	return s, *port, nil
}

// Get returns a value copy of the current configuration.
func (s *Store) Get() LLMConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// Summary returns the redacted view served by GET /api/config.
func (s *Store) Summary() Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Summary{
		APIKeySet:   strings.TrimSpace(s.cfg.APIKey) != "",
		BaseURL:     s.cfg.BaseURL,
		Model:       s.cfg.Model,
		Temperature: s.cfg.Temperature,
		MaxTokens:   s.cfg.MaxTokens,
	}
}

// Update applies a partial patch (fields present in raw override the
// current configuration) and persists the result to config.json.
func (s *Store) Update(raw map[string]json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.cfg
	if v, ok := raw["api_key"]; ok {
		_ = json.Unmarshal(v, &next.APIKey)
	}
	if v, ok := raw["base_url"]; ok {
		_ = json.Unmarshal(v, &next.BaseURL)
	}
	if v, ok := raw["model"]; ok {
		_ = json.Unmarshal(v, &next.Model)
	}
	if v, ok := raw["temperature"]; ok {
		_ = json.Unmarshal(v, &next.Temperature)
	}
	if v, ok := raw["max_tokens"]; ok {
		_ = json.Unmarshal(v, &next.MaxTokens)
	}

	b, err := json.MarshalIndent(next, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path, b, 0o644); err != nil {
		return err
	}
	s.cfg = next
	return nil
}

// parseBoolEnv mirrors the teacher's firstNonEmpty/ParseBool idiom for
// optional boolean env overrides used by the artifact mirror.
func parseBoolEnv(name string, def bool) bool {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// MirrorConfig is the artifact mirror's S3-compatible endpoint configuration.
// Enabled only when ARTIFACT_S3_ENDPOINT (or ARTIFACT_MINIO_ENDPOINT for
// local runs) is set.
type MirrorConfig struct {
	Enabled   bool
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// LoadMirrorConfig reads the artifact mirror configuration from the
// environment.
func LoadMirrorConfig() MirrorConfig {
	endpoint := strings.TrimSpace(os.Getenv("ARTIFACT_S3_ENDPOINT"))
	if endpoint == "" {
		endpoint = strings.TrimSpace(os.Getenv("ARTIFACT_MINIO_ENDPOINT"))
	}
	return MirrorConfig{
		Enabled:   endpoint != "",
		Endpoint:  endpoint,
		Region:    firstNonEmpty(os.Getenv("ARTIFACT_S3_REGION"), "us-east-1"),
		AccessKey: firstNonEmpty(os.Getenv("ARTIFACT_S3_ACCESS_KEY"), os.Getenv("MINIO_ROOT_USER")),
		SecretKey: firstNonEmpty(os.Getenv("ARTIFACT_S3_SECRET_KEY"), os.Getenv("MINIO_ROOT_PASSWORD")),
		Bucket:    firstNonEmpty(os.Getenv("ARTIFACT_S3_BUCKET"), "codedocs-artifacts"),
		UseSSL:    parseBoolEnv("ARTIFACT_S3_USE_SSL", true),
	}
}

// HistoryDSN returns the Postgres DSN for the run-history recorder, or ""
// to select the file-backed fallback.
func HistoryDSN() string {
	return strings.TrimSpace(os.Getenv("HISTORY_PG_DSN"))
}
