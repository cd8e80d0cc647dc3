package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Predictor backends.
const (
	PredictorServer = "server"
	PredictorLlama  = "llama"
)

// Config holds runtime parameters for the daemon.
// Zero values mean "unspecified" and are replaced by Default values in main.
type Config struct {
	Addr                    string   `json:"addr" yaml:"addr" toml:"addr"`
	InstallationRoot        string   `json:"installation_root" yaml:"installation_root" toml:"installation_root"`
	ConfigFileName          string   `json:"config_file_name" yaml:"config_file_name" toml:"config_file_name"`
	ServiceName             string   `json:"service_name" yaml:"service_name" toml:"service_name"`
	Predictor               string   `json:"predictor" yaml:"predictor" toml:"predictor"`
	PredictorURL            string   `json:"predictor_url" yaml:"predictor_url" toml:"predictor_url"`
	PredictorAPIKey         string   `json:"predictor_api_key" yaml:"predictor_api_key" toml:"predictor_api_key"`
	PredictorTimeoutSeconds int      `json:"predictor_timeout_seconds" yaml:"predictor_timeout_seconds" toml:"predictor_timeout_seconds"`
	SignatureName           string   `json:"signature_name" yaml:"signature_name" toml:"signature_name"`
	LlamaCtx                int      `json:"llama_ctx" yaml:"llama_ctx" toml:"llama_ctx"`
	LlamaThreads            int      `json:"llama_threads" yaml:"llama_threads" toml:"llama_threads"`
	MaxBodyBytes            int64    `json:"max_body_bytes" yaml:"max_body_bytes" toml:"max_body_bytes"`
	InferTimeoutSeconds     int64    `json:"infer_timeout_seconds" yaml:"infer_timeout_seconds" toml:"infer_timeout_seconds"`
	LogLevel                string   `json:"log_level" yaml:"log_level" toml:"log_level"`
	LogFormat               string   `json:"log_format" yaml:"log_format" toml:"log_format"`
	RequestLogLevel         string   `json:"request_log_level" yaml:"request_log_level" toml:"request_log_level"`
	CORSEnabled             bool     `json:"cors_enabled" yaml:"cors_enabled" toml:"cors_enabled"`
	CORSAllowedOrigins      []string `json:"cors_allowed_origins" yaml:"cors_allowed_origins" toml:"cors_allowed_origins"`
	CORSAllowedMethods      []string `json:"cors_allowed_methods" yaml:"cors_allowed_methods" toml:"cors_allowed_methods"`
	CORSAllowedHeaders      []string `json:"cors_allowed_headers" yaml:"cors_allowed_headers" toml:"cors_allowed_headers"`
}

// Default returns the settings used when nothing else is specified.
func Default() Config {
	return Config{
		Addr:            ":8080",
		ConfigFileName:  "racket.yaml",
		ServiceName:     "racket-server",
		Predictor:       PredictorServer,
		PredictorURL:    "http://localhost:8501",
		LlamaCtx:        512,
		LlamaThreads:    4,
		MaxBodyBytes:    1 << 20,
		LogLevel:        "info",
		LogFormat:       "console",
		RequestLogLevel: "info",
	}
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}

// Merge overlays the non-zero fields of o onto c.
func (c *Config) Merge(o Config) {
	if o.Addr != "" {
		c.Addr = o.Addr
	}
	if o.InstallationRoot != "" {
		c.InstallationRoot = o.InstallationRoot
	}
	if o.ConfigFileName != "" {
		c.ConfigFileName = o.ConfigFileName
	}
	if o.ServiceName != "" {
		c.ServiceName = o.ServiceName
	}
	if o.Predictor != "" {
		c.Predictor = o.Predictor
	}
	if o.PredictorURL != "" {
		c.PredictorURL = o.PredictorURL
	}
	if o.PredictorAPIKey != "" {
		c.PredictorAPIKey = o.PredictorAPIKey
	}
	if o.PredictorTimeoutSeconds != 0 {
		c.PredictorTimeoutSeconds = o.PredictorTimeoutSeconds
	}
	if o.SignatureName != "" {
		c.SignatureName = o.SignatureName
	}
	if o.LlamaCtx != 0 {
		c.LlamaCtx = o.LlamaCtx
	}
	if o.LlamaThreads != 0 {
		c.LlamaThreads = o.LlamaThreads
	}
	if o.MaxBodyBytes != 0 {
		c.MaxBodyBytes = o.MaxBodyBytes
	}
	if o.InferTimeoutSeconds != 0 {
		c.InferTimeoutSeconds = o.InferTimeoutSeconds
	}
	if o.LogLevel != "" {
		c.LogLevel = o.LogLevel
	}
	if o.LogFormat != "" {
		c.LogFormat = o.LogFormat
	}
	if o.RequestLogLevel != "" {
		c.RequestLogLevel = o.RequestLogLevel
	}
	if o.CORSEnabled {
		c.CORSEnabled = true
	}
	if len(o.CORSAllowedOrigins) > 0 {
		c.CORSAllowedOrigins = append([]string(nil), o.CORSAllowedOrigins...)
	}
	if len(o.CORSAllowedMethods) > 0 {
		c.CORSAllowedMethods = append([]string(nil), o.CORSAllowedMethods...)
	}
	if len(o.CORSAllowedHeaders) > 0 {
		c.CORSAllowedHeaders = append([]string(nil), o.CORSAllowedHeaders...)
	}
}

// ApplyEnv overlays RACKET_* environment variables onto c.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	str("RACKET_ADDR", &c.Addr)
	str("RACKET_ROOT", &c.InstallationRoot)
	str("RACKET_CONFIG_FILE_NAME", &c.ConfigFileName)
	str("RACKET_SERVICE_NAME", &c.ServiceName)
	str("RACKET_PREDICTOR", &c.Predictor)
	str("RACKET_PREDICTOR_URL", &c.PredictorURL)
	str("RACKET_PREDICTOR_API_KEY", &c.PredictorAPIKey)
	str("RACKET_SIGNATURE_NAME", &c.SignatureName)
	str("RACKET_LOG_LEVEL", &c.LogLevel)
	str("RACKET_LOG_FORMAT", &c.LogFormat)
	str("RACKET_LOG_REQUESTS", &c.RequestLogLevel)
	num := func(key string, set func(int64)) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		set(n)
		return nil
	}
	for _, e := range []struct {
		key string
		set func(int64)
	}{
		{"RACKET_PREDICTOR_TIMEOUT_SECONDS", func(n int64) { c.PredictorTimeoutSeconds = int(n) }},
		{"RACKET_INFER_TIMEOUT_SECONDS", func(n int64) { c.InferTimeoutSeconds = n }},
		{"RACKET_MAX_BODY_BYTES", func(n int64) { c.MaxBodyBytes = n }},
		{"RACKET_LLAMA_CTX", func(n int64) { c.LlamaCtx = int(n) }},
		{"RACKET_LLAMA_THREADS", func(n int64) { c.LlamaThreads = int(n) }},
	} {
		if err := num(e.key, e.set); err != nil {
			return err
		}
	}
	if v, ok := lookup("RACKET_CORS_ENABLED"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("RACKET_CORS_ENABLED: %w", err)
		}
		c.CORSEnabled = b
	}
	list := func(key string, dst *[]string) {
		if v, ok := lookup(key); ok {
			if parts := splitCSV(v); len(parts) > 0 {
				*dst = parts
			}
		}
	}
	list("RACKET_CORS_ALLOWED_ORIGINS", &c.CORSAllowedOrigins)
	list("RACKET_CORS_ALLOWED_METHODS", &c.CORSAllowedMethods)
	list("RACKET_CORS_ALLOWED_HEADERS", &c.CORSAllowedHeaders)
	return nil
}

// splitCSV splits a comma-separated list, trimming blanks and dropping empties.
func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate reports settings the daemon cannot run with.
func (c Config) Validate() error {
	switch c.Predictor {
	case PredictorServer:
		if strings.TrimSpace(c.PredictorURL) == "" {
			return fmt.Errorf("predictor %q requires predictor_url", c.Predictor)
		}
	case PredictorLlama:
	default:
		return fmt.Errorf("unknown predictor %q (want %s or %s)", c.Predictor, PredictorServer, PredictorLlama)
	}
	if c.ConfigFileName == "" {
		return fmt.Errorf("config_file_name must not be empty")
	}
	if c.PredictorTimeoutSeconds < 0 || c.InferTimeoutSeconds < 0 {
		return fmt.Errorf("timeouts must not be negative")
	}
	return nil
}
