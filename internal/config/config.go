package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const appName = "repolens"

// Config represents the repolens configuration.
type Config struct {
	Provider string        `yaml:"provider"`
	Model    string        `yaml:"model"`
	Format   string        `yaml:"format"`
	Server   ServerConfig  `yaml:"server"`
	GitHub   GitHubConfig  `yaml:"github"`
	LLM      LLMConfig     `yaml:"llm"`
	Review   ReviewConfig  `yaml:"review"`
	Privacy  PrivacyConfig `yaml:"privacy"`
	Log      LogConfig     `yaml:"log"`
}

// ServerConfig controls the HTTP API.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// GitHubConfig controls how repositories are read.
type GitHubConfig struct {
	Token                string `yaml:"token,omitempty"` // inline or ${ENV_VAR}
	APIURL               string `yaml:"apiURL,omitempty"`
	GraphQLURL           string `yaml:"graphqlURL,omitempty"`
	Branch               string `yaml:"branch"`
	ResolveDefaultBranch bool   `yaml:"resolveDefaultBranch"`
	WaitOnRateLimit      bool   `yaml:"waitOnRateLimit"`
}

// LLMConfig tunes provider requests.
type LLMConfig struct {
	APIKey         string `yaml:"apiKey,omitempty"` // inline or ${ENV_VAR}
	BaseURL        string `yaml:"baseURL,omitempty"`
	MaxTokens      int    `yaml:"maxTokens,omitempty"`
	MaxRetries     int    `yaml:"maxRetries"`
	TimeoutSeconds int    `yaml:"timeoutSeconds"`
}

// ReviewConfig controls the review pipeline.
type ReviewConfig struct {
	Concurrency  int    `yaml:"concurrency"`
	MaxFileBytes int    `yaml:"maxFileBytes"`
	RulesFile    string `yaml:"rulesFile,omitempty"`
}

// PrivacyConfig controls privacy/redaction behavior.
type PrivacyConfig struct {
	RedactSecrets bool     `yaml:"redactSecrets"`
	RedactPaths   []string `yaml:"redactPaths,omitempty"`
}

// LogConfig controls log output.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text or json
}

// Default returns a Config with all defaults applied.
func Default() Config {
	return Config{
		Provider: "openai",
		Model:    "gpt-4o-mini",
		Format:   "text",
		Server:   ServerConfig{Addr: ":8080"},
		GitHub:   GitHubConfig{Branch: "main"},
		LLM: LLMConfig{
			MaxRetries:     0,
			TimeoutSeconds: 120,
		},
		Review: ReviewConfig{
			Concurrency:  4,
			MaxFileBytes: 100000,
		},
		Privacy: PrivacyConfig{
			RedactSecrets: true,
			RedactPaths:   []string{"**/.env", "**/*secrets*"},
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

// ConfigDir returns the platform-appropriate config directory for repolens.
func ConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", appName), nil
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, appName), nil
		}
		return filepath.Join(home, "AppData", "Roaming", appName), nil
	default:
		return filepath.Join(home, ".config", appName), nil
	}
}

// ConfigPath returns the config file to read and write: config.yaml, or an
// existing config.json when there is no YAML file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, "config.yaml")
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		legacy := filepath.Join(dir, "config.json")
		if _, err := os.Stat(legacy); err == nil {
			return legacy, nil
		}
	}
	return path, nil
}

// LoadFile loads the config file on top of the defaults. A missing file
// yields the defaults.
func LoadFile() (Config, error) {
	cfg := Default()
	path, err := ConfigPath()
	if err != nil {
		return Config{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	// Keys absent from the file keep their default values.
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config file as YAML.
func Save(cfg Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	// The file may hold a token.
	return os.WriteFile(path, data, 0o600)
}

// Load builds the effective config by merging: defaults <- file <- env <- overrides.
// The overrides map comes from CLI flags (only non-zero values should be set).
func Load(overrides map[string]string) (Config, error) {
	cfg, err := LoadFile()
	if err != nil {
		return Config{}, err
	}
	if err := mergeEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := mergeOverrides(&cfg, overrides); err != nil {
		return Config{}, err
	}

	cfg.GitHub.Token = expandEnv(cfg.GitHub.Token)
	cfg.LLM.APIKey = expandEnv(cfg.LLM.APIKey)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func mergeEnv(cfg *Config) error {
	if v := os.Getenv("GITHUB_TOKEN"); v != "" {
		cfg.GitHub.Token = v
	}
	if v := os.Getenv("GITHUB_API_URL"); v != "" {
		cfg.GitHub.APIURL = v
	}
	if v := os.Getenv("REPOLENS_PROVIDER"); v != "" {
		cfg.Provider = v
	}
	if v := os.Getenv("REPOLENS_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("REPOLENS_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("REPOLENS_BRANCH"); v != "" {
		cfg.GitHub.Branch = v
	}
	if v := os.Getenv("REPOLENS_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("REPOLENS_CONCURRENCY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("REPOLENS_CONCURRENCY must be an integer: %w", err)
		}
		cfg.Review.Concurrency = n
	}
	return nil
}

func mergeOverrides(cfg *Config, overrides map[string]string) error {
	for key, value := range overrides {
		if value == "" {
			continue
		}
		if err := SetField(cfg, key, value); err != nil {
			return err
		}
	}
	return nil
}

// Keys lists the keys accepted by SetField.
var Keys = []string{
	"provider", "model", "format", "addr", "branch", "concurrency",
	"maxFileBytes", "rulesFile", "logLevel", "logFormat",
	"resolveDefaultBranch", "redactSecrets",
}

// SetField sets a single config field by key name. Returns error if key is unknown.
func SetField(cfg *Config, key, value string) error {
	switch key {
	case "provider":
		cfg.Provider = value
	case "model":
		cfg.Model = value
	case "format":
		cfg.Format = value
	case "addr":
		cfg.Server.Addr = value
	case "branch":
		cfg.GitHub.Branch = value
	case "concurrency":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("concurrency must be an integer: %w", err)
		}
		cfg.Review.Concurrency = n
	case "maxFileBytes":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("maxFileBytes must be an integer: %w", err)
		}
		cfg.Review.MaxFileBytes = n
	case "rulesFile":
		cfg.Review.RulesFile = value
	case "logLevel":
		cfg.Log.Level = value
	case "logFormat":
		cfg.Log.Format = value
	case "resolveDefaultBranch":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("resolveDefaultBranch must be a boolean: %w", err)
		}
		cfg.GitHub.ResolveDefaultBranch = b
	case "redactSecrets":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("redactSecrets must be a boolean: %w", err)
		}
		cfg.Privacy.RedactSecrets = b
	default:
		return fmt.Errorf("unknown config key: %s (valid keys: %s)", key, strings.Join(Keys, ", "))
	}
	return nil
}

var validFormats = map[string]bool{"text": true, "json": true, "markdown": true, "md": true, "sarif": true}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.Review.Concurrency < 1 {
		return fmt.Errorf("review.concurrency must be at least 1, got %d", c.Review.Concurrency)
	}
	if c.LLM.MaxRetries < 0 {
		return fmt.Errorf("llm.maxRetries must not be negative, got %d", c.LLM.MaxRetries)
	}
	if c.LLM.TimeoutSeconds < 0 {
		return fmt.Errorf("llm.timeoutSeconds must not be negative, got %d", c.LLM.TimeoutSeconds)
	}
	if !validFormats[c.Format] {
		return fmt.Errorf("unsupported output format: %s", c.Format)
	}
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	if strings.TrimSpace(c.GitHub.Branch) == "" && !c.GitHub.ResolveDefaultBranch {
		return errors.New("github.branch must be set unless github.resolveDefaultBranch is true")
	}
	return nil
}

// envVarPattern matches ${VAR_NAME} placeholders.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)}`)

// expandEnv replaces ${VAR} references with their environment values.
func expandEnv(raw string) string {
	if raw == "" {
		return raw
	}
	return envVarPattern.ReplaceAllStringFunc(raw, func(match string) string {
		name := envVarPattern.FindStringSubmatch(match)[1]
		if v := os.Getenv(name); v != "" {
			return v
		}
		logrus.Warnf("Environment variable %q is not set", name)
		return ""
	})
}
