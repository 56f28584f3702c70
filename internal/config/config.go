package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/gcstr/cardtrack/internal/apperr"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-yaml"
)

// Defaults applied after decoding.
const (
	DefaultTimeout        = 10 * time.Second
	DefaultStatusInterval = 5 * time.Second
	DefaultSubmitDelay    = 2 * time.Second
	DefaultTokenEnv       = "CARDTRACK_TOKEN"
)

// Config is the root structure parsed from cardtrack.yaml.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Student StudentConfig `yaml:"student"`
	Polling PollingConfig `yaml:"polling"`
	Auth    AuthConfig    `yaml:"auth"`
	// Path is the file the config was read from; empty when built from defaults.
	Path    string `yaml:"-"`
	BaseDir string `yaml:"-"`
}

type ServerConfig struct {
	BaseURL string        `yaml:"base_url" validate:"omitempty,url"`
	Timeout time.Duration `yaml:"timeout" validate:"omitempty,min=100ms"`
}

type StudentConfig struct {
	RegisterNumber string `yaml:"register_number"`
}

type PollingConfig struct {
	StatusInterval time.Duration `yaml:"status_interval" validate:"omitempty,min=1s"`
	SubmitDelay    time.Duration `yaml:"submit_delay" validate:"omitempty,max=1m"`
}

// AuthConfig says where the API bearer token comes from. The sops source wins
// when both are configured.
type AuthConfig struct {
	TokenEnv string      `yaml:"token_env"`
	Sops     *SopsSource `yaml:"sops"`
}

// SopsSource points at a sops-encrypted dotenv file holding the token.
type SopsSource struct {
	Path       string `yaml:"path" validate:"required"`
	Key        string `yaml:"key"`
	AgeKeyFile string `yaml:"age_key_file"`
}

var (
	registerRegex  = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)
	envVarPattern  = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)
	validate       = validator.New(validator.WithRequiredStructEnabled())
	candidateNames = []string{"cardtrack.yaml", "cardtrack.yml"}
)

// Default returns a config with every default applied and no server set.
func Default() Config {
	var c Config
	c.applyDefaults()
	return c
}

// Load reads configuration from path (a file or a directory). When path is
// empty it looks for cardtrack.yaml or cardtrack.yml in the working directory.
// Missing ${VAR} references are returned so the caller can warn about them.
func Load(path string) (Config, []string, error) {
	guessed, err := resolveConfigPath(path)
	if err != nil {
		return Config{}, nil, err
	}
	abs, err := filepath.Abs(guessed)
	if err != nil {
		return Config{}, nil, apperr.Wrap("config.Load", apperr.InvalidInput, err, "abs path")
	}
	b, err := os.ReadFile(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Config{}, nil, apperr.Wrap("config.Load", apperr.NotFound, err, "config file %s not found", guessed)
		}
		return Config{}, nil, apperr.Wrap("config.Load", apperr.InvalidInput, err, "read config")
	}

	interpolated, missing := interpolateEnvPlaceholders(string(b))

	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader([]byte(interpolated)), yaml.Validator(validate), yaml.Strict())
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, missing, apperr.New("config.Load", apperr.InvalidInput, "parse yaml: %s", yaml.FormatError(err, false, true))
	}
	cfg.Path = abs
	cfg.BaseDir = filepath.Dir(abs)
	cfg.applyDefaults()
	return cfg, missing, nil
}

func (c *Config) applyDefaults() {
	c.Server.BaseURL = strings.TrimRight(strings.TrimSpace(c.Server.BaseURL), "/")
	if c.Server.Timeout == 0 {
		c.Server.Timeout = DefaultTimeout
	}
	if c.Polling.StatusInterval == 0 {
		c.Polling.StatusInterval = DefaultStatusInterval
	}
	if c.Polling.SubmitDelay == 0 {
		c.Polling.SubmitDelay = DefaultSubmitDelay
	}
	c.Student.RegisterNumber = strings.TrimSpace(c.Student.RegisterNumber)
	if strings.TrimSpace(c.Auth.TokenEnv) == "" {
		c.Auth.TokenEnv = DefaultTokenEnv
	}
	if c.Auth.Sops != nil {
		if c.Auth.Sops.Key == "" {
			c.Auth.Sops.Key = c.Auth.TokenEnv
		}
		if c.Auth.Sops.Path != "" && !filepath.IsAbs(c.Auth.Sops.Path) && c.BaseDir != "" {
			c.Auth.Sops.Path = filepath.Join(c.BaseDir, c.Auth.Sops.Path)
		}
	}
}

// Validate checks the invariants that need the fully merged config (file,
// defaults and command-line overrides).
func (c Config) Validate() error {
	if c.Server.BaseURL == "" {
		return apperr.New("config.Validate", apperr.InvalidInput, "server.base_url is required (set it in cardtrack.yaml or pass --server)")
	}
	if err := validate.Var(c.Server.BaseURL, "url"); err != nil {
		return apperr.New("config.Validate", apperr.InvalidInput, "server.base_url %q is not a valid URL", c.Server.BaseURL)
	}
	if c.Student.RegisterNumber != "" && !ValidRegisterNumber(c.Student.RegisterNumber) {
		return apperr.New("config.Validate", apperr.InvalidInput, "invalid register number %q: must match %s", c.Student.RegisterNumber, registerRegex.String())
	}
	if c.Polling.StatusInterval < time.Second {
		return apperr.New("config.Validate", apperr.InvalidInput, "polling.status_interval must be at least 1s, got %s", c.Polling.StatusInterval)
	}
	return nil
}

// ValidRegisterNumber reports whether s can be used as a path segment identity.
func ValidRegisterNumber(s string) bool {
	return registerRegex.MatchString(s)
}

func resolveConfigPath(path string) (string, error) {
	if path != "" {
		info, err := os.Stat(path)
		if err != nil || !info.IsDir() {
			// Treat as a file path and let the read report what is wrong.
			return path, nil
		}
		for _, name := range candidateNames {
			candidate := filepath.Join(path, name)
			_, statErr := os.Stat(candidate)
			if statErr == nil {
				return candidate, nil
			}
			if !errors.Is(statErr, fs.ErrNotExist) {
				return "", apperr.Wrap("config.Load", apperr.InvalidInput, statErr, "stat %s", candidate)
			}
		}
		return "", apperr.New("config.Load", apperr.NotFound, "no config file found in %s (looked for %s)", path, strings.Join(candidateNames, " or "))
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getwd: %w", err)
	}
	for _, name := range candidateNames {
		candidate := filepath.Join(cwd, name)
		_, statErr := os.Stat(candidate)
		if statErr == nil {
			return candidate, nil
		}
		if errors.Is(statErr, fs.ErrNotExist) {
			continue
		}
		return "", apperr.Wrap("config.Load", apperr.InvalidInput, statErr, "stat %s", candidate)
	}
	return "", apperr.New("config.Load", apperr.NotFound, "no config file found (looked for %s)", strings.Join(candidateNames, " or "))
}

// interpolateEnvPlaceholders replaces ${VAR} occurrences with os.Getenv("VAR").
// It returns the interpolated string and the sorted names that were missing.
func interpolateEnvPlaceholders(in string) (string, []string) {
	missingSet := map[string]struct{}{}
	out := envVarPattern.ReplaceAllStringFunc(in, func(m string) string {
		sub := envVarPattern.FindStringSubmatch(m)
		if len(sub) != 2 {
			return m
		}
		val, ok := os.LookupEnv(sub[1])
		if !ok {
			missingSet[sub[1]] = struct{}{}
			return ""
		}
		return val
	})
	if len(missingSet) == 0 {
		return out, nil
	}
	miss := make([]string, 0, len(missingSet))
	for n := range missingSet {
		miss = append(miss, n)
	}
	sort.Strings(miss)
	return out, miss
}
