// Package config assembles the run configuration of patchinv.
//
// Values are layered, later sources winning:
//
//  1. built-in defaults (pkg/defaults)
//  2. an optional YAML file (--config)
//  3. environment variables
//  4. command-line flags (applied by pkg/cli)
//
// Example file:
//
//	instance: acme
//	osFilter: Linux Red Hat
//	limit: 15000
//	groupField: u_patching_group
//	domain: corp.example.com
//	ignoreHosts: [drhost01, backup01]
//	ignoreGroups: [unix_team, do_not_patch]
//	workers: 32
//	lookupTimeout: 5s
package config

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/agnivade/levenshtein"
	"github.com/joho/godotenv"
	"golang.org/x/time/rate"
	"gopkg.in/yaml.v3"

	"github.com/NVIDIA/patch-inventory/pkg/cmdb"
	"github.com/NVIDIA/patch-inventory/pkg/defaults"
	cmderrors "github.com/NVIDIA/patch-inventory/pkg/errors"
	"github.com/NVIDIA/patch-inventory/pkg/inventory"
)

// Environment variables read by FromEnv.
const (
	EnvInstance          = "SNOW_INSTANCE"
	EnvBaseURL           = "SNOW_BASE_URL"
	EnvOSFilter          = "PATCHINV_OS_FILTER"
	EnvLimit             = "PATCHINV_LIMIT"
	EnvGroupField        = "PATCHINV_GROUP_FIELD"
	EnvDomain            = "PATCHINV_DOMAIN"
	EnvCredentialsSecret = "PATCHINV_CREDENTIALS_SECRET"
)

// Config holds run configuration.
type Config struct {
	// CMDB endpoint: BaseURL wins over Instance.
	Instance string `yaml:"instance"`
	BaseURL  string `yaml:"baseURL"`
	Table    string `yaml:"table"`

	// Query
	OSFilter   string `yaml:"osFilter"`
	Limit      int    `yaml:"limit"`
	GroupField string `yaml:"groupField"`

	// Filtering
	IgnoreHosts  []string `yaml:"ignoreHosts"`
	IgnoreGroups []string `yaml:"ignoreGroups"`

	// Resolution
	Domain        string        `yaml:"domain"`
	Workers       int           `yaml:"workers"`
	LookupTimeout time.Duration `yaml:"lookupTimeout"`
	LookupRate    float64       `yaml:"lookupRate"` // lookups per second, 0 disables pacing
	LookupBurst   int           `yaml:"lookupBurst"`

	// Transport
	RequestTimeout time.Duration `yaml:"requestTimeout"`

	// CredentialsSecret is an optional namespace/name of a Kubernetes Secret.
	CredentialsSecret string `yaml:"credentialsSecret"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Table:          defaults.Table,
		OSFilter:       defaults.OSFilter,
		Limit:          defaults.MaxHosts,
		GroupField:     defaults.GroupField,
		IgnoreHosts:    defaults.IgnoreHosts(),
		IgnoreGroups:   defaults.IgnoreGroups(),
		Domain:         defaults.Domain,
		Workers:        defaults.LookupConcurrency,
		LookupTimeout:  defaults.LookupTimeout,
		LookupRate:     defaults.LookupRateLimit,
		LookupBurst:    defaults.LookupRateBurst,
		RequestTimeout: defaults.CMDBRequestTimeout,
	}
}

// Load returns defaults overlaid with the YAML file at path (if non-empty)
// and then the environment.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, cmderrors.Wrap(cmderrors.ErrCodeInvalidRequest,
				fmt.Sprintf("failed to open config file %q", path), err)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil {
				slog.Warn("failed to close config file", "error", cerr)
			}
		}()

		if err := cfg.decode(f); err != nil {
			return nil, cmderrors.Wrap(cmderrors.ErrCodeInvalidRequest,
				fmt.Sprintf("invalid config file %q", path), err)
		}
		slog.Debug("loaded config file", slog.String("path", path))
	}

	if err := cfg.FromEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadEnvFile loads KEY=VALUE pairs from a dotenv file into the process
// environment. Variables already set are left untouched.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return cmderrors.Wrap(cmderrors.ErrCodeInvalidRequest,
			fmt.Sprintf("failed to load env file %q", path), err)
	}
	slog.Debug("loaded env file", slog.String("path", path))
	return nil
}

var unknownFieldRe = regexp.MustCompile(`field (\S+) not found in type`)

// decode overlays YAML from r. Unknown keys are rejected with a suggestion.
func (c *Config) decode(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil {
		if stderrors.Is(err, io.EOF) {
			return nil
		}
		if m := unknownFieldRe.FindStringSubmatch(err.Error()); m != nil {
			if s := suggest(m[1], knownKeys()); s != "" {
				return fmt.Errorf("%w (did you mean %q?)", err, s)
			}
		}
		return err
	}
	return nil
}

// FromEnv applies environment overrides.
func (c *Config) FromEnv() error {
	if v := os.Getenv(EnvInstance); v != "" {
		c.Instance = v
	}
	if v := os.Getenv(EnvBaseURL); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv(EnvOSFilter); v != "" {
		c.OSFilter = v
	}
	if v := os.Getenv(EnvLimit); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cmderrors.Wrap(cmderrors.ErrCodeInvalidRequest,
				fmt.Sprintf("invalid %s %q", EnvLimit, v), err)
		}
		c.Limit = n
	}
	if v := os.Getenv(EnvGroupField); v != "" {
		c.GroupField = v
	}
	if v := os.Getenv(EnvDomain); v != "" {
		c.Domain = v
	}
	if v := os.Getenv(EnvCredentialsSecret); v != "" {
		c.CredentialsSecret = v
	}
	return nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	var problem string
	switch {
	case c.Limit < 1:
		problem = fmt.Sprintf("limit must be at least 1, got %d", c.Limit)
	case strings.TrimSpace(c.OSFilter) == "":
		problem = "osFilter must not be empty"
	case strings.TrimSpace(c.GroupField) == "":
		problem = "groupField must not be empty"
	case c.Workers < 1:
		problem = fmt.Sprintf("workers must be at least 1, got %d", c.Workers)
	case c.LookupTimeout <= 0:
		problem = fmt.Sprintf("lookupTimeout must be positive, got %s", c.LookupTimeout)
	case c.RequestTimeout <= 0:
		problem = fmt.Sprintf("requestTimeout must be positive, got %s", c.RequestTimeout)
	case c.LookupRate < 0:
		problem = fmt.Sprintf("lookupRate must not be negative, got %v", c.LookupRate)
	case c.LookupRate > 0 && c.LookupBurst < 1:
		problem = fmt.Sprintf("lookupBurst must be at least 1 when lookupRate is set, got %d", c.LookupBurst)
	}
	if problem != "" {
		return cmderrors.New(cmderrors.ErrCodeInvalidRequest, problem)
	}
	return nil
}

// CMDBURL returns the table API base URL.
func (c *Config) CMDBURL() (string, error) {
	switch {
	case c.BaseURL != "":
		return strings.TrimRight(c.BaseURL, "/"), nil
	case c.Instance != "":
		return cmdb.InstanceURL(c.Instance), nil
	default:
		return "", cmderrors.New(cmderrors.ErrCodeInvalidRequest,
			"cmdb endpoint not configured: set instance or baseURL (or "+EnvInstance+")")
	}
}

// FilterConfig returns the denylists for inventory.NewFilter.
func (c *Config) FilterConfig() inventory.FilterConfig {
	return inventory.FilterConfig{
		IgnoreHosts:  append([]string(nil), c.IgnoreHosts...),
		IgnoreGroups: append([]string(nil), c.IgnoreGroups...),
	}
}

// LookupLimiter returns the lookup pacing limiter, or nil when pacing is off.
func (c *Config) LookupLimiter() *rate.Limiter {
	if c.LookupRate <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(c.LookupRate), c.LookupBurst)
}

// knownKeys lists the YAML keys of Config.
func knownKeys() []string {
	t := reflect.TypeOf(Config{})
	keys := make([]string, 0, t.NumField())
	for i := range t.NumField() {
		if tag, _, _ := strings.Cut(t.Field(i).Tag.Get("yaml"), ","); tag != "" && tag != "-" {
			keys = append(keys, tag)
		}
	}
	return keys
}

// suggest returns the candidate closest to key, if it is close enough to be
// a plausible typo.
func suggest(key string, candidates []string) string {
	best, bestDist := "", -1
	for _, c := range candidates {
		d := levenshtein.ComputeDistance(strings.ToLower(key), strings.ToLower(c))
		if bestDist == -1 || d < bestDist {
			best, bestDist = c, d
		}
	}
	if bestDist < 0 || bestDist > len(key)/2 {
		return ""
	}
	return best
}
