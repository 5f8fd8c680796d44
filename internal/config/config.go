// Package config loads and validates the application configuration: global
// defaults, credentials, OS profiles, linters, and jump-host specs. Loading
// follows the teacher's pattern (appliance/internal/daemon/config.go): read
// YAML, apply environment overrides, then validate.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/netcfgbu/netcfgbu-go/internal/creds"
)

const (
	// DefaultMaxStartups bounds the number of SSH handshakes admitted at once.
	DefaultMaxStartups = 100
	// DefaultLoginTimeout is the jump-host connect timeout used when a
	// jumphost spec sets none, in seconds.
	DefaultLoginTimeout = 30
	// DefaultGetConfigTimeout bounds a backup capture, in seconds.
	DefaultGetConfigTimeout = 60
	// DefaultProbeTimeout bounds a reachability probe, in seconds.
	DefaultProbeTimeout = 10

	// PromptValidChars is the default character class for prompt detection.
	PromptValidChars = `a-z0-9.\-_@()/:~`
	// PromptMaxChars bounds the length of a detected prompt.
	PromptMaxChars = 65
)

// InventoryFieldNames are the columns the core always understands.
var InventoryFieldNames = []string{"host", "ipaddr", "os_name", "username", "password"}

// Credential is a username/password pair. Password is read from config as
// plain text but immediately wrapped in creds.Secret so it can never be
// logged or serialized in the clear again.
type Credential = creds.Credential

// OSNameSpec holds per-os_name capture behavior. All fields optional except
// where a default applies.
type OSNameSpec struct {
	Credentials   []Credential      `yaml:"credentials,omitempty"`
	PreGetConfig  []string          `yaml:"pre_get_config,omitempty"`
	GetConfig     string            `yaml:"get_config,omitempty"`
	Connection    string            `yaml:"connection,omitempty"`
	Linter        string            `yaml:"linter,omitempty"`
	Timeout       int               `yaml:"timeout,omitempty" validate:"gte=0"`
	SSHConfigs    map[string]string `yaml:"ssh_configs,omitempty"`
	PromptPattern string            `yaml:"prompt_pattern,omitempty"`
}

// LinterSpec describes how to trim a captured config between markers.
type LinterSpec struct {
	ConfigStartsAfter string `yaml:"config_starts_after,omitempty"`
	ConfigEndsAt      string `yaml:"config_ends_at,omitempty"`
}

// JumphostSpec describes a jump-host / proxy used to reach a subset of the
// fleet. Name defaults to Proxy when absent.
type JumphostSpec struct {
	Proxy   string   `yaml:"proxy" validate:"required"`
	Name    string   `yaml:"name,omitempty"`
	Include []string `yaml:"include,omitempty"`
	Exclude []string `yaml:"exclude,omitempty"`
	Timeout int      `yaml:"timeout,omitempty" validate:"gte=0"`
}

// GitSpec describes a VCS remote the capture directory is pushed to. The
// VCS collaborator is out of core scope (spec.md §1); this struct exists so
// config loading can validate it and hand it to internal/vcs unexamined.
type GitSpec struct {
	Name             string `yaml:"name,omitempty"`
	Repo             string `yaml:"repo" validate:"required"`
	AddTag           bool   `yaml:"add_tag,omitempty"`
	Email            string `yaml:"email,omitempty"`
	Username         string `yaml:"username,omitempty"`
	Password         string `yaml:"password,omitempty"`
	Token            creds.Secret `yaml:"token,omitempty"`
	DeployKey        string `yaml:"deploy_key,omitempty"`
	DeployPassphrase creds.Secret `yaml:"deploy_passphrase,omitempty"`
}

// Defaults holds the global-scope configuration block.
type Defaults struct {
	ConfigsDir  string     `yaml:"configs_dir,omitempty"`
	PluginsDir  string     `yaml:"plugins_dir,omitempty"`
	Inventory   string     `yaml:"inventory" validate:"required"`
	Credentials Credential `yaml:"credentials"`
}

// HistorySink configures the optional Postgres report-history plugin
// (SPEC_FULL.md §4.I). Empty DSN disables it.
type HistorySink struct {
	DSN string `yaml:"dsn,omitempty"`
}

// ReportSettings controls the console/report presentation layer.
type ReportSettings struct {
	TimestampFormat string `yaml:"timestamp_format,omitempty"`
}

// Config is the fully loaded, validated application configuration handed to
// the core by the (out-of-scope) CLI/config-file collaborator.
type Config struct {
	Defaults    Defaults              `yaml:"defaults"`
	Credentials []Credential          `yaml:"credentials,omitempty"`
	Linters     map[string]LinterSpec `yaml:"linters,omitempty"`
	OSName      map[string]OSNameSpec `yaml:"os_name,omitempty"`
	Logging     map[string]string     `yaml:"logging,omitempty"`
	SSHConfigs  map[string]string     `yaml:"ssh_configs,omitempty"`
	Git         []GitSpec             `yaml:"git,omitempty"`
	Jumphost    []JumphostSpec        `yaml:"jumphost,omitempty"`
	HistorySink HistorySink           `yaml:"history_sink,omitempty"`
	Report      ReportSettings        `yaml:"report,omitempty"`
}

var envVarRe = regexp.MustCompile(`\$\{(?P<bname>[a-zA-Z0-9_]+)\}|\$(?P<name>[a-zA-Z_][a-zA-Z0-9_]*)`)

// ExpandEnv expands $VAR / ${VAR} references in s, as the original config
// loader does (config_model.py's expand_env_str). A referenced variable
// that is unset or empty is a load-time error.
func ExpandEnv(s string) (string, error) {
	var outerErr error
	result := envVarRe.ReplaceAllStringFunc(s, func(match string) string {
		sub := envVarRe.FindStringSubmatch(match)
		name := sub[1]
		if name == "" {
			name = sub[2]
		}
		val, ok := os.LookupEnv(name)
		if !ok {
			outerErr = fmt.Errorf("environment variable %q missing", name)
			return match
		}
		if val == "" {
			outerErr = fmt.Errorf("environment variable %q empty", name)
			return match
		}
		return val
	})
	if outerErr != nil {
		return "", outerErr
	}
	return result, nil
}

var validate = validator.New()

// Load reads and validates a YAML config file at path, applying the
// NETCFGBU_* environment variable overrides documented in spec.md §6.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := expandConfigStrings(&cfg); err != nil {
		return nil, fmt.Errorf("expand config: %w", err)
	}

	applyEnvOverrides(&cfg)

	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if err := semanticValidate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// expandConfigStrings walks the fields that historically support $VAR
// expansion (inventory path, configs/plugins dirs, the default credential's
// username and password, and each git remote's repo URL) and expands them
// in place.
func expandConfigStrings(cfg *Config) error {
	var err error
	if cfg.Defaults.Inventory, err = ExpandEnv(cfg.Defaults.Inventory); err != nil {
		return err
	}
	if cfg.Defaults.ConfigsDir != "" {
		if cfg.Defaults.ConfigsDir, err = ExpandEnv(cfg.Defaults.ConfigsDir); err != nil {
			return err
		}
		cfg.Defaults.ConfigsDir, err = filepath.Abs(cfg.Defaults.ConfigsDir)
		if err != nil {
			return err
		}
	}
	if cfg.Defaults.PluginsDir != "" {
		if cfg.Defaults.PluginsDir, err = ExpandEnv(cfg.Defaults.PluginsDir); err != nil {
			return err
		}
	}
	if cfg.Defaults.Credentials.Username, err = ExpandEnv(cfg.Defaults.Credentials.Username); err != nil {
		return err
	}
	password, err := ExpandEnv(cfg.Defaults.Credentials.Password.Reveal())
	if err != nil {
		return err
	}
	cfg.Defaults.Credentials.Password = creds.NewSecret(password)
	for i := range cfg.Git {
		if cfg.Git[i].Repo, err = ExpandEnv(cfg.Git[i].Repo); err != nil {
			return err
		}
	}
	return nil
}

// applyEnvOverrides mirrors the teacher's LoadConfig env-override block
// (appliance/internal/daemon/config.go), adapted to the NETCFGBU_* names
// from spec.md §6.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("NETCFGBU_INVENTORY"); v != "" {
		cfg.Defaults.Inventory = v
	}
	if v := os.Getenv("NETCFGBU_CONFIGSDIR"); v != "" {
		cfg.Defaults.ConfigsDir = v
	}
	if v := os.Getenv("NETCFGBU_PLUGINSDIR"); v != "" {
		cfg.Defaults.PluginsDir = v
	}
	if v := os.Getenv("NETCFGBU_DEFAULT_USERNAME"); v != "" {
		cfg.Defaults.Credentials.Username = v
	}
	if v := os.Getenv("NETCFGBU_DEFAULT_PASSWORD"); v != "" {
		cfg.Defaults.Credentials.Password = creds.NewSecret(v)
	}
}

// semanticValidate performs the cross-field checks go-playground/validator
// struct tags can't express: the global default credential requirement and
// the os_name -> linter reference integrity check (config_model.py's
// AppConfig._linters validator).
func semanticValidate(cfg *Config) error {
	if cfg.Defaults.Inventory == "" {
		return fmt.Errorf("defaults.inventory empty value not allowed")
	}
	if cfg.Defaults.Credentials.Username == "" || cfg.Defaults.Credentials.Password.Empty() {
		return fmt.Errorf("default credentials required: set defaults.credentials or NETCFGBU_DEFAULT_USERNAME/_PASSWORD")
	}

	for osName, spec := range cfg.OSName {
		if spec.Linter == "" {
			continue
		}
		if _, ok := cfg.Linters[spec.Linter]; !ok {
			return fmt.Errorf("os_name %q uses undefined linter %q", osName, spec.Linter)
		}
	}

	for i, jh := range cfg.Jumphost {
		if jh.Name == "" {
			cfg.Jumphost[i].Name = jh.Proxy
		}
		if cfg.Jumphost[i].Timeout <= 0 {
			cfg.Jumphost[i].Timeout = DefaultLoginTimeout
		}
	}

	for name, spec := range cfg.OSName {
		if spec.Timeout <= 0 {
			spec.Timeout = DefaultGetConfigTimeout
			cfg.OSName[name] = spec
		}
	}

	return nil
}

// OSProfile resolves the effective OSNameSpec for an os_name, applying
// defaults for GetConfig and Timeout.
func (c *Config) OSProfile(osName string) OSNameSpec {
	spec := c.OSName[osName]
	if spec.GetConfig == "" {
		spec.GetConfig = "show running-config"
	}
	if spec.Timeout <= 0 {
		spec.Timeout = DefaultGetConfigTimeout
	}
	return spec
}

// ParsePositiveInt is a small helper used by CLI flag validation (spec.md
// §6's numeric ranges) to keep range-check error messages consistent.
func ParsePositiveInt(s string, min, max int) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid integer %q: %w", s, err)
	}
	if n < min || n > max {
		return 0, fmt.Errorf("value %d out of range [%d,%d]", n, min, max)
	}
	return n, nil
}

// EnsureDir creates dir (and parents) if it doesn't already exist, matching
// the teacher's MkdirAll-then-continue pattern.
func EnsureDir(dir string) error {
	if dir == "" {
		return fmt.Errorf("directory path empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dir %s: %w", dir, err)
	}
	return nil
}

// TrimFilterList trims surrounding whitespace from CLI-supplied --limit /
// --exclude constraint lists before they hit internal/filtering, and drops
// any entries left empty.
func TrimFilterList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		if s := strings.TrimSpace(it); s != "" {
			out = append(out, s)
		}
	}
	return out
}
