// Package config provides configuration loading and validation for the CLI
// and the BFF server.
package config

import (
	"errors"
	"fmt"
	"net/netip"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/jonathan/careermatch/internal/presentation"
	"github.com/jonathan/careermatch/internal/skills"
)

// EnvPrefix prefixes every environment override, e.g. CAREERMATCH_API_BASE_URL.
const EnvPrefix = "CAREERMATCH"

// Session store kinds.
const (
	StoreKeyring = "keyring"
	StoreFile    = "file"
)

// Config is the resolved configuration. Values come from, in increasing
// priority: defaults, the config file, CAREERMATCH_* env vars, CLI flags.
type Config struct {
	// Backend
	APIBaseURL        string        `mapstructure:"api_base_url" json:"api_base_url,omitempty"`
	Timeout           time.Duration `mapstructure:"timeout" json:"timeout,omitempty"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second" json:"requests_per_second,omitempty"`
	Burst             int           `mapstructure:"burst" json:"burst,omitempty"`

	// Session
	SessionStore string `mapstructure:"session_store" json:"session_store,omitempty"` // keyring or file
	SessionFile  string `mapstructure:"session_file" json:"session_file,omitempty"`   // path for the file store

	// Presentation
	ScoreMode   string  `mapstructure:"score_mode" json:"score_mode,omitempty"` // roll or blend
	BlendNoise  float64 `mapstructure:"blend_noise" json:"blend_noise,omitempty"`
	SkillTable  string  `mapstructure:"skill_table" json:"skill_table,omitempty"` // YAML highlight table
	MatchLimit  int     `mapstructure:"match_limit" json:"match_limit,omitempty"`
	CourseLimit int     `mapstructure:"course_limit" json:"course_limit,omitempty"`

	// Server
	ListenAddr     string   `mapstructure:"listen_addr" json:"listen_addr,omitempty"`
	AllowedOrigins []string `mapstructure:"allowed_origins" json:"allowed_origins,omitempty"`
	RateLimit      int      `mapstructure:"rate_limit" json:"rate_limit,omitempty"` // requests per client per minute, negative disables
	// TrustedProxies are IPs or CIDRs whose X-Forwarded-For is believed.
	TrustedProxies []string `mapstructure:"trusted_proxies" json:"trusted_proxies,omitempty"`

	Verbose bool `mapstructure:"verbose" json:"verbose,omitempty"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		APIBaseURL:        "http://localhost:8090",
		Timeout:           15 * time.Second,
		RequestsPerSecond: 5,
		Burst:             10,
		SessionStore:      StoreKeyring,
		ScoreMode:         string(presentation.ModeRoll),
		BlendNoise:        presentation.DefaultNoise,
		MatchLimit:        20,
		CourseLimit:       5,
		ListenAddr:        ":8080",
		AllowedOrigins:    []string{"http://localhost:3000"},
		RateLimit:         600,
	}
}

// NewViper returns a viper instance wired for careermatch: an explicit
// config file, or .careermatch.yaml in the working or home directory, plus
// CAREERMATCH_* env vars and the defaults.
func NewViper(configFile string) *viper.Viper {
	v := viper.New()
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(".careermatch")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	d := Defaults()
	v.SetDefault("api_base_url", d.APIBaseURL)
	v.SetDefault("timeout", d.Timeout)
	v.SetDefault("requests_per_second", d.RequestsPerSecond)
	v.SetDefault("burst", d.Burst)
	v.SetDefault("session_store", d.SessionStore)
	v.SetDefault("session_file", "")
	v.SetDefault("score_mode", d.ScoreMode)
	v.SetDefault("blend_noise", d.BlendNoise)
	v.SetDefault("skill_table", "")
	v.SetDefault("match_limit", d.MatchLimit)
	v.SetDefault("course_limit", d.CourseLimit)
	v.SetDefault("listen_addr", d.ListenAddr)
	v.SetDefault("allowed_origins", d.AllowedOrigins)
	v.SetDefault("rate_limit", d.RateLimit)
	v.SetDefault("trusted_proxies", []string{})
	v.SetDefault("verbose", false)
	return v
}

// Load reads the config file (a missing default file is fine), resolves all
// sources, fills remaining zero values and validates the result.
func Load(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	merged := cfg.MergeWithDefaults(Defaults())
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return &merged, nil
}

// LoadConfig loads configuration from an explicit YAML or JSON file.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return Load(NewViper(path))
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("config error: 'api_base_url' must be an http(s) URL, got %q", c.APIBaseURL)
	}

	if c.Timeout < 0 {
		return fmt.Errorf("config error: 'timeout' must be non-negative")
	}
	if c.RequestsPerSecond < 0 {
		return fmt.Errorf("config error: 'requests_per_second' must be non-negative")
	}
	if c.Burst < 0 {
		return fmt.Errorf("config error: 'burst' must be non-negative")
	}

	switch c.SessionStore {
	case StoreKeyring, StoreFile:
	default:
		return fmt.Errorf("config error: 'session_store' must be %q or %q, got %q", StoreKeyring, StoreFile, c.SessionStore)
	}

	if _, err := presentation.ParseMode(c.ScoreMode); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if c.BlendNoise < 0 {
		return fmt.Errorf("config error: 'blend_noise' must be non-negative")
	}

	if c.MatchLimit < 0 {
		return fmt.Errorf("config error: 'match_limit' must be non-negative")
	}
	if c.CourseLimit < 0 {
		return fmt.Errorf("config error: 'course_limit' must be non-negative")
	}

	if _, err := c.TrustedProxyPrefixes(); err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	if c.SkillTable != "" {
		if _, err := os.Stat(c.SkillTable); os.IsNotExist(err) {
			return fmt.Errorf("config error: skill table file not found: %s", c.SkillTable)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with zero fields filled from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.APIBaseURL == "" {
		result.APIBaseURL = defaults.APIBaseURL
	}
	if result.SessionStore == "" {
		result.SessionStore = defaults.SessionStore
	}
	if result.SessionFile == "" {
		result.SessionFile = defaults.SessionFile
	}
	if result.ScoreMode == "" {
		result.ScoreMode = defaults.ScoreMode
	}
	if result.SkillTable == "" {
		result.SkillTable = defaults.SkillTable
	}
	if result.ListenAddr == "" {
		result.ListenAddr = defaults.ListenAddr
	}
	if len(result.AllowedOrigins) == 0 {
		result.AllowedOrigins = defaults.AllowedOrigins
	}

	// Numeric fields: use default if zero
	if result.Timeout == 0 {
		result.Timeout = defaults.Timeout
	}
	if result.RequestsPerSecond == 0 {
		result.RequestsPerSecond = defaults.RequestsPerSecond
	}
	if result.Burst == 0 {
		result.Burst = defaults.Burst
	}
	if result.BlendNoise == 0 {
		result.BlendNoise = defaults.BlendNoise
	}
	if result.MatchLimit == 0 {
		result.MatchLimit = defaults.MatchLimit
	}
	if result.CourseLimit == 0 {
		result.CourseLimit = defaults.CourseLimit
	}
	if result.RateLimit == 0 {
		result.RateLimit = defaults.RateLimit
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge

	return result
}

// TrustedProxyPrefixes parses TrustedProxies. A bare IP becomes a
// single-address prefix.
func (c *Config) TrustedProxyPrefixes() ([]netip.Prefix, error) {
	prefixes := make([]netip.Prefix, 0, len(c.TrustedProxies))
	for _, raw := range c.TrustedProxies {
		raw = strings.TrimSpace(raw)
		if strings.Contains(raw, "/") {
			p, err := netip.ParsePrefix(raw)
			if err != nil {
				return nil, fmt.Errorf("'trusted_proxies' entry %q is not a CIDR: %w", raw, err)
			}
			prefixes = append(prefixes, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(raw)
		if err != nil {
			return nil, fmt.Errorf("'trusted_proxies' entry %q is not an IP: %w", raw, err)
		}
		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes, nil
}

// Normalizer returns the score normalizer for the configured mode.
func (c *Config) Normalizer() presentation.Normalizer {
	mode, err := presentation.ParseMode(c.ScoreMode)
	if err != nil {
		mode = presentation.ModeRoll
	}
	n := presentation.NewNormalizer(mode)
	if c.BlendNoise > 0 {
		n.Noise = c.BlendNoise
	}
	return n
}

// Table returns the highlight table, loading the configured file if any.
func (c *Config) Table() (skills.Table, error) {
	if c.SkillTable == "" {
		return skills.DefaultTable(), nil
	}
	return skills.LoadTable(c.SkillTable)
}
