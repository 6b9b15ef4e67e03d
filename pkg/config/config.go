// Package config loads server configuration from an optional YAML file and
// CREDSTORE_* environment variables, tracking the source of every attribute.
// Environment variables take precedence over file values.
package config

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigPath = "/etc/credstore"
	ConfigFileName    = "credstore.yml"
)

// SessionKeyEnvVar names the environment variable holding the base64-encoded
// session encryption key.
const SessionKeyEnvVar = "CREDSTORE_SESSION_KEY"

// MinSessionKeyBytes is the minimum decoded session key length.
const MinSessionKeyBytes = 32

// Config holds all credstore configuration settings.
type Config struct {
	// Environment is the deployment environment; cookies are only marked
	// Secure outside "development".
	Environment string `yaml:"environment" json:"environment"`

	// CookieName is the session cookie name.
	CookieName string `yaml:"cookie_name" json:"cookie_name"`

	// SessionTTLMinutes is the session token lifetime in minutes.
	SessionTTLMinutes int `yaml:"session_ttl_minutes" json:"session_ttl_minutes"`

	// BcryptCost is the password hashing work factor.
	BcryptCost int `yaml:"bcrypt_cost" json:"bcrypt_cost"`

	// MaxOpenConns bounds the database connection pool.
	MaxOpenConns int `yaml:"max_open_conns" json:"max_open_conns"`

	// MaxIdleConns bounds idle connections kept in the pool.
	MaxIdleConns int `yaml:"max_idle_conns" json:"max_idle_conns"`

	// ConnMaxLifetimeMinutes recycles pooled connections after this long.
	ConnMaxLifetimeMinutes int `yaml:"conn_max_lifetime_minutes" json:"conn_max_lifetime_minutes"`

	// TrustedProxies is a list of CIDR ranges whose X-Forwarded-For is honoured.
	TrustedProxies []string `yaml:"trusted_proxies" json:"trusted_proxies"`

	// sources tracks where each value came from
	sources map[string]string

	// configFilePath is the path to the config file
	configFilePath string
}

// Attribute represents a configuration attribute with its value and source.
type Attribute struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Source string `json:"source"`
}

// Global singleton config
var (
	globalConfig *Config
	configMu     sync.RWMutex
)

// Get returns the global configuration, loading it if necessary.
func Get() *Config {
	configMu.RLock()
	if globalConfig != nil {
		configMu.RUnlock()
		return globalConfig
	}
	configMu.RUnlock()

	configMu.Lock()
	defer configMu.Unlock()

	if globalConfig == nil {
		cfg, err := Load()
		if err != nil {
			// Return defaults on error
			globalConfig = newDefault()
		} else {
			globalConfig = cfg
		}
	}
	return globalConfig
}

// Reload reloads the configuration from file and environment.
func Reload() error {
	cfg, err := Load()
	if err != nil {
		return err
	}

	configMu.Lock()
	globalConfig = cfg
	configMu.Unlock()
	return nil
}

// newDefault returns a config with default values.
func newDefault() *Config {
	return &Config{
		Environment:            "development",
		CookieName:             "credstore_session",
		SessionTTLMinutes:      30,
		BcryptCost:             10,
		MaxOpenConns:           25,
		MaxIdleConns:           5,
		ConnMaxLifetimeMinutes: 30,
		TrustedProxies:         []string{},
		sources:                make(map[string]string),
	}
}

// Load loads configuration from file and environment variables.
func Load() (*Config, error) {
	config := newDefault()

	for _, name := range attributeNames() {
		config.sources[name] = "default"
	}

	configPath := os.Getenv("CREDSTORE_CONFIG_PATH")
	if configPath == "" {
		configPath = DefaultConfigPath
	}
	config.configFilePath = filepath.Join(configPath, ConfigFileName)

	if data, err := os.ReadFile(config.configFilePath); err == nil {
		var fileConfig Config
		if err := yaml.Unmarshal(data, &fileConfig); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", config.configFilePath, err)
		}
		config.applyFileConfig(&fileConfig)
	}

	config.applyEnvConfig()

	return config, nil
}

func attributeNames() []string {
	return []string{
		"environment", "cookie_name", "session_ttl_minutes", "bcrypt_cost",
		"max_open_conns", "max_idle_conns", "conn_max_lifetime_minutes",
		"trusted_proxies",
	}
}

func (c *Config) applyFileConfig(file *Config) {
	if file.Environment != "" {
		c.Environment = file.Environment
		c.sources["environment"] = "file"
	}
	if file.CookieName != "" {
		c.CookieName = file.CookieName
		c.sources["cookie_name"] = "file"
	}
	if file.SessionTTLMinutes != 0 {
		c.SessionTTLMinutes = file.SessionTTLMinutes
		c.sources["session_ttl_minutes"] = "file"
	}
	if file.BcryptCost != 0 {
		c.BcryptCost = file.BcryptCost
		c.sources["bcrypt_cost"] = "file"
	}
	if file.MaxOpenConns != 0 {
		c.MaxOpenConns = file.MaxOpenConns
		c.sources["max_open_conns"] = "file"
	}
	if file.MaxIdleConns != 0 {
		c.MaxIdleConns = file.MaxIdleConns
		c.sources["max_idle_conns"] = "file"
	}
	if file.ConnMaxLifetimeMinutes != 0 {
		c.ConnMaxLifetimeMinutes = file.ConnMaxLifetimeMinutes
		c.sources["conn_max_lifetime_minutes"] = "file"
	}
	if len(file.TrustedProxies) > 0 {
		c.TrustedProxies = file.TrustedProxies
		c.sources["trusted_proxies"] = "file"
	}
}

func (c *Config) applyEnvConfig() {
	if val := os.Getenv("CREDSTORE_ENVIRONMENT"); val != "" {
		c.Environment = val
		c.sources["environment"] = "environment"
	}
	if val := os.Getenv("CREDSTORE_COOKIE_NAME"); val != "" {
		c.CookieName = val
		c.sources["cookie_name"] = "environment"
	}
	if val := os.Getenv("CREDSTORE_SESSION_TTL_MINUTES"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			c.SessionTTLMinutes = i
			c.sources["session_ttl_minutes"] = "environment"
		}
	}
	if val := os.Getenv("CREDSTORE_BCRYPT_COST"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			c.BcryptCost = i
			c.sources["bcrypt_cost"] = "environment"
		}
	}
	if val := os.Getenv("CREDSTORE_MAX_OPEN_CONNS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			c.MaxOpenConns = i
			c.sources["max_open_conns"] = "environment"
		}
	}
	if val := os.Getenv("CREDSTORE_MAX_IDLE_CONNS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			c.MaxIdleConns = i
			c.sources["max_idle_conns"] = "environment"
		}
	}
	if val := os.Getenv("CREDSTORE_CONN_MAX_LIFETIME_MINUTES"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			c.ConnMaxLifetimeMinutes = i
			c.sources["conn_max_lifetime_minutes"] = "environment"
		}
	}
	if val := os.Getenv("CREDSTORE_TRUSTED_PROXIES"); val != "" {
		c.TrustedProxies = splitAndTrim(val)
		c.sources["trusted_proxies"] = "environment"
	}
}

func splitAndTrim(val string) []string {
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// ConfigFilePath returns the path to the config file.
func (c *Config) ConfigFilePath() string {
	return c.configFilePath
}

// Source returns the source of a configuration attribute.
func (c *Config) Source(name string) string {
	if c.sources == nil {
		return "default"
	}
	if s, ok := c.sources[name]; ok {
		return s
	}
	return "default"
}

// SessionTTL returns the session token lifetime as a duration.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLMinutes) * time.Minute
}

// ConnMaxLifetime returns the pooled connection lifetime as a duration.
func (c *Config) ConnMaxLifetime() time.Duration {
	return time.Duration(c.ConnMaxLifetimeMinutes) * time.Minute
}

// IsDevelopment reports whether the server runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development" || c.Environment == ""
}

// IsTrustedProxy checks if an IP falls within a trusted proxy range.
func (c *Config) IsTrustedProxy(ip string) bool {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return false
	}
	for _, cidr := range c.TrustedProxies {
		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			// Allow bare IPs in the list too
			if cidr == ip {
				return true
			}
			continue
		}
		if network.Contains(parsed) {
			return true
		}
	}
	return false
}

// Validate validates the configuration
func (c *Config) Validate() error {
	// Validate trusted proxies are valid CIDR ranges (bare IPs allowed)
	for _, cidr := range c.TrustedProxies {
		if _, _, err := net.ParseCIDR(cidr); err != nil {
			if net.ParseIP(cidr) == nil {
				return fmt.Errorf("invalid trusted_proxies value: %s", cidr)
			}
		}
	}

	if c.SessionTTLMinutes <= 0 {
		return fmt.Errorf("session_ttl_minutes must be positive, got %d", c.SessionTTLMinutes)
	}
	if c.MaxOpenConns <= 0 {
		return fmt.Errorf("max_open_conns must be positive, got %d", c.MaxOpenConns)
	}
	if c.MaxIdleConns > c.MaxOpenConns {
		return fmt.Errorf("max_idle_conns (%d) cannot exceed max_open_conns (%d)",
			c.MaxIdleConns, c.MaxOpenConns)
	}

	return nil
}

// FormatText returns a text representation of the configuration
func (c *Config) FormatText() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Config file: %s\n\n", c.configFilePath))
	sb.WriteString(fmt.Sprintf("%-30s %-30s %s\n", "NAME", "VALUE", "SOURCE"))
	sb.WriteString(fmt.Sprintf("%-30s %-30s %s\n", "----", "-----", "------"))

	for _, attr := range c.Attributes() {
		value := attr.Value
		if value == "" {
			value = "(not set)"
		}
		sb.WriteString(fmt.Sprintf("%-30s %-30s %s\n", attr.Name, value, attr.Source))
	}
	return sb.String()
}

// FormatJSON returns a JSON representation of the configuration
func (c *Config) FormatJSON() (string, error) {
	result := map[string]interface{}{
		"config_file": c.configFilePath,
		"attributes":  c.Attributes(),
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Attributes returns all configuration attributes with values and sources.
func (c *Config) Attributes() []Attribute {
	return []Attribute{
		{Name: "environment", Value: c.Environment, Source: c.Source("environment")},
		{Name: "cookie_name", Value: c.CookieName, Source: c.Source("cookie_name")},
		{Name: "session_ttl_minutes", Value: strconv.Itoa(c.SessionTTLMinutes), Source: c.Source("session_ttl_minutes")},
		{Name: "bcrypt_cost", Value: strconv.Itoa(c.BcryptCost), Source: c.Source("bcrypt_cost")},
		{Name: "max_open_conns", Value: strconv.Itoa(c.MaxOpenConns), Source: c.Source("max_open_conns")},
		{Name: "max_idle_conns", Value: strconv.Itoa(c.MaxIdleConns), Source: c.Source("max_idle_conns")},
		{Name: "conn_max_lifetime_minutes", Value: strconv.Itoa(c.ConnMaxLifetimeMinutes), Source: c.Source("conn_max_lifetime_minutes")},
		{Name: "trusted_proxies", Value: strings.Join(c.TrustedProxies, ","), Source: c.Source("trusted_proxies")},
	}
}

// SessionKeyFromEnv reads and validates the session encryption key. The key is
// base64 in the environment and must decode to at least 32 bytes; only the
// first 32 bytes are used for the cipher.
func SessionKeyFromEnv() ([]byte, error) {
	encoded := os.Getenv(SessionKeyEnvVar)
	if encoded == "" {
		return nil, fmt.Errorf("%s environment variable is required", SessionKeyEnvVar)
	}

	key, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%s is not valid base64: %w", SessionKeyEnvVar, err)
	}
	if len(key) < MinSessionKeyBytes {
		return nil, fmt.Errorf("%s must decode to at least %d bytes, got %d",
			SessionKeyEnvVar, MinSessionKeyBytes, len(key))
	}

	return key[:MinSessionKeyBytes], nil
}
