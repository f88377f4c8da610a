package config

import (
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	LogLevel int `yaml:"log_level"`

	Server  ServerConfig  `yaml:"server"`
	MixesDB MixesDBConfig `yaml:"mixesdb"`

	// Environment-sourced values, never read from the YAML file.
	YouTubeAPIKey string      `yaml:"-"`
	Cache         CacheConfig `yaml:"-"`
	Proxy         ProxyConfig `yaml:"-"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
}

// MixesDBConfig holds the knobs for talking to the origin site.
type MixesDBConfig struct {
	BaseURL        string `yaml:"base_url"`
	MinDelayMs     int    `yaml:"min_delay_ms"`
	MaxDelayMs     int    `yaml:"max_delay_ms"`
	CooldownMinMs  int    `yaml:"cooldown_min_ms"`
	CooldownMaxMs  int    `yaml:"cooldown_max_ms"`
	MaxAttempts    int    `yaml:"max_attempts"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// CacheConfig points at the external key-value store. RedisURL wins over
// the host/port pair when both are present.
type CacheConfig struct {
	RedisURL  string
	RedisHost string
	RedisPort string
}

// ProxyConfig describes outbound proxying. Single takes precedence over the
// pool; pool entries are combined with the credential fields using the
// provider's URL template.
type ProxyConfig struct {
	Single   string
	Pool     []string
	Username string
	Password string
	Country  string
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config *Config

	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, err
	}
	if config == nil {
		config = &Config{}
	}

	// Set defaults if not provided
	if config.Server.Port == "" {
		config.Server.Port = "4242"
	}

	if config.MixesDB.BaseURL == "" {
		config.MixesDB.BaseURL = "https://www.mixesdb.com"
	}
	if config.MixesDB.MinDelayMs == 0 {
		config.MixesDB.MinDelayMs = 2000
	}
	if config.MixesDB.MaxDelayMs == 0 {
		config.MixesDB.MaxDelayMs = 5000
	}
	if config.MixesDB.CooldownMinMs == 0 {
		config.MixesDB.CooldownMinMs = 10000
	}
	if config.MixesDB.CooldownMaxMs == 0 {
		config.MixesDB.CooldownMaxMs = 15000
	}
	if config.MixesDB.MaxAttempts == 0 {
		config.MixesDB.MaxAttempts = 3
	}
	if config.MixesDB.TimeoutSeconds == 0 {
		config.MixesDB.TimeoutSeconds = 30
	}

	config.loadEnv()

	return config, nil
}

func (c *Config) loadEnv() {
	c.YouTubeAPIKey = strings.TrimSpace(os.Getenv("YOUTUBE_API_KEY"))

	c.Cache = CacheConfig{
		RedisURL:  getEnv("REDIS_URL", ""),
		RedisHost: getEnv("REDIS_HOST", ""),
		RedisPort: getEnv("REDIS_PORT", "6379"),
	}

	single := getEnv("HTTPS_PROXY", getEnv("https_proxy", ""))
	if single == "" {
		single = getEnv("HTTP_PROXY", getEnv("http_proxy", ""))
	}

	c.Proxy = ProxyConfig{
		Single:   single,
		Pool:     splitList(getEnv("PROXY_LIST", getEnv("proxy_list", ""))),
		Username: getEnv("PROXY_USERNAME", getEnv("proxy_username", "")),
		Password: getEnv("PROXY_PASSWORD", getEnv("proxy_password", "")),
		Country:  getEnv("PROXY_COUNTRY", "US"),
	}
}

func getEnv(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
