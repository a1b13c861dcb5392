package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv = "DISASTERWATCH_CONFIG"
	mongoURLEnv   = "MONGO_URL"
	dbNameEnv     = "DB_NAME"
	geminiKeyEnv  = "GEMINI_API_KEY"
	flashModelEnv = "GEMINI_FLASH_MODEL"
	proModelEnv   = "GEMINI_PRO_MODEL"
	serverAddrEnv = "SERVER_ADDR"
	logLevelEnv   = "LOG_LEVEL"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging  LoggingConfig  `yaml:"logging"`
	Database DatabaseConfig `yaml:"database"`
	Gemini   GeminiConfig   `yaml:"gemini"`
	Monitor  MonitorConfig  `yaml:"monitor"`
	Server   ServerConfig   `yaml:"server"`
	Feeds    []FeedConfig   `yaml:"feeds"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DatabaseConfig describes the MongoDB connection.
type DatabaseConfig struct {
	URI  string `yaml:"uri"`
	Name string `yaml:"name"`
}

// GeminiConfig defines how to contact the Gemini API and which model tiers
// the classifier escalates through.
type GeminiConfig struct {
	BaseURL    string `yaml:"baseUrl"`
	APIKey     string `yaml:"apiKey"`
	FlashModel string `yaml:"flashModel"`
	ProModel   string `yaml:"proModel"`
}

// MonitorConfig tunes the ingestion loop.
type MonitorConfig struct {
	CycleIntervalSeconds  int     `yaml:"cycleIntervalSeconds"`
	ErrorBackoffSeconds   int     `yaml:"errorBackoffSeconds"`
	FetchTimeoutSeconds   int     `yaml:"fetchTimeoutSeconds"`
	MaxItemsPerFeed       int     `yaml:"maxItemsPerFeed"`
	RelevanceThreshold    float64 `yaml:"relevanceThreshold"`
	AlertUrgencyThreshold int     `yaml:"alertUrgencyThreshold"`
}

// CycleInterval is the sleep between successful ingestion cycles.
func (m MonitorConfig) CycleInterval() time.Duration {
	return time.Duration(m.CycleIntervalSeconds) * time.Second
}

// ErrorBackoff is the shorter sleep applied after a failed cycle.
func (m MonitorConfig) ErrorBackoff() time.Duration {
	return time.Duration(m.ErrorBackoffSeconds) * time.Second
}

// FetchTimeout bounds a single feed retrieval.
func (m MonitorConfig) FetchTimeout() time.Duration {
	return time.Duration(m.FetchTimeoutSeconds) * time.Second
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// FeedConfig describes a single syndicated feed to poll.
type FeedConfig struct {
	Name                 string `yaml:"name"`
	URL                  string `yaml:"url"`
	Category             string `yaml:"category"`
	CheckIntervalMinutes int    `yaml:"checkIntervalMinutes"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()

	if len(cfg.Feeds) == 0 {
		cfg.Feeds = defaultConfig().Feeds
	}

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(mongoURLEnv); v != "" {
		c.Database.URI = v
	}

	if v := os.Getenv(dbNameEnv); v != "" {
		c.Database.Name = v
	}

	if v := os.Getenv(geminiKeyEnv); v != "" {
		c.Gemini.APIKey = v
	}

	if v := os.Getenv(flashModelEnv); v != "" {
		c.Gemini.FlashModel = v
	}

	if v := os.Getenv(proModelEnv); v != "" {
		c.Gemini.ProModel = v
	}

	if v := os.Getenv(serverAddrEnv); v != "" {
		c.Server.Addr = v
	}

	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging = override.Logging
	}

	if override.Database.URI != "" {
		base.Database.URI = override.Database.URI
	}
	if override.Database.Name != "" {
		base.Database.Name = override.Database.Name
	}

	if override.Gemini.BaseURL != "" {
		base.Gemini.BaseURL = override.Gemini.BaseURL
	}
	if override.Gemini.APIKey != "" {
		base.Gemini.APIKey = override.Gemini.APIKey
	}
	if override.Gemini.FlashModel != "" {
		base.Gemini.FlashModel = override.Gemini.FlashModel
	}
	if override.Gemini.ProModel != "" {
		base.Gemini.ProModel = override.Gemini.ProModel
	}

	if override.Monitor.CycleIntervalSeconds > 0 {
		base.Monitor.CycleIntervalSeconds = override.Monitor.CycleIntervalSeconds
	}
	if override.Monitor.ErrorBackoffSeconds > 0 {
		base.Monitor.ErrorBackoffSeconds = override.Monitor.ErrorBackoffSeconds
	}
	if override.Monitor.FetchTimeoutSeconds > 0 {
		base.Monitor.FetchTimeoutSeconds = override.Monitor.FetchTimeoutSeconds
	}
	if override.Monitor.MaxItemsPerFeed > 0 {
		base.Monitor.MaxItemsPerFeed = override.Monitor.MaxItemsPerFeed
	}
	if override.Monitor.RelevanceThreshold > 0 {
		base.Monitor.RelevanceThreshold = override.Monitor.RelevanceThreshold
	}
	if override.Monitor.AlertUrgencyThreshold > 0 {
		base.Monitor.AlertUrgencyThreshold = override.Monitor.AlertUrgencyThreshold
	}

	if override.Server.Addr != "" {
		base.Server.Addr = override.Server.Addr
	}

	if len(override.Feeds) > 0 {
		base.Feeds = override.Feeds
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Logging:  LoggingConfig{Level: "info"},
		Database: DatabaseConfig{URI: "mongodb://localhost:27017", Name: "disasterwatch"},
		Gemini: GeminiConfig{
			BaseURL:    "https://generativelanguage.googleapis.com",
			APIKey:     "",
			FlashModel: "gemini-1.5-flash",
			ProModel:   "gemini-1.5-pro",
		},
		Monitor: MonitorConfig{
			CycleIntervalSeconds:  300,
			ErrorBackoffSeconds:   60,
			FetchTimeoutSeconds:   30,
			MaxItemsPerFeed:       10,
			RelevanceThreshold:    0.6,
			AlertUrgencyThreshold: 8,
		},
		Server: ServerConfig{Addr: ":8080"},
		Feeds: []FeedConfig{
			{
				Name:                 "Emergency Alert System",
				URL:                  "https://feeds.bbci.co.uk/news/world/rss.xml",
				Category:             "news",
				CheckIntervalMinutes: 5,
			},
			{
				Name:                 "Weather Emergency Updates",
				URL:                  "https://rss.cnn.com/rss/cnn_latest.rss",
				Category:             "news",
				CheckIntervalMinutes: 5,
			},
			{
				Name:                 "Reuters Disaster News",
				URL:                  "https://www.reuters.com/rssfeed/worldNews",
				Category:             "news",
				CheckIntervalMinutes: 10,
			},
			{
				Name:                 "USGS Earthquake Alerts",
				URL:                  "https://earthquake.usgs.gov/earthquakes/feed/v1.0/summary/all_hour.atom",
				Category:             "government",
				CheckIntervalMinutes: 15,
			},
		},
	}
}
