package config

import (
	"encoding/json"
	"errors"
	"os"
	"strconv"
)

// Config holds all application configuration
type Config struct {
	ServerAddress string    `json:"serverAddress"`
	DatabasePath  string    `json:"databasePath"`
	DatabaseURL   string    `json:"databaseUrl"`
	Flickr        Flickr    `json:"flickr"`
	Thumbnail     Thumbnail `json:"thumbnail"`
	Security      Security  `json:"security"`
}

// Flickr holds search-service configuration. PerPage is the page size of
// every search call; the original client mutated this globally per device
// class, here it is an explicit construction value.
type Flickr struct {
	APIKey  string `json:"apiKey"`
	BaseURL string `json:"baseUrl"`
	PerPage int    `json:"perPage"`
}

// Thumbnail configuration
type Thumbnail struct {
	MaxDimension int `json:"maxDimension"`
}

// Security configuration
type Security struct {
	APIKey       string `json:"apiKey"`
	APIKeyHeader string `json:"apiKeyHeader"`
}

// UsePostgres returns true if PostgreSQL should be used
func (c *Config) UsePostgres() bool {
	return c.DatabaseURL != ""
}

// Default configuration
func defaultConfig() *Config {
	return &Config{
		ServerAddress: ":5000",
		DatabasePath:  "virtualtourist.db",
		Flickr: Flickr{
			BaseURL: "https://www.flickr.com/services/rest/",
			PerPage: 25,
		},
		Thumbnail: Thumbnail{
			MaxDimension: 200,
		},
		Security: Security{
			APIKeyHeader: "X-API-Key",
		},
	}
}

// Load loads configuration from file or environment
func Load() (*Config, error) {
	cfg := defaultConfig()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.json"
	}

	if data, err := os.ReadFile(configPath); err == nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	// Override from environment variables
	if addr := os.Getenv("SERVER_ADDRESS"); addr != "" {
		cfg.ServerAddress = addr
	}
	if dbPath := os.Getenv("DATABASE_PATH"); dbPath != "" {
		cfg.DatabasePath = dbPath
	}
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		cfg.DatabaseURL = dbURL
	}
	if key := os.Getenv("FLICKR_API_KEY"); key != "" {
		cfg.Flickr.APIKey = key
	}
	if baseURL := os.Getenv("FLICKR_BASE_URL"); baseURL != "" {
		cfg.Flickr.BaseURL = baseURL
	}
	if perPage := os.Getenv("FLICKR_PER_PAGE"); perPage != "" {
		if n, err := strconv.Atoi(perPage); err == nil && n > 0 {
			cfg.Flickr.PerPage = n
		}
	}
	if apiKey := os.Getenv("API_KEY"); apiKey != "" {
		cfg.Security.APIKey = apiKey
	}

	if cfg.Flickr.APIKey == "" {
		return nil, errors.New("flickr api key is required (set FLICKR_API_KEY or flickr.apiKey in config.json)")
	}
	if cfg.Flickr.PerPage < 1 {
		return nil, errors.New("flickr per_page must be at least 1")
	}

	return cfg, nil
}
