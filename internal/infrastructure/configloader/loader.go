package configloader

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ServerConfig holds server-specific configurations.
type ServerConfig struct {
	Port         string `yaml:"port"`
	ReadTimeout  int    `yaml:"readTimeoutSeconds"`
	WriteTimeout int    `yaml:"writeTimeoutSeconds"`
	IdleTimeout  int    `yaml:"idleTimeoutSeconds"`
}

// DBConfig holds the address book database configuration.
type DBConfig struct {
	DSN     string `yaml:"dsn"`
	Migrate bool   `yaml:"migrate"`
}

// LoggingConfig holds logging-specific configurations.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// NetworkConfig describes one Movement network the gateway can serve.
type NetworkConfig struct {
	Name        string `yaml:"name"`       // e.g. "Movement Mainnet"
	Identifier  string `yaml:"identifier"` // e.g. "mainnet"
	ChainID     uint64 `yaml:"chainId"`
	IndexerURL  string `yaml:"indexerUrl"`
	FullnodeURL string `yaml:"fullnodeUrl"`
}

// QuotesConfig holds the price-quote provider configuration.
type QuotesConfig struct {
	BaseURL              string `yaml:"baseURL"`
	RequestTimeoutMillis int64  `yaml:"requestTimeoutMillis"`
	MaxRetries           int    `yaml:"maxRetries"`
}

// PriceServiceConfig holds configuration for the price cache.
type PriceServiceConfig struct {
	CacheTTLSeconds     int     `yaml:"cacheTTLSeconds"`
	RateCacheTTLMinutes int     `yaml:"rateCacheTTLMinutes"`
	FallbackMovePrice   float64 `yaml:"fallbackMovePrice"`
}

// RewardsConfig holds configuration for reward history harvesting.
type RewardsConfig struct {
	ContractAddress string `yaml:"contractAddress"`
	PageSize        int    `yaml:"pageSize"`
	MaxPages        int    `yaml:"maxPages"`
	PagesPerSecond  int    `yaml:"pagesPerSecond"`
}

// ProxyConfig holds configuration for the indexer proxy endpoint.
type ProxyConfig struct {
	TimeoutSeconds int `yaml:"timeoutSeconds"`
}

// PerformanceConfig holds performance-related configurations.
type PerformanceConfig struct {
	MaxConcurrentRoutines  int `yaml:"max_concurrent_routines"`
	FetchTimeoutSeconds    int `yaml:"fetch_timeout_seconds"`
	UpstreamTimeoutSeconds int `yaml:"upstream_timeout_seconds"`
}

// Config is the top-level configuration structure.
type Config struct {
	Server      ServerConfig       `yaml:"server"`
	Database    DBConfig           `yaml:"database"`
	Logging     LoggingConfig      `yaml:"logging"`
	Networks    []NetworkConfig    `yaml:"networks"`
	Quotes      QuotesConfig       `yaml:"quotes"`
	PriceSvc    PriceServiceConfig `yaml:"priceService"`
	Rewards     RewardsConfig      `yaml:"rewards"`
	Proxy       ProxyConfig        `yaml:"proxy"`
	Performance PerformanceConfig  `yaml:"performance"`
}

// ActiveNetwork returns the network matching the identifier, defaulting to the
// first configured network when the identifier is unknown or empty.
func (c *Config) ActiveNetwork(identifier string) NetworkConfig {
	for _, n := range c.Networks {
		if n.Identifier == identifier {
			return n
		}
	}
	if len(c.Networks) > 0 {
		return c.Networks[0]
	}
	return NetworkConfig{}
}

// Load reads the YAML configuration file from the given path and unmarshals it.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config data from %s: %w", path, err)
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
	}
	if cfg.Server.ReadTimeout <= 0 {
		cfg.Server.ReadTimeout = 15
	}
	if cfg.Server.WriteTimeout <= 0 {
		cfg.Server.WriteTimeout = 60
	}
	if cfg.Server.IdleTimeout <= 0 {
		cfg.Server.IdleTimeout = 60
	}

	if len(cfg.Networks) == 0 {
		cfg.Networks = []NetworkConfig{
			{
				Name:        "Movement Mainnet",
				Identifier:  "mainnet",
				ChainID:     126,
				IndexerURL:  "https://indexer.mainnet.movementnetwork.xyz/v1/graphql",
				FullnodeURL: "https://mainnet.movementnetwork.xyz/v1",
			},
			{
				Name:        "Movement Testnet",
				Identifier:  "testnet",
				ChainID:     30732,
				IndexerURL:  "https://indexer.testnet.movementnetwork.xyz/v1/graphql",
				FullnodeURL: "https://testnet.movementnetwork.xyz/v1",
			},
		}
	}

	if cfg.Quotes.BaseURL == "" {
		cfg.Quotes.BaseURL = "https://api.coingecko.com/api/v3"
	}
	if cfg.Quotes.RequestTimeoutMillis == 0 {
		cfg.Quotes.RequestTimeoutMillis = 10000
	}
	if cfg.Quotes.MaxRetries <= 0 {
		cfg.Quotes.MaxRetries = 3
	}

	if cfg.PriceSvc.CacheTTLSeconds <= 0 {
		cfg.PriceSvc.CacheTTLSeconds = 300
	}
	if cfg.PriceSvc.RateCacheTTLMinutes <= 0 {
		cfg.PriceSvc.RateCacheTTLMinutes = 60
	}
	if cfg.PriceSvc.FallbackMovePrice == 0 {
		cfg.PriceSvc.FallbackMovePrice = 2.30
	}

	if cfg.Rewards.ContractAddress == "" {
		cfg.Rewards.ContractAddress = "0x113a1769acc5ce21b5ece6f9533eef6dd34c758911fa5235124c87ff1298633b"
	}
	if cfg.Rewards.PageSize <= 0 {
		cfg.Rewards.PageSize = 100
	}
	if cfg.Rewards.MaxPages <= 0 {
		cfg.Rewards.MaxPages = 20
	}
	if cfg.Rewards.PagesPerSecond <= 0 {
		cfg.Rewards.PagesPerSecond = 10
	}

	if cfg.Proxy.TimeoutSeconds <= 0 {
		cfg.Proxy.TimeoutSeconds = 45
	}

	if cfg.Performance.MaxConcurrentRoutines <= 0 {
		cfg.Performance.MaxConcurrentRoutines = 10
	}
	if cfg.Performance.FetchTimeoutSeconds <= 0 {
		cfg.Performance.FetchTimeoutSeconds = 30
	}
	if cfg.Performance.UpstreamTimeoutSeconds <= 0 {
		cfg.Performance.UpstreamTimeoutSeconds = 30
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}
