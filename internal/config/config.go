package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"kitchenbot/internal/agents"
	"kitchenbot/internal/kitchen"
	"kitchenbot/internal/llm"
	"kitchenbot/internal/recipes"
)

// Config represents the application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	LLM      llm.Config     `yaml:"llm"`

	Kitchen     kitchen.Config `yaml:"kitchen"`
	Agent       agents.Config  `yaml:"agent"`
	RecipesFile string         `yaml:"recipes_file"`
}

type ServerConfig struct {
	Port int    `yaml:"port"`
	Mode string `yaml:"mode"`
	// Tick is the wall-clock interval between live game updates
	Tick time.Duration `yaml:"tick"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Port    int    `yaml:"port"`
	Path    string `yaml:"path"`
}

type DatabaseConfig struct {
	Enabled bool   `yaml:"enabled"`
	Driver  string `yaml:"driver"`
	DSN     string `yaml:"dsn"`
}

// AuthConfig protects the evaluation endpoints. An empty secret disables auth.
type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

// Default returns the configuration used when no file is given
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: 8080,
			Mode: "release",
			Tick: 100 * time.Millisecond,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Port:    9090,
			Path:    "/metrics",
		},
		Database: DatabaseConfig{
			Enabled: true,
			Driver:  "sqlite3",
			DSN:     "kitchenbot.db",
		},
		Auth: AuthConfig{
			TokenTTL: 24 * time.Hour,
		},
		LLM: llm.Config{
			Provider: llm.OpenAIProvider,
			Model:    "gpt-4o-mini",
		},
		Kitchen: kitchen.DefaultConfig(),
		Agent:   agents.DefaultConfig(),
	}
}

// Load reads a YAML file over the defaults and applies environment
// overrides. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Server.Port = getEnvInt("KITCHENBOT_PORT", c.Server.Port)
	c.Server.Mode = getEnv("GIN_MODE", c.Server.Mode)
	c.Metrics.Port = getEnvInt("KITCHENBOT_METRICS_PORT", c.Metrics.Port)

	c.Database.Driver = getEnv("DATABASE_DRIVER", c.Database.Driver)
	c.Database.DSN = getEnv("DATABASE_URL", c.Database.DSN)

	c.Auth.JWTSecret = getEnv("JWT_SECRET", c.Auth.JWTSecret)

	c.LLM.Provider = llm.ProviderType(getEnv("LLM_PROVIDER", string(c.LLM.Provider)))
	c.LLM.Model = getEnv("LLM_MODEL", c.LLM.Model)
	c.LLM.BaseURL = getEnv("LLM_BASE_URL", c.LLM.BaseURL)
	switch c.LLM.Provider {
	case llm.AzureProvider:
		c.LLM.Token = getEnv("AZURE_OPENAI_API_KEY", c.LLM.Token)
		c.LLM.Endpoint = getEnv("AZURE_OPENAI_ENDPOINT", c.LLM.Endpoint)
		c.LLM.Deployment = getEnv("AZURE_OPENAI_DEPLOYMENT_NAME", c.LLM.Deployment)
	case llm.GitHubModelsProvider:
		c.LLM.Token = getEnv("GITHUB_TOKEN", c.LLM.Token)
	default:
		c.LLM.Token = getEnv("OPENAI_API_KEY", c.LLM.Token)
	}

	c.Kitchen.Seed = int64(getEnvInt("KITCHENBOT_SEED", int(c.Kitchen.Seed)))
	c.RecipesFile = getEnv("KITCHENBOT_RECIPES", c.RecipesFile)
}

// Validate checks the parts of the configuration that are not checked
// where they are used
func (c *Config) Validate() error {
	if c.Server.Port <= 0 {
		return errors.New("server port must be positive")
	}
	if c.Server.Tick <= 0 {
		return errors.New("server tick must be positive")
	}
	if c.Metrics.Enabled && c.Metrics.Port <= 0 {
		return errors.New("metrics port must be positive")
	}
	if c.Database.Enabled {
		switch c.Database.Driver {
		case "sqlite3", "postgres":
		default:
			return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
		}
	}
	if c.LLM.Enabled {
		if err := c.LLM.Validate(); err != nil {
			return fmt.Errorf("invalid llm config: %w", err)
		}
	}
	if err := c.Kitchen.Validate(); err != nil {
		return fmt.Errorf("invalid kitchen config: %w", err)
	}
	return nil
}

// Catalog loads the configured recipe file, or the built-in catalog
func (c *Config) Catalog() (*recipes.Catalog, error) {
	if c.RecipesFile == "" {
		return recipes.Default(), nil
	}
	return recipes.Load(c.RecipesFile)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
