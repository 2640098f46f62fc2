package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kitchenbot/internal/llm"
	"kitchenbot/internal/models"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "sqlite3", cfg.Database.Driver)
	assert.Equal(t, 400*time.Millisecond, cfg.Agent.StepGap)
	assert.Len(t, cfg.Kitchen.Layout, 15)
}

func TestLoadFileOverDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9000
kitchen:
  order_lifetime: 45s
  menu: [salad]
agent:
  cooldown: 1s
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 100*time.Millisecond, cfg.Server.Tick, "unset fields keep their defaults")
	assert.Equal(t, 45*time.Second, cfg.Kitchen.OrderLifetime)
	assert.Equal(t, []models.ItemType{models.ItemSalad}, cfg.Kitchen.Menu)
	assert.Equal(t, time.Second, cfg.Agent.Cooldown)
	assert.Equal(t, 400*time.Millisecond, cfg.Agent.StepGap)
	assert.Len(t, cfg.Kitchen.Layout, 15)
}

func TestLoadSampleConfig(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "configs", "config.yaml"))
	require.NoError(t, err)
	assert.Len(t, cfg.Kitchen.Menu, 3)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("KITCHENBOT_PORT", "7070")
	t.Setenv("DATABASE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "host=db user=kitchen dbname=runs sslmode=disable")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("KITCHENBOT_SEED", "99")
	t.Setenv("KITCHENBOT_METRICS_PORT", "not-a-number")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
	assert.Equal(t, int64(99), cfg.Kitchen.Seed)
	assert.Equal(t, 9090, cfg.Metrics.Port, "unparsable values are ignored")
}

func TestLLMProviderEnv(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "azure")
	t.Setenv("AZURE_OPENAI_API_KEY", "azure-key")
	t.Setenv("AZURE_OPENAI_ENDPOINT", "https://kitchen.openai.azure.com")
	t.Setenv("AZURE_OPENAI_DEPLOYMENT_NAME", "debrief")
	t.Setenv("OPENAI_API_KEY", "openai-key")

	cfg, err := Load(writeConfig(t, "llm:\n  enabled: true\n"))
	require.NoError(t, err)
	assert.Equal(t, llm.AzureProvider, cfg.LLM.Provider)
	assert.Equal(t, "azure-key", cfg.LLM.Token)
	assert.Equal(t, "debrief", cfg.LLM.Deployment)
}

func TestLoadErrors(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	tests := []struct {
		name string
		body string
	}{
		{"bad yaml", "server: [1, 2"},
		{"bad driver", "database:\n  driver: mysql\n"},
		{"llm without token", "llm:\n  enabled: true\n"},
		{"azure without endpoint", "llm:\n  enabled: true\n  provider: azure\n  token: k\n"},
		{"bad kitchen", "kitchen:\n  interact_range: 0\n"},
		{"bad port", "server:\n  port: -1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestCatalog(t *testing.T) {
	cfg := Default()
	catalog, err := cfg.Catalog()
	require.NoError(t, err)
	_, ok := catalog.RecipeFor(models.ItemBurger)
	assert.True(t, ok)

	cfg.RecipesFile = filepath.Join(t.TempDir(), "missing.yaml")
	_, err = cfg.Catalog()
	assert.Error(t, err)
}
