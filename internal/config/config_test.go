package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testYAML = `app:
  env: dev
telegram:
  token: "from-file"
  admin_id: 7
  bot_name: "testbot"
http:
  addr: ":8080"
postgres:
  dsn: "postgres://localhost/test"
metrics:
  enabled: false
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFromFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, testYAML))
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.Telegram.Token)
	assert.Equal(t, int64(7), cfg.Telegram.AdminID)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	t.Setenv("APP_TELEGRAM_TOKEN", "from-env")
	t.Setenv("APP_POSTGRES_DSN", "postgres://env/db")

	cfg, err := Load(writeConfig(t, testYAML))
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Telegram.Token)
	assert.Equal(t, "postgres://env/db", cfg.Postgres.DSN)
}

func TestLoadFailsWithoutToken(t *testing.T) {
	body := `telegram:
  token: ""
  admin_id: 7
`
	_, err := Load(writeConfig(t, body))
	assert.Error(t, err)
}

func TestLoadFailsWithoutAdmin(t *testing.T) {
	body := `telegram:
  token: "x"
  admin_id: 0
`
	_, err := Load(writeConfig(t, body))
	assert.Error(t, err)
}
