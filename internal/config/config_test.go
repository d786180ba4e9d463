package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRequiresSecrets(t *testing.T) {
	t.Setenv("UPLOAD_DIR", t.TempDir())
	t.Setenv("JWT_SECRET", "")
	t.Setenv("ENCRYPTION_KEY", "")

	_, err := Load("")
	assert.Error(t, err)

	t.Setenv("JWT_SECRET", "secret")
	_, err = Load("")
	assert.EqualError(t, err, "ENCRYPTION_KEY is required")
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("UPLOAD_DIR", t.TempDir())
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("ENCRYPTION_KEY", "key")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.StoreDriver)
	assert.Equal(t, 1000, cfg.MaxMessageLength)
	assert.Equal(t, 50, cfg.DefaultPageLimit)
	assert.Equal(t, 100, cfg.MaxPageLimit)
	assert.Equal(t, 7*24*time.Hour, cfg.AccessTokenTTL())
	assert.Equal(t, "0.0.0.0:3000", cfg.HTTPAddr())
}

func TestLoadFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: 9000
store_driver: postgres
jwt_secret: from-file
encryption_key: file-key
cors_origins: ["https://ride.example"]
postgres:
  host: db
  user: ride
  password: p@ss
  db: rides
ws:
  send_buffer: 8
  write_timeout: 3s
`), 0o600))

	t.Setenv("UPLOAD_DIR", dir)
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("ENCRYPTION_KEY", "")
	t.Setenv("HTTP_PORT", "")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, "from-env", cfg.JWTSecret)
	assert.Equal(t, "file-key", cfg.EncryptKey)
	assert.Equal(t, []string{"https://ride.example"}, cfg.CORSOrigins)
	assert.Equal(t, 8, cfg.WS.SendBuffer)
	assert.Equal(t, 3*time.Second, cfg.WS.WriteTimeout)
	assert.Equal(t, "postgres://ride:p%40ss@db:5432/rides?sslmode=disable", cfg.DSN())
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("UPLOAD_DIR", t.TempDir())
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("ENCRYPTION_KEY", "key")
	t.Setenv("STORE_DRIVER", "mysql")

	_, err := Load("")
	assert.Error(t, err)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitList(" a, ,b "))
}

func TestLoadStoreDriverOption(t *testing.T) {
	t.Setenv("UPLOAD_DIR", t.TempDir())
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("ENCRYPTION_KEY", "key")
	t.Setenv("STORE_DRIVER", "sqlite")

	cfg, err := Load("", WithStoreDriver("postgres"))
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.StoreDriver, "option beats the environment")

	cfg, err = Load("", WithStoreDriver(""))
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.StoreDriver, "empty override is ignored")

	_, err = Load("", WithStoreDriver("mysql"))
	assert.Error(t, err, "overrides are validated")
}

func TestLoadBcryptCost(t *testing.T) {
	t.Setenv("UPLOAD_DIR", t.TempDir())
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("ENCRYPTION_KEY", "key")

	t.Setenv("BCRYPT_COST", "")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.BcryptCost)

	t.Setenv("BCRYPT_COST", "12")
	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.BcryptCost)

	t.Setenv("BCRYPT_COST", "2")
	_, err = Load("")
	assert.ErrorContains(t, err, "bcrypt cost")
}
