package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_Defaults(t *testing.T) {
	cfg, err := fromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, StoragePostgres, cfg.Storage.Driver)
	assert.True(t, cfg.Storage.RunMigrations)
	assert.Equal(t, int64(1), cfg.IDGen.Node)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
}

func TestFromViper_Overrides(t *testing.T) {
	v := viper.New()
	v.Set("STORAGE_DRIVER", "MEMORY")
	v.Set("HTTP_PORT", "9090")
	v.Set("SNOWFLAKE_NODE", 7)
	v.Set("DB_MIGRATIONS", false)

	cfg, err := fromViper(v)
	require.NoError(t, err)

	assert.Equal(t, StorageMemory, cfg.Storage.Driver)
	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, int64(7), cfg.IDGen.Node)
	assert.False(t, cfg.Storage.RunMigrations)
}

func TestFromViper_DriverInvalido(t *testing.T) {
	v := viper.New()
	v.Set("STORAGE_DRIVER", "mongo")

	_, err := fromViper(v)
	assert.ErrorContains(t, err, "STORAGE_DRIVER")
}

func TestFromViper_NodoFueraDeRango(t *testing.T) {
	v := viper.New()
	v.Set("SNOWFLAKE_NODE", 2048)

	_, err := fromViper(v)
	assert.ErrorContains(t, err, "SNOWFLAKE_NODE")
}

func TestDBConfig_DSNEscapaPassword(t *testing.T) {
	c := DBConfig{User: "app", Password: "p@ss:w/rd", Host: "db", Port: 5432, DBName: "cargo", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%3Aw%2Frd@db:5432/cargo?sslmode=disable", c.DSN())

	c.DatabaseURL = "postgres://x@y/z"
	assert.Equal(t, "postgres://x@y/z", c.ConnectionString())
}
