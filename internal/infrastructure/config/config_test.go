package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	// Save original env vars and restore after tests
	originalEnv := map[string]string{
		"STOREFRONT_APP_NAME":                os.Getenv("STOREFRONT_APP_NAME"),
		"STOREFRONT_APP_ENV":                 os.Getenv("STOREFRONT_APP_ENV"),
		"STOREFRONT_APP_PORT":                os.Getenv("STOREFRONT_APP_PORT"),
		"STOREFRONT_DATABASE_DRIVER":         os.Getenv("STOREFRONT_DATABASE_DRIVER"),
		"STOREFRONT_DATABASE_HOST":           os.Getenv("STOREFRONT_DATABASE_HOST"),
		"STOREFRONT_DATABASE_PORT":           os.Getenv("STOREFRONT_DATABASE_PORT"),
		"STOREFRONT_DATABASE_PASSWORD":       os.Getenv("STOREFRONT_DATABASE_PASSWORD"),
		"STOREFRONT_DATABASE_SSLMODE":        os.Getenv("STOREFRONT_DATABASE_SSLMODE"),
		"STOREFRONT_DATABASE_MAX_OPEN_CONNS": os.Getenv("STOREFRONT_DATABASE_MAX_OPEN_CONNS"),
		"STOREFRONT_DATABASE_MAX_IDLE_CONNS": os.Getenv("STOREFRONT_DATABASE_MAX_IDLE_CONNS"),
		"STOREFRONT_LOCK_BACKEND":            os.Getenv("STOREFRONT_LOCK_BACKEND"),
		"STOREFRONT_LOCK_MAX_WAIT":           os.Getenv("STOREFRONT_LOCK_MAX_WAIT"),
		"STOREFRONT_CART_CHECKOUT_FLOW":      os.Getenv("STOREFRONT_CART_CHECKOUT_FLOW"),
	}

	defer func() {
		for k, v := range originalEnv {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	}()

	clearEnv := func() {
		for k := range originalEnv {
			os.Unsetenv(k)
		}
	}

	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearEnv()

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "storefront", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "postgres", cfg.Database.Driver)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "storefront", cfg.Database.DBName)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, "memory", cfg.Lock.Backend)
		assert.Equal(t, 5*time.Second, cfg.Lock.MaxWait)
		assert.Equal(t, "default", cfg.Cart.CheckoutFlow)
		assert.Equal(t, 1024, cfg.Cart.ResolverCacheSize)
		assert.Equal(t, 10*time.Minute, cfg.Cart.ResolverCacheTTL)
		assert.Empty(t, cfg.Cart.InvalidationChannel)
	})

	t.Run("loads values from environment variables with STOREFRONT prefix", func(t *testing.T) {
		clearEnv()
		os.Setenv("STOREFRONT_APP_PORT", "9000")
		os.Setenv("STOREFRONT_DATABASE_DRIVER", "sqlite")
		os.Setenv("STOREFRONT_LOCK_BACKEND", "redis")
		os.Setenv("STOREFRONT_LOCK_MAX_WAIT", "2s")
		os.Setenv("STOREFRONT_CART_CHECKOUT_FLOW", "express")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "sqlite", cfg.Database.Driver)
		assert.Equal(t, "storefront.db", cfg.Database.DSN())
		assert.Equal(t, "redis", cfg.Lock.Backend)
		assert.Equal(t, 2*time.Second, cfg.Lock.MaxWait)
		assert.Equal(t, "express", cfg.Cart.CheckoutFlow)
	})

	t.Run("rejects unknown lock backend", func(t *testing.T) {
		clearEnv()
		os.Setenv("STOREFRONT_LOCK_BACKEND", "zookeeper")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "lock.backend")
	})

	t.Run("rejects idle conns above open conns", func(t *testing.T) {
		clearEnv()
		os.Setenv("STOREFRONT_DATABASE_MAX_OPEN_CONNS", "5")
		os.Setenv("STOREFRONT_DATABASE_MAX_IDLE_CONNS", "10")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot exceed")
	})

	t.Run("production requires redis lock", func(t *testing.T) {
		clearEnv()
		os.Setenv("STOREFRONT_APP_ENV", "production")
		os.Setenv("STOREFRONT_DATABASE_PASSWORD", "secret")
		os.Setenv("STOREFRONT_DATABASE_SSLMODE", "require")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "lock.backend must be redis")

		os.Setenv("STOREFRONT_LOCK_BACKEND", "redis")
		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "production", cfg.App.Env)
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{
		Driver:   "postgres",
		Host:     "db",
		Port:     5432,
		User:     "shop",
		Password: "p@ss word",
		DBName:   "storefront",
		SSLMode:  "disable",
	}
	assert.Equal(t, "postgres://shop:p%40ss%20word@db:5432/storefront?sslmode=disable", d.DSN())
}

func TestRedisConfig_Addr(t *testing.T) {
	r := RedisConfig{Host: "cache", Port: 6380}
	assert.Equal(t, "cache:6380", r.Addr())
}
