package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "usb", cfg.Belt.Connection)
	assert.Equal(t, 50, cfg.Belt.PeriodMs)
	assert.Equal(t, "127.0.0.1:53877", cfg.Belt.UnityAddr)
	assert.Equal(t, 50, cfg.Analysis.WindowSize)
	assert.Equal(t, "0.0.0.0:53878", cfg.Bridge.ListenAddr)
	assert.Equal(t, "127.0.0.1:53879", cfg.Bridge.UnityAddr)

	// 可选组件默认全部禁用
	assert.Empty(t, cfg.Database.Host)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Empty(t, cfg.MQTT.Broker)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("BELT_PERIOD_MS", "100")
	t.Setenv("BELT_UNITY_ADDR", "10.0.0.5:9000")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("BRIDGE_MQTT_BROKER", "mqtt://broker:1883")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 100, cfg.Belt.PeriodMs)
	assert.Equal(t, "10.0.0.5:9000", cfg.Belt.UnityAddr)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, "mqtt://broker:1883", cfg.MQTT.Broker)
}

func TestLoad_InvalidPeriod(t *testing.T) {
	t.Setenv("BELT_PERIOD_MS", "-5")

	_, err := Load()
	assert.Error(t, err)
}

func TestDatabaseConfig_GetDSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "db.local",
		Port:     5432,
		User:     "postgres",
		Password: "secret",
		Database: "breath",
		SSLMode:  "disable",
	}
	assert.Equal(t,
		"host=db.local port=5432 user=postgres password=secret dbname=breath sslmode=disable",
		cfg.GetDSN(),
	)
}
