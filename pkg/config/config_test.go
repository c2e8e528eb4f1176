package config

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, decimal.RequireFromString("0.15").Equal(cfg.Fiscal.TaxRate))
	assert.Equal(t, "000-001-01", cfg.Fiscal.NumberPrefix)
	assert.Equal(t, "./storage/facturas", cfg.Documents.Dir)
	assert.True(t, cfg.Metrics.Enabled)
	assert.False(t, cfg.DB.AutoMigrate)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("FISCAL_TAX_RATE", "0.18")
	t.Setenv("FISCAL_NUMBER_PREFIX", "001-002-01")
	t.Setenv("ISSUER_RTN", "08019999123456")
	t.Setenv("DB_AUTO_MIGRATE", "true")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("METRICS_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, decimal.RequireFromString("0.18").Equal(cfg.Fiscal.TaxRate))
	assert.Equal(t, "001-002-01", cfg.Fiscal.NumberPrefix)
	assert.Equal(t, "08019999123456", cfg.Fiscal.IssuerRTN)
	assert.True(t, cfg.DB.AutoMigrate)
	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.False(t, cfg.Metrics.Enabled)
}

func TestLoad_TaxRateInvalida(t *testing.T) {
	for _, v := range []string{"abc", "-0.1", "1", "15"} {
		t.Run(v, func(t *testing.T) {
			t.Setenv("FISCAL_TAX_RATE", v)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestDBConfig_ConnectionString(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "optica", Password: "p@ss#1", DBName: "optica", SSLMode: "disable"}
	assert.Equal(t, "postgres://optica:p%40ss%231@db:5432/optica?sslmode=disable", c.ConnectionString())

	c.DatabaseURL = "postgres://u:p@h:1/d"
	assert.Equal(t, "postgres://u:p@h:1/d", c.ConnectionString())
}
