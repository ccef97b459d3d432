package database

import (
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDSNSetsRequiredFlags(t *testing.T) {
	cfg, err := mysql.ParseDSN(DSN("app", "secret", "db", "3306", "filmorate"))
	require.NoError(t, err)
	assert.True(t, cfg.ParseTime)
	assert.True(t, cfg.ClientFoundRows)
	assert.Equal(t, "db:3306", cfg.Addr)
	assert.Equal(t, "filmorate", cfg.DBName)
}

func TestNormalizeDSNAddsClientFoundRows(t *testing.T) {
	out, err := NormalizeDSN("root:pw@tcp(127.0.0.1:3306)/scratch")
	require.NoError(t, err)

	cfg, err := mysql.ParseDSN(out)
	require.NoError(t, err)
	assert.True(t, cfg.ClientFoundRows)
	assert.True(t, cfg.ParseTime)
	assert.Equal(t, "root", cfg.User)
	assert.Equal(t, "pw", cfg.Passwd)
	assert.Equal(t, "scratch", cfg.DBName)

	_, err = NormalizeDSN("not a dsn")
	assert.Error(t, err)
}
