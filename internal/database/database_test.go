package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pearll/pearll/config"
	"github.com/pearll/pearll/types"
)

func TestOpenInMemorySQLite(t *testing.T) {
	db, err := Open(config.DatabaseConfig{
		Driver:       "sqlite",
		DSN:          ":memory:",
		MaxOpenConns: 1,
	}, nil)
	require.NoError(t, err)
	require.NoError(t, Close(db))
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open(config.DatabaseConfig{Driver: "oracle"}, nil)
	require.Error(t, err)
	assert.Equal(t, types.ErrBadConfig, types.GetErrorCode(err))
}
