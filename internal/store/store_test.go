package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisHealthy(t *testing.T) {
	mr := miniredis.RunT(t)
	r := NewRedis(mr.Addr())
	defer r.Close()

	assert.True(t, r.Healthy(context.Background()))

	mr.Close()
	assert.False(t, r.Healthy(context.Background()))

	var none *Redis
	assert.False(t, none.Healthy(context.Background()))
	assert.NoError(t, none.Close())
}

func TestNewDBSQLite(t *testing.T) {
	if os.Getenv("INTEGRATION_TESTS") != "1" {
		t.Skip("set INTEGRATION_TESTS=1 to run sqlite tests")
	}
	db, err := NewDB(DriverSQLite, filepath.Join(t.TempDir(), "store.db"))
	require.NoError(t, err)
	assert.Equal(t, DriverSQLite, db.Driver)
	assert.True(t, db.Healthy(context.Background()))

	require.NoError(t, db.Close())
	assert.False(t, db.Healthy(context.Background()))
}

func TestNewDBRejectsUnknownDriver(t *testing.T) {
	_, err := NewDB("mysql", "x")
	assert.Error(t, err)
}
