package db

import (
	"testing"

	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrations(t *testing.T) {
	source, err := iofs.New(migrations, "migrations")
	require.NoError(t, err)
	t.Cleanup(func() { _ = source.Close() })

	first, err := source.First()
	require.NoError(t, err)
	assert.Equal(t, uint(1), first)

	next, err := source.Next(first)
	require.NoError(t, err)
	assert.Equal(t, uint(2), next)

	body, ident, err := source.ReadUp(next)
	require.NoError(t, err)
	t.Cleanup(func() { _ = body.Close() })
	assert.Equal(t, "create_customer_events", ident)
}

func TestMigrateRequiresHandle(t *testing.T) {
	require.Error(t, Migrate(nil))
}
