package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeSeed(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600))
}

func TestSeedExecutesFilesInOrder(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	dir := t.TempDir()
	writeSeed(t, dir, "a.sql", "INSERT INTO customers (first_name) VALUES ('A');")
	writeSeed(t, dir, "b.sql", "INSERT INTO customers (first_name) VALUES ('B');")

	mock.ExpectExec(regexp.QuoteMeta("VALUES ('A')")).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("VALUES ('B')")).WillReturnResult(sqlmock.NewResult(2, 1))

	require.NoError(t, seed(context.Background(), conn, dir, []string{"a.sql", "b.sql"}, zap.NewNop()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeedStopsOnFailure(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	dir := t.TempDir()
	writeSeed(t, dir, "a.sql", "INSERT bad")
	writeSeed(t, dir, "b.sql", "INSERT INTO customers (first_name) VALUES ('B');")

	mock.ExpectExec("INSERT bad").WillReturnError(errors.New("syntax error"))

	err = seed(context.Background(), conn, dir, []string{"a.sql", "b.sql"}, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "a.sql")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeedMissingFile(t *testing.T) {
	conn, _, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	err = seed(context.Background(), conn, t.TempDir(), []string{"nope.sql"}, zap.NewNop())
	assert.ErrorContains(t, err, "read")
}

func TestBundledSeedFileExists(t *testing.T) {
	for _, name := range seedFiles {
		_, err := os.Stat(filepath.Join("..", "..", "seed", name))
		assert.NoError(t, err, name)
	}
}

func TestBundledSeedLeavesJohnFree(t *testing.T) {
	raw, err := os.ReadFile(filepath.Join("..", "..", "seed", "customers.sql"))
	require.NoError(t, err)
	body := string(raw)

	names := regexp.MustCompile(`\('([A-Za-z]+)',`).FindAllStringSubmatch(body, -1)
	require.NotEmpty(t, names)
	seen := map[string]bool{}
	for _, m := range names {
		assert.NotEqual(t, "John", m[1])
		assert.False(t, seen[m[1]], "duplicate first name %s", m[1])
		seen[m[1]] = true
	}
	assert.NotContains(t, body, "@x.com")
	assert.Contains(t, body, "WHERE NOT EXISTS")
}
