package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sqlbean/errors"
)

func TestRun_ExecQueryTables(t *testing.T) {
	ctx := context.Background()
	dbFile := filepath.Join(t.TempDir(), "cli.db")

	var out bytes.Buffer
	require.NoError(t, run(ctx, []string{"-db", dbFile, "-log", "error", "exec", "CREATE TABLE kv (k VARCHAR, v INTEGER)"}, &out))

	out.Reset()
	require.NoError(t, run(ctx, []string{"-db", dbFile, "exec", "INSERT INTO kv (k, v) VALUES (?, ?)", "a", "1"}, &out))
	var ex execResult
	require.NoError(t, json.Unmarshal(out.Bytes(), &ex))
	assert.Equal(t, int64(1), ex.RowsAffected)

	out.Reset()
	require.NoError(t, run(ctx, []string{"-db", dbFile, "query", "SELECT k, v, NULL AS n FROM kv WHERE k = ?", "a"}, &out))
	var qr queryResult
	require.NoError(t, json.Unmarshal(out.Bytes(), &qr))
	assert.Equal(t, []string{"k", "v", "n"}, qr.Columns)
	require.Len(t, qr.Rows, 1)
	assert.Equal(t, "a", *qr.Rows[0][0])
	assert.Equal(t, "1", *qr.Rows[0][1])
	assert.Nil(t, qr.Rows[0][2])

	out.Reset()
	require.NoError(t, run(ctx, []string{"-db", dbFile, "tables"}, &out))
	assert.Contains(t, out.String(), "CREATE TABLE kv")
}

func TestRun_Errors(t *testing.T) {
	ctx := context.Background()
	dbFile := filepath.Join(t.TempDir(), "cli.db")
	var out bytes.Buffer

	for _, argv := range [][]string{
		{"-db", dbFile},
		{"-db", dbFile, "drop"},
		{"-db", dbFile, "query"},
	} {
		err := run(ctx, argv, &out)
		require.Error(t, err, argv)
		assert.True(t, errors.IsErrorCode(err, errors.ErrCodeInvalidInput), argv)
	}
	assert.Error(t, run(ctx, []string{"-db", dbFile, "-log", "loud", "tables"}, &out))
	assert.Error(t, run(ctx, []string{"tables"}, &out))
	assert.Error(t, run(ctx, []string{"-config", filepath.Join(t.TempDir(), "none.yaml"), "tables"}, &out))
}
