package basic

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sqlbean/config"
	core "sqlbean/data/db"
)

func newTestProvider(t *testing.T) *Provider {
	t.Helper()
	p, err := New(config.DatabaseConfig{
		Path:          filepath.Join(t.TempDir(), "test.db"),
		BusyTimeoutMS: 1000,
	})
	require.NoError(t, err)
	return p
}

func TestNew_RequiresPath(t *testing.T) {
	_, err := New(config.DatabaseConfig{})
	assert.Error(t, err)
}

func TestProvider_WriteThenRead(t *testing.T) {
	ctx := context.Background()
	p := newTestProvider(t)

	w, err := core.Open(ctx, p, core.ModeWrite)
	require.NoError(t, err)
	_, err = w.ExecContext(ctx, "CREATE TABLE t (v INTEGER)")
	require.NoError(t, err)
	_, err = w.ExecContext(ctx, "INSERT INTO t (v) VALUES (?)", 42)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	r, err := core.Open(ctx, p, core.ModeRead)
	require.NoError(t, err)
	defer r.Close()

	var v int
	require.NoError(t, r.GetContext(ctx, &v, "SELECT v FROM t"))
	assert.Equal(t, 42, v)
}

// TestProvider_ReadHandleRejectsWrites 只读句柄拒绝写入
func TestProvider_ReadHandleRejectsWrites(t *testing.T) {
	ctx := context.Background()
	p := newTestProvider(t)

	r, err := p.ReadableHandle(ctx)
	require.NoError(t, err)
	defer r.Close()

	_, err = r.ExecContext(ctx, "CREATE TABLE t (v INTEGER)")
	assert.Error(t, err)
}

func TestProvider_ConnectionFailure(t *testing.T) {
	p, err := New(config.DatabaseConfig{Path: filepath.Join(t.TempDir(), "missing", "dir", "x.db")})
	require.NoError(t, err)

	_, err = p.WritableHandle(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrConnectionFailed))
}

func TestOpen_InvalidMode(t *testing.T) {
	_, err := core.Open(context.Background(), newTestProvider(t), core.ModeNone)
	assert.Error(t, err)
}

func TestPragmaAssignment(t *testing.T) {
	assert.Equal(t, "busy_timeout = 100", pragmaAssignment("busy_timeout(100)"))
	assert.Equal(t, "foreign_keys", pragmaAssignment("foreign_keys"))
}
