package store

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type storage interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

func testStorage(t *testing.T, s storage) {
	ctx := context.Background()

	t.Run("read empty", func(t *testing.T) {
		_, err := s.Get(ctx, "missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("write and read", func(t *testing.T) {
		value := []byte(`{"easy":35,"medium":null,"hard":null}`)
		require.NoError(t, s.Set(ctx, "minesweeperBestScores", value))

		got, err := s.Get(ctx, "minesweeperBestScores")
		require.NoError(t, err)
		assert.Equal(t, value, got)
	})

	t.Run("overwrite", func(t *testing.T) {
		key := "minesweeperBestScores:alice"
		require.NoError(t, s.Set(ctx, key, []byte("first")))
		require.NoError(t, s.Set(ctx, key, []byte("second")))

		got, err := s.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, "second", string(got))
	})

	t.Run("many keys", func(t *testing.T) {
		r := rand.New(rand.NewPCG(1, 2))
		want := make(map[string][]byte)
		for i := range 20 {
			key := fmt.Sprintf("key/%d:%d", i, r.IntN(1000))
			value := []byte(fmt.Sprint(r.Int64()))
			want[key] = value
			require.NoError(t, s.Set(ctx, key, value))
		}
		for key, value := range want {
			got, err := s.Get(ctx, key)
			require.NoError(t, err)
			assert.Equal(t, value, got, key)
		}
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, "doomed", []byte("x")))
		require.NoError(t, s.Delete(ctx, "doomed"))
		require.NoError(t, s.Delete(ctx, "doomed"))

		_, err := s.Get(ctx, "doomed")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestMemory(t *testing.T) {
	testStorage(t, NewMemory())
}

func TestMemoryCopiesValues(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	value := []byte("abc")
	require.NoError(t, m.Set(ctx, "k", value))
	value[0] = 'x'

	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
}

func TestFile(t *testing.T) {
	f, err := NewFile(filepath.Join(t.TempDir(), "scores"))
	require.NoError(t, err)
	testStorage(t, f)

	entries, err := os.ReadDir(f.dir)
	require.NoError(t, err)
	for _, entry := range entries {
		assert.NotContains(t, entry.Name(), ".tmp-")
	}
}

func TestFileEmptyDir(t *testing.T) {
	_, err := NewFile("")
	assert.ErrorIs(t, err, ErrBadName)
}

func setupTestPostgres(t *testing.T) *Postgres {
	t.Helper()

	dbUrl, ok := os.LookupEnv("TEST_DATABASE_URL")
	if !ok {
		t.Skip("TEST_DATABASE_URL is not set")
	}
	ctx := context.Background()
	table := fmt.Sprintf("kv_store_test_%d", rand.Uint32())
	pg, err := NewPostgres(ctx, dbUrl, table)
	require.NoError(t, err)
	require.NoError(t, pg.Ping(ctx))

	t.Cleanup(func() {
		pg.db.Exec(ctx, `DROP TABLE IF EXISTS `+pg.table+`;`)
		pg.Close()
	})
	return pg
}

func TestPostgres(t *testing.T) {
	testStorage(t, setupTestPostgres(t))
}

func TestPostgresBadTable(t *testing.T) {
	_, err := NewPostgres(context.Background(), "postgres://localhost/db", "")
	assert.ErrorIs(t, err, ErrBadName)
}

func TestMigrate(t *testing.T) {
	dbUrl, ok := os.LookupEnv("TEST_DATABASE_URL")
	if !ok {
		t.Skip("TEST_DATABASE_URL is not set")
	}
	require.NoError(t, Migrate(dbUrl))
	require.NoError(t, Migrate(dbUrl))

	ctx := context.Background()
	pg, err := NewPostgres(ctx, dbUrl, DefaultTable)
	require.NoError(t, err)
	defer pg.Close()

	require.NoError(t, pg.Set(ctx, "migrated", []byte("yes")))
	got, err := pg.Get(ctx, "migrated")
	require.NoError(t, err)
	assert.Equal(t, "yes", string(got))
	require.NoError(t, pg.Delete(ctx, "migrated"))
}
