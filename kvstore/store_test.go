package kvstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stores(t *testing.T) map[string]Store {
	fs, err := NewFile(filepath.Join(t.TempDir(), "kv"))
	require.NoError(t, err)

	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { client.Close() })

	return map[string]Store{
		"memory": NewMemory(),
		"file":   fs,
		"redis":  NewRedis(client, "ledsense:"),
	}
}

func TestStores(t *testing.T) {
	for name, store := range stores(t) {
		store := store
		t.Run(name, func(t *testing.T) {
			require := require.New(t)

			w, err := store.Open("ZSCS2016C_calib")
			require.NoError(err)

			_, ok, err := w.GetString("a")
			require.NoError(err)
			require.False(ok)

			require.NoError(w.Set("a", `{"mins":[1,2,3,4,5],"maxs":[6,7,8,9,10]}`))

			// Staged writes are visible to the writer only
			v, ok, err := w.GetString("a")
			require.NoError(err)
			require.True(ok)
			require.Equal(`{"mins":[1,2,3,4,5],"maxs":[6,7,8,9,10]}`, v)

			r, err := store.Open("ZSCS2016C_calib")
			require.NoError(err)
			_, ok, err = r.GetString("a")
			require.NoError(err)
			require.False(ok)

			require.NoError(w.Commit())

			v, ok, err = r.GetString("a")
			require.NoError(err)
			require.True(ok)
			require.Equal(`{"mins":[1,2,3,4,5],"maxs":[6,7,8,9,10]}`, v)

			other, err := store.Open("other")
			require.NoError(err)
			_, ok, err = other.GetString("a")
			require.NoError(err)
			require.False(ok)

			// Empty commits are harmless
			require.NoError(other.Commit())
		})
	}
}

func TestFileLayout(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewFile(dir)
	require.NoError(t, err)

	b, errGo := fs.Open("ZSCS2016C_calib")
	require.NoError(t, errGo)
	require.NoError(t, b.Set("left", "1"))
	require.NoError(t, b.Set("right", "2"))
	require.NoError(t, b.Commit())

	data, errGo := os.ReadFile(filepath.Join(dir, "ZSCS2016C_calib.yaml"))
	require.NoError(t, errGo)
	assert.Equal(t, "left: \"1\"\nright: \"2\"\n", string(data))

	entries, errGo := os.ReadDir(dir)
	require.NoError(t, errGo)
	assert.Len(t, entries, 1, "temporary files must not be left behind")
}

func TestFileInvalidNamespace(t *testing.T) {
	fs, err := NewFile(t.TempDir())
	require.NoError(t, err)

	for _, ns := range []string{"", "..", "a/b", `a\b`} {
		_, errGo := fs.Open(ns)
		assert.Error(t, errGo, ns)
	}
}

func TestFileCorrupt(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ns.yaml"), []byte("{{{"), 0o644))

	fs, err := NewFile(dir)
	require.NoError(t, err)
	b, errGo := fs.Open("ns")
	require.NoError(t, errGo)

	_, _, errGo = b.GetString("a")
	assert.Error(t, errGo)
}

func TestRedisLayout(t *testing.T) {
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	defer client.Close()

	b, err := NewRedis(client, "ledsense:").Open("ZSCS2016C_calib")
	require.NoError(t, err)
	require.NoError(t, b.Set("left", "x"))
	require.NoError(t, b.Commit())

	assert.Equal(t, "x", srv.HGet("ledsense:ZSCS2016C_calib", "left"))
}

func TestRedisUnavailable(t *testing.T) {
	srv := miniredis.RunT(t)
	addr := srv.Addr()

	store, err := DialRedis(addr, "")
	require.NoError(t, err)
	defer store.Close()

	srv.Close()

	b, errGo := store.Open("ns")
	require.NoError(t, errGo)
	_, _, errGo = b.GetString("a")
	assert.Error(t, errGo)
}
