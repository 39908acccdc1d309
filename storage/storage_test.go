package storage

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type backend interface {
	Put(key, value string) error
	Get(key string) (string, error)
	Delete(key string) error
	DeleteAll() error
	Contains(key string) (bool, error)
	Count() (int64, error)
}

func backends(t *testing.T) map[string]backend {
	t.Helper()

	mem, err := NewBadger(BadgerOptions{Namespace: "test", InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = mem.Close() })

	disk, err := NewBadger(BadgerOptions{Namespace: "test", Dir: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = disk.Close() })

	return map[string]backend{
		"memory":          NewMemory(),
		"badger/inmemory": mem,
		"badger/disk":     disk,
	}
}

func TestPutGet(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Put("hello", "world"))

			got, err := s.Get("hello")
			require.NoError(t, err)
			assert.Equal(t, "world", got)

			require.NoError(t, s.Put("hello", "again"))
			got, err = s.Get("hello")
			require.NoError(t, err)
			assert.Equal(t, "again", got)
		})
	}
}

func TestGetMissing(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Get("missing")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestDelete(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Put("k", "v"))
			require.NoError(t, s.Delete("k"))

			ok, err := s.Contains("k")
			require.NoError(t, err)
			assert.False(t, ok)

			assert.NoError(t, s.Delete("k"), "deleting an absent key")
		})
	}
}

func TestCountAndDeleteAll(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			for i := 0; i < 5; i++ {
				require.NoError(t, s.Put(fmt.Sprintf("k%d", i), "v"))
			}
			n, err := s.Count()
			require.NoError(t, err)
			assert.Equal(t, int64(5), n)

			require.NoError(t, s.DeleteAll())

			n, err = s.Count()
			require.NoError(t, err)
			assert.Zero(t, n)
		})
	}
}

func TestBadgerNamespaceIsolation(t *testing.T) {
	dir := t.TempDir()

	a, err := NewBadger(BadgerOptions{Namespace: "a", Dir: dir})
	require.NoError(t, err)
	require.NoError(t, a.Put("shared", "from a"))
	require.NoError(t, a.Close())

	b, err := NewBadger(BadgerOptions{Namespace: "b", Dir: dir})
	require.NoError(t, err)
	defer b.Close()

	ok, err := b.Contains("shared")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, b.Put("own", "from b"))
	require.NoError(t, b.DeleteAll())

	n, err := b.Count()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestBadgerPersists(t *testing.T) {
	dir := t.TempDir()

	db, err := NewBadger(BadgerOptions{Namespace: "ns", Dir: dir})
	require.NoError(t, err)
	require.NoError(t, db.Put("Hello", "World"))
	require.NoError(t, db.Close())

	db, err = NewBadger(BadgerOptions{Namespace: "ns", Dir: dir})
	require.NoError(t, err)
	defer db.Close()

	got, err := db.Get("Hello")
	require.NoError(t, err)
	assert.Equal(t, "World", got)
}

func TestBadgerClosed(t *testing.T) {
	db, err := NewBadger(BadgerOptions{InMemory: true})
	require.NoError(t, err)

	require.NoError(t, db.Close())
	assert.NoError(t, db.Close(), "second close")

	assert.ErrorIs(t, db.Put("k", "v"), ErrClosed)
	_, err = db.Get("k")
	assert.ErrorIs(t, err, ErrClosed)
	_, err = db.Count()
	assert.ErrorIs(t, err, ErrClosed)
}

func TestBadgerCleanup(t *testing.T) {
	mem, err := NewBadger(BadgerOptions{InMemory: true})
	require.NoError(t, err)
	defer mem.Close()
	assert.NoError(t, mem.Cleanup(), "in-memory gc is skipped")

	disk, err := NewBadger(BadgerOptions{Dir: t.TempDir()})
	require.NoError(t, err)
	defer disk.Close()
	require.NoError(t, disk.Put("k", "v"))
	assert.NoError(t, disk.Cleanup(), "nothing to rewrite")
}

func TestBadgerRequiresDir(t *testing.T) {
	_, err := NewBadger(BadgerOptions{})
	assert.Error(t, err)
}
