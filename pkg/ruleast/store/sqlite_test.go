package store_test

import (
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/ruleast/pkg/ruleast/store"
)

func TestSQLiteStore_Persistence(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "rules.db")

	store1, err := store.NewSQLiteStore(dbPath)
	require.NoError(t, err)
	require.NoError(t, store1.Save(rule("r1", "age > 30")))
	require.NoError(t, store1.Close())

	// Reopen the database
	store2, err := store.NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer store2.Close()

	loaded, err := store2.Load("r1")
	require.NoError(t, err)
	assert.Equal(t, "age > 30", loaded.Text)
}

func TestSQLiteStore_MixedCompression(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "rules.db")

	compressed, err := store.NewSQLiteStore(dbPath, store.WithCompression())
	require.NoError(t, err)
	require.NoError(t, compressed.Save(rule("packed", "a = 1")))
	require.NoError(t, compressed.Close())

	plain, err := store.NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer plain.Close()
	require.NoError(t, plain.Save(rule("raw", "b = 2")))

	for _, id := range []string{"packed", "raw"} {
		loaded, err := plain.Load(id)
		require.NoError(t, err, id)
		assert.Equal(t, rule(id, "").Tree, loaded.Tree, id)
	}

	// Size reports the uncompressed tree length
	infos, err := plain.List()
	require.NoError(t, err)
	require.Len(t, infos, 2)
	for _, info := range infos {
		assert.Equal(t, int64(len(rule("", "").Tree)), info.Size)
	}
}

func TestSQLiteStore_InvalidPath(t *testing.T) {
	_, err := store.NewSQLiteStore("/nonexistent/path/db.sqlite")
	assert.Error(t, err)
}

func TestSQLiteStore_CloseIdempotent(t *testing.T) {
	s, err := store.NewSQLiteStore(":memory:")
	require.NoError(t, err)

	assert.NoError(t, s.Close())
	assert.NoError(t, s.Close())
}

func TestSQLiteStore_Concurrent(t *testing.T) {
	s, err := store.NewSQLiteStore(":memory:", store.WithCompression())
	require.NoError(t, err)
	defer s.Close()

	const numGoroutines = 20
	const numOps = 10

	var wg sync.WaitGroup
	errs := make(chan error, numGoroutines*numOps)
	for g := 0; g < numGoroutines; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < numOps; i++ {
				id := fmt.Sprintf("g%d-r%d", g, i)
				if err := s.Save(rule(id, "a = 1")); err != nil {
					errs <- err
					continue
				}
				if _, err := s.Load(id); err != nil {
					errs <- err
				}
			}
		}(g)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent operation failed: %v", err)
	}

	infos, err := s.List()
	require.NoError(t, err)
	assert.Len(t, infos, numGoroutines*numOps)
}
