package cas_test

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/weft/internal/adapters/cas"
	"go.trai.ch/weft/internal/core/domain"
)

func rawMD() domain.Metadata {
	return domain.Metadata{Type: domain.TypeRaw}
}

func TestStore_PutGet(t *testing.T) {
	t.Parallel()

	store, err := cas.NewStore(t.TempDir())
	require.NoError(t, err)

	t.Run("round trip", func(t *testing.T) {
		content := []byte("hello")
		id, err := store.Put(content, rawMD())
		require.NoError(t, err)

		sum := sha256.Sum256(content)
		assert.Equal(t, domain.ArtifactID(hex.EncodeToString(sum[:])), id)

		got, err := store.Get(id)
		require.NoError(t, err)
		assert.Equal(t, content, got)
	})

	t.Run("empty content", func(t *testing.T) {
		id, err := store.Put(nil, rawMD())
		require.NoError(t, err)

		got, err := store.Get(id)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("binary content", func(t *testing.T) {
		content := []byte{0x00, 0xff, 0x10, 0x00, '\n', 0x7f}
		id, err := store.Put(content, rawMD())
		require.NoError(t, err)

		got, err := store.Get(id)
		require.NoError(t, err)
		assert.Equal(t, content, got)
	})

	t.Run("get missing", func(t *testing.T) {
		sum := sha256.Sum256([]byte("never stored"))
		_, err := store.Get(domain.ArtifactID(hex.EncodeToString(sum[:])))
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("invalid metadata rejected", func(t *testing.T) {
		_, err := store.Put([]byte("x"), domain.Metadata{Type: "bogus"})
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrInvalidMetadata)
	})
}

func TestStore_PutIdempotent(t *testing.T) {
	t.Parallel()

	store, err := cas.NewStore(t.TempDir())
	require.NoError(t, err)

	content := []byte("same bytes")
	first, err := store.Put(content, rawMD())
	require.NoError(t, err)

	before := store.Count()
	entry, err := store.Stat(first)
	require.NoError(t, err)

	// Second write with different metadata: identifier and entry are stable.
	second, err := store.Put(content, domain.Metadata{
		Type: domain.TypeReview, TaskID: "t", RunID: "r",
	})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, before, store.Count())

	after, err := store.Stat(first)
	require.NoError(t, err)
	assert.Equal(t, entry, after, "registry entry is never replaced")
}

func TestStore_ConcurrentIdenticalPuts(t *testing.T) {
	t.Parallel()

	store, err := cas.NewStore(t.TempDir())
	require.NoError(t, err)

	content := []byte("raced content")
	const writers = 16

	ids := make([]domain.ArtifactID, writers)
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id, err := store.Put(content, rawMD())
			assert.NoError(t, err)
			ids[i] = id
		}(i)
	}
	wg.Wait()

	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
	assert.Equal(t, 1, store.Count())

	got, err := store.Get(ids[0])
	require.NoError(t, err)
	assert.Equal(t, content, got)
}

func TestStore_GetCorrupt(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	store, err := cas.NewStore(root)
	require.NoError(t, err)

	id, err := store.Put([]byte("pristine"), rawMD())
	require.NoError(t, err)

	// Flip the stored bytes behind the store's back.
	h := string(id)
	path := filepath.Join(root, "objects", h[:2], h[2:])
	require.NoError(t, os.WriteFile(path, []byte("tampered"), 0o600))

	_, err = store.Get(id)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrCorruption)
	assert.NotErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_Persistence(t *testing.T) {
	t.Parallel()

	root := t.TempDir()

	store, err := cas.NewStore(root)
	require.NoError(t, err)

	first, err := store.Put([]byte("one"), rawMD())
	require.NoError(t, err)
	_, err = store.Put([]byte("two"), rawMD())
	require.NoError(t, err)

	reopened, err := cas.NewStore(root)
	require.NoError(t, err)
	assert.Equal(t, 2, reopened.Count())

	got, err := reopened.Get(first)
	require.NoError(t, err)
	assert.Equal(t, []byte("one"), got)

	// Sequence numbers keep growing after a reload.
	third, err := reopened.Put([]byte("three"), rawMD())
	require.NoError(t, err)
	entry, err := reopened.Stat(third)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), entry.Seq)
}

func TestStore_List(t *testing.T) {
	t.Parallel()

	store, err := cas.NewStore(t.TempDir())
	require.NoError(t, err)

	a, err := store.Put([]byte("a"), rawMD())
	require.NoError(t, err)
	b, err := store.Put([]byte("b"), rawMD())
	require.NoError(t, err)
	c, err := store.Put([]byte("c"), rawMD())
	require.NoError(t, err)

	entries := store.List()
	require.Len(t, entries, 3)
	assert.Equal(t, []domain.ArtifactID{a, b, c}, []domain.ArtifactID{
		entries[0].ID, entries[1].ID, entries[2].ID,
	})
	for i, entry := range entries {
		assert.Equal(t, uint64(i+1), entry.Seq)
	}
}

func TestStore_Exists(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	store, err := cas.NewStore(root)
	require.NoError(t, err)

	id, err := store.Put([]byte("here"), rawMD())
	require.NoError(t, err)
	assert.True(t, store.Exists(id))

	// Exists consults the object files, so an out-of-band removal is
	// observed even while the registry entry remains.
	h := string(id)
	require.NoError(t, os.Remove(filepath.Join(root, "objects", h[:2], h[2:])))
	assert.False(t, store.Exists(id))

	_, err = store.Stat(id)
	require.NoError(t, err)
}

func TestStore_MalformedID(t *testing.T) {
	t.Parallel()

	store, err := cas.NewStore(t.TempDir())
	require.NoError(t, err)

	// Identifiers shorter than the shard prefix can arrive via a hand-edited
	// registry or task stream; they are absent, not a crash.
	for _, id := range []domain.ArtifactID{"", "a"} {
		_, err := store.Get(id)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.False(t, store.Exists(id))
	}
}

func TestDigest_DistinctInputs(t *testing.T) {
	t.Parallel()

	seen := make(map[domain.ArtifactID]int, 512)
	for i := 0; i < 512; i++ {
		id := cas.Digest([]byte(strconv.Itoa(i)))
		prev, dup := seen[id]
		require.False(t, dup, "inputs %d and %d collided", prev, i)
		seen[id] = i
	}
}
