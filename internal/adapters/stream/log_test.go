package stream_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/weft/internal/adapters/stream"
	"go.trai.ch/weft/internal/core/ports"
)

type note struct {
	Msg string `json:"msg"`
}

func openLog(t *testing.T, path string) *stream.Log {
	t.Helper()
	l, err := stream.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })
	return l
}

func TestLog_AppendRead(t *testing.T) {
	t.Parallel()

	l := openLog(t, filepath.Join(t.TempDir(), "s.jsonl"))

	for i, msg := range []string{"a", "b", "c"} {
		seq, err := l.Append(note{Msg: msg})
		require.NoError(t, err)
		assert.Equal(t, uint64(i+1), seq)
	}

	t.Run("read all", func(t *testing.T) {
		records, err := l.Read(0)
		require.NoError(t, err)
		require.Len(t, records, 3)

		var n note
		require.NoError(t, json.Unmarshal(records[0].Data, &n))
		assert.Equal(t, "a", n.Msg)
	})

	t.Run("read after", func(t *testing.T) {
		records, err := l.Read(2)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, uint64(3), records[0].Seq)
	})

	t.Run("read past end", func(t *testing.T) {
		records, err := l.Read(10)
		require.NoError(t, err)
		assert.Empty(t, records)
	})
}

func TestLog_ClaimAtMostOnce(t *testing.T) {
	t.Parallel()

	l := openLog(t, filepath.Join(t.TempDir(), "s.jsonl"))

	const total = 50
	for i := 0; i < total; i++ {
		_, err := l.Append(note{Msg: "task"})
		require.NoError(t, err)
	}

	ctx := context.Background()

	// Many claimers in one group: every record is handed out exactly once.
	const claimers = 8
	var mu sync.Mutex
	seen := make(map[uint64]int)

	var wg sync.WaitGroup
	for i := 0; i < claimers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				claimCtx, cancel := context.WithTimeout(ctx, 250*time.Millisecond)
				rec, err := l.Claim(claimCtx, "workers")
				cancel()
				if err != nil {
					return
				}
				mu.Lock()
				seen[rec.Seq]++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, total)
	for seq, count := range seen {
		assert.Equal(t, 1, count, "record %d claimed more than once", seq)
	}
}

func TestLog_IndependentGroups(t *testing.T) {
	t.Parallel()

	l := openLog(t, filepath.Join(t.TempDir(), "s.jsonl"))

	_, err := l.Append(note{Msg: "only"})
	require.NoError(t, err)

	ctx := context.Background()

	a, err := l.Claim(ctx, "group-a")
	require.NoError(t, err)
	b, err := l.Claim(ctx, "group-b")
	require.NoError(t, err)

	assert.Equal(t, a.Seq, b.Seq, "each group consumes the full stream")
}

func TestLog_ClaimBlocksUntilAppend(t *testing.T) {
	t.Parallel()

	l := openLog(t, filepath.Join(t.TempDir(), "s.jsonl"))

	done := make(chan *ports.Record, 1)
	go func() {
		rec, err := l.Claim(context.Background(), "workers")
		if err == nil {
			done <- rec
		}
	}()

	// The claimer is parked; an append wakes it.
	time.Sleep(50 * time.Millisecond)
	_, err := l.Append(note{Msg: "late"})
	require.NoError(t, err)

	select {
	case rec := <-done:
		assert.Equal(t, uint64(1), rec.Seq)
	case <-time.After(2 * time.Second):
		t.Fatal("claim never observed the append")
	}
}

func TestLog_ClaimHonorsContext(t *testing.T) {
	t.Parallel()

	l := openLog(t, filepath.Join(t.TempDir(), "s.jsonl"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := l.Claim(ctx, "workers")
	require.ErrorIs(t, err, context.Canceled)
}

func TestLog_ReplayAfterReopen(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "s.jsonl")

	l, err := stream.Open(path)
	require.NoError(t, err)
	_, err = l.Append(note{Msg: "a"})
	require.NoError(t, err)
	_, err = l.Append(note{Msg: "b"})
	require.NoError(t, err)
	require.NoError(t, l.Close())

	reopened := openLog(t, path)

	records, err := reopened.Read(0)
	require.NoError(t, err)
	require.Len(t, records, 2)

	// Cursors are not persisted: a group starts from the beginning again.
	rec, err := reopened.Claim(context.Background(), "workers")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), rec.Seq)

	// New appends continue the sequence.
	seq, err := reopened.Append(note{Msg: "c"})
	require.NoError(t, err)
	assert.Equal(t, uint64(3), seq)
}

func TestLog_TornTrailingLine(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "s.jsonl")

	l, err := stream.Open(path)
	require.NoError(t, err)
	_, err = l.Append(note{Msg: "intact"})
	require.NoError(t, err)
	require.NoError(t, l.Close())

	// Simulate a crashed writer leaving a half-written record.
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0o600)
	require.NoError(t, err)
	_, err = f.WriteString(`{"seq":2,"data":`)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	reopened := openLog(t, path)
	records, err := reopened.Read(0)
	require.NoError(t, err)
	require.Len(t, records, 1, "replay stops at the torn line")
	assert.Equal(t, uint64(1), records[0].Seq)
}

func TestProvider_Stream(t *testing.T) {
	t.Parallel()

	p := stream.NewProvider(filepath.Join(t.TempDir(), "streams"))

	tasks, err := p.Stream("tasks")
	require.NoError(t, err)
	done, err := p.Stream("done")
	require.NoError(t, err)

	_, err = tasks.Append(note{Msg: "t"})
	require.NoError(t, err)
	records, err := done.Read(0)
	require.NoError(t, err)
	assert.Empty(t, records, "streams are isolated by name")

	again, err := p.Stream("tasks")
	require.NoError(t, err)
	assert.Same(t, tasks, again)
}
