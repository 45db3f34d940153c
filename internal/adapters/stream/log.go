// Package stream implements durable, ordered, replayable append-only logs
// with named consumer groups. One JSONL file per stream.
package stream

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.trai.ch/weft/internal/core/domain"
	"go.trai.ch/weft/internal/core/ports"
	"go.trai.ch/zerr"
)

const (
	dirPerm  = 0o750
	filePerm = 0o644

	// defaultPoll bounds the blocking wait in Claim. Workers suspend on this
	// poll rather than a condition variable so a cancelled context is always
	// observed within one interval.
	defaultPoll = 25 * time.Millisecond
)

var _ ports.Stream = (*Log)(nil)

// Log is a single append-only stream backed by a JSONL file. Records are
// cached in memory for reads; the file is the durable, replayable source a
// fresh process reloads from.
//
// Consumer group cursors are deliberately not persisted: after a restart a
// group replays from the beginning and in-flight tasks are simply
// reprocessed, which is safe because artifact writes are idempotent.
type Log struct {
	path string
	poll time.Duration

	mu      sync.Mutex
	records []ports.Record
	cursors map[string]int
	file    *os.File
}

// Open creates or reopens the log at the given path, replaying any existing
// records into memory.
func Open(path string) (*Log, error) {
	l := &Log{
		path:    filepath.Clean(path),
		poll:    defaultPoll,
		cursors: make(map[string]int),
	}

	if err := os.MkdirAll(filepath.Dir(l.path), dirPerm); err != nil {
		return nil, zerr.Wrap(err, domain.ErrStoreCreateFailed.Error())
	}
	if err := l.replay(); err != nil {
		return nil, err
	}

	//nolint:gosec // Path is cleaned and provided by trusted caller
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, filePerm)
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrStreamAppendFailed.Error())
	}
	l.file = f
	return l, nil
}

func (l *Log) replay() error {
	//nolint:gosec // Path is cleaned and provided by trusted caller
	f, err := os.Open(l.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return zerr.Wrap(err, domain.ErrStoreReadFailed.Error())
	}
	defer f.Close() //nolint:errcheck // Best effort close in defer

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec ports.Record
		if err := json.Unmarshal(line, &rec); err != nil {
			// A torn trailing line from a crashed writer ends the replay;
			// everything before it is intact.
			break
		}
		l.records = append(l.records, rec)
	}
	return scanner.Err()
}

// Append marshals v and appends it, returning the assigned monotonic
// sequence.
func (l *Log) Append(v any) (uint64, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return 0, zerr.Wrap(err, domain.ErrStreamAppendFailed.Error())
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	rec := ports.Record{
		Seq:  uint64(len(l.records)) + 1,
		Data: data,
	}

	line, err := json.Marshal(rec)
	if err != nil {
		return 0, zerr.Wrap(err, domain.ErrStreamAppendFailed.Error())
	}
	if _, err := l.file.Write(append(line, '\n')); err != nil {
		return 0, zerr.Wrap(err, domain.ErrStreamAppendFailed.Error())
	}

	l.records = append(l.records, rec)
	return rec.Seq, nil
}

// Claim blocks until a record is available for the group and claims it.
// Within one group each record is handed out at most once; the log itself
// arbitrates which caller gets which record.
func (l *Log) Claim(ctx context.Context, group string) (*ports.Record, error) {
	for {
		l.mu.Lock()
		cursor := l.cursors[group]
		if cursor < len(l.records) {
			rec := l.records[cursor]
			l.cursors[group] = cursor + 1
			l.mu.Unlock()
			return &rec, nil
		}
		l.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.poll):
		}
	}
}

// Read returns all records with a sequence greater than after, without
// claiming them.
func (l *Log) Read(after uint64) ([]ports.Record, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if after >= uint64(len(l.records)) {
		return nil, nil
	}
	out := make([]ports.Record, len(l.records)-int(after))
	copy(out, l.records[after:])
	return out, nil
}

// Close releases the underlying file.
func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.file.Close()
}

// Provider opens streams under a common directory, one file per name.
type Provider struct {
	root string

	mu   sync.Mutex
	open map[string]*Log
}

// NewProvider creates a stream provider rooted at the given directory.
func NewProvider(root string) *Provider {
	return &Provider{
		root: filepath.Clean(root),
		open: make(map[string]*Log),
	}
}

// Stream returns the named stream, opening it on first use.
func (p *Provider) Stream(name string) (ports.Stream, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if l, ok := p.open[name]; ok {
		return l, nil
	}

	l, err := Open(filepath.Join(p.root, name+".jsonl"))
	if err != nil {
		return nil, err
	}
	p.open[name] = l
	return l, nil
}
