// Package cas implements the content-addressed artifact store and its
// metadata registry.
package cas

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"go.trai.ch/weft/internal/core/domain"
	"go.trai.ch/weft/internal/core/ports"
	"go.trai.ch/zerr"
)

const (
	objectsDir   = "objects"
	registryFile = "registry.json"

	dirPerm  = 0o750
	filePerm = 0o644
)

var _ ports.ArtifactStore = (*Store)(nil)

// Store implements ports.ArtifactStore with one file per object under
// <root>/objects/ab/cdef... and a flat JSON registry index.
type Store struct {
	root string

	mu       sync.RWMutex
	registry map[domain.ArtifactID]domain.Entry
	nextSeq  uint64
}

// NewStore creates a Store rooted at the given directory, loading any existing
// registry.
func NewStore(root string) (*Store, error) {
	s := &Store{
		root:     filepath.Clean(root),
		registry: make(map[domain.ArtifactID]domain.Entry),
		nextSeq:  1,
	}
	if err := os.MkdirAll(filepath.Join(s.root, objectsDir), dirPerm); err != nil {
		return nil, zerr.Wrap(err, domain.ErrStoreCreateFailed.Error())
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Digest computes the content digest used as an artifact identifier.
func Digest(data []byte) domain.ArtifactID {
	sum := sha256.Sum256(data)
	return domain.ArtifactID(hex.EncodeToString(sum[:]))
}

func (s *Store) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	//nolint:gosec // Path is cleaned and provided by trusted caller
	data, err := os.ReadFile(filepath.Join(s.root, registryFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return zerr.Wrap(err, domain.ErrStoreReadFailed.Error())
	}
	if len(data) == 0 {
		return nil
	}

	if err := json.Unmarshal(data, &s.registry); err != nil {
		return zerr.Wrap(err, domain.ErrStoreUnmarshalFailed.Error())
	}

	for _, entry := range s.registry {
		if entry.Seq >= s.nextSeq {
			s.nextSeq = entry.Seq + 1
		}
	}
	return nil
}

// save persists the registry. Caller must hold the write lock.
func (s *Store) save() error {
	data, err := json.MarshalIndent(s.registry, "", "  ")
	if err != nil {
		return zerr.Wrap(err, domain.ErrStoreMarshalFailed.Error())
	}

	//nolint:gosec // Path is cleaned and provided by trusted caller
	if err := os.WriteFile(filepath.Join(s.root, registryFile), data, filePerm); err != nil {
		return zerr.Wrap(err, domain.ErrStoreWriteFailed.Error())
	}
	return nil
}

func (s *Store) objectPath(id domain.ArtifactID) string {
	h := string(id)
	return filepath.Join(s.root, objectsDir, h[:2], h[2:])
}

// Put stores the bytes under their content digest. Storing identical content
// is idempotent: the existing identifier is returned and the registry entry
// count does not grow. Concurrent identical writes are serialized on the
// registry lock; the object write itself is temp-file plus rename, so a
// half-written object is never visible under its final name.
func (s *Store) Put(data []byte, md domain.Metadata) (domain.ArtifactID, error) {
	if err := md.Validate(); err != nil {
		return "", err
	}

	id := Digest(data)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.registry[id]; exists && s.objectExists(id) {
		return id, nil
	}

	if !s.objectExists(id) {
		if err := s.writeObject(id, data); err != nil {
			return "", err
		}
	}

	// Insert-if-absent: a registry entry, once written, is never replaced.
	if _, exists := s.registry[id]; !exists {
		s.registry[id] = domain.Entry{
			ID:        id,
			Metadata:  md,
			Size:      int64(len(data)),
			Seq:       s.nextSeq,
			CreatedAt: time.Now().UTC(),
		}
		s.nextSeq++
		if err := s.save(); err != nil {
			return "", err
		}
	}

	return id, nil
}

func (s *Store) writeObject(id domain.ArtifactID, data []byte) error {
	path := s.objectPath(id)
	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return zerr.Wrap(err, domain.ErrStoreCreateFailed.Error())
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".put-*")
	if err != nil {
		return zerr.Wrap(err, domain.ErrStoreWriteFailed.Error())
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return zerr.Wrap(err, domain.ErrStoreWriteFailed.Error())
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return zerr.Wrap(err, domain.ErrStoreWriteFailed.Error())
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return zerr.Wrap(err, domain.ErrStoreWriteFailed.Error())
	}
	return nil
}

// Get returns the stored bytes, re-verifying the content digest. A digest
// mismatch is corruption, not absence.
func (s *Store) Get(id domain.ArtifactID) ([]byte, error) {
	// Identifiers too short to shard cannot name an object. Hand-edited
	// streams or registries can deliver them.
	if len(id) < 2 {
		return nil, zerr.With(zerr.Wrap(domain.ErrNotFound, "malformed digest"), "artifact_id", string(id))
	}

	//nolint:gosec // Path is constructed from the store root and a hex digest
	data, err := os.ReadFile(s.objectPath(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, zerr.With(zerr.Wrap(domain.ErrNotFound, "no object for digest"), "artifact_id", string(id))
		}
		return nil, zerr.Wrap(err, domain.ErrStoreReadFailed.Error())
	}

	if actual := Digest(data); actual != id {
		err := zerr.With(zerr.Wrap(domain.ErrCorruption, "digest mismatch"), "artifact_id", string(id))
		return nil, zerr.With(err, "actual_digest", string(actual))
	}
	return data, nil
}

// Exists reports whether the object's bytes are present. It consults the
// object files, not the registry, so the cache manager can use it to detect
// registry/store divergence.
func (s *Store) Exists(id domain.ArtifactID) bool {
	return s.objectExists(id)
}

func (s *Store) objectExists(id domain.ArtifactID) bool {
	if len(id) < 2 {
		return false
	}
	_, err := os.Stat(s.objectPath(id))
	return err == nil
}

// Stat returns the registry entry for the given identifier.
func (s *Store) Stat(id domain.ArtifactID) (*domain.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.registry[id]
	if !ok {
		return nil, zerr.With(zerr.Wrap(domain.ErrNotFound, "no registry entry"), "artifact_id", string(id))
	}
	return &entry, nil
}

// List returns a snapshot of all registry entries ordered by insertion
// sequence.
func (s *Store) List() []domain.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]domain.Entry, 0, len(s.registry))
	for _, entry := range s.registry {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Seq < entries[j].Seq })
	return entries
}

// Count returns the number of registry entries.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.registry)
}
