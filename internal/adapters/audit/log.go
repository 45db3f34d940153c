// Package audit implements the external append-only audit log as a flat file
// of timestamped run identifiers.
package audit

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.trai.ch/weft/internal/core/domain"
	"go.trai.ch/weft/internal/core/ports"
	"go.trai.ch/zerr"
)

const filePerm = 0o644

var _ ports.AuditLog = (*FileLog)(nil)

// FileLog implements ports.AuditLog. Each line is "<RFC3339 timestamp> <run id>";
// the file is append-only and the timestamps come from this process, making it
// an independent secondary record of which runs were finalized.
type FileLog struct {
	path string
	mu   sync.Mutex
}

// NewFileLog creates an audit log backed by the file at the given path.
func NewFileLog(path string) *FileLog {
	return &FileLog{path: filepath.Clean(path)}
}

// Append records a finalized run identifier.
func (l *FileLog) Append(runID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(l.path), 0o750); err != nil {
		return zerr.Wrap(err, domain.ErrStoreCreateFailed.Error())
	}

	//nolint:gosec // Path is cleaned and provided by trusted caller
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, filePerm)
	if err != nil {
		return zerr.Wrap(err, "failed to open audit log")
	}
	defer f.Close() //nolint:errcheck // Best effort close in defer

	line := fmt.Sprintf("%s %s\n", time.Now().UTC().Format(time.RFC3339), runID)
	if _, err := f.WriteString(line); err != nil {
		return zerr.Wrap(err, "failed to append to audit log")
	}
	return nil
}

// Contains reports whether the run identifier appears in the log. A missing
// log file is not an error; it simply contains nothing.
func (l *FileLog) Contains(runID string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	//nolint:gosec // Path is cleaned and provided by trusted caller
	f, err := os.Open(l.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, zerr.Wrap(err, "failed to read audit log")
	}
	defer f.Close() //nolint:errcheck // Best effort close in defer

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 2 && fields[1] == runID {
			return true, nil
		}
	}
	return false, scanner.Err()
}
