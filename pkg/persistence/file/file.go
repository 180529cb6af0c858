// Package file provides file-based persistence for recordings, actions and
// archive snapshots. Each entity is a JSON document under the root
// directory; the change sequence lives in a counter file next to them.
package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/recapd/recapd/pkg/persistence"
)

const seqFile = "seq"

// Persistence implements persistence.Persistence on the local file system.
type Persistence struct {
	root string

	mu sync.Mutex // guards the change sequence file

	recordings *RecordingRepository
	actions    *ActionRepository
	archive    *ArchiveRepository
}

// NewPersistence creates a file persistence layer rooted at the given
// directory. Accepts a plain path or a file:// URL.
func NewPersistence(root string) *Persistence {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	p := &Persistence{root: cleanRoot}
	p.recordings = &RecordingRepository{p: p}
	p.actions = &ActionRepository{p: p}
	p.archive = &ArchiveRepository{p: p}

	return p
}

func (p *Persistence) Recordings() persistence.RecordingRepository {
	return p.recordings
}

func (p *Persistence) Actions() persistence.ActionRepository {
	return p.actions
}

func (p *Persistence) Archive() persistence.ArchiveRepository {
	return p.archive
}

// ChangeSeq returns the current change sequence, zero when nothing has been
// written yet.
func (p *Persistence) ChangeSeq(_ context.Context) (uint64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.readSeq()
}

// HealthCheck verifies the root directory exists.
func (p *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(p.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

// Close is a no-op for file persistence.
func (p *Persistence) Close(_ context.Context) error {
	return nil
}

// bump advances the change sequence by one. Called after every successful
// write by the repositories.
func (p *Persistence) bump() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	seq, err := p.readSeq()
	if err != nil {
		return err
	}

	return writeAtomic(filepath.Join(p.root, seqFile), []byte(strconv.FormatUint(seq+1, 10)))
}

func (p *Persistence) readSeq() (uint64, error) {
	data, err := os.ReadFile(filepath.Join(p.root, seqFile))
	if os.IsNotExist(err) {
		return 0, nil
	}

	if err != nil {
		return 0, fmt.Errorf("failed to read change sequence: %w", err)
	}

	seq, err := strconv.ParseUint(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupt change sequence file: %w", err)
	}

	return seq, nil
}

// writeAtomic writes data via a temp file and rename so readers never
// observe a partial document.
func writeAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())

		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())

		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())

		return fmt.Errorf("failed to replace %s: %w", path, err)
	}

	return nil
}
