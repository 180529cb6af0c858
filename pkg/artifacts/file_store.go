package artifacts

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// FileStore stores artifacts as files under a root directory. References
// are file:// URLs so other backends can be told apart by scheme.
type FileStore struct {
	root string
}

// NewFileStore creates a file-backed artifact store rooted at dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{root: strings.Replace(dir, "file://", "", 1)}
}

func (s *FileStore) path(ref string) string {
	return strings.Replace(ref, "file://", "", 1)
}

// Put writes the audio bytes atomically: a temp file is renamed into place
// only after the full copy succeeds, so a failed upload leaves nothing
// behind.
func (s *FileStore) Put(_ context.Context, id string, audio io.Reader) (string, error) {
	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return "", fmt.Errorf("failed to create artifact directory: %w", err)
	}

	tmp, err := os.CreateTemp(s.root, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp artifact: %w", err)
	}

	if _, err := io.Copy(tmp, audio); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())

		return "", fmt.Errorf("failed to write artifact %s: %w", id, err)
	}

	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())

		return "", fmt.Errorf("failed to close artifact %s: %w", id, err)
	}

	final := filepath.Join(s.root, id+".audio")
	if err := os.Rename(tmp.Name(), final); err != nil {
		_ = os.Remove(tmp.Name())

		return "", fmt.Errorf("failed to store artifact %s: %w", id, err)
	}

	return "file://" + final, nil
}

func (s *FileStore) Open(_ context.Context, ref string) (io.ReadCloser, error) {
	f, err := os.Open(s.path(ref))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("artifact %s: %w", ref, ErrArtifactNotFound)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to open artifact %s: %w", ref, err)
	}

	return f, nil
}

func (s *FileStore) Verify(ctx context.Context, ref string) error {
	f, err := s.Open(ctx, ref)
	if err != nil {
		return err
	}

	// Readable means at least the first byte can be pulled; empty
	// artifacts are fine.
	buf := make([]byte, 1)
	if _, err := f.Read(buf); err != nil && err != io.EOF {
		_ = f.Close()

		return fmt.Errorf("artifact %s is not readable: %w", ref, err)
	}

	return f.Close()
}

func (s *FileStore) Delete(_ context.Context, ref string) error {
	err := os.Remove(s.path(ref))
	if os.IsNotExist(err) {
		return fmt.Errorf("artifact %s: %w", ref, ErrArtifactNotFound)
	}

	if err != nil {
		return fmt.Errorf("failed to delete artifact %s: %w", ref, err)
	}

	return nil
}
