// Package artifacts persists uploaded audio bytes and hands out stable
// references to them. Recordings hold these references weakly; the store
// owns the bytes.
package artifacts

import (
	"context"
	"errors"
	"io"
)

// ErrArtifactNotFound indicates a reference does not resolve to stored bytes.
var ErrArtifactNotFound = errors.New("artifact not found")

// Store persists audio artifacts.
type Store interface {
	// Put stores the audio bytes under the given id and returns a stable
	// reference. A failed Put leaves no partial artifact behind.
	Put(ctx context.Context, id string, audio io.Reader) (string, error)

	// Open returns the byte stream for a previously stored reference.
	Open(ctx context.Context, ref string) (io.ReadCloser, error)

	// Verify confirms the reference exists and is readable.
	Verify(ctx context.Context, ref string) error

	// Delete removes the artifact. Deleting a missing reference returns
	// ErrArtifactNotFound.
	Delete(ctx context.Context, ref string) error
}
