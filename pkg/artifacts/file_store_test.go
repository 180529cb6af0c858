package artifacts

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_PutOpenRoundTrip(t *testing.T) {
	store := NewFileStore(t.TempDir())
	ctx := context.Background()

	ref, err := store.Put(ctx, "rec-1", strings.NewReader("fake audio bytes"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ref, "file://"))

	r, err := store.Open(ctx, ref)
	require.NoError(t, err)

	defer func() { _ = r.Close() }()

	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "fake audio bytes", string(data))
}

func TestFileStore_Verify(t *testing.T) {
	store := NewFileStore(t.TempDir())
	ctx := context.Background()

	ref, err := store.Put(ctx, "rec-1", strings.NewReader("audio"))
	require.NoError(t, err)

	assert.NoError(t, store.Verify(ctx, ref))
	assert.ErrorIs(t, store.Verify(ctx, "file:///missing.audio"), ErrArtifactNotFound)
}

func TestFileStore_VerifyEmptyArtifact(t *testing.T) {
	store := NewFileStore(t.TempDir())
	ctx := context.Background()

	ref, err := store.Put(ctx, "rec-1", strings.NewReader(""))
	require.NoError(t, err)

	assert.NoError(t, store.Verify(ctx, ref))
}

func TestFileStore_Delete(t *testing.T) {
	store := NewFileStore(t.TempDir())
	ctx := context.Background()

	ref, err := store.Put(ctx, "rec-1", strings.NewReader("audio"))
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, ref))
	assert.ErrorIs(t, store.Delete(ctx, ref), ErrArtifactNotFound)
	assert.ErrorIs(t, store.Verify(ctx, ref), ErrArtifactNotFound)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, io.ErrUnexpectedEOF
}

func TestFileStore_PutRollsBackPartialWrite(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(dir)

	_, err := store.Put(context.Background(), "rec-1", failingReader{})
	require.Error(t, err)

	// No artifact and no temp leftovers.
	assert.ErrorIs(t, store.Verify(context.Background(), "file://"+dir+"/rec-1.audio"), ErrArtifactNotFound)
}
