package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recapd/recapd/pkg/events"
	"github.com/recapd/recapd/pkg/models"
	"github.com/recapd/recapd/pkg/persistence"
	"github.com/recapd/recapd/pkg/persistence/file"
	"github.com/recapd/recapd/pkg/testutil"
)

func newRecordingFixture(t *testing.T) (*Recording, persistence.Persistence, *testutil.CaptureEventBus) {
	t.Helper()

	persist := file.NewPersistence(t.TempDir())
	bus := testutil.NewCaptureEventBus()

	return NewRecording(persist, bus, discardLogger()), persist, bus
}

func seedRecording(t *testing.T, persist persistence.Persistence, overrides ...func(*models.Recording)) *models.Recording {
	t.Helper()

	rec := testutil.CreateTestRecording(overrides...)
	require.NoError(t, persist.Recordings().Create(context.Background(), rec))

	return rec
}

func TestRecordingListAndGet(t *testing.T) {
	service, persist, _ := newRecordingFixture(t)
	ctx := context.Background()

	rec := seedRecording(t, persist)

	listed, err := service.List(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, rec.ID, listed[0].ID)

	got, err := service.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.Title, got.Title)

	_, err = service.Get(ctx, "missing")
	assert.True(t, persistence.IsRecordingNotFound(err))
}

func TestRecordingArchive_SnapshotsAndDeletesLive(t *testing.T) {
	service, persist, bus := newRecordingFixture(t)
	ctx := context.Background()

	rec := seedRecording(t, persist, testutil.WithProcessed(
		"full transcript", "a summary", "first highlight", "second highlight",
	))
	action := testutil.CreateTestAction(testutil.WithMeeting(rec.ID))
	require.NoError(t, persist.Actions().Create(ctx, action))

	snap, err := service.Archive(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, snap.RecordingID)
	assert.Equal(t, rec.Title, snap.Title)
	require.NotNil(t, snap.Transcript)
	assert.Equal(t, "full transcript", *snap.Transcript)
	assert.Equal(t, []string{"first highlight", "second highlight"}, snap.Highlights)
	assert.False(t, snap.ArchivedAt.IsZero())

	// The live recording is gone, the snapshot is listed.
	_, err = persist.Recordings().GetByID(ctx, rec.ID)
	assert.True(t, persistence.IsRecordingNotFound(err))

	archived, err := service.ListArchived(ctx)
	require.NoError(t, err)
	require.Len(t, archived, 1)
	assert.Equal(t, snap.ID, archived[0].ID)

	// Actions survive with their meeting reference dangling.
	remaining, err := persist.Actions().List(ctx, persistence.ListActionsOptions{MeetingID: rec.ID})
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, action.ID, remaining[0].ID)

	types := bus.PublishedTypes()
	require.Len(t, types, 1)
	assert.Equal(t, events.RecordingArchivedEvent, types[0])
}

func TestRecordingArchive_NotFound(t *testing.T) {
	service, _, _ := newRecordingFixture(t)

	_, err := service.Archive(context.Background(), "missing")
	assert.True(t, persistence.IsRecordingNotFound(err))
}

func TestRecordingDelete_CascadesActions(t *testing.T) {
	service, persist, _ := newRecordingFixture(t)
	ctx := context.Background()

	rec := seedRecording(t, persist)
	owned := testutil.CreateTestAction(testutil.WithMeeting(rec.ID))
	unrelated := testutil.CreateTestAction(testutil.WithMeeting("other-recording"))
	require.NoError(t, persist.Actions().Create(ctx, owned))
	require.NoError(t, persist.Actions().Create(ctx, unrelated))

	require.NoError(t, service.Delete(ctx, rec.ID))

	_, err := persist.Recordings().GetByID(ctx, rec.ID)
	assert.True(t, persistence.IsRecordingNotFound(err))

	_, err = persist.Actions().GetByID(ctx, owned.ID)
	assert.True(t, persistence.IsActionNotFound(err))

	kept, err := persist.Actions().GetByID(ctx, unrelated.ID)
	require.NoError(t, err)
	assert.Equal(t, unrelated.ID, kept.ID)
}

func TestRecordingDelete_NotFound(t *testing.T) {
	service, _, _ := newRecordingFixture(t)

	err := service.Delete(context.Background(), "missing")
	assert.True(t, persistence.IsRecordingNotFound(err))
}
