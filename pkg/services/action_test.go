package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/recapd/recapd/pkg/events"
	"github.com/recapd/recapd/pkg/mocks"
	"github.com/recapd/recapd/pkg/models"
	"github.com/recapd/recapd/pkg/persistence"
	"github.com/recapd/recapd/pkg/persistence/file"
	"github.com/recapd/recapd/pkg/testutil"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newActionFixture(t *testing.T) (*Action, persistence.Persistence, *testutil.CaptureEventBus) {
	t.Helper()

	persist := file.NewPersistence(t.TempDir())
	bus := testutil.NewCaptureEventBus()

	return NewAction(persist, bus, discardLogger()), persist, bus
}

func seedAction(t *testing.T, persist persistence.Persistence, overrides ...func(*models.Action)) *models.Action {
	t.Helper()

	action := testutil.CreateTestAction(overrides...)
	require.NoError(t, persist.Actions().Create(context.Background(), action))

	return action
}

func TestActionCreate_Defaults(t *testing.T) {
	service, _, bus := newActionFixture(t)

	action, err := service.Create(context.Background(), CreateActionRequest{
		Title:     "Prepare the deck",
		MeetingID: "rec-1",
	})
	require.NoError(t, err)

	assert.Equal(t, models.ActionStatusPending, action.Status)
	assert.Equal(t, models.PriorityMedium, action.Priority)
	assert.Equal(t, "rec-1", action.MeetingID)
	assert.False(t, action.HasBeenOpened)
	assert.WithinDuration(t, time.Now().Add(models.DefaultDueIn), action.DueDate, time.Minute)

	published := bus.Published()
	require.Len(t, published, 1)

	created, ok := published[0].(events.ActionCreated)
	require.True(t, ok)
	assert.Equal(t, action.ID, created.ActionID)
	assert.Equal(t, "user", created.Source)
}

func TestActionCreate_Validation(t *testing.T) {
	service, _, _ := newActionFixture(t)
	ctx := context.Background()

	_, err := service.Create(ctx, CreateActionRequest{})
	assert.ErrorIs(t, err, ErrTitleRequired)
	assert.True(t, IsValidationError(err))

	_, err = service.Create(ctx, CreateActionRequest{Title: "x", Priority: "critical"})
	assert.ErrorIs(t, err, ErrInvalidPriority)
	assert.True(t, IsValidationError(err))
}

func TestActionMarkReviewed(t *testing.T) {
	service, persist, _ := newActionFixture(t)
	ctx := context.Background()

	fresh := seedAction(t, persist, testutil.WithStatus(models.ActionStatusNotReviewed))

	reviewed, err := service.MarkReviewed(ctx, fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ActionStatusPending, reviewed.Status)
	assert.True(t, reviewed.HasBeenOpened)
	assert.Equal(t, models.DisplayStatusInProgress, reviewed.DisplayStatus())

	// Reviewing again changes nothing further.
	again, err := service.MarkReviewed(ctx, fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ActionStatusPending, again.Status)

	completed := seedAction(t, persist, testutil.WithCompleted(time.Now().UTC()))

	kept, err := service.MarkReviewed(ctx, completed.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ActionStatusCompleted, kept.Status)
	assert.True(t, kept.HasBeenOpened)
}

func TestActionComplete(t *testing.T) {
	service, persist, _ := newActionFixture(t)
	ctx := context.Background()

	action := seedAction(t, persist)

	completed, err := service.Complete(ctx, action.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ActionStatusCompleted, completed.Status)
	require.NotNil(t, completed.CompletedAt)

	firstCompletedAt := *completed.CompletedAt

	again, err := service.Complete(ctx, action.ID)
	require.NoError(t, err)
	require.NotNil(t, again.CompletedAt)
	assert.Equal(t, firstCompletedAt, *again.CompletedAt)
}

func TestActionReopen(t *testing.T) {
	service, persist, _ := newActionFixture(t)
	ctx := context.Background()

	action := seedAction(t, persist, testutil.WithCompleted(time.Now().UTC()))

	reopened, err := service.Reopen(ctx, action.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ActionStatusPending, reopened.Status)
	assert.Nil(t, reopened.CompletedAt)
	assert.False(t, reopened.Archived)
}

func TestActionReopen_RequiresCompleted(t *testing.T) {
	service, persist, _ := newActionFixture(t)

	action := seedAction(t, persist)

	_, err := service.Reopen(context.Background(), action.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotCompleted)
	assert.True(t, IsConflictError(err))
}

func TestActionArchive_SetsAllFieldsTogether(t *testing.T) {
	service, persist, bus := newActionFixture(t)
	ctx := context.Background()

	action := seedAction(t, persist, testutil.WithStatus(models.ActionStatusNotReviewed), testutil.WithMeeting("rec-9"))

	archived, err := service.Archive(ctx, action.ID)
	require.NoError(t, err)
	assert.True(t, archived.Archived)
	assert.Equal(t, models.ActionStatusCompleted, archived.Status)
	require.NotNil(t, archived.CompletedAt)
	assert.True(t, archived.HasBeenOpened)

	stored, err := persist.Actions().GetByID(ctx, action.ID)
	require.NoError(t, err)
	assert.True(t, stored.Archived)

	types := bus.PublishedTypes()
	require.Len(t, types, 1)
	assert.Equal(t, events.ActionArchivedEvent, types[0])
}

func TestActionArchive_NotFound(t *testing.T) {
	service, _, _ := newActionFixture(t)

	_, err := service.Archive(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, persistence.IsActionNotFound(err))
}

func unarchivedCopy() *models.Action {
	return testutil.CreateTestAction(func(a *models.Action) {
		a.ID = "act-flaky"
	})
}

func archivedCopy() *models.Action {
	completedAt := time.Now().UTC()

	return testutil.CreateTestAction(func(a *models.Action) {
		a.ID = "act-flaky"
		a.Archived = true
		a.Status = models.ActionStatusCompleted
		a.CompletedAt = &completedAt
		a.HasBeenOpened = true
	})
}

func TestActionArchive_ReadBackRetrySucceeds(t *testing.T) {
	repo := &mocks.MockActionRepository{}
	persist := &mocks.MockPersistence{}
	persist.On("Actions").Return(repo)

	// First write does not stick; the retry does.
	repo.On("GetByID", mock.Anything, "act-flaky").Return(unarchivedCopy(), nil).Once()
	repo.On("Update", mock.Anything, mock.Anything).Return(nil).Twice()
	repo.On("GetByID", mock.Anything, "act-flaky").Return(unarchivedCopy(), nil).Once()
	repo.On("GetByID", mock.Anything, "act-flaky").Return(unarchivedCopy(), nil).Once()
	repo.On("GetByID", mock.Anything, "act-flaky").Return(archivedCopy(), nil).Once()

	service := NewAction(persist, testutil.NewCaptureEventBus(), discardLogger())

	archived, err := service.Archive(context.Background(), "act-flaky")
	require.NoError(t, err)
	assert.True(t, archived.Archived)
	repo.AssertExpectations(t)
}

func TestActionArchive_ReadBackFailureReported(t *testing.T) {
	repo := &mocks.MockActionRepository{}
	persist := &mocks.MockPersistence{}
	persist.On("Actions").Return(repo)

	repo.On("GetByID", mock.Anything, "act-flaky").Return(unarchivedCopy(), nil).Once()
	repo.On("GetByID", mock.Anything, "act-flaky").Return(unarchivedCopy(), nil).Once()
	repo.On("GetByID", mock.Anything, "act-flaky").Return(unarchivedCopy(), nil).Once()
	repo.On("GetByID", mock.Anything, "act-flaky").Return(unarchivedCopy(), nil).Once()
	repo.On("Update", mock.Anything, mock.Anything).Return(nil).Twice()

	service := NewAction(persist, testutil.NewCaptureEventBus(), discardLogger())

	_, err := service.Archive(context.Background(), "act-flaky")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrArchiveVerification)
	repo.AssertExpectations(t)
}

func TestActionSaveNotes_PreservesState(t *testing.T) {
	service, persist, _ := newActionFixture(t)
	ctx := context.Background()

	completedAt := time.Now().UTC()
	action := seedAction(t, persist, func(a *models.Action) {
		a.Status = models.ActionStatusCompleted
		a.CompletedAt = &completedAt
		a.Archived = true
		a.HasBeenOpened = true
	})

	updated, err := service.SaveNotes(ctx, action.ID, "New title", "New notes")
	require.NoError(t, err)
	assert.Equal(t, "New title", updated.Title)
	assert.Equal(t, "New notes", updated.Notes)
	assert.Equal(t, models.ActionStatusCompleted, updated.Status)
	assert.True(t, updated.Archived)
	require.NotNil(t, updated.CompletedAt)
	assert.Equal(t, completedAt, *updated.CompletedAt)
}

func TestActionSaveNotes_TitleRequired(t *testing.T) {
	service, persist, _ := newActionFixture(t)

	action := seedAction(t, persist)

	_, err := service.SaveNotes(context.Background(), action.ID, "", "notes")
	assert.ErrorIs(t, err, ErrTitleRequired)
}

func TestActionUpdate_StatusOnlyWhenCarried(t *testing.T) {
	service, persist, _ := newActionFixture(t)
	ctx := context.Background()

	action := seedAction(t, persist)

	newTitle := "Renamed"
	updated, err := service.Update(ctx, action.ID, UpdateActionRequest{Title: &newTitle})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
	assert.Equal(t, models.ActionStatusPending, updated.Status)
	assert.Nil(t, updated.CompletedAt)

	completedStatus := models.ActionStatusCompleted
	updated, err = service.Update(ctx, action.ID, UpdateActionRequest{Status: &completedStatus})
	require.NoError(t, err)
	assert.Equal(t, models.ActionStatusCompleted, updated.Status)
	assert.NotNil(t, updated.CompletedAt)
}

func TestActionUpdate_InvalidStatus(t *testing.T) {
	service, persist, _ := newActionFixture(t)

	action := seedAction(t, persist)

	bad := models.ActionStatus("paused")
	_, err := service.Update(context.Background(), action.ID, UpdateActionRequest{Status: &bad})
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestActionUpdate_LeavingCompletedLeavesArchive(t *testing.T) {
	service, persist, _ := newActionFixture(t)
	ctx := context.Background()

	action := seedAction(t, persist)
	_, err := service.Archive(ctx, action.ID)
	require.NoError(t, err)

	pending := models.ActionStatusPending
	updated, err := service.Update(ctx, action.ID, UpdateActionRequest{Status: &pending})
	require.NoError(t, err)
	assert.Equal(t, models.ActionStatusPending, updated.Status)
	assert.False(t, updated.Archived)
	assert.Nil(t, updated.CompletedAt)

	stored, err := persist.Actions().GetByID(ctx, action.ID)
	require.NoError(t, err)
	assert.False(t, stored.Archived)
	assert.Nil(t, stored.CompletedAt)
}

func TestActionBatchUpdate_LeavingCompletedLeavesArchive(t *testing.T) {
	service, persist, _ := newActionFixture(t)
	ctx := context.Background()

	action := seedAction(t, persist)
	_, err := service.Archive(ctx, action.ID)
	require.NoError(t, err)

	notReviewed := models.ActionStatusNotReviewed
	items, err := service.BatchUpdate(ctx, []string{action.ID}, UpdateActionRequest{Status: &notReviewed})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.NoError(t, items[0].Err)

	assert.Equal(t, models.ActionStatusNotReviewed, items[0].Action.Status)
	assert.False(t, items[0].Action.Archived)
	assert.Nil(t, items[0].Action.CompletedAt)
}

func TestActionArchive_KeepsOriginalCompletionTime(t *testing.T) {
	service, persist, _ := newActionFixture(t)
	ctx := context.Background()

	completedAt := time.Now().UTC().Add(-24 * time.Hour)
	action := seedAction(t, persist, testutil.WithCompleted(completedAt))

	archived, err := service.Archive(ctx, action.ID)
	require.NoError(t, err)

	assert.True(t, archived.Archived)
	require.NotNil(t, archived.CompletedAt)
	assert.Equal(t, completedAt, *archived.CompletedAt)
}

func TestActionDelete(t *testing.T) {
	service, persist, _ := newActionFixture(t)
	ctx := context.Background()

	action := seedAction(t, persist)

	require.NoError(t, service.Delete(ctx, action.ID))

	_, err := persist.Actions().GetByID(ctx, action.ID)
	assert.True(t, persistence.IsActionNotFound(err))

	err = service.Delete(ctx, "missing")
	assert.True(t, persistence.IsActionNotFound(err))
}

func TestActionBatchUpdate_PerID(t *testing.T) {
	service, persist, _ := newActionFixture(t)
	ctx := context.Background()

	first := seedAction(t, persist)
	second := seedAction(t, persist)

	high := models.PriorityHigh
	items, err := service.BatchUpdate(ctx, []string{first.ID, "missing", second.ID}, UpdateActionRequest{Priority: &high})
	require.NoError(t, err)
	require.Len(t, items, 3)

	assert.NoError(t, items[0].Err)
	assert.Equal(t, models.PriorityHigh, items[0].Action.Priority)

	assert.True(t, persistence.IsActionNotFound(items[1].Err))
	assert.Nil(t, items[1].Action)

	assert.NoError(t, items[2].Err)
	assert.Equal(t, models.PriorityHigh, items[2].Action.Priority)
}

func TestActionBatchUpdate_Validation(t *testing.T) {
	service, _, _ := newActionFixture(t)
	ctx := context.Background()

	_, err := service.BatchUpdate(ctx, nil, UpdateActionRequest{})
	assert.ErrorIs(t, err, ErrNoIDs)

	bad := models.ActionPriority("critical")
	_, err = service.BatchUpdate(ctx, []string{"x"}, UpdateActionRequest{Priority: &bad})
	assert.ErrorIs(t, err, ErrInvalidPriority)
}
