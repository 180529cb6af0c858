package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/recapd/recapd/pkg/models"
	"github.com/recapd/recapd/pkg/persistence"
)

// MockPersistence is a mock implementation of the persistence.Persistence
// interface.
type MockPersistence struct {
	mock.Mock
}

func (m *MockPersistence) Recordings() persistence.RecordingRepository {
	args := m.Called()

	return args.Get(0).(persistence.RecordingRepository)
}

func (m *MockPersistence) Actions() persistence.ActionRepository {
	args := m.Called()

	return args.Get(0).(persistence.ActionRepository)
}

func (m *MockPersistence) Archive() persistence.ArchiveRepository {
	args := m.Called()

	return args.Get(0).(persistence.ArchiveRepository)
}

func (m *MockPersistence) ChangeSeq(ctx context.Context) (uint64, error) {
	args := m.Called(ctx)

	return args.Get(0).(uint64), args.Error(1)
}

func (m *MockPersistence) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}

func (m *MockPersistence) Close(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}

// MockRecordingRepository is a mock implementation of
// persistence.RecordingRepository.
type MockRecordingRepository struct {
	mock.Mock
}

func (m *MockRecordingRepository) Create(ctx context.Context, rec *models.Recording) error {
	args := m.Called(ctx, rec)

	return args.Error(0)
}

func (m *MockRecordingRepository) GetByID(ctx context.Context, id string) (*models.Recording, error) {
	args := m.Called(ctx, id)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.Recording), args.Error(1)
}

func (m *MockRecordingRepository) List(ctx context.Context) ([]*models.Recording, error) {
	args := m.Called(ctx)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*models.Recording), args.Error(1)
}

func (m *MockRecordingRepository) Update(ctx context.Context, rec *models.Recording) error {
	args := m.Called(ctx, rec)

	return args.Error(0)
}

func (m *MockRecordingRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)

	return args.Error(0)
}

func (m *MockRecordingRepository) Exists(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)

	return args.Bool(0), args.Error(1)
}

// MockActionRepository is a mock implementation of
// persistence.ActionRepository.
type MockActionRepository struct {
	mock.Mock
}

func (m *MockActionRepository) Create(ctx context.Context, action *models.Action) error {
	args := m.Called(ctx, action)

	return args.Error(0)
}

func (m *MockActionRepository) GetByID(ctx context.Context, id string) (*models.Action, error) {
	args := m.Called(ctx, id)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.Action), args.Error(1)
}

func (m *MockActionRepository) List(ctx context.Context, opts persistence.ListActionsOptions) ([]*models.Action, error) {
	args := m.Called(ctx, opts)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*models.Action), args.Error(1)
}

func (m *MockActionRepository) Update(ctx context.Context, action *models.Action) error {
	args := m.Called(ctx, action)

	return args.Error(0)
}

func (m *MockActionRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)

	return args.Error(0)
}

func (m *MockActionRepository) DeleteByMeeting(ctx context.Context, meetingID string) error {
	args := m.Called(ctx, meetingID)

	return args.Error(0)
}

// MockArchiveRepository is a mock implementation of
// persistence.ArchiveRepository.
type MockArchiveRepository struct {
	mock.Mock
}

func (m *MockArchiveRepository) Save(ctx context.Context, snap *models.ArchivedRecording) error {
	args := m.Called(ctx, snap)

	return args.Error(0)
}

func (m *MockArchiveRepository) GetByID(ctx context.Context, id string) (*models.ArchivedRecording, error) {
	args := m.Called(ctx, id)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.ArchivedRecording), args.Error(1)
}

func (m *MockArchiveRepository) List(ctx context.Context) ([]*models.ArchivedRecording, error) {
	args := m.Called(ctx)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*models.ArchivedRecording), args.Error(1)
}
