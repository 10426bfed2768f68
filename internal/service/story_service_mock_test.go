package service

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"fallen-dragon-server/shared/interfaces/mocks"
	"fallen-dragon-server/shared/models"
)

type mockDeps struct {
	stories    *mocks.StoryRepository
	characters *mocks.CharacterRepository
	poses      *mocks.PoseRepository
	sessions   *mocks.PlayerSessionRepository
	history    *mocks.ChoiceHistoryRepository
	users      *mocks.UserRepository
	tx         *mocks.TxManager
	publisher  *mocks.SessionEventPublisher
}

func newMockService(t *testing.T) (StoryService, *mockDeps) {
	t.Helper()
	d := &mockDeps{
		stories:    new(mocks.StoryRepository),
		characters: new(mocks.CharacterRepository),
		poses:      new(mocks.PoseRepository),
		sessions:   new(mocks.PlayerSessionRepository),
		history:    new(mocks.ChoiceHistoryRepository),
		users:      new(mocks.UserRepository),
		tx:         new(mocks.TxManager),
		publisher:  new(mocks.SessionEventPublisher),
	}
	repos := StoryRepositories{
		Stories:    d.stories,
		Characters: d.characters,
		Poses:      d.poses,
		Sessions:   d.sessions,
		History:    d.history,
		Users:      d.users,
	}
	svc := NewStoryService(repos, nil, d.tx, d.publisher, StoryServiceConfig{}, zap.NewNop())
	return svc, d
}

func activeSession() *models.PlayerSession {
	return &models.PlayerSession{ID: 21, UserID: testUserID, StoryID: 1, CharacterID: 11, CurrentActNumber: 1}
}

func firstAct() *models.Act {
	return &models.Act{ID: 3, StoryID: 1, ActNumber: 1, Choices: []*models.Choice{
		{ID: 5, ActID: 3, Text: "Go left", NextActNumber: 2},
	}}
}

func TestCreateSession_PublishFailureDoesNotFail(t *testing.T) {
	svc, d := newMockService(t)
	ctx := models.WithUser(context.Background(), testUserID, "hero")

	d.tx.On("WithTransaction", mock.Anything).Return(nil)
	d.stories.On("GetByID", mock.Anything, mock.Anything, int64(1)).Return(&models.StorySummary{}, nil)
	d.users.On("Ensure", mock.Anything, mock.Anything, mock.MatchedBy(func(u *models.User) bool {
		return u.ID == testUserID && u.Username == "hero"
	})).Return(nil)
	d.characters.On("Create", mock.Anything, mock.Anything, mock.AnythingOfType("*models.Character")).
		Run(func(args mock.Arguments) { args.Get(2).(*models.Character).ID = 11 }).
		Return(nil)
	d.sessions.On("Create", mock.Anything, mock.Anything, mock.AnythingOfType("*models.PlayerSession")).
		Run(func(args mock.Arguments) { args.Get(2).(*models.PlayerSession).ID = 21 }).
		Return(nil)
	d.publisher.On("PublishSessionEvent", mock.Anything, mock.Anything).Return(errors.New("broker down"))
	before := testutil.ToFloat64(eventPublishFailuresTotal)

	session, err := svc.CreateSession(ctx, testUserID, 1, "Hero", models.Appearance{Head: "h1.png"})

	require.NoError(t, err)
	assert.Equal(t, int64(21), session.ID)
	assert.Equal(t, int64(11), session.CharacterID)
	assert.Equal(t, 1, session.CurrentActNumber)
	assert.Equal(t, before+1, testutil.ToFloat64(eventPublishFailuresTotal))
	d.users.AssertExpectations(t)
}

func TestCreateSession_DefaultUsername(t *testing.T) {
	svc, d := newMockService(t)

	d.tx.On("WithTransaction", mock.Anything).Return(nil)
	d.stories.On("GetByID", mock.Anything, mock.Anything, int64(1)).Return(&models.StorySummary{}, nil)
	d.users.On("Ensure", mock.Anything, mock.Anything, mock.MatchedBy(func(u *models.User) bool {
		return u.Username == "player7"
	})).Return(nil)
	d.characters.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	d.sessions.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	d.publisher.On("PublishSessionEvent", mock.Anything, mock.Anything).Return(nil)

	_, err := svc.CreateSession(context.Background(), testUserID, 1, "Hero", models.Appearance{})

	require.NoError(t, err)
	d.users.AssertExpectations(t)
}

func TestCreateSession_CharacterInsertFails(t *testing.T) {
	svc, d := newMockService(t)
	storageErr := errors.New("disk I/O error")

	d.tx.On("WithTransaction", mock.Anything).Return(nil)
	d.stories.On("GetByID", mock.Anything, mock.Anything, int64(1)).Return(&models.StorySummary{}, nil)
	d.users.On("Ensure", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	d.characters.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(storageErr)

	_, err := svc.CreateSession(context.Background(), testUserID, 1, "Hero", models.Appearance{})

	assert.ErrorIs(t, err, storageErr)
	d.sessions.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	d.publisher.AssertNotCalled(t, "PublishSessionEvent", mock.Anything, mock.Anything)
}

func TestAdvance_HistoryFailureLeavesSessionUntouched(t *testing.T) {
	svc, d := newMockService(t)
	storageErr := errors.New("database is locked")

	d.tx.On("WithTransaction", mock.Anything).Return(nil)
	d.sessions.On("GetByID", mock.Anything, mock.Anything, int64(21)).Return(activeSession(), nil)
	d.stories.On("GetActByNumber", mock.Anything, mock.Anything, int64(1), 1).Return(firstAct(), nil)
	d.history.On("Append", mock.Anything, mock.Anything, mock.Anything).Return(storageErr)

	_, err := svc.Advance(context.Background(), testUserID, 21, 2)

	assert.ErrorIs(t, err, storageErr)
	d.sessions.AssertNotCalled(t, "UpdateProgress", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	d.publisher.AssertNotCalled(t, "PublishSessionEvent", mock.Anything, mock.Anything)
}

func TestAdvance_LostRace(t *testing.T) {
	svc, d := newMockService(t)

	d.tx.On("WithTransaction", mock.Anything).Return(nil)
	d.sessions.On("GetByID", mock.Anything, mock.Anything, int64(21)).Return(activeSession(), nil)
	d.stories.On("GetActByNumber", mock.Anything, mock.Anything, int64(1), 1).Return(firstAct(), nil)
	d.history.On("Append", mock.Anything, mock.Anything, mock.MatchedBy(func(e *models.ChoiceHistory) bool {
		return e.ActNumber == 1 && e.ChoiceID == 5 && e.PlayerSessionID == 21
	})).Return(nil)
	d.sessions.On("UpdateProgress", mock.Anything, mock.Anything, mock.Anything, 1, false).Return(models.ErrConcurrentUpdate)
	before := testutil.ToFloat64(transitionsTotal.WithLabelValues(transitionRejected))

	_, err := svc.Advance(context.Background(), testUserID, 21, 2)

	assert.ErrorIs(t, err, models.ErrConcurrentUpdate)
	assert.Equal(t, before+1, testutil.ToFloat64(transitionsTotal.WithLabelValues(transitionRejected)))
	d.history.AssertExpectations(t)
}

func TestAdvance_TransactionFails(t *testing.T) {
	svc, d := newMockService(t)
	txErr := errors.New("failed to begin transaction")

	d.tx.On("WithTransaction", mock.Anything).Return(txErr)

	_, err := svc.Advance(context.Background(), testUserID, 21, 2)

	assert.ErrorIs(t, err, txErr)
	d.sessions.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything, mock.Anything)
}

func TestGetCurrentAct_StorageErrorIsNotDrift(t *testing.T) {
	svc, d := newMockService(t)
	storageErr := errors.New("disk I/O error")

	d.sessions.On("GetByID", mock.Anything, mock.Anything, int64(21)).Return(activeSession(), nil)
	d.stories.On("GetActByNumber", mock.Anything, mock.Anything, int64(1), 1).Return(nil, storageErr)

	_, _, err := svc.GetCurrentAct(context.Background(), testUserID, 21)

	assert.ErrorIs(t, err, storageErr)
	d.tx.AssertNotCalled(t, "WithTransaction", mock.Anything)
}

func TestPoseService_GetNotFound(t *testing.T) {
	poses := new(mocks.PoseRepository)
	poses.On("GetByID", mock.Anything, mock.Anything, int64(3)).Return(nil, models.ErrPoseNotFound)
	svc := NewPoseService(poses, nil, zap.NewNop())

	_, err := svc.Get(context.Background(), 3)

	assert.ErrorIs(t, err, models.ErrPoseNotFound)
}

func TestPoseService_UpdateWrapsError(t *testing.T) {
	poses := new(mocks.PoseRepository)
	poses.On("Update", mock.Anything, mock.Anything, mock.Anything).Return(models.ErrPoseNotFound)
	svc := NewPoseService(poses, nil, zap.NewNop())

	_, err := svc.Update(context.Background(), &models.CharacterPose{ID: 3, Name: "Sitting"})

	assert.ErrorIs(t, err, models.ErrPoseNotFound)
	assert.Contains(t, err.Error(), "update pose 3")
}
