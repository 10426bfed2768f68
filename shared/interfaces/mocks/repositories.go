// Package mocks holds testify mocks of the shared interfaces.
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"fallen-dragon-server/shared/interfaces"
	"fallen-dragon-server/shared/models"
)

// StoryRepository is a mock of interfaces.StoryRepository.
type StoryRepository struct{ mock.Mock }

func (m *StoryRepository) List(ctx context.Context, querier interfaces.DBTX) ([]*models.StorySummary, error) {
	args := m.Called(ctx, querier)
	stories, _ := args.Get(0).([]*models.StorySummary)
	return stories, args.Error(1)
}

func (m *StoryRepository) GetByID(ctx context.Context, querier interfaces.DBTX, storyID int64) (*models.StorySummary, error) {
	args := m.Called(ctx, querier, storyID)
	story, _ := args.Get(0).(*models.StorySummary)
	return story, args.Error(1)
}

func (m *StoryRepository) GetByTitle(ctx context.Context, querier interfaces.DBTX, title string) (*models.Story, error) {
	args := m.Called(ctx, querier, title)
	story, _ := args.Get(0).(*models.Story)
	return story, args.Error(1)
}

func (m *StoryRepository) GetActByNumber(ctx context.Context, querier interfaces.DBTX, storyID int64, actNumber int) (*models.Act, error) {
	args := m.Called(ctx, querier, storyID, actNumber)
	act, _ := args.Get(0).(*models.Act)
	return act, args.Error(1)
}

func (m *StoryRepository) Create(ctx context.Context, querier interfaces.DBTX, story *models.Story) error {
	return m.Called(ctx, querier, story).Error(0)
}

func (m *StoryRepository) UpdateDescription(ctx context.Context, querier interfaces.DBTX, storyID int64, description string) error {
	return m.Called(ctx, querier, storyID, description).Error(0)
}

func (m *StoryRepository) CreateAct(ctx context.Context, querier interfaces.DBTX, act *models.Act) error {
	return m.Called(ctx, querier, act).Error(0)
}

func (m *StoryRepository) DeleteActs(ctx context.Context, querier interfaces.DBTX, storyID int64) error {
	return m.Called(ctx, querier, storyID).Error(0)
}

// CharacterRepository is a mock of interfaces.CharacterRepository.
type CharacterRepository struct{ mock.Mock }

func (m *CharacterRepository) Create(ctx context.Context, querier interfaces.DBTX, character *models.Character) error {
	return m.Called(ctx, querier, character).Error(0)
}

func (m *CharacterRepository) GetByID(ctx context.Context, querier interfaces.DBTX, characterID int64) (*models.Character, error) {
	args := m.Called(ctx, querier, characterID)
	character, _ := args.Get(0).(*models.Character)
	return character, args.Error(1)
}

func (m *CharacterRepository) UpdateAppearance(ctx context.Context, querier interfaces.DBTX, character *models.Character) error {
	return m.Called(ctx, querier, character).Error(0)
}

func (m *CharacterRepository) Delete(ctx context.Context, querier interfaces.DBTX, characterID int64) error {
	return m.Called(ctx, querier, characterID).Error(0)
}

// PoseRepository is a mock of interfaces.PoseRepository.
type PoseRepository struct{ mock.Mock }

func (m *PoseRepository) List(ctx context.Context, querier interfaces.DBTX) ([]*models.CharacterPose, error) {
	args := m.Called(ctx, querier)
	poses, _ := args.Get(0).([]*models.CharacterPose)
	return poses, args.Error(1)
}

func (m *PoseRepository) GetByID(ctx context.Context, querier interfaces.DBTX, poseID int64) (*models.CharacterPose, error) {
	args := m.Called(ctx, querier, poseID)
	pose, _ := args.Get(0).(*models.CharacterPose)
	return pose, args.Error(1)
}

func (m *PoseRepository) Create(ctx context.Context, querier interfaces.DBTX, pose *models.CharacterPose) error {
	return m.Called(ctx, querier, pose).Error(0)
}

func (m *PoseRepository) Update(ctx context.Context, querier interfaces.DBTX, pose *models.CharacterPose) error {
	return m.Called(ctx, querier, pose).Error(0)
}

func (m *PoseRepository) Delete(ctx context.Context, querier interfaces.DBTX, poseID int64) error {
	return m.Called(ctx, querier, poseID).Error(0)
}

// UserRepository is a mock of interfaces.UserRepository.
type UserRepository struct{ mock.Mock }

func (m *UserRepository) Ensure(ctx context.Context, querier interfaces.DBTX, user *models.User) error {
	return m.Called(ctx, querier, user).Error(0)
}

// PlayerSessionRepository is a mock of interfaces.PlayerSessionRepository.
type PlayerSessionRepository struct{ mock.Mock }

func (m *PlayerSessionRepository) Create(ctx context.Context, querier interfaces.DBTX, session *models.PlayerSession) error {
	return m.Called(ctx, querier, session).Error(0)
}

func (m *PlayerSessionRepository) GetByID(ctx context.Context, querier interfaces.DBTX, sessionID int64) (*models.PlayerSession, error) {
	args := m.Called(ctx, querier, sessionID)
	session, _ := args.Get(0).(*models.PlayerSession)
	return session, args.Error(1)
}

func (m *PlayerSessionRepository) ListByUser(ctx context.Context, querier interfaces.DBTX, userID uint64) ([]*models.PlayerSession, error) {
	args := m.Called(ctx, querier, userID)
	sessions, _ := args.Get(0).([]*models.PlayerSession)
	return sessions, args.Error(1)
}

func (m *PlayerSessionRepository) UpdateProgress(ctx context.Context, querier interfaces.DBTX, session *models.PlayerSession, expectedActNumber int, expectedCompleted bool) error {
	return m.Called(ctx, querier, session, expectedActNumber, expectedCompleted).Error(0)
}

func (m *PlayerSessionRepository) Touch(ctx context.Context, querier interfaces.DBTX, sessionID int64, at time.Time) error {
	return m.Called(ctx, querier, sessionID, at).Error(0)
}

func (m *PlayerSessionRepository) Delete(ctx context.Context, querier interfaces.DBTX, sessionID int64) error {
	return m.Called(ctx, querier, sessionID).Error(0)
}

// ChoiceHistoryRepository is a mock of interfaces.ChoiceHistoryRepository.
type ChoiceHistoryRepository struct{ mock.Mock }

func (m *ChoiceHistoryRepository) Append(ctx context.Context, querier interfaces.DBTX, entry *models.ChoiceHistory) error {
	return m.Called(ctx, querier, entry).Error(0)
}

func (m *ChoiceHistoryRepository) ListBySession(ctx context.Context, querier interfaces.DBTX, sessionID int64) ([]*models.ChoiceHistory, error) {
	args := m.Called(ctx, querier, sessionID)
	entries, _ := args.Get(0).([]*models.ChoiceHistory)
	return entries, args.Error(1)
}

func (m *ChoiceHistoryRepository) CountByStory(ctx context.Context, querier interfaces.DBTX, storyID int64) (int, error) {
	args := m.Called(ctx, querier, storyID)
	return args.Int(0), args.Error(1)
}

var (
	_ interfaces.StoryRepository         = (*StoryRepository)(nil)
	_ interfaces.CharacterRepository     = (*CharacterRepository)(nil)
	_ interfaces.PoseRepository          = (*PoseRepository)(nil)
	_ interfaces.UserRepository          = (*UserRepository)(nil)
	_ interfaces.PlayerSessionRepository = (*PlayerSessionRepository)(nil)
	_ interfaces.ChoiceHistoryRepository = (*ChoiceHistoryRepository)(nil)
)
