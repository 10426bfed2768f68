package database_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	sharedDatabase "fallen-dragon-server/shared/database"
	"fallen-dragon-server/shared/database/dbtest"
	"fallen-dragon-server/shared/interfaces"
	"fallen-dragon-server/shared/models"
)

type RepositoriesTestSuite struct {
	suite.Suite
	ctx        context.Context
	db         *sql.DB
	tx         *sharedDatabase.TxManager
	stories    interfaces.StoryRepository
	characters interfaces.CharacterRepository
	poses      interfaces.PoseRepository
	sessions   interfaces.PlayerSessionRepository
	history    interfaces.ChoiceHistoryRepository
	users      interfaces.UserRepository
	story      *models.Story
}

func TestRepositoriesTestSuite(t *testing.T) {
	suite.Run(t, new(RepositoriesTestSuite))
}

func (s *RepositoriesTestSuite) SetupTest() {
	logger := zap.NewNop()
	s.ctx = context.Background()
	s.db = dbtest.Open(s.T())
	s.tx = sharedDatabase.NewTxManager(s.db, logger)
	s.stories = sharedDatabase.NewSQLiteStoryRepository(logger)
	s.characters = sharedDatabase.NewSQLiteCharacterRepository(logger)
	s.poses = sharedDatabase.NewSQLitePoseRepository(logger)
	s.sessions = sharedDatabase.NewSQLitePlayerSessionRepository(logger)
	s.history = sharedDatabase.NewSQLiteChoiceHistoryRepository(logger)
	s.users = sharedDatabase.NewSQLiteUserRepository(logger)
	s.story = dbtest.InsertStory(s.T(), s.db, dbtest.DragonStory())
}

func (s *RepositoriesTestSuite) newSession(userID uint64) *models.PlayerSession {
	character := &models.Character{Head: "h1.png", Body: "b1.png"}
	s.Require().NoError(s.characters.Create(s.ctx, s.db, character))

	session := &models.PlayerSession{
		UserID:           userID,
		CharacterName:    "Hero",
		CharacterID:      character.ID,
		StoryID:          s.story.ID,
		CurrentActNumber: 1,
	}
	s.Require().NoError(s.sessions.Create(s.ctx, s.db, session))
	return session
}

func (s *RepositoriesTestSuite) TestStoryListAndGet() {
	stories, err := s.stories.List(s.ctx, s.db)
	s.Require().NoError(err)
	s.Require().Len(stories, 1)
	s.Equal("The Fallen Dragon", stories[0].Title)
	s.Equal(4, stories[0].ActCount)

	story, err := s.stories.GetByID(s.ctx, s.db, s.story.ID)
	s.Require().NoError(err)
	s.Equal(s.story.Description, story.Description)

	_, err = s.stories.GetByID(s.ctx, s.db, 999)
	s.ErrorIs(err, models.ErrStoryNotFound)

	byTitle, err := s.stories.GetByTitle(s.ctx, s.db, "The Fallen Dragon")
	s.Require().NoError(err)
	s.Equal(s.story.ID, byTitle.ID)

	_, err = s.stories.GetByTitle(s.ctx, s.db, "Unknown")
	s.ErrorIs(err, models.ErrStoryNotFound)
}

func (s *RepositoriesTestSuite) TestGetActByNumberLoadsChoicesInIDOrder() {
	act, err := s.stories.GetActByNumber(s.ctx, s.db, s.story.ID, 1)
	s.Require().NoError(err)
	s.Equal("You wake at the edge of a burnt forest.", act.Text)
	s.False(act.IsEnding)
	s.Require().Len(act.Choices, 2)
	s.Equal("Go left", act.Choices[0].Text)
	s.Equal(2, act.Choices[0].NextActNumber)
	s.Less(act.Choices[0].ID, act.Choices[1].ID)

	ending, err := s.stories.GetActByNumber(s.ctx, s.db, s.story.ID, 4)
	s.Require().NoError(err)
	s.True(ending.IsEnding)

	_, err = s.stories.GetActByNumber(s.ctx, s.db, s.story.ID, 42)
	s.ErrorIs(err, models.ErrActNotFound)
}

func (s *RepositoriesTestSuite) TestActNumberIsUniquePerStory() {
	err := s.stories.CreateAct(s.ctx, s.db, &models.Act{StoryID: s.story.ID, ActNumber: 1, Text: "duplicate"})
	s.Error(err)

	other := dbtest.InsertStory(s.T(), s.db, &models.Story{
		Title: "Another story",
		Acts:  []*models.Act{{ActNumber: 1, Text: "Same number, other story"}},
	})
	act, err := s.stories.GetActByNumber(s.ctx, s.db, other.ID, 1)
	s.Require().NoError(err)
	s.Equal("Same number, other story", act.Text)
	s.Empty(act.Choices)
}

func (s *RepositoriesTestSuite) TestSessionCreateGetList() {
	first := s.newSession(7)
	second := s.newSession(7)
	s.newSession(8)

	got, err := s.sessions.GetByID(s.ctx, s.db, first.ID)
	s.Require().NoError(err)
	s.Equal(uint64(7), got.UserID)
	s.Equal("Hero", got.CharacterName)
	s.Equal(1, got.CurrentActNumber)
	s.False(got.IsCompleted)
	s.WithinDuration(first.CreatedAt, got.CreatedAt, time.Millisecond)

	// bump the first one so it becomes the most recent
	s.Require().NoError(s.sessions.Touch(s.ctx, s.db, first.ID, time.Now().Add(time.Minute)))

	list, err := s.sessions.ListByUser(s.ctx, s.db, 7)
	s.Require().NoError(err)
	s.Require().Len(list, 2)
	s.Equal(first.ID, list[0].ID)
	s.Equal(second.ID, list[1].ID)

	empty, err := s.sessions.ListByUser(s.ctx, s.db, 100)
	s.Require().NoError(err)
	s.NotNil(empty)
	s.Empty(empty)

	_, err = s.sessions.GetByID(s.ctx, s.db, 999)
	s.ErrorIs(err, models.ErrSessionNotFound)
}

func (s *RepositoriesTestSuite) TestUpdateProgressGuard() {
	session := s.newSession(1)

	session.CurrentActNumber = 2
	s.Require().NoError(s.sessions.UpdateProgress(s.ctx, s.db, session, 1, false))

	// A second writer that still believes the session is at act 1 loses.
	stale := *session
	stale.CurrentActNumber = 3
	err := s.sessions.UpdateProgress(s.ctx, s.db, &stale, 1, false)
	s.ErrorIs(err, models.ErrConcurrentUpdate)

	session.IsCompleted = true
	s.Require().NoError(s.sessions.UpdateProgress(s.ctx, s.db, session, 2, false))

	got, err := s.sessions.GetByID(s.ctx, s.db, session.ID)
	s.Require().NoError(err)
	s.Equal(2, got.CurrentActNumber)
	s.True(got.IsCompleted)
}

func (s *RepositoriesTestSuite) TestHistoryAppendAndList() {
	session := s.newSession(1)
	act, err := s.stories.GetActByNumber(s.ctx, s.db, s.story.ID, 1)
	s.Require().NoError(err)

	base := time.Now().UTC().Truncate(time.Millisecond)
	s.Require().NoError(s.history.Append(s.ctx, s.db, &models.ChoiceHistory{
		PlayerSessionID: session.ID, ActNumber: 1, ChoiceID: act.Choices[1].ID, MadeAt: base.Add(time.Second),
	}))
	s.Require().NoError(s.history.Append(s.ctx, s.db, &models.ChoiceHistory{
		PlayerSessionID: session.ID, ActNumber: 1, ChoiceID: act.Choices[0].ID, MadeAt: base,
	}))

	entries, err := s.history.ListBySession(s.ctx, s.db, session.ID)
	s.Require().NoError(err)
	s.Require().Len(entries, 2)
	s.Equal(act.Choices[0].ID, entries[0].ChoiceID)
	s.True(base.Equal(entries[0].MadeAt))

	count, err := s.history.CountByStory(s.ctx, s.db, s.story.ID)
	s.Require().NoError(err)
	s.Equal(2, count)
}

func (s *RepositoriesTestSuite) TestDeleteSessionCascadesHistory() {
	session := s.newSession(1)
	act, err := s.stories.GetActByNumber(s.ctx, s.db, s.story.ID, 1)
	s.Require().NoError(err)
	s.Require().NoError(s.history.Append(s.ctx, s.db, &models.ChoiceHistory{
		PlayerSessionID: session.ID, ActNumber: 1, ChoiceID: act.Choices[0].ID,
	}))

	s.Require().NoError(s.sessions.Delete(s.ctx, s.db, session.ID))
	s.Require().NoError(s.characters.Delete(s.ctx, s.db, session.CharacterID))

	entries, err := s.history.ListBySession(s.ctx, s.db, session.ID)
	s.Require().NoError(err)
	s.Empty(entries)

	_, err = s.characters.GetByID(s.ctx, s.db, session.CharacterID)
	s.ErrorIs(err, models.ErrCharacterNotFound)

	s.ErrorIs(s.sessions.Delete(s.ctx, s.db, session.ID), models.ErrSessionNotFound)
}

func (s *RepositoriesTestSuite) TestChoiceWithHistoryCannotBeDeleted() {
	session := s.newSession(1)
	act, err := s.stories.GetActByNumber(s.ctx, s.db, s.story.ID, 1)
	s.Require().NoError(err)
	s.Require().NoError(s.history.Append(s.ctx, s.db, &models.ChoiceHistory{
		PlayerSessionID: session.ID, ActNumber: 1, ChoiceID: act.Choices[0].ID,
	}))

	_, err = s.db.ExecContext(s.ctx, `DELETE FROM Choices WHERE id = ?`, act.Choices[0].ID)
	s.Error(err)

	// Dropping the acts cascades to the choices and hits the same restriction.
	s.Error(s.stories.DeleteActs(s.ctx, s.db, s.story.ID))

	_, err = s.db.ExecContext(s.ctx, `DELETE FROM Choices WHERE id = ?`, act.Choices[1].ID)
	s.NoError(err)
}

func (s *RepositoriesTestSuite) TestCharacterAppearanceAndPoseDeletion() {
	pose := &models.CharacterPose{Name: "Kneeling", ImageURL: "/poses/kneel.png", CharacterType: models.StringPtr("knight")}
	s.Require().NoError(s.poses.Create(s.ctx, s.db, pose))

	session := s.newSession(1)
	character, err := s.characters.GetByID(s.ctx, s.db, session.CharacterID)
	s.Require().NoError(err)
	s.Nil(character.PoseID)

	character.Apply(models.Appearance{Head: "h2.png", Body: "b2.png", PoseID: models.Int64Ptr(pose.ID)})
	s.Require().NoError(s.characters.UpdateAppearance(s.ctx, s.db, character))

	got, err := s.characters.GetByID(s.ctx, s.db, character.ID)
	s.Require().NoError(err)
	s.Equal("h2.png", got.Head)
	s.Require().NotNil(got.PoseID)
	s.Equal(pose.ID, *got.PoseID)

	s.Require().NoError(s.poses.Delete(s.ctx, s.db, pose.ID))

	got, err = s.characters.GetByID(s.ctx, s.db, character.ID)
	s.Require().NoError(err)
	s.Nil(got.PoseID, "deleting a pose leaves characters without a pose")

	s.ErrorIs(s.poses.Delete(s.ctx, s.db, pose.ID), models.ErrPoseNotFound)
	s.ErrorIs(s.characters.UpdateAppearance(s.ctx, s.db, &models.Character{ID: 999}), models.ErrCharacterNotFound)
}

func (s *RepositoriesTestSuite) TestPoseCRUD() {
	pose := &models.CharacterPose{Name: "Standing", ImageURL: "/poses/stand.png"}
	s.Require().NoError(s.poses.Create(s.ctx, s.db, pose))
	s.NotZero(pose.ID)

	pose.Name = "Standing tall"
	s.Require().NoError(s.poses.Update(s.ctx, s.db, pose))

	got, err := s.poses.GetByID(s.ctx, s.db, pose.ID)
	s.Require().NoError(err)
	s.Equal("Standing tall", got.Name)
	s.Nil(got.CharacterType)

	all, err := s.poses.List(s.ctx, s.db)
	s.Require().NoError(err)
	s.Len(all, 1)

	s.ErrorIs(s.poses.Update(s.ctx, s.db, &models.CharacterPose{ID: 999, Name: "x", ImageURL: "y"}), models.ErrPoseNotFound)
	_, err = s.poses.GetByID(s.ctx, s.db, 999)
	s.ErrorIs(err, models.ErrPoseNotFound)
}

func (s *RepositoriesTestSuite) TestUserEnsureIsIdempotent() {
	s.Require().NoError(s.users.Ensure(s.ctx, s.db, &models.User{ID: 5, Username: "first"}))
	s.Require().NoError(s.users.Ensure(s.ctx, s.db, &models.User{ID: 5, Username: "second"}))

	var username string
	s.Require().NoError(s.db.QueryRowContext(s.ctx, `SELECT username FROM Users WHERE id = ?`, 5).Scan(&username))
	s.Equal("first", username)
}

func (s *RepositoriesTestSuite) TestWithTransactionRollsBack() {
	boom := errors.New("boom")
	var characterID int64

	err := s.tx.WithTransaction(s.ctx, func(ctx context.Context, tx interfaces.DBTX) error {
		character := &models.Character{Head: "h", Body: "b"}
		if err := s.characters.Create(ctx, tx, character); err != nil {
			return err
		}
		characterID = character.ID
		return boom
	})
	s.ErrorIs(err, boom)

	_, err = s.characters.GetByID(s.ctx, s.db, characterID)
	s.ErrorIs(err, models.ErrCharacterNotFound)

	s.Panics(func() {
		_ = s.tx.WithTransaction(s.ctx, func(ctx context.Context, tx interfaces.DBTX) error {
			panic("unexpected")
		})
	})

	// The database stays usable after a panicking transaction.
	err = s.tx.WithTransaction(s.ctx, func(ctx context.Context, tx interfaces.DBTX) error {
		return s.characters.Create(ctx, tx, &models.Character{Head: "h", Body: "b"})
	})
	s.NoError(err)
}
