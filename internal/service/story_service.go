package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"fallen-dragon-server/shared/interfaces"
	sharedMessaging "fallen-dragon-server/shared/messaging"
	"fallen-dragon-server/shared/models"
)

const firstActNumber = 1

// StoryService drives player sessions through the story graph.
type StoryService interface {
	CreateSession(ctx context.Context, userID uint64, storyID int64, characterName string, appearance models.Appearance) (*models.PlayerSession, error)
	GetCurrentAct(ctx context.Context, userID uint64, sessionID int64) (*models.PlayerSession, *models.Act, error)
	Advance(ctx context.Context, userID uint64, sessionID int64, requestedNextActNumber int) (*models.PlayerSession, error)
	UpdateCharacterAppearance(ctx context.Context, userID uint64, sessionID int64, appearance models.Appearance) (*models.PlayerSession, error)

	GetCharacter(ctx context.Context, userID uint64, sessionID int64) (*models.Character, error)
	GetSession(ctx context.Context, userID uint64, sessionID int64) (*models.PlayerSession, error)
	ListSessions(ctx context.Context, userID uint64) ([]*models.PlayerSession, error)
	DeleteSession(ctx context.Context, userID uint64, sessionID int64) error
	GetHistory(ctx context.Context, userID uint64, sessionID int64) ([]*models.ChoiceHistory, error)

	ListStories(ctx context.Context) ([]*models.StorySummary, error)
	GetStory(ctx context.Context, storyID int64) (*models.StorySummary, error)
}

// StoryServiceConfig holds the tunable story rules.
type StoryServiceConfig struct {
	// AllowAdvanceAfterCompletion lets completed sessions keep recording
	// choices. The current act still never moves once completed.
	AllowAdvanceAfterCompletion bool
}

// StoryRepositories groups the repositories the story service works with.
type StoryRepositories struct {
	Stories    interfaces.StoryRepository
	Characters interfaces.CharacterRepository
	Poses      interfaces.PoseRepository
	Sessions   interfaces.PlayerSessionRepository
	History    interfaces.ChoiceHistoryRepository
	Users      interfaces.UserRepository
}

type storyServiceImpl struct {
	repos     StoryRepositories
	db        interfaces.DBTX
	tx        interfaces.TxManager
	publisher interfaces.SessionEventPublisher
	cfg       StoryServiceConfig
	logger    *zap.Logger
	now       func() time.Time
}

// NewStoryService creates the session lifecycle service. db is used for
// reads outside transactions.
func NewStoryService(
	repos StoryRepositories,
	db interfaces.DBTX,
	tx interfaces.TxManager,
	publisher interfaces.SessionEventPublisher,
	cfg StoryServiceConfig,
	logger *zap.Logger,
) StoryService {
	return &storyServiceImpl{
		repos:     repos,
		db:        db,
		tx:        tx,
		publisher: publisher,
		cfg:       cfg,
		logger:    logger.Named("StoryService"),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *storyServiceImpl) CreateSession(
	ctx context.Context,
	userID uint64,
	storyID int64,
	characterName string,
	appearance models.Appearance,
) (*models.PlayerSession, error) {
	log := s.logger.With(zap.Uint64("userID", userID), zap.Int64("storyID", storyID))

	var session *models.PlayerSession
	err := s.tx.WithTransaction(ctx, func(ctx context.Context, tx interfaces.DBTX) error {
		if _, err := s.repos.Stories.GetByID(ctx, tx, storyID); err != nil {
			return err
		}
		if err := s.checkPose(ctx, tx, appearance.PoseID); err != nil {
			return err
		}
		if err := s.repos.Users.Ensure(ctx, tx, userFromContext(ctx, userID)); err != nil {
			return err
		}

		character := &models.Character{}
		character.Apply(appearance)
		if err := s.repos.Characters.Create(ctx, tx, character); err != nil {
			return err
		}

		session = &models.PlayerSession{
			UserID:           userID,
			CharacterName:    characterName,
			CharacterID:      character.ID,
			StoryID:          storyID,
			CurrentActNumber: firstActNumber,
			IsCompleted:      false,
			CreatedAt:        s.now(),
			Character:        character,
		}
		return s.repos.Sessions.Create(ctx, tx, session)
	})
	if err != nil {
		log.Warn("Failed to create session", zap.Error(err))
		return nil, fmt.Errorf("create session: %w", err)
	}

	sessionsCreatedTotal.Inc()
	log.Info("Session created", zap.Int64("sessionID", session.ID), zap.Int64("characterID", session.CharacterID))
	s.publish(ctx, sharedMessaging.SessionEvent{
		EventType: sharedMessaging.SessionEventStarted,
		SessionID: session.ID,
		UserID:    userID,
		StoryID:   storyID,
		ActNumber: session.CurrentActNumber,
	})
	return session, nil
}

func (s *storyServiceImpl) GetCurrentAct(ctx context.Context, userID uint64, sessionID int64) (*models.PlayerSession, *models.Act, error) {
	session, err := s.loadOwnedSession(ctx, s.db, userID, sessionID)
	if err != nil {
		return nil, nil, err
	}

	act, err := s.repos.Stories.GetActByNumber(ctx, s.db, session.StoryID, session.CurrentActNumber)
	if err == nil {
		return session, act, nil
	}
	if !errors.Is(err, models.ErrActNotFound) {
		return nil, nil, fmt.Errorf("get current act: %w", err)
	}

	// Drift: repeat the lookup under the write lock and repair the session.
	err = s.tx.WithTransaction(ctx, func(ctx context.Context, tx interfaces.DBTX) error {
		var txErr error
		if session, txErr = s.loadOwnedSession(ctx, tx, userID, sessionID); txErr != nil {
			return txErr
		}
		act, txErr = s.resolveCurrentAct(ctx, tx, session)
		return txErr
	})
	if err != nil {
		return nil, nil, fmt.Errorf("get current act: %w", err)
	}
	return session, act, nil
}

func (s *storyServiceImpl) Advance(ctx context.Context, userID uint64, sessionID int64, requestedNextActNumber int) (*models.PlayerSession, error) {
	log := s.logger.With(
		zap.Uint64("userID", userID),
		zap.Int64("sessionID", sessionID),
		zap.Int("requestedNextAct", requestedNextActNumber),
	)

	var (
		session *models.PlayerSession
		choice  *models.Choice
		fromAct int
	)
	err := s.tx.WithTransaction(ctx, func(ctx context.Context, tx interfaces.DBTX) error {
		var err error
		if session, err = s.loadOwnedSession(ctx, tx, userID, sessionID); err != nil {
			return err
		}
		if session.IsCompleted && !s.cfg.AllowAdvanceAfterCompletion {
			return models.ErrSessionAlreadyCompleted
		}

		act, err := s.resolveCurrentAct(ctx, tx, session)
		if err != nil {
			return err
		}

		var ok bool
		if choice, ok = act.FindChoiceTo(requestedNextActNumber); !ok {
			return fmt.Errorf("%w: act %d has no choice leading to %d", models.ErrInvalidTransition, act.ActNumber, requestedNextActNumber)
		}

		fromAct = act.ActNumber
		storedAct := session.CurrentActNumber
		wasCompleted := session.IsCompleted

		entry := &models.ChoiceHistory{
			PlayerSessionID: session.ID,
			ActNumber:       fromAct,
			ChoiceID:        choice.ID,
			MadeAt:          s.now(),
		}
		if err := s.repos.History.Append(ctx, tx, entry); err != nil {
			return err
		}

		switch {
		case models.IsTerminalActNumber(requestedNextActNumber):
			session.IsCompleted = true
		case !wasCompleted:
			session.CurrentActNumber = requestedNextActNumber
		}
		return s.repos.Sessions.UpdateProgress(ctx, tx, session, storedAct, wasCompleted)
	})
	if err != nil {
		switch {
		case errors.Is(err, models.ErrInvalidTransition):
			transitionsTotal.WithLabelValues(transitionInvalid).Inc()
		case errors.Is(err, models.ErrSessionAlreadyCompleted), errors.Is(err, models.ErrConcurrentUpdate):
			transitionsTotal.WithLabelValues(transitionRejected).Inc()
		}
		log.Warn("Advance rejected", zap.Error(err))
		return nil, fmt.Errorf("advance: %w", err)
	}

	next := requestedNextActNumber
	choiceID := choice.ID
	s.publish(ctx, sharedMessaging.SessionEvent{
		EventType:     sharedMessaging.SessionEventChoice,
		SessionID:     session.ID,
		UserID:        userID,
		StoryID:       session.StoryID,
		ActNumber:     fromAct,
		NextActNumber: &next,
		ChoiceID:      &choiceID,
	})

	if models.IsTerminalActNumber(requestedNextActNumber) {
		transitionsTotal.WithLabelValues(transitionCompleted).Inc()
		log.Info("Session completed", zap.Int("actNumber", fromAct), zap.Int64("choiceID", choiceID))
		s.publish(ctx, sharedMessaging.SessionEvent{
			EventType: sharedMessaging.SessionEventCompleted,
			SessionID: session.ID,
			UserID:    userID,
			StoryID:   session.StoryID,
			ActNumber: session.CurrentActNumber,
		})
	} else {
		transitionsTotal.WithLabelValues(transitionAccepted).Inc()
		log.Info("Session advanced", zap.Int("fromAct", fromAct), zap.Int("toAct", session.CurrentActNumber))
	}
	return session, nil
}

func (s *storyServiceImpl) UpdateCharacterAppearance(
	ctx context.Context,
	userID uint64,
	sessionID int64,
	appearance models.Appearance,
) (*models.PlayerSession, error) {
	var session *models.PlayerSession
	err := s.tx.WithTransaction(ctx, func(ctx context.Context, tx interfaces.DBTX) error {
		var err error
		if session, err = s.loadOwnedSession(ctx, tx, userID, sessionID); err != nil {
			return err
		}
		if err := s.checkPose(ctx, tx, appearance.PoseID); err != nil {
			return err
		}

		character, err := s.repos.Characters.GetByID(ctx, tx, session.CharacterID)
		if err != nil {
			return err
		}
		character.Apply(appearance)
		if err := s.repos.Characters.UpdateAppearance(ctx, tx, character); err != nil {
			return err
		}
		session.Character = character

		session.UpdatedAt = s.now()
		return s.repos.Sessions.Touch(ctx, tx, session.ID, session.UpdatedAt)
	})
	if err != nil {
		return nil, fmt.Errorf("update character: %w", err)
	}

	s.logger.Info("Character appearance updated",
		zap.Int64("sessionID", sessionID),
		zap.Int64("characterID", session.CharacterID))
	return session, nil
}

func (s *storyServiceImpl) GetCharacter(ctx context.Context, userID uint64, sessionID int64) (*models.Character, error) {
	session, err := s.loadOwnedSession(ctx, s.db, userID, sessionID)
	if err != nil {
		return nil, err
	}
	character, err := s.repos.Characters.GetByID(ctx, s.db, session.CharacterID)
	if err != nil {
		return nil, fmt.Errorf("get character: %w", err)
	}
	return character, nil
}

func (s *storyServiceImpl) GetSession(ctx context.Context, userID uint64, sessionID int64) (*models.PlayerSession, error) {
	return s.loadOwnedSession(ctx, s.db, userID, sessionID)
}

func (s *storyServiceImpl) ListSessions(ctx context.Context, userID uint64) ([]*models.PlayerSession, error) {
	sessions, err := s.repos.Sessions.ListByUser(ctx, s.db, userID)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}

func (s *storyServiceImpl) DeleteSession(ctx context.Context, userID uint64, sessionID int64) error {
	err := s.tx.WithTransaction(ctx, func(ctx context.Context, tx interfaces.DBTX) error {
		session, err := s.loadOwnedSession(ctx, tx, userID, sessionID)
		if err != nil {
			return err
		}
		// History goes with the session (ON DELETE CASCADE); the character
		// is referenced by the session, so it is removed after it.
		if err := s.repos.Sessions.Delete(ctx, tx, session.ID); err != nil {
			return err
		}
		return s.repos.Characters.Delete(ctx, tx, session.CharacterID)
	})
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	s.logger.Info("Session deleted", zap.Uint64("userID", userID), zap.Int64("sessionID", sessionID))
	return nil
}

func (s *storyServiceImpl) GetHistory(ctx context.Context, userID uint64, sessionID int64) ([]*models.ChoiceHistory, error) {
	if _, err := s.loadOwnedSession(ctx, s.db, userID, sessionID); err != nil {
		return nil, err
	}
	history, err := s.repos.History.ListBySession(ctx, s.db, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get history: %w", err)
	}
	return history, nil
}

func (s *storyServiceImpl) ListStories(ctx context.Context) ([]*models.StorySummary, error) {
	stories, err := s.repos.Stories.List(ctx, s.db)
	if err != nil {
		return nil, fmt.Errorf("list stories: %w", err)
	}
	return stories, nil
}

func (s *storyServiceImpl) GetStory(ctx context.Context, storyID int64) (*models.StorySummary, error) {
	return s.repos.Stories.GetByID(ctx, s.db, storyID)
}

// loadOwnedSession hides sessions of other users behind ErrSessionNotFound.
func (s *storyServiceImpl) loadOwnedSession(ctx context.Context, querier interfaces.DBTX, userID uint64, sessionID int64) (*models.PlayerSession, error) {
	session, err := s.repos.Sessions.GetByID(ctx, querier, sessionID)
	if err != nil {
		return nil, err
	}
	if session.UserID != userID {
		s.logger.Warn("Session belongs to another user",
			zap.Int64("sessionID", sessionID),
			zap.Uint64("userID", userID))
		return nil, models.ErrSessionNotFound
	}
	return session, nil
}

// resolveCurrentAct loads the session's act with choices. A missing act is
// drift: the session is moved back to act 1 and the correction persisted.
// Completed sessions are shown act 1 but keep their stored act.
func (s *storyServiceImpl) resolveCurrentAct(ctx context.Context, tx interfaces.DBTX, session *models.PlayerSession) (*models.Act, error) {
	act, err := s.repos.Stories.GetActByNumber(ctx, tx, session.StoryID, session.CurrentActNumber)
	if err == nil {
		return act, nil
	}
	if !errors.Is(err, models.ErrActNotFound) || session.CurrentActNumber == firstActNumber {
		return nil, err
	}

	driftedAct := session.CurrentActNumber
	act, err = s.repos.Stories.GetActByNumber(ctx, tx, session.StoryID, firstActNumber)
	if err != nil {
		s.logger.Error("Story has no first act, session cannot be recovered",
			zap.Int64("sessionID", session.ID),
			zap.Int64("storyID", session.StoryID))
		return nil, err
	}

	if session.IsCompleted {
		s.logger.Warn("Completed session points at a missing act, showing act 1",
			zap.Int64("sessionID", session.ID),
			zap.Int("missingAct", driftedAct))
		return act, nil
	}

	session.CurrentActNumber = firstActNumber
	if err := s.repos.Sessions.UpdateProgress(ctx, tx, session, driftedAct, session.IsCompleted); err != nil {
		return nil, err
	}

	driftRecoveriesTotal.Inc()
	s.logger.Warn("Session pointed at a missing act, reset to act 1",
		zap.Int64("sessionID", session.ID),
		zap.Int64("storyID", session.StoryID),
		zap.Int("missingAct", driftedAct))
	return act, nil
}

func (s *storyServiceImpl) checkPose(ctx context.Context, querier interfaces.DBTX, poseID *int64) error {
	if poseID == nil {
		return nil
	}
	if _, err := s.repos.Poses.GetByID(ctx, querier, *poseID); err != nil {
		if errors.Is(err, models.ErrPoseNotFound) {
			return fmt.Errorf("%w: %d", models.ErrUnknownPose, *poseID)
		}
		return err
	}
	return nil
}

// publish sends an event after commit. Failures never fail the request.
func (s *storyServiceImpl) publish(ctx context.Context, event sharedMessaging.SessionEvent) {
	if s.publisher == nil {
		return
	}
	event.OccurredAt = s.now()
	if err := s.publisher.PublishSessionEvent(ctx, event); err != nil {
		eventPublishFailuresTotal.Inc()
		s.logger.Error("Failed to publish session event",
			zap.String("eventType", string(event.EventType)),
			zap.Int64("sessionID", event.SessionID),
			zap.Error(err))
	}
}

// userFromContext builds the local user row, using the username claim when present.
func userFromContext(ctx context.Context, userID uint64) *models.User {
	username, ok := models.GetUsernameFromContext(ctx)
	if !ok {
		username = fmt.Sprintf("player%d", userID)
	}
	return &models.User{ID: userID, Username: username}
}
