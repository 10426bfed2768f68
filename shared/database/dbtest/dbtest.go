// Package dbtest opens throwaway SQLite databases for tests.
package dbtest

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	pkgDatabase "fallen-dragon-server/pkg/database"
	"fallen-dragon-server/pkg/migration"
	sharedDatabase "fallen-dragon-server/shared/database"
	"fallen-dragon-server/shared/database/migrations"
	"fallen-dragon-server/shared/models"
)

// Open creates a migrated database file in t.TempDir and closes it on cleanup.
func Open(t testing.TB) *sql.DB {
	t.Helper()

	cfg := pkgDatabase.Config{
		Path:         filepath.Join(t.TempDir(), "fallen_dragon_test.db"),
		BusyTimeout:  5 * time.Second,
		MaxOpenConns: 4,
	}
	db, err := pkgDatabase.New(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err, "open test database")
	t.Cleanup(func() { _ = db.Close() })

	migrator := migration.NewMigrator(migration.Config{MigrationsFS: migrations.FS}, db.DB, zap.NewNop())
	require.NoError(t, migrator.Up(), "apply migrations")

	return db.DB
}

// InsertStory stores story with all its acts and choices, filling in the ids.
func InsertStory(t testing.TB, db *sql.DB, story *models.Story) *models.Story {
	t.Helper()

	ctx := context.Background()
	repo := sharedDatabase.NewSQLiteStoryRepository(zap.NewNop())
	require.NoError(t, repo.Create(ctx, db, story))
	for _, act := range story.Acts {
		act.StoryID = story.ID
		require.NoError(t, repo.CreateAct(ctx, db, act))
	}
	return story
}

// DragonStory is a small branching story used across tests:
//
//	1 -> 2 "Go left" | 3 "Go right"
//	2 -> 4 | 0 "Walk away"
//	3 -> -1 | -1 (two endings through one sentinel)
//	4 is an ending act with a "Start over" choice back to 1
func DragonStory() *models.Story {
	return &models.Story{
		Title:       "The Fallen Dragon",
		Description: "A knight follows the trail of a wounded dragon.",
		Acts: []*models.Act{
			{ActNumber: 1, Text: "You wake at the edge of a burnt forest.", Choices: []*models.Choice{
				{Text: "Go left", NextActNumber: 2},
				{Text: "Go right", NextActNumber: 3},
			}},
			{ActNumber: 2, Text: "The dragon lies in a clearing, breathing slowly.", Choices: []*models.Choice{
				{Text: "Approach the dragon", NextActNumber: 4},
				{Text: "Walk away", NextActNumber: 0},
			}},
			{ActNumber: 3, Text: "The village is empty.", Choices: []*models.Choice{
				{Text: "Wait for nightfall", NextActNumber: -1},
				{Text: "Burn the village", NextActNumber: -1},
			}},
			{ActNumber: 4, Text: "The dragon speaks your name.", IsEnding: true, Choices: []*models.Choice{
				{Text: "Start over", NextActNumber: 1},
			}},
		},
	}
}
