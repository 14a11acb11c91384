package repository_test

import (
	"context"
	"testing"
	"time"

	"tasktracker/internal/database"
	"tasktracker/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func seedUser(t *testing.T, db *gorm.DB, username string) model.User {
	t.Helper()
	user := model.User{ID: uuid.New(), Username: username, HashedPassword: "hash"}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func seedTask(t *testing.T, db *gorm.DB, owner uuid.UUID, title, status string, createdAt time.Time) model.Task {
	t.Helper()
	task := model.Task{
		ID:        uuid.New(),
		Title:     title,
		Status:    status,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
		UserID:    owner,
	}
	require.NoError(t, db.WithContext(context.Background()).Create(&task).Error)
	return task
}
