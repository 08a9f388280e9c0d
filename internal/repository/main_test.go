package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"pulse/internal/database"
	"pulse/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a private in-memory database with the full schema applied.
// MaxOpenConns is pinned to 1 because every sqlite :memory: connection is its
// own database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))

	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username: username,
		Email:    fmt.Sprintf("%s@example.com", username),
		Password: "hashed-password",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestPost(t *testing.T, db *gorm.DB, userID uint, content string) *models.Post {
	t.Helper()
	repo := NewPostRepository(db)
	post := &models.Post{UserID: userID, Content: content}
	require.NoError(t, repo.Create(context.Background(), post))
	return post
}

// backdate rewrites created_at so ordering assertions do not depend on
// sub-millisecond insert timing.
func backdate(t *testing.T, db *gorm.DB, model interface{}, id uint, at time.Time) {
	t.Helper()
	require.NoError(t, db.Model(model).
		Where("id = ?", id).
		UpdateColumn("created_at", at).Error)
}

func countRows(t *testing.T, db *gorm.DB, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(model).Where(query, args...).Count(&count).Error)
	return count
}
