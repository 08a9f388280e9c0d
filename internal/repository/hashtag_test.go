package repository

import (
	"context"
	"testing"
	"time"

	"pulse/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashtagRepository_IndexPost_UsageGrows(t *testing.T) {
	db := newTestDB(t)
	repo := NewHashtagRepository(db)
	ctx := context.Background()

	user := createTestUser(t, db, "alice")
	first := createTestPost(t, db, user.ID, "post one")
	second := createTestPost(t, db, user.ID, "post two")

	require.NoError(t, repo.IndexPost(ctx, first.ID, []string{"sunset", "beach"}))
	require.NoError(t, repo.IndexPost(ctx, second.ID, []string{"sunset"}))

	sunset, err := repo.GetByTag(ctx, "sunset")
	require.NoError(t, err)
	assert.Equal(t, 2, sunset.UsageCount)

	beach, err := repo.GetByTag(ctx, "beach")
	require.NoError(t, err)
	assert.Equal(t, 1, beach.UsageCount)

	assert.Equal(t, int64(2), countRows(t, db, &models.PostHashtag{}, "hashtag_id = ?", sunset.ID))
	assert.Equal(t, int64(1), countRows(t, db, &models.PostHashtag{}, "hashtag_id = ?", beach.ID))
}

func TestHashtagRepository_IndexPost_EmptyIsNoop(t *testing.T) {
	db := newTestDB(t)
	repo := NewHashtagRepository(db)

	require.NoError(t, repo.IndexPost(context.Background(), 1, nil))
	assert.Zero(t, countRows(t, db, &models.Hashtag{}, "1 = 1"))
}

func TestHashtagRepository_GetByTag_NotFound(t *testing.T) {
	db := newTestDB(t)
	repo := NewHashtagRepository(db)

	_, err := repo.GetByTag(context.Background(), "missing")
	assert.True(t, models.IsCode(err, "NOT_FOUND"), "got %v", err)
}

func TestHashtagRepository_Trending_RecentPostsRank(t *testing.T) {
	db := newTestDB(t)
	repo := NewHashtagRepository(db)
	ctx := context.Background()

	user := createTestUser(t, db, "alice")
	now := time.Now()
	since := now.Add(-7 * 24 * time.Hour)

	// "hot" is on two recent posts, "warm" on one, "stale" only on an old one.
	recentA := createTestPost(t, db, user.ID, "a")
	backdate(t, db, &models.Post{}, recentA.ID, now.Add(-time.Hour))
	recentB := createTestPost(t, db, user.ID, "b")
	backdate(t, db, &models.Post{}, recentB.ID, now.Add(-2*time.Hour))
	old := createTestPost(t, db, user.ID, "c")
	backdate(t, db, &models.Post{}, old.ID, now.Add(-30*24*time.Hour))

	require.NoError(t, repo.IndexPost(ctx, recentA.ID, []string{"hot", "warm"}))
	require.NoError(t, repo.IndexPost(ctx, recentB.ID, []string{"hot"}))
	require.NoError(t, repo.IndexPost(ctx, old.ID, []string{"stale"}))

	hashtags, err := repo.Trending(ctx, since, 10)
	require.NoError(t, err)
	require.Len(t, hashtags, 3)

	assert.Equal(t, "hot", hashtags[0].Tag)
	assert.Equal(t, 2, hashtags[0].RecentPosts)
	assert.Equal(t, "warm", hashtags[1].Tag)
	assert.Equal(t, 1, hashtags[1].RecentPosts)
	assert.Equal(t, "stale", hashtags[2].Tag)
	assert.Zero(t, hashtags[2].RecentPosts)
}

func TestHashtagRepository_Search(t *testing.T) {
	db := newTestDB(t)
	repo := NewHashtagRepository(db)
	ctx := context.Background()

	user := createTestUser(t, db, "alice")
	post := createTestPost(t, db, user.ID, "post")
	require.NoError(t, repo.IndexPost(ctx, post.ID, []string{"sunset", "sunrise", "beach"}))

	// Bump sunrise so ordering by lifetime usage is observable.
	require.NoError(t, db.Model(&models.Hashtag{}).
		Where("tag = ?", "sunrise").
		UpdateColumn("usage_count", 5).Error)

	hashtags, err := repo.Search(ctx, "sun", 20, 0)
	require.NoError(t, err)
	require.Len(t, hashtags, 2)
	assert.Equal(t, "sunrise", hashtags[0].Tag)
	assert.Equal(t, "sunset", hashtags[1].Tag)
}
