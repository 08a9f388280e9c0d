package service

import (
	"context"
	"testing"
	"time"

	"pulse/internal/models"

	"github.com/stretchr/testify/assert"
)

// Stub repositories with overridable behavior per method. The noop
// constructors return permissive defaults so each test only overrides what
// it cares about.

type postRepoStub struct {
	createFn    func(context.Context, *models.Post) error
	getByIDFn   func(context.Context, uint, uint) (*models.Post, error)
	deleteFn    func(context.Context, uint) error
	homeFeedFn  func(context.Context, uint, int, int) ([]*models.Post, error)
	trendingFn  func(context.Context, time.Time, int, int, uint) ([]*models.Post, error)
	byUserFn    func(context.Context, uint, int, int, uint) ([]*models.Post, error)
	byHashtagFn func(context.Context, string, int, int, uint) ([]*models.Post, error)
	isLikedFn   func(context.Context, uint, uint) (bool, error)
	likeFn      func(context.Context, uint, uint) error
	unlikeFn    func(context.Context, uint, uint) error
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id, currentUserID uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id, currentUserID)
}
func (s *postRepoStub) Delete(ctx context.Context, id uint) error { return s.deleteFn(ctx, id) }
func (s *postRepoStub) HomeFeed(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, error) {
	return s.homeFeedFn(ctx, userID, limit, offset)
}
func (s *postRepoStub) Trending(ctx context.Context, since time.Time, limit, offset int, currentUserID uint) ([]*models.Post, error) {
	return s.trendingFn(ctx, since, limit, offset, currentUserID)
}
func (s *postRepoStub) ByUser(ctx context.Context, userID uint, limit, offset int, currentUserID uint) ([]*models.Post, error) {
	return s.byUserFn(ctx, userID, limit, offset, currentUserID)
}
func (s *postRepoStub) ByHashtag(ctx context.Context, tag string, limit, offset int, currentUserID uint) ([]*models.Post, error) {
	return s.byHashtagFn(ctx, tag, limit, offset, currentUserID)
}
func (s *postRepoStub) IsLiked(ctx context.Context, userID, postID uint) (bool, error) {
	return s.isLikedFn(ctx, userID, postID)
}
func (s *postRepoStub) Like(ctx context.Context, userID, postID uint) error {
	return s.likeFn(ctx, userID, postID)
}
func (s *postRepoStub) Unlike(ctx context.Context, userID, postID uint) error {
	return s.unlikeFn(ctx, userID, postID)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn: func(_ context.Context, p *models.Post) error {
			p.ID = 1
			return nil
		},
		getByIDFn: func(_ context.Context, id, _ uint) (*models.Post, error) {
			return &models.Post{ID: id, UserID: 99, Content: "hello"}, nil
		},
		deleteFn: func(_ context.Context, _ uint) error { return nil },
		homeFeedFn: func(_ context.Context, _ uint, _, _ int) ([]*models.Post, error) {
			return nil, nil
		},
		trendingFn: func(_ context.Context, _ time.Time, _, _ int, _ uint) ([]*models.Post, error) {
			return nil, nil
		},
		byUserFn: func(_ context.Context, _ uint, _, _ int, _ uint) ([]*models.Post, error) {
			return nil, nil
		},
		byHashtagFn: func(_ context.Context, _ string, _, _ int, _ uint) ([]*models.Post, error) {
			return nil, nil
		},
		isLikedFn: func(_ context.Context, _, _ uint) (bool, error) { return false, nil },
		likeFn:    func(_ context.Context, _, _ uint) error { return nil },
		unlikeFn:  func(_ context.Context, _, _ uint) error { return nil },
	}
}

type userRepoStub struct {
	createFn        func(context.Context, *models.User) error
	getByIDFn       func(context.Context, uint) (*models.User, error)
	getByUsernameFn func(context.Context, string) (*models.User, error)
	getByEmailFn    func(context.Context, string) (*models.User, error)
	updateProfileFn func(context.Context, uint, map[string]interface{}) (*models.User, error)
	searchFn        func(context.Context, string, int, int) ([]*models.User, error)
}

func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) UpdateProfile(ctx context.Context, userID uint, updates map[string]interface{}) (*models.User, error) {
	return s.updateProfileFn(ctx, userID, updates)
}
func (s *userRepoStub) Search(ctx context.Context, query string, limit, offset int) ([]*models.User, error) {
	return s.searchFn(ctx, query, limit, offset)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		createFn: func(_ context.Context, u *models.User) error {
			u.ID = 1
			return nil
		},
		getByIDFn: func(_ context.Context, id uint) (*models.User, error) {
			return &models.User{ID: id, Username: "user"}, nil
		},
		getByUsernameFn: func(_ context.Context, username string) (*models.User, error) {
			return &models.User{ID: 2, Username: username}, nil
		},
		getByEmailFn: func(_ context.Context, email string) (*models.User, error) {
			return &models.User{ID: 2, Email: email}, nil
		},
		updateProfileFn: func(_ context.Context, userID uint, _ map[string]interface{}) (*models.User, error) {
			return &models.User{ID: userID}, nil
		},
		searchFn: func(_ context.Context, _ string, _, _ int) ([]*models.User, error) {
			return nil, nil
		},
	}
}

type commentRepoStub struct {
	createFn       func(context.Context, *models.Comment) error
	getByIDFn      func(context.Context, uint) (*models.Comment, error)
	deleteFn       func(context.Context, uint) error
	listByPostFn   func(context.Context, uint, int, int) ([]*models.Comment, error)
	listRepliesFn  func(context.Context, uint, int, int) ([]*models.Comment, error)
	countRepliesFn func(context.Context, uint) (int64, error)
}

func (s *commentRepoStub) Create(ctx context.Context, comment *models.Comment) error {
	return s.createFn(ctx, comment)
}
func (s *commentRepoStub) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	return s.getByIDFn(ctx, id)
}
func (s *commentRepoStub) Delete(ctx context.Context, id uint) error { return s.deleteFn(ctx, id) }
func (s *commentRepoStub) ListByPost(ctx context.Context, postID uint, limit, offset int) ([]*models.Comment, error) {
	return s.listByPostFn(ctx, postID, limit, offset)
}
func (s *commentRepoStub) ListReplies(ctx context.Context, parentID uint, limit, offset int) ([]*models.Comment, error) {
	return s.listRepliesFn(ctx, parentID, limit, offset)
}
func (s *commentRepoStub) CountReplies(ctx context.Context, parentID uint) (int64, error) {
	return s.countRepliesFn(ctx, parentID)
}

func noopCommentRepo() *commentRepoStub {
	return &commentRepoStub{
		createFn: func(_ context.Context, c *models.Comment) error {
			c.ID = 1
			return nil
		},
		getByIDFn: func(_ context.Context, id uint) (*models.Comment, error) {
			return &models.Comment{ID: id, PostID: 1, UserID: 1, Content: "a comment"}, nil
		},
		deleteFn: func(_ context.Context, _ uint) error { return nil },
		listByPostFn: func(_ context.Context, _ uint, _, _ int) ([]*models.Comment, error) {
			return nil, nil
		},
		listRepliesFn: func(_ context.Context, _ uint, _, _ int) ([]*models.Comment, error) {
			return nil, nil
		},
		countRepliesFn: func(_ context.Context, _ uint) (int64, error) { return 0, nil },
	}
}

type followRepoStub struct {
	followFn      func(context.Context, uint, uint) error
	unfollowFn    func(context.Context, uint, uint) error
	isFollowingFn func(context.Context, uint, uint) (bool, error)
	followersFn   func(context.Context, uint, int, int) ([]*models.User, error)
	followingFn   func(context.Context, uint, int, int) ([]*models.User, error)
}

func (s *followRepoStub) Follow(ctx context.Context, followerID, targetID uint) error {
	return s.followFn(ctx, followerID, targetID)
}
func (s *followRepoStub) Unfollow(ctx context.Context, followerID, targetID uint) error {
	return s.unfollowFn(ctx, followerID, targetID)
}
func (s *followRepoStub) IsFollowing(ctx context.Context, followerID, targetID uint) (bool, error) {
	return s.isFollowingFn(ctx, followerID, targetID)
}
func (s *followRepoStub) Followers(ctx context.Context, userID uint, limit, offset int) ([]*models.User, error) {
	return s.followersFn(ctx, userID, limit, offset)
}
func (s *followRepoStub) Following(ctx context.Context, userID uint, limit, offset int) ([]*models.User, error) {
	return s.followingFn(ctx, userID, limit, offset)
}

func noopFollowRepo() *followRepoStub {
	return &followRepoStub{
		followFn:      func(_ context.Context, _, _ uint) error { return nil },
		unfollowFn:    func(_ context.Context, _, _ uint) error { return nil },
		isFollowingFn: func(_ context.Context, _, _ uint) (bool, error) { return false, nil },
		followersFn: func(_ context.Context, _ uint, _, _ int) ([]*models.User, error) {
			return nil, nil
		},
		followingFn: func(_ context.Context, _ uint, _, _ int) ([]*models.User, error) {
			return nil, nil
		},
	}
}

type notificationRepoStub struct {
	createFn      func(context.Context, *models.Notification) error
	getByIDFn     func(context.Context, uint) (*models.Notification, error)
	listByUserFn  func(context.Context, uint, int, int) ([]*models.Notification, error)
	markReadFn    func(context.Context, uint) error
	markAllReadFn func(context.Context, uint) error
	countUnreadFn func(context.Context, uint) (int64, error)
}

func (s *notificationRepoStub) Create(ctx context.Context, n *models.Notification) error {
	return s.createFn(ctx, n)
}
func (s *notificationRepoStub) GetByID(ctx context.Context, id uint) (*models.Notification, error) {
	return s.getByIDFn(ctx, id)
}
func (s *notificationRepoStub) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]*models.Notification, error) {
	return s.listByUserFn(ctx, userID, limit, offset)
}
func (s *notificationRepoStub) MarkRead(ctx context.Context, id uint) error {
	return s.markReadFn(ctx, id)
}
func (s *notificationRepoStub) MarkAllRead(ctx context.Context, userID uint) error {
	return s.markAllReadFn(ctx, userID)
}
func (s *notificationRepoStub) CountUnread(ctx context.Context, userID uint) (int64, error) {
	return s.countUnreadFn(ctx, userID)
}

func noopNotificationRepo() *notificationRepoStub {
	return &notificationRepoStub{
		createFn: func(_ context.Context, n *models.Notification) error {
			n.ID = 1
			return nil
		},
		getByIDFn: func(_ context.Context, id uint) (*models.Notification, error) {
			return &models.Notification{ID: id, UserID: 1}, nil
		},
		listByUserFn: func(_ context.Context, _ uint, _, _ int) ([]*models.Notification, error) {
			return nil, nil
		},
		markReadFn:    func(_ context.Context, _ uint) error { return nil },
		markAllReadFn: func(_ context.Context, _ uint) error { return nil },
		countUnreadFn: func(_ context.Context, _ uint) (int64, error) { return 0, nil },
	}
}

type hashtagRepoStub struct {
	indexPostFn func(context.Context, uint, []string) error
	getByTagFn  func(context.Context, string) (*models.Hashtag, error)
	trendingFn  func(context.Context, time.Time, int) ([]*models.Hashtag, error)
	searchFn    func(context.Context, string, int, int) ([]*models.Hashtag, error)
}

func (s *hashtagRepoStub) IndexPost(ctx context.Context, postID uint, tags []string) error {
	return s.indexPostFn(ctx, postID, tags)
}
func (s *hashtagRepoStub) GetByTag(ctx context.Context, tag string) (*models.Hashtag, error) {
	return s.getByTagFn(ctx, tag)
}
func (s *hashtagRepoStub) Trending(ctx context.Context, since time.Time, limit int) ([]*models.Hashtag, error) {
	return s.trendingFn(ctx, since, limit)
}
func (s *hashtagRepoStub) Search(ctx context.Context, query string, limit, offset int) ([]*models.Hashtag, error) {
	return s.searchFn(ctx, query, limit, offset)
}

func noopHashtagRepo() *hashtagRepoStub {
	return &hashtagRepoStub{
		indexPostFn: func(_ context.Context, _ uint, _ []string) error { return nil },
		getByTagFn: func(_ context.Context, tag string) (*models.Hashtag, error) {
			return &models.Hashtag{ID: 1, Tag: tag}, nil
		},
		trendingFn: func(_ context.Context, _ time.Time, _ int) ([]*models.Hashtag, error) {
			return nil, nil
		},
		searchFn: func(_ context.Context, _ string, _, _ int) ([]*models.Hashtag, error) {
			return nil, nil
		},
	}
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	assert.Error(t, err)
	assert.True(t, models.IsCode(err, code), "expected %s, got %v", code, err)
}

func assertValidationError(t *testing.T, err error) {
	t.Helper()
	assertCode(t, err, "VALIDATION_ERROR")
}
