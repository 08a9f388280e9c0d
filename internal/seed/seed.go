// Package seed provides database seeding utilities for development and testing.
package seed

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"pulse/internal/models"
	"pulse/internal/repository"
	"pulse/internal/service"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumPosts    int
	ShouldClean bool
	FixtureFile string
}

var seedTags = []string{
	"#golang", "#coding", "#photography", "#travel", "#fitness",
	"#music", "#food", "#art", "#gaming", "#nature",
	"#startup", "#coffee", "#books", "#design", "#science",
}

// Seeder populates the database with demo data. Likes, follows and comments
// go through the repositories so the denormalized counters stay consistent
// with the relation rows.
type Seeder struct {
	db          *gorm.DB
	users       repository.UserRepository
	posts       repository.PostRepository
	comments    repository.CommentRepository
	follows     repository.FollowRepository
	hashtags    repository.HashtagRepository
	rand *rand.Rand
}

// NewSeeder creates a new Seeder bound to the provided Gorm DB.
func NewSeeder(db *gorm.DB) *Seeder {
	gofakeit.Seed(time.Now().UnixNano())
	return &Seeder{
		db:       db,
		users:    repository.NewUserRepository(db),
		posts:    repository.NewPostRepository(db),
		comments: repository.NewCommentRepository(db),
		follows:  repository.NewFollowRepository(db),
		hashtags: repository.NewHashtagRepository(db),
		rand:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// fixtureUser is the YAML shape for hand-authored seed accounts.
type fixtureUser struct {
	Username string `yaml:"username"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	FullName string `yaml:"full_name"`
	Bio      string `yaml:"bio"`
}

type fixtureFile struct {
	Users []fixtureUser `yaml:"users"`
}

// Run seeds the database according to opts.
func (s *Seeder) Run(ctx context.Context, opts Options) error {
	log.Printf("Seeding database with %d users and %d posts...", opts.NumUsers, opts.NumPosts)

	if opts.ShouldClean {
		if err := s.ClearAll(); err != nil {
			return fmt.Errorf("cleanup failed: %w", err)
		}
	}

	var users []*models.User

	if opts.FixtureFile != "" {
		fixed, err := s.loadFixture(ctx, opts.FixtureFile)
		if err != nil {
			return fmt.Errorf("fixture load failed: %w", err)
		}
		users = append(users, fixed...)
		log.Printf("✓ %d fixture users created", len(fixed))
	}

	generated, err := s.createUsers(ctx, opts.NumUsers)
	if err != nil {
		return fmt.Errorf("failed to create users: %w", err)
	}
	users = append(users, generated...)
	log.Printf("✓ %d users total", len(users))

	posts, err := s.createPosts(ctx, users, opts.NumPosts)
	if err != nil {
		return fmt.Errorf("failed to create posts: %w", err)
	}
	log.Printf("✓ %d posts created", len(posts))

	if err := s.createFollowGraph(ctx, users); err != nil {
		return fmt.Errorf("failed to create follow graph: %w", err)
	}
	log.Println("✓ follow graph created")

	if err := s.createEngagement(ctx, users, posts); err != nil {
		return fmt.Errorf("failed to create engagement: %w", err)
	}
	log.Println("✓ likes and comments created")

	log.Println("Seeding complete")
	return nil
}

// ClearAll removes all rows from every seeded table.
func (s *Seeder) ClearAll() error {
	// Children before parents to keep foreign keys happy.
	tables := []string{
		"notifications", "post_hashtags", "hashtags",
		"comments", "likes", "follows", "posts", "users",
	}
	for _, table := range tables {
		if err := s.db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}

func (s *Seeder) loadFixture(ctx context.Context, path string) ([]*models.User, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var fixture fixtureFile
	if err := yaml.Unmarshal(data, &fixture); err != nil {
		return nil, err
	}

	users := make([]*models.User, 0, len(fixture.Users))
	for _, fu := range fixture.Users {
		hashed, err := bcrypt.GenerateFromPassword([]byte(fu.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		user := &models.User{
			Username: fu.Username,
			Email:    fu.Email,
			Password: string(hashed),
			FullName: fu.FullName,
			Bio:      fu.Bio,
		}
		if err := s.users.Create(ctx, user); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

func (s *Seeder) createUsers(ctx context.Context, n int) ([]*models.User, error) {
	// All generated accounts share one bcrypt hash; hashing per user makes
	// large seeds unbearably slow.
	hashed, err := bcrypt.GenerateFromPassword([]byte("SeedPassword12!"), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	users := make([]*models.User, 0, n)
	for i := 0; i < n; i++ {
		user := &models.User{
			Username: fmt.Sprintf("%s%d", gofakeit.Username(), i),
			Email:    fmt.Sprintf("seed%d_%s", i, gofakeit.Email()),
			Password: string(hashed),
			FullName: gofakeit.Name(),
			Bio:      gofakeit.Sentence(8),
			Location: gofakeit.City(),
			Website:  gofakeit.URL(),
			Verified: s.rand.Intn(10) == 0,
		}
		if err := s.users.Create(ctx, user); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

func (s *Seeder) createPosts(ctx context.Context, users []*models.User, n int) ([]*models.Post, error) {
	if len(users) == 0 {
		return nil, nil
	}

	posts := make([]*models.Post, 0, n)
	for i := 0; i < n; i++ {
		author := users[s.rand.Intn(len(users))]
		tags := seedTags[s.rand.Intn(len(seedTags))]
		if s.rand.Intn(2) == 0 {
			tags += " " + seedTags[s.rand.Intn(len(seedTags))]
		}

		post := &models.Post{
			UserID:   author.ID,
			Content:  gofakeit.Paragraph(1, 3, 8, " "),
			Tags:     tags,
			Location: gofakeit.City(),
		}
		if s.rand.Intn(3) == 0 {
			post.MediaURL = fmt.Sprintf("https://picsum.photos/seed/%s/800/800", gofakeit.UUID())
			post.MediaType = "image"
		}
		if err := s.posts.Create(ctx, post); err != nil {
			return nil, err
		}

		// Spread creation times over the past month so trending has both
		// in-window and out-of-window material.
		createdAt := time.Now().Add(-time.Duration(s.rand.Intn(30*24)) * time.Hour)
		if err := s.db.Model(&models.Post{}).Where("id = ?", post.ID).
			UpdateColumn("created_at", createdAt).Error; err != nil {
			return nil, err
		}

		if hashtags := extractTags(post.Content, tags); len(hashtags) > 0 {
			if err := s.hashtags.IndexPost(ctx, post.ID, hashtags); err != nil {
				return nil, err
			}
		}
		posts = append(posts, post)
	}
	return posts, nil
}

func (s *Seeder) createFollowGraph(ctx context.Context, users []*models.User) error {
	for _, follower := range users {
		n := s.rand.Intn(8)
		for i := 0; i < n; i++ {
			target := users[s.rand.Intn(len(users))]
			if target.ID == follower.ID {
				continue
			}
			err := s.follows.Follow(ctx, follower.ID, target.ID)
			if err != nil && !models.IsCode(err, "CONFLICT") {
				return err
			}
		}
	}
	return nil
}

func (s *Seeder) createEngagement(ctx context.Context, users []*models.User, posts []*models.Post) error {
	for _, post := range posts {
		nLikes := s.rand.Intn(6)
		for i := 0; i < nLikes; i++ {
			user := users[s.rand.Intn(len(users))]
			err := s.posts.Like(ctx, user.ID, post.ID)
			if err != nil && !models.IsCode(err, "CONFLICT") {
				return err
			}
		}

		nComments := s.rand.Intn(4)
		for i := 0; i < nComments; i++ {
			user := users[s.rand.Intn(len(users))]
			comment := &models.Comment{
				UserID:  user.ID,
				PostID:  post.ID,
				Content: gofakeit.Sentence(10),
			}
			if err := s.comments.Create(ctx, comment); err != nil {
				return err
			}
		}
	}
	return nil
}

// extractTags mirrors the hashtag extraction posts go through at create time.
func extractTags(content, tags string) []string {
	return service.ExtractHashtags(content, tags)
}
