// Package seed provides helpers to create demo data for the application
// database. These helpers are intended for development and testing only.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"pulse/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by the seeder and tests.
type Factory struct {
	db   *gorm.DB
	opts Options
	// #nosec G404: acceptable for seeding
	rng *rand.Rand
	now func() time.Time
}

// NewFactory creates a new Factory bound to the provided Gorm DB. db may be
// nil in DryRun mode.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	seed := opts.RandSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	gofakeit.Seed(seed)
	return &Factory{
		db:   db,
		opts: opts,
		rng:  rand.New(rand.NewSource(seed)), //nolint:gosec // weak random is fine for seeding
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// BuildUser constructs a user without persisting it. Usernames get a numeric
// suffix so large batches stay unique.
func (f *Factory) BuildUser(overrides ...func(*models.User)) *models.User {
	first, last := gofakeit.FirstName(), gofakeit.LastName()
	handle := strings.ToLower(first + "_" + last)
	handle = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			return r
		}
		return -1
	}, handle)
	if len(handle) > 24 {
		handle = handle[:24]
	}

	user := &models.User{
		Name:     first + " " + last,
		Username: fmt.Sprintf("%s%d", handle, gofakeit.Number(100, 99999)),
		Bio:      gofakeit.Sentence(10),
		Image:    fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID()),
	}
	if f.rng.Intn(20) == 0 {
		user.Badge = models.BadgeBlue
	}
	for _, override := range overrides {
		override(user)
	}
	return user
}

// CreateUser constructs and persists a sample user.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	user := f.BuildUser(overrides...)
	if f.opts.DryRun {
		user.ID = uuid.NewString()
		log.Printf("[dry-run] CreateUser: %s", user.Username)
		return user, nil
	}
	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// BuildPost constructs a post by author with a created_at spread over the
// last MaxDays days. It is not persisted.
func (f *Factory) BuildPost(author *models.User, overrides ...func(*models.Post)) *models.Post {
	post := &models.Post{
		UserID:  author.ID,
		Content: gofakeit.Paragraph(1, f.rng.Intn(3)+1, 12, " "),
	}
	post.CreatedAt = f.backdate()
	post.UpdatedAt = post.CreatedAt

	for _, override := range overrides {
		override(post)
	}
	return post
}

// CreatePostsBatch persists multiple posts in batches of BatchSize.
func (f *Factory) CreatePostsBatch(posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	if f.opts.DryRun {
		for _, p := range posts {
			p.ID = uuid.NewString()
		}
		log.Printf("[dry-run] CreatePostsBatch: %d posts (no DB write)", len(posts))
		return nil
	}
	return f.db.CreateInBatches(posts, f.batchSize()).Error
}

// CreateComment constructs and persists a comment on post, dated after the
// post itself.
func (f *Factory) CreateComment(author *models.User, post *models.Post, overrides ...func(*models.Comment)) (*models.Comment, error) {
	comment := &models.Comment{
		PostID:  post.ID,
		UserID:  author.ID,
		Content: gofakeit.Sentence(f.rng.Intn(12) + 3),
	}
	comment.CreatedAt = f.after(post.CreatedAt)
	comment.UpdatedAt = comment.CreatedAt
	for _, override := range overrides {
		override(comment)
	}

	if f.opts.DryRun {
		comment.ID = uuid.NewString()
		return comment, nil
	}
	if err := f.db.Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// CreateLike persists a like from user on post.
func (f *Factory) CreateLike(user *models.User, post *models.Post) error {
	if f.opts.DryRun {
		return nil
	}
	postID := post.ID
	return f.db.Create(&models.Like{UserID: user.ID, PostID: &postID, CreatedAt: f.after(post.CreatedAt)}).Error
}

// CreateView persists a view from user on post.
func (f *Factory) CreateView(user *models.User, post *models.Post) error {
	if f.opts.DryRun {
		return nil
	}
	return f.db.Create(&models.View{UserID: user.ID, PostID: post.ID, CreatedAt: f.after(post.CreatedAt)}).Error
}

// CreateFollow persists follower following followee.
func (f *Factory) CreateFollow(follower, followee *models.User) error {
	if f.opts.DryRun {
		return nil
	}
	return f.db.Create(&models.Follow{FollowerID: follower.ID, FolloweeID: followee.ID}).Error
}

func (f *Factory) backdate() time.Time {
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	back := time.Duration(f.rng.Intn(maxDays))*24*time.Hour +
		time.Duration(f.rng.Intn(24))*time.Hour +
		time.Duration(f.rng.Intn(60))*time.Minute
	return f.now().Add(-back)
}

// after returns a random instant between t and now.
func (f *Factory) after(t time.Time) time.Time {
	span := f.now().Sub(t)
	if span <= time.Second {
		return t
	}
	return t.Add(time.Duration(f.rng.Int63n(int64(span))))
}

func (f *Factory) batchSize() int {
	if f.opts.BatchSize > 0 {
		return f.opts.BatchSize
	}
	return 100
}
