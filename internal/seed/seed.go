package seed

import (
	"context"
	"fmt"
	"log/slog"

	"pulse/internal/middleware"
	"pulse/internal/models"

	"gorm.io/gorm"
)

// Options configure the seeder.
type Options struct {
	NumUsers int
	NumPosts int
	// FollowsPerUser is how many other users each seeded user follows.
	FollowsPerUser int
	// EngagementRate is the chance, 0-1, that a given user likes, views or
	// comments on a given post.
	EngagementRate float64
	MaxDays        int
	BatchSize      int
	ShouldClean    bool
	DryRun         bool
	// RandSeed makes a run reproducible when non-zero.
	RandSeed int64
}

// DefaultOptions returns a small, well connected data set.
func DefaultOptions() Options {
	return Options{
		NumUsers:       50,
		NumPosts:       200,
		FollowsPerUser: 8,
		EngagementRate: 0.15,
		MaxDays:        30,
		BatchSize:      100,
	}
}

// Result counts what a run created.
type Result struct {
	Users    []*models.User
	Posts    int
	Follows  int
	Likes    int
	Views    int
	Comments int
}

// Seeder composes Factory calls into a full social graph.
type Seeder struct {
	db   *gorm.DB
	opts Options
	f    *Factory
}

func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	return &Seeder{db: db, opts: opts, f: NewFactory(db, opts)}
}

// Run creates users, the follow graph, posts and engagement in that order.
func (s *Seeder) Run(ctx context.Context) (*Result, error) {
	log := middleware.Logger.With(slog.String("component", "seed"))
	log.InfoContext(ctx, "seeding started",
		slog.Int("users", s.opts.NumUsers),
		slog.Int("posts", s.opts.NumPosts),
		slog.Bool("dry_run", s.opts.DryRun),
	)

	if s.opts.ShouldClean && !s.opts.DryRun {
		if err := s.ClearAll(); err != nil {
			return nil, fmt.Errorf("clear data: %w", err)
		}
	}

	res := &Result{}
	users, err := s.SeedUsers(s.opts.NumUsers)
	if err != nil {
		return nil, fmt.Errorf("seed users: %w", err)
	}
	res.Users = users

	if res.Follows, err = s.SeedFollowGraph(users, s.opts.FollowsPerUser); err != nil {
		return nil, fmt.Errorf("seed follows: %w", err)
	}

	posts, err := s.SeedPosts(users, s.opts.NumPosts)
	if err != nil {
		return nil, fmt.Errorf("seed posts: %w", err)
	}
	res.Posts = len(posts)

	if err := s.SeedEngagement(users, posts, res); err != nil {
		return nil, fmt.Errorf("seed engagement: %w", err)
	}

	log.InfoContext(ctx, "seeding completed",
		slog.Int("users", len(res.Users)),
		slog.Int("posts", res.Posts),
		slog.Int("follows", res.Follows),
		slog.Int("likes", res.Likes),
		slog.Int("views", res.Views),
		slog.Int("comments", res.Comments),
	)
	return res, nil
}

// SeedUsers creates n users.
func (s *Seeder) SeedUsers(n int) ([]*models.User, error) {
	users := make([]*models.User, 0, n)
	for i := 0; i < n; i++ {
		u, err := s.f.CreateUser()
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, nil
}

// SeedFollowGraph makes each user follow up to perUser distinct others.
func (s *Seeder) SeedFollowGraph(users []*models.User, perUser int) (int, error) {
	if len(users) < 2 || perUser <= 0 {
		return 0, nil
	}
	if perUser > len(users)-1 {
		perUser = len(users) - 1
	}

	created := 0
	for i, follower := range users {
		picked := 0
		for _, j := range s.f.rng.Perm(len(users)) {
			if picked == perUser {
				break
			}
			if j == i {
				continue
			}
			if err := s.f.CreateFollow(follower, users[j]); err != nil {
				return created, err
			}
			picked++
			created++
		}
	}
	return created, nil
}

// SeedPosts creates n posts spread across random authors.
func (s *Seeder) SeedPosts(users []*models.User, n int) ([]*models.Post, error) {
	if len(users) == 0 || n <= 0 {
		return nil, nil
	}
	posts := make([]*models.Post, 0, n)
	for i := 0; i < n; i++ {
		posts = append(posts, s.f.BuildPost(users[s.f.rng.Intn(len(users))]))
	}
	if err := s.f.CreatePostsBatch(posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// SeedEngagement lets every user like, view and comment on a random share
// of the posts. Authors never engage with their own posts.
func (s *Seeder) SeedEngagement(users []*models.User, posts []*models.Post, res *Result) error {
	rate := s.opts.EngagementRate
	if rate <= 0 {
		return nil
	}
	for _, post := range posts {
		for _, u := range users {
			if u.ID == post.UserID {
				continue
			}
			if s.f.rng.Float64() < rate {
				if err := s.f.CreateView(u, post); err != nil {
					return err
				}
				res.Views++
			}
			if s.f.rng.Float64() < rate {
				if err := s.f.CreateLike(u, post); err != nil {
					return err
				}
				res.Likes++
			}
			if s.f.rng.Float64() < rate/3 {
				if _, err := s.f.CreateComment(u, post); err != nil {
					return err
				}
				res.Comments++
			}
		}
	}
	return nil
}

// ClearAll deletes every seeded row, children first.
func (s *Seeder) ClearAll() error {
	tables := []interface{}{
		&models.Like{},
		&models.View{},
		&models.Bookmark{},
		&models.Repost{},
		&models.Comment{},
		&models.Post{},
		&models.Follow{},
		&models.User{},
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, t := range tables {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(t).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
