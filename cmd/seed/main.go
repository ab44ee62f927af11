// Command seed fills the database with demo users, posts and engagement,
// and prints a development token for one of the seeded users.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"pulse/internal/bootstrap"
	"pulse/internal/config"
	"pulse/internal/middleware"
	"pulse/internal/seed"
)

func main() {
	defaults := seed.DefaultOptions()
	numUsers := flag.Int("users", defaults.NumUsers, "Number of users to create")
	numPosts := flag.Int("posts", defaults.NumPosts, "Number of posts to create")
	follows := flag.Int("follows", defaults.FollowsPerUser, "Follows per user")
	rate := flag.Float64("engagement", defaults.EngagementRate, "Chance a user engages with a post (0-1)")
	days := flag.Int("days", defaults.MaxDays, "Spread post timestamps over this many days")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	dryRun := flag.Bool("dry-run", false, "Build data without writing it")
	tokenTTL := flag.Duration("token-ttl", 24*time.Hour, "Lifetime of the printed development token")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.IsProduction() {
		log.Fatal("Refusing to seed a production database")
	}

	ctx := context.Background()
	rt, err := bootstrap.InitRuntime(ctx, cfg, bootstrap.Options{SkipStorage: true})
	if err != nil {
		log.Fatalf("Failed to initialize runtime: %v", err)
	}
	defer rt.Close()

	opts := seed.Options{
		NumUsers:       *numUsers,
		NumPosts:       *numPosts,
		FollowsPerUser: *follows,
		EngagementRate: *rate,
		MaxDays:        *days,
		BatchSize:      defaults.BatchSize,
		ShouldClean:    *shouldClean,
		DryRun:         *dryRun,
	}
	res, err := seed.NewSeeder(rt.DB, opts).Run(ctx)
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	if len(res.Users) == 0 || *dryRun {
		return
	}
	middleware.InitMiddleware(cfg)
	user := res.Users[0]
	token, err := middleware.SignToken(cfg, user.ID, *tokenTTL)
	if err != nil {
		log.Fatalf("Failed to sign development token: %v", err)
	}
	fmt.Printf("user:  %s (%s)\ntoken: %s\n", user.Username, user.ID, token)
}
