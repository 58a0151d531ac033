// Command seed populates the configured store with demo data, either
// generated or loaded from a YAML fixtures file.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"psocial/internal/bootstrap"
	"psocial/internal/config"
	"psocial/internal/seed"
)

type options struct {
	numUsers  int
	numPosts  int
	fixtures  string
	fakerSeed int64
}

func main() {
	var opts options
	flag.IntVar(&opts.numUsers, "users", 20, "Number of users to create")
	flag.IntVar(&opts.numPosts, "posts", 60, "Number of posts to create")
	flag.StringVar(&opts.fixtures, "fixtures", "", "Apply a YAML fixtures file instead of generated data")
	flag.Int64Var(&opts.fakerSeed, "faker-seed", 0, "Seed for reproducible generated data (0 = random)")
	flag.Parse()

	log.Println("🌱 psocial seeder")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := run(context.Background(), cfg, opts); err != nil {
		log.Printf("❌ %v", err)
		os.Exit(1)
	}
}

// run owns the runtime so it is closed on every path, error paths included.
func run(ctx context.Context, cfg *config.Config, opts options) (err error) {
	rt, err := bootstrap.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if cerr := rt.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close store: %w", cerr)
		}
	}()

	s := seed.NewSeeder(rt.Services)

	if opts.fixtures != "" {
		fx, err := seed.LoadFixturesFile(opts.fixtures)
		if err != nil {
			return fmt.Errorf("load fixtures: %w", err)
		}
		if err := s.ApplyFixtures(ctx, fx); err != nil {
			return fmt.Errorf("fixture seeding: %w", err)
		}
		log.Printf("✨ Applied %d users, %d posts, %d messages from %s\n",
			len(fx.Users), len(fx.Posts), len(fx.Messages), opts.fixtures)
		return nil
	}

	res, err := s.SeedDemo(ctx, seed.Options{
		NumUsers:  opts.numUsers,
		NumPosts:  opts.numPosts,
		FakerSeed: opts.fakerSeed,
	})
	if err != nil {
		return fmt.Errorf("demo seeding: %w", err)
	}

	log.Printf("✨ Created %d users, %d posts, %d follows, %d likes, %d comments, %d messages\n",
		len(res.Users), res.Posts, res.Follows, res.Likes, res.Comments, res.Messages)
	log.Printf("📧 All demo users have the password: %s\n", seed.DemoPassword)
	return nil
}
