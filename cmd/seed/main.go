package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/oksasatya/user-account-api/config"
	"github.com/oksasatya/user-account-api/internal/domain/entity"
	"github.com/oksasatya/user-account-api/internal/infrastructure/mongodb"
	"github.com/oksasatya/user-account-api/pkg/helpers"
)

// Seeds demo users into the users collection, handy for exercising the
// paginated listing locally. Existing emails are skipped.
func main() {
	count := flag.Int("count", 25, "number of demo users to seed")
	password := flag.String("password", "password123", "password for every seeded user")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()

	ctx := context.Background()
	client, err := mongodb.NewClient(ctx, cfg.MongoURI)
	if err != nil {
		log.Fatalf("failed to connect to mongodb: %v", err)
	}
	defer func() { _ = client.Disconnect(ctx) }()

	repo := mongodb.NewUserRepository(client.Database(cfg.MongoDatabase), cfg.UsersCollection)
	if err := repo.EnsureIndexes(ctx); err != nil {
		log.Fatalf("failed to ensure indexes: %v", err)
	}

	hash, err := helpers.HashPassword(*password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	seeded := 0
	for i := 0; i < *count; i++ {
		email := fmt.Sprintf("demo%02d@example.com", i)
		existing, err := repo.FindByEmail(ctx, email)
		if err != nil {
			log.Fatalf("lookup %s: %v", email, err)
		}
		if existing != nil {
			continue
		}
		u := &entity.User{
			Name:      fmt.Sprintf("Demo User %02d", i),
			Email:     email,
			Password:  hash,
			CreatedAt: time.Now().UTC(),
		}
		if err := repo.Create(ctx, u); err != nil {
			log.Fatalf("seed %s: %v", email, err)
		}
		seeded++
	}
	fmt.Printf("seeded %d users (password=%s)\n", seeded, *password)
}
