package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/aadi90392/yoga-master-full/config"
	"github.com/aadi90392/yoga-master-full/internal/domain/entity"
	repo "github.com/aadi90392/yoga-master-full/internal/domain/repository"
	"github.com/aadi90392/yoga-master-full/internal/infrastructure/mongodb"
	"github.com/aadi90392/yoga-master-full/pkg/helpers"
)

// seed creates the storage indexes and an admin account, promoting the
// account when it already exists.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := mongodb.Connect(ctx, cfg.MongoURI, cfg.MongoTimeout)
	if err != nil {
		log.Fatalf("failed to connect to mongodb: %v", err)
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	db := client.Database(cfg.MongoDatabase)
	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		log.Fatalf("failed to ensure indexes: %v", err)
	}
	users := mongodb.NewUserRepository(db)

	email := strings.ToLower(strings.TrimSpace(cfg.SeedAdminEmail))
	existing, err := users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.Role != entity.RoleAdmin {
			existing.Role = entity.RoleAdmin
			existing.UpdatedAt = time.Now().UTC()
			if err := users.Update(ctx, existing); err != nil {
				log.Fatalf("failed to promote %s: %v", email, err)
			}
		}
		fmt.Printf("admin ensured: id=%s email=%s\n", existing.ID, email)
		return
	case !errors.Is(err, repo.ErrNotFound):
		log.Fatalf("failed to look up %s: %v", email, err)
	}

	hash, err := helpers.HashPassword(cfg.SeedAdminPassword)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}
	now := time.Now().UTC()
	admin := &entity.User{
		Name:         cfg.SeedAdminName,
		Email:        email,
		PasswordHash: hash,
		Role:         entity.RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := users.Create(ctx, admin); err != nil {
		log.Fatalf("failed to seed admin: %v", err)
	}
	fmt.Printf("seeded admin: id=%s email=%s name=%s\n", admin.ID, email, admin.Name)
}
