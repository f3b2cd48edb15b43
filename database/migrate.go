package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/yeremiapane/site-engineer-app/models"
	"github.com/yeremiapane/site-engineer-app/repositories"
	"github.com/yeremiapane/site-engineer-app/utils"
	"gorm.io/gorm"
)

// Migrate creates or updates every table.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	if err := models.CreateIndexes(db); err != nil {
		return fmt.Errorf("create indexes: %w", err)
	}

	for _, m := range models.All() {
		if !db.Migrator().HasTable(m) {
			return fmt.Errorf("table for %T missing after migration", m)
		}
	}
	utils.InfoLogger.Println("AutoMigrate completed.")
	return nil
}

type passwordHasher interface {
	Hash(password string) (string, error)
}

// SeedAdmin creates the first admin account when email is set and no admin exists yet.
func SeedAdmin(ctx context.Context, store repositories.Store, hasher passwordHasher, email, password string) error {
	if email == "" {
		return nil
	}

	admin := models.RoleAdmin
	n, err := store.CountProfiles(ctx, repositories.ProfileFilter{Role: &admin})
	if err != nil {
		return fmt.Errorf("count admins: %w", err)
	}
	if n > 0 {
		return nil
	}

	hash, err := hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("hash seed password: %w", err)
	}

	p := &models.Profile{
		Email:        email,
		FullName:     "Administrator",
		Role:         models.RoleAdmin,
		PasswordHash: hash,
	}
	if err := store.CreateProfile(ctx, p); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			return fmt.Errorf("seed admin: %s already exists with another role", email)
		}
		return fmt.Errorf("seed admin: %w", err)
	}
	utils.InfoLogger.WithField("email", p.Email).Info("Seed admin created")
	return nil
}
