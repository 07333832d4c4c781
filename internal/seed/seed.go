// Package seed bootstraps the first admin account so a fresh install
// is usable without manual database edits.
package seed

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/seb-lewis/startupcrm/internal/auth/domain"
	"github.com/seb-lewis/startupcrm/internal/auth/password"
	"github.com/seb-lewis/startupcrm/internal/config"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// EnsureBootstrapAdmin creates the configured admin user when no user
// with that email exists yet. A blank bootstrap email disables seeding.
func EnsureBootstrapAdmin(db *gorm.DB, cfg config.Config) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	email := strings.ToLower(strings.TrimSpace(cfg.BootstrapAdminEmail))
	if email == "" {
		return nil
	}
	if cfg.BootstrapAdminPassword == "" {
		return errors.New("bootstrap admin password is required when bootstrap email is set")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing authdomain.User
		err := tx.Where("email = ?", email).First(&existing).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		hash, err := password.Hash(cfg.BootstrapAdminPassword)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		user := authdomain.User{
			ID:           node.Generate(),
			Email:        email,
			DisplayName:  "Administrator",
			PasswordHash: &hash,
			IsActive:     true,
			IsAdmin:      true,
			Metadata:     datatypes.JSONMap{},
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		return tx.Create(&user).Error
	})
}
