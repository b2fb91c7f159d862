// Package seed inserts the bootstrap accounts on first run so a fresh
// deployment is immediately usable.
package seed

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/kotoba-labs/kotoba-api/internal/models"
)

type userStore interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
}

type account struct {
	username string
	password string
	role     models.UserRole
}

var accounts = []account{
	{username: "admin", password: "admin123", role: models.RoleAdmin},
	{username: "teacher1", password: "teach123", role: models.RoleTeacher},
	{username: "student1", password: "stu123", role: models.RoleStudent},
	{username: "student2", password: "stu123", role: models.RoleStudent},
}

// Accounts creates each bootstrap account unless a user with that username
// already exists. Existing users are never modified.
func Accounts(ctx context.Context, store userStore, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	for _, acc := range accounts {
		_, err := store.FindByUsername(ctx, acc.username)
		if err == nil {
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return err
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(acc.password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		user := &models.User{
			Username:     acc.username,
			PasswordHash: string(hash),
			Role:         acc.role,
			Active:       true,
		}
		if err := store.Create(ctx, user); err != nil {
			return err
		}
		logger.Info("seeded account", zap.String("username", acc.username), zap.String("role", string(acc.role)))
	}

	return nil
}
