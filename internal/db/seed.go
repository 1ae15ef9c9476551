package db

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/sweetcrust/internal/hash"
	"github.com/Skotchmaster/sweetcrust/internal/models"
)

type Account struct {
	Name     string
	Email    string
	Password string
	Role     models.Role
}

var DefaultAccounts = []Account{
	{Name: "Admin User", Email: "admin@bakery.com", Password: "admin123", Role: models.RoleAdmin},
	{Name: "Staff User", Email: "staff@bakery.com", Password: "staff123", Role: models.RoleStaff},
}

// SeedAccounts inserts the given accounts. An email that already exists is
// logged and skipped.
func SeedAccounts(ctx context.Context, gdb *gorm.DB, h hash.Hasher, l *slog.Logger, accounts []Account) error {
	for _, a := range accounts {
		pw, err := h.Hash(a.Password)
		if err != nil {
			return fmt.Errorf("seed %s: hash: %w", a.Email, err)
		}
		u := models.User{Name: a.Name, Email: a.Email, PasswordHash: pw, Role: a.Role}

		res := gdb.WithContext(ctx).
			Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "email"}}, DoNothing: true}).
			Create(&u)
		if res.Error != nil {
			return fmt.Errorf("seed %s: %w", a.Email, res.Error)
		}
		if res.RowsAffected == 0 {
			l.Info("seed_account_skipped", "email", a.Email, "reason", "already exists")
			continue
		}
		l.Info("seed_account_created", "email", a.Email, "role", a.Role)
	}
	return nil
}
