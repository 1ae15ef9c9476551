package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Skotchmaster/sweetcrust/internal/apperr"
	"github.com/Skotchmaster/sweetcrust/internal/hash"
	"github.com/Skotchmaster/sweetcrust/internal/logging"
	"github.com/Skotchmaster/sweetcrust/internal/metrics"
	"github.com/Skotchmaster/sweetcrust/internal/models"
	"github.com/Skotchmaster/sweetcrust/internal/repo"
	"github.com/Skotchmaster/sweetcrust/internal/tokens"
)

const minPasswordLen = 6

type AuthService struct {
	Repo   *repo.GormRepo
	Hasher hash.Hasher
	Tokens *tokens.Issuer
	Events EventPublisher
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     string
}

type LoginResult struct {
	Token     string      `json:"token"`
	Role      models.Role `json:"role"`
	Name      string      `json:"name"`
	ExpiresAt time.Time   `json:"expires_at"`
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.TrimSpace(in.Email)
	role := models.Role(strings.TrimSpace(in.Role))
	if role == "" {
		role = models.RoleStaff
	}

	switch {
	case name == "":
		return nil, apperr.Validation("name is required")
	case !emailRe.MatchString(email):
		return nil, apperr.Validation("invalid email format")
	case len(in.Password) < minPasswordLen:
		return nil, apperr.Validation("password must be at least %d characters", minPasswordLen)
	case !role.Valid():
		return nil, apperr.Validation("role must be admin or staff")
	}

	pw, err := s.Hasher.Hash(in.Password)
	if err != nil {
		return nil, apperr.Store("hash password", err)
	}

	u := &models.User{Name: name, Email: email, PasswordHash: pw, Role: role}
	if err := s.Repo.CreateUser(ctx, u); err != nil {
		return nil, err
	}

	publish(ctx, s.Events, TopicUserEvents, idKey(u.ID), map[string]any{
		"type":   "user_registered",
		"userID": u.ID,
		"role":   u.Role,
	})
	return u, nil
}

// Login never tells the caller whether the email or the password was wrong.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	l := logging.FromContext(ctx)
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		metrics.LoginFailures.Inc()
		return nil, apperr.ErrInvalidCredentials
	}

	u, err := s.Repo.UserByEmail(ctx, email)
	if errors.Is(err, apperr.ErrNotFound) {
		metrics.LoginFailures.Inc()
		l.Info("login_failed", "reason", "unknown email")
		return nil, apperr.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	ok, err := s.Hasher.Check(u.PasswordHash, password)
	if err != nil {
		return nil, apperr.Store("check password", err)
	}
	if !ok {
		metrics.LoginFailures.Inc()
		l.Info("login_failed", "reason", "wrong password", "user_id", u.ID)
		return nil, apperr.ErrInvalidCredentials
	}

	tok, exp, err := s.Tokens.Issue(u)
	if err != nil {
		return nil, apperr.Store("issue token", err)
	}
	return &LoginResult{Token: tok, Role: u.Role, Name: u.Name, ExpiresAt: exp}, nil
}
