package tokens

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/Skotchmaster/sweetcrust/internal/apperr"
	"github.com/Skotchmaster/sweetcrust/internal/models"
	"github.com/golang-jwt/jwt/v5"
)

const DefaultTTL = 24 * time.Hour

// Identity is what a verified token says about its bearer.
type Identity struct {
	ID   uint        `json:"id"`
	Role models.Role `json:"role"`
	Name string      `json:"name"`
}

func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == models.RoleAdmin
}

type Claims struct {
	Role models.Role `json:"role"`
	Name string      `json:"name"`
	jwt.RegisteredClaims
}

// Issuer signs and verifies HS256 session tokens. It holds no state besides
// the secret, so one value is shared by every request.
type Issuer struct {
	Secret []byte
	TTL    time.Duration
	Now    func() time.Time
}

func NewIssuer(secret []byte, ttl time.Duration) *Issuer {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Issuer{Secret: secret, TTL: ttl}
}

func (is *Issuer) now() time.Time {
	if is.Now != nil {
		return is.Now()
	}
	return time.Now()
}

func (is *Issuer) Issue(u *models.User) (string, time.Time, error) {
	if len(is.Secret) == 0 {
		return "", time.Time{}, errors.New("tokens: empty secret")
	}
	ttl := is.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	now := is.now().UTC()
	exp := now.Add(ttl)

	claims := Claims{
		Role: u.Role,
		Name: u.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(u.ID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(is.Secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("tokens: sign: %w", err)
	}
	return signed, exp, nil
}

// Verify returns apperr.ErrInvalidToken for anything that is not a well-formed,
// unexpired HS256 token signed with our secret.
func (is *Issuer) Verify(raw string) (*Identity, error) {
	var claims Claims
	tkn, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected sign method")
		}
		return is.Secret, nil
	},
		jwt.WithTimeFunc(is.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !tkn.Valid {
		return nil, fmt.Errorf("%w (%v)", apperr.ErrInvalidToken, err)
	}

	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || id == 0 {
		return nil, fmt.Errorf("%w (bad subject)", apperr.ErrInvalidToken)
	}
	if !claims.Role.Valid() {
		return nil, fmt.Errorf("%w (bad role)", apperr.ErrInvalidToken)
	}

	return &Identity{ID: uint(id), Role: claims.Role, Name: claims.Name}, nil
}
