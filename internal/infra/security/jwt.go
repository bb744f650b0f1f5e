package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"innkeep/internal/app/services/auth"
)

var (
	ErrSecretRequired = errors.New("jwt: signing secret required")
	ErrTokenInvalid   = errors.New("jwt: token invalid")
)

type jwtClaims struct {
	Name  string   `json:"name,omitempty"`
	Roles []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// JWTManager signs and verifies HS256 bearer tokens.
type JWTManager struct {
	Secret []byte
	Issuer string
	Now    func() time.Time
}

func (m JWTManager) Issue(claims auth.Claims, ttl time.Duration) (string, error) {
	if len(m.Secret) == 0 {
		return "", ErrSecretRequired
	}
	now := m.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwtClaims{
		Name:  claims.Name,
		Roles: claims.Roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   claims.UserID,
			Issuer:    m.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})
	return token.SignedString(m.Secret)
}

func (m JWTManager) Verify(raw string) (auth.Claims, error) {
	if len(m.Secret) == 0 {
		return auth.Claims{}, ErrSecretRequired
	}
	parsed, err := jwt.ParseWithClaims(raw, &jwtClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return m.Secret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil {
		return auth.Claims{}, err
	}
	claims, ok := parsed.Claims.(*jwtClaims)
	if !ok || !parsed.Valid {
		return auth.Claims{}, ErrTokenInvalid
	}
	return auth.Claims{
		UserID: claims.Subject,
		Name:   claims.Name,
		Roles:  claims.Roles,
	}, nil
}

func (m JWTManager) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}

var _ auth.TokenManager = JWTManager{}
