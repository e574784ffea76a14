package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/crypto/bcrypt"
)

const (
	RoleAdmin = "admin"
	RoleVoter = "voter"

	// AdminSubject identifies the single administrator session owner.
	AdminSubject = "admin"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrRevokedToken       = errors.New("token has been revoked")
)

type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Issuer signs and verifies session tokens. Revoked token ids are kept until
// the token would have expired anyway.
type Issuer struct {
	secret            []byte
	ttl               time.Duration
	adminPasswordHash []byte
	revoked           *expirable.LRU[string, struct{}]
	now               func() time.Time
}

func NewIssuer(secret string, ttl time.Duration, adminPasswordHash string) (*Issuer, error) {
	if len(secret) == 0 {
		return nil, errors.New("jwt secret is required")
	}
	if _, err := bcrypt.Cost([]byte(adminPasswordHash)); err != nil {
		return nil, fmt.Errorf("admin password hash is not a bcrypt hash: %w", err)
	}
	return &Issuer{
		secret:            []byte(secret),
		ttl:               ttl,
		adminPasswordHash: []byte(adminPasswordHash),
		revoked:           expirable.NewLRU[string, struct{}](10000, nil, ttl),
		now:               time.Now,
	}, nil
}

// HashPassword is used when only a plaintext admin password is configured.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func (i *Issuer) CheckAdminPassword(password string) error {
	if err := bcrypt.CompareHashAndPassword(i.adminPasswordHash, []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// Issue returns a signed token for the role and subject together with its expiry.
func (i *Issuer) Issue(role, subject string) (string, time.Time, error) {
	now := i.now()
	expires := now.Add(i.ttl)
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return token, expires, nil
}

func (i *Issuer) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return i.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if _, ok := i.revoked.Get(claims.ID); ok {
		return nil, ErrRevokedToken
	}
	return claims, nil
}

func (i *Issuer) Revoke(claims *Claims) {
	i.revoked.Add(claims.ID, struct{}{})
}
