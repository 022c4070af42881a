package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/frahmantamala/salesdesk/internal"
	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the caller's tenant scope and CRM role.
type Claims struct {
	TenantID string `json:"tenant_id"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

func (c *Claims) Principal() *internal.Principal {
	return &internal.Principal{
		Subject:  c.Subject,
		TenantID: c.TenantID,
		Role:     c.Role,
	}
}

// TokenValidator verifies bearer tokens.
type TokenValidator interface {
	ValidateToken(tokenString string) (*Claims, error)
}

type JWTTokenGenerator struct {
	Secret []byte
	TTL    time.Duration
}

func NewJWTTokenGenerator(secret string, ttl time.Duration) *JWTTokenGenerator {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &JWTTokenGenerator{Secret: []byte(secret), TTL: ttl}
}

// GenerateToken signs an HS256 token for subject scoped to tenantID.
func (j *JWTTokenGenerator) GenerateToken(subject, tenantID, role string) (string, error) {
	now := time.Now()
	claims := &Claims{
		TenantID: tenantID,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(j.TTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   subject,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.Secret)
}

// ValidateToken validates a JWT token and returns claims
func (j *JWTTokenGenerator) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.Secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, internal.ErrTokenExpired
		}
		return nil, internal.ErrInvalidToken.WithCause(err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, internal.ErrInvalidToken
	}
	if claims.TenantID == "" {
		return nil, internal.ErrMissingTenant
	}
	return claims, nil
}
