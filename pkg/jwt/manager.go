package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("expired token")
)

const issuer = "angple-cms"

// Claims - CMS 관리자 토큰 페이로드
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
	SiteID string `json:"site_id"`
	Role   string `json:"role"`
}

// Manager issues and verifies HS256 tokens
type Manager struct {
	secretKey []byte
	expiresIn time.Duration
}

// NewManager creates a Manager; expiresInMinutes <= 0 falls back to 24h
func NewManager(secret string, expiresInMinutes int) *Manager {
	exp := time.Duration(expiresInMinutes) * time.Minute
	if exp <= 0 {
		exp = 24 * time.Hour
	}
	return &Manager{
		secretKey: []byte(secret),
		expiresIn: exp,
	}
}

// ExpiresIn returns the token lifetime
func (m *Manager) ExpiresIn() time.Duration {
	return m.expiresIn
}

// GenerateToken signs a token for the given user within a site
func (m *Manager) GenerateToken(userID, siteID, role string) (string, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.expiresIn)),
		},
		UserID: userID,
		SiteID: siteID,
		Role:   role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secretKey)
}

// VerifyToken parses and validates a token. Every failure maps to
// ErrInvalidToken or ErrExpiredToken.
//
//nolint:dupl // JWT 검증 로직은 표준 패턴을 따르므로 유사함
func (m *Manager) VerifyToken(tokenString string) (claims *Claims, err error) {
	defer func() {
		if r := recover(); r != nil {
			claims, err = nil, ErrInvalidToken
		}
	}()

	if tokenString == "" {
		return nil, ErrInvalidToken
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Validate signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secretKey, nil
	}, jwt.WithIssuer(issuer))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	c, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || c.UserID == "" || c.SiteID == "" {
		return nil, ErrInvalidToken
	}
	return c, nil
}
