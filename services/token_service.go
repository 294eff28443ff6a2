package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

const defaultTokenTTL = 12 * time.Hour

// TokenService issues and checks the HS256 bearer tokens of the shop login.
type TokenService struct {
	secretKey []byte
	ttl       time.Duration
	now       func() time.Time
}

func NewTokenService(secret string, ttl time.Duration) (*TokenService, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is empty")
	}
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &TokenService{secretKey: []byte(secret), ttl: ttl, now: time.Now}, nil
}

func (s *TokenService) Generate(username string) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub": username,
		"typ": "access",
		"iat": now.Unix(),
		"exp": now.Add(s.ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secretKey)
}

// Validate returns the username the token was issued to.
func (s *TokenService) Validate(tokenStr string) (string, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return s.secretKey, nil
	})
	if err != nil || !token.Valid {
		return "", fmt.Errorf("invalid or expired token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("invalid token claims")
	}
	if typ, _ := claims["typ"].(string); typ != "access" {
		return "", fmt.Errorf("invalid token type")
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", fmt.Errorf("token has no subject")
	}
	return sub, nil
}
