package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the identity carried by an API token.
type Claims struct {
	Sub  string
	Name string
}

var (
	errMissingSecret = errors.New("jwt secret not configured")
	ErrInvalidToken  = errors.New("invalid token")
)

// SignJWT signs an HS256 token for the given subject, valid for ttl.
func SignJWT(secret string, claims Claims, ttl time.Duration) (string, error) {
	if strings.TrimSpace(secret) == "" {
		return "", errMissingSecret
	}
	if claims.Sub == "" {
		return "", errors.New("sub is required")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	now := time.Now()
	mc := jwt.MapClaims{
		"sub": claims.Sub,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}
	if claims.Name != "" {
		mc["name"] = claims.Name
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, mc)
	return token.SignedString([]byte(secret))
}

// VerifyJWT verifies an HS256 token and returns its claims.
func VerifyJWT(secret, tokenString string) (Claims, error) {
	if strings.TrimSpace(secret) == "" {
		return Claims{}, errMissingSecret
	}
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return Claims{}, ErrInvalidToken
	}
	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return Claims{}, ErrInvalidToken
	}
	sub, err := mc.GetSubject()
	if err != nil || sub == "" {
		return Claims{}, ErrInvalidToken
	}
	claims := Claims{Sub: sub}
	if name, ok := mc["name"].(string); ok {
		claims.Name = name
	}
	return claims, nil
}
