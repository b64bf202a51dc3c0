package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signWithExpiry(secret, sub string, exp time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": sub,
		"exp": exp.Unix(),
	})
	return token.SignedString([]byte(secret))
}
