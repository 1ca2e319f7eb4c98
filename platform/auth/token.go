package auth

import (
	"errors"
	"fmt"
	"time"

	jwt "github.com/form3tech-oss/jwt-go"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims is who a bearer token speaks for.
type Claims struct {
	UserId   string
	Username string
}

// Issue signs an HS256 token carrying user_id and username. A zero ttl never expires.
func Issue(secret []byte, c Claims, ttl time.Duration) (string, error) {
	token := jwt.New(jwt.SigningMethodHS256)
	claims := token.Claims.(jwt.MapClaims)
	claims["user_id"] = c.UserId
	claims["username"] = c.Username
	if ttl > 0 {
		claims["exp"] = time.Now().Add(ttl).Unix()
	}
	return token.SignedString(secret)
}

// Parse verifies raw and returns its claims.
func Parse(secret []byte, raw string) (Claims, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return FromToken(token)
}

// FromToken reads the claims of an already verified token, as left in fiber's locals by the jwt middleware.
func FromToken(token *jwt.Token) (Claims, error) {
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return Claims{}, ErrInvalidToken
	}
	id, _ := claims["user_id"].(string)
	if id == "" {
		return Claims{}, fmt.Errorf("%w: missing user_id", ErrInvalidToken)
	}
	name, _ := claims["username"].(string)
	if name == "" {
		name = id
	}
	return Claims{UserId: id, Username: name}, nil
}
