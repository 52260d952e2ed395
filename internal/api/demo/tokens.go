package demo

import (
	"fmt"
	"strconv"
	"time"

	"arcadia-news/internal/api"

	"github.com/golang-jwt/jwt/v5"
)

const (
	accessTokenTTL  = 24 * time.Hour
	refreshTokenTTL = 7 * 24 * time.Hour
)

// issueToken signs an HS256 JWT for the user, the same token shape the
// real backend hands out.
func (c *Client) issueToken(userID int64, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub": strconv.FormatInt(userID, 10),
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(c.secret))
}

// userIDFromToken verifies a bearer token and returns the user it was
// issued to. Any verification failure maps to api.ErrUnauthorized.
func (c *Client) userIDFromToken(token api.Token) (int64, error) {
	if token == "" {
		return 0, &api.Error{Status: 401, Message: "missing bearer token"}
	}

	parsed, err := jwt.Parse(string(token), func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(c.secret), nil
	})
	if err != nil || !parsed.Valid {
		return 0, &api.Error{Status: 401, Message: "invalid token"}
	}

	sub, err := parsed.Claims.GetSubject()
	if err != nil {
		return 0, &api.Error{Status: 401, Message: "invalid token"}
	}
	id, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return 0, &api.Error{Status: 401, Message: "invalid token"}
	}
	return id, nil
}
