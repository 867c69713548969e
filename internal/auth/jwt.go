package auth

import (
	"fmt"
	"github.com/golang-jwt/jwt/v5"
	"strconv"
	"time"
)

const issuer = "accordee"

type (
	Claims struct {
		UID      uint   `json:"uid"`
		Username string `json:"username"`
		jwt.RegisteredClaims
	}

	TokenIssuer interface {
		Generate(uid uint, username string) (string, error)
		Parse(tokenString string) (*Claims, error)
	}

	tokenIssuer struct {
		secret []byte
		ttl    time.Duration
		now    func() time.Time
	}
)

func NewTokenIssuer(secret string, ttl time.Duration) TokenIssuer {
	return &tokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (t *tokenIssuer) Generate(uid uint, username string) (string, error) {
	if len(t.secret) == 0 {
		return "", fmt.Errorf("JWT secret not initialized")
	}

	now := t.now()
	claims := Claims{
		UID:      uid,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(uid), 10),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

func (t *tokenIssuer) Parse(tokenString string) (*Claims, error) {
	if len(t.secret) == 0 {
		return nil, fmt.Errorf("JWT secret not initialized")
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	}, jwt.WithIssuer(issuer), jwt.WithTimeFunc(t.now))
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid && claims.UID != 0 {
		return claims, nil
	}
	return nil, fmt.Errorf("invalid token")
}
