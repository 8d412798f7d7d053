// Package utils provides helper functions for token creation and
// verification: API access tokens and the short-lived QR codes used as
// check-in presence proof.
package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessToken represents a signed JWT access token along with its
// expiry.  Access tokens are short-lived and encoded in the
// Authorization header when calling protected endpoints.
type AccessToken struct {
	Token string
	Exp   time.Time
}

// Claims carried by a parsed access token.
type Claims struct {
	UserID uint64
	Role   string
}

// ErrTokenInvalid is returned for any token that fails signature,
// expiry or claim checks.  Callers never learn which check failed.
var ErrTokenInvalid = errors.New("token invalid or expired")

// NewAccessToken builds and signs an HS256 JWT for a user.  The JWT
// includes standard claims: subject (sub), role, expiration (exp) and
// issued at (iat).
func NewAccessToken(secret string, userID uint64, role string, ttlMin int) (AccessToken, error) {
	now := time.Now().UTC()
	exp := now.Add(time.Duration(ttlMin) * time.Minute)
	claims := jwt.MapClaims{
		"sub":  userID,
		"role": role,
		"exp":  exp.Unix(),
		"iat":  now.Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}

// ParseAccessToken validates an access token string and extracts its
// identity claims.
func ParseAccessToken(secret, token string) (Claims, error) {
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !parsed.Valid {
		return Claims{}, ErrTokenInvalid
	}
	sub, ok := claims["sub"].(float64)
	if !ok || sub <= 0 {
		return Claims{}, ErrTokenInvalid
	}
	role, _ := claims["role"].(string)
	return Claims{UserID: uint64(sub), Role: role}, nil
}

// seatTokenTTL bounds how long a displayed QR code stays scannable.
// The seat-side display refreshes its code well inside this window.
const seatTokenTTL = 2 * time.Minute

// NewSeatToken signs a QR payload binding a code to one seat.  Scanning
// the code proves physical presence at that seat: the token is only
// ever displayed on the seat's desk unit.
func NewSeatToken(secret string, seatID uint64) (string, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"seat": seatID,
		"jti":  uuid.NewString(),
		"exp":  now.Add(seatTokenTTL).Unix(),
		"iat":  now.Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(secret))
}

// VerifySeatToken checks that a scanned QR token is authentic, within
// its validity window, and bound to the expected seat.
func VerifySeatToken(secret, token string, seatID uint64) error {
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !parsed.Valid {
		return ErrTokenInvalid
	}
	seat, ok := claims["seat"].(float64)
	if !ok || uint64(seat) != seatID {
		return ErrTokenInvalid
	}
	return nil
}
