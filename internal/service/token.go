package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var tokenSecret []byte

// GuestSession is the identity carried by a session token: a stable
// participant id plus the display profile chosen at sign-in. The participant
// id outlives any single websocket connection, which is what lets a creator
// reconnect within the lobby grace window.
type GuestSession struct {
	ParticipantID string
	Name          string
	Avatar        *string
}

// InitTokens sets the HMAC secret used to sign guest session tokens.
func InitTokens(secret string) {
	if secret == "" {
		panic("session token secret is not set")
	}
	tokenSecret = []byte(secret)
}

// NewGuestToken mints a signed token for a fresh participant and returns the
// token together with the generated participant id.
func NewGuestToken(name string, avatar *string) (string, string, error) {
	participantID := uuid.New().String()
	now := time.Now().Unix()
	claims := jwt.MapClaims{
		"sub":  participantID,
		"name": name,
		"exp":  time.Now().Add(24 * time.Hour).Unix(),
		"iat":  now,
		"nbf":  now,
	}
	if avatar != nil {
		claims["avatar"] = *avatar
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(tokenSecret)
	if err != nil {
		return "", "", err
	}
	return signed, participantID, nil
}

// ParseGuestToken validates a session token and extracts the identity.
func ParseGuestToken(tokenString string) (*GuestSession, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return tokenSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid claims")
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return nil, errors.New("participant id not found")
	}
	name, _ := claims["name"].(string)

	session := &GuestSession{ParticipantID: sub, Name: name}
	if avatar, ok := claims["avatar"].(string); ok {
		session.Avatar = &avatar
	}
	return session, nil
}
