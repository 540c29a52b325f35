package friend

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// RequestClaims identify a friend request. The jti makes every token unique,
// even for repeated requests between the same pair.
type RequestClaims struct {
	SenderID   string `json:"senderId"`
	ReceiverID string `json:"receiverId"`
	jwt.RegisteredClaims
}

// RequestTokens issues the opaque tokens clients use to address a request.
type RequestTokens struct {
	secret []byte
}

func NewRequestTokens(secret string) *RequestTokens {
	return &RequestTokens{secret: []byte(secret)}
}

func (t *RequestTokens) Generate(senderID, receiverID string) (string, error) {
	claims := &RequestClaims{
		SenderID:   senderID,
		ReceiverID: receiverID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       uuid.NewString(),
			IssuedAt: jwt.NewNumericDate(time.Now()),
			Issuer:   "gochat",
			Subject:  "friend-request",
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// Parse verifies the signature. It says nothing about whether the request is
// still pending; only the store knows that.
func (t *RequestTokens) Parse(token string) (*RequestClaims, error) {
	parsed, err := jwt.ParseWithClaims(token, &RequestClaims{}, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return t.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*RequestClaims)
	if !ok || !parsed.Valid || claims.SenderID == "" || claims.ReceiverID == "" {
		return nil, errors.New("invalid request token")
	}
	return claims, nil
}
