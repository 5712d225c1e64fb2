package google

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/api/idtoken"
)

var ErrInvalidIDToken = errors.New("invalid google id token")

// 從Google ID Token取出的使用者資料
type Claims struct {
	Subject string
	Email   string
	Name    string
	Picture string
}

type Verifier interface {
	Verify(ctx context.Context, idToken string) (*Claims, error)
}

// IDTokenVerifier 驗證Google簽章以及audience是否為本服務的Client ID
type IDTokenVerifier struct {
	clientID string
	validate func(ctx context.Context, idToken string, audience string) (*idtoken.Payload, error)
}

func NewIDTokenVerifier(clientID string) *IDTokenVerifier {
	return &IDTokenVerifier{
		clientID: clientID,
		validate: idtoken.Validate,
	}
}

func (v *IDTokenVerifier) Verify(ctx context.Context, idToken string) (*Claims, error) {
	if idToken == "" {
		return nil, fmt.Errorf("%w: empty token", ErrInvalidIDToken)
	}
	if v.clientID == "" {
		return nil, fmt.Errorf("%w: google client id not configured", ErrInvalidIDToken)
	}

	payload, err := v.validate(ctx, idToken, v.clientID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidIDToken, err)
	}
	return claimsFromPayload(payload)
}

func claimsFromPayload(payload *idtoken.Payload) (*Claims, error) {
	claims := &Claims{
		Subject: payload.Subject,
		Email:   stringClaim(payload.Claims, "email"),
		Name:    stringClaim(payload.Claims, "name"),
		Picture: stringClaim(payload.Claims, "picture"),
	}
	if claims.Email == "" {
		return nil, fmt.Errorf("%w: missing email claim", ErrInvalidIDToken)
	}
	return claims, nil
}

func stringClaim(claims map[string]interface{}, key string) string {
	value, _ := claims[key].(string)
	return value
}
