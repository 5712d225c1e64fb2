package google

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/idtoken"
)

func stubVerifier(payload *idtoken.Payload, err error) (*IDTokenVerifier, *string) {
	var audience string
	v := NewIDTokenVerifier("client-123")
	v.validate = func(_ context.Context, _ string, aud string) (*idtoken.Payload, error) {
		audience = aud
		return payload, err
	}
	return v, &audience
}

func TestVerify_ExtractsClaims(t *testing.T) {
	v, audience := stubVerifier(&idtoken.Payload{
		Subject: "1099",
		Claims: map[string]interface{}{
			"email":   "alice@example.com",
			"name":    "Alice",
			"picture": "https://example.com/a.png",
		},
	}, nil)

	claims, err := v.Verify(context.Background(), "token")
	require.NoError(t, err)
	assert.Equal(t, "client-123", *audience)
	assert.Equal(t, &Claims{
		Subject: "1099",
		Email:   "alice@example.com",
		Name:    "Alice",
		Picture: "https://example.com/a.png",
	}, claims)
}

func TestVerify_ValidationFailure(t *testing.T) {
	v, _ := stubVerifier(nil, errors.New("idtoken: audience provided does not match aud claim"))

	_, err := v.Verify(context.Background(), "token")
	require.ErrorIs(t, err, ErrInvalidIDToken)
}

func TestVerify_MissingEmail(t *testing.T) {
	v, _ := stubVerifier(&idtoken.Payload{Subject: "1", Claims: map[string]interface{}{}}, nil)

	_, err := v.Verify(context.Background(), "token")
	require.ErrorIs(t, err, ErrInvalidIDToken)
}

func TestVerify_EmptyTokenOrClientID(t *testing.T) {
	v, _ := stubVerifier(&idtoken.Payload{}, nil)
	_, err := v.Verify(context.Background(), "")
	require.ErrorIs(t, err, ErrInvalidIDToken)

	_, err = NewIDTokenVerifier("").Verify(context.Background(), "token")
	require.ErrorIs(t, err, ErrInvalidIDToken)
}
