package jwt

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTMaker_GenerateAndParseToken(t *testing.T) {
	maker := NewJWTMaker("test_secret_key_1234567890", 15*time.Minute)

	tests := []struct {
		name   string
		userID string
	}{
		{name: "uuid user id", userID: "2b1e7c8e-7f43-4c3e-9b0e-3f3c2c1d4a5b"},
		{name: "numeric user id", userID: "42"},
		{name: "empty user id", userID: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := maker.GenerateToken(tt.userID)
			require.NoError(t, err)
			require.NotEmpty(t, token)

			claims, err := maker.ParseToken(token)
			require.NoError(t, err)
			assert.Equal(t, tt.userID, claims.UserID)
			require.NotNil(t, claims.ExpiresAt)
			assert.WithinDuration(t, time.Now().Add(15*time.Minute), claims.ExpiresAt.Time, 5*time.Second)
		})
	}
}

func TestJWTMaker_NoTTLMeansNoExpiry(t *testing.T) {
	maker := NewJWTMaker("secret", 0)

	token, err := maker.GenerateToken("u1")
	require.NoError(t, err)

	claims, err := maker.ParseToken(token)
	require.NoError(t, err)
	assert.Nil(t, claims.ExpiresAt)
	assert.NotNil(t, claims.IssuedAt)
}

func TestJWTMaker_ParseToken_Rejects(t *testing.T) {
	maker := NewJWTMaker("secret", time.Minute)
	other := NewJWTMaker("other-secret", time.Minute)

	valid, err := maker.GenerateToken("u1")
	require.NoError(t, err)
	foreign, err := other.GenerateToken("u1")
	require.NoError(t, err)

	expiredMaker := NewJWTMaker("secret", time.Minute)
	expiredMaker.now = func() time.Time { return time.Now().Add(-time.Hour) }
	expired, err := expiredMaker.GenerateToken("u1")
	require.NoError(t, err)

	lastChar := valid[len(valid)-1]
	swapped := byte('A')
	if lastChar == 'A' {
		swapped = 'B'
	}

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "garbage", token: "not.a.token"},
		{name: "foreign secret", token: foreign},
		{name: "expired", token: expired},
		{name: "tampered signature tail", token: valid[:len(valid)-1] + string(swapped)},
		{name: "tampered payload", token: strings.Replace(valid, ".", ".x", 1)},
		{name: "unsigned", token: "eyJhbGciOiJub25lIiwidHlwIjoiSldUIn0.eyJ1c2VySWQiOiJ1MSJ9."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := maker.ParseToken(tt.token)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidToken)
			assert.Nil(t, claims)
		})
	}
}
