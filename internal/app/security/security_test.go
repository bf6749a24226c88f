package security

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateJWT(t *testing.T) {
	tokenStr, err := GenerateJWT("testuser123", "testsecret")
	require.NoError(t, err)
	assert.NotEmpty(t, tokenStr)

	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte("testsecret"), nil
	})
	require.NoError(t, err)
	assert.True(t, token.Valid)

	claims, ok := token.Claims.(*Claims)
	require.True(t, ok)
	assert.Equal(t, "testuser123", claims.UserID)
	assert.WithinDuration(t, time.Now().Add(exp), claims.ExpiresAt.Time, time.Minute)
}

func TestGenerateJWT_DefaultSecret(t *testing.T) {
	tokenStr, err := GenerateJWT("defaultuser", "")
	require.NoError(t, err)

	userID, err := ParseJWT(tokenStr, DefaultSecret)
	require.NoError(t, err)
	assert.Equal(t, "defaultuser", userID)
}

func TestParseJWT(t *testing.T) {
	valid, err := GenerateJWT("user1", "goodsecret")
	require.NoError(t, err)

	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		UserID: "user1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}).SignedString([]byte("goodsecret"))
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		secret  string
		want    string
		wantErr error
	}{
		{name: "valid", token: valid, secret: "goodsecret", want: "user1"},
		{name: "wrong secret", token: valid, secret: "wrongsecret", wantErr: ErrInvalidToken},
		{name: "tampered", token: valid + "abc", secret: "goodsecret", wantErr: ErrInvalidToken},
		{name: "expired", token: expired, secret: "goodsecret", wantErr: ErrTokenExpired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseJWT(tt.token, tt.secret)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
