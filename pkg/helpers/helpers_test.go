package helpers

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTManager_RoundTrip(t *testing.T) {
	m := NewJWTManager("secret", time.Hour)
	token, exp, err := m.Generate("a@x.com", "instructor")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	claims, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", claims.Email)
	assert.Equal(t, "instructor", claims.Role)
}

func TestJWTManager_Rejects(t *testing.T) {
	m := NewJWTManager("secret", time.Hour)
	expired := NewJWTManager("secret", -time.Minute)
	other := NewJWTManager("other", time.Hour)

	expiredToken, _, err := expired.Generate("a@x.com", "user")
	require.NoError(t, err)
	foreignToken, _, err := other.Generate("a@x.com", "user")
	require.NoError(t, err)
	noEmail, _, err := m.Generate("", "user")
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "garbage", token: "not-a-token"},
		{name: "expired", token: expiredToken},
		{name: "wrong secret", token: foreignToken},
		{name: "missing email", token: noEmail},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.Parse(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}

	_, err = m.Parse(expiredToken)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("password123")
	require.NoError(t, err)
	assert.NotEqual(t, "password123", hash)
	assert.True(t, CheckPassword(hash, "password123"))
	assert.False(t, CheckPassword(hash, "password124"))
	assert.False(t, CheckPassword("", "password123"))

	_, err = HashPassword(strings.Repeat("x", 73))
	assert.ErrorIs(t, err, ErrPasswordTooLong)
}

func TestObjectName(t *testing.T) {
	name := ObjectName("/classes/abc/", "Cover.PNG")
	assert.True(t, strings.HasPrefix(name, "classes/abc/"), name)
	assert.True(t, strings.HasSuffix(name, ".png"), name)
	assert.NotEqual(t, name, ObjectName("/classes/abc/", "Cover.PNG"))

	assert.Equal(t, "https://storage.googleapis.com/bkt/users/x.jpg", PublicURL("bkt", "users/x.jpg"))
}
