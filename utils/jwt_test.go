package utils

import (
	"CloudVault/config"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withSecret(t *testing.T, secret string, ttl time.Duration) {
	t.Helper()
	prev := config.AppConfig
	config.AppConfig = config.Config{JWTSecret: secret, JWTTTL: ttl}
	t.Cleanup(func() { config.AppConfig = prev })
}

func TestTokenRoundTrip(t *testing.T) {
	withSecret(t, "unit-secret", time.Hour)

	token, err := GenerateToken(42, "alice")
	require.NoError(t, err)
	claims, err := VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), claims.UserId)
	assert.Equal(t, "alice", claims.Username)
}

func TestVerifyTokenRejects(t *testing.T) {
	withSecret(t, "unit-secret", time.Hour)
	token, err := GenerateToken(1, "alice")
	require.NoError(t, err)

	config.AppConfig.JWTSecret = "rotated"
	_, err = VerifyToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	config.AppConfig.JWTSecret = "unit-secret"
	_, err = VerifyToken(token + "x")
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserId: 1,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})
	signed, err := expired.SignedString([]byte("unit-secret"))
	require.NoError(t, err)
	_, err = VerifyToken(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserId: 1})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = VerifyToken(unsigned)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasswordHash(t *testing.T) {
	hash, err := GetPwd("secret123")
	require.NoError(t, err)
	assert.NotEqual(t, "secret123", hash)
	assert.True(t, CheckPwd("secret123", hash))
	assert.False(t, CheckPwd("secret124", hash))
	assert.False(t, CheckPwd("secret123", ""))
}
