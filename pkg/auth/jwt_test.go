package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTService_RoundTrip(t *testing.T) {
	svc := NewJWTService("test-secret", "hivcare")

	token, err := svc.Sign("doctor-1", RoleDoctor, time.Hour)
	require.NoError(t, err)

	claims, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "doctor-1", claims.Subject)
	assert.Equal(t, RoleDoctor, claims.Role)
}

func TestJWTService_Rejects(t *testing.T) {
	svc := NewJWTService("test-secret", "hivcare")

	expired, err := svc.Sign("doctor-1", RoleDoctor, -time.Minute)
	require.NoError(t, err)

	otherSecret, err := NewJWTService("other-secret", "hivcare").Sign("doctor-1", RoleDoctor, time.Hour)
	require.NoError(t, err)

	otherIssuer, err := NewJWTService("test-secret", "elsewhere").Sign("doctor-1", RoleDoctor, time.Hour)
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "x", Issuer: "hivcare"},
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	for name, token := range map[string]string{
		"expired":      expired,
		"other secret": otherSecret,
		"other issuer": otherIssuer,
		"no expiry":    noExpiry,
		"garbage":      "not-a-token",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Validate(token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}
