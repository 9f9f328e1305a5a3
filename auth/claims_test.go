package auth_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tasknest/tasknest/auth"
)

func TestJWTClaimsAccessors(t *testing.T) {
	now := time.Now().Truncate(time.Second)

	claims := &auth.JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-123",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
		UID:      "user-123",
		Uname:    "peperone",
		UserRole: auth.RoleUser,
	}

	assert.Equal(t, "user-123", claims.Subject())
	assert.Equal(t, "user-123", claims.UserID())
	assert.Equal(t, "peperone", claims.Username())
	assert.Equal(t, auth.RoleUser, claims.Role())
	assert.Equal(t, now, claims.IssuedAt())
	assert.Equal(t, now.Add(time.Hour), claims.Expires())
}

func TestJWTClaimsUserIDFallsBackToSubject(t *testing.T) {
	claims := &auth.JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: "subject-id",
		},
	}

	assert.Equal(t, "subject-id", claims.UserID())
}

func TestJWTClaimsRoles(t *testing.T) {
	claims := &auth.JWTClaims{UserRole: auth.RoleAdmin}

	assert.True(t, claims.HasRole(auth.RoleAdmin))
	assert.False(t, claims.HasRole(auth.RoleUser))
	assert.True(t, claims.IsAtLeast(auth.RoleUser))
	assert.True(t, claims.IsAtLeast(auth.RoleAdmin))

	claims = &auth.JWTClaims{UserRole: auth.RoleUser}
	assert.False(t, claims.IsAtLeast(auth.RoleAdmin))
}

func TestJWTClaimsZeroTimes(t *testing.T) {
	claims := &auth.JWTClaims{}

	assert.True(t, claims.Expires().IsZero())
	assert.True(t, claims.IssuedAt().IsZero())
}

func TestJWTClaimsJSONShape(t *testing.T) {
	claims := &auth.JWTClaims{
		UID:      "user-123",
		Uname:    "peperone",
		UserRole: "user",
	}

	raw, err := json.Marshal(claims)
	require.NoError(t, err)

	decoded := map[string]any{}
	require.NoError(t, json.Unmarshal(raw, &decoded))

	assert.Equal(t, "user-123", decoded["userId"])
	assert.Equal(t, "peperone", decoded["username"])
	assert.Equal(t, "user", decoded["role"])
}
