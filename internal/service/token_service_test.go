package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/class-records-api/internal/models"
	appErrors "github.com/noah-isme/class-records-api/pkg/errors"
)

func TestTokenRoundTrip(t *testing.T) {
	svc := NewTokenService(TokenConfig{Secret: "secret", Issuer: "identity"})

	token, err := svc.IssueToken("teacher-1", models.RoleTeacher, time.Hour)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "teacher-1", claims.TeacherID())
	assert.Equal(t, models.RoleTeacher, claims.Role)
}

func TestValidateTokenRejects(t *testing.T) {
	svc := NewTokenService(TokenConfig{Secret: "secret", Issuer: "identity"})

	expired, err := svc.IssueToken("teacher-1", models.RoleTeacher, -time.Minute)
	require.NoError(t, err)
	_, err = svc.ValidateToken(expired)
	assertKind(t, err, appErrors.ErrUnauthorized)

	other := NewTokenService(TokenConfig{Secret: "other", Issuer: "identity"})
	forged, err := other.IssueToken("teacher-1", models.RoleTeacher, time.Hour)
	require.NoError(t, err)
	_, err = svc.ValidateToken(forged)
	assertKind(t, err, appErrors.ErrUnauthorized)

	foreign := NewTokenService(TokenConfig{Secret: "secret", Issuer: "elsewhere"})
	wrongIssuer, err := foreign.IssueToken("teacher-1", models.RoleTeacher, time.Hour)
	require.NoError(t, err)
	_, err = svc.ValidateToken(wrongIssuer)
	assertKind(t, err, appErrors.ErrUnauthorized)

	_, err = svc.ValidateToken("not-a-token")
	assertKind(t, err, appErrors.ErrUnauthorized)
}

func TestValidateTokenRequiresSubject(t *testing.T) {
	svc := NewTokenService(TokenConfig{Secret: "secret"})
	claims := &models.JWTClaims{
		Role: models.RoleTeacher,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assertKind(t, err, appErrors.ErrUnauthorized)
}

func TestValidateTokenRejectsOtherAlgorithms(t *testing.T) {
	svc := NewTokenService(TokenConfig{Secret: "secret"})
	claims := &models.JWTClaims{UserID: "teacher-1"}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assertKind(t, err, appErrors.ErrUnauthorized)
}
