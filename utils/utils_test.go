package utils

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexander-edwards/asana-clone-app-fullstack/apperrors"
)

func TestJWTManager_RoundTrip(t *testing.T) {
	m := NewJWTManager("secret", 7*24*time.Hour)
	id := uuid.New()

	token, err := m.GenerateToken(id, "ana@example.com")
	require.NoError(t, err)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, id, claims.UserUUID())
	assert.Equal(t, "ana@example.com", claims.Email)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestJWTManager_Rejects(t *testing.T) {
	m := NewJWTManager("secret", time.Hour)
	token, err := m.GenerateToken(uuid.New(), "a@b.co")
	require.NoError(t, err)

	t.Run("wrong secret", func(t *testing.T) {
		_, err := NewJWTManager("other", time.Hour).ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		late := NewJWTManager("secret", time.Hour)
		late.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		_, err := late.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := m.ValidateToken("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("non uuid subject", func(t *testing.T) {
		claims := &Claims{UserID: "42", RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))}}
		signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
		require.NoError(t, err)
		_, err = m.ValidateToken(signed)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("hunter22")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter22", hash)
	assert.True(t, CheckPassword(hash, "hunter22"))
	assert.False(t, CheckPassword(hash, "hunter23"))
}

func TestValidator(t *testing.T) {
	var v Validator
	v.Check(true, "name", "is required")
	require.NoError(t, v.Err())

	v.Check(IsEmail("nope"), "email", "must be a valid email")
	v.Check(len("abc") >= 6, "password", "must be at least 6 characters")
	err := v.Err()
	require.Error(t, err)

	var appErr *apperrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, http.StatusBadRequest, appErr.HTTPStatus())
	assert.Len(t, appErr.Fields, 2)
	assert.Equal(t, "email", appErr.Fields[0].Field)
}

func TestFormatChecks(t *testing.T) {
	assert.True(t, IsEmail("ana@example.com"))
	assert.False(t, IsEmail("Ana <ana@example.com>"))
	assert.Equal(t, "ana@example.com", NormalizeEmail("  Ana@Example.COM "))

	assert.True(t, IsHexColor("#6B46C1"))
	assert.True(t, IsHexColor("#6b46c1"))
	assert.False(t, IsHexColor("6B46C1"))
	assert.False(t, IsHexColor("#6B46C"))

	assert.True(t, IsURL("https://cdn.example.com/a.png"))
	assert.False(t, IsURL("/relative/path.png"))
	assert.False(t, IsURL("ftp://example.com/a.png"))
}
