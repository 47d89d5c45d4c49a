package auth

import (
	"testing"
	"time"

	"git.agora.community/agora/agora/src/config"
	"git.agora.community/agora/agora/src/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestTokenRoundTrip(t *testing.T) {
	user := &models.User{
		ID:      uuid.New(),
		Email:   "gamer@example.com",
		IsAdmin: true,
	}

	tokenStr, err := IssueToken(user)
	assert.Nil(t, err)

	claims, ok := VerifyToken(tokenStr)
	assert.True(t, ok)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, user.Email, claims.Email)
	assert.True(t, claims.IsAdmin)
	assert.WithinDuration(t, time.Now().Add(AccessTokenDuration), claims.ExpiresAt.Time, time.Minute)
}

func TestVerifyTokenRejectsBadTokens(t *testing.T) {
	t.Run("garbage", func(t *testing.T) {
		_, ok := VerifyToken("not a token at all")
		assert.False(t, ok)
	})
	t.Run("tampered", func(t *testing.T) {
		user := &models.User{ID: uuid.New(), Email: "gamer@example.com"}
		tokenStr, err := IssueToken(user)
		assert.Nil(t, err)

		tampered := tokenStr[:len(tokenStr)-2] + "xx"
		_, ok := VerifyToken(tampered)
		assert.False(t, ok)
	})
	t.Run("expired", func(t *testing.T) {
		now := time.Now()
		claims := TokenClaims{
			UserID: uuid.New(),
			Email:  "gamer@example.com",
			RegisteredClaims: jwt.RegisteredClaims{
				IssuedAt:  jwt.NewNumericDate(now.Add(-48 * time.Hour)),
				ExpiresAt: jwt.NewNumericDate(now.Add(-24 * time.Hour)),
			},
		}
		expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
			SignedString([]byte(config.Config.Auth.TokenSecret))
		assert.Nil(t, err)

		_, ok := VerifyToken(expired)
		assert.False(t, ok)
	})
	t.Run("wrong signing key", func(t *testing.T) {
		claims := TokenClaims{UserID: uuid.New()}
		forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
			SignedString([]byte("some other secret"))
		assert.Nil(t, err)

		_, ok := VerifyToken(forged)
		assert.False(t, ok)
	})
}
