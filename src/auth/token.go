package auth

import (
	"net/http"
	"time"

	"git.agora.community/agora/agora/src/config"
	"git.agora.community/agora/agora/src/models"
	"git.agora.community/agora/agora/src/oops"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const AccessTokenCookieName = "access_token"

const AccessTokenDuration = 24 * time.Hour

type TokenClaims struct {
	UserID  uuid.UUID `json:"user_id"`
	Email   string    `json:"email"`
	IsAdmin bool      `json:"is_admin"`
	jwt.RegisteredClaims
}

// IssueToken mints a signed access token for the user, good for 24 hours.
func IssueToken(user *models.User) (string, error) {
	now := time.Now()
	claims := TokenClaims{
		UserID:  user.ID,
		Email:   user.Email,
		IsAdmin: user.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(AccessTokenDuration)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(config.Config.Auth.TokenSecret))
	if err != nil {
		return "", oops.New(err, "failed to sign access token")
	}
	return signed, nil
}

// VerifyToken parses and validates an access token. It never returns an
// error: a token that is malformed, tampered with, or expired is simply
// reported as invalid.
func VerifyToken(tokenStr string) (*TokenClaims, bool) {
	claims := &TokenClaims{}
	token, err := jwt.ParseWithClaims(
		tokenStr,
		claims,
		func(t *jwt.Token) (interface{}, error) {
			return []byte(config.Config.Auth.TokenSecret), nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil || !token.Valid {
		return nil, false
	}
	return claims, true
}

func NewAccessTokenCookie(token string) *http.Cookie {
	return &http.Cookie{
		Name:  AccessTokenCookieName,
		Value: token,

		Domain: config.Config.Auth.CookieDomain,
		Path:   "/",
		MaxAge: int(AccessTokenDuration.Seconds()),

		Secure:   config.Config.Auth.CookieSecure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

var DeleteAccessTokenCookie = &http.Cookie{
	Name:   AccessTokenCookieName,
	Path:   "/",
	MaxAge: -1,
}
