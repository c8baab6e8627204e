package echoapi

import (
	"context"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"google.golang.org/api/idtoken"

	"github.com/JUSAIR-JSR/MEA-Student-portal/core"
	"github.com/JUSAIR-JSR/MEA-Student-portal/core/account"
)

// authCookieName is the HTTP-only session cookie holding the signed JWT.
const authCookieName = "authToken"

const tokenContextKey = "identityToken"

// Claims represents the authorization claims transmitted via a JWT.
// The subject carries the account id; Role selects the portal.
type Claims struct {
	jwt.StandardClaims
	Role string `json:"role"`
}

func newJWTConfig(conf *core.Config) middleware.JWTConfig {
	return middleware.JWTConfig{
		SigningKey:    conf.SecretKey,
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    tokenContextKey,
		TokenLookup:   "cookie:" + authCookieName,
		Claims:        new(Claims),
	}
}

// GetIdentityClaims builds the session claims for an authenticated identity.
func GetIdentityClaims(ident account.Identity, conf *core.Config) *Claims {
	now := time.Now()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    conf.AppName,
			Subject:   ident.ID,
			ExpiresAt: now.Add(conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  now.Unix(),
		},
		Role: ident.Role,
	}
}

// GenerateToken generates a signed JWT token string representing the Claims.
func GenerateToken(claims *Claims, conf *core.Config) (string, error) {
	token := jwt.NewWithClaims(jwt.GetSigningMethod(middleware.AlgorithmHS256), claims)
	ss, err := token.SignedString(conf.SecretKey)
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(tokenContextKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

func getContextIdentity(ctx echo.Context) (account.Identity, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return account.Identity{}, err
	}
	return account.Identity{ID: claims.Subject, Role: claims.Role}, nil
}

// setAuthCookie installs the session cookie. SameSite=None + Secure lets the
// cookie travel between the frontend and API subdomains.
func setAuthCookie(ctx echo.Context, token string, conf *core.Config) {
	ctx.SetCookie(&http.Cookie{
		Name:     authCookieName,
		Value:    token,
		Path:     "/",
		Domain:   conf.Server.CookieDomain,
		Expires:  time.Now().Add(conf.Server.JWTExpirationDelta),
		HttpOnly: true,
		Secure:   conf.Server.SecureCookies,
		SameSite: http.SameSiteNoneMode,
	})
}

func clearAuthCookie(ctx echo.Context, conf *core.Config) {
	ctx.SetCookie(&http.Cookie{
		Name:     authCookieName,
		Value:    "",
		Path:     "/",
		Domain:   conf.Server.CookieDomain,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   conf.Server.SecureCookies,
		SameSite: http.SameSiteNoneMode,
	})
}

// verifyGoogleToken validates a Google ID token against our client ID and
// returns the verified email. Swapped out in tests.
var verifyGoogleToken = func(ctx context.Context, credential, clientID string) (string, error) {
	payload, err := idtoken.Validate(ctx, credential, clientID)
	if err != nil {
		return "", errGoogleTokenInvalid
	}
	email, _ := payload.Claims["email"].(string)
	if email == "" {
		return "", errGoogleTokenInvalid
	}
	return email, nil
}
