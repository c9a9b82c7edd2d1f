package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"backoffice/internal/apperror"
	"backoffice/internal/auth"
	"backoffice/internal/policy"
	"backoffice/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	AccessTokenCookie = "access_token"
	actorKey          = "actor"
)

// ActorLoader resolves a token subject into the current profile.
type ActorLoader interface {
	Authenticate(ctx context.Context, userID uuid.UUID) (policy.Actor, error)
}

// CookieOptions controls how the session cookie is written.
type CookieOptions struct {
	Secure bool
}

// SetTokenCookie sets access_token as an HttpOnly cookie
func SetTokenCookie(c *gin.Context, token string, ttl time.Duration, opts CookieOptions) {
	// Production (cross-origin): SameSiteNoneMode + Secure=true
	// Development (same-site):   SameSiteLaxMode  + Secure=false
	sameSite := http.SameSiteLaxMode
	if opts.Secure {
		sameSite = http.SameSiteNoneMode
	}
	c.SetSameSite(sameSite)
	c.SetCookie(AccessTokenCookie, token, int(ttl.Seconds()), "/", "", opts.Secure, true)
}

// ClearTokenCookie removes the access_token cookie
func ClearTokenCookie(c *gin.Context, opts CookieOptions) {
	sameSite := http.SameSiteLaxMode
	if opts.Secure {
		sameSite = http.SameSiteNoneMode
	}
	c.SetSameSite(sameSite)
	c.SetCookie(AccessTokenCookie, "", -1, "/", "", opts.Secure, true)
}

// TokenFromRequest reads the cookie first, then the Authorization header.
func TokenFromRequest(c *gin.Context) (string, error) {
	if token, err := c.Cookie(AccessTokenCookie); err == nil && token != "" {
		return token, nil
	}

	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", apperror.Unauthorized("Authorization is missing")
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", apperror.Unauthorized("Invalid authorization format. Expected 'Bearer <token>'")
	}
	return parts[1], nil
}

// Authenticate validates the JWT and loads the acting profile fresh from the
// store on every request. The actor is stored in both the gin context and the
// request context so services receive it explicitly.
func Authenticate(tokens *auth.TokenIssuer, users ActorLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := TokenFromRequest(c)
		if err != nil {
			abort(c, err)
			return
		}

		userID, _, err := tokens.Parse(tokenString)
		if err != nil {
			abort(c, apperror.Unauthorized("Invalid token"))
			return
		}

		actor, err := users.Authenticate(c.Request.Context(), userID)
		if err != nil {
			abort(c, err)
			return
		}

		c.Set(actorKey, actor)
		c.Request = c.Request.WithContext(policy.WithActor(c.Request.Context(), actor))
		c.Next()
	}
}

// Actor returns the profile stored by Authenticate.
func Actor(c *gin.Context) (policy.Actor, bool) {
	v, ok := c.Get(actorKey)
	if !ok {
		return policy.Actor{}, false
	}
	a, ok := v.(policy.Actor)
	return a, ok
}

// RequireMutator rejects state-changing requests from roles without mutation rights.
func RequireMutator() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := Actor(c)
		if !ok {
			abort(c, apperror.Unauthorized("not authenticated"))
			return
		}
		if err := actor.AssertCanMutate(); err != nil {
			abort(c, apperror.Forbidden(err))
			return
		}
		c.Next()
	}
}

// RedirectUnlessMutator sends roles without mutation rights to target instead
// of showing an admin view.
func RedirectUnlessMutator(target string) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := Actor(c)
		if !ok || !actor.CanMutate() {
			c.Redirect(http.StatusFound, target)
			c.Abort()
			return
		}
		c.Next()
	}
}

func abort(c *gin.Context, err error) {
	response.Fail(c, apperror.HTTPStatus(err), err.Error())
}
