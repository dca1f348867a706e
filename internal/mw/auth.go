package mw

import (
	"context"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"fleet-records-backend/internal/access"
)

const actorKey = "fleet.actor"

// LoginPath is where browsers are sent when they need to sign in.
const LoginPath = "/auth/login"

// TokenVerifier checks a bearer token and returns the user id it carries.
type TokenVerifier interface {
	Verify(token string) (int64, error)
}

// ActorResolver loads the identity behind a user id.
type ActorResolver interface {
	ActorByID(ctx context.Context, id int64) (access.Actor, error)
}

// Authenticate derives the actor from an Authorization bearer token or the
// session cookie. Requests without a valid token continue anonymously.
func Authenticate(tokens TokenVerifier, actors ActorResolver, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearer(c.GetHeader("Authorization"))
		if token == "" && cookieName != "" {
			token, _ = c.Cookie(cookieName)
		}
		if token == "" {
			c.Next()
			return
		}

		id, err := tokens.Verify(token)
		if err != nil {
			c.Next()
			return
		}
		actor, err := actors.ActorByID(c.Request.Context(), id)
		if err != nil {
			log.Printf("request %s: token for user %d not usable: %v", GetRequestID(c), id, err)
			c.Next()
			return
		}
		c.Set(actorKey, actor)
		c.Next()
	}
}

func bearer(header string) string {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// Actor returns the authenticated actor, or the zero Actor.
func Actor(c *gin.Context) access.Actor {
	if v, ok := c.Get(actorKey); ok {
		if a, ok := v.(access.Actor); ok {
			return a
		}
	}
	return access.Actor{}
}

// RequireActor stops anonymous requests. Browsers are redirected to the
// login page with the original path in next; API clients get 401.
func RequireActor() gin.HandlerFunc {
	return func(c *gin.Context) {
		if Actor(c).Authenticated() {
			c.Next()
			return
		}
		if wantsHTML(c.Request) {
			c.Redirect(http.StatusFound, LoginPath+"?next="+url.QueryEscape(c.Request.URL.RequestURI()))
			c.Abort()
			return
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
	}
}

func wantsHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}
