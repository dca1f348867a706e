package api

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"fleet-records-backend/internal/auth"
	"fleet-records-backend/internal/fleet"
	"fleet-records-backend/internal/mw"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	svc    *fleet.Service
	tokens *auth.Issuer
	cookie CookieOptions
}

// CookieOptions controls the session cookie set on login.
type CookieOptions struct {
	Name   string
	Secure bool
}

// NewHandler creates a new API handler.
func NewHandler(svc *fleet.Service, tokens *auth.Issuer, cookie CookieOptions) *Handler {
	return &Handler{
		svc:    svc,
		tokens: tokens,
		cookie: cookie,
	}
}

// respondError maps service errors onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	var verr *fleet.ValidationError
	switch {
	case errors.As(err, &verr):
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": "validation failed", "fields": verr.Fields})
	case errors.Is(err, fleet.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, fleet.ErrPermissionDenied):
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "permission denied"})
	case errors.Is(err, fleet.ErrIntegrity):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, fleet.ErrUnauthenticated), errors.Is(err, auth.ErrInvalidCredentials):
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	default:
		log.Printf("request %s %s %s failed: %v", mw.GetRequestID(c), c.Request.Method, c.Request.URL.Path, err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// bind decodes the request body, or the form for form posts, into obj.
func bind(c *gin.Context, obj any) bool {
	if err := c.ShouldBind(obj); err != nil {
		respondError(c, fleet.BindingError(err))
		return false
	}
	return true
}

func bindQuery(c *gin.Context, obj any) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		respondError(c, fleet.BindingError(err))
		return false
	}
	return true
}

// idParam reads a positive integer path parameter. Anything else cannot
// name a record, so it is reported as not found.
func idParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		respondError(c, fleet.ErrNotFound)
		return 0, false
	}
	return id, true
}
