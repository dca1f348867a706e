package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fleet-records-backend/internal/fleet"
	"fleet-records-backend/internal/mw"
)

// ListLookups returns one reference table.
func (h *Handler) ListLookups(c *gin.Context) {
	l, err := h.svc.ListLookups(c.Request.Context(), mw.Actor(c), c.Param("kind"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, l)
}

func (h *Handler) CreateLookup(c *gin.Context) {
	var in fleet.LookupInput
	if !bind(c, &in) {
		return
	}
	d, err := h.svc.CreateLookup(c.Request.Context(), mw.Actor(c), c.Param("kind"), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, d)
}

func (h *Handler) UpdateLookup(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var in fleet.LookupInput
	if !bind(c, &in) {
		return
	}
	d, err := h.svc.UpdateLookup(c.Request.Context(), mw.Actor(c), c.Param("kind"), id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *Handler) DeleteLookup(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteLookup(c.Request.Context(), mw.Actor(c), c.Param("kind"), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListUsers lists accounts, filtered by ?role=.
func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.svc.ListUsers(c.Request.Context(), mw.Actor(c), c.Query("role"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

func (h *Handler) CreateUser(c *gin.Context) {
	var in fleet.UserInput
	if !bind(c, &in) {
		return
	}
	u, err := h.svc.CreateUser(c.Request.Context(), mw.Actor(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, u)
}
