package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fleet-records-backend/internal/fleet"
	"fleet-records-backend/internal/mw"
)

// MaintenanceForm answers 204 when the actor may add maintenance to the
// machine.
func (h *Handler) MaintenanceForm(c *gin.Context) {
	if err := h.svc.MaintenanceForm(c.Request.Context(), mw.Actor(c), c.Param("serial")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) CreateMaintenance(c *gin.Context) {
	var in fleet.MaintenanceInput
	if !bind(c, &in) {
		return
	}
	row, err := h.svc.CreateMaintenance(c.Request.Context(), mw.Actor(c), c.Param("serial"), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, row)
}

func (h *Handler) GetMaintenance(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	row, err := h.svc.GetMaintenance(c.Request.Context(), mw.Actor(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, row)
}

func (h *Handler) UpdateMaintenance(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var in fleet.MaintenanceInput
	if !bind(c, &in) {
		return
	}
	row, err := h.svc.UpdateMaintenance(c.Request.Context(), mw.Actor(c), id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, row)
}

func (h *Handler) DeleteMaintenance(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	serialNumber, err := h.svc.DeleteMaintenance(c.Request.Context(), mw.Actor(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id, "machine": serialNumber})
}

// ClaimForm answers 204 when the actor may file a claim on the machine.
func (h *Handler) ClaimForm(c *gin.Context) {
	if err := h.svc.ClaimForm(c.Request.Context(), mw.Actor(c), c.Param("serial")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) CreateClaim(c *gin.Context) {
	var in fleet.ClaimInput
	if !bind(c, &in) {
		return
	}
	row, err := h.svc.CreateClaim(c.Request.Context(), mw.Actor(c), c.Param("serial"), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, row)
}

func (h *Handler) GetClaim(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	row, err := h.svc.GetClaim(c.Request.Context(), mw.Actor(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, row)
}

func (h *Handler) UpdateClaim(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var in fleet.ClaimInput
	if !bind(c, &in) {
		return
	}
	row, err := h.svc.UpdateClaim(c.Request.Context(), mw.Actor(c), id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, row)
}

func (h *Handler) DeleteClaim(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	serialNumber, err := h.svc.DeleteClaim(c.Request.Context(), mw.Actor(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id, "machine": serialNumber})
}
