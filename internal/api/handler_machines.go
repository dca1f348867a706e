package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fleet-records-backend/internal/fleet"
	"fleet-records-backend/internal/mw"
)

// GetMachine returns a machine with its recent records.
func (h *Handler) GetMachine(c *gin.Context) {
	d, err := h.svc.MachineDetail(c.Request.Context(), mw.Actor(c), c.Param("serial"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// MachineForm answers 204 when the actor may register machines.
func (h *Handler) MachineForm(c *gin.Context) {
	if err := h.svc.MachineForm(mw.Actor(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// EditMachineForm returns the machine as its edit form is prefilled.
func (h *Handler) EditMachineForm(c *gin.Context) {
	row, err := h.svc.EditableMachine(c.Request.Context(), mw.Actor(c), c.Param("serial"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, row)
}

// CreateMachine registers a machine.
func (h *Handler) CreateMachine(c *gin.Context) {
	var in fleet.MachineInput
	if !bind(c, &in) {
		return
	}
	row, err := h.svc.CreateMachine(c.Request.Context(), mw.Actor(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, row)
}

// UpdateMachine edits a machine.
func (h *Handler) UpdateMachine(c *gin.Context) {
	var in fleet.MachineInput
	if !bind(c, &in) {
		return
	}
	row, err := h.svc.UpdateMachine(c.Request.Context(), mw.Actor(c), c.Param("serial"), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, row)
}

// DeleteMachine removes a machine with its records.
func (h *Handler) DeleteMachine(c *gin.Context) {
	if err := h.svc.DeleteMachine(c.Request.Context(), mw.Actor(c), c.Param("serial")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
