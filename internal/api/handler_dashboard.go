package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"fleet-records-backend/internal/export"
	"fleet-records-backend/internal/filter"
	"fleet-records-backend/internal/mw"
)

// GetDashboard returns all three tabs filtered by the query string.
func (h *Handler) GetDashboard(c *gin.Context) {
	var q filter.Dashboard
	if !bindQuery(c, &q) {
		return
	}
	d, err := h.svc.Dashboard(c.Request.Context(), mw.Actor(c), q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

type machinesQuery struct {
	filter.Machines
	filter.Paging
}

// ListMachines returns one page of visible machines.
func (h *Handler) ListMachines(c *gin.Context) {
	var q machinesQuery
	if !bindQuery(c, &q) {
		return
	}
	page, err := h.svc.ListMachines(c.Request.Context(), mw.Actor(c), q.Machines, q.Paging)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

type maintenanceQuery struct {
	filter.Maintenance
	filter.Paging
}

// ListMaintenance returns one page of visible maintenance records.
func (h *Handler) ListMaintenance(c *gin.Context) {
	var q maintenanceQuery
	if !bindQuery(c, &q) {
		return
	}
	page, err := h.svc.ListMaintenance(c.Request.Context(), mw.Actor(c), q.Maintenance, q.Paging)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

type claimsQuery struct {
	filter.Claims
	filter.Paging
}

// ListClaims returns one page of visible claims.
func (h *Handler) ListClaims(c *gin.Context) {
	var q claimsQuery
	if !bindQuery(c, &q) {
		return
	}
	page, err := h.svc.ListClaims(c.Request.Context(), mw.Actor(c), q.Claims, q.Paging)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// ExportMachines downloads the filtered machine list as a spreadsheet.
func (h *Handler) ExportMachines(c *gin.Context) {
	var f filter.Machines
	if !bindQuery(c, &f) {
		return
	}
	data, name, err := h.svc.ExportMachines(c.Request.Context(), mw.Actor(c), f)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	c.Data(http.StatusOK, export.ContentType, data)
}
