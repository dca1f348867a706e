package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type lookupRequest struct {
	SerialNumber string `form:"serial_number" json:"serial_number"`
}

// LookupSerial is the public machine search. An empty serial returns an
// empty result so the page can render its form.
func (h *Handler) LookupSerial(c *gin.Context) {
	var req lookupRequest
	if c.Request.Method == http.MethodGet {
		req.SerialNumber = c.Query("serial_number")
	} else if !bind(c, &req) {
		return
	}
	if req.SerialNumber == "" {
		c.JSON(http.StatusOK, gin.H{"machine": nil})
		return
	}

	m, err := h.svc.LookupSerial(c.Request.Context(), req.SerialNumber)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"machine": m})
}
