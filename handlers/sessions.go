package handlers

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"

	"flightdeck/filters"
)

func (h *Handler) CreateSession(c *gin.Context) {
	id, st := h.sessions.Create()
	v := st.View(filters.SortPrice)
	v.SessionID = id
	c.JSON(http.StatusCreated, v)
}

func (h *Handler) GetSession(c *gin.Context) {
	st, ok := h.session(c)
	if !ok {
		return
	}
	h.respondView(c, http.StatusOK, st)
}

// SetFilter applies one filter. The body is the bare JSON value for the key:
// a number for maxPrice, an array or null for stops, an array for airlines,
// a string for timeRange.
func (h *Handler) SetFilter(c *gin.Context) {
	st, ok := h.session(c)
	if !ok {
		return
	}

	raw, err := c.GetRawData()
	if err != nil || len(bytes.TrimSpace(raw)) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: filter value is required"})
		return
	}
	u, err := filters.ParseUpdate(c.Param("key"), raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	st.SetFilter(u)
	h.respondView(c, http.StatusOK, st)
}

func (h *Handler) ResetFilters(c *gin.Context) {
	st, ok := h.session(c)
	if !ok {
		return
	}
	st.ResetFilters()
	h.respondView(c, http.StatusOK, st)
}

func (h *Handler) Chart(c *gin.Context) {
	st, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, st.Chart())
}
