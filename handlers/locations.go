package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"flightdeck/ranking"
	"flightdeck/store"
)

// Locations returns ranked autocomplete suggestions. With ?session= the
// lookup is recorded against that session's field, and a response that was
// overtaken by a newer keystroke is flagged stale.
func (h *Handler) Locations(c *gin.Context) {
	keyword := strings.TrimSpace(c.Query("keyword"))

	sessionID := c.Query("session")
	if sessionID == "" {
		res := store.LookupLocations(c.Request.Context(), h.locations, keyword)
		c.JSON(http.StatusOK, locationsResponse(res, false))
		return
	}

	st, err := h.sessions.Get(sessionID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Search session not found"})
		return
	}
	field, err := store.ParseField(c.Query("field"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, applied := st.Suggest(c.Request.Context(), field, keyword)
	c.JSON(http.StatusOK, locationsResponse(res, !applied))
}

func locationsResponse(res ranking.Result, stale bool) gin.H {
	var matched *string
	if res.MatchedCountry != "" {
		country := res.MatchedCountry
		matched = &country
	}
	return gin.H{
		"data":           res.Ranked,
		"matchedCountry": matched,
		"stale":          stale,
	}
}
