package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"flightdeck/database"
	"flightdeck/filters"
	"flightdeck/models"
	"flightdeck/store"
)

// Flights queries the provider directly without touching any session.
func (h *Handler) Flights(c *gin.Context) {
	p := models.DefaultSearchParams()
	p.Origin = strings.ToUpper(strings.TrimSpace(c.Query("origin")))
	p.Destination = strings.ToUpper(strings.TrimSpace(c.Query("destination")))
	p.DepartureDate = strings.TrimSpace(c.Query("date"))
	p.ReturnDate = strings.TrimSpace(c.Query("returnDate"))

	if !p.Complete() {
		c.JSON(http.StatusBadRequest, gin.H{"error": store.MsgIncompleteSearch})
		return
	}
	if len(p.Origin) != 3 || len(p.Destination) != 3 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Airport codes must be exactly 3 characters (e.g. LHR, JFK)"})
		return
	}
	if err := validateDates(p.DepartureDate, p.ReturnDate); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if raw := c.Query("passengers"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Passengers must be a positive number"})
			return
		}
		p.Passengers = n
	}
	if raw := c.Query("cabin"); raw != "" {
		cabin, ok := models.ParseCabinClass(raw)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": unknownCabin(raw)})
			return
		}
		p.CabinClass = cabin
	}

	flights, err := h.flights.SearchFlights(c.Request.Context(), p)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	for i := range flights {
		flights[i].Normalize()
	}

	c.JSON(http.StatusOK, gin.H{
		"flights": flights,
		"count":   len(flights),
	})
}

func validateDates(departure, ret string) error {
	depDate, err := time.Parse(models.DateLayout, departure)
	if err != nil {
		return errors.New("Invalid departure date format. Use YYYY-MM-DD")
	}
	if ret == "" {
		return nil
	}
	retDate, err := time.Parse(models.DateLayout, ret)
	if err != nil {
		return errors.New("Invalid return date format. Use YYYY-MM-DD")
	}
	if retDate.Before(depDate) {
		return errors.New("Return date must not be before departure date")
	}
	return nil
}

func unknownCabin(raw string) string {
	return "Unknown cabin class " + strconv.Quote(raw) + " (use " + models.CabinClassNames() + ")"
}

// ─── Session search ──────────────────────────────────────────────────────────

func (h *Handler) SetParams(c *gin.Context) {
	st, ok := h.session(c)
	if !ok {
		return
	}

	var patch models.ParamsPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	if patch.Passengers != nil && *patch.Passengers < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Passengers must be a positive number"})
		return
	}
	if patch.CabinClass != nil {
		cabin, ok := models.ParseCabinClass(string(*patch.CabinClass))
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": unknownCabin(string(*patch.CabinClass))})
			return
		}
		patch.CabinClass = &cabin
	}

	st.SetSearchParams(patch)
	h.respondView(c, http.StatusOK, st)
}

func (h *Handler) SearchSession(c *gin.Context) {
	st, ok := h.session(c)
	if !ok {
		return
	}

	err := st.SearchFlights(c.Request.Context())
	switch {
	case errors.Is(err, store.ErrIncompleteSearch):
		h.respondView(c, http.StatusBadRequest, st)
		return
	case errors.Is(err, store.ErrSuperseded):
		h.respondView(c, http.StatusConflict, st)
		return
	case err != nil:
		h.respondView(c, http.StatusBadGateway, st)
		return
	}

	if h.history != nil {
		if params, flights := st.LastSearch(); len(flights) > 0 {
			rec := database.NewSearch(c.Param("id"), params, flights)
			if err := h.history.SaveSearch(c.Request.Context(), rec); err != nil {
				log.Printf("⚠️  Failed to save search history: %v", err)
			}
		}
	}

	h.respondView(c, http.StatusOK, st)
}

func (h *Handler) History(c *gin.Context) {
	if h.history == nil {
		c.JSON(http.StatusOK, gin.H{"searches": []database.Search{}, "enabled": false})
		return
	}

	limit := 20
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 100 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 100"})
			return
		}
		limit = n
	}

	searches, err := h.history.RecentSearches(c.Request.Context(), limit)
	if err != nil {
		log.Printf("❌ History query failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load search history"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"searches": searches, "enabled": true})
}

// respondView writes the session view sorted by the ?sort= query.
func (h *Handler) respondView(c *gin.Context, status int, st *store.Store) {
	sort, err := filters.ParseSortKey(c.Query("sort"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	v := st.View(sort)
	v.SessionID = c.Param("id")
	c.JSON(status, v)
}
