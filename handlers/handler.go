package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"flightdeck/database"
	"flightdeck/services"
	"flightdeck/store"
)

// Assistant turns free text into search hints or a conversational reply.
type Assistant interface {
	ExtractIntent(ctx context.Context, query string) (services.Intent, error)
	Reply(ctx context.Context, query, prior string) (string, error)
}

// History persists successful searches. It is optional.
type History interface {
	SaveSearch(ctx context.Context, s database.Search) error
	RecentSearches(ctx context.Context, limit int) ([]database.Search, error)
	Ping(ctx context.Context) error
}

type Handler struct {
	sessions  *store.Registry
	flights   store.FlightSearcher
	locations store.LocationSearcher
	assistant Assistant
	history   History
}

type Options struct {
	Sessions  *store.Registry
	Flights   store.FlightSearcher
	Locations store.LocationSearcher
	Assistant Assistant
	History   History // nil disables search history
}

func New(o Options) *Handler {
	return &Handler{
		sessions:  o.Sessions,
		flights:   o.Flights,
		locations: o.Locations,
		assistant: o.Assistant,
		history:   o.History,
	}
}

// Register mounts the API on api. limit guards the routes that call paid
// upstream APIs on every keystroke or prompt.
func (h *Handler) Register(api *gin.RouterGroup, limit gin.HandlerFunc) {
	api.GET("/health", h.Health)
	api.GET("/flights", h.Flights)
	api.GET("/locations", limit, h.Locations)
	api.POST("/ai", limit, h.AI)
	api.GET("/history", h.History)

	sessions := api.Group("/sessions")
	{
		sessions.POST("", h.CreateSession)
		sessions.GET("/:id", h.GetSession)
		sessions.PATCH("/:id/params", h.SetParams)
		sessions.POST("/:id/search", h.SearchSession)
		sessions.PUT("/:id/filters/:key", h.SetFilter)
		sessions.DELETE("/:id/filters", h.ResetFilters)
		sessions.GET("/:id/chart", h.Chart)
		sessions.GET("/:id/flights/:flightId", h.Booking)
		sessions.GET("/:id/flights/:flightId/pdf", h.DownloadBooking)
	}
}

func (h *Handler) Health(c *gin.Context) {
	dbStatus := "disabled"
	if h.history != nil {
		dbStatus = "ok"
		if err := h.history.Ping(c.Request.Context()); err != nil {
			dbStatus = "error: " + err.Error()
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"service":  "FlightDeck API",
		"database": dbStatus,
		"sessions": h.sessions.Len(),
	})
}

// session resolves the :id path parameter, writing a 404 when it is unknown.
func (h *Handler) session(c *gin.Context) (*store.Store, bool) {
	st, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Search session not found"})
		return nil, false
	}
	return st, true
}
