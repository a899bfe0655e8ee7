package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"flightdeck/services"
)

type AIRequest struct {
	Query   string `json:"query" binding:"required"`
	Action  string `json:"action"` // extract (default) | chat
	Context string `json:"context"`
}

func (h *Handler) AI(c *gin.Context) {
	var req AIRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Query) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Query is required"})
		return
	}

	ctx := c.Request.Context()
	switch req.Action {
	case "", "extract":
		intent, err := h.assistant.ExtractIntent(ctx, req.Query)
		if err != nil {
			aiError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"intent": intent, "params": intent.Patch()})
	case "chat":
		reply, err := h.assistant.Reply(ctx, req.Query, req.Context)
		if err != nil {
			aiError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"response": reply})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": `Invalid action. Use "extract" or "chat"`})
	}
}

func aiError(c *gin.Context, err error) {
	if errors.Is(err, services.ErrNotConfigured) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "AI assistant is not configured"})
		return
	}
	log.Printf("❌ AI request failed: %v", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process AI request"})
}
