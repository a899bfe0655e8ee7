package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flightdeck/models"
)

func fakeOpenRouter(t *testing.T, reply string, seen *chatRequest) *AIClient {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))
		if seen != nil {
			assert.NoError(t, json.NewDecoder(r.Body).Decode(seen))
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []any{map[string]any{"message": map[string]any{"role": "assistant", "content": reply}}},
		})
	}))
	t.Cleanup(srv.Close)

	c := NewAIClient("key", "", srv.URL, "http://localhost:3000")
	c.now = func() time.Time { return time.Date(2026, 1, 16, 9, 0, 0, 0, time.UTC) }
	return c
}

func TestExtractIntent_StripsFences(t *testing.T) {
	var req chatRequest
	c := fakeOpenRouter(t, "```json\n{\"origin\":\"NYC\",\"destination\":\"LON\",\"departureDate\":\"2026-01-23\",\"adults\":2,\"travelClass\":\"PREMIUM_ECONOMY\",\"intent\":\"search\"}\n```", &req)

	intent, err := c.ExtractIntent(context.Background(), "two of us to London next Friday")
	require.NoError(t, err)

	assert.Equal(t, "LON", intent.Destination)
	assert.Equal(t, 2, intent.Adults)
	require.Len(t, req.Messages, 2)
	assert.Contains(t, req.Messages[0].Content, "Current date: 2026-01-16")
	require.NotNil(t, req.Reasoning)
	assert.True(t, req.Reasoning.Enabled)

	patch := intent.Patch()
	require.NotNil(t, patch.CabinClass)
	assert.Equal(t, models.CabinPremiumEconomy, *patch.CabinClass)
	require.NotNil(t, patch.Passengers)
	assert.Equal(t, 2, *patch.Passengers)
	assert.Nil(t, patch.ReturnDate)
}

func TestExtractIntent_UnparseableFallsBackToSearch(t *testing.T) {
	c := fakeOpenRouter(t, "Sure! Where would you like to go?", nil)

	intent, err := c.ExtractIntent(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, Intent{Intent: "search"}, intent)
}

func TestIntentPatch_DropsInvalidFields(t *testing.T) {
	patch := Intent{Destination: "Europe", DepartureDate: "March", TravelClass: "luxury"}.Patch()

	require.NotNil(t, patch.Destination)
	assert.Equal(t, "Europe", *patch.Destination)
	assert.Nil(t, patch.DepartureDate)
	assert.Nil(t, patch.CabinClass)
	assert.Nil(t, patch.Passengers)
}

func TestReply(t *testing.T) {
	var req chatRequest
	c := fakeOpenRouter(t, "", &req)

	reply, err := c.Reply(context.Background(), "help", "Where to?")
	require.NoError(t, err)
	assert.Equal(t, defaultReply, reply)
	require.Len(t, req.Messages, 3)
	assert.Equal(t, "assistant", req.Messages[1].Role)
}

func TestChat_NotConfigured(t *testing.T) {
	_, err := NewAIClient("", "", "http://unused", "").Chat(context.Background(), nil, 0.5)
	assert.ErrorIs(t, err, ErrNotConfigured)
}
