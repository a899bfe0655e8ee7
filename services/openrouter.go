package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"flightdeck/models"
)

const (
	defaultReply     = "I can help you search for flights. Where would you like to go?"
	reasoningModel   = "openai/gpt-oss-120b:free"
	completionTokens = 1000
)

type AIClient struct {
	apiKey     string
	model      string
	baseURL    string
	siteURL    string
	httpClient *http.Client
	now        func() time.Time
}

func NewAIClient(apiKey, model, baseURL, siteURL string) *AIClient {
	if model == "" {
		model = reasoningModel
	}
	return &AIClient{
		apiKey:  apiKey,
		model:   model,
		baseURL: strings.TrimRight(baseURL, "/"),
		siteURL: siteURL,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		now: time.Now,
	}
}

func (c *AIClient) Configured() bool {
	return c != nil && c.apiKey != ""
}

// ─── Chat Completions ─────────────────────────────────────────────────────────

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
	Reasoning   *reasoning    `json:"reasoning,omitempty"`
}

type reasoning struct {
	Enabled bool `json:"enabled"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Chat sends messages to the chat completions endpoint and returns the first
// choice's content, which may be empty.
func (c *AIClient) Chat(ctx context.Context, messages []ChatMessage, temperature float64) (string, error) {
	if !c.Configured() {
		return "", fmt.Errorf("openrouter: %w", ErrNotConfigured)
	}

	reqBody := chatRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: temperature,
		MaxTokens:   completionTokens,
	}
	if c.model == reasoningModel {
		reqBody.Reasoning = &reasoning{Enabled: true}
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("HTTP-Referer", c.siteURL)
	req.Header.Set("X-Title", "Flight Search Assistant")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("OpenRouter API error (%d): %s", resp.StatusCode, string(body))
	}

	var chatResp chatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", fmt.Errorf("failed to parse AI response: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return "", nil
	}
	return chatResp.Choices[0].Message.Content, nil
}

// ─── Intent Extraction ────────────────────────────────────────────────────────

// Intent is a best-effort reading of a free-text query. It pre-fills the
// search form and is never applied without the user's say.
type Intent struct {
	Origin        string   `json:"origin,omitempty"`
	Destination   string   `json:"destination,omitempty"`
	DepartureDate string   `json:"departureDate,omitempty"`
	ReturnDate    string   `json:"returnDate,omitempty"`
	Adults        int      `json:"adults,omitempty"`
	TravelClass   string   `json:"travelClass,omitempty"`
	Intent        string   `json:"intent,omitempty"` // search | explore | recommend
	Preferences   []string `json:"preferences,omitempty"`
}

// Patch converts the intent into a partial parameter update. Fields the
// model left out or got wrong stay nil.
func (i Intent) Patch() models.ParamsPatch {
	var p models.ParamsPatch
	if s := strings.TrimSpace(i.Origin); s != "" {
		p.Origin = &s
	}
	if s := strings.TrimSpace(i.Destination); s != "" {
		p.Destination = &s
	}
	if _, err := time.Parse(models.DateLayout, i.DepartureDate); err == nil {
		d := i.DepartureDate
		p.DepartureDate = &d
	}
	if _, err := time.Parse(models.DateLayout, i.ReturnDate); err == nil {
		d := i.ReturnDate
		p.ReturnDate = &d
	}
	if i.Adults > 0 {
		n := i.Adults
		p.Passengers = &n
	}
	if cabin, ok := models.ParseCabinClass(i.TravelClass); ok {
		p.CabinClass = &cabin
	}
	return p
}

func (c *AIClient) intentPrompt() string {
	return fmt.Sprintf(`You are a flight search assistant. Extract structured flight search parameters from natural language queries.

Current date: %s

Respond ONLY with a valid JSON object (no markdown, no code blocks) with these fields:
- origin: departure city/airport code (if mentioned)
- destination: arrival city/airport code (if mentioned)
- departureDate: YYYY-MM-DD format (if mentioned, convert relative dates like "next week" to actual dates)
- returnDate: YYYY-MM-DD format (if mentioned)
- adults: number of passengers (default 1)
- travelClass: "ECONOMY", "PREMIUM_ECONOMY", "BUSINESS", or "FIRST" (if mentioned)
- intent: "search" (specific search), "explore" (general browsing), or "recommend" (asking for suggestions)
- preferences: array of strings like ["direct flights", "cheapest", "fastest", "morning departure"]

Example:
Query: "I want to fly from New York to London next Friday"
Response: {"origin":"NYC","destination":"LON","departureDate":"2026-01-23","adults":1,"travelClass":"ECONOMY","intent":"search","preferences":[]}`,
		c.now().UTC().Format(models.DateLayout))
}

// ExtractIntent asks the model for structured search parameters. A reply
// that is not valid JSON yields the bare "search" intent.
func (c *AIClient) ExtractIntent(ctx context.Context, query string) (Intent, error) {
	content, err := c.Chat(ctx, []ChatMessage{
		{Role: "system", Content: c.intentPrompt()},
		{Role: "user", Content: query},
	}, 0.3)
	if err != nil {
		return Intent{}, err
	}
	return parseIntent(content), nil
}

func parseIntent(content string) Intent {
	clean := strings.NewReplacer("```json", "", "```", "").Replace(content)
	clean = strings.TrimSpace(clean)
	if clean == "" {
		clean = "{}"
	}

	var intent Intent
	if err := json.Unmarshal([]byte(clean), &intent); err != nil {
		log.Printf("⚠️  Failed to parse AI intent: %q", clean)
		return Intent{Intent: "search"}
	}
	return intent
}

// Reply generates a conversational answer. prior, when set, is passed as
// the assistant's previous turn.
func (c *AIClient) Reply(ctx context.Context, query, prior string) (string, error) {
	messages := []ChatMessage{{
		Role: "system",
		Content: "You are a helpful flight search assistant. Help users find flights naturally and conversationally.\n" +
			"Be concise, friendly, and guide them through their search. If they ask vague questions, help them narrow down options.\n" +
			"Current date: " + c.now().UTC().Format(models.DateLayout),
	}}
	if prior != "" {
		messages = append(messages, ChatMessage{Role: "assistant", Content: prior})
	}
	messages = append(messages, ChatMessage{Role: "user", Content: query})

	content, err := c.Chat(ctx, messages, 0.8)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(content) == "" {
		return defaultReply, nil
	}
	return content, nil
}
