package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"whatsapp-calendar-assistant/internal/domain/calendar"
	"whatsapp-calendar-assistant/internal/domain/model"
	"whatsapp-calendar-assistant/internal/domain/ports/adapter"
)

// Compile-time assurance this adapter satisfies the port
var _ adapter.EventExtractor = (*OpenAIExtractor)(nil)

// OpenAIExtractor implements adapter.EventExtractor using Chat Completions
// in JSON mode. It is a fallback collaborator: the deterministic parser has
// already passed on the message by the time this runs.
type OpenAIExtractor struct {
	apiKey string
	base   string
	model  string
	client *http.Client
}

func NewOpenAIExtractor(apiKey, model string) (*OpenAIExtractor, error) {
	if apiKey == "" {
		return nil, errors.New("openai api key empty")
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &OpenAIExtractor{
		apiKey: apiKey,
		base:   "https://api.openai.com/v1",
		model:  model,
		client: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

const systemPromptFmt = `You are an assistant that extracts event information from WhatsApp messages.

Current date: %s

Extract the following fields:
- type: flight, hotel, meeting, task, call, or deadline
- title: brief description (max 100 chars)
- date: YYYY-MM-DD (resolve relative dates like "tomorrow" against the current date)
- time: HH:MM in 24-hour form (null if not mentioned)
- person: person involved (null if not mentioned)
- location: place or venue (null if not mentioned)
- description: additional context (null if not mentioned)
- priority: low, medium, high, or urgent based on urgency indicators

Return ONLY a JSON object with those fields. If the message is unclear or
not event-related, return {"type": null}.`

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type extractionPayload struct {
	Type        *string `json:"type"`
	Title       string  `json:"title"`
	Date        string  `json:"date"`
	Time        *string `json:"time"`
	Person      *string `json:"person"`
	Location    *string `json:"location"`
	Description *string `json:"description"`
	Priority    string  `json:"priority"`
}

func (o *OpenAIExtractor) Extract(ctx context.Context, text string, today calendar.Date) (*adapter.ExtractedEvent, error) {
	reqBody := struct {
		Model          string        `json:"model"`
		Messages       []chatMessage `json:"messages"`
		ResponseFormat struct {
			Type string `json:"type"`
		} `json:"response_format"`
		Temperature float64 `json:"temperature"`
		MaxTokens   int     `json:"max_tokens"`
	}{
		Model: o.model,
		Messages: []chatMessage{
			{Role: "system", Content: fmt.Sprintf(systemPromptFmt, today)},
			{Role: "user", Content: text},
		},
		Temperature: 0.1,
		MaxTokens:   500,
	}
	reqBody.ResponseFormat.Type = "json_object"

	b, _ := json.Marshal(reqBody)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.base+"/chat/completions", bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("openai http %d", resp.StatusCode)
	}

	var completion struct {
		Choices []struct {
			Message chatMessage `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return nil, err
	}
	if len(completion.Choices) == 0 || completion.Choices[0].Message.Content == "" {
		return nil, errors.New("no choice content")
	}

	return decodeExtraction(completion.Choices[0].Message.Content, today)
}

// decodeExtraction validates the model's JSON against the closed category
// and priority sets and resolves the date. A null type means the message
// is not event-related, which is not an error.
func decodeExtraction(content string, today calendar.Date) (*adapter.ExtractedEvent, error) {
	var payload extractionPayload
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return nil, fmt.Errorf("extraction json: %w", err)
	}
	if payload.Type == nil || *payload.Type == "" {
		return nil, nil
	}

	category, ok := model.ParseEventCategory(strings.ToLower(*payload.Type))
	if !ok {
		return nil, fmt.Errorf("extraction returned unknown type %q", *payload.Type)
	}
	if strings.TrimSpace(payload.Title) == "" {
		return nil, errors.New("extraction missing title")
	}

	date, err := resolveDate(payload.Date, today)
	if err != nil {
		return nil, err
	}

	out := &adapter.ExtractedEvent{
		Category: category,
		Title:    strings.TrimSpace(payload.Title),
		Date:     date,
		Priority: model.PriorityMedium,
	}
	if p, ok := model.ParseEventPriority(strings.ToLower(payload.Priority)); ok {
		out.Priority = p
	}
	if payload.Time != nil && *payload.Time != "" {
		ct, err := calendar.ParseClockTime(*payload.Time)
		if err != nil {
			return nil, err
		}
		out.Time = &ct
	}
	if payload.Person != nil {
		out.Person = strings.TrimSpace(*payload.Person)
	}
	if payload.Location != nil {
		out.Location = strings.TrimSpace(*payload.Location)
	}
	if payload.Description != nil {
		out.Description = strings.TrimSpace(*payload.Description)
	}
	return out, nil
}

func resolveDate(s string, today calendar.Date) (calendar.Date, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "today":
		return today, nil
	case "tomorrow":
		return today.AddDays(1), nil
	case "day after tomorrow":
		return today.AddDays(2), nil
	}
	d, err := calendar.ParseDate(s)
	if err != nil {
		return calendar.Date{}, fmt.Errorf("extraction date %q: %w", s, err)
	}
	return d, nil
}
