package resend

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"whatsapp-calendar-assistant/internal/domain/ports/adapter"
)

// Compile-time assurance this adapter satisfies the port
var _ adapter.EmailSender = (*Sender)(nil)

// Sender delivers digest emails through the Resend API.
type Sender struct {
	apiKey string
	from   string
	base   string
	client *http.Client
}

func NewSender(apiKey, from string) (*Sender, error) {
	if apiKey == "" {
		return nil, errors.New("resend api key empty")
	}
	if from == "" {
		return nil, errors.New("resend from address empty")
	}
	return &Sender{
		apiKey: apiKey,
		from:   from,
		base:   "https://api.resend.com",
		client: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

type attachmentPayload struct {
	Filename string `json:"filename"`
	Content  string `json:"content"` // base64
}

func (s *Sender) Send(ctx context.Context, to, subject, html string, attachments []adapter.Attachment) (string, error) {
	reqBody := struct {
		From        string              `json:"from"`
		To          []string            `json:"to"`
		Subject     string              `json:"subject"`
		HTML        string              `json:"html"`
		Attachments []attachmentPayload `json:"attachments,omitempty"`
	}{
		From:    s.from,
		To:      []string{to},
		Subject: subject,
		HTML:    html,
	}
	for _, a := range attachments {
		reqBody.Attachments = append(reqBody.Attachments, attachmentPayload{
			Filename: a.Filename,
			Content:  base64.StdEncoding.EncodeToString(a.Content),
		})
	}

	b, _ := json.Marshal(reqBody)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.base+"/emails", bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		var apiErr struct {
			Message string `json:"message"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		return "", fmt.Errorf("resend http %d: %s", resp.StatusCode, apiErr.Message)
	}

	var payload struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", err
	}
	return payload.ID, nil
}
