package twilio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"whatsapp-calendar-assistant/internal/domain/ports/adapter"
)

// Compile-time assurance this adapter satisfies the port
var _ adapter.ChatSender = (*Sender)(nil)

// Sender delivers WhatsApp messages through the Twilio Messages API.
type Sender struct {
	accountSID string
	authToken  string
	from       string // E.164 number without the whatsapp: prefix
	base       string
	client     *http.Client
}

func NewSender(accountSID, authToken, from string) (*Sender, error) {
	if accountSID == "" || authToken == "" {
		return nil, errors.New("twilio credentials empty")
	}
	if from == "" {
		return nil, errors.New("twilio whatsapp number empty")
	}
	return &Sender{
		accountSID: accountSID,
		authToken:  authToken,
		from:       from,
		base:       "https://api.twilio.com/2010-04-01",
		client:     &http.Client{Timeout: 15 * time.Second},
	}, nil
}

// SendMessage posts one outbound WhatsApp message and returns the Twilio
// message SID. mediaURL is optional.
func (s *Sender) SendMessage(ctx context.Context, phone, body, mediaURL string) (string, error) {
	form := url.Values{}
	form.Set("From", "whatsapp:"+s.from)
	form.Set("To", "whatsapp:"+normalizePhone(phone))
	form.Set("Body", body)
	if mediaURL != "" {
		form.Set("MediaUrl", mediaURL)
	}

	endpoint := fmt.Sprintf("%s/Accounts/%s/Messages.json", s.base, s.accountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(s.accountSID, s.authToken)

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
		return "", fmt.Errorf("twilio http %d: %s", resp.StatusCode, apiErr.Message)
	}

	var payload struct {
		SID string `json:"sid"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", err
	}
	if payload.SID == "" {
		return "", errors.New("twilio response missing sid")
	}
	return payload.SID, nil
}

func normalizePhone(phone string) string {
	return strings.TrimPrefix(strings.TrimSpace(phone), "whatsapp:")
}
