package model

import (
	"strings"
	"time"

	"whatsapp-calendar-assistant/internal/domain"

	"github.com/google/uuid"
)

// User is a domain entity keyed by WhatsApp phone number. Users are created
// implicitly on the first inbound message from an unknown number and are
// never hard-deleted.
type User struct {
	ID              string
	PhoneNumber     string
	Name            string
	Email           string
	WhatsAppEnabled bool
	EmailEnabled    bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func NewUser(id, phoneNumber string) (*User, error) {
	if id == "" {
		id = uuid.NewString()
	}
	phoneNumber = strings.TrimSpace(phoneNumber)
	if phoneNumber == "" {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	return &User{
		ID:              id,
		PhoneNumber:     phoneNumber,
		WhatsAppEnabled: true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

func (u *User) IsZero() bool { return u == nil || u.ID == "" }

func (u *User) Touch() { u.UpdatedAt = time.Now() }

// DisplayName falls back to the phone number when no name is set.
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.PhoneNumber
}

// HasDeliveryChannel reports whether at least one digest channel is enabled
// and addressable.
func (u *User) HasDeliveryChannel() bool {
	if u.WhatsAppEnabled && u.PhoneNumber != "" {
		return true
	}
	return u.EmailEnabled && u.Email != ""
}
