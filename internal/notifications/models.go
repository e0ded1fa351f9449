package notifications

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type MessageType string

const (
	TypeBookingConfirmed   MessageType = "BOOKING_CONFIRMED"
	TypeBookingCancelled   MessageType = "BOOKING_CANCELLED"
	TypeSponsorshipPending MessageType = "SPONSORSHIP_PENDING"
)

type MessageStatus string

const (
	StatusQueued  MessageStatus = "QUEUED"
	StatusSending MessageStatus = "SENDING"
	StatusSent    MessageStatus = "SENT"
	StatusFailed  MessageStatus = "FAILED"
)

// Message is the unit that flows through the notification topic. Email is
// the only delivery channel.
type Message struct {
	ID   uuid.UUID   `json:"id"`
	Type MessageType `json:"type"`

	RecipientEmail string `json:"recipient_email"`
	RecipientName  string `json:"recipient_name"`

	Subject      string                 `json:"subject"`
	TemplateData map[string]interface{} `json:"template_data"`

	BookingID string     `json:"booking_id,omitempty"`
	EventID   *uuid.UUID `json:"event_id,omitempty"`

	Status     MessageStatus `json:"status"`
	RetryCount int           `json:"retry_count"`
	LastError  string        `json:"last_error,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`
	SentAt     *time.Time    `json:"sent_at,omitempty"`
}

func NewMessage(msgType MessageType, email, name, subject string, data map[string]interface{}) *Message {
	return &Message{
		ID:             uuid.New(),
		Type:           msgType,
		RecipientEmail: email,
		RecipientName:  name,
		Subject:        subject,
		TemplateData:   data,
		Status:         StatusQueued,
		CreatedAt:      time.Now(),
	}
}

func (m *Message) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func MessageFromJSON(data []byte) (*Message, error) {
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to decode notification message: %w", err)
	}
	return &m, nil
}

// PartitionKey routes all of a recipient's messages to one partition so
// they arrive in order.
func (m *Message) PartitionKey() string {
	return m.RecipientEmail
}

func (m *Message) TemplateName() string {
	switch m.Type {
	case TypeBookingConfirmed:
		return "booking_confirmed"
	case TypeBookingCancelled:
		return "booking_cancelled"
	case TypeSponsorshipPending:
		return "sponsorship_pending"
	default:
		return "generic"
	}
}
