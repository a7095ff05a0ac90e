// Package events publishes faqbase domain events to NATS.
package events

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
)

const (
	SubjectFAQCreated     = "faqbase.faq.created"
	SubjectFAQUpdated     = "faqbase.faq.updated"
	SubjectFAQDeleted     = "faqbase.faq.deleted"
	SubjectFAQBulkCreated = "faqbase.faq.bulk_created"
	SubjectSearchMissed   = "faqbase.search.missed"
)

// Envelope wraps every published payload.
type Envelope struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

func NewEnvelope(subject string, data any) Envelope {
	return Envelope{
		ID:        uuid.NewString(),
		Type:      subject,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

// FAQEvent is the payload of the faqbase.faq.created/updated/deleted events.
type FAQEvent struct {
	ID       int64  `json:"id"`
	Question string `json:"question,omitempty"`
	Category string `json:"category,omitempty"`
}

type BulkCreatedEvent struct {
	Source       string `json:"source"`
	Category     string `json:"category,omitempty"`
	Total        int    `json:"total"`
	SuccessCount int    `json:"success_count"`
	ErrorCount   int    `json:"error_count"`
}

type SearchMissedEvent struct {
	Query string `json:"query"`
}

// Publisher is satisfied by *Client and Nop.
type Publisher interface {
	Publish(subject string, data any) error
}

// Nop drops every event. It is used when NATS is not configured.
type Nop struct{}

func (Nop) Publish(string, any) error { return nil }

// Emit publishes and logs a failure instead of returning it.
func Emit(logger *slog.Logger, pub Publisher, subject string, data any) {
	if pub == nil {
		return
	}
	if err := pub.Publish(subject, data); err != nil {
		logger.Warn("publish event", "subject", subject, "error", err)
	}
}
