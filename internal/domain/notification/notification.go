// Package notification defines the raw push-notification payload received
// from the mobile ingestion channel and its stored form awaiting parsing.
package notification

import (
	"time"

	"github.com/google/uuid"
)

// Payload is the wire shape the mobile channel sends for one notification
type Payload struct {
	ChannelID   string   `json:"channel_id"`
	AppLabel    string   `json:"app_label,omitempty"`
	Title       string   `json:"title,omitempty"`
	Text        string   `json:"body_text"`
	TimestampMS int64    `json:"timestamp_ms,omitempty"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
}

// Time converts the millisecond timestamp; zero payload timestamps fall back
// to the current time.
func (p *Payload) Time() time.Time {
	if p.TimestampMS <= 0 {
		return time.Now()
	}
	return time.UnixMilli(p.TimestampMS)
}

// RawNotification is a stored notification payload. It records the parsing
// verdict: is_expense stays nil until the parser has run.
type RawNotification struct {
	ID              uuid.UUID  `json:"id"`
	AppPackage      string     `json:"app_package"`
	AppName         string     `json:"app_name,omitempty"`
	Title           string     `json:"title,omitempty"`
	Text            string     `json:"text"`
	NotifiedAt      *time.Time `json:"notified_at,omitempty"`
	Processed       bool       `json:"processed"`
	IsExpense       *bool      `json:"is_expense,omitempty"`
	PendingRecordID *uuid.UUID `json:"pending_record_id,omitempty"`
	ParseError      string     `json:"parse_error,omitempty"`
	ReceivedAt      time.Time  `json:"received_at"`
}

// FromPayload builds a stored notification from an incoming payload
func FromPayload(p *Payload) *RawNotification {
	n := &RawNotification{
		ID:         uuid.New(),
		AppPackage: p.ChannelID,
		AppName:    p.AppLabel,
		Title:      p.Title,
		Text:       p.Text,
		ReceivedAt: time.Now(),
	}
	if p.TimestampMS > 0 {
		t := time.UnixMilli(p.TimestampMS)
		n.NotifiedAt = &t
	}
	return n
}
