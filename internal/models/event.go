package models

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

var (
	ErrMalformedEnvelope = errors.New("malformed push envelope")
	ErrUndecodableData   = errors.New("undecodable message data")
)

// PushEnvelope is the body of a push-subscription delivery.
type PushEnvelope struct {
	Message      *PushMessage `json:"message" validate:"required"`
	Subscription string       `json:"subscription"`
}

type PushMessage struct {
	Data        string            `json:"data"`
	MessageID   string            `json:"messageId"`
	Attributes  map[string]string `json:"attributes,omitempty"`
	PublishTime string            `json:"publishTime,omitempty"`
}

type EventType string

const (
	EventRawUpload EventType = "RAW_UPLOAD"
	EventRestitch  EventType = "RE_STITCH"
)

// JobEvent is the normalized unit of work pushed onto the job queue.
type JobEvent struct {
	Type       EventType `json:"type" validate:"required,oneof=RAW_UPLOAD RE_STITCH"`
	Name       string    `json:"name,omitempty" validate:"required_if=Type RAW_UPLOAD"`
	Bucket     string    `json:"bucket,omitempty"`
	VideoID    string    `json:"videoId,omitempty" validate:"required_if=Type RE_STITCH"`
	MessageID  string    `json:"messageId,omitempty"`
	ReceivedAt time.Time `json:"receivedAt"`
}

type rawPayload struct {
	Type    string          `json:"type"`
	VideoID json.RawMessage `json:"videoId"`
	Name    *string         `json:"name"`
	Kind    *string         `json:"kind"`
	Bucket  string          `json:"bucket"`
}

// DecodeEvent classifies the message payload. It returns (nil, nil) for shapes
// that are not processed.
func DecodeEvent(msg *PushMessage) (*JobEvent, error) {
	if msg == nil {
		return nil, ErrMalformedEnvelope
	}
	data := []byte("{}")
	if strings.TrimSpace(msg.Data) != "" {
		decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(msg.Data))
		if err != nil {
			return nil, ErrUndecodableData
		}
		data = decoded
	}

	var payload rawPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, ErrUndecodableData
	}

	switch {
	case payload.Type == string(EventRestitch):
		videoID := decodeID(payload.VideoID)
		if videoID == "" {
			return nil, nil
		}
		return &JobEvent{
			Type:      EventRestitch,
			VideoID:   videoID,
			MessageID: msg.MessageID,
		}, nil
	case payload.Name != nil || payload.Kind != nil:
		event := &JobEvent{
			Type:      EventRawUpload,
			Bucket:    payload.Bucket,
			MessageID: msg.MessageID,
		}
		if payload.Name != nil {
			event.Name = strings.TrimSpace(*payload.Name)
		}
		return event, nil
	default:
		return nil, nil
	}
}

// decodeID accepts both string and numeric identifiers.
func decodeID(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

// EventList is one page of queued events.
type EventList struct {
	Events     []*JobEvent `json:"events"`
	TotalCount int         `json:"total_count"`
	TotalPages int         `json:"total_pages"`
	Page       int         `json:"page"`
	PageSize   int         `json:"page_size"`
	HasMore    bool        `json:"has_more"`
}
