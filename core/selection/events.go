package selection

import (
	"context"
	"time"
)

// EventType names a selection lifecycle event.
type EventType string

const (
	SelectionStart   EventType = "selection:start"
	SelectionSuccess EventType = "selection:success"
	SelectionFailed  EventType = "selection:failed"
)

// SelectionEvent describes one step of a selection run.
type SelectionEvent struct {
	Type      EventType `json:"type"`
	RunID     string    `json:"runId"`
	Predicate string    `json:"predicate"`
	// Scanned and Matched count rows evaluated and selected so far.
	Scanned int `json:"scanned"`
	Matched int `json:"matched"`
	// Error is set on SelectionFailed.
	Error *string `json:"error,omitempty"`
	// Duration is zero on SelectionStart.
	Duration  time.Duration `json:"duration"`
	Timestamp time.Time     `json:"timestamp"`
}

// EventCallbackFunction receives selection events.
type EventCallbackFunction func(ctx context.Context, event SelectionEvent) error

// SubscriptionInfo describes a registered subscription.
type SubscriptionInfo struct {
	ID          string    `json:"id"`
	Event       EventType `json:"event"`
	Unsubscribe func()    `json:"-"`
}

func newEvent(eventType EventType, runID, predicate string, scanned, matched int, err error, start time.Time) SelectionEvent {
	now := time.Now()
	event := SelectionEvent{
		Type:      eventType,
		RunID:     runID,
		Predicate: predicate,
		Scanned:   scanned,
		Matched:   matched,
		Timestamp: now,
	}
	if eventType != SelectionStart {
		event.Duration = now.Sub(start)
	}
	if err != nil {
		msg := err.Error()
		event.Error = &msg
	}
	return event
}
