package models

import (
	"errors"
	"time"
)

const (
	EventPaste     = "PASTE"
	EventTabSwitch = "TAB_SWITCH"
)

// TelemetryEvent is one security-relevant editor event. Events are
// append-only: suspicion scores are always recomputed from the log, never
// kept as running counters.
type TelemetryEvent struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int       `db:"user_id" json:"user_id"`
	ProblemID int       `db:"problem_id" json:"problem_id"`
	Type      string    `db:"type" json:"type"`
	Payload   string    `db:"payload" json:"payload"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

func (e *TelemetryEvent) Validate() error {
	if e.UserID <= 0 {
		return errors.New("user ID must be a positive integer")
	}

	if e.Type != EventPaste && e.Type != EventTabSwitch {
		return errors.New("event type must be PASTE or TAB_SWITCH")
	}

	return nil
}

type TelemetryEventRequest struct {
	ProblemID int    `json:"problem_id"`
	Type      string `json:"type" binding:"required"`
	Payload   string `json:"payload"`
}

// SuspicionEntry is a derived aggregate: 10 points per paste, 5 per tab
// switch, over the events visible to the query.
type SuspicionEntry struct {
	UserID         int `db:"user_id" json:"user_id"`
	PasteCount     int `db:"paste_count" json:"paste_count"`
	TabSwitchCount int `db:"tab_switch_count" json:"tab_switch_count"`
	SuspicionScore int `db:"suspicion_score" json:"suspicion_score"`
}
