package models

import "time"

// MaxTags is the maximum number of interest tags a participant may submit
// with a find request. Extra tags are rejected at the protocol layer.
const MaxTags = 5

// WaitingEntry is one pending pairing request in the shared waiting queue.
// At most one live entry exists per participant; a newer find request
// replaces the older entry instead of duplicating it.
type WaitingEntry struct {
	ParticipantID string    `json:"participantId"`
	EnqueuedAt    time.Time `json:"enqueuedAt"`
	Tags          []string  `json:"tags,omitempty"`
	Language      string    `json:"language,omitempty"`
	Country       string    `json:"country,omitempty"` // ISO 3166-1 alpha-2, empty when unknown
}

// MatchAssignment is the result of a successful pairing addressed to the
// peer that was not directly notified. It sits in that peer's mailbox with
// a short TTL until the peer's next poll picks it up.
type MatchAssignment struct {
	RoomID     string `json:"roomId"`
	Credential string `json:"credential"`
	PartnerID  string `json:"partnerId"`
}

// SessionState is the per-connection matchmaking state.
type SessionState int

const (
	StateIdle SessionState = iota
	StateQueued
	StateMatched
	StateCoolingDown
)

func (s SessionState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateQueued:
		return "queued"
	case StateMatched:
		return "matched"
	case StateCoolingDown:
		return "cooling_down"
	default:
		return "unknown"
	}
}

// ReportEvent is a moderation report appended to the moderation log.
// Best-effort: a failed append never reaches the reporting user.
type ReportEvent struct {
	ReporterID string    `json:"reporterId"`
	PartnerID  string    `json:"partnerId,omitempty"`
	RoomID     string    `json:"roomId,omitempty"`
	Reason     string    `json:"reason"`
	CreatedAt  time.Time `json:"createdAt"`
}
