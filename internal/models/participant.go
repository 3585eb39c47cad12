package models

import "time"

// Participant is an individual who registered with one skill and one
// experience level and is either waiting for a team or placed into one.
// ExternalID is the identity the chat transport knows them by.
type Participant struct {
	ID           int64     `json:"id"`
	ExternalID   int64     `json:"external_id"`
	Username     string    `json:"username"`
	Skill        string    `json:"skill"`
	Experience   string    `json:"experience"`
	RegisteredAt time.Time `json:"registered_at"`
	IsWaiting    bool      `json:"is_waiting"`
}
