package models

import "time"

// Team is created atomically with a full set of members and stays
// unconfirmed until every member accepts. ChannelID is set only after
// confirmation.
type Team struct {
	ID          int64     `json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	IsConfirmed bool      `json:"is_confirmed"`
	ChannelID   *int64    `json:"channel_id,omitempty"`
}

// TeamMember joins a participant to a team.
type TeamMember struct {
	ID            int64 `json:"id"`
	TeamID        int64 `json:"team_id"`
	ParticipantID int64 `json:"participant_id"`
	HasConfirmed  bool  `json:"has_confirmed"`
}

// TeamMemberDetail pairs a membership row with its participant.
type TeamMemberDetail struct {
	Member      TeamMember  `json:"member"`
	Participant Participant `json:"participant"`
}

// MemberInfo is the member view exposed by team snapshots.
type MemberInfo struct {
	ExternalID   int64  `json:"external_id"`
	Username     string `json:"username"`
	Skill        string `json:"skill"`
	Experience   string `json:"experience"`
	HasConfirmed bool   `json:"has_confirmed"`
}

// TeamInfo is a read-only snapshot of a team and its members.
type TeamInfo struct {
	TeamID      int64        `json:"team_id"`
	CreatedAt   time.Time    `json:"created_at"`
	IsConfirmed bool         `json:"is_confirmed"`
	ChannelID   *int64       `json:"channel_id,omitempty"`
	Members     []MemberInfo `json:"members"`
}
