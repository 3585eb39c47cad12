package models

import "time"

// Channel is a confirmed team's chat channel. One channel per team,
// created by the coordinator when the team confirms.
type Channel struct {
	ChannelID int64     `json:"channel_id"`
	TeamID    int64     `json:"team_id"`
	Name      string    `json:"channel_name"`
	CreatedAt time.Time `json:"created_at"`
}

// ChatMessage is a message posted into a team channel.
type ChatMessage struct {
	ID            int64     `json:"id"`
	ChannelID     int64     `json:"channel_id"`
	ParticipantID int64     `json:"participant_id"`
	Username      string    `json:"username"`
	Content       string    `json:"content"`
	CreatedAt     time.Time `json:"created_at"`
}
