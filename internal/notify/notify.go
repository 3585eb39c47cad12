// Package notify pushes team lifecycle and chat events to connected
// participants over the WebSocket hub. Delivery is best effort: a
// participant who is offline simply misses the push and catches up over
// the HTTP API.
package notify

import (
	"encoding/json"

	"github.com/nikhil/teammatch/internal/logger"
	"github.com/nikhil/teammatch/internal/models"
)

const (
	EventTeamMatched   = "team_matched"
	EventTeamConfirmed = "team_confirmed"
	EventTeamDissolved = "team_dissolved"
	EventChatMessage   = "chat_message"
)

type teammate struct {
	Username   string `json:"username"`
	Skill      string `json:"skill"`
	Experience string `json:"experience"`
}

type teamEvent struct {
	Type      string     `json:"type"`
	TeamID    int64      `json:"team_id"`
	ChannelID *int64     `json:"channel_id,omitempty"`
	Teammates []teammate `json:"teammates,omitempty"`
}

type chatEvent struct {
	Type    string             `json:"type"`
	Message models.ChatMessage `json:"message"`
}

// Notifier fans events out to the members' open connections.
type Notifier struct {
	hub *models.Hub
	log *logger.Logger
}

func New(hub *models.Hub, log *logger.Logger) *Notifier {
	return &Notifier{hub: hub, log: log}
}

// TeamMatched tells each member a team proposal is waiting for their
// response. The teammate list is personalized: members see everyone but
// themselves.
func (n *Notifier) TeamMatched(teamID int64, roster []models.TeamMemberDetail) {
	n.sendPersonalized(teamID, roster, func(others []teammate) teamEvent {
		return teamEvent{Type: EventTeamMatched, TeamID: teamID, Teammates: others}
	})
}

// TeamConfirmed announces the confirmed team and its chat channel.
func (n *Notifier) TeamConfirmed(teamID, channelID int64, roster []models.TeamMemberDetail) {
	n.sendPersonalized(teamID, roster, func(others []teammate) teamEvent {
		return teamEvent{Type: EventTeamConfirmed, TeamID: teamID, ChannelID: &channelID, Teammates: others}
	})
}

// TeamDissolved tells the former members they are back in the waiting pool.
func (n *Notifier) TeamDissolved(teamID int64, roster []models.TeamMemberDetail) {
	payload, err := json.Marshal(teamEvent{Type: EventTeamDissolved, TeamID: teamID})
	if err != nil {
		n.log.Error("marshal dissolve event", "team_id", teamID, "error", err)
		return
	}
	for _, d := range roster {
		n.hub.SendToParticipant(d.Participant.ExternalID, payload)
	}
}

// ChatMessage pushes a stored chat message to the listed recipients.
func (n *Notifier) ChatMessage(msg models.ChatMessage, recipients []int64) {
	payload, err := json.Marshal(chatEvent{Type: EventChatMessage, Message: msg})
	if err != nil {
		n.log.Error("marshal chat event", "channel_id", msg.ChannelID, "error", err)
		return
	}
	for _, ext := range recipients {
		n.hub.SendToParticipant(ext, payload)
	}
}

func (n *Notifier) sendPersonalized(teamID int64, roster []models.TeamMemberDetail, build func(others []teammate) teamEvent) {
	for _, d := range roster {
		others := make([]teammate, 0, len(roster)-1)
		for _, o := range roster {
			if o.Participant.ID == d.Participant.ID {
				continue
			}
			others = append(others, teammate{
				Username:   o.Participant.Username,
				Skill:      o.Participant.Skill,
				Experience: o.Participant.Experience,
			})
		}

		payload, err := json.Marshal(build(others))
		if err != nil {
			n.log.Error("marshal team event", "team_id", teamID, "error", err)
			return
		}
		n.hub.SendToParticipant(d.Participant.ExternalID, payload)
	}
}
