package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/nikhil/teammatch/internal/logger"
	"github.com/nikhil/teammatch/internal/middleware"
	"github.com/nikhil/teammatch/internal/models"
	"github.com/nikhil/teammatch/internal/store"
)

const defaultHistoryLimit = 50

// Store is the persistence surface the chat service consumes.
type Store interface {
	ParticipantByExternalID(ctx context.Context, externalID int64) (models.Participant, error)
	TeamByID(ctx context.Context, teamID int64) (models.Team, error)
	TeamRoster(ctx context.Context, teamID int64) ([]models.TeamMemberDetail, error)
	ChannelByTeam(ctx context.Context, teamID int64) (models.Channel, error)
	SaveMessage(ctx context.Context, msg models.ChatMessage) (int64, error)
	MessagesByChannel(ctx context.Context, channelID int64, limit int) ([]models.ChatMessage, error)
}

// Notifier pushes stored messages to the listed recipients.
type Notifier interface {
	ChatMessage(msg models.ChatMessage, recipients []int64)
}

// Service runs the per-team chat that opens once a team confirms.
type Service struct {
	store    Store
	notifier Notifier
	log      *logger.Logger
}

func NewService(st Store, notifier Notifier, log *logger.Logger) *Service {
	return &Service{store: st, notifier: notifier, log: log}
}

type sendMessageRequest struct {
	Content string `json:"content"`
}

// HandleSendMessage stores a message on the team's channel and pushes it to
// the other members. Only members of a confirmed team may post.
func (s *Service) HandleSendMessage(w http.ResponseWriter, r *http.Request) {
	teamID, sender, roster, ok := s.authorizeMember(w, r)
	if !ok {
		return
	}

	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.Content = strings.TrimSpace(req.Content)
	if req.Content == "" {
		respondWithError(w, http.StatusBadRequest, "Message content is required")
		return
	}

	channel, err := s.store.ChannelByTeam(r.Context(), teamID)
	if errors.Is(err, store.ErrNotFound) {
		respondWithError(w, http.StatusConflict, "Team has no chat channel yet")
		return
	}
	if err != nil {
		s.log.Error("channel lookup failed", "team_id", teamID, "error", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to send message")
		return
	}

	msg := models.ChatMessage{
		ChannelID:     channel.ChannelID,
		ParticipantID: sender.ID,
		Username:      sender.Username,
		Content:       req.Content,
	}
	id, err := s.store.SaveMessage(r.Context(), msg)
	if err != nil {
		s.log.Error("save message failed", "channel_id", channel.ChannelID, "error", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to send message")
		return
	}
	msg.ID = id

	recipients := make([]int64, 0, len(roster)-1)
	for _, d := range roster {
		if d.Participant.ID != sender.ID {
			recipients = append(recipients, d.Participant.ExternalID)
		}
	}
	s.notifier.ChatMessage(msg, recipients)

	respondWithJSON(w, http.StatusOK, msg)
}

// HandleListMessages returns the channel's recent history, oldest first.
func (s *Service) HandleListMessages(w http.ResponseWriter, r *http.Request) {
	teamID, _, _, ok := s.authorizeMember(w, r)
	if !ok {
		return
	}

	channel, err := s.store.ChannelByTeam(r.Context(), teamID)
	if errors.Is(err, store.ErrNotFound) {
		respondWithError(w, http.StatusConflict, "Team has no chat channel yet")
		return
	}
	if err != nil {
		s.log.Error("channel lookup failed", "team_id", teamID, "error", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to get messages")
		return
	}

	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			limit = v
		}
	}

	messages, err := s.store.MessagesByChannel(r.Context(), channel.ChannelID, limit)
	if err != nil {
		s.log.Error("message history failed", "channel_id", channel.ChannelID, "error", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to get messages")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"channel_id": channel.ChannelID,
		"messages":   messages,
	})
}

// authorizeMember resolves the route's team, checks it is confirmed and that
// the caller is a member, writing the error response itself on failure.
func (s *Service) authorizeMember(w http.ResponseWriter, r *http.Request) (int64, models.Participant, []models.TeamMemberDetail, bool) {
	fail := func() (int64, models.Participant, []models.TeamMemberDetail, bool) {
		return 0, models.Participant{}, nil, false
	}

	externalID, ok := middleware.ParticipantID(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Invalid token")
		return fail()
	}
	teamID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid team ID")
		return fail()
	}

	sender, err := s.store.ParticipantByExternalID(r.Context(), externalID)
	if errors.Is(err, store.ErrNotFound) {
		respondWithError(w, http.StatusUnauthorized, "Unknown participant")
		return fail()
	}
	if err != nil {
		s.log.Error("participant lookup failed", "external_id", externalID, "error", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to resolve participant")
		return fail()
	}

	team, err := s.store.TeamByID(r.Context(), teamID)
	if errors.Is(err, store.ErrNotFound) {
		respondWithError(w, http.StatusNotFound, "Team not found")
		return fail()
	}
	if err != nil {
		s.log.Error("team lookup failed", "team_id", teamID, "error", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to resolve team")
		return fail()
	}
	if !team.IsConfirmed {
		respondWithError(w, http.StatusConflict, "Team is not confirmed yet")
		return fail()
	}

	roster, err := s.store.TeamRoster(r.Context(), teamID)
	if err != nil {
		s.log.Error("roster lookup failed", "team_id", teamID, "error", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to resolve team")
		return fail()
	}
	member := false
	for _, d := range roster {
		if d.Participant.ID == sender.ID {
			member = true
			break
		}
	}
	if !member {
		respondWithError(w, http.StatusForbidden, fmt.Sprintf("Not a member of team %d", teamID))
		return fail()
	}

	return teamID, sender, roster, true
}

// Helper functions for HTTP responses.
func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Error marshaling JSON: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
