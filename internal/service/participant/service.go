package participant

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/nikhil/teammatch/internal/config"
	"github.com/nikhil/teammatch/internal/logger"
	"github.com/nikhil/teammatch/internal/middleware"
	"github.com/nikhil/teammatch/internal/models"
	"github.com/nikhil/teammatch/internal/service/auth"
	"github.com/nikhil/teammatch/internal/store"
)

// Store is the persistence surface the participant service consumes.
type Store interface {
	UpsertParticipant(ctx context.Context, p models.Participant) (models.Participant, error)
	ParticipantByExternalID(ctx context.Context, externalID int64) (models.Participant, error)
	ActiveTeamID(ctx context.Context, participantID int64) (int64, error)
}

// Service handles registration and profile reads.
type Service struct {
	store Store
	cfg   *config.Config
	log   *logger.Logger
}

func NewService(st Store, cfg *config.Config, log *logger.Logger) *Service {
	return &Service{store: st, cfg: cfg, log: log}
}

type registerRequest struct {
	ExternalID int64  `json:"external_id"`
	Username   string `json:"username"`
	Skill      string `json:"skill"`
	Experience string `json:"experience"`
}

// HandleRegister puts the participant into the waiting pool and returns
// their token. Re-registering refreshes skill and experience but keeps the
// original registration time, so queue position is not gamed by
// re-registering. A participant who is currently on a team must resolve it
// first.
func (s *Service) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.ExternalID <= 0 || req.Username == "" {
		respondWithError(w, http.StatusBadRequest, "external_id and username are required")
		return
	}
	if !s.cfg.ValidSkill(req.Skill) {
		respondWithError(w, http.StatusBadRequest, "Unknown skill")
		return
	}
	if !s.cfg.ValidExperience(req.Experience) {
		respondWithError(w, http.StatusBadRequest, "Unknown experience level")
		return
	}

	existing, err := s.store.ParticipantByExternalID(r.Context(), req.ExternalID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		s.log.Error("participant lookup failed", "external_id", req.ExternalID, "error", err)
		respondWithError(w, http.StatusInternalServerError, "Registration failed")
		return
	}
	if err == nil && !existing.IsWaiting {
		if teamID, terr := s.store.ActiveTeamID(r.Context(), existing.ID); terr == nil {
			respondWithJSON(w, http.StatusConflict, map[string]interface{}{
				"error":   "Already on a team",
				"team_id": teamID,
			})
			return
		} else if !errors.Is(terr, store.ErrNotFound) {
			s.log.Error("team lookup failed", "external_id", req.ExternalID, "error", terr)
			respondWithError(w, http.StatusInternalServerError, "Registration failed")
			return
		}
	}

	p, err := s.store.UpsertParticipant(r.Context(), models.Participant{
		ExternalID: req.ExternalID,
		Username:   req.Username,
		Skill:      req.Skill,
		Experience: req.Experience,
	})
	if err != nil {
		s.log.Error("participant upsert failed", "external_id", req.ExternalID, "error", err)
		respondWithError(w, http.StatusInternalServerError, "Registration failed")
		return
	}

	token, err := auth.NewParticipantToken(s.cfg.JWTSecret, p.ExternalID, p.Username)
	if err != nil {
		s.log.Error("mint participant token", "external_id", req.ExternalID, "error", err)
		respondWithError(w, http.StatusInternalServerError, "Registration failed")
		return
	}

	s.log.Info("participant registered", "external_id", p.ExternalID, "skill", p.Skill)
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"participant": p,
		"token":       token,
	})
}

// HandleMe returns the caller's profile and, when they are on a team, its id.
func (s *Service) HandleMe(w http.ResponseWriter, r *http.Request) {
	externalID, ok := middleware.ParticipantID(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Invalid token")
		return
	}

	p, err := s.store.ParticipantByExternalID(r.Context(), externalID)
	if errors.Is(err, store.ErrNotFound) {
		respondWithError(w, http.StatusNotFound, "Participant not found")
		return
	}
	if err != nil {
		s.log.Error("participant lookup failed", "external_id", externalID, "error", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to get profile")
		return
	}

	resp := map[string]interface{}{"participant": p}
	teamID, err := s.store.ActiveTeamID(r.Context(), p.ID)
	switch {
	case err == nil:
		resp["team_id"] = teamID
	case errors.Is(err, store.ErrNotFound):
		// Not on a team.
	default:
		s.log.Error("team lookup failed", "external_id", externalID, "error", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to get profile")
		return
	}

	respondWithJSON(w, http.StatusOK, resp)
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
