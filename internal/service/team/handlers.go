package team

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"

	"github.com/nikhil/teammatch/internal/middleware"
	"github.com/nikhil/teammatch/internal/models"
	"github.com/nikhil/teammatch/internal/store"
)

type responseRequest struct {
	Accepted bool `json:"accepted"`
}

// HandleSubmitResponse records the calling participant's accept/decline for
// a team.
func (s *Service) HandleSubmitResponse(w http.ResponseWriter, r *http.Request) {
	externalID, ok := middleware.ParticipantID(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Invalid token")
		return
	}

	teamID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid team ID")
		return
	}

	var req responseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	outcome, err := s.SubmitResponse(r.Context(), externalID, teamID, req.Accepted)
	if err != nil {
		s.log.Error("submit response failed", "team_id", teamID, "participant_id", externalID, "error", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to record response")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{"team_id": teamID, "outcome": outcome})
}

// HandleGetTeam returns the team snapshot to its members (or an admin).
func (s *Service) HandleGetTeam(w http.ResponseWriter, r *http.Request) {
	teamID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid team ID")
		return
	}

	info, err := s.TeamInfo(r.Context(), teamID)
	if errors.Is(err, store.ErrNotFound) {
		respondWithError(w, http.StatusNotFound, "Team not found")
		return
	}
	if err != nil {
		s.log.Error("team lookup failed", "team_id", teamID, "error", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to get team")
		return
	}

	if !callerMayViewTeam(r, info.Members) {
		respondWithError(w, http.StatusForbidden, "You don't have access to this team")
		return
	}

	respondWithJSON(w, http.StatusOK, info)
}

// HandleAdminRunMatch triggers an allocation pass outside the schedule.
func (s *Service) HandleAdminRunMatch(w http.ResponseWriter, r *http.Request) {
	created, err := s.RunAllocationPass(r.Context())
	if err != nil {
		s.log.Error("manual allocation pass failed", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Allocation pass failed")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"created": len(created),
		"teams":   created,
	})
}

// HandleAdminWaiting lists the current waiting pool.
func (s *Service) HandleAdminWaiting(w http.ResponseWriter, r *http.Request) {
	waiting, err := s.store.WaitingParticipants(r.Context())
	if err != nil {
		s.log.Error("waiting pool lookup failed", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to get waiting pool")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"count":        len(waiting),
		"participants": waiting,
	})
}

// callerMayViewTeam allows team members and admins.
func callerMayViewTeam(r *http.Request, members []models.MemberInfo) bool {
	claims, ok := r.Context().Value(middleware.UserContextKey).(jwt.MapClaims)
	if !ok {
		return false
	}
	if claims["role"] == "admin" {
		return true
	}
	externalID, ok := middleware.ParticipantID(r.Context())
	if !ok {
		return false
	}
	for _, m := range members {
		if m.ExternalID == externalID {
			return true
		}
	}
	return false
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
