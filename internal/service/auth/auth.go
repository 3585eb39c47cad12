package auth

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/nikhil/teammatch/internal/config"
	"github.com/nikhil/teammatch/internal/logger"
	"github.com/nikhil/teammatch/pkg/utils"
)

const tokenTTL = 72 * time.Hour

// NewParticipantToken mints the token handed out on registration. The
// participant is identified by external id in every later request.
func NewParticipantToken(secret string, externalID int64, username string) (string, error) {
	claims := jwt.MapClaims{
		"participant_id": externalID,
		"username":       username,
		"role":           "participant",
		"exp":            time.Now().Add(tokenTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// NewAdminToken mints a token carrying the admin role.
func NewAdminToken(secret, username string) (string, error) {
	claims := jwt.MapClaims{
		"username": username,
		"role":     "admin",
		"exp":      time.Now().Add(tokenTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// Service handles admin authentication. Participants never log in with a
// password; they get their token at registration.
type Service struct {
	cfg *config.Config
	log *logger.Logger
}

func NewService(cfg *config.Config, log *logger.Logger) *Service {
	return &Service{cfg: cfg, log: log}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// HandleLogin authenticates the operator account configured in the
// environment and returns an admin token.
func (s *Service) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if s.cfg.AdminUsername == "" || s.cfg.AdminPasswordHash == "" {
		respondWithError(w, http.StatusForbidden, "Admin login is not configured")
		return
	}
	if req.Username != s.cfg.AdminUsername || !utils.CheckPassword(req.Password, s.cfg.AdminPasswordHash) {
		s.log.Warn("failed admin login", "username", req.Username)
		respondWithError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := NewAdminToken(s.cfg.JWTSecret, req.Username)
	if err != nil {
		s.log.Error("mint admin token", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to create token")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"token": token})
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
