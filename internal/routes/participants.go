package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/nikhil/teammatch/internal/middleware"
)

func registerParticipantRoutes(router *mux.Router, d *Deps) {
	authed := middleware.Auth(d.Cfg.JWTSecret)

	// Registration is the entry point; it hands out the token.
	router.HandleFunc("/participants/register", d.Participants.HandleRegister).Methods("POST", "OPTIONS")
	router.Handle("/participants/me", authed(http.HandlerFunc(d.Participants.HandleMe))).Methods("GET", "OPTIONS")
}
