package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/nikhil/teammatch/internal/middleware"
)

func registerTeamRoutes(router *mux.Router, d *Deps) {
	authed := middleware.Auth(d.Cfg.JWTSecret)

	router.Handle("/teams/{id}", authed(http.HandlerFunc(d.Teams.HandleGetTeam))).Methods("GET", "OPTIONS")
	router.Handle("/teams/{id}/response", authed(http.HandlerFunc(d.Teams.HandleSubmitResponse))).Methods("POST", "OPTIONS")

	// Team chat, available once the team is confirmed.
	router.Handle("/teams/{id}/messages", authed(http.HandlerFunc(d.Chat.HandleSendMessage))).Methods("POST", "OPTIONS")
	router.Handle("/teams/{id}/messages", authed(http.HandlerFunc(d.Chat.HandleListMessages))).Methods("GET", "OPTIONS")
}
