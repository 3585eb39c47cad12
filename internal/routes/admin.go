package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/nikhil/teammatch/internal/middleware"
)

func registerAdminRoutes(router *mux.Router, d *Deps) {
	authed := middleware.Auth(d.Cfg.JWTSecret)
	admin := func(h http.HandlerFunc) http.Handler {
		return authed(middleware.AdminOnly(h))
	}

	router.Handle("/admin/match", admin(d.Teams.HandleAdminRunMatch)).Methods("POST", "OPTIONS")
	router.Handle("/admin/waiting", admin(d.Teams.HandleAdminWaiting)).Methods("GET", "OPTIONS")
}
