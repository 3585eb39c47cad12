package routes

import (
	"github.com/gorilla/mux"

	"github.com/nikhil/teammatch/internal/config"
	"github.com/nikhil/teammatch/internal/logger"
	"github.com/nikhil/teammatch/internal/middleware"
	"github.com/nikhil/teammatch/internal/models"
	"github.com/nikhil/teammatch/internal/service/auth"
	"github.com/nikhil/teammatch/internal/service/chat"
	"github.com/nikhil/teammatch/internal/service/participant"
	"github.com/nikhil/teammatch/internal/service/team"
)

// Deps carries everything the route modules need.
type Deps struct {
	Cfg *config.Config
	Log *logger.Logger
	Hub *models.Hub

	Auth         *auth.Service
	Participants *participant.Service
	Teams        *team.Service
	Chat         *chat.Service
}

// List of all API route registration functions
var apiModules = []func(*mux.Router, *Deps){
	registerAuthRoutes,
	registerParticipantRoutes,
	registerTeamRoutes,
	registerAdminRoutes,
}

// Register wires all routes onto a fresh router.
func Register(d *Deps) *mux.Router {
	router := mux.NewRouter()

	api := router.PathPrefix("/api").Subrouter()
	api.Use(middleware.ResponseWrapper)
	for _, register := range apiModules {
		register(api, d)
	}

	registerWebSocketRoutes(router, d)

	return router
}
