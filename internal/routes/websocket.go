package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/nikhil/teammatch/internal/handlers"
	"github.com/nikhil/teammatch/internal/middleware"
)

func registerWebSocketRoutes(router *mux.Router, d *Deps) {
	wsHandler := handlers.NewWebSocketHandler(d.Hub, d.Log)

	// WebSocket endpoint with authentication via query parameter
	router.Handle("/ws", middleware.WebSocketAuth(d.Cfg.JWTSecret)(http.HandlerFunc(wsHandler.HandleWebSocket))).Methods("GET", "OPTIONS")
}
