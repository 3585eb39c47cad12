package routes

import (
	"github.com/gorilla/mux"
)

func registerAuthRoutes(router *mux.Router, d *Deps) {
	router.HandleFunc("/auth/login", d.Auth.HandleLogin).Methods("POST", "OPTIONS")
}
