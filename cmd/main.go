package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/nikhil/teammatch/internal/config"
	"github.com/nikhil/teammatch/internal/database"
	"github.com/nikhil/teammatch/internal/logger"
	"github.com/nikhil/teammatch/internal/models"
	"github.com/nikhil/teammatch/internal/notify"
	"github.com/nikhil/teammatch/internal/routes"
	"github.com/nikhil/teammatch/internal/scheduler"
	"github.com/nikhil/teammatch/internal/service/auth"
	"github.com/nikhil/teammatch/internal/service/chat"
	"github.com/nikhil/teammatch/internal/service/participant"
	"github.com/nikhil/teammatch/internal/service/team"
	"github.com/nikhil/teammatch/internal/store"
)

func main() {
	log := logger.NewLogger("teammatch")
	defer log.Sync()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("invalid configuration", "error", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatal("database connection failed", "error", err)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := database.EnsureSchema(ctx, db); err != nil {
		log.Fatal("schema setup failed", "error", err)
	}

	st := store.New(db)

	hub := models.NewHub()
	go hub.Run()
	notifier := notify.New(hub, log)

	teamSvc := team.NewService(st, notifier, cfg, log)
	participantSvc := participant.NewService(st, cfg, log)
	chatSvc := chat.NewService(st, notifier, log)
	authSvc := auth.NewService(cfg, log)

	sched := scheduler.New(teamSvc, cfg.MatchInterval, log)
	go sched.Start(ctx)

	router := routes.Register(&routes.Deps{
		Cfg:          cfg,
		Log:          log,
		Hub:          hub,
		Auth:         authSvc,
		Participants: participantSvc,
		Teams:        teamSvc,
		Chat:         chatSvc,
	})

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}
	go func() {
		<-ctx.Done()
		srv.Shutdown(context.Background())
	}()

	log.Info("server listening", "addr", cfg.HTTPAddr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("server exited", "error", err)
	}
}
