package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"flashdeck/internal/api"
	"flashdeck/internal/config"
	"flashdeck/internal/db"
	"flashdeck/internal/services"
	"flashdeck/internal/store"
)

func main() {
	cfg := config.Load()

	conn, err := db.Open(cfg.Database)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer conn.Close()

	st := store.NewSQLite(conn)
	deckService := services.NewDeckService(st)
	settingsService := services.NewSettingsService(st)
	statsService := services.NewStatsService(st)
	transferService := services.NewTransferService(st)

	if err := services.EnsureDefaultData(context.Background(), deckService); err != nil {
		log.Fatalf("seed default data: %v", err)
	}

	server := api.NewServer(deckService, settingsService, statsService, transferService, st)
	mux := http.NewServeMux()

	if info, err := os.Stat(cfg.StaticDir); err == nil && info.IsDir() {
		staticFS := http.FileServer(http.Dir(cfg.StaticDir))
		mux.Handle("/", staticFS)
	}

	mux.Handle("/api", server.Handler())
	mux.Handle("/api/", server.Handler())

	log.Printf("listening on :%s", cfg.Port)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server failed: %v", err)
	}
}
