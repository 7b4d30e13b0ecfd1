package main

import (
	"log"
	"net/http"

	"coedit/config"
	"coedit/config/database"
	"coedit/internal/chat"
	"coedit/internal/document"
	"coedit/internal/gateway"
	"coedit/internal/session"
	"coedit/pkg/logger"
	"coedit/router"
	"coedit/socket"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables from OS")
	}
	logger.Init()
	defer logger.Log.Sync()

	cfg := config.Load()

	// Chat history survives restarts; documents do not.
	var snapshots chat.SnapshotStore
	if cfg.DatabaseURL != "" {
		db, err := database.Connect(cfg.DatabaseURL)
		if err != nil {
			logger.Sugar.Fatalf("Chat database unavailable: %v", err)
		}
		defer db.Close()
		snapshots = chat.NewPGStore(db)
	} else {
		snapshots = chat.NewFileStore(cfg.ChatFile)
	}
	chatLog := chat.NewLog(snapshots)

	store := document.NewStore()
	sequencer := document.NewSequencer(store)
	sessions := session.NewRegistry()

	hub := socket.NewHub()
	gw := gateway.New(store, sequencer, sessions, chatLog, hub, cfg.ChatClearCommand)
	hub.Bind(gw)
	go hub.Run()

	logger.Sugar.Infof("Listening on :%s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, router.Setup(store, hub, cfg.JWTSecret)); err != nil {
		logger.Sugar.Fatalf("Server stopped: %v", err)
	}
}
