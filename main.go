package main

import (
	"os"
	"time"

	"medbox-server/confs"
	"medbox-server/server"
	"medbox-server/storage"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	cfg, err := confs.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error loading config")
	}

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	store, err := storage.Open(cfg.DataDir, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open device stores")
	}

	srv := server.NewServer(store, log)
	if err := srv.Start(cfg.Listen); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
