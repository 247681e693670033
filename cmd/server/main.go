package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/cors"

	appdownload "vidgrab/internal/application/download"
	"vidgrab/internal/config"
	"vidgrab/internal/infrastructure/filesystem"
	"vidgrab/internal/infrastructure/memstore"
	"vidgrab/internal/infrastructure/redisstore"
	"vidgrab/internal/infrastructure/ytdlp"
	httptransport "vidgrab/internal/transport/http"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	cfg := config.Load()
	logger := log.Default()

	artifacts := filesystem.NewArtifactStore(cfg.DataDir, cfg.PublicBaseURL)
	if err := artifacts.EnsureDirs(); err != nil {
		log.Fatalf("storage init failed: %v", err)
	}
	if err := os.MkdirAll(cfg.WorkDir, 0o755); err != nil {
		log.Fatalf("work dir init failed: %v", err)
	}

	var jobs appdownload.JobStore
	if cfg.RedisAddr != "" {
		store := redisstore.NewJobStore(redisstore.NewClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB))
		if err := store.Ping(context.Background()); err != nil {
			log.Fatalf("redis init failed: %v", err)
		}
		jobs = store
		logger.Printf("job store: redis at %s", cfg.RedisAddr)
	} else {
		jobs = memstore.NewJobStore()
		logger.Printf("job store: in-memory, records are lost on restart")
	}

	extractor := ytdlp.New(cfg.YtDlpPath, cfg.SubtitleLangs, cfg.AudioBitrate)
	service := appdownload.NewService(extractor, jobs, artifacts, cfg.WorkDir, cfg.MaxConcurrent, logger)

	handler := httptransport.NewHandler(service, artifacts)
	router := httptransport.NewRouter(handler)

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
	})

	logger.Printf("Server started on %s", cfg.ServerAddr)
	log.Fatal(http.ListenAndServe(cfg.ServerAddr, c.Handler(router)))
}
