package main

import (
	"context"
	"crypto/rand"
	"log"

	"github.com/mrimoveis/brokersite/internal/auth"
	anthropicchat "github.com/mrimoveis/brokersite/internal/chat/anthropic"
	"github.com/mrimoveis/brokersite/internal/config"
	"github.com/mrimoveis/brokersite/internal/db"
	"github.com/mrimoveis/brokersite/internal/logging"
	"github.com/mrimoveis/brokersite/internal/photostore/local"
	"github.com/mrimoveis/brokersite/internal/service"
	"github.com/mrimoveis/brokersite/internal/store"
	"github.com/mrimoveis/brokersite/internal/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, cleanup, err := logging.New(cfg.LogLevel, cfg.LogFormat, cfg.LogFile)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer cleanup()

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		return
	}
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	listingStore := store.NewListingStore(database)
	categoryStore := store.NewCategoryStore(database)
	settingsStore := store.NewSettingsStore(database)

	if err := categoryStore.SeedDefaults(context.Background()); err != nil {
		logger.Error("failed to seed categories", "error", err)
		return
	}

	secret := []byte(cfg.SessionSecret)
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			logger.Error("failed to generate session secret", "error", err)
			return
		}
		logger.Warn("SESSION_SECRET not set; admin sessions will not survive a restart")
	}
	authMgr := auth.NewManager(settingsStore, cfg.InstallKey, secret, auth.DefaultSessionTTL)

	photoStg, err := local.NewLocalPhotoStore(cfg.PhotoPath)
	if err != nil {
		logger.Error("failed to initialize photo store", "error", err)
		return
	}

	if cfg.AnthropicKey == "" {
		logger.Warn("ANTHROPIC_API_KEY not set; the assistant will ask for credential setup")
	}
	assistant := anthropicchat.New(cfg.AnthropicKey, cfg.AnthropicModel)

	catalog := service.NewCatalogService(listingStore, categoryStore, settingsStore)
	admin := service.NewAdminService(listingStore, categoryStore, settingsStore, photoStg, logger)
	server := web.NewServer(catalog, admin, authMgr, assistant, photoStg, logger)

	if err := server.ListenAndServe(cfg.ListenAddr); err != nil {
		logger.Error("server error", "error", err)
	}
}
