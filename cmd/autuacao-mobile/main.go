package main

import (
	"fmt"
	"os"

	"autuacao-mobile/internal/attachment"
	"autuacao-mobile/internal/auth"
	"autuacao-mobile/internal/config"
	httphandler "autuacao-mobile/internal/http"
	"autuacao-mobile/internal/http/middleware"
	"autuacao-mobile/internal/logger"
	"autuacao-mobile/internal/semob"
	"autuacao-mobile/internal/service"
	"autuacao-mobile/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment)

	database, err := store.Open(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open draft store")
	}

	previews, err := attachment.NewFilePreviewStore(cfg.Form.PreviewDir)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to prepare preview dir")
	}

	draftRepo := store.NewDraftRepository(database)
	identityRepo := store.NewIdentityRepository(database)

	client := semob.NewClient(cfg.Semob, log)
	tokens := auth.NewTokens(cfg.Auth.AccessSecret, cfg.Auth.SessionTTL)

	authService := service.NewAuthService(client, identityRepo, tokens, log)
	autoService := service.NewAutoService(draftRepo, client, log)
	formService := service.NewFormService(client, previews, cfg.Form.MaxAttachments, autoService, log)

	handler := httphandler.NewHandler(authService, autoService, formService, log)
	router := httphandler.NewRouter(handler, middleware.Auth(tokens), cfg.Environment)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	log.Info().Str("addr", addr).Msg("starting autuacao mobile backend")

	if err := router.Run(addr); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
