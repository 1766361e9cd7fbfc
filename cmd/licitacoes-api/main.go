package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nurpe/licitacoes-api/internal/config"
	"github.com/nurpe/licitacoes-api/internal/excel"
	httphandler "github.com/nurpe/licitacoes-api/internal/http"
	"github.com/nurpe/licitacoes-api/internal/logger"
	"github.com/nurpe/licitacoes-api/internal/pdf"
	"github.com/nurpe/licitacoes-api/internal/repository"
	"github.com/nurpe/licitacoes-api/internal/service"
	"github.com/nurpe/licitacoes-api/internal/upstream"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment, cfg.LogLevel)

	records := repository.NewMockRepository(time.Now())
	log.Info().Int("records", records.Count()).Msg("mock dataset loaded")

	client := upstream.NewClient(upstream.Options{
		Timeout:   cfg.Upstream.Timeout,
		RateRPS:   cfg.Upstream.RateRPS,
		RateBurst: cfg.Upstream.RateBurst,
		UserAgent: cfg.Upstream.UserAgent,
	}, log)
	if cfg.Transparencia.APIKey == "" {
		log.Warn().Msg("TRANSPARENCIA_API_KEY is empty; Portal da Transparência may reject requests")
	}

	licitacaoService := service.NewLicitacaoService(service.Dependencies{
		Records:       records,
		PNCP:          upstream.NewPNCPClient(client, cfg.PNCP.BaseURL),
		Transparencia: upstream.NewTransparenciaClient(client, cfg.Transparencia.BaseURL, cfg.Transparencia.APIKey),
		Excel:         excel.NewGenerator(),
		PDF:           pdf.NewGenerator(),
	}, log)

	handler := httphandler.NewHandler(licitacaoService, log)
	router := httphandler.NewRouter(handler, log, cfg.Environment, cfg.HTTP.AllowedOrigins)

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", server.Addr).Msg("starting licitacoes api")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("server stopped")
			os.Exit(1)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
		os.Exit(1)
	}
	log.Info().Msg("server stopped")
}
