package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/sweetcrust/internal/config"
	"github.com/Skotchmaster/sweetcrust/internal/db"
	"github.com/Skotchmaster/sweetcrust/internal/hash"
	"github.com/Skotchmaster/sweetcrust/internal/httpserver"
	"github.com/Skotchmaster/sweetcrust/internal/mykafka"
	"github.com/Skotchmaster/sweetcrust/internal/repo"
	"github.com/Skotchmaster/sweetcrust/internal/search"
	"github.com/Skotchmaster/sweetcrust/internal/service"
	"github.com/Skotchmaster/sweetcrust/internal/storage"
	"github.com/Skotchmaster/sweetcrust/internal/tokens"
)

const shutdownTimeout = 10 * time.Second

func serve(ctx context.Context) error {
	return withDB(ctx, func(ctx context.Context, cfg *config.Config, l *slog.Logger, gdb *gorm.DB) error {
		if err := db.Migrate(ctx, gdb); err != nil {
			return err
		}
		hasher := hash.Hasher{}
		if cfg.SeedDefaultAccounts {
			if err := db.SeedAccounts(ctx, gdb, hasher, l, db.DefaultAccounts); err != nil {
				return err
			}
		}

		prod := mykafka.NewProducer(cfg.KafkaBrokers)
		defer func() {
			if err := prod.Close(); err != nil {
				l.Error("kafka_close_failed", "error", err)
			}
		}()

		st, err := storage.New(ctx, cfg.Storage)
		if err != nil {
			return err
		}

		r := repo.New(gdb)
		issuer := tokens.NewIssuer(cfg.JWTSecret, cfg.TokenTTL)
		catalog := &service.CatalogService{Repo: r, Events: prod, Images: st}
		if cfg.ESURL != "" {
			ix, err := productIndex(ctx, cfg, l)
			if err != nil {
				l.Warn("search_index_unavailable", "reason", "using database search", "error", err)
			} else {
				catalog.Index = ix
			}
		}

		deps := &httpserver.Deps{
			DB:     gdb,
			Tokens: issuer,
			Auth: &httpserver.AuthHTTP{Svc: &service.AuthService{
				Repo: r, Hasher: hasher, Tokens: issuer, Events: prod,
			}},
			Catalog:       &httpserver.CatalogHTTP{Svc: catalog, Storage: st},
			Orders:        &httpserver.OrderHTTP{Svc: &service.OrderService{Repo: r, Events: prod}},
			Messages:      &httpserver.MessageHTTP{Svc: &service.MessageService{Repo: r, Events: prod}},
			CORSOrigins:   cfg.CORSOrigins,
			AuthRateLimit: cfg.AuthRateLimit,
			AuthRateBurst: cfg.AuthRateBurst,
		}
		if cfg.Storage.Driver == "" || cfg.Storage.Driver == "local" {
			deps.UploadDir = cfg.Storage.UploadDir
			deps.UploadURLPrefix = cfg.Storage.URLPrefix
		}

		srv := &http.Server{
			Addr:         cfg.Addr(),
			Handler:      httpserver.New(l, deps),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		}

		ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			l.Info("http_server_started", "addr", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		l.Info("shutting_down")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			l.Error("http_shutdown_failed", "error", err)
		}
		l.Info("shutdown_complete")
		return nil
	})
}

func productIndex(ctx context.Context, cfg *config.Config, l *slog.Logger) (*search.Index, error) {
	es, err := search.NewClient(cfg.ESURL, cfg.ESUser, cfg.ESPassword, l)
	if err != nil {
		return nil, err
	}
	ix := &search.Index{ES: es, Name: cfg.ESIndex}
	if err := ix.EnsureIndex(ctx); err != nil {
		return nil, err
	}
	return ix, nil
}
