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

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"rideshare_go/internal/config"
	"rideshare_go/internal/httpserver"
	"rideshare_go/internal/logging"
	"rideshare_go/internal/presence"
	"rideshare_go/internal/security"
	"rideshare_go/internal/store"
	"rideshare_go/internal/ws"
)

// @title           Rideshare Go API
// @version         1.0
// @description     Presence and messaging backend for the ride-matching marketplace.

// @host            localhost:3000
// @BasePath        /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	if err := run(); err != nil {
		logging.New("info", "text").WithError(err).Error("server stopped with error")
		os.Exit(1)
	}
}

func run() error {
	configPath := pflag.String("config", "", "path to a YAML config file")
	storeDriver := pflag.String("store", "", "store driver override: sqlite or postgres")
	addr := pflag.String("addr", "", "listen address override, host:port")
	pflag.Parse()

	var opts []config.Option
	if *storeDriver != "" {
		opts = append(opts, config.WithStoreDriver(*storeDriver))
	}
	cfg, err := config.Load(*configPath, opts...)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logging.New(cfg.LogLevel, cfg.LogFormat)

	repos, err := store.Open(cfg.StoreDriver, cfg.DSN())
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer repos.Close()

	// Security components
	tokenSvc := security.NewTokenService(cfg.JWTSecret, cfg.AccessTokenTTL())
	passwordHasher := security.NewPasswordHasher(cfg.BcryptCost)
	encryptor, err := security.NewEncryptor([]byte(cfg.EncryptKey), cfg.LegacyEncryptKeys)
	if err != nil {
		return fmt.Errorf("initialize encryptor: %w", err)
	}

	hub := ws.NewHub(presence.NewRegistry(), log)
	limiter := httpserver.NewLimiterStore(cfg.AuthRatePerMinute, cfg.AuthRateBurst)

	router := httpserver.NewRouter(httpserver.Deps{
		Config:    cfg,
		Log:       log,
		Repos:     repos,
		Hub:       hub,
		Tokens:    tokenSvc,
		Hasher:    passwordHasher,
		Encryptor: encryptor,
		Limiter:   limiter,
	})

	listen := cfg.HTTPAddr()
	if *addr != "" {
		listen = *addr
	}
	srv := &http.Server{
		Addr:              listen,
		Handler:           router,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.WithFields(logrus.Fields{"addr": listen, "store": cfg.StoreDriver}).Info("starting rideshare server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		limiter.Run(gctx, time.Minute)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		hub.Close()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
