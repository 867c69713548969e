package main

import (
	"accordee/internal/auth"
	"accordee/internal/config"
	"accordee/internal/database"
	"accordee/internal/dnscheck"
	"accordee/internal/eventbus"
	"accordee/internal/httphandlers"
	"accordee/internal/integrations/npm"
	"accordee/internal/manager"
	"accordee/internal/service"
	"accordee/internal/storage"
	"accordee/logger"
	"context"
	"errors"
	"fmt"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"
)

func main() {
	cfg, err := config.New()
	if err != nil {
		log.Fatal(err)
	}

	if err := logger.InitLogger(cfg.LogMode); err != nil {
		fmt.Printf("Error initializing logger: %v\n", err)
		return
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv, recheck, teardown, err := setup(cfg)
	if err != nil {
		logger.Error("setup failed", zap.Error(err))
		return
	}
	defer func() {
		if err := teardown(); err != nil {
			logger.Error("teardown failed", zap.Error(err))
		}
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("serving http(s)", zap.String("addr", cfg.HTTPAddr), zap.Bool("tls", cfg.HasTLSConfig()))
		var err error
		if cfg.HasTLSConfig() {
			err = srv.ListenAndServeTLS(cfg.ServerSSLCertFile, cfg.ServerSSLKeyFile)
		} else {
			err = srv.ListenAndServe()
		}
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})

	if recheck != nil {
		g.Go(func() error {
			return recheck.Start(gctx)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if recheck != nil {
			if err := recheck.Shutdown(); err != nil {
				logger.Warn("recheck shutdown failed", zap.Error(err))
			}
		}
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server closed", zap.Error(err))
	}
}

func setup(cfg config.Config) (*http.Server, service.RecheckService, func() error, error) {
	db, err := database.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, nil, nil, err
	}

	var store storage.Storage
	if cfg.HasStorage() {
		store, err = storage.NewObjectStorage(cfg.Storage)
		if err != nil {
			return nil, nil, nil, err
		}
	} else {
		logger.Warn("object storage not configured, media uploads are disabled")
	}

	eventBus := eventbus.New()
	tokens := auth.NewTokenIssuer(cfg.JWT.Secret, cfg.JWT.TTL)
	resolver, err := dnscheck.NewResolver(cfg.DNS.Nameservers, cfg.DNS.Timeout)
	if err != nil {
		return nil, nil, nil, err
	}
	checker := dnscheck.NewChecker(resolver, cfg.DNS.Timeout)
	provisioner := npm.NewProvisioner(cfg.Proxy)

	userRepo := database.NewUserRepository(db)
	dashboardRepo := database.NewDashboardRepository(db)
	mediaRepo := database.NewMediaRepository(db)

	userService := service.NewUserService(userRepo, dashboardRepo, tokens)
	dashboardService := service.NewDashboardService(dashboardRepo, userRepo, cfg.MaxDashboardsPerUser, cfg.MaxSectionsPerDashboard)
	verificationService := service.NewVerificationService(dashboardRepo, checker, provisioner, eventBus)
	mediaService := service.NewMediaService(mediaRepo, store)

	var recheck service.RecheckService
	if cfg.RecheckInterval > 0 || cfg.RecheckSchedule != "" {
		recheck, err = service.NewRecheckService(verificationService, cfg.RecheckInterval, cfg.RecheckSchedule)
		if err != nil {
			return nil, nil, nil, err
		}
	}

	mn := manager.New(userService, dashboardService, verificationService, mediaService, eventBus, store)
	routes := httphandlers.Routes(httphandlers.NewApiHandler(mn))

	return &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           routes,
			ReadHeaderTimeout: 10 * time.Second,
		}, recheck, func() error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			err = sqlDB.Close()
			logger.Info("DB Closed", zap.Error(err))
			return err
		}, nil
}
