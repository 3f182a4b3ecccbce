// @title                       Network Device Inventory REST API
// @version                     1.0.0
// @description                 CRUD and reachability status for network devices. Mutating routes require the X-API-KEY header when an API key is configured.
// @BasePath                    /
// @securityDefinitions.apikey  ApiKeyAuth
// @in                          header
// @name                        X-API-KEY
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"device-inventory-backend/config"
	"device-inventory-backend/internal/api"
	"device-inventory-backend/internal/db"
	"device-inventory-backend/internal/logger"
	"device-inventory-backend/internal/probe"
	"device-inventory-backend/internal/store"
)

func main() {
	// Load configuration. The YAML file is optional; environment
	// variables and .env always apply.
	configPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}

	zl, err := logger.New(cfg.Log.Level, cfg.Log.Format, api.ServiceName)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	zl.Info("configuration loaded",
		zap.String("config_path", configPath),
		zap.String("store_driver", cfg.Store.Driver),
		zap.Bool("auth_enabled", cfg.Server.AuthEnabled()),
		zap.Bool("ping_enabled", cfg.Probe.Enabled),
	)
	if !cfg.Server.AuthEnabled() {
		zl.Warn("API_KEY is not set; mutating routes are open")
	}

	appStore, err := openStore(cfg, zl)
	if err != nil {
		zl.Fatal("failed to initialize store", zap.Error(err))
	}
	zl.Info("data store initialized")

	var prober probe.Prober = probe.Disabled{}
	if cfg.Probe.Enabled {
		prober = probe.NewICMPProber(cfg.Probe.Timeout, zl.Named("probe"))
	}

	router := api.NewRouter(appStore, prober, zl, cfg)
	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start the server in a goroutine
	go func() {
		zl.Info("HTTP server starting", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("HTTP server ListenAndServe", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	zl.Info("shutdown signal received, stopping services")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zl.Error("HTTP server Shutdown", zap.Error(err))
	}
	if err := appStore.Close(shutdownCtx); err != nil {
		zl.Warn("closing store", zap.Error(err))
	}

	zl.Info("server gracefully stopped")
}

// openStore connects the backend chosen by STORE_DRIVER. Index creation
// problems are logged and never stop startup.
func openStore(cfg *config.Config, zl *zap.Logger) (store.Store, error) {
	if cfg.Store.Driver != config.DriverMongo {
		gormDB, err := db.Init(cfg.Store.Driver, &cfg.Database, zl)
		if err != nil {
			return nil, err
		}
		return store.NewGormStore(gormDB), nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	mongoCfg := cfg.Mongo
	if mongoCfg.URI == "" {
		zl.Warn("MONGODB_URI is empty; using the default address and skipping the health connectivity check",
			zap.String("uri", config.DefaultMongoURI))
		mongoCfg.URI = config.DefaultMongoURI
	}

	client, err := db.ConnectMongo(ctx, &mongoCfg)
	if err != nil {
		return nil, err
	}

	ms := store.NewMongoStore(client.Database(cfg.Mongo.Database), cfg.Mongo.DevicesCollection, cfg.Mongo.LogsCollection)
	if err := ms.EnsureIndexes(ctx); err != nil {
		zl.Warn("index creation failed; continuing", zap.Error(err))
	}
	return ms, nil
}
