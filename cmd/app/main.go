package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"orderflow/api"
	"orderflow/cmd"
	httpin "orderflow/internal/adapters/in/http"
	"orderflow/internal/adapters/out/postgres/customerrepo"
	"orderflow/internal/adapters/out/postgres/orderrepo"
	"orderflow/internal/pkg/logging"
	"orderflow/internal/pkg/metrics"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"
	postgresdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	configs, err := cmd.LoadConfig(".env")
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}

	logger, logCloser := logging.New(logging.Options{
		Level:      configs.LogLevel,
		File:       configs.LogFile,
		MaxSizeMB:  configs.LogMaxSizeMB,
		MaxBackups: configs.LogMaxBackups,
		MaxAgeDays: configs.LogMaxAgeDays,
		Compress:   true,
	})
	defer logCloser.Close()
	slog.SetDefault(logger)

	metrics.Register()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	createDbIfNotExists(configs)
	gormDb := mustGormOpen(configs.DSN())
	mustAutoMigrate(gormDb)

	app, err := cmd.NewCompositionRoot(ctx, configs, gormDb, logger)
	if err != nil {
		log.Fatalf("Error building application: %v", err)
	}

	server, err := app.CreateServer(ctx)
	if err != nil {
		log.Fatalf("Error building HTTP server: %v", err)
	}

	if err = api.RegisterSwagger(ctx); err != nil {
		log.Fatalf("Error loading API contract: %v", err)
	}

	jobManager := app.CreateJobManager()
	if err = jobManager.StartAll(); err != nil {
		log.Fatalf("Error starting jobs: %v", err)
	}

	e := newEcho(server, logger)
	go func() {
		logger.Info("HTTP server listening", "addr", configs.Addr())
		if err := e.Start(configs.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	jobManager.StopAll()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), configs.HTTPShutdownTimeout)
	defer cancel()
	if err = e.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", "error", err)
	}
	if err = app.Close(shutdownCtx); err != nil {
		logger.Error("Closing integrations failed", "error", err)
	}
	if sqlDB, err := gormDb.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func newEcho(server *httpin.Server, logger *slog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	httpin.Register(e, server, logger)

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "Healthy")
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

func createDbIfNotExists(configs cmd.Config) {
	dsn := strings.Replace(configs.DSN(), "dbname="+configs.DBName, "dbname=postgres", 1)
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatalf("Error connecting to postgres: %v", err)
	}
	defer db.Close()

	var exists bool
	err = db.QueryRow(`SELECT EXISTS (SELECT 1 FROM pg_database WHERE datname = $1)`, configs.DBName).Scan(&exists)
	if err != nil {
		log.Fatalf("Error checking database: %v", err)
	}
	if exists {
		return
	}

	if _, err = db.Exec(fmt.Sprintf(`CREATE DATABASE "%s"`, strings.ReplaceAll(configs.DBName, `"`, `""`))); err != nil {
		log.Fatalf("Error creating database: %v", err)
	}
}

func mustGormOpen(dsn string) *gorm.DB {
	gormDb, err := gorm.Open(postgresdriver.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("Error connecting to database: %v", err)
	}
	return gormDb
}

func mustAutoMigrate(db *gorm.DB) {
	if err := db.AutoMigrate(&customerrepo.CustomerDTO{}, &orderrepo.OrderDTO{}); err != nil {
		log.Fatalf("Error running migrations: %v", err)
	}
}
