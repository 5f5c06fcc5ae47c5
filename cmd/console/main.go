package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/bryanwahyu/lexscan/internal/application"
	appsubs "github.com/bryanwahyu/lexscan/internal/application/submissions"
	"github.com/bryanwahyu/lexscan/internal/config"
	domain "github.com/bryanwahyu/lexscan/internal/domain/submissions"
	"github.com/bryanwahyu/lexscan/internal/infra/db/memory"
	mysqlp "github.com/bryanwahyu/lexscan/internal/infra/db/mysql"
	"github.com/bryanwahyu/lexscan/internal/infra/db/postgres"
	"github.com/bryanwahyu/lexscan/internal/infra/httpserver"
	minioStore "github.com/bryanwahyu/lexscan/internal/infra/storage"
	"github.com/bryanwahyu/lexscan/internal/infra/uploadclient"
	"github.com/bryanwahyu/lexscan/internal/logger"
	"github.com/bryanwahyu/lexscan/internal/middleware"
)

const memoryHistoryLimit = 500

type migrator interface {
	domain.Repository
	Migrate(ctx context.Context) error
}

func main() {
	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	cfg, err := config.Load(path)
	if err != nil {
		logrus.Fatalf("config load error: %v", err)
	}

	log, err := logger.InitLogger(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		logrus.Fatalf("logger init error: %v", err)
	}

	ctx := context.Background()
	checkers := map[string]middleware.HealthChecker{}
	required := map[string]middleware.HealthChecker{}

	// init history repo
	var repo domain.Repository = memory.NewSubmissionRepository(memoryHistoryLimit)
	if cfg.Database.Driver != "" {
		db, r, err := connectDB(ctx, cfg)
		if err != nil {
			log.Fatalf("%s connect error: %v", cfg.Database.Driver, err)
		}
		defer db.Close()
		if err := r.Migrate(ctx); err != nil {
			log.Fatalf("%s migrate error: %v", cfg.Database.Driver, err)
		}
		repo = r
		dbCheck := &middleware.DatabaseHealthChecker{DB: db}
		checkers["database"] = dbCheck
		required["database"] = dbCheck
	}

	history := &appsubs.Service{Repo: repo, Clock: application.SystemClock{}}

	// init minio
	if cfg.Minio.Enabled {
		store, err := minioStore.New(ctx,
			cfg.Minio.Endpoint,
			cfg.Minio.Region,
			cfg.Minio.BucketName,
			cfg.Minio.AccessKey,
			cfg.Minio.SecretKey,
			cfg.Minio.UseSSL,
		)
		if err != nil {
			log.Fatalf("minio init error: %v", err)
		}
		history.Archive = store
		checkers["archive"] = store
	}

	client := uploadclient.New(cfg.UploadURL(), cfg.Upstream.Timeout,
		uploadclient.WithRateLimit(cfg.Upstream.RPS, cfg.Upstream.Burst),
		uploadclient.WithHealthURL(cfg.HealthURL()),
		uploadclient.WithLogger(log.WithField("component", "uploadclient")),
	)
	checkers["upstream"] = client

	done := make(chan struct{})
	defer close(done)

	// init router
	mux := chi.NewRouter()
	mux.Mount("/", httpserver.NewRouter(httpserver.Options{
		App:               middleware.AppInfo{Name: cfg.App.Name, Version: cfg.App.Version},
		MaxFileSize:       cfg.Upload.MaxFileSize,
		AllowedExtensions: cfg.Upload.AllowedExtensions,
		RateLimit:         cfg.Server.RateLimit,
		Burst:             cfg.Server.Burst,
		AllowedOrigins:    cfg.Server.AllowedOrigins,
		Uploader:          client,
		History:           history,
		Checkers:          checkers,
		Required:          required,
		Clock:             application.SystemClock{},
		Log:               log,
		Done:              done,
	}))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.Upstream.Timeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// run server
	go func() {
		log.WithFields(logrus.Fields{"addr": addr, "upstream": cfg.UploadURL(), "version": cfg.App.Version}).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Info("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		log.Errorf("shutdown error: %v", err)
	}
}

func connectDB(ctx context.Context, cfg *config.Config) (*sql.DB, migrator, error) {
	switch cfg.Database.Driver {
	case "mysql":
		db, err := mysqlp.Connect(ctx, cfg.MySQLDSN(), mysqlp.DefaultPool())
		if err != nil {
			return nil, nil, err
		}
		return db, mysqlp.NewSubmissionRepository(db), nil
	case "postgres":
		db, err := postgres.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			return nil, nil, err
		}
		return db, postgres.NewSubmissionRepository(db), nil
	}
	return nil, nil, fmt.Errorf("unsupported driver %q", cfg.Database.Driver)
}
