package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-feedback/internal/documents"
	"resume-feedback/internal/feedback"
	"resume-feedback/internal/rasterize"
	"resume-feedback/internal/shared/config"
	"resume-feedback/internal/shared/server"
	"resume-feedback/internal/shared/storage/db"
	"resume-feedback/internal/shared/storage/object"
	localstore "resume-feedback/internal/shared/storage/object/local"
	s3store "resume-feedback/internal/shared/storage/object/s3"
	"resume-feedback/internal/shared/telemetry"
	"resume-feedback/internal/uploads"
)

// App holds shared dependencies and the wired router.
type App struct {
	Config           config.Config
	Router           *gin.Engine
	DB               *sql.DB
	Store            object.ObjectStore
	Rasterizer       *rasterize.Rasterizer
	DocumentsRepo    documents.DocumentsRepo
	FeedbackRepo     feedback.Repo
	DocumentsService *documents.Service
	FeedbackService  *feedback.Service
	DocumentsHandler *documents.Handler
	FeedbackHandler  *feedback.Handler
	RasterizeHandler *rasterize.Handler
	UploadsHandler   *uploads.Handler
}

// Build prepares dependencies and wires routes.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	if strings.TrimSpace(cfg.RenderEngine) == "" {
		cfg.RenderEngine = rasterize.EnginePDFium
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config:     cfg,
		DB:         sqlDB,
		Store:      store,
		Rasterizer: buildRasterizer(cfg),
	}
	buildServices(app)

	if cfg.ObjectStoreType == "s3" {
		app.UploadsHandler, err = uploads.NewHandlerFromConfig(ctx, cfg)
		if err != nil {
			return nil, err
		}
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:           app.Config,
		DocumentHandler:  app.DocumentsHandler,
		FeedbackHandler:  app.FeedbackHandler,
		RasterizeHandler: app.RasterizeHandler,
		UploadsHandler:   app.UploadsHandler,
		Rasterizer:       app.Rasterizer,
	})

	return app, nil
}

// Close releases the rendering engine and the database pool.
func (a *App) Close() error {
	var firstErr error
	if a.Rasterizer != nil {
		if err := a.Rasterizer.Close(); err != nil {
			firstErr = err
		}
	}
	if a.DB != nil {
		if err := a.DB.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			telemetry.Info("bootstrap.memory_repos", map[string]any{"reason": "DATABASE_URL empty"})
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err == nil {
		err = db.RunMigrations(ctx, sqlDB)
	}
	if err != nil {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.memory_repos", map[string]any{"reason": "database unavailable", "error": err})
			if sqlDB != nil {
				sqlDB.Close()
			}
			return nil, nil
		}
		return nil, err
	}

	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("OBJECT_STORE=s3 requires S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildRasterizer(cfg config.Config) *rasterize.Rasterizer {
	r := rasterize.New(cfg.RenderEngine, rasterize.Options{
		Workers:       cfg.RenderWorkers,
		WorkerTimeout: cfg.RenderWorkerTimeout,
	})
	if err := r.Available(); err != nil {
		telemetry.Warn("bootstrap.renderer_unavailable", map[string]any{
			"engine":  cfg.RenderEngine,
			"engines": rasterize.Engines(),
			"error":   err,
		})
	}
	return r
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}

func buildServices(app *App) {
	if app.DB != nil {
		app.DocumentsRepo = &documents.PGRepo{DB: app.DB}
		app.FeedbackRepo = &feedback.PGRepo{DB: app.DB}
	} else {
		app.DocumentsRepo = documents.NewMemoryRepo()
		app.FeedbackRepo = feedback.NewMemoryRepo()
	}

	app.DocumentsService = &documents.Service{
		Store:           app.Store,
		Repo:            app.DocumentsRepo,
		StorageProvider: app.Config.ObjectStoreType,
		Rasterizer:      app.Rasterizer,
	}
	app.FeedbackService = feedback.NewService(app.FeedbackRepo)

	app.DocumentsHandler = documents.NewHandler(app.DocumentsService)
	if app.Config.MaxUploadBytes > 0 {
		app.DocumentsHandler.MaxUploadBytes = app.Config.MaxUploadBytes
	}
	app.FeedbackHandler = feedback.NewHandler(app.FeedbackService)
	app.RasterizeHandler = rasterize.NewHandler(app.Rasterizer, app.Config.MaxUploadBytes)
}
