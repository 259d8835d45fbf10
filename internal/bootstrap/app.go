package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"studymate-backend/internal/appstate"
	"studymate-backend/internal/documents"
	"studymate-backend/internal/services/health"
	"studymate-backend/internal/shared/config"
	"studymate-backend/internal/shared/server"
	"studymate-backend/internal/shared/server/middleware"
	"studymate-backend/internal/shared/storage/db"
	"studymate-backend/internal/shared/storage/object"
	localstore "studymate-backend/internal/shared/storage/object/local"
	s3store "studymate-backend/internal/shared/storage/object/s3"
	"studymate-backend/internal/shared/telemetry"
	"studymate-backend/internal/subjects"
	"studymate-backend/internal/summarize"
	"studymate-backend/internal/uploads"
)

// App holds shared dependencies for the API server and the CLI.
type App struct {
	Config           config.Config
	Router           *gin.Engine
	DB               *sql.DB
	Store            object.ObjectStore
	Summarizer       *summarize.Client
	SubjectsRepo     subjects.Repo
	DocumentsRepo    documents.DocumentsRepo
	SubjectsService  *subjects.Service
	DocumentsService *documents.Service
	SubjectHandler   *subjects.Handler
	DocumentHandler  *documents.Handler
	ContentHandler   *appstate.ContentHandler
	UploadHandler    *uploads.Handler

	sharedDB bool
}

// Options tune Build for the process that calls it.
type Options struct {
	// DBProfile picks the pool defaults; empty means db.ProfileServer.
	DBProfile db.Profile
	// Migrate applies pending migrations after connecting.
	Migrate bool
	// Shared reuses the process-wide pool instead of opening a new one.
	Shared bool
}

// Build prepares shared dependencies and the router.
func Build(ctx context.Context, cfg config.Config, opts Options) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	if opts.DBProfile == "" {
		opts.DBProfile = db.ProfileServer
	}

	sqlDB, err := buildDB(ctx, cfg, opts)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		_ = closeDB(sqlDB, opts.Shared)
		return nil, err
	}

	app := &App{
		sharedDB:   opts.Shared,
		Config:     cfg,
		DB:         sqlDB,
		Store:      store,
		Summarizer: summarize.NewClient(cfg.SummarizerBaseURL, cfg.SummarizerTimeout),
	}
	buildServices(app)

	deps := server.RouterDeps{
		Config:          cfg,
		SubjectHandler:  app.SubjectHandler,
		DocumentHandler: app.DocumentHandler,
		ContentHandler:  app.ContentHandler,
		UploadHandler:   app.UploadHandler,
		RateLimiter:     middleware.NewRateLimiter(nil),
		Health:          health.NewService(nil, cfg.ObjectStoreType),
	}
	if sqlDB != nil {
		deps.Health.DB = sqlDB
	}
	if cfg.ObjectStoreType == "local" {
		deps.FileStore = store
	}
	app.Router = server.NewRouter(deps)

	telemetry.Info("bootstrap.ready", map[string]any{
		"env":          cfg.Env,
		"object_store": cfg.ObjectStoreType,
		"database":     sqlDB != nil,
		"summarizer":   cfg.SummarizerBaseURL,
	})
	return app, nil
}

// Close releases the database pool, if any.
func (a *App) Close() error {
	if a == nil {
		return nil
	}
	return closeDB(a.DB, a.sharedDB)
}

func closeDB(sqlDB *sql.DB, shared bool) error {
	switch {
	case sqlDB == nil:
		return nil
	case shared:
		return db.CloseShared()
	default:
		return sqlDB.Close()
	}
}

// NewUploader returns an orchestrator for one CLI upload of the file at path.
func (a *App) NewUploader(path string, docs *appstate.DocsStore) *uploads.Orchestrator {
	return uploads.New(uploads.Config{
		Picker:     uploads.FilePicker{Path: path},
		Opener:     uploads.FileOpener{},
		Store:      a.Store,
		Summarizer: a.Summarizer,
		Docs:       docs,
	})
}

func buildDB(ctx context.Context, cfg config.Config, opts Options) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.db.memory", map[string]any{"reason": "DATABASE_URL empty"})
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	connect := db.Connect
	if opts.Shared {
		connect = db.Shared
	}
	sqlDB, err := connect(ctx, cfg.DatabaseURL, db.OptionsFor(opts.DBProfile))
	if err != nil {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.db.memory", map[string]any{"reason": "connect failed", "err": err.Error()})
			return nil, nil
		}
		return nil, err
	}
	if opts.Migrate {
		if err := db.RunMigrations(ctx, sqlDB); err != nil {
			_ = closeDB(sqlDB, opts.Shared)
			return nil, fmt.Errorf("run migrations: %w", err)
		}
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		return s3store.New(ctx, s3store.Options{
			Region:        cfg.AWSRegion,
			Bucket:        cfg.S3Bucket,
			Prefix:        cfg.S3Prefix,
			KMSKeyID:      cfg.SSEKMSKeyID,
			PublicBaseURL: cfg.S3PublicBaseURL,
			URLExpiry:     cfg.S3URLExpiry,
		})
	default:
		return localstore.New(cfg.LocalStoreDir, cfg.PublicBaseURL), nil
	}
}

func buildServices(app *App) {
	if app.DB != nil {
		app.SubjectsRepo = &subjects.PGRepo{DB: app.DB}
		app.DocumentsRepo = &documents.PGRepo{DB: app.DB}
	} else {
		app.SubjectsRepo = subjects.NewMemoryRepo()
		app.DocumentsRepo = documents.NewMemoryRepo()
	}

	app.SubjectsService = subjects.NewService(app.SubjectsRepo)
	app.DocumentsService = documents.NewService(app.DocumentsRepo)

	app.SubjectHandler = subjects.NewHandler(app.SubjectsService, appstate.CreateThroughStore(app.SubjectsService))
	app.DocumentHandler = documents.NewHandler(app.DocumentsService)
	app.ContentHandler = appstate.NewContentHandler(app.DocumentsService)
	app.UploadHandler = uploads.NewHandler(app.Store, app.Summarizer, app.DocumentsService)
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local", "test":
		return true
	default:
		return false
	}
}
