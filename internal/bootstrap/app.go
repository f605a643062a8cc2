package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-extractor/internal/fields"
	"resume-extractor/internal/resumes"
	"resume-extractor/internal/shared/config"
	"resume-extractor/internal/shared/server"
	"resume-extractor/internal/shared/server/middleware"
	"resume-extractor/internal/shared/storage/db"
	"resume-extractor/internal/shared/storage/object"
	localstore "resume-extractor/internal/shared/storage/object/local"
	s3store "resume-extractor/internal/shared/storage/object/s3"
	"resume-extractor/internal/shared/telemetry"
)

// App holds shared dependencies and the HTTP router.
type App struct {
	Config         config.Config
	Router         *gin.Engine
	DB             *sql.DB
	Store          object.ObjectStore
	BatchRepo      resumes.BatchRepo
	ResumesService *resumes.Service
	ResumesHandler *resumes.Handler
}

// Build wires storage, extraction and HTTP routes from cfg.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
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

	phone, err := fields.NewPhoneExtractor(cfg.PhoneRegion, fields.ParsePhonePolicy(cfg.PhonePolicy))
	if err != nil {
		return nil, fmt.Errorf("phone extractor: %w", err)
	}

	var repo resumes.BatchRepo
	if sqlDB != nil {
		repo = &resumes.PGRepo{DB: sqlDB}
	} else {
		repo = resumes.NewMemoryRepo()
	}

	svc := &resumes.Service{
		Store:          store,
		Repo:           repo,
		Phone:          phone,
		EmbedViewLinks: cfg.EmbedViewLinks,
		MaxFileBytes:   cfg.MaxUploadBytes,
	}
	handler := resumes.NewHandler(svc, cfg.MaxUploadBytes, cfg.MaxBatchFiles)

	app := &App{
		Config:         cfg,
		DB:             sqlDB,
		Store:          store,
		BatchRepo:      repo,
		ResumesService: svc,
		ResumesHandler: handler,
	}
	app.Router = server.NewRouter(server.RouterDeps{
		Config:  cfg,
		Resumes: handler,
		Limiter: middleware.NewRateLimiter(nil),
	})

	telemetry.Info("bootstrap.ready", map[string]any{
		"env":          cfg.Env,
		"object_store": cfg.ObjectStoreType,
		"batch_repo":   repoKind(sqlDB),
		"phone_region": cfg.PhoneRegion,
		"phone_policy": string(phone.Policy()),
	})
	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		telemetry.Info("bootstrap.db.memory", map[string]any{"reason": "DATABASE_URL empty"})
		return nil, nil
	}

	sqlDB, err := db.ConnectForRuntime(ctx, cfg.DatabaseURL)
	if err == nil {
		err = db.RunMigrations(ctx, sqlDB)
	}
	if err != nil {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.db.memory", map[string]any{"reason": err.Error()})
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

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}

func repoKind(sqlDB *sql.DB) string {
	if sqlDB != nil {
		return "postgres"
	}
	return "memory"
}
