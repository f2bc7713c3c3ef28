package app

import (
	"CourseHub/internal/app/server"
	"CourseHub/internal/config"
	httpdelivery "CourseHub/internal/delivery/http"
	"CourseHub/internal/delivery/http/controllers/middleware"
	"CourseHub/internal/metrics"
	"CourseHub/internal/models"
	"CourseHub/internal/service"
	"CourseHub/internal/service/auth"
	"CourseHub/internal/service/course"
	"CourseHub/internal/service/course/management"
	"CourseHub/internal/service/course/query"
	"CourseHub/internal/service/promo"
	"CourseHub/internal/service/subscription"
	"CourseHub/internal/storage/elastic"
	"CourseHub/internal/storage/minio_storage"
	"CourseHub/internal/storage/postgres"
	"CourseHub/pkg/logger"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
)

const startupTimeout = 30 * time.Second

type searchBackend interface {
	Search(ctx context.Context, query string, limit, offset int) ([]uuid.UUID, int, error)
	Index(ctx context.Context, course models.Course) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type imageBackend interface {
	UploadImage(ctx context.Context, courseID uuid.UUID, filename string, reader io.Reader, size int64, contentType string) (string, error)
	DeleteImage(ctx context.Context, objectKey string) error
	PresignedURL(ctx context.Context, objectKey string) (string, error)
}

// externals are the optional backends; a nil field means not configured.
type externals struct {
	search searchBackend
	images imageBackend
}

func connectExternals(ctx context.Context, log logger.Log, cfg *config.Config) (*externals, error) {
	var (
		search *elastic.CourseSearchRepo
		images *minio_storage.ImageStorage
	)
	g, gctx := errgroup.WithContext(ctx)

	if cfg.ES.Enabled() {
		g.Go(func() error {
			client, err := elastic.NewElasticClient(cfg.ES.Hosts, cfg.ES.Username, cfg.ES.Password)
			if err != nil {
				return err
			}
			repo := elastic.NewCourseSearchRepository(client, cfg.ES.Index)
			if err := repo.CreateIndexIfNotExist(gctx); err != nil {
				return err
			}
			search = repo
			return nil
		})
	} else {
		log.Info("elasticsearch not configured, course search runs in postgres")
	}

	if cfg.Minio.Enabled() {
		g.Go(func() error {
			store, err := minio_storage.NewMinioStorage(cfg.Minio.Endpoint, cfg.Minio.AccessKey, cfg.Minio.SecretKey, cfg.Minio.UseSSL)
			if err != nil {
				return err
			}
			img, err := minio_storage.NewImageStorage(gctx, store, cfg.Minio.Images.Name, cfg.Minio.Images.PresignTTL)
			if err != nil {
				return err
			}
			images = img
			return nil
		})
	} else {
		log.Info("minio not configured, course image upload disabled")
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	ext := &externals{}
	if search != nil {
		ext.search = search
	}
	if images != nil {
		ext.images = images
	}
	return ext, nil
}

type container struct {
	services service.Collection
	users    *postgres.UserPostgres
}

func build(log logger.Log, cfg *config.Config, db postgres.DB, ext *externals, reg prometheus.Registerer) (*container, error) {
	rule, err := promo.NewRule(cfg.Promo.Code, cfg.Promo.DiscountPercent)
	if err != nil {
		return nil, fmt.Errorf("promo config: %w", err)
	}
	subsMetrics, err := metrics.NewSubscriptions(reg)
	if err != nil {
		return nil, err
	}

	courseRepo := postgres.NewCoursePostgres(db)
	userRepo := postgres.NewUserPostgres(db)
	tokenRepo := postgres.NewTokensPostgres(db)
	ledger := postgres.NewSubscriptionPostgres(db)

	var presign interface {
		PresignedURL(ctx context.Context, objectKey string) (string, error)
	}
	if ext.images != nil {
		presign = ext.images
	}
	imageURLs := course.NewImageURLs(log, presign, imageCacheTTL(cfg.Minio.CacheTTL, cfg.Minio.Images.PresignTTL))

	jwtManager := auth.NewJWTManager(cfg.JWT.SecretKey, cfg.JWT.Issuer, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)

	return &container{
		services: service.Collection{
			AuthService:             auth.NewAuthService(log, jwtManager, userRepo, tokenRepo),
			CourseQueryService:      query.NewCourseQueryService(log, courseRepo, ext.search, imageURLs),
			CourseManagementService: management.NewCourseManagementService(log, courseRepo, ext.search, ext.images, imageURLs),
			Service:                 subscription.NewService(log, courseRepo, ledger, rule, subsMetrics),
		},
		users: userRepo,
	}, nil
}

// imageCacheTTL keeps cached presigned URLs from outliving the signature.
func imageCacheTTL(cacheTTL, presignTTL time.Duration) time.Duration {
	if presignTTL > 0 && (cacheTTL <= 0 || cacheTTL >= presignTTL) {
		return presignTTL / 2
	}
	return cacheTTL
}

func Run(cfg *config.Config) {
	log := logger.New(cfg.Env)
	log.Info("starting coursehub", "env", cfg.Env)

	startCtx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	if cfg.Bootstrap.Migrate {
		if err := postgres.Migrate(startCtx, cfg.Postgres.DSN()); err != nil {
			log.FatalErr("error running migrations", err)
		}
	}

	pg, err := postgres.NewPostgresPool(startCtx, cfg.Postgres.DSN())
	if err != nil {
		log.FatalErr("error connecting to database", err)
	}
	defer pg.Close()

	ext, err := connectExternals(startCtx, log, cfg)
	if err != nil {
		log.FatalErr("error connecting to external services", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	c, err := build(log, cfg, pg.Pool, ext, registry)
	if err != nil {
		log.FatalErr("error building services", err)
	}

	if cfg.Bootstrap.Seed {
		if err := seed(startCtx, log, c.users, c.services.CourseManagementService, auth.HashPassword); err != nil {
			log.FatalErr("error seeding database", err)
		}
	}
	if ext.search != nil {
		n, err := c.services.CourseManagementService.Reindex(startCtx)
		if err != nil {
			log.ErrorErr("course reindex failed", err)
		} else {
			log.Info("courses indexed", "count", n)
		}
	}

	r := httpdelivery.InitRoutes(log, c.services, httpdelivery.Options{
		AllowedOrigins: cfg.HTTPServer.AllowedOrigins,
		PromoLimiter:   middleware.NewKeyedLimiter(cfg.RateLimit.PromoPerMinute, cfg.RateLimit.PromoBurst),
		Metrics:        promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}),
	})

	srv := server.New(cfg.HTTPServer.Address, cfg.HTTPServer.Timeout, cfg.HTTPServer.IdleTimeout, r)
	srv.Start()
	log.Info("http server listening", "address", cfg.HTTPServer.Address)

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	select {
	case s := <-interrupt:
		log.Info("app signal", "signal", s.String())
	case err, ok := <-srv.Notify():
		if ok {
			log.ErrorErr("http server stopped", err)
		}
	}
	if err := srv.Shutdown(); err != nil {
		log.ErrorErr("http server shutdown", err)
	}
}

// Migrate applies the embedded schema migrations and exits.
func Migrate(cfg *config.Config) error {
	log := logger.New(cfg.Env)
	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	if err := postgres.Migrate(ctx, cfg.Postgres.DSN()); err != nil {
		return err
	}
	log.Info("migrations applied")
	return nil
}

// Seed loads the demo catalog and accounts into an empty database.
func Seed(cfg *config.Config) error {
	log := logger.New(cfg.Env)
	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	pg, err := postgres.NewPostgresPool(ctx, cfg.Postgres.DSN())
	if err != nil {
		return err
	}
	defer pg.Close()

	ext, err := connectExternals(ctx, log, cfg)
	if err != nil {
		return err
	}
	c, err := build(log, cfg, pg.Pool, ext, prometheus.NewRegistry())
	if err != nil {
		return err
	}
	return seed(ctx, log, c.users, c.services.CourseManagementService, auth.HashPassword)
}
