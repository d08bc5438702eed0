package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/AnshRaj112/graceway-backend/internal/config"
	"github.com/AnshRaj112/graceway-backend/internal/database"
	"github.com/AnshRaj112/graceway-backend/internal/handlers"
	"github.com/AnshRaj112/graceway-backend/internal/middleware"
	"github.com/AnshRaj112/graceway-backend/internal/models"
	"github.com/AnshRaj112/graceway-backend/internal/routes"
	"github.com/AnshRaj112/graceway-backend/internal/services"
	"github.com/AnshRaj112/graceway-backend/internal/store/memory"
	"github.com/AnshRaj112/graceway-backend/internal/store/mongodb"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "failed to read .env:", err)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to build logger:", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	zc := zap.NewDevelopmentConfig()
	if cfg.IsProduction() {
		zc = zap.NewProductionConfig()
	}
	level, err := zap.ParseAtomicLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	zc.Level = level
	return zc.Build(zap.Fields(zap.String("env", cfg.Environment)))
}

// backends are the optional connections; nil means not configured.
type backends struct {
	mongo    *mongo.Client
	redis    *redis.Client
	postgres *sql.DB
}

func (b *backends) close(log *zap.Logger) {
	if b.postgres != nil {
		if err := b.postgres.Close(); err != nil {
			log.Warn("closing PostgreSQL", zap.Error(err))
		}
	}
	if b.redis != nil {
		if err := b.redis.Close(); err != nil {
			log.Warn("closing Redis", zap.Error(err))
		}
	}
	if b.mongo != nil {
		if err := database.DisconnectMongo(b.mongo); err != nil {
			log.Warn("disconnecting MongoDB", zap.Error(err))
		}
	}
}

func (b *backends) checks() map[string]handlers.Check {
	checks := map[string]handlers.Check{}
	if b.mongo != nil {
		checks["mongodb"] = func(ctx context.Context) error { return b.mongo.Ping(ctx, nil) }
	}
	if b.redis != nil {
		checks["redis"] = func(ctx context.Context) error { return b.redis.Ping(ctx).Err() }
	}
	if b.postgres != nil {
		checks["postgres"] = b.postgres.PingContext
	}
	return checks
}

func connect(ctx context.Context, cfg *config.Config, log *zap.Logger) (*backends, services.Repositories, error) {
	b := &backends{}
	var repos services.Repositories

	switch cfg.StoreDriver {
	case config.DriverMemory:
		log.Warn("using the in-memory store; data is lost on restart")
		repos = services.Repositories{
			Users:        memory.NewRepository[models.User](),
			Devotionals:  memory.NewRepository[models.Devotional](),
			Prayers:      memory.NewRepository[models.Prayer](),
			Quests:       memory.NewRepository[models.Quest](),
			ReadingPlans: memory.NewRepository[models.ReadingPlan](),
			VerseArt:     memory.NewRepository[models.VerseArt](),
			VersesOfDay:  memory.NewRepository[models.VerseOfDay](),
		}
	default:
		client, err := database.ConnectMongo(ctx, cfg.Mongo.URI, log)
		if err != nil {
			return b, repos, err
		}
		b.mongo = client
		db := client.Database(cfg.Mongo.Database)
		if err := mongodb.EnsureIndexes(ctx, db); err != nil {
			log.Warn("failed to ensure MongoDB indexes", zap.Error(err))
		}
		repos = services.Repositories{
			Users:        mongodb.NewRepository[models.User](db.Collection(models.KindUser.Collection())),
			Devotionals:  mongodb.NewRepository[models.Devotional](db.Collection(models.KindDevotional.Collection())),
			Prayers:      mongodb.NewRepository[models.Prayer](db.Collection(models.KindPrayer.Collection())),
			Quests:       mongodb.NewRepository[models.Quest](db.Collection(models.KindQuest.Collection())),
			ReadingPlans: mongodb.NewRepository[models.ReadingPlan](db.Collection(models.KindReadingPlan.Collection())),
			VerseArt:     mongodb.NewRepository[models.VerseArt](db.Collection(models.KindVerseArt.Collection())),
			VersesOfDay:  mongodb.NewRepository[models.VerseOfDay](db.Collection(models.KindVerseOfDay.Collection())),
			Tx:           mongodb.NewTransactor(client, cfg.Mongo.Transactions),
		}
	}

	if cfg.Redis.URI != "" {
		client, err := database.ConnectRedis(ctx, cfg.Redis.URI, log)
		if err != nil {
			return b, repos, err
		}
		b.redis = client
	} else {
		log.Warn("REDIS_URI not set; sessions, cache and the moderation feed stay in process")
	}

	if cfg.Postgres.URI != "" {
		db, err := database.ConnectPostgres(ctx, cfg.Postgres.URI, log)
		if err != nil {
			return b, repos, err
		}
		b.postgres = db
	} else {
		log.Warn("POSTGRES_URI not set; moderation actions are not audited")
	}
	return b, repos, nil
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b, repos, err := connect(ctx, cfg, log)
	defer b.close(log)
	if err != nil {
		return err
	}

	var sessions services.SessionStore = services.NewMemorySessions(cfg.Session.TTL)
	if b.redis != nil {
		sessions = services.NewRedisSessions(b.redis, cfg.Session.TTL)
	}
	var audit services.AuditLog = services.NopAuditLog{}
	if b.postgres != nil {
		audit = services.NewSQLAuditLog(b.postgres)
	}
	var uploader services.ImageUploader
	if cfg.CloudinaryEnabled() {
		up, err := services.NewCloudinaryUploader(cfg.Cloudinary.CloudName, cfg.Cloudinary.APIKey, cfg.Cloudinary.APISecret)
		if err != nil {
			log.Warn("failed to initialise Cloudinary; image uploads disabled", zap.Error(err))
		} else {
			uploader = up
		}
	} else {
		log.Warn("Cloudinary credentials not set; image uploads disabled")
	}

	hub := services.NewEventHub(b.redis, log)
	catalog := services.NewCatalog(repos, log)
	users := services.NewUsers(repos.Users, sessions, log)
	auth := services.NewAuth(repos.Users, sessions, log)

	svc := handlers.Services{
		Catalog:       catalog,
		Engagement:    services.NewEngagement(catalog, repos.Users, hub, log),
		Moderation:    services.NewModeration(catalog, repos.Users, sessions, audit, hub, log),
		Tree:          services.NewTree(catalog.Prayers, repos.Tx, log),
		Participation: services.NewParticipation(catalog, repos.Users, log),
		Users:         users,
		Auth:          auth,
		Daily:         services.NewDaily(catalog, services.NewCache(b.redis), log),
		ArtImages:     services.NewArtImages(catalog, uploader, log),
		Analytics:     services.NewAnalytics(repos),
		Events:        hub,
	}
	h := handlers.New(svc, handlers.Options{
		Production:     cfg.IsProduction(),
		RequestTimeout: cfg.RequestTimeout,
		AllowedOrigins: cfg.AllowedOrigins,
		Checks:         b.checks(),
	}, log)

	global := middleware.GlobalLimiter()
	login := middleware.LoginLimiter()

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	if cfg.IsProduction() {
		for _, mw := range middleware.ProductionSecurity(cfg.AllowedHost, global) {
			r.Use(mw)
		}
		log.Info("production security enabled", zap.String("host", cfg.AllowedHost))
	}
	routes.SetupRoutes(r, h, routes.Guards{
		Auth:     middleware.NewAuth(auth, users),
		Throttle: middleware.NewThrottle(b.redis, cfg.Throttle.Limit, cfg.Throttle.Window, log),
		Login:    login,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		global.Run(gctx, time.Minute)
		return nil
	})
	g.Go(func() error {
		login.Run(gctx, time.Minute)
		return nil
	})
	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})
	g.Go(func() error {
		log.Info("graceway backend listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
