package container

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"movies-backend/internal/authz"
	"movies-backend/internal/config"
	infraCache "movies-backend/internal/infrastructure/cache"
	"movies-backend/internal/infrastructure/database"
	"movies-backend/internal/infrastructure/memdb"
	"movies-backend/internal/shared/middleware"
	"movies-backend/pkg/cache"
	"movies-backend/pkg/jwt"
	"movies-backend/pkg/logger"

	movieHandler "movies-backend/internal/domains/movie/handler"
	movieRepo "movies-backend/internal/domains/movie/repository"
	movieService "movies-backend/internal/domains/movie/service"
	ratingHandler "movies-backend/internal/domains/rating/handler"
	ratingRepo "movies-backend/internal/domains/rating/repository"
	ratingService "movies-backend/internal/domains/rating/service"
)

// ========================================
// CONTAINER STRUCT
// ========================================

// Container holds every application dependency.
// Build order: config → infrastructure → repositories → services → handlers.
type Container struct {
	// ========================================
	// INFRASTRUCTURE LAYER
	// ========================================
	Config      *config.Config
	DB          *database.PostgresDB // nil with the memory backend
	Store       *memdb.Store         // nil with the postgres backend
	Cache       cache.Cache
	JWTManager  *jwt.Manager
	Enforcer    *authz.Enforcer
	RateLimiter *middleware.RateLimiter

	// ========================================
	// REPOSITORY LAYER
	// ========================================
	MovieRepo  movieRepo.Repository
	RatingRepo ratingRepo.Repository

	// ========================================
	// SERVICE LAYER
	// ========================================
	MovieService  movieService.ServiceInterface
	RatingService ratingService.ServiceInterface

	// ========================================
	// HANDLER LAYER
	// ========================================
	MovieHandler  *movieHandler.Handler
	RatingHandler *ratingHandler.Handler
}

// NewContainer loads configuration from the environment and builds the graph.
func NewContainer(ctx context.Context) (*Container, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return Build(ctx, cfg)
}

// Build wires the dependency graph for cfg.
func Build(ctx context.Context, cfg *config.Config) (*Container, error) {
	log.Info().Msg("[CONTAINER] initializing")
	c := &Container{Config: cfg}

	// ========================================
	// STEP 1: STORAGE
	// ========================================
	if err := c.initStorage(ctx); err != nil {
		return nil, err
	}

	// ========================================
	// STEP 2: CACHE, AUTH, LIMITS
	// ========================================
	c.initCache(ctx)

	c.JWTManager = jwt.NewManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Audience)

	enforcer, err := authz.NewEnforcer()
	if err != nil {
		c.Cleanup()
		return nil, fmt.Errorf("failed to init authorization: %w", err)
	}
	c.Enforcer = enforcer

	if cfg.RateLimit.Enabled {
		c.RateLimiter = middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	}

	// ========================================
	// STEP 3: DOMAINS
	// ========================================
	c.initRepositories()
	c.initServices()
	c.initHandlers()

	logger.Info("[CONTAINER] initialized", map[string]interface{}{
		"storage":    cfg.Storage.Backend,
		"rate_limit": cfg.RateLimit.Enabled,
	})
	return c, nil
}

func (c *Container) initStorage(ctx context.Context) error {
	if c.Config.Storage.Backend == "memory" {
		c.Store = memdb.NewStore()
		log.Warn().Msg("[CONTAINER] using in-memory storage, data is lost on restart")
		return nil
	}

	dbConfig, err := config.LoadDatabaseConfig()
	if err != nil {
		return fmt.Errorf("failed to load database config: %w", err)
	}

	db := database.NewPostgresDB(dbConfig)

	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := db.Connect(connectCtx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.Initialize(connectCtx); err != nil {
		db.Close()
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	c.DB = db
	return nil
}

// initCache falls back to the in-process cache when redis is disabled or unreachable.
func (c *Container) initCache(ctx context.Context) {
	cfg := c.Config.Redis
	if cfg.Enabled {
		redisCache := infraCache.NewRedisCache(cfg.Host, cfg.Password, cfg.DB)

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		err := redisCache.Connect(pingCtx)
		if err == nil {
			c.Cache = redisCache
			return
		}
		logger.Warn("[CONTAINER] redis unavailable, using in-memory output cache", err)
		_ = redisCache.Close()
	}
	c.Cache = cache.NewMemory()
}

func (c *Container) initRepositories() {
	if c.DB != nil {
		c.MovieRepo = movieRepo.NewPostgresRepository(c.DB.Pool)
		c.RatingRepo = ratingRepo.NewPostgresRepository(c.DB.Pool)
		return
	}
	c.MovieRepo = movieRepo.NewMemoryRepository(c.Store)
	c.RatingRepo = ratingRepo.NewMemoryRepository(c.Store)
}

func (c *Container) initServices() {
	c.MovieService = movieService.NewService(c.MovieRepo, c.RatingRepo, c.Cache)
	c.RatingService = ratingService.NewService(c.RatingRepo, c.MovieRepo, c.Cache)
}

func (c *Container) initHandlers() {
	c.MovieHandler = movieHandler.NewHandler(c.MovieService)
	c.RatingHandler = ratingHandler.NewHandler(c.RatingService)
}

// HealthCheck pings the database (when used) and the cache.
func (c *Container) HealthCheck(ctx context.Context) map[string]error {
	checks := map[string]error{}
	if c.DB != nil {
		checks["database"] = c.DB.HealthCheck(ctx)
	}
	if c.Cache != nil {
		checks["cache"] = c.Cache.Ping(ctx)
	}
	return checks
}

// Cleanup releases pooled connections.
func (c *Container) Cleanup() {
	log.Info().Msg("[CONTAINER] cleaning up")

	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			logger.Error("[CONTAINER] failed to close database", err)
		}
	}

	if rc, ok := c.Cache.(*infraCache.RedisCache); ok {
		if err := rc.Close(); err != nil {
			logger.Error("[CONTAINER] failed to close redis", err)
		}
	}
}
