// Composition root. Owns infrastructure (DB, Redis, metrics) and wires
// every module explicitly. This is the only place that knows about ALL
// packages.
package main

import (
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/infinitynet/api/pkg/auth"
	"github.com/infinitynet/api/pkg/breaker"
	"github.com/infinitynet/api/pkg/cachex"
	"github.com/infinitynet/api/pkg/config"
	"github.com/infinitynet/api/pkg/metricx"
	"github.com/infinitynet/api/pkg/ratelimit"
	"github.com/infinitynet/api/pkg/role"
	"github.com/infinitynet/api/pkg/role/roleinfra"
	"github.com/infinitynet/api/pkg/role/rolesrv"
	"github.com/infinitynet/api/pkg/status"
	"github.com/infinitynet/api/pkg/status/statusinfra"
	"github.com/infinitynet/api/pkg/status/statussrv"
	"github.com/infinitynet/api/pkg/user"
	"github.com/infinitynet/api/pkg/user/userinfra"
	"github.com/infinitynet/api/pkg/user/usersrv"
	"github.com/infinitynet/api/pkg/useradmin"
	"github.com/infinitynet/api/pkg/useradmin/useradmininfra"
	"github.com/infinitynet/api/pkg/useradmin/useradminsrv"
	"github.com/infinitynet/api/pkg/useraffiliate"
	"github.com/infinitynet/api/pkg/useraffiliate/useraffiliateinfra"
	"github.com/infinitynet/api/pkg/useraffiliate/useraffiliatesrv"
	"github.com/infinitynet/api/pkg/userphone"
	"github.com/infinitynet/api/pkg/userphone/userphoneinfra"
	"github.com/infinitynet/api/pkg/userphone/userphonesrv"
)

// Container holds shared infrastructure and the composed services.
type Container struct {
	Config *config.Config
	Log    *zap.Logger

	DB      *sqlx.DB
	Redis   *redis.Client
	Cache   *cachex.Facade
	Metrics *metricx.Metrics
	Limiter *ratelimit.Limiter

	RoleRepo      role.Repository
	StatusRepo    status.Repository
	UserRepo      user.Repository
	AdminRepo     useradmin.Repository
	AffiliateRepo useraffiliate.Repository
	PhoneRepo     userphone.Repository

	Roles      *rolesrv.Service
	Statuses   *statussrv.Service
	Users      *usersrv.Service
	Admins     *useradminsrv.Service
	Affiliates *useraffiliatesrv.Service
	Phones     *userphonesrv.Service

	Tokens         *auth.TokenService
	Auth           *auth.Service
	AuthMiddleware *auth.Middleware
}

func NewContainer(cfg *config.Config) (*Container, error) {
	log, err := newLogger(cfg.Log)
	if err != nil {
		return nil, err
	}

	c := &Container{Config: cfg, Log: log}

	if err := c.initInfrastructure(); err != nil {
		return nil, err
	}
	c.initModules()

	log.Info("container initialized",
		zap.String("env", cfg.Server.Env),
		zap.Bool("cache_degraded", c.Cache.Degraded()))
	return c, nil
}

func newLogger(cfg config.LogConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	var zcfg zap.Config
	if cfg.Dev {
		zcfg = zap.NewDevelopmentConfig()
	} else {
		zcfg = zap.NewProductionConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return zcfg.Build()
}

func (c *Container) initInfrastructure() error {
	db, err := sqlx.Connect("postgres", c.Config.Database.DSN())
	if err != nil {
		return err
	}
	db.SetMaxOpenConns(c.Config.Database.MaxOpenConns)
	db.SetMaxIdleConns(c.Config.Database.MaxIdleConns)
	db.SetConnMaxLifetime(c.Config.Database.ConnMaxLifetime)
	c.DB = db
	c.Log.Info("database connected", zap.String("host", c.Config.Database.Host))

	c.Metrics = metricx.New()

	// Redis is optional: the cache facade downgrades to its in-process
	// fallback when the connection cannot be established.
	c.Redis = redis.NewClient(&redis.Options{
		Addr:     c.Config.Redis.Address(),
		Password: c.Config.Redis.Password,
		DB:       c.Config.Redis.DB,
	})
	c.Cache = cachex.New(c.Redis, c.Config.Redis.DefaultTTL, c.Log,
		cachex.WithFallbackHook(c.Metrics.CacheFallbackHook()))

	c.Limiter = ratelimit.New(c.Config.RateLimit.MaxRequests, c.Config.RateLimit.Window)

	return nil
}

func (c *Container) initModules() {
	cfg := c.Config
	cost := cfg.Auth.BcryptCost

	c.RoleRepo = roleinfra.NewPostgresRoleRepository(c.DB, c.Cache)
	c.StatusRepo = statusinfra.NewPostgresStatusRepository(c.DB, c.Cache)
	c.UserRepo = userinfra.NewPostgresUserRepository(c.DB, c.Cache, cost)
	c.AdminRepo = useradmininfra.NewPostgresUserAdminRepository(c.DB, c.Cache, cost)
	c.AffiliateRepo = useraffiliateinfra.NewPostgresUserAffiliateRepository(c.DB, c.Cache, cost)
	c.PhoneRepo = userphoneinfra.NewPostgresUserPhoneRepository(c.DB, c.Cache, cost)

	// One breaker per service class, shared across its operations.
	c.Roles = rolesrv.NewService(c.RoleRepo, c.newBreaker("roles"), c.Log)
	c.Statuses = statussrv.NewService(c.StatusRepo, c.newBreaker("statuses"), c.Log)
	c.Users = usersrv.NewService(c.UserRepo, c.newBreaker("users"), c.Log)
	c.Admins = useradminsrv.NewService(c.AdminRepo, c.newBreaker("admin_users"), c.Log)
	c.Affiliates = useraffiliatesrv.NewService(c.AffiliateRepo, c.newBreaker("affiliate_users"), c.Log)
	c.Phones = userphonesrv.NewService(c.PhoneRepo, c.newBreaker("app_users"), c.Log)

	c.Tokens = auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.AccessTTL, cfg.Auth.RefreshTTL, cfg.Auth.Issuer)
	c.Auth = auth.NewService(
		c.UserRepo, c.AdminRepo, c.AffiliateRepo, c.PhoneRepo,
		c.Tokens, c.Log,
		auth.WithLoginFailureHook(func(string) { c.Metrics.CountLoginFailure() }),
	)
	c.AuthMiddleware = auth.NewMiddleware(c.Tokens, cfg.Auth.APIKey)
}

func (c *Container) newBreaker(service string) *breaker.Breaker {
	return breaker.New(breaker.WithStateChange(c.Metrics.BreakerHook(service)))
}

// Cleanup closes every owned connection. Safe to call once at shutdown.
func (c *Container) Cleanup() {
	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			c.Log.Error("error closing database", zap.Error(err))
		}
	}
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			c.Log.Error("error closing redis", zap.Error(err))
		}
	}
	_ = c.Log.Sync()
}
