package main

import (
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"

	"github.com/infinitynet/api/pkg/auth/authhttp"
	"github.com/infinitynet/api/pkg/config"
	"github.com/infinitynet/api/pkg/crudx"
	"github.com/infinitynet/api/pkg/errx"
	"github.com/infinitynet/api/pkg/ratelimit"
	"github.com/infinitynet/api/pkg/role"
	"github.com/infinitynet/api/pkg/status"
	"github.com/infinitynet/api/pkg/user"
	"github.com/infinitynet/api/pkg/useradmin"
	"github.com/infinitynet/api/pkg/useraffiliate"
	"github.com/infinitynet/api/pkg/userphone"
)

var startedAt = time.Now()

func main() {
	cfg := config.Load()

	container, err := NewContainer(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer container.Cleanup()

	app := newApp(container)

	go func() {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		container.Log.Info("server listening", zap.String("addr", addr))
		if err := app.Listen(addr); err != nil {
			container.Log.Fatal("server error", zap.Error(err))
		}
	}()

	gracefulShutdown(app, container)
}

func newApp(container *Container) *fiber.App {
	cfg := container.Config
	log := container.Log

	app := fiber.New(fiber.Config{
		AppName:               "API InfinityNet",
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler(cfg, log),
		BodyLimit:             1 * 1024 * 1024,
	})

	app.Use(recover.New(recover.Config{EnableStackTrace: cfg.Server.IsDev()}))
	app.Use(requestid.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORS.Origins(),
		AllowMethods: cfg.CORS.Methods(),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-API-Key, X-Request-ID",
	}))
	app.Use(requestLogger(log))
	app.Use(ratelimit.Middleware(container.Limiter))
	app.Use(container.Metrics.Middleware())
	app.Use(requireJSONBody)

	api := app.Group("/api")

	api.Get("/", apiInfo(cfg))
	api.Get("/health", healthCheck(cfg))
	if cfg.Server.IsDev() {
		api.Get("/diagnostics", diagnostics(cfg))
	}

	app.Get("/metrics", container.Metrics.Handler())

	authhttp.RegisterRoutes(api.Group("/auth"), container.Auth)

	mw := container.AuthMiddleware
	guards := crudx.Guards{
		Authenticate: mw.Authenticate(),
		Write:        mw.RequireLevel(50),
		Delete:       mw.RequireLevel(100),
		APIKey:       mw.APIKey(),
	}

	crudx.RegisterRoutes(api.Group("/roles"), container.Roles.Service, guards,
		crudx.RouteConfig[role.ListFilter]{ParseFilter: parseRoleFilter})
	crudx.RegisterRoutes(api.Group("/status"), container.Statuses.Service, guards,
		crudx.RouteConfig[status.ListFilter]{ParseFilter: parseStatusFilter})
	crudx.RegisterRoutes(api.Group("/users"), container.Users.Service, guards,
		crudx.RouteConfig[user.ListFilter]{ParseFilter: parseUserFilter})
	crudx.RegisterRoutes(api.Group("/users-admin"), container.Admins.Service, guards,
		crudx.RouteConfig[useradmin.ListFilter]{ParseFilter: parseUserAdminFilter})
	crudx.RegisterRoutes(api.Group("/users-affiliate"), container.Affiliates.Service, guards,
		crudx.RouteConfig[useraffiliate.ListFilter]{ParseFilter: parseUserAffiliateFilter})
	crudx.RegisterRoutes(api.Group("/users-phone"), container.Phones.Service, guards,
		crudx.RouteConfig[userphone.ListFilter]{ParseFilter: parseUserPhoneFilter})

	app.Use(notFound)

	return app
}

// requireJSONBody rejects mutating requests whose body is not JSON.
func requireJSONBody(c *fiber.Ctx) error {
	switch c.Method() {
	case fiber.MethodPost, fiber.MethodPut, fiber.MethodPatch:
		if len(c.Body()) == 0 {
			break
		}
		ct := c.Get(fiber.HeaderContentType)
		if !strings.HasPrefix(ct, fiber.MIMEApplicationJSON) {
			return fiber.ErrUnsupportedMediaType
		}
	}
	return c.Next()
}

func requestLogger(log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		// Returned errors are rendered by the app error handler after
		// this middleware, so the response still reads 200 here.
		status := c.Response().StatusCode()
		if err != nil {
			var appErr *errx.Error
			if errx.As(err, &appErr) {
				status = appErr.HTTPStatus
			} else if fiberErr, ok := err.(*fiber.Error); ok {
				status = fiberErr.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		fields := []zap.Field{
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.IP()),
			zap.String("request_id", requestID(c)),
		}
		if status >= 500 {
			log.Error("request", fields...)
		} else {
			log.Info("request", fields...)
		}
		return err
	}
}

func requestID(c *fiber.Ctx) string {
	if id, ok := c.Locals("requestid").(string); ok {
		return id
	}
	return ""
}

func apiInfo(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"name":        "API InfinityNet",
			"description": "API REST para gerenciamento de usuários, perfis e autenticação",
			"version":     cfg.Server.Version,
			"status":      "online",
			"endpoints": fiber.Map{
				"auth":   "/api/auth",
				"users":  "/api/users",
				"roles":  "/api/roles",
				"status": "/api/status",
				"health": "/api/health",
			},
		})
	}
}

func healthCheck(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":      "success",
			"message":     "API está funcionando corretamente",
			"version":     cfg.Server.Version,
			"environment": cfg.Server.Env,
			"timestamp":   time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// diagnostics is mounted outside production only.
func diagnostics(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cwd, _ := os.Getwd()
		var entries []string
		if items, err := os.ReadDir(cwd); err == nil {
			for _, item := range items {
				entries = append(entries, item.Name())
			}
		}

		var mem runtime.MemStats
		runtime.ReadMemStats(&mem)

		redacted := func(key string) string {
			if os.Getenv(key) != "" {
				return "[REDACTED]"
			}
			return ""
		}

		return c.JSON(fiber.Map{
			"status": "success",
			"data": fiber.Map{
				"environment": fiber.Map{
					"env":        cfg.Server.Env,
					"goVersion":  runtime.Version(),
					"platform":   runtime.GOOS,
					"arch":       runtime.GOARCH,
					"cwd":        cwd,
					"goroutines": runtime.NumGoroutine(),
					"heapAlloc":  mem.HeapAlloc,
					"uptime":     time.Since(startedAt).String(),
				},
				"workingDir": entries,
				"envVars": fiber.Map{
					"PORT":       os.Getenv("PORT"),
					"HOST":       os.Getenv("HOST"),
					"DB_HOST":    os.Getenv("DB_HOST"),
					"JWT_SECRET": redacted("JWT_SECRET"),
					"API_KEY":    redacted("API_KEY"),
				},
			},
		})
	}
}

func notFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"status":    "error",
		"type":      "NOT_FOUND",
		"message":   "Rota não encontrada",
		"path":      c.Path(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// errorHandler renders the error envelope. Details and underlying causes
// are exposed outside production only.
func errorHandler(cfg *config.Config, log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		timestamp := time.Now().UTC().Format(time.RFC3339)

		var appErr *errx.Error
		if errx.As(err, &appErr) {
			response := fiber.Map{
				"status":    "error",
				"code":      appErr.Code,
				"type":      string(appErr.Type),
				"message":   appErr.Message,
				"timestamp": timestamp,
			}
			if len(appErr.Details) > 0 {
				response["details"] = appErr.Details
			}
			if cfg.Server.IsDev() && appErr.Err != nil {
				response["cause"] = appErr.Err.Error()
			}
			return c.Status(appErr.HTTPStatus).JSON(response)
		}

		if fiberErr, ok := err.(*fiber.Error); ok {
			errType := "BAD_REQUEST"
			if fiberErr.Code >= 500 {
				errType = "INTERNAL"
			}
			return c.Status(fiberErr.Code).JSON(fiber.Map{
				"status":    "error",
				"type":      errType,
				"message":   fiberErr.Message,
				"timestamp": timestamp,
			})
		}

		log.Error("unhandled error",
			zap.String("path", c.Path()),
			zap.String("method", c.Method()),
			zap.Error(err))

		response := fiber.Map{
			"status":    "error",
			"type":      "INTERNAL",
			"message":   "Erro interno do servidor",
			"timestamp": timestamp,
		}
		if cfg.Server.IsDev() {
			response["cause"] = err.Error()
		}
		return c.Status(fiber.StatusInternalServerError).JSON(response)
	}
}

func gracefulShutdown(app *fiber.App, container *Container) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	sig := <-sigChan
	container.Log.Info("shutting down", zap.String("signal", sig.String()))

	if err := app.ShutdownWithTimeout(30 * time.Second); err != nil {
		container.Log.Error("forced shutdown", zap.Error(err))
	}
}

func parseRoleFilter(c *fiber.Ctx) role.ListFilter {
	f := role.ListFilter{Name: c.Query("name")}
	if raw := c.Query("level"); raw != "" {
		var level int
		if _, err := fmt.Sscanf(raw, "%d", &level); err == nil {
			f.Level = &level
		}
	}
	if raw := c.Query("active"); raw != "" {
		active := raw == "true" || raw == "1"
		f.Active = &active
	}
	return f
}

func parseStatusFilter(c *fiber.Ctx) status.ListFilter {
	return status.ListFilter{Name: c.Query("name")}
}

func parseUserFilter(c *fiber.Ctx) user.ListFilter {
	return user.ListFilter{
		Nome:     c.Query("nome"),
		Email:    c.Query("email"),
		CPF:      c.Query("cpf"),
		Cidade:   c.Query("cidade"),
		Estado:   c.Query("estado"),
		RoleID:   c.Query("roleId"),
		StatusID: c.Query("statusId"),
	}
}

func parseUserAdminFilter(c *fiber.Ctx) useradmin.ListFilter {
	return useradmin.ListFilter{
		Nome:     c.Query("nome"),
		Email:    c.Query("email"),
		CPF:      c.Query("cpf"),
		Cidade:   c.Query("cidade"),
		Estado:   c.Query("estado"),
		RoleID:   c.Query("roleId"),
		StatusID: c.Query("statusId"),
	}
}

func parseUserAffiliateFilter(c *fiber.Ctx) useraffiliate.ListFilter {
	return useraffiliate.ListFilter{
		Nome:     c.Query("nome"),
		Email:    c.Query("email"),
		CPF:      c.Query("cpf"),
		Cidade:   c.Query("cidade"),
		Estado:   c.Query("estado"),
		RoleID:   c.Query("roleId"),
		StatusID: c.Query("statusId"),
	}
}

func parseUserPhoneFilter(c *fiber.Ctx) userphone.ListFilter {
	return userphone.ListFilter{
		Nome:     c.Query("nome"),
		Email:    c.Query("email"),
		CPF:      c.Query("cpf"),
		Cidade:   c.Query("cidade"),
		Estado:   c.Query("estado"),
		RoleID:   c.Query("roleId"),
		StatusID: c.Query("statusId"),
	}
}
