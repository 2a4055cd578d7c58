package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/sirpyerre/admin-console/internal/api/handler"
	"github.com/sirpyerre/admin-console/internal/api/middleware"
	"github.com/sirpyerre/admin-console/internal/api/render"
	"github.com/sirpyerre/admin-console/internal/core/ports"
)

// RouterConfig carries everything the router wires together.
type RouterConfig struct {
	Sessions   ports.SessionManager
	Users      ports.UserAPI
	Categories ports.CategoryAPI
	// Redis is nil when the memory session store is configured; the
	// readiness probe then skips the Redis check.
	Redis  *redis.Client
	Cookie handler.CookieConfig
	Log    zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(cfg RouterConfig) (*echo.Echo, error) {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(cfg.Log)

	renderer, err := render.New()
	if err != nil {
		return nil, err
	}
	e.Renderer = renderer

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echoprometheus.NewMiddleware("admin_console"))
	e.Use(echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogMethod: true,
		LogError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := cfg.Log.Info()
			if v.Error != nil || v.Status >= 500 {
				evt = cfg.Log.Error().Err(v.Error)
			}
			evt.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Msg("request")
			return nil
		},
	}))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(cfg.Sessions, cfg.Cookie)
	userHandler := handler.NewUserHandler(cfg.Users)
	categoryHandler := handler.NewCategoryHandler(cfg.Categories)
	dashboardHandler := handler.NewDashboardHandler(cfg.Users, cfg.Categories)

	// --- Operational endpoints (no session required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(cfg.Redis, cfg.Categories)

	e.GET("/healthz", healthHandler.Liveness)
	e.GET("/healthz/ready", healthDepsHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())
	e.StaticFS("/static", echo.MustSubFS(render.StaticFS, "static"))

	// --- Session resolution + gating ---
	resolve := middleware.Resolve(middleware.SessionConfig{
		Manager:      cfg.Sessions,
		CookieName:   cfg.Cookie.Name,
		CookieSecure: cfg.Cookie.Secure,
		Log:          cfg.Log,
	})

	// Public auth screens still resolve the session so a logged-in
	// operator skips straight past them.
	e.GET("/login", authHandler.LoginPage, resolve)
	e.POST("/login", authHandler.Login, resolve)
	e.GET("/register", authHandler.RegisterPage, resolve)
	e.POST("/register", authHandler.Register, resolve)

	// --- Protected pages ---
	p := e.Group("", resolve, middleware.Require())

	p.GET("/", dashboardHandler.Dashboard)
	p.POST("/logout", authHandler.Logout)
	p.POST("/logout-all", authHandler.LogoutAll)

	p.GET("/categories", categoryHandler.List)
	p.GET("/categories/new", categoryHandler.NewPage)
	p.POST("/categories/new", categoryHandler.Create)
	p.GET("/categories/:id", categoryHandler.View)
	p.GET("/categories/:id/edit", categoryHandler.EditPage)
	p.POST("/categories/:id/edit", categoryHandler.Edit)
	p.POST("/categories/:id/delete", categoryHandler.Delete)

	p.GET("/users", userHandler.List)
	p.GET("/users/new", userHandler.NewPage)
	p.POST("/users/new", userHandler.Create)
	p.GET("/users/stats", userHandler.Stats)
	p.GET("/users/:id", userHandler.View)
	p.GET("/users/:id/edit", userHandler.EditPage)
	p.POST("/users/:id/edit", userHandler.Edit)
	p.GET("/users/:id/password", userHandler.PasswordPage)
	p.POST("/users/:id/password", userHandler.ChangePassword)
	p.POST("/users/:id/delete", userHandler.Delete)

	return e, nil
}
