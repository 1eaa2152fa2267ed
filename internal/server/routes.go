package server

import (
	"net/http"
	"runtime"
	"time"

	"eyeglaze/internal/auth"
	"eyeglaze/internal/user"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
)

var startTime = time.Now()

func (s *Server) RegisterRoutes() http.Handler {
	e := echo.New()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"https://*", "http://*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	e.Use(LoggerMiddleware)

	// Public routes
	e.POST("/register", auth.RegisterHandler)
	e.POST("/login", auth.LoginHandler)
	e.GET("/health", s.healthHandler)
	e.GET("/health/system", s.systemHealthHandler)

	// Protected API routes
	api := e.Group("/api")
	api.Use(auth.JwtAuthMiddleware)

	// Analysis routes
	api.POST("/analysis", user.SubmitAnalysisHandler)
	api.GET("/analysis/:username", user.GetUserAnalysesHandler)
	api.GET("/analysis/:username/latest", user.GetLatestAnalysisHandler)
	api.GET("/analysis/:username/count", user.GetAnalysisCountHandler)

	// Live analysis feed for the authenticated user
	api.GET("/analysis/ws", user.AnalysisFeedHandler)

	// Recommendation routes
	api.GET("/recommendations/:username", user.GetRecommendationsHandler)
	api.GET("/recommendations/:username/summary", user.GetEyeHealthSummaryHandler)
	api.GET("/recommendations/:username/history", user.GetRecommendationHistoryHandler)

	return e
}

func (s *Server) healthHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, s.db.Health())
}

// systemHealthHandler reports a snapshot of host resources alongside
// process uptime, for operational dashboards.
func (s *Server) systemHealthHandler(c echo.Context) error {
	stats := map[string]interface{}{
		"uptime_seconds": int(time.Since(startTime).Seconds()),
		"goroutines":     runtime.NumGoroutine(),
	}

	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		stats["cpu_percent"] = percents[0]
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		stats["memory_used_percent"] = vm.UsedPercent
		stats["memory_total_mb"] = vm.Total / 1024 / 1024
	}
	if info, err := host.Info(); err == nil {
		stats["hostname"] = info.Hostname
		stats["os"] = info.OS
		stats["host_uptime_seconds"] = info.Uptime
	}

	return c.JSON(http.StatusOK, stats)
}

// LoggerMiddleware attaches a request-scoped logger carrying the request ID.
func LoggerMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := c.Request().Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set("request_id", requestID)
		c.Response().Header().Set("X-Request-ID", requestID)

		logger := log.With().Str("request_id", requestID).Logger()

		c.Set("logger", &logger)

		return next(c)
	}
}
