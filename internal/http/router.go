package http

import (
	"github.com/gin-gonic/gin"
	httpH "github.com/pulseboard/pulseboard-backend/internal/http/handlers"
	httpMW "github.com/pulseboard/pulseboard-backend/internal/http/middleware"
	"github.com/pulseboard/pulseboard-backend/internal/pkg/logger"
)

type RouterConfig struct {
	Log *logger.Logger

	AuthHandler    *httpH.AuthHandler
	AuthMiddleware *httpMW.AuthMiddleware

	CompanyHandler    *httpH.CompanyHandler
	DepartmentHandler *httpH.DepartmentHandler
	MemberHandler     *httpH.MemberHandler
	MetricHandler     *httpH.MetricHandler
	FormulaHandler    *httpH.FormulaHandler
	TargetHandler     *httpH.TargetHandler
	DailyLogHandler   *httpH.DailyLogHandler

	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.Default()
	r.Use(httpMW.CORS())
	r.Use(httpMW.RequestLogger(cfg.Log))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	{
		// Auth (public)
		if cfg.AuthHandler != nil {
			api.POST("/register", cfg.AuthHandler.Register)
			api.POST("/login", cfg.AuthHandler.Login)
		}
	}

	protected := api.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		// Me
		if cfg.MemberHandler != nil {
			protected.GET("/me", cfg.MemberHandler.GetMe)
		}

		// Company
		if cfg.CompanyHandler != nil {
			protected.GET("/company", cfg.CompanyHandler.Get)
			protected.PATCH("/company", cfg.CompanyHandler.Update)
		}

		// Departments
		if cfg.DepartmentHandler != nil {
			protected.GET("/departments", cfg.DepartmentHandler.List)
			protected.POST("/departments", cfg.DepartmentHandler.Create)
			protected.PATCH("/departments/:id", cfg.DepartmentHandler.Rename)
			protected.DELETE("/departments/:id", cfg.DepartmentHandler.Delete)
		}

		// Members
		if cfg.MemberHandler != nil {
			protected.GET("/members", cfg.MemberHandler.List)
			protected.POST("/members", cfg.MemberHandler.Add)
			protected.PATCH("/members/:id", cfg.MemberHandler.Update)
		}

		// Metrics + formulas
		if cfg.MetricHandler != nil {
			protected.GET("/metrics", cfg.MetricHandler.List)
			protected.POST("/metrics", cfg.MetricHandler.Create)
			protected.GET("/metrics/:id", cfg.MetricHandler.Get)
			protected.PATCH("/metrics/:id", cfg.MetricHandler.Update)
			protected.POST("/metrics/:id/toggle", cfg.MetricHandler.ToggleActive)
			protected.DELETE("/metrics/:id", cfg.MetricHandler.Delete)
			protected.GET("/metrics/:id/formula-versions", cfg.MetricHandler.ListFormulaVersions)
		}
		if cfg.FormulaHandler != nil {
			protected.POST("/formulas/validate", cfg.FormulaHandler.Validate)
		}

		// Targets
		if cfg.TargetHandler != nil {
			protected.GET("/targets", cfg.TargetHandler.List)
			protected.PUT("/targets", cfg.TargetHandler.Set)
			protected.DELETE("/targets/:id", cfg.TargetHandler.Deactivate)
		}

		// Daily logs
		if cfg.DailyLogHandler != nil {
			protected.GET("/daily-logs", cfg.DailyLogHandler.ListMine)
			protected.PUT("/daily-logs", cfg.DailyLogHandler.Submit)
		}
	}

	return r
}
