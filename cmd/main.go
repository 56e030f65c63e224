package main

import (
	"fmt"
	"os"

	"github.com/pulseboard/pulseboard-backend/internal/data/db"
	companyrepos "github.com/pulseboard/pulseboard-backend/internal/data/repos/company"
	metricrepos "github.com/pulseboard/pulseboard-backend/internal/data/repos/metrics"
	httpServer "github.com/pulseboard/pulseboard-backend/internal/http"
	httpH "github.com/pulseboard/pulseboard-backend/internal/http/handlers"
	httpMW "github.com/pulseboard/pulseboard-backend/internal/http/middleware"
	"github.com/pulseboard/pulseboard-backend/internal/pkg/logger"
	"github.com/pulseboard/pulseboard-backend/internal/services"
	"github.com/pulseboard/pulseboard-backend/internal/utils"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Fatal("Postgres init failed", "error", err)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Fatal("Postgres auto migration failed", "error", err)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up Repos from main...")
	companyRepo := companyrepos.NewCompanyRepo(thePG, log)
	departmentRepo := companyrepos.NewDepartmentRepo(thePG, log)
	profileRepo := companyrepos.NewProfileRepo(thePG, log)
	metricRepo := metricrepos.NewMetricRepo(thePG, log)
	formulaRepo := metricrepos.NewMetricFormulaRepo(thePG, log)
	dependencyRepo := metricrepos.NewMetricDependencyRepo(thePG, log)
	targetRepo := metricrepos.NewTargetRepo(thePG, log)
	dailyLogRepo := metricrepos.NewDailyLogRepo(thePG, log)

	// Services
	log.Info("Setting up Services from main...")
	authService := services.NewAuthService(thePG, companyRepo, profileRepo, log)
	companyService := services.NewCompanyService(thePG, companyRepo, log)
	departmentService := services.NewDepartmentService(thePG, departmentRepo, metricRepo, log)
	memberService := services.NewMemberService(thePG, profileRepo, departmentRepo, log)
	formulaService := services.NewFormulaService(thePG, metricRepo, formulaRepo, dependencyRepo, log)
	metricService := services.NewMetricService(thePG, metricRepo, dependencyRepo, formulaRepo, targetRepo, formulaService, log)
	targetService := services.NewTargetService(thePG, targetRepo, metricRepo, log)
	dailyLogService := services.NewDailyLogService(thePG, dailyLogRepo, metricRepo, profileRepo, log)

	// Handlers + middleware
	log.Info("Setting up Handlers from main...")
	authMiddleware := httpMW.NewAuthMiddleware(log, authService)
	routerConfig := httpServer.RouterConfig{
		Log:               log,
		AuthHandler:       httpH.NewAuthHandler(authService),
		AuthMiddleware:    authMiddleware,
		CompanyHandler:    httpH.NewCompanyHandler(companyService),
		DepartmentHandler: httpH.NewDepartmentHandler(departmentService),
		MemberHandler:     httpH.NewMemberHandler(memberService),
		MetricHandler:     httpH.NewMetricHandler(metricService, formulaService),
		FormulaHandler:    httpH.NewFormulaHandler(metricService),
		TargetHandler:     httpH.NewTargetHandler(targetService),
		DailyLogHandler:   httpH.NewDailyLogHandler(dailyLogService),
		HealthHandler:     httpH.NewHealthHandler(),
	}

	server := httpServer.NewServer(routerConfig)
	port := utils.GetEnv("PORT", "8080", log)
	log.Info("Starting server", "port", port)
	if err := server.Run(":" + port); err != nil {
		log.Fatal("Server exited", "error", err)
	}
}
