package main

import (
	"fmt"
	"os"

	"fleet-service/internal/auth"
	"fleet-service/internal/client"
	"fleet-service/internal/config"
	"fleet-service/internal/db"
	httphandler "fleet-service/internal/http"
	"fleet-service/internal/http/middleware"
	"fleet-service/internal/logger"
	"fleet-service/internal/repository"
	"fleet-service/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	appLogger := logger.New(cfg.Environment)

	database, err := db.New(cfg, appLogger)
	if err != nil {
		appLogger.Fatal().Err(err).Msg("failed to connect database")
	}

	truckRepo := repository.NewTruckRepository(database)
	driverRepo := repository.NewDriverRepository(database)
	assignmentRepo := repository.NewAssignmentRepository(database)
	maintenanceRepo := repository.NewMaintenanceRepository(database)
	renewalLogRepo := repository.NewRenewalLogRepository(database)

	telematicsClient := client.NewTelematicsClient(cfg)

	assignmentService := service.NewAssignmentService(database, truckRepo, driverRepo, assignmentRepo, appLogger)
	maintenanceService := service.NewMaintenanceService(database, truckRepo, maintenanceRepo, appLogger)
	fleetService := service.NewFleetService(truckRepo, driverRepo, assignmentRepo, telematicsClient, appLogger)
	renewalService := service.NewRenewalService(database, truckRepo, renewalLogRepo, appLogger)
	registryService := service.NewRegistryService(truckRepo, driverRepo, appLogger)

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)

	handler := httphandler.NewHandler(assignmentService, maintenanceService, fleetService, renewalService, registryService, appLogger)
	authMiddleware := middleware.Auth(tokenParser)
	router := httphandler.NewRouter(handler, authMiddleware, cfg.Environment, appLogger)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	appLogger.Info().Str("addr", addr).Msg("starting fleet service")

	if err := router.Run(addr); err != nil {
		appLogger.Error().Err(err).Msg("failed to start server")
		os.Exit(1)
	}
}
