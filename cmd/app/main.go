package main

import (
	"github.com/rs/zerolog/log"

	"wellness/config"
	"wellness/di"
	"wellness/helper"
	"wellness/shared/logger"
)

// @title Wellness Booking API
// @version 1.0
// @description Session booking engine for the sauna and ice bath studio.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	logger.InitLogger()

	cfg := config.Get()

	logger.SetLogLevel(cfg)

	if cfg.DB.Postgres.AutoMigrate {
		if err := helper.Up(cfg); err != nil {
			log.Fatal().Err(err).Msg("Failed to migrate database")
		}
	}

	http := di.InitializeService()
	http.Serve()
}
