package main

import (
	"rosariello/config"
	"rosariello/di"
	"rosariello/shared/logger"
)

// @title La Casa del Rosariello API
// @version 1.0
// @description Reservation API for a single-room bed and breakfast.
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg := config.Get()

	logger.InitLogger()

	logger.SetLogLevel(cfg)

	http := di.InitializeService()
	http.Serve()
}
