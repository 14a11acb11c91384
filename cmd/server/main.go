package main

import (
	"tasktracker/internal/config"
	"tasktracker/internal/logger"
	"tasktracker/internal/server"
)

// @title           Task Tracker API
// @version         1.0
// @description     Personal task tracking with JWT authentication and task comments.

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @schemes http
func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogJSON)

	s, err := server.Init(cfg)
	if err != nil {
		logger.Fatal("❌ Server initialization failed", "error", err)
	}

	s.Run()
}
