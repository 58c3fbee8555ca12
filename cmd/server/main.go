package main

import (
	"log/slog"
	"os"

	_ "issueboard/docs"
	"issueboard/internal/config"
	"issueboard/internal/server"
)

// @title           Issue Board Gateway API
// @version         1.0
// @description     Board views, issue mutations, exports and notifications over the issue-tracking backend.

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the backend access token

// @schemes http
func main() {
	cfg := config.Load()
	logger := cfg.NewLogger()
	slog.SetDefault(logger)

	s, err := server.Init(cfg, logger)
	if err != nil {
		logger.Error("server initialization failed", "error", err)
		os.Exit(1)
	}

	s.Run()
}
