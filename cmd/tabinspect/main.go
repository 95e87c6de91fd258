package main

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/tabinspect/internal/cli"
	"github.com/JonMunkholm/tabinspect/internal/config"
	"github.com/JonMunkholm/tabinspect/internal/logging"
)

func main() {
	// Values already in the environment win over .env
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format, os.Stderr)

	os.Exit(cli.Execute(cfg))
}
