package main

import (
	"flag"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/fsiwi-hka/NextcloudRegisterIWI/internal/config"
	"github.com/fsiwi-hka/NextcloudRegisterIWI/internal/logger"
	"github.com/fsiwi-hka/NextcloudRegisterIWI/internal/router"
	"github.com/fsiwi-hka/NextcloudRegisterIWI/internal/setup"
)

func main() {
	var configFolder string
	flag.StringVar(&configFolder, "config_folder", "config", "path to folder with configs")
	flag.Parse()

	// .env is optional; the admin credential may come from it
	_ = godotenv.Load()

	cfg := config.MustLoad(configFolder)
	logger.Initialize(cfg.Public.LogLevel, cfg.Public.LogJSON)

	deps := setup.SetupDependencies(cfg)
	r := router.New(deps)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Public.Port
	}

	slog.Info("server started", "port", port)
	if err := http.ListenAndServe(":"+port, r); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
