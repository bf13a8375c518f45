package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"storefront/internal/config"

	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	app, err := NewApp(cfg)
	if err != nil {
		log.Fatalf("Failed to create app: %v", err)
	}
	defer app.Close()

	app.Log.Info("starting server",
		zap.String("port", cfg.Server.Port),
		zap.String("env", cfg.App.Env),
		zap.String("database", cfg.Database.Driver))

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Fiber.Listen(cfg.Server.Port); err != nil {
			app.Log.Fatal("server failed to start", zap.Error(err))
		}
	}()

	<-quit
	app.Log.Info("shutting down server")

	if err := app.Fiber.ShutdownWithTimeout(cfg.Server.ShutdownTimeout); err != nil {
		app.Log.Error("error during Fiber shutdown", zap.Error(err))
	}
	app.Log.Info("server gracefully stopped")
}
