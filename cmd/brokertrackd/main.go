package main

import (
	"context"
	"log/slog"

	"brokertrack-backend/lib/configutil"
	"brokertrack-backend/lib/serviceutil"
	"brokertrack-backend/lib/telemetry"
	"brokertrack-backend/services/tracker"

	"github.com/go-chi/chi/v5"
)

func main() {
	config, err := configutil.ReadConfig[Config]("config.json5")
	if err != nil {
		serviceutil.Fatal("failed to read config", err)
	}
	telemetry.InitSlog(config.Debug)

	ctx := serviceutil.SignalContext()

	err = telemetry.SetupFromEnv(ctx, "brokertrackd")
	if err != nil {
		slog.Warn("telemetry export disabled", "err", err)
	} else {
		defer telemetry.Shutdown(context.Background())
		telemetry.InstrumentPerfStats(ctx)
	}

	slog.Info("opening database...")
	database, err := config.Database.Open()
	if err != nil {
		serviceutil.Fatal("failed to open database", err)
	}
	defer database.Close()

	service := tracker.NewService(database, tracker.Options{
		Portal: config.Portal.Client(),
	})

	go service.ScrapeDaemon(ctx, config.ScrapeInterval())

	port := config.Port
	if port == 0 {
		port = 8220
	}
	router := chi.NewRouter()
	router.Mount("/api", service.Router())
	serviceutil.StartHttpServer(port, router)
}
