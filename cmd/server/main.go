package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/MKhiriev/go-trace-keeper/internal/config"
	"github.com/MKhiriev/go-trace-keeper/internal/handler"
	"github.com/MKhiriev/go-trace-keeper/internal/logger"
	"github.com/MKhiriev/go-trace-keeper/internal/metrics"
	"github.com/MKhiriev/go-trace-keeper/internal/server"
	"github.com/MKhiriev/go-trace-keeper/internal/service"
	"github.com/MKhiriev/go-trace-keeper/internal/sqltrace"
	"github.com/MKhiriev/go-trace-keeper/internal/store"
	"github.com/MKhiriev/go-trace-keeper/internal/tracelog"
	"github.com/MKhiriev/go-trace-keeper/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	info := models.NewAppBuildInfo(buildVersion, buildDate, buildCommit)
	printBuildInfo(info)

	log := logger.NewLogger("go-trace-server")
	log.Info().Stringer("build", info).Msg("starting")
	cfg, err := config.GetStructuredConfig(os.Args[1:])
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}

	log.Debug().Any("config", cfg).Msg("received configs")

	ctx := context.Background()

	var (
		metricsHandler http.Handler
		emitterOpts    []tracelog.EmitterOption
		sqlOpts        []sqltrace.Option
	)
	if cfg.Metrics.IsEnabled() {
		collector := metrics.NewCollector(cfg.Metrics.Namespace)
		metricsHandler = collector.Handler()
		emitterOpts = append(emitterOpts, tracelog.WithObserver(collector))
		sqlOpts = append(sqlOpts, sqltrace.WithObserver(collector))
	}

	db, err := store.Connect(ctx, cfg, log, sqlOpts...)
	if err != nil {
		log.Fatal().Err(err).Msg("error connecting to database")
	}
	defer db.Close()

	if err = db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("error applying migrations")
	}

	emitter := tracelog.NewEmitter(log, log, emitterOpts...)
	interceptor := tracelog.NewInterceptor(cfg.Logging, emitter)

	repositories := store.NewRepositories(db, log)
	services := service.NewServices(repositories, interceptor, log)

	handlers, err := handler.NewHandlers(services, interceptor, metricsHandler, cfg.Server, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating handlers")
	}

	srv, err := server.NewServer(handlers, cfg.Server, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating server")
	}

	if err = srv.Run(ctx); err != nil {
		log.Error().Err(err).Msg("server stopped with error")
		db.Close()
		os.Exit(1)
	}
}

func printBuildInfo(info models.AppBuildInfo) {
	version, date, commit := info.BuildVersion(), info.BuildDate(), info.BuildCommit()
	if version == "" {
		version = "N/A"
	}

	if date == "" {
		date = "N/A"
	}

	if commit == "" {
		commit = "N/A"
	}

	fmt.Printf("Build version: %s\n", version)
	fmt.Printf("Build date: %s\n", date)
	fmt.Printf("Build commit: %s\n", commit)
}
