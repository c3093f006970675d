package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/MKhiriev/go-trace-keeper/internal/adapter"
	"github.com/MKhiriev/go-trace-keeper/internal/config"
	"github.com/MKhiriev/go-trace-keeper/internal/logger"
	"github.com/MKhiriev/go-trace-keeper/internal/tracelog"
	"github.com/MKhiriev/go-trace-keeper/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

// call is one smoke request against the demo API.
type call struct {
	name string
	run  func(ctx context.Context, a adapter.ServerAdapter) (any, error)
}

func main() {
	info := models.NewAppBuildInfo(buildVersion, buildDate, buildCommit)
	printBuildInfo(info)

	log := logger.NewLogger("go-trace-client")
	log.Info().Stringer("build", info).Msg("starting")
	cfg, err := config.GetStructuredConfig(os.Args[1:])
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}

	serverAdapter, err := adapter.NewHTTPServerAdapter(adapter.Config{
		BaseURL: cfg.Server.HTTPAddress,
		Timeout: cfg.Server.RequestTimeout.Std(),
	}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("create server adapter")
	}

	failed := 0
	for _, c := range smokeCalls() {
		ctx := tracelog.WithTraceID(context.Background(), uuid.NewString())

		result, err := c.run(ctx, serverAdapter)
		if err != nil && !errors.Is(err, adapter.ErrConflict) {
			failed++
			log.Error().Err(err).Str("call", c.name).Str("trace_id", tracelog.TraceIDFromContext(ctx)).Msg("smoke call failed")
			continue
		}
		log.Info().Str("call", c.name).Str("trace_id", tracelog.TraceIDFromContext(ctx)).Any("result", result).Msg("smoke call done")
	}

	if failed > 0 {
		log.Error().Int("failed", failed).Msg("smoke run finished with failures")
		os.Exit(1)
	}
}

func smokeCalls() []call {
	return []call{
		{"health", func(ctx context.Context, a adapter.ServerAdapter) (any, error) { return a.Health(ctx) }},
		{"deferred", func(ctx context.Context, a adapter.ServerAdapter) (any, error) { return a.Deferred(ctx) }},
		{"hello", func(ctx context.Context, a adapter.ServerAdapter) (any, error) { return a.Hello(ctx, "World") }},
		{"greet", func(ctx context.Context, a adapter.ServerAdapter) (any, error) { return a.Greet(ctx, "Zhang San", 25) }},
		{"form", func(ctx context.Context, a adapter.ServerAdapter) (any, error) {
			return a.Submit(ctx, "zhangsan", "secret123")
		}},
		{"json", func(ctx context.Context, a adapter.ServerAdapter) (any, error) {
			return a.Echo(ctx, models.Person{Name: "Zhang San", Email: "zhangsan@example.com", Age: 25})
		}},
		{"complex", func(ctx context.Context, a adapter.ServerAdapter) (any, error) {
			return a.Complex(ctx, "42", "update", map[string]any{"key": "value"})
		}},
		{"stream", func(ctx context.Context, a adapter.ServerAdapter) (any, error) { return a.Stream(ctx, 5) }},
		{"register", func(ctx context.Context, a adapter.ServerAdapter) (any, error) {
			return a.Register(ctx, models.RegisterRequest{Login: "smoke", Name: "Smoke Test", Password: "smoke-password"})
		}},
		{"find user", func(ctx context.Context, a adapter.ServerAdapter) (any, error) { return a.FindUser(ctx, "smoke") }},
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
