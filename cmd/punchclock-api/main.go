// @title         Punchclock API
// @version       0.1.0
// @description   Punch ingestion, attendance and work-hours reports

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"punchclock/internal/platform/config"
	"punchclock/internal/platform/logger"
	phttp "punchclock/internal/platform/net/http"
	"punchclock/internal/platform/store"

	"punchclock/internal/services/api"
)

func main() {
	root := config.New()
	apiCfg := root.Prefix("CORE_API_")

	// bring up logging early
	l := logger.Get()

	// postgres always, clickhouse when SERVICE_CLICKHOUSE_DBURL is set
	st, err := store.Open(
		context.Background(),
		store.ConfigFromEnv(root, "api"),
		store.WithLogger(*logger.Get()),
	)
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	// http server (reads CORE_API_API_PORT / CORE_API_SHUTDOWN_GRACE)
	srv := phttp.NewServer(apiCfg)

	err = api.Mount(
		srv.Router(),
		api.Options{
			Config:         root,
			Store:          st,
			Logger:         l,
			EnableSwagger:  apiCfg.MayBool("SWAGGER", true),
			EnableProfiler: apiCfg.MayBool("PROFILER", false),
		},
	)
	if err != nil {
		l.Panic().Err(err).Msg("api.Mount failed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := srv.Run(ctx); err != nil {
		l.Panic().Err(err).Msg("http server stopped")
	}
}
