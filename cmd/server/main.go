// Package main starts the registro HTTP server: a document store persisted
// to a file or a Postgres database, served with json-server compatible query
// semantics.
package main

import (
	"cmp"
	"context"
	"fmt"

	nethttp "net/http"

	"go.uber.org/zap"

	"github.com/ponto-app/registro/internal/config"
	"github.com/ponto-app/registro/internal/logger"
	"github.com/ponto-app/registro/internal/server/handler/http"
	"github.com/ponto-app/registro/internal/store"
	"github.com/ponto-app/registro/internal/store/substrate"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	options := config.Parse()

	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(options.LogLevel); err != nil {
		log.Log.Fatal("failed to init logger", zap.Error(err))
	}
	zapLogger := log.Log

	// Pick the persistence substrate: Postgres when a DSN is configured,
	// otherwise a local JSON file.
	var sub substrate.Substrate
	if options.DatabaseDSN != "" {
		pg, err := substrate.OpenPostgres(options.DatabaseDSN, "appdb")
		if err != nil {
			zapLogger.Fatal("cannot init database", zap.Error(err))
		}
		defer pg.Close()
		sub = pg
	} else {
		sub = substrate.NewFile(options.StorePath)
	}

	var seed store.SeedFunc
	if options.SeedPath != "" {
		seed = store.FileSeed(options.SeedPath)
	}

	st, err := store.New(context.Background(), sub, seed, zapLogger)
	if err != nil {
		zapLogger.Fatal("cannot init store", zap.Error(err))
	}

	docHandler := &http.DocumentHandler{Store: st}
	actionHandler := &http.ActionHandler{Log: zapLogger}
	router := http.NewRouter(docHandler, actionHandler, zapLogger)

	server := &nethttp.Server{
		Addr:    options.Port,
		Handler: router,
	}

	zapLogger.Info("starting HTTP server", zap.String("addr", options.Port))
	if err := server.ListenAndServe(); err != nil {
		zapLogger.Fatal("failed to start HTTP server", zap.Error(err))
	}
}
