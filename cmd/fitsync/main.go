package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/fitsync/fitsync/internal/adapter"
	"github.com/fitsync/fitsync/internal/client"
	"github.com/fitsync/fitsync/internal/config"
	"github.com/fitsync/fitsync/internal/logger"
	"github.com/fitsync/fitsync/internal/netmon"
	"github.com/fitsync/fitsync/internal/service"
	"github.com/fitsync/fitsync/internal/store"
	"github.com/fitsync/fitsync/internal/utils"
	"github.com/fitsync/fitsync/internal/workers"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	log := logger.NewClientLogger("fitsync")
	cfg, err := config.GetClientConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}

	remote, err := adapter.NewHTTPRemoteAdapter(cfg.Adapter, cfg.App, log)
	if err != nil {
		log.Fatal().Err(err).Msg("create remote adapter")
	}

	localStorage, err := store.NewClientStorages(cfg.Storage, log)
	if err != nil {
		log.Fatal().Err(err).Msg("create local storage")
	}

	monitor := netmon.NewMonitor(remote, cfg.Workers.ProbeInterval, log)
	services := service.NewClientServices(localStorage, remote, monitor, cfg, utils.NewClock(), log)
	background := workers.New(monitor, services.SyncJob, cfg.Workers, log)

	app, err := client.NewApp(services, background, log)
	if err != nil {
		log.Fatal().Err(err).Msg("init client app error")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err = app.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("client run error")
	}
}

func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}
	if buildDate == "" {
		buildDate = "N/A"
	}
	if buildCommit == "" {
		buildCommit = "N/A"
	}

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)
}
