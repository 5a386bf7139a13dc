package cmd

import (
	"context"
	"log"
	httpNet "net/http"
	"os"
	"os/signal"
	"syscall"
	"trading-dashboard/internal/delivery/http"
	"trading-dashboard/internal/repository"
	"trading-dashboard/internal/service"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Run the trading dashboard server",
	Run:   Start,
}

func Start(cmd *cobra.Command, args []string) {

	// Create a context that is canceled on interrupt signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appDep, err := NewAppDependency(ctx)
	if err != nil {
		log.Fatalf("Failed to create app dependency: %v", err)
	}

	var gormDB *gorm.DB
	if appDep.db != nil {
		gormDB = appDep.db.DB
	}
	repo := repository.NewRepository(appDep.cfg, gormDB, appDep.log)

	services := service.NewService(
		appDep.cfg,
		appDep.log,
		repo,
		appDep.cache,
		appDep.notifier,
	)
	httpHandler := http.NewHttpAPIHandler(ctx, appDep.echo, appDep.validator, services)

	poller := service.NewPoller(appDep.cfg, appDep.log, services)
	if err := poller.Start(ctx); err != nil {
		log.Fatalf("Failed to start poller: %v", err)
	}

	apiServer := NewHTTPServer(ctx, appDep, httpHandler)
	go func() {
		if err := apiServer.Start(); err != nil && err != httpNet.ErrServerClosed {
			log.Fatalf("Failed to start HTTP server: %v", err)
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	log.Println("Shutting down gracefully...")

	poller.Stop()

	if err := apiServer.Stop(); err != nil {
		log.Fatalf("Failed to stop HTTP server: %v", err)
	}

	if err := appDep.Close(); err != nil {
		log.Fatalf("Failed to close app dependency: %v", err)
	}
}
