package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"github.com/MatheusCavalari/transaction-authorization-case/internal/adapter/http/controller"
	"github.com/MatheusCavalari/transaction-authorization-case/internal/adapter/http/router"
	"github.com/MatheusCavalari/transaction-authorization-case/internal/adapter/messaging"
	"github.com/MatheusCavalari/transaction-authorization-case/internal/adapter/repository/postgres"
	"github.com/MatheusCavalari/transaction-authorization-case/internal/config"
	"github.com/MatheusCavalari/transaction-authorization-case/internal/metrics"
	"github.com/MatheusCavalari/transaction-authorization-case/internal/usecase/services"
)

const consumerRestartDelay = 5 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	db, err := sql.Open("postgres", cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("open postgres connection: %v", err)
	}
	defer db.Close()

	pingCtx, cancelPing := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelPing()
	if err := db.PingContext(pingCtx); err != nil {
		log.Fatalf("ping postgres: %v", err)
	}

	if err := postgres.RunMigrations(pingCtx, db, cfg.MigrationsDir); err != nil {
		log.Fatalf("run migrations: %v", err)
	}

	store := postgres.NewStore(db)
	collector := metrics.NewCollector()

	ledgerService := services.NewLedgerService(store, collector)
	provisioningService := services.NewProvisioningService(store, cfg.DefaultCurrency, collector)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	consumer := messaging.NewAccountCreatedConsumer(cfg.AMQPURL, cfg.AccountCreatedQueue, provisioningService)
	go runConsumer(ctx, consumer)

	mux := router.New(controller.NewOperationsController(ledgerService), collector.Handler())
	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: mux,
	}

	go func() {
		log.Printf("http server listening on %s", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("http server shutdown: %v", err)
	}

	log.Println("server exited")
	os.Exit(0)
}

// runConsumer keeps the account-created consumer alive across broker hiccups
// until the context is cancelled.
func runConsumer(ctx context.Context, consumer *messaging.AccountCreatedConsumer) {
	for {
		err := consumer.Run(ctx)
		if ctx.Err() != nil {
			return
		}
		log.Printf("account created consumer stopped: %v (restarting in %s)", err, consumerRestartDelay)

		select {
		case <-ctx.Done():
			return
		case <-time.After(consumerRestartDelay):
		}
	}
}
