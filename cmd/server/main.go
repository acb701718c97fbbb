package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"production-simulator/config"
	"production-simulator/internal/api"
	"production-simulator/internal/broker"
	"production-simulator/internal/catalog"
	"production-simulator/internal/service"
	"production-simulator/internal/snapshot"
	"production-simulator/internal/util"
	"production-simulator/internal/worker"

	"github.com/gin-gonic/gin"
)

func main() {

	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting production simulator")

	tp, err := util.InitTracer("production-simulator", cfg.Observ.JaegerEndpoint)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down tracer: %v", err)
		}
	}()

	var snapshots *snapshot.Store
	if cfg.Redis.Addr != "" {
		snapshots, err = snapshot.NewStore(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer snapshots.Close()
		log.Println("Snapshot store connected")
	}

	producer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicEvents)
	defer producer.Close()
	log.Println("Kafka producer initialized")

	eventPublisher := broker.NewEventPublisher(producer)

	catalogStore := catalog.NewStore()
	simulationService := service.NewSimulationService(catalogStore, eventPublisher, snapshots)

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	var replenishmentWorker *worker.ReplenishmentWorker
	if cfg.Simulation.AutoReplenish {
		consumer := broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicEvents, cfg.Kafka.ConsumerGroup)
		replenishmentWorker = worker.NewReplenishmentWorker(consumer, simulationService)
		go func() {
			if err := replenishmentWorker.Start(workerCtx); err != nil {
				log.Printf("Replenishment worker error: %v", err)
			}
		}()
	}

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	handler := api.NewHandler(simulationService, catalogStore)
	handler.SetupRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting HTTP server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	workerCancel()
	if replenishmentWorker != nil {
		replenishmentWorker.Stop()
	}

	log.Println("Server exited")
}
