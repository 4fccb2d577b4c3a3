// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"marketing-maas/internal/agent"
	grpc_api "marketing-maas/internal/api/grpc"
	http_api "marketing-maas/internal/api/http"
	"marketing-maas/internal/config"
	http_infra "marketing-maas/internal/infra/http"
	"marketing-maas/internal/infra/memory"
	"marketing-maas/internal/tracing"
	"marketing-maas/internal/usecase"
	"marketing-maas/internal/workers/content"
	"marketing-maas/internal/workers/publish"
	"marketing-maas/internal/workers/trend"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	otelgrpc "go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// 2. Initialize logger and tracer
	level, _ := cfg.SlogLevel()
	instanceID := uuid.NewString()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})).
		With("service", cfg.ServiceName, "instance_id", instanceID)
	slog.SetDefault(logger)

	tracerShutdown, err := tracing.InitTracer(cfg.ServiceName, log.Writer())
	if err != nil {
		log.Fatalf("failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tracerShutdown(context.Background()); err != nil {
			log.Printf("failed to shutdown tracer: %v", err)
		}
	}()

	log.Printf("Starting %s instance %s...", cfg.ServiceName, instanceID)

	// 3. Create root context for lifecycle management
	rootCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 4. Setup graceful shutdown
	setupGracefulShutdown(cancel)

	// 5. Instantiate storage and workers
	campaignRepo := memory.NewCampaignRepository(logger)

	var publisher publish.Publisher
	if cfg.SyncWebhookURL != "" {
		publisher = http_infra.NewWebhookPublisher(http_infra.WebhookConfig{
			URL:        cfg.SyncWebhookURL,
			Timeout:    cfg.SyncWebhookTimeout,
			MaxRetries: cfg.SyncWebhookMaxRetries,
			Backoff:    cfg.SyncWebhookBackoff,
		}, logger)
	}

	trendDetector := trend.NewDetector(trend.Config{
		PollInterval:        cfg.TrendPollInterval,
		ConfidenceThreshold: cfg.TrendConfidenceThreshold,
	}, logger)
	contentGenerator := content.NewGenerator(content.Config{
		QualityThreshold: cfg.ContentQualityThreshold,
	}, logger)
	syncer := publish.NewSyncer(campaignRepo, publisher, logger)

	// 6. Register workers and start the dispatcher
	dispatcher := agent.New(agent.WithLogger(logger))
	dispatcher.Register(trendDetector.ID(), trendDetector)
	dispatcher.Register(contentGenerator.ID(), contentGenerator)
	dispatcher.Register(syncer.ID(), syncer)

	if err := dispatcher.StartAll(rootCtx); err != nil {
		// A worker that failed to start stays registered but idle; the rest keep running.
		logger.Error("some workers failed to start", "error", err)
	}

	campaignService := usecase.NewCampaignService(campaignRepo, dispatcher, cfg.CampaignSettleDelay, logger)
	campaignHandler := http_api.NewCampaignHandler(campaignService, logger)

	// 7. Register routes and metrics endpoint
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	campaignHandler.RegisterRoutes(mux)

	// 8. Start HTTP API server with CORS middleware
	log.Printf("Starting HTTP API server on %s", cfg.HttpListenAddr)
	server := &http.Server{
		Addr:    cfg.HttpListenAddr,
		Handler: http_api.CORSMiddleware(mux),
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	// 9. Start the gRPC bridge
	lis, err := net.Listen("tcp", cfg.GrpcListenAddr)
	if err != nil {
		log.Fatalf("Failed to listen for gRPC: %v", err)
	}
	grpcServer := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
	)
	grpc_api.RegisterDispatcherServer(grpcServer, grpc_api.NewServer(dispatcher, logger))

	log.Printf("gRPC bridge listening on %s", cfg.GrpcListenAddr)
	go func() {
		if err := grpcServer.Serve(lis); err != nil {
			log.Fatalf("gRPC server failed: %v", err)
		}
	}()

	// 10. Block until shutdown
	<-rootCtx.Done()
	log.Println("Shutting down application gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	// Stop the ingress first so nothing new is enqueued while workers stop.
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown failed: %v", err)
	}
	grpcServer.GracefulStop()

	if err := dispatcher.StopAll(shutdownCtx); err != nil {
		log.Printf("Dispatcher shutdown failed: %v", err)
	}

	log.Println("Application shut down.")
}

func setupGracefulShutdown(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		log.Printf("Received signal %v. Initiating graceful shutdown...", sig)
		cancel()
	}()
}
