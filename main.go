package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"brandpulse/analyzer"
	"brandpulse/api"
	"brandpulse/common"
	"brandpulse/config"
	"brandpulse/intake"
	"brandpulse/jobs"
	"brandpulse/logger"
	"brandpulse/shared/kafka"
	"brandpulse/worker"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadServer()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	port := flag.String("port", cfg.Port, "HTTP listen port")
	workers := flag.Int("workers", cfg.WorkerCount, "Number of analysis workers")
	flag.Parse()

	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	defer func() { _ = log.Sync() }()

	if err := run(cfg, *port, *workers, log); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
}

func run(cfg *config.ServerConfig, port string, workers int, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rdb, err := jobs.Connect(ctx, cfg.RedisURL)
	if err != nil {
		return err
	}
	defer rdb.Close()
	store := jobs.NewStore(rdb, cfg.QueueName, cfg.JobTTL)

	var cohereOpts []analyzer.CohereOption
	if cfg.CohereBaseURL != "" {
		cohereOpts = append(cohereOpts, analyzer.WithCohereBaseURL(cfg.CohereBaseURL))
	}
	cohereAnalyzer, err := analyzer.NewCohereAnalyzer(cfg.CohereAPIKey, cfg.CohereModel, cohereOpts...)
	if err != nil {
		return err
	}
	log.Info("cohere analyzer ready", zap.String("model", cohereAnalyzer.Model()))
	var a analyzer.Analyzer = analyzer.NewRetrying(cohereAnalyzer, config.MaxAnalyzeAttempts, log)
	a = analyzer.NewCached(a, rdb, cfg.CacheTTL, log)

	// Optional side effects: S3 archive and Kafka events/intake
	var poolOpts []worker.Option
	if cfg.ArchiveEnabled() {
		s3Client, err := common.NewS3(ctx, common.S3Config{
			Region:       cfg.S3Region,
			Profile:      cfg.S3Profile,
			UsePathStyle: cfg.S3UsePathStyle,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize S3: %w", err)
		}
		poolOpts = append(poolOpts, worker.WithArchiver(worker.NewS3Archiver(s3Client, cfg.S3Bucket, cfg.S3Prefix)))
		log.Info("archiving results to S3", zap.String("bucket", cfg.S3Bucket), zap.String("prefix", cfg.S3Prefix))
	}

	if cfg.KafkaEnabled() {
		producer, err := kafka.NewEventProducer(cfg.KafkaBrokers, cfg.KafkaEventsTopic, log)
		if err != nil {
			return err
		}
		defer producer.Close()
		poolOpts = append(poolOpts, worker.WithPublisher(producer))

		consumer, err := kafka.NewConsumer(kafka.ConsumerConfig{
			Brokers: cfg.KafkaBrokers,
			Topic:   cfg.KafkaRequestsTopic,
			GroupID: cfg.KafkaGroupID,
			Handler: intake.NewRequestHandler(store, log),
			Logger:  log,
		})
		if err != nil {
			return fmt.Errorf("failed to create kafka consumer: %w", err)
		}
		defer consumer.Close()
		if err := consumer.Start(ctx); err != nil {
			return fmt.Errorf("failed to start kafka consumer: %w", err)
		}
	}

	pool := worker.NewPool(store, a, workers, log, poolOpts...)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		pool.Run(ctx)
	}()

	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           api.NewRouter(store, log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting API server",
			zap.String("addr", srv.Addr),
			zap.String("queue", cfg.QueueName),
			zap.Int("workers", workers))
		log.Info("API endpoints available: POST /api/v1/analyze, GET /api/v1/results/:job_id, GET /api/health, GET /metrics")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			stop()
			wg.Wait()
			return err
		}
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown", zap.Error(err))
	}
	stop()
	wg.Wait()
	return nil
}
