package main

import (
	"log/slog"
	"os"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/vocalysis/backend/internal/api"
	"github.com/vocalysis/backend/internal/batch"
	"github.com/vocalysis/backend/internal/config"
	"github.com/vocalysis/backend/internal/pipeline"
	"github.com/vocalysis/backend/internal/queue"
	"github.com/vocalysis/backend/internal/queue/workers"
	"github.com/vocalysis/backend/internal/tempstore"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	uploads, err := tempstore.New(cfg.Upload.BaseDir)
	if err != nil {
		slog.Error("failed to prepare upload dir", "error", err)
		os.Exit(1)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	batches := batch.NewStore(rdb, time.Duration(cfg.Upload.BatchTTLHrs)*time.Hour)

	analyzer := pipeline.New(pipeline.Options{
		STT:            api.BuildSTT(cfg.STT),
		Grammar:        api.BuildGrammar(cfg.Grammar),
		Sentiment:      api.BuildSentiment(cfg.Sentiment),
		Workers:        cfg.Pipeline.Workers,
		AdapterTimeout: time.Duration(cfg.Pipeline.AdapterTimeout) * time.Second,
	})

	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
		asynq.Config{
			Concurrency: cfg.Pipeline.Workers,
		},
	)

	registry := queue.NewHandlersRegistry()

	analyzeWorker := workers.NewAnalyzeWorker(analyzer, batches, uploads)
	registry.Register(queue.TypeBatchAnalyze, asynq.HandlerFunc(analyzeWorker.ProcessTask))

	slog.Info("starting worker", "concurrency", cfg.Pipeline.Workers)
	if err := srv.Run(registry.Mux()); err != nil {
		slog.Error("worker error", "error", err)
		os.Exit(1)
	}
}
