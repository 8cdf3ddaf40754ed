package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/vocalysis/backend/internal/analysis/grammar"
	"github.com/vocalysis/backend/internal/analysis/sentiment"
	"github.com/vocalysis/backend/internal/analysis/stt"
	"github.com/vocalysis/backend/internal/api/handlers"
	"github.com/vocalysis/backend/internal/api/middleware"
	"github.com/vocalysis/backend/internal/batch"
	"github.com/vocalysis/backend/internal/config"
	"github.com/vocalysis/backend/internal/pipeline"
	"github.com/vocalysis/backend/internal/queue"
	"github.com/vocalysis/backend/internal/tempstore"
)

type Router struct {
	mux   *chi.Mux
	redis *redis.Client
	cfg   *config.Config

	uploads *tempstore.Store
}

func NewRouter(rdb *redis.Client, cfg *config.Config, uploads *tempstore.Store) *Router {
	return &Router{
		mux:     chi.NewRouter(),
		redis:   rdb,
		cfg:     cfg,
		uploads: uploads,
	}
}

func (rt *Router) Setup() http.Handler {
	r := rt.mux

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS([]string{"*"}))

	rl := middleware.NewRateLimiter(5, 10)
	r.Use(rl.Limit)

	// Health endpoints
	health := handlers.NewHealthHandler(rt.redis)
	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)

	r.Get("/", handlers.Index)

	analyzer := pipeline.New(pipeline.Options{
		STT:            BuildSTT(rt.cfg.STT),
		Grammar:        BuildGrammar(rt.cfg.Grammar),
		Sentiment:      BuildSentiment(rt.cfg.Sentiment),
		Workers:        rt.cfg.Pipeline.Workers,
		AdapterTimeout: time.Duration(rt.cfg.Pipeline.AdapterTimeout) * time.Second,
	})

	var batches *batch.Store
	var queueClient *queue.Client
	if rt.redis != nil {
		batches = batch.NewStore(rt.redis, time.Duration(rt.cfg.Upload.BatchTTLHrs)*time.Hour)
		queueClient = queue.NewClient(rt.cfg.Redis)
	}

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		analyzeH := handlers.NewAnalyzeHandler(analyzer, rt.uploads, batches, queueClient, rt.cfg.Upload.MaxMemoryMB)
		r.Post("/analyze", analyzeH.Analyze)

		batchH := handlers.NewBatchHandler(batches)
		r.Route("/batches", func(r chi.Router) {
			r.Get("/{id}", batchH.Get)
			r.Get("/{id}/export", batchH.ExportCSV)
		})
	})

	return r
}

// BuildSTT selects the transcription backend from config.
func BuildSTT(cfg config.STTConfig) stt.Provider {
	switch cfg.Backend {
	case "local":
		return stt.NewLocal(stt.LocalConfig{BaseURL: cfg.LocalBaseURL})
	default:
		return stt.NewOpenAI(stt.OpenAIConfig{
			APIKey:  cfg.OpenAIKey,
			BaseURL: cfg.OpenAIBaseURL,
			Model:   cfg.OpenAIModel,
		})
	}
}

// BuildGrammar selects the grammar backend from config.
func BuildGrammar(cfg config.GrammarConfig) grammar.Checker {
	switch cfg.Backend {
	case "openai":
		return grammar.NewOpenAIChecker(grammar.OpenAIConfig{
			APIKey: cfg.OpenAIKey,
			Model:  cfg.OpenAIModel,
		})
	default:
		return grammar.NewLanguageTool(grammar.LanguageToolConfig{
			BaseURL:  cfg.LanguageToolURL,
			Language: cfg.Language,
		})
	}
}

// BuildSentiment selects the sentiment backend, or nil when disabled.
func BuildSentiment(cfg config.SentimentConfig) sentiment.Provider {
	switch cfg.Backend {
	case "openai":
		return sentiment.NewOpenAIProvider(sentiment.OpenAIConfig{
			APIKey: cfg.OpenAIKey,
			Model:  cfg.OpenAIModel,
		})
	case "anthropic":
		return sentiment.NewAnthropicProvider(sentiment.AnthropicConfig{
			APIKey: cfg.AnthropicKey,
			Model:  cfg.AnthropicModel,
		})
	default:
		return nil
	}
}
