// Package main is the entry point for the condobot API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/banyanstays/condobot/internal/config"
	"github.com/banyanstays/condobot/internal/dedup"
	"github.com/banyanstays/condobot/internal/draft"
	"github.com/banyanstays/condobot/internal/handler"
	"github.com/banyanstays/condobot/internal/hospitable"
	"github.com/banyanstays/condobot/internal/knowledge"
	"github.com/banyanstays/condobot/internal/llm"
	"github.com/banyanstays/condobot/internal/middleware"
	"github.com/banyanstays/condobot/internal/property"
	"github.com/banyanstays/condobot/internal/search"
	"github.com/banyanstays/condobot/internal/service"
	"github.com/banyanstays/condobot/internal/slack"
	"github.com/banyanstays/condobot/internal/tools"
	"github.com/banyanstays/condobot/pkg/logger"
	"github.com/banyanstays/condobot/pkg/metrics"
	"github.com/banyanstays/condobot/pkg/tracing"
)

// noDraft stands in when no model provider is configured: every event
// yields "no draft produced", so the operator still sees guest messages
// but nothing is generated.
type noDraft struct{}

func (noDraft) Generate(ctx context.Context, req *draft.Request) (string, error) {
	return "", nil
}

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("starting condobot",
		zap.Bool("slack_configured", cfg.SlackBotToken != "" && cfg.SlackChannelID != ""),
		zap.Bool("hospitable_configured", cfg.HospitableAPIToken != ""),
		zap.Bool("search_configured", cfg.SearchAPIKey != ""),
		zap.String("draft_provider", cfg.DraftProvider),
	)

	ctx := context.Background()
	if cfg.TracingEnabled {
		tp, err := tracing.InitTracer(ctx, "condobot", cfg.TracingEndpoint)
		if err != nil {
			log.Warn("failed to initialize tracing", zap.Error(err))
		} else {
			defer tracing.Shutdown(ctx, tp)
		}
	}

	// Knowledge base and tools
	kb := knowledge.NewLibrary(cfg.KnowledgeDir)

	var searcher search.Provider
	if cfg.SearchAPIKey != "" {
		searcher = search.NewClient(cfg.SearchAPIKey)
	} else {
		log.Warn("SEARCH_API_KEY not set, web search tool will report not configured")
	}
	executor := tools.NewExecutor(kb, property.AreaForSlug, searcher)

	// Drafting model
	var generator service.DraftGenerator = noDraft{}
	llmClient, err := llm.NewClient(cfg.DraftProvider, cfg.AnthropicAPIKey, cfg.OpenAIAPIKey)
	if err != nil {
		log.Warn("model provider not configured, draft generation disabled", zap.Error(err))
	} else {
		generator = draft.NewGenerator(llmClient, executor, kb, cfg.DraftModel, cfg.MaxToolTurns, log)
	}

	// Shared state
	store := draft.NewStore()
	ledger := dedup.NewLedger(cfg.DedupWindow)

	// Outbound collaborators
	slackClient := slack.NewClient(cfg.SlackBotToken, cfg.SlackChannelID)
	messenger := hospitable.NewClient(cfg.HospitableAPIToken, cfg.HospitableSenderID)

	// Services
	pipeline := service.NewPipeline(slackClient, generator, store, log)
	approvals := service.NewApprovals(store, messenger, slackClient, log)

	// Handlers
	webhookHandler := handler.NewWebhookHandler(cfg.HospitableWebhookSecret, ledger, pipeline, log)
	interactionHandler := handler.NewInteractionHandler(cfg.SlackSigningSecret, approvals, log)

	// Router
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"https://*", "http://*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/", handler.Live)
	r.Get("/health", handler.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(httprate.LimitByIP(cfg.RateLimitRequests, cfg.RateLimitWindow))
		r.Post("/webhooks/hospitable", webhookHandler.Handle)
		r.Post("/slack/interactions", interactionHandler.Handle)
	})

	// Stale-draft eviction tick. Low priority: correctness never depends
	// on it, it only bounds memory in a long-lived process.
	evictCtx, stopEviction := context.WithCancel(ctx)
	defer stopEviction()
	go func() {
		ticker := time.NewTicker(cfg.EvictionInterval)
		defer ticker.Stop()
		for {
			select {
			case <-evictCtx.Done():
				return
			case <-ticker.C:
				if n := store.EvictStale(cfg.DraftMaxAge); n > 0 {
					metrics.DraftsEvicted.Add(float64(n))
					log.Info("evicted stale drafts", zap.Int("count", n))
				}
			}
		}
	}()

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      r,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info("server listening", zap.String("port", cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	log.Info("server stopped")
}
