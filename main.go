package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Chative-core-poc-v1/salesbot/internal/agent/catalog"
	"github.com/Chative-core-poc-v1/salesbot/internal/agent/graph"
	"github.com/Chative-core-poc-v1/salesbot/internal/agent/metrics"
	"github.com/Chative-core-poc-v1/salesbot/internal/agent/model"
	"github.com/Chative-core-poc-v1/salesbot/internal/agent/repo"
	"github.com/Chative-core-poc-v1/salesbot/internal/core"
	logx "github.com/Chative-core-poc-v1/salesbot/pkg/logger"
	pkgredis "github.com/Chative-core-poc-v1/salesbot/pkg/redis"
)

// AppConfig defines all configurable parameters of the demo, sourced from
// environment variables (loaded from .env for local runs).
type AppConfig struct {
	Environment string `envconfig:"ENVIRONMENT" default:"development"`

	// Infrastructure
	Redis       pkgredis.Config
	MetricsAddr string `envconfig:"METRICS_ADDR" default:":9090"`
	CatalogDir  string `envconfig:"CATALOG_DIR"`

	// LLM provider
	APIKey  string `envconfig:"GEMINI_API_KEY" required:"true"`
	BaseURL string `envconfig:"GEMINI_BASE_URL"`

	// Agent configs
	Classifier   model.ClassifierConfig
	Retriever    model.RetrieverConfig
	Response     model.ResponseModelConfig
	Prompt       model.ResponsePromptConfig
	Conversation model.ConversationConfig
}

var demoDialogue = []string{
	"Здравствуйте!",
	"Сколько стоит ваша касса?",
	"У нас 12 человек, два магазина",
	"Постоянно путаемся в остатках, всё в Excel",
	"Теряем около 10% выручки на недостачах",
	"Хотим чтобы остатки сходились автоматически",
	"Да, давайте демо",
	"Пишите на aigerim@shop.kz",
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(".env"); err != nil {
		logx.Warn().Err(err).Msg("Could not load .env file")
	}

	var env AppConfig
	if err := envconfig.Process("", &env); err != nil {
		logx.Fatal().Err(err).Msg("Failed to process environment config")
	}
	logx.Init(logx.LoggerOpts{Environment: core.ParseEnvironment(env.Environment)})

	cat, err := loadCatalog(env.CatalogDir)
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to load catalog")
	}

	convRepo, closeRepo, err := newRepository(ctx, env)
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to initialise conversation repository")
	}
	defer closeRepo()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	srv := serveMetrics(env.MetricsAddr, reg)

	runner, err := graph.BuildResponseGraph(ctx, graph.Config{
		APIKey:           env.APIKey,
		BaseURL:          env.BaseURL,
		Catalog:          cat,
		Classifier:       env.Classifier,
		Retriever:        env.Retriever,
		ResponseModel:    env.Response,
		ResponsePrompt:   env.Prompt,
		Conversation:     env.Conversation,
		ConversationRepo: convRepo,
		Metrics:          metrics.New(reg),
	})
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to build graph")
	}

	conversationID := uuid.NewString()
	for i, q := range demoDialogue {
		if ctx.Err() != nil {
			break
		}
		turn, err := runner.Invoke(ctx, model.QueryInput{ConversationID: conversationID, Query: q})
		if err != nil {
			logx.Error().Err(err).Int("turn", i+1).Msg("Turn failed")
			break
		}

		fmt.Printf("\n[%d] client: %s\n", i+1, q)
		fmt.Printf("    bot:    %s\n", turn.Reply)
		fmt.Printf("    intent=%s (%s, %.2f) action=%s state=%s phase=%s cost=$%.5f\n",
			turn.Intent, turn.Method, turn.Confidence, turn.Action, turn.State, turn.Phase, turn.CostUSD)
		if turn.IsFinal {
			break
		}
	}

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}
}

func loadCatalog(dir string) (*catalog.Catalog, error) {
	if dir == "" {
		return catalog.LoadEmbedded()
	}
	return catalog.Load(os.DirFS(dir))
}

// newRepository picks Redis when configured and the in-memory store
// otherwise.
func newRepository(ctx context.Context, env AppConfig) (model.ConversationRepository, func(), error) {
	ttl, err := time.ParseDuration(env.Conversation.TTL)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid CONVERSATION_TTL %q: %w", env.Conversation.TTL, err)
	}
	if !env.Redis.Enabled() {
		logx.Info().Msg("REDIS_URL not set, keeping transcripts in memory")
		return repo.NewMemoryConversationRepository(ttl), func() {}, nil
	}

	rdb, err := env.Redis.New(ctx)
	if err != nil {
		return nil, nil, err
	}
	logx.Info().Msg("Connected to Redis successfully")
	return repo.NewRedisConversationRepository(rdb, ttl), func() { _ = rdb.Close() }, nil
}

func serveMetrics(addr string, reg *prometheus.Registry) *http.Server {
	if addr == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logx.Error().Err(err).Str("addr", addr).Msg("Metrics server stopped")
		}
	}()
	return srv
}
