package graph

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/Chative-core-poc-v1/salesbot/internal/agent/catalog"
	"github.com/Chative-core-poc-v1/salesbot/internal/agent/dialogue"
	"github.com/Chative-core-poc-v1/salesbot/internal/agent/graph/conversations"
	"github.com/Chative-core-poc-v1/salesbot/internal/agent/graph/nodes"
	"github.com/Chative-core-poc-v1/salesbot/internal/agent/graph/observers"
	"github.com/Chative-core-poc-v1/salesbot/internal/agent/knowledge"
	"github.com/Chative-core-poc-v1/salesbot/internal/agent/metrics"
	"github.com/Chative-core-poc-v1/salesbot/internal/agent/model"
	"github.com/Chative-core-poc-v1/salesbot/internal/agent/nlu"
	errx "github.com/Chative-core-poc-v1/salesbot/internal/core/error"
	logx "github.com/Chative-core-poc-v1/salesbot/pkg/logger"
)

// Runner executes one conversation turn at a time per conversation.
type Runner interface {
	Invoke(ctx context.Context, in model.QueryInput) (*model.TurnResult, error)
	Reset(ctx context.Context, conversationID string) error
}

// Config holds everything needed to compose the full turn graph end-to-end.
type Config struct {
	APIKey           string
	BaseURL          string
	Catalog          *catalog.Catalog
	Classifier       model.ClassifierConfig
	Retriever        model.RetrieverConfig
	ResponseModel    model.ResponseModelConfig
	ResponsePrompt   model.ResponsePromptConfig
	Conversation     model.ConversationConfig
	ConversationRepo model.ConversationRepository
	Metrics          *metrics.Metrics
}

// GraphConfig holds the built components the graph is wired from.
type GraphConfig struct {
	ChatModel      einomodel.BaseChatModel
	ModelName      string
	Manager        *conversations.Manager
	Retriever      *knowledge.Retriever
	TopK           int
	ResponsePrompt model.ResponsePromptConfig
	Metrics        *metrics.Metrics
	MaxRunSteps    int
}

// GraphBuilder handles the construction of the turn graph.
type GraphBuilder struct {
	config *GraphConfig
	graph  *compose.Graph[model.QueryInput, *schema.Message]
}

type graphRunner struct {
	runnable compose.Runnable[model.QueryInput, *schema.Message]
	manager  *conversations.Manager
	metrics  *metrics.Metrics
}

// NewRunner wraps a compiled graph built from cfg.
func NewRunner(runnable compose.Runnable[model.QueryInput, *schema.Message], cfg *GraphConfig) Runner {
	return &graphRunner{runnable: runnable, manager: cfg.Manager, metrics: cfg.Metrics}
}

func (r *graphRunner) Invoke(ctx context.Context, in model.QueryInput) (*model.TurnResult, error) {
	if strings.TrimSpace(in.ConversationID) == "" {
		return nil, errx.New(errors.New("empty conversation id"), http.StatusBadRequest, errx.InvalidRequestMessage)
	}

	start := time.Now()
	unlock := r.manager.Lock(in.ConversationID)
	defer unlock()

	// a failed turn leaves neither the session nor the transcript changed
	restore := r.manager.Checkpoint(in.ConversationID)
	out, err := r.runnable.Invoke(ctx, in, compose.WithCallbacks(observers.NewAllCallbacks()))
	r.metrics.ObserveTurn(time.Since(start))
	if err != nil {
		restore()
		if errx.StatusOf(err, 0) == 0 {
			err = errx.New(err, http.StatusBadGateway, errx.GenerationErrorMessage)
		}
		return nil, err
	}

	turn, ok := out.Extra[nodes.ExtraTurn].(*model.TurnResult)
	if !ok {
		restore()
		return nil, errx.New(errors.New("turn summary missing from reply"), http.StatusInternalServerError, errx.SystemErrorMessage)
	}
	turn.Reply = out.Content
	return turn, nil
}

func (r *graphRunner) Reset(ctx context.Context, conversationID string) error {
	return r.manager.Reset(ctx, conversationID)
}

// BuildResponseGraph builds the NLU core, the Gemini model and the graph,
// and returns a Runner.
func BuildResponseGraph(ctx context.Context, cfg Config) (Runner, error) {
	if cfg.ConversationRepo == nil {
		return nil, fmt.Errorf("conversation repo is nil")
	}
	if cfg.Catalog == nil {
		return nil, fmt.Errorf("catalog is nil")
	}

	classifier, err := nlu.NewClassifier(cfg.Catalog.Lexicon, cfg.Classifier)
	if err != nil {
		return nil, err
	}
	table, err := dialogue.NewTable(cfg.Catalog.States)
	if err != nil {
		return nil, err
	}

	client, err := nodes.NewGeminiClient(ctx, cfg.APIKey, cfg.BaseURL)
	if err != nil {
		return nil, err
	}
	cm, err := nodes.NewResponseChatModel(ctx, client, cfg.ResponseModel)
	if err != nil {
		return nil, err
	}

	base := knowledge.NewBase(cfg.Catalog.Knowledge)
	var ropts []knowledge.Option
	if cfg.Retriever.Semantic {
		idx := knowledge.NewSemanticIndex(
			knowledge.NewGeminiEmbedder(client, cfg.Retriever.EmbeddingModel),
			base,
			cfg.Retriever.SimilarityFloor,
		)
		// a failed warm-up leaves retrieval keyword-only
		if err := idx.Warm(ctx); err != nil {
			logx.Warn().Err(err).Msg("Semantic index unavailable")
		}
		ropts = append(ropts, knowledge.WithSemantic(idx))
	}

	gc := &GraphConfig{
		ChatModel:      cm,
		ModelName:      cfg.ResponseModel.Model,
		Manager:        conversations.NewManager(cfg.ConversationRepo, classifier, dialogue.NewMachine(table), cfg.Conversation),
		Retriever:      knowledge.NewRetriever(base, ropts...),
		TopK:           cfg.Retriever.TopK,
		ResponsePrompt: cfg.ResponsePrompt,
		Metrics:        cfg.Metrics,
		MaxRunSteps:    cfg.Conversation.MaxRunSteps,
	}
	runnable, err := BuildGraph(ctx, gc)
	if err != nil {
		return nil, err
	}

	logx.Debug().Msg("Turn graph built successfully")
	return NewRunner(runnable, gc), nil
}

// BuildGraph constructs and returns the compiled turn graph.
func BuildGraph(ctx context.Context, config *GraphConfig) (compose.Runnable[model.QueryInput, *schema.Message], error) {
	if config == nil {
		return nil, fmt.Errorf("graph config is nil")
	}
	if config.ChatModel == nil {
		return nil, fmt.Errorf("chat model is not initialized")
	}
	if config.Manager == nil || config.Retriever == nil {
		return nil, fmt.Errorf("conversation manager or retriever is nil")
	}

	builder := &GraphBuilder{
		config: config,
		graph: compose.NewGraph[model.QueryInput, *schema.Message](
			compose.WithGenLocalState(func(ctx context.Context) *model.AppState {
				return &model.AppState{}
			}),
		),
	}

	if err := builder.addNodes(); err != nil {
		return nil, err
	}
	if err := builder.addEdges(); err != nil {
		return nil, err
	}
	return builder.compile(ctx)
}

func (b *GraphBuilder) addNodes() error {
	c := b.config
	return errors.Join(
		b.graph.AddLambdaNode(nodes.NodeClassifier,
			nodes.NewClassifierNode(c.Manager),
			compose.WithStatePreHandler(nodes.NewClassifierPreHandler()),
			compose.WithStatePostHandler(nodes.NewClassifierPostHandler(c.Metrics)),
		),
		b.graph.AddLambdaNode(nodes.NodeStateMachine,
			nodes.NewStateMachineNode(c.Manager),
			compose.WithStatePostHandler(nodes.NewStateMachinePostHandler(c.Metrics)),
		),
		b.graph.AddLambdaNode(nodes.NodeResponseAssembler,
			nodes.NewResponseAssemblerNode(c.Manager, nodes.AssemblerConfig{
				Retriever: c.Retriever,
				TopK:      c.TopK,
				Prompt:    c.ResponsePrompt,
				Metrics:   c.Metrics,
			}),
		),
		b.graph.AddChatModelNode(nodes.NodeResponseChatModel,
			c.ChatModel,
			compose.WithStatePostHandler(nodes.NewResponseChatModelPostHandler(c.Manager, c.ModelName, c.Metrics)),
		),
	)
}

func (b *GraphBuilder) addEdges() error {
	edges := [][2]string{
		{compose.START, nodes.NodeClassifier},
		{nodes.NodeClassifier, nodes.NodeStateMachine},
		{nodes.NodeStateMachine, nodes.NodeResponseAssembler},
		{nodes.NodeResponseAssembler, nodes.NodeResponseChatModel},
		{nodes.NodeResponseChatModel, compose.END},
	}
	for _, edge := range edges {
		if err := b.graph.AddEdge(edge[0], edge[1]); err != nil {
			logx.Error().Err(err).Str("from", edge[0]).Str("to", edge[1]).Msg("Error adding edge")
			return fmt.Errorf("error adding edge %s -> %s: %w", edge[0], edge[1], err)
		}
	}
	return nil
}

func (b *GraphBuilder) compile(ctx context.Context) (compose.Runnable[model.QueryInput, *schema.Message], error) {
	maxSteps := b.config.MaxRunSteps
	if maxSteps < 10 {
		maxSteps = 10
	}

	runnable, err := b.graph.Compile(ctx, compose.WithMaxRunSteps(maxSteps))
	if err != nil {
		logx.Error().Err(err).Msg("Error compiling graph")
		return nil, fmt.Errorf("error compiling graph: %w", err)
	}

	logx.Debug().Msg("Graph compiled successfully")
	return runnable, nil
}
