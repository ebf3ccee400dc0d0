// Package conversations owns the per-conversation dialogue sessions and
// builds the classifier and response contexts from them.
package conversations

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog"

	"github.com/Chative-core-poc-v1/salesbot/internal/agent/dialogue"
	"github.com/Chative-core-poc-v1/salesbot/internal/agent/model"
	"github.com/Chative-core-poc-v1/salesbot/internal/agent/nlu"
	logx "github.com/Chative-core-poc-v1/salesbot/pkg/logger"
)

// Labels the lexicon's context tables resolve short replies against.
const (
	BotPriceAnswer  = "price_answer"
	BotPresentation = "presentation"
	BotOfferCall    = "offer_call"
	BotOfferDemo    = "offer_demo"
)

type conversation struct {
	mu            sync.Mutex
	session       *dialogue.Session
	lastBotIntent string
	touched       time.Time // guarded by Manager.mu
}

// Manager keeps one session per conversation id. Callers hold Lock for the
// whole turn; the other methods assume it is held.
//
// A conversation idle for longer than the transcript TTL starts over, so a
// session never outlives the transcript it belongs to.
type Manager struct {
	repo         model.ConversationRepository
	classifier   *nlu.Classifier
	machine      *dialogue.Machine
	historyTurns int
	idle         time.Duration
	now          func() time.Time
	logger       zerolog.Logger

	mu    sync.Mutex
	convs map[string]*conversation
	swept time.Time
}

func NewManager(
	repo model.ConversationRepository,
	classifier *nlu.Classifier,
	machine *dialogue.Machine,
	cfg model.ConversationConfig,
) *Manager {
	logger := logx.Component("conversations")
	var idle time.Duration
	if cfg.TTL != "" {
		d, err := time.ParseDuration(cfg.TTL)
		if err != nil {
			logger.Warn().Err(err).Str("ttl", cfg.TTL).Msg("invalid conversation TTL, sessions never expire")
		}
		idle = d
	}
	return &Manager{
		repo:         repo,
		classifier:   classifier,
		machine:      machine,
		historyTurns: cfg.HistoryTurns,
		idle:         idle,
		now:          time.Now,
		logger:       logger,
		convs:        make(map[string]*conversation),
	}
}

func (m *Manager) get(id string) *conversation {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	m.evictIdle(now)

	c, ok := m.convs[id]
	switch {
	case !ok:
		c = &conversation{session: m.machine.NewSession()}
		m.convs[id] = c
	case m.expired(c, now) && c.mu.TryLock():
		// nobody is mid-turn on it; start the dialogue over in place
		m.machine.Reset(c.session)
		c.lastBotIntent = ""
		c.mu.Unlock()
		m.logger.Debug().Str("conversation_id", id).Msg("idle session restarted")
	}
	c.touched = now
	return c
}

func (m *Manager) expired(c *conversation, now time.Time) bool {
	return m.idle > 0 && now.Sub(c.touched) > m.idle
}

// evictIdle drops idle conversations nobody holds. It runs at most twice
// per TTL. m.mu must be held.
func (m *Manager) evictIdle(now time.Time) {
	if m.idle <= 0 || now.Sub(m.swept) < m.idle/2 {
		return
	}
	m.swept = now
	for id, c := range m.convs {
		if !m.expired(c, now) || !c.mu.TryLock() {
			continue
		}
		delete(m.convs, id)
		c.mu.Unlock()
	}
}

// Lock serializes turns of conversation id and returns the unlock func.
func (m *Manager) Lock(id string) func() {
	c := m.get(id)
	c.mu.Lock()
	return c.mu.Unlock
}

// Classify classifies query against the conversation's current dialogue
// context.
func (m *Manager) Classify(id, query string) model.Classification {
	c := m.get(id)
	cctx := m.machine.Context(c.session, c.lastBotIntent)
	return m.classifier.Classify(query, cctx)
}

// Checkpoint records the dialogue position of id and returns a func that
// puts it back. The caller must hold Lock for both calls.
func (m *Manager) Checkpoint(id string) (restore func()) {
	c := m.get(id)
	saved, last := *c.session, c.lastBotIntent
	return func() {
		*c.session = saved
		c.lastBotIntent = last
	}
}

// Process advances the session and records what the bot is about to do.
func (m *Manager) Process(id string, cl model.Classification) model.StepResult {
	c := m.get(id)
	res := m.machine.Process(c.session, cl.Intent, cl.ExtractedData)
	c.lastBotIntent = botIntent(cl.Intent, res)

	m.logger.Debug().
		Str("conversation_id", id).
		Str("last_bot_intent", c.lastBotIntent).
		Msg("session advanced")
	return res
}

// botIntent labels the upcoming bot message so the next short reply can be
// read against it.
func botIntent(intent model.Intent, res model.StepResult) string {
	switch {
	case res.Action == model.ActionAnswerQuestion &&
		(intent == model.IntentPriceQuestion || intent == model.IntentPricingDetails):
		return BotPriceAnswer
	case res.Action == model.Action(BotOfferDemo):
		return BotOfferDemo
	case res.NextState == "presentation":
		return BotPresentation
	case res.NextState == "close" && !res.IsFinal:
		return BotOfferCall
	}
	return string(res.Action)
}

// BuildResponseContext frames the last historyTurns turns of the transcript
// between systemPrompt and the pending user query.
func (m *Manager) BuildResponseContext(ctx context.Context, id, systemPrompt, query string) ([]*schema.Message, error) {
	history, err := m.repo.LoadRecent(ctx, id, 2*m.historyTurns)
	if err != nil {
		return nil, err
	}
	msgs := make([]*schema.Message, 0, len(history.Messages)+2)
	msgs = append(msgs, schema.SystemMessage(systemPrompt))
	for _, msg := range history.Messages {
		if msg != nil && msg.Content != "" {
			msgs = append(msgs, msg)
		}
	}
	return append(msgs, schema.UserMessage(query)), nil
}

// SaveTurn appends the user query and the reply in one write, so a turn is
// stored whole or not at all. A blank reply stores the query alone.
func (m *Manager) SaveTurn(ctx context.Context, id, query, reply string) error {
	msgs := []*schema.Message{schema.UserMessage(query)}
	if strings.TrimSpace(reply) != "" {
		msgs = append(msgs, schema.AssistantMessage(reply, nil))
	}
	return m.repo.AddMessage(ctx, id, msgs...)
}

// Reset restarts the dialogue and drops the transcript.
func (m *Manager) Reset(ctx context.Context, id string) error {
	unlock := m.Lock(id)
	defer unlock()

	c := m.get(id)
	m.machine.Reset(c.session)
	c.lastBotIntent = ""
	return m.repo.ClearHistory(ctx, id)
}

// Snapshot is a read-only view of a conversation's dialogue position.
type Snapshot struct {
	State         model.StateID
	Phase         model.Phase
	Collected     model.ExtractedData
	LastBotIntent string
}

// Snapshot takes the conversation lock; do not call it while holding Lock.
func (m *Manager) Snapshot(id string) Snapshot {
	c := m.get(id)
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		State:         c.session.State(),
		Phase:         c.session.Phase(),
		Collected:     c.session.Collected(),
		LastBotIntent: c.lastBotIntent,
	}
}
