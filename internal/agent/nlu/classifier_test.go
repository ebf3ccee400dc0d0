package nlu

import (
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chative-core-poc-v1/salesbot/internal/agent/catalog"
	"github.com/Chative-core-poc-v1/salesbot/internal/agent/model"
)

func newClassifier(t *testing.T, opts ...Option) *Classifier {
	t.Helper()
	c, err := catalog.LoadEmbedded()
	require.NoError(t, err)
	opts = append([]Option{WithLogger(zerolog.Nop())}, opts...)
	cl, err := NewClassifier(c.Lexicon, model.DefaultClassifierConfig(), opts...)
	require.NoError(t, err)
	return cl
}

func TestClassifyIntents(t *testing.T) {
	cl := newClassifier(t)

	cases := []struct {
		message string
		want    model.Intent
	}{
		{"скока стоит", model.IntentPriceQuestion},
		{"СкОлЬкО сТоИт?", model.IntentPriceQuestion},
		{"   сколько    стоит   ", model.IntentPriceQuestion},
		{"Во сколько обойдётся?", model.IntentPriceQuestion},
		{"Какие тарифы?", model.IntentPriceQuestion},
		{"ghbdtn", model.IntentGreeting},
		{"Привет!", model.IntentGreeting},
		{"Пока", model.IntentFarewell},
		{"До свидания", model.IntentFarewell},
		{"Большое спасибо!", model.IntentGratitude},
		{"Как дела?", model.IntentSmallTalk},
		{"Что такое Kassir Cloud?", model.IntentQuestionFeatures},
		{"Как это работает?", model.IntentQuestionFeatures},
		{"Перезвоните мне", model.IntentCallbackRequest},
		{"Свяжитесь со мной", model.IntentCallbackRequest},
		{"Хочу демо", model.IntentDemoRequest},
		{"Нужна консультация", model.IntentConsultationRequest},
		{"Сравните с Битрикс24", model.IntentComparison},
		{"Вы или Мегаплан?", model.IntentComparison},
		{"Сколько за одного пользователя?", model.IntentPricingDetails},
		{"Какие скидки есть?", model.IntentPricingDetails},
		{"Не интересно", model.IntentRejection},
		{"Неинтересно", model.IntentRejection},
		{"нет не интересно", model.IntentRejection},
		{"Нет, спасибо", model.IntentRejection},
		{"Спасибо, не нужно", model.IntentRejection},
		{"Удалите меня из рассылки", model.IntentRejection},
		{"Нет бюджета", model.IntentObjectionPrice},
		{"Слишком дорого", model.IntentObjectionPrice},
		{"Нет денег", model.IntentObjectionPrice},
		{"Нет времени", model.IntentObjectionNoTime},
		{"Занят, перезвоните позже", model.IntentObjectionNoTime},
		{"Мне надо подумать", model.IntentObjectionThink},
		{"Используем Битрикс24", model.IntentObjectionCompetitor},
		{"Давайте попробуем", model.IntentAgreement},
	}
	for _, tc := range cases {
		got := cl.Classify(tc.message, model.ClassifyContext{})
		assert.Equal(t, tc.want, got.Intent, "message %q (method %s)", tc.message, got.Method)
	}
}

func TestClassifyDataIntents(t *testing.T) {
	cl := newClassifier(t)

	res := cl.Classify("У нас 15 человек в отделе", model.ClassifyContext{})
	assert.Equal(t, model.IntentInfoProvided, res.Intent)
	assert.Equal(t, model.MethodData, res.Method)
	assert.Equal(t, 0.95, res.Confidence)
	assert.Equal(t, 15, res.ExtractedData.CompanySize)

	res = cl.Classify("Работаем в Excel, всё теряется", model.ClassifyContext{})
	assert.Equal(t, model.IntentInfoProvided, res.Intent)
	assert.Equal(t, "работа в Excel", res.ExtractedData.PainPoint)

	res = cl.Classify("Мой email: test@company.kz", model.ClassifyContext{})
	assert.Equal(t, model.IntentContactProvided, res.Intent)
	assert.Equal(t, "test@company.kz", res.ExtractedData.ContactInfo)

	res = cl.Classify("+7 701 123-45-67", model.ClassifyContext{})
	assert.Equal(t, model.IntentContactProvided, res.Intent)
}

func TestClassifyPhaseAwareDataIntents(t *testing.T) {
	cl := newClassifier(t)

	res := cl.Classify("У нас 15 человек", model.ClassifyContext{Phase: model.PhaseSituation})
	assert.Equal(t, model.IntentSituationProvided, res.Intent)

	res = cl.Classify("Постоянно теряем клиентов", model.ClassifyContext{Phase: model.PhaseProblem})
	assert.Equal(t, model.IntentProblemRevealed, res.Intent)

	res = cl.Classify("Теряем около 10 клиентов в месяц", model.ClassifyContext{Phase: model.PhaseImplication})
	assert.Equal(t, model.IntentImplicationAcknowledged, res.Intent)
	assert.Contains(t, res.ExtractedData.PainImpact, "10 клиентов")

	res = cl.Classify("Хотим чтобы остатки сходились", model.ClassifyContext{Phase: model.PhaseNeedPayoff})
	assert.Equal(t, model.IntentNeedExpressed, res.Intent)
	assert.True(t, res.ExtractedData.ValueAcknowledged)
}

func TestClassifyContextOverride(t *testing.T) {
	cl := newClassifier(t)

	res := cl.Classify("да", model.ClassifyContext{})
	assert.Equal(t, model.IntentAgreement, res.Intent)
	res = cl.Classify("да", model.ClassifyContext{LastBotIntent: "offer_demo"})
	assert.Equal(t, model.IntentDemoRequest, res.Intent)
	assert.Equal(t, model.MethodContext, res.Method)

	cases := []struct {
		message string
		ctx     model.ClassifyContext
		want    model.Intent
	}{
		{"Нет", model.ClassifyContext{LastBotIntent: "offer_demo"}, model.IntentRejection},
		{"Да", model.ClassifyContext{LastBotIntent: "offer_call"}, model.IntentCallbackRequest},
		{"Нет", model.ClassifyContext{LastBotIntent: "offer_call"}, model.IntentRejection},
		{"Хорошо", model.ClassifyContext{LastBotIntent: "price_answer"}, model.IntentAgreement},
		{"Нет", model.ClassifyContext{LastBotIntent: "price_answer"}, model.IntentObjectionPrice},
		{"Понятно", model.ClassifyContext{LastBotIntent: "presentation"}, model.IntentAgreement},
		{"Ага", model.ClassifyContext{Phase: model.PhaseSituation}, model.IntentSituationProvided},
		{"Да", model.ClassifyContext{Phase: model.PhaseProblem}, model.IntentProblemRevealed},
		{"Нет", model.ClassifyContext{Phase: model.PhaseProblem}, model.IntentNoProblem},
		{"Да", model.ClassifyContext{Phase: model.PhaseImplication}, model.IntentImplicationAcknowledged},
		{"Да", model.ClassifyContext{Phase: model.PhaseNeedPayoff}, model.IntentNeedExpressed},
	}
	for _, tc := range cases {
		got := cl.Classify(tc.message, tc.ctx)
		assert.Equal(t, tc.want, got.Intent, "%q with %+v", tc.message, tc.ctx)
	}
}

func TestClassifyLongInputBypassesContext(t *testing.T) {
	cl := newClassifier(t)
	ctx := model.ClassifyContext{LastBotIntent: "offer_demo"}

	for _, msg := range []string{
		"Нет, мне интересно другое",
		"Нет, я хочу узнать больше",
		"Нет, расскажите подробнее",
	} {
		res := cl.Classify(msg, ctx)
		assert.Equal(t, model.IntentAgreement, res.Intent, msg)
		assert.Equal(t, model.MethodPattern, res.Method, msg)
	}

	res := cl.Classify("Нет, не хочу ничего", ctx)
	assert.Equal(t, model.IntentRejection, res.Intent)
}

func TestClassifyNoAnswerInsidePhaseIsNotRejection(t *testing.T) {
	cl := newClassifier(t)

	res := cl.Classify("нет", model.ClassifyContext{Phase: model.PhaseSituation})
	assert.NotEqual(t, model.IntentRejection, res.Intent)
}

func TestClassifyNeverFails(t *testing.T) {
	cl := newClassifier(t)

	for _, msg := range []string{"", "???", ")", "   ", strings.Repeat("Привет ", 100), "\x00\xff"} {
		res := cl.Classify(msg, model.ClassifyContext{})
		assert.NotEmpty(t, res.Intent, "message %q", msg)
		assert.GreaterOrEqual(t, res.Confidence, 0.0)
		assert.LessOrEqual(t, res.Confidence, 1.0)
	}

	assert.Equal(t, model.IntentUnclear, cl.Classify("???", model.ClassifyContext{}).Intent)
	assert.Equal(t, model.IntentUnclear, cl.Classify("", model.ClassifyContext{}).Intent)
}

func TestClassifyWithoutLemmatizer(t *testing.T) {
	cl := newClassifier(t, WithLemmatizer(NopLemmatizer{}))

	assert.Equal(t, model.IntentPriceQuestion, cl.Classify("скока стоит", model.ClassifyContext{}).Intent)
	assert.Equal(t, model.IntentGreeting, cl.Classify("ghbdtn", model.ClassifyContext{}).Intent)
	assert.Equal(t, model.IntentUnclear, cl.Classify("абырвалг", model.ClassifyContext{}).Intent)
}

func TestNewClassifierRejectsBadPatterns(t *testing.T) {
	c, err := catalog.LoadEmbedded()
	require.NoError(t, err)

	lex := *c.Lexicon
	lex.Priority = []catalog.IntentPatterns{
		{Intent: model.IntentRejection, Patterns: []string{`(unclosed`}},
		{Intent: model.IntentFarewell, Patterns: []string{`пока\bвсё`}},
	}
	_, err = NewClassifier(&lex, model.DefaultClassifierConfig())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `priority "rejection"`)
	assert.Contains(t, err.Error(), "only supported at either end")

	_, err = NewClassifier(c.Lexicon, model.ClassifierConfig{Lemmatizer: "pymorphy"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown lemmatizer "pymorphy"`)
}

func TestCompilePatternUnicodeBoundary(t *testing.T) {
	re, err := compilePattern(`\bне\s+надо\b`)
	require.NoError(t, err)

	assert.True(t, re.MatchString("не надо"))
	assert.True(t, re.MatchString("спасибо, не надо!"))
	assert.False(t, re.MatchString("мне надо"))
	assert.False(t, re.MatchString("не надоело"))
}
