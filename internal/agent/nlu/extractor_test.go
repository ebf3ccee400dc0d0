package nlu

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Chative-core-poc-v1/salesbot/internal/agent/model"
)

func TestExtractCompanySizeInRange(t *testing.T) {
	e := NewExtractor(3)
	templates := []string{
		"У нас %d сотрудников",
		"нас %d",
		"команда из %d",
		"в отделе %d",
		"%d человек в команде",
		"Нужно на %d пользователей",
	}
	for _, tpl := range templates {
		for _, v := range []int{1, 5, 15, 250, 9999, 10000} {
			msg := fmt.Sprintf(tpl, v)
			assert.Equal(t, v, e.Extract(msg, model.ClassifyContext{}).CompanySize, msg)
		}
	}
}

func TestExtractCompanySizeOutOfRange(t *testing.T) {
	e := NewExtractor(3)
	for _, msg := range []string{"У нас 0 сотрудников", "У нас 20000 сотрудников"} {
		assert.Zero(t, e.Extract(msg, model.ClassifyContext{}).CompanySize, msg)
	}
}

func TestExtractShortAnswersNeedPendingField(t *testing.T) {
	e := NewExtractor(3)
	pending := model.ClassifyContext{MissingData: []model.Field{model.FieldCompanySize, model.FieldPainPoint}}

	assert.Zero(t, e.Extract("15", model.ClassifyContext{}).CompanySize)
	assert.Equal(t, 15, e.Extract("15", pending).CompanySize)
	assert.Equal(t, 12, e.Extract("12 чел.", pending).CompanySize)

	assert.Empty(t, e.Extract("Продажи", model.ClassifyContext{}).PainPoint)
	assert.Equal(t, "улучшение продаж", e.Extract("Продажи", pending).PainPoint)
	assert.Equal(t, "учёт товаров", e.Extract("склад!", pending).PainPoint)
}

func TestExtractPainPointFirstMatchWins(t *testing.T) {
	e := NewExtractor(3)

	d := e.Extract("Теряем клиентов и всё ведём в Excel", model.ClassifyContext{})
	assert.Equal(t, "потеря клиентов", d.PainPoint)
	assert.Equal(t, "Excel", d.CurrentTools)

	assert.Equal(t, "недостачи", e.Extract("Кассиры воруют", model.ClassifyContext{}).PainPoint)
}

func TestExtractContactPrefersEmail(t *testing.T) {
	e := NewExtractor(3)

	d := e.Extract("Пишите на anna@shop.kz или звоните +7 701 111 22 33", model.ClassifyContext{})
	assert.Equal(t, "anna@shop.kz", d.ContactInfo)

	d = e.Extract("Мой номер 8 (701) 111-22-33", model.ClassifyContext{})
	assert.Equal(t, "8 (701) 111-22-33", d.ContactInfo)
}

func TestExtractName(t *testing.T) {
	e := NewExtractor(3)

	assert.Equal(t, "Анна", e.Extract("Меня зовут Анна", model.ClassifyContext{}).ClientName)
	assert.Equal(t, "Ержан", e.Extract("Это Ержан на связи", model.ClassifyContext{}).ClientName)
	assert.Empty(t, e.Extract("Я Директор", model.ClassifyContext{}).ClientName)
}

func TestExtractQualification(t *testing.T) {
	e := NewExtractor(3)
	none := model.ClassifyContext{}

	assert.Equal(t, "urgent", e.Extract("Срочно нужно решение", none).Urgency)
	assert.Equal(t, "very_urgent", e.Extract("Горит! Нужно вчера", none).Urgency)
	assert.Equal(t, "not_urgent", e.Extract("Не срочно, пока просто изучаем рынок", none).Urgency)

	assert.Equal(t, "50 тысяч", e.Extract("Бюджет около 50 тысяч", none).BudgetRange)
	assert.Equal(t, "small", e.Extract("Бюджет небольшой", none).BudgetRange)
	assert.Equal(t, "large", e.Extract("Бюджет большой", none).BudgetRange)

	assert.Equal(t, "director", e.Extract("Я директор компании", none).Role)
	assert.Equal(t, "owner", e.Extract("Я собственник бизнеса", none).Role)
	assert.Equal(t, "manager", e.Extract("Я руководитель отдела продаж", none).Role)
	assert.Empty(t, e.Extract("Директор просил узнать", none).Role)

	assert.Equal(t, "phone", e.Extract("Лучше позвоните", none).PreferredChannel)
	assert.Equal(t, "whatsapp", e.Extract("Пишите в вотсап", none).PreferredChannel)
	assert.Equal(t, "telegram", e.Extract("Лучше в телеграм", none).PreferredChannel)
	assert.Equal(t, "email", e.Extract("Отправьте на почту", none).PreferredChannel)

	assert.Equal(t, "immediate", e.Extract("Нужно прямо сейчас", none).Timeline)
	assert.Equal(t, "this_month", e.Extract("Планируем в этом месяце", none).Timeline)
	assert.Equal(t, "next_quarter", e.Extract("В следующем квартале", none).Timeline)

	assert.Equal(t, "e-commerce", e.Extract("У нас интернет-магазин", none).BusinessType)
	assert.Equal(t, "общепит", e.Extract("Две кофейни в центре", none).BusinessType)
	assert.Equal(t, "1С", e.Extract("Учёт ведём в 1С", none).CurrentTools)
}

func TestExtractPhaseFields(t *testing.T) {
	e := NewExtractor(3)

	msg := "Теряем 15% выручки"
	assert.Empty(t, e.Extract(msg, model.ClassifyContext{}).PainImpact)
	assert.Equal(t, "теряем 15% выручки", e.Extract(msg, model.ClassifyContext{Phase: model.PhaseImplication}).PainImpact)

	d := e.Extract("Хотелось бы видеть остатки с телефона", model.ClassifyContext{Phase: model.PhaseNeedPayoff})
	assert.Equal(t, "видеть остатки с телефона", d.DesiredOutcome)
	assert.True(t, d.ValueAcknowledged)

	d = e.Extract("Да, это было бы удобно", model.ClassifyContext{Phase: model.PhaseNeedPayoff})
	assert.Empty(t, d.DesiredOutcome)
	assert.True(t, d.ValueAcknowledged)

	assert.True(t, e.Extract("Очень интересно, когда можно начать?", model.ClassifyContext{}).HighInterest)
	assert.False(t, e.Extract("Интересно", model.ClassifyContext{}).HighInterest)
}

func TestExtractEmpty(t *testing.T) {
	e := NewExtractor(3)
	for _, msg := range []string{"", "???", "Привет"} {
		assert.True(t, e.Extract(msg, model.ClassifyContext{}).IsEmpty(), msg)
	}
}
