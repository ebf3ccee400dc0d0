package nlu

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/Chative-core-poc-v1/salesbot/internal/agent/model"
)

// Accepted company size range.
const (
	minCompanySize = 1
	maxCompanySize = 10000
)

var sizePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(\d+)\s*(?:человек|чел\.?|менеджер|сотрудник|продав|пользовател|продаж)`),
	regexp.MustCompile(`нас\s*(\d+)`),
	regexp.MustCompile(`команд[аы]?\s*(?:из|в|на)?\s*(\d+)`),
	regexp.MustCompile(`отдел[еа]?\s*(\d+)`),
	regexp.MustCompile(`(\d+)\s*(?:в команде|в отделе)`),
	regexp.MustCompile(`штат[еа]?\s*(\d+)`),
	regexp.MustCompile(`работа[ею]т?\s*(\d+)`),
}

var bareSize = regexp.MustCompile(`^(\d+)\s*(?:человек|чел)?\.?$`)

type labelled struct {
	re    *regexp.Regexp
	label string
}

func table(pairs ...string) []labelled {
	out := make([]labelled, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, labelled{re: regexp.MustCompile(pairs[i]), label: pairs[i+1]})
	}
	return out
}

func firstLabel(t []labelled, text string) string {
	for _, l := range t {
		if l.re.MatchString(text) {
			return l.label
		}
	}
	return ""
}

// painPatterns is ordered; the first match wins.
var painPatterns = table(
	// lost customers
	`теря[ею]м?\s*клиент`, "потеря клиентов",
	`клиент[а-яё]*\s*ухо`, "клиенты уходят",
	`упуска[ею]м?`, "упускают сделки",
	`уход[а-яё]*\s*клиент`, "клиенты уходят",

	// staff discipline
	`забыва[ею]т?`, "забывают задачи",
	`менеджер[а-яё]*\s*(?:не\s*)?(?:перезван|звон)`, "менеджеры не перезванивают",
	`пропуска[ею]т?`, "пропускают задачи",
	`не\s*перезванива`, "не перезванивают",

	// no control
	`нет\s*контрол`, "нет контроля",
	`не\s*(?:могу|можем)\s*контролир`, "нет контроля",
	`не\s*вид[ие][мт]`, "нет видимости",
	`контроль\s*(?:за|над)?\s*(?:менеджер|продаж|сотрудник|касс|склад)`, "контроль продаж",
	`недостач|воруют|крадут`, "недостачи",

	// scattered data
	`excel|эксел|табличк`, "работа в Excel",
	`блокнот|записк|тетрад`, "записи в блокнотах",
	`вс[её]\s*в\s*голов`, "всё в головах",
	`нигде\s*не\s*(?:фикс|запис)`, "ничего не фиксируется",
	`разброс|раскидан`, "данные разбросаны",
	`хаос`, "хаос в данных",
	`беспоряд`, "беспорядок",
	`пересорт|остатк[а-яё]*\s*не\s*сход`, "не сходятся остатки",

	// errors and duplicates
	`дубл[иеяь]`, "дубли клиентов",
	`путаниц`, "путаница в данных",
	`ошиб[ко]`, "ошибки в работе",

	// inefficiency
	`долго\s*(?:иск|наход)`, "долго ищут информацию",
	`не\s*успева[ею]`, "не успевают",
	`много\s*времен`, "много времени на рутину",
	`неэффективн`, "неэффективность",
	`медленн|очеред`, "медленная работа",

	// sales
	`продаж[иа]?\s*(?:пада|упа|снижа)`, "падение продаж",
	`мало\s*(?:продаж|клиент|сделок)`, "мало продаж",
	`(?:увеличить|поднять|нарастить)\s*продаж`, "рост продаж",
	`автоматизир`, "автоматизация",
	`систематизир`, "систематизация",
	`(?:навести|нужен)\s*порядок`, "навести порядок",
)

// painShortAnswers resolve a one-word answer to a pending pain question.
var painShortAnswers = map[string]string{
	"продажи":   "улучшение продаж",
	"продажами": "улучшение продаж",
	"клиенты":   "работа с клиентами",
	"клиентами": "работа с клиентами",
	"учёт":      "учёт товаров",
	"учет":      "учёт товаров",
	"склад":     "учёт товаров",
	"контроль":  "контроль сотрудников",
	"отчёты":    "отчётность",
	"отчеты":    "отчётность",
	"аналитика": "аналитика продаж",
	"касса":     "работа кассы",
	"лиды":      "обработка лидов",
	"заявки":    "обработка заявок",
}

var (
	emailPattern  = regexp.MustCompile(`[\w.\-]+@[\w.\-]+\.\w{2,}`)
	phonePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\+7[\s\-]?\(?\d{3}\)?[\s\-]?\d{3}[\s\-]?\d{2}[\s\-]?\d{2}`),
		regexp.MustCompile(`8[\s\-]?\(?\d{3}\)?[\s\-]?\d{3}[\s\-]?\d{2}[\s\-]?\d{2}`),
		regexp.MustCompile(`\d{3}[\s\-]?\d{3}[\s\-]?\d{2}[\s\-]?\d{2}`),
	}
	namePatterns = []*regexp.Regexp{
		regexp.MustCompile(`[Мм]еня\s+зовут\s+([А-ЯЁ][а-яё]+)`),
		regexp.MustCompile(`(?:^|[^\p{L}])[Яя]\s+([А-ЯЁ][а-яё]+)`),
		regexp.MustCompile(`(?:[Ээ]то\s+)?([А-ЯЁ][а-яё]+)\s*(?:на связи|пишу|беспокоит)`),
	}
)

// Urgency is checked not_urgent first so that "не срочно" is not read as
// urgent.
var urgencyPatterns = table(
	`не\s+срочно|пока\s+просто|просто\s+(?:смотрим|изучаем)|не\s+горит|без\s+спешки`, "not_urgent",
	`горит|вчера|очень\s+срочно|немедленно|как\s+можно\s+скорее`, "very_urgent",
	`срочно|побыстрее|быстрее|поскорее|asap`, "urgent",
)

var (
	budgetAmount = []*regexp.Regexp{
		regexp.MustCompile(`бюджет[а-яё]*\s*(?:около|примерно|до|в|порядка|где-то)?\s*(\d+(?:[.,]\d+)?)\s*(тыс[а-яё]*|млн|миллион[а-яё]*)?`),
		regexp.MustCompile(`(?:готовы|можем)\s+(?:потратить|выделить|платить)\s*(?:до|около)?\s*(\d+(?:[.,]\d+)?)\s*(тыс[а-яё]*|млн|миллион[а-яё]*)?`),
	}
	budgetCue   = regexp.MustCompile(`бюджет`)
	budgetSmall = regexp.MustCompile(`небольш|маленьк|скромн|ограничен|минимальн`)
	budgetLarge = regexp.MustCompile(`большой|значительн|хороший|серь[её]зн`)
)

var rolePattern = regexp.MustCompile(`(?:^|[^а-яё])я\s+(?:[а-яё]+\s+)?(директор|гендир|ceo|собственник|владел|учредител|основател|руководител|начальник|менеджер|управляющ)`)

var roleLabels = map[string]string{
	"директор":    "director",
	"гендир":      "director",
	"ceo":         "director",
	"собственник": "owner",
	"владел":      "owner",
	"учредител":   "owner",
	"основател":   "owner",
	"руководител": "manager",
	"начальник":   "manager",
	"менеджер":    "manager",
	"управляющ":   "manager",
}

// Messenger channels are checked before phone so "позвоните в вотсап" is a
// WhatsApp preference.
var channelPatterns = table(
	`вотсап|ватсап|вацап|whatsapp|ватс\s+ап`, "whatsapp",
	`телеграм|телега|telegram|(?:^|[^а-яё])тг(?:[^а-яё]|$)`, "telegram",
	`на\s+почт|по\s+почт|почтой|e-?mail|имейл|емейл|мейл`, "email",
	`позвон|звонок|по\s+телефону|набер|созвон`, "phone",
)

var timelinePatterns = table(
	`прямо\s+сейчас|немедленно|сегодня|на\s+этой\s+неделе`, "immediate",
	`в\s+этом\s+месяце|до\s+конца\s+месяца`, "this_month",
	`следующ[а-яё]*\s+квартал|через\s+(?:пару|несколько|2|3)\s+месяц`, "next_quarter",
)

var toolPatterns = table(
	`excel|эксел|таблиц`, "Excel",
	`(?:^|[^0-9])1[сc](?:[^а-яёa-z]|$)`, "1С",
	`битрикс|bitrix`, "Битрикс24",
	`amocrm|амоцрм|(?:^|[^а-яё])амо(?:[^а-яё]|$)`, "amoCRM",
	`iiko|айко`, "iiko",
	`вручную|руками|блокнот|тетрад`, "вручную",
)

var businessPatterns = table(
	`интернет[- ]?магазин|e-?commerce|маркетплейс`, "e-commerce",
	`магазин|розниц|торгу(?:ем|ю)`, "розничная торговля",
	`кафе|ресторан|общепит|кофейн|столов|бар(?:[^а-яё]|$)`, "общепит",
	`аптек`, "аптека",
	`салон|красот|барбершоп`, "сфера услуг",
	`оптов|оптом|дистриб`, "оптовая торговля",
	`производ|завод|цех`, "производство",
)

var impactPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:теря[а-яё]*|упуска[а-яё]*)\s+(?:около|примерно|до|где-то)?\s*\d+[^.!?]*`),
	regexp.MustCompile(`\d+\s*(?:%|процент[а-яё]*)[^.!?]*`),
	regexp.MustCompile(`\d+\s*(?:клиент|сделок|заявок|час|тысяч|тыс|чек)[а-яё]*(?:\s+в\s+(?:месяц|неделю|день|год))?`),
}

var outcomePattern = regexp.MustCompile(`(?:хотим|хотелось\s+бы|хочу|нужно|нужен|важно|чтобы)\s+([^.!?]{3,})`)

var valuePattern = regexp.MustCompile(`помогл|полезн|было\s+бы\s+(?:здорово|отлично|удобно|круто)|это\s+решит|сэконом|удобно`)

var interestPattern = regexp.MustCompile(`очень\s+интересн|срочно\s+нужн|готовы\s+(?:купить|начать|подключ|оплатить)|когда\s+можно\s+начать|хотим\s+(?:внедр|подключ)|давайте\s+(?:быстрее|скорее)`)

// Extractor pulls structured fields out of a message. Within one call the
// first matching pattern family wins per field.
type Extractor struct {
	shortAnswerWords int
}

func NewExtractor(shortAnswerWords int) *Extractor {
	if shortAnswerWords <= 0 {
		shortAnswerWords = 3
	}
	return &Extractor{shortAnswerWords: shortAnswerWords}
}

func (e *Extractor) Extract(message string, ctx model.ClassifyContext) model.ExtractedData {
	var d model.ExtractedData
	lower := strings.ToLower(strings.TrimSpace(message))
	short := len(words(lower)) <= e.shortAnswerWords

	d.CompanySize = e.companySize(lower, ctx, short)

	d.PainPoint = firstLabel(painPatterns, lower)
	if d.PainPoint == "" && short && ctx.Missing(model.FieldPainPoint) {
		d.PainPoint = painShortAnswers[strings.Join(words(lower), " ")]
	}

	d.ContactInfo = contact(message)
	d.ClientName = name(message)
	d.Urgency = firstLabel(urgencyPatterns, lower)
	d.BudgetRange = budget(lower)
	d.Role = role(lower)
	d.PreferredChannel = firstLabel(channelPatterns, lower)
	d.Timeline = firstLabel(timelinePatterns, lower)
	d.CurrentTools = firstLabel(toolPatterns, lower)
	d.BusinessType = firstLabel(businessPatterns, lower)

	if ctx.Phase == model.PhaseImplication || ctx.Missing(model.FieldPainImpact) {
		d.PainImpact = firstMatch(impactPatterns, lower)
	}
	if ctx.Phase == model.PhaseNeedPayoff || ctx.Missing(model.FieldDesiredOutcome) {
		if m := outcomePattern.FindStringSubmatch(lower); m != nil {
			d.DesiredOutcome = strings.TrimSpace(m[1])
			d.ValueAcknowledged = true
		}
	}
	if ctx.Phase == model.PhaseNeedPayoff && valuePattern.MatchString(lower) {
		d.ValueAcknowledged = true
	}
	d.HighInterest = interestPattern.MatchString(lower)

	return d
}

func (e *Extractor) companySize(lower string, ctx model.ClassifyContext, short bool) int {
	for _, re := range sizePatterns {
		if m := re.FindStringSubmatch(lower); m != nil {
			if size, ok := parseSize(m[1]); ok {
				return size
			}
		}
	}
	if short && ctx.Missing(model.FieldCompanySize) {
		if m := bareSize.FindStringSubmatch(lower); m != nil {
			if size, ok := parseSize(m[1]); ok {
				return size
			}
		}
	}
	return 0
}

func parseSize(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil || n < minCompanySize || n > maxCompanySize {
		return 0, false
	}
	return n, true
}

// contact prefers an email over any phone number.
func contact(message string) string {
	if m := emailPattern.FindString(message); m != "" {
		return m
	}
	for _, re := range phonePatterns {
		if m := re.FindString(message); m != "" {
			return strings.TrimSpace(m)
		}
	}
	return ""
}

func name(message string) string {
	for _, re := range namePatterns {
		if m := re.FindStringSubmatch(message); m != nil {
			if _, isRole := roleLabels[strings.ToLower(m[1])]; isRole {
				continue
			}
			return m[1]
		}
	}
	return ""
}

func budget(lower string) string {
	for _, re := range budgetAmount {
		if m := re.FindStringSubmatch(lower); m != nil {
			return strings.TrimSpace(m[1] + " " + m[2])
		}
	}
	if !budgetCue.MatchString(lower) {
		return ""
	}
	switch {
	case budgetSmall.MatchString(lower):
		return "small"
	case budgetLarge.MatchString(lower):
		return "large"
	}
	return ""
}

func role(lower string) string {
	m := rolePattern.FindStringSubmatch(lower)
	if m == nil {
		return ""
	}
	return roleLabels[m[1]]
}

func firstMatch(res []*regexp.Regexp, text string) string {
	for _, re := range res {
		if m := re.FindString(text); m != "" {
			return strings.TrimSpace(m)
		}
	}
	return ""
}
