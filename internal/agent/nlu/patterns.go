package nlu

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Chative-core-poc-v1/salesbot/internal/agent/catalog"
	"github.com/Chative-core-poc-v1/salesbot/internal/agent/model"
)

// Go's \b only knows ASCII word characters. Table patterns may use \b at
// either end; it is rewritten to a Unicode letter/digit boundary.
const (
	leadBoundary  = `(?:^|[^\p{L}\p{N}])`
	trailBoundary = `(?:[^\p{L}\p{N}]|$)`
)

func compilePattern(p string) (*regexp.Regexp, error) {
	if strings.HasPrefix(p, `\b`) {
		p = leadBoundary + p[2:]
	}
	if strings.HasSuffix(p, `\b`) && !strings.HasSuffix(p, `\\b`) {
		p = p[:len(p)-2] + trailBoundary
	}
	if strings.Contains(p, `\b`) {
		return nil, fmt.Errorf("pattern %q: \\b is only supported at either end", p)
	}
	return regexp.Compile(p)
}

type priorityFamily struct {
	intent   model.Intent
	patterns []*regexp.Regexp
}

func (f priorityFamily) match(text string) bool {
	for _, re := range f.patterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

func compilePriority(families []catalog.IntentPatterns) ([]priorityFamily, []error) {
	var (
		out      []priorityFamily
		problems []error
	)
	for _, fam := range families {
		pf := priorityFamily{intent: fam.Intent}
		for _, p := range fam.Patterns {
			re, err := compilePattern(p)
			if err != nil {
				problems = append(problems, fmt.Errorf("priority %q: %w", fam.Intent, err))
				continue
			}
			pf.patterns = append(pf.patterns, re)
		}
		out = append(out, pf)
	}
	return out, problems
}

// clarification recognises a negative lead followed by an interest cue,
// e.g. "нет, расскажите подробнее".
type clarification struct {
	lead, interest, negated *regexp.Regexp
}

func compileClarification(c catalog.Clarification) (*clarification, []error) {
	var problems []error
	compile := func(name, p string) *regexp.Regexp {
		if p == "" {
			problems = append(problems, fmt.Errorf("clarification.%s: empty pattern", name))
			return nil
		}
		re, err := compilePattern(p)
		if err != nil {
			problems = append(problems, fmt.Errorf("clarification.%s: %w", name, err))
		}
		return re
	}
	cl := &clarification{
		lead:     compile("negative_lead", c.NegativeLead),
		interest: compile("interest", c.Interest),
		negated:  compile("negated_interest", c.NegatedInterest),
	}
	return cl, problems
}

func (c *clarification) matches(text string) bool {
	return c.lead.MatchString(text) && c.interest.MatchString(text) && !c.negated.MatchString(text)
}
