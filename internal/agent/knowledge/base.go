// Package knowledge retrieves reference facts for the response prompt. A
// Base is read-only once built and may be shared by any number of
// retrievers and goroutines.
package knowledge

import (
	"github.com/Chative-core-poc-v1/salesbot/internal/agent/catalog"
	"github.com/Chative-core-poc-v1/salesbot/internal/agent/model"
)

type Base struct {
	sections   []model.KnowledgeSection
	byCategory map[string][]int
	gating     map[model.Intent][]string
}

func NewBase(kb *catalog.Knowledge) *Base {
	b := &Base{
		sections:   kb.Sections,
		byCategory: make(map[string][]int),
		gating:     kb.IntentCategories,
	}
	for i, s := range b.sections {
		b.byCategory[s.Category] = append(b.byCategory[s.Category], i)
	}
	return b
}

func (b *Base) Len() int { return len(b.sections) }

func (b *Base) Section(i int) model.KnowledgeSection { return b.sections[i] }

// candidates returns the section indexes intent may draw from, in
// declaration order within each category.
func (b *Base) candidates(intent model.Intent) []int {
	cats := b.gating[intent]
	if len(cats) == 0 {
		all := make([]int, len(b.sections))
		for i := range all {
			all[i] = i
		}
		return all
	}
	seen := make(map[int]bool)
	var out []int
	for _, c := range cats {
		for _, i := range b.byCategory[c] {
			if !seen[i] {
				seen[i] = true
				out = append(out, i)
			}
		}
	}
	return out
}
