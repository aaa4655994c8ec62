package content

import (
	"slices"

	"github.com/Zachkp/portfolio/internal/model"
	"github.com/Zachkp/portfolio/internal/schema"
)

// OtherCategory buckets skills that have no category.
const OtherCategory = "Other"

// UngroupedLabel titles the single section used when skills have no category column.
const UngroupedLabel = "Skills"

// PreferredCategories lead the section order when present.
var PreferredCategories = []string{"PL", "FW", "TT", "SP"}

// SkillSection is one labelled group of skills, in display order.
type SkillSection struct {
	Label  string
	Skills []model.Skill
}

// SkillGrouper partitions skills by category. It is configured once from the
// schema and holds no per-request state.
type SkillGrouper struct {
	categorized bool
	labels      map[string]string
}

func NewSkillGrouper(sch schema.Schema) SkillGrouper {
	return SkillGrouper{
		categorized: sch.Skills.Has("category"),
		labels:      sch.SkillCategories,
	}
}

// Group returns the skill sections. skills must already be in display order;
// that order is kept within each section.
func (g SkillGrouper) Group(skills []model.Skill) []SkillSection {
	if !g.categorized {
		return []SkillSection{{Label: UngroupedLabel, Skills: slices.Clone(skills)}}
	}

	buckets := make(map[string][]model.Skill)
	for _, s := range skills {
		key := s.Category
		if key == "" {
			key = OtherCategory
		}
		buckets[key] = append(buckets[key], s)
	}

	keys := make([]string, 0, len(buckets))
	for _, k := range PreferredCategories {
		if _, ok := buckets[k]; ok {
			keys = append(keys, k)
		}
	}
	var rest []string
	for k := range buckets {
		if !slices.Contains(PreferredCategories, k) {
			rest = append(rest, k)
		}
	}
	slices.Sort(rest)
	keys = append(keys, rest...)

	sections := make([]SkillSection, 0, len(keys))
	for _, k := range keys {
		sections = append(sections, SkillSection{Label: g.label(k), Skills: buckets[k]})
	}
	return sections
}

func (g SkillGrouper) label(code string) string {
	if l, ok := g.labels[code]; ok && l != "" {
		return l
	}
	return code
}
