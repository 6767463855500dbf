package ordering

import (
	"sort"

	"survey-sync/internal/models"
)

// SectionGroup is one display-ordered bucket of a template's questions.
type SectionGroup struct {
	Name      string
	Rank      int
	Questions []models.Question
}

// GroupBySection buckets questions by section and orders the buckets by
// the template's sparse section-order map. Questions without a section
// fall into the Uncategorized bucket. Sections missing from the map get
// the sentinel rank and sort after all explicit ones; rank ties break
// alphabetically by name. Each bucket keeps its questions in the input's
// relative order. Pure: identical inputs always yield identical output.
func GroupBySection(questions []models.Question, sectionOrder map[string]int) []SectionGroup {
	buckets := make(map[string][]models.Question)
	names := make([]string, 0)

	for _, q := range questions {
		name := q.SectionName()
		if _, seen := buckets[name]; !seen {
			names = append(names, name)
		}
		buckets[name] = append(buckets[name], q)
	}

	groups := make([]SectionGroup, 0, len(names))
	for _, name := range names {
		groups = append(groups, SectionGroup{
			Name:      name,
			Rank:      sectionRank(name, sectionOrder),
			Questions: buckets[name],
		})
	}

	sort.SliceStable(groups, func(i, j int) bool {
		if groups[i].Rank != groups[j].Rank {
			return groups[i].Rank < groups[j].Rank
		}
		return groups[i].Name < groups[j].Name
	})

	return groups
}

// FlattenBySection concatenates the section groups in display order and
// renumbers the result, yielding the canonical question sequence for a
// freshly merged template.
func FlattenBySection(questions []models.Question, sectionOrder map[string]int) []models.Question {
	flat := make([]models.Question, 0, len(questions))
	for _, group := range GroupBySection(questions, sectionOrder) {
		flat = append(flat, group.Questions...)
	}
	return Reorder(flat)
}

func sectionRank(name string, sectionOrder map[string]int) int {
	if rank, ok := sectionOrder[name]; ok {
		return rank
	}
	return models.SectionRankDefault
}
