package ordering

import (
	"testing"

	"survey-sync/internal/models"

	"github.com/stretchr/testify/assert"
)

func sectioned(id, section string) models.Question {
	return models.Question{ID: id, Text: "q " + id, Section: section}
}

func groupNames(groups []SectionGroup) []string {
	out := make([]string, len(groups))
	for i, g := range groups {
		out[i] = g.Name
	}
	return out
}

func TestGroupBySection_OrdersByRankMap(t *testing.T) {
	qs := []models.Question{
		sectioned("a", "Details"),
		sectioned("b", "Intro"),
		sectioned("c", "Details"),
		sectioned("d", "Intro"),
	}
	sectionOrder := map[string]int{"Intro": 0, "Details": 1}

	groups := GroupBySection(qs, sectionOrder)

	assert.Equal(t, []string{"Intro", "Details"}, groupNames(groups))
	assert.Equal(t, []string{"b", "d"}, idValues(groups[0].Questions))
	assert.Equal(t, []string{"a", "c"}, idValues(groups[1].Questions))
}

func TestGroupBySection_MissingRankSortsLast(t *testing.T) {
	qs := []models.Question{
		sectioned("a", "Extras"),
		sectioned("b", "Intro"),
	}
	sectionOrder := map[string]int{"Intro": 0}

	groups := GroupBySection(qs, sectionOrder)

	assert.Equal(t, []string{"Intro", "Extras"}, groupNames(groups))
	assert.Equal(t, models.SectionRankDefault, groups[1].Rank)
}

func TestGroupBySection_TiesBreakAlphabetically(t *testing.T) {
	qs := []models.Question{
		sectioned("a", "Zeta"),
		sectioned("b", "Alpha"),
		sectioned("c", "Mid"),
	}

	// No ranks at all: every section gets the sentinel.
	groups := GroupBySection(qs, nil)

	assert.Equal(t, []string{"Alpha", "Mid", "Zeta"}, groupNames(groups))
}

func TestGroupBySection_DefaultsToUncategorized(t *testing.T) {
	qs := []models.Question{
		sectioned("a", ""),
		sectioned("b", "Intro"),
		sectioned("c", ""),
	}
	sectionOrder := map[string]int{"Intro": 0}

	groups := GroupBySection(qs, sectionOrder)

	assert.Equal(t, []string{"Intro", models.SectionUncategorized}, groupNames(groups))
	assert.Equal(t, []string{"a", "c"}, idValues(groups[1].Questions))
}

func TestGroupBySection_Deterministic(t *testing.T) {
	qs := []models.Question{
		sectioned("a", "B"),
		sectioned("b", "A"),
		sectioned("c", "C"),
		sectioned("d", "B"),
		sectioned("e", ""),
	}
	sectionOrder := map[string]int{"C": 0, "B": 2}

	first := GroupBySection(qs, sectionOrder)
	for i := 0; i < 10; i++ {
		again := GroupBySection(qs, sectionOrder)
		assert.Equal(t, first, again)
	}
}

func TestFlattenBySection_CanonicalNumbering(t *testing.T) {
	qs := []models.Question{
		sectioned("a", "Details"),
		sectioned("b", "Intro"),
		sectioned("c", "Details"),
	}
	sectionOrder := map[string]int{"Intro": 0, "Details": 1}

	flat := FlattenBySection(qs, sectionOrder)

	assert.Equal(t, []string{"b", "a", "c"}, idValues(flat))
	assert.Equal(t, []int{0, 1, 2}, orderValues(flat))
}
