package ordering

import (
	"testing"

	"survey-sync/internal/common/errors"
	"survey-sync/internal/models"

	"github.com/stretchr/testify/assert"
)

// ==========================
// Test Helper Functions
// ==========================

func makeQuestions(ids ...string) []models.Question {
	out := make([]models.Question, len(ids))
	for i, id := range ids {
		out[i] = models.Question{ID: id, Text: "q " + id, Order: 100 + i*10}
	}
	return out
}

func orderValues(qs []models.Question) []int {
	out := make([]int, len(qs))
	for i, q := range qs {
		out[i] = q.Order
	}
	return out
}

func idValues(qs []models.Question) []string {
	out := make([]string, len(qs))
	for i, q := range qs {
		out[i] = q.ID
	}
	return out
}

// ==========================
// Reorder
// ==========================

func TestReorder_AssignsContiguousOrder(t *testing.T) {
	qs := makeQuestions("a", "b", "c")
	got := Reorder(qs)

	assert.Equal(t, []int{0, 1, 2}, orderValues(got))
	assert.Equal(t, []string{"a", "b", "c"}, idValues(got))
}

func TestReorder_DoesNotMutateInput(t *testing.T) {
	qs := makeQuestions("a", "b")
	_ = Reorder(qs)

	assert.Equal(t, []int{100, 110}, orderValues(qs))
}

func TestReorder_EmptyList(t *testing.T) {
	got := Reorder(nil)
	assert.Empty(t, got)
}

func TestReorder_OrderStrictlyIncreasingNoDuplicates(t *testing.T) {
	qs := makeQuestions("a", "b", "c", "d", "e")
	got := Reorder(qs)

	seen := map[int]bool{}
	for i, q := range got {
		assert.False(t, seen[q.Order], "duplicate order %d", q.Order)
		seen[q.Order] = true
		if i > 0 {
			assert.Greater(t, q.Order, got[i-1].Order)
		}
	}
}

// ==========================
// MoveQuestion
// ==========================

func TestMoveQuestion(t *testing.T) {
	tests := []struct {
		name      string
		ids       []string
		from, to  int
		wantIDs   []string
	}{
		{
			name: "move last to first",
			ids:  []string{"a", "b", "c", "d", "e"},
			from: 4, to: 0,
			wantIDs: []string{"e", "a", "b", "c", "d"},
		},
		{
			name: "move first to last",
			ids:  []string{"a", "b", "c"},
			from: 0, to: 2,
			wantIDs: []string{"b", "c", "a"},
		},
		{
			name: "move to same position",
			ids:  []string{"a", "b", "c"},
			from: 1, to: 1,
			wantIDs: []string{"a", "b", "c"},
		},
		{
			name: "move middle forward",
			ids:  []string{"a", "b", "c", "d"},
			from: 1, to: 2,
			wantIDs: []string{"a", "c", "b", "d"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MoveQuestion(makeQuestions(tt.ids...), tt.from, tt.to)

			assert.NoError(t, err)
			assert.Equal(t, tt.wantIDs, idValues(got))

			want := make([]int, len(tt.wantIDs))
			for i := range want {
				want[i] = i
			}
			assert.Equal(t, want, orderValues(got))
		})
	}
}

func TestMoveQuestion_OutOfRange(t *testing.T) {
	tests := []struct {
		name     string
		from, to int
	}{
		{"negative from", -1, 0},
		{"negative to", 0, -1},
		{"from past end", 3, 0},
		{"to past end", 0, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MoveQuestion(makeQuestions("a", "b", "c"), tt.from, tt.to)

			assert.Nil(t, got)
			assert.Error(t, err)
			assert.Equal(t, errors.ErrCodeReorderOutOfRange, errors.CodeOf(err))
		})
	}
}

func TestMoveQuestion_SingleSectionScenario(t *testing.T) {
	// Five questions in one section, index 4 moved to index 0.
	qs := makeQuestions("q0", "q1", "q2", "q3", "q4")
	for i := range qs {
		qs[i].Section = "Intro"
	}

	got, err := MoveQuestion(qs, 4, 0)

	assert.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, orderValues(got))
	assert.Equal(t, "q4", got[0].ID)
}
