// Package ordering maintains the order numbering and section grouping
// of a template's question list.
package ordering

import (
	"survey-sync/internal/common/errors"
	"survey-sync/internal/models"
)

// Reorder assigns each question an order equal to its position in the
// input sequence: 0-based, contiguous, ascending. The input is assumed
// already partitioned so that questions sharing a section are contiguous;
// positional renumbering then preserves their relative order. The input
// slice is not mutated.
func Reorder(questions []models.Question) []models.Question {
	out := make([]models.Question, len(questions))
	for i, q := range questions {
		q.Order = i
		out[i] = q
	}
	return out
}

// MoveQuestion removes the question at fromIndex, reinserts it at
// toIndex, and renumbers the whole list. Out-of-range indices are
// rejected before any change.
func MoveQuestion(questions []models.Question, fromIndex, toIndex int) ([]models.Question, error) {
	n := len(questions)
	if fromIndex < 0 || fromIndex >= n || toIndex < 0 || toIndex >= n {
		return nil, errors.NewReorderOutOfRangeError(fromIndex, toIndex, n)
	}

	out := make([]models.Question, 0, n)
	out = append(out, questions...)

	moved := out[fromIndex]
	out = append(out[:fromIndex], out[fromIndex+1:]...)

	out = append(out, models.Question{})
	copy(out[toIndex+1:], out[toIndex:])
	out[toIndex] = moved

	return Reorder(out), nil
}
