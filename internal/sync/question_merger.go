package sync

import (
	"context"

	"survey-sync/internal/common/errors"
	"survey-sync/internal/common/logger"
	"survey-sync/internal/directory"
	"survey-sync/internal/models"
	"survey-sync/internal/ordering"

	"github.com/google/uuid"
)

// QuestionMerger replaces a target template's question set wholesale
// with deep copies of the source's questions. Copies get fresh ids in
// the target's id space; config payloads are carried verbatim. The
// result is flattened in section display order and renumbered so the
// copy renders exactly like the source.
type QuestionMerger struct {
	store  directory.Store
	logger logger.Logger
}

func NewQuestionMerger(store directory.Store, log logger.Logger) *QuestionMerger {
	return &QuestionMerger{
		store:  store,
		logger: log.WithFields(map[string]interface{}{"component": "question-merger"}),
	}
}

// PrepareQuestions builds the question list that will be written to a
// target template: deep copies with new ids, validated configs, and
// canonical contiguous ordering.
func (m *QuestionMerger) PrepareQuestions(source []models.Question, sections map[string]int) ([]models.Question, error) {
	copied := make([]models.Question, 0, len(source))
	for _, q := range source {
		if err := models.ValidateConfig(q); err != nil {
			return nil, errors.NewQuestionConfigInvalidError(q.ID, err.Error())
		}
		dup := q.Clone()
		dup.ID = uuid.New().String()
		copied = append(copied, dup)
	}
	return ordering.FlattenBySection(copied, sections), nil
}

// Merge swaps the target's entire question set for the source's,
// copying the source's section-order map along. The store performs the
// replacement transactionally: either the whole set is swapped or the
// target is untouched.
func (m *QuestionMerger) Merge(ctx context.Context, target *models.Template, sourceQuestions []models.Question, sourceSections map[string]int) (*models.Template, error) {
	prepared, err := m.PrepareQuestions(sourceQuestions, sourceSections)
	if err != nil {
		return nil, err
	}

	sections := models.CloneSections(sourceSections)
	if err := m.store.ReplaceQuestions(ctx, target.ID, prepared, sections); err != nil {
		return nil, err
	}

	merged := target.Clone()
	merged.Questions = prepared
	merged.Sections = sections

	m.logger.Info("question set merged", map[string]interface{}{
		"templateId": target.ID,
		"questions":  len(prepared),
	})
	return &merged, nil
}
