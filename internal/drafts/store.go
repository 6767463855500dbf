// Package drafts stores in-progress question edits in Redis. A draft
// is the working copy of one template's question list; the console
// reorders and edits it freely, then commits or abandons it. Drafts
// expire on their own so abandoned sessions clean themselves up.
package drafts

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"survey-sync/internal/common/errors"
	"survey-sync/internal/common/logger"
	"survey-sync/internal/models"
	"survey-sync/internal/ordering"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "survey-sync:draft:"

// Draft is one template's editable question set.
type Draft struct {
	TemplateID string            `json:"template_id"`
	Questions  []models.Question `json:"questions"`
	Sections   map[string]int    `json:"sections,omitempty"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// Store keeps drafts in Redis under a per-template key with a TTL.
type Store struct {
	client *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewStore(client *redis.Client, ttl time.Duration, log logger.Logger) *Store {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Store{
		client: client,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"component": "draft-store"}),
	}
}

func draftKey(templateID string) string {
	return keyPrefix + templateID
}

// Save writes the draft and resets its expiry. Questions are
// renumbered so the stored draft always carries contiguous orders.
func (s *Store) Save(ctx context.Context, draft Draft) (*Draft, error) {
	if draft.TemplateID == "" {
		return nil, errors.NewValidationError("draft template id is required")
	}
	for _, q := range draft.Questions {
		if err := models.ValidateConfig(q); err != nil {
			return nil, errors.NewQuestionConfigInvalidError(q.ID, err.Error())
		}
	}

	draft.Questions = ordering.Reorder(draft.Questions)
	draft.UpdatedAt = time.Now().UTC()

	payload, err := json.Marshal(draft)
	if err != nil {
		return nil, errors.NewDraftStoreFailedError(fmt.Errorf("marshal draft: %w", err))
	}
	if err := s.client.Set(ctx, draftKey(draft.TemplateID), payload, s.ttl).Err(); err != nil {
		return nil, errors.NewDraftStoreFailedError(err)
	}

	s.logger.Debug("draft saved", map[string]interface{}{
		"templateId": draft.TemplateID,
		"questions":  len(draft.Questions),
	})
	return &draft, nil
}

// Load reads the draft for a template.
func (s *Store) Load(ctx context.Context, templateID string) (*Draft, error) {
	data, err := s.client.Get(ctx, draftKey(templateID)).Bytes()
	if err == redis.Nil {
		return nil, errors.NewDraftNotFoundError(templateID)
	}
	if err != nil {
		return nil, errors.NewDraftStoreFailedError(err)
	}

	var draft Draft
	if err := json.Unmarshal(data, &draft); err != nil {
		return nil, errors.NewDraftStoreFailedError(fmt.Errorf("unmarshal draft: %w", err))
	}
	return &draft, nil
}

// Delete discards the draft. Deleting an absent draft is not an error.
func (s *Store) Delete(ctx context.Context, templateID string) error {
	if err := s.client.Del(ctx, draftKey(templateID)).Err(); err != nil {
		return errors.NewDraftStoreFailedError(err)
	}
	return nil
}

// MoveQuestion moves the question at fromIndex to toIndex inside the
// draft and persists the renumbered result. The question keeps its
// section; only positions change.
func (s *Store) MoveQuestion(ctx context.Context, templateID string, fromIndex, toIndex int) (*Draft, error) {
	draft, err := s.Load(ctx, templateID)
	if err != nil {
		return nil, err
	}

	moved, err := ordering.MoveQuestion(draft.Questions, fromIndex, toIndex)
	if err != nil {
		return nil, err
	}
	draft.Questions = moved

	return s.Save(ctx, *draft)
}
