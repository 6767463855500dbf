package sync

import (
	"context"

	"survey-sync/internal/common/errors"
	"survey-sync/internal/common/logger"
	"survey-sync/internal/directory"
	"survey-sync/internal/models"

	"github.com/google/uuid"
)

// VersionResolver finds or creates the target version by exact name
// within an organization. Name matching is case-sensitive with no
// normalization; the store guarantees at most one version per
// (organization_id, name) even under concurrent resolution.
type VersionResolver struct {
	store  directory.Store
	logger logger.Logger
}

func NewVersionResolver(store directory.Store, log logger.Logger) *VersionResolver {
	return &VersionResolver{
		store:  store,
		logger: log.WithFields(map[string]interface{}{"component": "version-resolver"}),
	}
}

// Resolve returns the version, its organization, and whether the
// version was reused or created.
func (r *VersionResolver) Resolve(ctx context.Context, targetOrgID, name, description string) (*models.TemplateVersion, *models.Organization, Action, error) {
	if targetOrgID == "" {
		return nil, nil, "", errors.NewValidationError("target organization id is required")
	}
	if name == "" {
		return nil, nil, "", errors.NewValidationError("target version name is required")
	}

	org, err := r.store.GetOrganization(ctx, targetOrgID)
	if err != nil {
		return nil, nil, "", err
	}
	if org == nil {
		return nil, nil, "", errors.NewOrganizationNotFoundError(targetOrgID)
	}

	version, created, err := r.store.EnsureVersion(ctx, models.TemplateVersion{
		ID:             uuid.New().String(),
		Name:           name,
		Description:    description,
		OrganizationID: targetOrgID,
	})
	if err != nil {
		return nil, nil, "", err
	}

	action := ActionReused
	if created {
		action = ActionCreated
	}

	r.logger.Info("target version resolved", map[string]interface{}{
		"organizationId": targetOrgID,
		"versionId":      version.ID,
		"name":           name,
		"action":         string(action),
	})
	return version, org, action, nil
}
