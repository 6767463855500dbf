package directory

import (
	"context"
	"sort"
	"sync"

	"survey-sync/internal/common/errors"
	"survey-sync/internal/models"

	"github.com/google/uuid"
)

// Memory is a mutex-guarded Store used by tests and the local server
// mode. It enforces the same uniqueness guarantees as the Postgres
// implementation.
type Memory struct {
	mu            sync.Mutex
	organizations map[string]models.Organization
	versions      map[string]models.TemplateVersion
	templates     map[string]models.Template
}

func NewMemory() *Memory {
	return &Memory{
		organizations: make(map[string]models.Organization),
		versions:      make(map[string]models.TemplateVersion),
		templates:     make(map[string]models.Template),
	}
}

// Seed helpers for fixtures.

func (m *Memory) AddOrganization(org models.Organization) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.organizations[org.ID] = org
}

func (m *Memory) AddVersion(v models.TemplateVersion) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.versions[v.ID] = v
}

func (m *Memory) AddTemplate(t models.Template) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.templates[t.ID] = t.Clone()
}

func (m *Memory) GetOrganization(ctx context.Context, id string) (*models.Organization, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if org, ok := m.organizations[id]; ok {
		return &org, nil
	}
	return nil, nil
}

func (m *Memory) GetVersion(ctx context.Context, id string) (*models.TemplateVersion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.versions[id]; ok {
		return &v, nil
	}
	return nil, nil
}

func (m *Memory) FindVersion(ctx context.Context, orgID, name string) (*models.TemplateVersion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.findVersionLocked(orgID, name), nil
}

func (m *Memory) findVersionLocked(orgID, name string) *models.TemplateVersion {
	for _, v := range m.versions {
		if v.OrganizationID == orgID && v.Name == name {
			out := v
			return &out
		}
	}
	return nil
}

func (m *Memory) ListVersions(ctx context.Context, orgID string) ([]models.TemplateVersion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.TemplateVersion
	for _, v := range m.versions {
		if v.OrganizationID == orgID {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *Memory) EnsureVersion(ctx context.Context, version models.TemplateVersion) (*models.TemplateVersion, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing := m.findVersionLocked(version.OrganizationID, version.Name); existing != nil {
		return existing, false, nil
	}
	if version.ID == "" {
		version.ID = uuid.New().String()
	}
	m.versions[version.ID] = version
	out := version
	return &out, true, nil
}

func (m *Memory) GetTemplate(ctx context.Context, id string) (*models.Template, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.templates[id]; ok {
		out := t.Clone()
		return &out, nil
	}
	return nil, nil
}

func (m *Memory) FindTemplate(ctx context.Context, versionID, surveyCode string) (*models.Template, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var match *models.Template
	for _, t := range m.templates {
		if t.VersionID == versionID && t.SurveyCode == surveyCode {
			if match != nil {
				return nil, errors.NewDuplicateSurveyCodeError(versionID, surveyCode)
			}
			out := t.Clone()
			match = &out
		}
	}
	return match, nil
}

func (m *Memory) ListTemplates(ctx context.Context, versionID string) ([]models.Template, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.Template
	for _, t := range m.templates {
		if t.VersionID == versionID {
			out = append(out, t.Clone())
		}
	}
	return out, nil
}

func (m *Memory) CreateTemplate(ctx context.Context, template models.Template) (*models.Template, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, t := range m.templates {
		if t.VersionID == template.VersionID && t.SurveyCode == template.SurveyCode {
			return nil, errors.NewDuplicateSurveyCodeError(template.VersionID, template.SurveyCode)
		}
	}
	if template.ID == "" {
		template.ID = uuid.New().String()
	}
	m.templates[template.ID] = template.Clone()
	out := template.Clone()
	return &out, nil
}

func (m *Memory) ReplaceQuestions(ctx context.Context, templateID string, questions []models.Question, sections map[string]int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.templates[templateID]
	if !ok {
		return errors.NewTemplateNotFoundError(templateID)
	}
	t.Questions = models.CloneQuestions(questions)
	t.Sections = models.CloneSections(sections)
	m.templates[templateID] = t
	return nil
}
