package directory

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"survey-sync/internal/common/errors"
	"survey-sync/internal/common/logger"
	"survey-sync/internal/models"

	"github.com/lib/pq"
)

// Required schema constraints:
//   template_versions UNIQUE (organization_id, name)
//   templates         UNIQUE (version_id, survey_code)
const pqUniqueViolation = "23505"

// Postgres implements Store on database/sql.
type Postgres struct {
	db     *sql.DB
	logger logger.Logger
}

func NewPostgres(db *sql.DB, log logger.Logger) *Postgres {
	return &Postgres{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "directory"}),
	}
}

func (s *Postgres) GetOrganization(ctx context.Context, id string) (*models.Organization, error) {
	var org models.Organization
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name FROM organizations WHERE id = $1`, id).
		Scan(&org.ID, &org.Name)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("get organization", err)
	}
	return &org, nil
}

func (s *Postgres) GetVersion(ctx context.Context, id string) (*models.TemplateVersion, error) {
	var v models.TemplateVersion
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, description, organization_id
		FROM template_versions WHERE id = $1`, id).
		Scan(&v.ID, &v.Name, &v.Description, &v.OrganizationID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("get version", err)
	}
	return &v, nil
}

func (s *Postgres) FindVersion(ctx context.Context, orgID, name string) (*models.TemplateVersion, error) {
	var v models.TemplateVersion
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, description, organization_id
		FROM template_versions WHERE organization_id = $1 AND name = $2`, orgID, name).
		Scan(&v.ID, &v.Name, &v.Description, &v.OrganizationID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("find version", err)
	}
	return &v, nil
}

func (s *Postgres) ListVersions(ctx context.Context, orgID string) ([]models.TemplateVersion, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, description, organization_id
		FROM template_versions WHERE organization_id = $1
		ORDER BY name`, orgID)
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("list versions", err)
	}
	defer rows.Close()

	var versions []models.TemplateVersion
	for rows.Next() {
		var v models.TemplateVersion
		if err := rows.Scan(&v.ID, &v.Name, &v.Description, &v.OrganizationID); err != nil {
			return nil, errors.NewQueryExecutionFailedError("list versions", err)
		}
		versions = append(versions, v)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewQueryExecutionFailedError("list versions", err)
	}
	return versions, nil
}

func (s *Postgres) EnsureVersion(ctx context.Context, version models.TemplateVersion) (*models.TemplateVersion, bool, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO template_versions (id, name, description, organization_id)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (organization_id, name) DO NOTHING
		RETURNING id`,
		version.ID, version.Name, version.Description, version.OrganizationID).
		Scan(&id)

	if err == nil {
		version.ID = id
		s.logger.Info("version created", map[string]interface{}{
			"versionId":      id,
			"organizationId": version.OrganizationID,
			"name":           version.Name,
		})
		return &version, true, nil
	}
	if err != sql.ErrNoRows {
		return nil, false, errors.NewQueryExecutionFailedError("ensure version", err)
	}

	// Insert lost to an existing row; a concurrent creator included.
	existing, err := s.FindVersion(ctx, version.OrganizationID, version.Name)
	if err != nil {
		return nil, false, err
	}
	if existing == nil {
		return nil, false, errors.NewQueryExecutionFailedError("ensure version",
			fmt.Errorf("version vanished after conflict for (%s, %s)", version.OrganizationID, version.Name))
	}
	return existing, false, nil
}

func (s *Postgres) GetTemplate(ctx context.Context, id string) (*models.Template, error) {
	var t models.Template
	var sections []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT id, survey_code, version_id, sections
		FROM templates WHERE id = $1`, id).
		Scan(&t.ID, &t.SurveyCode, &t.VersionID, &sections)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("get template", err)
	}
	if err := unmarshalSections(sections, &t); err != nil {
		return nil, err
	}
	if t.Questions, err = s.loadQuestions(ctx, t.ID); err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *Postgres) FindTemplate(ctx context.Context, versionID, surveyCode string) (*models.Template, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, survey_code, version_id, sections
		FROM templates WHERE version_id = $1 AND survey_code = $2`, versionID, surveyCode)
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("find template", err)
	}
	defer rows.Close()

	matches, err := scanTemplates(rows)
	if err != nil {
		return nil, err
	}
	switch len(matches) {
	case 0:
		return nil, nil
	case 1:
		t := matches[0]
		if t.Questions, err = s.loadQuestions(ctx, t.ID); err != nil {
			return nil, err
		}
		return &t, nil
	default:
		return nil, errors.NewDuplicateSurveyCodeError(versionID, surveyCode)
	}
}

func (s *Postgres) ListTemplates(ctx context.Context, versionID string) ([]models.Template, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, survey_code, version_id, sections
		FROM templates WHERE version_id = $1 ORDER BY survey_code`, versionID)
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("list templates", err)
	}
	defer rows.Close()

	templates, err := scanTemplates(rows)
	if err != nil {
		return nil, err
	}
	for i := range templates {
		if templates[i].Questions, err = s.loadQuestions(ctx, templates[i].ID); err != nil {
			return nil, err
		}
	}
	return templates, nil
}

func (s *Postgres) CreateTemplate(ctx context.Context, template models.Template) (*models.Template, error) {
	sections, err := marshalSections(template.Sections)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("create template", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO templates (id, survey_code, version_id, sections)
		VALUES ($1, $2, $3, $4)`,
		template.ID, template.SurveyCode, template.VersionID, sections)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && string(pqErr.Code) == pqUniqueViolation {
			return nil, errors.NewDuplicateSurveyCodeError(template.VersionID, template.SurveyCode)
		}
		return nil, errors.NewQueryExecutionFailedError("create template", err)
	}

	if err := insertQuestions(ctx, tx, template.ID, template.Questions); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.NewQueryExecutionFailedError("create template", err)
	}

	s.logger.Info("template created", map[string]interface{}{
		"templateId": template.ID,
		"surveyCode": template.SurveyCode,
		"versionId":  template.VersionID,
		"questions":  len(template.Questions),
	})
	return &template, nil
}

func (s *Postgres) ReplaceQuestions(ctx context.Context, templateID string, questions []models.Question, sections map[string]int) error {
	sectionsJSON, err := marshalSections(sections)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.NewQueryExecutionFailedError("replace questions", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM questions WHERE template_id = $1`, templateID); err != nil {
		return errors.NewQueryExecutionFailedError("replace questions", err)
	}

	if err := insertQuestions(ctx, tx, templateID, questions); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE templates SET sections = $2 WHERE id = $1`, templateID, sectionsJSON); err != nil {
		return errors.NewQueryExecutionFailedError("replace questions", err)
	}

	if err := tx.Commit(); err != nil {
		return errors.NewQueryExecutionFailedError("replace questions", err)
	}

	s.logger.Info("question set replaced", map[string]interface{}{
		"templateId": templateID,
		"questions":  len(questions),
	})
	return nil
}

func (s *Postgres) loadQuestions(ctx context.Context, templateID string) ([]models.Question, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, question_text, question_type_id, section, ord, is_required, config
		FROM questions WHERE template_id = $1 ORDER BY ord`, templateID)
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("load questions", err)
	}
	defer rows.Close()

	var out []models.Question
	for rows.Next() {
		var q models.Question
		var section sql.NullString
		var config []byte
		if err := rows.Scan(&q.ID, &q.Text, &q.TypeKind, &section, &q.Order, &q.IsRequired, &config); err != nil {
			return nil, errors.NewQueryExecutionFailedError("load questions", err)
		}
		q.Section = section.String
		if len(config) > 0 {
			q.Config = models.NewQuestionConfig(config)
		}
		out = append(out, q)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewQueryExecutionFailedError("load questions", err)
	}
	return out, nil
}

func insertQuestions(ctx context.Context, tx *sql.Tx, templateID string, questions []models.Question) error {
	for _, q := range questions {
		var section interface{}
		if q.Section != "" {
			section = q.Section
		}
		var config interface{}
		if !q.Config.IsZero() {
			config = []byte(q.Config.Raw())
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO questions (id, template_id, question_text, question_type_id, section, ord, is_required, config)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			q.ID, templateID, q.Text, string(q.TypeKind), section, q.Order, q.IsRequired, config)
		if err != nil {
			return errors.NewQueryExecutionFailedError("insert question", err)
		}
	}
	return nil
}

func scanTemplates(rows *sql.Rows) ([]models.Template, error) {
	var out []models.Template
	for rows.Next() {
		var t models.Template
		var sections []byte
		if err := rows.Scan(&t.ID, &t.SurveyCode, &t.VersionID, &sections); err != nil {
			return nil, errors.NewQueryExecutionFailedError("scan template", err)
		}
		if err := unmarshalSections(sections, &t); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewQueryExecutionFailedError("scan templates", err)
	}
	return out, nil
}

func marshalSections(sections map[string]int) ([]byte, error) {
	if sections == nil {
		sections = map[string]int{}
	}
	data, err := json.Marshal(sections)
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("marshal sections", err)
	}
	return data, nil
}

func unmarshalSections(data []byte, t *models.Template) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, &t.Sections); err != nil {
		return errors.NewQueryExecutionFailedError("unmarshal sections", err)
	}
	return nil
}
