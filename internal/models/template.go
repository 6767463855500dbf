package models

// SectionUncategorized is the bucket for questions without an explicit section.
const SectionUncategorized = "Uncategorized"

// SectionRankDefault is the display rank for sections missing from a
// template's section-order map; they sort after all explicit sections.
const SectionRankDefault = 999

// Organization is looked up by the sync engine, never created by it.
type Organization struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// TemplateVersion groups survey templates under one organization.
// Within an organization the version name is the reconciliation key:
// at most one version may exist per (organization_id, name).
type TemplateVersion struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Description    string `json:"description,omitempty"`
	OrganizationID string `json:"organization_id"`
}

// Template is a single survey definition. Within a version the survey
// code is the reconciliation key: at most one template per
// (version_id, survey_code).
type Template struct {
	ID         string         `json:"id"`
	SurveyCode string         `json:"survey_code"`
	VersionID  string         `json:"version_id"`
	Questions  []Question     `json:"questions"`
	Sections   map[string]int `json:"sections,omitempty"`
}

// Question is one entry of a template's ordered, sectioned list.
// Order values are globally unique per template; only their relative
// value within a section is semantically meaningful.
type Question struct {
	ID         string           `json:"id"`
	Text       string           `json:"question_text"`
	TypeKind   QuestionTypeKind `json:"question_type_id"`
	Section    string           `json:"section,omitempty"`
	Order      int              `json:"order"`
	IsRequired bool             `json:"is_required"`
	Config     QuestionConfig   `json:"config,omitempty"`
}

// SectionName returns the question's section, defaulting the empty value.
func (q Question) SectionName() string {
	if q.Section == "" {
		return SectionUncategorized
	}
	return q.Section
}

// Clone returns a deep copy of the question.
func (q Question) Clone() Question {
	out := q
	out.Config = q.Config.Clone()
	return out
}

// CloneQuestions deep-copies a question list.
func CloneQuestions(qs []Question) []Question {
	if qs == nil {
		return nil
	}
	out := make([]Question, len(qs))
	for i, q := range qs {
		out[i] = q.Clone()
	}
	return out
}

// CloneSections copies a sparse section-order map.
func CloneSections(sections map[string]int) map[string]int {
	if sections == nil {
		return nil
	}
	out := make(map[string]int, len(sections))
	for k, v := range sections {
		out[k] = v
	}
	return out
}

// Clone returns a deep copy of the template.
func (t Template) Clone() Template {
	out := t
	out.Questions = CloneQuestions(t.Questions)
	out.Sections = CloneSections(t.Sections)
	return out
}
