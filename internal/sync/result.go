// Package sync implements the cross-organization template copy engine:
// version resolution, template reconciliation by survey code, and
// wholesale question-set merging that preserves section ordering.
package sync

import (
	"fmt"

	"survey-sync/internal/common/errors"
)

// Action records how a target entity was produced during a copy.
type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionReused  Action = "reused"
)

// RequestState tracks a copy request through its lifecycle. Per-template
// failures do not leave a request in StateFailed; only an unreadable
// source does.
type RequestState string

const (
	StatePending              RequestState = "pending"
	StateResolvingVersion     RequestState = "resolving_version"
	StateReconcilingTemplates RequestState = "reconciling_templates"
	StateCompleted            RequestState = "completed"
	StateFailed               RequestState = "failed"
)

// CopyTemplateRequest copies one template into a version of the target
// organization. NewSurveyCode defaults to "<source code>_copy".
type CopyTemplateRequest struct {
	SourceTemplateID     string `json:"template_id"`
	TargetOrganizationID string `json:"target_organization_id"`
	TargetVersionName    string `json:"target_version_name"`
	NewSurveyCode        string `json:"new_survey_code,omitempty"`
}

// CopyVersionRequest copies every template of a source version into a
// version of the target organization.
type CopyVersionRequest struct {
	SourceVersionID      string `json:"version_id"`
	TargetOrganizationID string `json:"target_organization_id"`
	TargetVersionName    string `json:"version_name"`
}

// VersionSummary describes the resolved target version.
type VersionSummary struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	OrganizationName string `json:"organization_name"`
	Action           Action `json:"action"`
}

// TemplateSummary describes one reconciled template.
type TemplateSummary struct {
	ID               string `json:"id"`
	SurveyCode       string `json:"survey_code"`
	VersionName      string `json:"version_name"`
	OrganizationName string `json:"organization_name"`
	Action           Action `json:"action"`
}

// TemplateFailure records one template that could not be reconciled
// during a version copy. The batch continues past it.
type TemplateFailure struct {
	SourceTemplateID string           `json:"source_template_id"`
	SurveyCode       string           `json:"survey_code,omitempty"`
	Code             errors.ErrorCode `json:"code,omitempty"`
	Error            string           `json:"error"`
}

// CopyTemplateResult is the summary for a single-template copy.
type CopyTemplateResult struct {
	State    RequestState    `json:"state"`
	Version  VersionSummary  `json:"version"`
	Template TemplateSummary `json:"copied_template"`
}

// CopyVersionResult is the summary for a version copy. Partial
// failures ride along; already-reconciled templates are never rolled
// back on account of a failed sibling.
type CopyVersionResult struct {
	State            RequestState      `json:"state"`
	Version          VersionSummary    `json:"copied_version"`
	Message          string            `json:"message"`
	TemplatesCreated int               `json:"templates_created"`
	TemplatesUpdated int               `json:"templates_updated"`
	Failures         []TemplateFailure `json:"failures,omitempty"`
}

func (r *CopyVersionResult) buildMessage() {
	r.Message = fmt.Sprintf("Copied templates to %q: %d created, %d updated, %d failed",
		r.Version.Name, r.TemplatesCreated, r.TemplatesUpdated, len(r.Failures))
}
