package sync

import (
	"context"
	"time"

	"survey-sync/internal/common/errors"
	"survey-sync/internal/common/logger"
	"survey-sync/internal/common/metrics"
	"survey-sync/internal/common/observability"
	"survey-sync/internal/directory"
	"survey-sync/internal/models"
	"survey-sync/internal/pkg/workerpool"
)

// CatalogEntry is the template summary handed to the search index after
// a successful reconciliation.
type CatalogEntry struct {
	TemplateID       string   `json:"template_id"`
	SurveyCode       string   `json:"survey_code"`
	VersionID        string   `json:"version_id"`
	VersionName      string   `json:"version_name"`
	OrganizationID   string   `json:"organization_id"`
	OrganizationName string   `json:"organization_name"`
	QuestionCount    int      `json:"question_count"`
	Sections         []string `json:"sections"`
	Action           string   `json:"action"`
}

// Indexer feeds the console's list/search pages. Failures are logged
// and counted, never propagated into the copy result.
type Indexer interface {
	IndexTemplate(ctx context.Context, entry CatalogEntry) error
}

// Options tunes the orchestrator. Zero values fall back to serial
// reconciliation with a 10s per-template budget.
type Options struct {
	CopyConcurrency int
	ItemTimeout     time.Duration
	Indexer         Indexer
	Observability   *observability.Observability
}

// Orchestrator sequences version resolution and template
// reconciliation for the two copy entry points. The engine is
// idempotent: re-running a copy with the same target converges to the
// same end state instead of duplicating data.
type Orchestrator struct {
	store       directory.Store
	resolver    *VersionResolver
	reconciler  *TemplateReconciler
	indexer     Indexer
	obs         *observability.Observability
	logger      logger.Logger
	concurrency int
	itemTimeout time.Duration
}

func NewOrchestrator(store directory.Store, log logger.Logger, opts Options) *Orchestrator {
	merger := NewQuestionMerger(store, log)

	concurrency := opts.CopyConcurrency
	if concurrency < 1 {
		concurrency = 1
	}
	itemTimeout := opts.ItemTimeout
	if itemTimeout <= 0 {
		itemTimeout = 10 * time.Second
	}

	return &Orchestrator{
		store:       store,
		resolver:    NewVersionResolver(store, log),
		reconciler:  NewTemplateReconciler(store, merger, log),
		indexer:     opts.Indexer,
		obs:         opts.Observability,
		logger:      log.WithFields(map[string]interface{}{"component": "copy-orchestrator"}),
		concurrency: concurrency,
		itemTimeout: itemTimeout,
	}
}

// CopyTemplate copies one template into the target organization's
// version, creating the version by name when needed. Without a caller
// supplied survey code the copy lands as "<source code>_copy".
func (o *Orchestrator) CopyTemplate(ctx context.Context, req CopyTemplateRequest) (*CopyTemplateResult, error) {
	started := time.Now()
	state := StatePending

	if req.SourceTemplateID == "" {
		return nil, o.finish("copy_template", started, state, errors.NewValidationError("source template id is required"))
	}

	source, err := o.store.GetTemplate(ctx, req.SourceTemplateID)
	if err != nil {
		return nil, o.finish("copy_template", started, StateFailed, err)
	}
	if source == nil {
		return nil, o.finish("copy_template", started, StateFailed, errors.NewTemplateNotFoundError(req.SourceTemplateID))
	}

	state = StateResolvingVersion
	version, org, versionAction, err := o.resolver.Resolve(ctx, req.TargetOrganizationID, req.TargetVersionName, "")
	if err != nil {
		return nil, o.finish("copy_template", started, StateFailed, err)
	}

	desiredCode := req.NewSurveyCode
	if desiredCode == "" {
		desiredCode = source.SurveyCode + DefaultCopySuffix
	}

	state = StateReconcilingTemplates
	template, templateAction, err := o.reconciler.Reconcile(ctx, version.ID, *source, desiredCode)
	if err != nil {
		return nil, o.finish("copy_template", started, StateFailed, err)
	}

	metrics.TemplatesReconciled.WithLabelValues(string(templateAction)).Inc()
	o.index(ctx, *template, *version, *org, templateAction)

	result := &CopyTemplateResult{
		State: StateCompleted,
		Version: VersionSummary{
			ID:               version.ID,
			Name:             version.Name,
			OrganizationName: org.Name,
			Action:           versionAction,
		},
		Template: TemplateSummary{
			ID:               template.ID,
			SurveyCode:       template.SurveyCode,
			VersionName:      version.Name,
			OrganizationName: org.Name,
			Action:           templateAction,
		},
	}
	o.finish("copy_template", started, StateCompleted, nil)
	return result, nil
}

// CopyVersion copies every template of the source version into the
// target organization's version. Templates reconcile independently;
// one failing leaves its siblings and the overall request intact.
func (o *Orchestrator) CopyVersion(ctx context.Context, req CopyVersionRequest) (*CopyVersionResult, error) {
	started := time.Now()

	if req.SourceVersionID == "" {
		return nil, o.finish("copy_version", started, StatePending, errors.NewValidationError("source version id is required"))
	}

	source, err := o.store.GetVersion(ctx, req.SourceVersionID)
	if err != nil {
		return nil, o.finish("copy_version", started, StateFailed, err)
	}
	if source == nil {
		return nil, o.finish("copy_version", started, StateFailed, errors.NewVersionNotFoundError(req.SourceVersionID))
	}

	templates, err := o.store.ListTemplates(ctx, source.ID)
	if err != nil {
		return nil, o.finish("copy_version", started, StateFailed, err)
	}

	version, org, versionAction, err := o.resolver.Resolve(ctx, req.TargetOrganizationID, req.TargetVersionName, source.Description)
	if err != nil {
		return nil, o.finish("copy_version", started, StateFailed, err)
	}

	type itemResult struct {
		action  Action
		failure *TemplateFailure
	}
	results := make([]itemResult, len(templates))

	pool := workerpool.New(ctx, o.concurrency, len(templates))
	for i := range templates {
		i := i
		tpl := templates[i]
		pool.Submit(func(jobCtx context.Context) {
			itemCtx, cancel := context.WithTimeout(jobCtx, o.itemTimeout)
			defer cancel()

			// Version-copy flow: match on the source template's own code.
			reconciled, action, err := o.reconciler.Reconcile(itemCtx, version.ID, tpl, "")
			if err != nil {
				results[i] = itemResult{failure: &TemplateFailure{
					SourceTemplateID: tpl.ID,
					SurveyCode:       tpl.SurveyCode,
					Code:             errors.CodeOf(err),
					Error:            errors.UserMessage(err),
				}}
				metrics.TemplateFailures.WithLabelValues(string(errors.CodeOf(err))).Inc()
				o.logger.WithError(err).Warn("template reconciliation failed", map[string]interface{}{
					"sourceTemplateId": tpl.ID,
					"surveyCode":       tpl.SurveyCode,
				})
				return
			}
			results[i] = itemResult{action: action}
			metrics.TemplatesReconciled.WithLabelValues(string(action)).Inc()
			o.index(itemCtx, *reconciled, *version, *org, action)
		})
	}
	pool.Wait()
	pool.Close()

	result := &CopyVersionResult{
		State: StateCompleted,
		Version: VersionSummary{
			ID:               version.ID,
			Name:             version.Name,
			OrganizationName: org.Name,
			Action:           versionAction,
		},
	}
	for _, res := range results {
		switch {
		case res.failure != nil:
			result.Failures = append(result.Failures, *res.failure)
		case res.action == ActionCreated:
			result.TemplatesCreated++
		case res.action == ActionUpdated:
			result.TemplatesUpdated++
		}
	}
	result.buildMessage()

	o.logger.Info("version copy completed", map[string]interface{}{
		"sourceVersionId": req.SourceVersionID,
		"targetVersionId": version.ID,
		"created":         result.TemplatesCreated,
		"updated":         result.TemplatesUpdated,
		"failed":          len(result.Failures),
	})
	o.finish("copy_version", started, StateCompleted, nil)
	return result, nil
}

func (o *Orchestrator) index(ctx context.Context, template models.Template, version models.TemplateVersion, org models.Organization, action Action) {
	if o.indexer == nil {
		return
	}

	sections := make([]string, 0)
	seen := map[string]bool{}
	for _, q := range template.Questions {
		name := q.SectionName()
		if !seen[name] {
			seen[name] = true
			sections = append(sections, name)
		}
	}

	entry := CatalogEntry{
		TemplateID:       template.ID,
		SurveyCode:       template.SurveyCode,
		VersionID:        version.ID,
		VersionName:      version.Name,
		OrganizationID:   org.ID,
		OrganizationName: org.Name,
		QuestionCount:    len(template.Questions),
		Sections:         sections,
		Action:           string(action),
	}
	if err := o.indexer.IndexTemplate(ctx, entry); err != nil {
		metrics.CatalogIndexFailures.Inc()
		o.logger.WithError(err).Warn("catalog index update failed", map[string]interface{}{
			"templateId": template.ID,
		})
	}
}

func (o *Orchestrator) finish(operation string, started time.Time, state RequestState, err error) error {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	metrics.CopyRequestsTotal.WithLabelValues(operation, outcome).Inc()
	metrics.CopyRequestDuration.WithLabelValues(operation).Observe(time.Since(started).Seconds())
	if o.obs != nil {
		o.obs.RecordCopyProcessed(context.Background(), operation, outcome)
		o.obs.RecordCopyDuration(context.Background(), time.Since(started), operation)
	}
	if err != nil {
		o.logger.WithError(err).Error("copy request failed", map[string]interface{}{
			"operation": operation,
			"state":     string(state),
		})
	}
	return err
}
