// Package catalog mirrors reconciled templates into Elasticsearch so
// the console's list and search pages stay current without hitting
// Postgres. Indexing is best effort: the copy flow logs and counts
// failures but never fails a request because of the catalog.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"survey-sync/internal/common/errors"
	"survey-sync/internal/common/logger"
	"survey-sync/internal/sync"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

const DefaultIndex = "survey-templates"

// Indexer writes template summaries to an Elasticsearch index. The
// document id is the template id, so re-copies overwrite in place.
type Indexer struct {
	client *elasticsearch.Client
	index  string
	logger logger.Logger
}

func NewIndexer(client *elasticsearch.Client, index string, log logger.Logger) *Indexer {
	if index == "" {
		index = DefaultIndex
	}
	return &Indexer{
		client: client,
		index:  index,
		logger: log.WithFields(map[string]interface{}{"component": "catalog-indexer"}),
	}
}

// IndexTemplate upserts one catalog entry.
func (i *Indexer) IndexTemplate(ctx context.Context, entry sync.CatalogEntry) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return errors.NewCatalogIndexFailedError(fmt.Errorf("marshal catalog entry: %w", err))
	}

	req := esapi.IndexRequest{
		Index:      i.index,
		DocumentID: entry.TemplateID,
		Body:       bytes.NewReader(payload),
		Refresh:    "false",
	}
	res, err := req.Do(ctx, i.client)
	if err != nil {
		return errors.NewCatalogIndexFailedError(err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return errors.NewCatalogIndexFailedError(fmt.Errorf("index %s: %s", i.index, res.Status()))
	}

	i.logger.Debug("catalog entry indexed", map[string]interface{}{
		"templateId": entry.TemplateID,
		"surveyCode": entry.SurveyCode,
	})
	return nil
}

// DeleteTemplate removes a template's catalog entry. Missing documents
// are not an error.
func (i *Indexer) DeleteTemplate(ctx context.Context, templateID string) error {
	req := esapi.DeleteRequest{
		Index:      i.index,
		DocumentID: templateID,
	}
	res, err := req.Do(ctx, i.client)
	if err != nil {
		return errors.NewCatalogIndexFailedError(err)
	}
	defer res.Body.Close()

	if res.IsError() && res.StatusCode != 404 {
		return errors.NewCatalogIndexFailedError(fmt.Errorf("delete from %s: %s", i.index, res.Status()))
	}
	return nil
}
