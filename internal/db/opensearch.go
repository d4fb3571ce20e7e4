package db

import (
	"context"
	"log/slog"

	"github.com/spacesedan/nytsentiment/internal/clients"
	"github.com/spacesedan/nytsentiment/internal/models"
	"github.com/spacesedan/nytsentiment/internal/utils"
)

const (
	DEFAULT_RESULTS_INDEX = "nyt-sentiment-results"
	INDEX_BATCH_SIZE      = 500
)

type BulkIndexer interface {
	BulkIndex(ctx context.Context, index string, docs []clients.BulkDocument) error
}

// ResultIndexer makes per-record results searchable by text, label and date.
type ResultIndexer struct {
	client BulkIndexer
	index  string
}

func NewResultIndexer(client BulkIndexer, index string) *ResultIndexer {
	if index == "" {
		index = DEFAULT_RESULTS_INDEX
	}
	return &ResultIndexer{client: client, index: index}
}

func (r *ResultIndexer) Name() string {
	return "opensearch"
}

func (r *ResultIndexer) Store(ctx context.Context, report *models.RunReport) error {
	var docs []clients.BulkDocument
	for _, outcome := range []models.DatasetOutcome{report.Comments, report.Articles} {
		if outcome.Status != models.DATASET_ANNOTATED || outcome.Dataset == nil {
			continue
		}
		for _, item := range ResultItems(report.RunID, outcome.Dataset, 0) {
			docs = append(docs, clients.BulkDocument{
				ID:   item.RunID + "/" + item.RecordKey,
				Body: item,
			})
		}
	}

	for _, batch := range utils.Chunk(docs, INDEX_BATCH_SIZE) {
		if err := r.client.BulkIndex(ctx, r.index, batch); err != nil {
			return err
		}
	}

	slog.Info("[OpenSearch] Indexed run results",
		slog.String("run_id", report.RunID),
		slog.Int("documents", len(docs)))
	return nil
}
