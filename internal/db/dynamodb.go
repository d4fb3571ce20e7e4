package db

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/spacesedan/nytsentiment/internal/dataset"
	"github.com/spacesedan/nytsentiment/internal/models"
	"github.com/spacesedan/nytsentiment/internal/utils"
)

const (
	RUNS_TABLE_NAME    = "SentimentRuns"
	RESULTS_TABLE_NAME = "SentimentResults"

	RESULT_TTL          = 30 * 24 * time.Hour
	MAX_BATCH_RETRIES   = 3
	INITIAL_BATCH_DELAY = 500 * time.Millisecond
)

// DynamoDBAPI is the subset of *dynamodb.Client the store uses.
type DynamoDBAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
}

type RunItem struct {
	RunID          string `dynamodbav:"run_id"`
	CreatedAt      int64  `dynamodbav:"created_at"`
	CommentsStatus string `dynamodbav:"comments_status"`
	ArticlesStatus string `dynamodbav:"articles_status"`
	Report         string `dynamodbav:"report"`
	ExpiresAt      int64  `dynamodbav:"expires_at"`
}

// ResultItem is one annotated record as stored in DynamoDB and indexed in
// OpenSearch.
type ResultItem struct {
	RunID     string   `dynamodbav:"run_id" json:"run_id"`
	RecordKey string   `dynamodbav:"record_key" json:"record_key"`
	Role      string   `dynamodbav:"role" json:"role"`
	Index     int      `dynamodbav:"index" json:"index"`
	Text      string   `dynamodbav:"text,omitempty" json:"text,omitempty"`
	Status    string   `dynamodbav:"status" json:"status"`
	Label     string   `dynamodbav:"sentiment_label,omitempty" json:"sentiment_label,omitempty"`
	Score     *float64 `dynamodbav:"sentiment_score,omitempty" json:"sentiment_score,omitempty"`
	Reason    string   `dynamodbav:"reason,omitempty" json:"reason,omitempty"`
	Date      string   `dynamodbav:"date,omitempty" json:"date,omitempty"`
	ExpiresAt int64    `dynamodbav:"expires_at" json:"-"`
}

// ResultStore persists run reports and per-record annotations.
type ResultStore struct {
	client DynamoDBAPI
	delay  time.Duration
}

func NewResultStore(client DynamoDBAPI) *ResultStore {
	return &ResultStore{client: client, delay: INITIAL_BATCH_DELAY}
}

func (s *ResultStore) Name() string {
	return "dynamodb"
}

func (s *ResultStore) Store(ctx context.Context, report *models.RunReport) error {
	expiresAt := report.CreatedAt.Add(RESULT_TTL).Unix()

	if err := s.putRun(ctx, report, expiresAt); err != nil {
		return err
	}

	var items []ResultItem
	for _, outcome := range []models.DatasetOutcome{report.Comments, report.Articles} {
		if outcome.Status != models.DATASET_ANNOTATED || outcome.Dataset == nil {
			continue
		}
		items = append(items, ResultItems(report.RunID, outcome.Dataset, expiresAt)...)
	}

	if err := s.batchInsertResults(ctx, items); err != nil {
		return err
	}

	slog.Info("[DynamoDB] Stored run",
		slog.String("run_id", report.RunID),
		slog.Int("results", len(items)))
	return nil
}

func (s *ResultStore) putRun(ctx context.Context, report *models.RunReport, expiresAt int64) error {
	body, err := json.Marshal(runSummary(report))
	if err != nil {
		return fmt.Errorf("[DynamoDB] failed to encode report: %w", err)
	}

	item, err := attributevalue.MarshalMap(RunItem{
		RunID:          report.RunID,
		CreatedAt:      report.CreatedAt.Unix(),
		CommentsStatus: string(report.Comments.Status),
		ArticlesStatus: string(report.Articles.Status),
		Report:         string(body),
		ExpiresAt:      expiresAt,
	})
	if err != nil {
		return fmt.Errorf("[DynamoDB] failed to marshal run item: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(RUNS_TABLE_NAME),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("[DynamoDB] failed to put run: %w", err)
	}
	return nil
}

// runSummary drops the per-record failure lists from the stored report so the
// run item stays under the DynamoDB item size limit. Failure reasons are kept
// on each result item instead; the counts stay in the summary.
func runSummary(report *models.RunReport) models.RunReport {
	summary := *report
	summary.Comments.Summary.Failures = nil
	summary.Articles.Summary.Failures = nil
	return summary
}

// ResultItems converts every record of an annotated dataset into a result
// item keyed by run and record position.
func ResultItems(runID string, ds *models.Dataset, expiresAt int64) []ResultItem {
	schema, _ := dataset.SchemaFor(ds.Role)

	items := make([]ResultItem, 0, ds.Len())
	for _, rec := range ds.Records {
		item := ResultItem{
			RunID:     runID,
			RecordKey: fmt.Sprintf("%s#%08d", ds.Role, rec.Index),
			Role:      string(ds.Role),
			Index:     rec.Index,
			Text:      rec.Get(schema.TextField).Str,
			Status:    string(models.ANNOTATION_FAILED),
			Date:      rec.Get(models.FIELD_DATE).Str,
			ExpiresAt: expiresAt,
		}
		if ann := rec.Annotation; ann != nil {
			item.Status = string(ann.Status)
			item.Reason = ann.Reason
			if ann.OK() {
				score := ann.Result.Score
				item.Label = string(ann.Result.Label)
				item.Score = &score
			}
		}
		items = append(items, item)
	}
	return items
}

func (s *ResultStore) batchInsertResults(ctx context.Context, items []ResultItem) error {
	for _, batch := range utils.Chunk(items, utils.DYNAMODB_BATCH_SIZE) {
		select {
		case <-ctx.Done():
			slog.Warn("[DynamoDB] context canceled")
			return ctx.Err()
		default:
		}

		writeRequests := make([]types.WriteRequest, 0, len(batch))
		for _, result := range batch {
			item, err := attributevalue.MarshalMap(result)
			if err != nil {
				return fmt.Errorf("[DynamoDB] failed to marshal result %s: %w", result.RecordKey, err)
			}
			writeRequests = append(writeRequests, types.WriteRequest{
				PutRequest: &types.PutRequest{Item: item},
			})
		}

		if err := s.batchWrite(ctx, writeRequests); err != nil {
			return err
		}
	}
	return nil
}

func (s *ResultStore) batchWrite(ctx context.Context, writeRequests []types.WriteRequest) error {
	out, err := s.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
		RequestItems: map[string][]types.WriteRequest{
			RESULTS_TABLE_NAME: writeRequests,
		},
	})
	if err != nil {
		return fmt.Errorf("[DynamoDB] Failed to batch write sentiment results: %w", err)
	}

	retryCount := 0
	backoff := s.delay
	for len(out.UnprocessedItems) > 0 && retryCount < MAX_BATCH_RETRIES {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2

		slog.Warn("[DynamoDB] Retrying unprocessed sentiment items...",
			slog.Int("attempt", retryCount+1),
			slog.Int("remaining", len(out.UnprocessedItems[RESULTS_TABLE_NAME])))

		out, err = s.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
			RequestItems: out.UnprocessedItems,
		})
		if err != nil {
			return fmt.Errorf("[DynamoDB] Retry error %w", err)
		}
		retryCount++
	}

	if remaining := len(out.UnprocessedItems[RESULTS_TABLE_NAME]); remaining > 0 {
		return fmt.Errorf("[DynamoDB] %d sentiment items not written after %d retries", remaining, MAX_BATCH_RETRIES)
	}
	return nil
}
