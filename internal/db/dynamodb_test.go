package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/spacesedan/nytsentiment/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDynamo struct {
	mu          sync.Mutex
	puts        []*dynamodb.PutItemInput
	batches     [][]types.WriteRequest
	unprocessed int
	putErr      error
}

func (f *fakeDynamo) PutItem(ctx context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return nil, f.putErr
	}
	f.puts = append(f.puts, in)
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamo) BatchWriteItem(ctx context.Context, in *dynamodb.BatchWriteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	reqs := in.RequestItems[RESULTS_TABLE_NAME]
	out := &dynamodb.BatchWriteItemOutput{}
	if f.unprocessed > 0 && len(reqs) > 0 {
		f.unprocessed--
		out.UnprocessedItems = map[string][]types.WriteRequest{RESULTS_TABLE_NAME: reqs[:1]}
		reqs = reqs[1:]
	}
	f.batches = append(f.batches, reqs)
	return out, nil
}

func (f *fakeDynamo) written() int {
	n := 0
	for _, b := range f.batches {
		n += len(b)
	}
	return n
}

func annotatedComments(n int) *models.Dataset {
	ds := models.NewDataset(models.ROLE_COMMENTS, []string{models.FIELD_COMMENT_BODY, models.FIELD_SENTIMENT, models.FIELD_SCORE})
	for i := 0; i < n; i++ {
		rec := models.NewRecord(i)
		rec.Set(models.FIELD_COMMENT_BODY, models.StringValue("text"))
		rec.Annotation = &models.Annotation{
			Status: models.ANNOTATION_OK,
			Result: models.SentimentResult{Label: "POSITIVE", Score: 0.9},
		}
		ds.Records = append(ds.Records, rec)
	}
	return ds
}

func testReport(ds *models.Dataset) *models.RunReport {
	return &models.RunReport{
		RunID:     "run-1",
		CreatedAt: time.Unix(1700000000, 0).UTC(),
		Comments: models.DatasetOutcome{
			Role:    models.ROLE_COMMENTS,
			Status:  models.DATASET_ANNOTATED,
			Dataset: ds,
		},
		Articles: models.DatasetOutcome{Role: models.ROLE_ARTICLES, Status: models.DATASET_NOT_PROVIDED},
	}
}

func TestResultStoreBatchesByTwentyFive(t *testing.T) {
	fake := &fakeDynamo{}
	store := NewResultStore(fake)

	require.NoError(t, store.Store(context.Background(), testReport(annotatedComments(60))))

	require.Len(t, fake.puts, 1)
	assert.Equal(t, RUNS_TABLE_NAME, *fake.puts[0].TableName)
	assert.Contains(t, fake.puts[0].Item, "report")

	require.Len(t, fake.batches, 3)
	assert.Len(t, fake.batches[0], 25)
	assert.Len(t, fake.batches[2], 10)
	assert.Equal(t, 60, fake.written())
}

func TestResultStoreRunItemOmitsFailureList(t *testing.T) {
	report := testReport(annotatedComments(1))
	report.Comments.Summary = models.AnnotationSummary{Total: 20001, Annotated: 1, Failed: 20000}
	for i := 1; i <= 20000; i++ {
		report.Comments.Summary.Failures = append(report.Comments.Summary.Failures, models.RecordFailure{
			Index:  i,
			Reason: fmt.Sprintf("record %d: classification failed: upstream timeout", i),
		})
	}

	fake := &fakeDynamo{}
	require.NoError(t, NewResultStore(fake).Store(context.Background(), report))

	require.Len(t, fake.puts, 1)
	attr, ok := fake.puts[0].Item["report"].(*types.AttributeValueMemberS)
	require.True(t, ok)
	assert.Less(t, len(attr.Value), 400*1024)

	var stored models.RunReport
	require.NoError(t, json.Unmarshal([]byte(attr.Value), &stored))
	assert.Equal(t, 20000, stored.Comments.Summary.Failed)
	assert.Empty(t, stored.Comments.Summary.Failures)

	// the caller's report is untouched
	assert.Len(t, report.Comments.Summary.Failures, 20000)
}

func TestResultStoreRetriesUnprocessed(t *testing.T) {
	fake := &fakeDynamo{unprocessed: 2}
	store := NewResultStore(fake)
	store.delay = time.Millisecond

	require.NoError(t, store.Store(context.Background(), testReport(annotatedComments(3))))
	assert.Equal(t, 3, fake.written())
}

func TestResultStorePutError(t *testing.T) {
	fake := &fakeDynamo{putErr: errors.New("throttled")}
	err := NewResultStore(fake).Store(context.Background(), testReport(annotatedComments(1)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "throttled")
	assert.Empty(t, fake.batches)
}

func TestResultItemsFailedRecord(t *testing.T) {
	ds := annotatedComments(2)
	ds.Records[1].Annotation = &models.Annotation{Status: models.ANNOTATION_FAILED, Reason: "boom"}

	items := ResultItems("run-1", ds, 0)
	require.Len(t, items, 2)

	assert.Equal(t, "comments#00000000", items[0].RecordKey)
	require.NotNil(t, items[0].Score)
	assert.Equal(t, 0.9, *items[0].Score)

	assert.Equal(t, string(models.ANNOTATION_FAILED), items[1].Status)
	assert.Nil(t, items[1].Score)
	assert.Equal(t, "boom", items[1].Reason)
}
