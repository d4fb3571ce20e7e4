package annotate

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/spacesedan/nytsentiment/internal/models"
	"github.com/spacesedan/nytsentiment/internal/sentiment"
	"golang.org/x/sync/errgroup"
)

// MISSING_TEXT is what a missing analysis cell is coerced to before
// classification.
const MISSING_TEXT = "nan"

// ClassificationError records why a single record could not be annotated.
type ClassificationError struct {
	Index int
	Err   error
}

func (e *ClassificationError) Error() string {
	return fmt.Sprintf("record %d: classification failed: %v", e.Index, e.Err)
}

func (e *ClassificationError) Unwrap() error {
	return e.Err
}

type Annotator struct {
	Classifier sentiment.Classifier
	// Workers above 1 classify records concurrently. Results are always
	// attached by record position.
	Workers int
	// MissingText replaces missing cells; MISSING_TEXT when empty.
	MissingText string
}

func New(classifier sentiment.Classifier, workers int) *Annotator {
	return &Annotator{Classifier: classifier, Workers: workers}
}

// Annotate classifies field of every record exactly once and writes the
// sentiment and score columns. Record failures are marked on the record and
// counted; only context cancellation aborts, in which case nothing is
// attached.
func (a *Annotator) Annotate(ctx context.Context, ds *models.Dataset, field string) (models.AnnotationSummary, error) {
	summary := models.AnnotationSummary{Total: ds.Len()}
	if !ds.HasColumn(field) {
		return summary, fmt.Errorf("analysis field %q not in %s dataset", field, ds.Role)
	}

	start := time.Now()
	texts := make([]string, ds.Len())
	for i, rec := range ds.Records {
		texts[i] = a.coerce(rec.Get(field))
	}

	annotations := make([]models.Annotation, ds.Len())
	if a.Workers <= 1 {
		for i, text := range texts {
			if err := ctx.Err(); err != nil {
				return summary, err
			}
			annotations[i] = a.classify(ctx, ds.Records[i].Index, text)
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(a.Workers)
		for i, text := range texts {
			g.Go(func() error {
				annotations[i] = a.classify(gctx, ds.Records[i].Index, text)
				return nil
			})
		}
		_ = g.Wait()
	}
	if err := ctx.Err(); err != nil {
		return summary, err
	}

	attach(ds, annotations)

	for i, ann := range annotations {
		if ann.OK() {
			summary.Annotated++
			continue
		}
		summary.Failed++
		summary.Failures = append(summary.Failures, models.RecordFailure{
			Index:  ds.Records[i].Index,
			Reason: ann.Reason,
		})
	}

	slog.Info("[Annotator] Annotation complete",
		slog.String("role", string(ds.Role)),
		slog.Int("total", summary.Total),
		slog.Int("annotated", summary.Annotated),
		slog.Int("failed", summary.Failed),
		slog.Duration("elapsed", time.Since(start)))

	return summary, nil
}

func (a *Annotator) coerce(v models.Value) string {
	if v.Valid {
		return v.Str
	}
	if a.MissingText != "" {
		return a.MissingText
	}
	return MISSING_TEXT
}

func (a *Annotator) classify(ctx context.Context, index int, text string) (ann models.Annotation) {
	defer func() {
		if r := recover(); r != nil {
			ann = failed(index, fmt.Errorf("classifier panicked: %v", r))
		}
	}()

	res, err := a.Classifier.Classify(ctx, text)
	if err == nil {
		err = sentiment.CheckResult(res)
	}
	if err != nil {
		slog.Debug("[Annotator] Record failed",
			slog.Int("index", index),
			slog.String("error", err.Error()))
		return failed(index, err)
	}

	return models.Annotation{Status: models.ANNOTATION_OK, Result: res}
}

func failed(index int, err error) models.Annotation {
	return models.Annotation{
		Status: models.ANNOTATION_FAILED,
		Reason: (&ClassificationError{Index: index, Err: err}).Error(),
	}
}

// attach writes annotations positionally. Failed records get missing
// sentiment and score cells.
func attach(ds *models.Dataset, annotations []models.Annotation) {
	ds.AddColumn(models.FIELD_SENTIMENT)
	ds.AddColumn(models.FIELD_SCORE)

	for i := range ds.Records {
		ann := annotations[i]
		rec := &ds.Records[i]
		rec.Annotation = &ann

		if !ann.OK() {
			rec.Set(models.FIELD_SENTIMENT, models.MissingValue())
			rec.Set(models.FIELD_SCORE, models.MissingValue())
			continue
		}
		rec.Set(models.FIELD_SENTIMENT, models.StringValue(string(ann.Result.Label)))
		rec.Set(models.FIELD_SCORE, models.StringValue(strconv.FormatFloat(ann.Result.Score, 'f', -1, 64)))
	}
}
