package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/spacesedan/nytsentiment/internal/aggregate"
	"github.com/spacesedan/nytsentiment/internal/annotate"
	"github.com/spacesedan/nytsentiment/internal/dataset"
	"github.com/spacesedan/nytsentiment/internal/models"
	"github.com/spacesedan/nytsentiment/internal/processing"
)

// Source is one uploaded or on-disk dataset. Format defaults to the one
// implied by Name.
type Source struct {
	Name   string
	Reader io.Reader
	Format dataset.Format
}

// Input holds the two optional datasets of a run.
type Input struct {
	Comments *Source
	Articles *Source
}

// Sink receives the finished report. Sink failures never fail a run.
type Sink interface {
	Name() string
	Store(ctx context.Context, report *models.RunReport) error
}

type Pipeline struct {
	Annotator *annotate.Annotator
	Options   aggregate.Options
	Sinks     []Sink
}

func New(annotator *annotate.Annotator, opts aggregate.Options, sinks ...Sink) *Pipeline {
	return &Pipeline{
		Annotator: annotator,
		Options:   opts,
		Sinks:     sinks,
	}
}

// Run loads, validates and annotates each provided dataset, then builds the
// aggregate report and hands it to the sinks. A dataset problem only affects
// that dataset's outcome; the returned error is non-nil only when ctx ends.
func (p *Pipeline) Run(ctx context.Context, in Input) (*models.RunReport, error) {
	report := &models.RunReport{
		RunID:     uuid.NewString(),
		CreatedAt: time.Now().UTC(),
	}
	logger := slog.With(slog.String("run_id", report.RunID))
	logger.Info("[Pipeline] Starting run")

	var err error
	if report.Comments, err = p.process(ctx, logger, models.ROLE_COMMENTS, in.Comments); err != nil {
		return nil, err
	}
	if report.Articles, err = p.process(ctx, logger, models.ROLE_ARTICLES, in.Articles); err != nil {
		return nil, err
	}

	report.Aggregates = aggregate.BuildReport(
		annotated(report.Comments),
		annotated(report.Articles),
		p.Options,
	)

	for _, sink := range p.Sinks {
		if err := sink.Store(ctx, report); err != nil {
			logger.Error("[Pipeline] Sink failed",
				slog.String("sink", sink.Name()),
				slog.String("error", err.Error()))
			report.SinkErrors = append(report.SinkErrors, fmt.Sprintf("%s: %v", sink.Name(), err))
		}
	}

	logger.Info("[Pipeline] Run complete",
		slog.String("comments", string(report.Comments.Status)),
		slog.String("articles", string(report.Articles.Status)))
	return report, nil
}

// AnnotateOne runs the load, validate and annotate steps for a single dataset
// without building a report or invoking sinks.
func (p *Pipeline) AnnotateOne(ctx context.Context, role models.Role, src *Source) (models.DatasetOutcome, error) {
	return p.process(ctx, slog.Default(), role, src)
}

func (p *Pipeline) process(ctx context.Context, logger *slog.Logger, role models.Role, src *Source) (models.DatasetOutcome, error) {
	outcome := models.DatasetOutcome{Role: role, Status: models.DATASET_NOT_PROVIDED}
	if src == nil || src.Reader == nil {
		return outcome, nil
	}

	schema, err := dataset.SchemaFor(role)
	if err != nil {
		return fail(outcome, models.DATASET_FAILED, err), nil
	}

	format := src.Format
	if format == "" {
		format = dataset.FormatFromName(src.Name)
	}
	ds, err := dataset.Load(src.Reader, role, format)
	if err != nil {
		logger.Error("[Pipeline] Failed to load dataset",
			slog.String("role", string(role)),
			slog.String("error", err.Error()))
		return fail(outcome, models.DATASET_FAILED, err), nil
	}

	if err := schema.Validate(ds); err != nil {
		status := models.DATASET_FAILED
		var schemaErr *dataset.SchemaError
		if errors.As(err, &schemaErr) {
			status = models.DATASET_REJECTED
		}
		logger.Warn("[Pipeline] Dataset rejected",
			slog.String("role", string(role)),
			slog.String("error", err.Error()))
		return fail(outcome, status, err), nil
	}

	if role == models.ROLE_ARTICLES {
		processing.MergeText(ds, dataset.ARTICLE_TEXT_FIELDS, models.FIELD_ARTICLE_TEXT)
	}

	summary, err := p.Annotator.Annotate(ctx, ds, schema.TextField)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return outcome, ctxErr
		}
		return fail(outcome, models.DATASET_FAILED, err), nil
	}

	if ds.HasColumn(schema.DateField) {
		if failures := dataset.DeriveDates(ds, schema.DateField, models.FIELD_DATE); failures > 0 {
			logger.Warn("[Pipeline] Some dates could not be parsed",
				slog.String("role", string(role)),
				slog.Int("count", failures))
		}
	}

	outcome.Status = models.DATASET_ANNOTATED
	outcome.Summary = summary
	outcome.Dataset = ds
	return outcome, nil
}

func fail(outcome models.DatasetOutcome, status models.DatasetStatus, err error) models.DatasetOutcome {
	outcome.Status = status
	outcome.Error = err.Error()
	return outcome
}

func annotated(outcome models.DatasetOutcome) *models.Dataset {
	if outcome.Status != models.DATASET_ANNOTATED {
		return nil
	}
	return outcome.Dataset
}
