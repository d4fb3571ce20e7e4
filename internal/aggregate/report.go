package aggregate

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spacesedan/nytsentiment/internal/dataset"
	"github.com/spacesedan/nytsentiment/internal/models"
)

const DEFAULT_EXTREMES_K = 5

var DEFAULT_KEYWORDS = []string{"China", "Trade War", "Steel Tariff", "Protectionism"}

type Options struct {
	Keywords []string
	K        int
	// Decoupled computes each section from whichever datasets are annotated
	// instead of requiring both.
	Decoupled bool
}

func DefaultOptions() Options {
	return Options{
		Keywords: append([]string(nil), DEFAULT_KEYWORDS...),
		K:        DEFAULT_EXTREMES_K,
	}
}

// BuildReport computes every section for the pair of datasets. Either may be
// nil. Unless opts.Decoupled is set, all sections are not available when
// either dataset is not annotated.
func BuildReport(comments, articles *models.Dataset, opts Options) models.AggregateReport {
	var report models.AggregateReport

	commentsOK := comments.IsAnnotated()
	articlesOK := articles.IsAnnotated()

	if !opts.Decoupled && !(commentsOK && articlesOK) {
		reason := preconditionReason(commentsOK, articlesOK)
		slog.Warn("[Aggregator] Skipping all aggregates",
			slog.String("reason", reason))

		report.Distribution = models.DistributionSection{Status: models.SECTION_NOT_AVAILABLE, Reason: reason}
		report.Trend = models.TrendSection{Status: models.SECTION_NOT_AVAILABLE, Reason: reason}
		report.Keywords = models.KeywordSection{Status: models.SECTION_NOT_AVAILABLE, Reason: reason}
		report.Extremes = models.ExtremesSection{Status: models.SECTION_NOT_AVAILABLE, Reason: reason, K: opts.K}
		return report
	}

	report.Distribution = buildDistribution(comments, articles, commentsOK, articlesOK)
	report.Trend = buildTrend(&report, comments, articles, commentsOK, articlesOK)

	if !commentsOK {
		reason := preconditionReason(commentsOK, true)
		report.Keywords = models.KeywordSection{Status: models.SECTION_NOT_AVAILABLE, Reason: reason}
		report.Extremes = models.ExtremesSection{Status: models.SECTION_NOT_AVAILABLE, Reason: reason, K: opts.K}
		return report
	}

	keywords, err := KeywordAverages(comments, models.FIELD_COMMENT_BODY, opts.Keywords)
	if err != nil {
		report.Keywords = models.KeywordSection{Status: models.SECTION_NOT_AVAILABLE, Reason: err.Error()}
	} else {
		report.Keywords = models.KeywordSection{Status: models.SECTION_AVAILABLE, Results: keywords}
	}

	top, bottom, err := Extremes(comments, models.FIELD_COMMENT_BODY, opts.K)
	if err != nil {
		report.Extremes = models.ExtremesSection{Status: models.SECTION_NOT_AVAILABLE, Reason: err.Error(), K: opts.K}
	} else {
		report.Extremes = models.ExtremesSection{Status: models.SECTION_AVAILABLE, K: opts.K, Top: top, Bottom: bottom}
	}

	return report
}

func buildDistribution(comments, articles *models.Dataset, commentsOK, articlesOK bool) models.DistributionSection {
	section := models.DistributionSection{Status: models.SECTION_AVAILABLE}

	if commentsOK {
		if dist, err := Distribution(comments); err == nil {
			section.Comments = &dist
		}
	}
	if articlesOK {
		if dist, err := Distribution(articles); err == nil {
			section.Articles = &dist
		}
	}

	if section.Comments == nil && section.Articles == nil {
		section.Status = models.SECTION_NOT_AVAILABLE
		section.Reason = preconditionReason(commentsOK, articlesOK)
	}
	return section
}

func buildTrend(report *models.AggregateReport, comments, articles *models.Dataset, commentsOK, articlesOK bool) models.TrendSection {
	section := models.TrendSection{Status: models.SECTION_AVAILABLE}

	if commentsOK {
		section.Comments = trendFor(report, comments, dataset.COMMENTS_SCHEMA.DateField)
	}
	if articlesOK {
		section.Articles = trendFor(report, articles, dataset.ARTICLES_SCHEMA.DateField)
	}

	if section.Comments == nil && section.Articles == nil {
		if !commentsOK && !articlesOK {
			section.Status = models.SECTION_NOT_AVAILABLE
			section.Reason = preconditionReason(commentsOK, articlesOK)
			return section
		}
		section.Status = models.SECTION_SKIPPED
		section.Reason = "date columns not found"
		report.Warnings = append(report.Warnings, "Date columns not found. Skipping sentiment trend analysis.")
		slog.Warn("[Aggregator] Date columns not found, skipping trend")
	}
	return section
}

func trendFor(report *models.AggregateReport, ds *models.Dataset, dateField string) *models.Trend {
	trend, err := TimeTrend(ds, dateField)
	if err != nil {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("%s dataset has no %s column; trend omitted for it", ds.Role, dateField))
		return nil
	}
	if trend.Excluded > 0 {
		slog.Info("[Aggregator] Records excluded from trend",
			slog.String("role", string(ds.Role)),
			slog.Int("excluded", trend.Excluded))
	}
	return &trend
}

func preconditionReason(commentsOK, articlesOK bool) string {
	var missing []string
	if !commentsOK {
		missing = append(missing, string(models.ROLE_COMMENTS))
	}
	if !articlesOK {
		missing = append(missing, string(models.ROLE_ARTICLES))
	}
	return fmt.Sprintf("%v: %s not annotated", ErrPreconditionUnmet, strings.Join(missing, " and "))
}
