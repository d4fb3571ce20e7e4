package aggregate

import (
	"context"
	"strings"
	"testing"

	"github.com/spacesedan/nytsentiment/internal/annotate"
	"github.com/spacesedan/nytsentiment/internal/models"
	"github.com/spacesedan/nytsentiment/internal/sentiment/sentimenttest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleArticles() *models.Dataset {
	return articlesOf(
		row{text: "Steel Tariff  expands", date: "2018-03-01", label: "NEGATIVE", score: 0.7},
		row{text: "Markets rally", date: "2018-03-02", label: "POSITIVE", score: 0.8},
	)
}

func TestBuildReportJointPrecondition(t *testing.T) {
	comments := commentsOf(row{text: "love", label: "POSITIVE", score: 0.9})

	tests := []struct {
		name     string
		comments *models.Dataset
		articles *models.Dataset
		reason   string
	}{
		{"articles missing", comments, nil, "articles not annotated"},
		{"comments missing", nil, sampleArticles(), "comments not annotated"},
		{"both missing", nil, nil, "comments and articles not annotated"},
		{"articles unannotated", comments, models.NewDataset(models.ROLE_ARTICLES, []string{"abstract"}), "articles not annotated"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := BuildReport(tt.comments, tt.articles, DefaultOptions())

			for _, section := range []struct {
				status models.SectionStatus
				reason string
			}{
				{report.Distribution.Status, report.Distribution.Reason},
				{report.Trend.Status, report.Trend.Reason},
				{report.Keywords.Status, report.Keywords.Reason},
				{report.Extremes.Status, report.Extremes.Reason},
			} {
				assert.Equal(t, models.SECTION_NOT_AVAILABLE, section.status)
				assert.Contains(t, section.reason, ErrPreconditionUnmet.Error())
				assert.Contains(t, section.reason, tt.reason)
			}
			assert.Nil(t, report.Distribution.Comments)
			assert.Empty(t, report.Keywords.Results)
		})
	}
}

func TestBuildReportDecoupled(t *testing.T) {
	comments := commentsOf(
		row{text: "love China", date: "2018-03-01", label: "POSITIVE", score: 0.9},
		row{text: "hate", date: "2018-03-01", label: "NEGATIVE", score: 0.8},
	)
	opts := DefaultOptions()
	opts.Decoupled = true

	report := BuildReport(comments, nil, opts)

	assert.Equal(t, models.SECTION_AVAILABLE, report.Distribution.Status)
	require.NotNil(t, report.Distribution.Comments)
	assert.Nil(t, report.Distribution.Articles)

	assert.Equal(t, models.SECTION_AVAILABLE, report.Trend.Status)
	require.NotNil(t, report.Trend.Comments)
	assert.Len(t, report.Trend.Comments.Points, 1)

	assert.Equal(t, models.SECTION_AVAILABLE, report.Keywords.Status)
	assert.True(t, report.Keywords.Results[0].Found)
	assert.Equal(t, models.SECTION_AVAILABLE, report.Extremes.Status)

	onlyArticles := BuildReport(nil, sampleArticles(), opts)
	assert.Equal(t, models.SECTION_AVAILABLE, onlyArticles.Distribution.Status)
	require.NotNil(t, onlyArticles.Distribution.Articles)
	assert.Equal(t, models.SECTION_NOT_AVAILABLE, onlyArticles.Keywords.Status)
	assert.Equal(t, models.SECTION_NOT_AVAILABLE, onlyArticles.Extremes.Status)
}

func TestBuildReportSkipsTrendWithoutDates(t *testing.T) {
	comments := annotated(models.ROLE_COMMENTS, models.FIELD_COMMENT_BODY, "",
		row{text: "love", label: "POSITIVE", score: 0.9})
	articles := annotated(models.ROLE_ARTICLES, models.FIELD_ARTICLE_TEXT, "",
		row{text: "news", label: "NEUTRAL", score: 0.5})

	report := BuildReport(comments, articles, DefaultOptions())

	assert.Equal(t, models.SECTION_SKIPPED, report.Trend.Status)
	assert.NotEmpty(t, report.Warnings)
	joined := strings.Join(report.Warnings, "\n")
	assert.Contains(t, joined, "Skipping sentiment trend analysis")

	// other sections are unaffected
	assert.Equal(t, models.SECTION_AVAILABLE, report.Distribution.Status)
	assert.Equal(t, models.SECTION_AVAILABLE, report.Keywords.Status)
}

func TestBuildReportTrendForOneDataset(t *testing.T) {
	comments := annotated(models.ROLE_COMMENTS, models.FIELD_COMMENT_BODY, "",
		row{text: "love", label: "POSITIVE", score: 0.9})

	report := BuildReport(comments, sampleArticles(), DefaultOptions())

	assert.Equal(t, models.SECTION_AVAILABLE, report.Trend.Status)
	assert.Nil(t, report.Trend.Comments)
	require.NotNil(t, report.Trend.Articles)
	assert.Len(t, report.Trend.Articles.Points, 2)
}

func TestEndToEndScenario(t *testing.T) {
	comments := models.NewDataset(models.ROLE_COMMENTS, []string{models.FIELD_COMMENT_BODY})
	for i, text := range []string{"I love this", "I hate this", "neutral statement"} {
		rec := models.NewRecord(i)
		rec.Set(models.FIELD_COMMENT_BODY, models.StringValue(text))
		comments.Records = append(comments.Records, rec)
	}
	articles := models.NewDataset(models.ROLE_ARTICLES, []string{models.FIELD_ARTICLE_TEXT})
	rec := models.NewRecord(0)
	rec.Set(models.FIELD_ARTICLE_TEXT, models.StringValue("Trade talks"))
	articles.Records = append(articles.Records, rec)

	annotator := annotate.New(sentimenttest.LoveHate(), 1)
	_, err := annotator.Annotate(context.Background(), comments, models.FIELD_COMMENT_BODY)
	require.NoError(t, err)
	_, err = annotator.Annotate(context.Background(), articles, models.FIELD_ARTICLE_TEXT)
	require.NoError(t, err)

	opts := DefaultOptions()
	opts.K = 1
	report := BuildReport(comments, articles, opts)

	require.Equal(t, models.SECTION_AVAILABLE, report.Distribution.Status)
	assert.Equal(t, []models.CategoryCount{
		{Category: "POSITIVE", Count: 1},
		{Category: "NEGATIVE", Count: 1},
		{Category: "NEUTRAL", Count: 1},
	}, report.Distribution.Comments.Counts)

	require.Equal(t, models.SECTION_AVAILABLE, report.Extremes.Status)
	require.Len(t, report.Extremes.Top, 1)
	assert.Equal(t, "I love this", report.Extremes.Top[0].Text)
	assert.Equal(t, 0.9, report.Extremes.Top[0].Score)
	require.Len(t, report.Extremes.Bottom, 1)
	assert.Equal(t, "I hate this", report.Extremes.Bottom[0].Text)
	assert.Equal(t, 0.8, report.Extremes.Bottom[0].Score)

	for _, kw := range report.Keywords.Results {
		assert.False(t, kw.Found, kw.Keyword)
		assert.Nil(t, kw.MeanScore)
	}
}
