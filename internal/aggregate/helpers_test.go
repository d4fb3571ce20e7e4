package aggregate

import (
	"strconv"

	"github.com/spacesedan/nytsentiment/internal/models"
)

type row struct {
	text  string
	date  string
	label string
	score float64
	fail  bool
}

// annotated builds a dataset as the annotator would leave it.
func annotated(role models.Role, textField, dateField string, rows ...row) *models.Dataset {
	columns := []string{textField}
	if dateField != "" {
		columns = append(columns, dateField)
	}
	ds := models.NewDataset(role, append(columns, models.FIELD_SENTIMENT, models.FIELD_SCORE))

	for i, r := range rows {
		rec := models.NewRecord(i)
		rec.Set(textField, cell(r.text))
		if dateField != "" {
			rec.Set(dateField, cell(r.date))
		}
		if r.fail {
			rec.Annotation = &models.Annotation{Status: models.ANNOTATION_FAILED, Reason: "boom"}
			rec.Set(models.FIELD_SENTIMENT, models.MissingValue())
			rec.Set(models.FIELD_SCORE, models.MissingValue())
		} else {
			res := models.SentimentResult{Label: models.Category(r.label), Score: r.score}
			rec.Annotation = &models.Annotation{Status: models.ANNOTATION_OK, Result: res}
			rec.Set(models.FIELD_SENTIMENT, models.StringValue(r.label))
			rec.Set(models.FIELD_SCORE, models.StringValue(strconv.FormatFloat(r.score, 'f', -1, 64)))
		}
		ds.Records = append(ds.Records, rec)
	}
	return ds
}

func cell(s string) models.Value {
	if s == "" {
		return models.MissingValue()
	}
	return models.StringValue(s)
}

func commentsOf(rows ...row) *models.Dataset {
	return annotated(models.ROLE_COMMENTS, models.FIELD_COMMENT_BODY, models.FIELD_COMMENT_DATE, rows...)
}

func articlesOf(rows ...row) *models.Dataset {
	return annotated(models.ROLE_ARTICLES, models.FIELD_ARTICLE_TEXT, models.FIELD_ARTICLE_DATE, rows...)
}
