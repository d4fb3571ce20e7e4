package processing

import (
	"testing"

	"github.com/spacesedan/nytsentiment/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeText(t *testing.T) {
	fields := []string{"abstract", "snippet", "lead_paragraph"}
	ds := models.NewDataset(models.ROLE_ARTICLES, fields)

	rows := [][]models.Value{
		{models.StringValue("A"), models.MissingValue(), models.StringValue("C")},
		{models.StringValue("A"), models.StringValue("B"), models.StringValue("C")},
		{models.MissingValue(), models.MissingValue(), models.MissingValue()},
	}
	for i, row := range rows {
		rec := models.NewRecord(i)
		for j, v := range row {
			rec.Set(fields[j], v)
		}
		ds.Records = append(ds.Records, rec)
	}

	MergeText(ds, fields, models.FIELD_ARTICLE_TEXT)

	require.True(t, ds.HasColumn(models.FIELD_ARTICLE_TEXT))
	assert.Equal(t, "A  C", ds.Records[0].Get(models.FIELD_ARTICLE_TEXT).Str)
	assert.Equal(t, "A B C", ds.Records[1].Get(models.FIELD_ARTICLE_TEXT).Str)

	empty := ds.Records[2].Get(models.FIELD_ARTICLE_TEXT)
	assert.True(t, empty.Valid)
	assert.Equal(t, "  ", empty.Str)
}

func TestMergeTextAbsentColumn(t *testing.T) {
	ds := models.NewDataset(models.ROLE_ARTICLES, []string{"abstract"})
	rec := models.NewRecord(0)
	rec.Set("abstract", models.StringValue("Only abstract"))
	ds.Records = append(ds.Records, rec)

	MergeText(ds, []string{"abstract", "snippet", "lead_paragraph"}, models.FIELD_ARTICLE_TEXT)

	assert.Equal(t, "Only abstract  ", ds.Records[0].Get(models.FIELD_ARTICLE_TEXT).Str)
	assert.Equal(t, []string{"abstract", models.FIELD_ARTICLE_TEXT}, ds.Columns)
}
