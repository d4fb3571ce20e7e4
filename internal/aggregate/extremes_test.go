package aggregate

import (
	"testing"

	"github.com/spacesedan/nytsentiment/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func indexes(records []models.RankedRecord) []int {
	out := make([]int, len(records))
	for i, r := range records {
		out[i] = r.Index
	}
	return out
}

func TestExtremesTiesKeepRecordOrder(t *testing.T) {
	ds := commentsOf(
		row{text: "a", label: "POSITIVE", score: 0.5},
		row{text: "b", label: "POSITIVE", score: 0.9},
		row{text: "c", label: "POSITIVE", score: 0.5},
		row{text: "d", label: "POSITIVE", score: 0.9},
		row{text: "e", fail: true},
		row{text: "f", label: "POSITIVE", score: 0.1},
	)

	top, bottom, err := Extremes(ds, models.FIELD_COMMENT_BODY, 3)
	require.NoError(t, err)

	assert.Equal(t, []int{1, 3, 0}, indexes(top))
	assert.Equal(t, []int{5, 0, 2}, indexes(bottom))

	// repeated runs agree
	top2, bottom2, _ := Extremes(ds, models.FIELD_COMMENT_BODY, 3)
	assert.Equal(t, top, top2)
	assert.Equal(t, bottom, bottom2)
}

func TestExtremesNegativeLabelsRankLowest(t *testing.T) {
	ds := commentsOf(
		row{text: "I love this", label: "POSITIVE", score: 0.9},
		row{text: "I hate this", label: "NEGATIVE", score: 0.8},
		row{text: "neutral statement", label: "NEUTRAL", score: 0.5},
	)

	top, bottom, err := Extremes(ds, models.FIELD_COMMENT_BODY, 1)
	require.NoError(t, err)

	require.Len(t, top, 1)
	assert.Equal(t, "I love this", top[0].Text)
	require.Len(t, bottom, 1)
	assert.Equal(t, "I hate this", bottom[0].Text)
	assert.Equal(t, 0.8, bottom[0].Score)
}

func TestExtremesConfidentNegativeNeverTops(t *testing.T) {
	ds := commentsOf(
		row{text: "fine", label: "POSITIVE", score: 0.6},
		row{text: "awful", label: "NEGATIVE", score: 0.99},
		row{text: "meh", label: "NEUTRAL", score: 0.7},
	)

	top, bottom, err := Extremes(ds, models.FIELD_COMMENT_BODY, 2)
	require.NoError(t, err)

	assert.Equal(t, []int{2, 0}, indexes(top))
	assert.Equal(t, []int{1, 0}, indexes(bottom))
	assert.Equal(t, 0.99, bottom[0].Score)
}

func TestExtremesFewerThanK(t *testing.T) {
	ds := commentsOf(row{text: "only", label: "P", score: 0.3})

	top, bottom, err := Extremes(ds, models.FIELD_COMMENT_BODY, 5)
	require.NoError(t, err)
	assert.Len(t, top, 1)
	assert.Len(t, bottom, 1)
}

func TestPolarity(t *testing.T) {
	assert.Equal(t, -0.8, Polarity("NEGATIVE", 0.8))
	assert.Equal(t, -0.4, Polarity("negative", -0.4))
	assert.Equal(t, 0.5, Polarity("NEUTRAL", 0.5))
	assert.Equal(t, -0.3, Polarity("neutral", -0.3))
}
