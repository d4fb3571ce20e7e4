package aggregate

import (
	"testing"

	"github.com/spacesedan/nytsentiment/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeywordAverages(t *testing.T) {
	ds := commentsOf(
		row{text: "China raised tariffs", label: "N", score: 0.2},
		row{text: "the trade war with CHINA", label: "N", score: 0.6},
		row{text: "", label: "N", score: 0.9},
		row{text: "china again", fail: true},
		row{text: "Protectionism is back", label: "P", score: 0.7},
	)

	results, err := KeywordAverages(ds, models.FIELD_COMMENT_BODY, []string{"China", "Trade War", "Steel Tariff", "Protectionism"})
	require.NoError(t, err)
	require.Len(t, results, 4)

	china := results[0]
	assert.True(t, china.Found)
	assert.Equal(t, 2, china.Matches)
	require.NotNil(t, china.MeanScore)
	assert.InDelta(t, 0.4, *china.MeanScore, 1e-9)

	assert.Equal(t, 1, results[1].Matches)

	steel := results[2]
	assert.Equal(t, "Steel Tariff", steel.Keyword)
	assert.False(t, steel.Found)
	assert.Zero(t, steel.Matches)
	assert.Nil(t, steel.MeanScore)

	require.NotNil(t, results[3].MeanScore)
	assert.InDelta(t, 0.7, *results[3].MeanScore, 1e-9)
}

func TestKeywordAveragesNotAnnotated(t *testing.T) {
	_, err := KeywordAverages(models.NewDataset(models.ROLE_COMMENTS, nil), models.FIELD_COMMENT_BODY, []string{"x"})
	assert.ErrorIs(t, err, ErrNotAnnotated)
}
