package aggregate

import (
	"strings"

	"github.com/spacesedan/nytsentiment/internal/models"
)

// KeywordAverages reports the mean score of records whose textField contains
// each keyword, ignoring case. Missing text never matches. A keyword without
// matches yields Found false and a nil MeanScore.
func KeywordAverages(ds *models.Dataset, textField string, keywords []string) ([]models.KeywordAverage, error) {
	if !ds.IsAnnotated() {
		return nil, ErrNotAnnotated
	}

	lowered := make([]string, len(ds.Records))
	for i, rec := range ds.Records {
		if v := rec.Get(textField); v.Valid {
			lowered[i] = strings.ToLower(v.Str)
		}
	}

	results := make([]models.KeywordAverage, 0, len(keywords))
	for _, keyword := range keywords {
		needle := strings.ToLower(keyword)
		avg := models.KeywordAverage{Keyword: keyword}

		var sum float64
		for i, rec := range ds.Records {
			if !rec.Annotation.OK() || !rec.Get(textField).Valid {
				continue
			}
			if strings.Contains(lowered[i], needle) {
				sum += rec.Annotation.Result.Score
				avg.Matches++
			}
		}

		if avg.Matches > 0 {
			mean := sum / float64(avg.Matches)
			avg.Found = true
			avg.MeanScore = &mean
		}
		results = append(results, avg)
	}

	return results, nil
}
