package aggregate

import (
	"sort"

	"github.com/spacesedan/nytsentiment/internal/dataset"
	"github.com/spacesedan/nytsentiment/internal/models"
)

// TimeTrend averages scores per calendar day of dateField, oldest first.
// Records whose date does not parse are left out and counted in Excluded.
func TimeTrend(ds *models.Dataset, dateField string) (models.Trend, error) {
	if !ds.IsAnnotated() {
		return models.Trend{}, ErrNotAnnotated
	}
	if !ds.HasColumn(dateField) {
		return models.Trend{}, ErrNoDateField
	}

	trend := models.Trend{Role: ds.Role, DateField: dateField}
	sums := make(map[string]float64)
	counts := make(map[string]int)

	for _, rec := range ds.Records {
		if !rec.Annotation.OK() {
			continue
		}
		day, err := dataset.Day(rec.Get(dateField))
		if err != nil {
			trend.Excluded++
			continue
		}
		sums[day] += rec.Annotation.Result.Score
		counts[day]++
	}

	days := make([]string, 0, len(counts))
	for day := range counts {
		days = append(days, day)
	}
	sort.Strings(days)

	trend.Points = make([]models.TrendPoint, 0, len(days))
	for _, day := range days {
		trend.Points = append(trend.Points, models.TrendPoint{
			Date:      day,
			MeanScore: sums[day] / float64(counts[day]),
			Count:     counts[day],
		})
	}

	return trend, nil
}
