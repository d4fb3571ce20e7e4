package aggregate

import "github.com/spacesedan/nytsentiment/internal/models"

// Distribution counts annotated records per category in first-seen order.
// Failed records are not counted, so Total equals the annotated count.
func Distribution(ds *models.Dataset) (models.Distribution, error) {
	if !ds.IsAnnotated() {
		return models.Distribution{}, ErrNotAnnotated
	}

	dist := models.Distribution{Role: ds.Role}
	position := make(map[models.Category]int)

	for _, rec := range ds.Records {
		if !rec.Annotation.OK() {
			continue
		}
		label := rec.Annotation.Result.Label
		i, seen := position[label]
		if !seen {
			i = len(dist.Counts)
			position[label] = i
			dist.Counts = append(dist.Counts, models.CategoryCount{Category: label})
		}
		dist.Counts[i].Count++
		dist.Total++
	}

	return dist, nil
}
