package aggregate

import (
	"math"
	"sort"
	"strings"

	"github.com/spacesedan/nytsentiment/internal/models"
)

// Extremes returns the k most positive and k most negative records. Records
// are ranked by Polarity so a confident NEGATIVE sorts below a NEUTRAL. This
// is intended to differ from a raw score ranking in both lists: a NEGATIVE
// 0.99 heads bottom and never appears in top. Ties keep original record order
// in both lists.
func Extremes(ds *models.Dataset, textField string, k int) (top, bottom []models.RankedRecord, err error) {
	if !ds.IsAnnotated() {
		return nil, nil, ErrNotAnnotated
	}

	ranked := make([]models.RankedRecord, 0, ds.Len())
	for _, rec := range ds.Records {
		if !rec.Annotation.OK() {
			continue
		}
		ranked = append(ranked, models.RankedRecord{
			Index: rec.Index,
			Text:  rec.Get(textField).Str,
			Label: rec.Annotation.Result.Label,
			Score: rec.Annotation.Result.Score,
		})
	}

	top = append([]models.RankedRecord(nil), ranked...)
	sort.SliceStable(top, func(i, j int) bool {
		return Polarity(top[i].Label, top[i].Score) > Polarity(top[j].Label, top[j].Score)
	})

	bottom = append([]models.RankedRecord(nil), ranked...)
	sort.SliceStable(bottom, func(i, j int) bool {
		return Polarity(bottom[i].Label, bottom[i].Score) < Polarity(bottom[j].Label, bottom[j].Score)
	})

	return head(top, k), head(bottom, k), nil
}

func head(records []models.RankedRecord, k int) []models.RankedRecord {
	if k < 0 {
		k = 0
	}
	if len(records) > k {
		return records[:k]
	}
	return records
}

// Polarity orients a score so that negative labels rank below everything
// else. Backends that already report signed scores are left unchanged.
func Polarity(label models.Category, score float64) float64 {
	if isNegative(label) {
		return -math.Abs(score)
	}
	return score
}

func isNegative(label models.Category) bool {
	switch strings.ToUpper(string(label)) {
	case "NEGATIVE", "NEG":
		return true
	}
	return false
}
