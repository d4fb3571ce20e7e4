package processing

import (
	"strings"

	"github.com/spacesedan/nytsentiment/internal/models"
)

// MergeText joins fields with single spaces into target on every record.
// Missing values and absent columns contribute an empty string, so the
// separator count is always len(fields)-1 and target is never missing.
func MergeText(ds *models.Dataset, fields []string, target string) {
	ds.AddColumn(target)

	parts := make([]string, len(fields))
	for _, rec := range ds.Records {
		for i, field := range fields {
			v := rec.Get(field)
			if v.Valid {
				parts[i] = v.Str
			} else {
				parts[i] = ""
			}
		}
		rec.Set(target, models.StringValue(strings.Join(parts, " ")))
	}
}
