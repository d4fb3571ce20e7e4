package export

import (
	"fmt"

	"github.com/spacesedan/nytsentiment/internal/dataset"
	"github.com/spacesedan/nytsentiment/internal/models"
)

// FileName is the download name for an annotated dataset, e.g.
// nyt_comments_with_sentiment.csv.
func FileName(role models.Role, format dataset.Format) string {
	if format == "" {
		format = dataset.FORMAT_CSV
	}
	return fmt.Sprintf("nyt_%s_with_sentiment.%s", role, format)
}

// ContentType returns the MIME type served for format.
func ContentType(format dataset.Format) string {
	if format == dataset.FORMAT_XLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}
