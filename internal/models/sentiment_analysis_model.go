package models

// Category is a classifier assigned label. The vocabulary belongs to the
// classifier; it is never interpreted here.
type Category string

type SentimentResult struct {
	Label Category `json:"label"`
	Score float64  `json:"score"`
}

type AnnotationStatus string

const (
	ANNOTATION_OK     AnnotationStatus = "ok"
	ANNOTATION_FAILED AnnotationStatus = "failed"
)

type Annotation struct {
	Status AnnotationStatus `json:"status"`
	Result SentimentResult  `json:"result"`
	Reason string           `json:"reason,omitempty"`
}

func (a *Annotation) OK() bool {
	return a != nil && a.Status == ANNOTATION_OK
}

type RecordFailure struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

type AnnotationSummary struct {
	Total     int             `json:"total"`
	Annotated int             `json:"annotated"`
	Failed    int             `json:"failed"`
	Failures  []RecordFailure `json:"failures,omitempty"`
}
