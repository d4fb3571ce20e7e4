package models

import "time"

type SectionStatus string

const (
	SECTION_AVAILABLE     SectionStatus = "available"
	SECTION_NOT_AVAILABLE SectionStatus = "not_available"
	SECTION_SKIPPED       SectionStatus = "skipped"
)

type CategoryCount struct {
	Category Category `json:"category"`
	Count    int      `json:"count"`
}

type Distribution struct {
	Role   Role            `json:"role"`
	Counts []CategoryCount `json:"counts"`
	Total  int             `json:"total"`
}

type TrendPoint struct {
	Date      string  `json:"date"`
	MeanScore float64 `json:"mean_score"`
	Count     int     `json:"count"`
}

type Trend struct {
	Role      Role         `json:"role"`
	DateField string       `json:"date_field"`
	Points    []TrendPoint `json:"points"`
	Excluded  int          `json:"excluded"`
}

// KeywordAverage holds the mean score of records mentioning Keyword. When
// Found is false there were no matches and MeanScore is nil.
type KeywordAverage struct {
	Keyword   string   `json:"keyword"`
	Found     bool     `json:"found"`
	Matches   int      `json:"matches"`
	MeanScore *float64 `json:"mean_score"`
}

type RankedRecord struct {
	Index int      `json:"index"`
	Text  string   `json:"text"`
	Label Category `json:"label"`
	Score float64  `json:"score"`
}

type DistributionSection struct {
	Status   SectionStatus `json:"status"`
	Reason   string        `json:"reason,omitempty"`
	Comments *Distribution `json:"comments,omitempty"`
	Articles *Distribution `json:"articles,omitempty"`
}

type TrendSection struct {
	Status   SectionStatus `json:"status"`
	Reason   string        `json:"reason,omitempty"`
	Comments *Trend        `json:"comments,omitempty"`
	Articles *Trend        `json:"articles,omitempty"`
}

type KeywordSection struct {
	Status  SectionStatus    `json:"status"`
	Reason  string           `json:"reason,omitempty"`
	Results []KeywordAverage `json:"results,omitempty"`
}

type ExtremesSection struct {
	Status SectionStatus  `json:"status"`
	Reason string         `json:"reason,omitempty"`
	K      int            `json:"k"`
	Top    []RankedRecord `json:"top,omitempty"`
	Bottom []RankedRecord `json:"bottom,omitempty"`
}

type AggregateReport struct {
	Distribution DistributionSection `json:"distribution"`
	Trend        TrendSection        `json:"trend"`
	Keywords     KeywordSection      `json:"keywords"`
	Extremes     ExtremesSection     `json:"extremes"`
	Warnings     []string            `json:"warnings,omitempty"`
}

type DatasetStatus string

const (
	DATASET_NOT_PROVIDED DatasetStatus = "not_provided"
	DATASET_REJECTED     DatasetStatus = "rejected"
	DATASET_FAILED       DatasetStatus = "failed"
	DATASET_ANNOTATED    DatasetStatus = "annotated"
)

type DatasetOutcome struct {
	Role    Role              `json:"role"`
	Status  DatasetStatus     `json:"status"`
	Error   string            `json:"error,omitempty"`
	Summary AnnotationSummary `json:"summary"`
	Dataset *Dataset          `json:"-"`
}

type RunReport struct {
	RunID      string          `json:"run_id"`
	CreatedAt  time.Time       `json:"created_at"`
	Comments   DatasetOutcome  `json:"comments"`
	Articles   DatasetOutcome  `json:"articles"`
	Aggregates AggregateReport `json:"aggregates"`
	SinkErrors []string        `json:"sink_errors,omitempty"`
}
