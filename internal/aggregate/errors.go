package aggregate

import "errors"

var (
	// ErrNotAnnotated is returned when a dataset lacks sentiment/score columns.
	ErrNotAnnotated = errors.New("dataset is not annotated")
	// ErrNoDateField is returned by TimeTrend when the date column is absent.
	ErrNoDateField = errors.New("dataset has no date column")
	// ErrPreconditionUnmet marks report sections skipped because a required
	// dataset was not annotated.
	ErrPreconditionUnmet = errors.New("aggregation precondition unmet")
)
