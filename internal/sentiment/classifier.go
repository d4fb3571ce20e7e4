// Package sentiment defines the text classification capability consumed by
// the annotator and the backends that provide it.
//
// A Classifier maps one text to a label and a score. Backends:
//
//   - VADER: lexicon scoring in process (govader).
//   - Hugot: a local transformer text classification pipeline.
//   - Remote: a hosted inference endpoint.
//   - OpenAI: a chat model asked for a JSON verdict.
//
// Cached wraps any of them with a content addressed result cache.
package sentiment

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/spacesedan/nytsentiment/internal/models"
)

var ErrMalformedResult = errors.New("malformed classifier result")

type Classifier interface {
	Classify(ctx context.Context, text string) (models.SentimentResult, error)
}

// ClassifierFunc adapts a plain function to Classifier.
type ClassifierFunc func(ctx context.Context, text string) (models.SentimentResult, error)

func (f ClassifierFunc) Classify(ctx context.Context, text string) (models.SentimentResult, error) {
	return f(ctx, text)
}

// CheckResult rejects results without a label or with a non-finite score.
func CheckResult(res models.SentimentResult) error {
	if res.Label == "" {
		return fmt.Errorf("%w: empty label", ErrMalformedResult)
	}
	if math.IsNaN(res.Score) || math.IsInf(res.Score, 0) {
		return fmt.Errorf("%w: score %v", ErrMalformedResult, res.Score)
	}
	return nil
}
