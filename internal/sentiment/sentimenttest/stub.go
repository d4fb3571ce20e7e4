// Package sentimenttest provides deterministic classifiers for tests.
package sentimenttest

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/spacesedan/nytsentiment/internal/models"
)

var ErrStubFailure = errors.New("stub classifier failure")

type Rule struct {
	Keyword string
	Result  models.SentimentResult
}

// KeywordClassifier returns the result of the first rule whose keyword is in
// the text, else Default. Texts listed in FailOn return ErrStubFailure.
type KeywordClassifier struct {
	Rules   []Rule
	Default models.SentimentResult
	FailOn  map[string]bool

	mu    sync.Mutex
	calls []string
}

// LoveHate is the classifier used by the end-to-end scenarios.
func LoveHate() *KeywordClassifier {
	return &KeywordClassifier{
		Rules: []Rule{
			{Keyword: "love", Result: models.SentimentResult{Label: "POSITIVE", Score: 0.9}},
			{Keyword: "hate", Result: models.SentimentResult{Label: "NEGATIVE", Score: 0.8}},
		},
		Default: models.SentimentResult{Label: "NEUTRAL", Score: 0.5},
	}
}

func (k *KeywordClassifier) Classify(ctx context.Context, text string) (models.SentimentResult, error) {
	k.mu.Lock()
	k.calls = append(k.calls, text)
	k.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return models.SentimentResult{}, err
	}
	if k.FailOn[text] {
		return models.SentimentResult{}, ErrStubFailure
	}
	for _, r := range k.Rules {
		if strings.Contains(text, r.Keyword) {
			return r.Result, nil
		}
	}
	return k.Default, nil
}

// Calls returns every text classified so far, in call order.
func (k *KeywordClassifier) Calls() []string {
	k.mu.Lock()
	defer k.mu.Unlock()
	return append([]string(nil), k.calls...)
}
