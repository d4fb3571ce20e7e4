package sentiment

import (
	"context"
	"strings"

	"github.com/spacesedan/nytsentiment/internal/models"
)

type SentimentCompleter interface {
	ClassifySentiment(ctx context.Context, text string) (models.OpenAISentimentResponse, error)
}

// OpenAIClassifier asks a chat model for a label and a confidence. Labels are
// upper-cased so the vocabulary stays stable across answers.
type OpenAIClassifier struct {
	client SentimentCompleter
}

func NewOpenAIClassifier(client SentimentCompleter) *OpenAIClassifier {
	return &OpenAIClassifier{client: client}
}

func (o *OpenAIClassifier) Classify(ctx context.Context, text string) (models.SentimentResult, error) {
	resp, err := o.client.ClassifySentiment(ctx, text)
	if err != nil {
		return models.SentimentResult{}, err
	}

	return models.SentimentResult{
		Label: models.Category(strings.ToUpper(strings.TrimSpace(resp.Label))),
		Score: resp.Score,
	}, nil
}
