package sentiment

import (
	"context"
	"fmt"

	"github.com/spacesedan/nytsentiment/internal/models"
)

// LabelScorer is the subset of clients.HuggingFaceClient used here.
type LabelScorer interface {
	Classify(ctx context.Context, text string) ([]models.InferenceLabel, error)
}

// RemoteClassifier reports the top label of a hosted inference endpoint.
type RemoteClassifier struct {
	client LabelScorer
}

func NewRemoteClassifier(client LabelScorer) *RemoteClassifier {
	return &RemoteClassifier{client: client}
}

func (r *RemoteClassifier) Classify(ctx context.Context, text string) (models.SentimentResult, error) {
	labels, err := r.client.Classify(ctx, text)
	if err != nil {
		return models.SentimentResult{}, err
	}
	if len(labels) == 0 {
		return models.SentimentResult{}, fmt.Errorf("%w: no labels", ErrMalformedResult)
	}

	best := labels[0]
	for _, l := range labels[1:] {
		if l.Score > best.Score {
			best = l
		}
	}

	return models.SentimentResult{Label: models.Category(best.Label), Score: best.Score}, nil
}
