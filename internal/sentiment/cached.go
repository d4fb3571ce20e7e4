package sentiment

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"time"

	"github.com/spacesedan/nytsentiment/internal/models"
)

// ResultCache is satisfied by clients.ValkeyClient.
type ResultCache interface {
	GetSentiment(ctx context.Context, key string) (models.SentimentResult, bool, error)
	SetSentiment(ctx context.Context, key string, result models.SentimentResult, ttl time.Duration) error
}

// CachedClassifier memoises results by backend name and text hash. Cache
// failures fall through to the wrapped classifier.
type CachedClassifier struct {
	next      Classifier
	cache     ResultCache
	namespace string
	ttl       time.Duration
}

func NewCachedClassifier(next Classifier, cache ResultCache, namespace string, ttl time.Duration) *CachedClassifier {
	return &CachedClassifier{
		next:      next,
		cache:     cache,
		namespace: namespace,
		ttl:       ttl,
	}
}

func (c *CachedClassifier) Classify(ctx context.Context, text string) (models.SentimentResult, error) {
	key := CacheKey(c.namespace, text)

	cached, ok, err := c.cache.GetSentiment(ctx, key)
	if err != nil {
		slog.Warn("[CachedClassifier] Cache lookup failed",
			slog.String("error", err.Error()))
	}
	if ok && CheckResult(cached) == nil {
		return cached, nil
	}

	res, err := c.next.Classify(ctx, text)
	if err != nil {
		return res, err
	}

	// only well formed results are cached so failures are retried next run
	if CheckResult(res) == nil {
		if err := c.cache.SetSentiment(ctx, key, res, c.ttl); err != nil {
			slog.Warn("[CachedClassifier] Cache write failed",
				slog.String("error", err.Error()))
		}
	}
	return res, nil
}

func CacheKey(namespace, text string) string {
	sum := sha256.Sum256([]byte(text))
	return namespace + ":" + hex.EncodeToString(sum[:])
}
