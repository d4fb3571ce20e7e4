package sentiment

import (
	"fmt"
	"log/slog"

	"github.com/spacesedan/nytsentiment/config"
	"github.com/spacesedan/nytsentiment/internal/clients"
)

// NewFromConfig builds the configured backend, wrapped in a Valkey cache when
// one is configured. The returned func releases backend resources.
func NewFromConfig(cfg *config.Config) (Classifier, func(), error) {
	var classifier Classifier
	var closers []func()

	cc := cfg.Classifier
	switch cc.Backend {
	case config.BACKEND_VADER, "":
		classifier = NewVADERClassifier()
	case config.BACKEND_HUGOT:
		h, err := NewHugotClassifier(cc.HugotModel, cc.HugotModelDir)
		if err != nil {
			return nil, nil, err
		}
		classifier = h
		closers = append(closers, func() {
			if err := h.Close(); err != nil {
				slog.Warn("[Classifier] Failed to destroy hugot session",
					slog.String("error", err.Error()))
			}
		})
	case config.BACKEND_REMOTE:
		client := clients.NewHuggingFaceClient(cc.InferenceEndpoint, cc.InferenceToken, cc.InferenceTimeout)
		classifier = NewRemoteClassifier(client)
	case config.BACKEND_OPENAI:
		client := clients.NewOpenAIClient(cc.OpenAIKey, cc.OpenAIModel)
		classifier = NewOpenAIClassifier(client)
	default:
		return nil, nil, fmt.Errorf("unknown classifier backend %q", cc.Backend)
	}

	if cfg.Cache.Enabled() {
		vc, err := clients.NewValkeyClient(cfg.Cache.Address, cfg.Cache.Password, cfg.Cache.TLS)
		if err != nil {
			slog.Warn("[Classifier] Cache unavailable, classifying without it",
				slog.String("error", err.Error()))
		} else {
			classifier = NewCachedClassifier(classifier, vc, cacheNamespace(cc), cfg.Cache.TTL)
			closers = append(closers, vc.Close)
		}
	}

	slog.Info("[Classifier] Classifier ready",
		slog.String("backend", cc.Backend),
		slog.Bool("cached", cfg.Cache.Enabled()))

	return classifier, func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}, nil
}

// results from different models must not share cache entries
func cacheNamespace(cc config.ClassifierConfig) string {
	switch cc.Backend {
	case config.BACKEND_HUGOT:
		return cc.Backend + "/" + cc.HugotModel
	case config.BACKEND_REMOTE:
		return cc.Backend + "/" + cc.InferenceEndpoint
	case config.BACKEND_OPENAI:
		return cc.Backend + "/" + cc.OpenAIModel
	default:
		return cc.Backend
	}
}
