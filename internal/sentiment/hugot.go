package sentiment

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/pipelines"
	"github.com/spacesedan/nytsentiment/internal/models"
)

const HUGOT_PIPELINE_NAME = "sentimentPipeline"

// HugotClassifier runs a local text classification transformer. The default
// model is a distilbert fine-tuned on SST-2 which answers POSITIVE/NEGATIVE
// with a softmax confidence.
type HugotClassifier struct {
	session  *hugot.Session
	pipeline *pipelines.TextClassificationPipeline
}

// NewHugotClassifier downloads model into modelDir when it is not there yet
// and builds the pipeline. Call Close to release the session.
func NewHugotClassifier(model, modelDir string) (*HugotClassifier, error) {
	if err := os.MkdirAll(modelDir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("failed to create model directory: %w", err)
	}

	modelPath := filepath.Join(modelDir, strings.ReplaceAll(model, "/", "_"))
	if _, err := os.Stat(modelPath); os.IsNotExist(err) {
		slog.Info("[HugotClassifier] Model not found, downloading...",
			slog.String("model", model))
		modelPath, err = hugot.DownloadModel(model, modelDir, hugot.NewDownloadOptions())
		if err != nil {
			return nil, fmt.Errorf("failed to download model %s: %w", model, err)
		}
		slog.Info("[HugotClassifier] Model downloaded successfully", slog.String("path", modelPath))
	} else {
		slog.Info("[HugotClassifier] Using existing model", slog.String("path", modelPath))
	}

	session, err := hugot.NewORTSession()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize hugot session: %w", err)
	}

	config := hugot.TextClassificationConfig{
		ModelPath: modelPath,
		Name:      HUGOT_PIPELINE_NAME,
	}
	pipeline, err := hugot.NewPipeline(session, config)
	if err != nil {
		session.Destroy()
		return nil, fmt.Errorf("failed to initialize text classification pipeline: %w", err)
	}

	return &HugotClassifier{session: session, pipeline: pipeline}, nil
}

func (h *HugotClassifier) Classify(ctx context.Context, text string) (models.SentimentResult, error) {
	if err := ctx.Err(); err != nil {
		return models.SentimentResult{}, err
	}

	output, err := h.pipeline.RunPipeline([]string{text})
	if err != nil {
		return models.SentimentResult{}, fmt.Errorf("pipeline run failed: %w", err)
	}
	if len(output.ClassificationOutputs) == 0 {
		return models.SentimentResult{}, fmt.Errorf("%w: no outputs", ErrMalformedResult)
	}

	return bestLabel(output.ClassificationOutputs[0])
}

func (h *HugotClassifier) Close() error {
	return h.session.Destroy()
}

// bestLabel keeps the highest scoring label; the first one wins ties.
func bestLabel(outputs []pipelines.ClassificationOutput) (models.SentimentResult, error) {
	if len(outputs) == 0 {
		return models.SentimentResult{}, fmt.Errorf("%w: no labels", ErrMalformedResult)
	}

	best := outputs[0]
	for _, o := range outputs[1:] {
		if o.Score > best.Score {
			best = o
		}
	}

	return models.SentimentResult{
		Label: models.Category(best.Label),
		Score: float64(best.Score),
	}, nil
}
