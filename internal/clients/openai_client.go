package clients

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/spacesedan/nytsentiment/internal/models"
)

const (
	openAIRequestTimeout = 60 * time.Second // Timeout for individual OpenAI API requests
	openAIMaxRetries     = 3
)

const openAISentimentPrompt = `Classify the sentiment of the reader text you are given.

### **STRICT OUTPUT FORMAT**
You MUST return only **valid JSON**, formatted exactly as follows:
{"label": "POSITIVE", "score": 0.97}

### **REQUIREMENTS**
- "label" is exactly one of POSITIVE, NEGATIVE.
- "score" is your confidence in the label, between 0 and 1.
- **No Markdown formatting** (no triple backticks, no explanations).
- **No extra text before or after the JSON output**.
- Empty or meaningless text is still classified.
`

var errEmptyCompletion = errors.New("openai returned an empty response")

type OpenAIClient struct {
	Client *openai.Client
	Model  string
}

func NewOpenAIClient(apiKey, model string) *OpenAIClient {
	httpClient := &http.Client{
		Timeout: openAIRequestTimeout,
	}

	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(httpClient),
	)

	slog.Info("[OpenAIClient] OpenAI client initialized",
		slog.String("model", model),
		slog.Duration("timeout", openAIRequestTimeout))

	return &OpenAIClient{Client: client, Model: model}
}

// ClassifySentiment asks the chat model for a JSON verdict on text. Empty
// completions and unparseable answers are retried.
func (o *OpenAIClient) ClassifySentiment(ctx context.Context, text string) (models.OpenAISentimentResponse, error) {
	var result models.OpenAISentimentResponse
	var err error

	for attempt := 1; attempt <= openAIMaxRetries; attempt++ {
		result, err = o.complete(ctx, text)
		if err == nil {
			return result, nil
		}
		if ctx.Err() != nil {
			return result, ctx.Err()
		}

		slog.Warn("[OpenAIClient] Sentiment request failed, retrying",
			slog.Int("attempt", attempt),
			slog.String("error", err.Error()))
		time.Sleep(time.Duration(attempt) * time.Second)
	}

	return result, fmt.Errorf("openai failed after %d attempts: %w", openAIMaxRetries, err)
}

func (o *OpenAIClient) complete(ctx context.Context, text string) (models.OpenAISentimentResponse, error) {
	var result models.OpenAISentimentResponse

	chatCompletion, err := o.Client.Chat.Completions.New(ctx,
		openai.ChatCompletionNewParams{
			Messages: openai.F([]openai.ChatCompletionMessageParamUnion{
				openai.SystemMessage(openAISentimentPrompt),
				openai.UserMessage(text),
			}),
			Model:       openai.F(openai.ChatModel(o.Model)),
			Temperature: openai.Float(0),
		})
	if err != nil {
		return result, err
	}

	if len(chatCompletion.Choices) == 0 || strings.TrimSpace(chatCompletion.Choices[0].Message.Content) == "" {
		return result, errEmptyCompletion
	}

	raw := CleanOpenAIResponse(chatCompletion.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return result, fmt.Errorf("failed to parse sentiment JSON: %w", err)
	}

	return result, nil
}

// CleanOpenAIResponse strips code fences and curly quotes models sometimes
// wrap around JSON.
func CleanOpenAIResponse(response string) string {
	response = strings.TrimSpace(response)

	response = strings.TrimPrefix(response, "```json")
	response = strings.TrimPrefix(response, "```")
	response = strings.TrimSuffix(response, "```")

	response = strings.ReplaceAll(response, "\u201C", `"`) // Left curly quote
	response = strings.ReplaceAll(response, "\u201D", `"`) // Right curly quote

	return strings.TrimSpace(response)
}
