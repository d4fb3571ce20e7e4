package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/spacesedan/nytsentiment/internal/models"
	"golang.org/x/oauth2"
)

// HuggingFaceClient talks to a hosted text classification endpoint that
// accepts {"inputs": "..."}.
type HuggingFaceClient struct {
	Client   *http.Client
	Endpoint string

	backoff time.Duration
}

// NewHuggingFaceClient builds a client for endpoint. A non-empty token is sent
// as a bearer token on every request.
func NewHuggingFaceClient(endpoint, token string, timeout time.Duration) *HuggingFaceClient {
	httpClient := &http.Client{}
	if token != "" {
		src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
		httpClient = oauth2.NewClient(context.Background(), src)
	}
	httpClient.Timeout = timeout

	slog.Info("[HuggingFaceClient] Initializing Client",
		slog.String("endpoint", endpoint),
		slog.Duration("timeout", timeout),
		slog.Bool("authenticated", token != ""))

	return &HuggingFaceClient{
		Client:   httpClient,
		Endpoint: endpoint,
		backoff:  INITIAL_BACKOFF,
	}
}

// DoWithRetry retries transport errors, 429 and 5xx answers with a doubling
// backoff. newReq is called per attempt so request bodies are fresh.
func (h *HuggingFaceClient) DoWithRetry(ctx context.Context, newReq func() (*http.Request, error)) (*http.Response, error) {
	var resp *http.Response
	var err error
	backoff := h.backoff

	for attempt := 0; attempt < MAX_RETRIES; attempt++ {
		req, reqErr := newReq()
		if reqErr != nil {
			return nil, reqErr
		}

		resp, err = h.Client.Do(req)
		if err == nil && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return resp, nil
		}

		slog.Warn("[HuggingFaceClient] Request failed, will retry",
			slog.Int("attempt", attempt+1),
			slog.String("error", errMsg(err, resp)))

		if resp != nil {
			resp.Body.Close()
		}

		if attempt == MAX_RETRIES-1 {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > MAX_BACKOFF {
			backoff = MAX_BACKOFF
		}
	}

	if err == nil {
		err = fmt.Errorf("status code %d", resp.StatusCode)
	}
	return nil, err
}

// Classify returns every label the endpoint scored for text.
func (h *HuggingFaceClient) Classify(ctx context.Context, text string) ([]models.InferenceLabel, error) {
	start := time.Now()

	var raw json.RawMessage
	if err := h.postJSON(ctx, models.InferenceRequest{Inputs: text}, &raw); err != nil {
		slog.Error("[HuggingFaceClient] Classification request failed",
			slog.Duration("elapsed", time.Since(start)))
		return nil, err
	}

	labels, err := decodeLabels(raw)
	if err != nil {
		slog.Error("[HuggingFaceClient] Failed to decode labels",
			slog.String("error", err.Error()),
			getPreview(raw))
		return nil, err
	}

	slog.Debug("[HuggingFaceClient] Classification request successful",
		slog.Duration("elapsed", time.Since(start)))
	return labels, nil
}

// decodeLabels accepts both [[{label,score}...]] and [{label,score}...].
func decodeLabels(raw []byte) ([]models.InferenceLabel, error) {
	var nested [][]models.InferenceLabel
	if err := json.Unmarshal(raw, &nested); err == nil {
		if len(nested) == 0 {
			return nil, nil
		}
		return nested[0], nil
	}

	var flat []models.InferenceLabel
	if err := json.Unmarshal(raw, &flat); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return flat, nil
}

// helper function for posting data to the inference endpoint
func (h *HuggingFaceClient) postJSON(ctx context.Context, input interface{}, output interface{}) error {
	body, err := json.Marshal(input)
	if err != nil {
		return fmt.Errorf("failed to marshal input: %w", err)
	}

	newReq := func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.Endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("failed to build request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("User-Agent", USER_AGENT)
		return req, nil
	}

	resp, err := h.DoWithRetry(ctx, newReq)
	if err != nil {
		slog.Error("[HuggingFaceClient] Failed request after retries",
			slog.String("endpoint", h.Endpoint),
			slog.String("error", err.Error()))
		return fmt.Errorf("request failed after retries: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		slog.Error("[HuggingFaceClient] Unexpected status",
			slog.Int("status", resp.StatusCode),
			getPreview(respBody))
		return fmt.Errorf("unexpected status code %d", resp.StatusCode)
	}

	if err := json.Unmarshal(respBody, output); err != nil {
		slog.Error("[HuggingFaceClient] Failed to unmarshal response",
			slog.String("endpoint", h.Endpoint),
			slog.String("error", err.Error()),
			getPreview(respBody),
			slog.Int("raw_response_length", len(respBody)))
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return nil
}

func getPreview(respBody []byte) slog.Attr {
	raw := string(respBody)
	if len(raw) > 50 {
		raw = raw[:50]
	}
	return slog.String("raw_response", raw)
}

func errMsg(err error, resp *http.Response) string {
	if err != nil {
		return err.Error()
	}
	if resp != nil {
		return fmt.Sprintf("status code %d", resp.StatusCode)
	}
	return "unknown error"
}
