package clients

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/spacesedan/nytsentiment/internal/models"
	"github.com/valkey-io/valkey-go"
)

const VALKEY_SENTIMENT_KEY_PREFIX = "sentiment:result:"

// ValkeyClient guards its connection so a reconnect can swap it while other
// goroutines are reading through it.
type ValkeyClient struct {
	conn valkey.Client
	opts valkey.ClientOption
	mu   sync.RWMutex
}

func NewValkeyClient(addr, password string, useTLS bool) (*ValkeyClient, error) {
	opts := valkey.ClientOption{
		InitAddress: []string{
			addr,
		},
		Password:         password,
		ConnWriteTimeout: 5 * time.Second,
		SelectDB:         0,
	}

	if useTLS {
		opts.TLSConfig = &tls.Config{InsecureSkipVerify: false}
	}

	client, err := connectValkey(opts)
	if err != nil {
		return nil, err
	}

	slog.Info("[ValkeyClient] Successfully connected to valkey",
		slog.String("address", addr))
	return &ValkeyClient{conn: client, opts: opts}, nil
}

func connectValkey(opts valkey.ClientOption) (valkey.Client, error) {
	client, err := valkey.NewClient(opts)
	if err != nil {
		return nil, fmt.Errorf("[ValkeyClient] failed to create Valkey: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*3)
	defer cancel()

	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("[ValkeyClient] failed to ping Valkey: %w", err)
	}
	return client, nil
}

// Client returns the current connection.
func (vc *ValkeyClient) Client() valkey.Client {
	vc.mu.RLock()
	defer vc.mu.RUnlock()
	return vc.conn
}

func (vc *ValkeyClient) recreateClient() {
	slog.Warn("[ValkeyClient] Attempting to recreate Valkey client...")
	client, err := connectValkey(vc.opts)
	if err != nil {
		slog.Error("[ValkeyClient] Recreate failed",
			slog.String("error", err.Error()))
		return
	}

	vc.replace(client)
	slog.Info("[ValkeyClient] Successfully reconnected to valkey")
}

func (vc *ValkeyClient) replace(client valkey.Client) {
	vc.mu.Lock()
	defer vc.mu.Unlock()
	if vc.conn != nil {
		vc.conn.Close()
	}
	vc.conn = client
}

func (vc *ValkeyClient) Close() {
	vc.mu.Lock()
	defer vc.mu.Unlock()
	if vc.conn != nil {
		vc.conn.Close()
	}
}

// GetSentiment returns the cached result for key. The bool is false on a
// cache miss.
func (vc *ValkeyClient) GetSentiment(ctx context.Context, key string) (models.SentimentResult, bool, error) {
	var result models.SentimentResult

	cmd := vc.Client().B().Get().Key(VALKEY_SENTIMENT_KEY_PREFIX + key).Build().Pin()
	res := vc.DoWithRetry(ctx, cmd, 3)
	raw, err := res.ToString()
	if valkey.IsValkeyNil(err) {
		return result, false, nil
	}
	if err != nil {
		return result, false, err
	}

	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return result, false, fmt.Errorf("[ValkeyClient] corrupt cache entry: %w", err)
	}
	return result, true, nil
}

func (vc *ValkeyClient) SetSentiment(ctx context.Context, key string, result models.SentimentResult, ttl time.Duration) error {
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}

	cmd := vc.Client().B().Set().
		Key(VALKEY_SENTIMENT_KEY_PREFIX + key).
		Value(string(data)).
		ExSeconds(ExpirySeconds(ttl)).
		Build().
		Pin()

	return vc.DoWithRetry(ctx, cmd, 3).Error()
}

// ExpirySeconds rounds ttl up to whole seconds. EX rejects zero, so anything
// shorter than a second becomes one.
func ExpirySeconds(ttl time.Duration) int64 {
	secs := int64((ttl + time.Second - 1) / time.Second)
	if secs < 1 {
		return 1
	}
	return secs
}

// DoWithRetry resends completed until it succeeds or retries run out. Pin
// completed first so it survives being sent more than once.
func (vc *ValkeyClient) DoWithRetry(ctx context.Context, completed valkey.Completed, retries int) valkey.ValkeyResult {
	var result valkey.ValkeyResult
	for i := 0; i < retries; i++ {
		result = vc.Client().Do(ctx, completed)
		if err := result.Error(); err == nil || valkey.IsValkeyNil(err) {
			break
		}
		if isConnectionError(result.Error()) {
			vc.recreateClient()
		}

		slog.Warn("[ValkeyClient] Do failed",
			slog.Int("attempt", i+1),
			slog.String("error", result.Error().Error()))

		time.Sleep(250 * time.Millisecond)
	}

	return result
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "EOF") ||
		strings.Contains(msg, "i/o timeout")
}
