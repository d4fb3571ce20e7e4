package clients

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/opensearch-project/opensearch-go/v4"
	"github.com/opensearch-project/opensearch-go/v4/opensearchapi"
)

type Opensearch struct {
	Client *opensearch.Client
}

// OpensearchOptions selects basic auth for self-hosted clusters or SigV4
// signing for AWS managed domains.
type OpensearchOptions struct {
	Endpoint string
	Username string
	Password string
	SigV4    bool
	Region   string
}

func NewOpensearchClient(ctx context.Context, opts OpensearchOptions) (*Opensearch, error) {
	cfg := opensearch.Config{
		Addresses: []string{opts.Endpoint},
	}

	if opts.SigV4 {
		awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(opts.Region))
		if err != nil {
			return nil, fmt.Errorf("[OpenSearchClient] failed to load AWS config: %w", err)
		}
		cfg.Transport = NewSigV4Transport(awsCfg.Credentials, v4.NewSigner(), awsCfg.Region, "es")
	} else {
		cfg.Username = opts.Username
		cfg.Password = opts.Password
	}

	client, err := opensearch.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("[OpenSearchClient] failed to initialize client: %w", err)
	}

	slog.Info("[OpenSearchClient] OpenSearch client initialized",
		slog.String("endpoint", opts.Endpoint),
		slog.Bool("sigv4", opts.SigV4))
	return &Opensearch{Client: client}, nil
}

type sigV4Transport struct {
	credentials aws.CredentialsProvider
	signer      *v4.Signer
	region      string
	service     string
	next        http.RoundTripper
}

func NewSigV4Transport(creds aws.CredentialsProvider, signer *v4.Signer, region string, service string) http.RoundTripper {
	return &sigV4Transport{
		credentials: creds,
		signer:      signer,
		region:      region,
		service:     service,
		next:        http.DefaultTransport,
	}
}

// RoundTrip signs the buffered body so bulk requests carry a real payload
// hash.
func (t *sigV4Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	creds, err := t.credentials.Retrieve(req.Context())
	if err != nil {
		return nil, err
	}

	signedReq := req.Clone(req.Context())
	signedReq.Header.Del("Authorization")

	var body []byte
	if req.Body != nil {
		body, err = io.ReadAll(req.Body)
		if err != nil {
			return nil, err
		}
		req.Body.Close()
		signedReq.Body = io.NopCloser(bytes.NewReader(body))
	}

	err = t.signer.SignHTTP(
		req.Context(),
		creds,
		signedReq,
		payloadHash(body),
		t.service,
		t.region,
		time.Now(),
	)
	if err != nil {
		return nil, err
	}

	return t.next.RoundTrip(signedReq)
}

func payloadHash(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

func (o *Opensearch) IsHealthy(ctx context.Context) bool {
	req := opensearchapi.ClusterHealthReq{}
	res, err := o.Client.Do(ctx, req, nil)
	if err != nil {
		return false
	}
	defer res.Body.Close()

	if res.IsError() {
		return false
	}

	return res.StatusCode == http.StatusOK
}

// BulkDocument is one document of a bulk index request.
type BulkDocument struct {
	ID   string
	Body any
}

type bulkResponse struct {
	Errors bool `json:"errors"`
	Items  []map[string]struct {
		Status int `json:"status"`
		Error  *struct {
			Type   string `json:"type"`
			Reason string `json:"reason"`
		} `json:"error,omitempty"`
	} `json:"items"`
}

// BulkIndex writes docs into index with a single _bulk request.
func (o *Opensearch) BulkIndex(ctx context.Context, index string, docs []BulkDocument) error {
	if len(docs) == 0 {
		return nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, doc := range docs {
		action := map[string]map[string]string{"index": {"_index": index, "_id": doc.ID}}
		if err := enc.Encode(action); err != nil {
			return err
		}
		if err := enc.Encode(doc.Body); err != nil {
			return fmt.Errorf("[OpenSearchClient] failed to marshal document %s: %w", doc.ID, err)
		}
	}

	res, err := o.Client.Do(ctx, opensearchapi.BulkReq{
		Index: index,
		Body:  &buf,
	}, nil)
	if err != nil {
		slog.Error("[OpenSearchClient] Failed to send bulk request",
			slog.String("error", err.Error()))
		return err
	}
	defer res.Body.Close()

	if res.IsError() {
		slog.Error("[OpenSearchClient] OpenSearch indexing error",
			slog.String("status", res.Status()))
		return fmt.Errorf("opensearch error: %s", res.Status())
	}

	var parsed bulkResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return fmt.Errorf("[OpenSearchClient] failed to decode bulk response: %w", err)
	}
	if parsed.Errors {
		failed := 0
		reason := ""
		for _, item := range parsed.Items {
			for _, result := range item {
				if result.Error != nil {
					failed++
					reason = result.Error.Reason
				}
			}
		}
		return fmt.Errorf("opensearch rejected %d of %d documents: %s", failed, len(docs), reason)
	}

	slog.Info("[OpenSearchClient] Indexed documents",
		slog.String("index", index),
		slog.Int("count", len(docs)))
	return nil
}
