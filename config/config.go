package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
)

const (
	BACKEND_VADER  = "vader"
	BACKEND_HUGOT  = "hugot"
	BACKEND_REMOTE = "remote"
	BACKEND_OPENAI = "openai"
)

type Config struct {
	AppEnv   string `envconfig:"APP_ENV" default:"dev"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`
	HTTPAddr string `envconfig:"HTTP_ADDR" default:":8080"`

	Classifier ClassifierConfig `ignored:"true"`
	Analysis   AnalysisConfig   `ignored:"true"`
	Cache      CacheConfig      `ignored:"true"`
	DynamoDB   DynamoDBConfig   `ignored:"true"`
	Kafka      KafkaConfig      `ignored:"true"`
	OpenSearch OpenSearchConfig `ignored:"true"`
}

type ClassifierConfig struct {
	Backend string `envconfig:"CLASSIFIER_BACKEND" default:"vader" validate:"oneof=vader hugot remote openai"`

	HugotModel    string `envconfig:"HUGOT_MODEL" default:"KnightsAnalytics/distilbert-base-uncased-finetuned-sst-2-english"`
	HugotModelDir string `envconfig:"HUGOT_MODEL_DIR" default:"./models"`

	InferenceEndpoint string        `envconfig:"HF_INFERENCE_ENDPOINT" validate:"required_if=Backend remote"`
	InferenceToken    string        `envconfig:"HF_API_TOKEN"`
	InferenceTimeout  time.Duration `envconfig:"HF_TIMEOUT" default:"30s"`

	OpenAIKey   string `envconfig:"OPENAI_API_KEY" validate:"required_if=Backend openai"`
	OpenAIModel string `envconfig:"OPENAI_MODEL" default:"gpt-4o-mini"`
}

type AnalysisConfig struct {
	Workers   int      `envconfig:"ANNOTATE_WORKERS" default:"1" validate:"min=1,max=64"`
	Keywords  []string `envconfig:"TOPIC_KEYWORDS" default:"China,Trade War,Steel Tariff,Protectionism"`
	ExtremesK int      `envconfig:"EXTREMES_K" default:"5" validate:"min=1"`
	Decoupled bool     `envconfig:"AGGREGATE_DECOUPLED" default:"false"`
}

type CacheConfig struct {
	Address  string        `envconfig:"VALKEY_INIT_ADDRESS"`
	Password string        `envconfig:"VALKEY_PASSWORD"`
	TLS      bool          `envconfig:"VALKEY_TLS" default:"false"`
	TTL      time.Duration `envconfig:"CACHE_TTL" default:"24h" validate:"min=1s"`
}

func (c CacheConfig) Enabled() bool {
	return c.Address != ""
}

type DynamoDBConfig struct {
	Enabled  bool   `envconfig:"DYNAMODB_ENABLED" default:"false"`
	Endpoint string `envconfig:"AWS_ENDPOINT"`
	Region   string `envconfig:"AWS_REGION" default:"us-west-2"`
}

type KafkaConfig struct {
	Enabled     bool   `envconfig:"KAFKA_ENABLED" default:"false"`
	Broker      string `envconfig:"KAFKA_BROKER" default:"localhost:29092"`
	ReportTopic string `envconfig:"KAFKA_REPORT_TOPIC" default:"sentiment-reports"`
}

type OpenSearchConfig struct {
	Enabled  bool   `envconfig:"OPENSEARCH_ENABLED" default:"false"`
	Endpoint string `envconfig:"OPENSEARCH_ENDPOINT" validate:"required_if=Enabled true"`
	Username string `envconfig:"OPENSEARCH_USERNAME" default:"admin"`
	Password string `envconfig:"OPENSEARCH_PASSWORD"`
	SigV4    bool   `envconfig:"OPENSEARCH_SIGV4" default:"false"`
	Index    string `envconfig:"OPENSEARCH_INDEX" default:"nyt-sentiment-results"`
}

// Load reads the process environment into a validated Config. Call LoadEnv
// first to pick up .env files.
func Load() (*Config, error) {
	var cfg Config
	// Sections are processed one at a time so their keys stay unprefixed.
	sections := []interface{}{&cfg, &cfg.Classifier, &cfg.Analysis, &cfg.Cache, &cfg.DynamoDB, &cfg.Kafka, &cfg.OpenSearch}
	for _, section := range sections {
		if err := envconfig.Process("", section); err != nil {
			return nil, fmt.Errorf("failed to load environment variables: %w", err)
		}
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}
