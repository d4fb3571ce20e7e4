package kafka_client

import "time"

const (
	KAFKA_TOPIC_SENTIMENT_REPORTS = "sentiment-reports" // one message per pipeline run
)

const (
	MAX_RETRIES    = 3
	RETRY_DELAY    = 2 * time.Second
	FLUSH_TIMEOUT  = 5000 // ms
	TRANSACTION_ID = "nytsentiment-reporter"
)
