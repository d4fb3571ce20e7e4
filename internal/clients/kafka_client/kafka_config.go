package kafka_client

import "github.com/spacesedan/nytsentiment/config"

type KafkaConfig struct {
	Broker          string
	Topic           string
	TransactionalID string
}

func FromConfig(cfg config.KafkaConfig) KafkaConfig {
	topic := cfg.ReportTopic
	if topic == "" {
		topic = KAFKA_TOPIC_SENTIMENT_REPORTS
	}
	return KafkaConfig{
		Broker:          cfg.Broker,
		Topic:           topic,
		TransactionalID: TRANSACTION_ID,
	}
}
