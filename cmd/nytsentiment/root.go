package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/spacesedan/nytsentiment/config"
	"github.com/spacesedan/nytsentiment/internal/aggregate"
	"github.com/spacesedan/nytsentiment/internal/annotate"
	"github.com/spacesedan/nytsentiment/internal/clients"
	"github.com/spacesedan/nytsentiment/internal/clients/kafka_client"
	"github.com/spacesedan/nytsentiment/internal/db"
	"github.com/spacesedan/nytsentiment/internal/logging"
	"github.com/spacesedan/nytsentiment/internal/monitoring"
	"github.com/spacesedan/nytsentiment/internal/pipeline"
	"github.com/spacesedan/nytsentiment/internal/sentiment"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
)

type app struct {
	cfg    *config.Config
	health *monitoring.Monitor
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "nytsentiment",
		Short:         "Sentiment annotation and aggregation for NYT comments and articles",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			env := os.Getenv("APP_ENV")
			if env == "" {
				env = "dev"
			}
			config.LoadEnv(env)

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logging.InitLogger(cfg.LogLevel)
			a.cfg = cfg
			return nil
		},
	}

	root.AddCommand(newAnalyzeCmd(a), newServeCmd(a), newVersionCmd())
	return root
}

// buildPipeline wires the classifier and any enabled sinks. The returned func
// releases everything it opened.
func (a *app) buildPipeline(ctx context.Context) (*pipeline.Pipeline, func(), error) {
	classifier, closeClassifier, err := sentiment.NewFromConfig(a.cfg)
	if err != nil {
		return nil, nil, err
	}
	closers := []func(){closeClassifier}
	a.health = monitoring.NewMonitor(monitoring.HEALTHCHECK_TIMER)
	a.health.Register("classifier", func(ctx context.Context) bool {
		_, err := classifier.Classify(ctx, "ok")
		return err == nil
	})
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	opts := aggregate.Options{
		Keywords:  a.cfg.Analysis.Keywords,
		K:         a.cfg.Analysis.ExtremesK,
		Decoupled: a.cfg.Analysis.Decoupled,
	}

	var sinks []pipeline.Sink
	if a.cfg.DynamoDB.Enabled {
		client, err := clients.NewDynamoDBClient(ctx, a.cfg.DynamoDB.Region, a.cfg.DynamoDB.Endpoint)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		sinks = append(sinks, db.NewResultStore(client))
	}
	if oc := a.cfg.OpenSearch; oc.Enabled {
		client, err := clients.NewOpensearchClient(ctx, clients.OpensearchOptions{
			Endpoint: oc.Endpoint,
			Username: oc.Username,
			Password: oc.Password,
			SigV4:    oc.SigV4,
			Region:   a.cfg.DynamoDB.Region,
		})
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		sinks = append(sinks, db.NewResultIndexer(client, oc.Index))
		a.health.Register("opensearch", client.IsHealthy)
	}
	if a.cfg.Kafka.Enabled {
		kcfg := kafka_client.FromConfig(a.cfg.Kafka)
		producer, err := kafka_client.NewKafkaProducer(kcfg)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		publisher := kafka_client.NewReportPublisher(producer, kcfg.Topic)
		sinks = append(sinks, publisher)
		closers = append(closers, publisher.Close)
	}

	slog.Info("[App] Pipeline ready",
		slog.String("backend", a.cfg.Classifier.Backend),
		slog.Int("workers", a.cfg.Analysis.Workers),
		slog.Int("sinks", len(sinks)))

	annotator := annotate.New(classifier, a.cfg.Analysis.Workers)
	return pipeline.New(annotator, opts, sinks...), cleanup, nil
}
