package di

import (
    "context"
    "fmt"
    "time"

    "SigTrail/internal/domain/repository"
    mid "SigTrail/internal/middleware"
    internalrepo "SigTrail/internal/repository"
    "SigTrail/internal/service/directory"
    "SigTrail/internal/service/feed"
    "SigTrail/internal/usecase"
    pkgcache "SigTrail/pkg/cache"
    pkgch "SigTrail/pkg/clickhouse"
    "SigTrail/pkg/config"
    pkgkafka "SigTrail/pkg/kafka"
    applogger "SigTrail/pkg/logger"
    "SigTrail/pkg/metrics"
    "SigTrail/pkg/server"

    kafkago "github.com/segmentio/kafka-go"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	format := "json"
	if cfg.Environment == "development" {
		format = "console"
	}
	return applogger.New(&applogger.Config{Level: "info", Format: format, Output: "stdout"})
}

// ProvideClickHouseClient creates a ClickHouse client.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	// Initialize schema
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.InitSchema(ctx, []string{
		"CREATE DATABASE IF NOT EXISTS sigtrail",
		"CREATE TABLE IF NOT EXISTS sigtrail.origin_signals (bot_id String, id String, action String, instrument String, ts DateTime, owner_id String, status String, amount String, error_message String, processing_ms Nullable(Int64)) ENGINE=MergeTree ORDER BY (bot_id, ts)",
		"CREATE TABLE IF NOT EXISTS sigtrail.executions (bot_id String, id String, origin_ref String, account_id String, owner_id String, outcome String, ts DateTime, failure_reason String) ENGINE=MergeTree ORDER BY (bot_id, ts)",
	}); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

// ProvideKafkaProducer creates a Kafka producer.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if cfg.Backend.Type != "kafka" {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}

	return producer, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideSignalStorage creates ClickHouse storage repository.
func ProvideSignalStorage(chClient *pkgch.Client, cfg *config.Config) repository.Storage {
	return internalrepo.NewClickHouseSignalStore(
		chClient.DB(),
		cfg.ClickHouse.Database+".origin_signals",
		cfg.ClickHouse.Database+".executions",
		cfg.Tracking.QueryLimit,
	)
}

// ProvideAlertPublisher creates Kafka publisher repository.
func ProvideAlertPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.Publisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaAlertPublisher(producer, cfg.Kafka.Topic)
}

// ProvideKafkaConsumer creates a Kafka consumer configured from YAML.
func ProvideKafkaConsumer(cfg *config.Config) (*pkgkafka.Consumer, error) {
	if cfg.Backend.Type != "kafka" {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideKafkaAlertsHandler registers handler for the alerts topic.
func ProvideKafkaAlertsHandler(store repository.Storage, metrics repository.Metrics, cfg *config.Config) *usecase.KafkaAlertsHandler {
	return usecase.NewKafkaAlertsHandler(cfg.Kafka.Topic, store, metrics)
}

// ProvideAlertFeed creates the alert gateway WebSocket stream.
func ProvideAlertFeed(cfg *config.Config) repository.AlertStream {
	return feed.New(
		cfg.Feed.Token,
		cfg.Feed.WebSocketURL,
		cfg.Feed.Bots,
		cfg.Feed.ReconnectDelay,
		cfg.Feed.PingInterval,
	)
}

// ProvideAccountDirectory creates the account-name resolver with its cache.
func ProvideAccountDirectory(cfg *config.Config, l *applogger.Logger) repository.AccountDirectory {
	if cfg.Directory.BaseURL == "" {
		return nil
	}

	ttl := cfg.Directory.CacheTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	var svc pkgcache.Service = pkgcache.NewMemoryCache()
	if cfg.Directory.Redis.Enabled {
		if rc, err := pkgcache.NewRedisCache(
			pkgcache.WithRedisHost(cfg.Directory.Redis.Host),
			pkgcache.WithRedisPort(cfg.Directory.Redis.Port),
			pkgcache.WithRedisPassword(cfg.Directory.Redis.Password),
			pkgcache.WithRedisDB(cfg.Directory.Redis.DB),
		); err == nil {
			svc = pkgcache.NewLayeredCache(rc)
		} else {
			l.Warn("directory redis cache unavailable", applogger.Error(err))
		}
	}

	opts := []directory.Option{directory.WithCache(svc, ttl)}
	if cfg.Directory.Timeout > 0 {
		opts = append(opts, directory.WithHTTPTimeout(cfg.Directory.Timeout))
	}
	return directory.New(cfg.Directory.BaseURL, l, opts...)
}

// ProvideAlertProcessor creates the alert processor use case.
func ProvideAlertProcessor(
	pub repository.Publisher,
	store repository.Storage,
	metrics repository.Metrics,
	cfg *config.Config,
) *usecase.AlertProcessor {
	return usecase.NewAlertProcessor(
		pub,
		store,
		metrics,
		cfg.Backend.Type,
	)
}

// ProvideAlertCollector creates the alert collector use case.
func ProvideAlertCollector(
    stream repository.AlertStream,
    processor *usecase.AlertProcessor,
    metrics repository.Metrics,
    cfg *config.Config,
) *usecase.AlertCollector {
    // Build middleware pipeline between WebSocket and the backend
    pipe := mid.NewIngestPipeline(processor, metrics,
        mid.WithMaxRPS(50),
        mid.WithBufferSize(2000),
        mid.WithBatch(cfg.Backend.BatchSize, cfg.Backend.BatchTimeout),
    )
    return usecase.NewAlertCollector(stream, processor, metrics, pipe)
}

// ProvideSessionManager creates the per-scope tracking session manager.
func ProvideSessionManager(
	store repository.Storage,
	dir repository.AccountDirectory,
	metrics repository.Metrics,
	l *applogger.Logger,
	cfg *config.Config,
) *usecase.SessionManager {
	var topts []usecase.TrackerOption
	if cfg.Tracking.MinLoading > 0 {
		topts = append(topts, usecase.WithMinLoading(cfg.Tracking.MinLoading))
	}
	if cfg.Tracking.FetchTimeout > 0 {
		topts = append(topts, usecase.WithFetchTimeout(cfg.Tracking.FetchTimeout))
	}
	return usecase.NewSessionManager(store, dir, metrics, l,
		usecase.WithTrackerOptions(topts...),
		usecase.WithAggregateInterval(cfg.Tracking.AggregateInterval),
	)
}

// ProvideApp creates the application server.
func ProvideApp(
    cfg *config.Config,
    collector *usecase.AlertCollector,
    consumer *pkgkafka.Consumer,
    kh *usecase.KafkaAlertsHandler,
    chClient *pkgch.Client,
    sessions *usecase.SessionManager,
    producer *pkgkafka.Producer,
    rec repository.Metrics,
    log *applogger.Logger,
) *server.App {
    if consumer != nil {
        consumer.WithConsumerHook(consumerHooks(rec, log))
    }
    // Aggregate error logs onto a side topic when a broker is available.
    if producer != nil {
        log.AddCollector(&applogger.CollectionConfig{
            TimeInterval:   30 * time.Second,
            CountThreshold: 100,
            Topic:          cfg.Kafka.Topic + ".errors",
            Publisher:      producerPublisher{producer},
        })
    }
    app := server.New(cfg, collector, consumer, kh, chClient, sessions)
    // attach alert processor to app for closing resources via collector
    if collector != nil {
        app.AlertProc = collector.Processor()
    }
    return app
}

// producerPublisher adapts the kafka producer to the log collector's
// Publisher interface.
type producerPublisher struct {
    p *pkgkafka.Producer
}

func (a producerPublisher) PublishMessage(ctx context.Context, topic string, payload interface{}) error {
    return a.p.Publish(ctx, topic, nil, payload)
}

// consumerHooks builds the consumer hook chain: one hook carries the trace id
// and handling start time through the context, the other turns outcomes into
// metrics and logs.
func consumerHooks(rec repository.Metrics, log *applogger.Logger) *pkgkafka.HookChain {
    trace := pkgkafka.HookFuncs{
        Before: func(ctx context.Context, topic string, km kafkago.Message, data []byte) (context.Context, kafkago.Message, []byte, error) {
            ctx = pkgkafka.WithStartTime(ctx, time.Now())
            ctx = pkgkafka.WithTraceID(ctx, pkgkafka.ExtractTraceID(km))
            return ctx, km, data, nil
        },
    }
    observe := pkgkafka.HookFuncs{
        After: func(ctx context.Context, topic string, km kafkago.Message, data []byte, err error) {
            if start, ok := pkgkafka.StartTimeFrom(ctx); ok {
                rec.RecordLatency("kafka_consume", time.Since(start).Seconds())
            }
        },
        Err: func(ctx context.Context, topic string, km kafkago.Message, data []byte, err error) {
            rec.RecordError("consume")
            log.Error("consumer handler failed",
                applogger.String("topic", topic),
                applogger.Error(err))
        },
    }
    return pkgkafka.NewHookChain(trace, observe)
}
