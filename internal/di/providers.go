package di

import (
	"context"
	"fmt"
	"time"

	drepo "TickPulse/internal/domain/repository"
	dservice "TickPulse/internal/domain/service"
	"TickPulse/internal/engine"
	"TickPulse/internal/handler/api"
	internalrepo "TickPulse/internal/repository"
	"TickPulse/internal/service/broker"
	"TickPulse/internal/service/cache"
	"TickPulse/internal/service/risk"
	"TickPulse/internal/usecase"
	pkgch "TickPulse/pkg/clickhouse"
	"TickPulse/pkg/config"
	xhttp "TickPulse/pkg/http"
	pkgkafka "TickPulse/pkg/kafka"
	applogger "TickPulse/pkg/logger"
	"TickPulse/pkg/metrics"
	"TickPulse/pkg/server"
)

// ProvideLogger creates the application logger from config.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() drepo.Metrics {
	return metrics.New()
}

// ProvideRegistry creates the per-symbol engine registry and pre-creates an
// engine for every configured symbol so warmup starts at first tick.
func ProvideRegistry(cfg *config.Config, log *applogger.Logger, m drepo.Metrics) *engine.Registry {
	reg := engine.NewRegistry(log, m)
	for _, sym := range cfg.Broker.Symbols {
		reg.Get(sym)
	}
	return reg
}

// ProvideClickHouseClient creates a ClickHouse client.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}
	return client, nil
}

// ProvideKafkaProducer creates a Kafka producer with per-symbol ordering.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
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

// ProvideKafkaConsumer creates the tick replay consumer, or nil when disabled.
func ProvideKafkaConsumer(cfg *config.Config) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Consumer.Enabled {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideSignalStore creates the ClickHouse signal store and its schema.
func ProvideSignalStore(client *pkgch.Client, log *applogger.Logger) (drepo.SignalStore, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return internalrepo.NewClickHouseSignalStore(ctx, client, log)
}

// ProvideSignalSink creates the Kafka signal sink.
func ProvideSignalSink(producer *pkgkafka.Producer, cfg *config.Config) drepo.SignalSink {
	return internalrepo.NewKafkaSignalSink(producer, cfg.Kafka.SignalsTopic)
}

// ProvideMarketStream creates the brokerage WebSocket stream.
func ProvideMarketStream(cfg *config.Config, log *applogger.Logger) drepo.MarketStream {
	return broker.NewStream(
		cfg.Broker.APIKey,
		cfg.Broker.WebSocketURL,
		cfg.Broker.Symbols,
		cfg.Broker.ReconnectDelay,
		cfg.Broker.PingInterval,
		log,
	)
}

// ProvideOrderPlacer creates the brokerage order client.
func ProvideOrderPlacer(cfg *config.Config, log *applogger.Logger) drepo.OrderPlacer {
	return broker.NewOrderClient(cfg.Broker.OrderURL, cfg.Broker.APIKey, cfg.Broker.OrderTimeout, log)
}

// ProvideVerdictCache picks Redis when enabled, in-process TTL cache otherwise.
func ProvideVerdictCache(cfg *config.Config) cache.BytesCache {
	if cfg.Risk.Redis.Enabled {
		return cache.NewRedisCache(cache.RedisConfig{
			Addr:     cfg.Risk.Redis.Addr,
			Password: cfg.Risk.Redis.Password,
			DB:       cfg.Risk.Redis.DB,
		})
	}
	return cache.NewTTLCache()
}

// ProvideRiskOracle creates the HTTP risk-veto oracle.
func ProvideRiskOracle(cfg *config.Config, c cache.BytesCache, log *applogger.Logger) dservice.RiskOracle {
	return risk.NewOracle(cfg.Risk.OracleURL, cfg.Risk.Timeout, cfg.Risk.Attempts, cfg.Risk.VerdictTTL, c, log)
}

// ProvideTickCollector creates the stream-to-engines bridge.
func ProvideTickCollector(stream drepo.MarketStream, reg *engine.Registry, m drepo.Metrics, log *applogger.Logger) *usecase.TickCollector {
	return usecase.NewTickCollector(stream, reg, m, log)
}

// ProvideSignalPoller creates the polling orchestrator.
func ProvideSignalPoller(
	cfg *config.Config,
	reg *engine.Registry,
	sink drepo.SignalSink,
	store drepo.SignalStore,
	oracle dservice.RiskOracle,
	orders drepo.OrderPlacer,
	c cache.BytesCache,
	m drepo.Metrics,
	log *applogger.Logger,
) *usecase.SignalPoller {
	return usecase.NewSignalPoller(usecase.SignalPollerParams{
		Registry:     reg,
		Sink:         sink,
		Store:        store,
		Oracle:       oracle,
		Orders:       orders,
		LatestCache:  c,
		Metrics:      m,
		Log:          log,
		Interval:     cfg.PollInterval(),
		ExitQuantity: cfg.Broker.ExitQuantity,
	})
}

// ProvideTickReplayHandler registers the handler for the replay topic.
func ProvideTickReplayHandler(cfg *config.Config, reg *engine.Registry, m drepo.Metrics, log *applogger.Logger) *usecase.TickReplayHandler {
	return usecase.NewTickReplayHandler(cfg.Kafka.ReplayTopic, reg, m, log)
}

// ProvideHTTPHandler creates the signal API handler.
func ProvideHTTPHandler(reg *engine.Registry, store drepo.SignalStore, stream drepo.MarketStream, log *applogger.Logger) xhttp.Handler {
	return api.NewSignalHandler(reg, store, stream, log)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	log *applogger.Logger,
	collector *usecase.TickCollector,
	poller *usecase.SignalPoller,
	consumer *pkgkafka.Consumer,
	replay *usecase.TickReplayHandler,
	handler xhttp.Handler,
	stream drepo.MarketStream,
	sink drepo.SignalSink,
	store drepo.SignalStore,
) *server.App {
	return server.New(server.Params{
		Config:    cfg,
		Log:       log,
		Collector: collector,
		Poller:    poller,
		Consumer:  consumer,
		Replay:    replay,
		Handler:   handler,
		Stream:    stream,
		Sink:      sink,
		Store:     store,
	})
}
