package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	config "github.com/NordCoder/loanbook/internal/config/relay"
	"github.com/NordCoder/loanbook/internal/obs"
	"github.com/NordCoder/loanbook/internal/obs/retry"
	"github.com/NordCoder/loanbook/internal/outbox"
	"github.com/NordCoder/loanbook/internal/repository/kafka"
	pg "github.com/NordCoder/loanbook/internal/repository/postgres"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func wire(cfg *config.Config, db *pg.DB, prod *kafka.Producer, l *zap.Logger) *outbox.Runner {
	events := kafka.NewLoanEventsKafka(prod)
	dispatch := outbox.MakeGlobalOutboxHandler(events, retry.DefaultKafkaPolicy(l))
	return outbox.NewOutboxRunner(
		l,
		pg.NewOutboxRepo(db),
		dispatch,
		cfg.Outbox.Workers,
		cfg.Outbox.BatchSize,
		cfg.Outbox.Wait,
		cfg.Outbox.InProgressTTL,
	)
}

func main() {
	configPath := flag.String("config", "config/outbox-relay.yaml", "path to yaml config (optional)")
	flag.Parse()
	_ = godotenv.Load()

	// init
	root, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	// logger
	l, err := obs.NewLogger(obs.LogConfig{
		Level: cfg.LogLevel,
		App:   "loanbook-outbox-relay",
		Env:   cfg.Env,
		Ver:   "dev",
	})
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = l.Sync() }()

	// otel
	otelCloser, err := obs.SetupOTel(root, cfg.OTEL.AsOTELConfig())
	if err != nil {
		l.Fatal("otel init", zap.Error(err))
	}
	defer func() { _ = otelCloser.Shutdown(context.Background()) }()

	// db
	db, err := pg.New(root, cfg.DB)
	if err != nil {
		l.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()

	// metrics
	ms := obs.BootstrapMetricsServer(cfg.Outbox.MetricsAddr, l, obs.HealthCheck{Name: "db", Check: db.Ping})

	// kafka
	err = kafka.EnsureTopic(root, cfg.Kafka.Brokers, kafka.TopicSpec{
		Name:              cfg.Kafka.Topic,
		NumPartitions:     cfg.Kafka.Partitions,
		ReplicationFactor: cfg.Kafka.ReplicationFactor,
	}, l)
	if err != nil {
		l.Warn("ensure topic", zap.String("topic", cfg.Kafka.Topic), zap.Error(err))
	}

	prod := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic).WithLogger(l)
	defer func() { _ = prod.Close() }()

	// run
	l.Info("outbox relay starting",
		zap.Strings("brokers", cfg.Kafka.Brokers),
		zap.String("topic", cfg.Kafka.Topic),
		zap.Int("workers", cfg.Outbox.Workers),
	)
	wire(cfg, db, prod, l).Run(root)

	shCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	_ = ms.Shutdown(shCtx)
	l.Info("bye")
}
