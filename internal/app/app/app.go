package app

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"github.com/go-redis/redis/v8"
	_ "github.com/lib/pq"
	"net/http"
	"walletledger/internal/app/audit"
	"walletledger/internal/app/config"
	"walletledger/internal/app/logger"
	"walletledger/internal/app/ratelimit"
	"walletledger/internal/app/service"
	"walletledger/internal/app/service/ledger"
	"walletledger/internal/app/service/syncer"
	"walletledger/internal/app/service/transfer"
	"walletledger/internal/app/service/webhook"
	"walletledger/internal/app/session"
	"walletledger/internal/app/storage/postgres"
	"walletledger/pkg/gateway"
)

const auditBuffer = 1024

type App struct {
	config     config.Config
	logger     logger.Logger
	db         *sql.DB
	rdb        *redis.Client
	session    session.Manager
	ledger     *ledger.Service
	transfers  *transfer.Coordinator
	reconciler *webhook.Reconciler
	syncer     *syncer.Service
	audit      *audit.Dispatcher
	closers    []func() error
	stopCh     chan struct{}
}

func New(cfg config.Config, logger logger.Logger, e embed.FS) (*App, error) {
	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("db open: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}

	if err := applyMigrations(e, db); err != nil {
		return nil, fmt.Errorf("db migrate: %w", err)
	}

	wallets, err := postgres.NewWalletRepository(db)
	if err != nil {
		return nil, fmt.Errorf("wallet repository init: %w", err)
	}

	txs, err := postgres.NewTransactionRepository(db)
	if err != nil {
		return nil, fmt.Errorf("transaction repository init: %w", err)
	}

	secrets, err := cfg.Webhook.ProviderSecretMap()
	if err != nil {
		return nil, fmt.Errorf("webhook secrets: %w", err)
	}

	a := &App{
		config:  cfg,
		logger:  logger,
		db:      db,
		stopCh:  make(chan struct{}),
		session: session.NewJWT(cfg.SecretKey),
		closers: []func() error{db.Close},
	}

	a.audit = a.newAudit()
	limiter := a.newLimiter()
	identity := session.Context{}
	tx := postgres.NewTransactor(db)

	a.ledger = ledger.New(tx, wallets, txs, identity, limiter, a.audit, ledger.WithCurrency(cfg.Ledger.Currency))
	a.transfers = transfer.New(tx, wallets, txs, identity, limiter, a.audit)
	a.reconciler = webhook.New(tx, wallets, txs, a.audit, webhook.Secrets{
		Default:    cfg.Webhook.Secret,
		ByProvider: secrets,
	})

	if cfg.Gateway.RemoteURL != "" {
		gs, err := gateway.NewService(cfg.Gateway.RemoteURL,
			gateway.WithLogger(logger.Logger),
			gateway.WithHTTPClient(&http.Client{Timeout: cfg.Gateway.Timeout}),
		)
		if err != nil {
			return nil, err
		}
		a.syncer = syncer.New(txs, gs, a.reconciler,
			syncer.WithFetchInterval(cfg.Syncer.Interval),
			syncer.WithStaleAfter(cfg.Syncer.StaleAfter),
		)
		a.syncer.Start(cfg.Syncer.Workers)
	} else {
		logger.Info().Msg("Gateway address not set, pending sweeper disabled")
	}

	a.audit.Start()

	go func() {
		<-a.stopCh
		a.logger.Info().Msg("Shutting down application")
	}()

	return a, nil
}

// newAudit fans audit entries out to the log and, when brokers are set, Kafka.
func (a *App) newAudit() *audit.Dispatcher {
	sinks := []audit.Sink{audit.NewLogSink(a.logger)}

	if brokers := a.config.Kafka.BrokerList(); len(brokers) > 0 {
		ks := audit.NewKafkaSink(brokers, a.config.Kafka.AuditTopic, a.logger)
		sinks = append(sinks, ks)
		a.closers = append(a.closers, ks.Close)
		a.logger.Info().Strs("brokers", brokers).Str("topic", a.config.Kafka.AuditTopic).Msg("Audit stream enabled")
	}

	return audit.NewDispatcher(auditBuffer, sinks...)
}

// newLimiter shares counters through Redis when configured.
func (a *App) newLimiter() service.RateLimiter {
	c := a.config.Ledger
	if a.config.Redis.Addr == "" {
		return ratelimit.NewMemory(c.RateLimit, c.RateWindow)
	}

	a.rdb = redis.NewClient(&redis.Options{
		Addr:     a.config.Redis.Addr,
		Password: a.config.Redis.Password,
		DB:       a.config.Redis.DB,
	})
	a.closers = append(a.closers, a.rdb.Close)

	if err := a.rdb.Ping(context.Background()).Err(); err != nil {
		a.logger.Warn().Err(err).Str("addr", a.config.Redis.Addr).Msg("Redis unreachable, rate limits fail open")
	}

	return ratelimit.NewRedis(a.rdb, "walletledger", c.RateLimit, c.RateWindow)
}

func (a *App) Stop() {
	close(a.stopCh)

	if a.syncer != nil {
		a.syncer.Stop()
	}
	a.audit.Stop()

	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn().Err(err).Msg("Close failed")
		}
	}
}
