package config

import (
	"errors"
	"fmt"
	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"io/fs"
	"os"
	"strings"
	"time"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Gateway  GatewayConfig
	Webhook  WebhookConfig
	Ledger   LedgerConfig
	Syncer   SyncerConfig

	SecretKey  string `env:"APP_SECRET_KEY,default=ChangeMe"`
	LogVerbose bool   `env:"APP_VERBOSE,default=0"`
	LogPretty  bool   `env:"APP_PRETTY,default=0"`
}

type ServerConfig struct {
	Listen       string        `env:"RUN_ADDRESS,default=localhost:8088"`
	TimeoutRead  time.Duration `env:"SERVER_TIMEOUT_READ,default=5s"`
	TimeoutWrite time.Duration `env:"SERVER_TIMEOUT_WRITE,default=10s"`
	TimeoutIdle  time.Duration `env:"SERVER_TIMEOUT_IDLE,default=1m"`
}

type DatabaseConfig struct {
	DSN string `env:"DATABASE_URI,required"`
}

// RedisConfig backs the rate limiter, an empty Addr keeps limits in memory.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,default="`
	Password string `env:"REDIS_PASSWORD,default="`
	DB       int    `env:"REDIS_DB,default=0"`
}

type KafkaConfig struct {
	Brokers    string `env:"KAFKA_BROKERS,default="`
	AuditTopic string `env:"KAFKA_AUDIT_TOPIC,default=wallet.audit"`
}

// BrokerList splits the comma separated broker list.
func (c KafkaConfig) BrokerList() []string {
	return splitList(c.Brokers)
}

type GatewayConfig struct {
	RemoteURL string        `env:"GATEWAY_ADDRESS,default="`
	Timeout   time.Duration `env:"GATEWAY_TIMEOUT,default=10s"`
}

type WebhookConfig struct {
	Secret          string `env:"WEBHOOK_SECRET,default=ChangeMe"`
	ProviderSecrets string `env:"WEBHOOK_PROVIDER_SECRETS,default="`
}

// ProviderSecretMap parses "provider:secret,provider:secret".
func (c WebhookConfig) ProviderSecretMap() (map[string]string, error) {
	res := make(map[string]string)
	for _, pair := range splitList(c.ProviderSecrets) {
		parts := strings.SplitN(pair, ":", 2)
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			return nil, fmt.Errorf("provider secret %q: want provider:secret", pair)
		}
		res[parts[0]] = parts[1]
	}
	return res, nil
}

type LedgerConfig struct {
	Currency   string        `env:"LEDGER_CURRENCY,default=USD"`
	RateLimit  int           `env:"LEDGER_RATE_LIMIT,default=60"`
	RateWindow time.Duration `env:"LEDGER_RATE_WINDOW,default=1m"`
}

type SyncerConfig struct {
	Interval   time.Duration `env:"SYNC_INTERVAL,default=30s"`
	StaleAfter time.Duration `env:"SYNC_STALE_AFTER,default=5m"`
	Workers    int           `env:"SYNC_WORKERS,default=4"`
}

// New config constructor
func New() Config {
	return Config{}
}

// Load config from environment and from .env file (if exists) and from flags
func (cfg *Config) Load() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf(".env load: %w", err)
	}

	if err := envdecode.StrictDecode(cfg); err != nil {
		return fmt.Errorf("env decode: %w", err)
	}

	flags := pflag.NewFlagSet("walletledger", pflag.ExitOnError)
	cfg.bindFlags(flags)
	if err := flags.Parse(os.Args[1:]); err != nil {
		return fmt.Errorf("flags: %w", err)
	}

	return cfg.Validate()
}

func (cfg *Config) bindFlags(flags *pflag.FlagSet) {
	flags.StringVarP(&cfg.Server.Listen, "listen-addr", "a", cfg.Server.Listen, "Server address to listen on")
	flags.StringVarP(&cfg.Database.DSN, "database-uri", "d", cfg.Database.DSN, "Database URI")
	flags.StringVarP(&cfg.Gateway.RemoteURL, "gateway-url", "r", cfg.Gateway.RemoteURL, "Payment gateway base URL")
	flags.StringVar(&cfg.Redis.Addr, "redis-addr", cfg.Redis.Addr, "Redis address for rate limits")
	flags.StringVar(&cfg.Kafka.Brokers, "kafka-brokers", cfg.Kafka.Brokers, "Comma separated Kafka brokers for the audit stream")
	flags.BoolVarP(&cfg.LogVerbose, "verbose", "v", cfg.LogVerbose, "Verbose output")
	flags.BoolVarP(&cfg.LogPretty, "pretty", "p", cfg.LogPretty, "Pretty output")
}

// Validate settings that envdecode cannot express.
func (cfg *Config) Validate() error {
	if cfg.Database.DSN == "" {
		return errors.New("database uri is required")
	}
	if len(cfg.Ledger.Currency) != 3 {
		return fmt.Errorf("currency %q: want ISO 4217 code", cfg.Ledger.Currency)
	}
	if cfg.Syncer.Workers < 1 {
		return fmt.Errorf("syncer workers %d: want at least 1", cfg.Syncer.Workers)
	}
	if _, err := cfg.Webhook.ProviderSecretMap(); err != nil {
		return err
	}
	return nil
}

func splitList(s string) []string {
	res := make([]string, 0)
	for _, v := range strings.Split(s, ",") {
		if v = strings.TrimSpace(v); v != "" {
			res = append(res, v)
		}
	}
	return res
}
