package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/url"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// PostgresConfig - параметры подключения к PostgreSQL.
// POSTGRES_URL имеет приоритет над отдельными PG* переменными.
type PostgresConfig struct {
	URL      string `env:"POSTGRES_URL"`
	Host     string `env:"PGHOST" env-default:"127.0.0.1"`
	Port     string `env:"PGPORT" env-default:"55432"`
	User     string `env:"PGUSER" env-default:"deuser"`
	Password string `env:"PGPASSWORD" env-default:"secret"`
	Database string `env:"PGDATABASE" env-default:"dedb"`
	SSLMode  string `env:"PGSSLMODE" env-default:"disable"`
}

// DSN возвращает строку подключения для lib/pq и golang-migrate.
func (p PostgresConfig) DSN() string {
	if p.URL != "" {
		return p.URL
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(p.User, p.Password),
		Host:     net.JoinHostPort(p.Host, p.Port),
		Path:     "/" + p.Database,
		RawQuery: url.Values{"sslmode": {p.SSLMode}}.Encode(),
	}
	return u.String()
}

// ETLConfig - параметры самой загрузки.
type ETLConfig struct {
	InputPath      string `env:"INPUT_PATH" env-default:"data/orders_data.json"`
	MigrationsPath string `env:"MIGRATIONS_PATH" env-default:"./internal/database/migrations"`
	BatchSize      int    `env:"ETL_BATCH_SIZE" env-default:"1000"`
	// LinkAddresses включает заполнение адресных внешних ключей заказа.
	LinkAddresses bool `env:"ETL_LINK_ADDRESSES" env-default:"false"`
}

// KafkaConfig содержит настройки для отчета о загрузке в Kafka.
// Пустой список брокеров отключает отправку.
type KafkaConfig struct {
	Brokers []string `env:"KAFKA_BROKERS" env-separator:","`
	Topic   string   `env:"KAFKA_TOPIC" env-default:"orders_etl_reports"`
}

func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0 && k.Topic != ""
}

// Config содержит всю конфигурацию задания.
type Config struct {
	Postgres PostgresConfig
	ETL      ETLConfig
	Kafka    KafkaConfig
	Log      struct {
		Level  string `env:"LOG_LEVEL" env-default:"info"`
		Format string `env:"LOG_FORMAT" env-default:"json"`
	}
	Metrics struct {
		PushgatewayURL string `env:"PUSHGATEWAY_URL"`
		Job            string `env:"METRICS_JOB" env-default:"orders_etl"`
	}
	Tracing struct {
		JaegerURL   string `env:"JAEGER_URL"`
		ServiceName string `env:"SERVICE_NAME" env-default:"orders-etl"`
	}
}

// Load читает .env (если файл есть) и переменные окружения.
// Явно переданные файлы обязаны существовать.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("не удалось загрузить файл .env: %w", err)
		}
	} else if err := godotenv.Load(envFiles...); err != nil {
		return nil, fmt.Errorf("не удалось загрузить файлы окружения: %w", err)
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("не удалось прочитать переменные окружения: %w", err)
	}
	if cfg.ETL.BatchSize <= 0 {
		return nil, fmt.Errorf("ETL_BATCH_SIZE должен быть больше 0, получено %d", cfg.ETL.BatchSize)
	}
	return &cfg, nil
}
