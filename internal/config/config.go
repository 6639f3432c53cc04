package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	SQLitePath  string
	PostgresDSN string // si se define, los pedidos se guardan en Postgres
	MongoURI    string // si se define, el catálogo usa MongoDB
	MongoDB     string

	RedisAddr string
	CacheTTL  time.Duration

	ClickHouseAddr string // opcional: analítica de pedidos
	ClickHouseDB   string

	UseKafka        bool
	KafkaBrokers    []string
	KafkaTopic      string
	GroupDispatcher string
	GroupOrders     string

	CatalogBaseURL string // si está vacío, se consulta el catálogo en proceso
	CatalogTimeout time.Duration

	OutboxPeriod time.Duration
	OutboxLimit  int

	HTTPPort string
}

func LoadConfig() *Config {
	getEnv := func(key, fallback string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return fallback
	}

	getBool := func(key string, fallback bool) bool {
		if v := os.Getenv(key); v != "" {
			b, err := strconv.ParseBool(v)
			if err == nil {
				return b
			}
		}
		return fallback
	}

	kafkaBrokers := strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ",")

	return &Config{
		SQLitePath:  getEnv("SQLITE_PATH", "./libreria.db"),
		PostgresDSN: getEnv("POSTGRES_DSN", ""),
		MongoURI:    getEnv("MONGO_URI", ""),
		MongoDB:     getEnv("MONGO_DB", "libreria"),

		RedisAddr: getEnv("REDIS_ADDR", "localhost:6379"),
		CacheTTL:  1 * time.Minute,

		ClickHouseAddr: getEnv("CLICKHOUSE_ADDR", ""),
		ClickHouseDB:   getEnv("CLICKHOUSE_DB", "libreria"),

		UseKafka:        getBool("USE_KAFKA", false),
		KafkaBrokers:    kafkaBrokers,
		KafkaTopic:      getEnv("KAFKA_TOPIC", "order-events"),
		GroupDispatcher: getEnv("KAFKA_GROUP_DISPATCHER", "libreria-dispatcher"),
		GroupOrders:     getEnv("KAFKA_GROUP_ORDERS", "libreria-orders"),

		CatalogBaseURL: getEnv("CATALOG_BASE_URL", ""),
		CatalogTimeout: 2 * time.Second,

		OutboxPeriod: 1 * time.Second,
		OutboxLimit:  10,

		HTTPPort: getEnv("HTTP_PORT", "8080"),
	}
}
