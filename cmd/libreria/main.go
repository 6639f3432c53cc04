package main

import (
	"context"
	"database/sql"
	"os/signal"
	"syscall"

	config "github.com/davicafu/libreria/internal/config"
	"github.com/davicafu/libreria/pkg/logger"

	catalogApp "github.com/davicafu/libreria/internal/catalog/application"
	catalogDomain "github.com/davicafu/libreria/internal/catalog/domain"
	catalogHttp "github.com/davicafu/libreria/internal/catalog/infra/inbound/http"
	catalogMongo "github.com/davicafu/libreria/internal/catalog/infra/outbound/db/mongodb"
	catalogRepo "github.com/davicafu/libreria/internal/catalog/infra/outbound/db/sqlite"

	orderApp "github.com/davicafu/libreria/internal/order/application"
	orderDomain "github.com/davicafu/libreria/internal/order/domain"
	orderEvents "github.com/davicafu/libreria/internal/order/infra/inbound/events"
	orderHttp "github.com/davicafu/libreria/internal/order/infra/inbound/http"
	orderAnalytics "github.com/davicafu/libreria/internal/order/infra/outbound/analytics/clickhouse"
	orderCatalog "github.com/davicafu/libreria/internal/order/infra/outbound/catalog"
	orderPostgres "github.com/davicafu/libreria/internal/order/infra/outbound/db/postgres"
	orderSqlite "github.com/davicafu/libreria/internal/order/infra/outbound/db/sqlite"

	dispatchApp "github.com/davicafu/libreria/internal/dispatch/application"
	dispatchEvents "github.com/davicafu/libreria/internal/dispatch/infra/inbound/events"

	infraEvents "github.com/davicafu/libreria/internal/shared/infra/events"
	infraRelayer "github.com/davicafu/libreria/internal/shared/infra/relayer"
	sharedBus "github.com/davicafu/libreria/internal/shared/platform/bus"
	sharedCache "github.com/davicafu/libreria/internal/shared/platform/cache"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/segmentio/kafka-go"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	// _ "github.com/mattn/go-sqlite3" // requires gcc
	_ "modernc.org/sqlite"
)

// ---------------- Main ----------------
func main() {
	logger.Init()          // inicializa zap
	log := logger.Logger() // obtiene logger estructurado
	defer log.Sync()       // flush buffers al salir

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()

	// ---------------- DB ----------------
	db, err := sql.Open("sqlite", cfg.SQLitePath)
	if err != nil {
		log.Fatal("failed to open SQLite", zap.Error(err))
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		log.Fatal("failed to ping SQLite", zap.Error(err))
	}

	// ---------------- Catálogo ----------------
	var bookRepo catalogDomain.BookRepository

	if cfg.MongoURI != "" {
		mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			log.Fatal("failed to connect to MongoDB", zap.Error(err))
		}
		defer mongoClient.Disconnect(ctx)

		bookRepo, err = catalogMongo.NewBookRepoMongoDB(ctx, mongoClient, cfg.MongoDB)
		if err != nil {
			log.Fatal("failed to initialize MongoDB catalog", zap.Error(err))
		}
		log.Info("📚 Catálogo en MongoDB")
	} else {
		if err := catalogRepo.InitSQLite(db); err != nil {
			log.Fatal("failed to initialize catalog schema", zap.Error(err))
		}
		bookRepo = catalogRepo.NewBookRepoSQLite(db)
		log.Info("📚 Catálogo en SQLite")
	}

	catalogService := catalogApp.NewCatalogService(bookRepo, log)

	// ---------------- Pedidos ----------------
	var orderRepo orderDomain.OrderRepository

	if cfg.PostgresDSN != "" {
		pgDB, err := sql.Open("pgx", cfg.PostgresDSN)
		if err != nil {
			log.Fatal("failed to open Postgres", zap.Error(err))
		}
		defer pgDB.Close()

		if err := orderPostgres.InitPostgres(pgDB); err != nil {
			log.Fatal("failed to initialize Postgres schema", zap.Error(err))
		}
		orderRepo = orderPostgres.NewOrderRepoPostgres(pgDB)
		log.Info("🗄️ Pedidos en Postgres")
	} else {
		if err := orderSqlite.InitSQLite(db); err != nil {
			log.Fatal("failed to initialize orders schema", zap.Error(err))
		}
		orderRepo = orderSqlite.NewOrderRepoSQLite(db)
		log.Info("🗄️ Pedidos en SQLite")
	}

	// ---------------- Cache ----------------
	var cacheInstance sharedCache.Cache
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn("⚠️ Redis no disponible, cache en memoria:", zap.Error(err))
		cacheInstance = sharedCache.NewInMemoryCache(cfg.CacheTTL, 3*cfg.CacheTTL)
	} else {
		cacheInstance = sharedCache.NewRedisCache(rdb, cfg.CacheTTL)
		log.Info("✅ Redis conectado, cache habilitado")
	}

	// ---------------- Catalog Gateway ----------------
	var bookCatalog orderDomain.BookCatalog
	if cfg.CatalogBaseURL != "" {
		bookCatalog = orderCatalog.NewHTTPCatalogClient(cfg.CatalogBaseURL, cfg.CatalogTimeout, cacheInstance, cfg.CacheTTL, log)
		log.Info("🌐 Catálogo remoto", zap.String("url", cfg.CatalogBaseURL))
	} else {
		bookCatalog = orderCatalog.NewLocalCatalogClient(catalogService)
		log.Info("🏠 Catálogo en proceso")
	}

	// ---------------- Analítica ----------------
	var analytics orderDomain.OrderAnalytics
	if cfg.ClickHouseAddr != "" {
		chRepo, err := orderAnalytics.NewOrderLogRepo(cfg.ClickHouseAddr, cfg.ClickHouseDB)
		if err != nil {
			log.Warn("⚠️ ClickHouse no disponible, analítica deshabilitada", zap.Error(err))
		} else if err := chRepo.InitSchema(); err != nil {
			log.Warn("⚠️ No se pudo crear el esquema de analítica", zap.Error(err))
		} else {
			analytics = chRepo
			log.Info("📊 Analítica en ClickHouse")
		}
	}

	// --------------- Servicios --------------
	orderService := orderApp.NewOrderService(orderRepo, bookCatalog, analytics, log)

	// ---------------- Events ---------------
	var eventPublisher sharedBus.EventBus

	dispatchedConsumer := orderEvents.NewDispatchedConsumer(orderService, log)

	if cfg.UseKafka {
		log.Info("🚀 Usando Kafka como bus de eventos")

		writer := kafka.NewWriter(kafka.WriterConfig{
			Brokers: cfg.KafkaBrokers,
			Topic:   cfg.KafkaTopic,
		})
		defer writer.Close()

		eventPublisher = infraEvents.NewKafkaPublisher(writer, log)

		dispatcher := dispatchApp.NewDispatcher(eventPublisher, log)
		acceptedConsumer := dispatchEvents.NewAcceptedConsumer(dispatcher, log)

		// Cada componente consume con su propio group id: el dispatcher y
		// el listener de confirmación leen el mismo topic de forma
		// independiente.
		dispatcherReader := kafka.NewReader(kafka.ReaderConfig{
			Brokers:  cfg.KafkaBrokers,
			Topic:    cfg.KafkaTopic,
			GroupID:  cfg.GroupDispatcher,
			MinBytes: 10e3, // 10KB
			MaxBytes: 10e6, // 10MB
		})
		defer dispatcherReader.Close()

		ordersReader := kafka.NewReader(kafka.ReaderConfig{
			Brokers:  cfg.KafkaBrokers,
			Topic:    cfg.KafkaTopic,
			GroupID:  cfg.GroupOrders,
			MinBytes: 10e3, // 10KB
			MaxBytes: 10e6, // 10MB
		})
		defer ordersReader.Close()

		infraEvents.NewConsumerAdapter(dispatcherReader, acceptedConsumer, log).Start(ctx)
		infraEvents.NewConsumerAdapter(ordersReader, dispatchedConsumer, log).Start(ctx)

	} else {
		log.Info("⚡️Usando bus de eventos en memoria (canales de Go)")

		inMemoryBus := infraEvents.NewInMemoryEventBus(orderDomain.OrderTopic)
		eventPublisher = inMemoryBus

		dispatcher := dispatchApp.NewDispatcher(eventPublisher, log)
		acceptedConsumer := dispatchEvents.NewAcceptedConsumer(dispatcher, log)

		log.Info("🎧 Iniciando listener en memoria para el dispatcher")
		infraEvents.BackgroundConsumerChan(ctx, inMemoryBus.Subscribe(10), acceptedConsumer)

		log.Info("🎧 Iniciando listener en memoria para confirmaciones de despacho")
		infraEvents.BackgroundConsumerChan(ctx, inMemoryBus.Subscribe(10), dispatchedConsumer)
	}

	// ---------------- Outbox relayer ----------------
	outboxWorker := infraRelayer.NewOutboxWorker(orderRepo, eventPublisher, cfg.OutboxPeriod, cfg.OutboxLimit, log)
	go outboxWorker.Start(ctx)

	// ---------------- HTTP ----------------
	router := gin.Default()

	orderHttp.RegisterOrderRoutes(router, orderHttp.NewOrderHandler(orderService))
	catalogHttp.RegisterBookRoutes(router, catalogHttp.NewBookHandler(catalogService))

	log.Info("🌍 Servidor HTTP escuchando", zap.String("port", cfg.HTTPPort))
	if err := router.Run(":" + cfg.HTTPPort); err != nil {
		log.Fatal("HTTP server failed", zap.Error(err))
	}
}
