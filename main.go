package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"restaurant-order-service/internal/auth"
	"restaurant-order-service/internal/cart"
	"restaurant-order-service/internal/catalog"
	"restaurant-order-service/internal/config"
	"restaurant-order-service/internal/db"
	"restaurant-order-service/internal/events"
	httpapi "restaurant-order-service/internal/http"
	"restaurant-order-service/internal/http/handlers"
	"restaurant-order-service/internal/idempotency"
	"restaurant-order-service/internal/inventory"
	"restaurant-order-service/internal/logger"
	"restaurant-order-service/internal/media"
	"restaurant-order-service/internal/order"
	"restaurant-order-service/internal/queue"
	"restaurant-order-service/internal/report"
	"restaurant-order-service/internal/seed"
	"restaurant-order-service/internal/snapshot"
	"restaurant-order-service/internal/storage"
	"restaurant-order-service/internal/store"
	"restaurant-order-service/internal/store/memory"
	"restaurant-order-service/internal/store/postgres"
	"restaurant-order-service/internal/voucher"
	"restaurant-order-service/internal/ws"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if cfg.IsProduction() && cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required in production")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pings := map[string]httpapi.Ping{}

	var st store.Store
	if cfg.DatabaseURL != "" {
		pool, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatal("database connection failed", zap.Error(err))
		}
		if err := db.Migrate(ctx, pool); err != nil {
			log.Fatal("database migration failed", zap.Error(err))
		}
		st = postgres.New(pool)
		pings["postgres"] = func(r *http.Request) error { return pool.Ping(r.Context()) }
		log.Info("store ready", zap.String("backend", "postgres"))
	} else {
		if cfg.IsProduction() {
			log.Warn("DATABASE_URL is empty; orders are kept in memory only")
		}
		st = memory.New()
		log.Info("store ready", zap.String("backend", "memory"))
	}
	defer st.Close()

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatal("invalid REDIS_URL", zap.Error(err))
		}
		redisClient = redis.NewClient(opts)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			if cfg.IsProduction() {
				log.Fatal("redis connection failed", zap.Error(err))
			}
			log.Warn("redis connection failed; continuing without redis", zap.Error(err))
			_ = redisClient.Close()
			redisClient = nil
		}
	}
	if redisClient != nil {
		defer redisClient.Close()
		client := redisClient
		pings["redis"] = func(r *http.Request) error { return client.Ping(r.Context()).Err() }
	}

	var objects storage.Objects
	if cfg.ObjectStoreConfigured() {
		objectStore, err := storage.NewObjectStore(ctx, storage.Config{
			Endpoint:        cfg.ObjectStoreEndpoint,
			Region:          cfg.ObjectStoreRegion,
			AccessKeyID:     cfg.ObjectStoreAccessKeyID,
			SecretAccessKey: cfg.ObjectStoreSecretAccessKey,
			Bucket:          cfg.ObjectStoreBucket,
			PublicBaseURL:   cfg.ObjectStorePublicBaseURL,
			StorageClass:    cfg.ObjectStoreStorageClass,
		})
		if err != nil {
			log.Fatal("object store init failed", zap.Error(err))
		}
		objects = objectStore
	} else {
		log.Info("object store not configured; uploads are kept in memory")
		objects = storage.NewMemoryStore(cfg.ObjectStorePublicBaseURL)
	}

	var marker snapshot.Marker = snapshot.Nop{}
	switch cfg.SnapshotBackend {
	case "redis":
		if redisClient == nil {
			log.Warn("snapshot backend redis needs REDIS_URL; snapshots disabled")
			break
		}
		mirror := snapshot.NewMirror(st, snapshot.NewRedisSink(redisClient, cfg.SnapshotPrefix), log, time.Second)
		go mirror.Run(ctx)
		marker = mirror
	case "object":
		mirror := snapshot.NewMirror(st, snapshot.NewObjectSink(objects, cfg.SnapshotPrefix), log, time.Second)
		go mirror.Run(ctx)
		marker = mirror
	case "", "none":
	default:
		log.Warn("unknown snapshot backend; snapshots disabled", zap.String("backend", cfg.SnapshotBackend))
	}

	hub := ws.NewHub(log)
	var publisher events.Publisher = hub
	if cfg.RabbitMQURL != "" {
		qc, err := queue.New(cfg.RabbitMQURL)
		if err != nil {
			if cfg.IsProduction() {
				log.Fatal("rabbitmq connection failed", zap.Error(err))
			}
			log.Warn("rabbitmq connection failed; publishing locally", zap.Error(err))
		} else {
			defer qc.Close()
			topology, err := queue.EnsureRealtimeTopology(qc, cfg.RabbitMQExchange, cfg.RabbitMQRealtimeQueue)
			if err != nil {
				log.Fatal("rabbitmq topology failed", zap.Error(err))
			}
			publisher = queue.NewPublisher(qc, topology.Exchange, hub, log)
			relay := queue.NewRelay(qc, topology.Queue, hub, log, int(cfg.WorkerMaxRetries), cfg.WorkerRetryDelay)
			go func() {
				if err := relay.Run(ctx); err != nil && ctx.Err() == nil {
					log.Error("event relay stopped", zap.Error(err))
				}
			}()
			log.Info("rabbitmq enabled",
				zap.String("exchange", topology.Exchange),
				zap.String("queue", topology.Queue))
		}
	} else {
		log.Info("rabbitmq disabled (RABBITMQ_URL is empty); events go to local subscribers")
	}

	var idem order.Idempotency
	if redisClient != nil {
		idem = idempotency.NewRedisStore(redisClient, "idempotency:", cfg.IdempotencyTTL)
	} else {
		idem = idempotency.NewMemoryStore(cfg.IdempotencyTTL)
	}

	loc, err := time.LoadLocation(cfg.ReportTimezone)
	if err != nil {
		log.Warn("unknown REPORT_TIMEZONE; using UTC", zap.String("timezone", cfg.ReportTimezone))
		loc = time.UTC
	}

	accounts := auth.NewAccounts(st, marker, log, cfg.JWTSecret, time.Duration(cfg.JWTExpirySeconds)*time.Second)
	orders := order.NewManager(st, publisher, marker, log, order.Config{
		DeliveryFee:                cfg.DeliveryFee,
		Capacity:                   cfg.OrderCapacity,
		EstimatedPrepMinutes:       int(cfg.EstimatedPrepMinutes),
		CatalogDiscountsAtCheckout: cfg.CatalogDiscountsAtCheckout,
	}, order.WithIdempotency(idem))
	inventorySvc := inventory.NewService(st, publisher, marker, log)
	vouchers := voucher.NewService(st, publisher, marker, log)

	h := &handlers.Handler{
		Logger:    log,
		Config:    cfg,
		Accounts:  accounts,
		Orders:    orders,
		Catalog:   catalog.NewService(st, marker, log),
		Inventory: inventorySvc,
		Vouchers:  vouchers,
		Carts:     cart.NewService(st, vouchers, marker, cfg.DeliveryFee),
		Reports:   report.NewService(st, loc),
		Uploads:   media.NewUploader(objects, cfg.MaxFileSizeBytes, log),
	}

	if cfg.AdminPassword != "" {
		if err := accounts.EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminPassword); err != nil {
			log.Fatal("admin account setup failed", zap.Error(err))
		}
	}
	if cfg.SeedDemo {
		if _, err := seed.Demo(ctx, st, log, time.Now()); err != nil {
			log.Fatal("demo seed failed", zap.Error(err))
		}
	}

	wsServer := &ws.Server{
		Hub:            hub,
		Feeds:          &ws.Feeds{Orders: orders, Inventory: inventorySvc, Vouchers: vouchers},
		Logger:         log,
		JWTSecret:      cfg.JWTSecret,
		TrackingSecret: cfg.TrackingSecret,
		Heartbeat:      cfg.WSHeartbeatInterval,
	}

	apiServer := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      httpapi.NewRouter(h, log, cfg, wsServer, pings),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("order api ready", zap.String("base", "/api"))
		log.Info("order ws ready", zap.String("base", "/ws"))
		log.Info("order service listening", zap.String("addr", cfg.HTTPAddr))
		if err := apiServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("http server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := apiServer.Shutdown(ctxShutdown); err != nil {
		log.Error("http server shutdown failed", zap.Error(err))
	}
	cancel()
}
