package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/openclub/bulletin/handlers"
	"github.com/openclub/bulletin/internal/board/service"
	"github.com/openclub/bulletin/internal/board/store"
	"github.com/openclub/bulletin/internal/config"
	"github.com/openclub/bulletin/internal/database"
	"github.com/openclub/bulletin/internal/presence"
	"github.com/openclub/bulletin/internal/realtime"
	"github.com/openclub/bulletin/internal/stats"
	"github.com/openclub/bulletin/internal/storage"
	"github.com/openclub/bulletin/pkg/logger"
	"github.com/openclub/bulletin/pkg/metrics"
	"github.com/openclub/bulletin/pkg/middleware"
)

var startTime = time.Now()

func main() {
	// initialize logging (can be controlled with LOG_LEVEL env: debug|info|warn|error|fatal)
	logger.Init(os.Getenv("LOG_LEVEL"))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Infof("config loaded: store=%s media=%s mongo=%v redis=%v",
		cfg.Data.StoreBackend, cfg.Data.MediaBackend, cfg.MongoDB.URI != "", cfg.Redis.Host != "")

	r := gin.New()

	// Lightweight CORS middleware for dev/test: set common headers and respond to OPTIONS.
	// (Keep this intentionally simple — production should use a stricter policy.)
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Length")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(200)
			return
		}
		c.Next()
	})

	// Global middlewares: logging + recovery
	r.Use(gin.Logger(), gin.Recovery())

	// Connect to Redis early so the rate-limiter can use it when configured
	var redisClient *redis.Client
	if cfg.Redis.Host != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.Redis.Host + ":" + cfg.Redis.Port, Password: cfg.Redis.Password})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logger.Warnf("failed to connect to Redis (%s:%s): %v", cfg.Redis.Host, cfg.Redis.Port, err)
			redisClient = nil
		} else {
			logger.Infof("Connected to Redis: %s:%s", cfg.Redis.Host, cfg.Redis.Port)
		}
	}
	// Optional global rate limiter (per client IP)
	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.UseRedis && redisClient != nil {
			win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			r.Use(middleware.RedisRateLimitMiddleware(redisClient, cfg.RateLimit.RPS, cfg.RateLimit.Burst, win))
		} else {
			r.Use(middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
		}
	}

	// Document store: JSON file by default, Mongo when configured
	var docStore store.Store
	var mongoClient *mongo.Client
	ctx := context.Background()
	if cfg.Data.StoreBackend == "mongo" && cfg.MongoDB.URI != "" {
		// Retry/backoff when connecting to MongoDB to tolerate startup races
		const maxAttempts = 5
		backoff := time.Second
		var errConn error
		for attempt := 1; attempt <= maxAttempts; attempt++ {
			mongoClient, errConn = database.ConnectMongo(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout)
			if errConn == nil {
				break
			}
			logger.Warnf("attempt %d/%d: failed to connect to MongoDB: %v", attempt, maxAttempts, errConn)
			if attempt < maxAttempts {
				time.Sleep(backoff)
				backoff *= 2
			}
		}
		if errConn != nil {
			logger.Fatalf("could not connect to MongoDB after %d attempts: %v", maxAttempts, errConn)
		}
		defer func() { _ = mongoClient.Disconnect(ctx) }()
		col := mongoClient.Database(cfg.MongoDB.Database).Collection("board")
		docStore = store.NewMongoStore(col)
		logger.Infof("Using MongoDB document store (db=%s)", cfg.MongoDB.Database)
	} else {
		docStore = store.NewFileStore(filepath.Join(cfg.Data.Dir, cfg.Data.File))
	}

	// Media blob store: local disk by default, MinIO when configured
	var blobs storage.BlobStore
	var diskStore *storage.DiskStore
	if cfg.Data.MediaBackend == "minio" {
		ms, err := storage.NewMinIOStorage(storage.LoadMinIOConfig())
		if err != nil {
			logger.Fatalf("minio storage: %v", err)
		}
		blobs = ms
		logger.Infof("Using MinIO media storage")
	} else {
		diskStore, err = storage.NewDiskStore(cfg.Data.UploadDir)
		if err != nil {
			logger.Fatalf("upload dir: %v", err)
		}
		blobs = diskStore
	}

	statLog := stats.NewLog(cfg.Data.Dir)
	tracker := presence.NewTracker()
	broadcaster := realtime.NewBroadcaster(docStore, tracker)
	defer broadcaster.Close()

	svc := service.New(docStore, broadcaster)

	hub := realtime.NewHub(broadcaster, tracker)
	hubCtx, hubCancel := context.WithCancel(ctx)
	defer hubCancel()
	go func() {
		if err := hub.Run(hubCtx); err != nil && hubCtx.Err() == nil {
			logger.Errorf("realtime hub stopped: %v", err)
		}
	}()

	// Basic health endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	// readiness endpoint — return 200 only when critical dependencies are available
	r.GET("/ready", func(c *gin.Context) {
		ready := true
		deps := map[string]bool{}

		// storage readiness: the document must be readable (and lazily
		// creatable) on the configured backend
		if _, err := docStore.Read(c.Request.Context()); err != nil {
			deps["storage"] = false
			ready = false
		} else {
			deps["storage"] = true
		}

		// Redis readiness only matters when the limiter depends on it
		if cfg.Redis.Host != "" && cfg.RateLimit.UseRedis {
			deps["redis"] = redisClient != nil
			if !deps["redis"] {
				ready = false
			}
		} else {
			deps["redis"] = true
		}

		status := gin.H{"deps": deps, "uptime": time.Since(startTime).String()}
		if !ready {
			status["status"] = "not_ready"
			c.JSON(http.StatusServiceUnavailable, status)
			return
		}
		status["status"] = "ready"
		c.JSON(http.StatusOK, status)
	})

	// API surface
	root := r.Group("/")
	handlers.NewAuthHandler(cfg, statLog).Register(root)
	boardHandler := handlers.NewBoardHandler(svc, statLog, blobs, tracker, cfg.Data.MaxUploadMiB*1024*1024)
	boardHandler.Register(root)
	handlers.NewStatsHandler(statLog).Register(root)

	// realtime channel
	r.GET("/ws", hub.HandleWS)

	// uploaded files: disk mode serves straight from the directory, bucket
	// mode streams through the blob store
	if diskStore != nil {
		r.Static("/uploads", diskStore.Dir())
	} else {
		r.GET("/uploads/:name", boardHandler.ServeMedia)
	}

	// Expose Prometheus metrics
	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	logger.Infof("Starting bulletin service on %s", addr)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	if err := srv.ListenAndServe(); err != nil {
		logger.Fatalf("server failed: %v", err)
	}
}
