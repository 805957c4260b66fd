package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/lekton/lekton/handlers"
	"github.com/lekton/lekton/internal/config"
	"github.com/lekton/lekton/internal/database"
	docrepo "github.com/lekton/lekton/internal/document/repository"
	"github.com/lekton/lekton/internal/ingest"
	"github.com/lekton/lekton/internal/oidc"
	"github.com/lekton/lekton/internal/schema"
	"github.com/lekton/lekton/internal/search"
	"github.com/lekton/lekton/internal/storage"
	"github.com/lekton/lekton/pkg/logger"
	"github.com/lekton/lekton/pkg/metrics"
	"github.com/lekton/lekton/pkg/middleware"
)

var startTime = time.Now()

func main() {
	// initialize logging (can be controlled with LOG_LEVEL env: debug|info|warn|error|fatal)
	logger.Init(os.Getenv("LOG_LEVEL"))
	logger.Debugf("startup: LOG_LEVEL=%s", logger.LevelString())

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Infof("config loaded: mongo=%v minio=%v meili=%v redis=%v",
		cfg.MongoDB.URI != "", cfg.MinIO.Endpoint != "", cfg.Meili.URL != "", cfg.Redis.Host != "")

	r := gin.New()

	// Lightweight CORS middleware for dev/test: set common headers and respond to OPTIONS.
	// (Keep this intentionally simple — production should use a stricter policy.)
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization, X-Service-Token")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Length")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(200)
			return
		}
		c.Next()
	})

	// Global middlewares: logging + recovery
	r.Use(gin.Logger(), gin.Recovery())

	ctx := context.Background()

	// Connect to Redis early so the rate-limiter can use it when configured
	var redisClient *redis.Client
	if cfg.Redis.Host != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.Redis.Host + ":" + cfg.Redis.Port, Password: cfg.Redis.Password})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warnf("failed to connect to Redis (%s:%s): %v", cfg.Redis.Host, cfg.Redis.Port, err)
			redisClient = nil
		} else {
			logger.Infof("Connected to Redis: %s:%s", cfg.Redis.Host, cfg.Redis.Port)
		}
	}
	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.UseRedis && redisClient != nil {
			win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			r.Use(middleware.RedisRateLimitMiddleware(redisClient, cfg.RateLimit.RPS, cfg.RateLimit.Burst, win))
		} else {
			r.Use(middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
		}
	}

	// MongoDB with retry/backoff to tolerate startup races
	var mongoClient *mongo.Client
	{
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
	}
	defer func() { _ = mongoClient.Disconnect(ctx) }()

	db := mongoClient.Database(cfg.MongoDB.Database)
	docs := docrepo.NewMongoRepo(db.Collection("documents"))
	schemas := schema.NewMongoRepo(db.Collection("schemas"))

	blobs, err := storage.NewMinIOStore(cfg.MinIO.Endpoint, cfg.MinIO.AccessKey, cfg.MinIO.SecretKey, cfg.MinIO.Bucket, cfg.MinIO.UseSSL)
	if err != nil {
		logger.Fatalf("failed to initialize blob store: %v", err)
	}

	searcher := search.NewMeiliSearcher(cfg.Meili.URL, cfg.Meili.APIKey, cfg.Meili.Index)
	if err := searcher.ConfigureIndex(ctx); err != nil {
		logger.Warnf("failed to configure search index: %v", err)
	}
	indexer := search.NewIndexer(searcher, cfg.Ingest.IndexQueueSize, cfg.Ingest.IndexMaxRetries)
	defer indexer.Close()

	svc := ingest.NewService(cfg.Ingest.ServiceToken, docs, schemas, blobs, indexer)

	// OIDC verifier for read-path identity; opt-in insecure fallback for
	// integration tests
	var verifier middleware.Verifier
	if cfg.OIDC.IssuerURL != "" && cfg.OIDC.ClientID != "" {
		ver, err := oidc.NewVerifier(ctx, cfg.OIDC.IssuerURL, cfg.OIDC.ClientID)
		if err != nil {
			logger.Warnf("failed to initialize OIDC verifier: %v", err)
		} else {
			verifier = ver
		}
	}
	if verifier == nil {
		val := strings.ToLower(strings.TrimSpace(os.Getenv("ALLOW_INSECURE_TOKEN")))
		if val == "true" {
			logger.Warn("enabling insecure OIDC verifier (integration mode)")
			verifier = oidc.NewInsecureVerifier()
		}
	}

	// Basic health endpoint
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})

	// readiness endpoint — return 200 only when critical dependencies are available
	r.GET("/ready", func(c *gin.Context) {
		ready := true
		deps := map[string]bool{}

		deps["mongodb"] = mongoClient.Ping(c.Request.Context(), nil) == nil
		if !deps["mongodb"] {
			ready = false
		}

		// Redis readiness only matters when it backs the rate limiter
		if cfg.Redis.Host != "" && cfg.RateLimit.UseRedis {
			deps["redis"] = redisClient != nil
			if !deps["redis"] {
				ready = false
			}
		} else {
			deps["redis"] = true
		}

		// OIDC readiness: if an issuer was configured we expect a verifier
		if cfg.OIDC.IssuerURL != "" {
			deps["oidc"] = verifier != nil
			if !deps["oidc"] {
				ready = false
			}
		} else {
			deps["oidc"] = true
		}

		if !ready {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "deps": deps, "uptime": time.Since(startTime).String()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready", "deps": deps, "uptime": time.Since(startTime).String()})
	})

	api := r.Group("/api/v1")
	if verifier != nil {
		api.Use(middleware.OptionalAuthMiddleware(verifier))
	}
	handlers.NewIngestHandler(svc).Register(api)
	handlers.NewSchemaHandler(svc, schemas, blobs).Register(api)
	// the access_level query parameter is only honored while no identity
	// provider is configured; with OIDC up, claims are the sole source of level
	trustLevelParam := verifier == nil
	handlers.NewSearchHandler(searcher, cfg.Meili, trustLevelParam).Register(api)
	handlers.NewDocumentHandler(docs, blobs, trustLevelParam).Register(api)
	handlers.NewUploadHandler(blobs, cfg.Ingest.ServiceToken).Register(api)
	handlers.RegisterSwagger(r)

	// Expose Prometheus metrics
	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	logger.Infof("Starting lekton on %s", addr)
	if err := r.Run(addr); err != nil {
		logger.Fatalf("server failed: %v", err)
	}
}
