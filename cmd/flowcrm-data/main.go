package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"flowcrm-data/internal/config"
	"flowcrm-data/internal/database"
	"flowcrm-data/internal/domain"
	"flowcrm-data/internal/filter"
	httpapi "flowcrm-data/internal/http"
	"flowcrm-data/internal/logger"
	"flowcrm-data/internal/mqtt"
	"flowcrm-data/internal/repository"
	"flowcrm-data/internal/service"
	"flowcrm-data/internal/store"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "flowcrm-data")
	if err != nil {
		if log, err = logger.NewLoggerWithDefaults(); err != nil {
			panic("failed to initialize logger: " + err.Error())
		}
	}
	defer log.Sync()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	kv := store.NewRedisKV(redisClient)

	// DB_ENABLED=false is the only path to the in-memory repos; those serve
	// seeded demo rows without query scoping, so an operator who asked for
	// the DB must not silently land on them.
	var db *sql.DB
	if cfg.DBEnabled {
		db, err = database.NewPostgresDB(&cfg.Database)
		if err != nil {
			log.Fatal("DB enabled but connection failed", zap.Error(err))
		}
		log.Info("DB enabled for flowcrm-data")
	}

	resourcesRepo, recordsRepo, linksRepo := buildRepos(db, os.Getenv("SEED_DEV_DATA") != "false", log)

	links := filter.NewCachedLinkResolver(linksRepo, kv, time.Minute, log)
	registry := filter.NewRegistry()
	filter.RegisterBuiltins(registry, links)
	pipeline := filter.NewPipeline(registry, log)
	lists := service.NewListService(pipeline, recordsRepo, log)

	prober := service.NewHTTPProber(cfg.HealthCheck.ProbeTimeout, log)
	manager := service.NewHealthCheckManager(resourcesRepo, prober, log)
	scheduler := service.NewHealthCheckScheduler(
		resourcesRepo,
		manager,
		kv,
		cfg.HealthCheck.Workers,
		cfg.HealthCheck.Interval,
		log,
	)

	router := httpapi.NewRouter(log)
	router.RegisterHealthRoute()
	router.RegisterRecordRoutes(httpapi.NewRecordsHandler(lists, log))
	router.RegisterResourceRoutes(httpapi.NewResourcesHandler(resourcesRepo, manager, log))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go scheduler.Start(ctx)

	var broker *mqtt.Client
	if cfg.MQTT.Enabled {
		if b, err := mqtt.NewClient(&cfg.MQTT, log); err == nil {
			broker = b
			trigger := mqtt.NewSweepTrigger(scheduler, log)
			if err := broker.Subscribe(cfg.MQTT.Topic, 1, trigger.HandleMessage); err != nil {
				log.Warn("MQTT subscribe failed, on-demand sweep trigger disabled", zap.Error(err))
			}
		} else {
			log.Warn("MQTT connection failed, on-demand sweep trigger disabled", zap.Error(err))
		}
	}

	srv := service.NewServer(cfg.HTTP.Addr, router, log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		cancel()
	case <-errCh:
		cancel()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Stop(shutdownCtx)
	if broker != nil {
		broker.Disconnect()
	}
	_ = redisClient.Close()
	if db != nil {
		_ = db.Close()
	}
}

// buildRepos picks the data sources: postgres when a connection exists, the
// in-memory twins otherwise.
func buildRepos(db *sql.DB, seed bool, log *zap.Logger) (repository.ResourcesRepo, repository.RecordsRepo, repository.LinksRepo) {
	if db != nil {
		return repository.NewPostgresResourcesRepo(db, log),
			repository.NewPostgresRecordsRepo(db, log),
			repository.NewPostgresLinksRepo(db, log)
	}

	memResources := repository.NewMemoryResourcesRepo()
	memRecords := repository.NewMemoryRecordsRepo()
	memLinks := repository.NewMemoryLinksRepo()
	if seed {
		seedDevData(memResources, memRecords, memLinks)
	}
	return memResources, memRecords, memLinks
}

// seedDevData populates the in-memory repos so list pages and health checks
// answer without a database.
func seedDevData(
	resources *repository.MemoryResourcesRepo,
	records *repository.MemoryRecordsRepo,
	links *repository.MemoryLinksRepo,
) {
	tenantID := uuid.NewString()

	resources.Seed(domain.MonitoredResource{
		ResourceID:            uuid.NewString(),
		TenantID:              tenantID,
		ResourceName:          "mail-gateway",
		Endpoint:              sql.NullString{String: "https://mail.example.com/health", Valid: true},
		IsActive:              true,
		LastHealthCheckStatus: domain.StatusUnknown,
	})
	resources.Seed(domain.MonitoredResource{
		ResourceID:            uuid.NewString(),
		TenantID:              tenantID,
		ResourceName:          "calendar-sync",
		IsActive:              true,
		LastHealthCheckStatus: domain.StatusUnknown,
	})

	agentID := uuid.NewString()
	userID := uuid.NewString()
	links.SeedLink("agents", "user_id", userID, []string{agentID})

	records.Seed(domain.EntityConversations,
		domain.Record{ID: uuid.NewString(), EntityType: domain.EntityConversations, Fields: map[string]any{
			"tenant_id":   tenantID,
			"status":      "pending",
			"assignee_id": agentID,
		}},
		domain.Record{ID: uuid.NewString(), EntityType: domain.EntityConversations, Fields: map[string]any{
			"tenant_id": tenantID,
			"status":    "resolved",
		}},
	)
	records.Seed(domain.EntityContacts,
		domain.Record{ID: uuid.NewString(), EntityType: domain.EntityContacts, Fields: map[string]any{
			"tenant_id":     tenantID,
			"status":        "active",
			"owner_user_id": userID,
		}},
	)
}
