// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"scholarship-workers/internal/common/aws"
	"scholarship-workers/internal/common/camunda"
	"scholarship-workers/internal/common/config"
	"scholarship-workers/internal/common/database"
	"scholarship-workers/internal/common/logger"
	"scholarship-workers/internal/common/observability"
	"scholarship-workers/internal/common/validation"
	"scholarship-workers/internal/engine/batch"
	"scholarship-workers/internal/engine/dedup"
	"scholarship-workers/internal/ingest"
	"scholarship-workers/internal/models"
	"scholarship-workers/internal/store"
	"scholarship-workers/pkg/registry"

	dds "scholarship-workers/internal/workers/catalog/detect-duplicate-scholarships"
	is "scholarship-workers/internal/workers/catalog/import-scholarships"
	esp "scholarship-workers/internal/workers/matching/estimate-success-probability"
	ssm "scholarship-workers/internal/workers/matching/score-scholarship-matches"
	npm "scholarship-workers/internal/workers/notification/notify-priority-matches"
	cps "scholarship-workers/internal/workers/profile/calculate-profile-strength"
)

// deps are the shared clients every worker is built from.
type deps struct {
	cfg      *config.Config
	pg       *database.PostgresClient
	redis    *database.RedisClient
	es       *database.ElasticsearchClient
	obs      *observability.Observability
	profiles *store.CachedProfiles
	catalog  *store.CatalogRepository
	log      logger.Logger
}

type workerFactory struct {
	taskType string
	build    func(d *deps, timeout time.Duration) (camunda.JobHandler, error)
}

var factories = []workerFactory{
	{cps.TaskType, func(d *deps, timeout time.Duration) (camunda.JobHandler, error) {
		cfg := cps.LoadConfig()
		cfg.Timeout = timeout
		return cps.NewHandler(cfg, d.profiles, store.NewProfileRepository(d.pg.DB), d.log), nil
	}},
	{ssm.TaskType, func(d *deps, timeout time.Duration) (camunda.JobHandler, error) {
		cfg := ssm.LoadConfig()
		cfg.Timeout = timeout
		cfg.LookbackDays = d.cfg.Matching.LookbackDays
		cfg.CatalogLimit = d.cfg.Matching.CatalogLimit
		scorer := batch.NewScorer(
			batch.WithConcurrency(d.cfg.Matching.Concurrency),
			batch.WithHook(d.obs),
			batch.WithTracer(d.obs.Tracer("scholarship-workers/matching")),
		)
		return ssm.NewHandler(cfg, d.profiles, d.catalog, store.NewMatchRepository(d.pg.DB), scorer, d.log), nil
	}},
	{esp.TaskType, func(d *deps, timeout time.Duration) (camunda.JobHandler, error) {
		cfg := esp.LoadConfig()
		cfg.Timeout = timeout
		return esp.NewHandler(cfg, d.log), nil
	}},
	{dds.TaskType, func(d *deps, timeout time.Duration) (camunda.JobHandler, error) {
		cfg := dds.LoadConfig()
		cfg.Timeout = timeout
		cfg.DefaultThreshold = d.cfg.Import.DedupThreshold
		return dds.NewHandler(cfg, d.deduplicator(), nil, d.log), nil
	}},
	{is.TaskType, func(d *deps, timeout time.Duration) (camunda.JobHandler, error) {
		cfg := is.LoadConfig()
		cfg.Timeout = timeout
		cfg.ChunkSize = d.cfg.Import.ChunkSize
		cfg.DedupThreshold = d.cfg.Import.DedupThreshold
		cfg.SkipExpired = d.cfg.Import.SkipExpired

		validator, err := validation.NewScholarshipValidator(d.cfg.Import.SchemaPath)
		if err != nil {
			return nil, err
		}
		index := store.NewSearchIndex(d.es.Client, d.cfg.Database.Elasticsearch.CatalogIndex)
		return is.NewHandler(cfg, validator, d.deduplicator(), nil, store.NewChunkApplier(d.pg.DB), index, d.log), nil
	}},
	{npm.TaskType, func(d *deps, timeout time.Duration) (camunda.JobHandler, error) {
		n := d.cfg.Notifications
		cfg := npm.LoadConfig()
		cfg.Timeout = timeout
		cfg.EmailEnabled = n.Email.Enabled
		cfg.FromEmail = n.Email.FromEmail
		cfg.SMSEnabled = n.SMS.Enabled
		cfg.SMSMinTier = models.PriorityTier(n.SMS.MinTier)

		awsCfg, err := aws.LoadConfig(context.Background(), n.AWS.Region)
		if err != nil {
			return nil, err
		}
		return npm.NewHandler(cfg, aws.NewSESClient(awsCfg), aws.NewSNSClient(awsCfg), d.log), nil
	}},
}

func (d *deps) deduplicator() *ingest.Deduplicator {
	return ingest.NewDeduplicator(d.catalog, 0, d.dedupOptions()...)
}

func (d *deps) dedupOptions() []dedup.Option {
	return []dedup.Option{
		dedup.WithConcurrency(d.cfg.Matching.Concurrency),
		dedup.WithHook(d.obs),
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...",
		zap.String("app", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	var reg *registry.ActivityRegistry
	if cfg.Registry.Path != "" {
		reg, err = registry.LoadRegistry(cfg.Registry.Path)
		if err != nil {
			zapLog.Fatal("activity registry load failed", zap.String("path", cfg.Registry.Path), zap.Error(err))
		}
		if err := reg.Validate(); err != nil {
			zapLog.Fatal("activity registry invalid", zap.Error(err))
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	obs := observability.New(cfg.App.Name, log)
	defer obs.Shutdown()

	// --- Zeebe ---
	zeebe, err := camunda.NewClientWithConfig(camunda.ConfigFrom(cfg.Camunda))
	if err != nil {
		zapLog.Fatal("zeebe client failed", zap.Error(err))
	}
	defer zeebe.Close()
	zapLog.Info("Zeebe client connected successfully", zap.String("gateway", cfg.Camunda.BrokerAddress))

	// --- Storage ---
	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		zapLog.Fatal("postgres client failed", zap.Error(err))
	}
	defer pg.Close()

	redis := database.NewRedis(cfg.Database.Redis)
	defer redis.Close()

	esClient, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
	if err != nil {
		zapLog.Fatal("elasticsearch client failed", zap.Error(err))
	}

	for _, dep := range []struct {
		name string
		p    database.Pinger
	}{
		{"postgres", pg},
		{"redis", redis},
		{"elasticsearch", esClient},
	} {
		if err := database.WaitReady(ctx, dep.name, dep.p, 15, 2*time.Second, 30*time.Second); err != nil {
			zapLog.Fatal("dependency not ready", zap.String("dependency", dep.name), zap.Error(err))
		}
		zapLog.Info("dependency ready", zap.String("dependency", dep.name))
	}

	if err := store.EnsureSchema(ctx, pg.DB); err != nil {
		zapLog.Fatal("schema setup failed", zap.Error(err))
	}

	profileTTL := time.Duration(cfg.Database.Redis.ProfileTTL) * time.Second
	d := &deps{
		cfg:      cfg,
		pg:       pg,
		redis:    redis,
		es:       esClient,
		obs:      obs,
		profiles: store.NewCachedProfiles(store.NewProfileRepository(pg.DB), redis.Client, profileTTL, log),
		catalog:  store.NewCatalogRepository(pg.DB),
		log:      log,
	}

	// --- Workers ---
	var workers []*camunda.JobWorker
	for _, f := range factories {
		wcfg := config.GetWorkerConfig(cfg, f.taskType)
		if !wcfg.Enabled {
			zapLog.Info("worker disabled", zap.String("taskType", f.taskType))
			continue
		}
		if reg != nil {
			if _, ok := reg.Find(f.taskType); !ok {
				zapLog.Fatal("task type missing from activity registry", zap.String("taskType", f.taskType))
			}
		}

		timeout := config.GetDuration(wcfg.Timeout)
		handler, err := f.build(d, timeout)
		if err != nil {
			zapLog.Fatal("failed to create handler", zap.String("taskType", f.taskType), zap.Error(err))
		}
		workers = append(workers, camunda.NewWorker(zeebe.GetClient(), f.taskType, camunda.WorkerOptions{
			MaxJobsActive: wcfg.MaxJobsActive,
			Timeout:       timeout,
		}, handler, log))
	}
	zapLog.Info("workers registered", zap.Int("count", len(workers)))

	// --- Health & Metrics Server ---
	srv := &http.Server{
		Addr:              cfg.Metrics.ListenAddress,
		Handler:           newMux(zeebe, pg, redis, esClient),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	<-ctx.Done()
	zapLog.Info("Shutdown signal received, stopping workers...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, w := range workers {
		w.Stop()
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping health server", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

type readinessCheck struct {
	name  string
	check func(ctx context.Context) error
}

type healthChecker interface {
	HealthCheck(ctx context.Context) error
}

func newMux(zeebe healthChecker, pg, redis, es database.Pinger) *http.ServeMux {
	checks := []readinessCheck{
		{"zeebe", zeebe.HealthCheck},
		{"postgres", pg.Ping},
		{"redis", redis.Ping},
		{"elasticsearch", es.Ping},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status": "healthy",
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		status, code := "ready", http.StatusOK
		results := make(map[string]string, len(checks))
		for _, c := range checks {
			if err := c.check(ctx); err != nil {
				results[c.name] = err.Error()
				status, code = "not ready", http.StatusServiceUnavailable
				continue
			}
			results[c.name] = "ok"
		}
		writeJSON(w, code, map[string]interface{}{
			"status": status,
			"checks": results,
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	})
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func writeJSON(w http.ResponseWriter, code int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(body)
}
