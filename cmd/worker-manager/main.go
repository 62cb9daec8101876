// cmd/worker-manager/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"insertion-workers/internal/api"
	"insertion-workers/internal/candidates"
	awsclient "insertion-workers/internal/common/aws"
	"insertion-workers/internal/common/camunda"
	"insertion-workers/internal/common/config"
	"insertion-workers/internal/common/database"
	"insertion-workers/internal/common/logger"
	"insertion-workers/internal/common/metrics"
	"insertion-workers/internal/common/observability"
	"insertion-workers/internal/eligibility"
	"insertion-workers/internal/reference"
	evaluateeligibility "insertion-workers/internal/workers/eligibility/evaluate-eligibility"
	createcandidaterecord "insertion-workers/internal/workers/candidates/create-candidate-record"
	updatecandidaterecord "insertion-workers/internal/workers/candidates/update-candidate-record"
	validatecandidatedata "insertion-workers/internal/workers/candidates/validate-candidate-data"
	sendnotification "insertion-workers/internal/workers/communication/send-notification"
	queryelasticsearch "insertion-workers/internal/workers/data-access/query-elasticsearch"
	esqueries "insertion-workers/internal/workers/data-access/query-elasticsearch/queries"
	querypostgresql "insertion-workers/internal/workers/data-access/query-postgresql"
	listpipelineboard "insertion-workers/internal/workers/pipeline/list-pipeline-board"
	movecandidatestage "insertion-workers/internal/workers/pipeline/move-candidate-stage"
	"insertion-workers/pkg/registry"
)

const startupAttempts = 5

func main() {
	bootLog := logger.New("info", "console")
	defer bootLog.Sync()

	cfg, err := config.Load()
	if err != nil {
		bootLog.Fatal("Failed to load config", zap.Error(err))
	}

	zapLog, err := logger.NewFromConfig(cfg.Logging)
	if err != nil {
		bootLog.Fatal("Failed to initialize logger", zap.Error(err))
	}
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting insertion workers",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	obs, err := observability.New(cfg.App.Name, cfg.App.Version)
	if err != nil {
		zapLog.Warn("OpenTelemetry metrics disabled", zap.Error(err))
	}

	var zeebe *camunda.Client
	if err := camunda.Retry(ctx, startupAttempts, 2*time.Second, log, "zeebe connection", func() error {
		var cerr error
		zeebe, cerr = camunda.NewClient(cfg.Camunda.BrokerAddress)
		return cerr
	}); err != nil {
		zapLog.Fatal("Failed to connect to Zeebe", zap.Error(err))
	}
	defer zeebe.Close()

	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		zapLog.Fatal("Failed to open PostgreSQL", zap.Error(err))
	}
	defer pg.Close()
	if err := camunda.Retry(ctx, startupAttempts, 2*time.Second, log, "postgres ping", func() error {
		return pg.Ping(ctx)
	}); err != nil {
		zapLog.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}

	rdb, err := database.NewRedis(cfg.Database.Redis)
	if err != nil {
		zapLog.Fatal("Failed to create Redis client", zap.Error(err))
	}
	defer rdb.Close()
	if err := camunda.Retry(ctx, startupAttempts, 2*time.Second, log, "redis ping", func() error {
		return rdb.Ping(ctx)
	}); err != nil {
		zapLog.Fatal("Failed to connect to Redis", zap.Error(err))
	}

	// Search is optional. Declared as interfaces so a disabled cluster stays a nil interface.
	var (
		indexer  createcandidaterecord.Indexer
		searcher esqueries.Searcher
	)
	if cfg.Database.Elasticsearch.Enabled() {
		es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err == nil {
			err = camunda.Retry(ctx, startupAttempts, 2*time.Second, log, "elasticsearch ping", func() error {
				return es.Ping(ctx)
			})
		}
		if err != nil {
			zapLog.Warn("Elasticsearch unavailable, indexing and search disabled", zap.Error(err))
		} else {
			indexer, searcher = es, es
		}
	}

	provider := reference.New(pg.DB, rdb.Client, cfg.Eligibility, log)
	evaluator := eligibility.NewEvaluator(provider, eligibility.Config{
		BaselineMinAge: cfg.Eligibility.BaselineMinAge,
		BaselineMaxAge: cfg.Eligibility.BaselineMaxAge,
	}, log, eligibility.WithRecorder(metrics.EligibilityRecorder{}))
	repo := candidates.NewRepository(pg.DB)

	templates, err := registry.LoadRegistry(cfg.Notifications.TemplateRegistry)
	if err == nil {
		err = templates.Validate()
	}
	if err != nil {
		zapLog.Fatal("Failed to load notification templates", zap.Error(err))
	}

	var (
		email sendnotification.EmailSender
		sms   sendnotification.SMSSender
	)
	if cfg.Notifications.Email.Enabled || cfg.Notifications.SMS.Enabled {
		awsCfg, err := awsclient.LoadConfig(ctx, cfg.Notifications.AWS.Region)
		if err != nil {
			zapLog.Fatal("Failed to load AWS config", zap.Error(err))
		}
		if cfg.Notifications.Email.Enabled {
			email = awsclient.NewSESClient(awsCfg, cfg.Notifications.Email.FromEmail)
		}
		if cfg.Notifications.SMS.Enabled {
			sms = awsclient.NewSNSClient(awsCfg)
		}
	}

	opts := []camunda.RunnerOption{camunda.WithObservability(obs)}
	workers := camunda.NewRegistry(zeebe.GetClient(), log)

	{
		wc := config.GetWorkerConfig(cfg, evaluateeligibility.TaskType)
		h := evaluateeligibility.NewHandler(evaluateeligibility.LoadConfig(wc), evaluator, repo, log, opts...)
		workers.Start(evaluateeligibility.TaskType, wc, h.Handle)
	}
	{
		wc := config.GetWorkerConfig(cfg, validatecandidatedata.TaskType)
		h := validatecandidatedata.NewHandler(validatecandidatedata.LoadConfig(wc), log, opts...)
		workers.Start(validatecandidatedata.TaskType, wc, h.Handle)
	}
	{
		wc := config.GetWorkerConfig(cfg, createcandidaterecord.TaskType)
		h := createcandidaterecord.NewHandler(createcandidaterecord.LoadConfig(wc, cfg.Eligibility), repo, evaluator, indexer, log, opts...)
		workers.Start(createcandidaterecord.TaskType, wc, h.Handle)
	}
	{
		wc := config.GetWorkerConfig(cfg, updatecandidaterecord.TaskType)
		h := updatecandidaterecord.NewHandler(updatecandidaterecord.LoadConfig(wc, cfg.Eligibility), repo, evaluator, indexer, log, opts...)
		workers.Start(updatecandidaterecord.TaskType, wc, h.Handle)
	}
	{
		wc := config.GetWorkerConfig(cfg, movecandidatestage.TaskType)
		h := movecandidatestage.NewHandler(movecandidatestage.LoadConfig(wc), repo, log, opts...)
		workers.Start(movecandidatestage.TaskType, wc, h.Handle)
	}
	{
		wc := config.GetWorkerConfig(cfg, listpipelineboard.TaskType)
		h := listpipelineboard.NewHandler(listpipelineboard.LoadConfig(wc, cfg.Eligibility), repo, evaluator, log, opts...)
		workers.Start(listpipelineboard.TaskType, wc, h.Handle)
	}
	{
		wc := config.GetWorkerConfig(cfg, sendnotification.TaskType)
		h := sendnotification.NewHandler(sendnotification.LoadConfig(wc, cfg.Notifications), repo, templates, email, sms, log, opts...)
		workers.Start(sendnotification.TaskType, wc, h.Handle)
	}
	{
		wc := config.GetWorkerConfig(cfg, querypostgresql.TaskType)
		h := querypostgresql.NewHandler(querypostgresql.LoadConfig(wc), pg.DB, log, opts...)
		workers.Start(querypostgresql.TaskType, wc, h.Handle)
	}
	if searcher != nil {
		wc := config.GetWorkerConfig(cfg, queryelasticsearch.TaskType)
		h := queryelasticsearch.NewHandler(queryelasticsearch.LoadConfig(wc, cfg.Eligibility), searcher, log, opts...)
		workers.Start(queryelasticsearch.TaskType, wc, h.Handle)
	}

	zapLog.Info("Workers registered", zap.Strings("taskTypes", workers.TaskTypes()))

	server := &http.Server{
		Addr: cfg.Server.Address,
		Handler: api.NewServer(api.Options{
			Evaluator: evaluator,
			Store:     repo,
			Checks: map[string]api.CheckFunc{
				"postgres": pg.Ping,
				"redis":    rdb.Ping,
				"zeebe":    zeebe.HealthCheck,
			},
			APIKey:         cfg.Auth.APIKey,
			TestBypass:     cfg.Auth.TestBypass,
			RequestTimeout: config.GetDuration(cfg.Server.RequestTimeout),
			Logger:         log,
		}).Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	if cfg.Auth.TestBypass {
		zapLog.Warn("API key check bypassed for /v1 routes")
	}

	go func() {
		zapLog.Info("Ops server listening", zap.String("address", cfg.Server.Address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Error("Ops server failed", zap.Error(err))
			stop()
		}
	}()

	// pprof stays off the public router.
	go func() {
		if err := http.ListenAndServe("localhost:6060", nil); err != nil {
			zapLog.Debug("pprof listener stopped", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zapLog.Info("Shutdown signal received, stopping workers...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Ops server shutdown failed", zap.Error(err))
	}
	workers.Close()
	if obs != nil {
		if err := obs.Shutdown(); err != nil {
			zapLog.Warn("OpenTelemetry shutdown failed", zap.Error(err))
		}
	}

	zapLog.Info("Shutdown complete")
}
