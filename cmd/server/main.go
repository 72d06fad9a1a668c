package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"runtime/debug"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/workstream-hr/workstream/modules"
	workflowservices "github.com/workstream-hr/workstream/modules/workflow/services"
	"github.com/workstream-hr/workstream/pkg/application"
	"github.com/workstream-hr/workstream/pkg/composables"
	"github.com/workstream-hr/workstream/pkg/configuration"
	"github.com/workstream-hr/workstream/pkg/constants"
	"github.com/workstream-hr/workstream/pkg/eventbus"
	"github.com/workstream-hr/workstream/pkg/httpapi"
	"github.com/workstream-hr/workstream/pkg/metrics"
	"github.com/workstream-hr/workstream/pkg/middleware"
	"github.com/workstream-hr/workstream/pkg/server"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			configuration.Use().Unload()
			log.Println(r)
			debug.PrintStack()
			os.Exit(1)
		}
	}()

	conf := configuration.Use()
	logger := conf.Logger()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()
	pool, err := pgxpool.New(ctx, conf.Database.Opts)
	if err != nil {
		panic(err)
	}
	defer pool.Close()

	app := application.New(&application.ApplicationOptions{
		Pool:     pool,
		EventBus: eventbus.NewEventPublisher(logger),
		Logger:   logger,
	})
	if err := modules.Load(app, modules.BuiltInModules...); err != nil {
		log.Fatalf("failed to load modules: %v", err)
	}

	app.RegisterMiddleware(
		middleware.Cors(strings.Split(conf.AllowedOrigins, ",")...),
		middleware.WithLogger(logger),
		middleware.RequestParams(),
		middleware.Provide(constants.AppKey, app),
		middleware.Provide(constants.PoolKey, pool),
	)
	app.RegisterControllers(
		server.NewHealthController(pool),
	)
	if conf.Prometheus.Enabled {
		app.RegisterControllers(metrics.NewPrometheusController(conf.Prometheus.Path))
	}

	workflows := app.Service(workflowservices.WorkflowService{}).(*workflowservices.WorkflowService)
	if conf.Workflow.SweepOnStart {
		runSweep(pool, logger, workflows)
	}
	if schedule := strings.TrimSpace(conf.Workflow.SweepSchedule); schedule != "" {
		scheduler := cron.New()
		if _, err := scheduler.AddFunc(schedule, func() {
			runSweep(pool, logger, workflows)
		}); err != nil {
			log.Fatalf("invalid sweep schedule %q: %v", schedule, err)
		}
		scheduler.Start()
		defer scheduler.Stop()
	}

	serverInstance := server.NewHTTPServer(
		app,
		http.HandlerFunc(notFound),
		http.HandlerFunc(methodNotAllowed),
	)
	logger.Infof("listening on %s", conf.SocketAddress)
	if err := serverInstance.Start(conf.SocketAddress); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}

func runSweep(pool *pgxpool.Pool, logger *logrus.Logger, workflows *workflowservices.WorkflowService) {
	ctx := composables.WithPool(context.Background(), pool)
	report, err := workflows.Sweep(ctx)
	if err != nil {
		logger.WithError(err).Error("workflow deduplication sweep failed")
		return
	}
	logger.WithFields(logrus.Fields{
		"transfers":         report.Transfers,
		"request_approvals": report.RequestApprovals,
	}).Info("workflow deduplication sweep finished")
}

func notFound(w http.ResponseWriter, r *http.Request) {
	_ = httpapi.WriteError(w, http.StatusNotFound, "NOT_FOUND", "resource not found", nil)
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	_ = httpapi.WriteError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed", nil)
}
