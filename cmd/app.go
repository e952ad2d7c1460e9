package main

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"gitlab.com/codearena.net/internal/adapter/crypto"
	"gitlab.com/codearena.net/internal/adapter/httpapi"
	"gitlab.com/codearena.net/internal/adapter/logging"
	"gitlab.com/codearena.net/internal/adapter/memory"
	"gitlab.com/codearena.net/internal/adapter/metrics"
	"gitlab.com/codearena.net/internal/adapter/postgres/historyrepository"
	"gitlab.com/codearena.net/internal/adapter/redis/viewstore"
	"gitlab.com/codearena.net/internal/adapter/session"
	"gitlab.com/codearena.net/internal/config"
	"gitlab.com/codearena.net/internal/core/ports/secondary"
	"gitlab.com/codearena.net/internal/core/services/auth"
	"gitlab.com/codearena.net/internal/core/services/catalog"
	"gitlab.com/codearena.net/internal/core/services/reconcile"
	"gitlab.com/codearena.net/internal/domain"
	"gitlab.com/codearena.net/internal/handlers/status"
	http2 "gitlab.com/codearena.net/internal/http"
	"gitlab.com/codearena.net/internal/notify"
	"gitlab.com/codearena.net/internal/realtime"
	"gitlab.com/codearena.net/internal/schedulerengine"
)

const storeTimeout = 5 * time.Second

// app holds the process-wide collaborators. Stores and the real-time channel are built on
// first use so that simple commands never dial Redis, PostgreSQL or the socket.
type app struct {
	cfg     *config.AppConfig
	logger  *logging.ZapLogger
	out     io.Writer
	console *notify.Console
	board   *notify.Board

	problemClient    *httpapi.Client
	submissionClient *httpapi.Client
	submissions      *httpapi.SubmissionAPI
	auth             auth.IAuthService
	catalog          catalog.ICatalogService

	recorder *metrics.Recorder

	storesOnce sync.Once
	views      secondary.ViewStore
	history    secondary.HistoryRepository

	closers []func()
}

func newApp(cfg *config.AppConfig, logger *logging.ZapLogger, out io.Writer) *app {
	console := notify.NewConsole(out)
	a := &app{
		cfg:      cfg,
		logger:   logger,
		out:      out,
		console:  console,
		board:    notify.NewBoard(console.Sink()),
		recorder: metrics.NewRecorder(),
	}

	timeout := httpapi.WithTimeout(cfg.ServicesConfig.RequestTimeout)
	a.problemClient = httpapi.NewClient(cfg.ServicesConfig.ProblemServiceURL, logger.Named("problems"), timeout)
	a.submissionClient = httpapi.NewClient(cfg.ServicesConfig.SubmissionServiceURL, logger.Named("submissions"), timeout)
	a.submissions = httpapi.NewSubmissionAPI(a.submissionClient)
	a.catalog = catalog.NewCatalogService(httpapi.NewProblemAPI(a.problemClient), logger)
	a.auth = auth.NewAuthService(
		httpapi.NewAuthAPI(a.problemClient),
		session.NewFileStore(cfg.SessionConfig.File),
		crypto.NewTokenDecoder(),
		logger,
		a.problemClient,
		a.submissionClient,
	)
	return a
}

func (a *app) onClose(f func()) {
	a.closers = append(a.closers, f)
}

// Close releases everything in reverse order of creation.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// restore resumes the stored session or fails with a hint to log in.
func (a *app) restore(ctx context.Context) (*domain.User, error) {
	user, err := a.auth.Restore(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w (run `codearena login`)", err)
	}
	return user, nil
}

// stores opens Redis and PostgreSQL when configured and falls back to memory otherwise or
// when they are unreachable.
func (a *app) stores(ctx context.Context) (secondary.ViewStore, secondary.HistoryRepository) {
	a.storesOnce.Do(func() {
		a.views = a.openViewStore(ctx)
		a.history = a.openHistory(ctx)
	})
	return a.views, a.history
}

func (a *app) openViewStore(ctx context.Context) secondary.ViewStore {
	cfg := a.cfg.RedisConfig
	if cfg.Url == "" {
		return memory.NewViewStore()
	}
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Url,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	store := viewstore.NewViewStore(redisClient, a.logger.Named("viewstore"), cfg.ViewTTL)

	pingCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	if err := store.Ping(pingCtx); err != nil {
		a.logger.Warn("Redis unreachable, keeping views in memory", "addr", cfg.Url, "error", err)
		_ = redisClient.Close()
		return memory.NewViewStore()
	}
	a.onClose(func() { _ = redisClient.Close() })
	return store
}

func (a *app) openHistory(ctx context.Context) secondary.HistoryRepository {
	cfg := a.cfg.PostgresConfig
	if cfg.Url == "" {
		return memory.NewHistoryRepository()
	}
	db, err := sqlx.Open("postgres", cfg.Url)
	if err != nil {
		a.logger.Warn("Invalid database url, keeping history in memory", "error", err)
		return memory.NewHistoryRepository()
	}

	pingCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	repo := historyrepository.NewHistoryRepository(db, a.logger.Named("history"), cfg.Schema)
	err = db.PingContext(pingCtx)
	if err == nil {
		err = repo.EnsureSchema(pingCtx)
	}
	if err != nil {
		a.logger.Warn("Database unavailable, keeping history in memory", "error", err)
		_ = db.Close()
		return memory.NewHistoryRepository()
	}
	a.onClose(func() { _ = db.Close() })
	return repo
}

// channel connects the shared real-time client and authenticates it as the session user.
// A failed first dial is reported but not fatal; updates start once a reconnect succeeds.
func (a *app) channel(ctx context.Context) (*realtime.Client, error) {
	userID, err := a.auth.UserID(ctx)
	if err != nil {
		return nil, err
	}
	// stores close after the channel so late updates can still be saved
	a.stores(ctx)

	client := realtime.NewClient(
		a.cfg.RealtimeConfig.URL,
		a.logger.Named("realtime"),
		realtime.WithConfig(a.cfg.RealtimeConfig),
		realtime.WithNotifier(a.board),
	)
	client.OnStateChange(notify.ConnectivityListener(a.board))
	client.OnStateChange(a.recorder.ObserveConnection)
	a.onClose(func() { _ = client.Dispose() })

	if err := client.Authenticate(userID); err != nil {
		return nil, err
	}
	if err := client.Connect(ctx); err != nil {
		a.logger.Warn("Real-time channel unavailable", "error", err)
	}
	return client, nil
}

// tracker builds a reconciler whose changes reach the console, the stores and metrics.
// done receives the first terminal view.
func (a *app) tracker(ctx context.Context) (*reconcile.Reconciler, <-chan domain.SubmissionView) {
	views, history := a.stores(ctx)
	reconciler := reconcile.NewReconciler(a.logger.Named("reconcile"), a.board)

	done := make(chan domain.SubmissionView, 1)
	var once sync.Once
	reconciler.Observe(a.console.View)
	reconciler.Observe(a.recorder.ObserveView)
	reconciler.Observe(func(v domain.SubmissionView) {
		if err := views.SaveView(ctx, v); err != nil {
			a.logger.Warn("Failed to store view", "submissionId", v.SubmissionID, "error", err)
		}
		if !v.State.Terminal() {
			return
		}
		if err := history.SaveEntry(ctx, domain.NewHistoryEntry(v)); err != nil {
			a.logger.Warn("Failed to record history", "submissionId", v.SubmissionID, "error", err)
		}
		once.Do(func() { done <- v })
	})
	return reconciler, done
}

// background starts the status API and the periodic tasks for a watching command.
func (a *app) background(ctx context.Context, reconciler *reconcile.Reconciler, channel *realtime.Client) error {
	views, history := a.stores(ctx)

	engine := schedulerengine.NewSchedulerEngine(
		a.cfg.Background,
		channel,
		a.submissions,
		history,
		a.logger.Named("background"),
		func(state domain.ConnectionState) { a.recorder.ObserveConnection(state, nil) },
	)
	bgCtx, cancel := context.WithCancel(ctx)
	engine.StartBackgroundEngine(bgCtx)
	a.onClose(func() {
		cancel()
		engine.Wait()
	})

	return a.startStatusAPI(ctx, status.Dependencies{
		Views:         reconciler,
		ViewStore:     views,
		History:       history,
		Notifications: a.board,
		Connection:    channel,
		Metrics:       a.recorder.Handler(),
	})
}

func (a *app) startStatusAPI(ctx context.Context, deps status.Dependencies) error {
	if a.cfg.StatusAPI.Addr == "" {
		return nil
	}
	server := http2.NewServer(a.cfg.StatusAPI, "codearena", deps, a.logger.Named("status-api"))
	if err := server.Init(); err != nil {
		return err
	}
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("failed to start status API: %w", err)
	}
	a.onClose(func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Stop(shutdownCtx); err != nil {
			a.logger.Error("Server forced to shutdown", "error", err)
		}
	})
	return nil
}
