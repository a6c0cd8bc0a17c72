package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/storyforge/api"
	"github.com/dmitrymomot/storyforge/core/command"
	"github.com/dmitrymomot/storyforge/core/config"
	"github.com/dmitrymomot/storyforge/core/health"
	"github.com/dmitrymomot/storyforge/core/logger"
	"github.com/dmitrymomot/storyforge/core/notify"
	"github.com/dmitrymomot/storyforge/core/progress"
	"github.com/dmitrymomot/storyforge/core/server"
	"github.com/dmitrymomot/storyforge/core/storage"
	"github.com/dmitrymomot/storyforge/integration/database/redis"
	"github.com/dmitrymomot/storyforge/integration/llm"
	"github.com/dmitrymomot/storyforge/integration/storage/s3"
	"github.com/dmitrymomot/storyforge/pipeline"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cfg Config
	config.MustLoad(&cfg)

	log := logger.New(logger.ForEnv(cfg.AppEnv, cfg.AppName))
	logger.SetAsDefault(log)

	if err := run(ctx, cfg, log); err != nil {
		log.Error("Application failed", logger.Error(err))
		os.Exit(1)
	}

	log.Info("Application stopped")
}

func run(ctx context.Context, cfg Config, log *slog.Logger) error {
	var checks []health.NamedCheck

	tracker, trackerRun, closeTracker, err := newTracker(ctx, cfg, log, &checks)
	if err != nil {
		return err
	}
	defer closeTracker()

	audio, mediaDir, err := newAudioStorage(ctx, cfg)
	if err != nil {
		log.Error("Failed to create audio storage", logger.Component("storage"), logger.Error(err))
		return err
	}

	text, speech, err := llm.New(ctx, cfg.LLM)
	if err != nil {
		log.Error("Failed to create model clients", logger.Component("llm"), logger.Error(err))
		return err
	}

	hub := notify.NewHub(notify.WithHubLogger(log.With(logger.Component("notify.hub"))))
	notifier := notify.BestEffort(
		notify.Fanout(hub, notify.NewLogSink(log.With(logger.Component("notify.log")))),
		notify.WithLogger(log.With(logger.Component("notify"))),
	)

	dispatcher := command.NewDispatcherFromConfig(cfg.Commands,
		command.WithTracker(tracker),
		command.WithNotifier(notifier),
		command.WithLogger(log.With(logger.Component("dispatcher"))),
	)
	checks = append([]health.NamedCheck{health.Check("dispatcher", dispatcher.Healthcheck)}, checks...)

	stories := pipeline.NewMemoryStore()
	p := pipeline.New(stories, text, speech, audio,
		pipeline.WithLogger(log.With(logger.Component("pipeline"))))

	routerOpts := []api.Option{
		api.WithLogger(log),
		api.WithHub(hub),
		api.WithReadinessChecks(checks...),
	}
	if mediaDir != "" {
		routerOpts = append(routerOpts, api.WithMedia(cfg.Storage.BaseURL, mediaDir))
	}
	router := api.NewRouter(dispatcher, tracker, stories, p, routerOpts...)

	srv, err := server.NewFromConfig(cfg.Server, server.WithLogger(log))
	if err != nil {
		log.Error("Failed to create server", logger.Component("server"), logger.Error(err))
		return err
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(dispatcher.Run(ctx))
	if trackerRun != nil {
		eg.Go(trackerRun(ctx))
	}
	eg.Go(srv.Run(ctx, router))

	err = eg.Wait()

	// The dispatcher has stopped by now, so no more notifications are produced.
	if closeErr := notifier.Close(); closeErr != nil {
		log.Warn("Failed to flush notifications", logger.Component("notify"), logger.Error(closeErr))
	}
	if closeErr := hub.Close(); closeErr != nil {
		log.Warn("Failed to close websocket hub", logger.Component("notify.hub"), logger.Error(closeErr))
	}

	return err
}

// newTracker picks the progress backend. The run func is non-nil when the
// backend needs a background janitor; closeFn releases its connections.
func newTracker(ctx context.Context, cfg Config, log *slog.Logger, checks *[]health.NamedCheck) (
	tracker progress.Tracker,
	runFn func(context.Context) func() error,
	closeFn func(),
	err error,
) {
	switch cfg.Progress.Backend {
	case progress.BackendRedis:
		client, err := redis.Connect(ctx, cfg.Redis)
		if err != nil {
			log.Error("Failed to connect to redis", logger.Component("redis"), logger.Error(err))
			return nil, nil, nil, err
		}
		rt, err := progress.NewRedisTrackerFromConfig(client, cfg.Progress)
		if err != nil {
			_ = client.Close()
			return nil, nil, nil, err
		}
		*checks = append(*checks, health.Check("redis", redis.Healthcheck(client)))
		return rt, nil, closeRedis(client, log), nil

	default:
		mt := progress.NewMemoryTrackerFromConfig(cfg.Progress,
			progress.WithLogger(log.With(logger.Component("progress"))))
		return mt, mt.Run, func() {}, nil
	}
}

func closeRedis(client *goredis.Client, log *slog.Logger) func() {
	return func() {
		if err := client.Close(); err != nil {
			log.Warn("Failed to close redis client", logger.Component("redis"), logger.Error(err))
		}
	}
}

// newAudioStorage returns the configured storage and, for the local driver,
// the directory to serve under the media prefix.
func newAudioStorage(ctx context.Context, cfg Config) (storage.Storage, string, error) {
	switch cfg.Storage.Driver {
	case storage.DriverS3:
		store, err := s3.New(ctx, cfg.S3)
		return store, "", err
	default:
		store, err := storage.NewLocal(cfg.Storage.LocalRoot, storage.WithBaseURL(cfg.Storage.BaseURL))
		if err != nil {
			return nil, "", err
		}
		return store, store.Root(), nil
	}
}
