// Package app composes the client: one fx module wiring the cache, the
// transport, the connectivity monitor, the per-scope session, the retry
// manager and the conversation view.
package app

import (
	"context"
	"path/filepath"

	"github.com/pvictorino/supportchat/internal/bus"
	"github.com/pvictorino/supportchat/internal/cache"
	"github.com/pvictorino/supportchat/internal/config"
	"github.com/pvictorino/supportchat/internal/connectivity"
	"github.com/pvictorino/supportchat/internal/lock"
	"github.com/pvictorino/supportchat/internal/logging"
	"github.com/pvictorino/supportchat/internal/retry"
	"github.com/pvictorino/supportchat/internal/session"
	"github.com/pvictorino/supportchat/internal/transport"
	"github.com/pvictorino/supportchat/internal/tui"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Params holds the resolved startup configuration passed to the fx module.
type Params struct {
	Scope  string
	Config *config.Config
}

// Module returns the fx module for the client, composing all providers and
// lifecycle hooks.
func Module(p Params) fx.Option {
	return fx.Module("deskchat",
		fx.Supply(p),
		fx.Provide(
			provideLogger,
			provideBus,
			provideLock,
			provideCache,
			provideTransport,
			provideMonitor,
			provideSession,
			provideRetryManager,
			provideView,
		),
		fx.Invoke(registerLifecycle),
	)
}

func provideLogger(p Params) (*zap.Logger, error) {
	return logging.New(p.Config.DataDir, p.Scope)
}

func provideBus() *bus.Bus {
	return bus.New()
}

func provideLock(p Params, logger *zap.Logger) (*lock.Lock, error) {
	l, err := lock.Acquire(p.Config.DataDir)
	if err != nil {
		return nil, err
	}
	logger.Info("data dir lock acquired", zap.String("dir", p.Config.DataDir))
	return l, nil
}

func provideCache(p Params, logger *zap.Logger) (*cache.Store, error) {
	path := filepath.Join(p.Config.DataDir, "cache.db")
	store, err := cache.Open(path)
	if err != nil {
		return nil, err
	}
	result, err := store.Migrate()
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	if result.Changed {
		logger.Info("cache migrations applied", zap.Uint("version", result.Version))
	}
	logger.Info("cache initialized", zap.String("path", path))
	return store, nil
}

func provideTransport(p Params) transport.Client {
	return transport.NewREST(p.Config.API.BaseURL, p.Config.API.Token, p.Config.Timeout())
}

func provideMonitor(p Params, client transport.Client, b *bus.Bus, logger *zap.Logger) *connectivity.Monitor {
	return connectivity.NewMonitor(client.Probe, p.Config.ProbeInterval(), b, logger)
}

func provideSession(p Params, store *cache.Store, client transport.Client, b *bus.Bus, logger *zap.Logger) *session.Session {
	return session.New(p.Scope, store, client, b, logger, p.Config.PollInterval())
}

func provideRetryManager(store *cache.Store, client transport.Client, b *bus.Bus, logger *zap.Logger) *retry.Manager {
	return retry.NewManager(store, client, b, logger)
}

func provideView(sess *session.Session, b *bus.Bus, logger *zap.Logger) *tui.App {
	return tui.NewApp(sess, b, logger)
}

func registerLifecycle(lc fx.Lifecycle, shutdowner fx.Shutdowner, view *tui.App, sess *session.Session, mgr *retry.Manager, monitor *connectivity.Monitor, lk *lock.Lock, store *cache.Store, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			// Retry watcher first so the monitor's initial online
			// transition triggers the opportunistic drain.
			mgr.Start(context.Background(), sess)
			monitor.Start(context.Background())

			if err := sess.Open(context.Background()); err != nil {
				return err
			}
			logger.Info("session opened", zap.String("scope", sess.Scope()))

			go func() {
				if err := view.Run(context.Background()); err != nil {
					logger.Error("view error", zap.Error(err))
				}
				_ = shutdowner.Shutdown()
			}()
			return nil
		},
		OnStop: func(context.Context) error {
			view.Stop()
			sess.Close()
			mgr.Stop()
			monitor.Stop()
			if err := store.Close(); err != nil {
				logger.Warn("error closing cache", zap.Error(err))
			}
			if err := lk.Release(); err != nil {
				logger.Warn("error releasing lock", zap.Error(err))
			}
			logger.Info("client stopped")
			return nil
		},
	})
}
