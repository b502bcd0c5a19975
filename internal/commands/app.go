package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/balkashynov/punch/internal/attendance"
	"github.com/balkashynov/punch/internal/config"
	"github.com/balkashynov/punch/internal/db"
	"github.com/balkashynov/punch/internal/db/pgstore"
	"github.com/balkashynov/punch/internal/feed"
)

var errNoUser = errors.New("no user: pass --user or set PUNCH_USER")

// app is the per-invocation wiring: config, logger, store, feed and tracker
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	tracker *attendance.Tracker
	user    string
	redis   *redis.Client
	closers []func()
}

// newApp loads config, opens the configured backend and builds the tracker
func newApp(cmd *cobra.Command, opts ...attendance.Option) (*app, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if user, _ := cmd.Flags().GetString("user"); user != "" {
		cfg.User = user
	}
	if path, _ := cmd.Flags().GetString("db"); path != "" {
		cfg.DBPath = path
	}
	cfg.User = strings.TrimSpace(cfg.User)
	if cfg.User == "" {
		return nil, errNoUser
	}

	logger, err := cfg.NewLogger()
	if err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, logger: logger, user: cfg.User}
	a.closers = append(a.closers, func() { _ = logger.Sync() })

	store, err := a.openStore(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	opts = append([]attendance.Option{
		attendance.WithLocation(loc),
		attendance.WithLogger(logger),
	}, opts...)

	if cfg.RedisAddr != "" {
		rdb, err := feed.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			// The feed is optional; attendance still works without it.
			logger.Warn("redis unavailable, change feed disabled", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		} else {
			a.redis = rdb
			a.closers = append(a.closers, func() { _ = rdb.Close() })
			opts = append(opts, attendance.WithPublisher(feed.NewPublisher(rdb, cfg.FeedPrefix)))
		}
	}

	a.tracker = attendance.NewTracker(store, opts...)
	return a, nil
}

func (a *app) openStore(ctx context.Context) (attendance.Store, error) {
	if a.cfg.DatabaseURL != "" {
		pool, err := pgstore.NewPool(ctx, a.cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, pool.Close)
		if err := pgstore.Migrate(ctx, pool); err != nil {
			return nil, err
		}
		a.logger.Debug("using postgres store")
		return pgstore.New(pool), nil
	}

	path := a.cfg.DBPath
	if path == "" {
		var err error
		if path, err = db.DefaultPath(); err != nil {
			return nil, err
		}
	}
	database, err := db.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	a.closers = append(a.closers, func() { _ = db.Close(database) })
	a.logger.Debug("using sqlite store", zap.String("path", path))
	return db.NewSessionStore(database), nil
}

// Close releases everything newApp opened, newest first
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// withApp wraps a command function to set up the app first
func withApp(fn func(*cobra.Command, []string, *app) error, opts ...func(*cobra.Command) []attendance.Option) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		var extra []attendance.Option
		for _, o := range opts {
			extra = append(extra, o(cmd)...)
		}
		a, err := newApp(cmd, extra...)
		if err != nil {
			return err
		}
		defer a.Close()
		return fn(cmd, args, a)
	}
}
