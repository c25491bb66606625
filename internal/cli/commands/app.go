package commands

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/conduit-lang/attrkit/internal/cli/config"
	"github.com/conduit-lang/attrkit/internal/store"
	"github.com/conduit-lang/attrkit/internal/workspace"
)

// app carries what the persistent flags resolve to for one invocation
type app struct {
	configPath string
	noColor    bool
	verbose    bool

	cfg *config.Config
	log *zap.Logger
}

// setup loads the configuration and builds the zap logger. It runs before
// every subcommand.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	level := cfg.Log.Level
	if a.verbose {
		level = "debug"
	}
	log, err := newZapLogger(level, cfg.Log.Development, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	a.log = log
	return nil
}

// newZapLogger writes console-encoded entries at level or above to w
func newZapLogger(level string, development bool, w io.Writer) (*zap.Logger, error) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(strings.ToLower(level))); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	encCfg := zap.NewProductionEncoderConfig()
	if development {
		encCfg = zap.NewDevelopmentEncoderConfig()
	}
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(w), lvl)

	var opts []zap.Option
	if development {
		opts = append(opts, zap.Development(), zap.AddCaller())
	}
	return zap.New(core, opts...), nil
}

// openWorkspace connects the configured store, migrates it, and puts the
// configured cache in front of it. The returned func releases everything.
func (a *app) openWorkspace(ctx context.Context) (*workspace.Workspace, func(), error) {
	s, err := store.Open(a.cfg.Store.Driver, a.cfg.Store.DSN, a.cfg.Store.Table)
	if err != nil {
		return nil, nil, err
	}
	if err := s.Migrate(ctx); err != nil {
		s.Close()
		return nil, nil, err
	}

	closers := []func(){func() { s.Close() }}
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
		a.log.Sync()
	}

	var docs store.Documents = s
	switch a.cfg.Cache.Backend {
	case config.CacheMemory:
		c := store.NewMemoryCache("attrkit:", time.Minute)
		closers = append(closers, func() { c.Close() })
		docs = store.NewCached(s, c, a.cfg.Cache.TTL, a.log)
	case config.CacheRedis:
		c, err := store.DialRedis(ctx, a.cfg.Cache.RedisAddr, "attrkit:")
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		closers = append(closers, func() { c.Close() })
		docs = store.NewCached(s, c, a.cfg.Cache.TTL, a.log)
	}

	a.log.Debug("store opened",
		zap.String("driver", a.cfg.Store.Driver),
		zap.String("table", a.cfg.Store.Table),
		zap.String("cache", a.cfg.Cache.Backend))
	return workspace.New(docs, nil, a.log), cleanup, nil
}
