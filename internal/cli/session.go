package cli

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/joacominatel/telemetrydash/internal/app"
	"github.com/joacominatel/telemetrydash/internal/config"
	"github.com/joacominatel/telemetrydash/internal/database/postgres"
	"github.com/joacominatel/telemetrydash/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// flagKeys maps dashboard flags to their config keys.
var flagKeys = map[string]string{
	"schema":           "dashboard.schema",
	"table":            "dashboard.table",
	"timestamp-column": "dashboard.timestamp_column",
	"limit":            "dashboard.limit",
	"variant":          "dashboard.variant",
}

type sessionOptions struct {
	// defaultLog is the log path used when neither the flag nor the
	// config names one.
	defaultLog string
	console    bool
}

// session holds what every command needs for one fetch surface.
type session struct {
	cfg     *config.Config
	source  app.Source
	dsn     string
	logger  *zap.Logger
	service *app.Service
}

// loader returns a view.Loader that connects on first use.
func (rt *session) loader() *connectingLoader {
	return &connectingLoader{service: rt.service, dsn: rt.dsn}
}

func (rt *session) close() {
	if err := rt.service.Disconnect(); err != nil {
		rt.logger.Warn("disconnect", zap.Error(err))
	}
	_ = rt.logger.Sync()
}

// loadConfig reads the config file with the command's flags bound on top.
func loadConfig(flags *pflag.FlagSet) (*config.Loader, *config.Config, error) {
	loader, err := config.NewLoader("")
	if err != nil {
		return nil, nil, &app.ErrConfig{Cause: err}
	}
	if cfgFile != "" {
		loader.SetConfigFile(cfgFile)
	}
	if err := bindFlags(loader.Viper(), flags); err != nil {
		return nil, nil, &app.ErrConfig{Cause: err}
	}

	cfg, err := loader.Load()
	if err != nil {
		return nil, nil, &app.ErrConfig{Cause: err}
	}
	return loader, cfg, nil
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := flags.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind --%s: %w", name, err)
		}
	}
	return nil
}

// sourceFrom converts the validated dashboard section.
func sourceFrom(d config.Dashboard) app.Source {
	return app.Source{
		Schema:          d.Schema,
		Table:           d.Table,
		TimestampColumn: d.TimestampColumn,
		Limit:           uint64(d.Limit),
		Variant:         app.Variant(d.Variant),
	}
}

func setup(cmd *cobra.Command, opts sessionOptions) (*session, error) {
	_, cfg, err := loadConfig(cmd.Flags())
	if err != nil {
		return nil, err
	}
	if err := cfg.Dashboard.Validate(); err != nil {
		return nil, &app.ErrConfig{Cause: err}
	}

	logPath := logFileFlag
	if logPath == "" {
		logPath = cfg.Preferences.LogFile
	}
	if logPath == "" {
		logPath = opts.defaultLog
	}
	logger, err := logging.New(logging.Options{
		Path:    logPath,
		Debug:   debugFlag || cfg.Preferences.Debug,
		Console: opts.console,
	})
	if err != nil {
		return nil, err
	}

	dsn, err := config.ResolveDSN(cfg, dsnFlag, os.Getenv, secrets)
	if err != nil {
		return nil, &app.ErrConfig{Cause: err}
	}

	source := sourceFrom(cfg.Dashboard)
	logger.Debug("configured",
		zap.String("dsn", logging.Mask(dsn)),
		zap.String("table", source.Schema+"."+source.Table),
		zap.String("variant", string(source.Variant)),
		zap.Uint64("limit", source.Limit),
	)

	return &session{
		cfg:     cfg,
		source:  source,
		dsn:     dsn,
		logger:  logger,
		service: app.NewService(postgres.New(), source, logger),
	}, nil
}

// connectingLoader connects on the first fetch cycle and reuses the pool
// after that. A failed connect is retried by the next cycle.
type connectingLoader struct {
	service   *app.Service
	dsn       string
	mu        sync.Mutex
	connected bool
}

func (l *connectingLoader) LoadSnapshot(ctx context.Context) (*app.Snapshot, error) {
	if err := l.connect(ctx); err != nil {
		return nil, err
	}
	return l.service.LoadSnapshot(ctx)
}

func (l *connectingLoader) connect(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.connected {
		return nil
	}
	if err := l.service.Connect(ctx, l.dsn); err != nil {
		return err
	}
	l.connected = true
	return nil
}
