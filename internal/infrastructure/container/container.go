// Package container provides dependency injection for the application.
package container

import (
	"io"
	"log/slog"

	"github.com/spf13/viper"

	"github.com/reglet-dev/nova/internal/application/services"
	domainservices "github.com/reglet-dev/nova/internal/domain/services"
	"github.com/reglet-dev/nova/internal/infrastructure/config"
	"github.com/reglet-dev/nova/internal/infrastructure/engine"
	"github.com/reglet-dev/nova/internal/infrastructure/matcher"
	"github.com/reglet-dev/nova/internal/infrastructure/modules"
	"github.com/reglet-dev/nova/internal/infrastructure/output"
	"github.com/reglet-dev/nova/internal/infrastructure/persistence/memory"
	"github.com/reglet-dev/nova/internal/infrastructure/redaction"
	"github.com/reglet-dev/nova/internal/infrastructure/system"
	"github.com/reglet-dev/nova/internal/version"
)

// Container holds all application dependencies.
type Container struct {
	viper      *viper.Viper
	systemCfg  *system.Config
	redactor   *redaction.Redactor
	catalog    *modules.Loader
	matcher    *matcher.Matcher
	service    *services.AuditService
	formatters *output.FormatterFactory
	logger     *slog.Logger
}

// Options configure the container.
type Options struct {
	// Logger, when nil, is built as a text logger on LogOutput that scrubs
	// secrets with the configured redactor.
	Logger    *slog.Logger
	LogOutput io.Writer
	// Viper, when set, is used instead of loading ConfigFile.
	Viper       *viper.Viper
	ConfigFile  string
	SearchPaths []string
	// Debug forces debug logging regardless of nova.debug.
	Debug bool
}

// New loads configuration and wires the audit service.
func New(opts Options) (*Container, error) {
	v := opts.Viper
	if v == nil {
		var err error
		v, err = config.LoadViper(opts.ConfigFile, opts.SearchPaths...)
		if err != nil {
			return nil, err
		}
	}

	systemCfg, err := system.FromViper(v)
	if err != nil {
		return nil, err
	}
	nova := systemCfg.Nova

	redactor, err := redaction.New(redaction.ConfigFromSystem(nova.Redaction), opts.Logger)
	if err != nil {
		return nil, err
	}

	if opts.Logger == nil {
		if opts.LogOutput == nil {
			opts.Logger = slog.Default()
		} else {
			opts.Logger = newLogger(opts.LogOutput, redactor, opts.Debug || nova.Debug)
		}
	}

	runtimeCfg := config.FromSystemConfig(systemCfg)
	exec := engine.NewEngine(engine.ExecutionConfig{
		ModuleTimeout:        runtimeCfg.ModuleTimeout,
		MaxConcurrentModules: runtimeCfg.MaxConcurrentModules,
	}, opts.Logger)

	profiles := config.NewProfileTreeLoader(version.Version, opts.Logger)
	catalog := modules.NewLoader(nova.ModuleDir, nova.ProfileDir, profiles, opts.Logger)

	hosts := matcher.New(matcher.DetectGrains(nova.ID, nova.Grains))
	opts.Logger.Debug("host grains detected", "id", hosts.ID())

	merger := domainservices.NewResultMerger().WithDataLimit(runtimeCfg.ErrorDataLimit)
	runner := services.NewAuditRunner(exec, merger, opts.Logger)
	resolver := services.NewTopfileResolver(hosts, opts.Logger)

	service := services.NewAuditService(
		catalog,
		config.NewViperSource(v),
		config.NewTopfileLoader(nova.ProfileDir),
		runner,
		resolver,
		opts.Logger,
	).WithRedactor(redactor).WithRunRepository(memory.NewRunRepository())

	return &Container{
		viper:      v,
		systemCfg:  systemCfg,
		redactor:   redactor,
		catalog:    catalog,
		matcher:    hosts,
		service:    service,
		formatters: output.NewFormatterFactory(),
		logger:     opts.Logger,
	}, nil
}

func newLogger(w io.Writer, redactor *redaction.Redactor, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(redaction.NewWriter(w, redactor), &slog.HandlerOptions{
		Level: level,
	}))
}

// AuditService returns the audit, top and load entry points.
func (c *Container) AuditService() *services.AuditService {
	return c.service
}

// Catalog returns the module and profile loader.
func (c *Container) Catalog() *modules.Loader {
	return c.catalog
}

// Matcher returns the host matcher used by top runs.
func (c *Container) Matcher() *matcher.Matcher {
	return c.matcher
}

// Formatters returns the report formatter factory.
func (c *Container) Formatters() *output.FormatterFactory {
	return c.formatters
}

// Redactor returns the secret scrubber shared by reports and logs.
func (c *Container) Redactor() *redaction.Redactor {
	return c.redactor
}

// SystemConfig returns the decoded configuration.
func (c *Container) SystemConfig() *system.Config {
	return c.systemCfg
}

// Viper returns the configuration store.
func (c *Container) Viper() *viper.Viper {
	return c.viper
}

// Logger returns the configured logger.
func (c *Container) Logger() *slog.Logger {
	return c.logger
}
