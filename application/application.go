package application

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/lk2023060901/danmu-garden-packer/internal/network/packer"
	"github.com/lk2023060901/danmu-garden-packer/internal/network/serializer"
	zlog "github.com/lk2023060901/danmu-garden-packer/pkg/log"
	"github.com/lk2023060901/danmu-garden-packer/pkg/metrics"
	zviper "github.com/lk2023060901/danmu-garden-packer/pkg/util/viper"
)

// ConfigEnv names the environment variable that overrides the default config path.
const ConfigEnv = "DANMU_PACKER_CONFIG"

// Settings mirrors the top-level layout of the config file.
//
// Example:
//
//	log:
//	  level: info
//	  stdout: true
//	  rate-limit:
//	    enable: true
//	    credit-per-second: 1
//	    max-balance: 10
//	logging:
//	  packer:
//	    level: warn
//	    stdout: true
//	packer:
//	  max-message-size: 65536
//	  strict: true
//	serializer: packer
type Settings struct {
	Log        zlog.Config   `mapstructure:"log"`
	Packer     packer.Config `mapstructure:"packer"`
	Serializer string        `mapstructure:"serializer"`
}

// Application is the runtime container of the packer service.
// It owns configuration and wires logger, metrics, packer and serializer.
type Application struct {
	cfg        *zviper.Config
	settings   Settings
	loggers    map[string]*zlog.MLogger
	registry   *prometheus.Registry
	packer     *packer.Packer
	serializer serializer.Serializer
}

// New creates a new Application instance.
func New() *Application {
	return &Application{}
}

// Run is the entry of the application.
// It resolves the config file path with the following priority and loads it:
//  1. Default: ./config.yaml
//  2. Env: DANMU_PACKER_CONFIG
//  3. CLI: --config <path> or --config=<path>
func (a *Application) Run() error {
	path, err := resolveConfigPath(os.Args[1:])
	if err != nil {
		return err
	}
	return a.Load(path)
}

// Load reads the config file at path and initializes every component from it.
func (a *Application) Load(path string) error {
	cfg := zviper.New()
	cfg.SetDefault("serializer", serializer.KindPacker)
	if err := cfg.LoadFile(path); err != nil {
		return fmt.Errorf("failed to load config file %q: %w", path, err)
	}
	a.cfg = cfg

	if err := cfg.Unmarshal(&a.settings); err != nil {
		return fmt.Errorf("decode config file %q: %w", path, err)
	}

	if err := a.initLogging(); err != nil {
		return err
	}
	a.initMetrics()
	if err := a.initPacker(); err != nil {
		return err
	}
	return a.initSerializer()
}

// Close flushes buffered log entries of the global logger.
func (a *Application) Close() error {
	return zlog.Sync()
}

// Config returns the loaded configuration, if any.
func (a *Application) Config() *zviper.Config {
	return a.cfg
}

// Settings returns the decoded settings.
func (a *Application) Settings() Settings {
	return a.settings
}

// Registry returns the private prometheus registry holding the packer metrics.
func (a *Application) Registry() *prometheus.Registry {
	return a.registry
}

// Packer returns the packer built from the "packer" section.
func (a *Application) Packer() *packer.Packer {
	return a.packer
}

// Serializer returns the serializer selected by the "serializer" key.
func (a *Application) Serializer() serializer.Serializer {
	return a.serializer
}

// Logger returns a named logger created from configuration.
// If the name is unknown, it falls back to the global logger.
func (a *Application) Logger(name string) *zlog.MLogger {
	if lg, ok := a.loggers[name]; ok && lg != nil {
		return lg
	}
	return zlog.With(zlog.FieldModule(name))
}

// resolveConfigPath applies the default, env and CLI overrides in order.
func resolveConfigPath(args []string) (string, error) {
	configPath := "./config.yaml"

	if envPath := strings.TrimSpace(os.Getenv(ConfigEnv)); envPath != "" {
		configPath = envPath
	}

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--config" {
			if i+1 >= len(args) {
				return "", fmt.Errorf("missing value after --config")
			}
			configPath = args[i+1]
			i++
			continue
		}
		if strings.HasPrefix(arg, "--config=") {
			if val := strings.TrimPrefix(arg, "--config="); val != "" {
				configPath = val
			}
			continue
		}
	}
	return configPath, nil
}

// initLogging initializes the global logger from the "log" section and
// module-level loggers from the "logging" section.
func (a *Application) initLogging() error {
	logger, props, err := zlog.InitLogger(&a.settings.Log)
	if err != nil {
		return fmt.Errorf("init global logger: %w", err)
	}
	zlog.ReplaceGlobals(logger, props)
	zlog.SetRateLimit(a.settings.Log.RateLimit)

	return a.initModuleLoggersFromConfig()
}

// initModuleLoggersFromConfig creates named loggers from YAML config under "logging" key.
//
// Example:
//
//	logging:
//	  packer:
//	    level: debug
//	    stdout: true
//	    file:
//	      rootpath: ./logs
//	      filename: packer.log
func (a *Application) initModuleLoggersFromConfig() error {
	raw := make(map[string]zlog.Config)
	if err := a.cfg.UnmarshalKey("logging", &raw); err != nil {
		return err
	}
	if len(raw) == 0 {
		return nil
	}

	a.loggers = make(map[string]*zlog.MLogger, len(raw))
	for name, lc := range raw {
		cfgCopy := lc
		logger, _, err := zlog.InitLogger(&cfgCopy)
		if err != nil {
			return fmt.Errorf("init module logger %q: %w", name, err)
		}
		a.loggers[name] = &zlog.MLogger{Logger: logger.With(zlog.FieldModule(name))}
	}
	return nil
}

// initMetrics registers the packer collectors on a private registry.
func (a *Application) initMetrics() {
	a.registry = prometheus.NewRegistry()
	metrics.Register(a.registry)
}

// initPacker builds the packer and installs it as the package default.
func (a *Application) initPacker() error {
	p, err := packer.New(a.settings.Packer)
	if err != nil {
		return fmt.Errorf("init packer: %w", err)
	}
	zlog.Bind(p, a.Logger("packer"))
	packer.SetDefault(p)
	a.packer = p

	ctx := zlog.WithModule(context.Background(), "application")
	zlog.Ctx(ctx).Info("packer initialized",
		zlog.FieldComponent("packer"),
		zap.Int("maxMessageSize", a.settings.Packer.MaxMessageSize),
		zap.Bool("strict", a.settings.Packer.Strict))
	return nil
}

func (a *Application) initSerializer() error {
	s, err := serializer.New(a.settings.Serializer, a.packer)
	if err != nil {
		return fmt.Errorf("init serializer: %w", err)
	}
	a.serializer = s
	return nil
}
