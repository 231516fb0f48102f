package cli

import (
	"fmt"
	"log/slog"

	"github.com/aretw0/eventable"
	"github.com/aretw0/eventable/internal/logging"
	"github.com/aretw0/eventable/pkg/adapters/memory"
	"github.com/aretw0/eventable/pkg/adapters/process"
	eventredis "github.com/aretw0/eventable/pkg/adapters/redis"
	"github.com/aretw0/eventable/pkg/config"
	"github.com/aretw0/eventable/pkg/domain"
	"github.com/aretw0/eventable/pkg/observability"
	"github.com/aretw0/eventable/pkg/ports"
	"github.com/aretw0/eventable/pkg/registry"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
)

// Options are the global command-line flags.
type Options struct {
	ConfigPath string
	LogLevel   string
}

// Subject is the receiver of command-line models. It is the payload of every
// event the CLI emits.
type Subject struct {
	Name string `json:"name"`
}

// Runtime is a fully wired model plus the collaborators commands need.
type Runtime struct {
	Config       config.Config
	Logger       *slog.Logger
	Model        *eventable.Model
	Events       *memory.Dispatcher
	Redis        *eventredis.Notifier
	Metrics      *observability.Metrics
	Prometheus   *prometheus.Registry
	Descriptions map[string]string // keyed by handler name

	output *outputSink
}

// Build loads the configuration and wires a Runtime.
func Build(opts Options) (*Runtime, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if opts.LogLevel != "" {
		cfg.LogLevel = opts.LogLevel
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	return NewRuntime(cfg, logging.New(level))
}

// NewRuntime wires a Runtime from an already loaded configuration.
//
// Events always reach the in-process dispatcher; with the redis notifier they
// are also published to Redis. Every event is counted and logged.
func NewRuntime(cfg config.Config, logger *slog.Logger) (*Runtime, error) {
	rt := &Runtime{
		Config:       cfg,
		Logger:       logger,
		Events:       memory.New(),
		Prometheus:   prometheus.NewRegistry(),
		Descriptions: map[string]string{},
		output:       &outputSink{},
	}
	rt.Metrics = observability.NewMetrics(rt.Prometheus)

	notifiers := []ports.Notifier{rt.Events}
	if cfg.Notifier == config.DriverRedis {
		client := redis.NewClient(&redis.Options{
			Addr:        cfg.Redis.Addr,
			Password:    cfg.Redis.Password,
			DB:          cfg.Redis.DB,
			DialTimeout: cfg.Redis.DialTimeout,
			Protocol:    cfg.Redis.Protocol,
		})
		rt.Redis = eventredis.NewFromClient(client,
			eventredis.WithPrefix(cfg.Redis.Prefix),
			eventredis.WithHistory(cfg.Redis.History),
			eventredis.WithLogger(logger),
		)
		notifiers = append(notifiers, rt.Redis)
	}

	var notifier ports.Notifier = observability.Multi(notifiers...)
	notifier = rt.Metrics.Notifier(notifier)
	notifier = observability.Logging(notifier, logger)

	reg, err := rt.loadActions()
	if err != nil {
		rt.Close()
		return nil, err
	}

	modelOpts := []eventable.Option{
		eventable.WithNotifier(notifier),
		eventable.WithRegistry(reg),
		eventable.WithLogger(logger),
		eventable.WithLifecycleHooks(rt.Metrics.Hooks()),
		eventable.WithoutBinding(),
	}
	if cfg.Veto {
		modelOpts = append(modelOpts, eventable.WithVeto())
	}

	rt.Model, err = eventable.New(&Subject{Name: cfg.Name}, modelOpts...)
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("error initializing model: %w", err)
	}
	return rt, nil
}

func (rt *Runtime) loadActions() (*registry.Registry, error) {
	var actions []process.ActionConfig
	if rt.Config.ActionsFile != "" {
		loaded, err := process.LoadActions(rt.Config.ActionsFile)
		if err != nil {
			return nil, err
		}
		actions = append(actions, loaded...)
	}
	for _, a := range rt.Config.Actions {
		actions = append(actions, process.ActionConfig{
			Name:        a.Name,
			Command:     a.Command,
			Args:        a.Args,
			Environment: a.Env,
			Description: a.Description,
		})
	}

	for _, a := range actions {
		rt.Descriptions[domain.HandlerName(a.Name)] = a.Description
	}

	reg := registry.NewRegistry()
	n := process.Register(reg, actions,
		process.WithLogger(rt.Logger),
		process.WithStdout(rt.output),
	)
	rt.Logger.Debug("Actions registered", "count", n)
	return reg, nil
}

// Close releases the Redis connection, if any.
func (rt *Runtime) Close() error {
	if rt.Redis != nil {
		return rt.Redis.Close()
	}
	return nil
}
