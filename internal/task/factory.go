package task

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/slok/taskspipeline/internal/log"
	"github.com/slok/taskspipeline/internal/model"
	"github.com/slok/taskspipeline/internal/utils/env"
)

// Constructor creates a leaf task of an extension kind.
type Constructor func(name string, params Params, logger log.Logger) (Task, error)

// FactoryConfig is the configuration of the task factory.
type FactoryConfig struct {
	Executor Executor
	Dialer   Dialer
	// Env is passed to every command task, command task env takes precedence.
	Env map[string]string
	// Extensions are the extension leaf kinds by their fully qualified type.
	Extensions map[string]Constructor
	Logger     log.Logger
}

func (c *FactoryConfig) defaults() error {
	if c.Executor == nil {
		c.Executor = ShellExecutor{}
	}

	for k := range c.Extensions {
		if !strings.Contains(k, ".") {
			return fmt.Errorf("extension type %q must be fully qualified (e.g `pkg.Kind`)", k)
		}
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "task.Factory"})
	return nil
}

// Factory instantiates task trees from their descriptions.
type Factory struct {
	executor   Executor
	dialer     Dialer
	env        map[string]string
	extensions map[string]Constructor
	logger     log.Logger
}

// NewFactory returns a new task factory.
func NewFactory(cfg FactoryConfig) (*Factory, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Factory{
		executor:   cfg.Executor,
		dialer:     cfg.Dialer,
		env:        cfg.Env,
		extensions: cfg.Extensions,
		logger:     cfg.Logger,
	}, nil
}

// Build instantiates the task tree described by desc. Any configuration error
// aborts the build.
func (f *Factory) Build(desc model.TaskDescription) (Task, error) {
	return f.build(desc, "rootTask")
}

var defaultCompositeNames = map[string]string{
	KindSequential: "⭣",
	KindParallel:   "⮆",
	KindRetry:      "↻",
}

// DisplayName returns the name a task of the description will have.
func DisplayName(desc model.TaskDescription) string {
	name := strings.TrimSpace(desc.Name)
	if glyph, ok := defaultCompositeNames[desc.Type]; ok {
		return strings.TrimSpace(glyph + " " + name)
	}
	if name == "" {
		return desc.Type
	}

	return name
}

func (f *Factory) build(desc model.TaskDescription, path string) (Task, error) {
	if desc.Type == "" {
		return nil, fmt.Errorf("%s: type is required: %w", path, model.ErrNotValid)
	}

	children := make([]Task, 0, len(desc.Tasks))
	for i, cd := range desc.Tasks {
		c, err := f.build(cd, fmt.Sprintf("%s.tasks[%d]", path, i))
		if err != nil {
			return nil, err
		}
		children = append(children, c)
	}

	name := DisplayName(desc)
	logger := f.logger.WithValues(log.Kv{"task": name})
	t, err := f.instantiate(desc.Type, name, Params(desc.Params), children, logger)
	if err != nil {
		return nil, fmt.Errorf("%s (%s): %w", path, desc.Type, err)
	}

	return t, nil
}

type parallelParams struct {
	MaxConcurrency int `yaml:"maxConcurrency"`
}

func (p parallelParams) validate() error {
	if p.MaxConcurrency < 0 {
		return fmt.Errorf("maxConcurrency can't be negative: %w", model.ErrNotValid)
	}
	return nil
}

type retryParams struct {
	MaxRetries          *int    `yaml:"maxRetries"`
	DelayBetweenRetries Seconds `yaml:"delayBetweenRetries"`
}

func (p *retryParams) defaults() {
	if p.MaxRetries == nil {
		one := 1
		p.MaxRetries = &one
	}
}

func (p retryParams) validate() error {
	if *p.MaxRetries < 1 {
		return fmt.Errorf("maxRetries must be at least 1: %w", model.ErrNotValid)
	}
	return nil
}

type waitForParams struct {
	WaitFor *Seconds `yaml:"waitFor"`
}

func (p waitForParams) validate() error {
	if p.WaitFor == nil {
		return requireParam("waitFor")
	}
	return nil
}

type waitUntilParams struct {
	WaitUntil string `yaml:"waitUntil"`
}

func (p waitUntilParams) validate() error {
	if strings.TrimSpace(p.WaitUntil) == "" {
		return requireParam("waitUntil")
	}
	return nil
}

type portConnectivityParams struct {
	Hosts   StringList `yaml:"hosts"`
	Timeout Seconds    `yaml:"timeout"`
}

func (p portConnectivityParams) validate() error {
	for _, h := range p.Hosts {
		if !strings.Contains(h, ":") {
			return fmt.Errorf("host %q must be in `host:port` format: %w", h, model.ErrNotValid)
		}
	}
	return nil
}

type runProcessParams struct {
	Cmd            string     `yaml:"cmd"`
	ExpectedOutput string     `yaml:"expectedOutput"`
	Env            StringList `yaml:"env"`
	Shell          string     `yaml:"shell"`
}

func (p runProcessParams) validate() error {
	if p.Cmd == "" {
		return requireParam("cmd")
	}
	return nil
}

func (f *Factory) instantiate(kind, name string, params Params, children []Task, logger log.Logger) (Task, error) {
	switch kind {
	case KindSequential:
		if err := params.Decode(&struct{}{}); err != nil {
			return nil, err
		}
		return NewSequential(name, children, logger), nil

	case KindParallel:
		var p parallelParams
		if err := params.Decode(&p); err != nil {
			return nil, err
		}
		if err := p.validate(); err != nil {
			return nil, err
		}
		return NewParallel(name, p.MaxConcurrency, children, logger), nil

	case KindRetry:
		var p retryParams
		if err := params.Decode(&p); err != nil {
			return nil, err
		}
		p.defaults()
		if err := p.validate(); err != nil {
			return nil, err
		}
		if len(children) != 1 {
			return nil, fmt.Errorf("retry requires exactly one child task, got %d: %w", len(children), model.ErrNotValid)
		}
		return NewRetry(name, *p.MaxRetries, p.DelayBetweenRetries.Duration(), children[0], logger), nil
	}

	// The rest are leaves.
	if len(children) > 0 {
		return nil, fmt.Errorf("leaf tasks can't have child tasks: %w", model.ErrNotValid)
	}

	switch kind {
	case KindRunProcess:
		return f.newRunProcess(name, params, logger)

	case KindWaitFor:
		var p waitForParams
		if err := params.Decode(&p); err != nil {
			return nil, err
		}
		if err := p.validate(); err != nil {
			return nil, err
		}
		return NewWaitFor(name, p.WaitFor.Duration(), logger), nil

	case KindWaitUntil:
		var p waitUntilParams
		if err := params.Decode(&p); err != nil {
			return nil, err
		}
		if err := p.validate(); err != nil {
			return nil, err
		}
		return NewWaitUntil(name, p.WaitUntil, logger)

	case KindPortConnectivity:
		var p portConnectivityParams
		if err := params.Decode(&p); err != nil {
			return nil, err
		}
		if err := p.validate(); err != nil {
			return nil, err
		}
		return NewPortConnectivity(name, PortConnectivityConfig{
			Hosts:   p.Hosts,
			Timeout: p.Timeout.Duration(),
			Dialer:  f.dialer,
		}, logger), nil
	}

	if ctor, ok := f.extensions[kind]; ok {
		return ctor(name, params, logger)
	}

	return nil, fmt.Errorf("unknown task type %q: %w", kind, model.ErrNotValid)
}

func (f *Factory) newRunProcess(name string, params Params, logger log.Logger) (Task, error) {
	var p runProcessParams
	if err := params.Decode(&p); err != nil {
		return nil, err
	}
	if err := p.validate(); err != nil {
		return nil, err
	}

	var expected *regexp.Regexp
	if p.ExpectedOutput != "" {
		var err error
		expected, err = regexp.Compile(p.ExpectedOutput)
		if err != nil {
			return nil, fmt.Errorf("invalid expectedOutput regex: %w: %w", err, model.ErrNotValid)
		}
	}

	taskEnv, err := env.ParseSpecs(p.Env)
	if err != nil {
		return nil, fmt.Errorf("invalid env: %w: %w", err, model.ErrNotValid)
	}

	executor := f.executor
	if p.Shell != "" {
		executor = ShellExecutor{Shell: strings.Fields(p.Shell)}
	}

	return NewRunProcess(name, RunProcessConfig{
		Cmd:            p.Cmd,
		ExpectedOutput: expected,
		Env:            env.MergeMaps(f.env, taskEnv),
		Executor:       executor,
	}, logger), nil
}
