package provider

import (
	"context"
	"fmt"
	"maps"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"kernelprovider/internal/lifecycle"
	"kernelprovider/internal/registry"
	"kernelprovider/pkg/types"
)

// Registry is the kernel spec lookup a Provider depends on.
type Registry interface {
	GetKernelSpec(name, providerID string) (*registry.KernelSpec, error)
	FindKernels(providerID string) []*registry.KernelSpec
}

// Config encapsulates everything a Provider needs. AppConfig is the provider's
// own section of the application configuration; nil means empty.
type Config struct {
	ID                    string             `validate:"required"`
	ClassName             string             `validate:"required"`
	LifecycleManagerClass string             `validate:"required"`
	Registry              Registry           `validate:"required"`
	Launcher              lifecycle.Launcher `validate:"required"`
	AppConfig             map[string]any
	Logger                *zerolog.Logger
}

// Provider launches kernels whose spec names its lifecycle manager class.
// It is stateless between calls and safe for concurrent use as long as its
// Registry and Launcher are.
type Provider struct {
	id             string
	className      string
	lifecycleClass string
	registry       Registry
	launcher       lifecycle.Launcher
	appConfig      map[string]any
	log            zerolog.Logger
}

var validate = validator.New()

// New constructs a Provider from cfg.
func New(cfg Config) (*Provider, error) {
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid provider config: %w", err)
	}
	p := &Provider{
		id:             cfg.ID,
		className:      cfg.ClassName,
		lifecycleClass: cfg.LifecycleManagerClass,
		registry:       cfg.Registry,
		launcher:       cfg.Launcher,
		appConfig:      maps.Clone(cfg.AppConfig),
		log:            zerolog.Nop(),
	}
	if cfg.Logger != nil {
		p.log = cfg.Logger.With().Str("provider", cfg.ID).Logger()
	}
	return p, nil
}

// ID is the provider id that scopes kernel specs.
func (p *Provider) ID() string { return p.id }

// ClassName is the provider's class name, which selects its app-config section.
func (p *Provider) ClassName() string { return p.className }

// LifecycleManagerClass is the class_name a spec must carry to launch here.
func (p *Provider) LifecycleManagerClass() string { return p.lifecycleClass }

// FindKernels lists the kernel specs scoped to this provider.
func (p *Provider) FindKernels() []*registry.KernelSpec {
	return p.registry.FindKernels(p.id)
}

// Launch resolves name and launches it, blocking until the launcher returns.
// cwd may be empty; a nil kernelParams is sent as an empty map. The launcher's
// results are returned unmodified.
func (p *Provider) Launch(ctx context.Context, name, cwd string, kernelParams map[string]any) (types.ConnectionInfo, lifecycle.KernelManager, error) {
	spec, err := p.registry.GetKernelSpec(name, p.id)
	if err != nil {
		launchesTotal.WithLabelValues(p.id, outcomeSpecError).Inc()
		return types.ConnectionInfo{}, nil, err
	}
	info, ok := p.lifecycleInfo(spec)
	if !ok {
		launchesTotal.WithLabelValues(p.id, outcomeConfigError).Inc()
		return types.ConnectionInfo{}, nil, ErrConfig(name, spec.ResourceDir)
	}
	if kernelParams == nil {
		kernelParams = map[string]any{}
	}
	req := lifecycle.Request{
		Spec:         spec,
		Lifecycle:    info,
		Cwd:          cwd,
		KernelParams: kernelParams,
		AppConfig:    p.appConfigSection(),
	}
	p.log.Debug().Str("kernel", name).Str("class_name", info.ClassName).Str("cwd", cwd).Msg("launching kernel")
	conn, km, err := p.launcher.Launch(ctx, req)
	if err != nil {
		launchesTotal.WithLabelValues(p.id, outcomeLaunchError).Inc()
		return conn, km, err
	}
	launchesTotal.WithLabelValues(p.id, outcomeOK).Inc()
	return conn, km, nil
}

// LaunchAsync is not supported: it returns immediately without launching.
func (p *Provider) LaunchAsync(ctx context.Context, name, cwd string) error {
	p.log.Debug().Str("kernel", name).Msg("async launch is not supported; ignoring")
	return nil
}

// lifecycleInfo resolves the spec's lifecycle_manager stanza for this provider.
func (p *Provider) lifecycleInfo(spec *registry.KernelSpec) (lifecycle.Info, bool) {
	info, ok := ResolveLifecycle(spec.Metadata, p.lifecycleClass)
	if !ok {
		if cn := spec.LifecycleClass(); cn != "" {
			p.log.Debug().Str("kernel", spec.Name).Str("class_name", cn).Str("expected", p.lifecycleClass).
				Msg("lifecycle manager class mismatch")
		}
	}
	return info, ok
}

// appConfigSection returns a copy of the provider's application config.
func (p *Provider) appConfigSection() map[string]any {
	if p.appConfig == nil {
		return map[string]any{}
	}
	return maps.Clone(p.appConfig)
}
