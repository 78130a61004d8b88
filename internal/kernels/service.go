package kernels

import (
	"context"

	"github.com/rs/zerolog"

	"kernelprovider/internal/provider"
	"kernelprovider/internal/registry"
	"kernelprovider/pkg/types"
)

// Service exposes a provider and its running kernels to the HTTP and CLI layers.
type Service struct {
	*Tracker
	provider *provider.Provider
}

// NewService wires a Tracker to p.
func NewService(p *provider.Provider, log *zerolog.Logger) *Service {
	return &Service{Tracker: NewTracker(p, log), provider: p}
}

// ProviderID returns the id kernel specs are scoped to.
func (s *Service) ProviderID() string { return s.provider.ID() }

// KernelSpecs lists the provider's kernel specs.
func (s *Service) KernelSpecs() []types.KernelSpecInfo {
	specs := s.provider.FindKernels()
	out := make([]types.KernelSpecInfo, 0, len(specs))
	for _, spec := range specs {
		out = append(out, SpecInfo(spec))
	}
	return out
}

// LaunchKernel launches req through the provider and tracks the result.
func (s *Service) LaunchKernel(ctx context.Context, req types.LaunchRequest) (types.KernelInfo, error) {
	return s.Launch(ctx, req.Name, req.Cwd, req.KernelParams)
}

// SpecInfo converts a registry spec to its wire form.
func SpecInfo(spec *registry.KernelSpec) types.KernelSpecInfo {
	return types.KernelSpecInfo{
		Name:             spec.Name,
		DisplayName:      spec.DisplayName,
		Language:         spec.Language,
		ResourceDir:      spec.ResourceDir,
		LifecycleManager: spec.LifecycleClass(),
	}
}
