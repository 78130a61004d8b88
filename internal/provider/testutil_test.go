package provider

import (
	"context"
	"time"

	"kernelprovider/internal/lifecycle"
	"kernelprovider/internal/registry"
	"kernelprovider/pkg/types"
)

const (
	testProviderID = "local"
	testClass      = "LocalKernelProvider"
	testLifecycle  = "LocalKernelLifecycleManager"
)

// fakeRegistry serves specs from a map and fails unknown names.
type fakeRegistry struct {
	specs map[string]*registry.KernelSpec
	err   error
	calls []string
}

func (f *fakeRegistry) GetKernelSpec(name, providerID string) (*registry.KernelSpec, error) {
	f.calls = append(f.calls, name+"@"+providerID)
	if f.err != nil {
		return nil, f.err
	}
	s, ok := f.specs[name]
	if !ok {
		return nil, registry.ErrNoSuchKernel(name, providerID)
	}
	return s, nil
}

func (f *fakeRegistry) FindKernels(providerID string) []*registry.KernelSpec {
	var out []*registry.KernelSpec
	for _, s := range f.specs {
		if s.ProviderID() == providerID {
			out = append(out, s)
		}
	}
	return out
}

// fakeLauncher records requests and returns canned results.
type fakeLauncher struct {
	requests []lifecycle.Request
	conn     types.ConnectionInfo
	km       lifecycle.KernelManager
	err      error
}

func (f *fakeLauncher) Launch(ctx context.Context, req lifecycle.Request) (types.ConnectionInfo, lifecycle.KernelManager, error) {
	f.requests = append(f.requests, req)
	return f.conn, f.km, f.err
}

// fakeKernel is a KernelManager that is never backed by a process.
type fakeKernel struct{ id string }

func (k fakeKernel) ID() string                           { return k.id }
func (k fakeKernel) KernelName() string                   { return "fake" }
func (k fakeKernel) PID() int                             { return 0 }
func (k fakeKernel) ConnectionInfo() types.ConnectionInfo { return types.ConnectionInfo{} }
func (k fakeKernel) StartedAt() time.Time                 { return time.Time{} }
func (k fakeKernel) Alive() bool                          { return false }
func (k fakeKernel) Wait() error                          { return nil }
func (k fakeKernel) Shutdown(context.Context) error       { return nil }
func (k fakeKernel) Kill() error                          { return nil }

// specWith builds a provider-owned spec with the given lifecycle stanza.
func specWith(name string, lifecycleStanza any) *registry.KernelSpec {
	meta := map[string]any{
		registry.MetaKernelProvider: map[string]any{registry.MetaProviderID: testProviderID},
	}
	if lifecycleStanza != nil {
		meta[registry.MetaLifecycleManager] = lifecycleStanza
	}
	return &registry.KernelSpec{
		Name:        name,
		ResourceDir: "/kernels/" + name,
		Argv:        []string{"kernel", "{connection_file}"},
		Metadata:    meta,
	}
}

func newTestProvider(reg *fakeRegistry, l *fakeLauncher, appConfig map[string]any) *Provider {
	p, err := New(Config{
		ID:                    testProviderID,
		ClassName:             testClass,
		LifecycleManagerClass: testLifecycle,
		Registry:              reg,
		Launcher:              l,
		AppConfig:             appConfig,
	})
	if err != nil {
		panic(err)
	}
	return p
}
