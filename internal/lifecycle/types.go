package lifecycle

import (
	"context"
	"time"

	"kernelprovider/internal/registry"
	"kernelprovider/pkg/types"
)

// Info is a resolved lifecycle_manager stanza. Config is never nil.
type Info struct {
	ClassName string
	Config    map[string]any
}

// Request carries the launch parameters assembled by a provider for one call.
type Request struct {
	Spec         *registry.KernelSpec
	Lifecycle    Info
	Cwd          string
	KernelParams map[string]any
	AppConfig    map[string]any
}

// Launcher starts a kernel and returns its connection info and a handle.
type Launcher interface {
	Launch(ctx context.Context, req Request) (types.ConnectionInfo, KernelManager, error)
}

// KernelManager is the handle to a launched kernel.
type KernelManager interface {
	ID() string
	KernelName() string
	PID() int
	ConnectionInfo() types.ConnectionInfo
	StartedAt() time.Time
	// Alive reports whether the kernel process is still running.
	Alive() bool
	// Wait blocks until the kernel exits and returns its exit error.
	Wait() error
	// Shutdown asks the kernel to terminate and force-kills it if it does not
	// exit within the shutdown grace period or before ctx is done.
	Shutdown(ctx context.Context) error
	Kill() error
}
