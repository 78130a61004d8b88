// Package kernels keeps the handles of kernels launched through a provider so
// that they can be listed and shut down later.
package kernels

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"kernelprovider/internal/lifecycle"
	"kernelprovider/pkg/types"
)

// Launcher is the subset of provider.Provider the tracker uses.
type Launcher interface {
	Launch(ctx context.Context, name, cwd string, kernelParams map[string]any) (types.ConnectionInfo, lifecycle.KernelManager, error)
}

type kernelNotFoundError struct{ id string }

func (e kernelNotFoundError) Error() string { return "kernel not found: " + e.id }

// ErrKernelNotFound returns an error for an unknown kernel id.
func ErrKernelNotFound(id string) error { return kernelNotFoundError{id: id} }

// IsKernelNotFound reports whether err indicates an unknown kernel id.
func IsKernelNotFound(err error) bool {
	var e kernelNotFoundError
	return errors.As(err, &e)
}

type entry struct {
	km   lifecycle.KernelManager
	conn types.ConnectionInfo
}

// Tracker records running kernels by id.
type Tracker struct {
	launcher Launcher
	log      zerolog.Logger

	mu      sync.RWMutex
	kernels map[string]entry
}

// NewTracker returns a Tracker launching through l.
func NewTracker(l Launcher, log *zerolog.Logger) *Tracker {
	t := &Tracker{launcher: l, kernels: make(map[string]entry), log: zerolog.Nop()}
	if log != nil {
		t.log = log.With().Str("component", "tracker").Logger()
	}
	return t
}

// Launch starts a kernel and records its handle.
func (t *Tracker) Launch(ctx context.Context, name, cwd string, kernelParams map[string]any) (types.KernelInfo, error) {
	conn, km, err := t.launcher.Launch(ctx, name, cwd, kernelParams)
	if err != nil {
		return types.KernelInfo{}, err
	}
	if km == nil {
		return types.KernelInfo{}, errors.New("launcher returned no kernel manager")
	}
	t.mu.Lock()
	t.kernels[km.ID()] = entry{km: km, conn: conn}
	t.mu.Unlock()
	t.log.Info().Str("kernel_id", km.ID()).Str("kernel", name).Int("pid", km.PID()).Msg("kernel tracked")
	return info(km, conn), nil
}

// Get returns the kernel with id. A kernel that has exited on its own is
// reported once with Alive false and then forgotten.
func (t *Tracker) Get(id string) (types.KernelInfo, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.kernels[id]
	if !ok {
		return types.KernelInfo{}, ErrKernelNotFound(id)
	}
	ki := info(e.km, e.conn)
	if !ki.Alive {
		delete(t.kernels, id)
		t.log.Info().Str("kernel_id", id).Msg("kernel exited; untracked")
	}
	return ki, nil
}

// List returns the live kernels ordered by start time, then id. Exited
// kernels are dropped from the tracker.
func (t *Tracker) List() []types.KernelInfo {
	t.mu.Lock()
	out := make([]types.KernelInfo, 0, len(t.kernels))
	for id, e := range t.kernels {
		ki := info(e.km, e.conn)
		if !ki.Alive {
			delete(t.kernels, id)
			t.log.Info().Str("kernel_id", id).Msg("kernel exited; untracked")
			continue
		}
		out = append(out, ki)
	}
	t.mu.Unlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartedAt != out[j].StartedAt {
			return out[i].StartedAt < out[j].StartedAt
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Shutdown stops the kernel with id and forgets it.
func (t *Tracker) Shutdown(ctx context.Context, id string) error {
	t.mu.Lock()
	e, ok := t.kernels[id]
	delete(t.kernels, id)
	t.mu.Unlock()
	if !ok {
		return ErrKernelNotFound(id)
	}
	t.log.Info().Str("kernel_id", id).Msg("shutting down kernel")
	return e.km.Shutdown(ctx)
}

// ShutdownAll stops every tracked kernel and returns the joined errors.
func (t *Tracker) ShutdownAll(ctx context.Context) error {
	t.mu.Lock()
	all := t.kernels
	t.kernels = make(map[string]entry)
	t.mu.Unlock()

	var errs []error
	for id, e := range all {
		if err := e.km.Shutdown(ctx); err != nil {
			errs = append(errs, err)
			t.log.Warn().Err(err).Str("kernel_id", id).Msg("shutdown failed")
		}
	}
	return errors.Join(errs...)
}

func info(km lifecycle.KernelManager, conn types.ConnectionInfo) types.KernelInfo {
	return types.KernelInfo{
		ID:         km.ID(),
		Name:       km.KernelName(),
		PID:        km.PID(),
		Alive:      km.Alive(),
		StartedAt:  km.StartedAt().Unix(),
		Connection: conn,
	}
}
