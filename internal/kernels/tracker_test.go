package kernels

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"kernelprovider/internal/lifecycle"
	"kernelprovider/pkg/types"
)

type stubKernel struct {
	id       string
	started  time.Time
	shutdown atomic.Int32
	exited   atomic.Bool
	err      error
}

func (k *stubKernel) ID() string                           { return k.id }
func (k *stubKernel) KernelName() string                   { return "stub" }
func (k *stubKernel) PID() int                             { return 42 }
func (k *stubKernel) ConnectionInfo() types.ConnectionInfo { return types.ConnectionInfo{} }
func (k *stubKernel) StartedAt() time.Time                 { return k.started }
func (k *stubKernel) Alive() bool                          { return k.shutdown.Load() == 0 && !k.exited.Load() }
func (k *stubKernel) Wait() error                          { return nil }
func (k *stubKernel) Kill() error                          { return nil }
func (k *stubKernel) Shutdown(context.Context) error {
	k.shutdown.Add(1)
	return k.err
}

type stubLauncher struct {
	next []*stubKernel
	err  error
}

func (s *stubLauncher) Launch(ctx context.Context, name, cwd string, params map[string]any) (types.ConnectionInfo, lifecycle.KernelManager, error) {
	if s.err != nil {
		return types.ConnectionInfo{}, nil, s.err
	}
	k := s.next[0]
	s.next = s.next[1:]
	return types.ConnectionInfo{KernelName: name, Key: "k-" + k.id}, k, nil
}

func TestTracker_LaunchListShutdown(t *testing.T) {
	now := time.Now()
	a := &stubKernel{id: "a", started: now}
	b := &stubKernel{id: "b", started: now.Add(time.Second)}
	tr := NewTracker(&stubLauncher{next: []*stubKernel{b, a}}, nil)
	ctx := context.Background()

	if _, err := tr.Launch(ctx, "py", "", nil); err != nil {
		t.Fatalf("launch: %v", err)
	}
	ki, err := tr.Launch(ctx, "py", "", nil)
	if err != nil {
		t.Fatalf("launch: %v", err)
	}
	if ki.ID != "a" || ki.Connection.Key != "k-a" || ki.PID != 42 || !ki.Alive {
		t.Fatalf("unexpected info: %+v", ki)
	}

	list := tr.List()
	if len(list) != 2 || list[0].ID != "a" || list[1].ID != "b" {
		t.Fatalf("expected [a b] by start time, got %+v", list)
	}

	if err := tr.Shutdown(ctx, "a"); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if a.shutdown.Load() != 1 {
		t.Fatalf("expected kernel a shut down once")
	}
	if _, err := tr.Get("a"); !IsKernelNotFound(err) {
		t.Fatalf("expected not found after shutdown, got %v", err)
	}
	if err := tr.Shutdown(ctx, "a"); !IsKernelNotFound(err) {
		t.Fatalf("expected not found on second shutdown, got %v", err)
	}
}

func TestTracker_LaunchErrorNotTracked(t *testing.T) {
	boom := errors.New("boom")
	tr := NewTracker(&stubLauncher{err: boom}, nil)
	if _, err := tr.Launch(context.Background(), "py", "", nil); err != boom {
		t.Fatalf("expected launcher error, got %v", err)
	}
	if len(tr.List()) != 0 {
		t.Fatalf("failed launch must not be tracked")
	}
}

func TestTracker_ShutdownAllJoinsErrors(t *testing.T) {
	bad := errors.New("stuck")
	a := &stubKernel{id: "a", err: bad}
	b := &stubKernel{id: "b"}
	tr := NewTracker(&stubLauncher{next: []*stubKernel{a, b}}, nil)
	_, _ = tr.Launch(context.Background(), "py", "", nil)
	_, _ = tr.Launch(context.Background(), "py", "", nil)

	err := tr.ShutdownAll(context.Background())
	if !errors.Is(err, bad) {
		t.Fatalf("expected joined error containing %v, got %v", bad, err)
	}
	if a.shutdown.Load() != 1 || b.shutdown.Load() != 1 {
		t.Fatalf("every kernel must be shut down")
	}
	if len(tr.List()) != 0 {
		t.Fatalf("tracker must be empty after ShutdownAll")
	}
}

func TestTracker_ForgetsExitedKernels(t *testing.T) {
	now := time.Now()
	a := &stubKernel{id: "a", started: now}
	b := &stubKernel{id: "b", started: now.Add(time.Second)}
	c := &stubKernel{id: "c", started: now.Add(2 * time.Second)}
	tr := NewTracker(&stubLauncher{next: []*stubKernel{a, b, c}}, nil)
	for range 3 {
		if _, err := tr.Launch(context.Background(), "py", "", nil); err != nil {
			t.Fatalf("launch: %v", err)
		}
	}

	a.exited.Store(true)
	list := tr.List()
	if len(list) != 2 || list[0].ID != "b" || list[1].ID != "c" {
		t.Fatalf("expected exited kernel dropped, got %+v", list)
	}
	if _, err := tr.Get("a"); !IsKernelNotFound(err) {
		t.Fatalf("expected a forgotten after List, got %v", err)
	}

	b.exited.Store(true)
	ki, err := tr.Get("b")
	if err != nil || ki.Alive {
		t.Fatalf("expected exited kernel reported once, got %+v %v", ki, err)
	}
	if _, err := tr.Get("b"); !IsKernelNotFound(err) {
		t.Fatalf("expected b forgotten after Get, got %v", err)
	}
	if b.shutdown.Load() != 0 {
		t.Fatalf("exited kernel must not be shut down")
	}
}
