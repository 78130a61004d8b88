package lifecycle

// Event represents a kernel lifecycle event.
// Minimal and stable: name + kernel id/name and optional fields via key/values.
type Event struct {
	Name     string
	KernelID string
	Kernel   string
	Fields   map[string]any
}

// Event names published by LocalLauncher.
const (
	EventLaunchStart  = "launch_start"
	EventLaunchReady  = "launch_ready"
	EventLaunchFailed = "launch_failed"
	EventExit         = "exit"
	EventShutdown     = "shutdown"
)

// EventPublisher receives lifecycle events. Implementations should be
// lightweight and non-blocking; Publish must not panic.
type EventPublisher interface {
	Publish(Event)
}

// noopPublisher is the default; it drops events.
type noopPublisher struct{}

func (noopPublisher) Publish(Event) {}
