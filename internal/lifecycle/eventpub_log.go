package lifecycle

import "github.com/rs/zerolog"

// LogPublisher writes each event as a structured log line.
type LogPublisher struct {
	log zerolog.Logger
}

// NewLogPublisher returns a publisher logging through log (nil drops events).
func NewLogPublisher(log *zerolog.Logger) *LogPublisher {
	p := &LogPublisher{log: zerolog.Nop()}
	if log != nil {
		p.log = log.With().Str("component", "lifecycle_events").Logger()
	}
	return p
}

// Publish logs ev; launch failures are logged at warn level.
func (p *LogPublisher) Publish(ev Event) {
	e := p.log.Info()
	if ev.Name == EventLaunchFailed {
		e = p.log.Warn()
	}
	e.Str("event", ev.Name).Str("kernel_id", ev.KernelID).Str("kernel", ev.Kernel).
		Fields(ev.Fields).Msg("kernel event")
}
