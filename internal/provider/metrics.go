package provider

import "github.com/prometheus/client_golang/prometheus"

// Outcome label values for launchesTotal.
const (
	outcomeOK          = "ok"
	outcomeSpecError   = "spec_error"
	outcomeConfigError = "config_error"
	outcomeLaunchError = "launch_error"
)

var launchesTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "kernelprovider",
		Subsystem: "provider",
		Name:      "launches_total",
		Help:      "Kernel launch attempts by provider and outcome",
	},
	[]string{"provider", "outcome"},
)

func init() {
	prometheus.MustRegister(launchesTotal)
}
