package lifecycle

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Option keys understood by LocalLauncher. They are looked up in the
// lifecycle config first, then in the provider's app config.
const (
	OptIP           = "ip"
	OptPortRange    = "port_range"
	OptStartupGrace = "startup_grace"
	ParamEnv        = "env"
)

// launchOptions are the effective settings for one launch.
type launchOptions struct {
	ip           string
	portStart    int
	portEnd      int
	startupGrace time.Duration
	env          map[string]string
}

// lookup returns the first value stored under key in sources.
func lookup(key string, sources ...map[string]any) (any, bool) {
	for _, src := range sources {
		if v, ok := src[key]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func (l *LocalLauncher) resolveOptions(req Request) (launchOptions, error) {
	opts := launchOptions{
		ip:           l.cfg.IP,
		portStart:    l.cfg.PortStart,
		portEnd:      l.cfg.PortEnd,
		startupGrace: l.cfg.StartupGrace,
	}
	srcs := []map[string]any{req.Lifecycle.Config, req.AppConfig}

	if v, ok := lookup(OptIP, srcs...); ok {
		s, ok := v.(string)
		if !ok || strings.TrimSpace(s) == "" {
			return opts, fmt.Errorf("%s must be a non-empty string, got %v", OptIP, v)
		}
		opts.ip = strings.TrimSpace(s)
	}
	if v, ok := lookup(OptPortRange, srcs...); ok {
		s, ok := v.(string)
		if !ok {
			return opts, fmt.Errorf("%s must be a string like \"lo..hi\", got %v", OptPortRange, v)
		}
		lo, hi, err := parsePortRange(s)
		if err != nil {
			return opts, err
		}
		opts.portStart, opts.portEnd = lo, hi
	}
	if v, ok := lookup(OptStartupGrace, srcs...); ok {
		d, err := parseDuration(v)
		if err != nil {
			return opts, fmt.Errorf("%s: %w", OptStartupGrace, err)
		}
		opts.startupGrace = d
	}
	if v, ok := req.KernelParams[ParamEnv]; ok && v != nil {
		env, err := stringMap(v)
		if err != nil {
			return opts, fmt.Errorf("kernel_params.%s: %w", ParamEnv, err)
		}
		opts.env = env
	}
	return opts, nil
}

// parsePortRange accepts "lo..hi"; "0..0" and "" mean any port.
func parsePortRange(s string) (int, int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, 0, nil
	}
	lo, hi, ok := strings.Cut(s, "..")
	if !ok {
		return 0, 0, fmt.Errorf("invalid %s %q: expected lo..hi", OptPortRange, s)
	}
	a, err1 := strconv.Atoi(strings.TrimSpace(lo))
	b, err2 := strconv.Atoi(strings.TrimSpace(hi))
	if err1 != nil || err2 != nil || a < 0 || b > 65535 || a > b {
		return 0, 0, fmt.Errorf("invalid %s %q", OptPortRange, s)
	}
	if a == 0 && b == 0 {
		return 0, 0, nil
	}
	if a == 0 {
		return 0, 0, fmt.Errorf("invalid %s %q: lower bound must be positive", OptPortRange, s)
	}
	if b-a+1 < numChannels {
		return 0, 0, fmt.Errorf("%s %q holds fewer than %d ports", OptPortRange, s, numChannels)
	}
	return a, b, nil
}

// parseDuration accepts a Go duration string or a number of seconds.
func parseDuration(v any) (time.Duration, error) {
	switch t := v.(type) {
	case string:
		return time.ParseDuration(t)
	case int:
		return time.Duration(t) * time.Second, nil
	case int64:
		return time.Duration(t) * time.Second, nil
	case float64:
		return time.Duration(t * float64(time.Second)), nil
	default:
		return 0, fmt.Errorf("unsupported value %v (%T)", v, v)
	}
}

func stringMap(v any) (map[string]string, error) {
	switch m := v.(type) {
	case map[string]string:
		out := make(map[string]string, len(m))
		for k, s := range m {
			out[k] = s
		}
		return out, nil
	case map[string]any:
		out := make(map[string]string, len(m))
		for k, x := range m {
			if s, ok := x.(string); ok {
				out[k] = s
				continue
			}
			out[k] = fmt.Sprint(x)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected an object, got %T", v)
	}
}
