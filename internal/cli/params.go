package cli

import (
	"fmt"
	"strings"
)

// parseParams turns k=v pairs into kernel params. Keys of the form env.NAME
// are collected into the "env" map.
func parseParams(pairs []string) (map[string]any, error) {
	out := map[string]any{}
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid param %q: expected key=value", p)
		}
		if name, isEnv := strings.CutPrefix(k, "env."); isEnv {
			if name == "" {
				return nil, fmt.Errorf("invalid param %q: empty env name", p)
			}
			env, _ := out["env"].(map[string]any)
			if env == nil {
				env = map[string]any{}
				out["env"] = env
			}
			env[name] = v
			continue
		}
		out[k] = v
	}
	return out, nil
}
