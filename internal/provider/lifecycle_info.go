package provider

import (
	"kernelprovider/internal/lifecycle"
	"kernelprovider/internal/registry"
)

// ResolveLifecycle extracts the lifecycle_manager stanza from spec metadata.
// It reports false when the stanza is absent, has no class_name, or names a
// class other than expectedClass; several providers can share the metadata
// namespace this way. The returned Info carries a deep copy of config (never
// nil), so metadata is left untouched even when callers modify nested values.
func ResolveLifecycle(metadata map[string]any, expectedClass string) (lifecycle.Info, bool) {
	lm, ok := metadata[registry.MetaLifecycleManager].(map[string]any)
	if !ok || len(lm) == 0 {
		return lifecycle.Info{}, false
	}
	className, _ := lm[registry.MetaClassName].(string)
	if className == "" || className != expectedClass {
		return lifecycle.Info{}, false
	}
	info := lifecycle.Info{ClassName: className, Config: map[string]any{}}
	if cfg, ok := lm[registry.MetaConfig].(map[string]any); ok && cfg != nil {
		info.Config = cloneMap(cfg)
	}
	return info, true
}

// cloneMap copies m recursively through nested maps and slices.
func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	case []string:
		return append([]string(nil), t...)
	default:
		return v
	}
}
