package registry

import (
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"kernelprovider/internal/common/fsutil"
)

// Registry resolves kernel specs from an ordered list of search roots.
// It holds no cache: every call reads the filesystem, so specs edited on disk
// are picked up without a reload.
type Registry struct {
	dirs []string
	log  zerolog.Logger
}

// New constructs a Registry over dirs, searched in order. A nil logger
// disables logging.
func New(dirs []string, log *zerolog.Logger) *Registry {
	r := &Registry{dirs: append([]string(nil), dirs...), log: zerolog.Nop()}
	if log != nil {
		r.log = log.With().Str("component", "registry").Logger()
	}
	return r
}

// NewDefault searches the explicit dirs first, then the standard Jupyter locations.
func NewDefault(explicit []string, log *zerolog.Logger) *Registry {
	return New(fsutil.KernelSearchPath(explicit), log)
}

// Dirs returns the search roots.
func (r *Registry) Dirs() []string { return append([]string(nil), r.dirs...) }

// GetKernelSpec resolves name for providerID. The first root holding a spec of
// that name owned by providerID wins; an empty providerID matches any owner.
func (r *Registry) GetKernelSpec(name, providerID string) (*KernelSpec, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if !ValidName(name) {
		return nil, ErrNoSuchKernel(name, providerID)
	}
	for _, root := range r.dirs {
		found, err := scanDir(root)
		if err != nil {
			r.log.Warn().Err(err).Str("dir", root).Msg("skipping kernel dir")
			continue
		}
		dir, ok := found[name]
		if !ok {
			continue
		}
		spec, err := LoadSpec(dir)
		if err != nil {
			return nil, err
		}
		if providerID != "" && spec.ProviderID() != providerID {
			r.log.Debug().Str("kernel", name).Str("owner", spec.ProviderID()).Str("provider", providerID).
				Msg("kernel spec owned by another provider")
			continue
		}
		return spec, nil
	}
	return nil, ErrNoSuchKernel(name, providerID)
}

// FindKernels returns every spec owned by providerID sorted by name. Specs
// that fail to parse are logged and skipped.
func (r *Registry) FindKernels(providerID string) []*KernelSpec {
	seen := make(map[string]bool)
	var out []*KernelSpec
	for _, root := range r.dirs {
		found, err := scanDir(root)
		if err != nil {
			r.log.Warn().Err(err).Str("dir", root).Msg("skipping kernel dir")
			continue
		}
		for name, dir := range found {
			if seen[name] {
				continue
			}
			spec, err := LoadSpec(dir)
			if err != nil {
				r.log.Warn().Err(err).Str("kernel", name).Msg("invalid kernel spec")
				continue
			}
			if providerID != "" && spec.ProviderID() != providerID {
				continue
			}
			seen[name] = true
			out = append(out, spec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
