package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"kernelprovider/internal/common/fsutil"
)

// KernelFile is the file a kernel spec directory must contain.
const KernelFile = "kernel.json"

var validName = regexp.MustCompile(`^[a-z0-9._\-]+$`)

// ValidName reports whether name is a legal kernel spec name.
func ValidName(name string) bool { return validName.MatchString(name) }

// LoadSpec reads dir/kernel.json. The spec name is the lowercased base name of dir.
func LoadSpec(dir string) (*KernelSpec, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("abs path: %w", err)
	}
	b, err := os.ReadFile(filepath.Join(abs, KernelFile))
	if err != nil {
		return nil, err
	}
	var spec KernelSpec
	if err := json.Unmarshal(b, &spec); err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Join(abs, KernelFile), err)
	}
	if len(spec.Argv) == 0 {
		return nil, fmt.Errorf("%s: argv is empty", filepath.Join(abs, KernelFile))
	}
	spec.Name = strings.ToLower(filepath.Base(abs))
	spec.ResourceDir = abs
	if spec.Metadata == nil {
		spec.Metadata = map[string]any{}
	}
	return &spec, nil
}

// scanDir lists candidate kernel directories under root keyed by lowercased
// name. Entries without kernel.json or with an invalid name are skipped, and
// symlinked spec directories are followed. A missing root yields an empty
// result.
func scanDir(root string) (map[string]string, error) {
	if !fsutil.IsDir(root) {
		return nil, nil
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}
	out := make(map[string]string, len(entries))
	for _, e := range entries {
		name := strings.ToLower(e.Name())
		if !ValidName(name) {
			continue
		}
		p := filepath.Join(root, e.Name())
		if !fsutil.IsDir(p) || !fsutil.PathExists(filepath.Join(p, KernelFile)) {
			continue
		}
		out[name] = p
	}
	return out, nil
}
