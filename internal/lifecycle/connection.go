package lifecycle

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"kernelprovider/pkg/types"
)

// writeConnectionFile writes info as kernel-<id>.json under dir, readable
// only by the owner since it carries the signing key.
func writeConnectionFile(dir, id string, info types.ConnectionInfo) (string, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("runtime dir: %w", err)
	}
	b, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return "", err
	}
	p := filepath.Join(dir, "kernel-"+id+".json")
	if err := os.WriteFile(p, b, 0o600); err != nil {
		return "", fmt.Errorf("write connection file: %w", err)
	}
	return p, nil
}

// ReadConnectionFile parses a connection file written by a launcher.
func ReadConnectionFile(path string) (types.ConnectionInfo, error) {
	var info types.ConnectionInfo
	b, err := os.ReadFile(path)
	if err != nil {
		return info, err
	}
	if err := json.Unmarshal(b, &info); err != nil {
		return info, fmt.Errorf("parse %s: %w", path, err)
	}
	return info, nil
}
