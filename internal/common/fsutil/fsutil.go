package fsutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// ExpandHome expands a leading '~' to the user's home directory.
func ExpandHome(path string) (string, error) {
	if path == "" || path[0] != '~' {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home dir: %w", err)
	}
	if path == "~" {
		return home, nil
	}
	// handle cases like ~/.local/share/jupyter
	return filepath.Join(home, path[1:]), nil
}

// PathExists checks if the given path exists.
func PathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil || !errors.Is(err, os.ErrNotExist)
}

// IsDir reports whether path exists and is a directory.
func IsDir(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}

// UserDataDir returns the per-user Jupyter data directory.
func UserDataDir() string {
	if v := os.Getenv("JUPYTER_DATA_DIR"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Jupyter")
	case "windows":
		if appdata := os.Getenv("APPDATA"); appdata != "" {
			return filepath.Join(appdata, "jupyter")
		}
		return filepath.Join(home, ".jupyter", "data")
	default:
		if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
			return filepath.Join(xdg, "jupyter")
		}
		return filepath.Join(home, ".local", "share", "jupyter")
	}
}

// KernelSearchPath returns the kernel directories to scan, in priority order:
// explicit dirs, JUPYTER_PATH entries, the user data dir, then system dirs.
// Duplicates are dropped and '~' is expanded.
func KernelSearchPath(explicit []string) []string {
	var dirs []string
	dirs = append(dirs, explicit...)
	if jp := os.Getenv("JUPYTER_PATH"); jp != "" {
		for _, p := range filepath.SplitList(jp) {
			if p != "" {
				dirs = append(dirs, filepath.Join(p, "kernels"))
			}
		}
	}
	if ud := UserDataDir(); ud != "" {
		dirs = append(dirs, filepath.Join(ud, "kernels"))
	}
	if runtime.GOOS != "windows" {
		dirs = append(dirs, "/usr/local/share/jupyter/kernels", "/usr/share/jupyter/kernels")
	}

	seen := make(map[string]bool, len(dirs))
	out := make([]string, 0, len(dirs))
	for _, d := range dirs {
		exp, err := ExpandHome(d)
		if err != nil {
			continue
		}
		exp = filepath.Clean(exp)
		if seen[exp] {
			continue
		}
		seen[exp] = true
		out = append(out, exp)
	}
	return out
}
