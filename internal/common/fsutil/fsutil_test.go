package fsutil

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home dir on this platform: %v", err)
	}
	got, err := ExpandHome("~/kernels")
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	if want := filepath.Join(home, "kernels"); got != want {
		t.Fatalf("expected %s got %s", want, got)
	}
	if got, _ := ExpandHome("/abs/path"); got != "/abs/path" {
		t.Fatalf("absolute path changed: %s", got)
	}
	if got, _ := ExpandHome("~"); got != home {
		t.Fatalf("expected home, got %s", got)
	}
}

func TestKernelSearchPath_OrderAndDedup(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix paths")
	}
	jp := t.TempDir()
	t.Setenv("JUPYTER_PATH", jp)
	t.Setenv("JUPYTER_DATA_DIR", "/data/jupyter")

	explicit := []string{"/opt/kernels", "/opt/kernels/"}
	dirs := KernelSearchPath(explicit)
	if len(dirs) < 3 {
		t.Fatalf("expected at least 3 dirs, got %v", dirs)
	}
	if dirs[0] != "/opt/kernels" {
		t.Fatalf("explicit dir must come first: %v", dirs)
	}
	if dirs[1] != filepath.Join(jp, "kernels") {
		t.Fatalf("JUPYTER_PATH entry must follow explicit dirs: %v", dirs)
	}
	if dirs[2] != "/data/jupyter/kernels" {
		t.Fatalf("user data dir expected third: %v", dirs)
	}
}

func TestIsDir(t *testing.T) {
	dir := t.TempDir()
	f := filepath.Join(dir, "kernel.json")
	if err := os.WriteFile(f, []byte("{}"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if !IsDir(dir) || IsDir(f) || IsDir(filepath.Join(dir, "missing")) {
		t.Fatalf("IsDir misreported")
	}
	if !PathExists(f) || PathExists(filepath.Join(dir, "missing")) {
		t.Fatalf("PathExists misreported")
	}
}
