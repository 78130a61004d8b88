package lifecycle

import (
	"context"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"testing"
	"time"

	"kernelprovider/internal/registry"
)

// requireShell skips tests that need a POSIX shell.
func requireShell(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires /bin/sh")
	}
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skipf("sh not found: %v", err)
	}
	return sh
}

// shellSpec builds a spec whose argv runs script with $0 set to the connection file.
func shellSpec(sh, name, script string) *registry.KernelSpec {
	return &registry.KernelSpec{
		Name:        name,
		ResourceDir: "/tmp/" + name,
		Argv:        []string{sh, "-c", script, "{connection_file}"},
		Metadata:    map[string]any{},
	}
}

// waitForFile polls until path exists and is non-empty, returning its trimmed content.
func waitForFile(t *testing.T, path string) string {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if b, err := os.ReadFile(path); err == nil && len(b) > 0 {
			return strings.TrimSpace(string(b))
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("file %s not written in time", path)
	return ""
}

// testCtx returns a context with a short timeout, canceled on test cleanup.
func testCtx(t *testing.T) context.Context {
	t.Helper()
	c, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return c
}
