package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"kernelprovider/internal/httpapi"
	"kernelprovider/internal/kernels"
	"kernelprovider/internal/lifecycle"
	"kernelprovider/internal/provider"
	"kernelprovider/internal/registry"
)

const (
	providerID     = "local"
	providerClass  = "LocalKernelProvider"
	lifecycleClass = "LocalKernelLifecycleManager"
)

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

// writeKernelSpec creates root/name/kernel.json whose argv runs script under sh.
func writeKernelSpec(t *testing.T, root, name, sh, script, class string) {
	t.Helper()
	dir := filepath.Join(root, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	body, err := json.Marshal(map[string]any{
		"argv":         []string{sh, "-c", script, "{connection_file}"},
		"display_name": name,
		"language":     "shell",
		"metadata": map[string]any{
			"kernel_provider":   map[string]any{"provider_id": providerID},
			"lifecycle_manager": map[string]any{"class_name": class},
		},
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "kernel.json"), body, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

// newServer wires the full stack over kernelDir and returns a test server.
func newServer(t *testing.T, kernelDir string, appConfig map[string]any) (*httptest.Server, *kernels.Service, *lifecycle.MemoryPublisher) {
	t.Helper()
	pub := lifecycle.NewMemoryPublisher()
	launcher := lifecycle.NewLocalLauncher(lifecycle.LocalConfig{
		RuntimeDir:   t.TempDir(),
		StartupGrace: 100 * time.Millisecond,
		Publisher:    pub,
	})
	p, err := provider.New(provider.Config{
		ID:                    providerID,
		ClassName:             providerClass,
		LifecycleManagerClass: lifecycleClass,
		Registry:              registry.New([]string{kernelDir}, nil),
		Launcher:              launcher,
		AppConfig:             appConfig,
	})
	if err != nil {
		t.Fatalf("provider.New: %v", err)
	}
	svc := kernels.NewService(p, nil)
	srv := httptest.NewServer(httpapi.NewMux(svc))
	t.Cleanup(func() {
		srv.Close()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = svc.ShutdownAll(ctx)
	})
	return srv, svc, pub
}

func do(t *testing.T, method, url string, body any) (*http.Response, []byte) {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		rdr = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, url, rdr)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp, b
}
