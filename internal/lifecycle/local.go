package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"kernelprovider/pkg/types"
)

// LocalClassName is the lifecycle_manager class_name served by LocalLauncher.
const LocalClassName = "LocalKernelLifecycleManager"

// Defaults applied when the corresponding LocalConfig fields are unset.
const (
	defaultIP            = "127.0.0.1"
	defaultStartupGrace  = 250 * time.Millisecond
	defaultShutdownGrace = 2 * time.Second
	stderrTailBytes      = 4096
)

// LocalConfig encapsulates the tunables of a LocalLauncher.
type LocalConfig struct {
	// RuntimeDir receives connection files. Defaults to os.TempDir().
	RuntimeDir string
	IP         string
	// PortStart/PortEnd restrict channel ports when PortStart > 0.
	PortStart int
	PortEnd   int
	// StartupGrace is how long a fresh process must survive to count as launched.
	StartupGrace  time.Duration
	ShutdownGrace time.Duration
	Publisher     EventPublisher
	Logger        *zerolog.Logger
}

// LocalLauncher runs a kernel spec's argv as a child process of this one.
type LocalLauncher struct {
	cfg       LocalConfig
	publisher EventPublisher
	log       zerolog.Logger
}

// NewLocalLauncher applies defaults to cfg and returns a launcher.
func NewLocalLauncher(cfg LocalConfig) *LocalLauncher {
	if cfg.RuntimeDir == "" {
		cfg.RuntimeDir = os.TempDir()
	}
	if strings.TrimSpace(cfg.IP) == "" {
		cfg.IP = defaultIP
	}
	if cfg.StartupGrace <= 0 {
		cfg.StartupGrace = defaultStartupGrace
	}
	if cfg.ShutdownGrace <= 0 {
		cfg.ShutdownGrace = defaultShutdownGrace
	}
	l := &LocalLauncher{cfg: cfg, publisher: cfg.Publisher, log: zerolog.Nop()}
	if l.publisher == nil {
		l.publisher = noopPublisher{}
	}
	if cfg.Logger != nil {
		l.log = cfg.Logger.With().Str("component", "local_launcher").Logger()
	}
	return l
}

// Launch starts the kernel described by req.Spec and waits out the startup
// grace period. A process that exits during the grace period is reported as
// a launch failure with the tail of its stderr.
func (l *LocalLauncher) Launch(ctx context.Context, req Request) (types.ConnectionInfo, KernelManager, error) {
	if req.Spec == nil {
		return types.ConnectionInfo{}, nil, errors.New("launch request has no kernel spec")
	}
	if err := ctx.Err(); err != nil {
		return types.ConnectionInfo{}, nil, err
	}
	name := req.Spec.Name
	if len(req.Spec.Argv) == 0 {
		return types.ConnectionInfo{}, nil, ErrLaunchFailed(name, errors.New("kernel spec has an empty argv"), "")
	}
	opts, err := l.resolveOptions(req)
	if err != nil {
		return types.ConnectionInfo{}, nil, ErrLaunchFailed(name, err, "")
	}

	ports, err := reservePorts(opts.ip, numChannels, opts.portStart, opts.portEnd)
	if err != nil {
		return types.ConnectionInfo{}, nil, ErrLaunchFailed(name, err, "")
	}
	id := uuid.NewString()
	conn := types.ConnectionInfo{
		Transport:       "tcp",
		IP:              opts.ip,
		ShellPort:       ports[0],
		IOPubPort:       ports[1],
		StdinPort:       ports[2],
		ControlPort:     ports[3],
		HBPort:          ports[4],
		Key:             uuid.NewString(),
		SignatureScheme: "hmac-sha256",
		KernelName:      name,
	}
	connFile, err := writeConnectionFile(l.cfg.RuntimeDir, id, conn)
	if err != nil {
		return types.ConnectionInfo{}, nil, ErrLaunchFailed(name, err, "")
	}

	argv := substituteArgv(req.Spec.Argv, connFile, req.Spec.ResourceDir)
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Dir = req.Cwd
	cmd.Env = buildEnv(os.Environ(), req.Spec.Env, opts.env, id, name)
	stderr := &tailBuffer{max: stderrTailBytes}
	cmd.Stderr = stderr

	if err := cmd.Start(); err != nil {
		_ = os.Remove(connFile)
		l.publisher.Publish(Event{Name: EventLaunchFailed, KernelID: id, Kernel: name, Fields: map[string]any{"error": err.Error()}})
		return types.ConnectionInfo{}, nil, ErrLaunchFailed(name, err, "")
	}
	pid := cmd.Process.Pid
	l.log.Info().Str("event", EventLaunchStart).Str("kernel", name).Str("kernel_id", id).Int("pid", pid).
		Str("cwd", req.Cwd).Msg("kernel process started")
	l.publisher.Publish(Event{Name: EventLaunchStart, KernelID: id, Kernel: name, Fields: map[string]any{"pid": pid, "connection_file": connFile}})

	k := &localKernel{
		id:        id,
		name:      name,
		cmd:       cmd,
		conn:      conn,
		connFile:  connFile,
		startedAt: time.Now(),
		done:      make(chan struct{}),
		grace:     l.cfg.ShutdownGrace,
		publisher: l.publisher,
		log:       l.log,
	}
	go k.watch()

	timer := time.NewTimer(opts.startupGrace)
	defer timer.Stop()
	select {
	case <-k.done:
		tail := stderr.String()
		cause := k.waitErr
		if cause == nil {
			cause = errors.New("exited before ready")
		}
		l.log.Warn().Str("event", EventLaunchFailed).Str("kernel", name).Int("pid", pid).Err(cause).Msg("kernel exited early")
		l.publisher.Publish(Event{Name: EventLaunchFailed, KernelID: id, Kernel: name, Fields: map[string]any{"pid": pid, "error": cause.Error()}})
		return types.ConnectionInfo{}, nil, ErrLaunchFailed(name, cause, tail)
	case <-ctx.Done():
		_ = k.Kill()
		return types.ConnectionInfo{}, nil, ctx.Err()
	case <-timer.C:
	}

	l.log.Info().Str("event", EventLaunchReady).Str("kernel", name).Str("kernel_id", id).Int("pid", pid).Msg("kernel running")
	l.publisher.Publish(Event{Name: EventLaunchReady, KernelID: id, Kernel: name, Fields: map[string]any{"pid": pid}})
	return conn, k, nil
}

// substituteArgv fills the {connection_file} and {resource_dir} placeholders.
func substituteArgv(argv []string, connFile, resourceDir string) []string {
	out := make([]string, len(argv))
	for i, a := range argv {
		a = strings.ReplaceAll(a, "{connection_file}", connFile)
		out[i] = strings.ReplaceAll(a, "{resource_dir}", resourceDir)
	}
	return out
}

// buildEnv layers spec env and launch env over base. Later layers win.
func buildEnv(base []string, specEnv, launchEnv map[string]string, id, name string) []string {
	merged := make(map[string]string, len(base)+len(specEnv)+len(launchEnv)+2)
	for _, kv := range base {
		if k, v, ok := strings.Cut(kv, "="); ok {
			merged[k] = v
		}
	}
	for k, v := range specEnv {
		merged[k] = v
	}
	for k, v := range launchEnv {
		merged[k] = v
	}
	merged["KERNEL_ID"] = id
	merged["KERNEL_NAME"] = name
	merged["JPY_PARENT_PID"] = fmt.Sprint(os.Getpid())

	out := make([]string, 0, len(merged))
	for k, v := range merged {
		out = append(out, k+"="+v)
	}
	sort.Strings(out)
	return out
}

// localKernel is the KernelManager for a LocalLauncher child process.
type localKernel struct {
	id        string
	name      string
	cmd       *exec.Cmd
	conn      types.ConnectionInfo
	connFile  string
	startedAt time.Time
	grace     time.Duration
	publisher EventPublisher
	log       zerolog.Logger

	done    chan struct{}
	waitErr error // set before done is closed
}

// watch reaps the process, removes its connection file and publishes the exit.
func (k *localKernel) watch() {
	k.waitErr = k.cmd.Wait()
	_ = os.Remove(k.connFile)
	fields := map[string]any{"pid": k.PID()}
	if k.waitErr != nil {
		fields["error"] = k.waitErr.Error()
	}
	k.log.Debug().Str("event", EventExit).Str("kernel", k.name).Str("kernel_id", k.id).Err(k.waitErr).Msg("kernel exited")
	k.publisher.Publish(Event{Name: EventExit, KernelID: k.id, Kernel: k.name, Fields: fields})
	close(k.done)
}

func (k *localKernel) ID() string                           { return k.id }
func (k *localKernel) KernelName() string                   { return k.name }
func (k *localKernel) PID() int                             { return k.cmd.Process.Pid }
func (k *localKernel) ConnectionInfo() types.ConnectionInfo { return k.conn }
func (k *localKernel) StartedAt() time.Time                 { return k.startedAt }

func (k *localKernel) Alive() bool {
	select {
	case <-k.done:
		return false
	default:
		return true
	}
}

func (k *localKernel) Wait() error {
	<-k.done
	return k.waitErr
}

// Shutdown sends SIGTERM, then kills the process after the grace period.
func (k *localKernel) Shutdown(ctx context.Context) error {
	if !k.Alive() {
		return nil
	}
	if err := k.cmd.Process.Signal(syscall.SIGTERM); err != nil {
		// Signal is unsupported on some platforms; fall back to kill.
		return k.Kill()
	}
	timer := time.NewTimer(k.grace)
	defer timer.Stop()
	select {
	case <-k.done:
	case <-timer.C:
		_ = k.Kill()
	case <-ctx.Done():
		_ = k.Kill()
	}
	k.publisher.Publish(Event{Name: EventShutdown, KernelID: k.id, Kernel: k.name, Fields: map[string]any{}})
	return nil
}

// Kill force-terminates the process and waits for it to be reaped.
func (k *localKernel) Kill() error {
	if !k.Alive() {
		return nil
	}
	if err := k.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return err
	}
	<-k.done
	return nil
}

// tailBuffer keeps the last max bytes written to it.
type tailBuffer struct {
	mu  sync.Mutex
	max int
	buf []byte
}

func (b *tailBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf = append(b.buf, p...)
	if over := len(b.buf) - b.max; over > 0 {
		b.buf = append([]byte(nil), b.buf[over:]...)
	}
	return len(p), nil
}

func (b *tailBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return strings.TrimSpace(string(b.buf))
}
