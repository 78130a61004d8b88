package types

// KernelSpecInfo describes a kernel spec owned by the provider.
type KernelSpecInfo struct {
	// Kernel spec name (lowercased resource directory name).
	// example: python3-local
	Name string `json:"name" example:"python3-local"`
	// Human-friendly name from kernel.json.
	// example: Python 3 (local)
	DisplayName string `json:"display_name" example:"Python 3 (local)"`
	// Kernel language.
	// example: python
	Language string `json:"language,omitempty" example:"python"`
	// Absolute path of the directory holding kernel.json.
	// example: /usr/local/share/jupyter/kernels/python3-local
	ResourceDir string `json:"resource_dir" example:"/usr/local/share/jupyter/kernels/python3-local"`
	// Lifecycle manager class declared by the spec, if any.
	// example: LocalKernelLifecycleManager
	LifecycleManager string `json:"lifecycle_manager,omitempty" example:"LocalKernelLifecycleManager"`
}

// KernelSpecsResponse wraps the list returned by GET /kernelspecs.
type KernelSpecsResponse struct {
	ProviderID  string           `json:"provider_id"`
	KernelSpecs []KernelSpecInfo `json:"kernelspecs"`
}

// LaunchRequest is the payload for POST /kernels.
type LaunchRequest struct {
	// Kernel spec name to launch.
	// example: python3-local
	Name string `json:"name" validate:"required,max=255"`
	// Optional working directory for the kernel process.
	// example: /home/user/notebooks
	Cwd string `json:"cwd,omitempty"`
	// Optional extra launch parameters forwarded to the lifecycle manager.
	KernelParams map[string]any `json:"kernel_params,omitempty"`
}

// ConnectionInfo mirrors a Jupyter connection file.
type ConnectionInfo struct {
	Transport       string `json:"transport"`
	IP              string `json:"ip"`
	ShellPort       int    `json:"shell_port"`
	IOPubPort       int    `json:"iopub_port"`
	StdinPort       int    `json:"stdin_port"`
	ControlPort     int    `json:"control_port"`
	HBPort          int    `json:"hb_port"`
	Key             string `json:"key"`
	SignatureScheme string `json:"signature_scheme"`
	KernelName      string `json:"kernel_name"`
}

// KernelInfo summarizes a running kernel.
type KernelInfo struct {
	// Kernel id assigned at launch.
	// example: 1f0c5a8e-3b7e-4f5d-9a52-0cb1e2a5c0e1
	ID string `json:"id"`
	// Kernel spec name the kernel was launched from.
	Name string `json:"name"`
	// OS process id, 0 when not applicable.
	PID int `json:"pid"`
	// Whether the kernel process is still running.
	Alive bool `json:"alive"`
	// Unix seconds of the launch.
	StartedAt int64 `json:"started_at"`
	// Connection information clients use to reach the kernel.
	Connection ConnectionInfo `json:"connection"`
}

// KernelsResponse wraps GET /kernels.
type KernelsResponse struct {
	Kernels []KernelInfo `json:"kernels"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: invalid JSON body
	Error string `json:"error" example:"invalid JSON body"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}
