package registry

// KernelSpec is a parsed kernel.json plus the directory it was found in.
// Metadata is shared with every caller that resolves the same spec; treat it
// as read-only.
type KernelSpec struct {
	Name          string            `json:"-"`
	ResourceDir   string            `json:"-"`
	Argv          []string          `json:"argv"`
	DisplayName   string            `json:"display_name"`
	Language      string            `json:"language"`
	InterruptMode string            `json:"interrupt_mode,omitempty"`
	Env           map[string]string `json:"env,omitempty"`
	Metadata      map[string]any    `json:"metadata,omitempty"`
}

// Metadata keys read by the registry and providers.
const (
	MetaKernelProvider   = "kernel_provider"
	MetaProviderID       = "provider_id"
	MetaLifecycleManager = "lifecycle_manager"
	MetaClassName        = "class_name"
	MetaConfig           = "config"
)

// ProviderID returns metadata.kernel_provider.provider_id, or "" when unset.
func (s *KernelSpec) ProviderID() string {
	kp, ok := s.Metadata[MetaKernelProvider].(map[string]any)
	if !ok {
		return ""
	}
	id, _ := kp[MetaProviderID].(string)
	return id
}

// LifecycleClass returns metadata.lifecycle_manager.class_name, or "".
func (s *KernelSpec) LifecycleClass() string {
	lm, ok := s.Metadata[MetaLifecycleManager].(map[string]any)
	if !ok {
		return ""
	}
	cn, _ := lm[MetaClassName].(string)
	return cn
}
