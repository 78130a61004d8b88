package config

import (
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Defaults applied by ApplyDefaults when the corresponding field is unset.
const (
	DefaultAddr                  = ":8888"
	DefaultLogLevel              = "info"
	DefaultProviderID            = "local"
	DefaultProviderClass         = "LocalKernelProvider"
	DefaultLifecycleManagerClass = "LocalKernelLifecycleManager"
	DefaultMaxBodyBytes          = 1 << 20
)

// ProviderConfig identifies the provider and the lifecycle manager it accepts.
type ProviderConfig struct {
	// ID scopes kernel specs: metadata.kernel_provider.provider_id must match.
	ID string `json:"id" yaml:"id" toml:"id" validate:"required"`
	// ClassName selects the provider's section of AppConfig.
	ClassName string `json:"class_name" yaml:"class_name" toml:"class_name" validate:"required"`
	// LifecycleManagerClass is the class_name a spec's lifecycle_manager stanza must carry.
	LifecycleManagerClass string `json:"lifecycle_manager_class" yaml:"lifecycle_manager_class" toml:"lifecycle_manager_class" validate:"required"`
}

// Config holds runtime parameters for the service.
// Zero values mean "unspecified" and are replaced by ApplyDefaults.
type Config struct {
	Addr       string         `json:"addr" yaml:"addr" toml:"addr" validate:"required"`
	KernelDirs []string       `json:"kernel_dirs" yaml:"kernel_dirs" toml:"kernel_dirs"`
	RuntimeDir string         `json:"runtime_dir" yaml:"runtime_dir" toml:"runtime_dir"`
	LogLevel   string         `json:"log_level" yaml:"log_level" toml:"log_level" validate:"omitempty,oneof=trace debug info warn error disabled"`
	Provider   ProviderConfig `json:"provider" yaml:"provider" toml:"provider"`
	// AppConfig maps a provider class name to its configuration section.
	AppConfig map[string]map[string]any `json:"app_config" yaml:"app_config" toml:"app_config"`
	// CORS is opt-in; empty origins disables it.
	CORSOrigins []string `json:"cors_origins" yaml:"cors_origins" toml:"cors_origins"`
	// MaxBodyBytes caps JSON request bodies on the HTTP API.
	MaxBodyBytes int64 `json:"max_body_bytes" yaml:"max_body_bytes" toml:"max_body_bytes" validate:"gte=0"`
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &cfg)
	case ".json":
		err = json.Unmarshal(b, &cfg)
	case ".toml":
		err = toml.Unmarshal(b, &cfg)
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	if err != nil {
		return cfg, fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	return cfg, nil
}

// ApplyDefaults fills unset fields. KERNELPROVIDER_ADDR,
// KERNELPROVIDER_LOG_LEVEL and KERNELPROVIDER_CORS_ORIGINS (comma separated)
// override file values.
func (c *Config) ApplyDefaults() {
	if v := os.Getenv("KERNELPROVIDER_ADDR"); v != "" {
		c.Addr = v
	}
	if v := os.Getenv("KERNELPROVIDER_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := splitCSV(os.Getenv("KERNELPROVIDER_CORS_ORIGINS")); len(v) > 0 {
		c.CORSOrigins = v
	}
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.MaxBodyBytes == 0 {
		c.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if c.RuntimeDir == "" {
		c.RuntimeDir = filepath.Join(os.TempDir(), "kernelprovider", "runtime")
	}
	if c.Provider.ID == "" {
		c.Provider.ID = DefaultProviderID
	}
	if c.Provider.ClassName == "" {
		c.Provider.ClassName = DefaultProviderClass
	}
	if c.Provider.LifecycleManagerClass == "" {
		c.Provider.LifecycleManagerClass = DefaultLifecycleManagerClass
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks struct-level constraints.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Section returns a copy of the AppConfig section for className, or an empty
// map when there is none. The copy is shallow.
func (c Config) Section(className string) map[string]any {
	sec, ok := c.AppConfig[className]
	if !ok || sec == nil {
		return map[string]any{}
	}
	return maps.Clone(sec)
}

// splitCSV splits a comma-separated list, trimming spaces and dropping empties.
func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
