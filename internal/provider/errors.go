package provider

import (
	"errors"
	"fmt"
)

// configError reports a kernel spec without a usable lifecycle_manager stanza.
type configError struct {
	name        string
	resourceDir string
}

func (e configError) Error() string {
	return fmt.Sprintf("lifecycle manager information could not be found in kernel.json file for kernel %q; "+
		"check the kernel.json file located at %q and try again", e.name, e.resourceDir)
}

// ErrConfig constructs the config error for kernel spec name located at resourceDir.
func ErrConfig(name, resourceDir string) error {
	return configError{name: name, resourceDir: resourceDir}
}

// IsConfigError reports whether err indicates a missing or mismatched
// lifecycle_manager stanza.
func IsConfigError(err error) bool {
	var e configError
	return errors.As(err, &e)
}

// ConfigErrorDetails returns the kernel name and resource directory carried by
// a config error.
func ConfigErrorDetails(err error) (name, resourceDir string, ok bool) {
	var e configError
	if !errors.As(err, &e) {
		return "", "", false
	}
	return e.name, e.resourceDir, true
}
