package registry

import (
	"errors"
	"fmt"
)

// noSuchKernelError is returned when a name does not resolve for a provider.
type noSuchKernelError struct {
	name       string
	providerID string
}

func (e noSuchKernelError) Error() string {
	return fmt.Sprintf("no such kernel named %q for provider %q", e.name, e.providerID)
}

// ErrNoSuchKernel constructs the error returned by GetKernelSpec.
func ErrNoSuchKernel(name, providerID string) error {
	return noSuchKernelError{name: name, providerID: providerID}
}

// IsNoSuchKernel reports whether err indicates an unknown kernel spec.
func IsNoSuchKernel(err error) bool {
	var e noSuchKernelError
	return errors.As(err, &e)
}
