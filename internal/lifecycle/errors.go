package lifecycle

import (
	"errors"
	"fmt"
)

// launchFailedError signals that the kernel process could not be started or
// exited before it was considered running.
type launchFailedError struct {
	kernel string
	cause  error
	stderr string
}

func (e launchFailedError) Error() string {
	msg := fmt.Sprintf("kernel %q failed to launch: %v", e.kernel, e.cause)
	if e.stderr != "" {
		msg += "; stderr tail: " + e.stderr
	}
	return msg
}

func (e launchFailedError) Unwrap() error { return e.cause }

// ErrLaunchFailed constructs a launchFailedError.
func ErrLaunchFailed(kernel string, cause error, stderrTail string) error {
	return launchFailedError{kernel: kernel, cause: cause, stderr: stderrTail}
}

// IsLaunchFailed reports whether err indicates a failed kernel start.
func IsLaunchFailed(err error) bool {
	var e launchFailedError
	return errors.As(err, &e)
}
