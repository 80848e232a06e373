package emit

import (
	"fmt"
	"strings"
)

// UnsupportedGateError reports an instruction the target has no mapping for.
type UnsupportedGateError struct {
	Platform Platform
	Gate     string
}

func (e *UnsupportedGateError) Error() string {
	return fmt.Sprintf("unsupported gate '%s' for platform %s", e.Gate, e.Platform)
}

// UnsupportedBackendError reports a backend name outside the platform's whitelist.
type UnsupportedBackendError struct {
	Platform Platform
	Backend  string
	Valid    []string
}

func (e *UnsupportedBackendError) Error() string {
	return fmt.Sprintf("invalid backend '%s' for platform '%s'; valid backends: %s",
		e.Backend, e.Platform, strings.Join(e.Valid, ", "))
}
