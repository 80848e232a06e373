package circuit

import "fmt"

// ResolutionError reports an undefined reference, an out-of-range index or
// an arity mismatch found while resolving a program.
type ResolutionError struct {
	Pos Pos
	Msg string
}

func (e *ResolutionError) Error() string {
	if e.Pos.Line == 0 {
		return "resolution error: " + e.Msg
	}
	return fmt.Sprintf("resolution error at %s: %s", e.Pos, e.Msg)
}

func resolutionErrorf(pos Pos, format string, args ...any) error {
	return &ResolutionError{Pos: pos, Msg: fmt.Sprintf(format, args...)}
}
