package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrExternalService = errors.New("external service error")
	ErrValidation      = errors.New("validation error")
	ErrConfiguration   = errors.New("configuration error")
	ErrNotFound        = errors.New("not found")
	ErrTimeout         = errors.New("timeout")
	ErrTransient       = errors.New("transient failure")
	// ErrStaleFile marks a tracked file that is no longer resolvable at its
	// recorded path; callers must re-resolve by name search before retrying.
	ErrStaleFile = errors.New("stale file reference")
)

var markers = []error{
	ErrExternalService,
	ErrValidation,
	ErrConfiguration,
	ErrNotFound,
	ErrTimeout,
	ErrTransient,
	ErrStaleFile,
}

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker for later status classification. The marker should
// be one of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// BypassError routes a file to the bypassed terminal state: a deliberate
// business decision (ignore pattern, unsupported kind, oversized file), not a
// crash. The reason carries no marker prefix; Error renders one only for
// human-readable output.
type BypassError struct {
	Reason string
}

func (e *BypassError) Error() string {
	return "bypassed due to " + e.Reason
}

// Bypass builds a BypassError with the given reason.
func Bypass(reason string) error {
	return &BypassError{Reason: strings.TrimSpace(reason)}
}

// Bypassf builds a BypassError with a formatted reason.
func Bypassf(format string, args ...any) error {
	return &BypassError{Reason: fmt.Sprintf(format, args...)}
}

// IsBypass reports whether the error chain carries a bypass decision.
func IsBypass(err error) bool {
	var be *BypassError
	return errors.As(err, &be)
}

// BypassReason extracts the bypass reason from an error chain.
func BypassReason(err error) (string, bool) {
	var be *BypassError
	if errors.As(err, &be) {
		return be.Reason, true
	}
	return "", false
}

// Message returns the human-readable portion of a stage error with any
// sentinel marker prefix stripped.
func Message(err error) string {
	if err == nil {
		return ""
	}
	if reason, ok := BypassReason(err); ok {
		return reason
	}
	text := strings.TrimSpace(err.Error())
	for _, marker := range markers {
		prefix := marker.Error() + ": "
		if strings.HasPrefix(text, prefix) {
			return strings.TrimSpace(text[len(prefix):])
		}
	}
	return text
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
