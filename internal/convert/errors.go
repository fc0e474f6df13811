package convert

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrData marks malformed or empty input streams.
	ErrData = errors.New("data error")
	// ErrConfiguration marks unusable settings.
	ErrConfiguration = errors.New("configuration error")
	// ErrExternalTool marks failures in the OCR engine.
	ErrExternalTool = errors.New("external tool error")
)

// wrap tags an error with a marker for classification while keeping
// operation context in the message.
func wrap(marker error, operation, message string, err error) error {
	detail := buildDetail(operation, message)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

func buildDetail(operation, message string) string {
	parts := make([]string, 0, 2)
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "conversion failure"
	}
	return strings.Join(parts, ": ")
}
