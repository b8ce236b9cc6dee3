// Package apperr holds the failure markers shared by the acquisition, organisation and
// patching code. Errors are tagged with one marker so callers can classify them
// with errors.Is while keeping the full operation context in the message.
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNetwork       = errors.New("network failure")
	ErrFileSystem    = errors.New("file system failure")
	ErrIDDecode      = errors.New("id decode failure")
	ErrExternalTool  = errors.New("external tool failure")
	ErrNotFound      = errors.New("not found")
	ErrConfiguration = errors.New("configuration error")
)

// Wrap builds "marker: op: message: err". Empty parts are dropped; a nil marker
// falls back to ErrFileSystem since most untagged failures come from disk I/O.
func Wrap(marker error, op, message string, err error) error {
	if marker == nil {
		marker = ErrFileSystem
	}
	detail := buildDetail(op, message)
	if err != nil {
		if detail == "" {
			return fmt.Errorf("%w: %w", marker, err)
		}
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	if detail == "" {
		return marker
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Kind returns the first marker found in err's chain, or nil.
func Kind(err error) error {
	for _, marker := range []error{ErrNetwork, ErrFileSystem, ErrIDDecode, ErrExternalTool, ErrNotFound, ErrConfiguration} {
		if errors.Is(err, marker) {
			return marker
		}
	}
	return nil
}

func buildDetail(op, message string) string {
	parts := make([]string, 0, 2)
	if op = strings.TrimSpace(op); op != "" {
		parts = append(parts, op)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	return strings.Join(parts, ": ")
}
