package ports

import (
	"errors"
	"fmt"
)

// LoadErrorKind classifies why a library load attempt failed. Each
// kind is fatal to that attempt only; the host process stays healthy.
type LoadErrorKind string

const (
	// LoadErrorFileNotFound covers a missing file and any OS-level
	// failure to open it as a dynamic library.
	LoadErrorFileNotFound LoadErrorKind = "file_not_found"
	// LoadErrorSymbolNotFound means the library opened but does not
	// export the well-known entry symbol.
	LoadErrorSymbolNotFound LoadErrorKind = "symbol_not_found"
	// LoadErrorEntryReturnedNull means the entry point refused to
	// initialize or produced a null factory.
	LoadErrorEntryReturnedNull LoadErrorKind = "entry_returned_null"
)

// LoadError reports a failed library load with enough context to tell
// a bad path from a non-plugin binary from a broken entry point.
type LoadError struct {
	Kind LoadErrorKind
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("load %s: %s: %v", e.Path, e.Kind, e.Err)
	}
	return fmt.Sprintf("load %s: %s", e.Path, e.Kind)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// NewLoadError builds a LoadError for path with the given kind,
// optionally wrapping an underlying OS or linker error.
func NewLoadError(kind LoadErrorKind, path string, err error) *LoadError {
	return &LoadError{Kind: kind, Path: path, Err: err}
}

// LoadErrorKindOf extracts the kind from err when err is a *LoadError
// anywhere in its chain; ok is false otherwise.
func LoadErrorKindOf(err error) (LoadErrorKind, bool) {
	var le *LoadError
	if !errors.As(err, &le) {
		return "", false
	}
	return le.Kind, true
}
