//go:build !cgo || !(linux || darwin)

// Package clap hosts the cgo boundary to CLAP plugin libraries. On
// platforms without dlopen support the loader is a stub that fails
// every load.
package clap

import (
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/dawg-ai/claphost/internal/core/ports"
)

// Loader is the unsupported-platform stub. It implements
// ports.LibraryLoader and fails every Open.
type Loader struct {
	logger hclog.Logger
}

// NewLoader creates the stub loader.
func NewLoader(logger hclog.Logger) *Loader {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Loader{logger: logger}
}

// Open always fails: native plugin hosting needs dlopen.
func (l *Loader) Open(path string) (ports.NativeLibrary, error) {
	return nil, ports.NewLoadError(ports.LoadErrorFileNotFound, path,
		fmt.Errorf("native plugin hosting is not supported on this platform"))
}
