//go:build cgo && (linux || darwin)

// Package clap hosts the only unsafe code in the bridge: the cgo
// boundary to CLAP plugin libraries. It implements the loader,
// library, factory and plugin interfaces from internal/core/ports on
// top of dlopen/dlsym and the CLAP C ABI declared in abi.h. Everything
// above this package works with safe handles and interfaces.
package clap

// #cgo linux LDFLAGS: -ldl
// #include <stdlib.h>
// #include "abi.h"
import "C"

import (
	"fmt"
	"os"
	"unsafe"

	"github.com/hashicorp/go-hclog"

	"github.com/dawg-ai/claphost/internal/core/ports"
)

// Loader opens CLAP libraries from the filesystem. It implements
// ports.LibraryLoader.
type Loader struct {
	logger hclog.Logger
}

// NewLoader creates a loader. A nil logger is replaced with a no-op
// logger.
func NewLoader(logger hclog.Logger) *Loader {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Loader{logger: logger}
}

// Open loads the dynamic library at path, resolves the clap_entry
// symbol, runs the entry's init and obtains the plugin factory. It
// may block on OS linker work; callers must not hold registry locks.
func (l *Loader) Open(path string) (ports.NativeLibrary, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, ports.NewLoadError(ports.LoadErrorFileNotFound, path, err)
	}
	if !info.Mode().IsRegular() {
		return nil, ports.NewLoadError(ports.LoadErrorFileNotFound, path,
			fmt.Errorf("not a regular file"))
	}

	cPath := C.CString(path)
	defer C.free(unsafe.Pointer(cPath))

	var cErr *C.char
	handle := C.claphost_dlopen(cPath, &cErr)
	if handle == nil {
		err := fmt.Errorf("dlopen failed")
		if cErr != nil {
			err = fmt.Errorf("dlopen: %s", C.GoString(cErr))
			C.free(unsafe.Pointer(cErr))
		}
		return nil, ports.NewLoadError(ports.LoadErrorFileNotFound, path, err)
	}

	entry := C.claphost_entry(handle)
	if entry == nil {
		C.claphost_dlclose(handle)
		return nil, ports.NewLoadError(ports.LoadErrorSymbolNotFound, path,
			fmt.Errorf("no clap_entry export"))
	}

	if !bool(C.claphost_entry_init(entry, cPath)) {
		C.claphost_dlclose(handle)
		return nil, ports.NewLoadError(ports.LoadErrorEntryReturnedNull, path,
			fmt.Errorf("entry init refused"))
	}

	factory := C.claphost_factory(entry)
	if factory == nil {
		C.claphost_entry_deinit(entry)
		C.claphost_dlclose(handle)
		return nil, ports.NewLoadError(ports.LoadErrorEntryReturnedNull, path,
			fmt.Errorf("entry produced no plugin factory"))
	}

	clapHost := C.claphost_host_new()
	if clapHost == nil {
		C.claphost_entry_deinit(entry)
		C.claphost_dlclose(handle)
		return nil, ports.NewLoadError(ports.LoadErrorEntryReturnedNull, path,
			fmt.Errorf("host allocation failed"))
	}

	l.logger.Debug("opened clap library", "path", path)
	return &library{
		path:    path,
		handle:  handle,
		entry:   entry,
		factory: factory,
		host:    clapHost,
		logger:  l.logger,
	}, nil
}

// library owns one open dynamic library, its entry point and the
// clap_host struct handed to instances created from it. It implements
// ports.NativeLibrary.
type library struct {
	path    string
	handle  unsafe.Pointer
	entry   *C.clap_plugin_entry_t
	factory *C.clap_plugin_factory_t
	host    *C.clap_host_t
	logger  hclog.Logger
}

func (l *library) Factory() ports.PluginFactory {
	return &factory{lib: l}
}

// Close deinitializes the entry point and unloads the library. The
// registry guarantees every instance created from this library has
// already been destroyed.
func (l *library) Close() error {
	if l.handle == nil {
		return nil
	}
	C.claphost_entry_deinit(l.entry)
	C.claphost_dlclose(l.handle)
	C.claphost_host_free(l.host)
	l.handle = nil
	l.entry = nil
	l.factory = nil
	l.host = nil
	l.logger.Debug("closed clap library", "path", l.path)
	return nil
}

// factory adapts the native clap_plugin_factory. It implements
// ports.PluginFactory.
type factory struct {
	lib *library
}

func (f *factory) Descriptors() []ports.PluginDescriptor {
	count := uint32(C.claphost_factory_count(f.lib.factory))
	descriptors := make([]ports.PluginDescriptor, 0, count)
	for i := uint32(0); i < count; i++ {
		desc := C.claphost_factory_descriptor(f.lib.factory, C.uint32_t(i))
		if desc == nil {
			continue
		}
		descriptors = append(descriptors, goDescriptor(desc))
	}
	return descriptors
}

// Create instantiates the plugin whose descriptor ID equals pluginID,
// or the first descriptor when pluginID is empty. The instance is
// returned uninitialized.
func (f *factory) Create(pluginID string) (ports.NativePlugin, error) {
	descriptors := f.Descriptors()
	if len(descriptors) == 0 {
		return nil, fmt.Errorf("library %s exposes no plugins", f.lib.path)
	}

	selected := descriptors[0]
	if pluginID != "" {
		found := false
		for _, d := range descriptors {
			if d.ID == pluginID {
				selected = d
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("library %s has no plugin %q", f.lib.path, pluginID)
		}
	}

	cID := C.CString(selected.ID)
	defer C.free(unsafe.Pointer(cID))

	raw := C.claphost_factory_create(f.lib.factory, f.lib.host, cID)
	if raw == nil {
		return nil, fmt.Errorf("factory refused to create plugin %q from %s",
			selected.ID, f.lib.path)
	}

	return &nativePlugin{plugin: raw, descriptor: selected}, nil
}

// nativePlugin owns one raw clap_plugin instance. It implements
// ports.NativePlugin; lifecycle ordering is enforced by the host core,
// not here.
type nativePlugin struct {
	plugin     *C.clap_plugin_t
	params     *C.clap_plugin_params_t
	descriptor ports.PluginDescriptor
}

func (p *nativePlugin) Descriptor() ports.PluginDescriptor {
	return p.descriptor
}

func (p *nativePlugin) Init() bool {
	if !bool(C.claphost_plugin_init(p.plugin)) {
		return false
	}
	// The params extension may only be queried once init succeeded.
	p.params = C.claphost_plugin_params(p.plugin)
	return true
}

func (p *nativePlugin) Destroy() {
	C.claphost_plugin_destroy(p.plugin)
	p.plugin = nil
	p.params = nil
}

func (p *nativePlugin) Activate(sampleRate float64, minFrames, maxFrames uint32) bool {
	return bool(C.claphost_plugin_activate(p.plugin, C.double(sampleRate),
		C.uint32_t(minFrames), C.uint32_t(maxFrames)))
}

func (p *nativePlugin) Deactivate() {
	C.claphost_plugin_deactivate(p.plugin)
}

func (p *nativePlugin) StartProcessing() bool {
	return bool(C.claphost_plugin_start_processing(p.plugin))
}

func (p *nativePlugin) StopProcessing() {
	C.claphost_plugin_stop_processing(p.plugin)
}

func (p *nativePlugin) Reset() {
	C.claphost_plugin_reset(p.plugin)
}

func (p *nativePlugin) Process(block *ports.ProcessBlock) ports.ProcessStatus {
	if block == nil {
		return ports.ProcessError
	}
	status := C.claphost_plugin_process(p.plugin,
		C.int64_t(block.SteadyTime), C.uint32_t(block.FramesCount))
	return ports.ProcessStatus(status)
}

func (p *nativePlugin) ParamCount() uint32 {
	if p.params == nil {
		return 0
	}
	return uint32(C.claphost_params_count(p.params, p.plugin))
}

func (p *nativePlugin) ParamValue(paramID uint32) (float64, bool) {
	if p.params == nil {
		return 0, false
	}
	var value C.double
	if !bool(C.claphost_params_get(p.params, p.plugin, C.uint32_t(paramID), &value)) {
		return 0, false
	}
	return float64(value), true
}

func (p *nativePlugin) SetParamValue(paramID uint32, value float64) bool {
	if p.params == nil {
		return false
	}
	return bool(C.claphost_params_set(p.params, p.plugin,
		C.uint32_t(paramID), C.double(value)))
}

// goDescriptor copies a native descriptor into Go-owned memory.
func goDescriptor(desc *C.clap_plugin_descriptor_t) ports.PluginDescriptor {
	return ports.PluginDescriptor{
		ID:          cString(desc.id),
		Name:        cString(desc.name),
		Vendor:      cString(desc.vendor),
		Version:     cString(desc.version),
		Description: cString(desc.description),
	}
}

func cString(s *C.char) string {
	if s == nil {
		return ""
	}
	return C.GoString(s)
}
