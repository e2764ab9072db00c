// Package ports defines the boundary between the host core and the
// native plugin world. The core only ever sees these interfaces; the
// one module allowed to touch raw pointers lives in
// internal/infrastructure/clap and implements them.
package ports

// PluginDescriptor is the static metadata a library publishes for one
// plugin variant it can instantiate.
type PluginDescriptor struct {
	ID          string
	Name        string
	Vendor      string
	Version     string
	Description string
}

// ProcessBlock carries the per-call framing for a process invocation.
// The actual audio buffer transport is owned by the real-time path and
// is opaque to the host core.
type ProcessBlock struct {
	SteadyTime  int64
	FramesCount uint32
}

// ProcessStatus is the status code returned by a plugin's process call.
type ProcessStatus int32

const (
	ProcessError              ProcessStatus = 0
	ProcessContinue           ProcessStatus = 1
	ProcessContinueIfNotQuiet ProcessStatus = 2
	ProcessTail               ProcessStatus = 3
	ProcessSleep              ProcessStatus = 4
)

// LibraryLoader resolves a filesystem path to an open plugin library.
// Open may block on OS linker work and must not be called while
// holding registry locks.
type LibraryLoader interface {
	// Open loads the dynamic library at path, resolves its entry
	// point and obtains the plugin factory. Failures are reported as
	// *LoadError with a kind distinguishing a missing/unreadable
	// file, a missing entry symbol, and an entry point that produced
	// no factory.
	Open(path string) (NativeLibrary, error)
}

// NativeLibrary is an exclusively owned, open dynamic library. It must
// stay open for as long as any plugin instance created from it is
// alive; Close unloads it from process memory.
type NativeLibrary interface {
	Factory() PluginFactory
	Close() error
}

// PluginFactory enumerates the descriptors a library exposes and
// creates raw plugin instances from them.
type PluginFactory interface {
	Descriptors() []PluginDescriptor

	// Create instantiates the plugin whose descriptor ID equals
	// pluginID, or the first available descriptor when pluginID is
	// empty. The returned instance is owned by the caller and has not
	// been initialized.
	Create(pluginID string) (NativePlugin, error)
}

// NativePlugin is an exclusively owned raw plugin instance. None of
// its methods are safe to call after Destroy. Lifecycle ordering is
// the caller's responsibility; the methods map one to one onto the
// plugin ABI and report failure the way the ABI does, as booleans.
type NativePlugin interface {
	Descriptor() PluginDescriptor

	Init() bool
	Destroy()

	Activate(sampleRate float64, minFrames, maxFrames uint32) bool
	Deactivate()

	StartProcessing() bool
	StopProcessing()
	Reset()

	Process(block *ProcessBlock) ProcessStatus

	ParamCount() uint32
	ParamValue(paramID uint32) (float64, bool)
	SetParamValue(paramID uint32, value float64) bool
}
