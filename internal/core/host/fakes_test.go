package host

import (
	"fmt"
	"sync"

	"github.com/dawg-ai/claphost/internal/core/ports"
)

// recorder captures the order of native calls across a whole fake
// library so tests can assert teardown ordering.
type recorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *recorder) record(call string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call)
}

func (r *recorder) recorded() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

// fakeBehavior makes a fake plugin refuse individual native calls the
// way a real plugin can.
type fakeBehavior struct {
	refuseInit     bool
	refuseActivate bool
	refuseStart    bool
}

// fakeLoader implements ports.LibraryLoader entirely in memory. Paths
// listed in missing fail with FileNotFound, everything else opens a
// fresh fake library sharing the loader's recorder.
type fakeLoader struct {
	rec         *recorder
	behavior    fakeBehavior
	descriptors []ports.PluginDescriptor
	missing     map[string]bool
}

func newFakeLoader() *fakeLoader {
	return &fakeLoader{
		rec: &recorder{},
		descriptors: []ports.PluginDescriptor{
			{ID: "com.example.gain", Name: "Gain", Vendor: "Example", Version: "1.0.0"},
		},
		missing: map[string]bool{},
	}
}

func (l *fakeLoader) Open(path string) (ports.NativeLibrary, error) {
	if l.missing[path] {
		return nil, ports.NewLoadError(ports.LoadErrorFileNotFound, path,
			fmt.Errorf("no such file"))
	}
	l.rec.record("open:" + path)
	return &fakeLibrary{loader: l, path: path}, nil
}

type fakeLibrary struct {
	loader *fakeLoader
	path   string
	closed bool
}

func (lib *fakeLibrary) Factory() ports.PluginFactory {
	return &fakeFactory{lib: lib}
}

func (lib *fakeLibrary) Close() error {
	if lib.closed {
		return fmt.Errorf("library %s closed twice", lib.path)
	}
	lib.closed = true
	lib.loader.rec.record("lib_close")
	return nil
}

type fakeFactory struct {
	lib *fakeLibrary
}

func (f *fakeFactory) Descriptors() []ports.PluginDescriptor {
	return f.lib.loader.descriptors
}

func (f *fakeFactory) Create(pluginID string) (ports.NativePlugin, error) {
	descriptors := f.Descriptors()
	if len(descriptors) == 0 {
		return nil, fmt.Errorf("no plugins in %s", f.lib.path)
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
			return nil, fmt.Errorf("no plugin %q in %s", pluginID, f.lib.path)
		}
	}

	f.lib.loader.rec.record("create:" + selected.ID)
	return &fakePlugin{
		rec:        f.lib.loader.rec,
		behavior:   f.lib.loader.behavior,
		descriptor: selected,
		params:     map[uint32]float64{0: 0.5, 1: 1.0},
	}, nil
}

// fakePlugin implements ports.NativePlugin and records every call. It
// also asserts the exactly-once destruction contract by failing loudly
// on reuse after destroy.
type fakePlugin struct {
	rec        *recorder
	behavior   fakeBehavior
	descriptor ports.PluginDescriptor
	params     map[uint32]float64
	destroyed  bool
}

func (p *fakePlugin) Descriptor() ports.PluginDescriptor {
	return p.descriptor
}

func (p *fakePlugin) Init() bool {
	p.mustBeAlive("init")
	p.rec.record("init")
	return !p.behavior.refuseInit
}

func (p *fakePlugin) Destroy() {
	p.mustBeAlive("destroy")
	p.destroyed = true
	p.rec.record("destroy")
}

func (p *fakePlugin) Activate(sampleRate float64, minFrames, maxFrames uint32) bool {
	p.mustBeAlive("activate")
	p.rec.record(fmt.Sprintf("activate(%g,%d,%d)", sampleRate, minFrames, maxFrames))
	return !p.behavior.refuseActivate
}

func (p *fakePlugin) Deactivate() {
	p.mustBeAlive("deactivate")
	p.rec.record("deactivate")
}

func (p *fakePlugin) StartProcessing() bool {
	p.mustBeAlive("start_processing")
	p.rec.record("start_processing")
	return !p.behavior.refuseStart
}

func (p *fakePlugin) StopProcessing() {
	p.mustBeAlive("stop_processing")
	p.rec.record("stop_processing")
}

func (p *fakePlugin) Reset() {
	p.mustBeAlive("reset")
	p.rec.record("reset")
}

func (p *fakePlugin) Process(block *ports.ProcessBlock) ports.ProcessStatus {
	p.mustBeAlive("process")
	p.rec.record(fmt.Sprintf("process(%d)", block.FramesCount))
	return ports.ProcessContinue
}

func (p *fakePlugin) ParamCount() uint32 {
	p.mustBeAlive("param_count")
	return uint32(len(p.params))
}

func (p *fakePlugin) ParamValue(paramID uint32) (float64, bool) {
	p.mustBeAlive("param_value")
	value, ok := p.params[paramID]
	return value, ok
}

func (p *fakePlugin) SetParamValue(paramID uint32, value float64) bool {
	p.mustBeAlive("set_param_value")
	if _, ok := p.params[paramID]; !ok {
		return false
	}
	p.params[paramID] = value
	return true
}

func (p *fakePlugin) mustBeAlive(call string) {
	if p.destroyed {
		panic(fmt.Sprintf("native call %q on destroyed plugin %s", call, p.descriptor.ID))
	}
}
