// Package host contains the core of the bridge: the plugin handle
// registry, the lifecycle state machine, and the command façade the
// rest of the application talks to. Nothing in this package touches
// raw pointers; the native world is reached only through the
// interfaces in internal/core/ports.
package host

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/dawg-ai/claphost/internal/core/ports"
)

// Host is the command façade over the registry and the lifecycle
// state machine. Every exported method is safe for concurrent use
// from multiple goroutines: all lifecycle mutations are serialized by
// the registry lock, and only the blocking load/instantiate phase runs
// outside it.
type Host struct {
	loader    ports.LibraryLoader
	registry  *Registry
	logger    hclog.Logger
	sessionID string
}

// PluginStatus is a point-in-time view of one live record, safe to
// hand to the dashboard and CLI without exposing ownership.
type PluginStatus struct {
	Handle     Handle
	SourcePath string
	Descriptor ports.PluginDescriptor
	State      LifecycleState
}

// New creates a host around loader. A nil logger is replaced with a
// no-op logger.
func New(loader ports.LibraryLoader, logger hclog.Logger) *Host {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	h := &Host{
		loader:    loader,
		registry:  NewRegistry(),
		logger:    logger,
		sessionID: uuid.NewString(),
	}
	h.logger.Debug("host session started", "session_id", h.sessionID)
	return h
}

// LoadPlugin loads the library at path, instantiates its first
// available plugin and registers it in the loaded state.
func (h *Host) LoadPlugin(ctx context.Context, path string) (Handle, error) {
	return h.LoadPluginID(ctx, path, "")
}

// LoadPluginID is LoadPlugin with an explicit descriptor selection:
// pluginID must match a descriptor ID published by the library, or the
// load fails. An empty pluginID selects the first descriptor.
//
// The library open and instance creation run outside the registry
// lock; only the final registration takes it. If ctx is cancelled
// before registration the instance is destroyed, the library closed,
// and no registry entry is created.
func (h *Host) LoadPluginID(ctx context.Context, path, pluginID string) (Handle, error) {
	lib, err := h.loader.Open(path)
	if err != nil {
		return 0, err
	}

	plugin, err := lib.Factory().Create(pluginID)
	if err != nil {
		lib.Close()
		return 0, err
	}

	if err := ctx.Err(); err != nil {
		plugin.Destroy()
		lib.Close()
		return 0, err
	}

	handle := h.registry.register(&pluginRecord{
		sourcePath: path,
		library:    lib,
		plugin:     plugin,
		state:      StateLoaded,
	})

	h.logger.Info("loaded plugin",
		"handle", handle,
		"path", path,
		"plugin_id", plugin.Descriptor().ID,
		"session_id", h.sessionID,
	)
	return handle, nil
}

// UnloadPlugin removes the record for handle and tears it down. A
// record still activated or processing is walked back one legal step
// at a time before the instance is destroyed; the library is unloaded
// strictly after destruction. The second unload of the same handle
// fails with ErrInvalidHandle.
func (h *Host) UnloadPlugin(handle Handle) error {
	rec, err := h.registry.remove(handle)
	if err != nil {
		return err
	}

	// The record is detached: this goroutine is its last owner and
	// no lock is needed for the native teardown calls.
	h.teardown(rec)

	h.logger.Info("unloaded plugin", "handle", handle, "path", rec.sourcePath)
	return nil
}

// teardown walks rec back to destruction in the ABI-mandated order.
// Called exactly once per record, after removal from the registry.
func (h *Host) teardown(rec *pluginRecord) {
	if rec.state == StateProcessing {
		rec.plugin.StopProcessing()
		rec.state = StateActivated
	}
	if rec.state == StateActivated {
		rec.plugin.Deactivate()
		rec.state = StateInitialized
	}
	rec.plugin.Destroy()
	if err := rec.library.Close(); err != nil {
		h.logger.Warn("library close failed", "path", rec.sourcePath, "error", err)
	}
}

// Initialize runs the plugin's one-time init. Legal only in the loaded
// state; anywhere else it reports false without a native call. A
// native refusal leaves the state unchanged so the caller may retry.
func (h *Host) Initialize(handle Handle) (bool, error) {
	ok := false
	err := h.registry.withRecord(handle, func(rec *pluginRecord) error {
		if !rec.state.canInitialize() {
			return nil
		}
		if !rec.plugin.Init() {
			h.logger.Warn("plugin init refused", "handle", handle)
			return nil
		}
		rec.state = StateInitialized
		ok = true
		return nil
	})
	if ok {
		h.logger.Debug("initialized plugin", "handle", handle)
	}
	return ok, err
}

// Activate negotiates the audio configuration with the plugin. Legal
// only from the initialized state.
func (h *Host) Activate(handle Handle, sampleRate float64, minFrames, maxFrames uint32) (bool, error) {
	ok := false
	err := h.registry.withRecord(handle, func(rec *pluginRecord) error {
		if !rec.state.canActivate() {
			return nil
		}
		if !rec.plugin.Activate(sampleRate, minFrames, maxFrames) {
			h.logger.Warn("plugin activate refused",
				"handle", handle, "sample_rate", sampleRate)
			return nil
		}
		rec.state = StateActivated
		ok = true
		return nil
	})
	if ok {
		h.logger.Debug("activated plugin",
			"handle", handle,
			"sample_rate", sampleRate,
			"min_frames", minFrames,
			"max_frames", maxFrames,
		)
	}
	return ok, err
}

// Deactivate releases the plugin's audio resources, returning it to
// the initialized state. A plugin still processing is stopped first so
// the native call order never skips a step. Outside the activated and
// processing states this is a no-op.
func (h *Host) Deactivate(handle Handle) error {
	return h.registry.withRecord(handle, func(rec *pluginRecord) error {
		if !rec.state.canDeactivate() {
			return nil
		}
		if rec.state == StateProcessing {
			rec.plugin.StopProcessing()
			rec.state = StateActivated
		}
		rec.plugin.Deactivate()
		rec.state = StateInitialized
		h.logger.Debug("deactivated plugin", "handle", handle)
		return nil
	})
}

// StartProcessing enters the processing state. Legal only from the
// activated state.
func (h *Host) StartProcessing(handle Handle) (bool, error) {
	ok := false
	err := h.registry.withRecord(handle, func(rec *pluginRecord) error {
		if !rec.state.canStartProcessing() {
			return nil
		}
		if !rec.plugin.StartProcessing() {
			h.logger.Warn("plugin start_processing refused", "handle", handle)
			return nil
		}
		rec.state = StateProcessing
		ok = true
		return nil
	})
	if ok {
		h.logger.Debug("started processing", "handle", handle)
	}
	return ok, err
}

// StopProcessing leaves the processing state. The native call has no
// failure mode; outside the processing state this is a no-op.
func (h *Host) StopProcessing(handle Handle) error {
	return h.registry.withRecord(handle, func(rec *pluginRecord) error {
		if !rec.state.canStopProcessing() {
			return nil
		}
		rec.plugin.StopProcessing()
		rec.state = StateActivated
		h.logger.Debug("stopped processing", "handle", handle)
		return nil
	})
}

// Process forwards one block to the plugin. Outside the processing
// state it returns ProcessError without calling into native code.
func (h *Host) Process(handle Handle, block *ports.ProcessBlock) (ports.ProcessStatus, error) {
	status := ports.ProcessError
	err := h.registry.withRecord(handle, func(rec *pluginRecord) error {
		if rec.state != StateProcessing {
			return nil
		}
		status = rec.plugin.Process(block)
		return nil
	})
	return status, err
}

// ParameterCount returns the number of parameters the plugin exposes,
// or zero before the plugin is initialized.
func (h *Host) ParameterCount(handle Handle) (uint32, error) {
	var count uint32
	err := h.registry.withRecord(handle, func(rec *pluginRecord) error {
		if !rec.state.canAccessParams() {
			return nil
		}
		count = rec.plugin.ParamCount()
		return nil
	})
	return count, err
}

// ParameterValue reads the current value of one parameter. ok is false
// before initialization or when the plugin does not know paramID.
func (h *Host) ParameterValue(handle Handle, paramID uint32) (float64, bool, error) {
	var (
		value float64
		ok    bool
	)
	err := h.registry.withRecord(handle, func(rec *pluginRecord) error {
		if !rec.state.canAccessParams() {
			return nil
		}
		value, ok = rec.plugin.ParamValue(paramID)
		return nil
	})
	return value, ok, err
}

// SetParameterValue requests a parameter change. Before initialization
// or when the plugin rejects the change this is a silent no-op, per
// the permissive failure convention of the underlying ABI.
func (h *Host) SetParameterValue(handle Handle, paramID uint32, value float64) error {
	return h.registry.withRecord(handle, func(rec *pluginRecord) error {
		if !rec.state.canAccessParams() {
			return nil
		}
		if !rec.plugin.SetParamValue(paramID, value) {
			h.logger.Debug("parameter change rejected",
				"handle", handle, "param_id", paramID)
		}
		return nil
	})
}

// Inspect opens the library at path just long enough to read the
// descriptors it publishes, without instantiating anything.
func (h *Host) Inspect(ctx context.Context, path string) ([]ports.PluginDescriptor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	lib, err := h.loader.Open(path)
	if err != nil {
		return nil, err
	}
	defer lib.Close()

	return lib.Factory().Descriptors(), nil
}

// Snapshot returns a point-in-time view of every live record, sorted
// by handle.
func (h *Host) Snapshot() []PluginStatus {
	h.registry.mu.Lock()
	statuses := make([]PluginStatus, 0, len(h.registry.records))
	for _, rec := range h.registry.records {
		statuses = append(statuses, PluginStatus{
			Handle:     rec.handle,
			SourcePath: rec.sourcePath,
			Descriptor: rec.plugin.Descriptor(),
			State:      rec.state,
		})
	}
	h.registry.mu.Unlock()

	sort.Slice(statuses, func(i, j int) bool {
		return statuses[i].Handle < statuses[j].Handle
	})
	return statuses
}

// Count returns the number of plugins currently loaded.
func (h *Host) Count() int {
	return h.registry.Count()
}

// Close unloads every plugin still registered. Used on shutdown; new
// loads racing with Close may still register and are the caller's
// responsibility.
func (h *Host) Close(ctx context.Context) error {
	var firstErr error
	for _, handle := range h.registry.handles() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := h.UnloadPlugin(handle); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("unload %d: %w", handle, err)
		}
	}
	return firstErr
}
