package host

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLifecycleState_LegalTransitions(t *testing.T) {
	states := []LifecycleState{StateLoaded, StateInitialized, StateActivated, StateProcessing}

	legal := map[string]map[LifecycleState]bool{
		"initialize": {StateLoaded: true},
		"activate":   {StateInitialized: true},
		"start":      {StateActivated: true},
		"stop":       {StateProcessing: true},
		"deactivate": {StateActivated: true, StateProcessing: true},
		"params":     {StateInitialized: true, StateActivated: true, StateProcessing: true},
	}

	for _, state := range states {
		assert.Equal(t, legal["initialize"][state], state.canInitialize(), "initialize from %s", state)
		assert.Equal(t, legal["activate"][state], state.canActivate(), "activate from %s", state)
		assert.Equal(t, legal["start"][state], state.canStartProcessing(), "start from %s", state)
		assert.Equal(t, legal["stop"][state], state.canStopProcessing(), "stop from %s", state)
		assert.Equal(t, legal["deactivate"][state], state.canDeactivate(), "deactivate from %s", state)
		assert.Equal(t, legal["params"][state], state.canAccessParams(), "params from %s", state)
	}
}

func TestLifecycleState_String(t *testing.T) {
	assert.Equal(t, "processing", StateProcessing.String())
}
