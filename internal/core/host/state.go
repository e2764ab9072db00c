package host

// LifecycleState is the position of a loaded plugin in its legal
// lifecycle. Transitions only ever move along the edges checked by the
// Host façade; a command issued from any other state is a no-op.
type LifecycleState string

const (
	// StateLoaded means the instance exists but init has not run.
	StateLoaded LifecycleState = "loaded"
	// StateInitialized means init succeeded; the plugin may be
	// activated or queried for parameters.
	StateInitialized LifecycleState = "initialized"
	// StateActivated means the plugin holds audio resources for a
	// negotiated sample rate and block size range.
	StateActivated LifecycleState = "activated"
	// StateProcessing means the plugin is inside a start/stop
	// processing pair and process calls are legal.
	StateProcessing LifecycleState = "processing"
)

// canInitialize reports whether the initialize command is legal.
func (s LifecycleState) canInitialize() bool {
	return s == StateLoaded
}

// canActivate reports whether the activate command is legal.
func (s LifecycleState) canActivate() bool {
	return s == StateInitialized
}

// canStartProcessing reports whether startProcessing is legal.
func (s LifecycleState) canStartProcessing() bool {
	return s == StateActivated
}

// canStopProcessing reports whether stopProcessing is legal.
func (s LifecycleState) canStopProcessing() bool {
	return s == StateProcessing
}

// canDeactivate reports whether deactivate is legal.
func (s LifecycleState) canDeactivate() bool {
	return s == StateActivated || s == StateProcessing
}

// canAccessParams reports whether the parameter extension may be
// touched. Parameters exist once the plugin is initialized.
func (s LifecycleState) canAccessParams() bool {
	return s != StateLoaded
}

// String implements the Stringer interface.
func (s LifecycleState) String() string {
	return string(s)
}
