package session

// Listener receives session notifications. All callbacks fire
// synchronously on the goroutine driving the controller; implementations
// must not call back into the controller from within a notification.
type Listener interface {
	// OnStateChanged fires when the session state changes. No-op
	// transitions are silent, except for Delete, Clear and RestoreState,
	// which always announce Idle.
	OnStateChanged(state State)
	// OnError fires once per failed command. It does not imply a state
	// transition; callers issue Stop to clean up after an error.
	OnError(code ErrorCode)
	// OnInfo forwards engine informational events, such as the
	// max-duration limit being reached.
	OnInfo(what, extra int)
}

// ListenerFuncs adapts plain functions to the Listener interface. Nil
// fields are ignored.
type ListenerFuncs struct {
	StateChanged func(state State)
	Error        func(code ErrorCode)
	Info         func(what, extra int)
}

func (l ListenerFuncs) OnStateChanged(state State) {
	if l.StateChanged != nil {
		l.StateChanged(state)
	}
}

func (l ListenerFuncs) OnError(code ErrorCode) {
	if l.Error != nil {
		l.Error(code)
	}
}

func (l ListenerFuncs) OnInfo(what, extra int) {
	if l.Info != nil {
		l.Info(what, extra)
	}
}
