package notify

// Listener observes entries as they arrive, change and go away. Callbacks
// run on the Center's main looper, one at a time.
type Listener interface {
	OnArrival(e *Entry)
	OnUpdate(e *Entry)
	OnCancel(e *Entry)
}

// ListenerFuncs adapts plain functions to Listener. Nil fields are skipped.
// Register a pointer so the same value can be removed later.
type ListenerFuncs struct {
	Arrival func(e *Entry)
	Update  func(e *Entry)
	Cancel  func(e *Entry)
}

// OnArrival calls f.Arrival.
func (f *ListenerFuncs) OnArrival(e *Entry) {
	if f.Arrival != nil {
		f.Arrival(e)
	}
}

// OnUpdate calls f.Update.
func (f *ListenerFuncs) OnUpdate(e *Entry) {
	if f.Update != nil {
		f.Update(e)
	}
}

// OnCancel calls f.Cancel.
func (f *ListenerFuncs) OnCancel(e *Entry) {
	if f.Cancel != nil {
		f.Cancel(e)
	}
}
