package pipeline

// EventType names a rendering lifecycle event.
type EventType string

const (
	EventRenderingStarted  EventType = "renderingStarted"
	EventRenderingFinished EventType = "renderingFinished"
	EventRenderingFailed   EventType = "renderingFailed"
	EventViewChanged       EventType = "viewChanged"
)

// Event is delivered to the observer after the pipeline releases its lock.
type Event struct {
	Type   EventType `json:"type"`
	Epoch  uint64    `json:"epoch"`
	Reason string    `json:"reason,omitempty"`
	View   *View     `json:"view,omitempty"`
}

// Observer receives rendering events. Observe must not call back into the
// pipeline synchronously.
type Observer interface {
	Observe(e Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(e Event)

// Observe calls f(e).
func (f ObserverFunc) Observe(e Event) { f(e) }

func (p *Pipeline) emit(e Event) {
	if p.observer != nil {
		p.observer.Observe(e)
	}
}

// emitSettled reports the final view of a cycle followed by its end event.
func (p *Pipeline) emitSettled(epoch uint64, view View, outcome Outcome, reason string) {
	p.emit(Event{Type: EventViewChanged, Epoch: epoch, View: &view})
	if outcome == OutcomeFailed {
		p.emit(Event{Type: EventRenderingFailed, Epoch: epoch, Reason: reason})
		return
	}
	p.emit(Event{Type: EventRenderingFinished, Epoch: epoch})
}
