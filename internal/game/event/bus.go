package event

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Publisher is what emitting components depend on.
type Publisher interface {
	Publish(e Event)
}

// Handler consumes one event.
type Handler func(e Event)

// Discard is a Publisher that drops every event.
var Discard Publisher = discard{}

type discard struct{}

func (discard) Publish(Event) {}

type subscription struct {
	id int
	fn Handler
}

// Bus dispatches each published event synchronously to every subscriber in
// subscription order. Handlers run on the publishing goroutine.
type Bus struct {
	mu     sync.Mutex
	nextID int
	subs   []subscription
}

// NewBus creates a Bus with no subscribers.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers fn and returns a function that removes it. Calling the
// returned function more than once is harmless.
//
// Precondition: fn must be non-nil.
func (b *Bus) Subscribe(fn Handler) (unsubscribe func()) {
	if fn == nil {
		panic("event: Subscribe precondition violated: handler must be non-nil")
	}
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscription{id: id, fn: fn})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			for i, s := range b.subs {
				if s.id == id {
					b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// Publish delivers e to a snapshot of the current subscribers, so handlers may
// subscribe or unsubscribe while being called.
func (b *Bus) Publish(e Event) {
	b.mu.Lock()
	snapshot := make([]subscription, len(b.subs))
	copy(snapshot, b.subs)
	b.mu.Unlock()
	for _, s := range snapshot {
		s.fn(e)
	}
}

// Recorder collects every event it receives, in order.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder { return &Recorder{} }

// Publish implements Publisher so a Recorder can stand in for a Bus.
func (r *Recorder) Publish(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Handle is the Recorder as a bus Handler.
func (r *Recorder) Handle(e Event) { r.Publish(e) }

// Events returns a snapshot of everything recorded so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// OfType returns the recorded events of type t, in order.
func (r *Recorder) OfType(t Type) []Event {
	var out []Event
	for _, e := range r.Events() {
		if e.Type() == t {
			out = append(out, e)
		}
	}
	return out
}

// Reset discards everything recorded.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

// LogSubscriber returns a Handler writing every event to logger at level.
//
// Precondition: logger must be non-nil.
func LogSubscriber(logger *zap.Logger, level zapcore.Level) Handler {
	if logger == nil {
		panic("event: LogSubscriber precondition violated: logger must be non-nil")
	}
	return func(e Event) {
		if ce := logger.Check(level, "combat event"); ce != nil {
			ce.Write(zap.String("type", string(e.Type())), zap.Object("event", e))
		}
	}
}

// Fields flattens e into a map using its log marshaler. The result is what
// the journal persists.
func Fields(e Event) (map[string]any, error) {
	enc := zapcore.NewMapObjectEncoder()
	if err := e.MarshalLogObject(enc); err != nil {
		return nil, err
	}
	return enc.Fields, nil
}
