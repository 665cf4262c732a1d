package param

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
)

var (
	// ErrUnknownParameter is returned for IDs not defined in a Store.
	ErrUnknownParameter = errors.New("param: unknown parameter")
	// ErrOutOfRange is returned for values that cannot be stored.
	ErrOutOfRange = errors.New("param: value out of range")
)

// Reader is the read-only view of the parameters used by the audio context.
// Value must not block or allocate. Unknown IDs read as 0.
type Reader interface {
	Value(id ID) float64
}

// Writer is a Reader that also accepts new values.
type Writer interface {
	Reader
	Set(id ID, v float64) error
}

// Change is a parameter change notification.
type Change struct {
	ID    ID
	Value float64
}

type slot struct {
	def  Definition
	bits atomic.Uint64
}

func (s *slot) load() float64 {
	return math.Float64frombits(s.bits.Load())
}

func (s *slot) store(v float64) {
	s.bits.Store(math.Float64bits(v))
}

// Store holds parameter values as atomic bit patterns. Value and Bool are
// safe to call from the audio context concurrently with Set.
type Store struct {
	slots map[ID]*slot
	order []ID

	mu     sync.Mutex
	subs   map[int]chan Change
	nextID int
}

// NewStore creates a store holding the given definitions at their defaults.
// With no definitions the full layout from [Definitions] is used.
func NewStore(defs ...Definition) *Store {
	if len(defs) == 0 {
		defs = Definitions()
	}

	s := &Store{
		slots: make(map[ID]*slot, len(defs)),
		order: make([]ID, 0, len(defs)),
		subs:  make(map[int]chan Change),
	}

	for _, d := range defs {
		if _, dup := s.slots[d.ID]; dup {
			continue
		}
		sl := &slot{def: d}
		sl.store(d.Clamp(d.Default))
		s.slots[d.ID] = sl
		s.order = append(s.order, d.ID)
	}

	return s
}

// Value returns the current value of id, or 0 when id is unknown.
func (s *Store) Value(id ID) float64 {
	sl, ok := s.slots[id]
	if !ok {
		return 0
	}

	return sl.load()
}

// Bool reports whether the switch id is on.
func (s *Store) Bool(id ID) bool {
	return s.Value(id) > 0.5
}

// Lookup returns the value of id or ErrUnknownParameter.
func (s *Store) Lookup(id ID) (float64, error) {
	sl, ok := s.slots[id]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownParameter, id)
	}

	return sl.load(), nil
}

// Definition returns the definition of id.
func (s *Store) Definition(id ID) (Definition, bool) {
	sl, ok := s.slots[id]
	if !ok {
		return Definition{}, false
	}

	return sl.def, true
}

// IDs returns the parameter IDs in definition order.
func (s *Store) IDs() []ID {
	out := make([]ID, len(s.order))
	copy(out, s.order)

	return out
}

// Set stores v, clamped to the parameter range, and notifies subscribers.
// NaN and infinite values are rejected.
func (s *Store) Set(id ID, v float64) error {
	sl, ok := s.slots[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownParameter, id)
	}

	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: %s = %f", ErrOutOfRange, id, v)
	}

	v = sl.def.Clamp(v)
	sl.store(v)
	s.notify(Change{ID: id, Value: v})

	return nil
}

// SetBool stores a switch value.
func (s *Store) SetBool(id ID, on bool) error {
	v := 0.0
	if on {
		v = 1
	}

	return s.Set(id, v)
}

// Format renders the current value of id for display.
func (s *Store) Format(id ID) string {
	sl, ok := s.slots[id]
	if !ok {
		return ""
	}

	return sl.def.Format(sl.load())
}

// Snapshot returns all values keyed by ID. It is the opaque state handed to
// a persistence layer.
func (s *Store) Snapshot() map[ID]float64 {
	out := make(map[ID]float64, len(s.order))
	for _, id := range s.order {
		out[id] = s.slots[id].load()
	}

	return out
}

// Restore applies a previously captured snapshot. Known IDs are set even
// when others fail; the returned error joins all failures.
func (s *Store) Restore(state map[ID]float64) error {
	var errs []error
	for id, v := range state {
		if err := s.Set(id, v); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// Subscribe registers a change listener with the given buffer size. Sends
// never block: when the buffer is full the change is dropped. The returned
// function unregisters the listener and closes the channel.
func (s *Store) Subscribe(buffer int) (<-chan Change, func()) {
	if buffer < 1 {
		buffer = 1
	}

	ch := make(chan Change, buffer)

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = ch
	s.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
			close(ch)
		})
	}

	return ch, cancel
}

func (s *Store) notify(c Change) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, ch := range s.subs {
		select {
		case ch <- c:
		default:
		}
	}
}
