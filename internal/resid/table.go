package resid

import "fmt"

type slot[T any] struct {
	id    ID
	value T
}

// Table maps IDs of one type to values. The slot for an ID is its serial
// modulo the table capacity; lookups also compare the full ID so a stale ID
// never resolves to the slot's newer occupant.
//
// NOT thread-safe. Owners serialize access with their own lock.
type Table[T any] struct {
	typ   Type
	slots []slot[T]
	last  uint32 // serial most recently issued
	count int
}

// NewTable returns an empty table of capacity slots issuing IDs of type t.
func NewTable[T any](t Type, capacity int) (*Table[T], error) {
	if t == TypeUndefined {
		return nil, fmt.Errorf("%w: undefined type", ErrInvalidID)
	}
	if capacity <= 0 || capacity > MaxCapacity {
		return nil, fmt.Errorf("resid: capacity %d outside [1, %d]", capacity, MaxCapacity)
	}
	return &Table[T]{typ: t, slots: make([]slot[T], capacity)}, nil
}

// Type returns the resource type this table issues.
func (t *Table[T]) Type() Type { return t.typ }

// Cap returns the number of slots.
func (t *Table[T]) Cap() int { return len(t.slots) }

// Len returns the number of live entries.
func (t *Table[T]) Len() int { return t.count }

// Add stores v under a freshly issued ID.
func (t *Table[T]) Add(v T) (ID, error) {
	serial := t.last
	for range len(t.slots) {
		serial = (serial + 1) & serialMask
		s := &t.slots[int(serial)%len(t.slots)]
		if s.id != Undefined {
			continue
		}
		s.id = Make(t.typ, serial)
		s.value = v
		t.last = serial
		t.count++
		return s.id, nil
	}
	return Undefined, fmt.Errorf("%w: %d %s entries", ErrTableFull, len(t.slots), t.typ)
}

func (t *Table[T]) find(id ID) (*slot[T], error) {
	if id.Type() != t.typ {
		return nil, fmt.Errorf("%w: %s is not a %s", ErrInvalidID, id, t.typ)
	}
	s := &t.slots[int(id.Serial())%len(t.slots)]
	if s.id != id {
		return nil, fmt.Errorf("%w: %s", ErrInvalidID, id)
	}
	return s, nil
}

// Get returns the value stored under id.
func (t *Table[T]) Get(id ID) (T, error) {
	s, err := t.find(id)
	if err != nil {
		var zero T
		return zero, err
	}
	return s.value, nil
}

// Set replaces the value stored under id.
func (t *Table[T]) Set(id ID, v T) error {
	s, err := t.find(id)
	if err != nil {
		return err
	}
	s.value = v
	return nil
}

// Remove releases id. The slot becomes available to later Add calls.
func (t *Table[T]) Remove(id ID) error {
	s, err := t.find(id)
	if err != nil {
		return err
	}
	*s = slot[T]{}
	t.count--
	return nil
}

// Each calls fn for every live entry in slot order until fn returns false.
func (t *Table[T]) Each(fn func(ID, T) bool) {
	for i := range t.slots {
		if t.slots[i].id == Undefined {
			continue
		}
		if !fn(t.slots[i].id, t.slots[i].value) {
			return
		}
	}
}

// Clear releases every entry. Serials keep advancing.
func (t *Table[T]) Clear() {
	clear(t.slots)
	t.count = 0
}
