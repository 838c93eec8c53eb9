// Package store holds the state of one form: the values tree, its flat
// shadow, the per-field touched/active/pristine/error maps and the initial
// snapshot.
//
// All mutation goes through a transaction (Tx). A transaction reads its own
// pending writes, and Commit publishes everything it accumulated as one new
// State. Observers are notified once per commit and never see a partially
// applied transaction.
//
// A committed State is immutable: transactions copy a map before their
// first write to it. Callers must treat the maps of a State as read-only.
//
// Store is not safe for concurrent use.
package store

import (
	"github.com/pthm/hxform/lib/merge"
	"github.com/pthm/hxform/lib/objpath"
	"github.com/pthm/hxform/lib/value"
)

// State is one committed form state.
type State struct {
	Values   map[string]any
	Touched  map[string]bool
	Active   map[string]bool
	Pristine map[string]bool
	Errors   map[string][]string
	// Generation increases by one on every commit.
	Generation uint64
}

// FormPristine reports whether every tracked field is pristine.
func (s State) FormPristine() bool {
	for _, p := range s.Pristine {
		if !p {
			return false
		}
	}
	return true
}

// Valid reports whether no field has an error.
func (s State) Valid() bool {
	return len(s.Errors) == 0
}

// IsEmpty reports whether the values tree holds no keys.
func (s State) IsEmpty() bool {
	return objpath.IsEmpty(s.Values)
}

// Clone deep-copies s so it can be handed to code that may modify it.
func (s State) Clone() State {
	out := State{
		Values:     value.CloneMap(s.Values),
		Touched:    copyBools(s.Touched),
		Active:     copyBools(s.Active),
		Pristine:   copyBools(s.Pristine),
		Errors:     make(map[string][]string, len(s.Errors)),
		Generation: s.Generation,
	}
	for k, msgs := range s.Errors {
		out.Errors[k] = append([]string(nil), msgs...)
	}
	return out
}

type subscriber struct {
	id int
	fn func(State)
}

// Store owns a form's state.
type Store struct {
	state       State
	shadow      map[string]any
	initial     map[string]any
	subscribers []subscriber
	nextID      int
}

// New creates a store whose values and initial snapshot are deep copies of
// initial. A nil initial state is an empty form.
func New(initial map[string]any) *Store {
	s := &Store{
		state: State{
			Values:   value.CloneMap(initial),
			Touched:  map[string]bool{},
			Active:   map[string]bool{},
			Pristine: map[string]bool{},
			Errors:   map[string][]string{},
		},
		initial: value.CloneMap(initial),
	}
	s.shadow = objpath.Flatten(s.state.Values)
	return s
}

// State returns the last committed state.
func (s *Store) State() State {
	return s.state
}

// Lookup reads the committed value at path.
func (s *Store) Lookup(path string) (any, bool) {
	return lookup(s.shadow, s.state.Values, path)
}

// InitialValue reads path from the initial snapshot.
func (s *Store) InitialValue(path string) (any, bool) {
	return objpath.Get(path, s.initial)
}

// Initial returns a deep copy of the initial snapshot.
func (s *Store) Initial() map[string]any {
	return value.CloneMap(s.initial)
}

// Subscribe registers fn to receive every committed state. The returned
// function removes the subscription.
func (s *Store) Subscribe(fn func(State)) (cancel func()) {
	s.nextID++
	id := s.nextID
	s.subscribers = append(s.subscribers, subscriber{id: id, fn: fn})
	return func() {
		for i, sub := range s.subscribers {
			if sub.id == id {
				s.subscribers = append(s.subscribers[:i:i], s.subscribers[i+1:]...)
				return
			}
		}
	}
}

// Begin opens a transaction against the current state.
func (s *Store) Begin() *Tx {
	return &Tx{store: s, base: s.state}
}

func lookup(shadow, tree map[string]any, path string) (any, bool) {
	if v, ok := shadow[path]; ok {
		return v, true
	}
	return objpath.Get(path, tree)
}

// Tx accumulates changes to a Store. The zero value is not usable; obtain
// one from Store.Begin.
type Tx struct {
	store *Store
	base  State

	values   map[string]any
	shadow   map[string]any
	initial  map[string]any
	touched  map[string]bool
	active   map[string]bool
	pristine map[string]bool
	errors   map[string][]string

	fields []string
	seen   map[string]bool
	done   bool
}

func (tx *Tx) mark(path string) {
	if tx.seen == nil {
		tx.seen = make(map[string]bool)
	}
	if !tx.seen[path] {
		tx.seen[path] = true
		tx.fields = append(tx.fields, path)
	}
}

// Fields lists the field paths written so far, in first-write order.
func (tx *Tx) Fields() []string {
	return tx.fields
}

// Values returns the pending values tree.
func (tx *Tx) Values() map[string]any {
	if tx.values != nil {
		return tx.values
	}
	return tx.base.Values
}

func (tx *Tx) shadowMap() map[string]any {
	if tx.shadow != nil {
		return tx.shadow
	}
	return tx.store.shadow
}

func (tx *Tx) initialMap() map[string]any {
	if tx.initial != nil {
		return tx.initial
	}
	return tx.store.initial
}

// Value reads the pending value at path.
func (tx *Tx) Value(path string) (any, bool) {
	return lookup(tx.shadowMap(), tx.Values(), path)
}

// InitialValue reads path from the pending initial snapshot.
func (tx *Tx) InitialValue(path string) (any, bool) {
	return objpath.Get(path, tx.initialMap())
}

// Merge applies a merge input at path and keeps the shadow in step. It
// returns the stored value; present is false when the key was removed.
func (tx *Tx) Merge(path string, in merge.Input) (v any, present bool) {
	next, v, present := merge.Apply(tx.Values(), path, in)
	tx.values = next
	tx.syncShadow(path, v, present)
	tx.mark(path)
	return v, present
}

// SetValue stores v at path.
func (tx *Tx) SetValue(path string, v any) {
	tx.values = objpath.Set(path, tx.Values(), v)
	tx.syncShadow(path, v, true)
	tx.mark(path)
}

// DeleteValue removes path from the values tree.
func (tx *Tx) DeleteValue(path string) {
	tx.values = objpath.Delete(path, tx.Values())
	tx.syncShadow(path, nil, false)
	tx.mark(path)
}

// ReplaceValues swaps in a whole new values tree. tree is stored as given.
func (tx *Tx) ReplaceValues(tree map[string]any) {
	if tree == nil {
		tree = map[string]any{}
	}
	tx.values = tree
	tx.shadow = objpath.Flatten(tree)
}

// ReplaceInitial swaps the initial snapshot for a deep copy of tree.
func (tx *Tx) ReplaceInitial(tree map[string]any) {
	tx.initial = value.CloneMap(tree)
}

// syncShadow rewrites the flat entries under path after a tree write.
func (tx *Tx) syncShadow(path string, v any, present bool) {
	if tx.shadow == nil {
		tx.shadow = make(map[string]any, len(tx.store.shadow)+1)
		for k, sv := range tx.store.shadow {
			tx.shadow[k] = sv
		}
	}
	for _, anc := range objpath.Ancestors(path) {
		delete(tx.shadow, anc)
	}
	delete(tx.shadow, path)
	for k := range tx.shadow {
		if objpath.HasPrefix(k, path) {
			delete(tx.shadow, k)
		}
	}
	if !present {
		return
	}
	if m, ok := v.(map[string]any); ok {
		objpath.FlattenInto(tx.shadow, path, m)
		return
	}
	tx.shadow[path] = v
}

// Touched reports the pending touched flag of path.
func (tx *Tx) Touched(path string) bool {
	return pick(tx.touched, tx.base.Touched)[path]
}

// SetTouched sets the touched flag of path.
func (tx *Tx) SetTouched(path string, touched bool) {
	tx.touched = cowBools(tx.touched, tx.base.Touched)
	tx.touched[path] = touched
	tx.mark(path)
}

// Active reports the pending active flag of path.
func (tx *Tx) Active(path string) bool {
	return pick(tx.active, tx.base.Active)[path]
}

// SetActive sets the active flag of path.
func (tx *Tx) SetActive(path string, active bool) {
	tx.active = cowBools(tx.active, tx.base.Active)
	tx.active[path] = active
	tx.mark(path)
}

// Pristine reports the pending pristine flag of path.
func (tx *Tx) Pristine(path string) (pristine, tracked bool) {
	pristine, tracked = pick(tx.pristine, tx.base.Pristine)[path]
	return pristine, tracked
}

// SetPristine sets the pristine flag of path.
func (tx *Tx) SetPristine(path string, pristine bool) {
	tx.pristine = cowBools(tx.pristine, tx.base.Pristine)
	tx.pristine[path] = pristine
	tx.mark(path)
}

// CheckPristine recomputes the pristine flag of path by comparing its
// pending value with the initial snapshot, stores it and returns it.
func (tx *Tx) CheckPristine(path string) bool {
	cur, _ := tx.Value(path)
	init, _ := tx.InitialValue(path)
	pristine := value.Equal(cur, init)
	tx.SetPristine(path, pristine)
	return pristine
}

// MarkAllPristine sets every tracked pristine flag to true.
func (tx *Tx) MarkAllPristine() {
	tx.pristine = fill(pick(tx.pristine, tx.base.Pristine), true)
}

// Error returns the pending error messages of path.
func (tx *Tx) Error(path string) []string {
	if tx.errors != nil {
		return tx.errors[path]
	}
	return tx.base.Errors[path]
}

// SetError stores msgs for path. An empty msgs removes the entry, so a key
// is present only while the field has at least one failure.
func (tx *Tx) SetError(path string, msgs []string) {
	if tx.errors == nil {
		tx.errors = make(map[string][]string, len(tx.base.Errors)+1)
		for k, v := range tx.base.Errors {
			tx.errors[k] = v
		}
	}
	if len(msgs) == 0 {
		delete(tx.errors, path)
	} else {
		tx.errors[path] = msgs
	}
	tx.mark(path)
}

// ResetFields restores path to its initial value and clears its flags:
// not touched, not active, pristine, no error.
func (tx *Tx) ResetFields(paths ...string) {
	for _, path := range paths {
		if init, ok := tx.InitialValue(path); ok {
			tx.SetValue(path, value.Clone(init))
		} else {
			tx.DeleteValue(path)
		}
		tx.SetError(path, nil)
		tx.SetPristine(path, true)
		tx.SetTouched(path, false)
		tx.SetActive(path, false)
	}
}

// Reset restores the values tree to a deep copy of the initial snapshot
// and reinitialises every field-state map.
func (tx *Tx) Reset() {
	tx.ReplaceValues(value.CloneMap(tx.initialMap()))
	tx.touched = fill(pick(tx.touched, tx.base.Touched), false)
	tx.active = fill(pick(tx.active, tx.base.Active), false)
	tx.pristine = fill(pick(tx.pristine, tx.base.Pristine), true)
	tx.errors = map[string][]string{}
}

// ReplaceFlags swaps in whole field-state maps, as when restoring a
// snapshot. The maps are copied; empty error entries are dropped.
func (tx *Tx) ReplaceFlags(touched, active, pristine map[string]bool, errs map[string][]string) {
	tx.touched = copyBools(touched)
	tx.active = copyBools(active)
	tx.pristine = copyBools(pristine)
	tx.errors = make(map[string][]string, len(errs))
	for k, msgs := range errs {
		if len(msgs) > 0 {
			tx.errors[k] = append([]string(nil), msgs...)
		}
	}
}

// Commit publishes the transaction as one new state, notifies subscribers
// and returns the state. Committing twice is a no-op that returns the
// current state.
func (tx *Tx) Commit() State {
	s := tx.store
	if tx.done {
		return s.state
	}
	tx.done = true

	next := s.state
	if tx.values != nil {
		next.Values = tx.values
	}
	if tx.touched != nil {
		next.Touched = tx.touched
	}
	if tx.active != nil {
		next.Active = tx.active
	}
	if tx.pristine != nil {
		next.Pristine = tx.pristine
	}
	if tx.errors != nil {
		next.Errors = tx.errors
	}
	if tx.shadow != nil {
		s.shadow = tx.shadow
	}
	if tx.initial != nil {
		s.initial = tx.initial
	}
	next.Generation = s.state.Generation + 1
	s.state = next

	for _, sub := range append([]subscriber(nil), s.subscribers...) {
		sub.fn(next)
	}
	return next
}

func pick(pending, base map[string]bool) map[string]bool {
	if pending != nil {
		return pending
	}
	return base
}

func cowBools(pending, base map[string]bool) map[string]bool {
	if pending != nil {
		return pending
	}
	return copyBools(base)
}

func copyBools(m map[string]bool) map[string]bool {
	out := make(map[string]bool, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	return out
}

func fill(m map[string]bool, v bool) map[string]bool {
	out := make(map[string]bool, len(m))
	for k := range m {
		out[k] = v
	}
	return out
}
