package hxform

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/pthm/hxform/lib/linked"
	"github.com/pthm/hxform/lib/merge"
	"github.com/pthm/hxform/lib/store"
	"github.com/pthm/hxform/lib/validation"
	"github.com/pthm/hxform/lib/value"
	"github.com/uber-go/tally/v4"
)

// Form owns the state of one form instance: values, per-field flags,
// errors, the initial snapshot and the linked-validation index.
//
// Every event runs to completion before returning: the value update, the
// touched/active update, validation of the field and the linked-validation
// cascade are accumulated in one transaction and committed together, so
// subscribers only ever see whole events.
//
// Form is not safe for concurrent use. Validators and event callbacks must
// not call back into the form while it is handling an event.
type Form struct {
	id       string
	store    *store.Store
	linked   *linked.Index
	val      *validation.Validator
	fields   map[string][]*Field
	mounted  map[string]bool
	elements map[string]Element
	logger   *slog.Logger
	metrics  tally.Scope

	// pending is the transaction being validated, if any.
	pending *store.Tx
}

// New creates a form.
//
//	f := hxform.New(hxform.WithInitialState(map[string]any{
//	    "email": "",
//	    "size":  []any{"m"},
//	}))
func New(opts ...Option) *Form {
	o := newOptions(opts)
	return &Form{
		id:       uuid.NewString(),
		store:    store.New(o.initial),
		linked:   linked.New(),
		val:      validation.New(validation.Config{SplitNumericErrors: o.splitNumericErrors}),
		fields:   make(map[string][]*Field),
		mounted:  make(map[string]bool),
		elements: make(map[string]Element),
		logger:   o.logger,
		metrics:  o.metrics,
	}
}

// ID returns the form instance ID.
func (f *Form) ID() string {
	return f.id
}

// FormState is a read-only snapshot of a form.
type FormState struct {
	Values        map[string]any      `json:"values"`
	Active        map[string]bool     `json:"active"`
	Touched       map[string]bool     `json:"touched"`
	Errors        map[string][]string `json:"errors"`
	Invalid       bool                `json:"invalid"`
	IsEmpty       bool                `json:"isEmpty"`
	FieldPristine map[string]bool     `json:"fieldPristine"`
	FormPristine  bool                `json:"formPristine"`
}

func newFormState(st store.State) FormState {
	st = st.Clone()
	return FormState{
		Values:        st.Values,
		Active:        st.Active,
		Touched:       st.Touched,
		Errors:        st.Errors,
		Invalid:       !st.Valid(),
		IsEmpty:       st.IsEmpty(),
		FieldPristine: st.Pristine,
		FormPristine:  st.FormPristine(),
	}
}

// GetFormState returns a copy of the current state.
func (f *Form) GetFormState() FormState {
	return newFormState(f.store.State())
}

// Subscribe calls fn with the new state after every committed event.
func (f *Form) Subscribe(fn func(FormState)) (cancel func()) {
	return f.store.Subscribe(func(st store.State) {
		fn(newFormState(st))
	})
}

// Value returns the current value at path. Called from a validator, it
// reads the values of the event being applied.
func (f *Form) Value(path string) (any, bool) {
	if f.pending != nil {
		return f.pending.Value(path)
	}
	return f.store.Lookup(path)
}

// Field returns the first field registered under name, or nil.
func (f *Form) Field(name string) *Field {
	if regs := f.fields[name]; len(regs) > 0 {
		return regs[0]
	}
	return nil
}

// SetFieldOptions controls SetField.
type SetFieldOptions struct {
	ShouldSetTouched    bool
	ShouldCheckPristine bool
	// MultipleValues stores value as a sequence. value must then be a
	// sequence.
	MultipleValues bool
	// Validations are run against the new value if the field is touched.
	Validations validation.Rules
}

// SetField sets a field programmatically. Without MultipleValues a
// sequence is unwrapped to its first item.
func (f *Form) SetField(name string, v any, opts SetFieldOptions) error {
	cat := merge.SingleChoice
	if opts.MultipleValues {
		if !value.IsSlice(v) {
			err := fmt.Errorf("%w: field %q", ErrNotSequence, name)
			f.configError(err)
			return err
		}
		cat = merge.MultiChoice
	} else if value.IsSlice(v) {
		seq := value.Slice(v)
		v = nil
		if len(seq) > 0 {
			v = seq[0]
		}
	}

	f.update(fieldUpdate{
		name:          name,
		input:         merge.Input{Value: v, Category: cat, Initialize: true},
		setTouched:    opts.ShouldSetTouched,
		checkPristine: opts.ShouldCheckPristine,
		validate:      opts.Validations != nil,
		rules:         opts.Validations,
	}, "set")
	return nil
}

// ResetField restores one registered field to its initial value and clears
// its error, touched and active flags. Unknown fields are ignored.
func (f *Form) ResetField(name string) {
	if len(f.fields[name]) == 0 {
		f.logger.Debug("hxform.reset_field.unknown", "form", f.id, "field", name)
		return
	}
	tx := f.store.Begin()
	tx.ResetFields(name)
	f.commit(tx, "reset_field")
}

// Reset restores the values to the initial snapshot: every field becomes
// untouched, inactive and pristine, and all errors are cleared.
func (f *Form) Reset() {
	tx := f.store.Begin()
	tx.Reset()
	f.commit(tx, "reset")
}

// Reinitialize replaces the initial snapshot and the values with initial.
// Field flags are left unchanged.
func (f *Form) Reinitialize(initial map[string]any) {
	tx := f.store.Begin()
	tx.ReplaceInitial(initial)
	tx.ReplaceValues(value.CloneMap(initial))
	f.commit(tx, "reinitialize")
}

// Submit calls cb with a copy of the values unless the form has errors or
// holds no values. On acceptance every field is marked pristine first. It
// reports whether cb was called.
func (f *Form) Submit(cb func(values map[string]any)) bool {
	st := f.store.State()
	if !st.Valid() {
		f.rejectSubmit("errors", len(st.Errors))
		return false
	}
	if st.IsEmpty() {
		f.rejectSubmit("empty", 0)
		return false
	}

	tx := f.store.Begin()
	tx.MarkAllPristine()
	st = f.commit(tx, "submit")
	f.metrics.Counter("submits_accepted").Inc(1)

	if cb != nil {
		cb(value.CloneMap(st.Values))
	}
	return true
}

// HandleSubmit returns a submit event handler. The handler always prevents
// the default submission and then behaves like Submit.
func (f *Form) HandleSubmit(cb func(values map[string]any)) func(*Event) {
	return func(e *Event) {
		if e != nil {
			e.PreventDefault()
		}
		f.Submit(cb)
	}
}

func (f *Form) rejectSubmit(reason string, errs int) {
	f.metrics.Counter("submits_rejected").Inc(1)
	f.logger.Debug("hxform.submit.rejected", "form", f.id, "reason", reason, "errors", errs)
}

// Dispatch routes a field event by name. For checkbox and radio groups the
// registration whose value matches the event target handles the event.
func (f *Form) Dispatch(name string, kind EventKind, e *Event) error {
	if e == nil {
		e = &Event{}
	}
	fld := f.fieldFor(name, e.Target.Value)
	if fld == nil {
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	switch kind {
	case EventChange:
		fld.OnChange(e)
	case EventFocus:
		fld.OnFocus(e)
	case EventBlur:
		fld.OnBlur(e)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownEvent, kind)
	}
	return nil
}

func (f *Form) fieldFor(name, target string) *Field {
	regs := f.fields[name]
	for _, fld := range regs {
		if fld.typ.IsToggle() && fld.discriminator() == target {
			return fld
		}
	}
	if len(regs) > 0 {
		return regs[0]
	}
	return nil
}

func (f *Form) addField(fld *Field) {
	regs := f.fields[fld.name]
	for i, old := range regs {
		if old.typ == fld.typ && old.discriminator() == fld.discriminator() {
			regs[i] = fld
			return
		}
	}
	f.fields[fld.name] = append(regs, fld)
}

type fieldUpdate struct {
	name          string
	input         merge.Input
	setTouched    bool
	checkPristine bool
	validate      bool
	rules         validation.Rules
}

// update runs one value-changing event: merge, touched, validation,
// pristine check and linked validation, committed as one batch.
func (f *Form) update(u fieldUpdate, op string) {
	tx := f.store.Begin()
	tx.Merge(u.name, u.input)
	if u.setTouched {
		tx.SetTouched(u.name, true)
	}
	if u.validate {
		f.validate(tx, u.name, u.rules)
	}
	if u.checkPristine {
		tx.CheckPristine(u.name)
	}
	f.cascade(tx, u.name)
	f.commit(tx, op)
}

// validate re-runs rules for name against its pending value. Untouched
// fields are never validated.
func (f *Form) validate(tx *store.Tx, name string, rules validation.Rules) {
	if !tx.Touched(name) {
		return
	}
	v, _ := tx.Value(name)
	msgs := f.validateIn(tx, v, rules)
	if len(msgs) > 0 {
		f.metrics.Counter("validation_failures").Inc(int64(len(msgs)))
	}
	tx.SetError(name, msgs)
}

func (f *Form) validateIn(tx *store.Tx, v any, rules validation.Rules) []string {
	f.pending = tx
	defer func() { f.pending = nil }()
	return f.val.Validate(v, rules)
}

// cascade re-validates every field that declared a dependency on name.
func (f *Form) cascade(tx *store.Tx, name string) {
	for _, dep := range f.linked.Dependents(name) {
		f.validate(tx, dep.Field, dep.Rules)
	}
}

func (f *Form) commit(tx *store.Tx, op string) store.State {
	fields := tx.Fields()
	st := tx.Commit()
	f.metrics.Counter("commits").Inc(1)
	f.logger.Debug("hxform.commit",
		slog.String("form", f.id),
		slog.String("op", op),
		slog.Uint64("generation", st.Generation),
		slog.Any("fields", fields),
	)
	return st
}

func (f *Form) configError(err error) {
	f.metrics.Counter("config_errors").Inc(1)
	f.logger.Warn("hxform.config", "form", f.id, "error", err)
}
