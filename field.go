package hxform

import (
	"fmt"

	"github.com/a-h/templ"
	"github.com/pthm/hxform/lib/merge"
	"github.com/pthm/hxform/lib/validation"
	"github.com/pthm/hxform/lib/value"
)

// Field binds one form control to a form. It is returned by Register and
// carries everything a control needs: its current value or checked state,
// its attributes and its event handlers.
//
// A Field reads the live form state, so a Field obtained once stays current
// across events.
type Field struct {
	form *Form
	name string
	typ  InputType
	cfg  fieldConfig
}

// Register binds a control of type typ to the field at name, which may be
// a dotted path. Checkbox and radio groups register once per option with
// the same name and a distinct CheckboxValue/RadioValue.
//
//	email, err := f.Register("email", hxform.TypeEmail,
//	    hxform.Required(),
//	    hxform.ValidEmail("Enter a valid email"),
//	)
//
// Dependencies declared with RunValidationWhenChangeIn take effect as soon
// as Register returns; mounting is not required.
//
// Register fails with ErrInvalidInputType for unknown types and with
// ErrMissingRadioValue/ErrMissingCheckboxValue when a radio or checkbox has
// no value.
func (f *Form) Register(name string, typ InputType, opts ...FieldOption) (*Field, error) {
	if !typ.Valid() {
		err := fmt.Errorf("%w: %q is not assignable to parameter of type: %s", ErrInvalidInputType, typ, allowedTypes())
		f.configError(err)
		return nil, err
	}

	var cfg fieldConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	switch {
	case typ == TypeRadio && cfg.radioValue == "":
		err := fmt.Errorf("%w: field %q", ErrMissingRadioValue, name)
		f.configError(err)
		return nil, err
	case typ == TypeCheckbox && cfg.checkboxValue == "":
		err := fmt.Errorf("%w: field %q", ErrMissingCheckboxValue, name)
		f.configError(err)
		return nil, err
	}

	fld := &Field{form: f, name: name, typ: typ, cfg: cfg}
	f.addField(fld)
	f.linked.Register(name, cfg.rules, cfg.dependsOn)
	return fld, nil
}

// MustRegister is like Register but panics on error. It is meant for
// templates, where a registration error is a programming mistake.
func (f *Form) MustRegister(name string, typ InputType, opts ...FieldOption) *Field {
	fld, err := f.Register(name, typ, opts...)
	if err != nil {
		panic(err)
	}
	return fld
}

// Name returns the field path.
func (fld *Field) Name() string { return fld.name }

// Type returns the registered input type.
func (fld *Field) Type() InputType { return fld.typ }

// Rules returns the field's validation rules.
func (fld *Field) Rules() validation.Rules { return fld.cfg.rules }

// Disabled reports whether the field ignores events.
func (fld *Field) Disabled() bool { return fld.cfg.disabled }

// Multiple reports whether the control selects several values.
func (fld *Field) Multiple() bool { return fld.typ == TypeSelectMultiple }

func (fld *Field) discriminator() string {
	switch fld.typ {
	case TypeRadio:
		return fld.cfg.radioValue
	case TypeCheckbox:
		return fld.cfg.checkboxValue
	}
	return ""
}

func (fld *Field) current() any {
	v, _ := fld.form.store.Lookup(fld.name)
	return v
}

// Value returns the value the control displays. Radios and checkboxes show
// their own value, select-multiple its selection, other controls the field
// value or "" when unset.
func (fld *Field) Value() any {
	switch fld.typ {
	case TypeRadio, TypeCheckbox:
		return fld.discriminator()
	case TypeSelectMultiple:
		return fld.current()
	}
	if v := fld.current(); value.Truthy(v) {
		return v
	}
	return ""
}

// Checked reports whether a radio or checkbox is selected.
func (fld *Field) Checked() bool {
	cur := fld.current()
	switch fld.typ {
	case TypeRadio:
		return value.StrictEqual(cur, fld.cfg.radioValue)
	case TypeCheckbox:
		return value.IsSlice(cur) && value.Contains(cur, fld.cfg.checkboxValue)
	}
	return false
}

// Selected reports whether a select option with value opt is selected.
func (fld *Field) Selected(opt string) bool {
	cur := fld.current()
	if cur == nil {
		return false
	}
	for _, item := range value.Slice(cur) {
		if value.String(item) == opt {
			return true
		}
	}
	return false
}

// Errors returns the field's current error messages.
func (fld *Field) Errors() []string {
	msgs := fld.form.store.State().Errors[fld.name]
	return append([]string(nil), msgs...)
}

// Attrs returns the attributes to spread on the control:
//
//	<input { f.MustRegister("email", hxform.TypeEmail).Attrs()... }/>
func (fld *Field) Attrs() templ.Attributes {
	attrs := templ.Attributes{"name": fld.name}
	switch fld.typ {
	case TypeSelectOne, TypeSelectMultiple, TypeTextarea:
	default:
		attrs["type"] = string(fld.typ)
	}
	switch fld.typ {
	case TypeRadio, TypeCheckbox:
		attrs["value"] = fld.discriminator()
		attrs["checked"] = fld.Checked()
	case TypeSelectMultiple:
		attrs["multiple"] = true
	case TypeSelectOne:
	default:
		attrs["value"] = value.String(fld.Value())
	}
	if fld.cfg.disabled {
		attrs["disabled"] = true
	}
	return attrs
}

// OptionAttrs returns the attributes of an <option> with value opt.
func (fld *Field) OptionAttrs(opt string) templ.Attributes {
	return templ.Attributes{
		"value":    opt,
		"selected": fld.Selected(opt),
	}
}

// OnChange handles a change event. Disabled fields ignore it.
func (fld *Field) OnChange(e *Event) {
	if fld.cfg.disabled {
		return
	}
	if e == nil {
		e = &Event{}
	}
	t := e.Target
	typ := t.Type
	if !typ.Valid() {
		typ = fld.typ
	}

	var v any = t.Value
	switch {
	case typ.IsToggle() && t.Value == "":
		v = fld.discriminator()
	case typ == TypeSelectOne:
		v = nil
		if len(t.SelectedOptions) > 0 {
			v = t.SelectedOptions[0]
		}
	case typ == TypeSelectMultiple:
		v = value.Slice(t.SelectedOptions)
	}

	fld.form.update(fieldUpdate{
		name: fld.name,
		input: merge.Input{
			Value:      v,
			Category:   typ.Category(),
			Checked:    t.Checked,
			Initialize: typ.IsSelect(),
		},
		checkPristine: true,
		validate:      true,
		rules:         fld.cfg.rules,
	}, "change")

	if fld.cfg.onChange != nil {
		fld.cfg.onChange(e)
	}
}

// OnFocus marks the field touched and active. Disabled fields prevent the
// event's default and ignore it.
func (fld *Field) OnFocus(e *Event) {
	if e == nil {
		e = &Event{}
	}
	if fld.cfg.disabled {
		e.PreventDefault()
		return
	}
	tx := fld.form.store.Begin()
	tx.SetTouched(fld.name, true)
	tx.SetActive(fld.name, true)
	fld.form.commit(tx, "focus")

	if fld.cfg.onFocus != nil {
		fld.cfg.onFocus(e)
	}
}

// OnBlur marks the field inactive and validates it. Disabled fields
// prevent the event's default and ignore it.
func (fld *Field) OnBlur(e *Event) {
	if e == nil {
		e = &Event{}
	}
	if fld.cfg.disabled {
		e.PreventDefault()
		return
	}
	tx := fld.form.store.Begin()
	tx.SetActive(fld.name, false)
	fld.form.validate(tx, fld.name, fld.cfg.rules)
	fld.form.commit(tx, "blur")

	if fld.cfg.onBlur != nil {
		fld.cfg.onBlur(e)
	}
}

// Ref is the element reference callback. Call it with the mounted element,
// and with nil when the element goes away. The first mount of a field name
// marks it pristine. Selectable elements get their options synced with the
// current value.
func (fld *Field) Ref(el Element) {
	form := fld.form
	if fld.cfg.ref != nil {
		fld.cfg.ref.Current = el
	}
	if el == nil {
		delete(form.elements, fld.name)
		return
	}
	form.elements[fld.name] = el

	if !form.mounted[fld.name] {
		form.mounted[fld.name] = true
		tx := form.store.Begin()
		tx.SetPristine(fld.name, true)
		form.commit(tx, "mount")
	}

	if sel, ok := el.(Selectable); ok && sel.ElementType().IsSelect() {
		if value.Truthy(fld.current()) {
			sel.SelectOptions(fld.Selected)
		}
	}
}

// Mount mounts the field on a StaticElement of its own type. Use it for
// fields rendered on the server.
func (fld *Field) Mount() *Field {
	fld.Ref(StaticElement(fld.typ))
	return fld
}

// FieldState summarises one field for render functions.
type FieldState struct {
	IsTouched bool
	IsDirty   bool
	Invalid   bool
	IsActive  bool
	Error     []string
}

// State returns the field's flags.
func (fld *Field) State() FieldState {
	st := fld.form.store.State()
	msgs, invalid := st.Errors[fld.name]
	return FieldState{
		IsTouched: st.Touched[fld.name],
		IsDirty:   !st.Pristine[fld.name],
		Invalid:   invalid,
		IsActive:  st.Active[fld.name],
		Error:     append([]string{}, msgs...),
	}
}
