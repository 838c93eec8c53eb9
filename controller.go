package hxform

import (
	"context"
	"io"

	"github.com/a-h/templ"
	"github.com/pthm/hxform/lib/validation"
	"github.com/pthm/hxform/lib/value"
)

// Controller renders a controlled field. It registers and mounts the field
// on first render, applies InitialValue once, and hands the binding plus
// the field's flags to View:
//
//	c := &hxform.Controller{
//	    Form:         f,
//	    Name:         "nickname",
//	    Type:         hxform.TypeText,
//	    Rules:        validation.Rules{validation.Required()},
//	    InitialValue: "guest",
//	    View: func(field *hxform.Field, state hxform.FieldState) templ.Component {
//	        return nicknameInput(field, state)
//	    },
//	}
//
// Controller implements templ.Component; the output is wrapped in a div.
type Controller struct {
	Form         *Form
	Name         string
	Type         InputType
	InitialValue any
	Rules        validation.Rules
	Disabled     bool
	// RunValidationWhenChangesIn lists paths whose changes re-validate
	// this field.
	RunValidationWhenChangesIn []string
	ControllerRef              *Ref
	RadioFieldValue            string
	CheckboxFieldValue         string
	View                       func(field *Field, state FieldState) templ.Component

	field       *Field
	initialized bool
}

// Field registers the controlled field if needed and returns it.
func (c *Controller) Field() (*Field, error) {
	if c.field != nil {
		return c.field, nil
	}
	opts := []FieldOption{
		Rules(c.Rules...),
		RadioValue(c.RadioFieldValue),
		CheckboxValue(c.CheckboxFieldValue),
		RunValidationWhenChangeIn(c.RunValidationWhenChangesIn...),
		WithRef(c.ControllerRef),
	}
	if c.Disabled {
		opts = append(opts, Disabled())
	}
	fld, err := c.Form.Register(c.Name, c.Type, opts...)
	if err != nil {
		return nil, err
	}
	c.field = fld.Mount()
	return c.field, nil
}

// Render implements templ.Component.
func (c *Controller) Render(ctx context.Context, w io.Writer) error {
	fld, err := c.Field()
	if err != nil {
		return err
	}
	if !c.initialized {
		c.initialized = true
		if value.Truthy(c.InitialValue) {
			if err := c.Form.SetField(c.Name, c.InitialValue, SetFieldOptions{}); err != nil {
				return err
			}
		}
	}

	if _, err := io.WriteString(w, "<div>"); err != nil {
		return err
	}
	if c.View != nil {
		if err := c.View(fld, fld.State()).Render(ctx, w); err != nil {
			return err
		}
	}
	_, err = io.WriteString(w, "</div>")
	return err
}

var _ templ.Component = (*Controller)(nil)
