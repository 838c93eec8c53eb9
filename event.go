package hxform

// EventKind names the field events the engine reacts to.
type EventKind string

const (
	EventChange EventKind = "change"
	EventFocus  EventKind = "focus"
	EventBlur   EventKind = "blur"
	EventSubmit EventKind = "submit"
	EventReset  EventKind = "reset"
)

// Target is the part of a DOM event target the engine reads.
type Target struct {
	// Type is the element type. Empty means the registered type.
	Type InputType
	// Value is the element value. For checkboxes and radios an empty value
	// means the registered checkbox/radio value.
	Value string
	// Checked is the state of a checkbox or radio after the event.
	Checked bool
	// SelectedOptions holds the values of the selected options of a select.
	SelectedOptions []string
}

// Event is a DOM-shaped input, focus, blur or submit event.
type Event struct {
	Target           Target
	defaultPrevented bool
}

// PreventDefault suppresses the browser's default handling of the event.
func (e *Event) PreventDefault() {
	e.defaultPrevented = true
}

// DefaultPrevented reports whether PreventDefault was called.
func (e *Event) DefaultPrevented() bool {
	return e.defaultPrevented
}

// Element is a mounted form control.
type Element interface {
	ElementType() InputType
}

// Selectable is implemented by select elements that let the form mark
// options as selected when they mount.
type Selectable interface {
	Element
	SelectOptions(selected func(value string) bool)
}

// Ref receives the element a field is mounted on.
type Ref struct {
	Current Element
}

// StaticElement is an Element carrying only its type. Use it to mount
// fields that are rendered on the server.
type StaticElement InputType

// ElementType returns the element's type.
func (s StaticElement) ElementType() InputType {
	return InputType(s)
}
