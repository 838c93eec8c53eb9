package hxform

import (
	"strings"

	"github.com/pthm/hxform/lib/merge"
)

// InputType is the DOM type of a form control.
type InputType string

const (
	TypeCheckbox       InputType = "checkbox"
	TypeColor          InputType = "color"
	TypeDate           InputType = "date"
	TypeDatetimeLocal  InputType = "datetime-local"
	TypeEmail          InputType = "email"
	TypeMonth          InputType = "month"
	TypeNumber         InputType = "number"
	TypePassword       InputType = "password"
	TypeRadio          InputType = "radio"
	TypeRange          InputType = "range"
	TypeSearch         InputType = "search"
	TypeTel            InputType = "tel"
	TypeText           InputType = "text"
	TypeTime           InputType = "time"
	TypeURL            InputType = "url"
	TypeWeek           InputType = "week"
	TypeTextarea       InputType = "textarea"
	TypeSelectOne      InputType = "select-one"
	TypeSelectMultiple InputType = "select-multiple"
)

// InputTypes lists every supported input type.
var InputTypes = []InputType{
	TypeCheckbox, TypeColor, TypeDate, TypeDatetimeLocal, TypeEmail,
	TypeMonth, TypeNumber, TypePassword, TypeRadio, TypeRange, TypeSearch,
	TypeTel, TypeText, TypeTime, TypeURL, TypeWeek, TypeTextarea,
	TypeSelectOne, TypeSelectMultiple,
}

func allowedTypes() string {
	names := make([]string, len(InputTypes))
	for i, t := range InputTypes {
		names[i] = string(t)
	}
	return strings.Join(names, " | ")
}

// Valid reports whether t is a supported input type.
func (t InputType) Valid() bool {
	for _, it := range InputTypes {
		if it == t {
			return true
		}
	}
	return false
}

// Category returns how values of this type merge.
func (t InputType) Category() merge.Category {
	switch t {
	case TypeRadio, TypeSelectOne:
		return merge.SingleChoice
	case TypeCheckbox, TypeSelectMultiple:
		return merge.MultiChoice
	default:
		return merge.Scalar
	}
}

// IsSelect reports whether t is a select element.
func (t InputType) IsSelect() bool {
	return t == TypeSelectOne || t == TypeSelectMultiple
}

// IsToggle reports whether t is a checkbox or radio button.
func (t InputType) IsToggle() bool {
	return t == TypeCheckbox || t == TypeRadio
}
