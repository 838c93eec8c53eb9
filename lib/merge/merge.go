// Package merge computes the value a field takes after an input event.
//
// Every input type falls in one of three categories. Scalar inputs replace
// the current value. Single-choice inputs (radio, select-one) store the
// incoming value while selected and clear the field otherwise.
// Multi-choice inputs (checkbox, select-multiple) accumulate a sequence of
// selected values. An empty multi-choice sequence is never stored: the
// field key is removed instead, so absence means "nothing selected".
package merge

import (
	"github.com/pthm/hxform/lib/objpath"
	"github.com/pthm/hxform/lib/value"
)

// Category classifies how incoming values combine with the current value.
type Category int

const (
	Scalar Category = iota
	SingleChoice
	MultiChoice
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case Scalar:
		return "scalar"
	case SingleChoice:
		return "single-choice"
	case MultiChoice:
		return "multi-choice"
	default:
		return "unknown"
	}
}

// Input describes one value change.
type Input struct {
	Value    any
	Category Category
	// Checked is the selected state of a radio or checkbox after the event.
	Checked bool
	// Initialize replaces the value outright instead of toggling. Select
	// elements and programmatic sets always initialize.
	Initialize bool
}

// Merge returns the field value after applying in to current. present is
// false when the field must be removed from the tree.
func Merge(current any, in Input) (v any, present bool) {
	switch in.Category {
	case SingleChoice:
		if in.Checked || in.Initialize {
			return in.Value, true
		}
		return nil, false
	case MultiChoice:
		var seq []any
		if in.Initialize {
			if value.Truthy(in.Value) {
				seq = value.Slice(in.Value)
			}
		} else {
			seq = toggle(current, in.Value, in.Checked)
		}
		if len(seq) == 0 {
			return nil, false
		}
		return seq, true
	default:
		return in.Value, true
	}
}

// toggle adds or removes incoming from the current sequence. Values already
// present are not added twice, so repeated checks are idempotent.
func toggle(current, incoming any, checked bool) []any {
	var seq []any
	if current != nil {
		seq = value.Slice(current)
	}
	if checked {
		items := []any{incoming}
		if value.IsSlice(incoming) {
			items = value.Slice(incoming)
		}
		for _, item := range items {
			if !value.Contains(seq, item) {
				seq = append(seq, item)
			}
		}
		return seq
	}
	out := seq[:0]
	for _, item := range seq {
		if !value.StrictEqual(item, incoming) {
			out = append(out, item)
		}
	}
	return out
}

// Apply merges in at path and returns the new tree along with the stored
// value. tree is not modified.
func Apply(tree map[string]any, path string, in Input) (next map[string]any, v any, present bool) {
	current, _ := objpath.Get(path, tree)
	v, present = Merge(current, in)
	if !present {
		return objpath.Delete(path, tree), nil, false
	}
	return objpath.Set(path, tree, v), v, true
}
