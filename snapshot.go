package hxform

import (
	"fmt"

	"github.com/pthm/hxform/lib/store"
)

// snapshot is the encodable form of a Form: its ID, committed state and
// initial values.
type snapshot struct {
	id      string
	state   store.State
	initial map[string]any
}

// Short keys keep tokens small.
const (
	keyID       = "id"
	keyValues   = "v"
	keyInitial  = "i"
	keyTouched  = "t"
	keyActive   = "a"
	keyPristine = "p"
	keyErrors   = "e"
)

func (s *snapshot) EncodeState() map[string]any {
	return map[string]any{
		keyID:       s.id,
		keyValues:   s.state.Values,
		keyInitial:  s.initial,
		keyTouched:  s.state.Touched,
		keyActive:   s.state.Active,
		keyPristine: s.state.Pristine,
		keyErrors:   s.state.Errors,
	}
}

func (s *snapshot) DecodeState(m map[string]any) error {
	id, ok := m[keyID].(string)
	if !ok {
		return fmt.Errorf("%w: missing form id", ErrInvalidFormat)
	}
	s.id = id

	var err error
	if s.state.Values, err = decodeTree(m[keyValues]); err != nil {
		return err
	}
	if s.initial, err = decodeTree(m[keyInitial]); err != nil {
		return err
	}
	if s.state.Touched, err = decodeBools(m[keyTouched]); err != nil {
		return err
	}
	if s.state.Active, err = decodeBools(m[keyActive]); err != nil {
		return err
	}
	if s.state.Pristine, err = decodeBools(m[keyPristine]); err != nil {
		return err
	}
	s.state.Errors, err = decodeErrors(m[keyErrors])
	return err
}

func decodeTree(v any) (map[string]any, error) {
	switch m := v.(type) {
	case nil:
		return map[string]any{}, nil
	case map[string]any:
		return m, nil
	}
	return nil, fmt.Errorf("%w: values are %T", ErrInvalidFormat, v)
}

func decodeBools(v any) (map[string]bool, error) {
	m, err := decodeTree(v)
	if err != nil {
		return nil, err
	}
	out := make(map[string]bool, len(m))
	for k, raw := range m {
		b, ok := raw.(bool)
		if !ok {
			return nil, fmt.Errorf("%w: flag %q is %T", ErrInvalidFormat, k, raw)
		}
		out[k] = b
	}
	return out, nil
}

func decodeErrors(v any) (map[string][]string, error) {
	m, err := decodeTree(v)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]string, len(m))
	for k, raw := range m {
		items, ok := raw.([]any)
		if !ok {
			return nil, fmt.Errorf("%w: errors of %q are %T", ErrInvalidFormat, k, raw)
		}
		msgs := make([]string, 0, len(items))
		for _, item := range items {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%w: error of %q is %T", ErrInvalidFormat, k, item)
			}
			msgs = append(msgs, s)
		}
		out[k] = msgs
	}
	return out, nil
}

// Export encodes the form's state, initial snapshot and ID into a token.
// sensitive seals the token instead of signing it.
func (f *Form) Export(enc *Encoder, sensitive bool) (string, error) {
	s := &snapshot{id: f.id, state: f.store.State(), initial: f.store.Initial()}
	return enc.Encode(s, sensitive)
}

// Import restores a token produced by Export, replacing the form's ID,
// initial snapshot, values and field flags in one batch. Registrations
// and the linked-validation index are kept.
func (f *Form) Import(enc *Encoder, token string, sensitive bool) error {
	var s snapshot
	if err := enc.Decode(token, sensitive, &s); err != nil {
		return wrapEncodingError(err)
	}
	f.id = s.id
	tx := f.store.Begin()
	tx.ReplaceInitial(s.initial)
	tx.ReplaceValues(s.state.Values)
	tx.ReplaceFlags(s.state.Touched, s.state.Active, s.state.Pristine, s.state.Errors)
	f.commit(tx, "import")
	return nil
}
