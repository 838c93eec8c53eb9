package hxform

import (
	"errors"
	"reflect"
	"testing"
)

func newExportForm(t *testing.T) *Form {
	t.Helper()
	f := New(WithInitialState(map[string]any{
		"size":    []any{"x"},
		"address": map[string]any{"city": "London"},
	}))
	f.MustRegister("email", TypeEmail, ValidEmail()).Mount()
	f.MustRegister("address.city", TypeText).Mount()
	f.MustRegister("size", TypeCheckbox, CheckboxValue("x")).Mount()
	f.MustRegister("size", TypeCheckbox, CheckboxValue("m")).Mount()

	sim := Simulate(f).
		Focus("email").Type("email", "nope").Blur("email").
		Type("address.city", "Paris").
		Check("size", "m")
	if err := sim.Err(); err != nil {
		t.Fatal(err)
	}
	return f
}

func TestExportImport(t *testing.T) {
	enc, err := NewEncoder([]byte("test-key"))
	if err != nil {
		t.Fatal(err)
	}

	for _, sensitive := range []bool{false, true} {
		src := newExportForm(t)
		token, err := src.Export(enc, sensitive)
		if err != nil {
			t.Fatalf("Export(sensitive=%v) error = %v", sensitive, err)
		}

		dst := New()
		dst.MustRegister("email", TypeEmail, ValidEmail()).Mount()
		if err := dst.Import(enc, token, sensitive); err != nil {
			t.Fatalf("Import(sensitive=%v) error = %v", sensitive, err)
		}

		if dst.ID() != src.ID() {
			t.Errorf("ID = %s, want %s", dst.ID(), src.ID())
		}
		if got, want := dst.GetFormState(), src.GetFormState(); !reflect.DeepEqual(got, want) {
			t.Errorf("imported state = %+v, want %+v", got, want)
		}

		// the initial snapshot travels with the token
		dst.Reset()
		want := map[string]any{
			"size":    []any{"x"},
			"address": map[string]any{"city": "London"},
		}
		if got := dst.GetFormState().Values; !reflect.DeepEqual(got, want) {
			t.Errorf("Values after Reset = %v, want %v", got, want)
		}
	}
}

func TestImportedFormKeepsWorking(t *testing.T) {
	enc, err := NewEncoder([]byte("test-key"))
	if err != nil {
		t.Fatal(err)
	}
	token, err := newExportForm(t).Export(enc, false)
	if err != nil {
		t.Fatal(err)
	}

	f := New()
	f.MustRegister("email", TypeEmail, ValidEmail()).Mount()
	f.MustRegister("size", TypeCheckbox, CheckboxValue("x")).Mount()
	f.MustRegister("size", TypeCheckbox, CheckboxValue("m")).Mount()
	if err := f.Import(enc, token, false); err != nil {
		t.Fatal(err)
	}

	// email is still touched, so the next change validates
	Simulate(f).Type("email", "ada@example.com").Uncheck("size", "m")
	st := f.GetFormState()
	if len(st.Errors) != 0 {
		t.Errorf("Errors = %v, want none", st.Errors)
	}
	if !reflect.DeepEqual(st.Values["size"], []any{"x"}) {
		t.Errorf("Values[size] = %v, want [x]", st.Values["size"])
	}
	if !st.FieldPristine["size"] {
		t.Error("FieldPristine[size] = false after returning to the initial value")
	}
}

func TestImportErrors(t *testing.T) {
	enc, _ := NewEncoder([]byte("key-one"))
	other, _ := NewEncoder([]byte("key-two"))
	token, err := New(WithInitialState(map[string]any{"a": "b"})).Export(enc, false)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name      string
		enc       *Encoder
		token     string
		sensitive bool
		check     func(error) bool
	}{
		{"wrong key", other, token, false, IsDecryptionError},
		{"malformed", enc, "not-a-token", false, func(err error) bool { return errors.Is(err, ErrInvalidFormat) }},
		{"signed as sealed", enc, token, true, func(err error) bool { return errors.Is(err, ErrInvalidFormat) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := New()
			before := f.ID()
			err := f.Import(tt.enc, tt.token, tt.sensitive)
			if !tt.check(err) {
				t.Errorf("Import() error = %v", err)
			}
			if f.ID() != before {
				t.Error("failed Import changed the form")
			}
		})
	}
}
