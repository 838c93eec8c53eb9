package hxform

import (
	"net/http"
	"reflect"
	"testing"
)

func TestSimulatorStopsAtFirstError(t *testing.T) {
	f := New()
	f.MustRegister("name", TypeText).Mount()

	submitted := false
	sim := Simulate(f).
		Focus("missing").
		Type("name", "ada").
		Submit(func(map[string]any) { submitted = true })

	if !IsNotFound(sim.Err()) {
		t.Fatalf("Err() = %v, want unknown field", sim.Err())
	}
	if _, ok := f.Value("name"); ok {
		t.Error("events after the error were applied")
	}
	if submitted {
		t.Error("Submit ran after an error")
	}
}

func TestSimulatorEvents(t *testing.T) {
	f := New()
	f.MustRegister("name", TypeText).Mount()
	f.MustRegister("plan", TypeRadio, RadioValue("free")).Mount()
	f.MustRegister("plan", TypeRadio, RadioValue("team")).Mount()
	f.MustRegister("size", TypeCheckbox, CheckboxValue("x")).Mount()
	f.MustRegister("size", TypeCheckbox, CheckboxValue("m")).Mount()
	f.MustRegister("tags", TypeSelectMultiple).Mount()

	var got map[string]any
	sim := Simulate(f).
		Focus("name").Type("name", "ada").Blur("name").
		Check("plan", "team").
		Check("size", "x").Check("size", "m").Uncheck("size", "x").
		Select("tags", "a", "b").
		Submit(func(values map[string]any) { got = values })
	if err := sim.Err(); err != nil {
		t.Fatal(err)
	}

	want := map[string]any{
		"name": "ada",
		"plan": "team",
		"size": []any{"m"},
		"tags": []any{"a", "b"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("submitted %v, want %v", got, want)
	}
}

func TestTestResult(t *testing.T) {
	res := &TestResult{HTML: "<p>hi</p>", StatusCode: http.StatusOK, Headers: http.Header{}}
	res.Headers.Set(StateHeader, "tok")
	if !res.IsOK() {
		t.Error("IsOK() = false")
	}
	if res.State() != "tok" {
		t.Errorf("State() = %q", res.State())
	}
	if !res.HTMLContains("hi") || res.HTMLContains("bye") {
		t.Error("HTMLContains mismatch")
	}
}
