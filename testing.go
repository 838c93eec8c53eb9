package hxform

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
)

// Simulator drives a form the way a browser would, one DOM event at a time.
// The first error stops the simulation; later calls are no-ops.
//
//	sim := hxform.Simulate(f)
//	sim.Focus("email").Type("email", "ada@example.com").Blur("email")
//	if err := sim.Err(); err != nil {
//	    t.Fatal(err)
//	}
type Simulator struct {
	form *Form
	err  error
}

// Simulate returns a Simulator for f.
func Simulate(f *Form) *Simulator {
	return &Simulator{form: f}
}

func (s *Simulator) dispatch(name string, kind EventKind, t Target) *Simulator {
	if s.err != nil {
		return s
	}
	s.err = s.form.Dispatch(name, kind, &Event{Target: t})
	return s
}

// Focus focuses the field.
func (s *Simulator) Focus(name string) *Simulator {
	return s.dispatch(name, EventFocus, Target{})
}

// Blur blurs the field.
func (s *Simulator) Blur(name string) *Simulator {
	return s.dispatch(name, EventBlur, Target{})
}

// Type sets the value of a text-like field.
func (s *Simulator) Type(name, v string) *Simulator {
	return s.dispatch(name, EventChange, Target{Value: v})
}

// Check checks the checkbox or radio of name registered with value v.
func (s *Simulator) Check(name, v string) *Simulator {
	return s.dispatch(name, EventChange, Target{Value: v, Checked: true})
}

// Uncheck unchecks the checkbox of name registered with value v.
func (s *Simulator) Uncheck(name, v string) *Simulator {
	return s.dispatch(name, EventChange, Target{Value: v, Checked: false})
}

// Select selects options of a select field. Previously selected options
// not listed are deselected.
func (s *Simulator) Select(name string, opts ...string) *Simulator {
	return s.dispatch(name, EventChange, Target{SelectedOptions: opts})
}

// Submit submits the form. cb is called only for accepted submissions.
func (s *Simulator) Submit(cb func(values map[string]any)) *Simulator {
	if s.err == nil {
		s.form.Submit(cb)
	}
	return s
}

// Err returns the first dispatch error.
func (s *Simulator) Err() error {
	return s.err
}

// TestResult holds the response of a Handler request made in a test.
type TestResult struct {
	HTML       string
	StatusCode int
	Headers    http.Header
}

// State returns the state token of the response.
func (r *TestResult) State() string {
	return r.Headers.Get(StateHeader)
}

// IsOK returns true if the status code is 200.
func (r *TestResult) IsOK() bool {
	return r.StatusCode == http.StatusOK
}

// HTMLContains checks if the HTML contains the given substring.
func (r *TestResult) HTMLContains(s string) bool {
	return strings.Contains(r.HTML, s)
}

// TestEvent posts one field event to h the way the wired control does.
// Pass the token of the previous response as state, or "" to start from a
// fresh form.
//
//	res := hxform.TestEvent(h, "/signup/", first.State(), hxform.EventChange, "email", url.Values{
//	    hxform.ValueParam: {"ada@example.com"},
//	})
func TestEvent(h http.Handler, target, state string, kind EventKind, field string, extra url.Values) *TestResult {
	form := url.Values{}
	for k, vs := range extra {
		form[k] = append([]string(nil), vs...)
	}
	form.Set(EventParam, string(kind))
	if field != "" {
		form.Set(FieldParam, field)
	}
	if state != "" {
		form.Set(StateParam, state)
	}

	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("HX-Request", "true")
	return record(h, req)
}

// TestGet renders the initial form of h.
func TestGet(h http.Handler, target string) *TestResult {
	return record(h, httptest.NewRequest(http.MethodGet, target, nil))
}

func record(h http.Handler, req *http.Request) *TestResult {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return &TestResult{
		HTML:       rec.Body.String(),
		StatusCode: rec.Code,
		Headers:    rec.Header(),
	}
}
