package hxform

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"sync"

	"github.com/a-h/templ"
)

// Request parameters and headers of the HTMX transport.
const (
	StateParam   = "hxform-state"
	EventParam   = "hxform-event"
	FieldParam   = "hxform-field"
	ValueParam   = "hxform-value"
	CheckedParam = "hxform-checked"
	StateHeader  = "HX-Form-State"
)

// Handler serves a server-rendered form over HTMX. The form state travels
// with the page as a signed (or sealed) token; each request rebuilds the
// form, restores the token, applies one event and renders the result.
//
//	h := &hxform.Handler{
//	    Encoder: enc,
//	    Build: func(f *hxform.Form) error {
//	        _, err := f.Register("email", hxform.TypeEmail, hxform.Required())
//	        return err
//	    },
//	    Render: func(ctx context.Context, f *hxform.Form) templ.Component {
//	        return signupForm(f)
//	    },
//	}
//	mux.Handle("/signup/", h)
//
// GET renders a fresh form. POST requires the HX-Request header, which
// HTMX sends and cross-site forms cannot.
type Handler struct {
	// Build registers the form's fields. Fields are mounted after Build.
	Build func(f *Form) error
	// Render renders the form. The state input is appended to its output.
	Render func(ctx context.Context, f *Form) templ.Component
	// OnSubmit receives the values of an accepted submission.
	OnSubmit func(ctx context.Context, values map[string]any) error
	// Options are passed to New for every request.
	Options []Option
	// Encoder signs or seals state tokens. When nil, the first request
	// creates one with a random key, so tokens do not survive a restart
	// and are not shared between instances. Set it in production.
	Encoder   *Encoder
	Sensitive bool
	Logger    *slog.Logger

	// OnError writes the response for a failed request. Defaults to
	// 404 for unknown fields/events, 400 for bad state, 500 otherwise.
	OnError func(http.ResponseWriter, *http.Request, error)

	encOnce sync.Once
	enc     *Encoder
	encErr  error
}

func (h *Handler) encoder() (*Encoder, error) {
	if h.Encoder != nil {
		return h.Encoder, nil
	}
	h.encOnce.Do(func() {
		key := make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			h.encErr = fmt.Errorf("hxform: generate state key: %w", err)
			return
		}
		h.enc, h.encErr = NewEncoder(key)
		h.logger().Warn("hxform.handler: no Encoder set, using a random key")
	})
	return h.enc, h.encErr
}

func (h *Handler) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

func (h *Handler) onError(w http.ResponseWriter, r *http.Request, err error) {
	if h.OnError != nil {
		h.OnError(w, r, err)
		return
	}
	switch {
	case IsNotFound(err):
		http.Error(w, "Not found", http.StatusNotFound)
	case IsDecryptionError(err), errors.Is(err, ErrInvalidFormat):
		http.Error(w, "Bad request", http.StatusBadRequest)
	default:
		h.logger().Error("hxform.handler", "path", r.URL.Path, "error", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
	}
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet, http.MethodHead:
		f, err := h.build()
		if err != nil {
			h.onError(w, r, err)
			return
		}
		h.respond(w, r, f, false)
	case http.MethodPost:
		if !IsHTMX(r) {
			http.Error(w, "Forbidden: HTMX request required", http.StatusForbidden)
			return
		}
		h.handleEvent(w, r)
	default:
		w.Header().Set("Allow", "GET, HEAD, POST")
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) build() (*Form, error) {
	f := New(h.Options...)
	if h.Build != nil {
		if err := h.Build(f); err != nil {
			return nil, err
		}
	}
	for _, regs := range f.fields {
		for _, fld := range regs {
			fld.Mount()
		}
	}
	return f, nil
}

func (h *Handler) handleEvent(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.onError(w, r, fmt.Errorf("%w: %v", ErrInvalidFormat, err))
		return
	}
	f, err := h.build()
	if err != nil {
		h.onError(w, r, err)
		return
	}
	if token := r.PostFormValue(StateParam); token != "" {
		enc, err := h.encoder()
		if err != nil {
			h.onError(w, r, err)
			return
		}
		if err := f.Import(enc, token, h.Sensitive); err != nil {
			h.onError(w, r, err)
			return
		}
	}

	kind := EventKind(r.PostFormValue(EventParam))
	switch kind {
	case EventSubmit:
		var submitErr error
		f.Submit(func(values map[string]any) {
			if h.OnSubmit != nil {
				submitErr = h.OnSubmit(r.Context(), values)
			}
		})
		if submitErr != nil {
			h.onError(w, r, submitErr)
			return
		}
	case EventReset:
		f.Reset()
	default:
		name := r.PostFormValue(FieldParam)
		if name == "" {
			name = TriggerName(r)
		}
		if err := f.Dispatch(name, kind, eventFromRequest(f, name, r)); err != nil {
			h.onError(w, r, err)
			return
		}
	}

	h.logger().Debug("hxform.handler.event", "form", f.ID(), "event", kind)
	h.respond(w, r, f, true)
}

// eventFromRequest rebuilds the DOM event from the request parameters.
// Select values arrive under the field name, one entry per selected option.
func eventFromRequest(f *Form, name string, r *http.Request) *Event {
	t := Target{
		Value: r.PostFormValue(ValueParam),
	}
	t.Checked, _ = strconv.ParseBool(r.PostFormValue(CheckedParam))
	if fld := f.fieldFor(name, t.Value); fld != nil {
		t.Type = fld.Type()
		if t.Type.IsSelect() {
			t.SelectedOptions = r.PostForm[name]
		}
	}
	return &Event{Target: t}
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, f *Form, oob bool) {
	enc, err := h.encoder()
	if err != nil {
		h.onError(w, r, err)
		return
	}
	token, err := f.Export(enc, h.Sensitive)
	if err != nil {
		h.onError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if h.Render != nil {
		if err := h.Render(r.Context(), f).Render(r.Context(), &buf); err != nil {
			h.onError(w, r, err)
			return
		}
	}
	if err := StateInput(f, token, oob).Render(r.Context(), &buf); err != nil {
		h.onError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set(StateHeader, token)
	_, _ = io.Copy(w, &buf)
}

// WireAttrs returns the HTMX attributes that post the control's change,
// focus and blur events to endpoint, including the state input. The event
// type and target value are read in the browser via hx-vals.
func (fld *Field) WireAttrs(endpoint string) templ.Attributes {
	name, _ := json.Marshal(fld.name)
	return templ.Attributes{
		"hx-post":    endpoint,
		"hx-trigger": "change, focus, blur",
		"hx-include": "#" + StateInputID(fld.form),
		"hx-vals": fmt.Sprintf(`js:{%q: event.type, %q: %s, %q: event.target.value, %q: event.target.checked}`,
			EventParam, FieldParam, name, ValueParam, CheckedParam),
	}
}
