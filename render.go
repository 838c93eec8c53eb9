package hxform

import (
	"context"
	"html"
	"io"
	"net/http"
	"strings"

	"github.com/a-h/templ"
)

// ErrorList renders the error messages of a field as a list:
//
//	<ul class="hxform-errors" data-field="email"><li>...</li></ul>
//
// A field without errors renders nothing. Messages are HTML-escaped.
func ErrorList(f *Form, name string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		msgs := f.store.State().Errors[name]
		if len(msgs) == 0 {
			return nil
		}
		var sb strings.Builder
		sb.WriteString(`<ul class="hxform-errors" data-field="`)
		sb.WriteString(html.EscapeString(name))
		sb.WriteString(`">`)
		for _, msg := range msgs {
			sb.WriteString(`<li>`)
			sb.WriteString(html.EscapeString(msg))
			sb.WriteString(`</li>`)
		}
		sb.WriteString(`</ul>`)
		_, err := io.WriteString(w, sb.String())
		return err
	})
}

// StateInputID returns the id of the hidden state input of f.
func StateInputID(f *Form) string {
	return "hxform-state-" + f.ID()
}

// StateInput renders the hidden input carrying a state token. With oob set
// the input is marked for an out-of-band swap, replacing the input
// rendered by an earlier response.
func StateInput(f *Form, token string, oob bool) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var sb strings.Builder
		sb.WriteString(`<input type="hidden" id="`)
		sb.WriteString(html.EscapeString(StateInputID(f)))
		sb.WriteString(`" name="` + StateParam + `" value="`)
		sb.WriteString(html.EscapeString(token))
		sb.WriteString(`"`)
		if oob {
			sb.WriteString(` hx-swap-oob="true"`)
		}
		sb.WriteString(`/>`)
		_, err := io.WriteString(w, sb.String())
		return err
	})
}

// Render writes a templ component to the HTTP response.
func Render(w http.ResponseWriter, r *http.Request, component templ.Component) error {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return component.Render(r.Context(), w)
}

// IsHTMX returns true if the request originated from HTMX.
func IsHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// TriggerName returns the name attribute of the element that triggered the
// request, or "" for non-HTMX requests.
func TriggerName(r *http.Request) string {
	return r.Header.Get("HX-Trigger-Name")
}
