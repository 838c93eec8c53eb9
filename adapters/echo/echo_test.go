package hxformecho

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"github.com/pthm/hxform"
)

func newHandler() *hxform.Handler {
	return &hxform.Handler{
		Build: func(f *hxform.Form) error {
			_, err := f.Register("email", hxform.TypeEmail, hxform.Required())
			return err
		},
		Render: func(ctx context.Context, f *hxform.Form) templ.Component {
			return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
				_, err := io.WriteString(w, `<form id="signup"></form>`)
				return err
			})
		},
	}
}

func TestMountCreatesEncoder(t *testing.T) {
	e := echo.New()
	h := Mount(e, "/signup", newHandler())

	if h.Encoder == nil {
		t.Fatal("Mount did not set an encoder")
	}
}

func TestMountWithKey(t *testing.T) {
	e := echo.New()
	key := make([]byte, 32)
	h := Mount(e, "/signup", newHandler(), WithKey(key), WithSensitive())

	if h.Encoder == nil {
		t.Fatal("Mount did not set an encoder")
	}
	if !h.Sensitive {
		t.Error("WithSensitive was not applied")
	}
}

func TestMountGroup(t *testing.T) {
	e := echo.New()
	g := e.Group("/app")
	MountGroup(g, "/signup", newHandler())

	req := httptest.NewRequest(http.MethodGet, "/app/signup", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("GET /app/signup = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `<form id="signup">`) {
		t.Errorf("body missing form: %s", rec.Body.String())
	}
}

func TestCSRFProtection(t *testing.T) {
	e := echo.New()
	Mount(e, "/signup", newHandler())

	// POST without HX-Request header should be forbidden
	req := httptest.NewRequest(http.MethodPost, "/signup", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403 for POST without HX-Request, got %d", rec.Code)
	}
}

func TestEventRoundTrip(t *testing.T) {
	e := echo.New()
	Mount(e, "/signup", newHandler())

	first := hxform.TestGet(e, "/signup")
	if !first.IsOK() {
		t.Fatalf("GET = %d, want 200", first.StatusCode)
	}

	focus := hxform.TestEvent(e, "/signup", first.State(), hxform.EventFocus, "email", nil)
	if !focus.IsOK() {
		t.Fatalf("focus = %d, want 200: %s", focus.StatusCode, focus.HTML)
	}
	change := hxform.TestEvent(e, "/signup", focus.State(), hxform.EventChange, "email", url.Values{
		hxform.ValueParam: {""},
	})
	if !change.IsOK() {
		t.Fatalf("change = %d, want 200: %s", change.StatusCode, change.HTML)
	}
	if !change.HTMLContains(`hx-swap-oob="true"`) {
		t.Error("event response should swap the state input out of band")
	}
}

func TestBadStateRejected(t *testing.T) {
	e := echo.New()
	Mount(e, "/signup", newHandler())

	res := hxform.TestEvent(e, "/signup", "garbage", hxform.EventFocus, "email", nil)
	if res.StatusCode != http.StatusBadRequest {
		t.Errorf("bad state = %d, want 400", res.StatusCode)
	}
}
