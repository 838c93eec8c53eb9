// Package hxform manages the state of server-rendered HTML forms driven by
// HTMX: field values, touched/active/pristine flags, validation errors and
// submission.
//
// A Form holds one form instance. Fields are registered by name, which may
// be a dotted path into nested values, and bound to a control through the
// returned *Field:
//
//	f := hxform.New(hxform.WithInitialState(map[string]any{"email": ""}))
//	email := f.MustRegister("email", hxform.TypeEmail,
//	    hxform.Required(),
//	    hxform.ValidEmail(),
//	)
//
//	<input { email.Attrs()... } { email.WireAttrs("/signup/")... }/>
//	@hxform.ErrorList(f, "email")
//
// # Events
//
// Change, focus and blur events update the state. Each event is applied as
// one batch: the merged value, the touched and active flags, the field's
// validation and the validation of linked fields are committed together and
// subscribers see the result once.
//
// How a change merges depends on the control:
//   - Text-like controls replace the value.
//   - Radios and select-one replace the value with the chosen option.
//   - Checkboxes and select-multiple toggle the option in a list. Removing
//     the last option removes the key.
//
// Only touched fields are validated. A field becomes touched when focused
// or when set with SetFieldOptions.ShouldSetTouched.
//
// # Linked Validation
//
// A field can ask to be re-validated when other fields change:
//
//	f.MustRegister("confirm", hxform.TypePassword,
//	    hxform.Validate(matchesPassword(f)),
//	    hxform.RunValidationWhenChangeIn("password"),
//	)
//
// Cascades are one level deep.
//
// # Transport
//
// Handler serves a form over HTTP. The form state travels with the page in
// a hidden input as a token produced by Export:
//   - Signed (default): HMAC-authenticated msgpack, visible but tamper-proof
//   - Encrypted: AES-GCM sealed, opaque to clients (set Handler.Sensitive)
//
// Mutating requests require the HX-Request: true header that HTMX sends.
//
// # Testing
//
// Simulate drives a Form directly. TestEvent and TestGet exercise a Handler
// through net/http/httptest.
package hxform
