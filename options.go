package hxform

import (
	"io"
	"log/slog"
	"regexp"

	"github.com/pthm/hxform/lib/validation"
	"github.com/uber-go/tally/v4"
)

// Option configures New.
type Option func(*options)

type options struct {
	initial            map[string]any
	logger             *slog.Logger
	metrics            tally.Scope
	splitNumericErrors bool
}

// WithInitialState sets the initial values. The map is deep-copied.
func WithInitialState(initial map[string]any) Option {
	return func(o *options) {
		o.initial = initial
	}
}

// WithLogger sets the logger for commit and configuration records.
// Defaults to a logger that discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMetrics sets the scope form counters are reported to.
func WithMetrics(scope tally.Scope) Option {
	return func(o *options) {
		o.metrics = scope
	}
}

// WithSplitNumericErrors gives non-numeric values their own min/max
// message instead of the range message.
func WithSplitNumericErrors(split bool) Option {
	return func(o *options) {
		o.splitNumericErrors = split
	}
}

func newOptions(opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if o.metrics == nil {
		o.metrics = tally.NoopScope
	}
	return o
}

// FieldOption configures Register.
type FieldOption func(*fieldConfig)

type fieldConfig struct {
	rules         validation.Rules
	radioValue    string
	checkboxValue string
	disabled      bool
	dependsOn     []string
	onChange      func(*Event)
	onFocus       func(*Event)
	onBlur        func(*Event)
	ref           *Ref
}

// Required fails for empty values.
func Required(msg ...string) FieldOption {
	return Rules(validation.Required(msg...))
}

// ValidEmail fails for values that are not email addresses.
func ValidEmail(msg ...string) FieldOption {
	return Rules(validation.ValidEmail(msg...))
}

// MinLength fails for values shorter than n.
func MinLength(n int, msg ...string) FieldOption {
	return Rules(validation.MinLength(n, msg...))
}

// MaxLength fails for values longer than n.
func MaxLength(n int, msg ...string) FieldOption {
	return Rules(validation.MaxLength(n, msg...))
}

// Min fails for non-numeric values and values below n.
func Min(n float64, msg ...string) FieldOption {
	return Rules(validation.Min(n, msg...))
}

// Max fails for non-numeric values and values above n.
func Max(n float64, msg ...string) FieldOption {
	return Rules(validation.Max(n, msg...))
}

// Pattern fails when re does not match the value.
func Pattern(re *regexp.Regexp, msg ...string) FieldOption {
	return Rules(validation.Pattern(re, msg...))
}

// Validate adds a custom rule. fn returns an error message, or "" when the
// value is valid.
func Validate(fn func(v any) string) FieldOption {
	return Rules(validation.Custom(fn))
}

// Rules appends prebuilt rules.
func Rules(rules ...validation.Rule) FieldOption {
	return func(c *fieldConfig) {
		c.rules = append(c.rules, rules...)
	}
}

// RadioValue sets the value a radio button stands for. Required for radio
// fields.
func RadioValue(v string) FieldOption {
	return func(c *fieldConfig) {
		c.radioValue = v
	}
}

// CheckboxValue sets the value a checkbox stands for. Required for
// checkbox fields.
func CheckboxValue(v string) FieldOption {
	return func(c *fieldConfig) {
		c.checkboxValue = v
	}
}

// Disabled makes the field ignore change, focus and blur events.
func Disabled() FieldOption {
	return func(c *fieldConfig) {
		c.disabled = true
	}
}

// RunValidationWhenChangeIn re-runs this field's validation whenever one
// of paths changes. The dependency is recorded at registration.
func RunValidationWhenChangeIn(paths ...string) FieldOption {
	return func(c *fieldConfig) {
		c.dependsOn = append(c.dependsOn, paths...)
	}
}

// OnChange is called after a change event has been committed.
func OnChange(fn func(*Event)) FieldOption {
	return func(c *fieldConfig) {
		c.onChange = fn
	}
}

// OnFocus is called after a focus event has been committed.
func OnFocus(fn func(*Event)) FieldOption {
	return func(c *fieldConfig) {
		c.onFocus = fn
	}
}

// OnBlur is called after a blur event has been committed.
func OnBlur(fn func(*Event)) FieldOption {
	return func(c *fieldConfig) {
		c.onBlur = fn
	}
}

// WithRef receives the element the field is mounted on.
func WithRef(ref *Ref) FieldOption {
	return func(c *fieldConfig) {
		c.ref = ref
	}
}
