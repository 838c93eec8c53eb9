// Package validation runs ordered rule sets against field values.
//
// A rule set is evaluated in declaration order and every failing rule
// contributes its message; evaluation never stops at the first failure.
// Rule kinds dispatch through a static table indexed by Kind, so adding a
// kind means adding a constant and a table entry.
package validation

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/pthm/hxform/lib/value"
)

// Kind identifies a validation rule.
type Kind int

const (
	KindRequired Kind = iota
	KindValidEmail
	KindMinLength
	KindMaxLength
	KindMin
	KindMax
	KindPattern
	KindCustom
	numKinds
)

var kindNames = [numKinds]string{
	KindRequired:   "required",
	KindValidEmail: "validEmail",
	KindMinLength:  "minLength",
	KindMaxLength:  "maxLength",
	KindMin:        "min",
	KindMax:        "max",
	KindPattern:    "pattern",
	KindCustom:     "validate",
}

// String returns the option name of the rule kind.
func (k Kind) String() string {
	if k < 0 || k >= numKinds {
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
	return kindNames[k]
}

// ParseKind returns the kind for an option name such as "minLength".
func ParseKind(name string) (Kind, bool) {
	for k, n := range kindNames {
		if n == name {
			return Kind(k), true
		}
	}
	return 0, false
}

// EmailPattern matches addresses accepted by the validEmail rule.
// Source: http://www.regular-expressions.info/email.html
var EmailPattern = regexp.MustCompile(`(?i)^[A-Z0-9._%+-]+@[A-Z0-9.-]+\.[A-Z]{2,}$`)

// Rule is a single validation rule. Which fields are used depends on Kind:
// Length holds the reference for minLength/maxLength, Number for min/max,
// Regexp for pattern and Func for custom rules.
type Rule struct {
	Kind    Kind
	Length  int
	Number  float64
	Regexp  *regexp.Regexp
	Func    func(v any) string
	Message string
	// HasMessage marks Message as an override, allowing an empty override.
	HasMessage bool
}

// Rules is an ordered rule set.
type Rules []Rule

// Empty reports whether the set holds no rules.
func (rs Rules) Empty() bool { return len(rs) == 0 }

func withMessage(r Rule, msg []string) Rule {
	if len(msg) > 0 {
		r.Message = msg[0]
		r.HasMessage = true
	}
	return r
}

// Required fails for falsy values: nil, "", false, 0.
func Required(msg ...string) Rule {
	return withMessage(Rule{Kind: KindRequired}, msg)
}

// ValidEmail fails when the stringified value is not an email address.
func ValidEmail(msg ...string) Rule {
	return withMessage(Rule{Kind: KindValidEmail}, msg)
}

// MinLength fails when the value is shorter than n.
func MinLength(n int, msg ...string) Rule {
	return withMessage(Rule{Kind: KindMinLength, Length: n}, msg)
}

// MaxLength fails when the value is longer than n.
func MaxLength(n int, msg ...string) Rule {
	return withMessage(Rule{Kind: KindMaxLength, Length: n}, msg)
}

// Min fails when the value is not numeric or is below n.
func Min(n float64, msg ...string) Rule {
	return withMessage(Rule{Kind: KindMin, Number: n}, msg)
}

// Max fails when the value is not numeric or is above n.
func Max(n float64, msg ...string) Rule {
	return withMessage(Rule{Kind: KindMax, Number: n}, msg)
}

// Pattern fails when re does not match the stringified value.
func Pattern(re *regexp.Regexp, msg ...string) Rule {
	return withMessage(Rule{Kind: KindPattern, Regexp: re}, msg)
}

// Custom wraps a predicate returning an error message, or "" when valid.
func Custom(fn func(v any) string) Rule {
	return Rule{Kind: KindCustom, Func: fn}
}

// Config tunes message selection.
type Config struct {
	// SplitNumericErrors gives non-numeric values their own min/max message
	// instead of the range message. Pass/fail outcomes are unchanged.
	SplitNumericErrors bool
}

// NotANumberMessage is used by min/max for non-numeric values when
// Config.SplitNumericErrors is set.
const NotANumberMessage = "Field must be a number."

// Validator evaluates rule sets.
type Validator struct {
	cfg Config
}

// New creates a validator.
func New(cfg Config) *Validator {
	return &Validator{cfg: cfg}
}

// Validate returns the messages of all failing rules in rule order, or nil
// when v satisfies every rule.
func (val *Validator) Validate(v any, rules Rules) []string {
	var msgs []string
	for _, r := range rules {
		if r.Kind < 0 || r.Kind >= numKinds {
			continue
		}
		msg, ok := checks[r.Kind](val, v, r)
		if !ok {
			msgs = append(msgs, msg)
		}
	}
	return msgs
}

// Validate runs rules with the default configuration.
func Validate(v any, rules Rules) []string {
	return defaultValidator.Validate(v, rules)
}

var defaultValidator = New(Config{})

type check func(val *Validator, v any, r Rule) (msg string, ok bool)

var checks = [numKinds]check{
	KindRequired: func(_ *Validator, v any, r Rule) (string, bool) {
		return message(r, "This field is required."), value.Truthy(v)
	},
	KindValidEmail: func(_ *Validator, v any, r Rule) (string, bool) {
		return message(r, "Field must be a valid email address."), EmailPattern.MatchString(value.String(v))
	},
	KindMinLength: func(_ *Validator, v any, r Rule) (string, bool) {
		msg := message(r, fmt.Sprintf("Field must have at least %d characters.", r.Length))
		n, ok := value.Len(v)
		return msg, ok && n >= r.Length
	},
	KindMaxLength: func(_ *Validator, v any, r Rule) (string, bool) {
		msg := message(r, fmt.Sprintf("Field must have no more than %d characters.", r.Length))
		n, ok := value.Len(v)
		return msg, ok && n <= r.Length
	},
	KindMin: func(val *Validator, v any, r Rule) (string, bool) {
		msg := message(r, fmt.Sprintf("Field must be more than %s.", formatNumber(r.Number)))
		n, ok := value.Number(v)
		if !ok {
			return val.notANumber(r, msg), false
		}
		return msg, n >= r.Number
	},
	KindMax: func(val *Validator, v any, r Rule) (string, bool) {
		msg := message(r, fmt.Sprintf("Field must have less than %s.", formatNumber(r.Number)))
		n, ok := value.Number(v)
		if !ok {
			return val.notANumber(r, msg), false
		}
		return msg, n <= r.Number
	},
	KindPattern: func(_ *Validator, v any, r Rule) (string, bool) {
		if r.Regexp == nil {
			return "", true
		}
		msg := message(r, fmt.Sprintf("Field must match the condition: %s.", r.Regexp.String()))
		return msg, r.Regexp.MatchString(value.String(v))
	},
	KindCustom: func(_ *Validator, v any, r Rule) (string, bool) {
		if r.Func == nil {
			return "", true
		}
		msg := r.Func(v)
		return msg, msg == ""
	},
}

func (val *Validator) notANumber(r Rule, rangeMsg string) string {
	if r.HasMessage || !val.cfg.SplitNumericErrors {
		return rangeMsg
	}
	return NotANumberMessage
}

func message(r Rule, def string) string {
	if r.HasMessage {
		return r.Message
	}
	return def
}

func formatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}
