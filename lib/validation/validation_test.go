package validation

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateBuiltins(t *testing.T) {
	tests := []struct {
		name  string
		value any
		rules Rules
		want  []string
	}{
		{"required empty", "", Rules{Required()}, []string{"This field is required."}},
		{"required nil", nil, Rules{Required()}, []string{"This field is required."}},
		{"required set", "a", Rules{Required()}, nil},
		{"required custom message", "", Rules{Required("Name please")}, []string{"Name please"}},
		{"email ok", "ada@example.com", Rules{ValidEmail()}, nil},
		{"email bad", "ada", Rules{ValidEmail()}, []string{"Field must be a valid email address."}},
		{"minLength short", "ab", Rules{MinLength(3)}, []string{"Field must have at least 3 characters."}},
		{"minLength ok", "abc", Rules{MinLength(3)}, nil},
		{"minLength nil", nil, Rules{MinLength(1)}, []string{"Field must have at least 1 characters."}},
		{"minLength no length", 12345, Rules{MinLength(1)}, []string{"Field must have at least 1 characters."}},
		{"maxLength long", "abcd", Rules{MaxLength(3)}, []string{"Field must have no more than 3 characters."}},
		{"maxLength runes", "ééé", Rules{MaxLength(3)}, nil},
		{"maxLength sequence", []any{"a", "b"}, Rules{MaxLength(1)}, []string{"Field must have no more than 1 characters."}},
		{"min low", "4", Rules{Min(5)}, []string{"Field must be more than 5."}},
		{"min ok", 5, Rules{Min(5)}, nil},
		{"min empty string is zero", "", Rules{Min(1)}, []string{"Field must be more than 1."}},
		{"min nil", nil, Rules{Min(0)}, []string{"Field must be more than 0."}},
		{"max nil", nil, Rules{Max(10)}, []string{"Field must have less than 10."}},
		{"max high", 10.5, Rules{Max(10)}, []string{"Field must have less than 10."}},
		{"max fraction", "2.5", Rules{Max(2.5)}, nil},
		{"pattern ok", "ABC", Rules{Pattern(regexp.MustCompile(`^[A-Z]+$`))}, nil},
		{"pattern bad", "abc", Rules{Pattern(regexp.MustCompile(`^[A-Z]+$`))}, []string{"Field must match the condition: ^[A-Z]+$."}},
		{"pattern nil value", nil, Rules{Pattern(regexp.MustCompile(`^$`))}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Validate(tt.value, tt.rules))
		})
	}
}

func TestValidateAggregatesInOrder(t *testing.T) {
	rules := Rules{
		MinLength(5, "too short"),
		Pattern(regexp.MustCompile(`^\d+$`), "digits only"),
		Custom(func(v any) string { return "custom says no" }),
		Required("never shown"),
	}
	assert.Equal(t, []string{"too short", "digits only", "custom says no"}, Validate("ab", rules))
}

func TestCustom(t *testing.T) {
	even := Custom(func(v any) string {
		if s, _ := v.(string); len(s)%2 == 0 {
			return ""
		}
		return "odd length"
	})
	assert.Nil(t, Validate("ab", Rules{even}))
	assert.Equal(t, []string{"odd length"}, Validate("abc", Rules{even}))
	assert.Nil(t, Validate("abc", Rules{Custom(nil)}))
}

func TestSplitNumericErrors(t *testing.T) {
	rules := Rules{Min(1), Max(9, "custom range")}

	conflated := New(Config{})
	assert.Equal(t, []string{"Field must be more than 1.", "custom range"}, conflated.Validate("abc", rules))

	split := New(Config{SplitNumericErrors: true})
	assert.Equal(t, []string{NotANumberMessage, "custom range"}, split.Validate("abc", rules))
	assert.Equal(t, []string{"Field must be more than 1."}, split.Validate("0", rules))

	// nil is not coerced to 0
	assert.Equal(t, []string{"Field must be more than 0."}, conflated.Validate(nil, Rules{Min(0)}))
	assert.Equal(t, []string{NotANumberMessage}, split.Validate(nil, Rules{Min(0)}))
	assert.Empty(t, split.Validate("", Rules{Min(0)}))
}

func TestKindNames(t *testing.T) {
	for k := KindRequired; k < numKinds; k++ {
		got, ok := ParseKind(k.String())
		assert.True(t, ok, k.String())
		assert.Equal(t, k, got)
	}
	_, ok := ParseKind("bogus")
	assert.False(t, ok)
	assert.Equal(t, "Kind(42)", Kind(42).String())
}

func TestRules(t *testing.T) {
	var empty Rules
	assert.True(t, empty.Empty())

	rs := Rules{Required(), MinLength(2)}
	assert.False(t, rs.Empty())
	assert.Equal(t, []Kind{KindRequired, KindMinLength}, []Kind{rs[0].Kind, rs[1].Kind})
}
