package linked

import (
	"testing"

	"github.com/pthm/hxform/lib/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	ix := New()
	rules := validation.Rules{validation.Required()}

	ix.Register("confirm", rules, []string{"password", "email"})
	ix.Register("summary", rules, []string{"password"})

	deps := ix.Dependents("password")
	require.Len(t, deps, 2)
	assert.Equal(t, "confirm", deps[0].Field)
	assert.Equal(t, "summary", deps[1].Field)
	assert.Len(t, ix.Dependents("email"), 1)
	assert.Empty(t, ix.Dependents("confirm"))
}

func TestRegisterReplacesRules(t *testing.T) {
	ix := New()
	ix.Register("confirm", validation.Rules{validation.Required()}, []string{"password"})
	ix.Register("confirm", validation.Rules{validation.MinLength(3)}, []string{"password"})

	deps := ix.Dependents("password")
	require.Len(t, deps, 1)
	require.Len(t, deps[0].Rules, 1)
	assert.Equal(t, validation.KindMinLength, deps[0].Rules[0].Kind)
}

func TestRegisterIgnoresEmpty(t *testing.T) {
	ix := New()
	ix.Register("a", nil, []string{"b"})
	ix.Register("a", validation.Rules{validation.Required()}, nil)
	assert.Empty(t, ix.Dependents("b"))
	assert.Empty(t, ix.Dependents("a"))
}
