package store

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/pthm/hxform/lib/merge"
	"github.com/pthm/hxform/lib/objpath"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func initial() map[string]any {
	return map[string]any{
		"size":    []any{"x"},
		"testing": "",
		"address": map[string]any{"city": "London"},
	}
}

// requireShadowInSync checks the flat shadow against the values tree.
func requireShadowInSync(t *testing.T, s *Store) {
	t.Helper()
	require.Equal(t, objpath.Flatten(s.State().Values), s.shadow,
		"shadow out of sync\nvalues: %s\nshadow: %s", spew.Sdump(s.State().Values), spew.Sdump(s.shadow))
}

func TestNewCopiesInitial(t *testing.T) {
	in := initial()
	s := New(in)
	in["testing"] = "mutated"

	v, ok := s.Lookup("testing")
	require.True(t, ok)
	assert.Equal(t, "", v)
	assert.Equal(t, "", s.Initial()["testing"])
	requireShadowInSync(t, s)

	empty := New(nil)
	assert.True(t, empty.State().IsEmpty())
}

func TestCommitIsAtomic(t *testing.T) {
	s := New(initial())
	var seen []State
	s.Subscribe(func(st State) { seen = append(seen, st) })

	tx := s.Begin()
	tx.SetValue("testing", "abc")
	tx.SetTouched("testing", true)
	tx.SetError("testing", []string{"bad"})

	// nothing is visible before commit
	assert.Equal(t, "", s.State().Values["testing"])
	assert.Empty(t, s.State().Touched)
	assert.Empty(t, seen)

	// the transaction reads its own writes
	v, _ := tx.Value("testing")
	assert.Equal(t, "abc", v)
	assert.True(t, tx.Touched("testing"))

	st := tx.Commit()
	require.Len(t, seen, 1)
	assert.Equal(t, st, seen[0])
	assert.Equal(t, "abc", st.Values["testing"])
	assert.True(t, st.Touched["testing"])
	assert.Equal(t, []string{"bad"}, st.Errors["testing"])
	assert.Equal(t, uint64(1), st.Generation)
	assert.Equal(t, []string{"testing"}, tx.Fields())

	// second commit is a no-op
	tx.Commit()
	assert.Len(t, seen, 1)
}

func TestCommittedStateIsImmutable(t *testing.T) {
	s := New(initial())
	before := s.State()

	tx := s.Begin()
	tx.SetValue("address.city", "Paris")
	tx.SetTouched("address.city", true)
	tx.Commit()

	assert.Equal(t, "London", before.Values["address"].(map[string]any)["city"])
	assert.Empty(t, before.Touched)
}

func TestUncommittedTxLeavesStore(t *testing.T) {
	s := New(initial())
	tx := s.Begin()
	tx.SetValue("testing", "abc")

	assert.Equal(t, uint64(0), s.State().Generation)
	assert.Equal(t, "", s.State().Values["testing"])
	requireShadowInSync(t, s)

	tx.Commit()
	gen := s.State().Generation
	tx.Commit()
	assert.Equal(t, gen, s.State().Generation)
}

func TestShadowStaysInSync(t *testing.T) {
	s := New(initial())

	steps := []func(tx *Tx){
		func(tx *Tx) { tx.SetValue("address.city", "Paris") },
		func(tx *Tx) { tx.SetValue("address", map[string]any{"zip": "75001", "geo": map[string]any{"lat": 48.8}}) },
		func(tx *Tx) { tx.SetValue("address.geo", "flat") },
		func(tx *Tx) { tx.DeleteValue("address") },
		func(tx *Tx) { tx.Merge("size", merge.Input{Value: "m", Category: merge.MultiChoice, Checked: true}) },
		func(tx *Tx) { tx.Merge("size", merge.Input{Value: "x", Category: merge.MultiChoice}) },
		func(tx *Tx) { tx.Merge("size", merge.Input{Value: "m", Category: merge.MultiChoice}) },
		func(tx *Tx) { tx.SetValue("a.b.c", 1) },
		func(tx *Tx) { tx.ReplaceValues(map[string]any{"only": "this"}) },
		func(tx *Tx) { tx.Reset() },
	}
	for i, step := range steps {
		tx := s.Begin()
		step(tx)
		tx.Commit()
		t.Logf("step %d: %s", i, spew.Sdump(s.State().Values))
		requireShadowInSync(t, s)
	}
	assert.Equal(t, initial(), s.State().Values)
}

func TestMergeRemovesEmptyGroup(t *testing.T) {
	s := New(initial())
	tx := s.Begin()
	_, present := tx.Merge("size", merge.Input{Value: "x", Category: merge.MultiChoice})
	st := tx.Commit()

	assert.False(t, present)
	assert.NotContains(t, st.Values, "size")
	_, ok := s.Lookup("size")
	assert.False(t, ok)
}

func TestPristine(t *testing.T) {
	s := New(initial())
	tx := s.Begin()
	tx.SetPristine("size", true)
	tx.Merge("size", merge.Input{Value: "m", Category: merge.MultiChoice, Checked: true})
	assert.False(t, tx.CheckPristine("size"))
	st := tx.Commit()
	assert.False(t, st.FormPristine())

	tx = s.Begin()
	tx.Merge("size", merge.Input{Value: "m", Category: merge.MultiChoice})
	assert.True(t, tx.CheckPristine("size"), "back to the initial value")
	st = tx.Commit()
	assert.True(t, st.FormPristine())

	tx = s.Begin()
	tx.SetPristine("testing", false)
	tx.MarkAllPristine()
	st = tx.Commit()
	assert.Equal(t, map[string]bool{"size": true, "testing": true}, st.Pristine)

	_, tracked := s.Begin().Pristine("unknown")
	assert.False(t, tracked)
}

func TestErrorKeyPresence(t *testing.T) {
	s := New(nil)
	tx := s.Begin()
	tx.SetError("email", []string{"bad"})
	st := tx.Commit()
	assert.Contains(t, st.Errors, "email")
	assert.False(t, st.Valid())

	tx = s.Begin()
	tx.SetError("email", nil)
	st = tx.Commit()
	assert.NotContains(t, st.Errors, "email")
	assert.True(t, st.Valid())
}

func TestResetFields(t *testing.T) {
	s := New(initial())
	tx := s.Begin()
	tx.SetValue("testing", "abc")
	tx.SetValue("extra", "new")
	tx.SetTouched("testing", true)
	tx.SetActive("testing", true)
	tx.SetPristine("testing", false)
	tx.SetError("testing", []string{"bad"})
	tx.Commit()

	tx = s.Begin()
	tx.ResetFields("testing", "extra")
	st := tx.Commit()

	assert.Equal(t, "", st.Values["testing"])
	assert.NotContains(t, st.Values, "extra", "fields without an initial value are removed")
	assert.False(t, st.Touched["testing"])
	assert.False(t, st.Active["testing"])
	assert.True(t, st.Pristine["testing"])
	assert.Empty(t, st.Errors)
	requireShadowInSync(t, s)
}

func TestReset(t *testing.T) {
	s := New(initial())
	tx := s.Begin()
	tx.SetValue("testing", "abc")
	tx.SetTouched("testing", true)
	tx.SetActive("testing", true)
	tx.SetPristine("testing", false)
	tx.SetError("testing", []string{"bad"})
	tx.Commit()

	tx = s.Begin()
	tx.Reset()
	st := tx.Commit()

	assert.Equal(t, initial(), st.Values)
	assert.Equal(t, map[string]bool{"testing": false}, st.Touched)
	assert.Equal(t, map[string]bool{"testing": false}, st.Active)
	assert.Equal(t, map[string]bool{"testing": true}, st.Pristine)
	assert.Empty(t, st.Errors)
	assert.True(t, st.FormPristine())
}

func TestReplaceInitial(t *testing.T) {
	s := New(initial())
	tx := s.Begin()
	tx.ReplaceInitial(map[string]any{"testing": "new"})
	v, _ := tx.InitialValue("testing")
	assert.Equal(t, "new", v)
	tx.Commit()

	v, ok := s.InitialValue("testing")
	require.True(t, ok)
	assert.Equal(t, "new", v)
	_, ok = s.InitialValue("size")
	assert.False(t, ok)
}

func TestReplaceFlags(t *testing.T) {
	s := New(nil)
	tx := s.Begin()
	tx.ReplaceFlags(
		map[string]bool{"a": true},
		map[string]bool{"a": false},
		map[string]bool{"a": false},
		map[string][]string{"a": {"bad"}, "b": {}},
	)
	st := tx.Commit()

	assert.True(t, st.Touched["a"])
	assert.Equal(t, map[string][]string{"a": {"bad"}}, st.Errors)
}

func TestUnsubscribe(t *testing.T) {
	s := New(nil)
	var a, b int
	cancelA := s.Subscribe(func(State) { a++ })
	s.Subscribe(func(State) { b++ })

	s.Begin().Commit()
	cancelA()
	s.Begin().Commit()

	assert.Equal(t, 1, a)
	assert.Equal(t, 2, b)
}

func TestStateClone(t *testing.T) {
	s := New(initial())
	tx := s.Begin()
	tx.SetError("testing", []string{"bad"})
	st := tx.Commit()

	cp := st.Clone()
	cp.Errors["testing"][0] = "changed"
	cp.Values["size"].([]any)[0] = "changed"

	assert.Equal(t, "bad", s.State().Errors["testing"][0])
	assert.Equal(t, "x", s.State().Values["size"].([]any)[0])
}
