// Package linked indexes cross-field validation dependencies.
//
// A field declares the paths whose changes must re-run its validation.
// The index is keyed the other way round: trigger path -> dependents, each
// with the rule set to run. Dependents are kept in registration order so
// cascades are deterministic.
//
// Cascades are one level deep: re-validating a dependent does not change
// its value, so it never triggers further dependents. Callers must still
// not declare mutual dependencies; the index performs no cycle detection.
package linked

import "github.com/pthm/hxform/lib/validation"

// Dependent is a field whose validation runs when a trigger changes.
type Dependent struct {
	Field string
	Rules validation.Rules
}

// Index maps trigger paths to their dependents.
type Index struct {
	deps map[string][]Dependent
}

// New creates an empty index.
func New() *Index {
	return &Index{deps: make(map[string][]Dependent)}
}

// Register records that a change to any of triggers must re-validate field
// with rules. Registering the same field again for a trigger replaces its
// rules. Empty rule sets and empty trigger lists are ignored.
func (ix *Index) Register(field string, rules validation.Rules, triggers []string) {
	if rules.Empty() || len(triggers) == 0 {
		return
	}
	for _, trigger := range triggers {
		list := ix.deps[trigger]
		replaced := false
		for i := range list {
			if list[i].Field == field {
				list[i].Rules = rules
				replaced = true
				break
			}
		}
		if !replaced {
			list = append(list, Dependent{Field: field, Rules: rules})
		}
		ix.deps[trigger] = list
	}
}

// Dependents returns the fields to re-validate when path changes.
func (ix *Index) Dependents(path string) []Dependent {
	return ix.deps[path]
}
