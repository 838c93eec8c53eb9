// Package script loads and replays YAML form scripts for the hxform CLI.
package script

import (
	"fmt"
	"os"
	"regexp"

	"github.com/pthm/hxform"
	"github.com/pthm/hxform/lib/validation"
	"gopkg.in/yaml.v3"
)

// Script describes a form and the events to replay against it.
type Script struct {
	Initial            map[string]any `yaml:"initial,omitempty"`
	SplitNumericErrors bool           `yaml:"splitNumericErrors,omitempty"`
	Fields             []Field        `yaml:"fields"`
	Events             []Event        `yaml:"events"`
}

// Field is one registration.
type Field struct {
	Name      string   `yaml:"name"`
	Type      string   `yaml:"type"`
	Radio     string   `yaml:"radio,omitempty"`
	Checkbox  string   `yaml:"checkbox,omitempty"`
	Disabled  bool     `yaml:"disabled,omitempty"`
	DependsOn []string `yaml:"dependsOn,omitempty"`
	Rules     []Rule   `yaml:"rules,omitempty"`
}

// Rule is one validation rule. Kind is the option name, e.g. "minLength".
type Rule struct {
	Kind    string  `yaml:"kind"`
	Length  int     `yaml:"length,omitempty"`
	Number  float64 `yaml:"number,omitempty"`
	Pattern string  `yaml:"pattern,omitempty"`
	Message string  `yaml:"message,omitempty"`
}

// Event is one replayed event. Submit and reset events need no field.
type Event struct {
	Field    string   `yaml:"field,omitempty"`
	Event    string   `yaml:"event"`
	Value    string   `yaml:"value,omitempty"`
	Checked  bool     `yaml:"checked,omitempty"`
	Selected []string `yaml:"selected,omitempty"`
}

// Load reads and parses a script file.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse parses a YAML script.
func Parse(data []byte) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse script: %w", err)
	}
	return &s, nil
}

func (r Rule) build() (validation.Rule, error) {
	kind, ok := validation.ParseKind(r.Kind)
	if !ok || kind == validation.KindCustom {
		return validation.Rule{}, fmt.Errorf("unknown rule kind %q", r.Kind)
	}
	var msg []string
	if r.Message != "" {
		msg = []string{r.Message}
	}
	switch kind {
	case validation.KindRequired:
		return validation.Required(msg...), nil
	case validation.KindValidEmail:
		return validation.ValidEmail(msg...), nil
	case validation.KindMinLength:
		return validation.MinLength(r.Length, msg...), nil
	case validation.KindMaxLength:
		return validation.MaxLength(r.Length, msg...), nil
	case validation.KindMin:
		return validation.Min(r.Number, msg...), nil
	case validation.KindMax:
		return validation.Max(r.Number, msg...), nil
	}
	re, err := regexp.Compile(r.Pattern)
	if err != nil {
		return validation.Rule{}, fmt.Errorf("rule pattern: %w", err)
	}
	return validation.Pattern(re, msg...), nil
}

// Build creates the form and registers and mounts its fields.
func (s *Script) Build(opts ...hxform.Option) (*hxform.Form, error) {
	opts = append([]hxform.Option{
		hxform.WithInitialState(s.Initial),
		hxform.WithSplitNumericErrors(s.SplitNumericErrors),
	}, opts...)
	f := hxform.New(opts...)

	for _, fd := range s.Fields {
		var rules validation.Rules
		for _, r := range fd.Rules {
			rule, err := r.build()
			if err != nil {
				return nil, fmt.Errorf("field %q: %w", fd.Name, err)
			}
			rules = append(rules, rule)
		}
		fopts := []hxform.FieldOption{
			hxform.Rules(rules...),
			hxform.RadioValue(fd.Radio),
			hxform.CheckboxValue(fd.Checkbox),
			hxform.RunValidationWhenChangeIn(fd.DependsOn...),
		}
		if fd.Disabled {
			fopts = append(fopts, hxform.Disabled())
		}
		fld, err := f.Register(fd.Name, hxform.InputType(fd.Type), fopts...)
		if err != nil {
			return nil, err
		}
		fld.Mount()
	}
	return f, nil
}

// Step is the outcome of one replayed event.
type Step struct {
	Event     Event            `json:"event"`
	State     hxform.FormState `json:"state"`
	Submitted map[string]any   `json:"submitted,omitempty"`
}

// Replay builds the form and applies every event in order. It stops at
// the first event the form rejects.
func (s *Script) Replay(opts ...hxform.Option) ([]Step, error) {
	f, err := s.Build(opts...)
	if err != nil {
		return nil, err
	}

	steps := make([]Step, 0, len(s.Events))
	for i, ev := range s.Events {
		step := Step{Event: ev}
		switch kind := hxform.EventKind(ev.Event); kind {
		case hxform.EventSubmit:
			f.Submit(func(values map[string]any) {
				step.Submitted = values
			})
		case hxform.EventReset:
			f.Reset()
		default:
			e := &hxform.Event{Target: hxform.Target{
				Value:           ev.Value,
				Checked:         ev.Checked,
				SelectedOptions: ev.Selected,
			}}
			if err := f.Dispatch(ev.Field, kind, e); err != nil {
				return steps, fmt.Errorf("event %d: %w", i+1, err)
			}
		}
		step.State = f.GetFormState()
		steps = append(steps, step)
	}
	return steps, nil
}
