// Package actions holds the fixed table of upstream actions the gateway can
// dispatch and resolves inbound parameters against it.
package actions

import (
	"fmt"
	"sort"
	"strings"
)

// Field describes one upstream query parameter.
//
// Aliases are the inbound names accepted for the field, in precedence order.
// The first alias with a non-empty value wins. When no alias carries a value
// the field falls back to Default; a field with neither is left out of the
// outbound query entirely.
type Field struct {
	Name     string
	Aliases  []string
	Required bool
	Default  string
}

// ActionSpec maps an action name to its upstream endpoint.
type ActionSpec struct {
	Name       string
	Category   string
	Path       string
	Fields     []Field
	Deprecated bool
}

// RequiredParams returns the upstream names of the required fields.
func (s *ActionSpec) RequiredParams() []string {
	required := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		if f.Required {
			required = append(required, f.Name)
		}
	}
	return required
}

// OptionalParams maps each optional field to its default. Fields without a
// default map to the empty string.
func (s *ActionSpec) OptionalParams() map[string]string {
	optional := make(map[string]string)
	for _, f := range s.Fields {
		if !f.Required {
			optional[f.Name] = f.Default
		}
	}
	return optional
}

// ParamAliases maps every accepted inbound name to its upstream name.
func (s *ActionSpec) ParamAliases() map[string]string {
	aliases := make(map[string]string)
	for _, f := range s.Fields {
		for _, a := range f.aliases() {
			aliases[a] = f.Name
		}
	}
	return aliases
}

func (f Field) aliases() []string {
	if len(f.Aliases) == 0 {
		return []string{f.Name}
	}
	return f.Aliases
}

// QueryParam is one resolved upstream query parameter.
type QueryParam struct {
	Name  string
	Value string
}

// Resolved is an action ready to be sent upstream. Query preserves the field
// order of the action.
type Resolved struct {
	Spec  *ActionSpec
	Path  string
	Query []QueryParam
}

// UnknownActionError is returned when an action name is not registered.
type UnknownActionError struct {
	Action    string
	Available []string
}

func (e *UnknownActionError) Error() string {
	return fmt.Sprintf("Invalid action: %s", e.Action)
}

// MissingParameterError names the alias group of a required field that had
// no value.
type MissingParameterError struct {
	Action  string
	Aliases []string
}

func (e *MissingParameterError) Error() string {
	return fmt.Sprintf("Missing required parameter: %s", strings.Join(e.Aliases, " or "))
}

// Registry is a read-only set of actions. It is safe for concurrent use
// once constructed.
type Registry struct {
	specs map[string]*ActionSpec
	names []string
}

// NewRegistry builds a registry from specs, preserving their order for
// discovery listings.
func NewRegistry(specs []ActionSpec) (*Registry, error) {
	r := &Registry{
		specs: make(map[string]*ActionSpec, len(specs)),
		names: make([]string, 0, len(specs)),
	}

	for i := range specs {
		spec := specs[i]
		if spec.Name == "" {
			return nil, fmt.Errorf("action at index %d has no name", i)
		}
		if !strings.HasPrefix(spec.Path, "/") {
			return nil, fmt.Errorf("action %s: path must start with /", spec.Name)
		}
		if _, exists := r.specs[spec.Name]; exists {
			return nil, fmt.Errorf("duplicate action: %s", spec.Name)
		}
		r.specs[spec.Name] = &spec
		r.names = append(r.names, spec.Name)
	}

	return r, nil
}

// Names returns the registered action names in registration order. The
// returned slice is a copy.
func (r *Registry) Names() []string {
	names := make([]string, len(r.names))
	copy(names, r.names)
	return names
}

// Len returns the number of registered actions.
func (r *Registry) Len() int {
	return len(r.names)
}

// Lookup finds an action by exact, case-sensitive name.
func (r *Registry) Lookup(name string) (*ActionSpec, bool) {
	spec, ok := r.specs[name]
	return spec, ok
}

// Specs returns the registered actions in registration order.
func (r *Registry) Specs() []*ActionSpec {
	specs := make([]*ActionSpec, 0, len(r.names))
	for _, name := range r.names {
		specs = append(specs, r.specs[name])
	}
	return specs
}

// Categories returns the distinct action categories, sorted.
func (r *Registry) Categories() []string {
	seen := make(map[string]struct{})
	for _, spec := range r.specs {
		seen[spec.Category] = struct{}{}
	}
	categories := make([]string, 0, len(seen))
	for c := range seen {
		categories = append(categories, c)
	}
	sort.Strings(categories)
	return categories
}

// Resolve validates params against the named action and builds the upstream
// query.
func (r *Registry) Resolve(name string, params map[string]string) (*Resolved, error) {
	spec, ok := r.Lookup(name)
	if !ok {
		return nil, &UnknownActionError{Action: name, Available: r.Names()}
	}

	query := make([]QueryParam, 0, len(spec.Fields))
	for _, f := range spec.Fields {
		value := firstValue(params, f.aliases())
		if value == "" {
			if f.Required {
				return nil, &MissingParameterError{Action: spec.Name, Aliases: f.aliases()}
			}
			value = f.Default
		}
		if value == "" {
			continue
		}
		query = append(query, QueryParam{Name: f.Name, Value: value})
	}

	return &Resolved{Spec: spec, Path: spec.Path, Query: query}, nil
}

func firstValue(params map[string]string, names []string) string {
	for _, n := range names {
		if v := params[n]; v != "" {
			return v
		}
	}
	return ""
}
