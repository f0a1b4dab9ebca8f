// Package intent defines the IOP schema AST and its parser.
package intent

import "strings"

// Pos is a 1-based position in spec text.
type Pos struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// SystemSpec is the root of one parsed system definition. It is created by
// the parser and read-only afterwards.
type SystemSpec struct {
	Name        string
	Description string
	Properties  *Properties
	Components  []*Component
	Flows       []*Flow
	ErrorRules  []ErrorRule
	Maps        []*ImplementationMap
	At          Pos
}

// Component returns the first component with the given name, or nil.
func (s *SystemSpec) Component(name string) *Component {
	for _, c := range s.Components {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// UniqueComponents returns the first declaration of each component name in
// declaration order. Later duplicates are validation errors and carry no
// semantics.
func (s *SystemSpec) UniqueComponents() []*Component {
	out := make([]*Component, 0, len(s.Components))
	seen := make(map[string]bool, len(s.Components))
	for _, c := range s.Components {
		if seen[c.Name] {
			continue
		}
		seen[c.Name] = true
		out = append(out, c)
	}
	return out
}

// ExternalInputs returns the names declared in the external_inputs system
// property, a comma-separated list.
func (s *SystemSpec) ExternalInputs() []string {
	return s.nameList("external_inputs")
}

// ExternalPredicates returns the names declared in the external_predicates
// system property, a comma-separated list.
func (s *SystemSpec) ExternalPredicates() []string {
	return s.nameList("external_predicates")
}

func (s *SystemSpec) nameList(key string) []string {
	v, ok := s.Properties.Get(key)
	if !ok {
		return nil
	}
	var names []string
	for _, part := range strings.Split(v.Text(), ",") {
		if name := strings.TrimSpace(part); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// Component is a named unit of intent: ports in, ports out, and an opaque
// action description. Identity is the name.
type Component struct {
	Name        string
	Description string
	Inputs      []Port
	Outputs     []Port
	Action      string
	Properties  *Properties
	At          Pos
}

// TypeTag returns the component's declared type: the "type" property when
// present, otherwise the component name itself.
func (c *Component) TypeTag() string {
	if v, ok := c.Properties.Get("type"); ok {
		return v.Text()
	}
	return c.Name
}

// InputNames returns the input port names in declaration order.
func (c *Component) InputNames() []string {
	return portNames(c.Inputs)
}

// OutputNames returns the output port names in declaration order.
func (c *Component) OutputNames() []string {
	return portNames(c.Outputs)
}

func portNames(ports []Port) []string {
	if len(ports) == 0 {
		return nil
	}
	names := make([]string, len(ports))
	for i, p := range ports {
		names[i] = p.Name
	}
	return names
}

// Port is a named input or output slot. Ports are matched across components
// purely by name equality.
type Port struct {
	Name string
	At   Pos
}

// Flow is a trigger-initiated sequence of steps.
type Flow struct {
	Trigger string
	Steps   []StepNode
	At      Pos
}

// ErrorRule maps an error-condition key to a resolution action. Scope is
// global to the owning system.
type ErrorRule struct {
	Condition string
	Action    string
	At        Pos
}

// Wildcard is the ComponentType that matches any component type.
const Wildcard = "*"

// ImplementationMap associates a (component type, target language) pair with
// a template pattern.
type ImplementationMap struct {
	ComponentType string
	Language      string
	Pattern       string
	At            Pos
}

// Key returns the map's identity as "componentType/language".
func (m *ImplementationMap) Key() string {
	return m.ComponentType + "/" + m.Language
}
