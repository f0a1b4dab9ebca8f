// Package validator checks parsed systems for semantic errors before
// compilation. Every check runs on every call; the full diagnostic list
// always comes back rather than stopping at the first finding.
package validator

import (
	"github.com/intentlab-dev/iopc/pkg/diag"
	"github.com/intentlab-dev/iopc/pkg/graph"
	"github.com/intentlab-dev/iopc/pkg/intent"
)

// SchemaSource exposes per-type property schemas. The registry implements it.
type SchemaSource interface {
	// PropertySchema returns allowed property keys and their expected value
	// kinds for a component type. ok is false when the type has no schema.
	PropertySchema(componentType string) (map[string]string, bool)
}

// Validator checks one system at a time.
type Validator struct {
	schemas SchemaSource
}

// New creates a Validator. A nil schema source skips property checks.
func New(schemas SchemaSource) *Validator {
	return &Validator{schemas: schemas}
}

// Validate runs every semantic check against the system and its dependency
// graph. Diagnostic order is stable across runs.
func (v *Validator) Validate(sys *intent.SystemSpec, g *graph.Graph) diag.List {
	var out diag.List
	out = append(out, duplicateComponents(sys)...)
	out = append(out, duplicatePorts(sys)...)
	out = append(out, unresolvedInputs(sys)...)
	out = append(out, cycleDiags(g)...)
	out = append(out, flowRefs(sys)...)
	out = append(out, conditionRefs(sys)...)
	out = append(out, duplicateErrorRules(sys)...)
	out = append(out, implementationMaps(sys)...)
	out = append(out, v.properties(sys)...)
	return out
}

// DuplicateSystems reports system names declared more than once in one file.
// Each repeated declaration after the first yields one diagnostic.
func DuplicateSystems(systems []*intent.SystemSpec) diag.List {
	var out diag.List
	seen := make(map[string]bool, len(systems))
	for _, sys := range systems {
		if seen[sys.Name] {
			out = append(out, diag.DuplicateSystem(sys.Name, sys.At))
			continue
		}
		seen[sys.Name] = true
	}
	return out
}

// duplicateComponents emits one diagnostic per repeated name, carrying every
// declaration site.
func duplicateComponents(sys *intent.SystemSpec) diag.List {
	locs := make(map[string][]intent.Pos)
	var order []string
	for _, c := range sys.Components {
		if _, seen := locs[c.Name]; !seen {
			order = append(order, c.Name)
		}
		locs[c.Name] = append(locs[c.Name], c.At)
	}

	var out diag.List
	for _, name := range order {
		if len(locs[name]) > 1 {
			out = append(out, diag.DuplicateComponent(name, locs[name]))
		}
	}
	return out
}

func duplicatePorts(sys *intent.SystemSpec) diag.List {
	var out diag.List
	for _, c := range sys.Components {
		seen := make(map[string]bool, len(c.Inputs))
		for _, p := range c.Inputs {
			if seen[p.Name] {
				out = append(out, diag.DuplicatePort(c.Name, p.Name, p.At))
				continue
			}
			seen[p.Name] = true
		}
		seen = make(map[string]bool, len(c.Outputs))
		for _, p := range c.Outputs {
			if seen[p.Name] {
				out = append(out, diag.DuplicatePort(c.Name, p.Name, p.At))
				continue
			}
			seen[p.Name] = true
		}
	}
	return out
}

// unresolvedInputs flags inputs no output feeds, unless external_inputs
// declares them. Duplicate component declarations beyond the first do not
// contribute outputs, matching the graph.
func unresolvedInputs(sys *intent.SystemSpec) diag.List {
	firstOnly := sys.UniqueComponents()

	produced := make(map[string]bool)
	for _, c := range firstOnly {
		for _, p := range c.Outputs {
			produced[p.Name] = true
		}
	}
	external := make(map[string]bool)
	for _, name := range sys.ExternalInputs() {
		external[name] = true
	}

	var out diag.List
	for _, c := range firstOnly {
		for _, p := range c.Inputs {
			if !produced[p.Name] && !external[p.Name] {
				out = append(out, diag.UnresolvedInput(c.Name, p.Name, p.At))
			}
		}
	}
	return out
}

func cycleDiags(g *graph.Graph) diag.List {
	var out diag.List
	for _, walk := range g.Cycles() {
		out = append(out, diag.Cycle(walk))
	}
	return out
}

// flowRefs checks that every action step names a declared component,
// descending into decision branches.
func flowRefs(sys *intent.SystemSpec) diag.List {
	names := make(map[string]bool, len(sys.Components))
	for _, c := range sys.Components {
		names[c.Name] = true
	}

	var out diag.List
	for _, f := range sys.Flows {
		walkSteps(f.Steps, func(s intent.StepNode) {
			a, ok := s.(*intent.Action)
			if !ok {
				return
			}
			if !names[a.ComponentRef] {
				out = append(out, diag.UnresolvedComponent(a.ComponentRef, a.At))
			}
		})
	}
	return out
}

// conditionRefs checks that every identifier in a decision condition resolves
// to some component output or a declared external predicate.
func conditionRefs(sys *intent.SystemSpec) diag.List {
	resolvable := make(map[string]bool)
	for _, c := range sys.UniqueComponents() {
		for _, p := range c.Outputs {
			resolvable[p.Name] = true
		}
	}
	for _, name := range sys.ExternalPredicates() {
		resolvable[name] = true
	}

	var out diag.List
	for _, f := range sys.Flows {
		walkSteps(f.Steps, func(s intent.StepNode) {
			d, ok := s.(*intent.Decision)
			if !ok {
				return
			}
			idents, reason, usable := conditionIdents(d.Condition)
			if !usable {
				out = append(out, diag.InvalidCondition(d.Condition, reason, d.At))
				return
			}
			for _, ident := range idents {
				if !resolvable[ident] {
					out = append(out, diag.UnresolvedConditionIdent(ident, d.At))
				}
			}
		})
	}
	return out
}

func duplicateErrorRules(sys *intent.SystemSpec) diag.List {
	locs := make(map[string][]intent.Pos)
	var order []string
	for _, r := range sys.ErrorRules {
		if _, seen := locs[r.Condition]; !seen {
			order = append(order, r.Condition)
		}
		locs[r.Condition] = append(locs[r.Condition], r.At)
	}

	var out diag.List
	for _, cond := range order {
		if len(locs[cond]) > 1 {
			out = append(out, diag.DuplicateErrorRule(cond, locs[cond]))
		}
	}
	return out
}

// implementationMaps flags duplicate (componentType, language) rows and rows
// whose componentType matches no declared component's type tag.
func implementationMaps(sys *intent.SystemSpec) diag.List {
	tags := make(map[string]bool)
	for _, c := range sys.UniqueComponents() {
		tags[c.TypeTag()] = true
	}

	var out diag.List
	seen := make(map[string]bool, len(sys.Maps))
	for _, m := range sys.Maps {
		if seen[m.Key()] {
			out = append(out, diag.DuplicateMap(m.ComponentType, m.Language, m.At))
		}
		seen[m.Key()] = true

		if m.ComponentType != intent.Wildcard && !tags[m.ComponentType] {
			out = append(out, diag.UnmatchedMapType(m.ComponentType, m.Language, m.At))
		}
	}
	return out
}

// properties checks declared properties against the registry schema for the
// component's type. Types without a schema are not checked.
func (v *Validator) properties(sys *intent.SystemSpec) diag.List {
	if v.schemas == nil {
		return nil
	}

	var out diag.List
	for _, c := range sys.UniqueComponents() {
		schema, ok := v.schemas.PropertySchema(c.TypeTag())
		if !ok {
			continue
		}
		for _, key := range c.Properties.Keys() {
			if key == "type" {
				continue
			}
			val, _ := c.Properties.Get(key)
			at, _ := c.Properties.At(key)
			want, allowed := schema[key]
			if !allowed {
				out = append(out, diag.UnknownProperty(c.Name, key, at))
				continue
			}
			if !kindCompatible(want, string(val.Kind)) {
				out = append(out, diag.PropertyKind(c.Name, key, want, string(val.Kind), at))
			}
		}
	}
	return out
}

// kindCompatible reports whether a value kind satisfies the schema kind.
// Tokens are bare words and satisfy string schemas.
func kindCompatible(want, got string) bool {
	if want == "any" || want == got {
		return true
	}
	return want == string(intent.KindString) && got == string(intent.KindToken)
}

// walkSteps visits every step in preorder, descending into both branches of
// each decision.
func walkSteps(steps []intent.StepNode, visit func(intent.StepNode)) {
	for _, s := range steps {
		visit(s)
		if d, ok := s.(*intent.Decision); ok {
			walkSteps(d.Then, visit)
			walkSteps(d.Else, visit)
		}
	}
}
