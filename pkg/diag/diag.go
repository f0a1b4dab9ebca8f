// Package diag defines the structured diagnostics produced by validation
// and generation.
package diag

import (
	"fmt"
	"strings"

	"github.com/intentlab-dev/iopc/pkg/intent"
)

// Severity classifies a diagnostic.
type Severity string

// Severity constants.
const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Code identifies the diagnostic class.
type Code string

// Diagnostic codes.
const (
	CodeSyntax                   Code = "syntax"
	CodeUnresolvedReference      Code = "unresolved-reference"
	CodeDuplicateDefinition      Code = "duplicate-definition"
	CodeCyclicDependency         Code = "cyclic-dependency"
	CodeUnknownImplementationMap Code = "unknown-implementation-map"
	CodeUnboundPlaceholder       Code = "unbound-placeholder"
	CodeUnknownProperty          Code = "unknown-property"
	CodePropertyKind             Code = "property-kind"
)

// Reference and definition kinds carried in the Kind field.
const (
	KindInput              = "input"
	KindComponent          = "component"
	KindConditionIdent     = "condition-identifier"
	KindPort               = "port"
	KindErrorRule          = "error-rule"
	KindImplementationMap  = "implementation-map"
	KindSystem             = "system"
	KindArtifactPath       = "artifact-path"
	KindProperty           = "property"
)

// Diagnostic is one structured validation or generation finding.
type Diagnostic struct {
	Severity      Severity     `json:"severity"`
	Code          Code         `json:"code"`
	Message       string       `json:"message"`
	Name          string       `json:"name,omitempty"`
	Kind          string       `json:"kind,omitempty"`
	ComponentType string       `json:"componentType,omitempty"`
	Language      string       `json:"language,omitempty"`
	Template      string       `json:"template,omitempty"`
	Cycle         []string     `json:"cycle,omitempty"`
	Locations     []intent.Pos `json:"locations,omitempty"`
	Pos           *intent.Pos  `json:"pos,omitempty"`
}

// IsError reports whether the diagnostic has error severity.
func (d Diagnostic) IsError() bool { return d.Severity == SeverityError }

// String formats as "[line:col:] severity: message".
func (d Diagnostic) String() string {
	if d.Pos != nil {
		return fmt.Sprintf("%d:%d: %s: %s", d.Pos.Line, d.Pos.Column, d.Severity, d.Message)
	}
	return fmt.Sprintf("%s: %s", d.Severity, d.Message)
}

// Syntax converts a fatal parse error into a diagnostic so that validate
// runs report it alongside everything else.
func Syntax(err *intent.SyntaxError) Diagnostic {
	return Diagnostic{
		Severity: SeverityError,
		Code:     CodeSyntax,
		Message:  err.Message,
		Pos:      &intent.Pos{Line: err.Line, Column: err.Column},
	}
}

// UnresolvedInput reports an input no component produces and no
// external_inputs entry declares.
func UnresolvedInput(component, input string, at intent.Pos) Diagnostic {
	return Diagnostic{
		Severity: SeverityError,
		Code:     CodeUnresolvedReference,
		Kind:     KindInput,
		Name:     input,
		Message:  fmt.Sprintf("input %q of component %q is not produced by any component and not declared external", input, component),
		Pos:      &at,
	}
}

// UnresolvedComponent reports a flow step referencing an unknown component.
func UnresolvedComponent(ref string, at intent.Pos) Diagnostic {
	return Diagnostic{
		Severity: SeverityError,
		Code:     CodeUnresolvedReference,
		Kind:     KindComponent,
		Name:     ref,
		Message:  fmt.Sprintf("flow step references unknown component %q", ref),
		Pos:      &at,
	}
}

// UnresolvedConditionIdent reports a condition identifier that matches no
// output name and no declared external predicate.
func UnresolvedConditionIdent(ident string, at intent.Pos) Diagnostic {
	return Diagnostic{
		Severity: SeverityError,
		Code:     CodeUnresolvedReference,
		Kind:     KindConditionIdent,
		Name:     ident,
		Message:  fmt.Sprintf("condition identifier %q does not match any output or external predicate", ident),
		Pos:      &at,
	}
}

// InvalidCondition reports a decision condition that is not a boolean
// expression.
func InvalidCondition(condition, reason string, at intent.Pos) Diagnostic {
	return Diagnostic{
		Severity: SeverityError,
		Code:     CodeUnresolvedReference,
		Kind:     KindConditionIdent,
		Name:     condition,
		Message:  fmt.Sprintf("condition %q is not a boolean expression: %s", condition, reason),
		Pos:      &at,
	}
}

// DuplicateComponent reports a component name declared more than once. One
// diagnostic covers every occurrence.
func DuplicateComponent(name string, locations []intent.Pos) Diagnostic {
	first := locations[0]
	return Diagnostic{
		Severity:  SeverityError,
		Code:      CodeDuplicateDefinition,
		Kind:      KindComponent,
		Name:      name,
		Message:   fmt.Sprintf("component %q defined %d times", name, len(locations)),
		Locations: locations,
		Pos:       &first,
	}
}

// DuplicatePort reports a port name listed twice in one component.
func DuplicatePort(component, port string, at intent.Pos) Diagnostic {
	return Diagnostic{
		Severity: SeverityError,
		Code:     CodeDuplicateDefinition,
		Kind:     KindPort,
		Name:     port,
		Message:  fmt.Sprintf("component %q declares port %q more than once", component, port),
		Pos:      &at,
	}
}

// DuplicateErrorRule reports a repeated ErrorHandling condition key. One
// diagnostic covers every occurrence.
func DuplicateErrorRule(condition string, locations []intent.Pos) Diagnostic {
	first := locations[0]
	return Diagnostic{
		Severity:  SeverityError,
		Code:      CodeDuplicateDefinition,
		Kind:      KindErrorRule,
		Name:      condition,
		Message:   fmt.Sprintf("error condition %q defined %d times", condition, len(locations)),
		Locations: locations,
		Pos:       &first,
	}
}

// DuplicateMap reports two ImplementationMap entries sharing a
// (componentType, targetLanguage) pair.
func DuplicateMap(componentType, language string, at intent.Pos) Diagnostic {
	return Diagnostic{
		Severity:      SeverityError,
		Code:          CodeDuplicateDefinition,
		Kind:          KindImplementationMap,
		Name:          componentType + "/" + language,
		ComponentType: componentType,
		Language:      language,
		Message:       fmt.Sprintf("duplicate implementation map for type %q and language %q", componentType, language),
		Pos:           &at,
	}
}

// DuplicateSystem reports a repeated system name within one file.
func DuplicateSystem(name string, at intent.Pos) Diagnostic {
	return Diagnostic{
		Severity: SeverityError,
		Code:     CodeDuplicateDefinition,
		Kind:     KindSystem,
		Name:     name,
		Message:  fmt.Sprintf("system %q defined more than once in this file", name),
		Pos:      &at,
	}
}

// ArtifactPathConflict reports two components from different systems that
// would generate to the same output path.
func ArtifactPathConflict(path, firstSystem, secondSystem string) Diagnostic {
	return Diagnostic{
		Severity: SeverityError,
		Code:     CodeDuplicateDefinition,
		Kind:     KindArtifactPath,
		Name:     path,
		Message:  fmt.Sprintf("artifact path %q claimed by both system %q and system %q", path, firstSystem, secondSystem),
	}
}

// Cycle reports a dependency cycle. The path is a closed walk beginning at
// the lexicographically smallest member.
func Cycle(path []string) Diagnostic {
	return Diagnostic{
		Severity: SeverityError,
		Code:     CodeCyclicDependency,
		Cycle:    path,
		Message:  fmt.Sprintf("components form a dependency cycle: %s", strings.Join(path, " -> ")),
	}
}

// UnmatchedMapType reports an ImplementationMap whose componentType matches
// no declared component. Warning class: maps may be provided ahead of the
// components that will exist later.
func UnmatchedMapType(componentType, language string, at intent.Pos) Diagnostic {
	return Diagnostic{
		Severity:      SeverityWarning,
		Code:          CodeUnknownImplementationMap,
		ComponentType: componentType,
		Language:      language,
		Name:          componentType,
		Message:       fmt.Sprintf("implementation map for type %q matches no declared component", componentType),
		Pos:           &at,
	}
}

// UnknownMap reports a generation lookup miss: no implementation map for the
// component's type and the target language.
func UnknownMap(componentType, language string) Diagnostic {
	return Diagnostic{
		Severity:      SeverityError,
		Code:          CodeUnknownImplementationMap,
		ComponentType: componentType,
		Language:      language,
		Name:          componentType,
		Message:       fmt.Sprintf("no implementation map for type %q and language %q", componentType, language),
	}
}

// UnboundPlaceholder reports a template placeholder with no matching value.
func UnboundPlaceholder(template, placeholder string) Diagnostic {
	return Diagnostic{
		Severity: SeverityError,
		Code:     CodeUnboundPlaceholder,
		Template: template,
		Name:     placeholder,
		Message:  fmt.Sprintf("template %q references unbound placeholder %q", template, placeholder),
	}
}

// UnknownProperty reports a property key outside the component type's
// allowed set.
func UnknownProperty(component, key string, at intent.Pos) Diagnostic {
	return Diagnostic{
		Severity: SeverityWarning,
		Code:     CodeUnknownProperty,
		Kind:     KindProperty,
		Name:     key,
		Message:  fmt.Sprintf("component %q has no allowed property %q for its type", component, key),
		Pos:      &at,
	}
}

// PropertyKind reports a property whose value kind differs from the
// registry's expectation.
func PropertyKind(component, key, want, got string, at intent.Pos) Diagnostic {
	return Diagnostic{
		Severity: SeverityWarning,
		Code:     CodePropertyKind,
		Kind:     KindProperty,
		Name:     key,
		Message:  fmt.Sprintf("property %q of component %q should be a %s, got %s", key, component, want, got),
		Pos:      &at,
	}
}

// List is an ordered collection of diagnostics.
type List []Diagnostic

// HasErrors reports whether any diagnostic has error severity.
func (l List) HasErrors() bool {
	for _, d := range l {
		if d.IsError() {
			return true
		}
	}
	return false
}

// Errors returns the error-severity diagnostics.
func (l List) Errors() List {
	var out List
	for _, d := range l {
		if d.IsError() {
			out = append(out, d)
		}
	}
	return out
}

// Warnings returns the warning-severity diagnostics.
func (l List) Warnings() List {
	var out List
	for _, d := range l {
		if !d.IsError() {
			out = append(out, d)
		}
	}
	return out
}

// Error implements error over the whole list.
func (l List) Error() string {
	switch len(l) {
	case 0:
		return "no diagnostics"
	case 1:
		return l[0].String()
	default:
		return fmt.Sprintf("%s (and %d more)", l[0].String(), len(l)-1)
	}
}
