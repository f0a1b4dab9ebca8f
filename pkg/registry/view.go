package registry

import (
	"github.com/intentlab-dev/iopc/pkg/intent"
)

// View overlays one system's ImplementationMap rows onto a base registry.
// Spec rows always win over the base, and within each layer an exact type
// match wins over the wildcard.
type View struct {
	base *Registry
	spec map[key]string
}

// NewView builds the lookup view for a system. When the system declares the
// same (componentType, language) twice, the first row wins; the validator
// reports the duplication.
func NewView(base *Registry, maps []*intent.ImplementationMap) *View {
	v := &View{base: base, spec: make(map[key]string, len(maps))}
	for _, m := range maps {
		k := key{m.ComponentType, m.Language}
		if _, dup := v.spec[k]; dup {
			continue
		}
		v.spec[k] = m.Pattern
	}
	return v
}

// Lookup resolves a template: spec exact, spec wildcard, builtin exact,
// builtin wildcard.
func (v *View) Lookup(componentType, language string) (string, bool) {
	if t, ok := v.spec[key{componentType, language}]; ok {
		return t, true
	}
	if t, ok := v.spec[key{intent.Wildcard, language}]; ok {
		return t, true
	}
	return v.base.Template(componentType, language)
}

// Extension returns the artifact file extension for a language.
func (v *View) Extension(language string) string {
	return v.base.Extension(language)
}

// PropertySchema returns the base registry's schema for a component type.
func (v *View) PropertySchema(componentType string) (map[string]string, bool) {
	return v.base.PropertySchema(componentType)
}
