package generator

import (
	"strings"

	"github.com/intentlab-dev/iopc/pkg/errtable"
	"github.com/intentlab-dev/iopc/pkg/intent"
)

// bindings resolves placeholder values for one component of one system.
type bindings struct {
	sys      *intent.SystemSpec
	comp     *intent.Component
	language string
	errors   *errtable.Table
}

func (b *bindings) bind(name, arg string) (string, bool) {
	switch name {
	case "component_name":
		return b.comp.Name, true
	case "component_type":
		return b.comp.TypeTag(), true
	case "system_name":
		return b.sys.Name, true
	case "language":
		return b.language, true
	case "description":
		return b.comp.Description, true
	case "action":
		return b.comp.Action, true
	case "inputs":
		return strings.Join(b.comp.InputNames(), ", "), true
	case "outputs":
		return strings.Join(b.comp.OutputNames(), ", "), true
	case "prop":
		v, ok := b.comp.Properties.Get(arg)
		if !ok {
			return "", false
		}
		return v.Text(), true
	case "error":
		return b.errors.Resolve(arg)
	case "errors":
		return b.errorBlock(), true
	}
	return "", false
}

// errorBlock renders the whole error table, one "condition -> resolution"
// line per rule in declaration order.
func (b *bindings) errorBlock() string {
	entries := b.errors.Entries()
	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = e.Condition + " -> " + e.Action
	}
	return strings.Join(lines, "\n")
}
