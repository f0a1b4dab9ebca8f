package validator

import (
	"fmt"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
)

// conditionIdents parses a decision condition and returns the sorted root
// identifiers it references. usable is false, with reason set, when the text
// is not a boolean expression at all.
//
// Conditions with variables cannot be evaluated here, so only their
// identifiers are checked. Pure literals must evaluate to a boolean.
func conditionIdents(condition string) (idents []string, reason string, usable bool) {
	expr, diags := hclsyntax.ParseExpression([]byte(condition), "condition", hcl.Pos{Line: 1, Column: 1})
	if diags.HasErrors() {
		return nil, diags.Error(), false
	}

	vars := expr.Variables()
	if len(vars) == 0 {
		val, evalDiags := expr.Value(nil)
		if evalDiags.HasErrors() {
			return nil, evalDiags.Error(), false
		}
		if !val.Type().Equals(cty.Bool) {
			return nil, fmt.Sprintf("literal of type %s where a boolean is required", val.Type().FriendlyName()), false
		}
		return nil, "", true
	}

	seen := make(map[string]bool, len(vars))
	for _, traversal := range vars {
		root := traversal.RootName()
		if !seen[root] {
			seen[root] = true
			idents = append(idents, root)
		}
	}
	sort.Strings(idents)
	return idents, "", true
}
