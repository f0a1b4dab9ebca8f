// Package errtable builds the error handling table of a system.
package errtable

import (
	"github.com/intentlab-dev/iopc/pkg/intent"
)

// Entry is one condition with its resolution action.
type Entry struct {
	Condition string `json:"condition"`
	Action    string `json:"action"`
}

// Table maps error conditions to resolution actions. It preserves
// declaration order and is immutable once built.
type Table struct {
	order   []string
	actions map[string]string
}

// Build collects the system's error rules into a table. When a condition
// repeats, the first rule wins; the validator reports the duplication.
func Build(rules []intent.ErrorRule) *Table {
	t := &Table{actions: make(map[string]string, len(rules))}
	for _, r := range rules {
		if _, dup := t.actions[r.Condition]; dup {
			continue
		}
		t.order = append(t.order, r.Condition)
		t.actions[r.Condition] = r.Action
	}
	return t
}

// Resolve returns the action for a condition.
func (t *Table) Resolve(condition string) (string, bool) {
	action, ok := t.actions[condition]
	return action, ok
}

// Conditions returns the condition names in declaration order.
func (t *Table) Conditions() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// Entries returns the ordered (condition, action) pairs.
func (t *Table) Entries() []Entry {
	out := make([]Entry, 0, len(t.order))
	for _, c := range t.order {
		out = append(out, Entry{Condition: c, Action: t.actions[c]})
	}
	return out
}

// Len returns the number of distinct conditions.
func (t *Table) Len() int { return len(t.order) }
