// Package machine compiles flows into finite state machines.
//
// States live in an arena slice and reference each other by index. Building
// walks the step tree in preorder, so state 0 is always the trigger and the
// highest index is always the terminal state.
package machine

import (
	"github.com/intentlab-dev/iopc/pkg/intent"
)

// None marks an absent successor index.
const None = -1

// StateKind classifies an arena state.
type StateKind string

// State kinds.
const (
	StateTrigger  StateKind = "trigger"
	StateAction   StateKind = "action"
	StateBranch   StateKind = "branch"
	StateTerminal StateKind = "terminal"
)

// State is one node in a machine's arena. Action and trigger states use
// Next; branch states use Then and Else. Unused successors hold None.
type State struct {
	Index     int       `json:"index"`
	Kind      StateKind `json:"kind"`
	Label     string    `json:"label"`
	Component string    `json:"component,omitempty"`
	Next      int       `json:"next"`
	Then      int       `json:"then"`
	Else      int       `json:"else"`
}

// Machine is the compiled state machine of one flow.
type Machine struct {
	Trigger string  `json:"trigger"`
	States  []State `json:"states"`
}

// Initial returns the index of the trigger state.
func (m *Machine) Initial() int { return 0 }

// Terminal returns the index of the terminal state.
func (m *Machine) Terminal() int { return len(m.States) - 1 }

// At returns the state at the given index.
func (m *Machine) At(i int) State { return m.States[i] }

// Len returns the state count.
func (m *Machine) Len() int { return len(m.States) }

type field int

const (
	fieldNext field = iota
	fieldThen
	fieldElse
)

// patch names a successor slot awaiting its target index.
type patch struct {
	state int
	slot  field
}

type builder struct {
	states []State
}

func (b *builder) add(s State) int {
	s.Index = len(b.states)
	s.Next, s.Then, s.Else = None, None, None
	b.states = append(b.states, s)
	return s.Index
}

func (b *builder) set(p patch, target int) {
	switch p.slot {
	case fieldNext:
		b.states[p.state].Next = target
	case fieldThen:
		b.states[p.state].Then = target
	case fieldElse:
		b.states[p.state].Else = target
	}
}

func (b *builder) setAll(ps []patch, target int) {
	for _, p := range ps {
		b.set(p, target)
	}
}

// Compile builds the state machine for one flow. The result is fully
// determined by the flow, so repeated calls yield identical machines.
func Compile(f *intent.Flow) *Machine {
	b := &builder{}

	trigger := b.add(State{Kind: StateTrigger, Label: f.Trigger})
	open := []patch{{trigger, fieldNext}}

	entry, exits := b.steps(f.Steps)
	if entry != None {
		b.setAll(open, entry)
		open = exits
	}

	terminal := b.add(State{Kind: StateTerminal, Label: "done"})
	b.setAll(open, terminal)

	return &Machine{Trigger: f.Trigger, States: b.states}
}

// steps compiles a step sequence. It returns the entry index (None when the
// sequence is empty) and the dangling successor slots that the state after
// the sequence must absorb.
func (b *builder) steps(steps []intent.StepNode) (entry int, exits []patch) {
	entry = None
	var open []patch
	for _, s := range steps {
		head, tails := b.step(s)
		if entry == None {
			entry = head
		} else {
			b.setAll(open, head)
		}
		open = tails
	}
	return entry, open
}

// step compiles one step. Both arms of a decision dangle until the following
// state is known, which is what makes them rejoin at a shared target.
func (b *builder) step(s intent.StepNode) (head int, exits []patch) {
	switch n := s.(type) {
	case *intent.Action:
		head = b.add(State{Kind: StateAction, Label: n.VerbPhrase, Component: n.ComponentRef})
		return head, []patch{{head, fieldNext}}

	case *intent.Decision:
		head = b.add(State{Kind: StateBranch, Label: n.Condition})

		thenEntry, thenExits := b.steps(n.Then)
		if thenEntry == None {
			exits = append(exits, patch{head, fieldThen})
		} else {
			b.set(patch{head, fieldThen}, thenEntry)
			exits = append(exits, thenExits...)
		}

		elseEntry, elseExits := b.steps(n.Else)
		if elseEntry == None {
			exits = append(exits, patch{head, fieldElse})
		} else {
			b.set(patch{head, fieldElse}, elseEntry)
			exits = append(exits, elseExits...)
		}
		return head, exits
	}
	return None, nil
}
