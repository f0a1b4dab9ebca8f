package intent

// StepKind discriminates StepNode variants.
type StepKind string

// Step kind constants.
const (
	StepAction   StepKind = "action"
	StepDecision StepKind = "decision"
)

// StepNode is one node of a Flow's step tree. It is a sealed tagged variant:
// either an Action or a Decision with recursive branches.
type StepNode interface {
	Kind() StepKind
	Pos() Pos
	Describe() string

	stepNode()
}

// Action invokes a component with a verb phrase.
type Action struct {
	ComponentRef string
	VerbPhrase   string
	At           Pos
}

// Kind returns StepAction.
func (a *Action) Kind() StepKind { return StepAction }

// Pos returns the step's position in the spec text.
func (a *Action) Pos() Pos { return a.At }

// Describe returns a human-readable description.
func (a *Action) Describe() string {
	if a.VerbPhrase == "" {
		return a.ComponentRef
	}
	return a.ComponentRef + ": " + a.VerbPhrase
}

func (a *Action) stepNode() {}

// Decision branches on a condition. The then branch is required by the
// grammar; the else branch may be empty.
type Decision struct {
	Condition string
	Then      []StepNode
	Else      []StepNode
	At        Pos
}

// Kind returns StepDecision.
func (d *Decision) Kind() StepKind { return StepDecision }

// Pos returns the step's position in the spec text.
func (d *Decision) Pos() Pos { return d.At }

// Describe returns a human-readable description.
func (d *Decision) Describe() string { return "decision: " + d.Condition }

func (d *Decision) stepNode() {}
