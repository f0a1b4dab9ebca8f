package intent

import (
	"fmt"
	"os"
	"strings"
)

// Block order within one system definition.
const (
	rankSystem = iota
	rankComponents
	rankFlow
	rankErrorHandling
	rankImplementationMap
)

// Parse parses UTF-8 spec text into system definitions. The first syntax
// error aborts the parse; no partial AST is returned.
func Parse(src string) ([]*SystemSpec, error) {
	specs, err := parseAll(src, "")
	if err != nil {
		return nil, err
	}
	return specs, nil
}

// ParseFile reads and parses a spec file. Syntax errors carry the path.
func ParseFile(path string) ([]*SystemSpec, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- user-provided spec file
	if err != nil {
		return nil, err
	}
	specs, serr := parseAll(string(data), path)
	if serr != nil {
		return nil, serr
	}
	return specs, nil
}

type parser struct {
	path  string
	lines []line
	pos   int
	stack []int // indentation columns of open block bodies
}

func parseAll(src, path string) ([]*SystemSpec, *SyntaxError) {
	lines, serr := scan(src)
	if serr != nil {
		serr.Path = path
		return nil, serr
	}
	p := &parser{path: path, lines: lines, stack: []int{0}}

	var specs []*SystemSpec
	for {
		l, ok := p.peek()
		if !ok {
			break
		}
		if l.indent != 0 {
			return nil, p.errAt(l, l.indent+1, "unexpected indentation at top level")
		}
		spec, err := p.parseSystem()
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	if len(specs) == 0 {
		return nil, &SyntaxError{Path: path, Line: 1, Column: 1, Message: "missing System block"}
	}
	return specs, nil
}

// peek returns the next significant line without consuming it.
func (p *parser) peek() (line, bool) {
	for i := p.pos; i < len(p.lines); i++ {
		l := p.lines[i]
		if l.blank() || l.comment() {
			continue
		}
		return l, true
	}
	return line{}, false
}

// next consumes and returns the next significant line.
func (p *parser) next() (line, bool) {
	for p.pos < len(p.lines) {
		l := p.lines[p.pos]
		p.pos++
		if l.blank() || l.comment() {
			continue
		}
		return l, true
	}
	return line{}, false
}

// more yields the next line of a block body at bodyIndent. It returns
// cont=false at the end of the block, after checking that a dedent lands
// exactly on an enclosing indentation column.
func (p *parser) more(bodyIndent int) (line, bool, *SyntaxError) {
	l, ok := p.peek()
	if !ok {
		return line{}, false, nil
	}
	if l.indent == bodyIndent {
		return l, true, nil
	}
	if l.indent > bodyIndent {
		return line{}, false, p.errAt(l, l.indent+1, "unexpected indentation")
	}
	if !p.onStack(l.indent) {
		msg := fmt.Sprintf("inconsistent indentation: column %d does not match any open block", l.indent+1)
		return line{}, false, p.errAt(l, l.indent+1, msg)
	}
	return line{}, false, nil
}

func (p *parser) onStack(indent int) bool {
	for _, col := range p.stack {
		if col == indent {
			return true
		}
	}
	return false
}

func (p *parser) enter(bodyIndent int) { p.stack = append(p.stack, bodyIndent) }
func (p *parser) leave()               { p.stack = p.stack[:len(p.stack)-1] }

// bodyIndent returns the indentation of the block body under a header at
// headerIndent, or ok=false when the block has no body.
func (p *parser) bodyIndent(headerIndent int) (int, bool) {
	l, ok := p.peek()
	if !ok || l.indent <= headerIndent {
		return 0, false
	}
	return l.indent, true
}

func (p *parser) errAt(l line, column int, message string) *SyntaxError {
	return &SyntaxError{Path: p.path, Line: l.num, Column: column, Message: message}
}

// parseSystem consumes one System block and the ordered top-level blocks
// that belong to it, stopping at the next System header or end of input.
func (p *parser) parseSystem() (*SystemSpec, *SyntaxError) {
	l, _ := p.next()
	key, name, ok := splitKey(l.text)
	if !ok || key != "System" {
		return nil, p.errAt(l, 1, fmt.Sprintf("expected System block, found %q", l.text))
	}
	if name == "" {
		return nil, p.errAt(l, 1, "System requires a name")
	}
	if !isIdent(name) {
		return nil, p.errAt(l, len("System: ")+1, fmt.Sprintf("system name %q is not an identifier", name))
	}
	spec := &SystemSpec{Name: name, Properties: NewProperties(), At: Pos{Line: l.num, Column: 1}}

	if err := p.parseSystemBody(spec); err != nil {
		return nil, err
	}

	rank := rankSystem
	for {
		l, ok := p.peek()
		if !ok {
			break
		}
		key, val, kok := splitKey(l.text)
		if !kok {
			return nil, p.errAt(l, 1, fmt.Sprintf("expected a block header, found %q", l.text))
		}
		if key == "System" {
			break
		}
		p.next()

		switch key {
		case "Components":
			if val != "" {
				return nil, p.errAt(l, 1, "Components takes no inline value")
			}
			if rank >= rankComponents {
				return nil, p.errAt(l, 1, "duplicate Components block")
			}
			if err := p.parseComponents(l, spec); err != nil {
				return nil, err
			}
			rank = rankComponents
		case "Flow":
			if rank < rankComponents {
				return nil, p.errAt(l, 1, "Flow block requires a preceding Components block")
			}
			if rank > rankFlow {
				return nil, p.errAt(l, 1, "Flow blocks must precede ErrorHandling and ImplementationMap")
			}
			flow, err := p.parseFlow(l, val)
			if err != nil {
				return nil, err
			}
			spec.Flows = append(spec.Flows, flow)
			rank = rankFlow
		case "ErrorHandling":
			if val != "" {
				return nil, p.errAt(l, 1, "ErrorHandling takes no inline value")
			}
			if rank < rankComponents {
				return nil, p.errAt(l, 1, "ErrorHandling block requires a preceding Components block")
			}
			if rank == rankErrorHandling {
				return nil, p.errAt(l, 1, "duplicate ErrorHandling block")
			}
			if rank > rankErrorHandling {
				return nil, p.errAt(l, 1, "ErrorHandling block must precede ImplementationMap")
			}
			if err := p.parseErrorHandling(l, spec); err != nil {
				return nil, err
			}
			rank = rankErrorHandling
		case "ImplementationMap":
			if val != "" {
				return nil, p.errAt(l, 1, "ImplementationMap takes no inline value")
			}
			if rank < rankComponents {
				return nil, p.errAt(l, 1, "ImplementationMap block requires a preceding Components block")
			}
			if err := p.parseImplementationMap(l, spec); err != nil {
				return nil, err
			}
			rank = rankImplementationMap
		default:
			return nil, p.errAt(l, 1, fmt.Sprintf("unexpected block %q", key))
		}
	}

	if len(spec.Components) == 0 {
		return nil, &SyntaxError{Path: p.path, Line: spec.At.Line, Column: 1,
			Message: fmt.Sprintf("system %q declares no components", spec.Name)}
	}
	return spec, nil
}

// parseSystemBody reads the optional indented header body of a System block:
// description and properties.
func (p *parser) parseSystemBody(spec *SystemSpec) *SyntaxError {
	bi, ok := p.bodyIndent(0)
	if !ok {
		return nil
	}
	p.enter(bi)
	defer p.leave()

	seen := make(map[string]bool)
	for {
		l, cont, err := p.more(bi)
		if err != nil {
			return err
		}
		if !cont {
			return nil
		}
		p.next()
		key, val, ok := splitKey(l.text)
		if !ok {
			return p.errAt(l, l.indent+1, "expected key: value")
		}
		if seen[key] {
			return p.errAt(l, l.indent+1, fmt.Sprintf("duplicate %s in System block", key))
		}
		seen[key] = true
		switch key {
		case "description":
			text, serr := p.scalarOrLiteral(l, val)
			if serr != nil {
				return serr
			}
			spec.Description = text
		case "properties":
			if val != "" {
				return p.errAt(l, l.indent+1, "properties takes no inline value")
			}
			if serr := p.parseProperties(l.indent, spec.Properties); serr != nil {
				return serr
			}
		default:
			return p.errAt(l, l.indent+1, fmt.Sprintf("unexpected key %q in System block", key))
		}
	}
}

func (p *parser) parseProperties(headerIndent int, props *Properties) *SyntaxError {
	bi, ok := p.bodyIndent(headerIndent)
	if !ok {
		return nil
	}
	p.enter(bi)
	defer p.leave()

	for {
		l, cont, err := p.more(bi)
		if err != nil {
			return err
		}
		if !cont {
			return nil
		}
		p.next()
		if _, isItem := listItem(l.text); isItem {
			return p.errAt(l, l.indent+1, "properties are key: value pairs, not list items")
		}
		key, val, ok := splitKey(l.text)
		if !ok || key == "" {
			return p.errAt(l, l.indent+1, "expected key: value")
		}
		text, serr := p.scalarOrLiteral(l, val)
		if serr != nil {
			return serr
		}
		if !props.Set(key, ParseValue(text), Pos{Line: l.num, Column: l.indent + 1}) {
			return p.errAt(l, l.indent+1, fmt.Sprintf("duplicate property %q", key))
		}
	}
}

func (p *parser) parseComponents(header line, spec *SystemSpec) *SyntaxError {
	bi, ok := p.bodyIndent(header.indent)
	if !ok {
		return p.errAt(header, 1, "Components block declares no components")
	}
	p.enter(bi)
	defer p.leave()

	for {
		l, cont, err := p.more(bi)
		if err != nil {
			return err
		}
		if !cont {
			return nil
		}
		p.next()
		item, ok := listItem(l.text)
		if !ok {
			return p.errAt(l, l.indent+1, "expected a - <Name>: component entry")
		}
		name, rest, ok := splitKey(item)
		if !ok {
			return p.errAt(l, l.indent+3, "component entry must end with a colon")
		}
		if rest != "" {
			return p.errAt(l, l.indent+3, fmt.Sprintf("unexpected text after component name %q", name))
		}
		if !isIdent(name) {
			return p.errAt(l, l.indent+3, fmt.Sprintf("component name %q is not an identifier", name))
		}
		c := &Component{Name: name, Properties: NewProperties(), At: Pos{Line: l.num, Column: l.indent + 3}}
		if err := p.parseComponentBody(l, c); err != nil {
			return err
		}
		spec.Components = append(spec.Components, c)
	}
}

func (p *parser) parseComponentBody(item line, c *Component) *SyntaxError {
	bi, ok := p.bodyIndent(item.indent)
	if !ok {
		return p.errAt(item, item.indent+1, fmt.Sprintf("component %q has an empty definition", c.Name))
	}
	p.enter(bi)
	defer p.leave()

	seen := make(map[string]bool)
	for {
		l, cont, err := p.more(bi)
		if err != nil {
			return err
		}
		if !cont {
			return nil
		}
		p.next()
		key, val, ok := splitKey(l.text)
		if !ok {
			return p.errAt(l, l.indent+1, "expected key: value")
		}
		if seen[key] {
			return p.errAt(l, l.indent+1, fmt.Sprintf("duplicate %s block in component %q", key, c.Name))
		}
		seen[key] = true
		switch key {
		case "description":
			text, serr := p.scalarOrLiteral(l, val)
			if serr != nil {
				return serr
			}
			c.Description = text
		case "action":
			text, serr := p.scalarOrLiteral(l, val)
			if serr != nil {
				return serr
			}
			c.Action = text
		case "properties":
			if val != "" {
				return p.errAt(l, l.indent+1, "properties takes no inline value")
			}
			if serr := p.parseProperties(l.indent, c.Properties); serr != nil {
				return serr
			}
		case "inputs":
			if val != "" {
				return p.errAt(l, l.indent+1, "inputs takes no inline value")
			}
			ports, serr := p.parsePorts(l, "inputs")
			if serr != nil {
				return serr
			}
			c.Inputs = ports
		case "outputs":
			if val != "" {
				return p.errAt(l, l.indent+1, "outputs takes no inline value")
			}
			ports, serr := p.parsePorts(l, "outputs")
			if serr != nil {
				return serr
			}
			c.Outputs = ports
		default:
			return p.errAt(l, l.indent+1, fmt.Sprintf("unexpected key %q in component %q", key, c.Name))
		}
	}
}

func (p *parser) parsePorts(header line, what string) ([]Port, *SyntaxError) {
	bi, ok := p.bodyIndent(header.indent)
	if !ok {
		return nil, nil
	}
	p.enter(bi)
	defer p.leave()

	var ports []Port
	for {
		l, cont, err := p.more(bi)
		if err != nil {
			return nil, err
		}
		if !cont {
			return ports, nil
		}
		p.next()
		item, ok := listItem(l.text)
		if !ok {
			return nil, p.errAt(l, l.indent+1, fmt.Sprintf("%s entries are - name list items", what))
		}
		if !isIdent(item) {
			return nil, p.errAt(l, l.indent+3, fmt.Sprintf("port name %q is not an identifier", item))
		}
		ports = append(ports, Port{Name: item, At: Pos{Line: l.num, Column: l.indent + 3}})
	}
}

func (p *parser) parseFlow(header line, trigger string) (*Flow, *SyntaxError) {
	if trigger == "" {
		return nil, p.errAt(header, 1, "Flow requires a trigger")
	}
	f := &Flow{Trigger: trigger, At: Pos{Line: header.num, Column: 1}}
	steps, err := p.parseSteps(header.indent)
	if err != nil {
		return nil, err
	}
	f.Steps = steps
	return f, nil
}

func (p *parser) parseSteps(headerIndent int) ([]StepNode, *SyntaxError) {
	bi, ok := p.bodyIndent(headerIndent)
	if !ok {
		return nil, nil
	}
	p.enter(bi)
	defer p.leave()

	var steps []StepNode
	for {
		l, cont, err := p.more(bi)
		if err != nil {
			return nil, err
		}
		if !cont {
			return steps, nil
		}
		p.next()
		item, ok := listItem(l.text)
		if !ok {
			return nil, p.errAt(l, l.indent+1, "expected a - step entry")
		}
		key, rest, ok := splitKey(item)
		if !ok {
			return nil, p.errAt(l, l.indent+3, "expected '- Component: phrase' or '- decision: condition'")
		}
		at := Pos{Line: l.num, Column: l.indent + 3}
		if key == "decision" {
			if rest == "" {
				return nil, p.errAt(l, l.indent+3, "decision requires a condition")
			}
			d := &Decision{Condition: rest, At: at}
			if err := p.parseBranches(l, d); err != nil {
				return nil, err
			}
			steps = append(steps, d)
			continue
		}
		if !isIdent(key) {
			return nil, p.errAt(l, l.indent+3, fmt.Sprintf("component reference %q is not an identifier", key))
		}
		steps = append(steps, &Action{ComponentRef: key, VerbPhrase: rest, At: at})
	}
}

// parseBranches reads the if/else arms of a decision. The if arm is
// required and must contain at least one step; the else arm is optional.
func (p *parser) parseBranches(item line, d *Decision) *SyntaxError {
	bi, ok := p.bodyIndent(item.indent)
	if !ok {
		return p.errAt(item, item.indent+1, "decision requires an if branch")
	}
	p.enter(bi)
	defer p.leave()

	seenIf, seenElse := false, false
	for {
		l, cont, err := p.more(bi)
		if err != nil {
			return err
		}
		if !cont {
			break
		}
		p.next()
		key, val, ok := splitKey(l.text)
		if !ok || val != "" {
			return p.errAt(l, l.indent+1, "expected if: or else:")
		}
		switch key {
		case "if":
			if seenIf {
				return p.errAt(l, l.indent+1, "duplicate if branch")
			}
			if seenElse {
				return p.errAt(l, l.indent+1, "if branch must precede else")
			}
			seenIf = true
			steps, serr := p.parseSteps(l.indent)
			if serr != nil {
				return serr
			}
			if len(steps) == 0 {
				return p.errAt(l, l.indent+1, "if branch has no steps")
			}
			d.Then = steps
		case "else":
			if seenElse {
				return p.errAt(l, l.indent+1, "duplicate else branch")
			}
			seenElse = true
			steps, serr := p.parseSteps(l.indent)
			if serr != nil {
				return serr
			}
			d.Else = steps
		default:
			return p.errAt(l, l.indent+1, fmt.Sprintf("unexpected key %q in decision", key))
		}
	}
	if !seenIf {
		return p.errAt(item, item.indent+1, "decision requires an if branch")
	}
	return nil
}

func (p *parser) parseErrorHandling(header line, spec *SystemSpec) *SyntaxError {
	bi, ok := p.bodyIndent(header.indent)
	if !ok {
		return nil
	}
	p.enter(bi)
	defer p.leave()

	for {
		l, cont, err := p.more(bi)
		if err != nil {
			return err
		}
		if !cont {
			return nil
		}
		p.next()
		if _, isItem := listItem(l.text); isItem {
			return p.errAt(l, l.indent+1, "ErrorHandling entries are condition: resolution pairs, not list items")
		}
		key, val, ok := splitKey(l.text)
		if !ok || key == "" {
			return p.errAt(l, l.indent+1, "expected condition: resolution")
		}
		text, serr := p.scalarOrLiteral(l, val)
		if serr != nil {
			return serr
		}
		if text == "" {
			return p.errAt(l, l.indent+1, fmt.Sprintf("condition %q has no resolution action", key))
		}
		spec.ErrorRules = append(spec.ErrorRules, ErrorRule{
			Condition: key,
			Action:    text,
			At:        Pos{Line: l.num, Column: l.indent + 1},
		})
	}
}

func (p *parser) parseImplementationMap(header line, spec *SystemSpec) *SyntaxError {
	bi, ok := p.bodyIndent(header.indent)
	if !ok {
		return nil
	}
	p.enter(bi)
	defer p.leave()

	for {
		l, cont, err := p.more(bi)
		if err != nil {
			return err
		}
		if !cont {
			return nil
		}
		p.next()
		item, ok := listItem(l.text)
		if !ok {
			return p.errAt(l, l.indent+1, "expected a - ComponentType entry")
		}
		key, val, ok := splitKey(item)
		if !ok || key != "ComponentType" {
			return p.errAt(l, l.indent+3, "ImplementationMap entry must begin with ComponentType")
		}
		if val == "" {
			return p.errAt(l, l.indent+3, "ComponentType requires a value")
		}
		if val != Wildcard && !isIdent(val) {
			return p.errAt(l, l.indent+3, fmt.Sprintf("component type %q is not an identifier", val))
		}
		m := &ImplementationMap{ComponentType: val, At: Pos{Line: l.num, Column: l.indent + 3}}
		if err := p.parseMapEntry(l, m); err != nil {
			return err
		}
		spec.Maps = append(spec.Maps, m)
	}
}

func (p *parser) parseMapEntry(item line, m *ImplementationMap) *SyntaxError {
	bi, ok := p.bodyIndent(item.indent)
	if !ok {
		return p.errAt(item, item.indent+1, "ImplementationMap entry requires TargetLanguage and ImplementationPattern")
	}
	p.enter(bi)
	defer p.leave()

	seen := make(map[string]bool)
	for {
		l, cont, err := p.more(bi)
		if err != nil {
			return err
		}
		if !cont {
			break
		}
		p.next()
		key, val, ok := splitKey(l.text)
		if !ok {
			return p.errAt(l, l.indent+1, "expected key: value")
		}
		if seen[key] {
			return p.errAt(l, l.indent+1, fmt.Sprintf("duplicate %s in ImplementationMap entry", key))
		}
		seen[key] = true
		switch key {
		case "TargetLanguage":
			if !isIdent(val) {
				return p.errAt(l, l.indent+1, fmt.Sprintf("target language %q is not an identifier", val))
			}
			m.Language = strings.ToLower(val)
		case "ImplementationPattern":
			text, serr := p.scalarOrLiteral(l, val)
			if serr != nil {
				return serr
			}
			m.Pattern = text
		default:
			return p.errAt(l, l.indent+1, fmt.Sprintf("unexpected key %q in ImplementationMap entry", key))
		}
	}
	if m.Language == "" {
		return p.errAt(item, item.indent+1, "ImplementationMap entry missing TargetLanguage")
	}
	if m.Pattern == "" {
		return p.errAt(item, item.indent+1, "ImplementationMap entry missing ImplementationPattern")
	}
	return nil
}

// scalarOrLiteral resolves a key's value: inline scalar text, or a block
// literal when the value is the | marker.
func (p *parser) scalarOrLiteral(keyLine line, val string) (string, *SyntaxError) {
	if val == "|" {
		return p.blockLiteral(keyLine), nil
	}
	if strings.HasPrefix(val, "|") {
		return "", p.errAt(keyLine, keyLine.indent+1, "unexpected text after block marker |")
	}
	return val, nil
}

// blockLiteral collects the raw lines indented deeper than the key line,
// strips their common indentation, and joins them with newlines. Interior
// blank lines are preserved; trailing blank lines are trimmed.
func (p *parser) blockLiteral(keyLine line) string {
	var collected []line
	for p.pos < len(p.lines) {
		l := p.lines[p.pos]
		if !l.blank() && l.indent <= keyLine.indent {
			break
		}
		collected = append(collected, l)
		p.pos++
	}
	for len(collected) > 0 && collected[len(collected)-1].blank() {
		collected = collected[:len(collected)-1]
	}
	if len(collected) == 0 {
		return ""
	}
	strip := -1
	for _, l := range collected {
		if l.blank() {
			continue
		}
		if strip < 0 || l.indent < strip {
			strip = l.indent
		}
	}
	var b strings.Builder
	for i, l := range collected {
		if i > 0 {
			b.WriteByte('\n')
		}
		if l.blank() {
			continue
		}
		b.WriteString(strings.Repeat(" ", l.indent-strip))
		b.WriteString(l.text)
	}
	return b.String()
}

// listItem strips the "- " list marker. ok is false when text is not a
// list item.
func listItem(text string) (string, bool) {
	if text == "-" {
		return "", true
	}
	if strings.HasPrefix(text, "- ") {
		return strings.TrimSpace(text[2:]), true
	}
	return "", false
}
