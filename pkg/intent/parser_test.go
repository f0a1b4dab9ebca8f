package intent

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParse_FullSystem(t *testing.T) {
	src := `# identity spec
System: UserAuthentication
  description: |
    Validates credentials and issues session tokens.
  properties:
    version: 1.2
    external_inputs: username, password
    external_predicates: rate_limited

Components:
  - CredentialValidator:
      description: Checks credentials against the store.
      properties:
        type: validator
        timeout: 30s
        retries: 3
      inputs:
        - username
        - password
      outputs:
        - verified_identity
      action: |
        Verify the supplied credentials against the credential store
        and emit the verified identity.
  - TokenIssuer:
      properties:
        type: emitter
      inputs:
        - verified_identity
      outputs:
        - session_token
      action: Issue a signed session token.

Flow: on login attempt
  - CredentialValidator: validate the submitted credentials
  - decision: verified_identity
    if:
      - TokenIssuer: issue a session token
    else:
      - CredentialValidator: record the failed attempt
  - TokenIssuer: deliver the token to the caller

ErrorHandling:
  credential store unreachable: retry three times, then fail closed
  token signing failure: alert the on-call operator

ImplementationMap:
  - ComponentType: validator
    TargetLanguage: go
    ImplementationPattern: |
      func New{component_name}() error {{
          // {action}
          return nil
      }}
`
	specs, err := Parse(src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(specs) != 1 {
		t.Fatalf("expected 1 system, got %d", len(specs))
	}
	spec := specs[0]

	if spec.Name != "UserAuthentication" {
		t.Errorf("expected name=UserAuthentication, got %q", spec.Name)
	}
	if spec.Description != "Validates credentials and issues session tokens." {
		t.Errorf("unexpected description: %q", spec.Description)
	}
	if got := spec.Properties.Keys(); len(got) != 3 || got[0] != "version" {
		t.Errorf("unexpected property keys: %v", got)
	}
	if ext := spec.ExternalInputs(); len(ext) != 2 || ext[0] != "username" || ext[1] != "password" {
		t.Errorf("unexpected external inputs: %v", ext)
	}
	if preds := spec.ExternalPredicates(); len(preds) != 1 || preds[0] != "rate_limited" {
		t.Errorf("unexpected external predicates: %v", preds)
	}

	if len(spec.Components) != 2 {
		t.Fatalf("expected 2 components, got %d", len(spec.Components))
	}
	cv := spec.Components[0]
	if cv.Name != "CredentialValidator" {
		t.Errorf("expected CredentialValidator, got %q", cv.Name)
	}
	if cv.TypeTag() != "validator" {
		t.Errorf("expected type tag validator, got %q", cv.TypeTag())
	}
	if got := cv.InputNames(); len(got) != 2 || got[0] != "username" || got[1] != "password" {
		t.Errorf("unexpected inputs: %v", got)
	}
	if got := cv.OutputNames(); len(got) != 1 || got[0] != "verified_identity" {
		t.Errorf("unexpected outputs: %v", got)
	}
	wantAction := "Verify the supplied credentials against the credential store\nand emit the verified identity."
	if cv.Action != wantAction {
		t.Errorf("unexpected action text: %q", cv.Action)
	}
	if v, ok := cv.Properties.Get("timeout"); !ok || v.Kind != KindDuration {
		t.Errorf("expected duration timeout property, got %+v", v)
	}

	if len(spec.Flows) != 1 {
		t.Fatalf("expected 1 flow, got %d", len(spec.Flows))
	}
	fl := spec.Flows[0]
	if fl.Trigger != "on login attempt" {
		t.Errorf("unexpected trigger: %q", fl.Trigger)
	}
	if len(fl.Steps) != 3 {
		t.Fatalf("expected 3 steps, got %d", len(fl.Steps))
	}
	first, ok := fl.Steps[0].(*Action)
	if !ok {
		t.Fatalf("expected Action, got %T", fl.Steps[0])
	}
	if first.ComponentRef != "CredentialValidator" || first.VerbPhrase != "validate the submitted credentials" {
		t.Errorf("unexpected first step: %+v", first)
	}
	dec, ok := fl.Steps[1].(*Decision)
	if !ok {
		t.Fatalf("expected Decision, got %T", fl.Steps[1])
	}
	if dec.Condition != "verified_identity" {
		t.Errorf("unexpected condition: %q", dec.Condition)
	}
	if len(dec.Then) != 1 || len(dec.Else) != 1 {
		t.Fatalf("expected 1 then and 1 else step, got %d/%d", len(dec.Then), len(dec.Else))
	}

	if len(spec.ErrorRules) != 2 {
		t.Fatalf("expected 2 error rules, got %d", len(spec.ErrorRules))
	}
	if spec.ErrorRules[0].Condition != "credential store unreachable" {
		t.Errorf("unexpected first condition: %q", spec.ErrorRules[0].Condition)
	}
	if spec.ErrorRules[0].Action != "retry three times, then fail closed" {
		t.Errorf("unexpected first resolution: %q", spec.ErrorRules[0].Action)
	}

	if len(spec.Maps) != 1 {
		t.Fatalf("expected 1 implementation map, got %d", len(spec.Maps))
	}
	m := spec.Maps[0]
	if m.ComponentType != "validator" || m.Language != "go" {
		t.Errorf("unexpected map key: %s", m.Key())
	}
	if !strings.Contains(m.Pattern, "func New{component_name}() error {{") {
		t.Errorf("unexpected pattern: %q", m.Pattern)
	}
	if !strings.Contains(m.Pattern, "    // {action}") {
		t.Errorf("pattern lost nested indentation: %q", m.Pattern)
	}
}

func TestParse_MultipleSystems(t *testing.T) {
	src := `System: First
Components:
  - Alpha:
      outputs:
        - signal

System: Second
Components:
  - Beta:
      inputs:
        - signal
`
	specs, err := Parse(src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(specs) != 2 {
		t.Fatalf("expected 2 systems, got %d", len(specs))
	}
	if specs[0].Name != "First" || specs[1].Name != "Second" {
		t.Errorf("unexpected system names: %q, %q", specs[0].Name, specs[1].Name)
	}
}

func TestParse_NestedDecisions(t *testing.T) {
	src := `System: Nested
Components:
  - Checker:
      outputs:
        - level_one
        - level_two
  - Worker:
      inputs:
        - level_one

Flow: on request
  - decision: level_one
    if:
      - decision: level_two
        if:
          - Worker: handle the deep case
        else:
          - Worker: handle the shallow case
      - Worker: finish up
`
	specs, err := Parse(src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	steps := specs[0].Flows[0].Steps
	if len(steps) != 1 {
		t.Fatalf("expected 1 top step, got %d", len(steps))
	}
	outer, ok := steps[0].(*Decision)
	if !ok {
		t.Fatalf("expected Decision, got %T", steps[0])
	}
	if len(outer.Then) != 2 {
		t.Fatalf("expected 2 then steps, got %d", len(outer.Then))
	}
	inner, ok := outer.Then[0].(*Decision)
	if !ok {
		t.Fatalf("expected nested Decision, got %T", outer.Then[0])
	}
	if inner.Condition != "level_two" {
		t.Errorf("unexpected inner condition: %q", inner.Condition)
	}
	if len(inner.Then) != 1 || len(inner.Else) != 1 {
		t.Errorf("unexpected inner branches: %d/%d", len(inner.Then), len(inner.Else))
	}
	if outer.Else != nil {
		t.Errorf("expected no else branch, got %d steps", len(outer.Else))
	}
}

func TestParse_DecisionWithoutElse(t *testing.T) {
	src := `System: S
Components:
  - A:
      outputs:
        - ready

Flow: on tick
  - decision: ready
    if:
      - A: proceed
`
	specs, err := Parse(src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	dec := specs[0].Flows[0].Steps[0].(*Decision)
	if len(dec.Then) != 1 {
		t.Errorf("expected 1 then step, got %d", len(dec.Then))
	}
	if dec.Else != nil {
		t.Errorf("expected nil else branch, got %v", dec.Else)
	}
}

func TestParse_SyntaxErrors(t *testing.T) {
	testCases := []struct {
		name string
		src  string
		want string
	}{
		{
			"empty input",
			"",
			"missing System block",
		},
		{
			"tab indentation",
			"System: S\n\tdescription: x\n",
			"tab in indentation",
		},
		{
			"missing system header",
			"Components:\n  - A:\n      action: x\n",
			"expected System block",
		},
		{
			"system name with spaces",
			"System: User Auth\nComponents:\n  - A:\n      action: x\n",
			"not an identifier",
		},
		{
			"no components block",
			"System: S\n",
			"declares no components",
		},
		{
			"empty components block",
			"System: S\nComponents:\n",
			"declares no components",
		},
		{
			"inconsistent dedent",
			"System: S\nComponents:\n  - A:\n      inputs:\n        - x\n   outputs:\n",
			"inconsistent indentation",
		},
		{
			"unexpected deeper line",
			"System: S\nComponents:\n  - A:\n      inputs:\n        - x\n          - y\n",
			"unexpected indentation",
		},
		{
			"flow before components",
			"System: S\nFlow: on x\nComponents:\n  - A:\n      action: x\n",
			"Flow block requires a preceding Components block",
		},
		{
			"duplicate components block",
			"System: S\nComponents:\n  - A:\n      action: x\nComponents:\n  - B:\n      action: y\n",
			"duplicate Components block",
		},
		{
			"flow after error handling",
			"System: S\nComponents:\n  - A:\n      action: x\nErrorHandling:\n  oops: retry\nFlow: on x\n",
			"Flow blocks must precede",
		},
		{
			"duplicate error handling",
			"System: S\nComponents:\n  - A:\n      action: x\nErrorHandling:\n  a: b\nErrorHandling:\n  c: d\n",
			"duplicate ErrorHandling block",
		},
		{
			"decision without if",
			"System: S\nComponents:\n  - A:\n      action: x\nFlow: on x\n  - decision: ready\n    else:\n      - A: cope\n",
			"decision requires an if branch",
		},
		{
			"decision with empty if",
			"System: S\nComponents:\n  - A:\n      action: x\nFlow: on x\n  - decision: ready\n    if:\n    else:\n      - A: cope\n",
			"if branch has no steps",
		},
		{
			"decision without condition",
			"System: S\nComponents:\n  - A:\n      action: x\nFlow: on x\n  - decision:\n    if:\n      - A: go\n",
			"decision requires a condition",
		},
		{
			"step without colon",
			"System: S\nComponents:\n  - A:\n      action: x\nFlow: on x\n  - do something\n",
			"expected '- Component: phrase'",
		},
		{
			"flow without trigger",
			"System: S\nComponents:\n  - A:\n      action: x\nFlow:\n  - A: go\n",
			"Flow requires a trigger",
		},
		{
			"unexpected component key",
			"System: S\nComponents:\n  - A:\n      wiring: x\n",
			`unexpected key "wiring"`,
		},
		{
			"duplicate property",
			"System: S\n  properties:\n    version: 1\n    version: 2\nComponents:\n  - A:\n      action: x\n",
			`duplicate property "version"`,
		},
		{
			"error rule as list item",
			"System: S\nComponents:\n  - A:\n      action: x\nErrorHandling:\n  - oops: retry\n",
			"not list items",
		},
		{
			"map entry missing language",
			"System: S\nComponents:\n  - A:\n      action: x\nImplementationMap:\n  - ComponentType: validator\n    ImplementationPattern: x\n",
			"missing TargetLanguage",
		},
		{
			"map entry wrong first key",
			"System: S\nComponents:\n  - A:\n      action: x\nImplementationMap:\n  - TargetLanguage: go\n",
			"must begin with ComponentType",
		},
		{
			"text after block marker",
			"System: S\nComponents:\n  - A:\n      action: | verify things\n",
			"unexpected text after block marker",
		},
		{
			"empty resolution",
			"System: S\nComponents:\n  - A:\n      action: x\nErrorHandling:\n  oops:\n",
			"has no resolution action",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.src)
			if err == nil {
				t.Fatalf("expected syntax error, got none")
			}
			var serr *SyntaxError
			if !errors.As(err, &serr) {
				t.Fatalf("expected *SyntaxError, got %T", err)
			}
			if !strings.Contains(serr.Message, tc.want) {
				t.Errorf("expected message containing %q, got %q", tc.want, serr.Message)
			}
			if serr.Line == 0 {
				t.Errorf("expected a line number, got 0")
			}
		})
	}
}

func TestParse_ErrorPosition(t *testing.T) {
	src := "System: S\nComponents:\n  - A:\n      inputs:\n        - x\n   outputs:\n"
	_, err := Parse(src)
	var serr *SyntaxError
	if !errors.As(err, &serr) {
		t.Fatalf("expected *SyntaxError, got %v", err)
	}
	if serr.Line != 6 {
		t.Errorf("expected line 6, got %d", serr.Line)
	}
	if serr.Column != 4 {
		t.Errorf("expected column 4, got %d", serr.Column)
	}
}

func TestParse_BlockLiteral(t *testing.T) {
	src := `System: S
Components:
  - A:
      action: |
        first line

        indented:
            deeper still
`
	specs, err := Parse(src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "first line\n\nindented:\n    deeper still"
	if got := specs[0].Components[0].Action; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestParse_CommentsIgnoredOutsideLiterals(t *testing.T) {
	src := `# header comment
System: S
# between blocks
Components:
  # between items
  - A:
      action: |
        # kept: this is literal content
`
	specs, err := Parse(src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := specs[0].Components[0].Action; got != "# kept: this is literal content" {
		t.Errorf("literal lost comment-looking content: %q", got)
	}
}

func TestParse_LanguageNormalized(t *testing.T) {
	src := `System: S
Components:
  - A:
      action: x
ImplementationMap:
  - ComponentType: "*"
    TargetLanguage: Go
    ImplementationPattern: x
`
	// ComponentType values are identifiers or the * wildcard; quoting is not
	// part of the grammar, so this must fail on the quoted value.
	if _, err := Parse(src); err == nil {
		t.Fatalf("expected error for quoted component type")
	}

	src = strings.Replace(src, `"*"`, `*`, 1)
	specs, err := Parse(src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if specs[0].Maps[0].Language != "go" {
		t.Errorf("expected lowercased language, got %q", specs[0].Maps[0].Language)
	}
	if specs[0].Maps[0].ComponentType != Wildcard {
		t.Errorf("expected wildcard type, got %q", specs[0].Maps[0].ComponentType)
	}
}

func TestParseFile_CarriesPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.iop")
	if err := os.WriteFile(path, []byte("System: S\n\tdescription: x\n"), 0o644); err != nil {
		t.Fatalf("write temp spec: %v", err)
	}

	_, err := ParseFile(path)
	if err == nil {
		t.Fatalf("expected syntax error")
	}
	var serr *SyntaxError
	if !errors.As(err, &serr) {
		t.Fatalf("expected *SyntaxError, got %T", err)
	}
	if serr.Path != path {
		t.Errorf("expected path %q, got %q", path, serr.Path)
	}
	if !strings.HasPrefix(serr.Error(), path+":") {
		t.Errorf("expected error to start with path, got %q", serr.Error())
	}
}

func TestParseFile_MissingFile(t *testing.T) {
	_, err := ParseFile(filepath.Join(t.TempDir(), "absent.iop"))
	if err == nil {
		t.Fatalf("expected error for missing file")
	}
	var serr *SyntaxError
	if errors.As(err, &serr) {
		t.Errorf("expected plain I/O error, got SyntaxError %v", serr)
	}
}
