package generator

import "testing"

func bindFixed(values map[string]string) bindFunc {
	return func(name, arg string) (string, bool) {
		key := name
		if arg != "" {
			key = name + ":" + arg
		}
		v, ok := values[key]
		return v, ok
	}
}

func TestRenderTemplate_Substitution(t *testing.T) {
	out, unbound := renderTemplate("package {language}\n// {component_name}\n", bindFixed(map[string]string{
		"language":       "go",
		"component_name": "OrderChecker",
	}))
	if unbound != "" {
		t.Fatalf("unexpected unbound placeholder %q", unbound)
	}
	want := "package go\n// OrderChecker\n"
	if out != want {
		t.Errorf("rendered %q, want %q", out, want)
	}
}

func TestRenderTemplate_ArgumentWithSpaces(t *testing.T) {
	out, unbound := renderTemplate("on fail: {error:store unreachable}", bindFixed(map[string]string{
		"error:store unreachable": "retry 3 times",
	}))
	if unbound != "" {
		t.Fatalf("unexpected unbound placeholder %q", unbound)
	}
	if want := "on fail: retry 3 times"; out != want {
		t.Errorf("rendered %q, want %q", out, want)
	}
}

func TestRenderTemplate_UnboundReportsPlaceholder(t *testing.T) {
	_, unbound := renderTemplate("{component_name} {prop:ttl}", bindFixed(map[string]string{
		"component_name": "Cache",
	}))
	if unbound != "prop:ttl" {
		t.Errorf("unbound = %q, want %q", unbound, "prop:ttl")
	}
}

func TestRenderTemplate_EscapedBraces(t *testing.T) {
	out, unbound := renderTemplate("func ({component_name}) Run() error {{\n\treturn nil\n}}\n", bindFixed(map[string]string{
		"component_name": "c Worker",
	}))
	if unbound != "" {
		t.Fatalf("unexpected unbound placeholder %q", unbound)
	}
	want := "func (c Worker) Run() error {\n\treturn nil\n}\n"
	if out != want {
		t.Errorf("rendered %q, want %q", out, want)
	}
}

func TestRenderTemplate_NonPlaceholderBracesPassThrough(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"empty braces", "x := map[string]struct{}", "x := map[string]struct{}"},
		{"space inside", "if x { y }", "if x { y }"},
		{"newline inside", "{\nnot a placeholder}", "{\nnot a placeholder}"},
		{"digit leading", "{1st}", "{1st}"},
		{"unclosed", "end {", "end {"},
		{"lone close", "end }", "end }"},
	}
	for _, tc := range cases {
		out, unbound := renderTemplate(tc.in, bindFixed(nil))
		if unbound != "" {
			t.Errorf("%s: unexpected unbound placeholder %q", tc.name, unbound)
			continue
		}
		if out != tc.want {
			t.Errorf("%s: rendered %q, want %q", tc.name, out, tc.want)
		}
	}
}

func TestRenderTemplate_EscapedPlaceholderStaysLiteral(t *testing.T) {
	out, unbound := renderTemplate("{{component_name}}", bindFixed(nil))
	if unbound != "" {
		t.Fatalf("unexpected unbound placeholder %q", unbound)
	}
	if want := "{component_name}"; out != want {
		t.Errorf("rendered %q, want %q", out, want)
	}
}

func TestRenderTemplate_EmptyValueAllowed(t *testing.T) {
	out, unbound := renderTemplate("[{inputs}]", bindFixed(map[string]string{"inputs": ""}))
	if unbound != "" {
		t.Fatalf("unexpected unbound placeholder %q", unbound)
	}
	if want := "[]"; out != want {
		t.Errorf("rendered %q, want %q", out, want)
	}
}
