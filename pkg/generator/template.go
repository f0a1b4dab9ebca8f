package generator

import "strings"

// Placeholder grammar: "{" name [":" argument] "}". A name is an identifier;
// the argument runs to the closing brace and may contain spaces, so error
// conditions work unquoted. "{{" and "}}" render literal braces. Any other
// brace sequence that does not form a placeholder passes through unchanged,
// which keeps ordinary Go or TypeScript code in templates legal without
// escaping.

type bindFunc func(name, arg string) (value string, ok bool)

// renderTemplate substitutes placeholders using bind. The second return names
// the first unbound placeholder; it is empty when rendering succeeded.
func renderTemplate(tmpl string, bind bindFunc) (string, string) {
	var b strings.Builder
	b.Grow(len(tmpl) + len(tmpl)/4)
	for i := 0; i < len(tmpl); {
		switch c := tmpl[i]; {
		case c == '{' && i+1 < len(tmpl) && tmpl[i+1] == '{':
			b.WriteByte('{')
			i += 2
		case c == '}' && i+1 < len(tmpl) && tmpl[i+1] == '}':
			b.WriteByte('}')
			i += 2
		case c == '{':
			name, arg, end, ok := scanPlaceholder(tmpl, i)
			if !ok {
				b.WriteByte('{')
				i++
				continue
			}
			value, bound := bind(name, arg)
			if !bound {
				return "", tmpl[i+1 : end-1]
			}
			b.WriteString(value)
			i = end
		default:
			b.WriteByte(c)
			i++
		}
	}
	return b.String(), ""
}

// scanPlaceholder reads one placeholder starting at the opening brace. The
// returned end is the index just past the closing brace.
func scanPlaceholder(tmpl string, start int) (name, arg string, end int, ok bool) {
	i := start + 1
	j := i
	for j < len(tmpl) && tmpl[j] != '}' {
		if tmpl[j] == '{' || tmpl[j] == '\n' {
			return "", "", 0, false
		}
		j++
	}
	if j == len(tmpl) {
		return "", "", 0, false
	}
	name, arg, _ = strings.Cut(tmpl[i:j], ":")
	if !isPlaceholderName(name) {
		return "", "", 0, false
	}
	return name, arg, j + 1, true
}

func isPlaceholderName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}
