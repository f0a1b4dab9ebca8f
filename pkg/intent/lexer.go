package intent

import (
	"bufio"
	"strings"
)

// line is one physical line of spec text with its indentation measured.
type line struct {
	num    int    // 1-based line number
	indent int    // leading space count
	text   string // content after indentation, right-trimmed
}

func (l line) blank() bool   { return l.text == "" }
func (l line) comment() bool { return strings.HasPrefix(l.text, "#") }

// scan splits src into lines. Indentation is spaces only; a tab in the
// indentation of a line is a SyntaxError. Blank and comment lines are kept
// so that block literals can span them.
func scan(src string) ([]line, *SyntaxError) {
	var lines []line
	sc := bufio.NewScanner(strings.NewReader(src))
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	num := 0
	for sc.Scan() {
		num++
		raw := sc.Text()
		indent := 0
		for indent < len(raw) && raw[indent] == ' ' {
			indent++
		}
		if indent < len(raw) && raw[indent] == '\t' {
			return nil, &SyntaxError{
				Line:    num,
				Column:  indent + 1,
				Message: "tab in indentation; indent with spaces",
			}
		}
		lines = append(lines, line{
			num:    num,
			indent: indent,
			text:   strings.TrimRight(raw[indent:], " \t"),
		})
	}
	return lines, nil
}

// splitKey divides "key: value" content at the first colon. ok is false when
// the content has no colon.
func splitKey(text string) (key, value string, ok bool) {
	i := strings.IndexByte(text, ':')
	if i < 0 {
		return "", "", false
	}
	return strings.TrimSpace(text[:i]), strings.TrimSpace(text[i+1:]), true
}
