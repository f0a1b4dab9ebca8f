package intent

import "fmt"

// SyntaxError is a fatal parse error. The parser aborts on the first one; no
// partial AST accompanies it.
type SyntaxError struct {
	Path    string
	Line    int
	Column  int
	Message string
}

// Error formats as "path:line:col: message".
func (e *SyntaxError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s:%d:%d: %s", e.Path, e.Line, e.Column, e.Message)
	}
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Message)
}
