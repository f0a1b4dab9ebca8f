package intent

import (
	"strconv"
	"strings"
	"time"

	"github.com/zclconf/go-cty/cty"
)

// ValueKind enumerates property scalar kinds.
type ValueKind string

// Value kind constants.
const (
	KindString   ValueKind = "string"
	KindNumber   ValueKind = "number"
	KindBool     ValueKind = "bool"
	KindDuration ValueKind = "duration"
	KindToken    ValueKind = "token"
)

// Value is a property scalar: a closed variant over string, number, bool,
// duration, and enumerated token. Scalar holds the cty value for every kind
// except duration.
type Value struct {
	Kind     ValueKind
	Scalar   cty.Value
	Duration time.Duration
	Raw      string
}

// ParseValue classifies raw property text. Classification order: quoted
// string, bool, number, duration, token; anything else is a plain string.
func ParseValue(raw string) Value {
	text := strings.TrimSpace(raw)

	if unquoted, ok := unquote(text); ok {
		return Value{Kind: KindString, Scalar: cty.StringVal(unquoted), Raw: text}
	}
	switch text {
	case "true":
		return Value{Kind: KindBool, Scalar: cty.True, Raw: text}
	case "false":
		return Value{Kind: KindBool, Scalar: cty.False, Raw: text}
	}
	if n, err := cty.ParseNumberVal(text); err == nil {
		return Value{Kind: KindNumber, Scalar: n, Raw: text}
	}
	if d, err := time.ParseDuration(text); err == nil {
		return Value{Kind: KindDuration, Duration: d, Raw: text}
	}
	if isToken(text) {
		return Value{Kind: KindToken, Scalar: cty.StringVal(text), Raw: text}
	}
	return Value{Kind: KindString, Scalar: cty.StringVal(text), Raw: text}
}

// Text renders the value for template substitution and display. Strings and
// tokens render their content; other kinds render the original spec text.
func (v Value) Text() string {
	switch v.Kind {
	case KindString, KindToken:
		return v.Scalar.AsString()
	default:
		return v.Raw
	}
}

func unquote(text string) (string, bool) {
	if len(text) < 2 || text[0] != '"' || text[len(text)-1] != '"' {
		return "", false
	}
	unquoted, err := strconv.Unquote(text)
	if err != nil {
		return "", false
	}
	return unquoted, true
}

// isIdent reports whether text is a plain identifier: a letter or underscore
// followed by letters, digits, and underscores. Component, port, type, and
// language names use this form so that condition expressions can reference
// them verbatim.
func isIdent(text string) bool {
	if text == "" {
		return false
	}
	for i, r := range text {
		switch {
		case r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}

// isToken is the laxer identifier form allowed in property values; dashes
// are permitted.
func isToken(text string) bool {
	if text == "" {
		return false
	}
	for i, r := range text {
		switch {
		case r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
		case i > 0 && (r == '-' || (r >= '0' && r <= '9')):
		default:
			return false
		}
	}
	return true
}

// Properties is an ordered string-to-Value mapping. The zero value and nil
// are both usable as an empty mapping.
type Properties struct {
	keys []string
	vals map[string]Value
	at   map[string]Pos
}

// NewProperties returns an empty mapping.
func NewProperties() *Properties {
	return &Properties{
		vals: make(map[string]Value),
		at:   make(map[string]Pos),
	}
}

// Set adds a key. It reports false when the key is already present; the
// existing value is kept.
func (p *Properties) Set(key string, v Value, at Pos) bool {
	if _, exists := p.vals[key]; exists {
		return false
	}
	p.keys = append(p.keys, key)
	p.vals[key] = v
	p.at[key] = at
	return true
}

// Get returns the value for key.
func (p *Properties) Get(key string) (Value, bool) {
	if p == nil {
		return Value{}, false
	}
	v, ok := p.vals[key]
	return v, ok
}

// At returns the position where key was declared.
func (p *Properties) At(key string) (Pos, bool) {
	if p == nil {
		return Pos{}, false
	}
	pos, ok := p.at[key]
	return pos, ok
}

// Keys returns the keys in declaration order.
func (p *Properties) Keys() []string {
	if p == nil {
		return nil
	}
	keys := make([]string, len(p.keys))
	copy(keys, p.keys)
	return keys
}

// Len returns the number of keys.
func (p *Properties) Len() int {
	if p == nil {
		return 0
	}
	return len(p.keys)
}
