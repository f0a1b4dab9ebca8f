package intent

import (
	"testing"
	"time"
)

func TestParseValue_Kinds(t *testing.T) {
	testCases := []struct {
		name string
		raw  string
		kind ValueKind
		text string
	}{
		{"integer", "3", KindNumber, "3"},
		{"decimal", "1.2", KindNumber, "1.2"},
		{"negative", "-7", KindNumber, "-7"},
		{"bool true", "true", KindBool, "true"},
		{"bool false", "false", KindBool, "false"},
		{"duration seconds", "30s", KindDuration, "30s"},
		{"duration composite", "1h30m", KindDuration, "1h30m"},
		{"token", "fail_closed", KindToken, "fail_closed"},
		{"token with dash", "us-east", KindToken, "us-east"},
		{"plain string", "hello world", KindString, "hello world"},
		{"comma list", "username, password", KindString, "username, password"},
		{"quoted string", `"30s"`, KindString, "30s"},
		{"quoted with spaces", `"  padded  "`, KindString, "  padded  "},
		{"trimmed", "  42  ", KindNumber, "42"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			v := ParseValue(tc.raw)
			if v.Kind != tc.kind {
				t.Errorf("expected kind %s, got %s", tc.kind, v.Kind)
			}
			if v.Text() != tc.text {
				t.Errorf("expected text %q, got %q", tc.text, v.Text())
			}
		})
	}
}

func TestParseValue_Duration(t *testing.T) {
	v := ParseValue("90s")
	if v.Kind != KindDuration {
		t.Fatalf("expected duration, got %s", v.Kind)
	}
	if v.Duration != 90*time.Second {
		t.Errorf("expected 90s, got %v", v.Duration)
	}
}

func TestParseValue_NumberPrecision(t *testing.T) {
	v := ParseValue("1.2")
	if v.Kind != KindNumber {
		t.Fatalf("expected number, got %s", v.Kind)
	}
	f, _ := v.Scalar.AsBigFloat().Float64()
	if f != 1.2 {
		t.Errorf("expected 1.2, got %v", f)
	}
}

func TestProperties_Order(t *testing.T) {
	p := NewProperties()
	for _, key := range []string{"zeta", "alpha", "mid"} {
		if !p.Set(key, ParseValue("1"), Pos{}) {
			t.Fatalf("unexpected duplicate for %q", key)
		}
	}
	if p.Set("alpha", ParseValue("2"), Pos{}) {
		t.Errorf("expected duplicate alpha to be rejected")
	}

	keys := p.Keys()
	if len(keys) != 3 || keys[0] != "zeta" || keys[1] != "alpha" || keys[2] != "mid" {
		t.Errorf("unexpected key order: %v", keys)
	}
	if v, ok := p.Get("alpha"); !ok || v.Text() != "1" {
		t.Errorf("expected first alpha value to win, got %+v", v)
	}
	if p.Len() != 3 {
		t.Errorf("expected 3 keys, got %d", p.Len())
	}
}

func TestProperties_NilSafe(t *testing.T) {
	var p *Properties
	if _, ok := p.Get("anything"); ok {
		t.Errorf("nil properties returned a value")
	}
	if p.Keys() != nil {
		t.Errorf("nil properties returned keys")
	}
	if p.Len() != 0 {
		t.Errorf("nil properties returned nonzero length")
	}
}

func TestComponent_TypeTag(t *testing.T) {
	c := &Component{Name: "AuditLogger", Properties: NewProperties()}
	if c.TypeTag() != "AuditLogger" {
		t.Errorf("expected name fallback, got %q", c.TypeTag())
	}
	c.Properties.Set("type", ParseValue("emitter"), Pos{})
	if c.TypeTag() != "emitter" {
		t.Errorf("expected declared type, got %q", c.TypeTag())
	}
}

func TestStep_Describe(t *testing.T) {
	a := &Action{ComponentRef: "TokenIssuer", VerbPhrase: "issue a token"}
	if a.Describe() != "TokenIssuer: issue a token" {
		t.Errorf("unexpected action description: %q", a.Describe())
	}
	bare := &Action{ComponentRef: "TokenIssuer"}
	if bare.Describe() != "TokenIssuer" {
		t.Errorf("unexpected bare description: %q", bare.Describe())
	}
	d := &Decision{Condition: "verified_identity"}
	if d.Describe() != "decision: verified_identity" {
		t.Errorf("unexpected decision description: %q", d.Describe())
	}
	if a.Kind() != StepAction || d.Kind() != StepDecision {
		t.Errorf("unexpected step kinds: %s, %s", a.Kind(), d.Kind())
	}
}
