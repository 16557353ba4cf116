package cel

import (
	"reflect"
	"strings"
	"testing"

	"github.com/mcnuttandrew/prong-sub001/internal/keypath"
	"github.com/mcnuttandrew/prong-sub001/internal/syntax"
)

func newTestCompiler(t *testing.T) *Compiler {
	t.Helper()
	c, err := NewCompiler()
	if err != nil {
		t.Fatalf("NewCompiler failed: %v", err)
	}
	if c.Environment() == nil {
		t.Fatal("Environment returned nil")
	}
	return c
}

func TestCompileAndMatch(t *testing.T) {
	c := newTestCompiler(t)
	span := syntax.Span{From: 10, To: 19}
	path := keypath.Of("encoding", "color___value")

	tests := []struct {
		name     string
		expr     string
		value    string
		nodeType string
		cursor   int
		expected bool
	}{
		{"node type", `nodeType == "String"`, `"red"`, "String", 0, true},
		{"raw value keeps quotes", `value == "\"red\""`, `"red"`, "String", 0, true},
		{"hex color", `value.matches('^"#[0-9a-f]{6}"$')`, `"#ff00aa"`, "String", 0, true},
		{"hex color miss", `value.matches('^"#[0-9a-f]{6}"$')`, `"red"`, "String", 0, false},
		{"key path tail", `keyPath[size(keyPath) - 1] == "color___value"`, `"red"`, "String", 0, true},
		{"key path macro", `keyPath.exists(s, s == "encoding")`, `"red"`, "String", 0, true},
		{"cursor inside", `cursor > from && cursor < to`, `"red"`, "String", 12, true},
		{"cursor outside", `cursor > from && cursor < to`, `"red"`, "String", 30, false},
		{"strings ext", `value.lowerAscii() == "\"red\""`, `"RED"`, "String", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := c.Compile(tt.expr)
			if err != nil {
				t.Fatalf("Compile(%q) failed: %v", tt.expr, err)
			}
			got := p.Match(tt.value, tt.nodeType, path, tt.cursor, span)
			if got != tt.expected {
				t.Errorf("Match = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestCompileRejectsNonBoolean(t *testing.T) {
	c := newTestCompiler(t)
	if _, err := c.Compile(`size(value)`); err == nil {
		t.Fatal("expected an error for an int-valued expression")
	}
	if _, err := c.Compile(`value ==`); err == nil || !strings.Contains(err.Error(), "compilation error") {
		t.Fatalf("expected compilation error, got %v", err)
	}
	if _, err := c.Compile(`unknownVar == 1`); err == nil {
		t.Fatal("expected an error for an undeclared variable")
	}
}

func TestMatchFailsClosedOnEvalError(t *testing.T) {
	c := newTestCompiler(t)
	p, err := c.Compile(`keyPath[5] == "x"`)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	if p.Match(`1`, "Number", keypath.Of("a"), 0, syntax.Span{}) {
		t.Fatal("out-of-range index should not match")
	}
	if _, err := p.Eval(`1`, "Number", keypath.Of("a"), 0, syntax.Span{}); err == nil {
		t.Fatal("Eval should report the index error")
	}
}

func TestUses(t *testing.T) {
	c := newTestCompiler(t)
	tests := []struct {
		expr string
		want []string
	}{
		{`true`, []string{}},
		{`nodeType == "Number"`, []string{"nodeType"}},
		{`cursor >= from && cursor <= to`, []string{"cursor", "from", "to"}},
		{`keyPath.exists(seg, seg == value)`, []string{"keyPath", "value"}},
		{`[value, nodeType].size() == 2`, []string{"nodeType", "value"}},
	}
	for _, tt := range tests {
		p, err := c.Compile(tt.expr)
		if err != nil {
			t.Fatalf("Compile(%q) failed: %v", tt.expr, err)
		}
		if !reflect.DeepEqual(p.Uses, tt.want) {
			t.Errorf("Uses(%q) = %v, want %v", tt.expr, p.Uses, tt.want)
		}
	}
}

func TestFunctionsIncludeExtensions(t *testing.T) {
	c := newTestCompiler(t)
	funcs := c.Functions()
	if len(funcs) < 10 {
		t.Fatalf("expected at least 10 functions, got %d", len(funcs))
	}
	var sawLower, sawExists bool
	for _, f := range funcs {
		if strings.HasPrefix(f, "lowerAscii()") {
			sawLower = true
		}
		if strings.HasPrefix(f, "exists()") {
			sawExists = true
		}
		if strings.HasPrefix(f, "_") || strings.HasPrefix(f, "@") {
			t.Errorf("operator leaked into function list: %s", f)
		}
	}
	if !sawLower || !sawExists {
		t.Errorf("missing extension function or macro in %v", funcs)
	}
}
