package filter

import (
	"testing"

	"github.com/bobarin/clipforge/internal/models"
)

func TestPiecewiseExpr(t *testing.T) {
	t.Run("base only", func(t *testing.T) {
		p := NewPiecewise("1.0")
		if got := p.Expr(); got != "1.0" {
			t.Errorf("Expr = %q, want base", got)
		}
	})

	t.Run("single piece", func(t *testing.T) {
		p := NewPiecewise("1.0")
		p.Add(1, 2, "a")
		want := "if(between(t,1.000,2.000),a,1.0)"
		if got := p.Expr(); got != want {
			t.Errorf("Expr = %q, want %q", got, want)
		}
	})

	t.Run("later pieces wrap earlier ones and win on overlap", func(t *testing.T) {
		p := NewPiecewise("1.0")
		p.Add(1, 2, "a")
		p.Add(1.5, 3, "b")
		want := "if(between(t,1.500,3.000),b,if(between(t,1.000,2.000),a,1.0))"
		if got := p.Expr(); got != want {
			t.Errorf("Expr = %q, want %q", got, want)
		}
	})

	t.Run("pieces stay inspectable before serialization", func(t *testing.T) {
		p := NewPiecewise("0")
		p.Add(0, 1, "x")
		p.Add(2, 3, "y")
		pieces := p.Pieces()
		if len(pieces) != 2 || pieces[0].Expr != "x" || pieces[1].Start != 2 {
			t.Errorf("Pieces = %+v", pieces)
		}
	})
}

func TestEasingExpr(t *testing.T) {
	tests := []struct {
		easing models.Easing
		want   string
	}{
		{models.EasingEaseIn, "pow(p,3)"},
		{models.EasingEaseInOut, "if(lt(p,0.5),4*pow(p,3),1-pow(-2*p+2,3)/2)"},
		{models.EasingSnap, "if(lt(p,0.5),0,1)"},
		{models.EasingLinear, "p"},
		{"mystery", "p"},
	}
	for _, tt := range tests {
		if got := EasingExpr("p", tt.easing); got != tt.want {
			t.Errorf("EasingExpr(%q) = %q, want %q", tt.easing, got, tt.want)
		}
	}
}

func TestColorHex(t *testing.T) {
	tests := []struct {
		in   string
		want uint32
		ok   bool
	}{
		{"#FFD700", 0xFFD700, true},
		{"#ffffff", 0xFFFFFF, true},
		{"0x00FF88", 0x00FF88, true},
		{"#00000080", 0x000000, true}, // alpha digits ignored
		{"white", 0xFFFFFF, true},
		{"black", 0x000000, true},
		{"red", 0xFF0000, true},
		{"#FFF", 0, false},
		{"chartreuse-ish", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := colorHex(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("colorHex(%q) = %#x, %v, want %#x, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestEscapeText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain text untouched", "hello world", "hello world"},
		{"colon", "time: now", `time\: now`},
		{"comma", "a, b", `a\, b`},
		{"brackets", "[loud]", `\[loud\]`},
		{"semicolon", "x;y", `x\;y`},
		{"quote", "it's", `it'\''s`},
		{"backslash escapes first", `a\:b`, `a\\\:b`},
		{"percent sign passes through", "100%", "100%"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EscapeText(tt.in); got != tt.want {
				t.Errorf("EscapeText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
