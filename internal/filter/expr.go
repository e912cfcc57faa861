// Package filter turns timed edit entities into ffmpeg filter expressions.
//
// Everything here consumes output-timeline coordinates exclusively; callers
// remap words and zooms through the timeline package first. Time-varying
// values are modeled as ordered piecewise functions and serialized to
// ffmpeg's nested if(between(t,..)) syntax only at the boundary.
package filter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bobarin/clipforge/internal/models"
)

// Piece is one time-windowed expression in a piecewise function of the
// frame time t.
type Piece struct {
	Start float64
	End   float64
	Expr  string
}

// Piecewise is an ordered piecewise function of t over a base expression.
// Pieces added later take priority inside their window (last-defined-wins),
// matching how the editor resolves overlapping effects.
type Piecewise struct {
	base   string
	pieces []Piece
}

// NewPiecewise returns a piecewise function that evaluates to base outside
// every window.
func NewPiecewise(base string) *Piecewise {
	return &Piecewise{base: base}
}

// Add appends a window. Windows may overlap freely.
func (p *Piecewise) Add(start, end float64, expr string) {
	p.pieces = append(p.pieces, Piece{Start: start, End: end, Expr: expr})
}

// Pieces returns the windows in insertion order.
func (p *Piecewise) Pieces() []Piece {
	return p.pieces
}

// Expr serializes to ffmpeg expression syntax. Each later piece wraps the
// accumulated expression, so it is tested first during evaluation and wins
// inside its window.
func (p *Piecewise) Expr() string {
	expr := p.base
	for _, pc := range p.pieces {
		expr = fmt.Sprintf("if(between(t,%s,%s),%s,%s)", ftime(pc.Start), ftime(pc.End), pc.Expr, expr)
	}
	return expr
}

// EasingExpr wraps a 0..1 progress expression in the named easing curve.
// Unknown easings are treated as linear.
func EasingExpr(progress string, easing models.Easing) string {
	switch easing {
	case models.EasingEaseIn:
		return fmt.Sprintf("pow(%s,3)", progress)
	case models.EasingEaseInOut:
		return fmt.Sprintf("if(lt(%s,0.5),4*pow(%s,3),1-pow(-2*%s+2,3)/2)", progress, progress, progress)
	case models.EasingSnap:
		return fmt.Sprintf("if(lt(%s,0.5),0,1)", progress)
	default:
		return progress
	}
}

// ftime formats a time operand for filter expressions.
func ftime(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}

// fnum formats a scalar operand without forced precision (1.2 stays "1.2").
func fnum(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// colorHex parses a color into its 24-bit RGB value for use inside numeric
// expressions. Accepts #RRGGBB / 0xRRGGBB (alpha digits ignored) and a few
// common names. ok is false when the color cannot be parsed.
func colorHex(color string) (uint32, bool) {
	c := strings.TrimSpace(color)
	switch strings.ToLower(c) {
	case "white":
		return 0xFFFFFF, true
	case "black":
		return 0x000000, true
	case "red":
		return 0xFF0000, true
	case "green":
		return 0x00FF00, true
	case "blue":
		return 0x0000FF, true
	case "yellow":
		return 0xFFFF00, true
	}
	if strings.HasPrefix(c, "#") {
		c = c[1:]
	} else if strings.HasPrefix(strings.ToLower(c), "0x") {
		c = c[2:]
	} else {
		return 0, false
	}
	if len(c) != 6 && len(c) != 8 {
		return 0, false
	}
	v, err := strconv.ParseUint(c[:6], 16, 32)
	if err != nil {
		return 0, false
	}
	return uint32(v), true
}
