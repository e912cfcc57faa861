package filter

import (
	"fmt"

	"github.com/bobarin/clipforge/internal/models"
)

// ZoomChain builds the scale+crop filter applying zoom keyframes to a
// frame of the given dimensions. Keyframes must already be in output time.
//
// Each keyframe contributes a triangular 0→1→0 progress envelope peaking at
// its midpoint, shaped by its easing, then mapped to a scale factor
// 1+(target-1)*eased. Overlapping keyframes resolve last-defined-wins, and
// outside every window the scale is 1.0. The crop window recenters on each
// keyframe's anchor, clamped so the zoomed viewport never leaves the frame.
//
// Returns "" when there is nothing to apply.
func ZoomChain(zooms []models.ZoomKeyframe, width, height int) string {
	if len(zooms) == 0 {
		return ""
	}

	scale := NewPiecewise("1.0")
	anchorX := NewPiecewise(fmt.Sprintf("%.2f", zooms[0].AnchorX))
	anchorY := NewPiecewise(fmt.Sprintf("%.2f", zooms[0].AnchorY))

	for _, z := range zooms {
		start := z.Time
		end := z.Time + z.Duration
		mid := z.Time + z.Duration/2
		halfDur := z.Duration / 2
		ax, ay := clampAnchors(z.AnchorX, z.AnchorY, z.Scale)

		var smooth string
		if halfDur > 0 {
			// Triangle envelope: rises to 1 at the midpoint, falls back to 0.
			triangle := fmt.Sprintf("if(lt(t,%s),(t-%s)/%s,(%s-t)/%s)",
				ftime(mid), ftime(start), ftime(halfDur), ftime(end), ftime(halfDur))
			smooth = fmt.Sprintf("1.0+(%s-1.0)*%s", fnum(z.Scale), EasingExpr(triangle, z.Easing))
		} else {
			smooth = fnum(z.Scale)
		}

		scale.Add(start, end, smooth)
		anchorX.Add(start, end, fmt.Sprintf("%.2f", ax))
		anchorY.Add(start, end, fmt.Sprintf("%.2f", ay))
	}

	scaleExpr := scale.Expr()
	cropX := fmt.Sprintf("(iw-%d)*(%s)", width, anchorX.Expr())
	cropY := fmt.Sprintf("(ih-%d)*(%s)", height, anchorY.Expr())

	return fmt.Sprintf("scale='iw*(%s)':'ih*(%s)':flags=bilinear,crop=%d:%d:%s:%s",
		scaleExpr, scaleExpr, width, height, cropX, cropY)
}

// clampAnchors keeps anchor ± half-viewport inside [0,1] at the keyframe's
// peak scale, so the crop window cannot exceed frame bounds at any instant.
func clampAnchors(ax, ay, scale float64) (float64, float64) {
	half := 0.5
	if scale > 0 {
		half = 0.5 / scale
	}
	return clamp(ax, half, 1-half), clamp(ay, half, 1-half)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
