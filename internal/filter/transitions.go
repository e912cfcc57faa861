package filter

import (
	"fmt"
	"strings"

	"github.com/bobarin/clipforge/internal/timeline"
)

// hardJoinFade is the tiny audio fade applied at hard-cut joins to prevent
// pops. Segments shorter than twice the fade skip it.
const hardJoinFade = 0.05

// TransitionGraph builds the filter_complex assembling an AssemblyPlan from
// a single input: each kept interval is trimmed and reset to zero PTS, then
// consecutive pairs are joined by xfade/acrossfade (per the plan's steps)
// or a plain concat. The assembled streams land on [outv] and [outa].
//
// Returns "" when the plan has fewer than two intervals — a single interval
// is a plain trim, not a graph.
func TransitionGraph(plan *timeline.AssemblyPlan) string {
	intervals := plan.Intervals
	if len(intervals) < 2 {
		return ""
	}

	var parts []string
	for i, iv := range intervals {
		parts = append(parts,
			fmt.Sprintf("[0:v]trim=start=%s:end=%s,setpts=PTS-STARTPTS[v%d];", ftime(iv.SourceStart), ftime(iv.SourceEnd), i),
			fmt.Sprintf("[0:a]atrim=start=%s:end=%s,asetpts=PTS-STARTPTS[a%d];", ftime(iv.SourceStart), ftime(iv.SourceEnd), i),
		)
	}

	prevV, prevA := "v0", "a0"
	for i := 1; i < len(intervals); i++ {
		step := plan.Steps[i-1]
		last := i == len(intervals)-1

		if step.IsCrossfade() {
			outV, outA := "outv", "outa"
			if !last {
				outV = fmt.Sprintf("xv%d", i)
				outA = fmt.Sprintf("xa%d", i)
			}
			parts = append(parts,
				fmt.Sprintf("[%s][v%d]xfade=transition=%s:duration=%s:offset=%s[%s];",
					prevV, i, step.Xfade, ftime(step.Duration), ftime(step.Offset), outV),
				fmt.Sprintf("[%s][a%d]acrossfade=d=%s:c1=tri:c2=tri[%s];",
					prevA, i, ftime(step.Duration), outA),
			)
			prevV, prevA = outV, outA
		} else {
			outV, outA := "outv", "outa"
			if !last {
				outV = fmt.Sprintf("hv%d", i)
				outA = fmt.Sprintf("ha%d", i)
			}
			parts = append(parts,
				fmt.Sprintf("[%s][v%d]concat=n=2:v=1:a=0[%s];", prevV, i, outV),
				fmt.Sprintf("[%s][a%d]concat=n=2:v=0:a=1[%s];", prevA, i, outA),
			)
			prevV, prevA = outV, outA
		}
	}

	return strings.TrimSuffix(strings.Join(parts, ""), ";")
}

// HardConcatGraph builds the filter_complex splicing kept intervals with
// plain concatenation. Every interior join gets a 50ms audio fade out/in to
// soften the cut; segments too short for the fade are joined dry.
//
// Returns "" for fewer than two intervals.
func HardConcatGraph(intervals []timeline.Interval) string {
	if len(intervals) < 2 {
		return ""
	}

	var parts []string
	var concatInputs []string
	for i, iv := range intervals {
		segDur := iv.SourceEnd - iv.SourceStart

		v := fmt.Sprintf("[0:v]trim=start=%s:end=%s,setpts=PTS-STARTPTS", ftime(iv.SourceStart), ftime(iv.SourceEnd))
		a := fmt.Sprintf("[0:a]atrim=start=%s:end=%s,asetpts=PTS-STARTPTS", ftime(iv.SourceStart), ftime(iv.SourceEnd))

		if i > 0 && segDur > hardJoinFade*2 {
			a += fmt.Sprintf(",afade=t=in:d=%s", fnum(hardJoinFade))
		}
		if i < len(intervals)-1 && segDur > hardJoinFade*2 {
			a += fmt.Sprintf(",afade=t=out:st=%s:d=%s", ftime(segDur-hardJoinFade), fnum(hardJoinFade))
		}

		parts = append(parts, fmt.Sprintf("%s[v%d];%s[a%d];", v, i, a, i))
		concatInputs = append(concatInputs, fmt.Sprintf("[v%d][a%d]", i, i))
	}

	return fmt.Sprintf("%s%sconcat=n=%d:v=1:a=1[outv][outa]",
		strings.Join(parts, ""), strings.Join(concatInputs, ""), len(intervals))
}
