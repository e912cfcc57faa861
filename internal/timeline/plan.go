package timeline

import (
	"sort"

	"github.com/bobarin/clipforge/internal/models"
)

// xfadeNames maps transition kinds to ffmpeg xfade transition names. A kind
// absent from this table composites as a hard cut. The planner derives both
// the transition steps and the TimeMap from one lookup, so the overlap
// arithmetic and the rendered picture cannot drift apart.
var xfadeNames = map[models.TransitionKind]string{
	models.TransitionCrossfade: "fade",
	models.TransitionFade:      "fadeblack",
	models.TransitionWipeLeft:  "wipeleft",
	models.TransitionWipeRight: "wiperight",
	models.TransitionSlideUp:   "slideup",
	models.TransitionDissolve:  "dissolve",
	models.TransitionZoomIn:    "zoomin",
	models.TransitionCircle:    "circleopen",
}

// XfadeName returns the ffmpeg xfade transition for a kind, and whether the
// kind composites as a crossfade at all.
func XfadeName(kind models.TransitionKind) (string, bool) {
	name, ok := xfadeNames[kind]
	return name, ok
}

// TransitionStep describes how segment i joins segment i-1 in the assembled
// output. Offset is the output time where the boundary lands; for a
// crossfade it is also where the blend begins.
type TransitionStep struct {
	Xfade    string  // ffmpeg xfade name, "" for a hard cut
	Duration float64 // effective overlap seconds after clamping, 0 for a hard cut
	Offset   float64
}

// IsCrossfade reports whether this boundary blends rather than hard-cuts.
func (t TransitionStep) IsCrossfade() bool {
	return t.Xfade != "" && t.Duration > 0
}

// AssemblyPlan is the planner's output: the ordered kept intervals to
// splice, one TransitionStep per interior boundary (len(Intervals)-1), and
// the TimeMap consistent with the chosen compositing strategy.
type AssemblyPlan struct {
	Intervals       []Interval
	Steps           []TransitionStep
	Map             *TimeMap
	UsesTransitions bool
}

// TotalDuration is the planned output length.
func (p *AssemblyPlan) TotalDuration() float64 {
	return p.Map.TotalDuration()
}

// PlanSegments plans the assembly of explicit keep-segments, honoring
// crossfade-family transitions. The effective overlap of each transition is
// min(declared, half of this segment, half of the output so far) — the
// halves clamp keeps output positions strictly increasing no matter what
// duration was requested. Oversize durations shrink silently; unknown
// transition kinds fall back to hard cuts; the first segment never
// transitions (nothing to blend into).
func PlanSegments(specs []models.SegmentSpec) (*AssemblyPlan, error) {
	sorted := make([]models.SegmentSpec, len(specs))
	copy(sorted, specs)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].SourceStart < sorted[j].SourceStart })

	intervals := make([]Interval, len(sorted))
	for i, s := range sorted {
		if s.SourceEnd <= s.SourceStart {
			return nil, ErrInvalidInterval
		}
		intervals[i] = Interval{SourceStart: s.SourceStart, SourceEnd: s.SourceEnd}
	}

	segments := make([]KeptSegment, 0, len(sorted))
	steps := make([]TransitionStep, 0, max(len(sorted)-1, 0))
	usesTransitions := false
	running := 0.0

	for i, s := range sorted {
		dur := s.Duration()
		if i == 0 {
			segments = append(segments, KeptSegment{SourceStart: s.SourceStart, SourceEnd: s.SourceEnd})
			running = dur
			continue
		}

		effective := 0.0
		xfade, ok := XfadeName(s.Transition)
		if ok {
			declared := s.TransitionDuration
			if declared <= 0 {
				declared = models.DefaultTransitionDuration
			}
			effective = min(declared, dur*0.5, running*0.5)
		}

		step := TransitionStep{Offset: running}
		if ok && effective > 0 {
			step = TransitionStep{Xfade: xfade, Duration: effective, Offset: running - effective}
			usesTransitions = true
		} else {
			effective = 0
		}
		steps = append(steps, step)

		outputStart := running - effective
		segments = append(segments, KeptSegment{SourceStart: s.SourceStart, SourceEnd: s.SourceEnd, OutputStart: outputStart})
		running = outputStart + dur
	}

	return &AssemblyPlan{
		Intervals:       intervals,
		Steps:           steps,
		Map:             &TimeMap{segments: segments},
		UsesTransitions: usesTransitions,
	}, nil
}

// PlanCuts plans the assembly of everything between the given cut regions:
// the cuts are inverted into kept intervals and hard-concatenated.
func PlanCuts(cuts []models.CutSpec, sourceDuration float64) (*AssemblyPlan, error) {
	if sourceDuration <= 0 {
		return nil, ErrInvalidInterval
	}
	return planHard(InvertCuts(cuts, sourceDuration))
}

// WithoutTransitions re-plans the same kept intervals as plain hard cuts.
// Used when crossfade compositing fails at the renderer and the assembly
// falls back to simple concatenation — the TimeMap must shift with it.
func (p *AssemblyPlan) WithoutTransitions() (*AssemblyPlan, error) {
	return planHard(p.Intervals)
}

func planHard(intervals []Interval) (*AssemblyPlan, error) {
	tm, err := NewTimeMapFromIntervals(intervals)
	if err != nil {
		return nil, err
	}
	steps := make([]TransitionStep, 0, max(len(intervals)-1, 0))
	for i := 1; i < len(intervals); i++ {
		steps = append(steps, TransitionStep{Offset: tm.segments[i].OutputStart})
	}
	return &AssemblyPlan{Intervals: intervals, Steps: steps, Map: tm}, nil
}
