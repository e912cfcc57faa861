// Package timeline maps between a source video's timeline and the post-edit
// output timeline.
//
// When cuts remove spans from a video the output is shorter than the source,
// and once crossfade transitions overlap adjacent segments the relationship
// stops being a simple shift. Every downstream effect (zoom keyframes,
// caption words, annotations) is authored in source time but rendered in
// output time, so this package is the single authority on the translation:
//
//	Source:  |---A---|##CUT##|---B---|##CUT##|---C---|
//	         0       5       7       12      14      30
//
//	Output:  |---A---|---B---|---C---|
//	         0       5       10      26
//
//	OutputToSource(6.0)  → 8.0  (6s of output plays source second 8, inside B)
//	SourceToOutput(8.0)  → 6.0
//	SourceToOutput(6.0)  → no mapping (second 6 was cut)
package timeline

import (
	"errors"
	"sort"

	"github.com/bobarin/clipforge/internal/models"
)

// ErrInvalidInterval is returned when a kept interval's end does not lie
// strictly after its start.
var ErrInvalidInterval = errors.New("timeline: interval end must be after start")

// Interval is a half-open span in source-video seconds.
type Interval struct {
	SourceStart float64
	SourceEnd   float64
}

func (iv Interval) valid() bool {
	return iv.SourceEnd > iv.SourceStart
}

// KeptSegment is a kept source interval anchored to its position in the
// output timeline. Segments are owned by a TimeMap and immutable once built.
type KeptSegment struct {
	SourceStart float64
	SourceEnd   float64
	OutputStart float64
}

// Duration is the segment's length in seconds (identical in both timelines).
func (s KeptSegment) Duration() float64 {
	return s.SourceEnd - s.SourceStart
}

// OutputEnd is the segment's end position in the output timeline.
func (s KeptSegment) OutputEnd() float64 {
	return s.OutputStart + s.Duration()
}

// TimeMap is an ordered sequence of kept segments, sorted by non-decreasing
// source and output start. Built once per render, read-only afterward.
type TimeMap struct {
	segments []KeptSegment
}

// NewTimeMapFromCuts builds a map from regions to REMOVE. Cuts may arrive
// unsorted, overlapping, or out of range; they are sorted, merged, and
// clamped into [0, sourceDuration] before being inverted into kept
// intervals. Zero cuts yields a single segment spanning the whole input.
func NewTimeMapFromCuts(cuts []models.CutSpec, sourceDuration float64) (*TimeMap, error) {
	if sourceDuration <= 0 {
		return nil, ErrInvalidInterval
	}
	return NewTimeMapFromIntervals(InvertCuts(cuts, sourceDuration))
}

// NewTimeMapFromIntervals builds a map from explicit kept intervals, already
// sorted and non-overlapping. Output positions are the running sum of prior
// kept durations (hard cuts, no overlap).
func NewTimeMapFromIntervals(intervals []Interval) (*TimeMap, error) {
	segments := make([]KeptSegment, 0, len(intervals))
	offset := 0.0
	for _, iv := range intervals {
		if !iv.valid() {
			return nil, ErrInvalidInterval
		}
		seg := KeptSegment{SourceStart: iv.SourceStart, SourceEnd: iv.SourceEnd, OutputStart: offset}
		segments = append(segments, seg)
		offset += seg.Duration()
	}
	return &TimeMap{segments: segments}, nil
}

// NewTimeMapFromSegments builds a transition-aware map from explicit
// segment specs. Crossfade-family transitions pull a segment's output start
// backward by the effective overlap, using exactly the arithmetic the
// compositor uses, so effect timing lines up with the rendered picture.
func NewTimeMapFromSegments(segments []models.SegmentSpec) (*TimeMap, error) {
	plan, err := PlanSegments(segments)
	if err != nil {
		return nil, err
	}
	return plan.Map, nil
}

// InvertCuts normalizes cut regions and returns the kept intervals between
// them. Invalid (empty) cuts are dropped; overlapping cuts merge.
func InvertCuts(cuts []models.CutSpec, sourceDuration float64) []Interval {
	if len(cuts) == 0 {
		return []Interval{{SourceStart: 0, SourceEnd: sourceDuration}}
	}

	sorted := make([]models.CutSpec, 0, len(cuts))
	for _, c := range cuts {
		if c.End > c.Start {
			sorted = append(sorted, c)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	var kept []Interval
	current := 0.0
	for _, cut := range sorted {
		if current >= sourceDuration {
			break
		}
		keepEnd := cut.Start
		if keepEnd > sourceDuration {
			keepEnd = sourceDuration
		}
		if keepEnd > current {
			kept = append(kept, Interval{SourceStart: current, SourceEnd: keepEnd})
		}
		if cut.End > current {
			current = cut.End
		}
	}
	if current < sourceDuration {
		kept = append(kept, Interval{SourceStart: current, SourceEnd: sourceDuration})
	}
	return kept
}

// Segments returns the kept segments in order. Callers must not modify the
// returned slice.
func (m *TimeMap) Segments() []KeptSegment {
	return m.segments
}

// KeepIntervals returns the kept source spans, for assembly fallbacks that
// re-splice without transitions.
func (m *TimeMap) KeepIntervals() []Interval {
	out := make([]Interval, len(m.segments))
	for i, seg := range m.segments {
		out[i] = Interval{SourceStart: seg.SourceStart, SourceEnd: seg.SourceEnd}
	}
	return out
}

// TotalDuration is the output length after cuts and transition overlap.
func (m *TimeMap) TotalDuration() float64 {
	if len(m.segments) == 0 {
		return 0
	}
	return m.segments[len(m.segments)-1].OutputEnd()
}

// OutputToSource converts an output position to the source second that
// plays there, clamped into the containing segment. Positions past the end
// map to the last segment's source end. During a transition overlap the
// earlier segment wins.
func (m *TimeMap) OutputToSource(outputTime float64) float64 {
	if len(m.segments) == 0 {
		return 0
	}
	for _, seg := range m.segments {
		if outputTime <= seg.OutputEnd() {
			offset := outputTime - seg.OutputStart
			if offset < 0 {
				offset = 0
			}
			return seg.SourceStart + offset
		}
	}
	return m.segments[len(m.segments)-1].SourceEnd
}

// SourceToOutput converts a source second to its output position. The
// second return is false when the time falls inside a removed region.
func (m *TimeMap) SourceToOutput(sourceTime float64) (float64, bool) {
	for _, seg := range m.segments {
		if sourceTime >= seg.SourceStart && sourceTime <= seg.SourceEnd {
			return seg.OutputStart + (sourceTime - seg.SourceStart), true
		}
	}
	return 0, false
}

// SourceToOutputClamped converts a source second to output time, resolving
// removed-region times to the nearest kept boundary: the next segment's
// output start when the time precedes it, the previous segment's output end
// when the time sits between two kept spans, the map's end past everything.
func (m *TimeMap) SourceToOutputClamped(sourceTime float64) float64 {
	if out, ok := m.SourceToOutput(sourceTime); ok {
		return out
	}
	for i, seg := range m.segments {
		if sourceTime < seg.SourceStart {
			return seg.OutputStart
		}
		if sourceTime > seg.SourceEnd && i+1 < len(m.segments) {
			if sourceTime < m.segments[i+1].SourceStart {
				return seg.OutputEnd()
			}
		}
	}
	if len(m.segments) > 0 {
		return m.segments[len(m.segments)-1].OutputEnd()
	}
	return 0
}

// RemapRange maps a source range to the output range it still occupies.
// Both endpoints are clamped; a range that straddles a cut shrinks to the
// kept portion. The third return is false when the whole range lies inside
// a removed gap (clamped start >= clamped end) — a valid outcome callers
// must check, not an error.
func (m *TimeMap) RemapRange(sourceStart, sourceEnd float64) (float64, float64, bool) {
	outStart := m.SourceToOutputClamped(sourceStart)
	outEnd := m.SourceToOutputClamped(sourceEnd)
	if outStart >= outEnd {
		return 0, 0, false
	}
	return outStart, outEnd, true
}
