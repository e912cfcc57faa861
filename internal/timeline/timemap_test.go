package timeline

import (
	"errors"
	"math"
	"testing"

	"github.com/bobarin/clipforge/internal/models"
)

const eps = 1e-9

func floatEq(a, b float64) bool {
	return math.Abs(a-b) < eps
}

// scenarioMap is a 30s source with cuts at (5,7) and (12,14):
// kept (0,5)@0, (7,12)@5, (14,30)@10, total output 26s.
func scenarioMap(t *testing.T) *TimeMap {
	t.Helper()
	cuts := []models.CutSpec{
		{Start: 5, End: 7, Reason: "silence"},
		{Start: 12, End: 14, Reason: "filler"},
	}
	tm, err := NewTimeMapFromCuts(cuts, 30)
	if err != nil {
		t.Fatalf("NewTimeMapFromCuts: %v", err)
	}
	return tm
}

func TestTimeMapFromCuts(t *testing.T) {
	tm := scenarioMap(t)

	want := []KeptSegment{
		{SourceStart: 0, SourceEnd: 5, OutputStart: 0},
		{SourceStart: 7, SourceEnd: 12, OutputStart: 5},
		{SourceStart: 14, SourceEnd: 30, OutputStart: 10},
	}
	got := tm.Segments()
	if len(got) != len(want) {
		t.Fatalf("segments = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if !floatEq(got[i].SourceStart, want[i].SourceStart) ||
			!floatEq(got[i].SourceEnd, want[i].SourceEnd) ||
			!floatEq(got[i].OutputStart, want[i].OutputStart) {
			t.Errorf("segment %d = %+v, want %+v", i, got[i], want[i])
		}
	}
	if !floatEq(tm.TotalDuration(), 26) {
		t.Errorf("TotalDuration = %v, want 26", tm.TotalDuration())
	}
}

func TestTimeMapFromCutsNormalization(t *testing.T) {
	tests := []struct {
		name     string
		cuts     []models.CutSpec
		duration float64
		want     []KeptSegment
	}{
		{
			name:     "zero cuts keeps the whole input",
			cuts:     nil,
			duration: 12,
			want:     []KeptSegment{{SourceStart: 0, SourceEnd: 12}},
		},
		{
			name: "unsorted cuts are sorted before inversion",
			cuts: []models.CutSpec{
				{Start: 12, End: 14},
				{Start: 5, End: 7},
			},
			duration: 30,
			want: []KeptSegment{
				{SourceStart: 0, SourceEnd: 5, OutputStart: 0},
				{SourceStart: 7, SourceEnd: 12, OutputStart: 5},
				{SourceStart: 14, SourceEnd: 30, OutputStart: 10},
			},
		},
		{
			name: "overlapping cuts merge",
			cuts: []models.CutSpec{
				{Start: 5, End: 9},
				{Start: 7, End: 12},
			},
			duration: 20,
			want: []KeptSegment{
				{SourceStart: 0, SourceEnd: 5, OutputStart: 0},
				{SourceStart: 12, SourceEnd: 20, OutputStart: 5},
			},
		},
		{
			name: "cut past the end clamps",
			cuts: []models.CutSpec{
				{Start: 25, End: 40},
			},
			duration: 30,
			want: []KeptSegment{
				{SourceStart: 0, SourceEnd: 25, OutputStart: 0},
			},
		},
		{
			name: "cut entirely past the end is ignored",
			cuts: []models.CutSpec{
				{Start: 35, End: 40},
			},
			duration: 30,
			want: []KeptSegment{
				{SourceStart: 0, SourceEnd: 30, OutputStart: 0},
			},
		},
		{
			name: "empty cut is dropped",
			cuts: []models.CutSpec{
				{Start: 9, End: 9},
				{Start: 8, End: 3},
			},
			duration: 10,
			want: []KeptSegment{
				{SourceStart: 0, SourceEnd: 10, OutputStart: 0},
			},
		},
		{
			name: "cut covering everything leaves nothing",
			cuts: []models.CutSpec{
				{Start: 0, End: 30},
			},
			duration: 30,
			want:     nil,
		},
		{
			name: "leading cut starts the output at the first kept second",
			cuts: []models.CutSpec{
				{Start: 0, End: 3},
			},
			duration: 10,
			want: []KeptSegment{
				{SourceStart: 3, SourceEnd: 10, OutputStart: 0},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tm, err := NewTimeMapFromCuts(tt.cuts, tt.duration)
			if err != nil {
				t.Fatalf("NewTimeMapFromCuts: %v", err)
			}
			got := tm.Segments()
			if len(got) != len(tt.want) {
				t.Fatalf("segments = %+v, want %+v", got, tt.want)
			}
			for i := range tt.want {
				if !floatEq(got[i].SourceStart, tt.want[i].SourceStart) ||
					!floatEq(got[i].SourceEnd, tt.want[i].SourceEnd) ||
					!floatEq(got[i].OutputStart, tt.want[i].OutputStart) {
					t.Errorf("segment %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestTimeMapInvalidConstruction(t *testing.T) {
	tests := []struct {
		name string
		fn   func() error
	}{
		{
			name: "zero source duration",
			fn: func() error {
				_, err := NewTimeMapFromCuts(nil, 0)
				return err
			},
		},
		{
			name: "interval end before start",
			fn: func() error {
				_, err := NewTimeMapFromIntervals([]Interval{{SourceStart: 5, SourceEnd: 3}})
				return err
			},
		},
		{
			name: "zero-width interval",
			fn: func() error {
				_, err := NewTimeMapFromIntervals([]Interval{{SourceStart: 5, SourceEnd: 5}})
				return err
			},
		},
		{
			name: "invalid segment spec",
			fn: func() error {
				_, err := NewTimeMapFromSegments([]models.SegmentSpec{{SourceStart: 2, SourceEnd: 2}})
				return err
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.fn(); !errors.Is(err, ErrInvalidInterval) {
				t.Errorf("err = %v, want ErrInvalidInterval", err)
			}
		})
	}
}

func TestIdentityRoundTrip(t *testing.T) {
	tm, err := NewTimeMapFromCuts(nil, 30)
	if err != nil {
		t.Fatalf("NewTimeMapFromCuts: %v", err)
	}

	for _, v := range []float64{0, 0.5, 10, 17.35, 29.999, 30} {
		out, ok := tm.SourceToOutput(v)
		if !ok || !floatEq(out, v) {
			t.Errorf("SourceToOutput(%v) = %v, %v, want identity", v, out, ok)
		}
		if src := tm.OutputToSource(v); !floatEq(src, v) {
			t.Errorf("OutputToSource(%v) = %v, want identity", v, src)
		}
	}
}

func TestOutputToSourceMonotonic(t *testing.T) {
	tm := scenarioMap(t)

	prev := math.Inf(-1)
	for out := -1.0; out <= tm.TotalDuration()+2; out += 0.25 {
		src := tm.OutputToSource(out)
		if src < prev-eps {
			t.Fatalf("OutputToSource not monotonic: f(%v) = %v after %v", out, src, prev)
		}
		prev = src
	}
}

func TestSourceToOutput(t *testing.T) {
	tm := scenarioMap(t)

	tests := []struct {
		name   string
		source float64
		want   float64
		mapped bool
	}{
		{"inside first segment", 3, 3, true},
		{"inside second segment", 8, 6, true},
		{"inside third segment", 20, 16, true},
		{"segment boundary maps to its output edge", 5, 5, true},
		{"strictly inside first cut", 6, 0, false},
		{"strictly inside second cut", 13, 0, false},
		{"past the source end", 31, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tm.SourceToOutput(tt.source)
			if ok != tt.mapped {
				t.Fatalf("SourceToOutput(%v) mapped = %v, want %v", tt.source, ok, tt.mapped)
			}
			if ok && !floatEq(got, tt.want) {
				t.Errorf("SourceToOutput(%v) = %v, want %v", tt.source, got, tt.want)
			}
		})
	}
}

func TestSourceToOutputClamped(t *testing.T) {
	tm := scenarioMap(t)

	tests := []struct {
		name   string
		source float64
		want   float64
	}{
		{"kept time maps normally", 8, 6},
		{"inside first cut clamps to previous segment end", 6.5, 5},
		{"inside second cut clamps to previous segment end", 13, 10},
		{"past the source end clamps to total duration", 45, 26},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tm.SourceToOutputClamped(tt.source); !floatEq(got, tt.want) {
				t.Errorf("SourceToOutputClamped(%v) = %v, want %v", tt.source, got, tt.want)
			}
		})
	}

	t.Run("before the first kept segment clamps to its output start", func(t *testing.T) {
		trimmed, err := NewTimeMapFromIntervals([]Interval{{SourceStart: 3, SourceEnd: 10}})
		if err != nil {
			t.Fatalf("NewTimeMapFromIntervals: %v", err)
		}
		if got := trimmed.SourceToOutputClamped(1); !floatEq(got, 0) {
			t.Errorf("SourceToOutputClamped(1) = %v, want 0", got)
		}
	})
}

func TestRemapRange(t *testing.T) {
	tm := scenarioMap(t)

	tests := []struct {
		name       string
		start, end float64
		wantStart  float64
		wantEnd    float64
		ok         bool
	}{
		{"fully kept range shifts", 8, 9, 6, 7, true},
		{"range straddling a cut end shrinks to the kept portion", 6.5, 7.5, 5, 5.5, true},
		{"range straddling a cut start shrinks to the kept portion", 4, 6, 4, 5, true},
		{"range spanning a whole cut keeps both sides", 4, 8, 4, 6, true},
		{"range fully inside a cut is empty", 5.2, 6.8, 0, 0, false},
		{"zero-width range is empty", 8, 8, 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotStart, gotEnd, ok := tm.RemapRange(tt.start, tt.end)
			if ok != tt.ok {
				t.Fatalf("RemapRange(%v, %v) ok = %v, want %v", tt.start, tt.end, ok, tt.ok)
			}
			if !ok {
				return
			}
			if !floatEq(gotStart, tt.wantStart) || !floatEq(gotEnd, tt.wantEnd) {
				t.Errorf("RemapRange(%v, %v) = (%v, %v), want (%v, %v)",
					tt.start, tt.end, gotStart, gotEnd, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestEmptyTimeMap(t *testing.T) {
	tm, err := NewTimeMapFromIntervals(nil)
	if err != nil {
		t.Fatalf("NewTimeMapFromIntervals: %v", err)
	}
	if d := tm.TotalDuration(); d != 0 {
		t.Errorf("TotalDuration = %v, want 0", d)
	}
	if src := tm.OutputToSource(5); src != 0 {
		t.Errorf("OutputToSource = %v, want 0", src)
	}
	if _, ok := tm.SourceToOutput(5); ok {
		t.Error("SourceToOutput on empty map should not resolve")
	}
	if got := tm.SourceToOutputClamped(5); got != 0 {
		t.Errorf("SourceToOutputClamped = %v, want 0", got)
	}
}

func TestKeepIntervals(t *testing.T) {
	tm := scenarioMap(t)
	want := []Interval{{0, 5}, {7, 12}, {14, 30}}
	got := tm.KeepIntervals()
	if len(got) != len(want) {
		t.Fatalf("KeepIntervals = %v, want %v", got, want)
	}
	for i := range want {
		if !floatEq(got[i].SourceStart, want[i].SourceStart) || !floatEq(got[i].SourceEnd, want[i].SourceEnd) {
			t.Errorf("interval %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}
