package timeline

import (
	"testing"

	"github.com/bobarin/clipforge/internal/models"
)

func TestPlanSegmentsCrossfade(t *testing.T) {
	// Two segments of 10s and 8s joined by a 3s crossfade: the second
	// segment starts 3s early, so the output is 15s instead of 18s.
	plan, err := PlanSegments([]models.SegmentSpec{
		{SourceStart: 0, SourceEnd: 10},
		{SourceStart: 10, SourceEnd: 18, Transition: models.TransitionCrossfade, TransitionDuration: 3},
	})
	if err != nil {
		t.Fatalf("PlanSegments: %v", err)
	}

	if !plan.UsesTransitions {
		t.Error("UsesTransitions = false, want true")
	}
	if len(plan.Steps) != 1 {
		t.Fatalf("steps = %d, want 1", len(plan.Steps))
	}
	step := plan.Steps[0]
	if step.Xfade != "fade" || !floatEq(step.Duration, 3) || !floatEq(step.Offset, 7) {
		t.Errorf("step = %+v, want fade/3s at offset 7", step)
	}

	segs := plan.Map.Segments()
	if !floatEq(segs[1].OutputStart, 7) {
		t.Errorf("second segment OutputStart = %v, want 7", segs[1].OutputStart)
	}
	if !floatEq(plan.TotalDuration(), 15) {
		t.Errorf("TotalDuration = %v, want 15", plan.TotalDuration())
	}
}

func TestPlanSegmentsClamp(t *testing.T) {
	tests := []struct {
		name         string
		segments     []models.SegmentSpec
		wantDuration float64
		wantTotal    float64
	}{
		{
			name: "clamped by half of the incoming segment",
			segments: []models.SegmentSpec{
				{SourceStart: 0, SourceEnd: 10},
				{SourceStart: 10, SourceEnd: 14, Transition: models.TransitionDissolve, TransitionDuration: 10},
			},
			wantDuration: 2, // min(10, 4*0.5, 10*0.5)
			wantTotal:    12,
		},
		{
			name: "clamped by half of the running output",
			segments: []models.SegmentSpec{
				{SourceStart: 0, SourceEnd: 1},
				{SourceStart: 1, SourceEnd: 11, Transition: models.TransitionCrossfade, TransitionDuration: 5},
			},
			wantDuration: 0.5, // min(5, 10*0.5, 1*0.5)
			wantTotal:    10.5,
		},
		{
			name: "unclamped when the declared duration fits",
			segments: []models.SegmentSpec{
				{SourceStart: 0, SourceEnd: 10},
				{SourceStart: 10, SourceEnd: 18, Transition: models.TransitionWipeLeft, TransitionDuration: 1},
			},
			wantDuration: 1,
			wantTotal:    17,
		},
		{
			name: "zero declared duration uses the default",
			segments: []models.SegmentSpec{
				{SourceStart: 0, SourceEnd: 10},
				{SourceStart: 10, SourceEnd: 18, Transition: models.TransitionCrossfade},
			},
			wantDuration: models.DefaultTransitionDuration,
			wantTotal:    18 - models.DefaultTransitionDuration,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := PlanSegments(tt.segments)
			if err != nil {
				t.Fatalf("PlanSegments: %v", err)
			}
			if got := plan.Steps[0].Duration; !floatEq(got, tt.wantDuration) {
				t.Errorf("effective duration = %v, want %v", got, tt.wantDuration)
			}
			if got := plan.TotalDuration(); !floatEq(got, tt.wantTotal) {
				t.Errorf("TotalDuration = %v, want %v", got, tt.wantTotal)
			}
		})
	}
}

func TestPlanSegmentsOverlapConservation(t *testing.T) {
	// Three segments, one 2s transition: output shrinks by exactly 2s.
	plan, err := PlanSegments([]models.SegmentSpec{
		{SourceStart: 0, SourceEnd: 8},
		{SourceStart: 8, SourceEnd: 16, Transition: models.TransitionSlideUp, TransitionDuration: 2},
		{SourceStart: 16, SourceEnd: 22, Transition: models.TransitionHard},
	})
	if err != nil {
		t.Fatalf("PlanSegments: %v", err)
	}
	if !floatEq(plan.TotalDuration(), 8+8+6-2) {
		t.Errorf("TotalDuration = %v, want %v", plan.TotalDuration(), 8+8+6-2.0)
	}
}

func TestPlanSegmentsHardAndUnknownKinds(t *testing.T) {
	for _, kind := range []models.TransitionKind{models.TransitionNone, models.TransitionHard, "", "sparkle"} {
		plan, err := PlanSegments([]models.SegmentSpec{
			{SourceStart: 0, SourceEnd: 5},
			{SourceStart: 5, SourceEnd: 9, Transition: kind, TransitionDuration: 1},
		})
		if err != nil {
			t.Fatalf("PlanSegments(%q): %v", kind, err)
		}
		if plan.UsesTransitions {
			t.Errorf("kind %q: UsesTransitions = true, want false", kind)
		}
		if step := plan.Steps[0]; step.IsCrossfade() || !floatEq(step.Offset, 5) {
			t.Errorf("kind %q: step = %+v, want hard cut at offset 5", kind, step)
		}
		if !floatEq(plan.TotalDuration(), 9) {
			t.Errorf("kind %q: TotalDuration = %v, want 9", kind, plan.TotalDuration())
		}
	}
}

func TestPlanSegmentsSingleSegmentNeverTransitions(t *testing.T) {
	plan, err := PlanSegments([]models.SegmentSpec{
		{SourceStart: 3, SourceEnd: 9, Transition: models.TransitionCrossfade, TransitionDuration: 2},
	})
	if err != nil {
		t.Fatalf("PlanSegments: %v", err)
	}
	if len(plan.Steps) != 0 || plan.UsesTransitions {
		t.Errorf("single segment plan has steps %v", plan.Steps)
	}
	if !floatEq(plan.TotalDuration(), 6) {
		t.Errorf("TotalDuration = %v, want 6", plan.TotalDuration())
	}
}

func TestPlanSegmentsSortsBySourceStart(t *testing.T) {
	plan, err := PlanSegments([]models.SegmentSpec{
		{SourceStart: 10, SourceEnd: 18},
		{SourceStart: 0, SourceEnd: 10},
	})
	if err != nil {
		t.Fatalf("PlanSegments: %v", err)
	}
	if !floatEq(plan.Intervals[0].SourceStart, 0) || !floatEq(plan.Intervals[1].SourceStart, 10) {
		t.Errorf("intervals not sorted: %+v", plan.Intervals)
	}
}

func TestPlanCuts(t *testing.T) {
	plan, err := PlanCuts([]models.CutSpec{{Start: 5, End: 7}, {Start: 12, End: 14}}, 30)
	if err != nil {
		t.Fatalf("PlanCuts: %v", err)
	}
	if plan.UsesTransitions {
		t.Error("cut plans never use transitions")
	}
	if len(plan.Intervals) != 3 || len(plan.Steps) != 2 {
		t.Fatalf("intervals %d steps %d, want 3 and 2", len(plan.Intervals), len(plan.Steps))
	}
	if !floatEq(plan.Steps[0].Offset, 5) || !floatEq(plan.Steps[1].Offset, 10) {
		t.Errorf("step offsets = %v, %v, want 5 and 10", plan.Steps[0].Offset, plan.Steps[1].Offset)
	}
	if !floatEq(plan.TotalDuration(), 26) {
		t.Errorf("TotalDuration = %v, want 26", plan.TotalDuration())
	}
}

func TestWithoutTransitions(t *testing.T) {
	plan, err := PlanSegments([]models.SegmentSpec{
		{SourceStart: 0, SourceEnd: 10},
		{SourceStart: 10, SourceEnd: 18, Transition: models.TransitionCrossfade, TransitionDuration: 3},
	})
	if err != nil {
		t.Fatalf("PlanSegments: %v", err)
	}

	hard, err := plan.WithoutTransitions()
	if err != nil {
		t.Fatalf("WithoutTransitions: %v", err)
	}
	if hard.UsesTransitions {
		t.Error("fallback plan still uses transitions")
	}
	if !floatEq(hard.TotalDuration(), 18) {
		t.Errorf("fallback TotalDuration = %v, want 18", hard.TotalDuration())
	}
	if segs := hard.Map.Segments(); !floatEq(segs[1].OutputStart, 10) {
		t.Errorf("fallback second OutputStart = %v, want 10", segs[1].OutputStart)
	}
}

func TestXfadeName(t *testing.T) {
	tests := []struct {
		kind models.TransitionKind
		want string
		ok   bool
	}{
		{models.TransitionCrossfade, "fade", true},
		{models.TransitionFade, "fadeblack", true},
		{models.TransitionWipeLeft, "wipeleft", true},
		{models.TransitionWipeRight, "wiperight", true},
		{models.TransitionSlideUp, "slideup", true},
		{models.TransitionDissolve, "dissolve", true},
		{models.TransitionZoomIn, "zoomin", true},
		{models.TransitionCircle, "circleopen", true},
		{models.TransitionNone, "", false},
		{models.TransitionHard, "", false},
		{"glitter", "", false},
	}
	for _, tt := range tests {
		got, ok := XfadeName(tt.kind)
		if got != tt.want || ok != tt.ok {
			t.Errorf("XfadeName(%q) = %q, %v, want %q, %v", tt.kind, got, ok, tt.want, tt.ok)
		}
	}
}

func TestTransitionMapMatchesPlanArithmetic(t *testing.T) {
	// The map constructor and the planner must agree on overlap math for
	// any mix of transitions.
	specs := []models.SegmentSpec{
		{SourceStart: 0, SourceEnd: 6},
		{SourceStart: 8, SourceEnd: 15, Transition: models.TransitionDissolve, TransitionDuration: 1.5},
		{SourceStart: 20, SourceEnd: 24, Transition: models.TransitionHard},
		{SourceStart: 30, SourceEnd: 42, Transition: models.TransitionZoomIn, TransitionDuration: 99},
	}

	plan, err := PlanSegments(specs)
	if err != nil {
		t.Fatalf("PlanSegments: %v", err)
	}
	tm, err := NewTimeMapFromSegments(specs)
	if err != nil {
		t.Fatalf("NewTimeMapFromSegments: %v", err)
	}

	planSegs := plan.Map.Segments()
	mapSegs := tm.Segments()
	if len(planSegs) != len(mapSegs) {
		t.Fatalf("segment count mismatch: %d vs %d", len(planSegs), len(mapSegs))
	}
	for i := range planSegs {
		if !floatEq(planSegs[i].OutputStart, mapSegs[i].OutputStart) {
			t.Errorf("segment %d OutputStart: plan %v, map %v", i, planSegs[i].OutputStart, mapSegs[i].OutputStart)
		}
	}
}
