package timeline

import (
	"testing"

	"github.com/bobarin/clipforge/internal/models"
)

func TestRemapWords(t *testing.T) {
	tm := scenarioMap(t)

	words := []models.Word{
		{Text: "kept", Start: 8, End: 9},
		{Text: "straddles", Start: 6.5, End: 7.5},
		{Text: "swallowed", Start: 5.2, End: 6.8},
		{Text: "spans", Start: 4, End: 8},
	}

	got := RemapWords(words, tm)
	want := []models.Word{
		{Text: "kept", Start: 6, End: 7},
		{Text: "straddles", Start: 5, End: 5.5},
		{Text: "spans", Start: 4, End: 6},
	}

	if len(got) != len(want) {
		t.Fatalf("remapped %d words, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i].Text != want[i].Text || !floatEq(got[i].Start, want[i].Start) || !floatEq(got[i].End, want[i].End) {
			t.Errorf("word %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestRemapWordsIdempotent(t *testing.T) {
	identity, err := NewTimeMapFromCuts(nil, 60)
	if err != nil {
		t.Fatalf("NewTimeMapFromCuts: %v", err)
	}

	words := []models.Word{
		{Text: "a", Start: 1.23, End: 1.87},
		{Text: "b", Start: 2.04, End: 2.6},
	}

	once := RemapWords(words, identity)
	twice := RemapWords(once, identity)

	if len(once) != len(words) || len(twice) != len(once) {
		t.Fatalf("identity remap changed word count: %d → %d → %d", len(words), len(once), len(twice))
	}
	for i := range once {
		if !floatEq(once[i].Start, words[i].Start) || !floatEq(once[i].End, words[i].End) {
			t.Errorf("first remap moved word %d: %+v", i, once[i])
		}
		if once[i] != twice[i] {
			t.Errorf("second remap changed word %d: %+v → %+v", i, once[i], twice[i])
		}
	}
}

func TestRemapWordsRounds(t *testing.T) {
	tm, err := NewTimeMapFromIntervals([]Interval{{SourceStart: 1.111, SourceEnd: 10}})
	if err != nil {
		t.Fatalf("NewTimeMapFromIntervals: %v", err)
	}
	got := RemapWords([]models.Word{{Text: "x", Start: 2, End: 3}}, tm)
	if len(got) != 1 {
		t.Fatalf("remapped %d words, want 1", len(got))
	}
	// 2 - 1.111 = 0.889 → 0.89 at two decimals.
	if !floatEq(got[0].Start, 0.89) || !floatEq(got[0].End, 1.89) {
		t.Errorf("word = %+v, want start 0.89 end 1.89", got[0])
	}
}

func TestRemapZooms(t *testing.T) {
	tm := scenarioMap(t)

	zooms := []models.ZoomKeyframe{
		{ID: "kept", Time: 8, Duration: 1, Scale: 1.2},
		{ID: "straddles", Time: 6.5, Duration: 1, Scale: 1.15},
		{ID: "swallowed", Time: 5.5, Duration: 1, Scale: 1.3},
	}

	got := RemapZooms(zooms, tm)
	if len(got) != 2 {
		t.Fatalf("remapped %d zooms, want 2: %+v", len(got), got)
	}

	if !floatEq(got[0].Time, 6) || !floatEq(got[0].Duration, 1) {
		t.Errorf("kept zoom = %+v, want time 6 duration 1", got[0])
	}
	// [6.5, 7.5] over the (5,7) cut survives as output [5.0, 5.5].
	if !floatEq(got[1].Time, 5) || !floatEq(got[1].Duration, 0.5) {
		t.Errorf("straddling zoom = %+v, want time 5 duration 0.5", got[1])
	}
	if got[1].Scale != 1.15 {
		t.Errorf("remap must not touch scale: %+v", got[1])
	}
}

func TestRemapZoomsTransitionAware(t *testing.T) {
	tm, err := NewTimeMapFromSegments([]models.SegmentSpec{
		{SourceStart: 0, SourceEnd: 10},
		{SourceStart: 10, SourceEnd: 18, Transition: models.TransitionCrossfade, TransitionDuration: 3},
	})
	if err != nil {
		t.Fatalf("NewTimeMapFromSegments: %v", err)
	}

	// A zoom inside the second segment shifts back by the 3s overlap:
	// source 12 sits 2s into a segment whose output starts at 7.
	got := RemapZooms([]models.ZoomKeyframe{{Time: 12, Duration: 2, Scale: 1.2}}, tm)
	if len(got) != 1 {
		t.Fatalf("remapped %d zooms, want 1", len(got))
	}
	if !floatEq(got[0].Time, 9) || !floatEq(got[0].Duration, 2) {
		t.Errorf("zoom = %+v, want time 9 duration 2", got[0])
	}
}
