package filter

import (
	"strings"
	"testing"

	"github.com/bobarin/clipforge/internal/models"
)

func TestAnnotationFilters(t *testing.T) {
	anns := []models.Annotation{{
		Type:      "text",
		Content:   "Subscribe now!",
		X:         50,
		Y:         10,
		StartTime: 1,
		EndTime:   3,
	}}
	got := AnnotationFilters(anns, 1080, 1920)

	want := "drawtext=text='Subscribe now!':fontsize=36:fontcolor=white" +
		":x=540:y=192:enable='between(t,1.00,3.00)':borderw=2:bordercolor=black"
	if got != want {
		t.Errorf("AnnotationFilters =\n%s\nwant\n%s", got, want)
	}
}

func TestAnnotationFiltersStyle(t *testing.T) {
	anns := []models.Annotation{{
		Type:      "text",
		Content:   "hot take: yes",
		X:         25,
		Y:         80,
		StartTime: 0.5,
		EndTime:   2.25,
		Style: models.AnnotationStyle{
			FontSize:        52,
			Color:           "#FF0000",
			BackgroundColor: "#00000080",
		},
	}}
	got := AnnotationFilters(anns, 720, 1280)

	if !strings.Contains(got, `text='hot take\: yes'`) {
		t.Errorf("content not escaped, got\n%s", got)
	}
	if !strings.Contains(got, ":fontsize=52:fontcolor=#FF0000:x=180:y=1024:") {
		t.Errorf("style/position wrong, got\n%s", got)
	}
	if !strings.HasSuffix(got, ":box=1:boxcolor=#00000080:boxborderw=6") {
		t.Errorf("background box missing, got\n%s", got)
	}
}

func TestAnnotationFiltersSkips(t *testing.T) {
	anns := []models.Annotation{
		{Type: "arrow", Content: "ignored", X: 10, Y: 10},
		{Type: "text", Content: "   ", X: 10, Y: 10},
	}
	if got := AnnotationFilters(anns, 1080, 1920); got != "" {
		t.Errorf("non-text and blank annotations should be skipped, got %q", got)
	}
	if got := AnnotationFilters(nil, 1080, 1920); got != "" {
		t.Errorf("empty list should draw nothing, got %q", got)
	}
}

func TestAnnotationFiltersMultiple(t *testing.T) {
	anns := []models.Annotation{
		{Type: "text", Content: "first", X: 0, Y: 0, StartTime: 0, EndTime: 1},
		{Type: "text", Content: "second", X: 100, Y: 100, StartTime: 2, EndTime: 4},
	}
	got := AnnotationFilters(anns, 1080, 1920)

	if n := strings.Count(got, "drawtext="); n != 2 {
		t.Fatalf("expected 2 drawtext stages, got %d:\n%s", n, got)
	}
	if !strings.Contains(got, ":x=1080:y=1920:enable='between(t,2.00,4.00)'") {
		t.Errorf("full-percent position should reach the frame edge, got\n%s", got)
	}
	if !strings.Contains(got, "black,drawtext=") {
		t.Errorf("stages should be comma-joined, got\n%s", got)
	}
}
