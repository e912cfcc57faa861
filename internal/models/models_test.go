package models

import (
	"encoding/json"
	"testing"
)

// Preference documents are written to jsonb by the main backend in
// camelCase; the tags here are the wire contract.
func TestPreferencesJSONTags(t *testing.T) {
	doc := []byte(`{"zoomIntensity": "subtle", "defaultCaptionStyle": "karaoke", "captionFont": "Inter"}`)

	var prefs Preferences
	if err := json.Unmarshal(doc, &prefs); err != nil {
		t.Fatalf("failed to unmarshal preferences: %v", err)
	}

	if prefs.ZoomIntensity != "subtle" {
		t.Errorf("expected zoomIntensity=subtle, got %q", prefs.ZoomIntensity)
	}
	if prefs.DefaultCaptionStyle != "karaoke" {
		t.Errorf("expected defaultCaptionStyle=karaoke, got %q", prefs.DefaultCaptionStyle)
	}
	if prefs.CaptionFont != "Inter" {
		t.Errorf("expected captionFont=Inter, got %q", prefs.CaptionFont)
	}

	data, err := json.Marshal(Preferences{ZoomIntensity: "aggressive"})
	if err != nil {
		t.Fatalf("failed to marshal preferences: %v", err)
	}
	if string(data) != `{"zoomIntensity":"aggressive"}` {
		t.Errorf("unexpected marshal output: %s", data)
	}
}

func TestProjectStatus(t *testing.T) {
	statuses := []ProjectStatus{
		ProjectStatusPending,
		ProjectStatusProcessing,
		ProjectStatusTranscribing,
		ProjectStatusAnalyzing,
		ProjectStatusRendering,
		ProjectStatusReady,
		ProjectStatusFailed,
	}

	for _, status := range statuses {
		if status == "" {
			t.Errorf("empty status found")
		}
	}
}

func TestClipStatus(t *testing.T) {
	statuses := []ClipStatus{
		ClipStatusSuggested,
		ClipStatusRendering,
		ClipStatusReady,
		ClipStatusFailed,
	}

	for _, status := range statuses {
		if status == "" {
			t.Errorf("empty status found")
		}
	}
}

func TestWordsBetween(t *testing.T) {
	tr := &Transcript{
		Words: []Word{
			{Text: "before", Start: 8.0, End: 9.5},
			{Text: "the", Start: 10.0, End: 10.4},
			{Text: "story", Start: 10.4, End: 11.0},
			{Text: "straddles", Start: 19.5, End: 20.5},
			{Text: "after", Start: 21.0, End: 22.0},
		},
	}

	got := tr.WordsBetween(10, 20)
	if len(got) != 2 {
		t.Fatalf("expected 2 words in window, got %d", len(got))
	}

	// Timestamps are rebased so the window start becomes 0.
	if got[0].Text != "the" || got[0].Start != 0 || got[0].End != 0.4 {
		t.Errorf("word 0 = %q [%v,%v], want \"the\" [0,0.4]", got[0].Text, got[0].Start, got[0].End)
	}
	if got[1].Text != "story" || got[1].Start != 0.4 || got[1].End != 1.0 {
		t.Errorf("word 1 = %q [%v,%v], want \"story\" [0.4,1.0]", got[1].Text, got[1].Start, got[1].End)
	}
}

func TestWordsBetweenNilTranscript(t *testing.T) {
	var tr *Transcript
	if got := tr.WordsBetween(0, 10); got != nil {
		t.Errorf("expected nil words from nil transcript, got %v", got)
	}
}

func TestApplyDefaultsEmptyConfig(t *testing.T) {
	cfg := &EditConfig{}
	cfg.ApplyDefaults()

	if cfg.OutputRatio != "9:16" {
		t.Errorf("OutputRatio = %q, want 9:16", cfg.OutputRatio)
	}
	if cfg.Captions == nil || !cfg.Captions.Enabled {
		t.Fatal("expected enabled default captions")
	}
	if cfg.Captions.Style != "hormozi" || cfg.Captions.MaxWordsPerLine != 4 {
		t.Errorf("captions = %q/%d, want hormozi/4", cfg.Captions.Style, cfg.Captions.MaxWordsPerLine)
	}
	if cfg.Reframe == nil || !cfg.Reframe.Enabled || cfg.Reframe.Mode != "center_crop" {
		t.Errorf("unexpected reframe defaults: %+v", cfg.Reframe)
	}
	if cfg.Audio == nil || !cfg.Audio.NormalizeVolume {
		t.Errorf("unexpected audio defaults: %+v", cfg.Audio)
	}
	if cfg.Export == nil || cfg.Export.Quality != QualityStandard || cfg.Export.Format != FormatMP4 {
		t.Errorf("unexpected export defaults: %+v", cfg.Export)
	}
}

func TestApplyDefaultsKeepsExplicitValues(t *testing.T) {
	cfg := &EditConfig{
		Segments: []SegmentSpec{
			{SourceStart: 0, SourceEnd: 5},
			{SourceStart: 10, SourceEnd: 15, Transition: TransitionCrossfade},
		},
		Zooms:    []ZoomKeyframe{{Time: 2, Duration: 1}},
		Captions: &CaptionConfig{Enabled: true, Style: "karaoke"},
		Export:   &ExportConfig{Quality: QualityHigh},
	}
	cfg.ApplyDefaults()

	if cfg.Captions.Style != "karaoke" {
		t.Errorf("caption style overwritten: %q", cfg.Captions.Style)
	}
	if cfg.Captions.Position != "bottom" {
		t.Errorf("caption position not filled: %q", cfg.Captions.Position)
	}
	if cfg.Export.Quality != QualityHigh {
		t.Errorf("export quality overwritten: %q", cfg.Export.Quality)
	}
	if cfg.Export.Format != FormatMP4 {
		t.Errorf("export format not filled: %q", cfg.Export.Format)
	}

	if cfg.Segments[0].Transition != TransitionNone {
		t.Errorf("segment 0 transition = %q, want none", cfg.Segments[0].Transition)
	}
	if cfg.Segments[1].Transition != TransitionCrossfade {
		t.Errorf("segment 1 transition overwritten: %q", cfg.Segments[1].Transition)
	}
	if cfg.Segments[1].TransitionDuration != DefaultTransitionDuration {
		t.Errorf("segment 1 transition duration = %v, want %v", cfg.Segments[1].TransitionDuration, DefaultTransitionDuration)
	}

	z := cfg.Zooms[0]
	if z.Scale != 1.0 || z.Easing != EasingEaseInOut {
		t.Errorf("zoom defaults = scale %v easing %q, want 1.0 ease_in_out", z.Scale, z.Easing)
	}
	if z.AnchorX != DefaultAnchorX || z.AnchorY != DefaultAnchorY {
		t.Errorf("zoom anchor = (%v,%v), want (%v,%v)", z.AnchorX, z.AnchorY, DefaultAnchorX, DefaultAnchorY)
	}
}
