// Package editor derives each suggested clip's starting edit config from
// the content analysis and the owner's preferences. Everything it emits is
// clip-relative: a dead moment at source 125s inside a clip starting at
// 120s becomes a cut at 5s.
package editor

import (
	"math"
	"sort"

	"github.com/google/uuid"

	"github.com/bobarin/clipforge/internal/models"
)

// zoomIntensityMultiplier scales how far zooms deviate from 1.0 per the
// user's zoomIntensity preference. Unknown values behave as medium.
var zoomIntensityMultiplier = map[string]float64{
	"subtle":     0.7,
	"medium":     1.0,
	"aggressive": 1.3,
}

// zoomDefaults is the fallback shape for a key-moment type when the
// analyzer suggests no scale of its own.
type zoomDefaults struct {
	Scale    float64
	Duration float64
	Easing   models.Easing
}

var zoomTypeDefaults = map[string]zoomDefaults{
	"emotional_peak": {Scale: 1.2, Duration: 0.8, Easing: models.EasingEaseInOut},
	"key_insight":    {Scale: 1.15, Duration: 0.5, Easing: models.EasingEaseIn},
	"humor":          {Scale: 1.1, Duration: 0.3, Easing: models.EasingSnap},
	"surprise":       {Scale: 1.25, Duration: 0.4, Easing: models.EasingSnap},
}

var captionPresets = map[string]models.CaptionPreset{
	"hormozi": {
		Name:            "hormozi",
		FontSize:        "large",
		PrimaryColor:    "#FFFFFF",
		HighlightColor:  "#FFD700",
		Position:        "center",
		MaxWordsPerLine: 3,
		Animation:       "word_by_word",
	},
	"minimal": {
		Name:            "minimal",
		FontSize:        "medium",
		PrimaryColor:    "#FFFFFF",
		HighlightColor:  "#FFFFFF",
		Position:        "bottom",
		MaxWordsPerLine: 6,
		Animation:       "line_by_line",
	},
	"karaoke": {
		Name:            "karaoke",
		FontSize:        "large",
		PrimaryColor:    "#FFFFFF",
		HighlightColor:  "#FF4444",
		Position:        "center",
		MaxWordsPerLine: 4,
		Animation:       "word_by_word",
	},
	"bold": {
		Name:            "bold",
		FontSize:        "large",
		PrimaryColor:    "#FFFFFF",
		HighlightColor:  "#00FF88",
		BackgroundColor: "#00000080",
		Position:        "center",
		MaxWordsPerLine: 2,
		Animation:       "word_by_word",
	},
}

// CaptionPresets returns every caption preset in name order.
func CaptionPresets() []models.CaptionPreset {
	names := make([]string, 0, len(captionPresets))
	for name := range captionPresets {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]models.CaptionPreset, 0, len(names))
	for _, name := range names {
		out = append(out, captionPresets[name])
	}
	return out
}

// CaptionPresetFor returns the preset for a style name, falling back to
// hormozi for unknown styles.
func CaptionPresetFor(style string) models.CaptionPreset {
	if p, ok := captionPresets[style]; ok {
		return p
	}
	return captionPresets["hormozi"]
}

// BuildEditConfig assembles the initial edit for one suggested clip: dead
// moments fully inside the window become cuts, key moments become zoom
// keyframes shaped by the intensity preference, captions take the preferred
// preset. The segments list is the inverse of the cuts so the frontend
// editor can start from keep-regions.
func BuildEditConfig(suggestion models.SuggestedClip, analysis *models.Analysis, prefs *models.Preferences) *models.EditConfig {
	if prefs == nil {
		prefs = &models.Preferences{}
	}
	clipStart, clipEnd := suggestion.Start, suggestion.End

	var cuts []models.CutSpec
	var zooms []models.ZoomKeyframe
	if analysis != nil {
		for _, dm := range analysis.DeadMoments {
			if dm.Start >= clipStart && dm.End <= clipEnd {
				cuts = append(cuts, models.CutSpec{
					ID:     shortID(),
					Start:  round2(dm.Start - clipStart),
					End:    round2(dm.End - clipStart),
					Reason: dm.Reason,
				})
			}
		}

		multiplier, ok := zoomIntensityMultiplier[prefs.ZoomIntensity]
		if !ok {
			multiplier = 1.0
		}
		for _, km := range analysis.KeyMoments {
			if km.Time < clipStart || km.Time > clipEnd {
				continue
			}
			defaults, ok := zoomTypeDefaults[km.Type]
			if !ok {
				defaults = zoomTypeDefaults["key_insight"]
			}
			baseScale := km.SuggestedZoomScale
			if baseScale <= 0 {
				baseScale = defaults.Scale
			}
			// Intensity scales the zoom amount, not the base 1.0.
			adjusted := 1.0 + (baseScale-1.0)*multiplier

			zooms = append(zooms, models.ZoomKeyframe{
				ID:       shortID(),
				Time:     round2(km.Time - clipStart),
				Duration: defaults.Duration,
				Scale:    round2(adjusted),
				Easing:   defaults.Easing,
				AnchorX:  models.DefaultAnchorX,
				AnchorY:  models.DefaultAnchorY,
				Reason:   km.Description,
			})
		}
	}

	return &models.EditConfig{
		OutputRatio:      "9:16",
		Segments:         segmentsFromCuts(cuts, round2(clipEnd-clipStart)),
		Cuts:             cuts,
		Zooms:            zooms,
		Captions:         captionConfig(prefs),
		CaptionOverrides: map[int]models.WordOverride{},
		Reframe:          &models.ReframeConfig{Enabled: true, Mode: "center_crop"},
		Audio:            &models.AudioConfig{NormalizeVolume: true},
		Export:           &models.ExportConfig{Quality: models.QualityStandard, Format: models.FormatMP4},
	}
}

// segmentsFromCuts returns the keep-regions between cuts. The first segment
// carries no transition; later ones join with plain hard cuts.
func segmentsFromCuts(cuts []models.CutSpec, clipDuration float64) []models.SegmentSpec {
	sorted := make([]models.CutSpec, len(cuts))
	copy(sorted, cuts)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	var segments []models.SegmentSpec
	appendSegment := func(start, end float64) {
		transition := models.TransitionHard
		if len(segments) == 0 {
			transition = models.TransitionNone
		}
		segments = append(segments, models.SegmentSpec{
			ID:          shortID(),
			SourceStart: round2(start),
			SourceEnd:   round2(end),
			Transition:  transition,
		})
	}

	current := 0.0
	for _, cut := range sorted {
		if cut.Start > current {
			appendSegment(current, cut.Start)
		}
		current = max(current, cut.End)
	}
	if current < clipDuration {
		appendSegment(current, clipDuration)
	}
	return segments
}

// captionConfig builds caption settings from the preferred preset plus the
// user's font and color overrides. Unknown styles keep their name but take
// hormozi's values.
func captionConfig(prefs *models.Preferences) *models.CaptionConfig {
	style := prefs.DefaultCaptionStyle
	if style == "" {
		style = "hormozi"
	}
	preset := CaptionPresetFor(style)

	font := prefs.CaptionFont
	if font == "" {
		font = "Inter"
	}

	cfg := &models.CaptionConfig{
		Enabled:         true,
		Style:           style,
		Position:        preset.Position,
		FontSize:        preset.FontSize,
		PrimaryColor:    preset.PrimaryColor,
		HighlightColor:  preset.HighlightColor,
		BackgroundColor: preset.BackgroundColor,
		Font:            font,
		MaxWordsPerLine: preset.MaxWordsPerLine,
		Animation:       preset.Animation,
	}
	if prefs.CaptionColor != "" {
		cfg.PrimaryColor = prefs.CaptionColor
	}
	return cfg
}

// shortID returns an 8-char id, enough to address edit entities from the
// frontend editor.
func shortID() string {
	return uuid.NewString()[:8]
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
