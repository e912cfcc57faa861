package models

// Edit decision types. An EditConfig describes every operation applied to a
// clip: regions to remove or keep, zoom keyframes, caption styling, text
// annotations, reframing and audio options, and export settings. Instances
// arrive from the auto-editor or from the frontend editor and are stored as
// jsonb on the clip row.

// TransitionKind names the blend applied when a segment joins the previous
// one. Unknown kinds behave as hard cuts.
type TransitionKind string

const (
	TransitionNone      TransitionKind = "none"
	TransitionHard      TransitionKind = "hard"
	TransitionCrossfade TransitionKind = "crossfade"
	TransitionFade      TransitionKind = "fade"
	TransitionWipeLeft  TransitionKind = "wipe_left"
	TransitionWipeRight TransitionKind = "wipe_right"
	TransitionSlideUp   TransitionKind = "slide_up"
	TransitionDissolve  TransitionKind = "dissolve"
	TransitionZoomIn    TransitionKind = "zoom_in"
	TransitionCircle    TransitionKind = "circle"
)

// Easing shapes a linear 0..1 progress value into an animation curve.
type Easing string

const (
	EasingLinear    Easing = "linear"
	EasingEaseIn    Easing = "ease_in"
	EasingEaseInOut Easing = "ease_in_out"
	EasingSnap      Easing = "snap"
)

// Quality selects an encode preset (CRF, scale, speed, audio bitrate).
type Quality string

const (
	QualityDraft    Quality = "draft"
	QualityStandard Quality = "standard"
	QualityHigh     Quality = "high"
)

// Format is the export container.
type Format string

const (
	FormatMP4 Format = "mp4"
	FormatMOV Format = "mov"
)

const (
	// DefaultTransitionDuration is used when a segment declares a
	// crossfade-family transition without a duration.
	DefaultTransitionDuration = 0.3

	// DefaultAnchorX and DefaultAnchorY center zooms slightly above the
	// frame middle, where faces usually are.
	DefaultAnchorX = 0.5
	DefaultAnchorY = 0.4
)

// CutSpec is a source-time region to remove from the clip.
type CutSpec struct {
	ID     string  `json:"id,omitempty"`
	Start  float64 `json:"start"`
	End    float64 `json:"end"`
	Reason string  `json:"reason,omitempty"`
}

// SegmentSpec is an explicit source-time region to keep. Transition
// describes how this segment blends into the previous one; it is ignored on
// the first segment.
type SegmentSpec struct {
	ID                 string         `json:"id,omitempty"`
	SourceStart        float64        `json:"sourceStart"`
	SourceEnd          float64        `json:"sourceEnd"`
	Transition         TransitionKind `json:"transition,omitempty"`
	TransitionDuration float64        `json:"transitionDuration,omitempty"`
}

// Duration returns the segment's source-time length.
func (s SegmentSpec) Duration() float64 {
	return s.SourceEnd - s.SourceStart
}

// ZoomKeyframe is a temporary magnification event. Times are in source
// seconds until the timestamp remapper translates them to output time.
// Anchors are normalized 0..1 focus-point coordinates; both zero means
// "unset" and defaults apply.
type ZoomKeyframe struct {
	ID       string  `json:"id,omitempty"`
	Time     float64 `json:"time"`
	Duration float64 `json:"duration"`
	Scale    float64 `json:"scale"`
	Easing   Easing  `json:"easing,omitempty"`
	AnchorX  float64 `json:"anchorX"`
	AnchorY  float64 `json:"anchorY"`
	Reason   string  `json:"reason,omitempty"`
}

// CaptionConfig styles the word-level caption overlay.
type CaptionConfig struct {
	Enabled         bool   `json:"enabled"`
	Style           string `json:"style,omitempty"`    // preset name: hormozi|minimal|karaoke|bold
	Position        string `json:"position,omitempty"` // top|center|bottom
	FontSize        string `json:"fontSize,omitempty"` // small|medium|large
	PrimaryColor    string `json:"primaryColor,omitempty"`
	HighlightColor  string `json:"highlightColor,omitempty"`
	BackgroundColor string `json:"backgroundColor,omitempty"`
	Font            string `json:"font,omitempty"`
	MaxWordsPerLine int    `json:"maxWordsPerLine,omitempty"`
	Animation       string `json:"animation,omitempty"` // word_by_word|line_by_line
}

// WordOverride adjusts a single transcribed word by index before captions
// are grouped into lines.
type WordOverride struct {
	Text      string `json:"text,omitempty"`
	Hidden    bool   `json:"hidden,omitempty"`
	Highlight bool   `json:"highlight,omitempty"`
}

// AnnotationStyle styles a static text overlay.
type AnnotationStyle struct {
	FontSize        int    `json:"fontSize,omitempty"`
	Color           string `json:"color,omitempty"`
	FontFamily      string `json:"fontFamily,omitempty"`
	BackgroundColor string `json:"backgroundColor,omitempty"`
}

// Annotation is a static text overlay positioned in percent of the frame
// and visible only during its own time window (output time).
type Annotation struct {
	ID        string          `json:"id,omitempty"`
	Type      string          `json:"type,omitempty"` // only "text" renders
	Content   string          `json:"content"`
	X         float64         `json:"x"` // percent, 0-100
	Y         float64         `json:"y"` // percent, 0-100
	StartTime float64         `json:"startTime"`
	EndTime   float64         `json:"endTime"`
	Style     AnnotationStyle `json:"style"`
}

// ReframeConfig controls the vertical reframe stage. ManualCropX, when set,
// positions the crop window as a percentage of the horizontal slack
// (0 = left edge, 50 = center, 100 = right edge).
type ReframeConfig struct {
	Enabled     bool     `json:"enabled"`
	Mode        string   `json:"mode,omitempty"` // center_crop|face_track
	ManualCropX *float64 `json:"manualCropX,omitempty"`
}

// AudioConfig controls the audio normalization stage.
type AudioConfig struct {
	NormalizeVolume bool `json:"normalizeVolume"`
}

// ExportConfig selects the final encode preset and container.
type ExportConfig struct {
	Quality Quality `json:"quality,omitempty"`
	Format  Format  `json:"format,omitempty"`
}

// EditConfig is the complete edit decision set for one clip. All times are
// relative to the extracted clip window (0 = clip start), in source-time
// coordinates until remapping.
type EditConfig struct {
	OutputRatio      string               `json:"outputRatio,omitempty"`
	Segments         []SegmentSpec        `json:"segments,omitempty"`
	Cuts             []CutSpec            `json:"cuts,omitempty"`
	Zooms            []ZoomKeyframe       `json:"zooms,omitempty"`
	Captions         *CaptionConfig       `json:"captions,omitempty"`
	CaptionOverrides map[int]WordOverride `json:"captionOverrides,omitempty"`
	Annotations      []Annotation         `json:"annotations,omitempty"`
	Reframe          *ReframeConfig       `json:"reframing,omitempty"`
	Audio            *AudioConfig         `json:"audio,omitempty"`
	Export           *ExportConfig        `json:"export,omitempty"`
}

// DefaultCaptionConfig returns the caption styling used when a clip has no
// explicit caption settings.
func DefaultCaptionConfig() *CaptionConfig {
	return &CaptionConfig{
		Enabled:         true,
		Style:           "hormozi",
		Position:        "bottom",
		FontSize:        "medium",
		PrimaryColor:    "#FFFFFF",
		HighlightColor:  "#FFD700",
		Font:            "Inter",
		MaxWordsPerLine: 4,
		Animation:       "word_by_word",
	}
}

// DefaultEditConfig returns a pass-through edit: no cuts, no zooms, default
// captions, vertical reframe, normalized audio, standard mp4 export.
func DefaultEditConfig() *EditConfig {
	cfg := &EditConfig{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills every unset field with its documented default. Safe to
// call repeatedly; never overwrites an explicit value.
func (c *EditConfig) ApplyDefaults() {
	if c.OutputRatio == "" {
		c.OutputRatio = "9:16"
	}
	if c.Captions == nil {
		c.Captions = DefaultCaptionConfig()
	} else {
		c.Captions.applyDefaults()
	}
	if c.Reframe == nil {
		c.Reframe = &ReframeConfig{Enabled: true, Mode: "center_crop"}
	}
	if c.Audio == nil {
		c.Audio = &AudioConfig{NormalizeVolume: true}
	}
	if c.Export == nil {
		c.Export = &ExportConfig{}
	}
	if c.Export.Quality == "" {
		c.Export.Quality = QualityStandard
	}
	if c.Export.Format == "" {
		c.Export.Format = FormatMP4
	}
	for i := range c.Segments {
		if c.Segments[i].Transition == "" {
			c.Segments[i].Transition = TransitionNone
		}
		if c.Segments[i].TransitionDuration <= 0 {
			c.Segments[i].TransitionDuration = DefaultTransitionDuration
		}
	}
	for i := range c.Zooms {
		z := &c.Zooms[i]
		if z.Easing == "" {
			z.Easing = EasingEaseInOut
		}
		if z.Scale <= 0 {
			z.Scale = 1.0
		}
		if z.AnchorX == 0 && z.AnchorY == 0 {
			z.AnchorX = DefaultAnchorX
			z.AnchorY = DefaultAnchorY
		}
	}
}

func (c *CaptionConfig) applyDefaults() {
	def := DefaultCaptionConfig()
	if c.Style == "" {
		c.Style = def.Style
	}
	if c.Position == "" {
		c.Position = def.Position
	}
	if c.FontSize == "" {
		c.FontSize = def.FontSize
	}
	if c.PrimaryColor == "" {
		c.PrimaryColor = def.PrimaryColor
	}
	if c.HighlightColor == "" {
		c.HighlightColor = def.HighlightColor
	}
	if c.Font == "" {
		c.Font = def.Font
	}
	if c.MaxWordsPerLine <= 0 {
		c.MaxWordsPerLine = def.MaxWordsPerLine
	}
	if c.Animation == "" {
		c.Animation = def.Animation
	}
}
