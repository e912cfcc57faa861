package services

import (
	"strings"
	"testing"

	"github.com/bobarin/clipforge/internal/models"
)

func TestParseFrameRate(t *testing.T) {
	tests := []struct {
		in     string
		want   int
		wantOK bool
	}{
		{"30/1", 30, true},
		{"30000/1001", 30, true},
		{"24000/1001", 24, true},
		{"25/1", 25, true},
		{"60/1", 60, true},
		{"0/0", 0, false},
		{"30", 0, false},
		{"", 0, false},
		{"a/b", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseFrameRate(tt.in)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("parseFrameRate(%q) = %d, %v, want %d, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestFormatSeconds(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0.000"},
		{1.5, "1.500"},
		{12.3456, "12.346"},
		{120, "120.000"},
	}
	for _, tt := range tests {
		if got := formatSeconds(tt.in); got != tt.want {
			t.Errorf("formatSeconds(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestStderrTail(t *testing.T) {
	if got := stderrTail("  short error  "); got != "short error" {
		t.Errorf("stderrTail short = %q", got)
	}

	long := strings.Repeat("x", 500) + "the real reason"
	got := stderrTail(long)
	if len(got) != 300 {
		t.Errorf("stderrTail length = %d, want 300", len(got))
	}
	if !strings.HasSuffix(got, "the real reason") {
		t.Errorf("stderrTail lost the end of the message: %q", got)
	}
}

func TestQualityPresets(t *testing.T) {
	tests := []struct {
		quality models.Quality
		crf     int
		width   int
		speed   string
		audio   string
	}{
		{models.QualityDraft, 28, 720, "fast", "96k"},
		{models.QualityStandard, 23, 1080, "medium", "128k"},
		{models.QualityHigh, 18, 1080, "slow", "192k"},
	}
	for _, tt := range tests {
		p, ok := qualityPresets[tt.quality]
		if !ok {
			t.Fatalf("no preset for %q", tt.quality)
		}
		if p.CRF != tt.crf || p.Width != tt.width || p.Speed != tt.speed || p.AudioBitrate != tt.audio {
			t.Errorf("preset %q = %+v", tt.quality, p)
		}
	}
}

func TestStagePolicies(t *testing.T) {
	// Only the bookends abort a render; everything between degrades.
	for stage, policy := range stagePolicies {
		fatal := stage == StageExtract || stage == StageEncode
		if policy.Fatal != fatal {
			t.Errorf("stage %q fatal = %v, want %v", stage, policy.Fatal, fatal)
		}
	}
	if len(stagePolicies) != 8 {
		t.Errorf("stagePolicies has %d stages, want 8", len(stagePolicies))
	}
}
