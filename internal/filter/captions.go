package filter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bobarin/clipforge/internal/models"
)

// captionWord carries a word plus its forced-highlight flag through
// override application and line grouping.
type captionWord struct {
	models.Word
	highlight bool
}

// CaptionFilters builds the drawtext chain overlaying word-level captions.
// Words must already be clip-relative output time. Overrides are keyed by
// index into words: hidden words are dropped before grouping, replacement
// text substitutes the transcribed token.
//
// With word_by_word animation each line carries a single compound fontcolor
// expression that flips to the highlight color inside each word's own
// window and falls back to the primary color elsewhere — one filter stage
// per line, not per word.
//
// Returns "" when captions are disabled or nothing remains to draw.
func CaptionFilters(words []models.Word, cfg *models.CaptionConfig, overrides map[int]models.WordOverride) string {
	if cfg == nil || !cfg.Enabled || len(words) == 0 {
		return ""
	}

	visible := applyOverrides(words, overrides)
	if len(visible) == 0 {
		return ""
	}

	maxPerLine := cfg.MaxWordsPerLine
	if maxPerLine <= 0 {
		maxPerLine = 4
	}
	lines := groupWords(visible, maxPerLine)

	fontSize := fontSizePx(cfg.FontSize)
	y := yPosition(cfg.Position)

	var filters []string
	for _, line := range lines {
		texts := make([]string, len(line))
		for i, w := range line {
			texts[i] = w.Text
		}
		text := EscapeText(strings.Join(texts, " "))
		if strings.TrimSpace(text) == "" {
			continue
		}

		start := line[0].Start
		end := line[len(line)-1].End

		var b strings.Builder
		fmt.Fprintf(&b, "drawtext=text='%s'", text)
		fmt.Fprintf(&b, ":fontsize=%d", fontSize)
		b.WriteString(captionColorOption(line, cfg))
		b.WriteString(":x=(w-text_w)/2")
		fmt.Fprintf(&b, ":y=%s", y)
		fmt.Fprintf(&b, ":enable='between(t,%.2f,%.2f)'", start, end)
		b.WriteString(":shadowcolor=black:shadowx=2:shadowy=2")
		if cfg.BackgroundColor != "" {
			fmt.Fprintf(&b, ":box=1:boxcolor=%s:boxborderw=6", cfg.BackgroundColor)
		}
		filters = append(filters, b.String())
	}

	return strings.Join(filters, ",")
}

// captionColorOption picks between a static fontcolor and the per-word
// highlight expression. The expression evaluates to a decimal RGB value and
// is printed as a 6-digit hex color via text expansion.
func captionColorOption(line []captionWord, cfg *models.CaptionConfig) string {
	primaryName := cfg.PrimaryColor
	if primaryName == "" {
		primaryName = "white"
	}

	wordByWord := cfg.Animation == "word_by_word"
	var windows []captionWord
	for _, w := range line {
		if wordByWord || w.highlight {
			windows = append(windows, w)
		}
	}

	primary, pok := colorHex(primaryName)
	highlight, hok := colorHex(cfg.HighlightColor)
	if len(windows) == 0 || !pok || !hok || primary == highlight {
		return fmt.Sprintf(":fontcolor=%s", primaryName)
	}

	expr := NewPiecewise(strconv.FormatUint(uint64(primary), 10))
	for _, w := range windows {
		expr.Add(w.Start, w.End, strconv.FormatUint(uint64(highlight), 10))
	}
	return fmt.Sprintf(":fontcolor_expr='#%%{eif:%s:x:6}'", expr.Expr())
}

func applyOverrides(words []models.Word, overrides map[int]models.WordOverride) []captionWord {
	visible := make([]captionWord, 0, len(words))
	for i, w := range words {
		ov, ok := overrides[i]
		if ok && ov.Hidden {
			continue
		}
		if ok && ov.Text != "" {
			w.Text = ov.Text
		}
		visible = append(visible, captionWord{Word: w, highlight: ok && ov.Highlight})
	}
	return visible
}

// groupWords chunks words into caption lines of at most maxPerLine words.
// A line is visible from its first word's start to its last word's end.
func groupWords(words []captionWord, maxPerLine int) [][]captionWord {
	var lines [][]captionWord
	for i := 0; i < len(words); i += maxPerLine {
		end := i + maxPerLine
		if end > len(words) {
			end = len(words)
		}
		lines = append(lines, words[i:end])
	}
	return lines
}

func fontSizePx(size string) int {
	switch size {
	case "small":
		return 36
	case "large":
		return 64
	default:
		return 48
	}
}

func yPosition(position string) string {
	switch position {
	case "top":
		return "h*0.15"
	case "bottom":
		return "h*0.85"
	default:
		return "h*0.75"
	}
}
