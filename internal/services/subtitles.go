package services

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/bobarin/clipforge/internal/models"
)

// ---------------------------------------------------------------------------
// Karaoke ASS Subtitle Export
//
// Builds word-by-word highlighted subtitles in ASS (Advanced SubStation
// Alpha) format from a clip's remapped word timestamps. Words are shown in
// small chunks with the currently spoken word highlighted in a colored
// "pill" border, mirroring the burned-in caption look for editors who want
// a subtitle file instead.
//
// Visual style:
//   - Bold uppercase text on a portrait 4K canvas (2160x3840)
//   - Dark outline on all words for readability on any background
//   - Active word: thick colored border creating a "pill highlight" effect
//   - Text, highlight, and grouping follow the clip's caption config
// ---------------------------------------------------------------------------

const (
	// How many words to show at once when the caption config doesn't say
	defaultWordsPerChunk = 4

	// ASS canvas — subtitle coordinates are resolution-relative, so styles
	// below are scaled for a 3840-height canvas.
	assPlayResX = 2160
	assPlayResY = 3840

	// ASS colors are in &HAABBGGRR format (hex, note: BGR not RGB)
	assColorWhite     = "&H00FFFFFF" // pure white
	assColorBlack     = "&H00000000" // pure black (for outline)
	assColorGold      = "&H0000D7FF" // #FFD700 in BGR — default highlight
	assColorSemiBlack = "&H80000000" // 50% transparent black (for shadow)

	// Style parameters — scaled for 4K
	assOutlineNormal    = 6  // Black outline thickness for non-highlighted words
	assOutlineHighlight = 16 // Colored border thickness for the active word (pill effect)

	// MarginV controls distance from the aligned edge on a 3840-height canvas
	assSubtitleMarginV = 440
)

// assFontSizes maps the caption config's symbolic sizes onto the 4K canvas.
var assFontSizes = map[string]int{
	"small":  96,
	"medium": 124,
	"large":  152,
}

// assAlignments maps caption positions to ASS numpad alignment codes.
var assAlignments = map[string]int{
	"top":    8,
	"center": 5,
	"bottom": 2,
}

// BuildASSSubtitles renders a karaoke-style ASS document from word
// timestamps. words must already be in output time (clip-relative,
// post-remap); cfg styles the text and may be nil for defaults.
func BuildASSSubtitles(words []models.Word, cfg *models.CaptionConfig) (string, error) {
	if len(words) == 0 {
		return "", fmt.Errorf("no words to generate subtitles from")
	}
	if cfg == nil {
		cfg = models.DefaultCaptionConfig()
	}

	chunkSize := cfg.MaxWordsPerLine
	if chunkSize <= 0 {
		chunkSize = defaultWordsPerChunk
	}
	fontName := cfg.Font
	if fontName == "" {
		fontName = "Inter"
	}
	fontSize, ok := assFontSizes[cfg.FontSize]
	if !ok {
		fontSize = assFontSizes["medium"]
	}
	alignment, ok := assAlignments[cfg.Position]
	if !ok {
		alignment = assAlignments["bottom"]
	}
	primary := assColor(cfg.PrimaryColor, assColorWhite)
	highlight := assColor(cfg.HighlightColor, assColorGold)

	chunks := chunkWords(words, chunkSize)

	var sb strings.Builder

	// Script header
	sb.WriteString("[Script Info]\n")
	sb.WriteString("ScriptType: v4.00+\n")
	fmt.Fprintf(&sb, "PlayResX: %d\n", assPlayResX)
	fmt.Fprintf(&sb, "PlayResY: %d\n", assPlayResY)
	sb.WriteString("WrapStyle: 0\n")
	sb.WriteString("ScaledBorderAndShadow: yes\n")
	sb.WriteString("\n")

	// Style definitions
	sb.WriteString("[V4+ Styles]\n")
	sb.WriteString("Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding\n")
	fmt.Fprintf(&sb,
		"Style: Default,%s,%d,%s,%s,%s,%s,-1,0,0,0,100,100,2,0,1,%d,0,%d,40,40,%d,1\n",
		fontName, fontSize,
		primary,           // PrimaryColour (text)
		primary,           // SecondaryColour
		assColorBlack,     // OutlineColour
		assColorSemiBlack, // BackColour (shadow)
		assOutlineNormal,  // Outline thickness
		alignment,
		assSubtitleMarginV,
	)
	sb.WriteString("\n")

	// Events (dialogue lines): one line per word, showing its whole chunk
	// with that word highlighted.
	sb.WriteString("[Events]\n")
	sb.WriteString("Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text\n")

	for _, chunk := range chunks {
		for wordIdx, word := range chunk {
			startTime := word.Start
			var endTime float64
			if wordIdx < len(chunk)-1 {
				// End when the next word starts (seamless transition)
				endTime = chunk[wordIdx+1].Start
			} else {
				endTime = word.End
			}

			displayText := buildHighlightedChunkText(chunk, wordIdx, highlight)

			fmt.Fprintf(&sb,
				"Dialogue: 0,%s,%s,Default,,0,0,0,,%s\n",
				formatASSTime(startTime),
				formatASSTime(endTime),
				displayText,
			)
		}
	}

	return sb.String(), nil
}

// WriteASSSubtitles builds the ASS document and writes it to outputPath.
func WriteASSSubtitles(words []models.Word, cfg *models.CaptionConfig, outputPath string) error {
	content, err := BuildASSSubtitles(words, cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(outputPath, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write ASS subtitle file: %w", err)
	}
	return nil
}

// chunkWords groups words into display chunks of at most size words.
// It also breaks at sentence boundaries (., !, ?) to keep chunks natural.
func chunkWords(words []models.Word, chunkSize int) [][]models.Word {
	var chunks [][]models.Word
	var current []models.Word

	for _, word := range words {
		current = append(current, word)

		// Break chunk if we've reached the target size
		// OR if the word ends with sentence-ending punctuation
		isSentenceEnd := strings.ContainsAny(word.Text, ".!?")
		if len(current) >= chunkSize || (isSentenceEnd && len(current) >= 2) {
			chunks = append(chunks, current)
			current = nil
		}
	}

	if len(current) > 0 {
		chunks = append(chunks, current)
	}

	return chunks
}

// buildHighlightedChunkText builds the ASS-formatted text for a chunk where
// the word at activeIdx carries the pill highlight.
//
// Output example: "THE {\3c&H0000D7FF&\bord16}HISTORY{\r} OF COFFEE"
func buildHighlightedChunkText(chunk []models.Word, activeIdx int, highlight string) string {
	var parts []string

	for i, word := range chunk {
		cleanWord := strings.ToUpper(strings.TrimSpace(word.Text))
		if cleanWord == "" {
			continue
		}

		if i == activeIdx {
			// \3c sets outline color, \bord sets outline thickness,
			// \r resets back to the default style after this word
			parts = append(parts, fmt.Sprintf(
				"{\\3c%s\\bord%d}%s{\\r}",
				highlight, assOutlineHighlight, cleanWord,
			))
		} else {
			parts = append(parts, cleanWord)
		}
	}

	return strings.Join(parts, " ")
}

// assColor converts a #RRGGBB (or #RRGGBBAA) hex color to ASS &H00BBGGRR
// form, returning fallback when the value doesn't parse.
func assColor(hex, fallback string) string {
	hex = strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(hex) == 8 {
		hex = hex[:6] // ASS alpha is separate; drop the suffix
	}
	if len(hex) != 6 {
		return fallback
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return fallback
	}
	r := (v >> 16) & 0xFF
	g := (v >> 8) & 0xFF
	b := v & 0xFF
	return fmt.Sprintf("&H00%02X%02X%02X", b, g, r)
}

// formatASSTime converts seconds to ASS timestamp format: H:MM:SS.CC
func formatASSTime(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}

	hours := int(seconds) / 3600
	minutes := (int(seconds) % 3600) / 60
	secs := int(seconds) % 60
	centiseconds := int((seconds - float64(int(seconds))) * 100)

	return fmt.Sprintf("%d:%02d:%02d.%02d", hours, minutes, secs, centiseconds)
}
