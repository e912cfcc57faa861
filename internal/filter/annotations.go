package filter

import (
	"fmt"
	"strings"

	"github.com/bobarin/clipforge/internal/models"
)

// AnnotationFilters builds the drawtext chain for static text annotations.
// Percentage positions are converted to pixels against the actual frame
// size; each annotation is enabled only during its own window (output
// time). Non-text annotations and empty content are skipped.
//
// Returns "" when nothing renders.
func AnnotationFilters(annotations []models.Annotation, width, height int) string {
	if len(annotations) == 0 {
		return ""
	}

	var filters []string
	for _, ann := range annotations {
		if ann.Type != "text" || strings.TrimSpace(ann.Content) == "" {
			continue
		}

		xPx := int(ann.X / 100 * float64(width))
		yPx := int(ann.Y / 100 * float64(height))

		fontSize := ann.Style.FontSize
		if fontSize <= 0 {
			fontSize = 36
		}
		color := ann.Style.Color
		if color == "" {
			color = "white"
		}

		var b strings.Builder
		fmt.Fprintf(&b, "drawtext=text='%s'", EscapeText(ann.Content))
		fmt.Fprintf(&b, ":fontsize=%d", fontSize)
		fmt.Fprintf(&b, ":fontcolor=%s", color)
		fmt.Fprintf(&b, ":x=%d", xPx)
		fmt.Fprintf(&b, ":y=%d", yPx)
		fmt.Fprintf(&b, ":enable='between(t,%.2f,%.2f)'", ann.StartTime, ann.EndTime)
		b.WriteString(":borderw=2:bordercolor=black")
		if ann.Style.BackgroundColor != "" {
			fmt.Fprintf(&b, ":box=1:boxcolor=%s:boxborderw=6", ann.Style.BackgroundColor)
		}
		filters = append(filters, b.String())
	}

	return strings.Join(filters, ",")
}
