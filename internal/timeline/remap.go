package timeline

import (
	"math"

	"github.com/bobarin/clipforge/internal/models"
)

// RemapWords translates word timings from source time to output time.
// Words wholly inside a removed region are dropped; words straddling a cut
// boundary shrink to the kept portion. This is the only path by which
// caption timing reaches the filter synthesizer.
func RemapWords(words []models.Word, tm *TimeMap) []models.Word {
	remapped := make([]models.Word, 0, len(words))
	for _, w := range words {
		start, end, ok := tm.RemapRange(w.Start, w.End)
		if !ok {
			continue
		}
		w.Start = round2(start)
		w.End = round2(end)
		remapped = append(remapped, w)
	}
	return remapped
}

// RemapZooms translates zoom keyframes from source time to output time.
// A keyframe's window becomes the surviving output range: time moves to the
// range start and duration shrinks to the range width. Keyframes wholly
// inside a removed region are dropped.
func RemapZooms(zooms []models.ZoomKeyframe, tm *TimeMap) []models.ZoomKeyframe {
	remapped := make([]models.ZoomKeyframe, 0, len(zooms))
	for _, z := range zooms {
		start, end, ok := tm.RemapRange(z.Time, z.Time+z.Duration)
		if !ok {
			continue
		}
		z.Time = round2(start)
		z.Duration = round2(end - start)
		remapped = append(remapped, z)
	}
	return remapped
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
