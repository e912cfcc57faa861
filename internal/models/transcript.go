package models

// Word is one transcribed token with source-time boundaries. The timestamp
// remapper rewrites Start/End into output time before captions are built.
type Word struct {
	Text       string  `json:"word"`
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Confidence float64 `json:"confidence,omitempty"`
	Speaker    *int    `json:"speaker,omitempty"`
}

// Transcript is the word-level transcription of a project's source audio.
type Transcript struct {
	Language string `json:"language,omitempty"`
	Text     string `json:"text"`
	Words    []Word `json:"words"`
}

// WordsBetween returns the words fully contained in [start, end], with
// timestamps shifted so that start becomes 0. Used to scope a project
// transcript to one clip window.
func (t *Transcript) WordsBetween(start, end float64) []Word {
	if t == nil {
		return nil
	}
	var out []Word
	for _, w := range t.Words {
		if w.Start < start || w.End > end {
			continue
		}
		w.Start = roundTime(w.Start - start)
		w.End = roundTime(w.End - start)
		out = append(out, w)
	}
	return out
}

func roundTime(v float64) float64 {
	if v < 0 {
		return 0
	}
	// Keep two decimals, matching stored edit-config precision.
	return float64(int(v*100+0.5)) / 100
}

// Analysis is the AI content analysis of a project: attention hooks, dead
// air to cut, moments worth zooming on, and suggested clip windows.
type Analysis struct {
	Summary        string          `json:"summary,omitempty"`
	Hooks          []Hook          `json:"hooks,omitempty"`
	DeadMoments    []DeadMoment    `json:"deadMoments,omitempty"`
	KeyMoments     []KeyMoment     `json:"keyMoments,omitempty"`
	SuggestedClips []SuggestedClip `json:"suggestedClips,omitempty"`
	TopicSegments  []TopicSegment  `json:"topicSegments,omitempty"`
}

// Hook is an attention-grabbing span near the start of a potential clip.
type Hook struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
	Score float64 `json:"score"`
}

// DeadMoment is a span of dead air the editor should cut.
// Reason is one of: silence, uhm, repetition, filler.
type DeadMoment struct {
	Start  float64 `json:"start"`
	End    float64 `json:"end"`
	Reason string  `json:"reason"`
}

// KeyMoment is an instant worth emphasizing with a zoom.
// Type is one of: emotional_peak, key_insight, humor, surprise.
type KeyMoment struct {
	Time               float64  `json:"time"`
	Type               string   `json:"type"`
	Description        string   `json:"description,omitempty"`
	SuggestedZoomScale float64  `json:"suggestedZoomScale,omitempty"`
	HighlightWords     []string `json:"highlightWords,omitempty"`
}

// SuggestedClip is a source-time window the analyzer considers a viable
// short-form clip.
type SuggestedClip struct {
	Start            float64 `json:"start"`
	End              float64 `json:"end"`
	Title            string  `json:"title"`
	HookScore        float64 `json:"hookScore"`
	ViralityEstimate string  `json:"viralityEstimate,omitempty"` // low|medium|high
	Reason           string  `json:"reason,omitempty"`
}

// TopicSegment labels a contiguous span of the source with its topic.
type TopicSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Topic string  `json:"topic"`
}
