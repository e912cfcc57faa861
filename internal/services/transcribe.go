package services

import (
	"context"

	"github.com/bobarin/clipforge/internal/models"
)

// ---------------------------------------------------------------------------
// Transcriber — common interface for speech-to-text providers
// Both Deepgram and Whisper implement this interface so the worker
// can use whichever is configured without knowing the underlying provider.
// ---------------------------------------------------------------------------

// Transcriber is the interface that any speech-to-text provider must implement.
type Transcriber interface {
	// Transcribe converts an audio file into a word-timestamped transcript.
	// audioPath should point at 16kHz mono WAV (what ExtractAudio produces);
	// providers may accept other containers but word timing accuracy is only
	// tuned for that input.
	Transcribe(ctx context.Context, audioPath string) (*models.Transcript, error)
}
