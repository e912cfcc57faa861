package services

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/bobarin/clipforge/internal/models"
)

// ---------------------------------------------------------------------------
// OpenAI Whisper Transcription — fallback speech-to-text provider
// Used when no Deepgram key is configured. Verbose JSON with word-level
// timestamp granularity gives the same word timings shape as Deepgram.
// ---------------------------------------------------------------------------

// OpenAIService transcribes audio via Whisper.
type OpenAIService struct {
	client *openai.Client
}

// Ensure OpenAIService implements Transcriber at compile time.
var _ Transcriber = (*OpenAIService)(nil)

func NewOpenAIService(apiKey string) *OpenAIService {
	return &OpenAIService{
		client: openai.NewClient(apiKey),
	}
}

// Transcribe sends audio to OpenAI Whisper and returns word-level timestamps.
// Implements the Transcriber interface. Whisper reports no per-word
// confidence, so Confidence is left zero.
func (s *OpenAIService) Transcribe(ctx context.Context, audioPath string) (*models.Transcript, error) {
	f, err := os.Open(audioPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio file: %w", err)
	}
	defer f.Close()

	resp, err := s.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    openai.Whisper1,
		Reader:   f,
		FilePath: filepath.Base(audioPath), // Filename hint for the API (required by the library)
		Format:   openai.AudioResponseFormatVerboseJSON,
		TimestampGranularities: []openai.TranscriptionTimestampGranularity{
			openai.TranscriptionTimestampGranularityWord,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("whisper transcription failed: %w", err)
	}

	if len(resp.Words) == 0 {
		return nil, fmt.Errorf("whisper returned no word timestamps (text: %q)", resp.Text)
	}

	words := make([]models.Word, len(resp.Words))
	for i, w := range resp.Words {
		words[i] = models.Word{
			Text:  strings.TrimSpace(w.Word),
			Start: round2(w.Start),
			End:   round2(w.End),
		}
	}

	language := resp.Language
	if language == "" {
		language = "en"
	}

	log.Printf("[Whisper] Transcribed %d words (duration: %.1fs, text: %q)",
		len(words), resp.Duration, truncateString(resp.Text, 80))

	return &models.Transcript{
		Language: language,
		Text:     resp.Text,
		Words:    words,
	}, nil
}

// truncateString truncates a string to maxLen and appends "..." if truncated.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
