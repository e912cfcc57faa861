package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/bobarin/clipforge/internal/models"
)

// ---------------------------------------------------------------------------
// Deepgram Transcription Service
// Uses the Deepgram prerecorded REST API for word-level timestamps.
// Model: nova-2 (fast, accurate word timings — the primary transcriber)
// ---------------------------------------------------------------------------

const (
	deepgramBaseURL      = "https://api.deepgram.com"
	deepgramDefaultModel = "nova-2"
)

// DeepgramService handles speech-to-text via the Deepgram prerecorded API.
type DeepgramService struct {
	apiKey   string
	model    string
	language string
	diarize  bool
	client   *http.Client
}

// Ensure DeepgramService implements Transcriber at compile time.
var _ Transcriber = (*DeepgramService)(nil)

// NewDeepgramServiceWithOptions creates a Deepgram service with a custom
// language hint and speaker diarization toggle.
func NewDeepgramServiceWithOptions(apiKey, language string, diarize bool) *DeepgramService {
	if language == "" {
		language = "en"
	}
	return &DeepgramService{
		apiKey:   apiKey,
		model:    deepgramDefaultModel,
		language: language,
		diarize:  diarize,
		client:   &http.Client{Timeout: 300 * time.Second},
	}
}

// ---------------------------------------------------------------------------
// Response types
// ---------------------------------------------------------------------------

type deepgramResponse struct {
	Metadata struct {
		Duration float64 `json:"duration"`
	} `json:"metadata"`
	Results struct {
		Channels []struct {
			DetectedLanguage string                `json:"detected_language"`
			Alternatives     []deepgramAlternative `json:"alternatives"`
		} `json:"channels"`
	} `json:"results"`
}

type deepgramAlternative struct {
	Transcript string         `json:"transcript"`
	Confidence float64        `json:"confidence"`
	Words      []deepgramWord `json:"words"`
}

type deepgramWord struct {
	Word       string  `json:"word"`
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Confidence float64 `json:"confidence"`
	Speaker    *int    `json:"speaker,omitempty"`
}

// Transcribe sends the audio file to Deepgram and converts the first
// channel's best alternative into a word-timestamped transcript.
// Implements the Transcriber interface.
func (s *DeepgramService) Transcribe(ctx context.Context, audioPath string) (*models.Transcript, error) {
	audioData, err := os.ReadFile(audioPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio file: %w", err)
	}

	// Build URL: POST /v1/listen?model=nova-2&smart_format=true&...
	params := url.Values{}
	params.Set("model", s.model)
	params.Set("smart_format", "true")
	params.Set("punctuate", "true")
	params.Set("utterances", "true")
	params.Set("language", s.language)
	if s.diarize {
		params.Set("diarize", "true")
	}
	endpoint := fmt.Sprintf("%s/v1/listen?%s", deepgramBaseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(audioData))
	if err != nil {
		return nil, fmt.Errorf("failed to create Deepgram request: %w", err)
	}

	req.Header.Set("Content-Type", "audio/wav")
	req.Header.Set("Authorization", "Token "+s.apiKey)

	log.Printf("[Deepgram] Transcribing %s (model=%s, language=%s, %d bytes)",
		audioPath, s.model, s.language, len(audioData))

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("Deepgram request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read Deepgram response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Deepgram returned status %d: %s", resp.StatusCode, string(body))
	}

	var parsed deepgramResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode Deepgram response: %w", err)
	}

	if len(parsed.Results.Channels) == 0 {
		return nil, fmt.Errorf("no transcription results returned")
	}
	channel := parsed.Results.Channels[0]
	if len(channel.Alternatives) == 0 {
		return nil, fmt.Errorf("no transcription alternatives returned")
	}
	best := channel.Alternatives[0]

	words := make([]models.Word, len(best.Words))
	for i, w := range best.Words {
		words[i] = models.Word{
			Text:       w.Word,
			Start:      round2(w.Start),
			End:        round2(w.End),
			Confidence: round3(w.Confidence),
			Speaker:    w.Speaker,
		}
	}

	language := channel.DetectedLanguage
	if language == "" {
		language = s.language
	}

	log.Printf("[Deepgram] Transcribed %d words (%.1fs audio, language=%s)",
		len(words), parsed.Metadata.Duration, language)

	return &models.Transcript{
		Language: language,
		Text:     best.Transcript,
		Words:    words,
	}, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
