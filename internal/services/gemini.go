package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"google.golang.org/genai"

	"github.com/bobarin/clipforge/internal/models"
)

// ---------------------------------------------------------------------------
// Gemini Content Analysis Service
// Uses the Google Gen AI SDK in JSON mode to turn a word-timestamped
// transcript into editing decisions: hooks, dead air, key moments, and
// suggested clip windows.
// ---------------------------------------------------------------------------

const (
	geminiModel             = "gemini-3-flash-preview"
	analysisMaxOutputTokens = 4096
)

// Analyzer produces the editing analysis for a transcript. The worker
// depends on this interface so tests can stub the model.
type Analyzer interface {
	AnalyzeTranscript(ctx context.Context, transcript *models.Transcript, format string, duration float64, prefs *models.Preferences) (*models.Analysis, error)
}

// GeminiService handles transcript analysis via Gemini.
type GeminiService struct {
	apiKey string
	model  string
}

// Ensure GeminiService implements Analyzer at compile time.
var _ Analyzer = (*GeminiService)(nil)

// NewGeminiService creates a Gemini analysis service.
// model: empty string defaults to gemini-3-flash-preview.
func NewGeminiService(apiKey, model string) *GeminiService {
	if model == "" {
		model = geminiModel
	}
	return &GeminiService{
		apiKey: apiKey,
		model:  model,
	}
}

const analysisPrompt = `You are a professional short-form video editor AI. You analyze transcripts of raw footage and make editing decisions.

INPUT:
- Transcript with word-level timestamps
- Video format: %s
- Video duration: %ss
- Creator preferences: %s

YOUR TASK:
Analyze this transcript and return a JSON object with your editing decisions.

RULES:
1. HOOKS: The first 1-3 seconds decide if someone watches. Find the strongest opening moments. If the video doesn't start with a hook, find a moment later in the video that could BE the hook (reorder).
2. DEAD AIR: Mark all silences > 0.5s, filler words (um, uh, like, you know, basically, right, so yeah), false starts, and repetitions for removal.
3. KEY MOMENTS: Find emotional peaks, surprising statements, humor, controversy, key insights. These get zoom emphasis.
4. CLIP SUGGESTIONS: Suggest 1-5 self-contained clips (30-90s each) that would work as standalone shorts. Each must have a clear hook, content, and conclusion.
5. KEYWORDS: Identify words that should be visually highlighted in captions (numbers, key terms, emotional words, brand names).

OUTPUT FORMAT (return ONLY valid JSON, no markdown):
{
  "summary": "Brief description of video content",
  "hooks": [
    {
      "start": 0.0,
      "end": 3.2,
      "text": "What the person says",
      "score": 0.92
    }
  ],
  "deadMoments": [
    { "start": 45.1, "end": 47.8, "reason": "silence" }
  ],
  "keyMoments": [
    {
      "time": 12.0,
      "type": "emotional_peak",
      "description": "Speaker gets passionate about X",
      "suggestedZoomScale": 1.15,
      "highlightWords": ["incredible", "changed everything"]
    }
  ],
  "suggestedClips": [
    {
      "start": 0.0,
      "end": 45.0,
      "title": "Suggested title for this clip",
      "hookScore": 0.85,
      "viralityEstimate": "high",
      "reason": "Strong hook + emotional arc + clear takeaway"
    }
  ],
  "topicSegments": [
    { "start": 0.0, "end": 30.0, "topic": "Introduction - the problem" }
  ]
}

TRANSCRIPT:
%s`

// AnalyzeTranscript asks Gemini for editing decisions over the transcript.
// The response is requested as JSON; a response that fails to parse gets one
// retry with an explicit JSON-only reminder.
func (s *GeminiService) AnalyzeTranscript(ctx context.Context, transcript *models.Transcript, format string, duration float64, prefs *models.Preferences) (*models.Analysis, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  s.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	prompt := buildAnalysisPrompt(transcript, format, duration, prefs)
	config := &genai.GenerateContentConfig{
		MaxOutputTokens:  analysisMaxOutputTokens,
		ResponseMIMEType: "application/json",
	}

	log.Printf("[Gemini] Analyzing transcript (model=%s, %d words, %.1fs video)",
		s.model, len(transcript.Words), duration)

	result, err := client.Models.GenerateContent(ctx, s.model, genai.Text(prompt), config)
	if err != nil {
		return nil, fmt.Errorf("gemini analysis failed: %w", err)
	}

	analysis, parseErr := parseAnalysis(result.Text())
	if parseErr != nil {
		// One retry with an explicit reminder; JSON mode occasionally still
		// emits fenced or truncated output.
		log.Printf("[Gemini] Analysis was not valid JSON, retrying once: %v", parseErr)
		retryPrompt := "The previous response was not valid JSON. Return ONLY valid JSON.\n\n" + prompt
		result, err = client.Models.GenerateContent(ctx, s.model, genai.Text(retryPrompt), config)
		if err != nil {
			return nil, fmt.Errorf("gemini analysis retry failed: %w", err)
		}
		analysis, parseErr = parseAnalysis(result.Text())
		if parseErr != nil {
			return nil, fmt.Errorf("failed to parse analysis: %w", parseErr)
		}
	}

	log.Printf("[Gemini] Analysis complete: %d hooks, %d dead moments, %d key moments, %d suggested clips",
		len(analysis.Hooks), len(analysis.DeadMoments), len(analysis.KeyMoments), len(analysis.SuggestedClips))

	return analysis, nil
}

// buildAnalysisPrompt renders the transcript as "[start] word" tokens and
// fills the prompt template.
func buildAnalysisPrompt(transcript *models.Transcript, format string, duration float64, prefs *models.Preferences) string {
	var b strings.Builder
	for _, w := range transcript.Words {
		fmt.Fprintf(&b, "[%.2f] %s ", w.Start, w.Text)
	}

	prefsJSON := "{}"
	if prefs != nil {
		if data, err := json.Marshal(prefs); err == nil {
			prefsJSON = string(data)
		}
	}

	return fmt.Sprintf(analysisPrompt,
		format,
		fmt.Sprintf("%.1f", duration),
		prefsJSON,
		strings.TrimSpace(b.String()),
	)
}

// parseAnalysis decodes the model's JSON output, tolerating a fenced code
// block around the object.
func parseAnalysis(raw string) (*models.Analysis, error) {
	cleaned := stripCodeFence(strings.TrimSpace(raw))
	var analysis models.Analysis
	if err := json.Unmarshal([]byte(cleaned), &analysis); err != nil {
		return nil, err
	}
	return &analysis, nil
}

// stripCodeFence unwraps ```json ... ``` fencing when present.
func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	if i := strings.LastIndex(s, "```"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
