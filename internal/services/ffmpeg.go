package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bobarin/clipforge/internal/filter"
	"github.com/bobarin/clipforge/internal/models"
	"github.com/bobarin/clipforge/internal/timeline"
)

// ---------------------------------------------------------------------------
// Pipeline stages — fixed order, explicit per-stage outcome and failure policy
// ---------------------------------------------------------------------------

// Stage names one step of the clip rendering pipeline.
type Stage string

const (
	StageExtract     Stage = "extract"
	StageAssemble    Stage = "assemble"
	StageReframe     Stage = "reframe"
	StageZoom        Stage = "zoom"
	StageCaptions    Stage = "captions"
	StageAnnotations Stage = "annotations"
	StageNormalize   Stage = "normalize"
	StageEncode      Stage = "encode"
)

// StageResult records one stage's outcome. Output is the file the pipeline
// continued from afterward: for an absorbed failure that is the previous
// stage's file, for a skip the input passed through untouched.
type StageResult struct {
	Stage   Stage
	Output  string
	Err     error
	Skipped bool
}

// stagePolicies states which stages abort the render when they fail.
// Everything else is absorbed: the failure is recorded and the pipeline
// keeps the previous stage's output. Assembly additionally degrades
// internally (crossfades → hard cuts → pass-through) before being absorbed.
var stagePolicies = map[Stage]struct{ Fatal bool }{
	StageExtract:     {Fatal: true},
	StageAssemble:    {Fatal: false},
	StageReframe:     {Fatal: false},
	StageZoom:        {Fatal: false},
	StageCaptions:    {Fatal: false},
	StageAnnotations: {Fatal: false},
	StageNormalize:   {Fatal: false},
	StageEncode:      {Fatal: true},
}

// ---------------------------------------------------------------------------
// Renderer
// ---------------------------------------------------------------------------

// Renderer drives ffmpeg/ffprobe subprocesses for every video operation in
// the clip pipeline: probing, extraction, assembly, effect stages, proxies,
// thumbnails, and the final encode.
type Renderer struct {
	tempDir string
}

func NewRenderer(tempDir string) *Renderer {
	// Create temp directory if it doesn't exist
	if err := os.MkdirAll(tempDir, 0755); err != nil {
		panic(fmt.Sprintf("failed to create temp dir: %v", err))
	}

	return &Renderer{
		tempDir: tempDir,
	}
}

// WorkDir creates (if needed) and returns a scratch directory under the
// renderer's temp root. Each clip render gets its own.
func (r *Renderer) WorkDir(name string) (string, error) {
	dir := filepath.Join(r.tempDir, name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create work dir: %w", err)
	}
	return dir, nil
}

// Cleanup removes scratch files and directories.
func (r *Renderer) Cleanup(paths ...string) {
	for _, path := range paths {
		os.RemoveAll(path)
	}
}

// ---------------------------------------------------------------------------
// Probing
// ---------------------------------------------------------------------------

// VideoInfo is the subset of ffprobe output the pipeline needs.
type VideoInfo struct {
	Width    int
	Height   int
	FPS      int
	Duration float64
}

type ffprobeOutput struct {
	Streams []struct {
		CodecType  string `json:"codec_type"`
		Width      int    `json:"width"`
		Height     int    `json:"height"`
		RFrameRate string `json:"r_frame_rate"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// Probe returns dimensions, frame rate, and duration of a media file.
func (r *Renderer) Probe(ctx context.Context, path string) (*VideoInfo, error) {
	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "quiet",
		"-print_format", "json",
		"-show_streams", "-show_format",
		path,
	)
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe %s failed: %w", path, err)
	}

	var probed ffprobeOutput
	if err := json.Unmarshal(out, &probed); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	info := &VideoInfo{FPS: 30}
	if probed.Format.Duration != "" {
		if d, err := strconv.ParseFloat(probed.Format.Duration, 64); err == nil {
			info.Duration = d
		}
	}
	for _, s := range probed.Streams {
		if s.CodecType != "video" {
			continue
		}
		info.Width = s.Width
		info.Height = s.Height
		if fps, ok := parseFrameRate(s.RFrameRate); ok {
			info.FPS = fps
		}
		break
	}
	if info.Width == 0 || info.Height == 0 {
		return nil, fmt.Errorf("no video stream in %s", path)
	}
	return info, nil
}

// Duration returns a media file's duration in seconds.
func (r *Renderer) Duration(ctx context.Context, path string) (float64, error) {
	info, err := r.Probe(ctx, path)
	if err != nil {
		return 0, err
	}
	return info.Duration, nil
}

// parseFrameRate converts ffprobe's "num/den" rational to a rounded fps.
func parseFrameRate(rate string) (int, bool) {
	parts := strings.Split(rate, "/")
	if len(parts) != 2 {
		return 0, false
	}
	num, err1 := strconv.Atoi(parts[0])
	den, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || den == 0 {
		return 0, false
	}
	return int(math.Round(float64(num) / float64(den))), true
}

// ---------------------------------------------------------------------------
// Single-purpose operations
// ---------------------------------------------------------------------------

// ExtractClip re-encodes the clip window out of the source video.
// Re-encoding keeps the cut frame-accurate; stream copy would snap to
// keyframes and drift every downstream timestamp.
func (r *Renderer) ExtractClip(ctx context.Context, src string, start, end float64, out string) error {
	return runFFmpeg(ctx,
		"-i", src,
		"-ss", formatSeconds(start), "-to", formatSeconds(end),
		"-c:v", "libx264", "-c:a", "aac",
		"-y", out,
	)
}

// ExtractAudio pulls a 16kHz mono WAV, the input format both transcribers
// accept.
func (r *Renderer) ExtractAudio(ctx context.Context, src, out string) error {
	return runFFmpeg(ctx,
		"-i", src,
		"-vn", "-acodec", "pcm_s16le", "-ar", "16000", "-ac", "1",
		"-y", out,
	)
}

// GenerateProxy writes a 480p preview encode for browser scrubbing. Frame
// timing is preserved so editor timestamps line up with the source.
func (r *Renderer) GenerateProxy(ctx context.Context, src, out string) error {
	return runFFmpeg(ctx,
		"-i", src,
		"-vf", "scale=-2:480",
		"-c:v", "libx264", "-preset", "fast", "-crf", "28",
		"-c:a", "aac", "-b:a", "64k",
		"-movflags", "+faststart",
		"-y", out,
	)
}

// Thumbnail grabs a single frame at the given time.
func (r *Renderer) Thumbnail(ctx context.Context, video, out string, at float64) error {
	return runFFmpeg(ctx,
		"-i", video,
		"-ss", formatSeconds(at), "-vframes", "1",
		"-y", out,
	)
}

// ConcatSources joins multiple uploaded source parts into one file. The
// fast concat demuxer is tried first; when the parts' codecs differ it
// falls back to a full re-encode.
func (r *Renderer) ConcatSources(ctx context.Context, parts []string, out string) error {
	if len(parts) == 0 {
		return fmt.Errorf("no sources to concatenate")
	}
	if len(parts) == 1 {
		return runFFmpeg(ctx, "-i", parts[0], "-c", "copy", "-y", out)
	}

	listPath := out + ".txt"
	var list strings.Builder
	for _, p := range parts {
		fmt.Fprintf(&list, "file '%s'\n", p)
	}
	if err := os.WriteFile(listPath, []byte(list.String()), 0644); err != nil {
		return fmt.Errorf("failed to write concat list: %w", err)
	}
	defer os.Remove(listPath)

	err := runFFmpeg(ctx, "-f", "concat", "-safe", "0", "-i", listPath, "-c", "copy", "-y", out)
	if err == nil {
		return nil
	}
	log.Printf("[FFmpeg] Concat demuxer failed, re-encoding: %v", err)

	var args []string
	var labels strings.Builder
	for i, p := range parts {
		args = append(args, "-i", p)
		fmt.Fprintf(&labels, "[%d:v][%d:a]", i, i)
	}
	graph := fmt.Sprintf("%sconcat=n=%d:v=1:a=1[outv][outa]", labels.String(), len(parts))
	args = append(args,
		"-filter_complex", graph,
		"-map", "[outv]", "-map", "[outa]",
		"-c:v", "libx264", "-c:a", "aac",
		"-y", out,
	)
	return runFFmpeg(ctx, args...)
}

// ReframeVertical center-crops a landscape frame to 9:16. Vertical and
// square sources pass through untouched; the returned bool reports whether
// a crop was applied. manualCropX slides the crop window across the
// horizontal slack (0 = left edge, 50 = center, 100 = right edge).
func (r *Renderer) ReframeVertical(ctx context.Context, in, out string, manualCropX *float64) (bool, error) {
	info, err := r.Probe(ctx, in)
	if err != nil {
		return false, err
	}
	if info.Width <= info.Height {
		return false, nil
	}

	targetWidth := info.Height * 9 / 16
	slack := info.Width - targetWidth
	cropX := slack / 2
	if manualCropX != nil {
		pct := min(max(*manualCropX, 0), 100)
		cropX = int(float64(slack) * pct / 100)
	}

	vf := fmt.Sprintf("crop=%d:%d:%d:0", targetWidth, info.Height, cropX)
	if err := runFFmpeg(ctx, "-i", in, "-vf", vf, "-c:a", "copy", "-y", out); err != nil {
		return false, err
	}
	return true, nil
}

// NormalizeAudio applies EBU R128 loudness normalization, copying video.
func (r *Renderer) NormalizeAudio(ctx context.Context, in, out string) error {
	return runFFmpeg(ctx,
		"-i", in,
		"-af", "loudnorm=I=-16:LRA=11:TP=-1.5",
		"-c:v", "copy",
		"-y", out,
	)
}

// ---------------------------------------------------------------------------
// Final encode
// ---------------------------------------------------------------------------

type qualityPreset struct {
	CRF          int
	Width        int // vertical output width; height is 16/9 of it
	Speed        string
	AudioBitrate string
}

var qualityPresets = map[models.Quality]qualityPreset{
	models.QualityDraft:    {CRF: 28, Width: 720, Speed: "fast", AudioBitrate: "96k"},
	models.QualityStandard: {CRF: 23, Width: 1080, Speed: "medium", AudioBitrate: "128k"},
	models.QualityHigh:     {CRF: 18, Width: 1080, Speed: "slow", AudioBitrate: "192k"},
}

// FinalEncode scales and pads to the preset's vertical resolution and
// encodes the delivery file: H.264+AAC with faststart for mp4, ProRes with
// PCM audio for mov.
func (r *Renderer) FinalEncode(ctx context.Context, src, out string, export *models.ExportConfig) error {
	quality, format := models.QualityStandard, models.FormatMP4
	if export != nil {
		if export.Quality != "" {
			quality = export.Quality
		}
		if export.Format != "" {
			format = export.Format
		}
	}
	preset, ok := qualityPresets[quality]
	if !ok {
		preset = qualityPresets[models.QualityStandard]
	}

	outW := preset.Width
	outH := outW * 16 / 9
	vf := fmt.Sprintf("scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2",
		outW, outH, outW, outH)

	if format == models.FormatMOV {
		return runFFmpeg(ctx,
			"-i", src,
			"-vf", vf,
			"-c:v", "prores_ks", "-profile:v", "3",
			"-c:a", "pcm_s16le",
			"-movflags", "+faststart",
			"-y", out,
		)
	}
	return runFFmpeg(ctx,
		"-i", src,
		"-vf", vf,
		"-c:v", "libx264", "-preset", preset.Speed, "-crf", strconv.Itoa(preset.CRF),
		"-c:a", "aac", "-b:a", preset.AudioBitrate,
		"-movflags", "+faststart",
		"-y", out,
	)
}

// ---------------------------------------------------------------------------
// Clip pipeline
// ---------------------------------------------------------------------------

// RenderRequest carries everything needed to render one clip.
type RenderRequest struct {
	SourcePath string  // local path of the project source video
	ClipStart  float64 // clip window in source seconds
	ClipEnd    float64
	Config     *models.EditConfig
	Words      []models.Word // project transcript words, source time
	WorkDir    string        // per-clip scratch dir, caller-owned
}

// RenderResult is the rendered file plus the per-stage record and the
// TimeMap of the output timeline actually produced (whichever assembly
// variant succeeded).
type RenderResult struct {
	OutputPath string
	TimeMap    *timeline.TimeMap
	Stages     []StageResult
}

// StageError returns the first recorded error, absorbed or not. Useful for
// surfacing degraded renders to the caller's logs.
func (r *RenderResult) StageError() error {
	for _, s := range r.Stages {
		if s.Err != nil {
			return fmt.Errorf("%s: %w", s.Stage, s.Err)
		}
	}
	return nil
}

// RenderClip runs the full pipeline for one clip:
//
//	extract → assemble → reframe → zoom → captions → annotations →
//	normalize → encode
//
// Extract and encode failures abort; every other stage is absorbed per
// stagePolicies, leaving the previous stage's output in place. Zoom and
// caption timings are remapped through the assembly's TimeMap before any
// filter is built, so effects stay aligned after cuts and transitions.
func (r *Renderer) RenderClip(ctx context.Context, req RenderRequest) (*RenderResult, error) {
	cfg := req.Config
	if cfg == nil {
		cfg = models.DefaultEditConfig()
	} else {
		cfg.ApplyDefaults()
	}

	clipDuration := req.ClipEnd - req.ClipStart
	if clipDuration <= 0 {
		return nil, fmt.Errorf("empty clip window [%.3f,%.3f]", req.ClipStart, req.ClipEnd)
	}

	// Pass-through timeline until assembly succeeds with something shorter.
	identity, err := timeline.NewTimeMapFromCuts(nil, clipDuration)
	if err != nil {
		return nil, err
	}

	res := &RenderResult{TimeMap: identity}
	current := ""

	record := func(stage Stage, output string, err error, skipped bool) {
		res.Stages = append(res.Stages, StageResult{Stage: stage, Output: output, Err: err, Skipped: skipped})
	}
	skip := func(stage Stage) {
		record(stage, current, nil, true)
	}
	// runStage advances the pipeline to out when fn succeeds. A stage may
	// decline with errSkipStage; other failures are fatal or absorbed per
	// stagePolicies.
	runStage := func(stage Stage, out string, fn func() error) error {
		err := fn()
		switch {
		case err == nil:
			current = out
			record(stage, out, nil, false)
		case errors.Is(err, errSkipStage):
			skip(stage)
		case stagePolicies[stage].Fatal:
			record(stage, "", err, false)
			return err
		default:
			log.Printf("[FFmpeg] %s stage failed, keeping previous output: %v", stage, err)
			record(stage, current, err, false)
		}
		return nil
	}

	// 1. Extract the clip window.
	step1 := filepath.Join(req.WorkDir, "01_clip.mp4")
	if err := runStage(StageExtract, step1, func() error {
		return r.ExtractClip(ctx, req.SourcePath, req.ClipStart, req.ClipEnd, step1)
	}); err != nil {
		return res, fmt.Errorf("extract clip: %w", err)
	}

	// 2. Assemble kept regions. Segments are preferred over cuts; with
	// neither, the extracted clip passes through on the identity timeline.
	var plan *timeline.AssemblyPlan
	var planErr error
	switch {
	case len(cfg.Segments) > 0:
		plan, planErr = timeline.PlanSegments(cfg.Segments)
	case len(cfg.Cuts) > 0:
		plan, planErr = timeline.PlanCuts(cfg.Cuts, clipDuration)
	}
	switch {
	case planErr != nil:
		log.Printf("[FFmpeg] Assembly plan rejected, passing through: %v", planErr)
		record(StageAssemble, current, planErr, false)
	case plan == nil:
		skip(StageAssemble)
	default:
		step2 := filepath.Join(req.WorkDir, "02_assemble.mp4")
		runStage(StageAssemble, step2, func() error {
			m, err := r.runAssembly(ctx, current, plan, step2)
			if err != nil {
				return err
			}
			res.TimeMap = m
			return nil
		})
	}
	tm := res.TimeMap

	// 3. Reframe to vertical.
	if cfg.Reframe != nil && cfg.Reframe.Enabled {
		step3 := filepath.Join(req.WorkDir, "03_reframe.mp4")
		runStage(StageReframe, step3, func() error {
			applied, err := r.ReframeVertical(ctx, current, step3, cfg.Reframe.ManualCropX)
			if err == nil && !applied {
				return errSkipStage
			}
			return err
		})
	} else {
		skip(StageReframe)
	}

	// 4. Zooms, remapped to the output timeline.
	if zooms := timeline.RemapZooms(cfg.Zooms, tm); len(zooms) > 0 {
		step4 := filepath.Join(req.WorkDir, "04_zooms.mp4")
		runStage(StageZoom, step4, func() error {
			info, err := r.Probe(ctx, current)
			if err != nil {
				return err
			}
			vf := filter.ZoomChain(zooms, info.Width, info.Height)
			return runFFmpeg(ctx, "-i", current, "-vf", vf, "-c:a", "copy", "-y", step4)
		})
	} else {
		skip(StageZoom)
	}

	// 5. Captions: scope project words to the clip window, remap, draw.
	captionVF := ""
	if cfg.Captions != nil && cfg.Captions.Enabled {
		transcript := &models.Transcript{Words: req.Words}
		clipWords := transcript.WordsBetween(req.ClipStart, req.ClipEnd)
		remapped := timeline.RemapWords(clipWords, tm)
		captionVF = filter.CaptionFilters(remapped, cfg.Captions, cfg.CaptionOverrides)
	}
	if captionVF != "" {
		step5 := filepath.Join(req.WorkDir, "05_captions.mp4")
		runStage(StageCaptions, step5, func() error {
			return runFFmpeg(ctx, "-i", current, "-vf", captionVF, "-c:a", "copy", "-y", step5)
		})
	} else {
		skip(StageCaptions)
	}

	// 6. Static annotations, positioned against the actual frame size.
	if len(cfg.Annotations) > 0 {
		step6 := filepath.Join(req.WorkDir, "06_annotations.mp4")
		runStage(StageAnnotations, step6, func() error {
			info, err := r.Probe(ctx, current)
			if err != nil {
				return err
			}
			vf := filter.AnnotationFilters(cfg.Annotations, info.Width, info.Height)
			if vf == "" {
				return errSkipStage
			}
			return runFFmpeg(ctx, "-i", current, "-vf", vf, "-c:a", "copy", "-y", step6)
		})
	} else {
		skip(StageAnnotations)
	}

	// 7. Loudness normalization.
	if cfg.Audio != nil && cfg.Audio.NormalizeVolume {
		step7 := filepath.Join(req.WorkDir, "07_audio.mp4")
		runStage(StageNormalize, step7, func() error {
			return r.NormalizeAudio(ctx, current, step7)
		})
	} else {
		skip(StageNormalize)
	}

	// 8. Final encode.
	ext := "mp4"
	if cfg.Export != nil && cfg.Export.Format == models.FormatMOV {
		ext = "mov"
	}
	final := filepath.Join(req.WorkDir, "final."+ext)
	if err := runStage(StageEncode, final, func() error {
		return r.FinalEncode(ctx, current, final, cfg.Export)
	}); err != nil {
		return res, fmt.Errorf("final encode: %w", err)
	}

	res.OutputPath = final
	return res, nil
}

// errSkipStage lets a stage report "nothing to do here" from inside its
// closure; runStage records a skip instead of a failure.
var errSkipStage = errors.New("stage skipped")

// runAssembly executes the plan against the extracted clip: one interval is
// a plain trim, several splice through a filter graph. A failed crossfade
// graph retries as hard concatenation with the TimeMap recomputed to match,
// so downstream remapping follows what was actually rendered.
func (r *Renderer) runAssembly(ctx context.Context, in string, plan *timeline.AssemblyPlan, out string) (*timeline.TimeMap, error) {
	if len(plan.Intervals) == 0 {
		return nil, fmt.Errorf("assembly plan has no kept intervals")
	}

	if len(plan.Intervals) == 1 {
		iv := plan.Intervals[0]
		err := runFFmpeg(ctx,
			"-i", in,
			"-ss", formatSeconds(iv.SourceStart), "-to", formatSeconds(iv.SourceEnd),
			"-c:v", "libx264", "-c:a", "aac",
			"-y", out,
		)
		if err != nil {
			return nil, err
		}
		return plan.Map, nil
	}

	if plan.UsesTransitions {
		graph := filter.TransitionGraph(plan)
		err := r.runFilterGraph(ctx, in, graph, out)
		if err == nil {
			return plan.Map, nil
		}
		log.Printf("[FFmpeg] xfade failed, falling back to hard cuts: %v", err)
		hard, herr := plan.WithoutTransitions()
		if herr != nil {
			return nil, herr
		}
		plan = hard
	}

	graph := filter.HardConcatGraph(plan.Intervals)
	if err := r.runFilterGraph(ctx, in, graph, out); err != nil {
		return nil, err
	}
	return plan.Map, nil
}

func (r *Renderer) runFilterGraph(ctx context.Context, in, graph, out string) error {
	return runFFmpeg(ctx,
		"-i", in,
		"-filter_complex", graph,
		"-map", "[outv]", "-map", "[outa]",
		"-c:v", "libx264", "-c:a", "aac",
		"-y", out,
	)
}

// ---------------------------------------------------------------------------
// Subprocess plumbing
// ---------------------------------------------------------------------------

// runFFmpeg executes ffmpeg, surfacing the tail of stderr on failure.
func runFFmpeg(ctx context.Context, args ...string) error {
	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg failed: %w: %s", err, stderrTail(stderr.String()))
	}
	return nil
}

// stderrTail keeps error messages readable: ffmpeg's stderr runs to pages,
// only the end says what went wrong.
func stderrTail(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 300 {
		s = s[len(s)-300:]
	}
	return s
}

func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}
