package audio

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/mgpai22/kalign/internal/toolpath"
)

// DefaultSampleRate is the resampling target when no override is given.
const DefaultSampleRate = 16000

// media file information
type Info struct {
	Duration   time.Duration
	SampleRate int
	Channels   int
	HasVideo   bool
}

// JSON output from ffprobe
type ffprobeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
	Streams []struct {
		CodecType  string `json:"codec_type"`
		SampleRate string `json:"sample_rate"`
		Channels   int    `json:"channels"`
	} `json:"streams"`
}

// Probe reads duration and audio stream parameters with ffprobe.
func Probe(path string) (Info, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Info{}, fmt.Errorf("file not found: %s", path)
	}

	ffprobePath, err := toolpath.Path(toolpath.FFprobe)
	if err != nil {
		return Info{}, err
	}

	cmd := exec.Command(ffprobePath,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	)

	var out bytes.Buffer
	cmd.Stdout = &out

	if err := cmd.Run(); err != nil {
		return Info{}, fmt.Errorf("ffprobe failed: %w", err)
	}
	return parseProbe(out.Bytes())
}

func parseProbe(data []byte) (Info, error) {
	var probe ffprobeOutput
	if err := json.Unmarshal(data, &probe); err != nil {
		return Info{}, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	var info Info
	if probe.Format.Duration != "" {
		seconds, err := strconv.ParseFloat(probe.Format.Duration, 64)
		if err != nil {
			return Info{}, fmt.Errorf("failed to parse duration: %w", err)
		}
		info.Duration = time.Duration(seconds * float64(time.Second))
	}

	foundAudio := false
	for _, s := range probe.Streams {
		switch s.CodecType {
		case "video":
			info.HasVideo = true
		case "audio":
			if foundAudio {
				continue
			}
			foundAudio = true
			rate, err := strconv.Atoi(s.SampleRate)
			if err != nil {
				return Info{}, fmt.Errorf("failed to parse sample rate %q: %w", s.SampleRate, err)
			}
			info.SampleRate = rate
			info.Channels = s.Channels
		}
	}
	if !foundAudio {
		return Info{}, fmt.Errorf("no audio stream")
	}
	return info, nil
}

// settings for Prepare
type PrepareOptions struct {
	// rates with an acoustic model; empty accepts any rate
	ModelRates []int
	// forced output rate, 0 for none
	Override int
	// trim window in seconds; End 0 means to the end of the input
	Start float64
	End   float64
}

func (o PrepareOptions) trims() bool {
	return o.Start != 0 || o.End != 0
}

// Plan is what Prepare decided to do with an input.
type Plan struct {
	SampleRate int
	Convert    bool
}

// Decide picks the output rate and whether the input must be converted. The
// input is converted when its rate has no model, an override differs from it,
// a trim window is set, or it is not already a WAV file.
func Decide(info Info, isWAV bool, opts PrepareOptions) (Plan, error) {
	if opts.Override != 0 && len(opts.ModelRates) > 0 && !slices.Contains(opts.ModelRates, opts.Override) {
		return Plan{}, fmt.Errorf("invalid sample rate %d: no acoustic model for it", opts.Override)
	}
	if opts.End != 0 && opts.End <= opts.Start {
		return Plan{}, fmt.Errorf("invalid trim window %g-%g", opts.Start, opts.End)
	}

	convert := !isWAV || info.HasVideo || opts.trims() ||
		(len(opts.ModelRates) > 0 && !slices.Contains(opts.ModelRates, info.SampleRate)) ||
		(opts.Override != 0 && opts.Override != info.SampleRate)
	if !convert {
		return Plan{SampleRate: info.SampleRate}, nil
	}

	rate := DefaultSampleRate
	if opts.Override != 0 {
		rate = opts.Override
	}
	return Plan{SampleRate: rate, Convert: true}, nil
}

// Prepare writes a mono PCM WAV at a model rate to outputPath and returns
// its sample rate. Inputs that already fit are copied unchanged.
func Prepare(
	ctx context.Context,
	inputPath, outputPath string,
	opts PrepareOptions,
) (int, error) {
	info, err := Probe(inputPath)
	if err != nil {
		return 0, err
	}
	isWAV, err := IsWAVHeader(inputPath)
	if err != nil {
		return 0, err
	}

	plan, err := Decide(info, isWAV, opts)
	if err != nil {
		return 0, err
	}

	outputDir := filepath.Dir(outputPath)
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return 0, fmt.Errorf("failed to create output directory: %w", err)
	}

	if !plan.Convert {
		if err := copyFile(inputPath, outputPath); err != nil {
			return 0, err
		}
		return plan.SampleRate, nil
	}

	ffmpegPath, err := toolpath.Path(toolpath.FFmpeg)
	if err != nil {
		return 0, err
	}

	args := convertStream(inputPath, outputPath, plan.SampleRate, opts).GetArgs()
	cmd := exec.CommandContext(ctx, ffmpegPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return 0, fmt.Errorf("conversion failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	return plan.SampleRate, nil
}

func convertStream(inputPath, outputPath string, rate int, opts PrepareOptions) *ffmpeg.Stream {
	inArgs := ffmpeg.KwArgs{}
	if opts.Start != 0 {
		inArgs["ss"] = opts.Start
	}

	kwargs := ffmpeg.KwArgs{
		"vn":     "",          // No video
		"ar":     rate,        // Sample rate
		"ac":     1,           // Mono
		"acodec": "pcm_s16le", // 16-bit PCM
	}
	if opts.End != 0 {
		kwargs["t"] = opts.End - opts.Start
	}

	return ffmpeg.Input(inputPath, inArgs).
		Output(outputPath, kwargs).
		OverWriteOutput()
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("failed to copy audio: %w", err)
	}
	return out.Close()
}

// IsWAVHeader reports whether the file starts with a RIFF/WAVE header.
func IsWAVHeader(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	var header [12]byte
	if _, err := io.ReadFull(f, header[:]); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return false, nil
		}
		return false, err
	}
	return string(header[0:4]) == "RIFF" && string(header[8:12]) == "WAVE", nil
}

// checks if the file is a video based on extension
func IsVideoFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	videoExts := map[string]bool{
		".mp4":  true,
		".mkv":  true,
		".avi":  true,
		".mov":  true,
		".wmv":  true,
		".flv":  true,
		".webm": true,
		".m4v":  true,
		".mpeg": true,
		".mpg":  true,
		".3gp":  true,
	}
	return videoExts[ext]
}

// checks if the file is an audio file based on extension
func IsAudioFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	audioExts := map[string]bool{
		".mp3":  true,
		".wav":  true,
		".aac":  true,
		".flac": true,
		".ogg":  true,
		".m4a":  true,
		".wma":  true,
		".aiff": true,
	}
	return audioExts[ext]
}

// checks if the file is either audio or video
func IsMediaFile(path string) bool {
	return IsAudioFile(path) || IsVideoFile(path)
}
