package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/mgpai22/kalign/internal/alignment"
	"github.com/mgpai22/kalign/internal/audio"
	"github.com/mgpai22/kalign/internal/htk"
	"github.com/mgpai22/kalign/internal/lexicon"
	"github.com/mgpai22/kalign/internal/subtitle"
	"github.com/mgpai22/kalign/internal/textgrid"
)

// work directory file names
const (
	generatedDictName = "generated.dict"
	mergedDictName    = "dict"
	labelFileName     = "tmp.mlf"
	alignedFileName   = "aligned.mlf"
	audioFileName     = "tmp.wav"
)

type alignRequest struct {
	Audio      string
	Transcript string
	Output     string
	SampleRate int
	Start      float64
	End        float64
	KeepWork   bool
	Subtitle   subtitle.Format
	Dict       lexicon.Options
}

func newAlignCommand(a *app) *cobra.Command {
	var (
		sampleRate int
		start, end float64
		keep       bool
		subFormat  string
	)

	cmd := &cobra.Command{
		Use:   "align [audio_file] [transcript]",
		Short: "Align a recording with its Korean transcript",
		Long: `Run the full alignment pipeline:

  1. build a pronunciation dictionary for the transcript and merge it with the
     model dictionary
  2. convert the transcript to decoder labels
  3. resample or trim the audio to a model sample rate (video files have their
     audio extracted)
  4. run HCopy and HVite
  5. write a phone/word TextGrid

Work files go to a fresh directory under paths.work_dir, removed afterwards
unless --keep is set.

Examples:
  kalign align talk.wav script.txt
  kalign align lecture.mp4 lecture.srt -o lecture.TextGrid --subtitle vtt
  kalign align long.wav part2.txt --start 60 --end 120 --sample-rate 8000`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := alignRequest{
				Audio:      args[0],
				Transcript: args[1],
				Output:     a.output,
				SampleRate: sampleRate,
				Start:      start,
				End:        end,
				KeepWork:   keep || a.cfg.Alignment.KeepWorkDir,
				Dict:       dictOptions(cmd, a),
			}
			if subFormat != "" {
				f, err := parseSubtitleFormat(subFormat)
				if err != nil {
					return err
				}
				req.Subtitle = f
			}

			if _, err := os.Stat(req.Audio); os.IsNotExist(err) {
				return fmt.Errorf("file not found: %s", req.Audio)
			}
			if !audio.IsMediaFile(req.Audio) {
				return fmt.Errorf("unsupported file type: %s (expected audio or video file)", filepath.Ext(req.Audio))
			}
			if req.Output == "" {
				req.Output = strings.TrimSuffix(req.Audio, filepath.Ext(req.Audio)) + ".TextGrid"
			}

			res, err := a.align(cmd.Context(), req)
			if err != nil {
				return err
			}

			absOutput, _ := filepath.Abs(req.Output)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "TextGrid written: %s\n", absOutput)
			fmt.Fprintf(out, "  Words: %d  Phones: %d  Sample rate: %d\n", res.Words, res.Phones, res.SampleRate)
			if len(res.Skipped) > 0 {
				fmt.Fprintf(out, "  Skipped words: %s\n", strings.Join(res.Skipped, " "))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&sampleRate, "sample-rate", "r", 0, "Force this model sample rate")
	cmd.Flags().Float64Var(&start, "start", 0, "Align from this time in seconds")
	cmd.Flags().Float64Var(&end, "end", 0, "Align up to this time in seconds")
	cmd.Flags().BoolVar(&keep, "keep", false, "Keep the work directory")
	cmd.Flags().StringVar(&subFormat, "subtitle", "", "Also export word cues (srt, vtt, ass)")
	addDictFlags(cmd)
	return cmd
}

type alignResult struct {
	WorkDir    string
	SampleRate int
	Words      int
	Phones     int
	Skipped    []string
}

func (a *app) align(ctx context.Context, req alignRequest) (alignResult, error) {
	cfg := a.cfg
	res := alignResult{WorkDir: filepath.Join(cfg.Paths.WorkDir, uuid.NewString())}
	if err := os.MkdirAll(res.WorkDir, 0755); err != nil {
		return res, fmt.Errorf("failed to create work directory: %w", err)
	}
	if req.KeepWork {
		a.logger.Infow("keeping work directory", "path", res.WorkDir)
	} else {
		defer os.RemoveAll(res.WorkDir)
	}
	work := func(name string) string { return filepath.Join(res.WorkDir, name) }

	text, err := readTranscript(req.Transcript, a.logger)
	if err != nil {
		return res, err
	}

	// dictionary
	builder := lexicon.NewBuilder(req.Dict)
	generated, skipped := builder.Build(lexicon.Words(text))
	for _, s := range skipped {
		a.logger.Warnw("word skipped", "word", s.Word, "reason", s.Reason)
	}
	if err := generated.WriteFile(work(generatedDictName)); err != nil {
		return res, err
	}

	sources := []string{work(generatedDictName)}
	for _, extra := range []string{cfg.Model.Dict, cfg.Dictionary.LocalDict} {
		if extra == "" {
			continue
		}
		if _, err := os.Stat(extra); errors.Is(err, fs.ErrNotExist) {
			a.logger.Debugw("dictionary not found, skipping", "path", extra)
			continue
		}
		sources = append(sources, extra)
	}
	if _, err := lexicon.MergeFiles(ctx, work(mergedDictName), sources...); err != nil {
		return res, err
	}
	merged, err := lexicon.LoadFile(work(mergedDictName))
	if err != nil {
		return res, err
	}

	// labels
	tr := alignment.PrepareWords(text, merged, alignment.LabelOptions{
		Surround: cfg.Alignment.SurroundToken,
		Between:  cfg.Alignment.BetweenToken,
		Romanize: req.Dict.Romanize,
	})
	res.Skipped = tr.Skipped
	for _, w := range tr.Skipped {
		a.logger.Warnw("word not in dictionary, skipped", "word", w)
	}
	if len(tr.Originals) == 0 {
		return res, fmt.Errorf("no transcript words found in the dictionary")
	}
	labels, err := os.Create(work(labelFileName))
	if err != nil {
		return res, fmt.Errorf("failed to create label file: %w", err)
	}
	if err := alignment.WriteLabels(labels, tr.Words); err != nil {
		labels.Close()
		return res, fmt.Errorf("failed to write label file: %w", err)
	}
	if err := labels.Close(); err != nil {
		return res, err
	}

	// audio
	rate, err := audio.Prepare(ctx, req.Audio, work(audioFileName), audio.PrepareOptions{
		ModelRates: cfg.Model.SampleRates,
		Override:   req.SampleRate,
		Start:      req.Start,
		End:        req.End,
	})
	if err != nil {
		return res, fmt.Errorf("failed to prepare audio: %w", err)
	}
	res.SampleRate = rate
	a.logger.Infow("audio prepared", "sample_rate", rate, "start", req.Start, "end", req.End)

	// decoder
	runner := htk.NewRunner(cfg.HTK.HCopy, cfg.HTK.HVite, cfg.HTK.Prune, cfg.HTK.Beam, a.logger)
	job := htk.Job{
		WorkDir:  res.WorkDir,
		Audio:    work(audioFileName),
		Labels:   work(labelFileName),
		Output:   work(alignedFileName),
		ModelDir: cfg.ModelDir(rate),
		Dict:     work(mergedDictName),
		Phones:   cfg.Model.Phones,
	}
	a.logger.Infow("running aligner", "model", job.ModelDir, "words", len(tr.Words))
	if err := runner.Align(ctx, job); err != nil {
		return res, err
	}

	// TextGrid
	var relabel map[string]string
	if cfg.Alignment.HangulLabels {
		relabel = tr.Originals
	}
	conv := textgrid.Convert(textgrid.Job{
		Input:   job.Output,
		Output:  req.Output,
		Parse:   alignment.Options{SampleRate: rate, WaveStart: req.Start},
		Relabel: relabel,
	}, textgrid.Options{})
	if conv.Err != nil {
		return res, conv.Err
	}
	res.Words, res.Phones = conv.Words, conv.Phones

	if req.Subtitle != "" {
		if err := exportSubtitles(conv, req.Subtitle); err != nil {
			return res, err
		}
	}

	a.logger.Infow("alignment complete", "output", req.Output, "words", res.Words, "phones", res.Phones)
	return res, nil
}
