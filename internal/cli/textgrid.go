package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mgpai22/kalign/internal/alignment"
	"github.com/mgpai22/kalign/internal/hangul"
	"github.com/mgpai22/kalign/internal/lexicon"
	"github.com/mgpai22/kalign/internal/subtitle"
	"github.com/mgpai22/kalign/internal/textgrid"
)

func newTextGridCommand(a *app) *cobra.Command {
	var (
		sampleRate  int
		waveStart   float64
		concurrency int
		phoneTier   string
		wordTier    string
		transcript  string
		subFormat   string
	)

	cmd := &cobra.Command{
		Use:   "textgrid [alignment.mlf...]",
		Short: "Convert aligner output to Praat TextGrids",
		Long: `Convert HTK master label files written by the aligner into two-tier Praat
TextGrids (phone and word tiers, short text format).

With several inputs the files are converted in parallel and --output names a
directory. A transcript restores the Hangul spelling of romanized word labels.

Examples:
  kalign textgrid aligned.mlf -o talk.TextGrid
  kalign textgrid out/*.mlf -o grids --concurrency 4 --sample-rate 11025
  kalign textgrid aligned.mlf --transcript script.txt --subtitle srt`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("sample-rate") {
				sampleRate = a.cfg.Model.DefaultSampleRate
			}

			var format subtitle.Format
			if subFormat != "" {
				var err error
				if format, err = parseSubtitleFormat(subFormat); err != nil {
					return err
				}
			}

			var relabel map[string]string
			if transcript != "" {
				text, err := readTranscript(transcript, a.logger)
				if err != nil {
					return err
				}
				relabel = hangulLabels(lexicon.Words(text))
			}

			jobs := make([]textgrid.Job, len(args))
			for i, in := range args {
				jobs[i] = textgrid.Job{
					Input:   in,
					Output:  gridOutput(in, a.output, len(args) > 1),
					Parse:   alignment.Options{SampleRate: sampleRate, WaveStart: waveStart},
					Relabel: relabel,
				}
			}
			if len(args) > 1 && a.output != "" {
				if err := os.MkdirAll(a.output, 0755); err != nil {
					return fmt.Errorf("failed to create output directory: %w", err)
				}
			}

			opts := textgrid.Options{PhoneTier: phoneTier, WordTier: wordTier}
			results := textgrid.ConvertBatch(cmd.Context(), jobs, concurrency, opts)

			failed := 0
			rows := make([][]string, 0, len(results))
			for _, r := range results {
				status := "ok"
				if r.Err != nil {
					failed++
					status = r.Err.Error()
					a.logger.Errorw("conversion failed", "input", r.Job.Input, "error", r.Err)
				} else if format != "" {
					if err := exportSubtitles(r, format); err != nil {
						failed++
						status = err.Error()
					}
				}
				rows = append(rows, []string{
					r.Job.Input, r.Job.Output,
					strconv.Itoa(r.Words), strconv.Itoa(r.Phones), status,
				})
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Input", "Output", "Words", "Phones", "Status"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft},
			))
			if failed > 0 {
				return fmt.Errorf("%d of %d files failed", failed, len(results))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&sampleRate, "sample-rate", "r", 16000, "Sample rate the audio was aligned at (default from config)")
	cmd.Flags().Float64Var(&waveStart, "wave-start", 0, "Offset in seconds added to every time")
	cmd.Flags().IntVar(&concurrency, "concurrency", textgrid.DefaultConcurrency, "Number of parallel conversions")
	cmd.Flags().StringVar(&phoneTier, "phone-tier", textgrid.DefaultPhoneTier, "Name of the phone tier")
	cmd.Flags().StringVar(&wordTier, "word-tier", textgrid.DefaultWordTier, "Name of the word tier")
	cmd.Flags().StringVarP(&transcript, "transcript", "t", "", "Transcript used to restore Hangul word labels")
	cmd.Flags().StringVar(&subFormat, "subtitle", "", "Also export word cues (srt, vtt, ass)")
	return cmd
}

// gridOutput picks the TextGrid path for input. With several inputs output
// is a directory.
func gridOutput(input, output string, batch bool) string {
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input)) + ".TextGrid"
	switch {
	case output == "":
		return filepath.Join(filepath.Dir(input), base)
	case batch:
		return filepath.Join(output, base)
	default:
		return output
	}
}

// hangulLabels maps romanized labels back to the words they came from.
func hangulLabels(words []string) map[string]string {
	names := make(map[string]string, len(words))
	for _, w := range words {
		if !hangul.ContainsHangul(w) {
			continue
		}
		if label := hangul.Romanize(w); label != "" {
			names[label] = w
		}
	}
	return names
}

func parseSubtitleFormat(s string) (subtitle.Format, error) {
	switch strings.ToLower(s) {
	case "srt":
		return subtitle.FormatSRT, nil
	case "vtt":
		return subtitle.FormatVTT, nil
	case "ass":
		return subtitle.FormatASS, nil
	default:
		return "", fmt.Errorf("unsupported format %q: use srt, vtt, or ass", s)
	}
}

func exportSubtitles(r textgrid.Result, format subtitle.Format) error {
	subs, err := subtitle.NewDefaultGenerator().Generate(subtitle.FromSpans(r.Spans))
	if err != nil {
		return fmt.Errorf("failed to generate subtitles: %w", err)
	}
	subs.Format = string(format)

	writer, err := subtitle.NewWriter(format)
	if err != nil {
		return err
	}
	path := strings.TrimSuffix(r.Job.Output, filepath.Ext(r.Job.Output)) + subtitle.GetExtensionForFormat(format)
	if err := writer.Write(subs, path); err != nil {
		return fmt.Errorf("failed to write subtitles: %w", err)
	}
	return nil
}
