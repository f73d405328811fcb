package cli

import (
	"bufio"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mgpai22/kalign/internal/lexicon"
	"github.com/mgpai22/kalign/internal/phone"
)

func newDictCommand(a *app) *cobra.Command {
	var localDict string

	cmd := &cobra.Command{
		Use:   "dict [transcript]",
		Short: "Build a pronunciation dictionary from a transcript",
		Long: `Build an HTK pronunciation dictionary for every distinct word of a transcript.

The transcript may be plain text in UTF-8, UTF-16 or CP949, or a subtitle file
(srt, vtt, ass) whose cue text is used. Words whose pronunciation comes out
empty are skipped and reported.

Examples:
  kalign dict script.txt -o script.dict
  kalign dict talk.srt --pause=false --local extra.dict`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readTranscript(args[0], a.logger)
			if err != nil {
				return err
			}

			opts := dictOptions(cmd, a)
			builder := lexicon.NewBuilder(opts)
			dict, skipped := builder.Build(lexicon.Words(text))
			for _, s := range skipped {
				a.logger.Warnw("word skipped", "word", s.Word, "reason", s.Reason)
			}
			if st := builder.Stats(); st.Unmapped > 0 {
				a.logger.Warnw("unmapped symbols during transcription", "count", st.Unmapped)
			}

			if localDict == "" {
				localDict = a.cfg.Dictionary.LocalDict
			}
			if localDict != "" {
				local, err := lexicon.LoadFile(localDict)
				if err != nil {
					return err
				}
				dict = lexicon.Merge(dict, local)
			}

			out, err := openOutput(cmd, a.output)
			if err != nil {
				return err
			}
			if err := dict.Write(out); err != nil {
				out.Close()
				return fmt.Errorf("failed to write dictionary: %w", err)
			}
			if err := out.Close(); err != nil {
				return err
			}

			a.logger.Infow("dictionary written",
				"entries", dict.Len(),
				"skipped", len(skipped),
				"output", a.output,
			)
			return nil
		},
	}

	addDictFlags(cmd)
	cmd.Flags().StringVar(&localDict, "local", "", "Extra dictionary merged into the result")
	return cmd
}

func addDictFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("pause", true, "Append sp to every entry (default from config)")
	cmd.Flags().Bool("romanize", true, "Use ASCII syllable-name labels (default from config)")
	cmd.Flags().Bool("silence", true, "Include sil/sp definitions (default from config)")
}

// dictOptions reads the dictionary settings, letting explicit flags win.
func dictOptions(cmd *cobra.Command, a *app) lexicon.Options {
	opts := lexicon.Options{
		AppendPause:    a.cfg.Dictionary.AppendPause,
		Romanize:       a.cfg.Dictionary.RomanizeLabels,
		IncludeSilence: a.cfg.Dictionary.IncludeSilence,
	}
	if cmd.Flags().Changed("pause") {
		opts.AppendPause, _ = cmd.Flags().GetBool("pause")
	}
	if cmd.Flags().Changed("romanize") {
		opts.Romanize, _ = cmd.Flags().GetBool("romanize")
	}
	if cmd.Flags().Changed("silence") {
		opts.IncludeSilence, _ = cmd.Flags().GetBool("silence")
	}
	return opts
}

func newMergeCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "merge [destination] [source...]",
		Short: "Merge dictionaries into one sorted, de-duplicated file",
		Long: `Merge dictionary files line by line into destination. The destination may
also be a source. Concurrent merges into the same file are serialized with a
lock file next to it.

Examples:
  kalign merge all.dict model.dict script.dict
  kalign merge all.dict all.dict extra.dict`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := lexicon.MergeFiles(cmd.Context(), args[0], args[1:]...)
			if err != nil {
				return err
			}
			a.logger.Infow("dictionaries merged", "output", args[0], "sources", len(args)-1, "lines", n)
			fmt.Fprintf(cmd.OutOrStdout(), "Merged %d lines into %s\n", n, args[0])
			return nil
		},
	}
}

func newStripPauseCommand(a *app) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "strip-pause [dictionary]",
		Short: "Remove trailing sp from dictionary entries",
		Long: `Remove the trailing short pause from every entry except the sil and sp
definitions. The original file is kept with a ` + lexicon.BackupSuffix + ` suffix.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			dict, err := lexicon.LoadFile(path)
			if err != nil {
				return err
			}
			st := lexicon.AnalyzePause(dict)

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]string{"Entries", "With sp", "Without sp"},
				[][]string{{strconv.Itoa(st.Total), strconv.Itoa(st.WithPause), strconv.Itoa(st.Without)}},
				[]columnAlignment{alignRight, alignRight, alignRight},
			))
			if dryRun {
				return nil
			}

			n, err := lexicon.StripPauseFile(path)
			if err != nil {
				return err
			}
			a.logger.Infow("pauses stripped", "path", path, "entries", n, "backup", path+lexicon.BackupSuffix)
			fmt.Fprintf(out, "Stripped sp from %d entries (backup: %s)\n", n, path+lexicon.BackupSuffix)
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Only report counts")
	return cmd
}

func newPhonesCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "phones [dictionary]",
		Short: "Write the phone list of a dictionary",
		Long: `Write the sorted phones used by a dictionary, one per line. Without a
dictionary the surface phone inventory is written; coda clusters such as lg
are left out since the rules never emit them.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := openOutput(cmd, a.output)
			if err != nil {
				return err
			}

			if len(args) == 1 {
				dict, err := lexicon.LoadFile(args[0])
				if err != nil {
					out.Close()
					return err
				}
				err = lexicon.WritePhoneList(out, dict)
				if cerr := out.Close(); err == nil {
					err = cerr
				}
				return err
			}

			bw := bufio.NewWriter(out)
			for _, p := range phone.Inventory() {
				bw.WriteString(string(p) + "\n")
			}
			err = bw.Flush()
			if cerr := out.Close(); err == nil {
				err = cerr
			}
			return err
		},
	}
}
