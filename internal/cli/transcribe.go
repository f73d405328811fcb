package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mgpai22/kalign/internal/hangul"
	"github.com/mgpai22/kalign/internal/lexicon"
)

func newTranscribeCommand(a *app) *cobra.Command {
	var (
		file  string
		plain bool
	)

	cmd := &cobra.Command{
		Use:   "transcribe [text...]",
		Short: "Show the pronunciation of Korean words",
		Long: `Print the dictionary label and surface phones of every word of the given text.

Examples:
  kalign transcribe 안녕하세요
  kalign transcribe 밥먹다 좋고 --plain
  kalign transcribe --file script.txt`,
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			if file != "" {
				t, err := readTranscript(file, a.logger)
				if err != nil {
					return err
				}
				text = t
			}
			words := lexicon.Words(text)
			if len(words) == 0 {
				return fmt.Errorf("no words to transcribe: pass text or --file")
			}

			builder := lexicon.NewBuilder(dictOptions(cmd, a))
			out := cmd.OutOrStdout()

			rows := make([][]string, 0, len(words))
			for _, w := range words {
				seq := builder.Pronounce(w)
				if plain {
					fmt.Fprintf(out, "%s\t%s\n", w, seq)
					continue
				}
				hint := ""
				if !hangul.ContainsHangul(w) {
					hint = "(not Hangul)"
				}
				rows = append(rows, []string{w, builder.Label(w), seq.String(), hint})
			}

			if !plain {
				fmt.Fprintln(out, renderTable(
					[]string{"Word", "Label", "Phones", ""},
					rows,
					nil,
				))
			}
			if st := builder.Stats(); st.Unmapped > 0 {
				a.logger.Warnw("unmapped symbols during transcription", "count", st.Unmapped)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Read text from a transcript file")
	cmd.Flags().BoolVar(&plain, "plain", false, "Print tab-separated word and phones")
	addDictFlags(cmd)
	return cmd
}
