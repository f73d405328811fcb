package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mgpai22/kalign/internal/config"
	"github.com/mgpai22/kalign/internal/logging"
)

const skipConfigLoad = "skipConfigLoad"

// shared flag values and the loaded configuration
type app struct {
	verbose    bool
	output     string
	configPath string

	cfg    *config.Config
	logger *logging.Logger
}

func NewRootCommand() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "kalign",
		Short: "Korean forced alignment toolkit",
		Long: `kalign turns Korean transcripts into pronunciation dictionaries for an HTK
acoustic model, runs the aligner, and converts its output into Praat TextGrids.

Hangul is converted to phones with the standard pronunciation rules
(neutralization, nasalization, liquid alternation and friends).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	rootCmd.PersistentFlags().
		BoolVarP(&a.verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		StringVarP(&a.output, "output", "o", "", "Output file path")
	rootCmd.PersistentFlags().
		StringVar(&a.configPath, "config", "", "Config file (default ~/.config/kalign/config.toml or ./kalign.toml)")

	rootCmd.AddCommand(
		newAlignCommand(a),
		newDictCommand(a),
		newMergeCommand(a),
		newTranscribeCommand(a),
		newTextGridCommand(a),
		newPhonesCommand(a),
		newStripPauseCommand(a),
		newConfigCommand(a),
	)
	return rootCmd
}

func (a *app) setup(cmd *cobra.Command) error {
	if cmd.Annotations[skipConfigLoad] == "true" {
		a.logger = logging.NewLogger(a.verbose)
		return nil
	}

	cfg, path, exists, err := config.Load(a.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	a.cfg = cfg

	opts := logging.Options{Level: cfg.Logging.Level, Format: cfg.Logging.Format}
	if a.verbose {
		opts.Level = "debug"
	}
	if a.logger, err = logging.New(opts); err != nil {
		return err
	}
	a.logger.Debugw("configuration loaded", "path", path, "exists", exists)
	return nil
}

func Execute() error {
	rootCmd := NewRootCommand()
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(rootCmd.ErrOrStderr(), "Error:", err)
		return err
	}
	return nil
}
