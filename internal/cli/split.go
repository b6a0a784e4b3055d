package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/ppiankov/scriptcorpus/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	splitDivisor   int
	splitOutputDir string
)

// splitCmd represents the split command
var splitCmd = &cobra.Command{
	Use:   "split <corpus>",
	Short: "Re-split an existing concatenated corpus into train/valid/test",
	Long: `Split cuts an existing corpus file on <eoepisode> and writes the PTB
split files without renormalizing any transcript.

Example:
  scriptcorpus split all.txt
  scriptcorpus split all.txt --test-divisor 20 --output-dir ./corpus`,
	Args: cobra.ExactArgs(1),
	RunE: runSplit,
}

func init() {
	rootCmd.AddCommand(splitCmd)

	splitCmd.Flags().IntVar(&splitDivisor, "test-divisor", 0, "test episodes = episodes / divisor (default from config)")
	splitCmd.Flags().StringVar(&splitOutputDir, "output-dir", "", "directory for the split files (default from config)")
}

func runSplit(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read corpus: %w", err)
	}

	divisor := cfg.Split.TestDivisor
	if splitDivisor > 0 {
		divisor = splitDivisor
	}
	out := cfg.Output
	out.AllFile = ""
	if splitOutputDir != "" {
		out.Dir = splitOutputDir
	}

	splits := pipeline.SplitCorpus(string(data), divisor)
	written, err := pipeline.NewFileSink(out).WriteCorpus(cmd.Context(), string(data), splits)
	if err != nil {
		return err
	}

	logger.Info("corpus split",
		slog.Int("episodes", splits.Episodes()),
		slog.Int("test", len(splits.Test)),
		slog.Int("valid", len(splits.Valid)),
		slog.Int("train", len(splits.Train)))

	w := cmd.ErrOrStderr()
	fmt.Fprintf(w, "  Episodes:  %d (test %d, valid %d, train %d)\n",
		splits.Episodes(), len(splits.Test), len(splits.Valid), len(splits.Train))
	for _, path := range written {
		fmt.Fprintf(w, "  ✓ %s\n", path)
	}
	return nil
}
