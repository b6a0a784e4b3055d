package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/scriptcorpus/internal/model"
	"github.com/ppiankov/scriptcorpus/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	normalizeStrict bool
	normalizeHTML   bool
	showDiagnostics bool
)

// normalizeCmd represents the normalize command
var normalizeCmd = &cobra.Command{
	Use:   "normalize [file]",
	Short: "Normalize one transcript and print the token lines",
	Long: `Normalize runs a single transcript through the line pipeline and prints
the normalized lines, ending with <eoepisode>. With no file, or "-", the
transcript is read from stdin.

Example:
  scriptcorpus normalize raw/e01.txt
  echo "NED: Winter is coming." | scriptcorpus normalize
  scriptcorpus normalize raw/e01.html --diagnostics`,
	Args: cobra.MaximumNArgs(1),
	RunE: runNormalize,
}

func init() {
	rootCmd.AddCommand(normalizeCmd)

	normalizeCmd.Flags().BoolVar(&normalizeStrict, "strict", false, "fail when any line produces a diagnostic")
	normalizeCmd.Flags().BoolVar(&normalizeHTML, "html", false, "treat stdin as HTML")
	normalizeCmd.Flags().BoolVar(&showDiagnostics, "diagnostics", false, "print line diagnostics to stderr")
}

func runNormalize(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	raw, err := readTranscript(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}

	strict := normalizeStrict || cfg.Normalize.Strict
	doc, normErr := pipeline.NewNormalizer(strict, logger).Normalize(raw)
	if doc != nil {
		if showDiagnostics {
			printDiagnostics(cmd.ErrOrStderr(), doc)
		}
		if normErr == nil {
			if _, err := fmt.Fprintln(cmd.OutOrStdout(), doc.Text()); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
		}
	}
	return normErr
}

func readTranscript(stdin io.Reader, args []string) (model.RawDocument, error) {
	if len(args) == 0 || args[0] == "-" {
		return pipeline.ReaderDocument("stdin", stdin, normalizeHTML)
	}
	path := args[0]
	if _, err := os.Stat(path); err != nil {
		return model.RawDocument{}, fmt.Errorf("transcript: %w", err)
	}
	return pipeline.ReadDocument(filepath.Clean(path))
}

func printDiagnostics(w io.Writer, doc *model.Document) {
	s := doc.Stats
	fmt.Fprintf(w, "%s: %d lines (%d empty, %d character, %d exposition, %d dropped), %d tokens (%d markers)\n",
		doc.ID, s.Raw, s.Empty, s.Character, s.Exposition, s.Dropped, s.Tokens, s.Markers)
	if len(doc.Diagnostics) == 0 {
		return
	}
	fmt.Fprintf(w, "%s\n", strings.Repeat("─", 59))
	for _, d := range doc.Diagnostics {
		fmt.Fprintf(w, "  %s\n", d)
	}
}
