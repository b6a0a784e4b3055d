package cli

import (
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/ppiankov/scriptcorpus/internal/model"
	"github.com/ppiankov/scriptcorpus/internal/store"
	"github.com/spf13/cobra"
)

var manifestRun int64

// manifestCmd represents the manifest command
var manifestCmd = &cobra.Command{
	Use:   "manifest [db]",
	Short: "Show the split assignment and diagnostics of a recorded build",
	Long: `Manifest reads the sqlite manifest written by "build --manifest" and
prints which split every document landed in, with its token count, and the
number of diagnostics of each kind. The latest run is shown unless --run
selects another one.

Example:
  scriptcorpus manifest corpus.db
  scriptcorpus manifest corpus.db --run 3`,
	Args: cobra.MaximumNArgs(1),
	RunE: runManifest,
}

func init() {
	rootCmd.AddCommand(manifestCmd)

	manifestCmd.Flags().Int64Var(&manifestRun, "run", 0, "run id to show (default: latest)")
}

func runManifest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	path := cfg.Manifest.Path
	if len(args) == 1 {
		path = args[0]
	}
	if path == "" {
		return errors.New("no manifest: pass a database path or set manifest.path")
	}

	s, err := store.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	ctx := cmd.Context()
	runID := manifestRun
	if runID == 0 {
		if runID, err = s.LatestRunID(ctx); err != nil {
			return err
		}
		if runID == 0 {
			return fmt.Errorf("manifest %s has no recorded runs", path)
		}
	} else {
		ok, err := s.HasRun(ctx, runID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("manifest %s has no run %d", path, runID)
		}
	}

	splits, err := s.Splits(ctx, runID)
	if err != nil {
		return err
	}
	counts, err := s.DiagnosticCounts(ctx, runID)
	if err != nil {
		return err
	}

	printManifest(cmd.OutOrStdout(), path, runID, splits, counts)
	return nil
}

func printManifest(w io.Writer, path string, runID int64, splits []store.DocumentSplit, counts map[model.DiagnosticKind]int) {
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(w, "  Scriptcorpus Manifest\n")
	fmt.Fprintf(w, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "  Manifest:     %s\n", path)
	fmt.Fprintf(w, "  Run:          %d\n", runID)
	fmt.Fprintf(w, "\n")

	for _, ds := range splits {
		split := ds.Split
		if split == "" {
			split = "-"
		}
		fmt.Fprintf(w, "  %-6s %8d  %s\n", split, ds.Tokens, ds.DocID)
	}
	if len(splits) == 0 {
		fmt.Fprintf(w, "  (no documents)\n")
	}
	fmt.Fprintf(w, "\n")

	kinds := make([]model.DiagnosticKind, 0, len(counts))
	for kind := range counts {
		kinds = append(kinds, kind)
	}
	slices.Sort(kinds)
	fmt.Fprintf(w, "  Diagnostics:\n")
	for _, kind := range kinds {
		fmt.Fprintf(w, "    %-18s %d\n", kind, counts[kind])
	}
	if len(kinds) == 0 {
		fmt.Fprintf(w, "    none\n")
	}
	fmt.Fprintf(w, "\n")
}
