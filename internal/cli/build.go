package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/ppiankov/scriptcorpus/internal/model"
	"github.com/ppiankov/scriptcorpus/internal/pipeline"
	"github.com/ppiankov/scriptcorpus/internal/store"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

var (
	buildTimeout time.Duration
	reportPath   string
)

// buildCmd represents the build command
var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Normalize every transcript and build the train/valid/test corpus",
	Long: `Build runs the full corpus pipeline:
- Read every transcript matching the input patterns, ordered by file name
- Normalize documents in parallel (cached by content)
- Write one normalized file per transcript
- Concatenate them into the corpus file and split it by episode
  (first 10% test, next 10% valid, remaining 80% train)
- Bundle the corpus files into a tar.gz archive
- Optionally record the run in a sqlite manifest

Example:
  scriptcorpus build
  scriptcorpus build --input ./raw --output-dir ./corpus --workers 8
  scriptcorpus build --strict --manifest corpus.db --report run.yaml`,
	Args: cobra.NoArgs,
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)

	// Input/output flags
	buildCmd.Flags().String("input", "", "directory holding raw transcripts")
	buildCmd.Flags().String("normalized-dir", "", "directory for per-transcript normalized files")
	buildCmd.Flags().String("output-dir", "", "directory for the corpus, split files and archive")
	buildCmd.Flags().String("archive", "", "archive file name (empty string in config disables)")

	// Processing flags
	buildCmd.Flags().Bool("strict", false, "fail when any line produces a diagnostic")
	buildCmd.Flags().Int("workers", 0, "number of concurrent normalization workers")
	buildCmd.Flags().Int("test-divisor", 0, "test episodes = episodes / divisor")
	buildCmd.Flags().Bool("no-cache", false, "disable the normalized document cache")
	buildCmd.Flags().String("manifest", "", "sqlite manifest path (records the run)")

	buildCmd.Flags().DurationVar(&buildTimeout, "timeout", 0, "overall build timeout (0 = none)")
	buildCmd.Flags().StringVar(&reportPath, "report", "", "write the run report as YAML to this path")

	bind := map[string]string{
		"input.dir":             "input",
		"output.normalized_dir": "normalized-dir",
		"output.dir":            "output-dir",
		"output.archive":        "archive",
		"normalize.strict":      "strict",
		"normalize.workers":     "workers",
		"split.test_divisor":    "test-divisor",
		"manifest.path":         "manifest",
	}
	for key, flag := range bind {
		_ = viper.BindPFlag(key, buildCmd.Flags().Lookup(flag))
	}
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if noCache, _ := cmd.Flags().GetBool("no-cache"); noCache {
		cfg.Cache.Enabled = false
	}
	logger := newLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if buildTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, buildTimeout)
		defer cancel()
	}

	stderr := cmd.ErrOrStderr()
	fmt.Fprintf(stderr, "\n")
	fmt.Fprintf(stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(stderr, "  Scriptcorpus Build\n")
	fmt.Fprintf(stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(stderr, "\n")
	fmt.Fprintf(stderr, "  Input dir:    %s\n", cfg.Input.Dir)
	fmt.Fprintf(stderr, "  Normalized:   %s\n", cfg.Output.NormalizedDir)
	fmt.Fprintf(stderr, "  Output dir:   %s\n", cfg.Output.Dir)
	fmt.Fprintf(stderr, "  Workers:      %d\n", cfg.Normalize.Workers)
	fmt.Fprintf(stderr, "  Strict:       %v\n", cfg.Normalize.Strict)
	fmt.Fprintf(stderr, "  Cache:        %v\n", cfg.Cache.Enabled)
	fmt.Fprintf(stderr, "\n")

	opts := []pipeline.Option{pipeline.WithLogger(logger)}
	if cfg.Manifest.Path != "" {
		manifest, err := store.Open(cfg.Manifest.Path)
		if err != nil {
			return err
		}
		defer func() { _ = manifest.Close() }()
		opts = append(opts, pipeline.WithRecorder(manifest))
	}

	report, err := pipeline.NewPipeline(cfg, opts...).Run(ctx)
	if err != nil {
		return fmt.Errorf("build failed: %w", err)
	}

	if reportPath != "" {
		if err := writeReport(reportPath, report); err != nil {
			return err
		}
	}

	printSummary(stderr, report)
	return nil
}

func writeReport(path string, report *model.RunReport) error {
	data, err := yaml.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create report dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

func printSummary(w io.Writer, report *model.RunReport) {
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(w, "  Build Complete\n")
	fmt.Fprintf(w, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "  Documents:    %d (%d cached)\n", len(report.Documents), report.CacheHits)
	fmt.Fprintf(w, "  Episodes:     %d\n", report.Splits.Episodes)
	fmt.Fprintf(w, "  Test:         %d\n", report.Splits.Test)
	fmt.Fprintf(w, "  Valid:        %d\n", report.Splits.Valid)
	fmt.Fprintf(w, "  Train:        %d\n", report.Splits.Train)
	fmt.Fprintf(w, "  Tokens:       %d\n", report.Tokens)
	fmt.Fprintf(w, "  Diagnostics:  %d\n", report.Diagnostics)
	fmt.Fprintf(w, "  Duration:     %v\n", report.Duration.Round(time.Millisecond))
	fmt.Fprintf(w, "\n")
	for _, out := range report.Outputs[len(report.Documents):] {
		fmt.Fprintf(w, "  ✓ %s\n", out)
	}
	fmt.Fprintf(w, "\n")
}
