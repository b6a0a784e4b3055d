package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/scriptcorpus/internal/logging"
	"github.com/ppiankov/scriptcorpus/internal/model"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Version is the release version reported by the version command
var Version = "v0.1.0"

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "scriptcorpus",
	Short: "Scriptcorpus - screenplay transcripts to a tokenized language-model corpus",
	Long: `Scriptcorpus turns raw TV screenplay transcripts into a normalized,
tokenized text corpus for training language models.

Each transcript line is classified as character dialogue or exposition,
rewritten into marker tokens (<boname>, <eos>, <open-exp>, ...), and each
episode is terminated with <eoepisode>. The concatenated corpus is then
split by episode into train, validation and test files in the PTB layout.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number of scriptcorpus.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "scriptcorpus %s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.scriptcorpus/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logging)")
	rootCmd.PersistentFlags().String("log-format", "console", "log format (console, json)")
	rootCmd.PersistentFlags().String("log-file", "", "also write JSON logs to this rotated file")

	// Bind flags to viper
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("logging.format", rootCmd.PersistentFlags().Lookup("log-format"))
	_ = viper.BindPFlag("logging.file", rootCmd.PersistentFlags().Lookup("log-file"))

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	setDefaults(model.DefaultConfig())

	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		viper.AddConfigPath(filepath.Join(home, ".scriptcorpus"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match SCRIPTCORPUS_*, e.g. SCRIPTCORPUS_INPUT_DIR
	viper.SetEnvPrefix("SCRIPTCORPUS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// setDefaults registers every config key so environment variables and
// config files can override any of them.
func setDefaults(cfg *model.Config) {
	viper.SetDefault("input.dir", cfg.Input.Dir)
	viper.SetDefault("input.patterns", cfg.Input.Patterns)

	viper.SetDefault("output.normalized_dir", cfg.Output.NormalizedDir)
	viper.SetDefault("output.dir", cfg.Output.Dir)
	viper.SetDefault("output.all_file", cfg.Output.AllFile)
	viper.SetDefault("output.train_file", cfg.Output.TrainFile)
	viper.SetDefault("output.valid_file", cfg.Output.ValidFile)
	viper.SetDefault("output.test_file", cfg.Output.TestFile)
	viper.SetDefault("output.archive", cfg.Output.Archive)

	viper.SetDefault("normalize.strict", cfg.Normalize.Strict)
	viper.SetDefault("normalize.workers", cfg.Normalize.Workers)

	viper.SetDefault("split.test_divisor", cfg.Split.TestDivisor)

	viper.SetDefault("cache.enabled", cfg.Cache.Enabled)
	viper.SetDefault("cache.dir", cfg.Cache.Dir)
	viper.SetDefault("cache.ttl", cfg.Cache.TTL)

	viper.SetDefault("manifest.path", cfg.Manifest.Path)

	viper.SetDefault("logging.level", cfg.Logging.Level)
	viper.SetDefault("logging.format", cfg.Logging.Format)
	viper.SetDefault("logging.source", cfg.Logging.Source)
	viper.SetDefault("logging.file", cfg.Logging.File)
}

// loadConfig resolves the effective configuration from defaults, config
// file, environment and bound flags.
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if viper.GetBool("verbose") {
		cfg.Logging.Level = "debug"
	}
	return cfg, nil
}

func newLogger(cfg *model.Config) *slog.Logger {
	return logging.New(logging.Options{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		AddSource: cfg.Logging.Source,
		File:      cfg.Logging.File,
	})
}
