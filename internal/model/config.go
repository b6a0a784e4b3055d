package model

import (
	"os"
	"path/filepath"
	"runtime"
	"time"
)

// Config holds all settings for a corpus build
type Config struct {
	Input     InputConfig     `yaml:"input" mapstructure:"input"`
	Output    OutputConfig    `yaml:"output" mapstructure:"output"`
	Normalize NormalizeConfig `yaml:"normalize" mapstructure:"normalize"`
	Split     SplitConfig     `yaml:"split" mapstructure:"split"`
	Cache     CacheConfig     `yaml:"cache" mapstructure:"cache"`
	Manifest  ManifestConfig  `yaml:"manifest" mapstructure:"manifest"`
	Logging   LoggingConfig   `yaml:"logging" mapstructure:"logging"`
}

// InputConfig controls transcript discovery
type InputConfig struct {
	Dir      string   `yaml:"dir" mapstructure:"dir"`           // Directory holding raw transcripts
	Patterns []string `yaml:"patterns" mapstructure:"patterns"` // Glob patterns matched against file names
}

// OutputConfig controls where artifacts are written
type OutputConfig struct {
	NormalizedDir string `yaml:"normalized_dir" mapstructure:"normalized_dir"` // Per-document normalized files
	Dir           string `yaml:"dir" mapstructure:"dir"`                       // Directory for corpus-level files
	AllFile       string `yaml:"all_file" mapstructure:"all_file"`             // Concatenated corpus
	TrainFile     string `yaml:"train_file" mapstructure:"train_file"`
	ValidFile     string `yaml:"valid_file" mapstructure:"valid_file"`
	TestFile      string `yaml:"test_file" mapstructure:"test_file"`
	Archive       string `yaml:"archive" mapstructure:"archive"` // tar.gz of corpus files, empty disables
}

// NormalizeConfig controls the line pipeline
type NormalizeConfig struct {
	Strict  bool `yaml:"strict" mapstructure:"strict"`   // Fail a document on any diagnostic
	Workers int  `yaml:"workers" mapstructure:"workers"` // Concurrent document workers
}

// SplitConfig controls the train/valid/test partition
type SplitConfig struct {
	TestDivisor int `yaml:"test_divisor" mapstructure:"test_divisor"` // test_n = floor(n / TestDivisor)
}

// CacheConfig controls caching of normalized documents
type CacheConfig struct {
	Enabled bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir     string        `yaml:"dir" mapstructure:"dir"`
	TTL     time.Duration `yaml:"ttl" mapstructure:"ttl"`
}

// ManifestConfig controls the sqlite run manifest
type ManifestConfig struct {
	Path string `yaml:"path" mapstructure:"path"` // Empty disables the manifest
}

// LoggingConfig controls the application logger
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `yaml:"format" mapstructure:"format"` // console or json
	Source bool   `yaml:"source" mapstructure:"source"`
	File   string `yaml:"file" mapstructure:"file"` // Optional rotated log file
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	cacheDir := ".scriptcorpus-cache"
	if home, err := os.UserHomeDir(); err == nil {
		cacheDir = filepath.Join(home, ".scriptcorpus", "cache")
	}

	return &Config{
		Input: InputConfig{
			Dir:      "raw",
			Patterns: []string{"*.txt", "*.html", "*.htm"},
		},
		Output: OutputConfig{
			NormalizedDir: "normalized",
			Dir:           ".",
			AllFile:       "all.txt",
			TrainFile:     "ptb.train.txt",
			ValidFile:     "ptb.valid.txt",
			TestFile:      "ptb.test.txt",
			Archive:       "GoT-scripts.tar.gz",
		},
		Normalize: NormalizeConfig{
			Strict:  false,
			Workers: runtime.NumCPU(),
		},
		Split: SplitConfig{
			TestDivisor: 10,
		},
		Cache: CacheConfig{
			Enabled: true,
			Dir:     cacheDir,
			TTL:     7 * 24 * time.Hour,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
