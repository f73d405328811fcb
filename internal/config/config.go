package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Model locates the acoustic model and its word list files.
type Model struct {
	Dir               string `toml:"dir"`
	Dict              string `toml:"dict"`
	Phones            string `toml:"phones"`
	SampleRates       []int  `toml:"sample_rates"`
	DefaultSampleRate int    `toml:"default_sample_rate"`
}

// HTK contains decoder tool names and search settings.
type HTK struct {
	HCopy string  `toml:"hcopy"`
	HVite string  `toml:"hvite"`
	Prune float64 `toml:"prune"`
	Beam  float64 `toml:"beam"`
}

// Dictionary controls pronunciation dictionary generation.
type Dictionary struct {
	AppendPause    bool   `toml:"append_pause"`
	RomanizeLabels bool   `toml:"romanize_labels"`
	IncludeSilence bool   `toml:"include_silence"`
	LocalDict      string `toml:"local_dict"`
}

// Alignment controls label file generation and output labeling.
type Alignment struct {
	SurroundToken string `toml:"surround_token"`
	BetweenToken  string `toml:"between_token"`
	KeepWorkDir   bool   `toml:"keep_work_dir"`
	HangulLabels  bool   `toml:"hangul_labels"`
}

// Paths contains scratch directory configuration.
type Paths struct {
	WorkDir string `toml:"work_dir"`
}

// Logging configures the zap logger.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for kalign.
type Config struct {
	Model      Model      `toml:"model"`
	HTK        HTK        `toml:"htk"`
	Dictionary Dictionary `toml:"dictionary"`
	Alignment  Alignment  `toml:"alignment"`
	Paths      Paths      `toml:"paths"`
	Logging    Logging    `toml:"logging"`
}

// Load reads configuration from the provided path or the default locations.
// It returns the config, the resolved path and whether that file existed.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs(projectConfigName)
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	return defaultPath, false, nil
}

// DefaultConfigPath returns the user-level config location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPathPattern)
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath applies the config path rules (tilde, clean, absolute).
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// ModelDir returns the model directory for a sample rate.
func (c *Config) ModelDir(rate int) string {
	return filepath.Join(c.Model.Dir, strconv.Itoa(rate))
}

// SupportsRate reports whether a model exists for rate.
func (c *Config) SupportsRate(rate int) bool {
	for _, r := range c.Model.SampleRates {
		if r == rate {
			return true
		}
	}
	return false
}

// EnsureDirectories creates the scratch directory.
func (c *Config) EnsureDirectories() error {
	if err := os.MkdirAll(c.Paths.WorkDir, 0o755); err != nil {
		return fmt.Errorf("create %q: %w", c.Paths.WorkDir, err)
	}
	return nil
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
