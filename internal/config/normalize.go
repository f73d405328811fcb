package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizeModel(); err != nil {
		return err
	}
	c.normalizeHTK()
	if err := c.normalizeDictionary(); err != nil {
		return err
	}
	c.normalizeAlignment()
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizeModel() error {
	if value, ok := os.LookupEnv(modelDirEnv); ok && strings.TrimSpace(value) != "" {
		c.Model.Dir = strings.TrimSpace(value)
	}
	if strings.TrimSpace(c.Model.Dir) == "" {
		c.Model.Dir = defaultModelDir
	}

	var err error
	if c.Model.Dir, err = expandPath(c.Model.Dir); err != nil {
		return fmt.Errorf("model.dir: %w", err)
	}
	if c.Model.Dict, err = c.modelFile(c.Model.Dict, defaultDictName); err != nil {
		return fmt.Errorf("model.dict: %w", err)
	}
	if c.Model.Phones, err = c.modelFile(c.Model.Phones, defaultPhonesName); err != nil {
		return fmt.Errorf("model.phones: %w", err)
	}

	if len(c.Model.SampleRates) == 0 {
		c.Model.SampleRates = append([]int(nil), defaultSampleRates...)
	}
	slices.Sort(c.Model.SampleRates)
	c.Model.SampleRates = slices.Compact(c.Model.SampleRates)
	if c.Model.DefaultSampleRate == 0 {
		c.Model.DefaultSampleRate = defaultSampleRate
	}
	return nil
}

// relative model files live in the model directory
func (c *Config) modelFile(value, fallback string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		value = fallback
	}
	if !strings.HasPrefix(value, "~") && !filepath.IsAbs(value) {
		value = filepath.Join(c.Model.Dir, value)
	}
	return expandPath(value)
}

func (c *Config) normalizeHTK() {
	c.HTK.HCopy = strings.TrimSpace(c.HTK.HCopy)
	if c.HTK.HCopy == "" {
		c.HTK.HCopy = defaultHCopy
	}
	c.HTK.HVite = strings.TrimSpace(c.HTK.HVite)
	if c.HTK.HVite == "" {
		c.HTK.HVite = defaultHVite
	}
}

func (c *Config) normalizeDictionary() error {
	var err error
	if c.Dictionary.LocalDict, err = expandPath(strings.TrimSpace(c.Dictionary.LocalDict)); err != nil {
		return fmt.Errorf("dictionary.local_dict: %w", err)
	}
	return nil
}

func (c *Config) normalizeAlignment() {
	c.Alignment.SurroundToken = strings.TrimSpace(c.Alignment.SurroundToken)
	c.Alignment.BetweenToken = strings.TrimSpace(c.Alignment.BetweenToken)
}

func (c *Config) normalizePaths() error {
	if strings.TrimSpace(c.Paths.WorkDir) == "" {
		c.Paths.WorkDir = defaultWorkDir
	}
	var err error
	if c.Paths.WorkDir, err = expandPath(c.Paths.WorkDir); err != nil {
		return fmt.Errorf("paths.work_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
