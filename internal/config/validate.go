package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateModel(); err != nil {
		return err
	}
	if err := c.validateHTK(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateModel() error {
	for _, rate := range c.Model.SampleRates {
		if rate <= 0 {
			return fmt.Errorf("model.sample_rates: invalid rate %d", rate)
		}
	}
	if !c.SupportsRate(c.Model.DefaultSampleRate) {
		return fmt.Errorf(
			"model.default_sample_rate %d is not one of model.sample_rates %v",
			c.Model.DefaultSampleRate, c.Model.SampleRates,
		)
	}
	return nil
}

func (c *Config) validateHTK() error {
	if c.HTK.Beam < 0 {
		return errors.New("htk.beam must be non-negative")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level %q must be one of debug, info, warn, error", c.Logging.Level)
	}
}
