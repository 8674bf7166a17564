package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/hay-kot/criterio"
)

// Validate checks that the configuration is valid. All field problems are
// reported together as criterio.FieldErrors.
func (c *Config) Validate() error {
	return criterio.ValidateStruct(
		criterio.Run("data_dir", c.DataDir, notBlank),
		criterio.Run("database_file", c.DatabaseFile, notBlank),
		criterio.Run("defaults.category", c.Defaults.Category, notBlank),
		criterio.Run("genai.endpoint", c.GenAI.Endpoint, httpURL),
		criterio.Run("genai.model", c.GenAI.Model, modelName),
		criterio.Run("genai.fast_model", c.GenAI.FastModel, modelName),
		c.validateGenAIRanges(),
	)
}

func (c *Config) validateGenAIRanges() error {
	var errs criterio.FieldErrorsBuilder
	if t := c.GenAI.Temperature; t < 0 || t > 2 {
		errs = errs.Append("genai.temperature", fmt.Errorf("must be between 0 and 2, got %g", t))
	}
	if c.GenAI.Timeout < 0 {
		errs = errs.Append("genai.timeout", fmt.Errorf("cannot be negative"))
	}
	return errs.ToError()
}

func notBlank(v string) error {
	if strings.TrimSpace(v) == "" {
		return errors.New("cannot be empty")
	}
	return nil
}

func httpURL(v string) error {
	u, err := url.Parse(v)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("must be an http(s) url, got %q", v)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host in %q", v)
	}
	return nil
}

func modelName(v string) error {
	if err := notBlank(v); err != nil {
		return err
	}
	if strings.ContainsAny(v, "/: ") {
		return fmt.Errorf("invalid model name %q", v)
	}
	return nil
}
