package config

import (
	"fmt"
	"strings"

	"sup2srt/internal/language"
)

func (c *Config) normalize() error {
	langs := c.OCR.Languages[:0]
	for _, tag := range c.OCR.Languages {
		tag = strings.TrimSpace(tag)
		if tag != "" {
			langs = append(langs, tag)
		}
	}
	c.OCR.Languages = langs

	dir, err := expandPath(c.Cache.Dir)
	if err != nil {
		return err
	}
	c.Cache.Dir = dir

	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	return nil
}

// Validate checks field ranges and language resolvability.
func (c *Config) Validate() error {
	if len(c.OCR.Languages) == 0 {
		return fmt.Errorf("ocr.languages: at least one language is required")
	}
	if _, err := language.TesseractCodes(c.OCR.Languages); err != nil {
		return fmt.Errorf("ocr.languages: %w", err)
	}
	if c.OCR.Workers < 0 {
		return fmt.Errorf("ocr.workers: must not be negative")
	}
	if c.OCR.DPI < 0 {
		return fmt.Errorf("ocr.dpi: must not be negative")
	}
	if c.OCR.Scale < 1 || c.OCR.Scale > 8 {
		return fmt.Errorf("ocr.scale: must be between 1 and 8")
	}
	if c.OCR.PageSegMode < 0 || c.OCR.PageSegMode > 13 {
		return fmt.Errorf("ocr.page_seg_mode: must be between 0 and 13")
	}
	if c.Cache.Enabled && strings.TrimSpace(c.Cache.Dir) == "" {
		return fmt.Errorf("cache.dir: required when the cache is enabled")
	}
	if c.Output.MinDurationMS < 0 {
		return fmt.Errorf("output.min_duration_ms: must not be negative")
	}
	if c.Output.DefaultDurationMS <= 0 {
		return fmt.Errorf("output.default_duration_ms: must be positive")
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "auto", "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	return nil
}
