package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// OCR contains text recognition settings.
type OCR struct {
	// Languages are subtitle languages as ISO codes or names; they are
	// resolved to Tesseract traineddata codes at validation time.
	Languages []string `toml:"languages"`
	// Workers is the number of parallel OCR workers; 0 means one per CPU.
	Workers int `toml:"workers"`
	// DPI is passed to Tesseract as user_defined_dpi.
	DPI int `toml:"dpi"`
	// Scale upscales subtitle bitmaps by an integer factor before OCR.
	Scale int `toml:"scale"`
	// PageSegMode overrides Tesseract's page segmentation mode when > 0.
	PageSegMode int `toml:"page_seg_mode"`
}

// Cache contains OCR result cache settings.
type Cache struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

// Output contains SRT generation settings.
type Output struct {
	// MinDurationMS drops cues displayed for less than this many
	// milliseconds.
	MinDurationMS int `toml:"min_duration_ms"`
	// DefaultDurationMS closes subtitles the stream never cleared.
	DefaultDurationMS int `toml:"default_duration_ms"`
}

// Logging contains log output settings.
type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Config is the root configuration document.
type Config struct {
	OCR     OCR     `toml:"ocr"`
	Cache   Cache   `toml:"cache"`
	Output  Output  `toml:"output"`
	Logging Logging `toml:"logging"`
}

// Sample returns the embedded sample configuration document.
func Sample() string {
	return sampleConfig
}

// DefaultConfigPath returns the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/sup2srt/config.toml")
}

// Load locates, parses and validates a configuration file. When no file
// exists the defaults are returned; exists reports whether a file was read.
func Load(path string) (cfg *Config, resolvedPath string, exists bool, err error) {
	value := Default()

	resolvedPath, exists, err = resolveConfigPath(path)
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
		if err := decoder.Decode(&value); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := value.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := value.Validate(); err != nil {
		return nil, "", false, err
	}
	return &value, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
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
	projectPath, err := filepath.Abs("sup2srt.toml")
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

func expandPath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", nil
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return filepath.Clean(path), nil
}
