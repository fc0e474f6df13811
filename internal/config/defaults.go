package config

const (
	defaultCacheDir          = "~/.cache/sup2srt"
	defaultOCRDPI            = 300
	defaultOCRScale          = 2
	defaultMinDurationMS     = 0
	defaultDefaultDurationMS = 3000
	defaultLogLevel          = "info"
	defaultLogFormat         = "auto"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		OCR: OCR{
			Languages: []string{"eng"},
			DPI:       defaultOCRDPI,
			Scale:     defaultOCRScale,
		},
		Cache: Cache{
			Enabled: true,
			Dir:     defaultCacheDir,
		},
		Output: Output{
			MinDurationMS:     defaultMinDurationMS,
			DefaultDurationMS: defaultDefaultDurationMS,
		},
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
	}
}
