package convert

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"sup2srt/internal/config"
	"sup2srt/internal/language"
	"sup2srt/internal/logging"
	"sup2srt/internal/ocr"
	"sup2srt/internal/ocrcache"
	"sup2srt/internal/pgs"
	"sup2srt/internal/render"
	"sup2srt/internal/srt"
	"sup2srt/internal/textutil"
)

// Options describe one conversion run. Languages must already be Tesseract
// traineddata codes.
type Options struct {
	Languages       []string
	Workers         int
	Scale           int
	DPI             int
	PageSegMode     int
	CacheDir        string
	MinDuration     time.Duration
	DefaultDuration time.Duration
}

// Report summarizes a completed conversion.
type Report struct {
	DisplaySets  int
	Bitmaps      int
	CacheHits    int
	Recognized   int
	DroppedEmpty int
	Cues         int
	Elapsed      time.Duration
}

// Converter runs the sup-to-srt pipeline.
type Converter struct {
	opts      Options
	newEngine ocr.EngineFactory
	logger    *slog.Logger
}

// New builds a Tesseract-backed converter from configuration.
func New(cfg *config.Config, logger *slog.Logger) (*Converter, error) {
	codes, err := language.TesseractCodes(cfg.OCR.Languages)
	if err != nil {
		return nil, wrap(ErrConfiguration, "resolve languages", "", err)
	}

	opts := Options{
		Languages:       codes,
		Workers:         cfg.OCR.Workers,
		Scale:           cfg.OCR.Scale,
		DPI:             cfg.OCR.DPI,
		PageSegMode:     cfg.OCR.PageSegMode,
		MinDuration:     time.Duration(cfg.Output.MinDurationMS) * time.Millisecond,
		DefaultDuration: time.Duration(cfg.Output.DefaultDurationMS) * time.Millisecond,
	}
	if cfg.Cache.Enabled {
		opts.CacheDir = cfg.Cache.Dir
	}

	factory := ocr.NewTesseractFactory(ocr.TesseractOptions{
		Languages:   codes,
		DPI:         cfg.OCR.DPI,
		PageSegMode: cfg.OCR.PageSegMode,
	})
	return NewWithEngine(opts, factory, logger), nil
}

// NewWithEngine builds a converter around an explicit engine factory.
func NewWithEngine(opts Options, factory ocr.EngineFactory, logger *slog.Logger) *Converter {
	return &Converter{
		opts:      opts,
		newEngine: factory,
		logger:    logging.NewComponentLogger(logger, "convert"),
	}
}

// Convert reads a PGS stream and writes the resulting SRT document. The
// document is buffered and only written to w after the whole pipeline
// succeeds, so a failure never leaves partial output behind.
func (c *Converter) Convert(ctx context.Context, r io.Reader, w io.Writer) (Report, error) {
	start := time.Now()
	logger := c.logger.With(logging.String("run_id", uuid.NewString()))

	names := make([]string, len(c.opts.Languages))
	for i, code := range c.opts.Languages {
		names[i] = language.Display(code)
	}
	logger.Info("starting conversion",
		logging.Any("languages", names),
		logging.Int("workers", c.opts.Workers))

	var report Report

	sets, err := pgs.ReadDisplaySets(bufio.NewReader(r))
	if err != nil {
		return report, wrap(ErrData, "decode pgs stream", "", err)
	}
	if len(sets) == 0 {
		return report, wrap(ErrData, "decode pgs stream", "no display sets in input", nil)
	}
	report.DisplaySets = len(sets)
	logger.Info("decoded pgs stream", logging.Int("display_sets", len(sets)))

	compositor := render.NewCompositor(logger)
	for _, ds := range sets {
		if err := compositor.Push(ds); err != nil {
			return report, wrap(ErrData, "compose display sets", "", err)
		}
	}
	subtitles := compositor.Subtitles()
	report.Bitmaps = len(subtitles)
	logger.Info("composed subtitle bitmaps", logging.Int("bitmaps", len(subtitles)))

	texts, err := c.recognize(ctx, logger, subtitles, &report)
	if err != nil {
		return report, err
	}

	entries := make([]srt.Entry, 0, len(subtitles))
	for i, sub := range subtitles {
		if texts[i] == "" {
			report.DroppedEmpty++
			continue
		}
		entries = append(entries, srt.Entry{Begin: sub.Begin, End: sub.End, Text: texts[i]})
	}

	cues := srt.Merge(entries, srt.MergeOptions{
		DefaultDuration: c.opts.DefaultDuration,
		MinDuration:     c.opts.MinDuration,
	})
	report.Cues = len(cues)

	var buf bytes.Buffer
	if err := srt.Write(&buf, cues); err != nil {
		return report, err
	}
	if report.Cues > 0 {
		if issues := srt.Validate(buf.String()); len(issues) > 0 {
			logger.Warn("generated document has issues", logging.Any("issues", issues))
		}
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return report, wrap(ErrData, "write srt document", "", err)
	}

	report.Elapsed = time.Since(start)
	logger.Info("conversion complete",
		logging.Int("cues", report.Cues),
		logging.Int("cache_hits", report.CacheHits),
		logging.Int("recognized", report.Recognized),
		logging.Duration("elapsed", report.Elapsed))
	return report, nil
}

// recognize produces the text for every subtitle bitmap, consulting the
// cache first when one is configured. Cache failures degrade to plain
// recognition; they never abort a conversion.
func (c *Converter) recognize(ctx context.Context, logger *slog.Logger, subtitles []render.Subtitle, report *Report) ([]string, error) {
	images := make([][]byte, len(subtitles))
	for i, sub := range subtitles {
		data, err := render.EncodeForOCR(sub.Bitmap, c.opts.Scale)
		if err != nil {
			return nil, wrap(ErrData, "encode bitmap", "", err)
		}
		images[i] = data
	}

	texts := make([]string, len(subtitles))
	missing := make([]int, 0, len(subtitles))
	keys := make([]string, len(subtitles))

	cache := c.openCache(logger)
	if cache != nil {
		defer cache.Close()
		for i, img := range images {
			keys[i] = ocrcache.Key(c.opts.Languages, img)
			text, ok, err := cache.Lookup(ctx, keys[i])
			if err != nil {
				logger.Warn("cache lookup failed", logging.Error(err))
				missing = append(missing, i)
				continue
			}
			if ok {
				texts[i] = text
				report.CacheHits++
				continue
			}
			missing = append(missing, i)
		}
	} else {
		for i := range images {
			missing = append(missing, i)
		}
	}

	if len(missing) > 0 {
		batch := make([][]byte, len(missing))
		for i, idx := range missing {
			batch[i] = images[idx]
		}
		logger.Info("running ocr",
			logging.Int("images", len(batch)),
			logging.Int("cache_hits", report.CacheHits))
		recognized, err := ocr.RecognizeAll(ctx, c.newEngine, batch, c.opts.Workers)
		if err != nil {
			return nil, wrap(ErrExternalTool, "ocr", "", err)
		}
		report.Recognized = len(recognized)
		for i, idx := range missing {
			texts[idx] = textutil.CleanOCR(recognized[i])
			if cache != nil {
				if err := cache.Store(ctx, keys[idx], c.opts.Languages, texts[idx]); err != nil {
					logger.Warn("cache store failed", logging.Error(err))
				}
			}
		}
	}
	return texts, nil
}

func (c *Converter) openCache(logger *slog.Logger) *ocrcache.Store {
	if c.opts.CacheDir == "" {
		return nil
	}
	store, err := ocrcache.Open(c.opts.CacheDir, logger)
	if err != nil {
		if errors.Is(err, ocrcache.ErrBusy) {
			logger.Warn("ocr cache in use by another process, continuing without it")
		} else {
			logger.Warn("ocr cache unavailable", logging.Error(err))
		}
		return nil
	}
	return store
}
