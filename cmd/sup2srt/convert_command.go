package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"sup2srt/internal/config"
	"sup2srt/internal/convert"
)

type convertFlags struct {
	languages       []string
	workers         int
	scale           int
	dpi             int
	pageSegMode     int
	noCache         bool
	minDuration     time.Duration
	defaultDuration time.Duration
}

func newConvertFlags() *convertFlags {
	return &convertFlags{}
}

func (f *convertFlags) register(flags *pflag.FlagSet) {
	flags.StringSliceVarP(&f.languages, "lang", "l", nil, "Subtitle languages (ISO codes or names)")
	flags.IntVar(&f.workers, "workers", 0, "Parallel OCR workers (0 = one per CPU)")
	flags.IntVar(&f.scale, "scale", 0, "Integer upscale factor applied before OCR")
	flags.IntVar(&f.dpi, "dpi", 0, "DPI hint passed to Tesseract")
	flags.IntVar(&f.pageSegMode, "psm", -1, "Tesseract page segmentation mode")
	flags.BoolVar(&f.noCache, "no-cache", false, "Disable the OCR result cache")
	flags.DurationVar(&f.minDuration, "min-duration", 0, "Drop cues shorter than this duration")
	flags.DurationVar(&f.defaultDuration, "default-duration", 0, "Display duration for cues the stream never cleared")
}

// apply overlays changed flags onto a copy of the loaded configuration.
func (f *convertFlags) apply(flags *pflag.FlagSet, cfg *config.Config) (*config.Config, error) {
	value := *cfg
	if flags.Changed("lang") {
		value.OCR.Languages = f.languages
	}
	if flags.Changed("workers") {
		value.OCR.Workers = f.workers
	}
	if flags.Changed("scale") {
		value.OCR.Scale = f.scale
	}
	if flags.Changed("dpi") {
		value.OCR.DPI = f.dpi
	}
	if flags.Changed("psm") {
		value.OCR.PageSegMode = f.pageSegMode
	}
	if f.noCache {
		value.Cache.Enabled = false
	}
	if flags.Changed("min-duration") {
		value.Output.MinDurationMS = int(f.minDuration / time.Millisecond)
	}
	if flags.Changed("default-duration") {
		value.Output.DefaultDurationMS = int(f.defaultDuration / time.Millisecond)
	}
	if err := value.Validate(); err != nil {
		return nil, err
	}
	return &value, nil
}

func newConvertCommand(ctx *commandContext) *cobra.Command {
	flags := newConvertFlags()

	cmd := &cobra.Command{
		Use:   "convert [input] [output]",
		Short: "Convert a PGS stream to an SRT document",
		Long: "Reads a .sup stream from the input file (or stdin when omitted or \"-\")\n" +
			"and writes the SRT document to the output file (or stdout). An output\n" +
			"file must not already exist.",
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, ctx, flags, args)
		},
	}
	flags.register(cmd.Flags())
	return cmd
}

func runConvert(cmd *cobra.Command, ctx *commandContext, flags *convertFlags, args []string) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	cfg, err = flags.apply(cmd.Flags(), cfg)
	if err != nil {
		return err
	}
	logger, err := ctx.ensureLogger()
	if err != nil {
		return err
	}

	input, closeInput, err := openInput(cmd, args)
	if err != nil {
		return err
	}
	defer closeInput()

	outputPath := ""
	if len(args) > 1 && args[1] != "-" {
		outputPath = args[1]
	}

	converter, err := convert.New(cfg, logger)
	if err != nil {
		return err
	}

	runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if outputPath == "" {
		_, err := converter.Convert(runCtx, input, cmd.OutOrStdout())
		return err
	}

	out, err := os.OpenFile(outputPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("output file %q already exists", outputPath)
		}
		return fmt.Errorf("create output file: %w", err)
	}
	if _, err := converter.Convert(runCtx, input, out); err != nil {
		out.Close()
		os.Remove(outputPath)
		return err
	}
	return out.Close()
}

// openInput resolves the first positional argument to a reader. "-" and a
// missing argument both select stdin.
func openInput(cmd *cobra.Command, args []string) (io.Reader, func(), error) {
	if len(args) == 0 || args[0] == "-" {
		return cmd.InOrStdin(), func() {}, nil
	}
	file, err := os.Open(args[0])
	if err != nil {
		return nil, nil, fmt.Errorf("open input file: %w", err)
	}
	return file, func() { file.Close() }, nil
}
