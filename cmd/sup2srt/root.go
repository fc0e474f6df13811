package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var configFlag string

	ctx := newCommandContext(&configFlag)
	convertFlags := newConvertFlags()

	rootCmd := &cobra.Command{
		Use:           "sup2srt [input] [output]",
		Short:         "Convert Blu-ray PGS subtitles (.sup) to SubRip (.srt)",
		Long: "sup2srt decodes a Presentation Graphic Stream, recognizes the subtitle\n" +
			"bitmaps with Tesseract, and writes an SRT document. Without arguments it\n" +
			"reads the stream from stdin and writes the document to stdout.",
		Args:          cobra.MaximumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, ctx, convertFlags, args)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	convertFlags.register(rootCmd.Flags())

	rootCmd.AddCommand(newConvertCommand(ctx))
	rootCmd.AddCommand(newInspectCommand(ctx))
	rootCmd.AddCommand(newImagesCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}
