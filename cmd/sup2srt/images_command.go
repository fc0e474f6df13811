package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"sup2srt/internal/pgs"
	"sup2srt/internal/render"
	"sup2srt/internal/srt"
)

func newImagesCommand(ctx *commandContext) *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "images [input]",
		Short: "Dump composed subtitle bitmaps as PNG files",
		Long: "Decodes and composes the stream like convert does, but writes each\n" +
			"subtitle bitmap to <out>/NNNN.png together with a manifest.tsv listing\n" +
			"display intervals. Useful for debugging OCR problems.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(outDir)
			if target == "" {
				return fmt.Errorf("--out directory is required")
			}
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("create output directory %q: %w", target, err)
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

			sets, err := pgs.ReadDisplaySets(bufio.NewReader(input))
			if err != nil {
				return err
			}

			compositor := render.NewCompositor(logger)
			for _, ds := range sets {
				if err := compositor.Push(ds); err != nil {
					return err
				}
			}
			subtitles := compositor.Subtitles()

			var manifest strings.Builder
			manifest.WriteString("file\tbegin\tend\twidth\theight\n")
			for i, sub := range subtitles {
				name := fmt.Sprintf("%04d.png", i+1)
				data, err := render.EncodePNG(sub.Bitmap)
				if err != nil {
					return fmt.Errorf("encode %s: %w", name, err)
				}
				if err := os.WriteFile(filepath.Join(target, name), data, 0o644); err != nil {
					return fmt.Errorf("write %s: %w", name, err)
				}
				fmt.Fprintf(&manifest, "%s\t%s\t%s\t%d\t%d\n",
					name,
					srt.FormatTimestamp(sub.Begin),
					srt.FormatTimestamp(sub.End),
					sub.Bitmap.Width,
					sub.Bitmap.Height)
			}
			manifestPath := filepath.Join(target, "manifest.tsv")
			if err := os.WriteFile(manifestPath, []byte(manifest.String()), 0o644); err != nil {
				return fmt.Errorf("write manifest: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d images and %s\n", len(subtitles), manifestPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Directory to write PNG files into")
	return cmd
}
