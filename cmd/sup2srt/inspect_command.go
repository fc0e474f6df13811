package main

import (
	"bufio"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"sup2srt/internal/pgs"
	"sup2srt/internal/srt"
)

func newInspectCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect [input]",
		Short: "Decode a PGS stream and print its display set structure",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, closeInput, err := openInput(cmd, args)
			if err != nil {
				return err
			}
			defer closeInput()

			sets, err := pgs.ReadDisplaySets(bufio.NewReader(input))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(sets) == 0 {
				fmt.Fprintln(out, "Stream contains no display sets")
				return nil
			}

			headers := []string{"#", "PTS", "State", "Size", "Objects", "Palettes", "Windows"}
			aligns := []columnAlignment{alignRight, alignRight, alignLeft, alignLeft, alignRight, alignRight, alignRight}
			rows := make([][]string, 0, len(sets))
			objects := 0
			for i, ds := range sets {
				objects += len(ds.PCS.Objects)
				rows = append(rows, []string{
					strconv.Itoa(i + 1),
					srt.FormatTimestamp(ds.PTS()),
					ds.PCS.State.String(),
					fmt.Sprintf("%dx%d", ds.PCS.Width, ds.PCS.Height),
					strconv.Itoa(len(ds.PCS.Objects)),
					strconv.Itoa(len(ds.PDS)),
					strconv.Itoa(windowCount(ds.WDS)),
				})
			}
			fmt.Fprintln(out, renderTable(headers, rows, aligns))
			fmt.Fprintf(out, "%d display sets, %d composition objects, last PTS %s\n",
				len(sets), objects, srt.FormatTimestamp(sets[len(sets)-1].PTS()))
			return nil
		},
	}
}

func windowCount(segments []pgs.WDS) int {
	count := 0
	for _, wds := range segments {
		count += len(wds.Windows)
	}
	return count
}
