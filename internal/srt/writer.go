package srt

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
)

// Write serializes cues as an SRT document. Cue indices are renumbered
// sequentially from 1 regardless of their Index fields.
func Write(w io.Writer, cues []Cue) error {
	bw := bufio.NewWriter(w)
	for i, cue := range cues {
		if _, err := bw.WriteString(strconv.Itoa(i + 1)); err != nil {
			return fmt.Errorf("write srt: %w", err)
		}
		bw.WriteByte('\n')
		bw.WriteString(FormatTimestamp(cue.Begin))
		bw.WriteString(" --> ")
		bw.WriteString(FormatTimestamp(cue.End))
		bw.WriteByte('\n')
		bw.WriteString(cue.Text)
		if _, err := bw.WriteString("\n\n"); err != nil {
			return fmt.Errorf("write srt: %w", err)
		}
	}
	return bw.Flush()
}
