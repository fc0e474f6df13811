package textutil

import "strings"

// CleanOCR normalizes raw OCR output into cue text: line endings become \n,
// lines are trimmed, interior runs of spaces collapse, blank lines are
// dropped, and pipe characters mistaken for the letter I are corrected.
func CleanOCR(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = collapseSpaces(strings.TrimSpace(line))
		if line == "" {
			continue
		}
		out = append(out, fixPipes(line))
	}
	return strings.Join(out, "\n")
}

func collapseSpaces(line string) string {
	return strings.Join(strings.Fields(line), " ")
}

// fixPipes rewrites "|" as "I". Subtitle fonts render capital I with serifs
// thin enough that Tesseract regularly reads it as a vertical bar; the pipe
// character itself never appears in subtitle text.
func fixPipes(line string) string {
	if !strings.Contains(line, "|") {
		return line
	}
	return strings.ReplaceAll(line, "|", "I")
}
