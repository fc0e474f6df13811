package srt

import (
	"fmt"
	"strings"
	"time"
)

// CountCues reports the number of cue blocks in an SRT document.
func CountCues(content string) int {
	content = strings.TrimSpace(content)
	if content == "" {
		return 0
	}
	count := 0
	for _, block := range strings.Split(content, "\n\n") {
		if strings.TrimSpace(block) != "" {
			count++
		}
	}
	return count
}

// Bounds returns the earliest start and latest end timestamp found in the
// document. ok is false when no parseable timing line exists.
func Bounds(content string) (first, last time.Duration, ok bool) {
	first = time.Duration(1<<63 - 1)
	for _, line := range strings.Split(content, "\n") {
		if !strings.Contains(line, "-->") {
			continue
		}
		parts := strings.Split(line, "-->")
		if len(parts) != 2 {
			continue
		}
		if begin, err := ParseTimestamp(parts[0]); err == nil {
			ok = true
			if begin < first {
				first = begin
			}
		}
		if end, err := ParseTimestamp(parts[1]); err == nil {
			if end > last {
				last = end
			}
		}
	}
	if !ok {
		return 0, last, false
	}
	return first, last, true
}

// Validate checks a generated document for structural issues. An empty
// slice means the document passed.
func Validate(content string) []string {
	var issues []string
	cues := CountCues(content)
	if cues == 0 {
		return []string{"empty_subtitle_document"}
	}
	first, last, ok := Bounds(content)
	if !ok {
		issues = append(issues, "no_valid_timestamps")
	} else if last < first {
		issues = append(issues, fmt.Sprintf("timestamps_out_of_order: first=%v last=%v", first, last))
	}
	return issues
}
