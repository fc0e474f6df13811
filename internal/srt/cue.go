package srt

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Cue is one numbered subtitle interval in an SRT document.
type Cue struct {
	Index int
	Begin time.Duration
	End   time.Duration
	Text  string
}

// FormatTimestamp renders a duration in the SRT HH:MM:SS,mmm form.
func FormatTimestamp(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	totalSecs := int64(d / time.Second)
	hours := totalSecs / 3600
	minutes := (totalSecs / 60) % 60
	seconds := totalSecs % 60
	millis := int64(d/time.Millisecond) % 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, seconds, millis)
}

// ParseTimestamp parses an SRT timestamp. A period is accepted in place of
// the standard comma before the millisecond field.
func ParseTimestamp(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("empty timestamp")
	}
	value = strings.ReplaceAll(value, ".", ",")
	timeParts := strings.Split(value, ",")
	if len(timeParts) != 2 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hms := strings.Split(timeParts[0], ":")
	if len(hms) != 3 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hours, errH := strconv.Atoi(hms[0])
	minutes, errM := strconv.Atoi(hms[1])
	seconds, errS := strconv.Atoi(hms[2])
	millis, errMS := strconv.Atoi(timeParts[1])
	if errH != nil || errM != nil || errS != nil || errMS != nil {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	return time.Duration(hours)*time.Hour +
		time.Duration(minutes)*time.Minute +
		time.Duration(seconds)*time.Second +
		time.Duration(millis)*time.Millisecond, nil
}
