package srt

import (
	"sort"
	"strings"
	"time"
)

// Entry is a recognized subtitle interval before document assembly.
type Entry struct {
	Begin time.Duration
	End   time.Duration
	Text  string
}

// MergeOptions tune cue assembly.
type MergeOptions struct {
	// DefaultDuration closes entries whose end the stream never set.
	DefaultDuration time.Duration
	// MinDuration drops assembled cues shorter than this.
	MinDuration time.Duration
}

type eventKind int

const (
	eventAdd eventKind = iota
	eventRemove
)

type event struct {
	kind  eventKind
	entry int
	at    time.Duration
}

// Merge assembles overlapping entries into a sequence of non-overlapping,
// ordered cues. Entry boundaries split the timeline into intervals; each
// interval whose set of on-screen entries yields non-empty text becomes a
// cue containing the concatenated text.
func Merge(entries []Entry, opts MergeOptions) []Cue {
	if opts.DefaultDuration <= 0 {
		opts.DefaultDuration = 3 * time.Second
	}

	events := make([]event, 0, len(entries)*2)
	for i, entry := range entries {
		end := entry.End
		if end <= entry.Begin {
			end = entry.Begin + opts.DefaultDuration
		}
		events = append(events,
			event{kind: eventAdd, entry: i, at: entry.Begin},
			event{kind: eventRemove, entry: i, at: end},
		)
	}
	// Stable keeps a remove that coincides with the next entry's add ahead
	// of it, so adjacent cues meet without duplicated text.
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].at < events[j].at
	})

	var (
		onScreen []int
		cues     []Cue
		builder  strings.Builder
	)
	for i, ev := range events {
		switch ev.kind {
		case eventAdd:
			onScreen = append(onScreen, ev.entry)
		case eventRemove:
			keep := onScreen[:0]
			for _, idx := range onScreen {
				if idx != ev.entry {
					keep = append(keep, idx)
				}
			}
			onScreen = keep
		}
		if i+1 >= len(events) {
			break
		}

		builder.Reset()
		for _, idx := range onScreen {
			builder.WriteString(entries[idx].Text)
			builder.WriteByte('\n')
		}
		text := strings.TrimSpace(builder.String())
		if text == "" {
			continue
		}

		begin := ev.at
		end := events[i+1].at
		if end <= begin {
			continue
		}
		if end-begin < opts.MinDuration {
			continue
		}
		cues = append(cues, Cue{Index: len(cues) + 1, Begin: begin, End: end, Text: text})
	}
	return cues
}
