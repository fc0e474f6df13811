package pgs

import (
	"errors"
	"fmt"
	"io"
	"time"
)

// ClockRate is the PGS presentation clock frequency in ticks per second.
const ClockRate = 90_000

// TicksToDuration converts a 90 kHz PTS or DTS value to a duration.
func TicksToDuration(ticks uint32) time.Duration {
	return time.Duration(ticks) * time.Second / ClockRate
}

// DisplaySet is one complete composition: a PCS followed by its definition
// segments and terminated by END.
type DisplaySet struct {
	PCS PCS
	WDS []WDS
	PDS []PDS
	ODS []ODS
	END END
}

// PTS returns the presentation time of the display set's composition.
func (ds DisplaySet) PTS() time.Duration {
	return TicksToDuration(ds.PCS.Header.PTS)
}

// ReadDisplaySet decodes one display set. The first segment must be a PCS;
// segments accumulate until END. Returns io.EOF when the stream ends before
// any segment of the set is read.
func ReadDisplaySet(r io.Reader) (DisplaySet, error) {
	var ds DisplaySet

	seg, err := ReadSegment(r)
	if err != nil {
		if err == io.EOF {
			return ds, io.EOF
		}
		return ds, err
	}
	pcs, ok := seg.(PCS)
	if !ok {
		return ds, fmt.Errorf("%w: display set does not start with a PCS", ErrInvalidData)
	}
	ds.PCS = pcs

	for {
		seg, err := ReadSegment(r)
		if err != nil {
			if err == io.EOF || errors.Is(err, ErrUnexpectedEOF) {
				return ds, fmt.Errorf("%w: display set missing END segment", ErrUnexpectedEOF)
			}
			return ds, err
		}
		switch seg := seg.(type) {
		case PCS:
			return ds, fmt.Errorf("%w: PCS inside display set", ErrInvalidData)
		case WDS:
			ds.WDS = append(ds.WDS, seg)
		case PDS:
			ds.PDS = append(ds.PDS, seg)
		case ODS:
			ds.ODS = append(ds.ODS, seg)
		case END:
			ds.END = seg
			return ds, nil
		}
	}
}

// ReadDisplaySets decodes display sets until the stream ends cleanly.
func ReadDisplaySets(r io.Reader) ([]DisplaySet, error) {
	var sets []DisplaySet
	for {
		ds, err := ReadDisplaySet(r)
		if err == io.EOF {
			return sets, nil
		}
		if err != nil {
			return nil, fmt.Errorf("display set %d: %w", len(sets), err)
		}
		sets = append(sets, ds)
	}
}
