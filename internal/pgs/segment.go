package pgs

import (
	"errors"
	"fmt"
	"io"
)

var (
	// ErrInvalidData marks structurally malformed stream content.
	ErrInvalidData = errors.New("pgs: invalid data")
	// ErrUnexpectedEOF marks a stream that ends inside a segment or code.
	ErrUnexpectedEOF = errors.New("pgs: unexpected end of stream")
)

// CompositionState describes how a PCS relates to the current epoch.
type CompositionState byte

const (
	// CompositionNormal updates the display with incremental changes.
	CompositionNormal CompositionState = iota
	// CompositionAcquisitionPoint refreshes the display mid-epoch.
	CompositionAcquisitionPoint
	// CompositionEpochStart begins a new epoch; all prior objects and
	// palettes are discarded.
	CompositionEpochStart
)

func (s CompositionState) String() string {
	switch s {
	case CompositionNormal:
		return "normal"
	case CompositionAcquisitionPoint:
		return "acquisition-point"
	case CompositionEpochStart:
		return "epoch-start"
	default:
		return fmt.Sprintf("composition-state(%d)", byte(s))
	}
}

// SequencePosition describes where an ODS sits in a fragmented object.
type SequencePosition byte

const (
	// SequenceFirst starts a fragmented object.
	SequenceFirst SequencePosition = iota
	// SequenceLast completes a previously started object.
	SequenceLast
	// SequenceFirstAndLast carries a whole object in one segment.
	SequenceFirstAndLast
)

// Header carries the timing fields shared by every segment. PTS and DTS are
// 90 kHz clock ticks.
type Header struct {
	PTS uint32
	DTS uint32
}

// CropRect is the forced cropping window of a composition object.
type CropRect struct {
	X      uint16
	Y      uint16
	Width  uint16
	Height uint16
}

// CompositionObject places a defined object inside a window.
type CompositionObject struct {
	ObjectID uint16
	WindowID uint8
	X        uint16
	Y        uint16
	Crop     *CropRect
}

// PCS is the Presentation Composition Segment; it opens a display set.
type PCS struct {
	Header            Header
	Width             uint16
	Height            uint16
	FrameRate         byte
	CompositionNumber uint16
	State             CompositionState
	PaletteUpdate     bool
	PaletteID         uint8
	Objects           []CompositionObject
}

// Window is a region of the screen subtitles are drawn into.
type Window struct {
	WindowID uint8
	X        uint16
	Y        uint16
	Width    uint16
	Height   uint16
}

// WDS is the Window Definition Segment.
type WDS struct {
	Header  Header
	Windows []Window
}

// PaletteEntry is one palette slot in YCrCb plus alpha.
type PaletteEntry struct {
	ID           uint8
	Luminance    uint8
	ColorDiffRed uint8
	ColorDiffBlu uint8
	Alpha        uint8
}

// PDS is the Palette Definition Segment.
type PDS struct {
	Header  Header
	ID      uint8
	Version uint8
	Entries []PaletteEntry
}

// ODS is the Object Definition Segment. Data holds the raw RLE payload;
// for fragmented objects only the first fragment carries Width and Height.
type ODS struct {
	Header   Header
	ObjectID uint16
	Version  uint8
	Sequence SequencePosition
	Width    uint16
	Height   uint16
	Data     []byte
}

// END closes a display set.
type END struct {
	Header Header
}

// Segment is one of PCS, WDS, PDS, ODS or END.
type Segment interface {
	segment()
}

func (PCS) segment() {}
func (WDS) segment() {}
func (PDS) segment() {}
func (ODS) segment() {}
func (END) segment() {}

// ReadSegment decodes the next segment from the stream. It returns io.EOF
// only when the stream ends cleanly on a segment boundary.
func ReadSegment(r io.Reader) (Segment, error) {
	hdr, err := readSegmentHeader(r)
	if err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: truncated segment header", ErrUnexpectedEOF)
		}
		return nil, fmt.Errorf("read segment header: %w", err)
	}
	if hdr.Magic != MagicNumber {
		return nil, fmt.Errorf("%w: bad segment magic 0x%04x", ErrInvalidData, hdr.Magic)
	}

	body := make([]byte, int(hdr.SegmentSize))
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, fmt.Errorf("%w: truncated segment body", ErrUnexpectedEOF)
	}

	header := Header{PTS: hdr.PTS, DTS: hdr.DTS}
	cur := &byteCursor{buf: body}

	switch hdr.SegmentType {
	case segmentTypePCS:
		return readPCS(header, cur)
	case segmentTypeWDS:
		return readWDS(header, cur)
	case segmentTypePDS:
		return readPDS(header, cur)
	case segmentTypeODS:
		return readODS(header, cur)
	case segmentTypeEND:
		return END{Header: header}, nil
	default:
		return nil, fmt.Errorf("%w: unknown segment type 0x%02x", ErrInvalidData, hdr.SegmentType)
	}
}

func readPCS(header Header, cur *byteCursor) (Segment, error) {
	width, err := cur.u16()
	if err != nil {
		return nil, err
	}
	height, err := cur.u16()
	if err != nil {
		return nil, err
	}
	frameRate, err := cur.u8()
	if err != nil {
		return nil, err
	}
	compositionNumber, err := cur.u16()
	if err != nil {
		return nil, err
	}
	stateByte, err := cur.u8()
	if err != nil {
		return nil, err
	}
	updateByte, err := cur.u8()
	if err != nil {
		return nil, err
	}
	paletteID, err := cur.u8()
	if err != nil {
		return nil, err
	}
	objectCount, err := cur.u8()
	if err != nil {
		return nil, err
	}

	var state CompositionState
	switch stateByte {
	case compositionStateNormal:
		state = CompositionNormal
	case compositionStateAcquisitionPoint:
		state = CompositionAcquisitionPoint
	case compositionStateEpochStart:
		state = CompositionEpochStart
	default:
		return nil, fmt.Errorf("%w: bad composition state 0x%02x", ErrInvalidData, stateByte)
	}

	var paletteUpdate bool
	switch updateByte {
	case paletteUpdateFlagFalse:
		paletteUpdate = false
	case paletteUpdateFlagTrue:
		paletteUpdate = true
	default:
		return nil, fmt.Errorf("%w: bad palette update flag 0x%02x", ErrInvalidData, updateByte)
	}

	objects := make([]CompositionObject, 0, objectCount)
	for i := 0; i < int(objectCount); i++ {
		obj, err := readCompositionObject(cur)
		if err != nil {
			return nil, err
		}
		objects = append(objects, obj)
	}

	return PCS{
		Header:            header,
		Width:             width,
		Height:            height,
		FrameRate:         frameRate,
		CompositionNumber: compositionNumber,
		State:             state,
		PaletteUpdate:     paletteUpdate,
		PaletteID:         paletteID,
		Objects:           objects,
	}, nil
}

func readCompositionObject(cur *byteCursor) (CompositionObject, error) {
	var obj CompositionObject
	var err error
	if obj.ObjectID, err = cur.u16(); err != nil {
		return obj, err
	}
	if obj.WindowID, err = cur.u8(); err != nil {
		return obj, err
	}
	croppedFlag, err := cur.u8()
	if err != nil {
		return obj, err
	}
	if obj.X, err = cur.u16(); err != nil {
		return obj, err
	}
	if obj.Y, err = cur.u16(); err != nil {
		return obj, err
	}
	switch croppedFlag {
	case objectCroppedFlagOff:
	case objectCroppedFlagForce:
		crop := &CropRect{}
		if crop.X, err = cur.u16(); err != nil {
			return obj, err
		}
		if crop.Y, err = cur.u16(); err != nil {
			return obj, err
		}
		if crop.Width, err = cur.u16(); err != nil {
			return obj, err
		}
		if crop.Height, err = cur.u16(); err != nil {
			return obj, err
		}
		obj.Crop = crop
	default:
		return obj, fmt.Errorf("%w: bad object cropped flag 0x%02x", ErrInvalidData, croppedFlag)
	}
	return obj, nil
}

func readWDS(header Header, cur *byteCursor) (Segment, error) {
	count, err := cur.u8()
	if err != nil {
		return nil, err
	}
	windows := make([]Window, 0, count)
	for i := 0; i < int(count); i++ {
		var wnd Window
		if wnd.WindowID, err = cur.u8(); err != nil {
			return nil, err
		}
		if wnd.X, err = cur.u16(); err != nil {
			return nil, err
		}
		if wnd.Y, err = cur.u16(); err != nil {
			return nil, err
		}
		if wnd.Width, err = cur.u16(); err != nil {
			return nil, err
		}
		if wnd.Height, err = cur.u16(); err != nil {
			return nil, err
		}
		windows = append(windows, wnd)
	}
	return WDS{Header: header, Windows: windows}, nil
}

func readPDS(header Header, cur *byteCursor) (Segment, error) {
	id, err := cur.u8()
	if err != nil {
		return nil, err
	}
	version, err := cur.u8()
	if err != nil {
		return nil, err
	}
	if cur.remaining()%5 != 0 {
		return nil, fmt.Errorf("%w: palette entries not a multiple of 5 bytes", ErrInvalidData)
	}
	entries := make([]PaletteEntry, 0, cur.remaining()/5)
	for cur.remaining() > 0 {
		var entry PaletteEntry
		if entry.ID, err = cur.u8(); err != nil {
			return nil, err
		}
		if entry.Luminance, err = cur.u8(); err != nil {
			return nil, err
		}
		if entry.ColorDiffRed, err = cur.u8(); err != nil {
			return nil, err
		}
		if entry.ColorDiffBlu, err = cur.u8(); err != nil {
			return nil, err
		}
		if entry.Alpha, err = cur.u8(); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return PDS{Header: header, ID: id, Version: version, Entries: entries}, nil
}

func readODS(header Header, cur *byteCursor) (Segment, error) {
	objectID, err := cur.u16()
	if err != nil {
		return nil, err
	}
	version, err := cur.u8()
	if err != nil {
		return nil, err
	}
	seqByte, err := cur.u8()
	if err != nil {
		return nil, err
	}

	var seq SequencePosition
	switch seqByte {
	case lastInSequenceFlagFirst:
		seq = SequenceFirst
	case lastInSequenceFlagLast:
		seq = SequenceLast
	case lastInSequenceFlagFirstAndLast:
		seq = SequenceFirstAndLast
	default:
		return nil, fmt.Errorf("%w: bad last-in-sequence flag 0x%02x", ErrInvalidData, seqByte)
	}

	ods := ODS{Header: header, ObjectID: objectID, Version: version, Sequence: seq}

	// Only the first fragment carries the data length and dimensions;
	// continuation fragments are raw RLE data.
	if seq == SequenceFirst || seq == SequenceFirstAndLast {
		dataLength, err := cur.u24()
		if err != nil {
			return nil, err
		}
		if ods.Width, err = cur.u16(); err != nil {
			return nil, err
		}
		if ods.Height, err = cur.u16(); err != nil {
			return nil, err
		}
		if dataLength < odsDataPrefixSize {
			return nil, fmt.Errorf("%w: ods data length %d shorter than prefix", ErrInvalidData, dataLength)
		}
		if seq == SequenceFirstAndLast {
			payload := int(dataLength) - odsDataPrefixSize
			data, err := cur.bytes(payload)
			if err != nil {
				return nil, err
			}
			if cur.remaining() != 0 {
				return nil, fmt.Errorf("%w: %d trailing bytes after ods payload", ErrInvalidData, cur.remaining())
			}
			ods.Data = append([]byte(nil), data...)
			return ods, nil
		}
	}
	ods.Data = append([]byte(nil), cur.buf[cur.off:]...)
	return ods, nil
}
