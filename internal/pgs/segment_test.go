package pgs

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"
	"time"
)

func encodeSegment(t *testing.T, segType byte, pts uint32, body []byte) []byte {
	t.Helper()
	if len(body) > 0xffff {
		t.Fatalf("segment body too large: %d", len(body))
	}
	buf := make([]byte, 0, 13+len(body))
	buf = binary.BigEndian.AppendUint16(buf, MagicNumber)
	buf = binary.BigEndian.AppendUint32(buf, pts)
	buf = binary.BigEndian.AppendUint32(buf, 0)
	buf = append(buf, segType)
	buf = binary.BigEndian.AppendUint16(buf, uint16(len(body)))
	buf = append(buf, body...)
	return buf
}

func encodePCSBody(t *testing.T, width, height uint16, state byte, paletteID uint8, objects []CompositionObject) []byte {
	t.Helper()
	body := make([]byte, 0, 11+len(objects)*8)
	body = binary.BigEndian.AppendUint16(body, width)
	body = binary.BigEndian.AppendUint16(body, height)
	body = append(body, 0x10) // frame rate
	body = binary.BigEndian.AppendUint16(body, 0)
	body = append(body, state, paletteUpdateFlagFalse, paletteID, byte(len(objects)))
	for _, obj := range objects {
		body = binary.BigEndian.AppendUint16(body, obj.ObjectID)
		body = append(body, obj.WindowID)
		if obj.Crop != nil {
			body = append(body, objectCroppedFlagForce)
		} else {
			body = append(body, objectCroppedFlagOff)
		}
		body = binary.BigEndian.AppendUint16(body, obj.X)
		body = binary.BigEndian.AppendUint16(body, obj.Y)
		if obj.Crop != nil {
			body = binary.BigEndian.AppendUint16(body, obj.Crop.X)
			body = binary.BigEndian.AppendUint16(body, obj.Crop.Y)
			body = binary.BigEndian.AppendUint16(body, obj.Crop.Width)
			body = binary.BigEndian.AppendUint16(body, obj.Crop.Height)
		}
	}
	return body
}

func encodePDSBody(t *testing.T, id, version uint8, entries []PaletteEntry) []byte {
	t.Helper()
	body := []byte{id, version}
	for _, e := range entries {
		body = append(body, e.ID, e.Luminance, e.ColorDiffRed, e.ColorDiffBlu, e.Alpha)
	}
	return body
}

func encodeODSBody(t *testing.T, objectID uint16, width, height uint16, rle []byte) []byte {
	t.Helper()
	body := make([]byte, 0, 11+len(rle))
	body = binary.BigEndian.AppendUint16(body, objectID)
	body = append(body, 0, lastInSequenceFlagFirstAndLast)
	dataLen := uint32(len(rle) + odsDataPrefixSize)
	body = append(body, byte(dataLen>>16), byte(dataLen>>8), byte(dataLen))
	body = binary.BigEndian.AppendUint16(body, width)
	body = binary.BigEndian.AppendUint16(body, height)
	body = append(body, rle...)
	return body
}

func encodeWDSBody(t *testing.T, windows []Window) []byte {
	t.Helper()
	body := []byte{byte(len(windows))}
	for _, w := range windows {
		body = append(body, w.WindowID)
		body = binary.BigEndian.AppendUint16(body, w.X)
		body = binary.BigEndian.AppendUint16(body, w.Y)
		body = binary.BigEndian.AppendUint16(body, w.Width)
		body = binary.BigEndian.AppendUint16(body, w.Height)
	}
	return body
}

func TestReadSegmentPCS(t *testing.T) {
	objects := []CompositionObject{
		{ObjectID: 7, WindowID: 1, X: 100, Y: 200},
		{ObjectID: 8, WindowID: 1, X: 10, Y: 20, Crop: &CropRect{X: 1, Y: 2, Width: 30, Height: 40}},
	}
	raw := encodeSegment(t, segmentTypePCS, 90_000,
		encodePCSBody(t, 1920, 1080, compositionStateEpochStart, 3, objects))

	seg, err := ReadSegment(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("ReadSegment: %v", err)
	}
	pcs, ok := seg.(PCS)
	if !ok {
		t.Fatalf("expected PCS, got %T", seg)
	}
	if pcs.Width != 1920 || pcs.Height != 1080 {
		t.Errorf("dimensions: got %dx%d", pcs.Width, pcs.Height)
	}
	if pcs.State != CompositionEpochStart {
		t.Errorf("state: got %v", pcs.State)
	}
	if pcs.PaletteID != 3 {
		t.Errorf("palette id: got %d", pcs.PaletteID)
	}
	if len(pcs.Objects) != 2 {
		t.Fatalf("objects: got %d", len(pcs.Objects))
	}
	if pcs.Objects[0].Crop != nil {
		t.Error("object 0 should not be cropped")
	}
	crop := pcs.Objects[1].Crop
	if crop == nil || crop.Width != 30 || crop.Height != 40 {
		t.Errorf("object 1 crop: got %+v", crop)
	}
	if got := TicksToDuration(pcs.Header.PTS); got != time.Second {
		t.Errorf("pts: got %v, want 1s", got)
	}
}

func TestReadSegmentPDS(t *testing.T) {
	entries := []PaletteEntry{
		{ID: 0, Luminance: 16, ColorDiffRed: 128, ColorDiffBlu: 128, Alpha: 0},
		{ID: 1, Luminance: 235, ColorDiffRed: 128, ColorDiffBlu: 128, Alpha: 255},
	}
	raw := encodeSegment(t, segmentTypePDS, 0, encodePDSBody(t, 3, 1, entries))

	seg, err := ReadSegment(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("ReadSegment: %v", err)
	}
	pds, ok := seg.(PDS)
	if !ok {
		t.Fatalf("expected PDS, got %T", seg)
	}
	if pds.ID != 3 || pds.Version != 1 {
		t.Errorf("id/version: got %d/%d", pds.ID, pds.Version)
	}
	if len(pds.Entries) != 2 {
		t.Fatalf("entries: got %d", len(pds.Entries))
	}
	if pds.Entries[1].Luminance != 235 || pds.Entries[1].Alpha != 255 {
		t.Errorf("entry 1: got %+v", pds.Entries[1])
	}
}

func TestReadSegmentPDSBadEntrySize(t *testing.T) {
	body := []byte{0, 0, 1, 2, 3} // 3 trailing bytes, not a multiple of 5
	raw := encodeSegment(t, segmentTypePDS, 0, body)
	if _, err := ReadSegment(bytes.NewReader(raw)); !errors.Is(err, ErrInvalidData) {
		t.Fatalf("expected ErrInvalidData, got %v", err)
	}
}

func TestReadSegmentODS(t *testing.T) {
	rle := []byte{0x05, 0x00, 0x00}
	raw := encodeSegment(t, segmentTypeODS, 0, encodeODSBody(t, 12, 1, 1, rle))

	seg, err := ReadSegment(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("ReadSegment: %v", err)
	}
	ods, ok := seg.(ODS)
	if !ok {
		t.Fatalf("expected ODS, got %T", seg)
	}
	if ods.ObjectID != 12 || ods.Width != 1 || ods.Height != 1 {
		t.Errorf("ods fields: got %+v", ods)
	}
	if ods.Sequence != SequenceFirstAndLast {
		t.Errorf("sequence: got %v", ods.Sequence)
	}
	if !bytes.Equal(ods.Data, rle) {
		t.Errorf("data: got %v, want %v", ods.Data, rle)
	}
}

func TestReadSegmentODSTrailingBytes(t *testing.T) {
	body := encodeODSBody(t, 0, 1, 1, []byte{0x05, 0x00, 0x00})
	body = append(body, 0xAA) // byte beyond the declared data length
	raw := encodeSegment(t, segmentTypeODS, 0, body)
	if _, err := ReadSegment(bytes.NewReader(raw)); !errors.Is(err, ErrInvalidData) {
		t.Fatalf("expected ErrInvalidData, got %v", err)
	}
}

func TestReadSegmentBadMagic(t *testing.T) {
	raw := encodeSegment(t, segmentTypeEND, 0, nil)
	raw[0] = 'X'
	if _, err := ReadSegment(bytes.NewReader(raw)); !errors.Is(err, ErrInvalidData) {
		t.Fatalf("expected ErrInvalidData, got %v", err)
	}
}

func TestReadSegmentUnknownType(t *testing.T) {
	raw := encodeSegment(t, 0x42, 0, nil)
	if _, err := ReadSegment(bytes.NewReader(raw)); !errors.Is(err, ErrInvalidData) {
		t.Fatalf("expected ErrInvalidData, got %v", err)
	}
}

func TestReadSegmentTruncatedBody(t *testing.T) {
	raw := encodeSegment(t, segmentTypeWDS, 0, encodeWDSBody(t, []Window{{WindowID: 0, Width: 10, Height: 10}}))
	if _, err := ReadSegment(bytes.NewReader(raw[:len(raw)-3])); !errors.Is(err, ErrUnexpectedEOF) {
		t.Fatalf("expected ErrUnexpectedEOF, got %v", err)
	}
}

func TestReadSegmentCleanEOF(t *testing.T) {
	if _, err := ReadSegment(bytes.NewReader(nil)); err != io.EOF {
		t.Fatalf("expected io.EOF, got %v", err)
	}
}

func TestReadDisplaySet(t *testing.T) {
	var stream bytes.Buffer
	stream.Write(encodeSegment(t, segmentTypePCS, 0,
		encodePCSBody(t, 720, 480, compositionStateEpochStart, 0, nil)))
	stream.Write(encodeSegment(t, segmentTypeWDS, 0, encodeWDSBody(t, []Window{{Width: 100, Height: 50}})))
	stream.Write(encodeSegment(t, segmentTypePDS, 0, encodePDSBody(t, 0, 0, []PaletteEntry{{ID: 1}})))
	stream.Write(encodeSegment(t, segmentTypeODS, 0, encodeODSBody(t, 0, 1, 1, []byte{0x01, 0x00, 0x00})))
	stream.Write(encodeSegment(t, segmentTypeEND, 0, nil))

	ds, err := ReadDisplaySet(&stream)
	if err != nil {
		t.Fatalf("ReadDisplaySet: %v", err)
	}
	if len(ds.WDS) != 1 || len(ds.PDS) != 1 || len(ds.ODS) != 1 {
		t.Errorf("segment counts: wds=%d pds=%d ods=%d", len(ds.WDS), len(ds.PDS), len(ds.ODS))
	}
}

func TestReadDisplaySetRejectsInnerPCS(t *testing.T) {
	var stream bytes.Buffer
	pcs := encodeSegment(t, segmentTypePCS, 0,
		encodePCSBody(t, 720, 480, compositionStateEpochStart, 0, nil))
	stream.Write(pcs)
	stream.Write(pcs)
	if _, err := ReadDisplaySet(&stream); !errors.Is(err, ErrInvalidData) {
		t.Fatalf("expected ErrInvalidData, got %v", err)
	}
}

func TestReadDisplaySetMissingEND(t *testing.T) {
	var stream bytes.Buffer
	stream.Write(encodeSegment(t, segmentTypePCS, 0,
		encodePCSBody(t, 720, 480, compositionStateEpochStart, 0, nil)))
	if _, err := ReadDisplaySet(&stream); !errors.Is(err, ErrUnexpectedEOF) {
		t.Fatalf("expected ErrUnexpectedEOF, got %v", err)
	}
}

func TestReadDisplaySets(t *testing.T) {
	var stream bytes.Buffer
	for i := 0; i < 3; i++ {
		stream.Write(encodeSegment(t, segmentTypePCS, uint32(i*ClockRate),
			encodePCSBody(t, 720, 480, compositionStateEpochStart, 0, nil)))
		stream.Write(encodeSegment(t, segmentTypeEND, uint32(i*ClockRate), nil))
	}

	sets, err := ReadDisplaySets(&stream)
	if err != nil {
		t.Fatalf("ReadDisplaySets: %v", err)
	}
	if len(sets) != 3 {
		t.Fatalf("got %d display sets, want 3", len(sets))
	}
	if sets[2].PTS() != 2*time.Second {
		t.Errorf("set 2 pts: got %v", sets[2].PTS())
	}
}
