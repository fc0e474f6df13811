package pgs

import (
	"encoding/binary"
	"fmt"
	"io"
)

// MagicNumber prefixes every segment header ("PG" big-endian).
const MagicNumber uint16 = 0x5047

// Segment type bytes as they appear on the wire.
const (
	segmentTypePDS byte = 0x14
	segmentTypeODS byte = 0x15
	segmentTypePCS byte = 0x16
	segmentTypeWDS byte = 0x17
	segmentTypeEND byte = 0x80
)

const (
	compositionStateNormal           byte = 0x00
	compositionStateAcquisitionPoint byte = 0x40
	compositionStateEpochStart       byte = 0x80
)

const (
	paletteUpdateFlagFalse byte = 0x00
	paletteUpdateFlagTrue  byte = 0x80
)

const (
	objectCroppedFlagOff   byte = 0x00
	objectCroppedFlagForce byte = 0x40
)

const (
	lastInSequenceFlagLast         byte = 0x40
	lastInSequenceFlagFirst        byte = 0x80
	lastInSequenceFlagFirstAndLast byte = lastInSequenceFlagFirst | lastInSequenceFlagLast
)

// ODS object data begins with a 2-byte width and 2-byte height before the
// RLE payload; the declared data length includes them.
const odsDataPrefixSize = 4

type segmentHeader struct {
	Magic       uint16
	PTS         uint32
	DTS         uint32
	SegmentType byte
	SegmentSize uint16
}

func readSegmentHeader(r io.Reader) (segmentHeader, error) {
	var buf [13]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return segmentHeader{}, err
	}
	return segmentHeader{
		Magic:       binary.BigEndian.Uint16(buf[0:2]),
		PTS:         binary.BigEndian.Uint32(buf[2:6]),
		DTS:         binary.BigEndian.Uint32(buf[6:10]),
		SegmentType: buf[10],
		SegmentSize: binary.BigEndian.Uint16(buf[11:13]),
	}, nil
}

// byteCursor walks a fully buffered segment body. All multi-byte integers in
// a PGS stream are big-endian.
type byteCursor struct {
	buf []byte
	off int
}

func (c *byteCursor) remaining() int { return len(c.buf) - c.off }

func (c *byteCursor) need(n int) error {
	if c.remaining() < n {
		return fmt.Errorf("%w: need %d bytes, have %d", ErrUnexpectedEOF, n, c.remaining())
	}
	return nil
}

func (c *byteCursor) u8() (byte, error) {
	if err := c.need(1); err != nil {
		return 0, err
	}
	v := c.buf[c.off]
	c.off++
	return v, nil
}

func (c *byteCursor) u16() (uint16, error) {
	if err := c.need(2); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint16(c.buf[c.off:])
	c.off += 2
	return v, nil
}

func (c *byteCursor) u24() (uint32, error) {
	if err := c.need(3); err != nil {
		return 0, err
	}
	v := uint32(c.buf[c.off])<<16 | uint32(c.buf[c.off+1])<<8 | uint32(c.buf[c.off+2])
	c.off += 3
	return v, nil
}

func (c *byteCursor) bytes(n int) ([]byte, error) {
	if err := c.need(n); err != nil {
		return nil, err
	}
	v := c.buf[c.off : c.off+n]
	c.off += n
	return v, nil
}
