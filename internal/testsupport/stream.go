package testsupport

import (
	"encoding/binary"
	"time"
)

// Raw segment encoding constants, duplicated here so tests can build
// streams byte by byte without reaching into package internals.
const (
	magicNumber uint16 = 0x5047

	typePDS byte = 0x14
	typeODS byte = 0x15
	typePCS byte = 0x16
	typeWDS byte = 0x17
	typeEND byte = 0x80

	stateEpochStart byte = 0x80

	seqFirstAndLast byte = 0xC0

	clockRate = 90_000
)

// Subtitle describes one synthetic subtitle interval.
type Subtitle struct {
	Begin time.Duration
	End   time.Duration
}

// Stream builds a well-formed PGS stream showing a 2x2 white bitmap for
// each subtitle interval. Intervals must be sequential and non-overlapping;
// each one is rendered as an epoch-start display set followed by a clearing
// display set at its end time.
func Stream(subtitles []Subtitle) []byte {
	var out []byte
	for _, sub := range subtitles {
		out = append(out, displaySetWithBitmap(sub.Begin)...)
		out = append(out, clearingDisplaySet(sub.End)...)
	}
	return out
}

// EmptyStream builds a stream with a single display set and no subtitle
// content.
func EmptyStream() []byte {
	return clearingDisplaySet(0)
}

func displaySetWithBitmap(at time.Duration) []byte {
	pts := ticks(at)
	var out []byte
	out = append(out, segment(typePCS, pts, pcsBody(1, []byte{
		0x00, 0x00, // object id
		0x00,       // window id
		0x00,       // not cropped
		0x00, 0x64, // x = 100
		0x03, 0x84, // y = 900
	}))...)
	out = append(out, segment(typeWDS, pts, []byte{
		0x01,       // one window
		0x00,       // window id
		0x00, 0x64, // x
		0x03, 0x84, // y
		0x00, 0x02, // width
		0x00, 0x02, // height
	})...)
	out = append(out, segment(typePDS, pts, []byte{
		0x00, 0x00, // palette id, version
		0x00, 0x10, 0x80, 0x80, 0x00, // entry 0: transparent
		0x01, 0xEB, 0x80, 0x80, 0xFF, // entry 1: opaque white
	})...)
	rle := []byte{
		0x01, 0x01, 0x00, 0x00,
		0x01, 0x01, 0x00, 0x00,
	}
	ods := []byte{
		0x00, 0x00, // object id
		0x00,            // version
		seqFirstAndLast, // sequence flag
	}
	dataLen := uint32(len(rle) + 4)
	ods = append(ods, byte(dataLen>>16), byte(dataLen>>8), byte(dataLen))
	ods = append(ods, 0x00, 0x02, 0x00, 0x02) // 2x2
	ods = append(ods, rle...)
	out = append(out, segment(typeODS, pts, ods)...)
	out = append(out, segment(typeEND, pts, nil)...)
	return out
}

func clearingDisplaySet(at time.Duration) []byte {
	pts := ticks(at)
	var out []byte
	out = append(out, segment(typePCS, pts, pcsBody(0, nil))...)
	out = append(out, segment(typeEND, pts, nil)...)
	return out
}

func pcsBody(objectCount byte, objects []byte) []byte {
	body := []byte{
		0x07, 0x80, // width 1920
		0x04, 0x38, // height 1080
		0x10,       // frame rate
		0x00, 0x00, // composition number
		stateEpochStart,
		0x00, // no palette update
		0x00, // palette id
		objectCount,
	}
	return append(body, objects...)
}

func segment(segType byte, pts uint32, body []byte) []byte {
	buf := make([]byte, 0, 13+len(body))
	buf = binary.BigEndian.AppendUint16(buf, magicNumber)
	buf = binary.BigEndian.AppendUint32(buf, pts)
	buf = binary.BigEndian.AppendUint32(buf, 0)
	buf = append(buf, segType)
	buf = binary.BigEndian.AppendUint16(buf, uint16(len(body)))
	buf = append(buf, body...)
	return buf
}

func ticks(d time.Duration) uint32 {
	return uint32(d * clockRate / time.Second)
}
