package pgs

import "fmt"

// The ODS payload uses a run-length encoding over palette indices:
//
//	CCCCCCCC                   one pixel of color C (C > 0)
//	00000000 00000000          end of line
//	00000000 00LLLLLL          L pixels of color 0 (1..63)
//	00000000 01LLLLLL LLLLLLLL extended run of color 0
//	00000000 10LLLLLL CCCCCCCC L pixels of color C
//	00000000 11LLLLLL LLLLLLLL CCCCCCCC extended run of color C
type rleCode struct {
	color     byte
	count     int
	endOfLine bool
}

// decodeRLECode decodes one code from buf and reports how many bytes it
// consumed.
func decodeRLECode(buf []byte) (rleCode, int, error) {
	if len(buf) == 0 {
		return rleCode{}, 0, fmt.Errorf("%w: empty rle buffer", ErrUnexpectedEOF)
	}

	v0 := buf[0]
	if v0 > 0 {
		return rleCode{color: v0, count: 1}, 1, nil
	}

	if len(buf) < 2 {
		return rleCode{}, 0, fmt.Errorf("%w: truncated rle code", ErrUnexpectedEOF)
	}
	v1 := buf[1]
	if v1 == 0 {
		return rleCode{endOfLine: true}, 2, nil
	}
	if v1 <= 63 {
		return rleCode{color: 0, count: int(v1)}, 2, nil
	}

	if len(buf) < 3 {
		return rleCode{}, 0, fmt.Errorf("%w: truncated rle code", ErrUnexpectedEOF)
	}
	v2 := buf[2]
	switch v1 & 0b1100_0000 {
	case 0b0100_0000:
		n := int(v1&0b0011_1111)<<8 | int(v2)
		if n > 0 {
			n--
		}
		return rleCode{color: 0, count: n}, 3, nil
	case 0b1000_0000:
		return rleCode{color: v2, count: int(v1 & 0b0011_1111)}, 3, nil
	}

	if len(buf) < 4 {
		return rleCode{}, 0, fmt.Errorf("%w: truncated rle code", ErrUnexpectedEOF)
	}
	// 0b11xxxxxx: extended run with explicit color.
	n := int(v1&0b0011_1111)<<8 | int(v2)
	return rleCode{color: buf[3], count: n}, 4, nil
}

// DecodeRLE expands an ODS payload into a width*height buffer of palette
// indices. Every decoded line must match the declared width and the line
// count must match the declared height.
func DecodeRLE(data []byte, width, height uint16) ([]byte, error) {
	w := int(width)
	h := int(height)
	pixels := make([]byte, 0, w*h)

	lineStart := 0
	lines := 0
	for off := 0; off < len(data); {
		code, n, err := decodeRLECode(data[off:])
		if err != nil {
			return nil, err
		}
		off += n

		if code.endOfLine {
			if got := len(pixels) - lineStart; got != w {
				return nil, fmt.Errorf("%w: rle line %d is %d pixels, want %d", ErrInvalidData, lines, got, w)
			}
			lineStart = len(pixels)
			lines++
			continue
		}

		for i := 0; i < code.count; i++ {
			pixels = append(pixels, code.color)
		}
		if len(pixels)-lineStart > w {
			return nil, fmt.Errorf("%w: rle line %d overflows width %d", ErrInvalidData, lines, w)
		}
	}

	if len(pixels) != lineStart {
		return nil, fmt.Errorf("%w: rle data ends without end-of-line", ErrInvalidData)
	}
	if lines != h {
		return nil, fmt.Errorf("%w: rle decoded %d lines, want %d", ErrInvalidData, lines, h)
	}
	return pixels, nil
}
