package loader

import (
	"bytes"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// Encoding names a catalog source encoding.
type Encoding string

const (
	EncodingUTF8        Encoding = "utf-8"
	EncodingWindows1250 Encoding = "windows-1250"
	EncodingISO88592    Encoding = "iso-8859-2"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// cp1250Hints are byte values that decode to Central European letters in
// Windows-1250 but fall in the ISO-8859-2 control range, so their presence
// rules ISO-8859-2 out.
var cp1250Hints = map[byte]rune{
	0x8A: 'Š',
	0x8C: 'Ś',
	0x8D: 'Ť',
	0x8E: 'Ž',
	0x8F: 'Ź',
	0x9A: 'š',
	0x9C: 'ś',
	0x9D: 'ť',
	0x9E: 'ž',
	0x9F: 'ź',
}

// iso88592Hints are the same letters at their ISO-8859-2 positions. In
// Windows-1250 most of these bytes decode to punctuation symbols, so a text
// heavy in them reads as ISO-8859-2.
var iso88592Hints = map[byte]rune{
	0xA6: 'Ś',
	0xA9: 'Š',
	0xAC: 'Ź',
	0xAE: 'Ž',
	0xB6: 'ś',
	0xB9: 'š',
	0xBC: 'ź',
	0xBE: 'ž',
}

// detectScanLimit bounds how much of a file the encoding sniffer inspects.
const detectScanLimit = 4096

// DetectEncoding sniffs the encoding of a catalog file. Valid UTF-8 (with or
// without BOM) always wins; otherwise the diacritic byte positions decide
// between the two Central European single-byte encodings.
func DetectEncoding(data []byte) Encoding {
	if bytes.HasPrefix(data, utf8BOM) {
		return EncodingUTF8
	}
	if utf8.Valid(data) {
		return EncodingUTF8
	}

	limit := len(data)
	if limit > detectScanLimit {
		limit = detectScanLimit
	}
	cp1250Score, isoScore := 0, 0
	for _, b := range data[:limit] {
		if _, ok := cp1250Hints[b]; ok {
			cp1250Score++
		}
		if _, ok := iso88592Hints[b]; ok {
			isoScore++
		}
	}
	if isoScore > cp1250Score {
		return EncodingISO88592
	}
	return EncodingWindows1250
}

// DecodeText converts catalog bytes in the given encoding to a UTF-8 string.
// Data that is already valid UTF-8 is passed through untouched regardless of
// the requested encoding; re-decoding valid UTF-8 would mangle it.
func DecodeText(data []byte, enc Encoding) (string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	switch enc {
	case EncodingWindows1250:
		if utf8.Valid(data) {
			return string(data), nil
		}
		decoded, err := charmap.Windows1250.NewDecoder().Bytes(data)
		if err != nil {
			return "", err
		}
		return string(decoded), nil
	case EncodingISO88592:
		if utf8.Valid(data) {
			return string(data), nil
		}
		decoded, err := charmap.ISO8859_2.NewDecoder().Bytes(data)
		if err != nil {
			return "", err
		}
		return string(decoded), nil
	default:
		return string(data), nil
	}
}
