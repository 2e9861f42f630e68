package dbo

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// Input encodings understood by DecodeText.
const (
	EncodingAuto        = "auto"
	EncodingUTF8        = "utf-8"
	EncodingWindows1251 = "windows-1251"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// DecodeText converts a statement to UTF-8. Auto keeps valid UTF-8 as is
// and reads anything else as Windows-1251, which is what most Ukrainian
// bank clients export. A UTF-8 byte order mark is dropped.
func DecodeText(data []byte, encoding string) ([]byte, error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "", EncodingAuto:
		if utf8.Valid(data) {
			return bytes.TrimPrefix(data, utf8BOM), nil
		}
		return fromWindows1251(data)
	case EncodingUTF8, "utf8":
		if !utf8.Valid(data) {
			return nil, errors.New("input is not valid UTF-8")
		}
		return bytes.TrimPrefix(data, utf8BOM), nil
	case EncodingWindows1251, "cp1251":
		return fromWindows1251(data)
	default:
		return nil, fmt.Errorf("unsupported encoding %q", encoding)
	}
}

func fromWindows1251(data []byte) ([]byte, error) {
	out, err := io.ReadAll(transform.NewReader(bytes.NewReader(data), charmap.Windows1251.NewDecoder()))
	if err != nil {
		return nil, fmt.Errorf("decoding windows-1251: %w", err)
	}
	return out, nil
}
