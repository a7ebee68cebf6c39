package sie

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// EncodingError reports that no candidate encoding decoded the input.
type EncodingError struct {
	Path   string
	Offset int // byte offset where the last candidate failed
}

func (e *EncodingError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("no supported encoding decodes input, failed at byte offset %d", e.Offset)
	}
	return fmt.Sprintf("no supported encoding decodes %s, failed at byte offset %d", e.Path, e.Offset)
}

// Historical Swedish accounting exports use the IBM PC code pages ("PC8").
// Candidates are probed in order; the first that decodes every byte wins.
var probes = []struct {
	name string
	cm   *charmap.Charmap
}{
	{"cp437", charmap.CodePage437},
	{"cp850", charmap.CodePage850},
	{"latin-1", charmap.ISO8859_1},
	{"utf-8", nil},
}

// decodeText decodes data under the first working candidate encoding and
// returns the text and the encoding name.
func decodeText(data []byte) (string, string, error) {
	offset := 0
	for _, p := range probes {
		if p.cm == nil {
			if off, ok := utf8Offset(data); !ok {
				offset = off
				continue
			}
			return string(data), p.name, nil
		}
		text, off, ok := decodeCharmap(p.cm, data)
		if !ok {
			offset = off
			continue
		}
		return text, p.name, nil
	}
	return "", "", &EncodingError{Offset: offset}
}

// decodeCharmap decodes byte by byte so that unmapped bytes fail the probe
// instead of turning into replacement runes.
func decodeCharmap(cm *charmap.Charmap, data []byte) (string, int, bool) {
	var b strings.Builder
	b.Grow(len(data))
	for i, c := range data {
		r := cm.DecodeByte(c)
		if r == utf8.RuneError {
			return "", i, false
		}
		b.WriteRune(r)
	}
	return b.String(), 0, true
}

// utf8Offset returns the offset of the first invalid UTF-8 byte, or ok.
func utf8Offset(data []byte) (int, bool) {
	for i := 0; i < len(data); {
		r, size := utf8.DecodeRune(data[i:])
		if r == utf8.RuneError && size <= 1 {
			return i, false
		}
		i += size
	}
	return 0, true
}
