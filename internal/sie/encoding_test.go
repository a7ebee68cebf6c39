package sie

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

func TestDecodeText_ASCII(t *testing.T) {
	text, enc, err := decodeText([]byte("#FORMAT PC8\n"))
	require.NoError(t, err)
	assert.Equal(t, "cp437", enc)
	assert.Equal(t, "#FORMAT PC8\n", text)
}

func TestDecodeText_CP437Swedish(t *testing.T) {
	// ö sits at 0x94 in both CP437 and CP850.
	text, enc, err := decodeText([]byte{'R', 0x94, 'r'})
	require.NoError(t, err)
	assert.Equal(t, "cp437", enc)
	assert.Equal(t, "Rör", text)
}

func TestDecodeText_ProbeOrderIsContractual(t *testing.T) {
	// CP437 accepts every byte value and is probed first, so even valid
	// UTF-8 input decodes under CP437. The order is part of the contract.
	text, enc, err := decodeText([]byte("ö"))
	require.NoError(t, err)
	assert.Equal(t, "cp437", enc)
	assert.NotEqual(t, "ö", text)
}

func TestDecodeCharmap(t *testing.T) {
	text, _, ok := decodeCharmap(charmap.CodePage850, []byte{'F', 0x94, 'r', 'e', 't', 'a', 'g'})
	require.True(t, ok)
	assert.Equal(t, "Företag", text)
}

func TestUTF8Offset(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		wantOff int
		wantOK  bool
	}{
		{"ascii", []byte("plain ascii"), 0, true},
		{"valid multibyte", []byte("sv: \xc3\xb6"), 0, true},
		{"truncated sequence", []byte{'a', 'b', 0xC3}, 2, false},
		{"invalid lead byte", []byte{0xFF, 'a'}, 0, false},
		{"encoded replacement rune", []byte("ok\xef\xbf\xbd"), 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			off, ok := utf8Offset(tt.data)
			assert.Equal(t, tt.wantOK, ok)
			if !tt.wantOK {
				assert.Equal(t, tt.wantOff, off)
			}
		})
	}
}

func TestEncodingError_Message(t *testing.T) {
	err := &EncodingError{Offset: 42}
	assert.Contains(t, err.Error(), "42")

	err.Path = "year.si"
	assert.Contains(t, err.Error(), "year.si")
	assert.Contains(t, err.Error(), "42")
}
