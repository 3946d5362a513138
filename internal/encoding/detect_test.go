package encoding_test

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	enc "github.com/harvesttrail/harvesttrail/internal/encoding"
)

func decode(t *testing.T, input string) string {
	t.Helper()

	r, err := enc.UTF8Reader(strings.NewReader(input))
	require.NoError(t, err)

	out, err := io.ReadAll(r)
	require.NoError(t, err)

	return string(out)
}

func TestUTF8Reader_PlainUTF8(t *testing.T) {
	assert.Equal(t, "Crop,Weight\nTomatoes,100\n", decode(t, "Crop,Weight\nTomatoes,100\n"))
}

func TestUTF8Reader_UTF8WithAccents(t *testing.T) {
	assert.Equal(t, "Señor Müller", decode(t, "Señor Müller"))
}

func TestUTF8Reader_StripsUTF8BOM(t *testing.T) {
	assert.Equal(t, "Crop,Weight\n", decode(t, "\xEF\xBB\xBFCrop,Weight\n"))
}

func TestUTF8Reader_UTF16LE(t *testing.T) {
	// "Crop" with a UTF-16LE BOM.
	input := "\xFF\xFE" + "C\x00r\x00o\x00p\x00"

	assert.Equal(t, "Crop", decode(t, input))
}

func TestUTF8Reader_UTF16BE(t *testing.T) {
	input := "\xFE\xFF" + "\x00C\x00r\x00o\x00p"

	assert.Equal(t, "Crop", decode(t, input))
}

func TestUTF8Reader_Windows1252(t *testing.T) {
	// 0xF1 = ñ, 0xFC = ü in Windows-1252; invalid as UTF-8.
	assert.Equal(t, "Señor Müller", decode(t, "Se\xf1or M\xfcller"))
}

func TestUTF8Reader_Empty(t *testing.T) {
	assert.Equal(t, "", decode(t, ""))
}
