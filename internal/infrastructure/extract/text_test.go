package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_PlainText(t *testing.T) {
	got, err := New().Extract("text/plain", []byte("  Bartender\n\n\tBar Luna  2019-2024 \x00"))
	require.NoError(t, err)
	assert.Equal(t, "Bartender Bar Luna 2019-2024", got)
}

func TestExtract_Truncates(t *testing.T) {
	got, err := New().Extract("text/plain", []byte(strings.Repeat("あ", maxTextRunes+10)))
	require.NoError(t, err)
	assert.Equal(t, maxTextRunes, len([]rune(got)))
}

func TestExtract_Unsupported(t *testing.T) {
	_, err := New().Extract("image/png", []byte{0x89, 'P', 'N', 'G'})
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestExtract_BrokenFiles(t *testing.T) {
	_, err := New().Extract(mimePDF, []byte("%PDF-1.4 truncated"))
	assert.Error(t, err)

	_, err = New().Extract(mimeDOCX, []byte("PK\x03\x04 not really a zip"))
	assert.Error(t, err)
}
