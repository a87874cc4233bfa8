package docs

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveByFilename(t *testing.T) {
	index := []DocumentMeta{
		{ID: "1", Filename: "ADV-Part-2.pdf"},
		{ID: "2", Filename: "fee schedule.md"},
		{ID: "3", Filename: "Fee Notes.txt"},
	}

	got, ok := ResolveByFilename(index, "adv-part-2.pdf")
	require.True(t, ok)
	assert.Equal(t, "1", got.ID)

	// Exact match beats substring match.
	got, ok = ResolveByFilename(index, "FEE SCHEDULE.MD")
	require.True(t, ok)
	assert.Equal(t, "2", got.ID)

	// Substring fallback.
	got, ok = ResolveByFilename(index, "fee")
	require.True(t, ok)
	assert.Equal(t, "2", got.ID)

	_, ok = ResolveByFilename(index, "nonexistent")
	assert.False(t, ok)

	_, ok = ResolveByFilename(index, "  ")
	assert.False(t, ok)
}

func TestFileExtension(t *testing.T) {
	assert.Equal(t, "pdf", FileExtension("ADV-Part-2.PDF"))
	assert.Equal(t, "md", FileExtension("notes.backup.md"))
	assert.Equal(t, "", FileExtension("README"))
	assert.Equal(t, "", FileExtension("trailing."))
}

func TestExtractTextPlain(t *testing.T) {
	meta := DocumentMeta{Filename: "notes.txt", FileType: "txt"}
	got, err := ExtractText(meta, []byte("  hello world  "))
	require.NoError(t, err)
	assert.Equal(t, "hello world", got.Text)
	assert.False(t, got.Truncated)
}

func TestExtractTextTruncates(t *testing.T) {
	meta := DocumentMeta{Filename: "big.txt", FileType: "txt"}
	got, err := ExtractText(meta, []byte(strings.Repeat("a", MaxExtractChars+500)))
	require.NoError(t, err)
	assert.Len(t, got.Text, MaxExtractChars)
	assert.True(t, got.Truncated)
}

func TestExtractTextTruncatesOnRuneBoundary(t *testing.T) {
	// Pad so a three-byte rune straddles the byte limit.
	padding := strings.Repeat("a", MaxExtractChars-1)
	meta := DocumentMeta{Filename: "notes.txt", FileType: "txt"}

	got, err := ExtractText(meta, []byte(padding+"温度計"))
	require.NoError(t, err)
	assert.True(t, got.Truncated)
	assert.True(t, utf8.ValidString(got.Text))
	assert.Equal(t, padding, got.Text)
}

func TestExtractTextHTML(t *testing.T) {
	payload := []byte(`<html><head><style>p{color:red}</style></head>` +
		`<body><h1>Fees</h1><p>1% AUM</p><script>alert(1)</script></body></html>`)
	meta := DocumentMeta{Filename: "fees.html", FileType: "html"}

	got, err := ExtractText(meta, payload)
	require.NoError(t, err)
	assert.Contains(t, got.Text, "Fees")
	assert.Contains(t, got.Text, "1% AUM")
	assert.NotContains(t, got.Text, "alert")
	assert.NotContains(t, got.Text, "color:red")
}

func TestExtractTextBinaryPointsAtDrive(t *testing.T) {
	meta := DocumentMeta{Filename: "adv.pdf", FileType: "pdf", DriveFileID: "drive-123"}
	_, err := ExtractText(meta, []byte{0x25, 0x50, 0x44, 0x46})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "drive-123")
}
