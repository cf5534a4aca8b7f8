package fetcher

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadRecords(t *testing.T) {
	input := "kurzname;rnr;hu\nVH-1;101;2023-01-01\nVH-2;102;\n"

	records, err := ReadRecords(strings.NewReader(input), CSVOptions{})
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "VH-1", records[0]["kurzname"])
	assert.Equal(t, "101", records[0]["rnr"])
	assert.Equal(t, "2023-01-01", records[0]["hu"])
	assert.Equal(t, "", records[1]["hu"])
}

func TestReadRecordsCustomDelimiter(t *testing.T) {
	input := "kurzname,gruppe\nVH-1,Nord\n"

	records, err := ReadRecords(strings.NewReader(input), CSVOptions{Delimiter: ','})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Nord", records[0]["gruppe"])
}

func TestReadRecordsTrimsWhitespace(t *testing.T) {
	input := " kurzname ; gruppe \n VH-1 ; Nord \n"

	records, err := ReadRecords(strings.NewReader(input), CSVOptions{})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "VH-1", records[0]["kurzname"])
	assert.Equal(t, "Nord", records[0]["gruppe"])
}

func TestReadRecordsEmptyBody(t *testing.T) {
	records, err := ReadRecords(strings.NewReader(""), CSVOptions{})
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestReadRecordsHeaderOnly(t *testing.T) {
	records, err := ReadRecords(strings.NewReader("kurzname;hu\n"), CSVOptions{})
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestReadRecordsMalformed(t *testing.T) {
	input := "kurzname;hu\n\"VH-1;2023-01-01\n"

	_, err := ReadRecords(strings.NewReader(input), CSVOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedInput)
}

func TestReadRecordsRaggedRow(t *testing.T) {
	input := "kurzname;gruppe;hu\nVH-1;Nord\n"

	records, err := ReadRecords(strings.NewReader(input), CSVOptions{})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Nord", records[0]["gruppe"])
	assert.Equal(t, "", records[0]["hu"])
}

func TestReadRecordsLatin1(t *testing.T) {
	// "Gelände" in ISO-8859-1: 0xE4 is ä.
	input := append([]byte("kurzname;info\nVH-1;Gel"), 0xE4, 'n', 'd', 'e', '\n')

	records, err := ReadRecords(bytes.NewReader(input), CSVOptions{Charset: "iso-8859-1"})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Gelände", records[0]["info"])
}

func TestReadRecordsUnknownCharset(t *testing.T) {
	_, err := ReadRecords(strings.NewReader("a;b\n"), CSVOptions{Charset: "not-a-charset"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown charset")
}
