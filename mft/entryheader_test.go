package mft

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeEntryHeaderBuf(signature string) []byte {
	b := make([]byte, 56)
	copy(b[0:4], []byte(signature))
	putLE16(b, 4, 48)          // fxOffset
	putLE16(b, 6, 3)           // fxCount
	putLE16(b, 16, 1)          // sequence number
	putLE16(b, 18, 1)          // hard link count
	putLE16(b, 20, 56)         // first attribute offset
	putLE16(b, 22, 1)          // flags: in use
	putLE32(b, 24, 56)         // logical size
	putLE32(b, 28, 1024)       // allocated size
	putLE32(b, 44, 42)         // self record number
	return b
}

func TestParseEntryHeaderOK(t *testing.T) {
	b := makeEntryHeaderBuf("FILE")
	cfg := DefaultConfig()
	h, err := parseEntryHeader(b, &cfg)
	require.NoError(t, err)
	assert.False(t, h.BadSignature)
	assert.Equal(t, 48, h.FixUpOffset)
	assert.Equal(t, 3, h.FixUpCount)
	assert.Equal(t, uint64(42), h.RecordNumber)
	assert.True(t, h.Flags.Is(RecordFlagInUse))
}

func TestParseEntryHeaderBadSignature(t *testing.T) {
	b := makeEntryHeaderBuf("BAAD")
	cfg := DefaultConfig()
	h, err := parseEntryHeader(b, &cfg)
	require.NoError(t, err)
	assert.True(t, h.BadSignature)
}

func TestParseEntryHeaderUnknownSignature(t *testing.T) {
	b := makeEntryHeaderBuf("XXXX")
	cfg := DefaultConfig()
	_, err := parseEntryHeader(b, &cfg)
	require.Error(t, err)
}

func TestParseEntryHeaderIgnoreSignatureCheck(t *testing.T) {
	b := makeEntryHeaderBuf("XXXX")
	cfg := DefaultConfig()
	cfg.IgnoreSignatureCheck = true
	_, err := parseEntryHeader(b, &cfg)
	require.NoError(t, err)
}

func TestParseEntryHeaderLogicalExceedsAllocated(t *testing.T) {
	b := makeEntryHeaderBuf("FILE")
	putLE32(b, 24, 2000) // logical size
	putLE32(b, 28, 1024) // allocated size, smaller
	cfg := DefaultConfig()
	_, err := parseEntryHeader(b, &cfg)
	require.Error(t, err)
}

func TestParseEntryHeaderFixupOffsetTooSmall(t *testing.T) {
	b := makeEntryHeaderBuf("FILE")
	putLE16(b, 4, 10)
	cfg := DefaultConfig()
	_, err := parseEntryHeader(b, &cfg)
	require.Error(t, err)
}

func TestParseEntryHeaderTruncated(t *testing.T) {
	cfg := DefaultConfig()
	_, err := parseEntryHeader(make([]byte, 10), &cfg)
	require.Error(t, err)
}
