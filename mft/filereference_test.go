package mft_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/dfirtools/gomft/mft"
)

func TestParseFileReference(t *testing.T) {
	ref := mft.ParseFileReference(0x0002000000000005)
	assert.Equal(t, uint64(5), ref.RecordNumber)
	assert.Equal(t, uint16(2), ref.SequenceNumber)
}

func TestParseFileReferenceZero(t *testing.T) {
	ref := mft.ParseFileReference(0)
	assert.True(t, ref.IsZero())
}

func TestParseFileReferenceNonZero(t *testing.T) {
	ref := mft.ParseFileReference(1)
	assert.False(t, ref.IsZero())
}

func TestFileReferenceMaxRecordNumber(t *testing.T) {
	// record number is capped at 48 bits; the top 16 bits are always the sequence number.
	ref := mft.ParseFileReference(0xFFFFFFFFFFFFFFFF)
	assert.Equal(t, uint64(0x0000FFFFFFFFFFFF), ref.RecordNumber)
	assert.Equal(t, uint16(0xFFFF), ref.SequenceNumber)
}
