package mft_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/dfirtools/gomft/mft"
)

func TestParseVolumeName(t *testing.T) {
	name := "DATA"
	b := make([]byte, len(name)*2)
	for i, r := range name {
		le16(b, i*2, uint16(r))
	}
	vn, err := mft.ParseVolumeName(b)
	require.NoError(t, err)
	assert.Equal(t, "DATA", vn.Name)
}

func TestParseEAInformation(t *testing.T) {
	b := make([]byte, 8)
	le16(b, 0, 64)
	le16(b, 2, 1)
	le32(b, 4, 128)
	ea, err := mft.ParseEAInformation(b)
	require.NoError(t, err)
	assert.Equal(t, uint16(64), ea.PackedSize)
	assert.Equal(t, uint16(1), ea.NeedEACount)
	assert.Equal(t, uint32(128), ea.UnpackedSize)
}

func TestParseLoggedUtilityStreamPassthrough(t *testing.T) {
	lu, err := mft.ParseLoggedUtilityStream([]byte{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, lu.Data)
}

func TestParseIndexRootRejectsNonFileNameIndexedType(t *testing.T) {
	b := make([]byte, 32)
	le32(b, 0x00, uint32(mft.AttributeTypeData))
	le32(b, 0x14, 32)
	_, err := mft.ParseIndexRoot(b)
	require.Error(t, err)
}

func TestParseIndexRootEmpty(t *testing.T) {
	b := make([]byte, 32)
	le32(b, 0x00, uint32(mft.AttributeTypeFileName))
	le32(b, 0x04, uint32(mft.CollationTypeFileName))
	le32(b, 0x08, 4096)
	le32(b, 0x0C, 1)
	le32(b, 0x14, 16) // totalSize - no entries beyond header
	le32(b, 0x1C, 0)

	ir, err := mft.ParseIndexRoot(b)
	require.NoError(t, err)
	assert.Equal(t, mft.AttributeTypeFileName, ir.AttributeType)
	assert.Empty(t, ir.Entries)
}
