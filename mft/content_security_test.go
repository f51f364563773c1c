package mft_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/dfirtools/gomft/mft"
)

func buildSID(revision byte, authority uint64, subs []uint32) []byte {
	b := make([]byte, 8+len(subs)*4)
	b[0] = revision
	b[1] = byte(len(subs))
	for i := 0; i < 6; i++ {
		b[2+i] = byte(authority >> (8 * (5 - i)))
	}
	for i, s := range subs {
		le32(b, 8+i*4, s)
	}
	return b
}

func TestParseSecurityDescriptorOwnerAndGroup(t *testing.T) {
	owner := buildSID(1, 5, []uint32{21, 111, 222, 1001})
	group := buildSID(1, 5, []uint32{32, 544})

	header := make([]byte, 20)
	header[0] = 1 // revision
	le16(header, 2, 0x8004)
	ownerOffset := len(header)
	groupOffset := ownerOffset + len(owner)
	le32(header, 4, uint32(ownerOffset))
	le32(header, 8, uint32(groupOffset))
	// SACL/DACL offsets left zero (not present)

	b := append(header, owner...)
	b = append(b, group...)

	sd, err := mft.ParseSecurityDescriptor(b)
	require.NoError(t, err)
	require.NotNil(t, sd.Owner)
	require.NotNil(t, sd.Group)
	assert.Nil(t, sd.SACL)
	assert.Nil(t, sd.DACL)
	assert.Equal(t, "S-1-5-21-111-222-1001", sd.Owner.String())
	assert.Equal(t, "S-1-5-32-544", sd.Group.String())
}

func TestParseSecurityDescriptorNoOffsets(t *testing.T) {
	header := make([]byte, 20)
	header[0] = 1
	sd, err := mft.ParseSecurityDescriptor(header)
	require.NoError(t, err)
	assert.Nil(t, sd.Owner)
	assert.Nil(t, sd.Group)
	assert.Nil(t, sd.SACL)
	assert.Nil(t, sd.DACL)
}

func TestParseSecurityDescriptorTooShort(t *testing.T) {
	_, err := mft.ParseSecurityDescriptor(make([]byte, 5))
	require.Error(t, err)
}
