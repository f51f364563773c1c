package mft_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/dfirtools/gomft/mft"
)

func fileNameAttr(id uint16, parent mft.FileReference, namespace mft.FileNameNamespace, name string) mft.Attribute {
	fn := mft.FileName{ParentFileReference: parent, Namespace: namespace, Name: name}
	return mft.Attribute{Type: mft.AttributeTypeFileName, Resident: true, AttributeId: id, Content: fn}
}

func TestMainFileNamePicksSmallestAttributeIdThenSmallestNamespace(t *testing.T) {
	parent := mft.FileReference{RecordNumber: 5}
	entry := &mft.LogicalEntry{
		Attributes: map[mft.AttributeType][]mft.Attribute{
			mft.AttributeTypeFileName: {
				fileNameAttr(3, parent, mft.FileNameNamespaceDos, "LONGFI~1.TXT"),
				fileNameAttr(2, parent, mft.FileNameNamespaceWin32, "longfilename.txt"),
			},
		},
	}

	fn, attr, ok := entry.MainFileName()
	assert := assert.New(t)
	assert.True(ok)
	assert.Equal("longfilename.txt", fn.Name)
	assert.Equal(uint16(2), attr.AttributeId)
}

func TestMainFileNameNoAttributes(t *testing.T) {
	entry := &mft.LogicalEntry{}
	_, _, ok := entry.MainFileName()
	assert.False(t, ok)
}

func TestUniqueNamesCollapsesWin32DosPair(t *testing.T) {
	parentA := mft.FileReference{RecordNumber: 5}
	parentB := mft.FileReference{RecordNumber: 6}
	entry := &mft.LogicalEntry{
		Attributes: map[mft.AttributeType][]mft.Attribute{
			mft.AttributeTypeFileName: {
				fileNameAttr(2, parentA, mft.FileNameNamespaceWin32, "longfilename.txt"),
				fileNameAttr(3, parentA, mft.FileNameNamespaceDos, "LONGFI~1.TXT"),
				fileNameAttr(4, parentB, mft.FileNameNamespacePosix, "hardlink-two"),
			},
		},
	}

	names := entry.UniqueNames()
	assert := assert.New(t)
	assert.Len(names, 2)
	assert.Equal("longfilename.txt", names[0].Name)
	assert.Equal("hardlink-two", names[1].Name)
}

func TestFindAttributesMissingType(t *testing.T) {
	entry := &mft.LogicalEntry{Attributes: map[mft.AttributeType][]mft.Attribute{}}
	assert.Nil(t, entry.FindAttributes(mft.AttributeTypeFileName))
}
