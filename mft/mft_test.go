package mft_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/dfirtools/gomft/mft"
	"github.com/dfirtools/gomft/source"
)

const testEntrySize = 1024

func buildFileNameAttrContent(parentRecord uint64, parentSeq uint16, name string) []byte {
	nameBytes := make([]byte, len(name)*2)
	for i, r := range name {
		le16(nameBytes, i*2, uint16(r))
	}
	content := make([]byte, 0x42+len(nameBytes))
	parentRef := uint64(parentSeq)<<48 | parentRecord
	le64(content, 0x00, parentRef)
	le64(content, 0x28, 4096)
	le64(content, 0x30, uint64(len(name)))
	content[0x40] = byte(len(name))
	content[0x41] = byte(mft.FileNameNamespaceWin32)
	copy(content[0x42:], nameBytes)
	return content
}

// buildResidentAttribute returns a full attribute (common header + resident suffix + content)
// for attrType with the given attribute id and content bytes.
func buildResidentAttribute(attrType mft.AttributeType, attrID uint16, content []byte) []byte {
	const headerSize = 0x18
	attr := make([]byte, headerSize+len(content))
	le32(attr, 0x00, uint32(attrType))
	le32(attr, 0x04, uint32(len(attr)))
	attr[0x08] = 0 // resident
	attr[0x09] = 0 // name length
	le16(attr, 0x0A, headerSize)
	le16(attr, 0x0E, attrID)
	le32(attr, 0x10, uint32(len(content)))
	le16(attr, 0x14, headerSize)
	copy(attr[headerSize:], content)
	return attr
}

func buildTerminator() []byte {
	b := make([]byte, 4)
	le32(b, 0, uint32(mft.AttributeTypeTerminator))
	return b
}

func buildEntry(recordNumber uint64, sequenceNumber uint16, flags mft.RecordFlag, attrs ...[]byte) []byte {
	buf := make([]byte, testEntrySize)
	copy(buf[0:4], []byte("FILE"))
	le16(buf, 4, 48) // fxOffset
	le16(buf, 6, 0)  // fxCount (no fixup patching needed - ApplyFixupArray disabled in tests)
	le16(buf, 16, sequenceNumber)
	le16(buf, 18, 1) // hard link count
	le16(buf, 20, 56)
	le16(buf, 22, uint16(flags))
	le32(buf, 28, testEntrySize) // allocated size

	offset := 56
	for _, a := range attrs {
		copy(buf[offset:], a)
		offset += len(a)
	}
	copy(buf[offset:], buildTerminator())
	offset += 4
	le32(buf, 24, uint32(offset)) // logical size

	return buf
}

func buildTestSource(t *testing.T, entries map[uint64][]byte, totalSlots uint64) mft.Source {
	t.Helper()
	data := make([]byte, int(totalSlots)*testEntrySize)
	for record, entry := range entries {
		copy(data[record*testEntrySize:], entry)
	}
	return source.NewInMemory(data)
}

func testConfig() mft.Config {
	return mft.Config{
		EntrySize:                testEntrySize,
		ApplyFixupArray:          false,
		CreateInitialInformation: true,
		LoadDataRuns:             true,
		CacheSize:                -1,
	}
}

func buildVolumeFixture(t *testing.T) mft.Source {
	t.Helper()
	root := buildEntry(5, 1, mft.RecordFlagInUse|mft.RecordFlagIsDirectory,
		buildResidentAttribute(mft.AttributeTypeFileName, 0, buildFileNameAttrContent(5, 1, ".")))
	dir1 := buildEntry(10, 1, mft.RecordFlagInUse|mft.RecordFlagIsDirectory,
		buildResidentAttribute(mft.AttributeTypeFileName, 0, buildFileNameAttrContent(5, 1, "dir1")))
	fileTxt := buildEntry(20, 1, mft.RecordFlagInUse,
		buildResidentAttribute(mft.AttributeTypeFileName, 0, buildFileNameAttrContent(10, 1, "file.txt")),
		buildResidentAttribute(mft.AttributeTypeData, 1, []byte("hello world")))
	orphan := buildEntry(30, 1, mft.RecordFlagInUse,
		buildResidentAttribute(mft.AttributeTypeFileName, 0, buildFileNameAttrContent(10, 2, "orphan.txt")))

	return buildTestSource(t, map[uint64][]byte{5: root, 10: dir1, 20: fileTxt, 30: orphan}, 31)
}

func TestMFTGetRoot(t *testing.T) {
	src := buildVolumeFixture(t)
	m, err := mft.New(src, testConfig())
	require.NoError(t, err)

	entry, err := m.Get(5)
	require.NoError(t, err)
	fn, _, ok := entry.MainFileName()
	require.True(t, ok)
	assert.Equal(t, ".", fn.Name)
}

func TestMFTGetRejectsEmptySlot(t *testing.T) {
	src := buildVolumeFixture(t)
	m, err := mft.New(src, testConfig())
	require.NoError(t, err)

	_, err = m.Get(6)
	require.Error(t, err)
}

func TestMFTIterateReturnsAllBaseEntries(t *testing.T) {
	src := buildVolumeFixture(t)
	m, err := mft.New(src, testConfig())
	require.NoError(t, err)

	records, err := m.Iterate()
	require.NoError(t, err)
	assert.Equal(t, []uint64{5, 10, 20, 30}, records)
}

func TestMFTGetFullPathRootResolvesToItself(t *testing.T) {
	src := buildVolumeFixture(t)
	m, err := mft.New(src, testConfig())
	require.NoError(t, err)

	isOrphan, path, err := m.GetFullPath(5)
	require.NoError(t, err)
	assert.False(t, isOrphan)
	assert.Equal(t, ".", path)
}

func TestMFTGetFullPathNormalPath(t *testing.T) {
	src := buildVolumeFixture(t)
	m, err := mft.New(src, testConfig())
	require.NoError(t, err)

	isOrphan, path, err := m.GetFullPath(20)
	require.NoError(t, err)
	assert.False(t, isOrphan)
	assert.Equal(t, `dir1\file.txt`, path)
}

func TestMFTGetFullPathDetectsOrphan(t *testing.T) {
	src := buildVolumeFixture(t)
	m, err := mft.New(src, testConfig())
	require.NoError(t, err)

	isOrphan, path, err := m.GetFullPath(30)
	require.NoError(t, err)
	assert.True(t, isOrphan)
	assert.Equal(t, "orphan.txt", path)
}

func TestMFTGetAssemblesResidentDataStream(t *testing.T) {
	src := buildVolumeFixture(t)
	m, err := mft.New(src, testConfig())
	require.NoError(t, err)

	entry, err := m.Get(20)
	require.NoError(t, err)
	require.Len(t, entry.Datastreams, 1)
	ds := entry.Datastreams[0]
	assert.True(t, ds.Resident)
	assert.Equal(t, []byte("hello world"), ds.Content)
}

func TestMFTNewRejectsSizeNotMultipleOfEntrySize(t *testing.T) {
	src := source.NewInMemory(make([]byte, 100))
	_, err := mft.New(src, testConfig())
	require.Error(t, err)
}

func TestMFTIterateRequiresInitialInformation(t *testing.T) {
	src := buildVolumeFixture(t)
	cfg := testConfig()
	cfg.CreateInitialInformation = false
	m, err := mft.New(src, cfg)
	require.NoError(t, err)

	_, err = m.Iterate()
	require.Error(t, err)
}
